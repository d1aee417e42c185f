package config

// RootConfig holds per-root configuration for a single scan root.
// This allows customizing scan behavior per documentation tree.
type RootConfig struct {
	// Extensions overrides the global extension list for this root.
	Extensions []string `yaml:"extensions,omitempty"`

	// IgnorePatterns are path patterns to skip while walking this root.
	IgnorePatterns []string `yaml:"ignorePatterns,omitempty"`

	// MinSectionBytes overrides the global section size filter.
	// If zero, the global value is used.
	MinSectionBytes int `yaml:"minSectionBytes,omitempty"`

	// Similarity overrides the global near-duplicate threshold.
	// If zero, the global value is used.
	Similarity float64 `yaml:"similarity,omitempty"`
}

// File represents the structure of the .docsweep configuration file.
type File struct {
	// Roots maps scan roots to their root-specific configurations.
	// Keys are paths as given on the command line.
	Roots map[string]RootConfig `yaml:"roots,omitempty"`

	// Defaults contains default root configuration applied to all roots
	// unless overridden in the root-specific configuration.
	Defaults RootConfig `yaml:"defaults,omitempty"`
}

// GetRootConfig returns the configuration for a specific scan root.
// It merges the root-specific configuration with defaults.
func (cf *File) GetRootConfig(root string) RootConfig {
	result := cf.Defaults

	if rc, ok := cf.Roots[root]; ok {
		if len(rc.Extensions) > 0 {
			result.Extensions = rc.Extensions
		}
		if len(rc.IgnorePatterns) > 0 {
			result.IgnorePatterns = rc.IgnorePatterns
		}
		if rc.MinSectionBytes != 0 {
			result.MinSectionBytes = rc.MinSectionBytes
		}
		if rc.Similarity != 0 {
			result.Similarity = rc.Similarity
		}
	}

	return result
}
