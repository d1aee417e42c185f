// Package config holds docsweep's configuration: defaults, the flat Config
// struct populated from CLI flags, validation, and the optional .docsweep
// YAML file with per-root overrides.
//
// Configuration flows through the application by dependency injection; there
// is no global state. Validation happens once after CLI parsing so failures
// surface before any scanning begins.
package config
