package normalize

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// fingerprintLen is the number of hex characters kept from the SHA-256 of a
// normalized key. 16 characters (64 bits) is plenty to avoid collisions in
// reports and the history database while staying readable.
const fingerprintLen = 16

// Normalizer converts section text into normalized comparison keys.
//
// A Normalizer carries stateful x/text transformers and is therefore not
// safe for concurrent use. Grouping is single-threaded, so each builder owns
// its own Normalizer; create one per goroutine if that ever changes.
type Normalizer struct {
	// folder performs Unicode case folding, which handles more than
	// strings.ToLower (e.g. ß → ss, final sigma).
	folder cases.Caser

	// cleaner chains NFKC normalization, whitespace unification, and
	// removal of non-semantic runes.
	cleaner transform.Transformer
}

// New creates a Normalizer.
func New() *Normalizer {
	return &Normalizer{
		folder:  cases.Fold(),
		cleaner: newCleaner(),
	}
}

// newCleaner builds the rune-level transform chain.
// NFKC first so that compatibility forms (full-width characters, ligatures)
// compare equal, then map every whitespace rune to a plain space, then drop
// everything that is not a letter, digit, or space. Markdown emphasis
// markers (*, _, `, #) are punctuation and symbols, so the removal step
// covers them without special cases.
func newCleaner() transform.Transformer {
	unifySpace := runes.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return ' '
		}
		return r
	})
	dropNonSemantic := runes.Remove(runes.Predicate(func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != ' '
	}))
	return transform.Chain(norm.NFKC, unifySpace, dropNonSemantic)
}

// Key returns the normalized comparison key for a section's heading and
// body. Deterministic and pure: equal input always yields an equal key.
func (n *Normalizer) Key(heading string, lines []string) string {
	var sb strings.Builder
	sb.Grow(len(heading) + 64)
	sb.WriteString(heading)
	for _, line := range lines {
		sb.WriteByte('\n')
		sb.WriteString(line)
	}

	cleaned, _, err := transform.String(n.cleaner, sb.String())
	if err != nil {
		// The chain never fails on valid UTF-8; invalid bytes are replaced
		// during NFKC. Fall back to the raw text so the key stays total.
		cleaned = sb.String()
	}

	folded := n.folder.String(cleaned)
	return collapseSpaces(folded)
}

// Fingerprint returns a short stable identifier for a normalized key.
func Fingerprint(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])[:fingerprintLen]
}

// collapseSpaces reduces runs of spaces to a single space and trims the
// result. The cleaner has already unified all whitespace into plain spaces.
func collapseSpaces(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))
	space := false
	for _, r := range s {
		if r == ' ' {
			space = true
			continue
		}
		if space && sb.Len() > 0 {
			sb.WriteByte(' ')
		}
		space = false
		sb.WriteRune(r)
	}
	return sb.String()
}
