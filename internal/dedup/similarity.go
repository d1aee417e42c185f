package dedup

import "strings"

// shingleSize is the number of consecutive words per shingle.
// Three-word shingles are the usual compromise: short enough that small
// edits leave most shingles intact, long enough that unrelated sections
// share few of them.
const shingleSize = 3

// shingles returns the set of word n-grams of the normalized key.
// Keys shorter than n words contribute a single shingle of the whole key,
// so short sections can still be compared.
func shingles(key string, n int) map[string]struct{} {
	words := strings.Fields(key)
	set := make(map[string]struct{})

	if len(words) == 0 {
		return set
	}
	if len(words) < n {
		set[strings.Join(words, " ")] = struct{}{}
		return set
	}

	for i := 0; i+n <= len(words); i++ {
		set[strings.Join(words[i:i+n], " ")] = struct{}{}
	}
	return set
}

// jaccard returns the Jaccard similarity of two shingle sets:
// |intersection| / |union|. Two empty sets are defined as dissimilar.
func jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	small, large := a, b
	if len(small) > len(large) {
		small, large = large, small
	}

	var intersection int
	for s := range small {
		if _, ok := large[s]; ok {
			intersection++
		}
	}

	union := len(a) + len(b) - intersection
	return float64(intersection) / float64(union)
}
