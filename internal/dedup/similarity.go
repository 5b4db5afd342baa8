package dedup

import "strings"

// Similarity returns the Jaccard similarity of the word sets of two keys.
// Equal strings score 1.0; otherwise an empty side scores 0.
func Similarity(a, b string) float64 {
	if a == b {
		return 1.0
	}
	if a == "" || b == "" {
		return 0
	}
	left := wordSet(a)
	right := wordSet(b)
	union := len(left)
	shared := 0
	for w := range right {
		if _, ok := left[w]; ok {
			shared++
			continue
		}
		union++
	}
	if union == 0 {
		return 0
	}
	return float64(shared) / float64(union)
}

func wordSet(s string) map[string]struct{} {
	words := strings.Fields(s)
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}
