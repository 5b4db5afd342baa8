// Package cache holds what the search response caches share.
package cache

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/JakeFAU/spirits-scraper/internal/spirits"
)

// ErrMiss is returned when a key is absent or expired.
var ErrMiss = errors.New("cache miss")

// Key fingerprints a search query. Equal queries share a key.
func Key(h spirits.Hasher, q spirits.SearchQuery) (string, error) {
	raw, err := json.Marshal(q)
	if err != nil {
		return "", fmt.Errorf("encode query: %w", err)
	}
	sum, err := h.Hash(raw)
	if err != nil {
		return "", fmt.Errorf("hash query: %w", err)
	}
	return sum, nil
}
