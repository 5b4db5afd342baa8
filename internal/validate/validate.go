// Package validate cleans extracted records before they are stored.
package validate

import (
	"fmt"
	"math"
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/JakeFAU/spirits-scraper/internal/brand"
	"github.com/JakeFAU/spirits-scraper/internal/cleaner"
	"github.com/JakeFAU/spirits-scraper/internal/spirits"
)

// MaxDescription is the longest description kept, in runes.
const MaxDescription = 2000

// Price ranges stored with each spirit.
const (
	Budget      = "budget"
	MidRange    = "mid-range"
	Premium     = "premium"
	Luxury      = "luxury"
	UltraLuxury = "ultra-luxury"
)

var priceRanges = []string{Budget, MidRange, Premium, Luxury, UltraLuxury}

var whitespace = regexp.MustCompile(`\s+`)

// ABV returns v as an alcohol-by-volume figure rounded to one decimal.
// Values between 75 and 150 are read as proof and halved. Anything else
// outside 20..75 is rejected.
func ABV(v float64) (float64, bool) {
	switch {
	case v >= 20 && v <= 75:
		return math.Round(v*10) / 10, true
	case v >= 40 && v <= 150:
		return math.Round(v/2*10) / 10, true
	default:
		return 0, false
	}
}

// PriceRange buckets a USD price.
func PriceRange(price float64) string {
	switch {
	case price <= 0:
		return ""
	case price < 30:
		return Budget
	case price < 60:
		return MidRange
	case price < 150:
		return Premium
	case price < 500:
		return Luxury
	default:
		return UltraLuxury
	}
}

// NormalizePriceRange maps a stored range or a "$$$" rating onto the range
// vocabulary. Unrecognized input becomes mid-range.
func NormalizePriceRange(s string) string {
	s = strings.TrimSpace(s)
	for _, r := range priceRanges {
		if strings.EqualFold(s, r) {
			return r
		}
	}
	switch n := strings.Count(s, "$"); {
	case n == 0:
		return MidRange
	case n >= len(priceRanges):
		return UltraLuxury
	default:
		return priceRanges[n-1]
	}
}

// URL reports whether s is an absolute http(s) URL.
func URL(s string) bool {
	u, err := url.Parse(strings.TrimSpace(s))
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// TrimToLength shortens s to at most limit runes, preferring a sentence end in
// the last fifth and otherwise cutting at a word and appending "...".
func TrimToLength(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	trimmed := string([]rune(s)[:limit])
	if i := strings.LastIndex(trimmed, "."); i > 0 && float64(utf8.RuneCountInString(trimmed[:i])) > float64(limit)*0.8 {
		return trimmed[:i+1]
	}
	if i := strings.LastIndex(trimmed, " "); i > 0 {
		return trimmed[:i] + "..."
	}
	return trimmed
}

// Record cleans r for storage. The name is required; a missing or generic brand
// is derived from the name. Unusable ABV and URLs are dropped rather than
// rejected.
func Record(r spirits.Record) (spirits.Record, error) {
	r.Name = cleaner.NormalizeName(whitespace.ReplaceAllString(r.Name, " "))
	if r.Name == "" {
		return spirits.Record{}, fmt.Errorf("name is required: %w", spirits.ErrInvalidRecord)
	}

	b := strings.TrimSpace(r.Brand)
	if b != "" && b != spirits.UnknownBrand {
		b = cleaner.FixBrandCapitalization(b)
	}
	r.Brand = brand.Resolve(b, r.Name)

	if r.ABV != 0 {
		r.ABV, _ = ABV(r.ABV)
	}
	if r.Price < 0 {
		r.Price = 0
	}
	if r.PriceRange != "" {
		r.PriceRange = NormalizePriceRange(r.PriceRange)
	} else {
		r.PriceRange = PriceRange(r.Price)
	}

	r.Description = TrimToLength(strings.TrimSpace(whitespace.ReplaceAllString(r.Description, " ")), MaxDescription)
	if r.ImageURL != "" && !URL(r.ImageURL) {
		r.ImageURL = ""
	}
	if r.SourceURL != "" && !URL(r.SourceURL) {
		r.SourceURL = ""
	}
	return r, nil
}

// Warnings lists the gaps in a cleaned record that lower its usefulness.
func Warnings(r spirits.Record) []string {
	var out []string
	if r.ABV == 0 {
		out = append(out, "missing ABV")
	}
	if len(r.Description) < 50 {
		out = append(out, "description is missing or too short")
	}
	if r.ImageURL == "" {
		out = append(out, "no image URL")
	}
	if r.PriceRange == "" {
		out = append(out, "no price information")
	}
	if r.Type == "" || r.Type == "Spirit" {
		out = append(out, "spirit type not identified")
	}
	if r.OriginCountry == "" {
		out = append(out, "origin country not identified")
	}
	id := strings.ToLower(r.Brand + " " + r.Name)
	if strings.Contains(id, "test") || strings.Contains(id, "sample") {
		out = append(out, "may be test or sample data")
	}
	return out
}
