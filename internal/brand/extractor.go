// Package brand derives a canonical brand from a free-text spirit name.
package brand

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"github.com/JakeFAU/spirits-scraper/internal/spirits"
)

// rule inspects a trimmed name and returns a brand when it is confident.
// A rule may also return (spirits.UnknownBrand, true) to stop evaluation.
type rule func(name string) (string, bool)

// rules run in order; the first match wins.
var rules = []rule{
	knownPrefix,
	orthographicShape,
	leadingWords,
}

// Extract returns the best-guess brand for name, or spirits.UnknownBrand.
// Leading vintage years (1900-2099) are stripped repeatedly before matching.
func Extract(name string) string {
	name = strings.TrimSpace(norm.NFC.String(name))
	for {
		m := leadingYear.FindStringSubmatch(name)
		if m == nil {
			break
		}
		name = strings.TrimSpace(m[1])
	}
	if name == "" {
		return spirits.UnknownBrand
	}
	for _, r := range rules {
		if b, ok := r(name); ok {
			return b
		}
	}
	return spirits.UnknownBrand
}

func knownPrefix(name string) (string, bool) {
	lower := strings.ToLower(name)
	for _, b := range knownBrands {
		if strings.HasPrefix(lower, strings.ToLower(b)) {
			return b, true
		}
	}
	return "", false
}

func orthographicShape(name string) (string, bool) {
	for _, re := range orthographic {
		if m := re.FindStringSubmatch(name); m != nil {
			return strings.TrimSpace(m[1]), true
		}
	}
	return "", false
}

func leadingWords(name string) (string, bool) {
	words := strings.Fields(name)
	first := words[0]
	if len(words) == 1 {
		return singleWord(first), true
	}
	if has(invalidWords, strings.ToLower(first)) && !has(validSingleWords, first) {
		return spirits.UnknownBrand, true
	}
	second := words[1]
	if has(descriptorWords, strings.ToLower(second)) || allDigits.MatchString(second) {
		return first, true
	}
	phrase := first + " " + second
	for _, re := range invalidPhrases {
		if re.MatchString(phrase) {
			return spirits.UnknownBrand, true
		}
	}
	return phrase, true
}

func singleWord(word string) string {
	if has(validSingleWords, word) {
		return word
	}
	if has(invalidWords, strings.ToLower(word)) {
		return spirits.UnknownBrand
	}
	first, _ := utf8.DecodeRuneInString(word)
	if utf8.RuneCountInString(word) < 3 || !unicode.IsUpper(first) {
		return spirits.UnknownBrand
	}
	return word
}

// IsValid reports whether brand looks like a real brand rather than copy text.
func IsValid(brand string) bool {
	if brand == "" || brand == spirits.UnknownBrand || utf8.RuneCountInString(brand) < 2 {
		return false
	}
	if !strings.Contains(brand, " ") && has(invalidWords, strings.ToLower(brand)) && !has(validSingleWords, brand) {
		return false
	}
	for _, re := range invalidBrandPatterns {
		if re.MatchString(brand) {
			return false
		}
	}
	return true
}

// Resolve keeps brand when it is valid and otherwise extracts one from name.
func Resolve(brand, name string) string {
	if IsValid(brand) {
		return brand
	}
	return Extract(name)
}

// Slug returns the URL-safe identifier used for brand rows.
func Slug(brand string) string {
	s := strings.ToLower(norm.NFD.String(brand))
	s = strings.Map(func(r rune) rune {
		if unicode.Is(unicode.Mn, r) || r == '\'' || r == '’' {
			return -1
		}
		return r
	}, s)
	return strings.Trim(nonSlug.ReplaceAllString(s, "-"), "-")
}
