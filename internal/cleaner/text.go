package cleaner

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	emptyBrackets = []*regexp.Regexp{
		regexp.MustCompile(`\(\s*\)`),
		regexp.MustCompile(`\[\s*\]`),
		regexp.MustCompile(`\{\s*\}`),
	}
	multiSpace = regexp.MustCompile(`\s{2,}`)
	anySpace   = regexp.MustCompile(`\s+`)

	camelJoin  = regexp.MustCompile(`([a-z])([A-Z])`)
	digitAlpha = regexp.MustCompile(`(\d)([A-Za-z])`)
	alphaDigit = regexp.MustCompile(`([A-Za-z])(\d)`)
	mcSpacing  = regexp.MustCompile(`\b(Mc|Mac) ([A-Z])`)
)

// compoundJoins are CamelCase runs that appear in retailer titles.
var compoundJoins = strings.NewReplacer(
	"SingleMalt", "Single Malt",
	"SmallBatch", "Small Batch",
	"SingleBarrel", "Single Barrel",
	"LimitedEdition", "Limited Edition",
	"SpecialRelease", "Special Release",
	"CaskStrength", "Cask Strength",
	"BottledInBond", "Bottled in Bond",
	"StraightBourbon", "Straight Bourbon",
	"DoubleOaked", "Double Oaked",
	"TripleDistilled", "Triple Distilled",
)

// protectedWords survive camel-case splitting.
var protectedWords = strings.NewReplacer(
	"Whistle Pig", "WhistlePig",
	"Glen Dronach", "GlenDronach",
	"Glen Allachie", "GlenAllachie",
	"De Kuyper", "DeKuyper",
)

// RemoveEmptyParentheses drops empty (), [] and {} groups and collapses spaces.
func RemoveEmptyParentheses(s string) string {
	if s == "" {
		return ""
	}
	for _, re := range emptyBrackets {
		s = re.ReplaceAllString(s, "")
	}
	return strings.TrimSpace(multiSpace.ReplaceAllString(s, " "))
}

// FixTextSpacing splits words that markup stripping glued together
// ("12YearOld" becomes "12 Year Old") and collapses whitespace.
func FixTextSpacing(s string) string {
	if s == "" {
		return ""
	}
	s = compoundJoins.Replace(s)
	s = camelJoin.ReplaceAllString(s, "${1} ${2}")
	s = digitAlpha.ReplaceAllString(s, "${1} ${2}")
	s = alphaDigit.ReplaceAllString(s, "${1} ${2}")
	s = mcSpacing.ReplaceAllString(s, "${1}${2}")
	s = protectedWords.Replace(s)
	s = strings.TrimSpace(anySpace.ReplaceAllString(s, " "))
	return RemoveEmptyParentheses(s)
}

// lowerJoiners stay lowercase inside titles.
var lowerJoiners = map[string]struct{}{
	"of": {}, "and": {}, "the": {}, "at": {}, "in": {}, "on": {}, "by": {}, "for": {}, "with": {}, "&": {},
}

// TitleCase capitalizes each word, keeping joiners lowercase and leaving
// initials ("W.L."), short acronyms ("XO", "VSOP") and Mc/Mac names intact.
func TitleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		lower := strings.ToLower(w)
		if _, ok := lowerJoiners[lower]; ok && i > 0 {
			words[i] = lower
			continue
		}
		if keepCase(w) {
			continue
		}
		words[i] = capitalize(lower)
	}
	return strings.Join(words, " ")
}

func keepCase(w string) bool {
	if strings.Contains(w, ".") {
		return true
	}
	if macName(w, "Mc") || macName(w, "Mac") {
		return true
	}
	letters := 0
	for _, r := range w {
		if unicode.IsLetter(r) {
			if !unicode.IsUpper(r) {
				return false
			}
			letters++
		}
	}
	return letters > 0 && letters <= 4
}

func macName(w, prefix string) bool {
	if !strings.HasPrefix(w, prefix) || len(w) <= len(prefix) {
		return false
	}
	r, _ := utf8.DecodeRuneInString(w[len(prefix):])
	return unicode.IsUpper(r)
}

// capitalize upper-cases the first letter of each hyphenated part.
func capitalize(w string) string {
	parts := strings.Split(w, "-")
	for i, p := range parts {
		r, size := utf8.DecodeRuneInString(p)
		if r == utf8.RuneError {
			continue
		}
		parts[i] = string(unicode.ToUpper(r)) + p[size:]
	}
	return strings.Join(parts, "-")
}
