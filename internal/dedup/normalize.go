package dedup

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var (
	volumeTokens = []*regexp.Regexp{
		regexp.MustCompile(`\b\d+\s*ml\b`),
		regexp.MustCompile(`\b\d+\s*l\b`),
		regexp.MustCompile(`\b\d+\.\d+\s*l\b`),
	}
	bracketedYear = regexp.MustCompile(`\s*\(\d{4}\)\s*`)
	looseVintage  = regexp.MustCompile(`\s+20\d{2}(\s+)`)
	punctuation   = regexp.MustCompile(`[^\p{L}\p{N}_\s]`)
)

// NormalizeKey reduces a product name to the comparison key used for duplicate
// detection. Whiskey and whisky stay distinct, as do spirit category words.
func NormalizeKey(name string) string {
	if name == "" {
		return ""
	}
	key := strings.ToLower(norm.NFC.String(name))
	for _, re := range volumeTokens {
		key = re.ReplaceAllString(key, "")
	}
	key = bracketedYear.ReplaceAllString(key, " ")
	key = stripVintage(key)
	key = punctuation.ReplaceAllString(key, " ")
	return strings.Join(strings.Fields(key), " ")
}

// stripVintage drops a space-delimited 20YY token unless it introduces an age
// statement ("2024 year").
func stripVintage(key string) string {
	matches := looseVintage.FindAllStringSubmatchIndex(key, -1)
	if len(matches) == 0 {
		return key
	}
	var b strings.Builder
	last := 0
	for _, m := range matches {
		start, end := m[0], m[1]
		trailing := m[3] - m[2]
		if strings.HasPrefix(key[end:], "year") && trailing == 1 {
			continue
		}
		b.WriteString(key[last:start])
		b.WriteByte(' ')
		last = end
	}
	b.WriteString(key[last:])
	return b.String()
}
