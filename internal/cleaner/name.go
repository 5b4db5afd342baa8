package cleaner

import (
	"regexp"
	"strings"
)

var retailerSuffixes = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\s*[-|]\s*(Buy|Shop|Store|Online|Price).*$`),
	regexp.MustCompile(`(?i)\s*[-|]\s*(Total Wine|Wine\.com|K&L|Whisky Exchange|The Whisky Exchange|Master of Malt|Drizly|ReserveBar|Caskers|Flaviar).*$`),
	regexp.MustCompile(`(?i)\s+at\s+(Total Wine|Drizly|Wine\.com|ReserveBar|Caskers)\b.*$`),
	regexp.MustCompile(`\s*\(\d+\)\s*$`),
	regexp.MustCompile(`\s*[-–—]\s*$`),
	regexp.MustCompile(`(?i)\s+Spirits\s*$`),
}

var nameNoise = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b\d+\s*m\s*l\b`),
	regexp.MustCompile(`(?i)\b\d+\s*liter\b`),
	regexp.MustCompile(`(?i)\b\d+\.\d+\s*l\b`),
	regexp.MustCompile(`(?i)\b\d+\s*l\b`),
	regexp.MustCompile(`\$[\d,]+\.?\d*`),
	regexp.MustCompile(`(?i)\bon\s+whisky\s+connosr\b`),
	regexp.MustCompile(`(?i)\bwhiskey\s+in\s+my\s+wedding\s+ring\b`),
	regexp.MustCompile(`(?i)\bin\s+depth\b`),
	regexp.MustCompile(`(?i)\bcomparison\b`),
	regexp.MustCompile(`(?i)\breview\b`),
	regexp.MustCompile(`(?i)\b\d[\d,]*\s+reviews?\b`),
}

var (
	bracketedVintage = regexp.MustCompile(`\s*\(\d{4}\)\s*`)
	bottledInBond    = regexp.MustCompile(`(?i)bottled\s*-?\s*in\s*-?\s*bond`)
	hyphenSpacing    = regexp.MustCompile(`\s*-\s*`)
	apostropheSpace  = regexp.MustCompile(`\s*'\s*`)
	edgeJunk         = regexp.MustCompile(`^[\s\-,]+|[\s\-,]+$`)
	strayBrackets    = regexp.MustCompile(`[\[\]{}]`)
)

// CleanProductName strips retailer suffixes and SKU markers from a page title
// and repairs its spacing.
func CleanProductName(title string) string {
	s := strings.TrimSpace(title)
	for _, re := range retailerSuffixes {
		s = re.ReplaceAllString(s, "")
	}
	return FixTextSpacing(strings.TrimSpace(s))
}

// NormalizeName produces the display form of a spirit name: volumes, prices
// and review text removed, Bottled in Bond spelled one way, title-cased.
func NormalizeName(name string) string {
	s := RemoveEmptyParentheses(name)
	for _, re := range nameNoise {
		s = re.ReplaceAllString(s, "")
	}
	s = bracketedVintage.ReplaceAllString(s, " ")
	s = bottledInBond.ReplaceAllString(s, "Bottled in Bond")
	s = anySpace.ReplaceAllString(s, " ")
	s = hyphenSpacing.ReplaceAllString(s, "-")
	s = apostropheSpace.ReplaceAllString(s, "'")
	s = edgeJunk.ReplaceAllString(s, "")
	s = strayBrackets.ReplaceAllString(s, "")
	return strings.TrimSpace(TitleCase(RemoveEmptyParentheses(s)))
}
