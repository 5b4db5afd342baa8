package cleaner

import (
	"regexp"
	"strings"
)

// brandCorrections maps known bad renderings (lowercase) to canonical brands.
var brandCorrections = map[string]string{
	"ba lcones":           "Balcones",
	"mckenzie":            "McKenzie",
	"mc kenzie":           "McKenzie",
	"redemption":          "Redemption",
	"woodinville":         "Woodinville",
	"ammunition":          "Ammunition",
	"starlight":           "Starlight",
	"wilderness trail":    "Wilderness Trail",
	"eh taylor":           "E.H. Taylor",
	"e h taylor":          "E.H. Taylor",
	"e.h. taylor":         "E.H. Taylor",
	"col eh taylor":       "Col. E.H. Taylor",
	"colonel eh taylor":   "Colonel E.H. Taylor",
	"barrel proof":        "Barrel Proof",
	"nashville barrel":    "Nashville Barrel Company",
	"nashville barrel co": "Nashville Barrel Company",
	"angels envy":         "Angel's Envy",
	"weller":              "W.L. Weller",
	"wl weller":           "W.L. Weller",
	"w l weller":          "W.L. Weller",
	"blantons":            "Blanton's",
	"makers mark":         "Maker's Mark",
	"maker s mark":        "Maker's Mark",
	"jack daniels":        "Jack Daniel's",
	"jack daniel":         "Jack Daniel's",
	"johnny walker":       "Johnnie Walker",
	"gray goose":          "Grey Goose",
	"capt morgan":         "Captain Morgan",
	"patron":              "Patrón",
	"hendricks":           "Hendrick's",
	"hendrick s":          "Hendrick's",
	"whistle pig":         "WhistlePig",
}

var macSpacing = regexp.MustCompile(`\b(Mc|Mac)\s+([A-Z])`)

// FixBrandCapitalization returns the canonical form of a known misspelled
// brand, otherwise the brand title-cased with Mc/Mac joins repaired.
func FixBrandCapitalization(brand string) string {
	brand = strings.TrimSpace(brand)
	if brand == "" {
		return brand
	}
	fixed := macSpacing.ReplaceAllString(brand, "${1}${2}")
	if canonical, ok := brandCorrections[strings.ToLower(fixed)]; ok {
		return canonical
	}
	if canonical, ok := brandCorrections[strings.ToLower(brand)]; ok {
		return canonical
	}
	return TitleCase(fixed)
}
