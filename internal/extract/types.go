package extract

import (
	"regexp"
	"strings"
)

// DefaultType is assigned when no rule recognizes the spirit.
const DefaultType = "Spirit"

// Detection is the result of DetectType.
type Detection struct {
	Type       string
	SubType    string
	Confidence float64
}

type subTypeRule struct {
	name     string
	patterns []*regexp.Regexp
}

type typeRule struct {
	name     string
	patterns []*regexp.Regexp
	brands   []string
	exclude  []*regexp.Regexp
	subTypes []subTypeRule
}

func res(exprs ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(exprs))
	for i, e := range exprs {
		out[i] = regexp.MustCompile(`(?i)` + e)
	}
	return out
}

var flavored = res(`american\s+honey`, `honey\s+whiskey`, `cinnamon\s+whisky`, `apple\s+whisky`, `flavored`, `liqueur`)

var bourbonSubTypes = []subTypeRule{
	{"Bottled-in-Bond", res(`\bbottled[\s-]in[\s-]bond\b`, `\b100\s*proof\b`, `\bbib\b`)},
	{"Single Barrel", res(`\bsingle\s+barrel\b`, `\bsingle\s+cask\b`)},
	{"Small Batch", res(`\bsmall\s+batch\b`)},
	{"Cask Strength", res(`\bcask\s+strength\b`, `\bbarrel\s+proof\b`, `\bfull\s+proof\b`)},
	{"Wheated", res(`\bwheated\b`, `\bwheat\s+bourbon\b`, `\bwheat\s+whiskey\b`)},
	{"High Rye", res(`\bhigh\s+rye\b`)},
}

// typeRules are evaluated in priority order.
var typeRules = []typeRule{
	{
		name: "Tennessee Whiskey",
		patterns: res(`\btennessee\s+whiskey\b`, `\bjack\s+daniel['’]?s\b`, `\bgeorge\s+dickel\b`,
			`\buncle\s+nearest\b`, `\blincoln\s+county\s+process\b`),
		brands: []string{"jack daniel's", "george dickel", "uncle nearest", "benjamin prichard's"},
	},
	{
		name: "American Single Malt",
		patterns: res(`\bamerican\s+single\s+malt\b`, `\bsingle\s+malt\s+whiskey.*(?:usa|america|us)\b`,
			`\b(?:westland|balcones|stranahan)\b`, `\bsingle\s+malt\b.*\b(?:american|usa|us)\b`),
		brands: []string{"westland", "balcones", "stranahan's", "copperworks", "westward"},
	},
	{
		name:     "Single Malt",
		patterns: res(`\bsingle\s+malt\b`, `\b100%\s+malted\s+barley\b`),
		exclude:  res(`\bscotch\b`, `\birish\b`),
	},
	{
		name: "Bourbon",
		patterns: res(`\bbourbon\b`, `\bstraight\s+bourbon\b`, `\bkentucky\s+straight\s+bourbon\b`,
			`\bbottled[\s-]in[\s-]bond\s+bourbon\b`, `\bwheated\s+bourbon\b`, `\bhigh\s+rye\s+bourbon\b`),
		brands: []string{
			"buffalo trace", "maker's mark", "woodford reserve", "four roses", "wild turkey", "jim beam",
			"elijah craig", "knob creek", "bulleit", "eagle rare", "blanton's", "pappy van winkle",
			"w.l. weller", "e.h. taylor", "stagg", "booker's", "baker's", "basil hayden", "old forester",
			"heaven hill", "very old barton", "evan williams", "old grand-dad", "old crow", "early times",
			"larceny", "henry mckenna", "old fitzgerald", "rebel yell", "ancient age", "benchmark",
			"johnny drum", "green river", "blue run", "1792", "redemption",
		},
		subTypes: bourbonSubTypes,
	},
	{
		name:     "Rye Whiskey",
		patterns: res(`\brye\s+whiskey\b`, `\b100%\s+rye\b`, `\bmonongahela\s+rye\b`),
		brands: []string{
			"rittenhouse", "sazerac", "whistlepig", "high west", "bulleit rye", "old overholt", "pikesville",
			"templeton", "lot 40", "michter's rye", "russell's reserve rye", "thomas h. handy",
		},
		exclude: res(`\bhigh\s+rye\s+(?:bourbon|whiskey)\b`, `\bbourbon.*high\s+rye\b`),
	},
	{
		name: "Scotch",
		patterns: res(`\bscotch\b`, `\bhighland\b.*\bwhiske?y\b`, `\bislay\b.*\bwhiske?y\b`,
			`\bspeyside\b.*\bwhiske?y\b`, `\bcampbeltown\b.*\bwhiske?y\b`),
		brands: []string{
			"glenfiddich", "glenlivet", "macallan", "highland park", "balvenie", "lagavulin", "laphroaig",
			"ardbeg", "bowmore", "oban", "talisker", "johnnie walker", "chivas regal", "dewar's", "famous grouse",
		},
		subTypes: []subTypeRule{
			{"Single Malt", res(`\bsingle\s+malt\b`)},
			{"Blended", res(`\bblended\s+scotch\b`, `\bblended\s+whisky\b`)},
			{"Single Grain", res(`\bsingle\s+grain\b`)},
			{"Blended Malt", res(`\bblended\s+malt\b`)},
		},
	},
	{
		name:     "Irish Whiskey",
		patterns: res(`\birish\s+whiskey\b`, `\bwhiskey.*ireland\b`, `\b(?:jameson|bushmills|redbreast|powers|tullamore)\b`),
		brands:   []string{"green spot", "yellow spot", "midleton", "teeling", "connemara"},
	},
	{
		name:     "Japanese Whisky",
		patterns: res(`\bjapanese\s+whiske?y\b`, `\bwhiske?y.*japan\b`, `\b(?:suntory|nikka|yamazaki|hakushu|yoichi|miyagikyo)\b`),
		brands:   []string{"hibiki", "taketsuru", "chichibu", "akashi"},
	},
	{
		name:     "Canadian Whisky",
		patterns: res(`\bcanadian\s+whiske?y\b`, `\bwhiske?y.*canada\b`, `\bcrown\s+royal\b`),
		brands:   []string{"canadian club", "seagram's", "gibson's", "alberta premium", "pike creek", "forty creek", "canadian mist"},
	},
	{
		name: "Liqueur",
		patterns: res(`\bliqueur\b`, `\btriple\s+sec\b`, `\bamaretto\b`, `\blimoncello\b`, `\bschnapps\b`,
			`\bbailey'?s?\b`, `\bkahlua\b`, `\bgrand\s+marnier\b`, `\bcointreau\b`, `\bfireball\b`,
			`\bspiced\s+whiskey\b`),
		brands: []string{"chambord", "st. germain", "campari", "aperol", "drambuie", "frangelico", "disaronno", "chartreuse"},
	},
	{
		name:     "Whiskey",
		patterns: res(`\bwhiske?y\b`),
		exclude:  res(`\b(?:bourbon|rye|scotch|irish|japanese|canadian|tennessee)\b`),
	},
	{
		name:     "Tequila",
		patterns: res(`\btequila\b`, `\b100%\s+agave\b`, `\bagave\s+azul\b`),
		brands: []string{
			"patron", "don julio", "herradura", "espolon", "cazadores", "sauza", "jose cuervo", "hornitos",
			"milagro", "el jimador", "casamigos", "clase azul", "casa noble", "fortaleza",
		},
		subTypes: []subTypeRule{
			{"Extra Añejo", res(`\bextra\s+a[ñn]ejo\b`)},
			{"Blanco", res(`\bblanco\b`, `\bsilver\b`, `\bplata\b`)},
			{"Reposado", res(`\breposado\b`)},
			{"Añejo", res(`\ba[ñn]ejo\b`)},
			{"Cristalino", res(`\bcristalino\b`)},
		},
	},
	{
		name:     "Mezcal",
		patterns: res(`\bme[zs]cal\b`, `\bagave\s+espadin\b`, `\btobala\b`),
		brands:   []string{"del maguey", "montelobos", "ilegal", "el silencio", "bozal", "los amantes", "real minero"},
		subTypes: []subTypeRule{
			{"Joven", res(`\bjoven\b`)},
			{"Reposado", res(`\breposado\b`)},
			{"Añejo", res(`\ba[ñn]ejo\b`)},
		},
	},
	{
		name:     "Rum",
		patterns: res(`\brum\b`, `\brhum\b`, `\bron\b`, `\bcacha[çc]a\b`),
		brands: []string{
			"bacardi", "captain morgan", "malibu", "mount gay", "appleton", "plantation", "diplomatico",
			"flor de caña", "havana club", "kraken", "sailor jerry", "goslings", "pusser's",
		},
		subTypes: []subTypeRule{
			{"White", res(`\bwhite\s+rum\b`, `\bsilver\s+rum\b`, `\blight\s+rum\b`)},
			{"Gold", res(`\bgold\s+rum\b`, `\bamber\s+rum\b`)},
			{"Dark", res(`\bdark\s+rum\b`, `\bblack\s+rum\b`)},
			{"Spiced", res(`\bspiced\s+rum\b`)},
			{"Aged", res(`\baged\s+rum\b`, `\ba[ñn]ejo\s+rum\b`)},
			{"Overproof", res(`\boverproof\s+rum\b`, `\b151\s+rum\b`)},
			{"Rhum Agricole", res(`\brhum\s+agricole\b`)},
		},
	},
	{
		name:     "Gin",
		patterns: res(`\bgin\b`, `\blondon\s+dry\s+gin\b`),
		brands: []string{
			"tanqueray", "bombay", "hendrick's", "beefeater", "gordon's", "plymouth", "aviation",
			"the botanist", "monkey 47", "roku", "sipsmith", "gin mare",
		},
		exclude: res(`\bgin\s*(?:and|&)\s*(?:tonic|juice)\b`),
		subTypes: []subTypeRule{
			{"London Dry", res(`\blondon\s+dry\b`)},
			{"Old Tom", res(`\bold\s+tom\b`)},
			{"Navy Strength", res(`\bnavy\s+strength\b`)},
			{"Contemporary", res(`\bcontemporary\s+gin\b`, `\bnew\s+western\b`)},
		},
	},
	{
		name:     "Vodka",
		patterns: res(`\bvodka\b`),
		brands: []string{
			"absolut", "grey goose", "belvedere", "ketel one", "tito's", "stolichnaya", "smirnoff", "ciroc",
			"chopin", "russian standard", "finlandia", "reyka", "crystal head",
		},
	},
	{
		name:     "Cognac",
		patterns: res(`\bcognac\b`, `\b(?:xo|vsop|vs)\b.*\b(?:cognac|brandy)\b`, `\bgrande\s+champagne\b`, `\bpetite\s+champagne\b`),
		brands:   []string{"hennessy", "remy martin", "rémy martin", "martell", "courvoisier", "camus", "pierre ferrand", "delamain", "frapin"},
		subTypes: []subTypeRule{
			{"XXO", res(`\bxxo\b`, `\bextra\s+extra\s+old\b`)},
			{"VSOP", res(`\bvsop\b`, `\bvery\s+superior\s+old\s+pale\b`)},
			{"XO", res(`\bxo\b`, `\bextra\s+old\b`)},
			{"VS", res(`\bvs\b`, `\bvery\s+special\b`)},
		},
	},
	{
		name:     "Armagnac",
		patterns: res(`\b(?:bas[\s-])?armagnac\b`),
		brands:   []string{"chateau du tariquet", "delord", "janneau", "castarede", "darroze"},
	},
	{
		name:     "Brandy",
		patterns: res(`\bbrandy\b`, `\bpisco\b`),
		brands:   []string{"christian brothers", "paul masson", "korbel", "fundador", "cardinal mendoza"},
		exclude:  res(`\bcognac\b`, `\barmagnac\b`),
	},
	{
		name:     "Baijiu",
		patterns: res(`\bbaijiu\b`, `\bchinese\s+spirit\b`, `\bsorghum\s+spirit\b`),
		brands:   []string{"moutai", "wuliangye"},
	},
	{
		name:     "Absinthe",
		patterns: res(`\babsinthe\b`, `\bgreen\s+fairy\b`),
		brands:   []string{"pernod", "lucid", "kubler"},
	},
	{
		name:     "Aquavit",
		patterns: res(`\ba[qk]u?avit\b`),
		brands:   []string{"linie", "aalborg"},
	},
}

var rulesByName = func() map[string]typeRule {
	m := make(map[string]typeRule, len(typeRules))
	for _, r := range typeRules {
		m[r.name] = r
	}
	return m
}()

// brandTypes maps lowercased brand names straight to a type.
var brandTypes = map[string]string{
	"balcones":         "American Single Malt",
	"westland":         "American Single Malt",
	"stranahan's":      "American Single Malt",
	"stranahans":       "American Single Malt",
	"copperworks":      "American Single Malt",
	"westward":         "American Single Malt",
	"buffalo trace":    "Bourbon",
	"maker's mark":     "Bourbon",
	"makers mark":      "Bourbon",
	"woodford reserve": "Bourbon",
	"four roses":       "Bourbon",
	"wild turkey":      "Bourbon",
	"jim beam":         "Bourbon",
	"elijah craig":     "Bourbon",
	"knob creek":       "Bourbon",
	"eagle rare":       "Bourbon",
	"blanton's":        "Bourbon",
	"blantons":         "Bourbon",
	"pappy van winkle": "Bourbon",
	"w.l. weller":      "Bourbon",
	"e.h. taylor":      "Bourbon",
	"eh taylor":        "Bourbon",
	"larceny":          "Bourbon",
	"old forester":     "Bourbon",
	"heaven hill":      "Bourbon",
	"evan williams":    "Bourbon",
	"johnny drum":      "Bourbon",
	"green river":      "Bourbon",
	"blue run":         "Bourbon",
	"1792":             "Bourbon",
	"redemption":       "Bourbon",
	"jack daniel's":    "Tennessee Whiskey",
	"jack daniels":     "Tennessee Whiskey",
	"george dickel":    "Tennessee Whiskey",
	"uncle nearest":    "Tennessee Whiskey",
	"rittenhouse":      "Rye Whiskey",
	"sazerac":          "Rye Whiskey",
	"whistlepig":       "Rye Whiskey",
	"high west":        "Rye Whiskey",
	"old overholt":     "Rye Whiskey",
	"pikesville":       "Rye Whiskey",
	"templeton":        "Rye Whiskey",
	"glenfiddich":      "Scotch",
	"glenlivet":        "Scotch",
	"macallan":         "Scotch",
	"highland park":    "Scotch",
	"balvenie":         "Scotch",
	"lagavulin":        "Scotch",
	"laphroaig":        "Scotch",
	"ardbeg":           "Scotch",
	"johnnie walker":   "Scotch",
	"chivas regal":     "Scotch",
	"jameson":          "Irish Whiskey",
	"bushmills":        "Irish Whiskey",
	"redbreast":        "Irish Whiskey",
	"powers":           "Irish Whiskey",
	"tullamore dew":    "Irish Whiskey",
	"tullamore d.e.w.": "Irish Whiskey",
	"patron":           "Tequila",
	"don julio":        "Tequila",
	"herradura":        "Tequila",
	"espolon":          "Tequila",
	"cazadores":        "Tequila",
	"jose cuervo":      "Tequila",
	"casamigos":        "Tequila",
	"clase azul":       "Tequila",
	"grey goose":       "Vodka",
	"absolut":          "Vodka",
	"belvedere":        "Vodka",
	"ketel one":        "Vodka",
	"tito's":           "Vodka",
	"titos":            "Vodka",
	"smirnoff":         "Vodka",
	"stolichnaya":      "Vodka",
	"wheatley":         "Vodka",
	"tanqueray":        "Gin",
	"bombay":           "Gin",
	"hendrick's":       "Gin",
	"hendricks":        "Gin",
	"beefeater":        "Gin",
	"gordon's":         "Gin",
	"gordons":          "Gin",
	"bacardi":          "Rum",
	"captain morgan":   "Rum",
	"malibu":           "Rum",
	"mount gay":        "Rum",
	"appleton":         "Rum",
	"kraken":           "Rum",
	"sailor jerry":     "Rum",
	"hennessy":         "Cognac",
	"remy martin":      "Cognac",
	"rémy martin":      "Cognac",
	"martell":          "Cognac",
	"courvoisier":      "Cognac",
}

var (
	highRyeBourbon = regexp.MustCompile(`(?i)\bhigh\s+rye\s+bourbon\b`)
	bourbonWord    = regexp.MustCompile(`(?i)\bbourbon\b`)
	ryeWord        = regexp.MustCompile(`(?i)\brye\b`)
)

// DetectType classifies a spirit from its name, brand and description.
//
// Flavored products are recognized first, so a honey or cinnamon whiskey from a
// bourbon house is a Liqueur. Bulleit is split between bourbon and rye by name.
// A known brand maps directly to its type; otherwise the type rules are tried in
// priority order. Unrecognized spirits get DefaultType with confidence 0.3.
func DetectType(name, brandName, description string) Detection {
	text := strings.ToLower(name + " " + brandName + " " + description)

	for _, re := range flavored {
		if re.MatchString(text) {
			return Detection{Type: "Liqueur", Confidence: 0.9}
		}
	}

	b := strings.ToLower(strings.TrimSpace(brandName))
	if b == "bulleit" {
		switch {
		case highRyeBourbon.MatchString(name) || bourbonWord.MatchString(name):
			return Detection{Type: "Bourbon", SubType: "High Rye", Confidence: 0.95}
		case ryeWord.MatchString(name):
			return Detection{Type: "Rye Whiskey", Confidence: 0.95}
		default:
			return Detection{Type: "Bourbon", Confidence: 0.95}
		}
	}
	if t, ok := brandTypes[b]; ok {
		return Detection{Type: t, SubType: subTypeOf(rulesByName[t], text), Confidence: 0.95}
	}

	for _, r := range typeRules {
		if anyMatch(r.exclude, text) {
			continue
		}
		hasPattern := anyMatch(r.patterns, text)
		hasBrand := false
		for _, ind := range r.brands {
			if strings.Contains(text, ind) {
				hasBrand = true
				break
			}
		}
		if !hasPattern && !hasBrand {
			continue
		}
		confidence := 0.75
		switch {
		case hasPattern && hasBrand:
			confidence = 0.9
		case hasPattern:
			confidence = 0.8
		}
		return Detection{Type: r.name, SubType: subTypeOf(r, text), Confidence: confidence}
	}
	return Detection{Type: DefaultType, Confidence: 0.3}
}

func subTypeOf(r typeRule, text string) string {
	for _, st := range r.subTypes {
		if anyMatch(st.patterns, text) {
			return st.name
		}
	}
	return ""
}

func anyMatch(patterns []*regexp.Regexp, text string) bool {
	for _, re := range patterns {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}

var categories = map[string]string{
	"single malt":          "Single Malt Whiskey",
	"american single malt": "Single Malt Whiskey",
	"scotch":               "Scotch Whiskey",
	"bourbon":              "Bourbon",
	"rye whiskey":          "Rye Whiskey",
	"irish whiskey":        "Irish Whiskey",
	"japanese whisky":      "Japanese Whiskey",
	"canadian whisky":      "Canadian Whiskey",
	"tennessee whiskey":    "Tennessee Whiskey",
	"whiskey":              "Whiskey",
	"vodka":                "Vodka",
	"gin":                  "Gin",
	"rum":                  "Rum",
	"tequila":              "Tequila",
	"mezcal":               "Mezcal",
	"cognac":               "Cognac",
	"armagnac":             "Brandy",
	"brandy":               "Brandy",
	"liqueur":              "Liqueur",
}

// CategoryFor maps a detected type to its catalog category, "Other" when unmapped.
func CategoryFor(spiritType string) string {
	if c, ok := categories[strings.ToLower(strings.TrimSpace(spiritType))]; ok {
		return c
	}
	return "Other"
}

var countries = map[string]string{
	"Tennessee Whiskey":    "USA",
	"American Single Malt": "USA",
	"Bourbon":              "USA",
	"Rye Whiskey":          "USA",
	"Scotch":               "Scotland",
	"Irish Whiskey":        "Ireland",
	"Japanese Whisky":      "Japan",
	"Canadian Whisky":      "Canada",
	"Tequila":              "Mexico",
	"Mezcal":               "Mexico",
	"Cognac":               "France",
	"Armagnac":             "France",
	"Baijiu":               "China",
}

// CountryFor returns the country a type is tied to by law or convention.
func CountryFor(spiritType string) string {
	return countries[spiritType]
}

// categoryTypes lists the detected types accepted for a search category.
var categoryTypes = map[string][]string{
	"bourbon": {"Bourbon", "Whiskey", "Tennessee Whiskey"},
	"whiskey": {"Whiskey", "Bourbon", "Rye Whiskey", "Tennessee Whiskey", "Irish Whiskey", "Canadian Whisky", "Japanese Whisky", "American Single Malt", "Single Malt"},
	"scotch":  {"Scotch", "Single Malt"},
	"rye":     {"Rye Whiskey", "Whiskey"},
	"tequila": {"Tequila"},
	"mezcal":  {"Mezcal"},
	"rum":     {"Rum"},
	"vodka":   {"Vodka"},
	"gin":     {"Gin"},
	"cognac":  {"Cognac", "Brandy"},
}

// FitsCategory reports whether a detected type belongs in the searched category.
// Unknown categories accept types whose name contains the category.
func FitsCategory(category, spiritType string) bool {
	category = strings.ToLower(strings.TrimSpace(category))
	if category == "" {
		return true
	}
	allowed, ok := categoryTypes[category]
	if !ok {
		return strings.Contains(strings.ToLower(spiritType), category)
	}
	for _, t := range allowed {
		if t == spiritType {
			return true
		}
	}
	return false
}

// TypeForCategory returns the primary type of a search category, used when a
// listing on a category page carries too little text to classify.
func TypeForCategory(category string) (string, bool) {
	allowed, ok := categoryTypes[strings.ToLower(strings.TrimSpace(category))]
	if !ok || len(allowed) == 0 {
		return "", false
	}
	return allowed[0], true
}
