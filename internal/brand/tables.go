package brand

import "regexp"

// knownBrands are matched as case-insensitive prefixes in order and returned
// with their canonical spelling.
var knownBrands = []string{
	// Bourbon and American whiskey
	"Russell's Reserve", "Buffalo Trace", "Wild Turkey", "Four Roses",
	"Old Forester", "Maker's Mark", "Elijah Craig", "Evan Williams",
	"Henry McKenna", "Very Old Barton", "Old Grand-Dad", "Old Ezra",
	"I.W. Harper", "W.L. Weller", "George T. Stagg", "E.H. Taylor",
	"Joseph Magnus", "High West", "WhistlePig", "Angel's Envy",
	"Michter's", "Jack Daniel's", "George Dickel", "Uncle Nearest",
	"Garrison Brothers", "Balcones", "Westland", "Stranahan's",
	"Old Rip Van Winkle", "Pappy Van Winkle", "Rare Breed", "Eagle Rare",
	"Knob Creek", "Woodford Reserve", "Jim Beam", "Heaven Hill",
	"Black Maple Hill", "Blood Oath", "1792",

	// Rye
	"Sagamore Spirit", "Templeton", "Rittenhouse", "Sazerac",
	"Old Overholt", "Pikesville", "Dad's Hat", "New Riff",

	// Scotch and Irish
	"The Macallan", "Glenfiddich", "The Glenlivet", "Highland Park",
	"The Balvenie", "Johnnie Walker", "Chivas Regal", "Dewar's",
	"Green Spot", "Yellow Spot", "Red Spot", "Blue Spot",

	// Other spirits
	"Grey Goose", "Ketel One", "Don Julio", "Patrón", "Casamigos",
	"Captain Morgan", "Bacardi", "Mount Gay", "Hennessy", "Rémy Martin",
}

// validSingleWords are single-word brands accepted even where the generic
// word rules would reject them.
var validSingleWords = setOf(
	"Hennessy", "Patrón", "Casamigos", "Bacardi", "Absolut",
	"Tanqueray", "Bombay", "Belvedere", "Chopin", "Tito's",
	"Suntory", "Nikka", "Hibiki", "Yamazaki", "Hakushu",
	"Macallan", "Glenfiddich", "Glenlivet", "Lagavulin", "Laphroaig",
	"Ardbeg", "Talisker", "Oban", "Dalmore", "Balvenie",
	"Jameson", "Bushmills", "Redbreast", "Teeling", "Tullamore",
	"Bulleit", "Basil", "Larceny", "Blanton's", "Michter's",
	"WhistlePig", "Westland", "Balcones", "Stranahan's",
)

// invalidWords are generic words (lowercase) that are never a brand on their own
// and never start one.
var invalidWords = setOf(
	"old", "new", "four", "wild", "king", "best", "discover",
	"american", "scotch", "whiskey", "bourbon", "styles",
	"bedtime", "lewis", "england", "standard", "size",
	"spiritless", "kentucky", "tennessee", "highland",
	"black", "white", "red", "gold", "silver", "blue", "green",
	"rare", "fine", "premium", "small", "single", "straight",
)

// descriptorWords (lowercase) in second position mean the first word alone is the brand.
var descriptorWords = setOf(
	"bourbon", "whiskey", "whisky", "rye", "single", "barrel", "year", "old", "proof",
)

// invalidPhrases reject two-word fallbacks that read like copy rather than a brand.
var invalidPhrases = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^discover the`),
	regexp.MustCompile(`(?i)^best bourbon`),
	regexp.MustCompile(`(?i)^american whiskey`),
	regexp.MustCompile(`(?i)^scotch under`),
	regexp.MustCompile(`(?i)^styles of`),
	regexp.MustCompile(`(?i)^king of`),
	regexp.MustCompile(`(?i)^standard size`),
	regexp.MustCompile(`(?i)^spiritless kentucky`),
	regexp.MustCompile(`(?i)^old bourbon`),
	regexp.MustCompile(`(?i)^new whiskey`),
	regexp.MustCompile(`(?i)^four year`),
	regexp.MustCompile(`(?i)^wild bourbon`),
	regexp.MustCompile(`(?i)^king whiskey`),
}

// invalidBrandPatterns reject stored or supplied brand strings.
var invalidBrandPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^discover`),
	regexp.MustCompile(`(?i)^best\s`),
	regexp.MustCompile(`(?i)^scotch\s+under`),
	regexp.MustCompile(`(?i)^american\s+whiskey$`),
	regexp.MustCompile(`(?i)^styles\s+of`),
	regexp.MustCompile(`(?i)^king\s+of`),
	regexp.MustCompile(`(?i)^standard\s+size`),
	regexp.MustCompile(`(?i)^spiritless`),
}

// orthographic patterns capture brands by shape; group 1 is the brand.
var orthographic = []*regexp.Regexp{
	// initials: W.L. Weller, E.H. Taylor
	regexp.MustCompile(`^([A-Z]\.[A-Z]\.?\s+[A-Z][a-zA-Z]+)`),
	// possessive: Blanton's, Booker's
	regexp.MustCompile(`^([A-Z][a-zA-Z]+['’]s)(?:\s+[A-Z][a-zA-Z]+)?`),
	// Old Forester, Old Grand-Dad
	regexp.MustCompile(`^(Old\s+[A-Z][a-zA-Z-]+(?:\s+[A-Z][a-zA-Z]+)?)`),
	// The Macallan
	regexp.MustCompile(`^(The\s+[A-Z][a-zA-Z]+)`),
	// Four Roses, Three Chord
	regexp.MustCompile(`^((?:One|Two|Three|Four|Five|Six|Seven|Eight|Nine|Ten)\s+[A-Z][a-zA-Z]+)`),
}

var (
	leadingYear = regexp.MustCompile(`^(?:19|20)\d{2}\s+(\S.*)$`)
	allDigits   = regexp.MustCompile(`^\d+$`)
	nonSlug     = regexp.MustCompile(`[^a-z0-9]+`)
)

func setOf(items ...string) map[string]struct{} {
	out := make(map[string]struct{}, len(items))
	for _, it := range items {
		out[it] = struct{}{}
	}
	return out
}

func has(set map[string]struct{}, key string) bool {
	_, ok := set[key]
	return ok
}
