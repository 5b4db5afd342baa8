package extract

import (
	"fmt"
	"strings"
)

// MaxQueries caps the number of queries generated per category.
const MaxQueries = 15

var categoryDistilleries = map[string][]string{
	"bourbon": {"Buffalo Trace", "Wild Turkey", "Four Roses", "Heaven Hill", "Jim Beam", "Maker's Mark"},
	"whiskey": {"Jack Daniel's", "Jameson", "Crown Royal", "Bushmills", "Redbreast"},
	"scotch":  {"Glenfiddich", "Macallan", "Glenlivet", "Ardbeg", "Highland Park"},
	"rye":     {"WhistlePig", "Bulleit Rye", "High West", "Sazerac", "Rittenhouse"},
	"tequila": {"Patron", "Don Julio", "Casamigos", "Espolon", "Herradura"},
	"rum":     {"Bacardi", "Captain Morgan", "Mount Gay", "Plantation", "Appleton"},
	"gin":     {"Tanqueray", "Bombay", "Hendrick's", "Beefeater", "Aviation"},
	"vodka":   {"Grey Goose", "Absolut", "Belvedere", "Ketel One", "Tito's"},
}

const socialExclusions = "-reddit -facebook -twitter -youtube"

// Queries builds high-yield search queries for a category: site-restricted
// searches against reputable retailers for its best-known distilleries, then
// multi-site and catalog-page searches. At most limit queries are returned,
// and never more than MaxQueries.
func Queries(category string, limit int) []string {
	if limit <= 0 || limit > MaxQueries {
		limit = MaxQueries
	}
	spiritType := strings.ToLower(strings.TrimSpace(category))
	distilleries, ok := categoryDistilleries[spiritType]
	if !ok {
		distilleries = []string{category, category}
	}

	var qs []string
	for _, d := range distilleries[:min(3, len(distilleries))] {
		qs = append(qs,
			fmt.Sprintf(`site:totalwine.com %q %s`, d, spiritType),
			fmt.Sprintf(`site:klwines.com %q products`, d),
			fmt.Sprintf(`site:thewhiskyexchange.com intitle:%q`, d),
			fmt.Sprintf(`site:wine.com %q spirits`, d),
		)
	}
	qs = append(qs,
		fmt.Sprintf(`(site:totalwine.com OR site:klwines.com) %s -gift -cigar %s`, spiritType, socialExclusions),
		fmt.Sprintf(`(site:thewhiskyexchange.com OR site:masterofmalt.com) %q %q`, distilleries[0], distilleries[1]),
		fmt.Sprintf(`(site:wine-searcher.com OR site:flaviar.com) %s buy price`, category),
		fmt.Sprintf(`"%s whiskey" buy online price %s`, category, socialExclusions),
		fmt.Sprintf(`"products" "in stock" %s bottle %s`, category, socialExclusions),
		fmt.Sprintf(`shop %s "ml" "proof" %s`, category, socialExclusions),
	)
	switch spiritType {
	case "bourbon":
		qs = append(qs,
			`"single barrel" bourbon price site:totalwine.com`,
			`"small batch" bourbon site:klwines.com`,
			`"bottled in bond" bourbon buy online`,
		)
	case "scotch":
		qs = append(qs,
			`"single malt" scotch whisky site:thewhiskyexchange.com`,
			`"aged 12 years" scotch price`,
			`"highland" OR "islay" scotch buy`,
		)
	}
	if len(qs) > limit {
		qs = qs[:limit]
	}
	return qs
}
