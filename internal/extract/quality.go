package extract

import (
	"regexp"
	"strings"

	"github.com/JakeFAU/spirits-scraper/internal/spirits"
)

var (
	detailedName   = regexp.MustCompile(`(?i)\d{2,4}|year|aged|single|barrel|batch|reserve`)
	trustedSources = []string{"totalwine.com", "klwines.com", "thewhiskyexchange.com", "wine.com", "masterofmalt.com"}
)

// QualityScore rates how complete a record is, from 0 to 100.
func QualityScore(r spirits.Record) int {
	score := 0
	if len(r.Name) > 5 {
		score += 10
		if detailedName.MatchString(r.Name) && !strings.Contains(strings.ToLower(r.Name), "shop") {
			score += 10
		}
	}
	if r.Price > 10 && r.Price < 5000 {
		score += 20
	}
	switch {
	case r.ABV >= MinABV && r.ABV <= MaxABV:
		score += 15
	case r.Proof >= 2*MinABV && r.Proof <= 2*MaxABV:
		score += 15
	}
	if len(r.Brand) > 2 && r.Brand != spirits.UnknownBrand {
		score += 15
	}
	if len(r.Description) > 30 {
		score += 10
		if len(r.Description) > 100 && !strings.Contains(r.Description, "JavaScript") {
			score += 5
		}
	}
	if strings.HasPrefix(r.ImageURL, "http") {
		score += 10
	}
	for _, d := range trustedSources {
		if strings.Contains(r.SourceURL, d) {
			score += 5
			break
		}
	}
	return min(score, 100)
}
