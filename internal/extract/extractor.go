package extract

import (
	"regexp"
	"strings"

	"github.com/JakeFAU/spirits-scraper/internal/brand"
	"github.com/JakeFAU/spirits-scraper/internal/cleaner"
	"github.com/JakeFAU/spirits-scraper/internal/spirits"
)

// MaxSnippetProducts bounds how many products are read out of one snippet.
const MaxSnippetProducts = 5

const maxListingLen = 80

// DefaultSkipDomains are sites whose results never describe a product.
var DefaultSkipDomains = []string{"buffalotracedaily.com", "epicurious.com", "ohlq.com", "reddit.com", "facebook.com"}

var (
	titlePrice     = regexp.MustCompile(`\$(\d+\.?\d*)`)
	snippetPriced  = regexp.MustCompile(`(?i)([A-Za-z\s&'.-]+(?:Whiskey|Bourbon|Rum|Vodka|Gin|Tequila|Scotch|Rye)[A-Za-z\s&'.-]*?)\s*[-–.]+\s*\$(\d+\.?\d*)`)
	snippetListing = regexp.MustCompile(`(?i)(?:^|\n|;|•|·|\|)\s*([A-Z][A-Za-z\s&'.-]+(?:Whiskey|Bourbon|Rum|Vodka|Gin|Tequila|Scotch|Rye)[A-Za-z\s&'.-]*?)(?:\s*[-–]|$|\n|;)`)
	ellipsis       = regexp.MustCompile(`\.\.\.`)
	collapseSpaces = regexp.MustCompile(`\s+`)
)

// Extractor mines search results for spirit records.
type Extractor struct {
	skipDomains []string
}

// New returns an Extractor that ignores results from skipDomains. A nil slice
// selects DefaultSkipDomains.
func New(skipDomains []string) *Extractor {
	if skipDomains == nil {
		skipDomains = DefaultSkipDomains
	}
	return &Extractor{skipDomains: skipDomains}
}

// Extract returns the records found in item for the searched category. Records
// whose detected type does not belong to category are dropped.
func (e *Extractor) Extract(item spirits.SearchItem, category string) []spirits.Record {
	for _, d := range e.skipDomains {
		if strings.Contains(item.Link, d) {
			return nil
		}
	}

	var found []spirits.Record
	add := func(r spirits.Record) {
		for _, existing := range found {
			if strings.EqualFold(existing.Name, r.Name) {
				return
			}
		}
		found = append(found, r)
	}

	for _, r := range fromProducts(item) {
		add(r)
	}
	if r, ok := fromMetatags(item); ok {
		add(r)
	}
	if r, ok := fromTitle(item); ok {
		add(r)
	}
	for _, r := range fromSnippet(item) {
		add(r)
	}
	if len(found) > 0 {
		enrichFirst(&found[0], item)
	}

	out := found[:0]
	for _, r := range found {
		r = finish(r, item)
		if !FitsCategory(category, r.Type) {
			continue
		}
		out = append(out, r)
	}
	return out
}

func fromProducts(item spirits.SearchItem) []spirits.Record {
	var out []spirits.Record
	for _, p := range item.Pagemap.Products {
		name := p["name"]
		if len(name) <= 5 || strings.Contains(strings.ToLower(name), "gift card") {
			continue
		}
		r := spirits.Record{
			Name:        cleaner.FixTextSpacing(name),
			Brand:       p["brand"],
			Description: p["description"],
			ImageURL:    p["image"],
			SourceURL:   item.Link,
		}
		for _, raw := range []string{p["price"], offer(item, "price"), offer(item, "lowprice")} {
			if price, ok := ParsePrice(raw); ok {
				r.Price = price
				break
			}
		}
		out = append(out, r)
	}
	return out
}

func offer(item spirits.SearchItem, key string) string {
	for _, o := range item.Pagemap.Offers {
		if v := o[key]; v != "" {
			return v
		}
	}
	return ""
}

func fromMetatags(item spirits.SearchItem) (spirits.Record, bool) {
	pm := item.Pagemap
	name := first(pm.Metatag("og:title"), pm.Metatag("product:name"), pm.Metatag("twitter:title"))
	if name == "" || !IsValidProductName(name) {
		return spirits.Record{}, false
	}
	r := spirits.Record{
		Name:        cleaner.CleanProductName(name),
		Brand:       first(pm.Metatag("product:brand"), pm.Metatag("og:brand")),
		Description: first(pm.Metatag("og:description"), pm.Metatag("description")),
		ImageURL:    first(pm.Metatag("og:image"), pm.Metatag("twitter:image")),
		SourceURL:   item.Link,
	}
	r.Price, _ = ParsePrice(first(pm.Metatag("product:price:amount"), pm.Metatag("product:price"), pm.Metatag("og:price:amount")))
	return r, true
}

func fromTitle(item spirits.SearchItem) (spirits.Record, bool) {
	if !IsValidProductName(item.Title) {
		return spirits.Record{}, false
	}
	r := spirits.Record{Name: cleaner.CleanProductName(item.Title), SourceURL: item.Link}
	if m := titlePrice.FindStringSubmatch(item.Title); m != nil {
		r.Price, _ = ParsePrice(m[1])
	}
	return r, true
}

func fromSnippet(item spirits.SearchItem) []spirits.Record {
	if item.Snippet == "" {
		return nil
	}
	var out []spirits.Record
	seen := map[string]bool{}
	push := func(name string, price float64) {
		clean := cleaner.CleanProductName(name)
		key := strings.ToLower(clean)
		if seen[key] {
			return
		}
		seen[key] = true
		out = append(out, spirits.Record{Name: clean, Price: price, SourceURL: item.Link})
	}

	for _, m := range snippetPriced.FindAllStringSubmatch(item.Snippet, -1) {
		name := strings.TrimSpace(m[1])
		if !IsValidProductName(name) {
			continue
		}
		price, _ := ParsePrice(m[2])
		push(name, price)
	}
	for _, m := range snippetListing.FindAllStringSubmatch(item.Snippet, -1) {
		name := strings.TrimSpace(m[1])
		if !IsValidProductName(name) || len(name) >= maxListingLen {
			continue
		}
		push(name, 0)
	}
	if len(out) > MaxSnippetProducts {
		out = out[:MaxSnippetProducts]
	}
	return out
}

// enrichFirst fills gaps in the leading record from the rest of the result.
func enrichFirst(r *spirits.Record, item spirits.SearchItem) {
	if r.Price == 0 {
		r.Price, _ = snippetPrice(item.Snippet)
	}
	if r.ABV == 0 {
		r.ABV, _ = ParseABV(item.Snippet)
	}
	if r.Proof == 0 {
		r.Proof, _ = ParseProof(item.Snippet)
	}
	if r.ImageURL == "" {
		r.ImageURL = item.Pagemap.ImageURL()
	}
	if r.Description != "" {
		return
	}
	meta := first(item.Pagemap.Metatag("og:description"), item.Pagemap.Metatag("description"))
	if len(meta) > 20 && !strings.Contains(meta, "JavaScript") {
		r.Description = meta
		return
	}
	if len(item.Snippet) > 50 {
		s := strings.TrimSpace(collapseSpaces.ReplaceAllString(ellipsis.ReplaceAllString(item.Snippet, ""), " "))
		if len(s) > 30 && !strings.Contains(s, "Buy now") {
			r.Description = s
		}
	}
}

// finish derives brand, classification and score for an extracted record.
func finish(r spirits.Record, item spirits.SearchItem) spirits.Record {
	r.Brand = brand.Resolve(strings.TrimSpace(r.Brand), r.Name)
	d := DetectType(r.Name, r.Brand, r.Description)
	r.Type, r.SubType = d.Type, d.SubType
	r.Category = CategoryFor(r.Type)
	r.OriginCountry = CountryFor(r.Type)
	if r.ABV == 0 {
		r.ABV, _ = ParseABV(r.Description)
	}
	if r.Volume == "" {
		r.Volume, _ = ParseVolume(r.Name + " " + item.Snippet)
	}
	if r.AgeStatement == "" {
		r.AgeStatement, _ = ParseAge(r.Name)
	}
	if r.SourceURL == "" {
		r.SourceURL = item.Link
	}
	r.QualityScore = QualityScore(r)
	return r
}

func first(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
