// Package catalog reads spirit listings out of retailer category pages.
package catalog

import (
	"bytes"
	"fmt"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/JakeFAU/spirits-scraper/internal/brand"
	"github.com/JakeFAU/spirits-scraper/internal/cleaner"
	"github.com/JakeFAU/spirits-scraper/internal/extract"
	"github.com/JakeFAU/spirits-scraper/internal/logging"
	"github.com/JakeFAU/spirits-scraper/internal/spirits"
)

// MaxProductsPerPage bounds the listings taken from one page.
const MaxProductsPerPage = 60

const maxNameLen = 150

// Parser extracts records using per-retailer selectors.
type Parser struct {
	logger *zap.Logger
}

// NewParser returns a Parser.
func NewParser(logger *zap.Logger) *Parser {
	return &Parser{logger: logging.OrNop(logger)}
}

// Supported reports whether pageURL belongs to a retailer with dedicated selectors.
func Supported(pageURL string) bool {
	u, err := url.Parse(pageURL)
	if err != nil {
		return false
	}
	_, ok := siteFor(u.Hostname())
	return ok
}

// Parse returns the listings on the page that belong to category. An empty
// category keeps everything.
func (p *Parser) Parse(pageURL string, body []byte, category string) ([]spirits.Record, error) {
	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, fmt.Errorf("parse page url: %w", err)
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse catalog html: %w", err)
	}
	sel, known := siteFor(base.Hostname())

	var out []spirits.Record
	seen := make(map[string]struct{})
	doc.Find(sel.item).EachWithBreak(func(_ int, item *goquery.Selection) bool {
		rec, ok := listing(sel, known, base, item)
		if !ok {
			return true
		}
		key := strings.ToLower(rec.Name)
		if _, dup := seen[key]; dup {
			return true
		}
		seen[key] = struct{}{}
		rec = classify(rec, category)
		if !extract.FitsCategory(category, rec.Type) {
			return true
		}
		out = append(out, rec)
		return len(out) < MaxProductsPerPage
	})

	p.logger.Debug("parsed catalog page",
		zap.String("url", pageURL),
		zap.Bool("known_site", known),
		zap.Int("products", len(out)),
	)
	return out, nil
}

func listing(sel site, known bool, base *url.URL, item *goquery.Selection) (spirits.Record, bool) {
	name := text(item, sel.name)
	if name == "" && item.Children().Length() <= 1 {
		// The item is itself the name element, e.g. an "h2 a" link.
		name = strings.TrimSpace(item.Text())
	}
	name = cleaner.CleanProductName(name)
	if !acceptName(name, known) {
		return spirits.Record{}, false
	}

	rec := spirits.Record{
		Name:        name,
		Description: text(item, sel.detail),
		Volume:      text(item, sel.volume),
		SourceURL:   base.String(),
	}
	if price, ok := extract.ParsePrice(text(item, sel.price)); ok {
		rec.Price = price
	} else if all := item.Text(); !known && strings.Contains(all, "$") {
		if price, ok := extract.ParsePrice(all); ok {
			rec.Price = price
		}
	}
	if abv, ok := extract.ParseABV(text(item, sel.abv)); ok {
		rec.ABV = abv
	}
	if rec.Volume == "" {
		if v, ok := extract.ParseVolume(name); ok {
			rec.Volume = v
		} else {
			rec.Volume = sel.defaultVolume
		}
	}
	if link := resolve(base, attr(item, sel.link, "href")); link != "" {
		rec.SourceURL = link
	}
	rec.ImageURL = resolve(base, first(attr(item, sel.image, "src"), attr(item, sel.image, "data-src")))
	return rec, true
}

func acceptName(name string, known bool) bool {
	if !known {
		return extract.IsValidProductName(name)
	}
	n := utf8.RuneCountInString(name)
	if n <= 3 || n > maxNameLen {
		return false
	}
	return !strings.Contains(strings.ToLower(name), "gift card")
}

// classify fills brand, type and score. Listings on a category page that are
// too terse to classify take the category's primary type.
func classify(rec spirits.Record, category string) spirits.Record {
	rec.Brand = brand.Resolve("", rec.Name)
	d := extract.DetectType(rec.Name, rec.Brand, rec.Description)
	rec.Type, rec.SubType = d.Type, d.SubType
	if rec.Type == extract.DefaultType {
		if t, ok := extract.TypeForCategory(category); ok {
			rec.Type = t
		}
	}
	rec.Category = extract.CategoryFor(rec.Type)
	rec.OriginCountry = extract.CountryFor(rec.Type)
	if rec.AgeStatement == "" {
		rec.AgeStatement, _ = extract.ParseAge(rec.Name)
	}
	if rec.ABV == 0 {
		rec.ABV, _ = extract.ParseABV(rec.Description)
	}
	rec.QualityScore = extract.QualityScore(rec)
	return rec
}

func text(item *goquery.Selection, selector string) string {
	if selector == "" {
		return ""
	}
	return strings.Join(strings.Fields(item.Find(selector).First().Text()), " ")
}

func attr(item *goquery.Selection, selector, name string) string {
	if selector == "" {
		return ""
	}
	found := item.Find(selector).First()
	if found.Length() == 0 && item.Is(selector) {
		found = item
	}
	v, _ := found.Attr(name)
	return strings.TrimSpace(v)
}

func resolve(base *url.URL, ref string) string {
	if ref == "" || strings.HasPrefix(ref, "data:") {
		return ""
	}
	u, err := base.Parse(ref)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return ""
	}
	return u.String()
}

func first(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
