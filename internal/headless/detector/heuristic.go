// Package detector decides when a catalog page must be re-fetched with a headless browser.
package detector

import (
	"bytes"
	"net/http"

	"github.com/PuerkitoBio/goquery"

	"github.com/JakeFAU/spirits-scraper/internal/spirits"
)

const defaultThreshold = 2048

// Heuristic promotes pages that look script-rendered and show no product markup.
type Heuristic struct {
	// BodyLengthThreshold is the size under which a script-heavy page counts as a shell.
	BodyLengthThreshold int
}

// NewHeuristic creates a detector. A zero threshold uses 2 KiB.
func NewHeuristic(threshold int) *Heuristic {
	if threshold <= 0 {
		threshold = defaultThreshold
	}
	return &Heuristic{BodyLengthThreshold: threshold}
}

// appShells match the mount points of client-rendered storefronts.
const appShells = `#__next, #root, #app, [data-reactroot], [ng-app], [data-server-rendered]`

// productMarkup matches listings that are already present in static HTML.
const productMarkup = `[itemtype*="Product"], .product-card, .product-tile, .product-item, ` +
	`[data-product-id], script[type="application/ld+json"]`

var _ spirits.HeadlessDetector = (*Heuristic)(nil)

// ShouldPromote reports whether the static probe needs a headless re-fetch.
func (h *Heuristic) ShouldPromote(probe spirits.FetchResponse) bool {
	if probe.StatusCode != http.StatusOK {
		return false
	}
	body := bytes.TrimSpace(probe.Body)
	if len(body) == 0 {
		return true
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return false
	}
	if doc.Find(productMarkup).Length() > 0 {
		return false
	}
	if doc.Find(appShells).Length() > 0 {
		return true
	}
	return len(body) < h.BodyLengthThreshold && scriptShare(doc, len(body)) >= 25
}

// scriptShare returns the percentage of the document taken up by inline scripts.
func scriptShare(doc *goquery.Document, total int) int {
	if total == 0 {
		return 0
	}
	scriptBytes := 0
	doc.Find("script").Each(func(_ int, s *goquery.Selection) {
		scriptBytes += len(s.Text())
		if _, ok := s.Attr("src"); ok {
			scriptBytes += len("<script src></script>")
		}
	})
	return min(scriptBytes*100/total, 100)
}
