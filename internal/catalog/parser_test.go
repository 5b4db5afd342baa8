package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const totalWinePage = `<html><body>
<div class="product-card">
  <a href="/spirits/bourbon/eagle-rare-10/p/1"><img src="/img/eagle.png"></a>
  <h2 class="product-title">Eagle Rare 10 Year Bourbon</h2>
  <span class="price">$39.99</span>
</div>
<div class="product-card">
  <h2 class="product-title">Gift Card</h2>
  <span class="price">$25.00</span>
</div>
<div class="product-card">
  <h2 class="product-title">Eagle Rare 10 Year Bourbon</h2>
  <span class="price">$41.99</span>
</div>
</body></html>`

const whiskyExchangePage = `<html><body>
<li class="product-card">
  <a href="https://www.thewhiskyexchange.com/p/123/lagavulin-16">
    <img data-src="https://img.thewhiskyexchange.com/lagavulin.jpg">
    <p class="product-card__name">Lagavulin 16 Year Old Scotch Whisky</p>
    <p class="product-card__meta">70cl / 43%</p>
    <p class="product-card__price">£74.95</p>
  </a>
</li>
</body></html>`

const klWinesPage = `<html><body>
<div class="result-item">
  <div class="result-title"><a href="/p/i?i=1">Old Forester 1920 Prohibition Style Bourbon</a></div>
  <div class="result-price">$54.99</div>
  <div class="result-desc">Bottled at 115 proof, rich and dark.</div>
</div>
</body></html>`

const masterOfMaltPage = `<html><body>
<div class="product">
  <a href="/whiskies/ardbeg/ardbeg-10/"><span class="product-name">Ardbeg 10 Year Old Scotch</span></a>
  <span class="product-price">£45.00</span>
  <span class="product-volume">70cl</span>
  <span class="product-abv">46% ABV</span>
</div>
</body></html>`

const wineComPage = `<html><body>
<div class="prodItem">
  <a class="prodItemInfo_link" href="/product/buffalo-trace/1"></a>
  <span class="prodItemInfo_name">Buffalo Trace Kentucky Straight Bourbon</span>
  <span class="prodItemInfo_price">$29.99</span>
  <span class="prodItemInfo_details">750ML / 45% ABV</span>
</div>
</body></html>`

const genericPage = `<html><body>
<div itemtype="https://schema.org/Product">
  <span itemprop="name">Wild Turkey 101 Bourbon</span>
  <span itemprop="price">$24.99</span>
</div>
<h2><a href="/p/rare-breed">Wild Turkey Rare Breed Bourbon</a></h2>
<h2><a href="/cart">Shop All Bourbon</a></h2>
<h2><a href="/vodka">Tito's Handmade Vodka</a></h2>
</body></html>`

func TestParseKnownRetailers(t *testing.T) {
	t.Parallel()

	p := NewParser(zap.NewNop())

	t.Run("totalwine", func(t *testing.T) {
		t.Parallel()
		recs, err := p.Parse("https://www.totalwine.com/spirits/bourbon/c/123", []byte(totalWinePage), "bourbon")
		require.NoError(t, err)
		require.Len(t, recs, 1)
		assert.Equal(t, "Eagle Rare 10 Year Bourbon", recs[0].Name)
		assert.InDelta(t, 39.99, recs[0].Price, 0.001)
		assert.Equal(t, "https://www.totalwine.com/spirits/bourbon/eagle-rare-10/p/1", recs[0].SourceURL)
		assert.Equal(t, "https://www.totalwine.com/img/eagle.png", recs[0].ImageURL)
		assert.Equal(t, "Bourbon", recs[0].Type)
		assert.Equal(t, "10 Year", recs[0].AgeStatement)
	})

	t.Run("thewhiskyexchange", func(t *testing.T) {
		t.Parallel()
		recs, err := p.Parse("https://www.thewhiskyexchange.com/c/35/scotch", []byte(whiskyExchangePage), "scotch")
		require.NoError(t, err)
		require.Len(t, recs, 1)
		assert.InDelta(t, 43.0, recs[0].ABV, 0.001)
		assert.InDelta(t, 95.19, recs[0].Price, 0.001)
		assert.Equal(t, "700ml", recs[0].Volume)
		assert.Equal(t, "https://img.thewhiskyexchange.com/lagavulin.jpg", recs[0].ImageURL)
		assert.Equal(t, "https://www.thewhiskyexchange.com/p/123/lagavulin-16", recs[0].SourceURL)
	})

	t.Run("klwines", func(t *testing.T) {
		t.Parallel()
		recs, err := p.Parse("https://www.klwines.com/Products?filters=bourbon", []byte(klWinesPage), "bourbon")
		require.NoError(t, err)
		require.Len(t, recs, 1)
		assert.InDelta(t, 57.5, recs[0].ABV, 0.001)
		assert.Equal(t, "Bottled at 115 proof, rich and dark.", recs[0].Description)
		assert.Equal(t, "https://www.klwines.com/p/i?i=1", recs[0].SourceURL)
	})

	t.Run("masterofmalt", func(t *testing.T) {
		t.Parallel()
		recs, err := p.Parse("https://www.masterofmalt.com/scotch-whisky/", []byte(masterOfMaltPage), "")
		require.NoError(t, err)
		require.Len(t, recs, 1)
		assert.Equal(t, "70cl", recs[0].Volume)
		assert.InDelta(t, 46.0, recs[0].ABV, 0.001)
		assert.InDelta(t, 57.15, recs[0].Price, 0.001)
	})

	t.Run("wine.com", func(t *testing.T) {
		t.Parallel()
		recs, err := p.Parse("https://www.wine.com/list/spirits/bourbon", []byte(wineComPage), "bourbon")
		require.NoError(t, err)
		require.Len(t, recs, 1)
		assert.Equal(t, "750ML / 45% ABV", recs[0].Description)
		assert.InDelta(t, 45.0, recs[0].ABV, 0.001)
		assert.Equal(t, "https://www.wine.com/product/buffalo-trace/1", recs[0].SourceURL)
	})
}

func TestParseGenericFallback(t *testing.T) {
	t.Parallel()

	recs, err := NewParser(nil).Parse("https://shop.example.com/bourbon", []byte(genericPage), "bourbon")
	require.NoError(t, err)

	names := make([]string, 0, len(recs))
	for _, r := range recs {
		names = append(names, r.Name)
	}
	assert.ElementsMatch(t, []string{"Wild Turkey 101 Bourbon", "Wild Turkey Rare Breed Bourbon"}, names)
	for _, r := range recs {
		if r.Name == "Wild Turkey 101 Bourbon" {
			assert.InDelta(t, 24.99, r.Price, 0.001)
		}
		if r.Name == "Wild Turkey Rare Breed Bourbon" {
			assert.Equal(t, "https://shop.example.com/p/rare-breed", r.SourceURL)
		}
	}
}

func TestParseRejectsBadURL(t *testing.T) {
	t.Parallel()

	_, err := NewParser(nil).Parse("://bad", []byte("<html></html>"), "")
	require.Error(t, err)
}

func TestSupported(t *testing.T) {
	t.Parallel()

	assert.True(t, Supported("https://www.totalwine.com/spirits/bourbon"))
	assert.True(t, Supported("https://shop.klwines.com/x"))
	assert.False(t, Supported("https://www.notwine.com/x"))
	assert.False(t, Supported("https://shop.example.com/bourbon"))
}
