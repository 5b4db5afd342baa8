package catalog

import "strings"

// site describes where product fields live in one retailer's listing markup.
// Field selectors are relative to the item.
type site struct {
	host   string
	item   string
	name   string
	price  string
	detail string
	abv    string
	volume string
	image  string
	link   string
	// defaultVolume applies when the listing omits the bottle size.
	defaultVolume string
}

var sites = []site{
	{
		host:  "totalwine.com",
		item:  `.product-card, .item-tile, [class*="product-item"]`,
		name:  `.product-title, .item-title, h2, h3`,
		price: `.price, .product-price, [class*="price"]`,
		image: `img`,
		link:  `a[href]`,
	},
	{
		host:   "thewhiskyexchange.com",
		item:   `.product-card`,
		name:   `.product-card__name`,
		price:  `.product-card__price`,
		detail: `.product-card__meta`,
		abv:    `.product-card__meta`,
		image:  `img`,
		link:   `a[href]`,

		defaultVolume: "700ml",
	},
	{
		host:   "wine.com",
		item:   `.prodItem`,
		name:   `.prodItemInfo_name`,
		price:  `.prodItemInfo_price`,
		detail: `.prodItemInfo_details`,
		image:  `img`,
		link:   `a.prodItemInfo_link, a[href]`,
	},
	{
		host:   "klwines.com",
		item:   `.result-item`,
		name:   `.result-title`,
		price:  `.result-price`,
		detail: `.result-desc`,
		abv:    `.result-desc`,
		link:   `.result-title a, a[href]`,
	},
	{
		host:   "masterofmalt.com",
		item:   `.product`,
		name:   `.product-name`,
		price:  `.product-price`,
		abv:    `.product-abv`,
		volume: `.product-volume`,
		image:  `img`,
		link:   `a[href]`,

		defaultVolume: "700ml",
	},
}

// generic covers storefronts without a dedicated entry. Items without a
// visible price are skipped.
var generic = site{
	item:  `[itemtype*="Product"], .product-card, .product-name, .product, .grid-item, article, h2 a`,
	name:  `[itemprop="name"], .product-title, .product-name, h2 a, h2, h3, [class*="title"]`,
	price: `[itemprop="price"], .price, [class*="price"]`,
	image: `img`,
	link:  `h2 a, a[href]`,
}

// siteFor returns the selectors for host, falling back to generic.
func siteFor(host string) (site, bool) {
	host = strings.TrimPrefix(strings.ToLower(host), "www.")
	for _, s := range sites {
		if host == s.host || strings.HasSuffix(host, "."+s.host) {
			return s, true
		}
	}
	return generic, false
}
