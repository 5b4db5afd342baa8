package search

import (
	"net/url"
	"slices"
	"strings"

	"github.com/JakeFAU/spirits-scraper/internal/spirits"
)

// excludedDomains never carry reliable product data: social media, forums,
// user reviews, blogs, wikis, aggregators and general marketplaces.
var excludedDomains = []string{
	"reddit.com", "facebook.com", "twitter.com", "x.com", "instagram.com", "pinterest.com",
	"youtube.com", "tiktok.com", "linkedin.com", "tumblr.com",
	"quora.com", "answers.yahoo.com", "answers.com", "discord.com",
	"tripadvisor.com", "yelp.com", "trustpilot.com",
	"medium.com", "wordpress.com", "blogger.com", "blogspot.com", "substack.com",
	"wikipedia.org", "wikihow.com", "fandom.com",
	"news.google.com", "flipboard.com",
	"amazon.com", "amazon.co.uk", "amazon.ca", "ebay.com", "craigslist.org", "alibaba.com", "aliexpress.com",
	"archive.org",
	"breakingbourbon.com", "fredminnick.com",
}

// reputableDomains are spirits retailers and specialist shops.
var reputableDomains = []string{
	"totalwine.com", "wine.com", "drizly.com", "reservebar.com", "caskers.com", "flaviar.com",
	"thewhiskyexchange.com", "masterofmalt.com", "klwines.com", "binnys.com", "specsonline.com",
	"bevmo.com", "astorwines.com", "caskcartel.com", "wine-searcher.com",
	"whisky.com", "thewhiskyshop.com", "royalmilewhiskies.com", "finedrams.com", "whiskybase.com",
	"dekanta.com", "danmurphys.com.au",
}

// IsExcluded reports whether link points at an excluded site.
func IsExcluded(link string) bool {
	lower := strings.ToLower(link)
	if strings.Contains(lower, "/blog/") {
		return true
	}
	host := hostOf(lower)
	if strings.HasPrefix(host, "blog.") {
		return true
	}
	return matchesAny(host, excludedDomains)
}

// IsReputable reports whether link points at a known spirits retailer.
func IsReputable(link string) bool {
	return matchesAny(hostOf(strings.ToLower(link)), reputableDomains)
}

// FilterResults drops excluded sites and moves reputable retailers to the
// front. Relative order is otherwise preserved.
func FilterResults(items []spirits.SearchItem) []spirits.SearchItem {
	kept := make([]spirits.SearchItem, 0, len(items))
	for _, item := range items {
		if !IsExcluded(item.Link) {
			kept = append(kept, item)
		}
	}
	slices.SortStableFunc(kept, func(a, b spirits.SearchItem) int {
		ra, rb := IsReputable(a.Link), IsReputable(b.Link)
		switch {
		case ra && !rb:
			return -1
		case rb && !ra:
			return 1
		default:
			return 0
		}
	})
	return kept
}

func hostOf(link string) string {
	u, err := url.Parse(link)
	if err != nil || u.Host == "" {
		return link
	}
	return strings.TrimPrefix(u.Hostname(), "www.")
}

func matchesAny(host string, domains []string) bool {
	for _, d := range domains {
		if host == d || strings.HasSuffix(host, "."+d) {
			return true
		}
	}
	return false
}
