package extract

import (
	"strings"
	"unicode/utf8"
)

var skipNamePatterns = []string{
	"shop", "buy", "browse", "search", "collection", "catalog",
	"all products", "home page", "gift card", "accessories",
	"glasses", "barware", "cigar", "best local price",
	"compare prices", "find stores", "unlock exclusive", "rewards member",
	"priority access", "faq", "sign up", "newsletter", "shipping",
}

var spiritWords = []string{
	"whiskey", "whisky", "bourbon", "rum", "vodka", "gin", "tequila", "scotch", "rye", "brandy", "cognac", "mezcal",
}

// IsValidProductName reports whether name reads like a single product rather
// than a store page, category listing or accessory.
func IsValidProductName(name string) bool {
	n := utf8.RuneCountInString(name)
	if n < 5 || n > 150 {
		return false
	}
	lower := strings.ToLower(name)
	for _, p := range skipNamePatterns {
		if strings.Contains(lower, p) {
			return false
		}
	}
	for _, w := range spiritWords {
		if strings.Contains(lower, w) {
			return true
		}
	}
	return false
}

var catalogText = []string{
	"products found", "items found", "showing", "results",
	"sort by", "filter", "view all", "page 1", "grid view",
	"collection", "catalog", "browse", "shop all",
}

var catalogPaths = []string{
	"/products", "/catalog", "/collection", "/category",
	"/shop", "/spirits/", "/whiskey/", "/bourbon/",
}

// IsCatalogPage reports whether a result looks like a listing of many products.
// text is usually the result title followed by its snippet.
func IsCatalogPage(link, text string) bool {
	text = strings.ToLower(text)
	for _, ind := range catalogText {
		if strings.Contains(text, ind) {
			return true
		}
	}
	link = strings.ToLower(link)
	for _, ind := range catalogPaths {
		if strings.Contains(link, ind) {
			return true
		}
	}
	return false
}
