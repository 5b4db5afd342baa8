// Package cleaner repairs product and brand text scraped from search results.
//
// The repairs are fixed rules: empty bracket removal, word-joining fixes,
// retailer suffix stripping and a lookup table of known brand misspellings.
// Nothing here tries to infer a general text repair beyond those tables.
package cleaner
