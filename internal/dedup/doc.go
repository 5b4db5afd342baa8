// Package dedup decides whether two spirit names describe the same product.
//
// A name is reduced to a normalized key (lowercase, volume and vintage tokens
// dropped, punctuation stripped), keys are compared with Jaccard similarity over
// their word sets, and an ordered table of vetoes rejects pairs that differ in
// year, age statement, batch, ABV or spirit subtype even when their words overlap.
// Everything here is pure and safe for concurrent use.
package dedup
