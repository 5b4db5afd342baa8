package brand

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/JakeFAU/spirits-scraper/internal/spirits"
)

func TestExtract(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "initials known", in: "W.L. Weller Full Proof", want: "W.L. Weller"},
		{name: "deny listed single word", in: "wild", want: spirits.UnknownBrand},
		{name: "deny listed upper case", in: "WILD", want: spirits.UnknownBrand},
		{name: "year prefix", in: "1988 Wild Turkey 8 Year Old 101 Proof", want: "Wild Turkey"},
		{name: "stacked year prefixes", in: "2019 2020 Four Roses Small Batch", want: "Four Roses"},
		{name: "number brand not a year", in: "1792 Small Batch Bourbon", want: "1792"},
		{name: "case insensitive known", in: "maker's mark 46", want: "Maker's Mark"},
		{name: "accented known", in: "PATRÓN silver", want: "Patrón"},
		{name: "decomposed accent", in: "Re\u0301my Martin XO", want: "Rémy Martin"},
		{name: "initials pattern", in: "A.D. Laws Four Grain", want: "A.D. Laws"},
		{name: "possessive pattern", in: "Blanton's Gold Edition", want: "Blanton's"},
		{name: "old pattern", in: "Old Fitzgerald 9 Year", want: "Old Fitzgerald"},
		{name: "the pattern", in: "The Glendronach 12", want: "The Glendronach"},
		{name: "spelled number pattern", in: "Three Chord Bourbon", want: "Three Chord"},
		{name: "age as second word", in: "Lagavulin 16 Year", want: "Lagavulin"},
		{name: "descriptor second word", in: "Bulleit Rye", want: "Bulleit"},
		{name: "allow listed single word", in: "Redbreast", want: "Redbreast"},
		{name: "capitalized single word", in: "Penelope", want: "Penelope"},
		{name: "short single word", in: "Ab", want: spirits.UnknownBrand},
		{name: "lowercase single word", in: "whatever", want: spirits.UnknownBrand},
		{name: "invalid first word", in: "Kentucky Owl Confiscated", want: spirits.UnknownBrand},
		{name: "copy text", in: "Discover The Best Bourbon", want: spirits.UnknownBrand},
		{name: "two word fallback", in: "Noble Oak Double Oak", want: "Noble Oak"},
		{name: "empty", in: "", want: spirits.UnknownBrand},
		{name: "whitespace", in: "   ", want: spirits.UnknownBrand},
		{name: "year only", in: "1988", want: spirits.UnknownBrand},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Extract(tt.in))
		})
	}
}

func TestIsValid(t *testing.T) {
	t.Parallel()

	cases := map[string]bool{
		"":                 false,
		"Unknown":          false,
		"A":                false,
		"wild":             false,
		"Hennessy":         true,
		"Buffalo Trace":    true,
		"Discover Whiskey": false,
		"American Whiskey": false,
		"Best Bourbon":     false,
		"Spiritless Co":    false,
	}
	for in, want := range cases {
		assert.Equal(t, want, IsValid(in), in)
	}
}

func TestResolve(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Eagle Rare", Resolve("Eagle Rare", "Eagle Rare 10 Year"))
	assert.Equal(t, "Buffalo Trace", Resolve("", "Buffalo Trace Bourbon"))
	assert.Equal(t, "Buffalo Trace", Resolve("Unknown", "Buffalo Trace Bourbon"))
	assert.Equal(t, spirits.UnknownBrand, Resolve("best", "bourbon"))
}

func TestSlug(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "makers-mark", Slug("Maker's Mark"))
	assert.Equal(t, "remy-martin", Slug("Rémy Martin"))
	assert.Equal(t, "w-l-weller", Slug("W.L. Weller"))
	assert.Equal(t, "patron", Slug("Patrón"))
	assert.Equal(t, "", Slug("  "))
}
