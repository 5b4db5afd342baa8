package cleaner

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRemoveEmptyParentheses(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"":                              "",
		"Buffalo Trace ()":              "Buffalo Trace",
		"Eagle Rare ( ) 10 Year":        "Eagle Rare 10 Year",
		"Weller [ ] Special {} Reserve": "Weller Special Reserve",
		"Stagg (2023)":                  "Stagg (2023)",
	}
	for in, want := range tests {
		assert.Equal(t, want, RemoveEmptyParentheses(in), in)
	}
}

func TestFixTextSpacing(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{in: "Glenfiddich12YearOld", want: "Glenfiddich 12 Year Old"},
		{in: "Balvenie DoubleWood12", want: "Balvenie Double Wood 12"},
		{in: "Ardbeg SingleMalt", want: "Ardbeg Single Malt"},
		{in: "Old Fitzgerald BottledInBond", want: "Old Fitzgerald Bottled in Bond"},
		{in: "Henry McKenna 10 Year", want: "Henry McKenna 10 Year"},
		{in: "WhistlePig 10Year", want: "WhistlePig 10 Year"},
		{in: "Four Roses  ( )  Small Batch", want: "Four Roses Small Batch"},
		{in: "", want: ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FixTextSpacing(tt.in), tt.in)
	}
}

func TestFixBrandCapitalization(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"Ba Lcones":        "Balcones",
		"ba lcones":        "Balcones",
		"eh taylor":        "E.H. Taylor",
		"wl weller":        "W.L. Weller",
		"blantons":         "Blanton's",
		"makers mark":      "Maker's Mark",
		"jack daniels":     "Jack Daniel's",
		"angels envy":      "Angel's Envy",
		"Mc Kenzie":        "McKenzie",
		"nashville barrel": "Nashville Barrel Company",
		"heaven hill":      "Heaven Hill",
		"house of suntory": "House of Suntory",
		"":                 "",
	}
	for in, want := range tests {
		assert.Equal(t, want, FixBrandCapitalization(in), in)
	}
}

func TestTitleCase(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Old Grand-Dad Bottled in Bond", TitleCase("old grand-dad bottled in bond"))
	assert.Equal(t, "Hennessy XO", TitleCase("hennessy XO"))
	assert.Equal(t, "W.L. Weller Special Reserve", TitleCase("W.L. Weller SPECIAL reserve"))
	assert.Equal(t, "The Balvenie 12", TitleCase("the balvenie 12"))
	assert.Equal(t, "Henry McKenna", TitleCase("henry McKenna"))
}

func TestCleanProductName(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"Eagle Rare 10 Year Bourbon | Total Wine & More": "Eagle Rare 10 Year Bourbon",
		"Blanton's Single Barrel - Buy Online":           "Blanton's Single Barrel",
		"Lagavulin 16 Year - The Whisky Exchange":        "Lagavulin 16 Year",
		"Redbreast 12 Year (12345)":                      "Redbreast 12 Year",
		"Weller Special Reserve at Drizly":               "Weller Special Reserve",
		"Heaven Hill Spirits":                            "Heaven Hill",
		"Knob Creek SmallBatch 9Year -":                  "Knob Creek Small Batch 9 Year",
	}
	for in, want := range tests {
		assert.Equal(t, want, CleanProductName(in), in)
	}
}

func TestNormalizeName(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"old grand - dad bottled-in-bond 750ml": "Old Grand-Dad Bottled in Bond",
		"Eagle Rare 10 Year $39.99 (2021)":      "Eagle Rare 10 Year",
		"buffalo trace review ()":               "Buffalo Trace",
		"Booker's 1.75 L":                       "Booker's",
		"[Stagg] Jr":                            "Stagg Jr",
	}
	for in, want := range tests {
		assert.Equal(t, want, NormalizeName(in), in)
	}
}
