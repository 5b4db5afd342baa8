package dedup

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/JakeFAU/spirits-scraper/internal/spirits"
)

func TestNormalizeKey(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "empty", in: "", want: ""},
		{name: "volume ml", in: "Buffalo Trace Bourbon 750ml", want: "buffalo trace bourbon"},
		{name: "volume liter", in: "Maker's Mark 46 1L", want: "maker s mark 46"},
		{name: "bracketed year", in: "Blanton's Single Barrel (2019)", want: "blanton s single barrel"},
		{name: "loose vintage", in: "Pappy 2019 Release", want: "pappy release"},
		{name: "vintage before year kept", in: "Whistlepig 2024 Year Edition", want: "whistlepig 2024 year edition"},
		{name: "whisky spelling kept", in: "Nikka Whisky From The Barrel", want: "nikka whisky from the barrel"},
		{name: "accents kept", in: "Don Julio AÑEJO", want: "don julio añejo"},
		{name: "punctuation collapsed", in: "  Old Grand-Dad   Bonded!! ", want: "old grand dad bonded"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, NormalizeKey(tt.in))
		})
	}
}

func TestSimilarity(t *testing.T) {
	t.Parallel()

	assert.InDelta(t, 1.0, Similarity("a b", "b a"), 1e-9)
	assert.InDelta(t, 0.6, Similarity("eagle rare 10 year", "eagle rare 12 year"), 1e-9)
	assert.InDelta(t, 1.0, Similarity("", ""), 1e-9)
	assert.Zero(t, Similarity("", "buffalo trace"))
	assert.Zero(t, Similarity("buffalo trace", ""))
	assert.Zero(t, Similarity("buffalo trace", "glenfiddich 12"))
}

func TestSimilaritySelfAndSymmetry(t *testing.T) {
	t.Parallel()

	names := []string{
		"",
		"Buffalo Trace Bourbon",
		"Eagle Rare 10 Year",
		"W.L. Weller Full Proof (2023) 750ml",
		"Casamigos Añejo Tequila",
		"Bourye Whiskey",
		"2020 2021 2022",
	}
	for _, a := range names {
		ka := NormalizeKey(a)
		assert.InDelta(t, 1.0, Similarity(ka, ka), 1e-9, "self similarity for %q", a)
		for _, b := range names {
			kb := NormalizeKey(b)
			assert.InDelta(t, Similarity(ka, kb), Similarity(kb, ka), 1e-9, "symmetry for %q/%q", a, b)
		}
	}
}

func TestIsDuplicate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		a, b      spirits.Candidate
		threshold float64
		wantDup   bool
		reason    string
		sim       float64
	}{
		{
			name:    "identical names",
			a:       spirits.Candidate{Name: "Buffalo Trace Bourbon"},
			b:       spirits.Candidate{Name: "Buffalo Trace Bourbon"},
			wantDup: true,
			reason:  "High similarity: 100.0%",
			sim:     1.0,
		},
		{
			name:    "word order ignored",
			a:       spirits.Candidate{Name: "Trace Buffalo Bourbon"},
			b:       spirits.Candidate{Name: "Buffalo Trace Bourbon"},
			wantDup: true,
			reason:  "High similarity: 100.0%",
			sim:     1.0,
		},
		{
			name:   "different ages",
			a:      spirits.Candidate{Name: "Eagle Rare 10 Year"},
			b:      spirits.Candidate{Name: "Eagle Rare 12 Year"},
			reason: "Different ages: 10 vs 12",
			sim:    0.6,
		},
		{
			name:   "bourye vs bourbon",
			a:      spirits.Candidate{Name: "Bourye Whiskey"},
			b:      spirits.Candidate{Name: "Bourbon Whiskey"},
			reason: "Bourye vs Bourbon difference",
			sim:    1.0 / 3.0,
		},
		{
			name:   "different years",
			a:      spirits.Candidate{Name: "Old Forester Birthday Bourbon 2019"},
			b:      spirits.Candidate{Name: "Old Forester Birthday Bourbon 2021"},
			reason: "Different years: 2019 vs 2021",
			sim:    4.0 / 6.0,
		},
		{
			name:   "different batches",
			a:      spirits.Candidate{Name: "Stagg Jr Batch 12"},
			b:      spirits.Candidate{Name: "Stagg Jr Batch 14"},
			reason: "Different batches: 12 vs 14",
			sim:    0.6,
		},
		{
			name:   "abv beyond tolerance",
			a:      spirits.Candidate{Name: "Booker's Bourbon", ABV: 63.5},
			b:      spirits.Candidate{Name: "Booker's Bourbon", ABV: 60},
			reason: "Different ABV: 63.5 vs 60",
			sim:    1.0,
		},
		{
			name:    "abv within tolerance",
			a:       spirits.Candidate{Name: "Booker's Bourbon", ABV: 62},
			b:       spirits.Candidate{Name: "Booker's Bourbon", ABV: 63},
			wantDup: true,
			reason:  "High similarity: 100.0%",
			sim:     1.0,
		},
		{
			name:    "one sided abv ignored",
			a:       spirits.Candidate{Name: "Booker's Bourbon", ABV: 63.5},
			b:       spirits.Candidate{Name: "Booker's Bourbon"},
			wantDup: true,
			reason:  "High similarity: 100.0%",
			sim:     1.0,
		},
		{
			name:   "bourbon vs rye",
			a:      spirits.Candidate{Name: "Old Overholt Rye"},
			b:      spirits.Candidate{Name: "Old Overholt Bourbon"},
			reason: "Critical difference: bourbon vs rye",
			sim:    0.5,
		},
		{
			name:   "blanco vs reposado",
			a:      spirits.Candidate{Name: "Casamigos Blanco Tequila"},
			b:      spirits.Candidate{Name: "Casamigos Reposado Tequila"},
			reason: "Critical difference: blanco vs reposado",
			sim:    0.5,
		},
		{
			name:   "low similarity",
			a:      spirits.Candidate{Name: "Buffalo Trace"},
			b:      spirits.Candidate{Name: "Glenfiddich 12"},
			reason: "Low similarity",
			sim:    0,
		},
		{
			name:   "below threshold",
			a:      spirits.Candidate{Name: "Buffalo Trace Kentucky Straight Bourbon"},
			b:      spirits.Candidate{Name: "Buffalo Trace Bourbon"},
			reason: "Below threshold: 60.0%",
			sim:    0.6,
		},
		{
			name:      "caller threshold",
			a:         spirits.Candidate{Name: "Buffalo Trace Kentucky Straight Bourbon"},
			b:         spirits.Candidate{Name: "Buffalo Trace Bourbon"},
			threshold: 0.6,
			wantDup:   true,
			reason:    "High similarity: 60.0%",
			sim:       0.6,
		},
		{
			name:   "missing name",
			a:      spirits.Candidate{Name: ""},
			b:      spirits.Candidate{Name: "Buffalo Trace Bourbon"},
			reason: "Missing name",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			threshold := tt.threshold
			if threshold == 0 {
				threshold = DefaultThreshold
			}
			got := IsDuplicate(tt.a, tt.b, threshold)
			assert.Equal(t, tt.wantDup, got.IsDuplicate)
			assert.Equal(t, tt.reason, got.Reason)
			assert.InDelta(t, tt.sim, got.Similarity, 1e-9)
		})
	}
}

func TestCriticalDifferencePassesThrough(t *testing.T) {
	t.Parallel()

	reason, ok := CriticalDifference(
		spirits.Candidate{Name: "Four Roses Single Barrel"},
		spirits.Candidate{Name: "Four Roses Single Barrel Bourbon"},
	)
	assert.False(t, ok)
	assert.Empty(t, reason)

	reason, ok = CriticalDifference(
		spirits.Candidate{Name: "Four Roses Single Barrel"},
		spirits.Candidate{Name: "Four Roses Small Batch"},
	)
	require.True(t, ok)
	assert.Equal(t, "Critical difference: single barrel vs small batch", reason)
}

func TestBouryeVetoOutranksBourbonRyePair(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		a, b   string
		reason string
	}{
		{name: "bourye first", a: "Bourye Whiskey", b: "Bourbon Whiskey", reason: "Bourye vs Bourbon difference"},
		{name: "bourbon first", a: "High West Bourbon", b: "High West Bourye", reason: "Bourye vs Bourbon difference"},
		{name: "plain rye still paired", a: "Bourbon Whiskey", b: "Rye Whiskey", reason: "Critical difference: bourbon vs rye"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			reason, ok := CriticalDifference(spirits.Candidate{Name: tt.a}, spirits.Candidate{Name: tt.b})
			require.True(t, ok)
			assert.Equal(t, tt.reason, reason)
			assert.False(t, IsDuplicate(spirits.Candidate{Name: tt.a}, spirits.Candidate{Name: tt.b}, DefaultThreshold).IsDuplicate)
		})
	}
}

func TestCheckerDefaultsAndFirstDuplicate(t *testing.T) {
	t.Parallel()

	c := NewChecker(0, nil)
	assert.InDelta(t, DefaultThreshold, c.Threshold(), 1e-9)
	assert.InDelta(t, 0.75, NewChecker(0.75, zap.NewNop()).Threshold(), 1e-9)

	existing := []spirits.Record{
		{ID: "1", Name: "Eagle Rare 12 Year"},
		{ID: "2", Name: "Eagle Rare 10 Year Bourbon"},
		{ID: "3", Name: "Eagle Rare 10 Year"},
	}
	rec, verdict, ok := c.FirstDuplicate(spirits.Candidate{Name: "Eagle Rare 10 Year"}, existing)
	require.True(t, ok)
	assert.Equal(t, "3", rec.ID)
	assert.True(t, verdict.IsDuplicate)

	_, _, ok = c.FirstDuplicate(spirits.Candidate{Name: "Blanton's Original"}, existing)
	assert.False(t, ok)
}

func TestReasonClass(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"High similarity: 100.0%":             "high_similarity",
		"Below threshold: 60.0%":              "below_threshold",
		"Different years: 2019 vs 2021":       "year",
		"Different ages: 10 vs 12":            "age",
		"Different batches: 12 vs 14":         "batch",
		"Different ABV: 63.5 vs 60":           "abv",
		"Critical difference: bourbon vs rye": "exclusive_terms",
		"Bourye vs Bourbon difference":        "bourye",
		"Low similarity":                      "low_similarity",
		"Missing name":                        "missing_name",
		"Exact match":                         "exact",
		"something else":                      "other",
	}
	for reason, want := range cases {
		assert.Equal(t, want, ReasonClass(reason), reason)
	}
}
