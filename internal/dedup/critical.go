package dedup

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/JakeFAU/spirits-scraper/internal/spirits"
)

// MaxABVDelta is the largest ABV difference still considered the same bottling.
const MaxABVDelta = 3.0

var (
	yearPattern  = regexp.MustCompile(`\b(20\d{2}|19\d{2})\b`)
	agePattern   = regexp.MustCompile(`(?i)\b(\d{1,2})\s*year`)
	batchPattern = regexp.MustCompile(`(?i)batch\s*#?\s*(\w+)`)
)

// ExclusivePair is two terms that never describe the same product.
type ExclusivePair struct {
	A, B string
}

// ExclusivePairs lists the subtype oppositions checked against normalized keys.
var ExclusivePairs = []ExclusivePair{
	{"bourbon", "rye"},
	{"bourbon", "whiskey"},
	{"single barrel", "small batch"},
	{"cask strength", "bottled in bond"},
	{"blanco", "reposado"},
	{"blanco", "añejo"},
}

// comparison carries both raw names and their keys through the veto table.
type comparison struct {
	left, right       spirits.Candidate
	leftKey, rightKey string
}

type veto func(c comparison) (string, bool)

// vetoes run in order; the first that fires decides the verdict.
// bouryeVsBourbon precedes exclusiveTerms, whose bourbon/rye pair also
// matches "bourye" by substring.
var vetoes = []veto{
	differentYears,
	differentAges,
	differentBatches,
	differentABV,
	bouryeVsBourbon,
	exclusiveTerms,
}

// CriticalDifference reports the first veto that marks the two candidates as
// distinct products, along with its reason. Names are not normalized by the
// caller; keys are derived here.
func CriticalDifference(a, b spirits.Candidate) (string, bool) {
	return criticalDifference(comparison{
		left:     a,
		right:    b,
		leftKey:  NormalizeKey(a.Name),
		rightKey: NormalizeKey(b.Name),
	})
}

func criticalDifference(c comparison) (string, bool) {
	for _, v := range vetoes {
		if reason, ok := v(c); ok {
			return reason, true
		}
	}
	return "", false
}

func firstGroup(re *regexp.Regexp, s string) (string, bool) {
	m := re.FindStringSubmatch(s)
	if m == nil {
		return "", false
	}
	return m[1], true
}

func differingGroup(re *regexp.Regexp, c comparison, label string) (string, bool) {
	x, ok1 := firstGroup(re, c.left.Name)
	y, ok2 := firstGroup(re, c.right.Name)
	if !ok1 || !ok2 || x == y {
		return "", false
	}
	return fmt.Sprintf("Different %s: %s vs %s", label, x, y), true
}

func differentYears(c comparison) (string, bool) {
	return differingGroup(yearPattern, c, "years")
}

func differentAges(c comparison) (string, bool) {
	return differingGroup(agePattern, c, "ages")
}

func differentBatches(c comparison) (string, bool) {
	return differingGroup(batchPattern, c, "batches")
}

func differentABV(c comparison) (string, bool) {
	if c.left.ABV == 0 || c.right.ABV == 0 {
		return "", false
	}
	if math.Abs(c.left.ABV-c.right.ABV) <= MaxABVDelta {
		return "", false
	}
	return fmt.Sprintf("Different ABV: %s vs %s", formatNumber(c.left.ABV), formatNumber(c.right.ABV)), true
}

// exclusiveTerms fires when each key carries a different side of a pair and
// neither carries both.
func exclusiveTerms(c comparison) (string, bool) {
	for _, p := range ExclusivePairs {
		aInLeft := strings.Contains(c.leftKey, p.A)
		bInLeft := strings.Contains(c.leftKey, p.B)
		aInRight := strings.Contains(c.rightKey, p.A)
		bInRight := strings.Contains(c.rightKey, p.B)
		if (aInLeft && bInRight && !bInLeft && !aInRight) || (bInLeft && aInRight && !aInLeft && !bInRight) {
			return fmt.Sprintf("Critical difference: %s vs %s", p.A, p.B), true
		}
	}
	return "", false
}

// bouryeVsBourbon covers the bourbon/rye blend, which substring matching on
// "bour" would otherwise fold into bourbon.
func bouryeVsBourbon(c comparison) (string, bool) {
	if (strings.Contains(c.leftKey, "bourye") && strings.Contains(c.rightKey, "bourbon")) ||
		(strings.Contains(c.leftKey, "bourbon") && strings.Contains(c.rightKey, "bourye")) {
		return "Bourye vs Bourbon difference", true
	}
	return "", false
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
