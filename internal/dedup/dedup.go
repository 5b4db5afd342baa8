package dedup

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/JakeFAU/spirits-scraper/internal/spirits"
)

const (
	// DefaultThreshold is the similarity at or above which two names are duplicates.
	DefaultThreshold = 0.90
	// LowSimilarity short-circuits comparisons of clearly unrelated names.
	LowSimilarity = 0.5
)

// IsDuplicate compares two candidates and explains the outcome.
//
// Vetoes (differing year, age, batch, ABV, exclusive subtype terms, bourye vs
// bourbon) are checked first and always yield a non-duplicate. Otherwise a
// similarity below LowSimilarity is rejected outright, and the remaining pairs
// are duplicates when similarity reaches threshold.
func IsDuplicate(a, b spirits.Candidate, threshold float64) spirits.Verdict {
	if strings.TrimSpace(a.Name) == "" || strings.TrimSpace(b.Name) == "" {
		return spirits.Verdict{Reason: "Missing name"}
	}
	c := comparison{
		left:     a,
		right:    b,
		leftKey:  NormalizeKey(a.Name),
		rightKey: NormalizeKey(b.Name),
	}
	sim := Similarity(c.leftKey, c.rightKey)
	if reason, ok := criticalDifference(c); ok {
		return spirits.Verdict{Reason: reason, Similarity: sim}
	}
	if sim < LowSimilarity {
		return spirits.Verdict{Reason: "Low similarity", Similarity: sim}
	}
	if sim >= threshold {
		return spirits.Verdict{
			IsDuplicate: true,
			Reason:      fmt.Sprintf("High similarity: %.1f%%", sim*100),
			Similarity:  sim,
		}
	}
	return spirits.Verdict{Reason: fmt.Sprintf("Below threshold: %.1f%%", sim*100), Similarity: sim}
}

// Checker applies IsDuplicate with a fixed threshold and logs each verdict.
type Checker struct {
	threshold float64
	logger    *zap.Logger
}

// NewChecker builds a Checker. A threshold outside (0, 1] falls back to DefaultThreshold.
func NewChecker(threshold float64, logger *zap.Logger) *Checker {
	if threshold <= 0 || threshold > 1 {
		threshold = DefaultThreshold
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Checker{threshold: threshold, logger: logger}
}

// Threshold returns the similarity threshold in use.
func (c *Checker) Threshold() float64 {
	return c.threshold
}

// Check compares a and b and logs the verdict at debug level.
func (c *Checker) Check(a, b spirits.Candidate) spirits.Verdict {
	v := IsDuplicate(a, b, c.threshold)
	c.logger.Debug("duplicate check",
		zap.String("candidate", a.Name),
		zap.String("existing", b.Name),
		zap.Bool("duplicate", v.IsDuplicate),
		zap.Float64("similarity", v.Similarity),
		zap.String("reason", v.Reason),
	)
	return v
}

// FirstDuplicate returns the first existing record the candidate duplicates.
func (c *Checker) FirstDuplicate(candidate spirits.Candidate, existing []spirits.Record) (spirits.Record, spirits.Verdict, bool) {
	for _, rec := range existing {
		if v := c.Check(candidate, rec.Candidate()); v.IsDuplicate {
			return rec, v, true
		}
	}
	return spirits.Record{}, spirits.Verdict{}, false
}

// ReasonClass buckets a verdict reason into a low-cardinality label for metrics.
func ReasonClass(reason string) string {
	switch {
	case strings.HasPrefix(reason, "High similarity"):
		return "high_similarity"
	case strings.HasPrefix(reason, "Below threshold"):
		return "below_threshold"
	case strings.HasPrefix(reason, "Different years"):
		return "year"
	case strings.HasPrefix(reason, "Different ages"):
		return "age"
	case strings.HasPrefix(reason, "Different batches"):
		return "batch"
	case strings.HasPrefix(reason, "Different ABV"):
		return "abv"
	case strings.HasPrefix(reason, "Critical difference"):
		return "exclusive_terms"
	case strings.HasPrefix(reason, "Bourye"):
		return "bourye"
	case reason == "Low similarity":
		return "low_similarity"
	case reason == "Missing name":
		return "missing_name"
	case reason == "Exact match":
		return "exact"
	default:
		return "other"
	}
}
