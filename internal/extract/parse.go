package extract

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Accepted ranges for parsed values.
const (
	MinPrice = 5.0
	MaxPrice = 10000.0
	MinABV   = 20.0
	MaxABV   = 75.0
)

// Currency conversion to USD.
const (
	gbpToUSD = 1.27
	eurToUSD = 1.08
)

var (
	usdAmount    = regexp.MustCompile(`USD\s*([\d,]+\.?\d*)`)
	dollarAmount = regexp.MustCompile(`\$\s*([\d,]+\.?\d*)`)
	nonNumeric   = regexp.MustCompile(`[^0-9.]`)

	proofPattern = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*proof`)
	abvPatterns  = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*%\s*(?:ABV|alc|alcohol)`),
		regexp.MustCompile(`(\d+(?:\.\d+)?)\s*%`),
		proofPattern,
		regexp.MustCompile(`(?i)ABV[:\s]+(\d+(?:\.\d+)?)`),
		regexp.MustCompile(`(?i)alcohol[:\s]+(\d+(?:\.\d+)?)\s*%`),
		regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*degrees`),
	}

	volumePattern = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*(ml|cl|liters?|litres?|l)\b`)
	agePattern    = regexp.MustCompile(`(?i)\b(\d{1,2})\s*-?\s*(?:years?|yrs?|yo)\b`)

	snippetPrices = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(?:price|msrp|our\s+price|sale|now):\s*\$?([\d,]+\.?\d*)`),
		regexp.MustCompile(`(?i)\d+ml\s*[.-]*\s*\$?([\d,]+\.?\d*)`),
		regexp.MustCompile(`\$\s*([\d,]+\.?\d{0,2})(?:\s|$|[^\d])`),
	}
)

// ParsePrice reads a price in USD from text such as "$39.99", "USD 45",
// "£50" or "1,299.00". Pounds and euros are converted. Prices outside
// MinPrice..MaxPrice are rejected.
func ParsePrice(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	var raw string
	if m := usdAmount.FindStringSubmatch(s); m != nil {
		raw = m[1]
	} else if m := dollarAmount.FindStringSubmatch(s); m != nil {
		raw = m[1]
	} else {
		raw = nonNumeric.ReplaceAllString(s, "")
	}
	price, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", ""), 64)
	if err != nil || price <= 0 {
		return 0, false
	}
	lower := strings.ToLower(s)
	switch {
	case strings.Contains(s, "£") || strings.Contains(lower, "gbp"):
		price *= gbpToUSD
	case strings.Contains(s, "€") || strings.Contains(lower, "eur"):
		price *= eurToUSD
	}
	price = round(price, 2)
	if price < MinPrice || price > MaxPrice {
		return 0, false
	}
	return price, true
}

// ParseABV finds an alcohol-by-volume figure in free text. Proof values are
// halved. The first pattern yielding a value in MinABV..MaxABV wins.
func ParseABV(text string) (float64, bool) {
	if text == "" {
		return 0, false
	}
	for _, re := range abvPatterns {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		v, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			continue
		}
		if re == proofPattern {
			v /= 2
		}
		if v >= MinABV && v <= MaxABV {
			return round(v, 1), true
		}
	}
	return 0, false
}

// ParseProof returns the proof figure stated in text.
func ParseProof(text string) (float64, bool) {
	m := proofPattern.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil || v < 2*MinABV || v > 2*MaxABV {
		return 0, false
	}
	return v, true
}

// ParseVolume returns a bottle size such as "750ml", "70cl" or "1.75L".
func ParseVolume(text string) (string, bool) {
	m := volumePattern.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	unit := strings.ToLower(m[2])
	switch {
	case unit == "ml":
		return m[1] + "ml", true
	case unit == "cl":
		return m[1] + "cl", true
	default:
		return m[1] + "L", true
	}
}

// ParseAge returns an age statement such as "12 Year".
func ParseAge(text string) (string, bool) {
	m := agePattern.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	years, err := strconv.Atoi(m[1])
	if err != nil || years == 0 {
		return "", false
	}
	return fmt.Sprintf("%d Year", years), true
}

func snippetPrice(snippet string) (float64, bool) {
	for _, re := range snippetPrices {
		if m := re.FindStringSubmatch(snippet); m != nil {
			if p, ok := ParsePrice(m[1]); ok {
				return p, true
			}
		}
	}
	return 0, false
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
