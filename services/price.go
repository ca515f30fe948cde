package services

import (
	"regexp"
	"strconv"
	"strings"

	"zillow-finder/models"
)

var (
	// ceilingRegexp captures the amount in phrases like "under $2,000".
	ceilingRegexp = regexp.MustCompile(`(?i)under\s*\$?([\d,]+)`)
	nonDigit      = regexp.MustCompile(`\D`)
)

// PriceCeiling returns the cap named in the query, if any. A zero cap is
// treated as no cap.
func PriceCeiling(query string) (int, bool) {
	m := ceilingRegexp.FindStringSubmatch(query)
	if len(m) < 2 {
		return 0, false
	}
	n, err := strconv.Atoi(strings.ReplaceAll(m[1], ",", ""))
	if err != nil || n == 0 {
		return 0, false
	}
	return n, true
}

// NumericPrice keeps only the digits of a price field. "$2,500/mo" is 2500;
// "Contact agent" has no price.
func NumericPrice(field string) (int, bool) {
	digits := nonDigit.ReplaceAllString(field, "")
	if digits == "" {
		return 0, false
	}
	n, err := strconv.Atoi(digits)
	if err != nil {
		return 0, false
	}
	return n, true
}

// ApplyCeiling drops cards whose known price is above ceiling. Cards with an
// unknown price always pass.
func ApplyCeiling(cards []*models.ListingCard, ceiling int) []*models.ListingCard {
	out := make([]*models.ListingCard, 0, len(cards))
	for _, c := range cards {
		if p, ok := NumericPrice(c.Price); ok && p > ceiling {
			continue
		}
		out = append(out, c)
	}
	return out
}
