package services

import (
	"strings"

	"zillow-finder/models"
)

// SearchURLBuilder maps a StructuredFilter to a search-results URL.
type SearchURLBuilder struct {
	baseURL string
}

// NewSearchURLBuilder creates a builder rooted at the site's base URL.
func NewSearchURLBuilder(baseURL string) *SearchURLBuilder {
	return &SearchURLBuilder{baseURL: strings.TrimRight(baseURL, "/")}
}

// Build returns the search URL for f and false when f names no location.
// Zipcode wins over city+state, which wins over city alone. A non-default
// home type becomes an extra path segment.
func (b *SearchURLBuilder) Build(f models.StructuredFilter) (string, bool) {
	if !f.HasLocation() {
		return "", false
	}

	zip := strings.TrimSpace(f.Zipcode)
	city := slug(f.City)
	state := slug(f.State)

	var u string
	switch {
	case zip != "":
		u = b.baseURL + "/" + zip + "/"
	case city != "" && state != "":
		u = b.baseURL + "/" + city + "-" + state + "/"
	default:
		u = b.baseURL + "/" + city + "/"
	}

	home := strings.Trim(strings.TrimSpace(f.HomeType), "/")
	if home != "" && home != models.DefaultHomeType {
		u += home + "/"
	}
	return u, true
}

// slug joins whitespace-separated words with '-' the way the site's location
// paths do ("San Francisco" -> "San-Francisco").
func slug(s string) string {
	return strings.Join(strings.Fields(s), "-")
}
