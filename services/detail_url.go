package services

import (
	"strings"

	"zillow-finder/models"
	"zillow-finder/utils"
)

// DetailURLCanonicalizer normalizes listing detail references to one absolute
// URL per listing identifier.
type DetailURLCanonicalizer struct {
	baseURL string
}

// NewDetailURLCanonicalizer creates a canonicalizer for the site's base URL.
func NewDetailURLCanonicalizer(baseURL string) *DetailURLCanonicalizer {
	return &DetailURLCanonicalizer{baseURL: strings.TrimRight(baseURL, "/")}
}

// Canonicalize returns the canonical detail URL for rawRef and zpid.
// When zpid is set but missing from rawRef, rawRef is discarded and the URL is
// built from zpid alone. Site-relative refs are prefixed with the base as-is,
// without path cleaning, so the result is stable under repeated application.
func (c *DetailURLCanonicalizer) Canonicalize(rawRef, zpid string) string {
	if zpid != "" && !strings.Contains(rawRef, zpid) {
		return c.baseURL + "/homedetails/" + zpid + "_zpid/"
	}
	if strings.HasPrefix(rawRef, "/") {
		return c.baseURL + rawRef
	}
	return rawRef
}

// validDetailURL reports whether zpid is set and present in canonical.
func validDetailURL(canonical, zpid string) bool {
	return zpid != "" && canonical != "" && strings.Contains(canonical, zpid)
}

// DetailURLValidator selects which search rows are worth a detail fetch.
type DetailURLValidator struct {
	canon *DetailURLCanonicalizer
}

// NewDetailURLValidator creates a validator backed by canon.
func NewDetailURLValidator(canon *DetailURLCanonicalizer) *DetailURLValidator {
	return &DetailURLValidator{canon: canon}
}

// SelectForDetailFetch returns the de-duplicated canonical detail URLs for
// rows with a usable identifier, in first-seen order. Rows without one are
// skipped and never get detail enrichment.
func (v *DetailURLValidator) SelectForDetailFetch(rows []models.SummaryRow) []string {
	seen := utils.NewURLSet()
	out := make([]string, 0, len(rows))

	for _, row := range rows {
		zpid := row.ZPID()
		u := v.canon.Canonicalize(row.String("detailUrl"), zpid)
		if !validDetailURL(u, zpid) {
			continue
		}
		if seen.Add(u) {
			out = append(out, u)
		}
	}
	return out
}
