package services

import (
	"fmt"
	"io"
	"strings"
	"unicode"

	"zillow-finder/models"
)

const descriptionPreview = 400

// PrintCards writes ranked cards as a numbered list.
func PrintCards(w io.Writer, cards []*models.ListingCard) {
	if len(cards) == 0 {
		fmt.Fprintln(w, "No listings matched your criteria.")
		return
	}

	fmt.Fprintf(w, "Found %d listing(s)\n\n", len(cards))
	for i, c := range cards {
		fmt.Fprintf(w, "%d. %s  %s\n", i+1, c.Price, c.URL)
		fmt.Fprintf(w, "   %s\n", c.Address)
		fmt.Fprintf(w, "   %s bd / %s ba\n", c.Beds, c.Baths)
		fmt.Fprintf(w, "   Broker: %s\n", valueOr(c.Broker, "N/A"))
		fmt.Fprintf(w, "   Phone:  %s\n", valueOr(c.Phone, "N/A"))
		if desc := previewDescription(valueOr(c.Description, "")); desc != "" {
			fmt.Fprintf(w, "   %s\n", desc)
		}
		fmt.Fprintln(w)
	}
}

func valueOr(p *string, fallback string) string {
	if p == nil {
		return fallback
	}
	return *p
}

// previewDescription collapses whitespace and cuts long text with an ellipsis.
func previewDescription(s string) string {
	s = normaliseText(s)
	r := []rune(s)
	if len(r) <= descriptionPreview {
		return s
	}
	return string(r[:descriptionPreview]) + "…"
}

// normaliseText strips leading/trailing whitespace and collapses internal whitespace.
func normaliseText(s string) string {
	fields := strings.FieldsFunc(s, unicode.IsSpace)
	return strings.Join(fields, " ")
}
