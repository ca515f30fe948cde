package services

import (
	"sort"

	"zillow-finder/models"
)

// Rank orders cards by ascending numeric price. Unknown prices sort as zero,
// so they come first; ties keep their input order.
//
// TODO: decide with product whether unknown-price cards should sort last
// instead; fixtures currently depend on zero.
func Rank(cards []*models.ListingCard) []*models.ListingCard {
	out := make([]*models.ListingCard, len(cards))
	copy(out, cards)
	sort.SliceStable(out, func(i, j int) bool {
		return sortPrice(out[i]) < sortPrice(out[j])
	})
	return out
}

func sortPrice(c *models.ListingCard) int {
	p, _ := NumericPrice(c.Price)
	return p
}
