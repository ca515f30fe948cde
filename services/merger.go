package services

import (
	"zillow-finder/config"
	"zillow-finder/models"
	"zillow-finder/utils"
)

const (
	placeholderPrice = "N/A"
	placeholderRooms = "?"
	placeholderURL   = "#"
)

// Merger joins search rows with their detail records into ListingCards.
type Merger struct {
	canon      *DetailURLCanonicalizer
	candidates config.FieldCandidates
	logger     *utils.Logger
}

// NewMerger creates a Merger using the given candidate-key table.
func NewMerger(canon *DetailURLCanonicalizer, candidates config.FieldCandidates, logger *utils.Logger) *Merger {
	return &Merger{canon: canon, candidates: candidates, logger: logger}
}

// IndexDetails keys detail records by canonical URL. Both hdpUrl and url are
// indexed; relative values are resolved against the site base. The first
// record seen for a URL wins.
func (m *Merger) IndexDetails(records []models.DetailRecord) map[string]models.DetailRecord {
	idx := make(map[string]models.DetailRecord, len(records))
	for _, rec := range records {
		for _, key := range []string{"hdpUrl", "url"} {
			ref := rec.String(key)
			if ref == "" {
				continue
			}
			u := m.canon.Canonicalize(ref, "")
			if _, dup := idx[u]; !dup {
				idx[u] = rec
			}
		}
	}
	return idx
}

// Merge builds one card per validated row, in input order. Rows with no
// identifier, or whose canonical URL does not carry it, are dropped. Only the
// first row per zpid or canonical URL is kept. Rows without a matching detail
// record merge with an empty one.
func (m *Merger) Merge(rows []models.SummaryRow, details map[string]models.DetailRecord) []*models.ListingCard {
	cards := make([]*models.ListingCard, 0, len(rows))
	seenURLs := utils.NewURLSet()
	seenIDs := utils.NewURLSet()
	enriched, dupes := 0, 0

	for _, row := range rows {
		zpid := row.ZPID()
		u := m.canon.Canonicalize(row.String("detailUrl"), zpid)
		if !validDetailURL(u, zpid) {
			m.logger.Debug("[merger] Dropping row without usable zpid: %q", row.String("address"))
			continue
		}
		if seenIDs.Contains(zpid) || seenURLs.Contains(u) {
			dupes++
			continue
		}
		seenIDs.Add(zpid)
		seenURLs.Add(u)

		det, ok := details[u]
		if ok {
			enriched++
		} else {
			det = models.DetailRecord{}
		}

		card := m.createCard(row, det)
		card.ZPID = zpid
		card.CanonicalURL = u
		cards = append(cards, card)
	}

	m.logger.Debug("[merger] Merged %d rows into %d cards (%d with detail data, %d duplicates)",
		len(rows), len(cards), enriched, dupes)
	return cards
}

func (m *Merger) createCard(row models.SummaryRow, det models.DetailRecord) *models.ListingCard {
	card := &models.ListingCard{
		Price:   orDefault(row, "price", placeholderPrice),
		Address: row.String("address"),
		Beds:    orDefault(row, "beds", placeholderRooms),
		Baths:   orDefault(row, "baths", placeholderRooms),
		URL:     orDefault(row, "detailUrl", placeholderURL),
	}
	if img := row.String("imgSrc"); img != "" {
		card.Img = &img
	}

	card.Broker = firstPresent(det, m.candidates.Broker)
	card.Phone = firstPresent(det, m.candidates.Phone)
	card.Description = firstNonEmpty(det, m.candidates.Description)
	return card
}

func orDefault(row models.SummaryRow, key, fallback string) string {
	if v := row.String(key); v != "" {
		return v
	}
	return fallback
}

// firstPresent returns the value of the first key present in det, even when
// that value is empty.
func firstPresent(det models.DetailRecord, keys []string) *string {
	for _, k := range keys {
		if v, ok := det[k]; ok {
			s := models.Stringify(v)
			return &s
		}
	}
	return nil
}

// firstNonEmpty returns the first value that is present and non-empty.
func firstNonEmpty(det models.DetailRecord, keys []string) *string {
	for _, k := range keys {
		if s := det.String(k); s != "" {
			return &s
		}
	}
	return nil
}
