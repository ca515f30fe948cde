package models

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// DefaultHomeType is the home type assumed when the query names none.
const DefaultHomeType = "homes"

// StructuredFilter is the location/type intent extracted from a free-text query.
type StructuredFilter struct {
	HomeType string `json:"homeType"`
	Zipcode  string `json:"zipcode"`
	City     string `json:"city"`
	State    string `json:"state"`
}

// HasLocation reports whether a search target can be built from the filter.
func (f StructuredFilter) HasLocation() bool {
	return strings.TrimSpace(f.Zipcode) != "" || strings.TrimSpace(f.City) != ""
}

// SummaryRow is one raw search-result row as returned by the scraper.
// Values are kept as decoded (strings, json.Number, nested maps).
type SummaryRow map[string]any

// DetailRecord is one raw detail-page record as returned by the scraper.
type DetailRecord map[string]any

// String returns the row value for key rendered as text, or "" when absent.
func (r SummaryRow) String(key string) string {
	return Stringify(r[key])
}

// ZPID returns the listing identifier, or "" when it is missing or a numeric
// zero. A string "0" is kept as given.
func (r SummaryRow) ZPID() string {
	v := r["zpid"]
	if _, isText := v.(string); !isText && Stringify(v) == "0" {
		return ""
	}
	return Stringify(v)
}

// String returns the record value for key rendered as text, or "" when absent.
func (d DetailRecord) String(key string) string {
	return Stringify(d[key])
}

// Stringify renders a decoded JSON scalar as text. Numbers never use exponent
// notation; nil and false render as "".
func Stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		return t.String()
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case bool:
		if !t {
			return ""
		}
		return "true"
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return ""
		}
		return string(b)
	}
}

// ListingCard is the display-ready merge of one SummaryRow and at most one
// DetailRecord. Optional fields are nil when no source value was found.
type ListingCard struct {
	ZPID         string  `json:"zpid"`
	Price        string  `json:"price"`
	Address      string  `json:"address"`
	Beds         string  `json:"beds"`
	Baths        string  `json:"baths"`
	Img          *string `json:"img,omitempty"`
	URL          string  `json:"url"`
	CanonicalURL string  `json:"canonicalUrl"`
	Broker       *string `json:"broker,omitempty"`
	Phone        *string `json:"phone,omitempty"`
	Description  *string `json:"description,omitempty"`
}

// SearchResult is the outcome of one processed query.
type SearchResult struct {
	RunID     string
	Query     string
	Filter    StructuredFilter
	SearchURL string
	Ceiling   *int
	Fetched   int
	Cards     []*ListingCard
	CreatedAt time.Time
}

// InsightReport holds summary statistics over a set of ranked cards.
type InsightReport struct {
	TotalListings    int
	PricedListings   int
	AveragePrice     float64
	MinPrice         int
	MaxPrice         int
	Cheapest         *ListingCard
	MostExpensive    *ListingCard
	ListingsByBroker map[string]int
}
