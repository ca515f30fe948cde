package services

import (
	"bytes"
	"strings"
	"testing"

	"zillow-finder/models"
)

func strPtr(s string) *string { return &s }

func sampleCards() []*models.ListingCard {
	return []*models.ListingCard{
		{ZPID: "1", Price: "Contact agent", Address: "1 A St", Broker: strPtr("Alpha Homes")},
		{ZPID: "2", Price: "$500/mo", Address: "2 B St", Broker: strPtr("Alpha Homes")},
		{ZPID: "3", Price: "$1,250/mo", Address: "3 C St", Broker: strPtr("Beta Realty")},
		{ZPID: "4", Price: "$2,000", Address: "4 D St"},
		{ZPID: "5", Price: "$1,000", Address: "5 E St", Broker: strPtr("  ")},
	}
}

func TestInsightCounts(t *testing.T) {
	svc := NewInsightService(newTestLogger())
	r := svc.Generate(sampleCards())
	if r.TotalListings != 5 {
		t.Errorf("TotalListings: got %d, want 5", r.TotalListings)
	}
	if r.PricedListings != 4 {
		t.Errorf("PricedListings: got %d, want 4", r.PricedListings)
	}
}

func TestInsightPrices(t *testing.T) {
	svc := NewInsightService(newTestLogger())
	r := svc.Generate(sampleCards())
	wantAvg := 1187.50
	if r.AveragePrice != wantAvg {
		t.Errorf("AveragePrice: got %.2f, want %.2f", r.AveragePrice, wantAvg)
	}
	if r.MinPrice != 500 {
		t.Errorf("MinPrice: got %d, want 500", r.MinPrice)
	}
	if r.MaxPrice != 2000 {
		t.Errorf("MaxPrice: got %d, want 2000", r.MaxPrice)
	}
	if r.Cheapest == nil || r.Cheapest.ZPID != "2" {
		t.Errorf("Cheapest: got %+v", r.Cheapest)
	}
	if r.MostExpensive == nil || r.MostExpensive.ZPID != "4" {
		t.Errorf("MostExpensive: got %+v", r.MostExpensive)
	}
}

func TestInsightBrokerGrouping(t *testing.T) {
	svc := NewInsightService(newTestLogger())
	r := svc.Generate(sampleCards())
	if r.ListingsByBroker["Alpha Homes"] != 2 {
		t.Errorf("Alpha Homes count: got %d, want 2", r.ListingsByBroker["Alpha Homes"])
	}
	if r.ListingsByBroker["Beta Realty"] != 1 {
		t.Errorf("Beta Realty count: got %d, want 1", r.ListingsByBroker["Beta Realty"])
	}
	if len(r.ListingsByBroker) != 2 {
		t.Errorf("blank brokers should not be grouped: %v", r.ListingsByBroker)
	}
}

func TestInsightEmptyInput(t *testing.T) {
	svc := NewInsightService(newTestLogger())
	r := svc.Generate(nil)
	if r.TotalListings != 0 {
		t.Errorf("expected 0 total listings for empty input")
	}
	if r.MostExpensive != nil {
		t.Errorf("expected no most expensive listing")
	}
}

func TestInsightNoKnownPrices(t *testing.T) {
	svc := NewInsightService(newTestLogger())
	r := svc.Generate([]*models.ListingCard{{Price: "N/A"}, {Price: "Call"}})
	if r.PricedListings != 0 || r.AveragePrice != 0 {
		t.Errorf("expected no price stats, got %+v", r)
	}
}

func TestInsightPrintShowsCheapestAndMostExpensive(t *testing.T) {
	svc := NewInsightService(newTestLogger())
	var buf bytes.Buffer
	svc.Fprint(&buf, svc.Generate(sampleCards()))
	out := buf.String()

	for _, want := range []string{"Cheapest Listing", "2 B St", "$500/mo", "Most Expensive Listing", "4 D St", "Alpha Homes"} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q:\n%s", want, out)
		}
	}
	if strings.Index(out, "Cheapest Listing") > strings.Index(out, "Most Expensive Listing") {
		t.Error("cheapest block should come before most expensive")
	}
}

func TestInsightPrintEmptyReport(t *testing.T) {
	svc := NewInsightService(newTestLogger())
	var buf bytes.Buffer
	svc.Fprint(&buf, svc.Generate(nil))
	out := buf.String()

	if strings.Contains(out, "Cheapest Listing") {
		t.Error("empty report should not print a cheapest block")
	}
	if !strings.Contains(out, "No price data available") || !strings.Contains(out, "No broker data") {
		t.Errorf("unexpected empty report:\n%s", out)
	}
}
