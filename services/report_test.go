package services

import (
	"bytes"
	"strings"
	"testing"

	"zillow-finder/models"
)

func TestPrintCardsEmpty(t *testing.T) {
	var buf bytes.Buffer
	PrintCards(&buf, nil)
	if strings.TrimSpace(buf.String()) != "No listings matched your criteria." {
		t.Errorf("unexpected output: %q", buf.String())
	}
}

func TestPrintCardsFallbacksAndPreview(t *testing.T) {
	long := strings.Repeat("word ", 120)
	cards := []*models.ListingCard{
		{Price: "$1,200/mo", URL: "#", Address: "9 Elm St", Beds: "2", Baths: "1", Description: strPtr(long)},
		{Price: "N/A", URL: "/homedetails/x/", Address: "10 Elm St", Beds: "?", Baths: "?", Broker: strPtr("Gamma")},
	}

	var buf bytes.Buffer
	PrintCards(&buf, cards)
	out := buf.String()

	for _, want := range []string{
		"Found 2 listing(s)",
		"1. $1,200/mo  #",
		"2 bd / 1 ba",
		"Broker: N/A",
		"Broker: Gamma",
		"Phone:  N/A",
		"…",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestPreviewDescription(t *testing.T) {
	if got := previewDescription("  short \n\t text "); got != "short text" {
		t.Errorf("got %q", got)
	}

	long := strings.Repeat("a", 450)
	got := previewDescription(long)
	if len([]rune(got)) != descriptionPreview+1 || !strings.HasSuffix(got, "…") {
		t.Errorf("unexpected preview length %d", len([]rune(got)))
	}
}
