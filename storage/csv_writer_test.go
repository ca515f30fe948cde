package storage

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"zillow-finder/models"
)

func strPtr(s string) *string { return &s }

func sampleResult(runID string) *models.SearchResult {
	return &models.SearchResult{
		RunID:     runID,
		Query:     "condos in 98101",
		CreatedAt: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		Cards: []*models.ListingCard{
			{
				ZPID: "1", Price: "$300,000", Address: "1 Pike St", Beds: "2", Baths: "1",
				URL: "/homedetails/1_zpid/", CanonicalURL: "https://www.zillow.com/homedetails/1_zpid/",
				Broker: strPtr("Pike Realty"), Description: strPtr("Line one, \"quoted\"\nline two"),
			},
			{
				ZPID: "2", Price: "N/A", Address: "2 Pine St", Beds: "?", Baths: "?",
				URL: "#", CanonicalURL: "https://www.zillow.com/homedetails/2_zpid/",
			},
		},
	}
}

func readAll(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	return records
}

func TestCSVWriterWritesHeaderAndRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "runs.csv")

	w, err := NewCSVWriter(path)
	if err != nil {
		t.Fatalf("NewCSVWriter: %v", err)
	}
	if err := w.Write(sampleResult("run-a")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	records := readAll(t, path)
	if len(records) != 3 {
		t.Fatalf("expected header + 2 rows, got %d records", len(records))
	}
	if records[0][0] != "run_id" || len(records[0]) != len(csvHeader) {
		t.Errorf("unexpected header: %v", records[0])
	}

	first := records[1]
	if first[0] != "run-a" || first[1] != "1" || first[2] != "1" {
		t.Errorf("row 1 prefix: %v", first[:3])
	}
	if first[10] != "Pike Realty" {
		t.Errorf("broker: got %q", first[10])
	}
	if first[12] != "Line one, \"quoted\"\nline two" {
		t.Errorf("description should round-trip, got %q", first[12])
	}
	if first[13] != "2024-05-01T12:00:00Z" {
		t.Errorf("searched_at: got %q", first[13])
	}

	second := records[2]
	if second[1] != "2" || second[7] != "" || second[10] != "" {
		t.Errorf("absent optional fields should be empty: %v", second)
	}
}

func TestCSVWriterAppendsWithoutSecondHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.csv")

	for _, id := range []string{"run-a", "run-b"} {
		w, err := NewCSVWriter(path)
		if err != nil {
			t.Fatalf("NewCSVWriter: %v", err)
		}
		if err := w.Write(sampleResult(id)); err != nil {
			t.Fatalf("Write: %v", err)
		}
		w.Close()
	}

	records := readAll(t, path)
	if len(records) != 5 {
		t.Fatalf("expected header + 4 rows, got %d", len(records))
	}
	if records[3][0] != "run-b" {
		t.Errorf("second run rows should follow the first, got %v", records[3][0])
	}
}

func TestCSVWriterEmptyResult(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.csv")
	w, err := NewCSVWriter(path)
	if err != nil {
		t.Fatalf("NewCSVWriter: %v", err)
	}
	if err := w.Write(&models.SearchResult{RunID: "empty"}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	w.Close()

	if records := readAll(t, path); len(records) != 1 {
		t.Errorf("expected only the header, got %d records", len(records))
	}
}

func TestNullableRoundTrip(t *testing.T) {
	if ns := nullable(nil); ns.Valid {
		t.Error("nil should map to NULL")
	}
	if got := ptr(nullable(strPtr(""))); got == nil || *got != "" {
		t.Error("present empty string should survive as non-nil")
	}
	if got := ptr(nullable(nil)); got != nil {
		t.Error("NULL should map back to nil")
	}
}
