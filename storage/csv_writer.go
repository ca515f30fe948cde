package storage

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"zillow-finder/models"
)

var csvHeader = []string{
	"run_id", "rank", "zpid", "price", "address", "beds", "baths",
	"img", "url", "canonical_url", "broker", "phone", "description", "searched_at",
}

// CSVWriter appends ranked cards to a CSV file.
// It is safe for concurrent use.
type CSVWriter struct {
	mu     sync.Mutex
	file   *os.File
	writer *csv.Writer
}

// NewCSVWriter opens (or creates) the CSV file at the given path, writing the
// header row when the file is new. Intermediate directories are created
// automatically.
func NewCSVWriter(path string) (*CSVWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("csv: create output dir: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("csv: open file %q: %w", path, err)
	}

	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("csv: stat %q: %w", path, err)
	}

	w := csv.NewWriter(f)
	if info.Size() == 0 {
		if err := w.Write(csvHeader); err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("csv: write header: %w", err)
		}
		w.Flush()
	}

	return &CSVWriter{file: f, writer: w}, nil
}

// Write appends one row per card, in rank order.
func (c *CSVWriter) Write(result *models.SearchResult) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	searchedAt := result.CreatedAt.Format(time.RFC3339)
	for i, card := range result.Cards {
		row := []string{
			result.RunID,
			strconv.Itoa(i + 1),
			card.ZPID,
			card.Price,
			card.Address,
			card.Beds,
			card.Baths,
			deref(card.Img),
			card.URL,
			card.CanonicalURL,
			deref(card.Broker),
			deref(card.Phone),
			deref(card.Description),
			searchedAt,
		}
		if err := c.writer.Write(row); err != nil {
			return fmt.Errorf("csv: write row: %w", err)
		}
	}

	c.writer.Flush()
	return c.writer.Error()
}

// Close flushes and closes the underlying file.
func (c *CSVWriter) Close() error {
	c.writer.Flush()
	return c.file.Close()
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
