package storage

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"

	"zillow-finder/models"
	"zillow-finder/services"
)

// PostgresWriter persists search runs and their ranked cards to PostgreSQL.
type PostgresWriter struct {
	db *sql.DB
}

// NewPostgresWriter opens a connection to PostgreSQL, runs schema migrations,
// and returns a ready-to-use PostgresWriter.
func NewPostgresWriter(dsn string) (*PostgresWriter, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}

	for i := 0; i < 5; i++ {
		if err = db.Ping(); err == nil {
			break
		}
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: ping failed after retries: %w", err)
	}

	pw := &PostgresWriter{db: db}
	if err := pw.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: migrate: %w", err)
	}

	return pw, nil
}

func (pw *PostgresWriter) migrate() error {
	_, err := pw.db.Exec(`
		CREATE TABLE IF NOT EXISTS searches (
			run_id      UUID         PRIMARY KEY,
			query       TEXT         NOT NULL,
			home_type   TEXT         NOT NULL DEFAULT '',
			zipcode     TEXT         NOT NULL DEFAULT '',
			city        TEXT         NOT NULL DEFAULT '',
			state       TEXT         NOT NULL DEFAULT '',
			search_url  TEXT         NOT NULL,
			ceiling     INTEGER,
			fetched     INTEGER      NOT NULL DEFAULT 0,
			created_at  TIMESTAMPTZ  NOT NULL DEFAULT NOW()
		);

		CREATE TABLE IF NOT EXISTS listing_cards (
			id            SERIAL PRIMARY KEY,
			run_id        UUID     NOT NULL REFERENCES searches(run_id) ON DELETE CASCADE,
			rank          INTEGER  NOT NULL,
			zpid          TEXT     NOT NULL,
			price         TEXT     NOT NULL,
			numeric_price INTEGER,
			address       TEXT     NOT NULL DEFAULT '',
			beds          TEXT     NOT NULL DEFAULT '',
			baths         TEXT     NOT NULL DEFAULT '',
			img           TEXT,
			url           TEXT     NOT NULL,
			canonical_url TEXT     NOT NULL,
			broker        TEXT,
			phone         TEXT,
			description   TEXT,
			UNIQUE (run_id, canonical_url)
		);

		CREATE INDEX IF NOT EXISTS idx_cards_zpid  ON listing_cards(zpid);
		CREATE INDEX IF NOT EXISTS idx_cards_price ON listing_cards(numeric_price);
	`)
	return err
}

// Write stores the run and its cards in one transaction.
func (pw *PostgresWriter) Write(result *models.SearchResult) error {
	tx, err := pw.db.Begin()
	if err != nil {
		return fmt.Errorf("postgres: begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var ceiling sql.NullInt64
	if result.Ceiling != nil {
		ceiling = sql.NullInt64{Int64: int64(*result.Ceiling), Valid: true}
	}
	_, err = tx.Exec(`
		INSERT INTO searches (run_id, query, home_type, zipcode, city, state, search_url, ceiling, fetched, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
	`, result.RunID, result.Query, result.Filter.HomeType, result.Filter.Zipcode,
		result.Filter.City, result.Filter.State, result.SearchURL, ceiling, result.Fetched, result.CreatedAt)
	if err != nil {
		return fmt.Errorf("postgres: insert search: %w", err)
	}

	const batchSize = 50
	for i := 0; i < len(result.Cards); i += batchSize {
		end := i + batchSize
		if end > len(result.Cards) {
			end = len(result.Cards)
		}
		if err := insertBatch(tx, result.RunID, i, result.Cards[i:end]); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("postgres: commit: %w", err)
	}
	return nil
}

const cardColumns = 14

func insertBatch(tx *sql.Tx, runID string, offset int, batch []*models.ListingCard) error {
	valueStrings := make([]string, 0, len(batch))
	valueArgs := make([]interface{}, 0, len(batch)*cardColumns)

	for idx, c := range batch {
		base := idx * cardColumns
		ph := make([]string, cardColumns)
		for j := range ph {
			ph[j] = fmt.Sprintf("$%d", base+j+1)
		}
		valueStrings = append(valueStrings, "("+strings.Join(ph, ",")+")")

		var numeric sql.NullInt64
		if p, ok := services.NumericPrice(c.Price); ok {
			numeric = sql.NullInt64{Int64: int64(p), Valid: true}
		}
		valueArgs = append(valueArgs,
			runID, offset+idx+1, c.ZPID, c.Price, numeric, c.Address, c.Beds, c.Baths,
			nullable(c.Img), c.URL, c.CanonicalURL, nullable(c.Broker), nullable(c.Phone), nullable(c.Description))
	}

	query := fmt.Sprintf(`
		INSERT INTO listing_cards (run_id, rank, zpid, price, numeric_price, address, beds, baths,
			img, url, canonical_url, broker, phone, description)
		VALUES %s
		ON CONFLICT (run_id, canonical_url) DO NOTHING
	`, strings.Join(valueStrings, ","))

	if _, err := tx.Exec(query, valueArgs...); err != nil {
		return fmt.Errorf("postgres: insert cards: %w", err)
	}
	return nil
}

func (pw *PostgresWriter) Close() error {
	return pw.db.Close()
}

// FetchRun reads back the stored cards of one run in rank order.
func (pw *PostgresWriter) FetchRun(runID string) ([]*models.ListingCard, error) {
	rows, err := pw.db.Query(`
		SELECT zpid, price, address, beds, baths, img, url, canonical_url, broker, phone, description
		FROM listing_cards
		WHERE run_id = $1
		ORDER BY rank
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("postgres: fetch run: %w", err)
	}
	defer rows.Close()

	var cards []*models.ListingCard
	for rows.Next() {
		c := &models.ListingCard{}
		var img, broker, phone, desc sql.NullString
		if err := rows.Scan(
			&c.ZPID, &c.Price, &c.Address, &c.Beds, &c.Baths, &img,
			&c.URL, &c.CanonicalURL, &broker, &phone, &desc,
		); err != nil {
			return nil, fmt.Errorf("postgres: scan row: %w", err)
		}
		c.Img, c.Broker, c.Phone, c.Description = ptr(img), ptr(broker), ptr(phone), ptr(desc)
		cards = append(cards, c)
	}
	return cards, rows.Err()
}

func nullable(p *string) sql.NullString {
	if p == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *p, Valid: true}
}

func ptr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}
