package zillow

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"zillow-finder/models"
)

var (
	errNoNextData   = errors.New("page has no embedded __NEXT_DATA__ payload")
	errNoListResult = errors.New("search payload has no listResults")
	errNoProperty   = errors.New("detail payload has no property record")
)

// nextData returns the decoded __NEXT_DATA__ script of a rendered page.
func nextData(html string) (map[string]any, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	raw := strings.TrimSpace(doc.Find("script#__NEXT_DATA__").First().Text())
	if raw == "" {
		return nil, errNoNextData
	}

	obj, err := decodeJSONObject(raw)
	if err != nil {
		return nil, fmt.Errorf("decode __NEXT_DATA__: %w", err)
	}
	return obj, nil
}

func decodeJSONObject(raw string) (map[string]any, error) {
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()

	var obj map[string]any
	if err := dec.Decode(&obj); err != nil {
		return nil, err
	}
	return obj, nil
}

// parseSearchPage extracts summary rows and the page count from a rendered
// search-results page.
func parseSearchPage(html string) ([]models.SummaryRow, int, error) {
	data, err := nextData(html)
	if err != nil {
		return nil, 0, err
	}

	cat := dig(data, "props", "pageProps", "searchPageState", "cat1")
	results, ok := dig(cat, "searchResults", "listResults").([]any)
	if !ok {
		return nil, 0, errNoListResult
	}

	rows := make([]models.SummaryRow, 0, len(results))
	for _, r := range results {
		if m, ok := r.(map[string]any); ok {
			rows = append(rows, models.SummaryRow(m))
		}
	}

	totalPages := 1
	if n, err := strconv.Atoi(models.Stringify(dig(cat, "searchList", "totalPages"))); err == nil && n > 0 {
		totalPages = n
	}
	return rows, totalPages, nil
}

// parseDetailPage extracts the property record from a rendered detail page.
// The record lives inside gdpClientCache, itself a JSON-encoded string keyed
// by query name.
func parseDetailPage(html string) (models.DetailRecord, error) {
	data, err := nextData(html)
	if err != nil {
		return nil, err
	}

	cacheRaw, ok := dig(data, "props", "pageProps", "componentProps", "gdpClientCache").(string)
	if !ok || cacheRaw == "" {
		return nil, errNoProperty
	}
	cache, err := decodeJSONObject(cacheRaw)
	if err != nil {
		return nil, fmt.Errorf("decode gdpClientCache: %w", err)
	}

	keys := make([]string, 0, len(cache))
	for k := range cache {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		if prop, ok := dig(cache[k], "property").(map[string]any); ok {
			return models.DetailRecord(prop), nil
		}
	}
	return nil, errNoProperty
}

// dig walks nested JSON objects and returns nil when any step is missing.
func dig(v any, path ...string) any {
	for _, key := range path {
		m, ok := v.(map[string]any)
		if !ok {
			return nil
		}
		v = m[key]
	}
	return v
}
