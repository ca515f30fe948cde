package zillow

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/chromedp"

	"zillow-finder/config"
	"zillow-finder/models"
	"zillow-finder/utils"
)

const userAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 " +
	"(KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// Scraper fetches search-result and detail pages with a headless browser.
// It implements the pipeline's SearchExecutor and DetailExecutor.
type Scraper struct {
	cfg    *config.Config
	logger *utils.Logger
	retry  *utils.RetryConfig
}

// New creates a ready-to-use Scraper.
func New(cfg *config.Config, logger *utils.Logger) *Scraper {
	return &Scraper{
		cfg:    cfg,
		logger: logger,
		retry: &utils.RetryConfig{
			MaxAttempts: cfg.MaxRetries + 1,
			BaseDelay:   2 * time.Second,
			Logger:      logger,
		},
	}
}

// ScrapeSearch returns the summary rows of up to maxPages result pages.
// A failure on the first page is an error; later failures end pagination.
func (s *Scraper) ScrapeSearch(ctx context.Context, searchURL string, maxPages int) ([]models.SummaryRow, error) {
	if maxPages < 1 {
		maxPages = 1
	}

	browserCtx, cancel := s.newBrowser(ctx)
	defer cancel()

	var rows []models.SummaryRow
	for page := 1; page <= maxPages; page++ {
		target := pageURL(searchURL, page)
		s.logger.Info("[zillow] Scraping search page %d: %s", page, target)

		var (
			pageRows   []models.SummaryRow
			totalPages int
		)
		err := s.retry.Do(ctx, fmt.Sprintf("search-page-%d", page), func() error {
			html, err := s.fetchHTML(browserCtx, target)
			if err != nil {
				return err
			}
			pageRows, totalPages, err = parseSearchPage(html)
			return err
		})
		if err != nil {
			if page == 1 {
				return nil, fmt.Errorf("zillow: search %s: %w", searchURL, err)
			}
			s.logger.Warn("[zillow] Page %d failed, stopping: %v", page, err)
			break
		}

		rows = append(rows, pageRows...)
		s.logger.Debug("[zillow] Page %d: %d rows (total pages %d)", page, len(pageRows), totalPages)

		if len(pageRows) == 0 || page >= totalPages {
			break
		}
	}

	s.logger.Info("[zillow] Search complete: %d rows", len(rows))
	return rows, nil
}

// ScrapeDetails fetches detail records for urls through a rate-limited pool.
// Records come back in completion order. Failed pages are skipped; an error
// is returned only when every page failed.
func (s *Scraper) ScrapeDetails(ctx context.Context, urls []string) ([]models.DetailRecord, error) {
	if len(urls) == 0 {
		return nil, nil
	}

	browserCtx, cancel := s.newBrowser(ctx)
	defer cancel()

	pool := utils.NewWorkerPool(s.cfg.MaxConcurrency, s.cfg.RateLimitMs)
	visited := utils.NewURLSet()

	var (
		mu      sync.Mutex
		records []models.DetailRecord
		lastErr error
		failed  int
	)

	for _, u := range urls {
		if !visited.Add(u) {
			continue
		}
		target := u
		pool.Submit(ctx, func() {
			var rec models.DetailRecord
			err := s.retry.Do(ctx, "detail-page", func() error {
				html, err := s.fetchHTML(browserCtx, target)
				if err != nil {
					return err
				}
				rec, err = parseDetailPage(html)
				return err
			})

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				s.logger.Warn("[zillow] Detail page failed for %s: %v", target, err)
				failed++
				lastErr = err
				return
			}
			if rec.String("url") == "" {
				rec["url"] = target
			}
			records = append(records, rec)
		})
	}
	pool.Wait()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("zillow: details: %w", err)
	}
	if len(records) == 0 && failed > 0 {
		return nil, fmt.Errorf("zillow: all %d detail pages failed: %w", failed, lastErr)
	}

	s.logger.Info("[zillow] Details complete: %d unique URLs, %d ok, %d failed",
		visited.Size(), len(records), failed)
	return records, nil
}

func (s *Scraper) newBrowser(ctx context.Context) (context.Context, context.CancelFunc) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.UserAgent(userAgent),
	)
	if bin := findChromeBinary(s.cfg.ChromeBin); bin != "" {
		opts = append(opts, chromedp.ExecPath(bin))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	// Suppress chromedp log noise
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(string, ...interface{}) {}))

	return browserCtx, func() {
		cancelBrowser()
		cancelAlloc()
	}
}

// fetchHTML opens target in a new tab and returns the rendered document.
func (s *Scraper) fetchHTML(browserCtx context.Context, target string) (string, error) {
	tabCtx, cancel := chromedp.NewContext(browserCtx)
	defer cancel()

	tabCtx, cancelTimeout := context.WithTimeout(tabCtx, s.cfg.PageTimeout)
	defer cancelTimeout()

	var html string
	err := chromedp.Run(tabCtx,
		chromedp.Navigate(target),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	if err != nil {
		return "", fmt.Errorf("chromedp load %s: %w", target, err)
	}
	if strings.TrimSpace(html) == "" {
		return "", errors.New("empty document")
	}
	return html, nil
}

// pageURL returns the URL of result page n for a search URL ending in '/'.
func pageURL(searchURL string, page int) string {
	if page <= 1 {
		return searchURL
	}
	if !strings.HasSuffix(searchURL, "/") {
		searchURL += "/"
	}
	return fmt.Sprintf("%s%d_p/", searchURL, page)
}

// findChromeBinary locates Chrome/Chromium binary.
func findChromeBinary(configured string) string {
	if configured != "" {
		return configured
	}

	names := []string{"google-chrome-stable", "google-chrome", "chromium", "chromium-browser"}
	for _, name := range names {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}

	paths := []string{
		"/usr/bin/google-chrome-stable",
		"/usr/bin/google-chrome",
		"/usr/bin/chromium-browser",
		"/usr/bin/chromium",
		"/snap/bin/chromium",
		"/opt/google/chrome/google-chrome",
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	return ""
}
