package services

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"zillow-finder/models"
	"zillow-finder/utils"
)

// InsightService summarises and prints the cards of one search run.
type InsightService struct {
	logger *utils.Logger
}

// NewInsightService creates an InsightService.
func NewInsightService(logger *utils.Logger) *InsightService {
	return &InsightService{logger: logger}
}

// Generate summarises ranked cards. Only cards with a known price count
// toward the price statistics.
func (s *InsightService) Generate(cards []*models.ListingCard) *models.InsightReport {
	report := &models.InsightReport{
		ListingsByBroker: make(map[string]int),
	}

	if len(cards) == 0 {
		return report
	}

	report.TotalListings = len(cards)

	var total int
	for _, c := range cards {
		if c.Broker != nil && strings.TrimSpace(*c.Broker) != "" {
			report.ListingsByBroker[strings.TrimSpace(*c.Broker)]++
		}

		p, ok := NumericPrice(c.Price)
		if !ok {
			continue
		}
		if report.PricedListings == 0 || p < report.MinPrice {
			report.MinPrice = p
			report.Cheapest = c
		}
		if report.PricedListings == 0 || p > report.MaxPrice {
			report.MaxPrice = p
			report.MostExpensive = c
		}
		report.PricedListings++
		total += p
	}

	if report.PricedListings > 0 {
		report.AveragePrice = round2(float64(total) / float64(report.PricedListings))
	}

	s.logger.Debug("[insights] %d cards, %d priced", report.TotalListings, report.PricedListings)
	return report
}

// Print writes the report to stdout.
func (s *InsightService) Print(r *models.InsightReport) {
	s.Fprint(os.Stdout, r)
}

// Fprint writes the report to w.
func (s *InsightService) Fprint(w io.Writer, r *models.InsightReport) {
	sep := strings.Repeat("═", 54)
	thin := strings.Repeat("─", 54)

	fmt.Fprintf(w, "\n\033[1;35m%s\033[0m\n", sep)
	fmt.Fprintf(w, "\033[1;35m  📊 SEARCH INSIGHTS\033[0m\n")
	fmt.Fprintf(w, "\033[1;35m%s\033[0m\n\n", sep)

	fmt.Fprintf(w, "\033[1;33m  Overview\033[0m\n")
	fmt.Fprintf(w, "  %s\n", thin)
	fmt.Fprintf(w, "  Listings shown      : \033[1m%d\033[0m\n", r.TotalListings)
	fmt.Fprintf(w, "  With a known price  : \033[1m%d\033[0m\n", r.PricedListings)
	fmt.Fprintln(w)

	fmt.Fprintf(w, "\033[1;33m  Price Statistics\033[0m\n")
	fmt.Fprintf(w, "  %s\n", thin)
	if r.PricedListings > 0 {
		fmt.Fprintf(w, "  Average price : \033[1;32m$%.2f\033[0m\n", r.AveragePrice)
		fmt.Fprintf(w, "  Minimum price : \033[1;32m$%d\033[0m\n", r.MinPrice)
		fmt.Fprintf(w, "  Maximum price : \033[1;32m$%d\033[0m\n", r.MaxPrice)
	} else {
		fmt.Fprintf(w, "  No price data available\n")
	}
	fmt.Fprintln(w)

	if r.Cheapest != nil {
		fmt.Fprintf(w, "\033[1;33m  Cheapest Listing\033[0m\n")
		fmt.Fprintf(w, "  %s\n", thin)
		fmt.Fprintf(w, "  %s\n", truncate(r.Cheapest.Address, 50))
		fmt.Fprintf(w, "  Price : \033[1;32m%s\033[0m\n", r.Cheapest.Price)
		fmt.Fprintln(w)
	}

	if r.MostExpensive != nil {
		fmt.Fprintf(w, "\033[1;33m  Most Expensive Listing\033[0m\n")
		fmt.Fprintf(w, "  %s\n", thin)
		fmt.Fprintf(w, "  %s\n", truncate(r.MostExpensive.Address, 50))
		fmt.Fprintf(w, "  Price : \033[1;31m%s\033[0m\n", r.MostExpensive.Price)
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "\033[1;33m  Listings by Broker\033[0m\n")
	fmt.Fprintf(w, "  %s\n", thin)
	if len(r.ListingsByBroker) == 0 {
		fmt.Fprintf(w, "  No broker data\n")
	} else {
		type brokerCount struct {
			name  string
			count int
		}
		var brokers []brokerCount
		for name, cnt := range r.ListingsByBroker {
			brokers = append(brokers, brokerCount{name, cnt})
		}
		sort.Slice(brokers, func(i, j int) bool {
			if brokers[i].count != brokers[j].count {
				return brokers[i].count > brokers[j].count
			}
			return brokers[i].name < brokers[j].name
		})
		for _, bc := range brokers {
			bar := strings.Repeat("█", bc.count)
			fmt.Fprintf(w, "  %-30s %s (%d)\n", truncate(bc.name, 28), bar, bc.count)
		}
	}

	fmt.Fprintf(w, "\n\033[1;35m%s\033[0m\n\n", sep)
}

func round2(f float64) float64 {
	return float64(int(f*100+0.5)) / 100
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
