package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"zillow-finder/config"
	"zillow-finder/llm"
	"zillow-finder/models"
	"zillow-finder/scraper/zillow"
	"zillow-finder/services"
	"zillow-finder/storage"
	"zillow-finder/utils"
)

func main() {
	query := flag.String("q", "", "Free-text real-estate query (defaults to the positional arguments)")
	maxPages := flag.Int("max-pages", 0, "Search pages to fetch (0 = MAX_SEARCH_PAGES)")
	trace := flag.Bool("trace", false, "Print the collected pipeline log after the results")
	flag.Parse()

	text := strings.TrimSpace(*query)
	if text == "" {
		text = strings.TrimSpace(strings.Join(flag.Args(), " "))
	}
	if text == "" {
		fmt.Fprintln(os.Stderr, `usage: zillow-finder [-max-pages N] [-trace] -q "2 bed apartments in Seattle under $3000"`)
		os.Exit(2)
	}

	logger := utils.NewLogger()
	lines := utils.NewLineLog()
	logger.AddSink(lines)

	cfg := config.Load()
	if *maxPages > 0 {
		cfg.MaxSearchPages = *maxPages
	}

	logger.Info("=== Zillow Finder starting ===")
	logger.Info("Config: provider %s | model %s | pages %d | concurrency %d | rate %dms",
		cfg.LLMProvider, cfg.LLMModel, cfg.MaxSearchPages, cfg.MaxConcurrency, cfg.RateLimitMs)

	completer, err := llm.NewCompleter(llm.Options{
		Provider:   cfg.LLMProvider,
		APIKey:     cfg.APIKey(),
		Model:      cfg.LLMModel,
		BaseURL:    cfg.LLMBaseURL,
		MaxRetries: cfg.MaxRetries,
	})
	if err != nil {
		logger.Error("Cannot configure query interpreter: %v", err)
		if errors.Is(err, llm.ErrMissingCredential) {
			logger.Error("Set OPEN_AI (or ANTHROPIC_API_KEY with LLM_PROVIDER=anthropic) in .env")
		}
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	canon := services.NewDetailURLCanonicalizer(cfg.SiteBaseURL)
	scraper := zillow.New(cfg, logger)
	pipeline := services.NewPipeline(services.PipelineOptions{
		Interpreter: services.NewInterpreter(completer, cfg.LLMTimeout, logger),
		Search:      scraper,
		Details:     scraper,
		Builder:     services.NewSearchURLBuilder(cfg.SiteBaseURL),
		Validator:   services.NewDetailURLValidator(canon),
		Merger:      services.NewMerger(canon, cfg.FieldCandidates, logger),
		MaxPages:    cfg.MaxSearchPages,
		Logger:      logger,
	})

	result, err := pipeline.ProcessQuery(ctx, text)
	if err != nil {
		logger.Error("Query failed: %v", err)
		printTrace(*trace, lines)
		os.Exit(1)
	}

	services.PrintCards(os.Stdout, result.Cards)

	insightSvc := services.NewInsightService(logger)
	insightSvc.Print(insightSvc.Generate(result.Cards))

	persist(cfg, logger, result)
	printTrace(*trace, lines)
}

func persist(cfg *config.Config, logger *utils.Logger, result *models.SearchResult) {
	var writers []storage.ResultWriter

	if cfg.CSVOutputPath != "" {
		w, err := storage.NewCSVWriter(cfg.CSVOutputPath)
		if err != nil {
			logger.Error("Failed to create CSV writer: %v", err)
		} else {
			writers = append(writers, w)
		}
	}

	var pgWriter *storage.PostgresWriter
	if cfg.StorePostgres {
		w, err := storage.NewPostgresWriter(cfg.DSN())
		if err != nil {
			logger.Error("Failed to connect to PostgreSQL: %v", err)
			logger.Error("Make sure Docker is running: docker compose up -d")
		} else {
			pgWriter = w
			writers = append(writers, w)
		}
	}

	for _, w := range writers {
		if err := w.Write(result); err != nil {
			logger.Error("Store run %s failed: %v", result.RunID, err)
			continue
		}
		if _, ok := w.(*storage.CSVWriter); ok {
			logger.Info("Run %s appended to %s", result.RunID, cfg.CSVOutputPath)
		}
	}

	if pgWriter != nil {
		if stored, err := pgWriter.FetchRun(result.RunID); err != nil {
			logger.Error("Failed to read run %s back from PostgreSQL: %v", result.RunID, err)
		} else {
			logger.Info("Run %s stored in PostgreSQL: %d listing cards", result.RunID, len(stored))
		}
	}

	for _, w := range writers {
		if err := w.Close(); err != nil {
			logger.Warn("Closing writer: %v", err)
		}
	}
}

func printTrace(enabled bool, lines *utils.LineLog) {
	if !enabled {
		return
	}
	fmt.Println("\n--- pipeline log ---")
	for _, l := range lines.Lines() {
		fmt.Println(l)
	}
}
