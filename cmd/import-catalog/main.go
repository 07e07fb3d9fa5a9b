package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/joho/godotenv"

	"github.com/ajharbinger/card-recommender/internal/database"
	"github.com/ajharbinger/card-recommender/internal/importer"
	"github.com/ajharbinger/card-recommender/internal/logger"
	"github.com/ajharbinger/card-recommender/internal/metrics"
	"github.com/ajharbinger/card-recommender/internal/models"
	"github.com/ajharbinger/card-recommender/internal/repository"
	"github.com/ajharbinger/card-recommender/internal/services"
	"github.com/ajharbinger/card-recommender/pkg/config"
)

func main() {
	// Command line flags
	urls := flag.String("url", "", "Issuer catalog page URL, or several separated by commas")
	issuer := flag.String("issuer", "", "Issuer name for pages without an issuer column")
	file := flag.String("file", "", "Parse a saved HTML page instead of fetching (never stores)")
	dryRun := flag.Bool("dry-run", false, "Parse and validate without storing")
	concurrency := flag.Int("concurrency", 3, "Pages fetched at once")
	verbose := flag.Bool("v", false, "Print parsed cards")
	flag.Parse()

	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := config.New()
	appLog := logger.New(logger.Options{Level: cfg.LogLevel, Console: true, Output: os.Stderr})

	if *file == "" && *urls == "" {
		flag.Usage()
		os.Exit(2)
	}

	repos := repository.NewMemoryRepositories(repository.NewMemoryRepository(nil))
	if *file == "" && !*dryRun {
		if !cfg.HasDatabase() {
			log.Fatal("DATABASE_URL is required to store cards; use -dry-run to only parse")
		}
		db, err := database.New(cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer db.Close()

		if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
			log.Fatalf("Failed to run migrations: %v", err)
		}
		repos = repository.NewRepositories(db.DB)
		fmt.Println("Database connection established")
	}

	client := importer.NewClient(cfg.ImportRequestsPerSecond)
	defer client.Close()

	service := importer.NewService(repos, client, services.NewEngine(cfg).Bounds(), appLog, metrics.New())

	if *file != "" {
		result, err := parseFile(service, *file, *issuer)
		if err != nil {
			log.Fatalf("Failed to parse %s: %v", *file, err)
		}
		report(result, *verbose)
		return
	}

	var sources []importer.Source
	for _, u := range strings.Split(*urls, ",") {
		if u = strings.TrimSpace(u); u != "" {
			sources = append(sources, importer.Source{URL: u, Issuer: *issuer})
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	startTime := time.Now()
	results := service.ImportAll(ctx, sources, *concurrency, *dryRun)

	failed := 0
	for _, result := range results {
		report(result, *verbose)
		if result.Error != "" {
			failed++
		}
	}

	fmt.Printf("\nImported %d source(s) in %v, %d failed\n", len(results), time.Since(startTime).Round(time.Millisecond), failed)
	if failed > 0 {
		os.Exit(1)
	}
}

func parseFile(service *importer.Service, path, issuer string) (*importer.Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	doc, err := goquery.NewDocumentFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	return service.ParseDocument(doc, importer.Source{URL: path, Issuer: issuer})
}

func report(result *importer.Result, verbose bool) {
	fmt.Printf("\n%s\n", result.Source)
	if result.Error != "" {
		fmt.Printf("  failed: %s\n", result.Error)
		return
	}

	fmt.Printf("  parsed %d, stored %d, rejected %d", result.Parsed, result.Stored, len(result.Rejected))
	if result.DryRun {
		fmt.Print(" (dry run)")
	}
	fmt.Println()

	for _, r := range result.Rejected {
		reasons := make([]string, len(r.Faults))
		for i, f := range r.Faults {
			reasons[i] = f.Field + " " + f.Reason
		}
		fmt.Printf("  row %d %q rejected: %s\n", r.Row, r.Name, strings.Join(reasons, "; "))
	}
	for _, w := range result.Warnings {
		fmt.Printf("  warning: %s\n", w)
	}

	if verbose {
		cardsJSON, err := json.MarshalIndent(models.NewCardViews(result.Cards), "", "  ")
		if err != nil {
			log.Printf("Failed to marshal cards: %v", err)
			return
		}
		fmt.Println(string(cardsJSON))
	}
}

func init() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [options]\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Import credit cards from issuer catalog pages\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExample usage:\n")
		fmt.Fprintf(os.Stderr, "  %s -url=https://bank.example/cards -issuer=\"Example Bank\"\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -file=cards.html -v\n", os.Args[0])
	}
}
