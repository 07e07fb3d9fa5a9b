package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"github.com/ajharbinger/card-recommender/internal/errors"
	"github.com/ajharbinger/card-recommender/internal/logger"
	"github.com/ajharbinger/card-recommender/internal/metrics"
	"github.com/ajharbinger/card-recommender/internal/models"
	"github.com/ajharbinger/card-recommender/internal/recommend"
	"github.com/ajharbinger/card-recommender/internal/repository"
	"github.com/ajharbinger/card-recommender/internal/services"
	"github.com/ajharbinger/card-recommender/pkg/config"
)

func main() {
	catalogPath := flag.String("catalog", "", "YAML card catalog (defaults to CATALOG_FILE)")
	income := flag.String("income", "", "Monthly income")
	score := flag.Int("score", -1, "Credit score")
	spend := flag.String("spend", "", "Monthly spend per category, e.g. fuel=2000,dining=1000")
	reward := flag.String("reward", "All", "Preferred reward type")
	asJSON := flag.Bool("json", false, "Print the API response body instead of text")
	verbose := flag.Bool("v", false, "Log skipped catalog records")
	flag.Parse()

	_ = godotenv.Load()
	cfg := config.New()

	path := *catalogPath
	if path == "" {
		path = cfg.CatalogFile
	}
	if path == "" {
		fail("no catalog file: pass -catalog or set CATALOG_FILE")
	}
	if *income == "" || *score < 0 {
		flag.Usage()
		os.Exit(2)
	}

	monthly, err := decimal.NewFromString(*income)
	if err != nil {
		fail(fmt.Sprintf("income %q is not a number", *income))
	}
	categorySpend, err := parseSpend(*spend)
	if err != nil {
		fail(err.Error())
	}

	repos, err := repository.NewFileRepositories(path)
	if err != nil {
		fail(err.Error())
	}

	log := logger.Nop()
	if *verbose {
		log = logger.New(logger.Options{Level: "warn", Console: true, Output: os.Stderr})
	}
	svc := services.NewServices(repos, cfg, log, metrics.New())

	profile := recommend.UserProfile{
		MonthlyIncome:       monthly,
		CreditScore:         *score,
		CategorySpend:       categorySpend,
		PreferredRewardType: *reward,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	result, err := svc.Recommendation.Recommend(ctx, profile)
	if err != nil {
		if appErr, ok := errors.As(err); ok {
			if faults, ok := appErr.Faults.([]recommend.ValidationFault); ok {
				for _, f := range faults {
					fmt.Fprintf(os.Stderr, "  %s: %s\n", f.Field, f.Reason)
				}
			}
		}
		fail(err.Error())
	}

	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(models.NewRecommendationResponse("", result)); err != nil {
			fail(err.Error())
		}
		return
	}

	render(os.Stdout, result)
}

func fail(msg string) {
	fmt.Fprintln(os.Stderr, "error:", msg)
	os.Exit(1)
}

func init() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [options]\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Recommend credit cards from a catalog file\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExample usage:\n")
		fmt.Fprintf(os.Stderr, "  %s -catalog catalog/cards.yaml -income 50000 -score 750 -spend fuel=2000,travel=1000,groceries=3000,dining=1000\n", os.Args[0])
	}
}
