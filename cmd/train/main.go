// Package main provides the rating training CLI.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/martofrog/tennis-predictions/internal/config"
	"github.com/martofrog/tennis-predictions/internal/database"
	"github.com/martofrog/tennis-predictions/internal/datasource"
	"github.com/martofrog/tennis-predictions/internal/logger"
	"github.com/martofrog/tennis-predictions/internal/models"
	"github.com/martofrog/tennis-predictions/internal/rating"
	"github.com/martofrog/tennis-predictions/internal/repository"
	"github.com/martofrog/tennis-predictions/internal/service"
)

var (
	configFile string
	years      []int
	tour       string
	ingest     bool

	appLog *logrus.Logger
	cfg    *config.Config
	db     *database.DB
	repos  *repository.Repositories
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "./config/config.yaml", "Path to configuration file")
	rootCmd.Flags().IntSliceVar(&years, "years", nil, "Seasons to train on (default: all available)")
	rootCmd.Flags().StringVar(&tour, "tour", "", "Tour to train on: atp or wta (default: both)")
	rootCmd.Flags().BoolVar(&ingest, "ingest", false, "Download missing seasons from the results source first")
}

var rootCmd = &cobra.Command{
	Use:   "train",
	Short: "Train player ratings from historical match results",
	Long: `Replays historical match results through the Elo rating engine in
chronological order and saves the resulting ratings to the configured store.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := loadConfig(); err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		if err := setupDependencies(cmd.Context()); err != nil {
			return fmt.Errorf("failed to setup dependencies: %w", err)
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTraining(cmd.Context())
	},
}

func main() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Hour)
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		log.Fatalf("Error: %v", err)
	}
	if db != nil {
		db.Close()
	}
}

func loadConfig() error {
	var err error
	cfg, err = config.LoadWithDefaults(configFile)
	if err != nil {
		return err
	}

	if os.Getenv("AWS_SECRETS_ENABLED") == "true" {
		region := os.Getenv("AWS_REGION")
		secretName := os.Getenv("AWS_SECRET_NAME")
		if region == "" || secretName == "" {
			return fmt.Errorf("AWS_REGION and AWS_SECRET_NAME must be set when AWS_SECRETS_ENABLED is true")
		}
		if err := config.LoadSecretsFromAWS(context.Background(), cfg, region, secretName); err != nil {
			return err
		}
	}

	return config.Validate(cfg)
}

func setupDependencies(ctx context.Context) error {
	appLog = logger.NewLogger(cfg.App.LogLevel)

	var err error
	if cfg.Ratings.Backend == "postgres" {
		db, err = database.Initialize(ctx, &cfg.Database)
		if err != nil {
			return fmt.Errorf("connecting to database: %w", err)
		}
	}

	repos, err = repository.NewRepositories(&cfg.Ratings, db)
	return err
}

func runTraining(ctx context.Context) error {
	engine, err := rating.NewEngine(ctx, rating.Config{
		KFactor:             cfg.Elo.KFactor,
		DefaultRating:       cfg.Elo.DefaultRating,
		SurfaceAdvantage:    cfg.Elo.SurfaceAdvantage,
		MonthlyDecayRate:    cfg.Elo.MonthlyDecayRate,
		DecayGraceMonths:    cfg.Elo.DecayGraceMonths,
		MinRatingAfterDecay: cfg.Elo.MinRatingAfterDecay,
	}, repos.Rating, appLog)
	if err != nil {
		return fmt.Errorf("restoring ratings: %w", err)
	}

	var results datasource.ResultsSource
	if ingest {
		httpClient := datasource.NewRateLimitedHTTPClient(datasource.DefaultHTTPClientConfig(), appLog)
		defer httpClient.Close()

		results, err = datasource.NewFactory(cfg, appLog).NewResultsSources(httpClient)
		if err != nil {
			return fmt.Errorf("initializing results sources: %w", err)
		}
	}

	trainingSvc := service.NewTrainingService(engine, repos.Match, results, appLog)

	selectedTour := models.Tour("")
	if tour != "" {
		selectedTour = models.ParseTour(tour)
	}

	if ingest {
		for _, year := range years {
			for _, t := range toursToIngest(selectedTour) {
				count, err := trainingSvc.IngestSeason(ctx, year, t)
				if err != nil {
					return err
				}
				fmt.Printf("Ingested %d matches for %s %d\n", count, t, year)
			}
		}
	}

	result, err := trainingSvc.Train(ctx, years, selectedTour)
	if err != nil {
		return err
	}

	fmt.Printf("\nTraining complete: %s\n", result)
	return nil
}

func toursToIngest(tour models.Tour) []models.Tour {
	if tour != "" {
		return []models.Tour{tour}
	}
	return []models.Tour{models.TourATP, models.TourWTA}
}
