// Package main provides the historical forecast evaluation CLI.
package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/martofrog/tennis-predictions/internal/backtest"
	"github.com/martofrog/tennis-predictions/internal/config"
	"github.com/martofrog/tennis-predictions/internal/logger"
	"github.com/martofrog/tennis-predictions/internal/models"
	"github.com/martofrog/tennis-predictions/internal/rating"
	"github.com/martofrog/tennis-predictions/internal/repository"
)

var (
	configFile string
	years      []int
	tour       string
	warmup     int
	jsonOut    bool

	appLog *logrus.Logger
	cfg    *config.Config
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "./config/config.yaml", "Path to configuration file")
	rootCmd.Flags().IntSliceVar(&years, "years", nil, "Seasons to replay (default: all available)")
	rootCmd.Flags().StringVar(&tour, "tour", "", "Tour to replay: atp or wta (default: both)")
	rootCmd.Flags().IntVar(&warmup, "warmup", backtest.DefaultConfig().WarmupMatches, "Matches replayed before scoring starts")
	rootCmd.Flags().BoolVar(&jsonOut, "json", false, "Print the full report as JSON")
}

var rootCmd = &cobra.Command{
	Use:   "backtest",
	Short: "Evaluate rating forecasts against historical results",
	Long: `Replays stored match history chronologically through a fresh rating
engine, forecasting each match before applying its result, and reports
accuracy, Brier score, log loss and a calibration table.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := loadConfig(); err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		appLog = logger.NewLogger(cfg.App.LogLevel)
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runBacktest(cmd.Context())
	},
}

func main() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Hour)
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

func loadConfig() error {
	var err error
	cfg, err = config.LoadWithDefaults(configFile)
	if err != nil {
		return err
	}
	return config.Validate(cfg)
}

func runBacktest(ctx context.Context) error {
	backtestCfg := backtest.DefaultConfig()
	backtestCfg.WarmupMatches = warmup

	matches := repository.NewCSVMatchRepository(cfg.Ratings.DataDir)
	engine, err := backtest.NewEngine(backtestCfg, rating.Config{
		KFactor:             cfg.Elo.KFactor,
		DefaultRating:       cfg.Elo.DefaultRating,
		SurfaceAdvantage:    cfg.Elo.SurfaceAdvantage,
		MonthlyDecayRate:    cfg.Elo.MonthlyDecayRate,
		DecayGraceMonths:    cfg.Elo.DecayGraceMonths,
		MinRatingAfterDecay: cfg.Elo.MinRatingAfterDecay,
	}, matches, appLog)
	if err != nil {
		return err
	}

	selectedTour := models.Tour("")
	if tour != "" {
		selectedTour = models.ParseTour(tour)
	}

	report, err := engine.Run(ctx, years, selectedTour)
	if err != nil {
		return err
	}

	if jsonOut {
		fmt.Println(report.ToJSON())
		return nil
	}

	fmt.Println(report)
	if report.MatchesEvaluated > 0 {
		fmt.Println("\ncalibration (favorite probability vs actual win rate):")
		for _, bucket := range report.Calibration {
			if bucket.Count == 0 {
				continue
			}
			fmt.Printf("  %.2f-%.2f  forecast %.3f  actual %.3f  (%d matches)\n",
				bucket.Low, bucket.High, bucket.MeanForecast, bucket.ActualRate, bucket.Count)
		}
	}
	return nil
}
