// Package main provides the value bet scanning CLI.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/martofrog/tennis-predictions/internal/betting"
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
	minEdge    float64
	sport      string
	showAll    bool

	appLog     *logrus.Logger
	cfg        *config.Config
	db         *database.DB
	bettingSvc *betting.Service
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "./config/config.yaml", "Path to configuration file")
	rootCmd.Flags().Float64Var(&minEdge, "min-edge", -1, "Minimum probability edge in percentage points (default: configured value)")
	rootCmd.Flags().StringVar(&sport, "sport", "", "Sport key to scan (default: all configured sports)")
	rootCmd.Flags().BoolVar(&showAll, "all", false, "Show every qualifying quote instead of the best bet per match")
}

var rootCmd = &cobra.Command{
	Use:   "value-bets",
	Short: "Scan upcoming matches for value betting opportunities",
	Long: `Fetches current bookmaker odds, compares the implied probabilities with
the rating engine's forecasts, and lists the quotes where the model sees an edge.`,
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
		return runScan(cmd.Context())
	},
}

func main() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
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

	repos, err := repository.NewRepositories(&cfg.Ratings, db)
	if err != nil {
		return err
	}

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
	if engine.PlayerCount() == 0 {
		return fmt.Errorf("no ratings found, run train first")
	}

	httpClientCfg := datasource.DefaultHTTPClientConfig()
	httpClientCfg.Timeout = cfg.OddsAPITimeout()
	httpClientCfg.RateLimit = cfg.OddsAPI.RateLimit
	httpClient := datasource.NewRateLimitedHTTPClient(httpClientCfg, appLog)

	predictionSvc := service.NewPredictionService(engine, appLog)
	calculator := betting.NewEdgeCalculator(predictionSvc, betting.EdgeConfig{
		StrongBetThreshold: cfg.Betting.StrongBetThreshold,
		BetThreshold:       cfg.Betting.BetThreshold,
	}, appLog)
	selector := betting.NewSelector(cfg.Betting.KellyFraction)
	oddsProvider := datasource.NewFactory(cfg, appLog).NewOddsProvider(httpClient)

	bettingSvc = betting.NewService(oddsProvider, calculator, selector, cfg.Betting, appLog)
	return nil
}

func runScan(ctx context.Context) error {
	edge := minEdge
	if edge < 0 {
		edge = cfg.Betting.MinEdge
	}

	sports := cfg.Betting.Sports
	if sport != "" {
		sports = []string{sport}
	}

	var total int
	for _, s := range sports {
		bets, err := scanSport(ctx, s, edge)
		if err != nil {
			return err
		}
		printBets(s, bets)
		total += len(bets)
	}

	if total == 0 {
		fmt.Printf("No value bets found with edge >= %.1f%%\n", edge)
	}
	return nil
}

func scanSport(ctx context.Context, sport string, edge float64) ([]models.ValueBet, error) {
	if showAll {
		return bettingSvc.FindValueBets(ctx, sport, edge, false)
	}
	return bettingSvc.TodaysValueBets(ctx, sport, edge)
}

func printBets(sport string, bets []models.ValueBet) {
	if len(bets) == 0 {
		return
	}

	fmt.Printf("\n%s (%d value bets)\n", sport, len(bets))
	fmt.Printf("%-28s %-22s %-14s %8s %8s %8s %10s\n",
		"MATCH", "BET ON", "BOOKMAKER", "ODDS", "EDGE%", "EV%", "STAKE")

	for _, bet := range bets {
		stake := "-"
		if bet.RecommendedStake != nil {
			stake = fmt.Sprintf("%.2f%%", *bet.RecommendedStake*100)
		}
		fmt.Printf("%-28s %-22s %-14s %8.2f %8.2f %8.2f %10s\n",
			truncate(bet.Player1+" v "+bet.Player2, 28),
			truncate(bet.BetOnPlayer, 22),
			truncate(bet.Bookmaker, 14),
			bet.Odds,
			bet.EdgePercentage,
			bet.ExpectedValuePercentage,
			stake,
		)
	}
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-1]) + "…"
}
