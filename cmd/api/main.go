// Package main provides the entry point for the prediction service.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/martofrog/tennis-predictions/internal/api"
	"github.com/martofrog/tennis-predictions/internal/betting"
	"github.com/martofrog/tennis-predictions/internal/config"
	"github.com/martofrog/tennis-predictions/internal/database"
	"github.com/martofrog/tennis-predictions/internal/datasource"
	"github.com/martofrog/tennis-predictions/internal/health"
	"github.com/martofrog/tennis-predictions/internal/logger"
	"github.com/martofrog/tennis-predictions/internal/metrics"
	"github.com/martofrog/tennis-predictions/internal/rating"
	"github.com/martofrog/tennis-predictions/internal/repository"
	"github.com/martofrog/tennis-predictions/internal/scheduler"
	"github.com/martofrog/tennis-predictions/internal/service"
)

// Build information - set via ldflags
var (
	Version = "dev"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration
	cfg, err := config.LoadWithDefaults(configPath())
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Load AWS secrets if enabled
	if os.Getenv("AWS_SECRETS_ENABLED") == "true" {
		region := os.Getenv("AWS_REGION")
		secretName := os.Getenv("AWS_SECRET_NAME")
		if region == "" || secretName == "" {
			log.Fatalf("AWS_REGION and AWS_SECRET_NAME environment variables must be set when AWS_SECRETS_ENABLED is true")
		}
		if err := config.LoadSecretsFromAWS(ctx, cfg, region, secretName); err != nil {
			log.Fatalf("Failed to load secrets: %v", err)
		}
	}

	// Validate configuration
	if err := config.Validate(cfg); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// Set up logging
	appLog := logger.NewLogger(cfg.App.LogLevel)
	appLog.WithFields(logrus.Fields{
		"environment": cfg.App.Environment,
		"log_level":   cfg.App.LogLevel,
		"version":     Version,
	}).Info("Tennis prediction service starting")

	metrics.InitRegistry()

	// Initialize the rating store
	var db *database.DB
	if cfg.Ratings.Backend == "postgres" {
		db, err = database.Initialize(ctx, &cfg.Database)
		if err != nil {
			appLog.WithError(err).Fatal("Failed to connect to database")
		}
		defer db.Close()
		appLog.Info("Database connection established")
	}

	repos, err := repository.NewRepositories(&cfg.Ratings, db)
	if err != nil {
		appLog.WithError(err).Fatal("Failed to initialize repositories")
	}

	// Restore the rating engine from the store
	engine, err := rating.NewEngine(ctx, ratingConfig(cfg), repos.Rating, appLog)
	if err != nil {
		appLog.WithError(err).Fatal("Failed to restore ratings")
	}
	appLog.WithField("players", engine.PlayerCount()).Info("Rating engine restored")
	metrics.UpdateRatedPlayers(float64(engine.PlayerCount()))

	// Initialize data sources
	httpClientCfg := datasource.DefaultHTTPClientConfig()
	httpClientCfg.Timeout = cfg.OddsAPITimeout()
	httpClientCfg.MaxRetries = cfg.OddsAPI.MaxRetries
	httpClientCfg.RateLimit = cfg.OddsAPI.RateLimit
	httpClient := datasource.NewRateLimitedHTTPClient(httpClientCfg, appLog)
	defer httpClient.Close()

	factory := datasource.NewFactory(cfg, appLog)
	results, err := factory.NewResultsSources(httpClient)
	if err != nil {
		appLog.WithError(err).Fatal("Failed to initialize results sources")
	}
	oddsProvider := factory.NewOddsProvider(httpClient)

	// Wire services
	predictionSvc := service.NewPredictionService(engine, appLog)
	trainingSvc := service.NewTrainingService(engine, repos.Match, results, appLog)
	edgeCalculator := betting.NewEdgeCalculator(predictionSvc, betting.EdgeConfig{
		StrongBetThreshold: cfg.Betting.StrongBetThreshold,
		BetThreshold:       cfg.Betting.BetThreshold,
	}, appLog)
	selector := betting.NewSelector(cfg.Betting.KellyFraction)
	bettingSvc := betting.NewService(oddsProvider, edgeCalculator, selector, cfg.Betting, appLog)

	// Live score stream feeds finished matches straight into the engine
	if stream := factory.NewLiveScoreStream(); stream != nil {
		stream.AddHandler(func(update datasource.ScoreUpdate) error {
			record, ok := update.Result()
			if !ok {
				return nil
			}
			if err := trainingSvc.ApplyResult(ctx, record); err != nil {
				appLog.WithError(err).Warn("Failed to apply live result")
				return err
			}
			appLog.WithFields(logrus.Fields{
				"winner": record.Winner,
				"loser":  record.Loser,
				"score":  record.WinnerScore,
			}).Info("Applied live match result")
			return nil
		})
		if err := stream.Connect(ctx); err != nil {
			appLog.WithError(err).Warn("Live score stream unavailable")
		} else {
			defer stream.Close()
		}
	}

	// Schedule the periodic jobs
	sched := scheduler.NewScheduler(trainingSvc, bettingSvc, appLog)
	if err := sched.ScheduleDailyUpdate(cfg.Scheduler.DailyUpdateCron); err != nil {
		appLog.WithError(err).Fatal("Failed to schedule daily update")
	}
	if err := sched.ScheduleValueBetRefresh(cfg.Scheduler.ValueBetsIntervalMinutes, cfg.Betting.Sports, cfg.Betting.MinEdge); err != nil {
		appLog.WithError(err).Fatal("Failed to schedule value bet refresh")
	}
	if err := sched.Start(); err != nil {
		appLog.WithError(err).Fatal("Failed to start scheduler")
	}
	defer sched.Stop()

	// JSON API surface
	apiServer := api.NewServer(api.Config{
		Port:        strconv.Itoa(cfg.App.Port),
		Predictions: predictionSvc,
		Bets:        bettingSvc,
		Sports:      cfg.Betting.Sports,
		MinEdge:     cfg.Betting.MinEdge,
		Logger:      appLog,
	})
	apiServer.Start(ctx)

	// Health and metrics server
	healthServer := health.NewServer(health.Config{
		ServiceName: cfg.App.Name,
		Version:     Version,
		Port:        port(cfg),
		MetricsPath: cfg.Metrics.Path,
		Logger:      appLog,
		DB:          dbPinger(db),
		Ratings:     engine,
	})
	if err := healthServer.Start(ctx); err != nil {
		appLog.WithError(err).Fatal("Failed to start health server")
	}
	healthServer.SetReady(true)

	appLog.Info("Tennis prediction service ready")
	<-ctx.Done()
	appLog.Info("Shutting down")
}

func configPath() string {
	if path := os.Getenv("CONFIG_PATH"); path != "" {
		return path
	}
	return "config/config.yaml"
}

func port(cfg *config.Config) string {
	if cfg.Metrics.Port == 0 {
		return ""
	}
	return strconv.Itoa(cfg.Metrics.Port)
}

func ratingConfig(cfg *config.Config) rating.Config {
	return rating.Config{
		KFactor:             cfg.Elo.KFactor,
		DefaultRating:       cfg.Elo.DefaultRating,
		SurfaceAdvantage:    cfg.Elo.SurfaceAdvantage,
		MonthlyDecayRate:    cfg.Elo.MonthlyDecayRate,
		DecayGraceMonths:    cfg.Elo.DecayGraceMonths,
		MinRatingAfterDecay: cfg.Elo.MinRatingAfterDecay,
	}
}

// dbPinger avoids a typed-nil interface when no database is configured
func dbPinger(db *database.DB) health.DatabasePinger {
	if db == nil {
		return nil
	}
	return db
}
