package datasource

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/martofrog/tennis-predictions/internal/config"
)

// Factory creates results sources and odds providers from configuration
type Factory struct {
	config *config.Config
	logger *logrus.Logger
}

// NewFactory creates a new data source factory
func NewFactory(cfg *config.Config, logger *logrus.Logger) *Factory {
	return &Factory{config: cfg, logger: logger}
}

// NewResultsSource creates a single results source from its configuration
func (f *Factory) NewResultsSource(cfg config.DataSourceConfig, httpClient *RateLimitedHTTPClient) (ResultsSource, error) {
	if httpClient == nil {
		return nil, fmt.Errorf("HTTP client is required")
	}

	switch cfg.Name {
	case tennisDataSourceName:
		if cfg.BaseURL == "" {
			return nil, fmt.Errorf("tennis_data base URL is required")
		}
		return NewTennisDataClient(httpClient, cfg.BaseURL, cfg.Enabled, f.logger), nil

	case sofascoreSourceName:
		if cfg.BaseURL == "" {
			return nil, fmt.Errorf("sofascore base URL is required")
		}
		return NewSofascoreClient(httpClient, cfg.BaseURL, cfg.APIKey, cfg.Enabled, f.logger), nil

	default:
		return nil, fmt.Errorf("unknown results source: %s", cfg.Name)
	}
}

// NewResultsSources creates all enabled results sources from configuration,
// wrapped in a fallback coordinator preserving configured order.
func (f *Factory) NewResultsSources(httpClient *RateLimitedHTTPClient) (*FallbackSource, error) {
	var sources []ResultsSource

	for _, srcCfg := range f.config.DataIngestion.Sources {
		if !srcCfg.Enabled {
			f.logger.WithField("source", srcCfg.Name).Info("Skipping disabled results source")
			continue
		}

		source, err := f.NewResultsSource(srcCfg, httpClient)
		if err != nil {
			return nil, fmt.Errorf("failed to create results source %s: %w", srcCfg.Name, err)
		}
		sources = append(sources, source)
		f.logger.WithField("source", srcCfg.Name).Info("Created results source")
	}

	if len(sources) == 0 {
		return nil, fmt.Errorf("no enabled results sources configured")
	}
	return NewFallbackSource(sources, f.logger), nil
}

// NewOddsProvider creates The Odds API client from configuration
func (f *Factory) NewOddsProvider(httpClient *RateLimitedHTTPClient) *OddsAPIClient {
	return NewOddsAPIClient(httpClient, f.config.OddsAPI.BaseURL, f.config.OddsAPI.APIKey, f.logger)
}

// NewLiveScoreStream creates the live score stream when enabled, or nil
func (f *Factory) NewLiveScoreStream() *LiveScoreStream {
	if !f.config.DataIngestion.LiveStream.Enabled {
		return nil
	}
	return NewLiveScoreStream(f.config.DataIngestion.LiveStream.URL, f.logger)
}
