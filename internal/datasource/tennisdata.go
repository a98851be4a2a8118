package datasource

import (
	"context"
	"encoding/csv"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/martofrog/tennis-predictions/internal/metrics"
	"github.com/martofrog/tennis-predictions/internal/models"
)

const tennisDataSourceName = "tennis_data"

// TennisDataClient fetches season result archives published as per-year CSV
// files, one file per tour season.
type TennisDataClient struct {
	httpClient *RateLimitedHTTPClient
	baseURL    string
	enabled    bool
	logger     *logrus.Logger
}

// NewTennisDataClient creates a new season archive client
func NewTennisDataClient(httpClient *RateLimitedHTTPClient, baseURL string, enabled bool, logger *logrus.Logger) *TennisDataClient {
	return &TennisDataClient{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		enabled:    enabled,
		logger:     logger,
	}
}

// Name returns the source name
func (c *TennisDataClient) Name() string { return tennisDataSourceName }

// IsEnabled returns whether the source is enabled
func (c *TennisDataClient) IsEnabled() bool { return c.enabled }

// FetchMatches downloads and parses a full tour season. Rows that cannot be
// parsed are skipped and counted; a malformed row never fails the season.
func (c *TennisDataClient) FetchMatches(ctx context.Context, year int, tour models.Tour) ([]models.MatchRecord, error) {
	if !c.enabled {
		return nil, models.NewProviderError(tennisDataSourceName, models.ErrCodeNetworkError, sourceDisabledMsg, nil)
	}

	url := fmt.Sprintf("%s/%s_matches_%d.csv", c.baseURL, tour, year)

	start := time.Now()
	resp, err := c.httpClient.Get(ctx, url)
	if err != nil {
		metrics.RecordProviderRequest(tennisDataSourceName, "error", time.Since(start).Seconds())
		return nil, models.NewProviderError(tennisDataSourceName, models.ErrCodeNetworkError, "season download failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == 404 {
		metrics.RecordProviderRequest(tennisDataSourceName, "success", time.Since(start).Seconds())
		// Season not published yet, not an error
		return nil, nil
	}
	if resp.StatusCode != 200 {
		metrics.RecordProviderRequest(tennisDataSourceName, "error", time.Since(start).Seconds())
		return nil, models.NewProviderError(tennisDataSourceName, models.ErrCodeServerError,
			fmt.Sprintf("unexpected status %d for %d season", resp.StatusCode, year), nil)
	}

	reader := csv.NewReader(resp.Body)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, models.NewProviderError(tennisDataSourceName, models.ErrCodeInvalidData, "reading CSV header", err)
	}
	columns := indexColumns(header)
	for _, required := range []string{"tourney_date", "winner_name", "loser_name"} {
		if _, ok := columns[required]; !ok {
			return nil, models.NewProviderError(tennisDataSourceName, models.ErrCodeInvalidData,
				fmt.Sprintf("missing column %q", required), nil)
		}
	}

	var matches []models.MatchRecord
	var skipped int
	for {
		row, err := reader.Read()
		if err != nil {
			break
		}

		record, ok := c.parseRow(row, columns, tour)
		if !ok {
			skipped++
			metrics.RecordIngestionError()
			continue
		}
		matches = append(matches, record)
	}

	metrics.RecordProviderRequest(tennisDataSourceName, "success", time.Since(start).Seconds())
	c.logger.WithFields(logrus.Fields{
		"tour":    tour,
		"year":    year,
		"matches": len(matches),
		"skipped": skipped,
	}).Info("Fetched season archive")
	return matches, nil
}

// FetchMatchesByDate filters the current season down to a single day
func (c *TennisDataClient) FetchMatchesByDate(ctx context.Context, date time.Time) ([]models.MatchRecord, error) {
	var result []models.MatchRecord
	for _, tour := range []models.Tour{models.TourATP, models.TourWTA} {
		matches, err := c.FetchMatches(ctx, date.Year(), tour)
		if err != nil {
			return nil, err
		}
		for _, match := range matches {
			if sameDay(match.MatchDate, date) {
				result = append(result, match)
			}
		}
	}
	return result, nil
}

func (c *TennisDataClient) parseRow(row []string, columns map[string]int, tour models.Tour) (models.MatchRecord, bool) {
	get := func(name string) string {
		idx, ok := columns[name]
		if !ok || idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	winner := get("winner_name")
	loser := get("loser_name")
	if winner == "" || loser == "" {
		return models.MatchRecord{}, false
	}

	matchDate, err := time.Parse("20060102", get("tourney_date"))
	if err != nil {
		return models.MatchRecord{}, false
	}

	score := get("score")
	return models.MatchRecord{
		Winner:      winner,
		Loser:       loser,
		WinnerScore: score,
		LoserScore:  flipScore(score),
		Surface:     models.ParseSurface(get("surface")),
		Tour:        tour,
		MatchDate:   matchDate,
	}, true
}

func indexColumns(header []string) map[string]int {
	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.ToLower(strings.TrimSpace(name))] = i
	}
	return columns
}

// flipScore rewrites a winner-first scoreline from the loser's perspective,
// e.g. "6-4 7-6(5)" becomes "4-6 6(5)-7". Non-set tokens like "RET" pass
// through unchanged.
func flipScore(score string) string {
	sets := strings.Fields(score)
	for i, set := range sets {
		parts := strings.SplitN(set, "-", 2)
		if len(parts) != 2 {
			continue
		}
		sets[i] = parts[1] + "-" + parts[0]
	}
	return strings.Join(sets, " ")
}

func sameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.YearDay() == b.YearDay()
}
