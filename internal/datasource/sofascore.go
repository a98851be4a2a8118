package datasource

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/martofrog/tennis-predictions/internal/metrics"
	"github.com/martofrog/tennis-predictions/internal/models"
)

const sofascoreSourceName = "sofascore"

// SofascoreClient fetches finished matches for a given day from the
// Sofascore schedule API. Used to keep ratings current between season
// archive releases.
type SofascoreClient struct {
	httpClient *RateLimitedHTTPClient
	baseURL    string
	apiKey     string
	enabled    bool
	logger     *logrus.Logger
}

type sofascoreSchedule struct {
	Events []sofascoreEvent `json:"events"`
}

type sofascoreEvent struct {
	ID         int64               `json:"id"`
	WinnerCode int                 `json:"winnerCode"` // 1 home, 2 away
	StartTime  int64               `json:"startTimestamp"`
	Status     sofascoreStatus     `json:"status"`
	HomeTeam   sofascoreTeam       `json:"homeTeam"`
	AwayTeam   sofascoreTeam       `json:"awayTeam"`
	HomeScore  sofascoreScore      `json:"homeScore"`
	AwayScore  sofascoreScore      `json:"awayScore"`
	Tournament sofascoreTournament `json:"tournament"`
	GroundType string              `json:"groundType"`
}

type sofascoreStatus struct {
	Type string `json:"type"` // "finished", "inprogress", "notstarted"
}

type sofascoreTeam struct {
	Name string `json:"name"`
}

type sofascoreScore struct {
	Period1 int `json:"period1"`
	Period2 int `json:"period2"`
	Period3 int `json:"period3"`
	Period4 int `json:"period4"`
	Period5 int `json:"period5"`
}

type sofascoreTournament struct {
	Category struct {
		Name string `json:"name"`
	} `json:"category"`
}

// NewSofascoreClient creates a new Sofascore client
func NewSofascoreClient(httpClient *RateLimitedHTTPClient, baseURL, apiKey string, enabled bool, logger *logrus.Logger) *SofascoreClient {
	return &SofascoreClient{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		enabled:    enabled,
		logger:     logger,
	}
}

// Name returns the source name
func (c *SofascoreClient) Name() string { return sofascoreSourceName }

// IsEnabled returns whether the source is enabled
func (c *SofascoreClient) IsEnabled() bool { return c.enabled }

// FetchMatches is not supported for full seasons; the schedule API is
// day-oriented. Callers should use FetchMatchesByDate.
func (c *SofascoreClient) FetchMatches(ctx context.Context, year int, tour models.Tour) ([]models.MatchRecord, error) {
	return nil, models.NewProviderError(sofascoreSourceName, models.ErrCodeNotFound, "season fetch not supported", nil)
}

// FetchMatchesByDate retrieves finished tennis matches for a single day
func (c *SofascoreClient) FetchMatchesByDate(ctx context.Context, date time.Time) ([]models.MatchRecord, error) {
	if !c.enabled {
		return nil, models.NewProviderError(sofascoreSourceName, models.ErrCodeNetworkError, sourceDisabledMsg, nil)
	}

	url := fmt.Sprintf("%s/sport/tennis/scheduled-events/%s", c.baseURL, date.Format("2006-01-02"))
	req, err := newAPIRequest(ctx, url, c.apiKey)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	resp, err := c.httpClient.Do(ctx, req)
	if err != nil {
		metrics.RecordProviderRequest(sofascoreSourceName, "error", time.Since(start).Seconds())
		return nil, models.NewProviderError(sofascoreSourceName, models.ErrCodeNetworkError, "schedule request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == 429 {
		metrics.RecordProviderRequest(sofascoreSourceName, "rate_limited", time.Since(start).Seconds())
		return nil, models.NewProviderError(sofascoreSourceName, models.ErrCodeRateLimitExceeded, "rate limited", nil)
	}
	if resp.StatusCode != 200 {
		metrics.RecordProviderRequest(sofascoreSourceName, "error", time.Since(start).Seconds())
		return nil, models.NewProviderError(sofascoreSourceName, models.ErrCodeServerError,
			fmt.Sprintf("unexpected status %d", resp.StatusCode), nil)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, models.NewProviderError(sofascoreSourceName, models.ErrCodeNetworkError, "reading response", err)
	}

	var schedule sofascoreSchedule
	if err := json.Unmarshal(body, &schedule); err != nil {
		return nil, models.NewProviderError(sofascoreSourceName, models.ErrCodeInvalidData, "decoding schedule", err)
	}

	var matches []models.MatchRecord
	for _, event := range schedule.Events {
		record, ok := convertSofascoreEvent(event)
		if !ok {
			continue
		}
		matches = append(matches, record)
	}

	metrics.RecordProviderRequest(sofascoreSourceName, "success", time.Since(start).Seconds())
	c.logger.WithFields(logrus.Fields{
		"date":    date.Format("2006-01-02"),
		"matches": len(matches),
	}).Debug("Fetched daily results")
	return matches, nil
}

// convertSofascoreEvent maps a finished singles event to a match record.
// Unfinished events and events without a decided winner are skipped.
func convertSofascoreEvent(event sofascoreEvent) (models.MatchRecord, bool) {
	if event.Status.Type != "finished" {
		return models.MatchRecord{}, false
	}
	if event.WinnerCode != 1 && event.WinnerCode != 2 {
		return models.MatchRecord{}, false
	}
	// Doubles pairs are encoded with a separator in the team name
	if strings.Contains(event.HomeTeam.Name, "/") || strings.Contains(event.AwayTeam.Name, "/") {
		return models.MatchRecord{}, false
	}

	winner, loser := event.HomeTeam.Name, event.AwayTeam.Name
	winnerScore, loserScore := event.HomeScore, event.AwayScore
	if event.WinnerCode == 2 {
		winner, loser = loser, winner
		winnerScore, loserScore = loserScore, winnerScore
	}

	return models.MatchRecord{
		Winner:      winner,
		Loser:       loser,
		WinnerScore: formatSetScores(winnerScore, loserScore),
		LoserScore:  formatSetScores(loserScore, winnerScore),
		Surface:     models.ParseSurface(event.GroundType),
		Tour:        tourFromCategory(event.Tournament.Category.Name),
		MatchDate:   time.Unix(event.StartTime, 0).UTC(),
	}, true
}

func formatSetScores(own, opponent sofascoreScore) string {
	ownSets := [5]int{own.Period1, own.Period2, own.Period3, own.Period4, own.Period5}
	oppSets := [5]int{opponent.Period1, opponent.Period2, opponent.Period3, opponent.Period4, opponent.Period5}

	var sets []string
	for i := range ownSets {
		if ownSets[i] == 0 && oppSets[i] == 0 {
			break
		}
		sets = append(sets, fmt.Sprintf("%d-%d", ownSets[i], oppSets[i]))
	}
	return strings.Join(sets, " ")
}

func tourFromCategory(category string) models.Tour {
	if strings.Contains(strings.ToUpper(category), "WTA") {
		return models.TourWTA
	}
	return models.TourATP
}
