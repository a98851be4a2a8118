package datasource

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/martofrog/tennis-predictions/internal/metrics"
	"github.com/martofrog/tennis-predictions/internal/models"
)

const oddsAPISourceName = "odds_api"

// OddsAPIClient fetches head-to-head tennis odds from The Odds API
type OddsAPIClient struct {
	httpClient *RateLimitedHTTPClient
	baseURL    string
	apiKey     string
	logger     *logrus.Logger
}

// oddsAPIEvent mirrors The Odds API v4 event payload. Prices are decoded as
// decimals and only converted to float64 once validated.
type oddsAPIEvent struct {
	ID           string             `json:"id"`
	SportKey     string             `json:"sport_key"`
	CommenceTime time.Time          `json:"commence_time"`
	HomeTeam     string             `json:"home_team"`
	AwayTeam     string             `json:"away_team"`
	Bookmakers   []oddsAPIBookmaker `json:"bookmakers"`
}

type oddsAPIBookmaker struct {
	Key        string          `json:"key"`
	Title      string          `json:"title"`
	LastUpdate time.Time       `json:"last_update"`
	Markets    []oddsAPIMarket `json:"markets"`
}

type oddsAPIMarket struct {
	Key      string           `json:"key"`
	Outcomes []oddsAPIOutcome `json:"outcomes"`
}

type oddsAPIOutcome struct {
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}

// NewOddsAPIClient creates a new Odds API client
func NewOddsAPIClient(httpClient *RateLimitedHTTPClient, baseURL, apiKey string, logger *logrus.Logger) *OddsAPIClient {
	return &OddsAPIClient{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		logger:     logger,
	}
}

// GetOdds retrieves upcoming matches with bookmaker quotes for a sport key
// such as "tennis_atp_us_open". Regions is a comma-separated list per The
// Odds API conventions, e.g. "uk,eu".
func (c *OddsAPIClient) GetOdds(ctx context.Context, sport string, regions string) ([]models.MatchOdds, error) {
	if c.apiKey == "" {
		return nil, models.NewProviderError(oddsAPISourceName, models.ErrCodeAuthFailed, "API key not configured", nil)
	}

	url := fmt.Sprintf("%s/sports/%s/odds?apiKey=%s&regions=%s&markets=h2h&oddsFormat=decimal&dateFormat=iso",
		c.baseURL, sport, c.apiKey, regions)

	start := time.Now()
	resp, err := c.httpClient.Get(ctx, url)
	if err != nil {
		metrics.RecordProviderRequest(oddsAPISourceName, "error", time.Since(start).Seconds())
		return nil, models.NewProviderError(oddsAPISourceName, models.ErrCodeNetworkError, "odds request failed", err)
	}
	defer resp.Body.Close()

	c.recordQuota(resp.Header.Get("X-Requests-Remaining"))

	switch {
	case resp.StatusCode == 401 || resp.StatusCode == 403:
		metrics.RecordProviderRequest(oddsAPISourceName, "error", time.Since(start).Seconds())
		return nil, models.NewProviderError(oddsAPISourceName, models.ErrCodeAuthFailed, "API key rejected", nil)
	case resp.StatusCode == 429:
		metrics.RecordProviderRequest(oddsAPISourceName, "rate_limited", time.Since(start).Seconds())
		return nil, models.NewProviderError(oddsAPISourceName, models.ErrCodeRateLimitExceeded, "request quota exhausted", nil)
	case resp.StatusCode != 200:
		metrics.RecordProviderRequest(oddsAPISourceName, "error", time.Since(start).Seconds())
		return nil, models.NewProviderError(oddsAPISourceName, models.ErrCodeServerError,
			fmt.Sprintf("unexpected status %d", resp.StatusCode), nil)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, models.NewProviderError(oddsAPISourceName, models.ErrCodeNetworkError, "reading response", err)
	}

	var events []oddsAPIEvent
	if err := json.Unmarshal(body, &events); err != nil {
		return nil, models.NewProviderError(oddsAPISourceName, models.ErrCodeInvalidData, "decoding odds payload", err)
	}

	matches := make([]models.MatchOdds, 0, len(events))
	for _, event := range events {
		match, ok := c.convertEvent(event)
		if !ok {
			continue
		}
		matches = append(matches, match)
	}

	metrics.RecordProviderRequest(oddsAPISourceName, "success", time.Since(start).Seconds())
	c.logger.WithFields(logrus.Fields{
		"sport":   sport,
		"matches": len(matches),
	}).Debug("Fetched odds")
	return matches, nil
}

// convertEvent maps one API event to a match. Events without a usable h2h
// market are skipped rather than failing the whole fetch.
func (c *OddsAPIClient) convertEvent(event oddsAPIEvent) (models.MatchOdds, bool) {
	match := models.MatchOdds{
		ID:           event.ID,
		Player1:      event.HomeTeam,
		Player2:      event.AwayTeam,
		CommenceTime: event.CommenceTime,
		Surface:      surfaceFromSportKey(event.SportKey),
		Tour:         tourFromSportKey(event.SportKey),
	}

	for _, bookmaker := range event.Bookmakers {
		for _, market := range bookmaker.Markets {
			if market.Key != "h2h" {
				continue
			}
			quote, ok := convertMarket(bookmaker, market, event.HomeTeam, event.AwayTeam)
			if !ok {
				c.logger.WithFields(logrus.Fields{
					"event":     event.ID,
					"bookmaker": bookmaker.Key,
				}).Warn("Skipping malformed h2h market")
				continue
			}
			match.Bookmakers = append(match.Bookmakers, quote)
		}
	}

	return match, len(match.Bookmakers) > 0
}

func convertMarket(bookmaker oddsAPIBookmaker, market oddsAPIMarket, player1, player2 string) (models.BookmakerOdds, bool) {
	quote := models.BookmakerOdds{
		Bookmaker:   bookmaker.Title,
		Format:      models.OddsFormatDecimal,
		LastUpdated: bookmaker.LastUpdate,
	}

	var got1, got2 bool
	for _, outcome := range market.Outcomes {
		if !outcome.Price.IsPositive() {
			return models.BookmakerOdds{}, false
		}
		price := outcome.Price.InexactFloat64()
		switch outcome.Name {
		case player1:
			quote.Player1Odds = price
			got1 = true
		case player2:
			quote.Player2Odds = price
			got2 = true
		}
	}
	return quote, got1 && got2
}

func (c *OddsAPIClient) recordQuota(remaining string) {
	if remaining == "" {
		return
	}
	value, err := strconv.ParseFloat(remaining, 64)
	if err != nil {
		return
	}
	metrics.UpdateOddsAPIQuota(value)
	if value < 50 {
		c.logger.WithField("requests_remaining", value).Warn("Odds API quota running low")
	}
}

// surfaceFromSportKey infers the playing surface from the tournament encoded
// in the sport key. Falls back to hard, the most common surface.
func surfaceFromSportKey(sportKey string) models.Surface {
	key := strings.ToLower(sportKey)
	switch {
	case strings.Contains(key, "french_open"), strings.Contains(key, "roland_garros"), strings.Contains(key, "madrid"), strings.Contains(key, "rome"), strings.Contains(key, "monte_carlo"):
		return models.SurfaceClay
	case strings.Contains(key, "wimbledon"), strings.Contains(key, "queens"), strings.Contains(key, "halle"):
		return models.SurfaceGrass
	default:
		return models.SurfaceHard
	}
}

func tourFromSportKey(sportKey string) models.Tour {
	if strings.Contains(strings.ToLower(sportKey), "wta") {
		return models.TourWTA
	}
	return models.TourATP
}
