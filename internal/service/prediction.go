package service

import (
	"sort"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/martofrog/tennis-predictions/internal/metrics"
	"github.com/martofrog/tennis-predictions/internal/models"
	"github.com/martofrog/tennis-predictions/internal/rating"
)

// PlayerRanking is one row of a ratings listing
type PlayerRanking struct {
	Rank   int     `json:"rank"`
	Player string  `json:"player"`
	Rating float64 `json:"rating"`
}

// PredictionService answers match forecast and ranking queries from the
// rating engine.
type PredictionService struct {
	engine *rating.Engine
	logger *logrus.Logger

	now func() time.Time
}

// NewPredictionService creates a prediction service
func NewPredictionService(engine *rating.Engine, log *logrus.Logger) *PredictionService {
	return &PredictionService{engine: engine, logger: log, now: time.Now}
}

// Predict forecasts a match on the given surface. Unknown players are
// treated as default-rated, so a prediction is always produced.
func (s *PredictionService) Predict(player1, player2 string, surface models.Surface) *models.MatchPrediction {
	prob1, prob2 := s.engine.PredictMatch(player1, player2, surface)

	prediction := &models.MatchPrediction{
		Player1:               models.NormalizePlayerName(player1),
		Player2:               models.NormalizePlayerName(player2),
		Player1WinProbability: prob1,
		Player2WinProbability: prob2,
		Player1Rating:         s.engine.GetRating(player1, surface),
		Player2Rating:         s.engine.GetRating(player2, surface),
		Surface:               surface,
		SurfaceAdjustment:     s.surfaceAdjustment(player1, player2, surface),
		PredictedAt:           s.now(),
	}

	metrics.RecordPredictionServed()
	s.logger.WithFields(logrus.Fields{
		"player1":  prediction.Player1,
		"player2":  prediction.Player2,
		"surface":  surface,
		"p1_prob":  prob1,
		"favorite": prediction.Favorite(),
	}).Debug("Prediction served")
	return prediction
}

// PredictMatch satisfies the predictor dependency of the betting layer
func (s *PredictionService) PredictMatch(player1, player2 string, surface models.Surface) (float64, float64) {
	prediction := s.Predict(player1, player2, surface)
	return prediction.Player1WinProbability, prediction.Player2WinProbability
}

// surfaceAdjustment reports the signed rating bonus applied in the forecast:
// positive when it favored player1, negative for player2, zero when both or
// neither player has history on the surface.
func (s *PredictionService) surfaceAdjustment(player1, player2 string, surface models.Surface) float64 {
	has1 := s.engine.HasSurfaceRating(player1, surface)
	has2 := s.engine.HasSurfaceRating(player2, surface)
	if has1 == has2 {
		return 0
	}

	bonus := s.engine.SurfaceAdvantage() * 0.5
	if has2 {
		return -bonus
	}
	return bonus
}

// Rankings lists the top rated players on a surface in descending rating
// order. limit <= 0 returns everyone. Ties break alphabetically so the
// listing is stable.
func (s *PredictionService) Rankings(surface models.Surface, limit int) []PlayerRanking {
	ratings := s.engine.AllRatings(surface)

	rankings := make([]PlayerRanking, 0, len(ratings))
	for player, value := range ratings {
		rankings = append(rankings, PlayerRanking{Player: player, Rating: value})
	}
	sort.Slice(rankings, func(i, j int) bool {
		if rankings[i].Rating != rankings[j].Rating {
			return rankings[i].Rating > rankings[j].Rating
		}
		return rankings[i].Player < rankings[j].Player
	})

	if limit > 0 && len(rankings) > limit {
		rankings = rankings[:limit]
	}
	for i := range rankings {
		rankings[i].Rank = i + 1
	}
	return rankings
}
