// Package logger provides audit logging.
package logger

import (
	"github.com/sirupsen/logrus"

	"github.com/martofrog/tennis-predictions/internal/models"
)

// AuditLogger provides a dedicated audit trail for emitted recommendations
// and rating updates.
type AuditLogger struct {
	*logrus.Entry
}

// NewAuditLogger creates a new audit logger
func NewAuditLogger(baseLogger *logrus.Logger) *AuditLogger {
	return &AuditLogger{
		Entry: baseLogger.WithField("component", "audit"),
	}
}

// LogValueBetRecommendation records an emitted value bet recommendation
func (al *AuditLogger) LogValueBetRecommendation(bet *models.ValueBet) {
	fields := logrus.Fields{
		"bet_id":        bet.ID,
		"match_id":      bet.MatchID,
		"bet_on_player": bet.BetOnPlayer,
		"bookmaker":     bet.Bookmaker,
		"odds":          bet.Odds,
		"edge_pct":      bet.EdgePercentage,
		"ev_pct":        bet.ExpectedValuePercentage,
		"commence_time": bet.CommenceTime.Unix(),
		"surface":       bet.Surface,
		"tour":          bet.Tour,
	}
	if bet.RecommendedStake != nil {
		fields["recommended_stake"] = *bet.RecommendedStake
	}
	al.WithFields(fields).Info("Value bet recommendation emitted")
}

// LogRatingsSaved records a persistence checkpoint
func (al *AuditLogger) LogRatingsSaved(totalPlayers, processed, errors int) {
	al.WithFields(logrus.Fields{
		"total_players":     totalPlayers,
		"matches_processed": processed,
		"errors":            errors,
	}).Info("Ratings saved")
}
