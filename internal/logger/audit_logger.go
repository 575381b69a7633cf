// Package logger provides audit logging.
package logger

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/bbl-multi-builder/internal/models"
)

// AuditLogger provides dedicated audit trail logging.
type AuditLogger struct {
	*logrus.Entry
}

// NewAuditLogger creates a new audit logger.
func NewAuditLogger(baseLogger *logrus.Logger) *AuditLogger {
	return &AuditLogger{
		Entry: baseLogger.WithField("component", "audit"),
	}
}

// LogMultiBuilt logs a built multi with every resolved leg.
func (al *AuditLogger) LogMultiBuilt(result *models.MultiBetResult) {
	legs := make([]string, 0, len(result.Legs))
	for _, leg := range result.Legs {
		legs = append(legs, leg.Team+" / "+leg.PlayerName+" / "+leg.Market)
	}

	al.WithFields(logrus.Fields{
		"multi_id":            result.ID.String(),
		"winner_team":         result.WinnerTeam,
		"legs":                legs,
		"total_legs":          result.TotalLegs,
		"combined_percentage": result.CombinedPercentage,
		"estimated_odds":      result.OddsDisplay,
	}).Info("Multi bet built")
}

// LogStatsTableLoaded logs a successful statistics load.
func (al *AuditLogger) LogStatsTableLoaded(batterSource, bowlerSource string, batters, bowlers int, duration time.Duration) {
	al.WithFields(logrus.Fields{
		"batter_source": batterSource,
		"bowler_source": bowlerSource,
		"batters":       batters,
		"bowlers":       bowlers,
		"duration_ms":   duration.Milliseconds(),
	}).Info("Statistics table loaded")
}

// LogRequestRejected logs a query that failed with a client-facing error.
func (al *AuditLogger) LogRequestRejected(operation, kind, identifier, message string) {
	al.WithFields(logrus.Fields{
		"operation":  operation,
		"kind":       kind,
		"identifier": identifier,
		"reason":     message,
	}).Warn("Request rejected")
}
