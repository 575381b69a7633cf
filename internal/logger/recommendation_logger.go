// Package logger provides recommendation-specific logging.
package logger

import (
	"github.com/sirupsen/logrus"
)

// RecommendationLogger provides dedicated logging for recommendation lookups.
type RecommendationLogger struct {
	*logrus.Entry
}

// NewRecommendationLogger creates a new recommendation logger.
func NewRecommendationLogger(baseLogger *logrus.Logger) *RecommendationLogger {
	return &RecommendationLogger{
		Entry: baseLogger.WithField("component", "recommendation"),
	}
}

// LogRecommendationServed logs a per-team recommendation lookup.
func (rl *RecommendationLogger) LogRecommendationServed(team string, markets []string, ranked int) {
	rl.WithFields(logrus.Fields{
		"team":           team,
		"markets":        markets,
		"players_ranked": ranked,
	}).Debug("Recommendations served")
}

// LogMatchRecommendationServed logs a cross-market match lookup.
func (rl *RecommendationLogger) LogMatchRecommendationServed(matchID, winnerTeam string, matchTeams []string, returned, available int) {
	rl.WithFields(logrus.Fields{
		"match_id":        matchID,
		"winner_team":     winnerTeam,
		"match_teams":     matchTeams,
		"returned":        returned,
		"total_available": available,
	}).Debug("Match recommendations served")
}
