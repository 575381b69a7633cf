package service

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/yourusername/bbl-multi-builder/internal/models"
)

// BuildMultiRequest is the body of a multi build
type BuildMultiRequest struct {
	WinnerTeam   string               `json:"winner_team" validate:"omitempty,max=100"`
	SelectedBets []models.MultiBetLeg `json:"selected_bets" validate:"required,min=1,max=20,dive"`
}

// MatchRecommendationsRequest asks for the strongest picks of a fixture
type MatchRecommendationsRequest struct {
	WinnerTeam string `json:"winner_team" validate:"required"`
	MatchID    string `json:"match_id"`
	Limit      int    `json:"limit" validate:"gte=0,lte=100"`
}

// PlayerSummary is one entry of a team's player list
type PlayerSummary struct {
	Name         string      `json:"name"`
	Type         models.Role `json:"type"`
	Team         string      `json:"team"`
	TotalInnings int         `json:"total_innings"`
	TotalRuns    *int        `json:"total_runs,omitempty"`
	TotalWickets *int        `json:"total_wickets,omitempty"`
}

// PlayersResponse lists a team's batters and bowlers
type PlayersResponse struct {
	Team         string          `json:"team"`
	Batters      []PlayerSummary `json:"batters"`
	Bowlers      []PlayerSummary `json:"bowlers"`
	TotalPlayers int             `json:"total_players"`
}

// TeamRecommendationsResponse carries per-market rankings for one team
type TeamRecommendationsResponse struct {
	Team            string                 `json:"team"`
	Recommendations models.Recommendations `json:"recommendations"`
}

// BuildMultiResponse wraps a built multi
type BuildMultiResponse struct {
	MultiBet *models.MultiBetResult `json:"multi_bet"`
}

// HealthStatus reports whether the statistics table is ready to serve
type HealthStatus struct {
	Status     string `json:"status"`
	DataLoaded bool   `json:"data_loaded"`
	Teams      int    `json:"teams"`
	Players    int    `json:"players"`
}

func newRequestValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validationError converts the first validator failure into a *models.ValidationError
func validationError(err error) error {
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) || len(errs) == 0 {
		return &models.ValidationError{Field: "request", Reason: err.Error()}
	}

	e := errs[0]
	field := e.Namespace()
	if i := strings.Index(field, "."); i >= 0 {
		field = field[i+1:]
	}

	var reason string
	switch e.Tag() {
	case "required":
		reason = "is required"
	case "min":
		reason = fmt.Sprintf("must have at least %s entries", e.Param())
	case "max":
		reason = fmt.Sprintf("must not exceed %s", e.Param())
	case "gte":
		reason = fmt.Sprintf("must be at least %s", e.Param())
	case "lte":
		reason = fmt.Sprintf("must be at most %s", e.Param())
	default:
		reason = fmt.Sprintf("failed %s validation", e.Tag())
	}
	return &models.ValidationError{Field: field, Reason: reason}
}
