// Package service exposes the query operations served over HTTP and the CLI.
package service

import (
	"errors"
	"strings"
	"sync/atomic"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/bbl-multi-builder/internal/logger"
	"github.com/yourusername/bbl-multi-builder/internal/metrics"
	"github.com/yourusername/bbl-multi-builder/internal/models"
	"github.com/yourusername/bbl-multi-builder/internal/multibet"
	"github.com/yourusername/bbl-multi-builder/internal/recommend"
	"github.com/yourusername/bbl-multi-builder/internal/stats"
)

// snapshot is one loaded table with the engine and builder reading it
type snapshot struct {
	table   *stats.Table
	engine  recommend.Recommender
	builder *multibet.Builder
}

// QueryFacade is the boundary between transports and the core. Every error it
// returns is an *APIError.
type QueryFacade struct {
	current    atomic.Pointer[snapshot]
	fixtures   []models.Fixture
	matchLimit int
	validate   *validator.Validate
	recLogger  *logger.RecommendationLogger
	audit      *logger.AuditLogger
}

// NewQueryFacade creates a facade over a loaded table
func NewQueryFacade(
	table *stats.Table,
	engine recommend.Recommender,
	builder *multibet.Builder,
	fixtures []models.Fixture,
	log *logrus.Logger,
) *QueryFacade {
	f := &QueryFacade{
		fixtures:  fixtures,
		validate:  newRequestValidator(),
		recLogger: logger.NewRecommendationLogger(log),
		audit:     logger.NewAuditLogger(log),
	}
	f.Replace(table, engine, builder)
	return f
}

// Replace swaps in a reloaded table. Requests already in flight finish against the previous one.
func (f *QueryFacade) Replace(table *stats.Table, engine recommend.Recommender, builder *multibet.Builder) {
	f.current.Store(&snapshot{table: table, engine: engine, builder: builder})
}

// WithMatchLimit sets the number of match recommendations returned when a request gives no limit
func (f *QueryFacade) WithMatchLimit(limit int) *QueryFacade {
	f.matchLimit = limit
	return f
}

// ListTeams returns the known teams in configured order
func (f *QueryFacade) ListTeams() []string {
	return f.current.Load().table.Teams()
}

// ListMatches returns the configured fixtures
func (f *QueryFacade) ListMatches() []models.Fixture {
	out := make([]models.Fixture, len(f.fixtures))
	copy(out, f.fixtures)
	return out
}

// ListPlayers returns a team's batters and bowlers
func (f *QueryFacade) ListPlayers(team string) (*PlayersResponse, error) {
	team = strings.TrimSpace(team)
	players, err := f.current.Load().table.PlayersForTeam(team)
	if err != nil {
		return nil, f.reject("list_players", err)
	}

	resp := &PlayersResponse{
		Team:    team,
		Batters: []PlayerSummary{},
		Bowlers: []PlayerSummary{},
	}
	for _, p := range players {
		total := p.Total
		summary := PlayerSummary{
			Name:         p.PlayerName,
			Type:         p.Role,
			Team:         p.Team,
			TotalInnings: p.Innings,
		}
		if p.Role == models.RoleBatter {
			summary.TotalRuns = &total
			resp.Batters = append(resp.Batters, summary)
		} else {
			summary.TotalWickets = &total
			resp.Bowlers = append(resp.Bowlers, summary)
		}
	}
	resp.TotalPlayers = len(resp.Batters) + len(resp.Bowlers)
	return resp, nil
}

// GetRecommendations ranks a team's players for the given markets, or all markets when none are given
func (f *QueryFacade) GetRecommendations(team string, markets []string) (*TeamRecommendationsResponse, error) {
	team = strings.TrimSpace(team)
	ids := make([]string, 0, len(markets))
	for _, m := range markets {
		if m = strings.TrimSpace(m); m != "" {
			ids = append(ids, m)
		}
	}

	recs, err := f.current.Load().engine.Recommend(team, ids)
	if err != nil {
		return nil, f.reject("get_recommendations", err)
	}

	ranked := 0
	for _, list := range recs {
		ranked += len(list)
	}
	f.recLogger.LogRecommendationServed(team, ids, ranked)

	return &TeamRecommendationsResponse{Team: team, Recommendations: recs}, nil
}

// GetMatchRecommendations returns the strongest picks across both teams of a fixture.
// The match id "<home>_vs_<away>" supplies the teams; without one only the winner team is used.
func (f *QueryFacade) GetMatchRecommendations(req MatchRecommendationsRequest) (*models.MatchRecommendations, error) {
	snap := f.current.Load()
	req.WinnerTeam = strings.TrimSpace(req.WinnerTeam)
	req.MatchID = strings.TrimSpace(req.MatchID)
	if err := f.validate.Struct(req); err != nil {
		return nil, f.reject("get_match_recommendations", validationError(err))
	}

	catalog := snap.table.Catalog()
	if !catalog.HasTeam(req.WinnerTeam) {
		return nil, f.reject("get_match_recommendations",
			&models.ValidationError{Field: "winner_team", Identifier: req.WinnerTeam, Reason: "unknown team"})
	}

	if req.Limit == 0 {
		req.Limit = f.matchLimit
	}

	teams := []string{req.WinnerTeam}
	if home, away, ok := models.ParseFixtureID(req.MatchID); ok {
		for _, team := range []string{home, away} {
			if !catalog.HasTeam(team) {
				return nil, f.reject("get_match_recommendations",
					&models.ValidationError{Field: "match_id", Identifier: team, Reason: "unknown team"})
			}
		}
		teams = []string{home, away}
	}

	recs, total, err := snap.engine.RecommendForMatch(teams, req.Limit)
	if err != nil {
		return nil, f.reject("get_match_recommendations", err)
	}
	f.recLogger.LogMatchRecommendationServed(req.MatchID, req.WinnerTeam, teams, len(recs), total)

	return &models.MatchRecommendations{
		WinnerTeam:      req.WinnerTeam,
		MatchTeams:      teams,
		Recommendations: recs,
		TotalAvailable:  total,
	}, nil
}

// BuildMulti resolves and combines the selected legs
func (f *QueryFacade) BuildMulti(req BuildMultiRequest) (*BuildMultiResponse, error) {
	if err := f.validate.Struct(req); err != nil {
		metrics.RecordMultiBuild(KindValidation, 0)
		return nil, f.reject("build_multi", validationError(err))
	}

	result, err := f.current.Load().builder.BuildForWinner(req.WinnerTeam, req.SelectedBets)
	if err != nil {
		apiErr := f.reject("build_multi", err)
		metrics.RecordMultiBuild(apiErr.Kind, 0)
		return nil, apiErr
	}

	metrics.RecordMultiBuild("success", result.CombinedPercentage)
	f.audit.LogMultiBuilt(result)
	return &BuildMultiResponse{MultiBet: result}, nil
}

// Health reports whether statistics are loaded
func (f *QueryFacade) Health() HealthStatus {
	snap := f.current.Load()
	if snap == nil || snap.table == nil {
		return HealthStatus{Status: "unhealthy"}
	}
	return HealthStatus{
		Status:     "healthy",
		DataLoaded: true,
		Teams:      len(snap.table.Teams()),
		Players:    snap.table.Len(),
	}
}

func (f *QueryFacade) reject(operation string, err error) *APIError {
	apiErr := Translate(err)
	if apiErr.Kind == KindInternal {
		f.audit.WithError(errors.Unwrap(apiErr)).WithField("operation", operation).Error("Request failed")
	} else {
		f.audit.LogRequestRejected(operation, apiErr.Kind, apiErr.Identifier, apiErr.Message)
	}
	return apiErr
}
