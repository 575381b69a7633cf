package service

import (
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/bbl-multi-builder/internal/models"
	"github.com/yourusername/bbl-multi-builder/internal/multibet"
	"github.com/yourusername/bbl-multi-builder/internal/recommend"
	"github.com/yourusername/bbl-multi-builder/internal/stats"
	"github.com/yourusername/bbl-multi-builder/internal/testutil"
)

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func newTestFacade(t *testing.T) *QueryFacade {
	t.Helper()
	table := testutil.Table(t)
	fixtures := []models.Fixture{
		models.NewFixture(testutil.Strikers, testutil.Sixers),
		models.NewFixture(testutil.Heat, testutil.Hurricanes),
	}
	engine := recommend.NewCachedEngine(recommend.NewEngine(table), time.Minute)
	return NewQueryFacade(table, engine, multibet.NewBuilder(table), fixtures, quietLogger())
}

func requireAPIError(t *testing.T, err error, status int, kind string) *APIError {
	t.Helper()
	require.Error(t, err)
	apiErr, ok := err.(*APIError)
	require.True(t, ok, "expected *APIError, got %T", err)
	assert.Equal(t, status, apiErr.Status)
	assert.Equal(t, kind, apiErr.Kind)
	return apiErr
}

func TestListTeams(t *testing.T) {
	f := newTestFacade(t)
	assert.Equal(t, []string{testutil.Strikers, testutil.Sixers, testutil.Heat, testutil.Hurricanes}, f.ListTeams())
}

func TestListMatches(t *testing.T) {
	f := newTestFacade(t)

	matches := f.ListMatches()
	require.Len(t, matches, 2)
	assert.Equal(t, testutil.Strikers+"_vs_"+testutil.Sixers, matches[0].ID)

	matches[0].ID = "changed"
	assert.NotEqual(t, "changed", f.ListMatches()[0].ID)
}

func TestListPlayers(t *testing.T) {
	f := newTestFacade(t)

	resp, err := f.ListPlayers(" " + testutil.Strikers + " ")
	require.NoError(t, err)
	assert.Equal(t, testutil.Strikers, resp.Team)
	assert.Len(t, resp.Batters, 3)
	assert.Len(t, resp.Bowlers, 2)
	assert.Equal(t, 5, resp.TotalPlayers)

	require.NotNil(t, resp.Batters[0].TotalRuns)
	assert.Nil(t, resp.Batters[0].TotalWickets)
	require.NotNil(t, resp.Bowlers[0].TotalWickets)
}

func TestListPlayers_EmptyTeam(t *testing.T) {
	f := newTestFacade(t)

	resp, err := f.ListPlayers(testutil.Hurricanes)
	require.NoError(t, err)
	assert.NotNil(t, resp.Batters)
	assert.Empty(t, resp.Batters)
	assert.Zero(t, resp.TotalPlayers)
}

func TestListPlayers_UnknownTeam(t *testing.T) {
	f := newTestFacade(t)

	_, err := f.ListPlayers("Melbourne Stars")
	apiErr := requireAPIError(t, err, http.StatusNotFound, KindNotFound)
	assert.Equal(t, "Melbourne Stars", apiErr.Identifier)
}

func TestGetRecommendations(t *testing.T) {
	f := newTestFacade(t)

	resp, err := f.GetRecommendations(testutil.Strikers, []string{" runs_10_plus ", ""})
	require.NoError(t, err)
	assert.Equal(t, testutil.Strikers, resp.Team)
	require.Len(t, resp.Recommendations, 1)
	assert.Equal(t, "A.Smith", resp.Recommendations[testutil.Runs10][0].PlayerName)
}

func TestGetRecommendations_AllMarkets(t *testing.T) {
	f := newTestFacade(t)

	resp, err := f.GetRecommendations(testutil.Sixers, nil)
	require.NoError(t, err)
	assert.Len(t, resp.Recommendations, len(testutil.Markets()))
}

func TestGetRecommendations_Errors(t *testing.T) {
	f := newTestFacade(t)

	_, err := f.GetRecommendations("Melbourne Stars", nil)
	requireAPIError(t, err, http.StatusNotFound, KindNotFound)

	_, err = f.GetRecommendations(testutil.Strikers, []string{"50+ Runs"})
	apiErr := requireAPIError(t, err, http.StatusNotFound, KindNotFound)
	assert.Equal(t, "50+ Runs", apiErr.Identifier)
}

func TestGetMatchRecommendations(t *testing.T) {
	f := newTestFacade(t)

	resp, err := f.GetMatchRecommendations(MatchRecommendationsRequest{
		WinnerTeam: testutil.Strikers,
		MatchID:    testutil.Strikers + "_vs_" + testutil.Sixers,
	})
	require.NoError(t, err)
	assert.Equal(t, testutil.Strikers, resp.WinnerTeam)
	assert.Equal(t, []string{testutil.Strikers, testutil.Sixers}, resp.MatchTeams)
	assert.Len(t, resp.Recommendations, recommend.DefaultMatchLimit)
	assert.Equal(t, 22, resp.TotalAvailable)
	assert.Equal(t, "J.Vince", resp.Recommendations[0].PlayerName)
}

func TestGetMatchRecommendations_WinnerOnly(t *testing.T) {
	f := newTestFacade(t)

	tests := []struct {
		name    string
		matchID string
	}{
		{"no match id", ""},
		{"unparseable match id", "final"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := f.GetMatchRecommendations(MatchRecommendationsRequest{
				WinnerTeam: testutil.Sixers,
				MatchID:    tt.matchID,
				Limit:      3,
			})
			require.NoError(t, err)
			assert.Equal(t, []string{testutil.Sixers}, resp.MatchTeams)
			assert.Len(t, resp.Recommendations, 3)
			for _, r := range resp.Recommendations {
				assert.Equal(t, testutil.Sixers, r.Team)
			}
		})
	}
}

func TestGetMatchRecommendations_Errors(t *testing.T) {
	f := newTestFacade(t)

	tests := []struct {
		name       string
		req        MatchRecommendationsRequest
		identifier string
	}{
		{"missing winner", MatchRecommendationsRequest{}, "winner_team"},
		{"unknown winner", MatchRecommendationsRequest{WinnerTeam: "Melbourne Stars"}, "Melbourne Stars"},
		{"unknown team in match", MatchRecommendationsRequest{WinnerTeam: testutil.Sixers, MatchID: testutil.Sixers + "_vs_Nowhere"}, "Nowhere"},
		{"negative limit", MatchRecommendationsRequest{WinnerTeam: testutil.Sixers, Limit: -1}, "limit"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.GetMatchRecommendations(tt.req)
			apiErr := requireAPIError(t, err, http.StatusBadRequest, KindValidation)
			assert.Equal(t, tt.identifier, apiErr.Identifier)
		})
	}
}

func TestBuildMulti(t *testing.T) {
	f := newTestFacade(t)

	resp, err := f.BuildMulti(BuildMultiRequest{
		WinnerTeam: testutil.Strikers,
		SelectedBets: []models.MultiBetLeg{
			{PlayerName: "A.Smith", Market: testutil.Runs10},
			{PlayerName: "B.Jones", Market: testutil.Wickets2},
		},
	})
	require.NoError(t, err)
	require.NotNil(t, resp.MultiBet)
	assert.Equal(t, 3, resp.MultiBet.TotalLegs)
	assert.Equal(t, "32.00%", resp.MultiBet.CombinedDisplay)
	assert.Equal(t, "3.13", resp.MultiBet.OddsDisplay)
}

func TestBuildMulti_Errors(t *testing.T) {
	f := newTestFacade(t)

	tests := []struct {
		name       string
		req        BuildMultiRequest
		status     int
		kind       string
		identifier string
	}{
		{
			name:       "no legs",
			req:        BuildMultiRequest{WinnerTeam: testutil.Strikers},
			status:     http.StatusBadRequest,
			kind:       KindValidation,
			identifier: "selected_bets",
		},
		{
			name:       "leg without player",
			req:        BuildMultiRequest{SelectedBets: []models.MultiBetLeg{{Market: testutil.Runs10}}},
			status:     http.StatusBadRequest,
			kind:       KindValidation,
			identifier: "selected_bets[0].player_name",
		},
		{
			name:       "unknown winner",
			req:        BuildMultiRequest{WinnerTeam: "Nowhere", SelectedBets: []models.MultiBetLeg{{PlayerName: "A.Smith", Market: testutil.Runs10}}},
			status:     http.StatusBadRequest,
			kind:       KindValidation,
			identifier: "Nowhere",
		},
		{
			name: "duplicate legs",
			req: BuildMultiRequest{SelectedBets: []models.MultiBetLeg{
				{PlayerName: "A.Smith", Market: testutil.Runs10},
				{PlayerName: "A.Smith", Market: "runs_10_plus"},
			}},
			status:     http.StatusBadRequest,
			kind:       KindValidation,
			identifier: "A.Smith / " + testutil.Runs10,
		},
		{
			name:       "unresolvable leg",
			req:        BuildMultiRequest{SelectedBets: []models.MultiBetLeg{{PlayerName: "Nobody", Market: testutil.Runs10}}},
			status:     http.StatusNotFound,
			kind:       KindNotFound,
			identifier: "Nobody / " + testutil.Runs10,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.BuildMulti(tt.req)
			apiErr := requireAPIError(t, err, tt.status, tt.kind)
			assert.Equal(t, tt.identifier, apiErr.Identifier)
		})
	}
}

func TestBuildMulti_NotFoundNamesLeg(t *testing.T) {
	f := newTestFacade(t)

	_, err := f.BuildMulti(BuildMultiRequest{SelectedBets: []models.MultiBetLeg{
		{PlayerName: "A.Smith", Market: testutil.Runs10},
		{PlayerName: "J.Vince", Market: "50+ Runs"},
	}})
	apiErr := requireAPIError(t, err, http.StatusNotFound, KindNotFound)
	assert.Equal(t, "J.Vince / 50+ Runs", apiErr.Identifier)
	assert.Equal(t, "leg not found: J.Vince / 50+ Runs (legs[1]: unknown market)", apiErr.Message)
}

func TestHealth(t *testing.T) {
	f := newTestFacade(t)

	status := f.Health()
	assert.Equal(t, "healthy", status.Status)
	assert.True(t, status.DataLoaded)
	assert.Equal(t, 4, status.Teams)
	assert.Equal(t, len(testutil.Records()), status.Players)

	empty := &QueryFacade{}
	assert.False(t, empty.Health().DataLoaded)
}

func TestGetMatchRecommendations_ConfiguredLimit(t *testing.T) {
	f := newTestFacade(t).WithMatchLimit(2)

	resp, err := f.GetMatchRecommendations(MatchRecommendationsRequest{WinnerTeam: testutil.Strikers})
	require.NoError(t, err)
	assert.Len(t, resp.Recommendations, 2)

	resp, err = f.GetMatchRecommendations(MatchRecommendationsRequest{WinnerTeam: testutil.Strikers, Limit: 4})
	require.NoError(t, err)
	assert.Len(t, resp.Recommendations, 4)
}

func TestReplace(t *testing.T) {
	f := newTestFacade(t)

	var sixersOnly []models.PlayerStatRecord
	for _, rec := range testutil.Records() {
		if rec.Team == testutil.Sixers {
			sixersOnly = append(sixersOnly, rec)
		}
	}
	table, err := stats.NewTable(testutil.Catalog(t), sixersOnly)
	require.NoError(t, err)

	f.Replace(table, recommend.NewEngine(table), multibet.NewBuilder(table))

	assert.Equal(t, len(sixersOnly), f.Health().Players)

	players, err := f.ListPlayers(testutil.Strikers)
	require.NoError(t, err)
	assert.Zero(t, players.TotalPlayers)

	_, err = f.BuildMulti(BuildMultiRequest{SelectedBets: []models.MultiBetLeg{
		{PlayerName: "A.Smith", Market: testutil.Runs10},
	}})
	requireAPIError(t, err, http.StatusNotFound, KindNotFound)
}
