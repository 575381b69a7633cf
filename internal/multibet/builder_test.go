package multibet

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/bbl-multi-builder/internal/models"
	"github.com/yourusername/bbl-multi-builder/internal/stats"
	"github.com/yourusername/bbl-multi-builder/internal/testutil"
)

func leg(player, market, team string) models.MultiBetLeg {
	return models.MultiBetLeg{PlayerName: player, Market: market, Team: team}
}

func TestBuild_TwoLegExample(t *testing.T) {
	builder := NewBuilder(testutil.Table(t))

	result, err := builder.Build([]models.MultiBetLeg{
		leg("A.Smith", testutil.Runs10, ""),
		leg("B.Jones", testutil.Wickets2, ""),
	})
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, result.ID)
	assert.Equal(t, 2, result.TotalLegs)
	assert.Equal(t, 32.0, result.CombinedPercentage)
	require.NotNil(t, result.ImpliedOdds)
	assert.Equal(t, 3.125, *result.ImpliedOdds)
	assert.True(t, result.HasValue())
	assert.Equal(t, "32.00%", result.CombinedDisplay)
	assert.Equal(t, "3.13", result.OddsDisplay)

	require.Len(t, result.Legs, 2)
	assert.Equal(t, testutil.Strikers, result.Legs[0].Team)
	assert.Equal(t, 80.0, result.Legs[0].HistoricalPercentage)
	assert.Equal(t, testutil.Wickets2, result.Legs[1].Market)
	assert.Equal(t, 40.0, result.Legs[1].HistoricalPercentage)
}

func TestBuild_ExactDecimalProduct(t *testing.T) {
	builder := NewBuilder(testutil.Table(t))

	result, err := builder.Build([]models.MultiBetLeg{
		leg("D.Wilson", "wicket_1_plus", testutil.Strikers),
		leg("A.Smith", "runs_20_plus", testutil.Strikers),
		leg("J.Vince", "hit_six", testutil.Sixers),
	})
	require.NoError(t, err)

	// 70% * 45% * 50%
	assert.Equal(t, 15.75, result.CombinedPercentage)
	assert.Equal(t, "15.75%", result.CombinedDisplay)
	assert.Equal(t, "6.35", result.OddsDisplay)
}

func TestBuild_SingleLeg(t *testing.T) {
	builder := NewBuilder(testutil.Table(t))

	result, err := builder.Build([]models.MultiBetLeg{leg("J.Vince", testutil.Runs10, "")})
	require.NoError(t, err)

	assert.Equal(t, 85.0, result.CombinedPercentage)
	assert.Equal(t, "85.00%", result.CombinedDisplay)
	assert.Equal(t, "1.18", result.OddsDisplay)
}

func TestBuild_ZeroLegHasNoOdds(t *testing.T) {
	builder := NewBuilder(testutil.Table(t))

	result, err := builder.Build([]models.MultiBetLeg{
		leg("J.Vince", testutil.Runs10, ""),
		leg("Z.Zero", testutil.Wickets1, testutil.Heat),
	})
	require.NoError(t, err)

	assert.Equal(t, 0.0, result.CombinedPercentage)
	assert.Nil(t, result.ImpliedOdds)
	assert.False(t, result.HasValue())
	assert.Equal(t, "0.00%", result.CombinedDisplay)
	assert.Equal(t, models.NoValueOdds, result.OddsDisplay)
}

func TestBuild_TeamlessLegResolvesToOnlyTeamWithData(t *testing.T) {
	builder := NewBuilder(testutil.Table(t))

	// C.Brown bats for two teams but only has a 20+ Runs figure for the Heat
	result, err := builder.Build([]models.MultiBetLeg{leg("C.Brown", testutil.Runs20, "")})
	require.NoError(t, err)
	assert.Equal(t, testutil.Heat, result.Legs[0].Team)
	assert.Equal(t, 30.0, result.Legs[0].HistoricalPercentage)
}

func TestBuild_TrimsInput(t *testing.T) {
	builder := NewBuilder(testutil.Table(t))

	result, err := builder.Build([]models.MultiBetLeg{leg("  A.Smith ", " runs_10_plus ", " "+testutil.Strikers)})
	require.NoError(t, err)
	assert.Equal(t, "A.Smith", result.Legs[0].PlayerName)
	assert.Equal(t, testutil.Runs10, result.Legs[0].Market)
}

func TestBuild_ValidationErrors(t *testing.T) {
	builder := NewBuilder(testutil.Table(t))

	tests := []struct {
		name  string
		legs  []models.MultiBetLeg
		field string
	}{
		{
			name:  "no legs",
			legs:  nil,
			field: "legs",
		},
		{
			name:  "missing player",
			legs:  []models.MultiBetLeg{leg(" ", testutil.Runs10, "")},
			field: "legs[0].player_name",
		},
		{
			name:  "missing market",
			legs:  []models.MultiBetLeg{leg("A.Smith", "", "")},
			field: "legs[0].market",
		},
		{
			name: "duplicate leg by key and name",
			legs: []models.MultiBetLeg{
				leg("A.Smith", testutil.Runs10, ""),
				leg("A.Smith", "runs_10_plus", testutil.Strikers),
			},
			field: "legs[1]",
		},
		{
			name:  "ambiguous player",
			legs:  []models.MultiBetLeg{leg("C.Brown", testutil.Runs10, "")},
			field: "legs[0].team",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := builder.Build(tt.legs)
			require.Error(t, err)
			assert.True(t, errors.Is(err, models.ErrValidation))

			var verr *models.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}

func TestBuild_NotFoundErrors(t *testing.T) {
	builder := NewBuilder(testutil.Table(t))

	tests := []struct {
		name       string
		leg        models.MultiBetLeg
		identifier string
		reason     string
	}{
		{"unknown market", leg("A.Smith", "50+ Runs", ""), "A.Smith / 50+ Runs", "unknown market"},
		{"unknown team", leg("A.Smith", testutil.Runs10, "Melbourne Stars"), "A.Smith / " + testutil.Runs10, "unknown team Melbourne Stars"},
		{"unknown player", leg("Nobody", testutil.Runs10, ""), "Nobody / " + testutil.Runs10, "no historical percentage"},
		{"batter in bowling market", leg("A.Smith", testutil.Wickets1, ""), "A.Smith / " + testutil.Wickets1, "no historical percentage"},
		{"absent percentage", leg("C.Brown", testutil.Runs20, testutil.Strikers), "C.Brown / " + testutil.Runs20, "no historical percentage for " + testutil.Strikers},
		{"player on other team", leg("A.Smith", testutil.Runs10, testutil.Sixers), "A.Smith / " + testutil.Runs10, "no historical percentage for " + testutil.Sixers},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := builder.Build([]models.MultiBetLeg{leg("J.Vince", testutil.Runs10, ""), tt.leg})
			require.Error(t, err)
			assert.True(t, errors.Is(err, models.ErrNotFound))

			var nf *models.NotFoundError
			require.ErrorAs(t, err, &nf)
			assert.Equal(t, "leg", nf.Kind)
			assert.Equal(t, tt.identifier, nf.Identifier)
			assert.Equal(t, "legs[1]", nf.Field)
			assert.Equal(t, tt.reason, nf.Reason)
			assert.Contains(t, err.Error(), "legs[1]")
		})
	}
}

func TestBuild_AddingLegsNeverRaisesCombined(t *testing.T) {
	records := append(testutil.Records(), models.PlayerStatRecord{
		PlayerName:        "P.Perfect",
		Team:              testutil.Hurricanes,
		Role:              models.RoleBatter,
		MarketPercentages: map[string]float64{"runs_10_plus": 100},
	})
	table, err := stats.NewTable(testutil.Catalog(t), records)
	require.NoError(t, err)
	builder := NewBuilder(table)

	tests := []struct {
		name      string
		add       models.MultiBetLeg
		unchanged bool
	}{
		{"first leg", leg("J.Vince", testutil.Runs10, ""), false},
		{"certain leg", leg("P.Perfect", testutil.Runs10, ""), true},
		{"third leg", leg("A.Smith", testutil.Runs20, ""), false},
		{"bowling leg", leg("D.Wilson", testutil.Wickets1, ""), false},
		{"zero leg", leg("Z.Zero", testutil.Wickets2, ""), false},
		{"after zero", leg("S.Abbott", testutil.TopWicketTake, ""), true},
	}

	var selected []models.MultiBetLeg
	previous := 100.0
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			selected = append(selected, tt.add)
			result, err := builder.Build(selected)
			require.NoError(t, err)

			assert.LessOrEqual(t, result.CombinedPercentage, previous)
			if tt.unchanged {
				assert.Equal(t, previous, result.CombinedPercentage)
			}
			previous = result.CombinedPercentage
		})
	}
	assert.Zero(t, previous)
}

func TestBuildForWinner(t *testing.T) {
	builder := NewBuilder(testutil.Table(t))
	legs := []models.MultiBetLeg{
		leg("A.Smith", testutil.Runs10, ""),
		leg("B.Jones", testutil.Wickets2, ""),
	}

	result, err := builder.BuildForWinner(testutil.Strikers, legs)
	require.NoError(t, err)
	assert.Equal(t, testutil.Strikers, result.WinnerTeam)
	assert.Equal(t, 3, result.TotalLegs)
	assert.Equal(t, 32.0, result.CombinedPercentage)

	result, err = builder.BuildForWinner("", legs)
	require.NoError(t, err)
	assert.Empty(t, result.WinnerTeam)
	assert.Equal(t, 2, result.TotalLegs)
}

func TestBuildForWinner_UnknownWinner(t *testing.T) {
	builder := NewBuilder(testutil.Table(t))

	_, err := builder.BuildForWinner("Melbourne Stars", []models.MultiBetLeg{leg("A.Smith", testutil.Runs10, "")})
	require.Error(t, err)

	var verr *models.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "winner_team", verr.Field)
}

func TestBuild_Idempotent(t *testing.T) {
	builder := NewBuilder(testutil.Table(t))
	legs := []models.MultiBetLeg{
		leg("A.Smith", testutil.Runs10, ""),
		leg("B.Jones", testutil.Wickets2, ""),
	}

	first, err := builder.Build(legs)
	require.NoError(t, err)
	second, err := builder.Build(legs)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	withWinner, err := builder.BuildForWinner(testutil.Strikers, legs)
	require.NoError(t, err)
	again, err := builder.BuildForWinner(testutil.Strikers, legs)
	require.NoError(t, err)
	assert.Equal(t, withWinner, again)
	assert.NotEqual(t, first.ID, withWinner.ID)

	other, err := builder.Build(legs[:1])
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, other.ID)
}
