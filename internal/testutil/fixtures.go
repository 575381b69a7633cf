// Package testutil provides fixture catalogs and statistics tables for tests.
package testutil

import (
	"testing"

	"github.com/yourusername/bbl-multi-builder/internal/models"
	"github.com/yourusername/bbl-multi-builder/internal/stats"
)

// Team names used by the fixtures
const (
	Strikers   = "Adelaide Strikers"
	Sixers     = "Sydney Sixers"
	Heat       = "Brisbane Heat"
	Hurricanes = "Hobart Hurricanes" // known team without any records
)

// Market names used by the fixtures
const (
	Runs10        = "10+ Runs"
	Runs20        = "20+ Runs"
	HitSix        = "To Hit a Six"
	TopRunScorer  = "Top Team Run Scorer (TTRS)"
	Wickets1      = "1+ Wickets"
	Wickets2      = "2+ Wickets"
	TopWicketTake = "Top Team Wicket Taker"
)

// Markets returns the BBL market definitions
func Markets() []models.Market {
	return []models.Market{
		{Key: "runs_10_plus", Name: Runs10, Role: models.RoleBatter, CSVColumn: "Percentage.of.No.of.times.BatsmanName.scored.more.than.10.runs"},
		{Key: "runs_20_plus", Name: Runs20, Role: models.RoleBatter, CSVColumn: "Percentage.of.No.of.times.BatsmanName.scored.more.than.20.runs"},
		{Key: "hit_six", Name: HitSix, Role: models.RoleBatter, CSVColumn: "Percentage.of.No.of.Times.BatsmanName.Hit.Atleast.One.Six"},
		{Key: "top_team_scorer", Name: TopRunScorer, Role: models.RoleBatter, CSVColumn: "Percentage.of.Top.Team.Runs.Scorer", TopTeam: true},
		{Key: "wicket_1_plus", Name: Wickets1, Role: models.RoleBowler, CSVColumn: "Percentage.of.No.of.times.BowlerName.Took.Atleast.1.Wicket"},
		{Key: "wicket_2_plus", Name: Wickets2, Role: models.RoleBowler, CSVColumn: "Percentage.of.No.of.times.BowlerName.Took.Atleast.2.Wicket"},
		{Key: "top_team_wickets", Name: TopWicketTake, Role: models.RoleBowler, CSVColumn: "Percentage.of.Top.Wicket.Taker.for.Team", TopTeam: true},
	}
}

// Catalog returns a catalog of four teams and the BBL markets
func Catalog(t testing.TB) *models.Catalog {
	t.Helper()
	catalog, err := models.NewCatalog([]string{Strikers, Sixers, Heat, Hurricanes}, Markets())
	if err != nil {
		t.Fatalf("failed to build catalog: %v", err)
	}
	return catalog
}

func batter(team, name string, pcts map[string]float64) models.PlayerStatRecord {
	return models.PlayerStatRecord{PlayerName: name, Team: team, Role: models.RoleBatter, MarketPercentages: pcts}
}

func bowler(team, name string, pcts map[string]float64) models.PlayerStatRecord {
	return models.PlayerStatRecord{PlayerName: name, Team: team, Role: models.RoleBowler, MarketPercentages: pcts}
}

// Records returns the fixture records. A.Smith and B.Jones tie at 80% for 10+ Runs,
// B.Jones also bowls, C.Brown bats for two teams and Z.Zero has recorded 0% figures.
func Records() []models.PlayerStatRecord {
	return []models.PlayerStatRecord{
		batter(Strikers, "B.Jones", map[string]float64{"runs_10_plus": 80, "runs_20_plus": 60, "hit_six": 0, "top_team_scorer": 25}),
		batter(Strikers, "A.Smith", map[string]float64{"runs_10_plus": 80, "runs_20_plus": 45, "hit_six": 30, "top_team_scorer": 25}),
		batter(Strikers, "C.Brown", map[string]float64{"runs_10_plus": 55, "hit_six": 40}),
		bowler(Strikers, "D.Wilson", map[string]float64{"wicket_1_plus": 70, "wicket_2_plus": 40, "top_team_wickets": 35}),
		bowler(Strikers, "B.Jones", map[string]float64{"wicket_1_plus": 62, "wicket_2_plus": 40, "top_team_wickets": 20}),

		batter(Sixers, "J.Vince", map[string]float64{"runs_10_plus": 85, "runs_20_plus": 62, "hit_six": 50, "top_team_scorer": 38}),
		bowler(Sixers, "S.Abbott", map[string]float64{"wicket_1_plus": 60, "wicket_2_plus": 25, "top_team_wickets": 30}),

		batter(Heat, "N.McSweeney", map[string]float64{"runs_10_plus": 72, "runs_20_plus": 48, "hit_six": 35, "top_team_scorer": 33}),
		batter(Heat, "C.Brown", map[string]float64{"runs_10_plus": 50, "runs_20_plus": 30}),
		bowler(Heat, "X.Bartlett", map[string]float64{"wicket_1_plus": 68, "wicket_2_plus": 45, "top_team_wickets": 40}),
		bowler(Heat, "Z.Zero", map[string]float64{"wicket_1_plus": 0, "wicket_2_plus": 0}),
	}
}

// Table builds the fixture statistics table
func Table(t testing.TB) *stats.Table {
	t.Helper()
	table, err := stats.NewTable(Catalog(t), Records())
	if err != nil {
		t.Fatalf("failed to build stats table: %v", err)
	}
	return table
}
