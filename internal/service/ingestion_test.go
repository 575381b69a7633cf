package service

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/bbl-multi-builder/internal/config"
	"github.com/yourusername/bbl-multi-builder/internal/datasource"
	"github.com/yourusername/bbl-multi-builder/internal/models"
	"github.com/yourusername/bbl-multi-builder/internal/stats"
	"github.com/yourusername/bbl-multi-builder/internal/testutil"
)

var (
	testBatterColumns = stats.Columns{Team: "Team", Player: "BatsmanName", Innings: "Total.Innings.Played", Total: "Total.Runs"}
	testBowlerColumns = stats.Columns{Team: "Team", Player: "BowlerName", Innings: "Total.Innings.Played", Total: "Total.Wickets"}
)

func statsTestdata(name string) string {
	return filepath.Join("..", "stats", "testdata", name)
}

func TestIngestionService_LoadTable(t *testing.T) {
	loader := stats.NewLoader(testutil.Catalog(t), testBatterColumns, testBowlerColumns)
	svc := NewIngestionService(
		datasource.NewFileSource(statsTestdata("batters.csv")),
		datasource.NewFileSource(statsTestdata("bowlers.csv")),
		loader,
		quietLogger(),
	)

	table, report, err := svc.LoadTable(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 8, table.Len())
	assert.Equal(t, 5, report.Batters)
	assert.Equal(t, 3, report.Bowlers)
	assert.Contains(t, report.BatterSource, "batters.csv")
	assert.False(t, report.StartTime.IsZero())
}

func TestIngestionService_MissingSource(t *testing.T) {
	loader := stats.NewLoader(testutil.Catalog(t), testBatterColumns, testBowlerColumns)
	svc := NewIngestionService(
		datasource.NewFileSource(statsTestdata("batters.csv")),
		datasource.NewFileSource(statsTestdata("missing.csv")),
		loader,
		quietLogger(),
	)

	_, _, err := svc.LoadTable(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, datasource.ErrNotFound))
}

func TestIngestionService_IntegrityFailure(t *testing.T) {
	loader := stats.NewLoader(testutil.Catalog(t), testBatterColumns, testBowlerColumns)
	svc := NewIngestionService(
		datasource.NewFileSource(statsTestdata("batters_unknown_team.csv")),
		datasource.NewFileSource(statsTestdata("bowlers.csv")),
		loader,
		quietLogger(),
	)

	_, _, err := svc.LoadTable(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrDataIntegrity))
}

func TestNewIngestionServiceFromConfig(t *testing.T) {
	cfg := &config.Config{
		Teams: []string{testutil.Strikers, testutil.Sixers, testutil.Heat, testutil.Hurricanes},
		Data: config.DataConfig{
			Batters:       config.SourceConfig{Type: "file", Path: statsTestdata("batters.csv")},
			Bowlers:       config.SourceConfig{Type: "file", Path: statsTestdata("bowlers.csv")},
			BatterColumns: config.ColumnsConfig{Team: "Team", Player: "BatsmanName", Innings: "Total.Innings.Played", Total: "Total.Runs"},
			BowlerColumns: config.ColumnsConfig{Team: "Team", Player: "BowlerName", Innings: "Total.Innings.Played", Total: "Total.Wickets"},
		},
	}
	for _, m := range testutil.Markets() {
		mc := config.MarketConfig{Key: m.Key, Name: m.Name, CSVColumn: m.CSVColumn, TopTeam: m.TopTeam}
		if m.Role == models.RoleBatter {
			cfg.Markets.Batting = append(cfg.Markets.Batting, mc)
		} else {
			cfg.Markets.Bowling = append(cfg.Markets.Bowling, mc)
		}
	}

	svc, err := NewIngestionServiceFromConfig(context.Background(), cfg, datasource.NewFactory(quietLogger()), quietLogger())
	require.NoError(t, err)

	table, _, err := svc.LoadTable(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 8, table.Len())
}

func TestNewIngestionServiceFromConfig_BadSource(t *testing.T) {
	cfg := &config.Config{
		Teams: []string{testutil.Strikers},
		Data: config.DataConfig{
			Batters: config.SourceConfig{Type: "ftp"},
		},
	}

	_, err := NewIngestionServiceFromConfig(context.Background(), cfg, datasource.NewFactory(quietLogger()), quietLogger())
	assert.Error(t, err)
}
