// Package recommend ranks players per betting market from historical percentages.
package recommend

import (
	"cmp"
	"slices"
	"strconv"
	"strings"

	"github.com/yourusername/bbl-multi-builder/internal/metrics"
	"github.com/yourusername/bbl-multi-builder/internal/models"
	"github.com/yourusername/bbl-multi-builder/internal/stats"
)

// DefaultMatchLimit is the number of match recommendations returned when no limit is given
const DefaultMatchLimit = 7

// Recommender is implemented by Engine and CachedEngine
type Recommender interface {
	Recommend(team string, marketIDs []string) (models.Recommendations, error)
	RecommendForMatch(teams []string, limit int) ([]models.Recommendation, int, error)
}

// Engine ranks players of a team for each market. It holds no mutable state.
type Engine struct {
	table *stats.Table
}

// NewEngine creates an engine reading from table
func NewEngine(table *stats.Table) *Engine {
	return &Engine{table: table}
}

// Recommend returns, per requested market name, the team's players ranked by
// historical percentage. An empty marketIDs means every market. Players without
// data for a market are left out; a market nobody has data for maps to an empty list.
func (e *Engine) Recommend(team string, marketIDs []string) (models.Recommendations, error) {
	metrics.RecordRecommendation("team", false)

	players, err := e.table.PlayersForTeam(team)
	if err != nil {
		return nil, err
	}

	markets, err := ResolveMarkets(e.table.Catalog(), marketIDs)
	if err != nil {
		return nil, err
	}

	out := make(models.Recommendations, len(markets))
	for _, m := range markets {
		out[m.Name] = rankMarket(players, m)
	}
	return out, nil
}

// RecommendForMatch returns the strongest (player, market) pairs across teams:
// every pair with a percentage above zero, best first, truncated to limit.
// The second return value is the number of pairs available before truncation.
func (e *Engine) RecommendForMatch(teams []string, limit int) ([]models.Recommendation, int, error) {
	metrics.RecordRecommendation("match", false)

	if limit <= 0 {
		limit = DefaultMatchLimit
	}

	markets := e.table.Catalog().Markets()
	var all []models.Recommendation
	seen := make(map[string]bool, len(teams))
	for _, team := range teams {
		if seen[team] {
			continue
		}
		seen[team] = true

		players, err := e.table.PlayersForTeam(team)
		if err != nil {
			return nil, 0, err
		}
		for _, p := range players {
			for _, m := range markets {
				if m.Role != p.Role {
					continue
				}
				pct, ok := p.Percentage(m.Key)
				if !ok || pct <= 0 {
					continue
				}
				all = append(all, newRecommendation(p, m, pct))
			}
		}
	}

	slices.SortStableFunc(all, func(a, b models.Recommendation) int {
		return cmp.Or(
			cmp.Compare(b.HistoricalPercentage, a.HistoricalPercentage),
			strings.Compare(a.PlayerName, b.PlayerName),
			strings.Compare(a.Market, b.Market),
		)
	})

	total := len(all)
	if len(all) > limit {
		all = all[:limit]
	}
	for i := range all {
		all[i].ConfidenceRank = i + 1
	}
	return all, total, nil
}

// ResolveMarkets maps market keys or names to catalog markets, dropping duplicates.
// An empty list resolves to every market.
func ResolveMarkets(catalog *models.Catalog, ids []string) ([]models.Market, error) {
	if len(ids) == 0 {
		return catalog.Markets(), nil
	}

	out := make([]models.Market, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		m, ok := catalog.LookupMarket(id)
		if !ok {
			return nil, models.NewMarketNotFound(id)
		}
		if seen[m.Key] {
			continue
		}
		seen[m.Key] = true
		out = append(out, m)
	}
	return out, nil
}

func rankMarket(players []models.PlayerStatRecord, m models.Market) []models.Recommendation {
	ranked := []models.Recommendation{}
	for _, p := range players {
		if p.Role != m.Role {
			continue
		}
		pct, ok := p.Percentage(m.Key)
		if !ok {
			continue
		}
		ranked = append(ranked, newRecommendation(p, m, pct))
	}

	slices.SortStableFunc(ranked, func(a, b models.Recommendation) int {
		return cmp.Or(
			cmp.Compare(b.HistoricalPercentage, a.HistoricalPercentage),
			strings.Compare(a.PlayerName, b.PlayerName),
		)
	})

	for i := range ranked {
		ranked[i].ConfidenceRank = i + 1
	}
	if m.TopTeam && len(ranked) > 0 {
		ranked[0].TopPick = true
	}
	return ranked
}

func newRecommendation(p models.PlayerStatRecord, m models.Market, pct float64) models.Recommendation {
	return models.Recommendation{
		PlayerName:           p.PlayerName,
		Team:                 p.Team,
		Market:               m.Name,
		MarketKey:            m.Key,
		Role:                 p.Role,
		Percentage:           strconv.FormatFloat(pct, 'f', 1, 64) + "%",
		HistoricalPercentage: pct,
	}
}
