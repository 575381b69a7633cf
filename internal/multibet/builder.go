// Package multibet composes independently selected legs into one aggregate bet.
package multibet

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/yourusername/bbl-multi-builder/internal/models"
	"github.com/yourusername/bbl-multi-builder/internal/stats"
)

var hundred = decimal.NewFromInt(100)

// multiNamespace scopes the name-based ids of multis
var multiNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("bbl-multi-builder/multi"))

// Builder resolves legs against the statistics table and combines them
type Builder struct {
	table *stats.Table
}

// NewBuilder creates a builder reading from table
func NewBuilder(table *stats.Table) *Builder {
	return &Builder{table: table}
}

// Build resolves every leg to its historical percentage and combines them as
// independent events: combined = 100 * product(p/100). Odds are 100/combined and
// absent when combined is zero.
func (b *Builder) Build(legs []models.MultiBetLeg) (*models.MultiBetResult, error) {
	if len(legs) == 0 {
		return nil, &models.ValidationError{Field: "legs", Reason: "at least one leg is required"}
	}

	resolved := make([]models.MultiBetLeg, 0, len(legs))
	seen := make(map[string]int, len(legs))
	for i, leg := range legs {
		r, market, err := b.resolve(i, leg)
		if err != nil {
			return nil, err
		}

		key := r.Team + "|" + r.PlayerName + "|" + market.Key
		if first, dup := seen[key]; dup {
			return nil, &models.ValidationError{
				Field:      fmt.Sprintf("legs[%d]", i),
				Identifier: legIdentifier(r.PlayerName, r.Market),
				Reason:     fmt.Sprintf("duplicates legs[%d]", first),
			}
		}
		seen[key] = i
		resolved = append(resolved, r)
	}

	combined := hundred
	for _, leg := range resolved {
		combined = combined.Mul(decimal.NewFromFloat(leg.HistoricalPercentage)).Div(hundred)
	}

	result := &models.MultiBetResult{
		ID:                 multiID("", resolved),
		Legs:               resolved,
		TotalLegs:          len(resolved),
		CombinedPercentage: combined.InexactFloat64(),
		CombinedDisplay:    combined.StringFixed(2) + "%",
		OddsDisplay:        models.NoValueOdds,
	}
	if combined.IsPositive() {
		odds := hundred.Div(combined)
		value := odds.InexactFloat64()
		result.ImpliedOdds = &value
		result.OddsDisplay = odds.StringFixed(2)
	}
	return result, nil
}

// BuildForWinner builds a multi that also carries a match-winner selection.
// The winner counts as a leg without a historical percentage.
func (b *Builder) BuildForWinner(winnerTeam string, legs []models.MultiBetLeg) (*models.MultiBetResult, error) {
	winnerTeam = strings.TrimSpace(winnerTeam)
	if winnerTeam != "" && !b.table.Catalog().HasTeam(winnerTeam) {
		return nil, &models.ValidationError{Field: "winner_team", Identifier: winnerTeam, Reason: "unknown team"}
	}

	result, err := b.Build(legs)
	if err != nil {
		return nil, err
	}
	if winnerTeam != "" {
		result.WinnerTeam = winnerTeam
		result.ID = multiID(winnerTeam, result.Legs)
		result.TotalLegs++
	}
	return result, nil
}

func (b *Builder) resolve(i int, leg models.MultiBetLeg) (models.MultiBetLeg, models.Market, error) {
	field := fmt.Sprintf("legs[%d]", i)
	player := strings.TrimSpace(leg.PlayerName)
	marketID := strings.TrimSpace(leg.Market)
	team := strings.TrimSpace(leg.Team)

	if player == "" {
		return leg, models.Market{}, &models.ValidationError{Field: field + ".player_name", Reason: "is required"}
	}
	if marketID == "" {
		return leg, models.Market{}, &models.ValidationError{Field: field + ".market", Reason: "is required"}
	}

	catalog := b.table.Catalog()
	market, ok := catalog.LookupMarket(marketID)
	if !ok {
		return leg, models.Market{}, legNotFound(field, player, marketID, "unknown market")
	}

	if team != "" {
		if !catalog.HasTeam(team) {
			return leg, market, legNotFound(field, player, market.Name, "unknown team "+team)
		}
	} else {
		var candidates []string
		for _, rec := range b.table.FindPlayer(player, market.Role) {
			if _, ok := rec.Percentage(market.Key); ok {
				candidates = append(candidates, rec.Team)
			}
		}
		switch len(candidates) {
		case 0:
			return leg, market, legNotFound(field, player, market.Name, "no historical percentage")
		case 1:
			team = candidates[0]
		default:
			return leg, market, &models.ValidationError{
				Field:      field + ".team",
				Identifier: player,
				Reason:     "player is on several teams (" + strings.Join(candidates, ", ") + "), team is required",
			}
		}
	}

	pct, ok := b.table.PercentageFor(team, player, market)
	if !ok {
		return leg, market, legNotFound(field, player, market.Name, "no historical percentage for "+team)
	}

	return models.MultiBetLeg{
		PlayerName:           player,
		Market:               market.Name,
		Team:                 team,
		HistoricalPercentage: pct,
	}, market, nil
}

// multiID names a multi by its winner and resolved legs, so identical selections share an id
func multiID(winnerTeam string, legs []models.MultiBetLeg) uuid.UUID {
	var b strings.Builder
	b.WriteString(winnerTeam)
	for _, leg := range legs {
		b.WriteString("\n")
		b.WriteString(leg.Team + "|" + leg.PlayerName + "|" + leg.Market)
	}
	return uuid.NewSHA1(multiNamespace, []byte(b.String()))
}

func legIdentifier(player, market string) string {
	return player + " / " + market
}

func legNotFound(field, player, market, reason string) error {
	return &models.NotFoundError{Kind: "leg", Identifier: legIdentifier(player, market), Field: field, Reason: reason}
}
