// Package stats holds the immutable table of historical per-player market percentages.
package stats

import (
	"fmt"
	"maps"
	"math"

	"github.com/yourusername/bbl-multi-builder/internal/models"
)

type recordKey struct {
	team   string
	player string
	role   models.Role
}

// Table is the process-wide statistics snapshot. It is never mutated after
// construction, so concurrent readers need no locking.
type Table struct {
	catalog *models.Catalog
	records []models.PlayerStatRecord
	byTeam  map[string][]int
	index   map[recordKey]int
}

// NewTable validates records against the catalog and builds the table.
// Any violation is reported as a *models.DataIntegrityError.
func NewTable(catalog *models.Catalog, records []models.PlayerStatRecord) (*Table, error) {
	t := &Table{
		catalog: catalog,
		records: make([]models.PlayerStatRecord, 0, len(records)),
		byTeam:  make(map[string][]int),
		index:   make(map[recordKey]int, len(records)),
	}

	for i, rec := range records {
		if err := t.add(rec); err != nil {
			err.Table = "records"
			err.Line = i + 1
			return nil, err
		}
	}

	return t, nil
}

func (t *Table) add(rec models.PlayerStatRecord) *models.DataIntegrityError {
	if rec.PlayerName == "" {
		return &models.DataIntegrityError{Reason: "player name is required"}
	}
	if !rec.Role.Valid() {
		return &models.DataIntegrityError{Value: string(rec.Role), Reason: "unknown role"}
	}
	if !t.catalog.HasTeam(rec.Team) {
		return &models.DataIntegrityError{Value: rec.Team, Reason: "unknown team"}
	}

	for key, pct := range rec.MarketPercentages {
		m, ok := t.catalog.LookupMarket(key)
		if !ok || m.Key != key {
			return &models.DataIntegrityError{Column: key, Reason: "unknown market"}
		}
		if m.Role != rec.Role {
			return &models.DataIntegrityError{Column: key, Reason: fmt.Sprintf("market does not apply to %ss", rec.Role)}
		}
		if math.IsNaN(pct) || pct < 0 || pct > 100 {
			return &models.DataIntegrityError{Column: key, Value: fmt.Sprint(pct), Reason: "percentage out of range [0,100]"}
		}
	}

	key := recordKey{team: rec.Team, player: rec.PlayerName, role: rec.Role}
	if _, dup := t.index[key]; dup {
		return &models.DataIntegrityError{Value: rec.PlayerName, Reason: fmt.Sprintf("duplicate %s for %s", rec.Role, rec.Team)}
	}

	rec.MarketPercentages = maps.Clone(rec.MarketPercentages)
	if rec.MarketPercentages == nil {
		rec.MarketPercentages = map[string]float64{}
	}

	t.records = append(t.records, rec)
	pos := len(t.records) - 1
	t.index[key] = pos
	t.byTeam[rec.Team] = append(t.byTeam[rec.Team], pos)
	return nil
}

// Catalog returns the closed set of teams and markets the table was validated against
func (t *Table) Catalog() *models.Catalog {
	return t.catalog
}

// Teams returns the known teams in configured order
func (t *Table) Teams() []string {
	return t.catalog.Teams()
}

// Len returns the number of records
func (t *Table) Len() int {
	return len(t.records)
}

// CountRole returns the number of records with the given role
func (t *Table) CountRole(role models.Role) int {
	n := 0
	for _, rec := range t.records {
		if rec.Role == role {
			n++
		}
	}
	return n
}

// PlayersForTeam returns every record of a known team in load order.
// Unknown teams fail with a NotFoundError; a known team without data yields an empty slice.
func (t *Table) PlayersForTeam(team string) ([]models.PlayerStatRecord, error) {
	if !t.catalog.HasTeam(team) {
		return nil, models.NewTeamNotFound(team)
	}

	positions := t.byTeam[team]
	out := make([]models.PlayerStatRecord, 0, len(positions))
	for _, pos := range positions {
		out = append(out, t.clone(pos))
	}
	return out, nil
}

// Roster returns the records of one role on a team in load order
func (t *Table) Roster(team string, role models.Role) ([]models.PlayerStatRecord, error) {
	players, err := t.PlayersForTeam(team)
	if err != nil {
		return nil, err
	}

	out := players[:0]
	for _, p := range players {
		if p.Role == role {
			out = append(out, p)
		}
	}
	return out, nil
}

// PercentageFor returns the recorded percentage of a player on a team for a market.
// The boolean is false when nothing was recorded, which is distinct from a recorded 0%.
func (t *Table) PercentageFor(team, player string, market models.Market) (float64, bool) {
	pos, ok := t.index[recordKey{team: team, player: player, role: market.Role}]
	if !ok {
		return 0, false
	}
	return t.records[pos].Percentage(market.Key)
}

// FindPlayer returns every record named player with the given role, across all teams
func (t *Table) FindPlayer(player string, role models.Role) []models.PlayerStatRecord {
	var out []models.PlayerStatRecord
	for _, team := range t.catalog.Teams() {
		if pos, ok := t.index[recordKey{team: team, player: player, role: role}]; ok {
			out = append(out, t.clone(pos))
		}
	}
	return out
}

func (t *Table) clone(pos int) models.PlayerStatRecord {
	rec := t.records[pos]
	rec.MarketPercentages = maps.Clone(rec.MarketPercentages)
	return rec
}
