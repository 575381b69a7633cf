// Package models defines the domain types shared across the multi builder.
package models

import (
	"fmt"
	"strings"
)

// Role determines which market set applies to a player
type Role string

const (
	RoleBatter Role = "batter"
	RoleBowler Role = "bowler"
)

// Valid reports whether r is a known role
func (r Role) Valid() bool {
	return r == RoleBatter || r == RoleBowler
}

// Market is a betting proposition that applies to players of one role
type Market struct {
	Key       string `json:"key"`
	Name      string `json:"name"`
	Role      Role   `json:"role"`
	CSVColumn string `json:"-"`
	// TopTeam markets are comparative across teammates rather than an absolute threshold.
	TopTeam bool `json:"top_team"`
}

// PlayerStatRecord holds the historical percentages of one player for one role
type PlayerStatRecord struct {
	PlayerName        string             `json:"name"`
	Team              string             `json:"team"`
	Role              Role               `json:"type"`
	Innings           int                `json:"total_innings"`
	Total             int                `json:"total"`
	MarketPercentages map[string]float64 `json:"market_percentages"`
}

// Percentage returns the stored percentage for a market key and whether it was recorded
func (p *PlayerStatRecord) Percentage(marketKey string) (float64, bool) {
	pct, ok := p.MarketPercentages[marketKey]
	return pct, ok
}

// Fixture is a scheduled pairing of two teams
type Fixture struct {
	ID          string `json:"id"`
	HomeTeam    string `json:"home_team"`
	AwayTeam    string `json:"away_team"`
	DisplayName string `json:"display_name"`
}

// NewFixture builds a fixture with the derived id and display name
func NewFixture(home, away string) Fixture {
	return Fixture{
		ID:          FixtureID(home, away),
		HomeTeam:    home,
		AwayTeam:    away,
		DisplayName: fmt.Sprintf("%s vs %s", home, away),
	}
}

// FixtureID returns the id used to reference a fixture in requests
func FixtureID(home, away string) string {
	return home + "_vs_" + away
}

// ParseFixtureID splits a fixture id into its two teams
func ParseFixtureID(id string) (home, away string, ok bool) {
	parts := strings.Split(strings.ReplaceAll(id, "_vs_", " vs "), " vs ")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", false
	}
	return parts[0], parts[1], true
}
