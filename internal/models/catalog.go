package models

import (
	"fmt"
	"strings"
)

// Catalog is the closed set of known teams and markets
type Catalog struct {
	teams   []string
	teamSet map[string]struct{}
	markets []Market
	byKey   map[string]Market
	byName  map[string]Market
}

// NewCatalog builds a catalog, rejecting duplicate teams or market identifiers
func NewCatalog(teams []string, markets []Market) (*Catalog, error) {
	c := &Catalog{
		teamSet: make(map[string]struct{}, len(teams)),
		byKey:   make(map[string]Market, len(markets)),
		byName:  make(map[string]Market, len(markets)),
	}

	for _, team := range teams {
		if team == "" {
			return nil, fmt.Errorf("team name is required")
		}
		if _, dup := c.teamSet[team]; dup {
			return nil, fmt.Errorf("duplicate team: %s", team)
		}
		c.teamSet[team] = struct{}{}
		c.teams = append(c.teams, team)
	}

	for _, m := range markets {
		if m.Key == "" || m.Name == "" {
			return nil, fmt.Errorf("market key and name are required")
		}
		if !m.Role.Valid() {
			return nil, fmt.Errorf("market %s: invalid role %q", m.Key, m.Role)
		}
		if _, dup := c.byKey[m.Key]; dup {
			return nil, fmt.Errorf("duplicate market key: %s", m.Key)
		}
		if _, dup := c.byName[m.Name]; dup {
			return nil, fmt.Errorf("duplicate market name: %s", m.Name)
		}
		c.byKey[m.Key] = m
		c.byName[m.Name] = m
		c.markets = append(c.markets, m)
	}

	return c, nil
}

// Teams returns the known teams in configured order
func (c *Catalog) Teams() []string {
	out := make([]string, len(c.teams))
	copy(out, c.teams)
	return out
}

// HasTeam reports whether team is known
func (c *Catalog) HasTeam(team string) bool {
	_, ok := c.teamSet[team]
	return ok
}

// Markets returns all markets in configured order
func (c *Catalog) Markets() []Market {
	out := make([]Market, len(c.markets))
	copy(out, c.markets)
	return out
}

// MarketsForRole returns the markets that apply to a role
func (c *Catalog) MarketsForRole(role Role) []Market {
	var out []Market
	for _, m := range c.markets {
		if m.Role == role {
			out = append(out, m)
		}
	}
	return out
}

// LookupMarket resolves a market by key or display name
func (c *Catalog) LookupMarket(id string) (Market, bool) {
	id = strings.TrimSpace(id)
	if m, ok := c.byKey[id]; ok {
		return m, true
	}
	m, ok := c.byName[id]
	return m, ok
}
