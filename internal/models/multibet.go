package models

import "github.com/google/uuid"

// NoValueOdds is displayed when the combined percentage is zero
const NoValueOdds = "N/A"

// MultiBetLeg is one (player, market) selection
type MultiBetLeg struct {
	PlayerName           string  `json:"player_name" validate:"required"`
	Market               string  `json:"market" validate:"required"`
	Team                 string  `json:"team,omitempty"`
	HistoricalPercentage float64 `json:"percentage_value"`
}

// MultiBetResult is the aggregate of independently selected legs.
// ImpliedOdds is nil when the combined percentage is zero. ID is derived from the
// winner and resolved legs, so building the same selection twice yields the same result.
type MultiBetResult struct {
	ID                 uuid.UUID     `json:"id"`
	WinnerTeam         string        `json:"winner_team,omitempty"`
	Legs               []MultiBetLeg `json:"selected_bets"`
	TotalLegs          int           `json:"total_legs"`
	CombinedPercentage float64       `json:"combined_percentage_value"`
	ImpliedOdds        *float64      `json:"implied_odds_value"`
	CombinedDisplay    string        `json:"combined_percentage"`
	OddsDisplay        string        `json:"estimated_odds"`
}

// HasValue reports whether the result carries numeric odds
func (r *MultiBetResult) HasValue() bool {
	return r.ImpliedOdds != nil
}
