package models

// Recommendation is one ranked (player, market) suggestion.
// Percentage is the display form of HistoricalPercentage, e.g. "80.0%".
type Recommendation struct {
	PlayerName           string  `json:"player_name"`
	Team                 string  `json:"team"`
	Market               string  `json:"market"`
	MarketKey            string  `json:"market_key"`
	Role                 Role    `json:"type"`
	Percentage           string  `json:"percentage"`
	HistoricalPercentage float64 `json:"percentage_value"`
	ConfidenceRank       int     `json:"confidence_rank"`
	TopPick              bool    `json:"top_pick,omitempty"`
}

// Recommendations maps a market name to its ranked list
type Recommendations map[string][]Recommendation

// MatchRecommendations is the flat, cross-market ranking for a fixture
type MatchRecommendations struct {
	WinnerTeam      string           `json:"winner_team"`
	MatchTeams      []string         `json:"match_teams"`
	Recommendations []Recommendation `json:"recommendations"`
	TotalAvailable  int              `json:"total_available"`
}
