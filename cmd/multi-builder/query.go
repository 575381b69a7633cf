package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/yourusername/bbl-multi-builder/internal/models"
	"github.com/yourusername/bbl-multi-builder/internal/service"
)

var (
	recommendMarkets []string
	picksWinner      string
	picksMatch       string
	picksLimit       int
	multiWinner      string
	multiLegs        []string
)

func init() {
	recommendCmd.Flags().StringSliceVarP(&recommendMarkets, "market", "m", nil, "Market key or name (repeatable, default all markets)")

	picksCmd.Flags().StringVarP(&picksWinner, "winner", "w", "", "Team expected to win")
	picksCmd.Flags().StringVar(&picksMatch, "match", "", `Match id, e.g. "Adelaide Strikers_vs_Sydney Sixers"`)
	picksCmd.Flags().IntVarP(&picksLimit, "limit", "n", 0, "Number of picks (default from configuration)")
	_ = picksCmd.MarkFlagRequired("winner")

	multiCmd.Flags().StringVarP(&multiWinner, "winner", "w", "", "Optional match winner selection")
	multiCmd.Flags().StringArrayVarP(&multiLegs, "leg", "l", nil, `Leg as "[team/]player:market" (repeatable)`)
	_ = multiCmd.MarkFlagRequired("leg")
}

var teamsCmd = &cobra.Command{
	Use:   "teams",
	Short: "List known teams",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := bootstrap(commandContext(cmd), true)
		if err != nil {
			return err
		}

		teams := app.facade.ListTeams()
		if jsonOutput {
			return printJSON(map[string]interface{}{"teams": teams})
		}
		for _, team := range teams {
			players, err := app.table.PlayersForTeam(team)
			if err != nil {
				return err
			}
			fmt.Printf("%-24s %3d players\n", team, len(players))
		}
		return nil
	},
}

var matchesCmd = &cobra.Command{
	Use:   "matches",
	Short: "List configured fixtures",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := bootstrap(commandContext(cmd), true)
		if err != nil {
			return err
		}

		matches := app.facade.ListMatches()
		if jsonOutput {
			return printJSON(map[string]interface{}{"matches": matches})
		}
		for _, m := range matches {
			fmt.Printf("%-40s %s\n", m.DisplayName, m.ID)
		}
		return nil
	},
}

var playersCmd = &cobra.Command{
	Use:   "players TEAM",
	Short: "List a team's batters and bowlers",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := bootstrap(commandContext(cmd), true)
		if err != nil {
			return err
		}

		resp, err := app.facade.ListPlayers(args[0])
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(resp)
		}

		fmt.Printf("%s (%d players)\n", resp.Team, resp.TotalPlayers)
		printPlayers("Batters", resp.Batters)
		printPlayers("Bowlers", resp.Bowlers)
		return nil
	},
}

var recommendCmd = &cobra.Command{
	Use:   "recommend TEAM",
	Short: "Rank a team's players per market",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := bootstrap(commandContext(cmd), true)
		if err != nil {
			return err
		}

		resp, err := app.facade.GetRecommendations(args[0], recommendMarkets)
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(resp)
		}

		// Print in catalog order rather than map order
		for _, m := range app.table.Catalog().Markets() {
			ranked, ok := resp.Recommendations[m.Name]
			if !ok {
				continue
			}
			fmt.Printf("\n%s\n", m.Name)
			if len(ranked) == 0 {
				fmt.Println("  no data")
			}
			for _, r := range ranked {
				marker := ""
				if r.TopPick {
					marker = " *"
				}
				fmt.Printf("  %2d. %-24s %7s%s\n", r.ConfidenceRank, r.PlayerName, r.Percentage, marker)
			}
		}
		return nil
	},
}

var picksCmd = &cobra.Command{
	Use:   "picks",
	Short: "Strongest player markets across both teams of a match",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := bootstrap(commandContext(cmd), true)
		if err != nil {
			return err
		}

		resp, err := app.facade.GetMatchRecommendations(service.MatchRecommendationsRequest{
			WinnerTeam: picksWinner,
			MatchID:    picksMatch,
			Limit:      picksLimit,
		})
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(resp)
		}

		fmt.Printf("%s (winner: %s), %d of %d picks\n",
			strings.Join(resp.MatchTeams, " vs "), resp.WinnerTeam, len(resp.Recommendations), resp.TotalAvailable)
		for _, r := range resp.Recommendations {
			fmt.Printf("  %2d. %-24s %-22s %-28s %7s\n", r.ConfidenceRank, r.PlayerName, r.Team, r.Market, r.Percentage)
		}
		return nil
	},
}

var multiCmd = &cobra.Command{
	Use:   "multi",
	Short: "Combine legs into a multi bet",
	Example: `  multi-builder multi --winner "Adelaide Strikers" \
    --leg "A.Smith:10+ Runs" --leg "Adelaide Strikers/B.Jones:2+ Wickets"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		legs, err := parseLegs(multiLegs)
		if err != nil {
			return err
		}

		app, err := bootstrap(commandContext(cmd), true)
		if err != nil {
			return err
		}

		resp, err := app.facade.BuildMulti(service.BuildMultiRequest{WinnerTeam: multiWinner, SelectedBets: legs})
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(resp)
		}

		multi := resp.MultiBet
		fmt.Printf("Multi %s (%d legs)\n", multi.ID, multi.TotalLegs)
		if multi.WinnerTeam != "" {
			fmt.Printf("  %-50s winner\n", multi.WinnerTeam)
		}
		for _, leg := range multi.Legs {
			fmt.Printf("  %-50s %6.2f%%\n", leg.Team+" / "+leg.PlayerName+" / "+leg.Market, leg.HistoricalPercentage)
		}
		fmt.Printf("Combined: %s  Estimated odds: %s\n", multi.CombinedDisplay, multi.OddsDisplay)
		return nil
	},
}

// parseLegs reads "[team/]player:market" selections
func parseLegs(raw []string) ([]models.MultiBetLeg, error) {
	legs := make([]models.MultiBetLeg, 0, len(raw))
	for _, r := range raw {
		who, market, ok := strings.Cut(r, ":")
		if !ok {
			return nil, fmt.Errorf("invalid leg %q: expected [team/]player:market", r)
		}
		leg := models.MultiBetLeg{Market: strings.TrimSpace(market)}
		if team, player, found := strings.Cut(who, "/"); found {
			leg.Team = strings.TrimSpace(team)
			leg.PlayerName = strings.TrimSpace(player)
		} else {
			leg.PlayerName = strings.TrimSpace(who)
		}
		legs = append(legs, leg)
	}
	return legs, nil
}

func printPlayers(title string, players []service.PlayerSummary) {
	fmt.Printf("\n%s\n", title)
	for _, p := range players {
		total := 0
		if p.TotalRuns != nil {
			total = *p.TotalRuns
		} else if p.TotalWickets != nil {
			total = *p.TotalWickets
		}
		fmt.Printf("  %-24s innings %3d  total %4d\n", p.Name, p.TotalInnings, total)
	}
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// commandContext returns the command context or a background context when unset
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
