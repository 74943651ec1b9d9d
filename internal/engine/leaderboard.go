package engine

import "sort"

// LeaderboardEntry is one ranked row. Score is cumulative profit in cents;
// ties break on cash, then reputation, then team id for a stable order.
type LeaderboardEntry struct {
	Rank                  int     `json:"rank"`
	TeamID                string  `json:"team_id"`
	CompanyName           string  `json:"company_name"`
	CumulativeProfitCents int64   `json:"cumulative_profit_cents"`
	CashCents             int64   `json:"cash_cents"`
	Reputation            float64 `json:"reputation"`
	ClientCount           int     `json:"client_count"`
	IsBankrupt            bool    `json:"is_bankrupt"`
}

// Leaderboard ranks teams. Solvent teams always outrank bankrupt ones;
// within each group the order is cumulative profit, cash, reputation,
// team id. The result is deterministic for any input order.
func Leaderboard(teams []TeamState) []LeaderboardEntry {
	entries := make([]LeaderboardEntry, 0, len(teams))
	for _, t := range teams {
		entries = append(entries, LeaderboardEntry{
			TeamID:                t.TeamID,
			CompanyName:           t.CompanyName,
			CumulativeProfitCents: t.CumulativeProfitCents,
			CashCents:             t.CashCents,
			Reputation:            t.Reputation,
			ClientCount:           len(t.Clients),
			IsBankrupt:            t.IsBankrupt,
		})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.IsBankrupt != b.IsBankrupt {
			return !a.IsBankrupt
		}
		if a.CumulativeProfitCents != b.CumulativeProfitCents {
			return a.CumulativeProfitCents > b.CumulativeProfitCents
		}
		if a.CashCents != b.CashCents {
			return a.CashCents > b.CashCents
		}
		if a.Reputation != b.Reputation {
			return a.Reputation > b.Reputation
		}
		return a.TeamID < b.TeamID
	})
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries
}

// Winner returns the team id at the top of the leaderboard, or "" when
// there are no teams.
func Winner(teams []TeamState) string {
	board := Leaderboard(teams)
	if len(board) == 0 {
		return ""
	}
	return board[0].TeamID
}
