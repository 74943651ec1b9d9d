package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/chrisf-bit/agency-simulator-sub000/internal/engine"
)

var (
	stdinReader = bufio.NewReader(os.Stdin)
	accent      = color.New(color.FgCyan, color.Bold)
	success     = color.New(color.FgGreen, color.Bold)
	warn        = color.New(color.FgYellow, color.Bold)
	danger      = color.New(color.FgRed, color.Bold)
	neutral     = color.New(color.FgHiWhite)
)

type gamePayload struct {
	ID                 string     `json:"id"`
	Status             string     `json:"status"`
	Level              string     `json:"level"`
	NumberOfTeams      int        `json:"number_of_teams"`
	MaxQuarters        int        `json:"max_quarters"`
	CurrentQuarter     int        `json:"current_quarter"`
	WinnerTeamID       string     `json:"winner_team_id"`
	SubmissionDeadline *time.Time `json:"submission_deadline"`
	Teams              []struct {
		TeamID      string `json:"team_id"`
		CompanyName string `json:"company_name"`
		IsBankrupt  bool   `json:"is_bankrupt"`
		Submitted   bool   `json:"submitted"`
	} `json:"teams"`
}

type createPayload struct {
	Game           gamePayload `json:"game"`
	JoinCode       string      `json:"join_code"`
	FacilitatorKey string      `json:"facilitator_key"`
}

type joinPayload struct {
	Game   gamePayload `json:"game"`
	TeamID string      `json:"team_id"`
	Token  string      `json:"token"`
}

type opportunitiesPayload struct {
	Quarter       int                        `json:"quarter"`
	Opportunities []engine.ClientOpportunity `json:"opportunities"`
}

type eventsPayload struct {
	Quarter int                `json:"quarter"`
	Events  []engine.GameEvent `json:"events"`
}

type leaderboardPayload struct {
	Leaderboard []engine.LeaderboardEntry `json:"leaderboard"`
}

type resultsPayload struct {
	Results []engine.QuarterResult `json:"results"`
	Metrics []engine.AgencyMetrics `json:"metrics"`
}

type notificationsPayload struct {
	Notifications []engine.Notification `json:"notifications"`
}

type insightsPayload struct {
	Insights []engine.Insight `json:"insights"`
}

func printSuccess(msg string) {
	success.Println(msg)
}

func printWarn(msg string) {
	warn.Println(msg)
}

func printError(msg string) {
	danger.Println(msg)
}

func printInfo(msg string) {
	neutral.Println(msg)
}

func promptRequired(label string) (string, error) {
	for {
		fmt.Printf("%s: ", label)
		text, err := stdinReader.ReadString('\n')
		if err != nil {
			return "", err
		}
		text = strings.TrimSpace(text)
		if text != "" {
			return text, nil
		}
		printWarn(label + " is required.")
	}
}

func promptOptional(label string) (string, error) {
	fmt.Printf("%s: ", label)
	text, err := stdinReader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

func promptChoice(label string, options []string, defaultValue string) (string, error) {
	normalized := make(map[string]struct{}, len(options))
	for _, opt := range options {
		normalized[strings.ToLower(strings.TrimSpace(opt))] = struct{}{}
	}
	for {
		fmt.Printf("%s (%s) [%s]: ", label, strings.Join(options, "/"), defaultValue)
		text, err := stdinReader.ReadString('\n')
		if err != nil {
			return "", err
		}
		text = strings.ToLower(strings.TrimSpace(text))
		if text == "" {
			text = strings.ToLower(strings.TrimSpace(defaultValue))
		}
		if _, ok := normalized[text]; ok {
			return text, nil
		}
		printWarn("Invalid option. Please pick one of the listed values.")
	}
}

func promptIntDefault(label string, min, defaultValue int64) (int64, error) {
	for {
		fmt.Printf("%s [%d]: ", label, defaultValue)
		text, err := stdinReader.ReadString('\n')
		if err != nil {
			return 0, err
		}
		text = strings.TrimSpace(text)
		if text == "" {
			return defaultValue, nil
		}
		v, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			printWarn("Enter a whole number.")
			continue
		}
		if v < min {
			printWarn(fmt.Sprintf("Value must be >= %d", min))
			continue
		}
		return v, nil
	}
}

// promptDollars reads a dollar amount and returns cents.
func promptDollars(label string) (int64, error) {
	for {
		fmt.Printf("%s ($) [0]: ", label)
		text, err := stdinReader.ReadString('\n')
		if err != nil {
			return 0, err
		}
		text = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(text), "$"))
		if text == "" {
			return 0, nil
		}
		v, err := strconv.ParseFloat(text, 64)
		if err != nil || v < 0 {
			printWarn("Enter a non-negative dollar amount.")
			continue
		}
		return int64(v * 100), nil
	}
}

func promptFraction(label string, defaultValue float64) (float64, error) {
	for {
		fmt.Printf("%s (0-1) [%.2f]: ", label, defaultValue)
		text, err := stdinReader.ReadString('\n')
		if err != nil {
			return 0, err
		}
		text = strings.TrimSpace(text)
		if text == "" {
			return defaultValue, nil
		}
		v, err := strconv.ParseFloat(text, 64)
		if err != nil || v < 0 || v > 1 {
			printWarn("Enter a value between 0 and 1.")
			continue
		}
		return v, nil
	}
}

func renderGame(raw map[string]any) error {
	g, err := decodeInto[gamePayload](raw)
	if err != nil {
		return err
	}
	accent.Printf("\n== GAME %s ==\n", truncate(g.ID, 8))
	fmt.Printf("Status:       %s\n", g.Status)
	fmt.Printf("Level:        %s\n", g.Level)
	fmt.Printf("Quarter:      %d of %d\n", g.CurrentQuarter, g.MaxQuarters)
	if g.SubmissionDeadline != nil {
		fmt.Printf("Deadline:     %s\n", g.SubmissionDeadline.Local().Format("2006-01-02 15:04"))
	}
	if g.WinnerTeamID != "" {
		success.Printf("Winner:       %s\n", g.WinnerTeamID)
	}

	fmt.Println()
	accent.Println("Teams")
	if len(g.Teams) == 0 {
		printInfo("No teams yet.")
		fmt.Println()
		return nil
	}
	fmt.Printf("%-24s %-10s %-10s\n", "COMPANY", "SUBMITTED", "STATUS")
	for _, t := range g.Teams {
		status := "active"
		if t.IsBankrupt {
			status = danger.Sprint("bankrupt")
		}
		submitted := "no"
		if t.Submitted {
			submitted = "yes"
		}
		fmt.Printf("%-24s %-10s %-10s\n", truncate(t.CompanyName, 24), submitted, status)
	}
	fmt.Println()
	return nil
}

func renderOpportunities(raw map[string]any) error {
	payload, err := decodeInto[opportunitiesPayload](raw)
	if err != nil {
		return err
	}
	accent.Printf("\n== OPPORTUNITIES (Q%d) ==\n", payload.Quarter)
	if len(payload.Opportunities) == 0 {
		printInfo("No open opportunities this quarter.")
		return nil
	}
	fmt.Printf("%-10s %-24s %-12s %-16s %12s %8s %6s %-8s %6s\n",
		"ID", "NAME", "TYPE", "SERVICE", "BUDGET", "HRS/Q", "QTRS", "COMPLEX", "WIN%")
	for _, o := range payload.Opportunities {
		name := o.Name
		if o.RenewalOf != "" {
			name = name + " (renewal)"
		}
		fmt.Printf("%-10s %-24s %-12s %-16s %12s %8.0f %6d %-8s %5.0f%%\n",
			truncate(o.ID, 10),
			truncate(name, 24),
			o.ClientType,
			truncate(o.ServiceLine, 16),
			formatCents(o.BudgetCents),
			o.HoursPerQuarter,
			o.ContractLength,
			o.Complexity,
			o.BaseWinChance,
		)
	}
	fmt.Println()
	return nil
}

func renderTeamState(raw map[string]any) error {
	t, err := decodeInto[engine.TeamState](raw)
	if err != nil {
		return err
	}
	accent.Printf("\n== %s ==\n", t.CompanyName)
	if t.IsBankrupt {
		danger.Printf("BANKRUPT since Q%d\n", t.BankruptQuarter)
	}
	fmt.Printf("Quarter:          %d\n", t.Quarter)
	fmt.Printf("Cash:             %s\n", colorizeCents(t.CashCents))
	fmt.Printf("Cumulative P/L:   %s\n", colorizeCents(t.CumulativeProfitCents))
	fmt.Printf("Staff:            %d\n", t.Staff)
	fmt.Printf("Burnout:          %.1f\n", t.Burnout)
	fmt.Printf("Reputation:       %.1f\n", t.Reputation)
	fmt.Printf("Market Presence:  %.1f\n", t.MarketPresence)
	fmt.Printf("Capabilities:     tech %.2f / training %.2f / process %.2f\n",
		t.TechLevel, t.TrainingLevel, t.ProcessLevel)

	fmt.Println()
	accent.Println("Clients")
	if len(t.Clients) == 0 {
		printInfo("No active clients.")
		fmt.Println()
		return nil
	}
	fmt.Printf("%-24s %-12s %12s %6s %6s %-10s %-10s\n",
		"NAME", "TYPE", "REV/Q", "QTRS", "SAT", "QUALITY", "STATUS")
	for _, c := range t.Clients {
		status := string(c.Status)
		if c.Status == engine.ClientNotice {
			status = warn.Sprint(status)
		}
		fmt.Printf("%-24s %-12s %12s %6d %6.0f %-10s %-10s\n",
			truncate(c.Name, 24),
			c.ClientType,
			formatCents(c.RevenueCents),
			c.QuartersRemaining,
			c.Satisfaction,
			c.Quality,
			status,
		)
	}
	fmt.Println()
	return nil
}

func renderResults(raw map[string]any) error {
	payload, err := decodeInto[resultsPayload](raw)
	if err != nil {
		return err
	}
	accent.Println("\n== QUARTERLY RESULTS ==")
	if len(payload.Results) == 0 {
		printInfo("No quarters resolved yet.")
		return nil
	}
	fmt.Printf("%4s %14s %14s %14s %5s %5s %5s %7s\n",
		"QTR", "REVENUE", "COSTS", "PROFIT", "WON", "LOST", "RENEW", "UTIL%")
	for _, r := range payload.Results {
		fmt.Printf("%4d %14s %14s %14s %5d %5d %5d %6.0f%%\n",
			r.Quarter,
			formatCents(r.RevenueCents),
			formatCents(r.CostsCents),
			colorizeCents(r.ProfitCents),
			r.ClientsWon,
			r.ClientsLost,
			r.ClientsRenewed,
			r.UtilizationRate*100,
		)
	}
	fmt.Println()
	return nil
}

func renderLeaderboard(raw map[string]any) error {
	payload, err := decodeInto[leaderboardPayload](raw)
	if err != nil {
		return err
	}
	accent.Println("\n== LEADERBOARD ==")
	if len(payload.Leaderboard) == 0 {
		printInfo("No teams on the board yet.")
		return nil
	}
	fmt.Printf("%4s %-24s %16s %16s %6s %8s\n",
		"RANK", "COMPANY", "CUM. PROFIT", "CASH", "REP", "CLIENTS")
	for _, e := range payload.Leaderboard {
		company := e.CompanyName
		if e.IsBankrupt {
			company = danger.Sprint(truncate(company, 20) + " (bankrupt)")
		} else {
			company = truncate(company, 24)
		}
		fmt.Printf("%4d %-24s %16s %16s %6.1f %8d\n",
			e.Rank,
			company,
			colorizeCents(e.CumulativeProfitCents),
			formatCents(e.CashCents),
			e.Reputation,
			e.ClientCount,
		)
	}
	fmt.Println()
	return nil
}

func renderEvents(raw map[string]any) error {
	payload, err := decodeInto[eventsPayload](raw)
	if err != nil {
		return err
	}
	accent.Printf("\n== MARKET EVENTS (Q%d) ==\n", payload.Quarter)
	if len(payload.Events) == 0 {
		printInfo("Quiet quarter. No active events.")
		return nil
	}
	for _, e := range payload.Events {
		warn.Printf("%s", e.Name)
		fmt.Printf("  (%d quarters left)\n", e.QuartersRemaining)
		fmt.Printf("  %s\n", e.Description)
	}
	fmt.Println()
	return nil
}

func renderNotifications(raw map[string]any) error {
	payload, err := decodeInto[notificationsPayload](raw)
	if err != nil {
		return err
	}
	accent.Println("\n== NOTIFICATIONS ==")
	if len(payload.Notifications) == 0 {
		printInfo("Nothing to report.")
		return nil
	}
	for _, n := range payload.Notifications {
		printer := neutral
		switch n.Level {
		case engine.NotifySuccess:
			printer = success
		case engine.NotifyWarning:
			printer = warn
		case engine.NotifyDanger:
			printer = danger
		}
		printer.Printf("%s", n.Title)
		fmt.Printf("  %s\n", n.Message)
	}
	fmt.Println()
	return nil
}

func renderInsights(raw map[string]any) error {
	payload, err := decodeInto[insightsPayload](raw)
	if err != nil {
		return err
	}
	accent.Println("\n== ADVISOR INSIGHTS ==")
	if len(payload.Insights) == 0 {
		printInfo("No advice this quarter. Keep going.")
		return nil
	}
	for _, in := range payload.Insights {
		warn.Printf("[%s] ", in.Topic)
		fmt.Println(in.Message)
	}
	fmt.Println()
	return nil
}

func decodeInto[T any](in any) (T, error) {
	var out T
	raw, err := json.Marshal(in)
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, err
	}
	return out, nil
}

func colorizeCents(v int64) string {
	text := formatCents(v)
	switch {
	case v > 0:
		return success.Sprint(text)
	case v < 0:
		return danger.Sprint(text)
	default:
		return neutral.Sprint(text)
	}
}

func formatCents(v int64) string {
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s$%s.%02d", sign, comma(v/100), v%100)
}

func comma(v int64) string {
	s := strconv.FormatInt(v, 10)
	if len(s) <= 3 {
		return s
	}
	var b strings.Builder
	pre := len(s) % 3
	if pre > 0 {
		b.WriteString(s[:pre])
		if len(s) > pre {
			b.WriteByte(',')
		}
	}
	for i := pre; i < len(s); i += 3 {
		b.WriteString(s[i : i+3])
		if i+3 < len(s) {
			b.WriteByte(',')
		}
	}
	return b.String()
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if n <= 0 || len(s) <= n {
		return s
	}
	if n <= 3 {
		return s[:n]
	}
	return s[:n-3] + "..."
}
