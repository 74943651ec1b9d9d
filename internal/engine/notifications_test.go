package engine

import (
	"strings"
	"testing"
)

func hasNotification(list []Notification, title string) bool {
	for _, n := range list {
		if n.Title == title {
			return true
		}
	}
	return false
}

func TestGenerateNotifications(t *testing.T) {
	cases := []struct {
		name   string
		team   TeamState
		result QuarterResult
		want   string
		level  NotificationLevel
	}{
		{"bankruptcy", TeamState{CompanyName: "Harbor & Co", IsBankrupt: true, BankruptQuarter: 3}, QuarterResult{}, "Bankruptcy", NotifyDanger},
		{"new business", TeamState{}, QuarterResult{ClientsWon: 2, ProfitCents: 1}, "New business", NotifySuccess},
		{"churn", TeamState{}, QuarterResult{ClientsChurned: 1}, "Client churn", NotifyDanger},
		{"overwork", TeamState{}, QuarterResult{UtilizationRate: 1.3}, "Overworked", NotifyWarning},
		{"burnout", TeamState{Burnout: 85}, QuarterResult{}, "Severe burnout", NotifyDanger},
		{"loss", TeamState{CashCents: 100}, QuarterResult{ProfitCents: -5_000}, "Operating at a loss", NotifyWarning},
		{"profit", TeamState{}, QuarterResult{ProfitCents: 5_000}, "Profitable quarter", NotifyInfo},
		{"on notice", TeamState{Clients: []ActiveClient{{Status: ClientNotice}}}, QuarterResult{}, "Clients on notice", NotifyWarning},
	}
	for _, tc := range cases {
		got := GenerateNotifications(tc.team, tc.result)
		if !hasNotification(got, tc.want) {
			t.Fatalf("%s: missing %q in %+v", tc.name, tc.want, got)
		}
		for _, n := range got {
			if n.Title == tc.want && n.Level != tc.level {
				t.Fatalf("%s: level = %s, want %s", tc.name, n.Level, tc.level)
			}
		}
	}
}

func TestGenerateNotificationsQuietQuarter(t *testing.T) {
	got := GenerateNotifications(TeamState{}, QuarterResult{})
	if len(got) != 0 {
		t.Fatalf("uneventful break-even quarter produced %d notifications: %+v", len(got), got)
	}
}

func TestFormatDollars(t *testing.T) {
	cases := []struct {
		cents int64
		want  string
	}{
		{0, "$0.00"},
		{199, "$1.99"},
		{5_000_000, "$50000.00"},
		{-325, "-$3.25"},
	}
	for _, tc := range cases {
		if got := formatDollars(tc.cents); got != tc.want {
			t.Fatalf("formatDollars(%d) = %q, want %q", tc.cents, got, tc.want)
		}
	}
}

func TestInsights(t *testing.T) {
	t.Run("discount pressure", func(t *testing.T) {
		team := TeamState{Clients: []ActiveClient{{DiscountPct: 40}, {DiscountPct: 30}}}
		if !hasInsight(Insights(team), "pricing") {
			t.Fatal("deep average discount should produce a pricing insight")
		}
	})

	t.Run("revenue concentration", func(t *testing.T) {
		team := TeamState{Clients: []ActiveClient{
			{RevenueCents: 9_000_000},
			{RevenueCents: 1_000_000},
		}}
		if !hasInsight(Insights(team), "concentration") {
			t.Fatal("dominant client should produce a concentration insight")
		}
	})

	t.Run("even split is not concentration", func(t *testing.T) {
		team := TeamState{Clients: []ActiveClient{
			{RevenueCents: 5_000_000},
			{RevenueCents: 5_000_000},
		}}
		if hasInsight(Insights(team), "concentration") {
			t.Fatal("an exactly even two-client split is not over half")
		}
		team.Clients[0].RevenueCents++
		if !hasInsight(Insights(team), "concentration") {
			t.Fatal("anything past half should produce a concentration insight")
		}
	})

	t.Run("sustained overwork", func(t *testing.T) {
		team := TeamState{Metrics: []AgencyMetrics{
			{UtilizationRate: 1.2},
			{UtilizationRate: 1.1},
		}}
		if !hasInsight(Insights(team), "capacity") {
			t.Fatal("two overworked quarters should produce a capacity insight")
		}
	})

	t.Run("healthy book stays quiet", func(t *testing.T) {
		team := TeamState{
			Quarter:        2,
			MarketPresence: 40,
			Clients: []ActiveClient{
				{RevenueCents: 3_000_000, Quality: QualityStandard, DiscountPct: 5},
				{RevenueCents: 3_000_000, Quality: QualityPremium, DiscountPct: 0},
			},
			Metrics: []AgencyMetrics{{UtilizationRate: 0.9}, {UtilizationRate: 0.85}},
		}
		for _, in := range Insights(team) {
			t.Fatalf("healthy team produced insight: %s", in.Message)
		}
	})
}

func hasInsight(list []Insight, topic string) bool {
	for _, in := range list {
		if strings.EqualFold(in.Topic, topic) {
			return true
		}
	}
	return false
}
