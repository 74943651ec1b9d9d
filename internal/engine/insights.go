package engine

import "fmt"

// Insight is strategic commentary derived from trends across a team's
// history rather than a single quarter.
type Insight struct {
	Topic   string `json:"topic"`
	Message string `json:"message"`
}

type insightRule struct {
	topic string
	check func(team TeamState) bool
	build func(team TeamState) string
}

var insightRules = []insightRule{
	{
		topic: "pricing",
		check: func(t TeamState) bool { return avgDiscount(t) > 25 },
		build: func(t TeamState) string {
			return fmt.Sprintf("Average discount across the book is %.0f%%. Deep discounting wins pitches but compounds into thin margins.", avgDiscount(t))
		},
	},
	{
		topic: "concentration",
		check: func(t TeamState) bool {
			if len(t.Clients) < 2 {
				return false
			}
			var total, top int64
			for _, c := range t.Clients {
				total += c.RevenueCents
				if c.RevenueCents > top {
					top = c.RevenueCents
				}
			}
			return total > 0 && top*2 > total
		},
		build: func(t TeamState) string {
			return "Over half your revenue comes from a single client. Losing them would be an existential event."
		},
	},
	{
		topic: "capacity",
		check: func(t TeamState) bool { return trendAbove(t, 2, func(m AgencyMetrics) bool { return m.UtilizationRate > OverworkUtilization }) },
		build: func(t TeamState) string {
			return "Utilization has been above 100% for consecutive quarters. Hire, or satisfaction and burnout keep sliding."
		},
	},
	{
		topic: "capacity",
		check: func(t TeamState) bool {
			return trendAbove(t, 2, func(m AgencyMetrics) bool { return m.UtilizationRate > 0 && m.UtilizationRate < 0.5 })
		},
		build: func(t TeamState) string {
			return "Staff have been under half utilized for consecutive quarters. Payroll is eating cash that work is not covering."
		},
	},
	{
		topic: "quality",
		check: func(t TeamState) bool {
			budget := 0
			for _, c := range t.Clients {
				if c.Quality == QualityBudget {
					budget++
				}
			}
			return len(t.Clients) > 0 && budget*2 > len(t.Clients)
		},
		build: func(t TeamState) string {
			return "Most of the book is on budget-quality service. Satisfaction decays on these contracts; expect churn without intervention."
		},
	},
	{
		topic: "runway",
		check: func(t TeamState) bool {
			r, ok := t.LatestResult()
			return ok && r.ProfitCents < 0 && t.CashCents > 0 && t.CashCents < -r.ProfitCents*2
		},
		build: func(t TeamState) string {
			return "At the current burn rate there is under two quarters of cash left."
		},
	},
	{
		topic: "growth",
		check: func(t TeamState) bool { return t.MarketPresence < 20 && t.Quarter > 2 },
		build: func(t TeamState) string {
			return fmt.Sprintf("Market presence is only %.0f%%. Without sustained marketing, base win chances stay depressed.", t.MarketPresence)
		},
	},
}

// Insights evaluates the rule table against a team's full history. Read-only.
func Insights(team TeamState) []Insight {
	var out []Insight
	for _, rule := range insightRules {
		if rule.check(team) {
			out = append(out, Insight{Topic: rule.topic, Message: rule.build(team)})
		}
	}
	return out
}

func avgDiscount(t TeamState) float64 {
	if len(t.Clients) == 0 {
		return 0
	}
	total := 0
	for _, c := range t.Clients {
		total += c.DiscountPct
	}
	return float64(total) / float64(len(t.Clients))
}

// trendAbove reports whether the last n metric snapshots all satisfy pred.
func trendAbove(t TeamState, n int, pred func(AgencyMetrics) bool) bool {
	if len(t.Metrics) < n {
		return false
	}
	for _, m := range t.Metrics[len(t.Metrics)-n:] {
		if !pred(m) {
			return false
		}
	}
	return true
}
