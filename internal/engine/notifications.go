package engine

import "fmt"

// NotificationLevel grades how urgently a notification should surface.
type NotificationLevel string

const (
	NotifyInfo    NotificationLevel = "info"
	NotifySuccess NotificationLevel = "success"
	NotifyWarning NotificationLevel = "warning"
	NotifyDanger  NotificationLevel = "danger"
)

// Notification is a human-readable callout derived from one resolved quarter.
type Notification struct {
	Level   NotificationLevel `json:"level"`
	Title   string            `json:"title"`
	Message string            `json:"message"`
}

// notificationRule pairs a predicate with a descriptor. Rules are evaluated
// in table order against a read-only view of the state and result; adding a
// notification means adding a row, not a branch.
type notificationRule struct {
	check func(team TeamState, result QuarterResult) bool
	build func(team TeamState, result QuarterResult) Notification
}

var notificationRules = []notificationRule{
	{
		check: func(t TeamState, _ QuarterResult) bool { return t.IsBankrupt },
		build: func(t TeamState, _ QuarterResult) Notification {
			return Notification{NotifyDanger, "Bankruptcy",
				fmt.Sprintf("%s has gone bankrupt in quarter %d. The agency's history is preserved but it can no longer act.", t.CompanyName, t.BankruptQuarter)}
		},
	},
	{
		check: func(_ TeamState, r QuarterResult) bool { return r.ClientsWon > 0 },
		build: func(_ TeamState, r QuarterResult) Notification {
			return Notification{NotifySuccess, "New business",
				fmt.Sprintf("Won %d new client(s) this quarter.", r.ClientsWon)}
		},
	},
	{
		check: func(_ TeamState, r QuarterResult) bool { return r.ClientsRenewed > 0 },
		build: func(_ TeamState, r QuarterResult) Notification {
			return Notification{NotifySuccess, "Renewals",
				fmt.Sprintf("%d client contract(s) renewed.", r.ClientsRenewed)}
		},
	},
	{
		check: func(_ TeamState, r QuarterResult) bool { return r.ClientsChurned > 0 },
		build: func(_ TeamState, r QuarterResult) Notification {
			return Notification{NotifyDanger, "Client churn",
				fmt.Sprintf("%d client(s) walked away after giving notice.", r.ClientsChurned)}
		},
	},
	{
		check: func(t TeamState, _ QuarterResult) bool {
			for _, c := range t.Clients {
				if c.Status == ClientNotice {
					return true
				}
			}
			return false
		},
		build: func(t TeamState, _ QuarterResult) Notification {
			n := 0
			for _, c := range t.Clients {
				if c.Status == ClientNotice {
					n++
				}
			}
			return Notification{NotifyWarning, "Clients on notice",
				fmt.Sprintf("%d client(s) have given notice. Raise satisfaction or lose them next quarter.", n)}
		},
	},
	{
		check: func(_ TeamState, r QuarterResult) bool { return r.UtilizationRate > ChronicOverworkLine },
		build: func(_ TeamState, r QuarterResult) Notification {
			return Notification{NotifyWarning, "Overworked",
				fmt.Sprintf("Utilization hit %.0f%%. Sustained overwork damages satisfaction, burnout and reputation.", r.UtilizationRate*100)}
		},
	},
	{
		check: func(t TeamState, _ QuarterResult) bool { return t.Burnout >= SevereBurnoutLevel },
		build: func(t TeamState, _ QuarterResult) Notification {
			return Notification{NotifyDanger, "Severe burnout",
				fmt.Sprintf("Team burnout is at %.0f. Expect quality and reputation penalties until it recovers.", t.Burnout)}
		},
	},
	{
		check: func(_ TeamState, r QuarterResult) bool { return r.ProfitCents < 0 },
		build: func(t TeamState, r QuarterResult) Notification {
			return Notification{NotifyWarning, "Operating at a loss",
				fmt.Sprintf("Quarter closed %s in the red. Cash on hand: %s.", formatDollars(-r.ProfitCents), formatDollars(t.CashCents))}
		},
	},
	{
		check: func(_ TeamState, r QuarterResult) bool { return r.ProfitCents > 0 },
		build: func(_ TeamState, r QuarterResult) Notification {
			return Notification{NotifyInfo, "Profitable quarter",
				fmt.Sprintf("Quarter closed with %s profit.", formatDollars(r.ProfitCents))}
		},
	},
}

// GenerateNotifications evaluates the rule table against a team's state and
// its latest result. It never mutates either argument.
func GenerateNotifications(team TeamState, result QuarterResult) []Notification {
	var out []Notification
	for _, rule := range notificationRules {
		if rule.check(team, result) {
			out = append(out, rule.build(team, result))
		}
	}
	return out
}

func formatDollars(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s$%d.%02d", sign, cents/CentsPerDollar, cents%CentsPerDollar)
}
