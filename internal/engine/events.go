package engine

// EventType identifies a market-wide condition.
type EventType string

const (
	EventEconomicBoom  EventType = "economic_boom"
	EventBudgetCuts    EventType = "budget_cuts"
	EventViralTrend    EventType = "viral_trend"
	EventTalentPoaching EventType = "talent_poaching"
	EventIndustryAward EventType = "industry_award"
	EventNewCompetitor EventType = "new_competitor"
)

// GameEvent is an active market condition shared by all teams in a game.
type GameEvent struct {
	Type              EventType `json:"type"`
	Name              string    `json:"name"`
	Description       string    `json:"description"`
	StartQuarter      int       `json:"start_quarter"`
	QuartersRemaining int       `json:"quarters_remaining"`
	Active            bool      `json:"active"`
}

// EventDefinition is a static table row. Adding an event type means adding a
// row here plus its effect hooks; nothing else branches on the type.
type EventDefinition struct {
	Type        EventType
	Name        string
	Description string
	BaseChance  float64
	Duration    int

	// Effect hooks consumed by the pitch resolver and quarter engine.
	WinChanceDelta   float64 // applied to all pitches
	ServiceLine      string  // if set, ServiceLineDelta applies to this line only
	ServiceLineDelta float64
	StaffCostFactor  float64 // multiplier on staff costs (1 = neutral)
	ReputationBonus  float64 // applied to teams at or above ReputationFloor
	ReputationFloor  float64
}

// eventTable is rolled in fixed order each quarter so replays with the same
// seed reproduce the same active-event set.
var eventTable = []EventDefinition{
	{
		Type:            EventEconomicBoom,
		Name:            "Economic Boom",
		Description:     "Client budgets are loose and buyers are optimistic.",
		BaseChance:      0.12,
		Duration:        2,
		WinChanceDelta:  6,
		StaffCostFactor: 1,
	},
	{
		Type:            EventBudgetCuts,
		Name:            "Industry Budget Cuts",
		Description:     "Procurement teams are slashing agency spend across the board.",
		BaseChance:      0.12,
		Duration:        2,
		WinChanceDelta:  -8,
		StaffCostFactor: 1,
	},
	{
		Type:             EventViralTrend,
		Name:             "Viral Social Trend",
		Description:      "A platform trend has every brand scrambling for social work.",
		BaseChance:       0.15,
		Duration:         1,
		ServiceLine:      "social",
		ServiceLineDelta: 12,
		StaffCostFactor:  1,
	},
	{
		Type:            EventTalentPoaching,
		Name:            "Talent Poaching War",
		Description:     "Competitors are bidding up salaries; retention costs spike.",
		BaseChance:      0.10,
		Duration:        2,
		StaffCostFactor: 1.2,
	},
	{
		Type:            EventIndustryAward,
		Name:            "Industry Awards Season",
		Description:     "Jurors are watching; strong reputations compound.",
		BaseChance:      0.10,
		Duration:        1,
		ReputationBonus: 5,
		ReputationFloor: 70,
		StaffCostFactor: 1,
	},
	{
		Type:            EventNewCompetitor,
		Name:            "Well-Funded New Competitor",
		Description:     "A new shop is undercutting everyone on price.",
		BaseChance:      0.12,
		Duration:        2,
		WinChanceDelta:  -5,
		StaffCostFactor: 1,
	},
}

// EventDefinitionFor returns the table row for a type.
func EventDefinitionFor(t EventType) (EventDefinition, bool) {
	for _, def := range eventTable {
		if def.Type == t {
			return def, true
		}
	}
	return EventDefinition{}, false
}

// AdvanceEvents steps the market-event state one quarter: expire events whose
// duration has elapsed, then roll each inactive definition in table order,
// honoring the configured concurrency cap.
func AdvanceEvents(quarter int, cfg EventConfig, current []GameEvent, rng *Rand) []GameEvent {
	next := make([]GameEvent, 0, len(current))
	active := make(map[EventType]bool)
	for _, ev := range current {
		ev.QuartersRemaining--
		if ev.QuartersRemaining <= 0 {
			continue
		}
		ev.Active = true
		active[ev.Type] = true
		next = append(next, ev)
	}

	for _, def := range eventTable {
		if active[def.Type] {
			continue
		}
		rolled := rng.NextBool(def.BaseChance * cfg.ChanceMultiplier)
		if !rolled || len(next) >= cfg.MaxConcurrent {
			// The roll is always consumed, even past the cap, so the draw
			// sequence does not depend on how many events are running.
			continue
		}
		next = append(next, GameEvent{
			Type:              def.Type,
			Name:              def.Name,
			Description:       def.Description,
			StartQuarter:      quarter,
			QuartersRemaining: def.Duration,
			Active:            true,
		})
		active[def.Type] = true
	}
	return next
}

// StaffCostFactor folds active event effects into a single staff-cost
// multiplier.
func StaffCostFactor(events []GameEvent) float64 {
	factor := 1.0
	for _, ev := range events {
		if def, ok := EventDefinitionFor(ev.Type); ok && def.StaffCostFactor > 0 {
			factor *= def.StaffCostFactor
		}
	}
	return factor
}
