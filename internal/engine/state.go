package engine

// Quality is the service level a team commits to for a pitch and, once won,
// for the resulting client relationship.
type Quality string

const (
	QualityBudget   Quality = "budget"
	QualityStandard Quality = "standard"
	QualityPremium  Quality = "premium"
)

func (q Quality) Valid() bool {
	switch q {
	case QualityBudget, QualityStandard, QualityPremium:
		return true
	}
	return false
}

// ClientStatus tracks the lifecycle of a won contract. A client on notice is
// one falling-satisfaction quarter away from churning.
type ClientStatus string

const (
	ClientActive ClientStatus = "active"
	ClientNotice ClientStatus = "notice_given"
)

// ActiveClient is a contract currently generating revenue and consuming
// delivery hours. RevenueCents is derived from budget and discount at win
// time and never set independently.
type ActiveClient struct {
	OpportunityID    string       `json:"opportunity_id"`
	Name             string       `json:"name"`
	ClientType       string       `json:"client_type"`
	ServiceLine      string       `json:"service_line"`
	BudgetCents      int64        `json:"budget_cents"`
	DiscountPct      int          `json:"discount_pct"`
	RevenueCents     int64        `json:"revenue_cents"`
	HoursPerQuarter  float64      `json:"hours_per_quarter"`
	QuartersRemaining int         `json:"quarters_remaining"`
	Satisfaction     float64      `json:"satisfaction"`
	Quality          Quality      `json:"quality"`
	Status           ClientStatus `json:"status"`
}

// ContractRevenueCents derives periodic revenue from a budget and a discount
// percentage using exact integer arithmetic.
func ContractRevenueCents(budgetCents int64, discountPct int) int64 {
	return budgetCents * int64(100-discountPct) / 100
}

// ClientOpportunity is a pitchable offer. Opportunities are immutable once
// generated and live for a single quarter.
type ClientOpportunity struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	ClientType      string  `json:"client_type"`
	ServiceLine     string  `json:"service_line"`
	BudgetCents     int64   `json:"budget_cents"`
	Complexity      string  `json:"complexity"`
	DeadlineUrgency string  `json:"deadline_urgency"`
	HoursPerQuarter float64 `json:"hours_per_quarter"`
	ContractLength  int     `json:"contract_length"`
	BaseWinChance   float64 `json:"base_win_chance"`
	Quarter         int     `json:"quarter"`

	// RenewalOf and TeamID are set only on renewal/expansion offers, which
	// are scoped to the team holding the expiring contract.
	RenewalOf string `json:"renewal_of,omitempty"`
	TeamID    string `json:"team_id,omitempty"`
}

// QuarterResult is the per-quarter record appended to a team's history.
// The client counters track book movement: ClientsWon is additions,
// ClientsLost is departures (churns plus expired non-renewals), and
// ClientsChurned is the churn subset of those departures. Lost pitches are
// not departures; they appear only in PitchOutcomes.
type QuarterResult struct {
	Quarter          int     `json:"quarter"`
	RevenueCents     int64   `json:"revenue_cents"`
	CostsCents       int64   `json:"costs_cents"`
	ProfitCents      int64   `json:"profit_cents"`
	ClientsWon       int     `json:"clients_won"`
	ClientsLost      int     `json:"clients_lost"`
	ClientsChurned   int     `json:"clients_churned"`
	ClientsRenewed   int     `json:"clients_renewed"`
	StaffChange      int     `json:"staff_change"`
	ReputationChange float64 `json:"reputation_change"`
	BurnoutChange    float64 `json:"burnout_change"`
	UtilizationRate  float64 `json:"utilization_rate"`
	HoursDelivered   float64 `json:"hours_delivered"`
	HoursCapacity    float64 `json:"hours_capacity"`
	PitchOutcomes    []PitchOutcome `json:"pitch_outcomes,omitempty"`
}

// AgencyMetrics is a point-in-time snapshot appended alongside each result.
type AgencyMetrics struct {
	Quarter         int     `json:"quarter"`
	CashCents       int64   `json:"cash_cents"`
	Staff           int     `json:"staff"`
	Burnout         float64 `json:"burnout"`
	Reputation      float64 `json:"reputation"`
	MarketPresence  float64 `json:"market_presence"`
	ClientCount     int     `json:"client_count"`
	UtilizationRate float64 `json:"utilization_rate"`
}

// TeamState is the full state of one participating team. It is created once
// by NewTeamState and thereafter replaced wholesale by Resolve; nothing in
// the engine mutates a TeamState it was handed.
type TeamState struct {
	TeamID      string `json:"team_id"`
	CompanyName string `json:"company_name"`
	Quarter     int    `json:"quarter"`

	CashCents             int64 `json:"cash_cents"`
	CumulativeProfitCents int64 `json:"cumulative_profit_cents"`

	Staff          int     `json:"staff"`
	Burnout        float64 `json:"burnout"`
	Reputation     float64 `json:"reputation"`
	MarketPresence float64 `json:"market_presence"`
	TechLevel      float64 `json:"tech_level"`
	TrainingLevel  float64 `json:"training_level"`
	ProcessLevel   float64 `json:"process_level"`

	Clients []ActiveClient `json:"clients"`

	IsBankrupt      bool `json:"is_bankrupt"`
	BankruptQuarter int  `json:"bankrupt_quarter,omitempty"`

	SubmittedThisQuarter bool       `json:"submitted_this_quarter"`
	CurrentInputs        TeamInputs `json:"current_inputs"`

	QuarterlyResults []QuarterResult `json:"quarterly_results"`
	Metrics          []AgencyMetrics `json:"metrics"`
}

// NewTeamState builds a starting team from a level configuration.
func NewTeamState(teamID, companyName string, cfg LevelConfig) TeamState {
	return TeamState{
		TeamID:         teamID,
		CompanyName:    companyName,
		Quarter:        1,
		CashCents:      cfg.StartingCashCents,
		Staff:          cfg.StartingStaff,
		Burnout:        10,
		Reputation:     cfg.StartingReputation,
		MarketPresence: cfg.StartingMarketPresence,
		TechLevel:      1,
		TrainingLevel:  1,
		ProcessLevel:   1,
		Clients:        []ActiveClient{},
		CurrentInputs:  DefaultInputs(),
	}
}

// Clone returns a deep copy. Resolve works on a clone so a failed resolution
// leaves the caller's state untouched.
func (t TeamState) Clone() TeamState {
	out := t
	out.Clients = make([]ActiveClient, len(t.Clients))
	copy(out.Clients, t.Clients)
	out.QuarterlyResults = make([]QuarterResult, len(t.QuarterlyResults))
	copy(out.QuarterlyResults, t.QuarterlyResults)
	out.Metrics = make([]AgencyMetrics, len(t.Metrics))
	copy(out.Metrics, t.Metrics)
	out.CurrentInputs = t.CurrentInputs.Clone()
	return out
}

// CheckBankruptcy reports whether a team has gone under. Bankruptcy is
// one-way: the flag is set during resolution and never cleared.
func CheckBankruptcy(team TeamState) bool {
	return team.IsBankrupt
}

// LatestResult returns the most recent quarter result, if any.
func (t TeamState) LatestResult() (QuarterResult, bool) {
	if len(t.QuarterlyResults) == 0 {
		return QuarterResult{}, false
	}
	return t.QuarterlyResults[len(t.QuarterlyResults)-1], true
}

// WorkloadHours sums the delivery hours the current book of business
// consumes each quarter.
func (t TeamState) WorkloadHours() float64 {
	total := 0.0
	for _, c := range t.Clients {
		total += c.HoursPerQuarter
	}
	return total
}

// CapacityHours is the delivery capacity of the current headcount.
func (t TeamState) CapacityHours() float64 {
	return float64(t.Staff) * HoursPerStaffPerQuarter
}
