package engine

import "fmt"

// PitchDecision is a team's bid for one opportunity.
type PitchDecision struct {
	OpportunityID string  `json:"opportunity_id"`
	DiscountPct   int     `json:"discount_pct"`
	Quality       Quality `json:"quality"`
}

// TeamInputs is the decision batch a team submits once per quarter. It is the
// sole external input to quarter resolution for a team.
type TeamInputs struct {
	Pitches []PitchDecision `json:"pitches"`

	HiringCount int `json:"hiring_count"`
	FiringCount int `json:"firing_count"`

	TechSpendCents         int64 `json:"tech_spend_cents"`
	TrainingSpendCents     int64 `json:"training_spend_cents"`
	MarketingSpendCents    int64 `json:"marketing_spend_cents"`
	WellbeingSpendCents    int64 `json:"wellbeing_spend_cents"`
	ClientSatSpendCents    int64 `json:"client_sat_spend_cents"`

	// GrowthFocus in [0,1] steers market-presence drift between retention
	// (0) and new-business growth (1).
	GrowthFocus float64 `json:"growth_focus"`
}

// DefaultInputs is the safe no-op decision set, used for new teams and as the
// forced-advance substitute when a team never submits.
func DefaultInputs() TeamInputs {
	return TeamInputs{
		Pitches:     []PitchDecision{},
		GrowthFocus: 0.5,
	}
}

func (in TeamInputs) Clone() TeamInputs {
	out := in
	out.Pitches = make([]PitchDecision, len(in.Pitches))
	copy(out.Pitches, in.Pitches)
	return out
}

// Validate checks the structural validity of a decision batch against the
// quarter's opportunity pool. Violations are reported per field so the
// orchestrator can reject the specific input rather than the whole batch.
// Business outcomes (losing, churn, bankruptcy) are never validation errors.
func (in TeamInputs) Validate(team TeamState, pool []ClientOpportunity) error {
	byID := make(map[string]ClientOpportunity, len(pool))
	for _, opp := range pool {
		byID[opp.ID] = opp
	}
	for i, p := range in.Pitches {
		opp, ok := byID[p.OpportunityID]
		if !ok {
			return fmt.Errorf("pitch %d: %w: %s", i, ErrUnknownOpportunity, p.OpportunityID)
		}
		if opp.TeamID != "" && opp.TeamID != team.TeamID {
			return fmt.Errorf("pitch %d: %w: %s is another team's renewal offer", i, ErrUnknownOpportunity, p.OpportunityID)
		}
		if p.DiscountPct < 0 || p.DiscountPct > MaxDiscountPct {
			return fmt.Errorf("pitch %d: %w: got %d", i, ErrInvalidDiscount, p.DiscountPct)
		}
		if !p.Quality.Valid() {
			return fmt.Errorf("pitch %d: %w: got %q", i, ErrInvalidQuality, p.Quality)
		}
	}
	if in.HiringCount < 0 || in.FiringCount < 0 {
		return ErrNegativeStaffing
	}
	for _, spend := range []int64{in.TechSpendCents, in.TrainingSpendCents, in.MarketingSpendCents, in.WellbeingSpendCents, in.ClientSatSpendCents} {
		if spend < 0 {
			return ErrNegativeSpend
		}
	}
	if in.GrowthFocus < 0 || in.GrowthFocus > 1 {
		return fmt.Errorf("%w: got %v", ErrInvalidGrowthFocus, in.GrowthFocus)
	}
	return nil
}
