package engine

import (
	"fmt"
	"math"
)

// PitchFactor is one named modifier applied while computing a win chance.
// The ordered factor list is what lets a facilitator explain an outcome.
type PitchFactor struct {
	Label string  `json:"label"`
	Delta float64 `json:"delta"`
}

func (f PitchFactor) String() string {
	return fmt.Sprintf("%s: %+.1f", f.Label, f.Delta)
}

// PitchOutcome is the resolved result of one pitch decision.
type PitchOutcome struct {
	OpportunityID string        `json:"opportunity_id"`
	Won           bool          `json:"won"`
	WinChance     float64       `json:"win_chance"`
	Roll          float64       `json:"roll"`
	Factors       []PitchFactor `json:"factors"`
}

// PitchContext carries the team attributes the resolver reads. The resolver
// never sees the full TeamState, so it cannot mutate anything.
type PitchContext struct {
	Reputation     float64
	MarketPresence float64
	TechLevel      float64
	TrainingLevel  float64
}

// Drift coefficients for the win-chance model. Held fixed so identical seeds
// replay to identical outcomes.
const (
	discountNearRate = 0.6  // points of win chance per discount point up to the knee
	discountFarRate  = 0.25 // per point beyond the knee; deeper discounts flatten
	discountKnee     = 20.0
)

// EvaluatePitch computes the win/lose outcome for a single pitch. The final
// chance is clamped to [0, WinChanceCeiling] before the roll so every pitch
// carries an irreducible loss probability.
func EvaluatePitch(opp ClientOpportunity, discountPct int, quality Quality, ctx PitchContext, events []GameEvent, rng *Rand) PitchOutcome {
	chance := opp.BaseWinChance
	factors := []PitchFactor{{Label: "base chance", Delta: opp.BaseWinChance}}

	apply := func(label string, delta float64) {
		if delta == 0 {
			return
		}
		chance += delta
		factors = append(factors, PitchFactor{Label: label, Delta: delta})
	}

	// Reputation tiers around the neutral midpoint of 50.
	apply("reputation", (ctx.Reputation-50)/5)

	apply("market presence", ctx.MarketPresence/10)

	// Discount depth helps with diminishing returns past the knee.
	d := float64(discountPct)
	if d <= discountKnee {
		apply("discount", d*discountNearRate)
	} else {
		apply("discount", discountKnee*discountNearRate+(d-discountKnee)*discountFarRate)
	}

	switch quality {
	case QualityPremium:
		if opp.Complexity == "high" {
			apply("premium quality on complex work", 10)
		} else {
			apply("premium quality", 4)
		}
	case QualityBudget:
		if opp.Complexity == "high" {
			apply("budget quality on complex work", -10)
		} else {
			apply("budget quality", -3)
		}
	}

	// Capability levels matter most on complex engagements.
	if opp.Complexity == "high" {
		apply("technical capability", math.Min(8, ctx.TechLevel))
		apply("team training", math.Min(6, ctx.TrainingLevel))
	}

	for _, ev := range events {
		def, ok := EventDefinitionFor(ev.Type)
		if !ok {
			continue
		}
		if def.WinChanceDelta != 0 {
			apply(def.Name, def.WinChanceDelta)
		}
		if def.ServiceLine != "" && def.ServiceLine == opp.ServiceLine {
			apply(def.Name+" ("+def.ServiceLine+")", def.ServiceLineDelta)
		}
	}

	if chance < 0 {
		chance = 0
	}
	if chance > WinChanceCeiling {
		factors = append(factors, PitchFactor{Label: "win chance ceiling", Delta: WinChanceCeiling - chance})
		chance = WinChanceCeiling
	}

	roll := rng.Next() * 100
	return PitchOutcome{
		OpportunityID: opp.ID,
		Won:           roll < chance,
		WinChance:     chance,
		Roll:          roll,
		Factors:       factors,
	}
}
