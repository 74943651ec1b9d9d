package engine

import (
	"fmt"
	"math"

	"github.com/google/uuid"
)

type clientTypeSpec struct {
	Type        string
	Weight      float64
	HourFactor  float64 // hours per $10k of budget
	LengthMin   int     // contract length bounds, quarters
	LengthMax   int
}

// clientTypes drives generation in fixed table order so draws replay
// identically.
var clientTypes = []clientTypeSpec{
	{Type: "startup", Weight: 0.30, HourFactor: 26, LengthMin: 2, LengthMax: 4},
	{Type: "smb", Weight: 0.35, HourFactor: 22, LengthMin: 2, LengthMax: 5},
	{Type: "enterprise", Weight: 0.20, HourFactor: 18, LengthMin: 3, LengthMax: 6},
	{Type: "nonprofit", Weight: 0.15, HourFactor: 24, LengthMin: 2, LengthMax: 3},
}

var serviceLines = []string{"branding", "social", "web", "seo", "content", "paid_media"}

var urgencies = []string{"relaxed", "normal", "tight"}

var clientNamePrefixes = []string{
	"Atlas", "Borealis", "Cinder", "Drift", "Ember", "Fathom", "Gale", "Harbor",
	"Iron", "Juniper", "Kestrel", "Lumen", "Meridian", "Northwind", "Opal", "Pioneer",
	"Quarry", "Ridgeline", "Solstice", "Tidewater",
}

var clientNameSuffixes = []string{
	"Labs", "Goods", "Collective", "Provisions", "Health", "Logistics", "Outfitters",
	"Robotics", "Foods", "Capital", "Studios", "Energy", "Supply", "Works",
}

// opportunityID builds a v4-shaped UUID from the seeded generator rather
// than crypto/rand, so the same seed yields the same pool ids on replay.
func opportunityID(rng *Rand) string {
	var b [16]byte
	for i := range b {
		n, _ := rng.NextInt(0, 255)
		b[i] = byte(n)
	}
	b[6] = (b[6] & 0x0f) | 0x40
	b[8] = (b[8] & 0x3f) | 0x80
	id, err := uuid.FromBytes(b[:])
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

func pickWeighted(rng *Rand, weights []float64) int {
	total := 0.0
	for _, w := range weights {
		total += w
	}
	draw := rng.Next() * total
	acc := 0.0
	for i, w := range weights {
		acc += w
		if draw < acc {
			return i
		}
	}
	return len(weights) - 1
}

func pickComplexity(rng *Rand, cfg LevelConfig) string {
	weights := make([]float64, len(complexities))
	for i, c := range complexities {
		weights[i] = cfg.ComplexityWeights[c]
	}
	return complexities[pickWeighted(rng, weights)]
}

// baseWinChance scores an opportunity's approachability: complex, urgent, and
// top-of-range budgets are harder to win.
func baseWinChance(complexity, urgency string, budgetCents int64, r BudgetRange) float64 {
	chance := 55.0
	switch complexity {
	case "medium":
		chance -= 8
	case "high":
		chance -= 18
	}
	switch urgency {
	case "normal":
		chance -= 3
	case "tight":
		chance -= 8
	}
	if span := r.MaxCents - r.MinCents; span > 0 {
		// Up to 10 points off for budgets at the top of the range.
		chance -= 10 * float64(budgetCents-r.MinCents) / float64(span)
	}
	return clamp100(chance)
}

// GenerateOpportunities produces the quarter's shared pool of pitchable
// offers. Deterministic given the same rng state and configuration.
func GenerateOpportunities(quarter int, cfg LevelConfig, rng *Rand) ([]ClientOpportunity, error) {
	count, err := rng.NextInt(cfg.MinOpportunities, cfg.MaxOpportunities)
	if err != nil {
		return nil, fmt.Errorf("opportunity count: %w", err)
	}

	out := make([]ClientOpportunity, 0, count)
	for i := 0; i < count; i++ {
		weights := make([]float64, len(clientTypes))
		for j, ct := range clientTypes {
			weights[j] = ct.Weight
		}
		spec := clientTypes[pickWeighted(rng, weights)]
		r := cfg.BudgetRanges[spec.Type]

		budget, err := rng.NextFloat(float64(r.MinCents), float64(r.MaxCents))
		if err != nil {
			return nil, fmt.Errorf("budget draw: %w", err)
		}
		budgetCents := int64(math.Round(budget/100)) * 100

		complexity := pickComplexity(rng, cfg)
		urgency := urgencies[pickWeighted(rng, []float64{0.3, 0.5, 0.2})]
		length, err := rng.NextInt(spec.LengthMin, spec.LengthMax)
		if err != nil {
			return nil, fmt.Errorf("contract length: %w", err)
		}

		prefix, _ := rng.NextInt(0, len(clientNamePrefixes)-1)
		suffix, _ := rng.NextInt(0, len(clientNameSuffixes)-1)
		line, _ := rng.NextInt(0, len(serviceLines)-1)

		hours := float64(budgetCents) / float64(10_000*CentsPerDollar) * spec.HourFactor
		out = append(out, ClientOpportunity{
			ID:              opportunityID(rng),
			Name:            clientNamePrefixes[prefix] + " " + clientNameSuffixes[suffix],
			ClientType:      spec.Type,
			ServiceLine:     serviceLines[line],
			BudgetCents:     budgetCents,
			Complexity:      complexity,
			DeadlineUrgency: urgency,
			HoursPerQuarter: math.Round(hours),
			ContractLength:  length,
			BaseWinChance:   baseWinChance(complexity, urgency, budgetCents, r),
			Quarter:         quarter,
		})
	}
	return out, nil
}

// GenerateRenewals derives renewal and expansion offers for a team's clients
// whose contracts are within one quarter of expiry. The offers are scoped to
// that team; other teams cannot pitch them.
func GenerateRenewals(quarter int, cfg LevelConfig, teamID string, clients []ActiveClient, rng *Rand) []ClientOpportunity {
	out := make([]ClientOpportunity, 0)
	for _, c := range clients {
		if c.QuartersRemaining > 1 || c.Status == ClientNotice {
			continue
		}
		// Budget drifts with how happy the client is: satisfied clients
		// renew bigger, unhappy ones squeeze the budget.
		drift := 0.85 + (c.Satisfaction/100)*0.4
		budgetCents := int64(math.Round(float64(c.BudgetCents)*drift/100)) * 100
		r, ok := cfg.BudgetRanges[c.ClientType]
		if ok {
			if budgetCents < r.MinCents {
				budgetCents = r.MinCents
			}
			if budgetCents > r.MaxCents {
				budgetCents = r.MaxCents
			}
		}

		length, err := rng.NextInt(2, 4)
		if err != nil {
			length = 2
		}
		// Renewals start from a friendlier baseline than cold pitches.
		chance := clamp100(45 + c.Satisfaction/2)
		out = append(out, ClientOpportunity{
			ID:              opportunityID(rng),
			Name:            c.Name,
			ClientType:      c.ClientType,
			ServiceLine:     c.ServiceLine,
			BudgetCents:     budgetCents,
			Complexity:      "medium",
			DeadlineUrgency: "normal",
			HoursPerQuarter: c.HoursPerQuarter,
			ContractLength:  length,
			BaseWinChance:   chance,
			Quarter:         quarter,
			RenewalOf:       c.OpportunityID,
			TeamID:          teamID,
		})

		// Very satisfied clients may float an expansion of the engagement.
		// An expansion is additional business on top of the renewal, not a
		// replacement for it, so it carries no RenewalOf link; winning one
		// adds a second contract to the book.
		if c.Satisfaction >= 85 && rng.NextBool(0.5) {
			expansion := budgetCents * 6 / 10
			out = append(out, ClientOpportunity{
				ID:              opportunityID(rng),
				Name:            c.Name + " (expansion)",
				ClientType:      c.ClientType,
				ServiceLine:     c.ServiceLine,
				BudgetCents:     expansion,
				Complexity:      "medium",
				DeadlineUrgency: "normal",
				HoursPerQuarter: math.Round(c.HoursPerQuarter * 0.6),
				ContractLength:  length,
				BaseWinChance:   clamp100(40 + c.Satisfaction/2),
				Quarter:         quarter,
				TeamID:          teamID,
			})
		}
	}
	return out
}
