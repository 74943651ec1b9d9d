package engine

import (
	"reflect"
	"testing"
)

func testOpportunity() ClientOpportunity {
	return ClientOpportunity{
		ID:            "opp-1",
		Name:          "Atlas Labs",
		ClientType:    "smb",
		ServiceLine:   "web",
		BudgetCents:   5_000_000,
		Complexity:    "low",
		BaseWinChance: 50,
	}
}

func neutralContext() PitchContext {
	return PitchContext{Reputation: 50, MarketPresence: 0, TechLevel: 0, TrainingLevel: 0}
}

func TestEvaluatePitchDeterministic(t *testing.T) {
	opp := testOpportunity()
	a := EvaluatePitch(opp, 10, QualityStandard, neutralContext(), nil, NewRand(42))
	b := EvaluatePitch(opp, 10, QualityStandard, neutralContext(), nil, NewRand(42))
	if !reflect.DeepEqual(a, b) {
		t.Fatal("same seed produced different pitch outcomes")
	}
}

func TestEvaluatePitchFactorsSumToChance(t *testing.T) {
	opp := testOpportunity()
	opp.Complexity = "high"
	ctx := PitchContext{Reputation: 70, MarketPresence: 40, TechLevel: 3, TrainingLevel: 2}
	events := []GameEvent{{Type: EventBudgetCuts, Active: true}}
	out := EvaluatePitch(opp, 30, QualityPremium, ctx, events, NewRand(1))

	sum := 0.0
	for _, f := range out.Factors {
		sum += f.Delta
	}
	if diff := sum - out.WinChance; diff > 1e-9 || diff < -1e-9 {
		t.Fatalf("factor deltas sum to %v, win chance is %v", sum, out.WinChance)
	}
	if out.Factors[0].Label != "base chance" {
		t.Fatalf("first factor = %q, want base chance", out.Factors[0].Label)
	}
}

func TestEvaluatePitchWinChanceCeiling(t *testing.T) {
	opp := testOpportunity()
	opp.BaseWinChance = 80
	ctx := PitchContext{Reputation: 100, MarketPresence: 100, TechLevel: 10, TrainingLevel: 10}
	events := []GameEvent{{Type: EventEconomicBoom, Active: true}}
	out := EvaluatePitch(opp, 50, QualityPremium, ctx, events, NewRand(1))
	if out.WinChance != WinChanceCeiling {
		t.Fatalf("win chance = %v, want clamped to %v", out.WinChance, WinChanceCeiling)
	}
	last := out.Factors[len(out.Factors)-1]
	if last.Label != "win chance ceiling" {
		t.Fatalf("clamp must be recorded as the final factor, got %q", last.Label)
	}
	if last.Delta >= 0 {
		t.Fatalf("ceiling factor delta = %v, want negative", last.Delta)
	}
}

func TestEvaluatePitchFloor(t *testing.T) {
	opp := testOpportunity()
	opp.BaseWinChance = 5
	opp.Complexity = "high"
	ctx := PitchContext{Reputation: 0, MarketPresence: 0}
	events := []GameEvent{{Type: EventBudgetCuts, Active: true}, {Type: EventNewCompetitor, Active: true}}
	out := EvaluatePitch(opp, 0, QualityBudget, ctx, events, NewRand(1))
	if out.WinChance < 0 {
		t.Fatalf("win chance = %v, must never go negative", out.WinChance)
	}
}

func TestEvaluatePitchDiscountHelps(t *testing.T) {
	opp := testOpportunity()
	flat := EvaluatePitch(opp, 0, QualityStandard, neutralContext(), nil, NewRand(1))
	deep := EvaluatePitch(opp, 40, QualityStandard, neutralContext(), nil, NewRand(1))
	if deep.WinChance <= flat.WinChance {
		t.Fatalf("discounted chance %v should exceed undiscounted %v", deep.WinChance, flat.WinChance)
	}
	// Diminishing returns: the second twenty points buy less than the first.
	mid := EvaluatePitch(opp, 20, QualityStandard, neutralContext(), nil, NewRand(1))
	if (deep.WinChance - mid.WinChance) >= (mid.WinChance - flat.WinChance) {
		t.Fatal("discount gains should flatten beyond the knee")
	}
}

func TestEvaluatePitchQualityOnComplexWork(t *testing.T) {
	opp := testOpportunity()
	opp.Complexity = "high"
	premium := EvaluatePitch(opp, 0, QualityPremium, neutralContext(), nil, NewRand(1))
	budget := EvaluatePitch(opp, 0, QualityBudget, neutralContext(), nil, NewRand(1))
	if premium.WinChance <= budget.WinChance {
		t.Fatalf("premium %v should beat budget %v on complex work", premium.WinChance, budget.WinChance)
	}
}

func TestEvaluatePitchServiceLineEvent(t *testing.T) {
	social := testOpportunity()
	social.ServiceLine = "social"
	web := testOpportunity()
	events := []GameEvent{{Type: EventViralTrend, Active: true}}

	boosted := EvaluatePitch(social, 0, QualityStandard, neutralContext(), events, NewRand(1))
	plain := EvaluatePitch(web, 0, QualityStandard, neutralContext(), events, NewRand(1))
	if boosted.WinChance <= plain.WinChance {
		t.Fatalf("viral trend should boost social work: %v vs %v", boosted.WinChance, plain.WinChance)
	}
}

func TestEvaluatePitchRollDecides(t *testing.T) {
	opp := testOpportunity()
	for seed := int64(0); seed < 50; seed++ {
		out := EvaluatePitch(opp, 0, QualityStandard, neutralContext(), nil, NewRand(seed))
		if out.Won != (out.Roll < out.WinChance) {
			t.Fatalf("seed %d: won=%v inconsistent with roll %v vs chance %v", seed, out.Won, out.Roll, out.WinChance)
		}
	}
}
