package engine

import (
	"errors"
	"reflect"
	"testing"
)

func startupTeam(t *testing.T) (TeamState, LevelConfig) {
	t.Helper()
	cfg, err := BuiltinLevel("startup")
	if err != nil {
		t.Fatalf("level: %v", err)
	}
	return NewTeamState("team-1", "Harbor & Co", cfg), cfg
}

// The canonical scenario: one team, $300k cash, six staff, a single pitch on
// a $50k opportunity at standard quality with no discount and no events.
func scenarioQuarter(t *testing.T, seed int64) (TeamState, TeamState, QuarterResult) {
	t.Helper()
	team, cfg := startupTeam(t)
	team.Reputation = 55

	opp := ClientOpportunity{
		ID:              "opp-1",
		Name:            "Atlas Labs",
		ClientType:      "smb",
		ServiceLine:     "web",
		BudgetCents:     50_000 * CentsPerDollar,
		Complexity:      "low",
		DeadlineUrgency: "relaxed",
		HoursPerQuarter: 110,
		ContractLength:  3,
		BaseWinChance:   50,
		Quarter:         1,
	}
	inputs := DefaultInputs()
	inputs.Pitches = []PitchDecision{{OpportunityID: "opp-1", DiscountPct: 0, Quality: QualityStandard}}

	next, result, err := Resolve(team, inputs, []TeamState{team}, []ClientOpportunity{opp}, nil, cfg, NewRand(seed))
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	return team, next, result
}

func TestResolveDeterministic(t *testing.T) {
	_, a, ra := scenarioQuarter(t, 42)
	_, b, rb := scenarioQuarter(t, 42)
	if !reflect.DeepEqual(a, b) {
		t.Fatal("same seed and inputs produced different team states")
	}
	if !reflect.DeepEqual(ra, rb) {
		t.Fatal("same seed and inputs produced different results")
	}
}

func TestResolveConservation(t *testing.T) {
	before, after, result := scenarioQuarter(t, 42)
	if after.CashCents != before.CashCents+result.RevenueCents-result.CostsCents {
		t.Fatalf("cash %d != %d + %d - %d", after.CashCents, before.CashCents, result.RevenueCents, result.CostsCents)
	}
	if after.CumulativeProfitCents != before.CumulativeProfitCents+result.ProfitCents {
		t.Fatalf("cumulative profit drifted: %d vs %d + %d", after.CumulativeProfitCents, before.CumulativeProfitCents, result.ProfitCents)
	}
	if result.ProfitCents != result.RevenueCents-result.CostsCents {
		t.Fatalf("profit %d != revenue %d - costs %d", result.ProfitCents, result.RevenueCents, result.CostsCents)
	}
}

func TestResolveScenarioOutcome(t *testing.T) {
	_, after, result := scenarioQuarter(t, 42)
	if len(result.PitchOutcomes) != 1 {
		t.Fatalf("got %d pitch outcomes, want 1", len(result.PitchOutcomes))
	}
	out := result.PitchOutcomes[0]
	if out.Won != (out.Roll < out.WinChance) {
		t.Fatalf("won=%v inconsistent with roll %v vs chance %v", out.Won, out.Roll, out.WinChance)
	}
	if out.Won {
		if result.ClientsWon != 1 || len(after.Clients) != 1 {
			t.Fatalf("win not reflected: ClientsWon=%d clients=%d", result.ClientsWon, len(after.Clients))
		}
		if after.Clients[0].RevenueCents != 50_000*CentsPerDollar {
			t.Fatalf("undiscounted revenue = %d, want full budget", after.Clients[0].RevenueCents)
		}
		if result.RevenueCents != 50_000*CentsPerDollar {
			t.Fatalf("quarter revenue = %d, want full budget", result.RevenueCents)
		}
	} else {
		if result.ClientsWon != 0 || len(after.Clients) != 0 {
			t.Fatalf("loss not reflected: ClientsWon=%d clients=%d", result.ClientsWon, len(after.Clients))
		}
		if result.RevenueCents != 0 {
			t.Fatalf("quarter revenue = %d on a loss, want 0", result.RevenueCents)
		}
	}
	// A lost pitch is not a book departure; it lives in PitchOutcomes only.
	if result.ClientsLost != 0 {
		t.Fatalf("ClientsLost = %d after pitching with an empty book, want 0", result.ClientsLost)
	}
	// Costs are exactly payroll in this scenario: no investments, no staffing.
	wantCosts := int64(6) * StaffQuarterlyCostCents
	if result.CostsCents != wantCosts {
		t.Fatalf("costs = %d, want %d", result.CostsCents, wantCosts)
	}
	if after.Quarter != 2 {
		t.Fatalf("quarter = %d, want 2", after.Quarter)
	}
}

func TestResolveFiringClampedToFloor(t *testing.T) {
	team, cfg := startupTeam(t)
	team.Staff = 2 // floor is 1
	inputs := DefaultInputs()
	inputs.FiringCount = 5

	next, result, err := Resolve(team, inputs, []TeamState{team}, nil, nil, cfg, NewRand(1))
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if next.Staff != cfg.StaffFloor {
		t.Fatalf("staff = %d, want clamped to floor %d", next.Staff, cfg.StaffFloor)
	}
	if result.StaffChange != -1 {
		t.Fatalf("staff change = %d, want -1", result.StaffChange)
	}
	// Severance is charged only for the one person actually let go.
	wantCosts := int64(cfg.StaffFloor)*StaffQuarterlyCostCents + SeveranceCostCents
	if result.CostsCents != wantCosts {
		t.Fatalf("costs = %d, want %d", result.CostsCents, wantCosts)
	}
}

func TestResolveBankruptcyAtNegativeCash(t *testing.T) {
	team, cfg := startupTeam(t)
	// Payroll for six staff exceeds cash by exactly one cent.
	team.CashCents = int64(6)*StaffQuarterlyCostCents - 1

	next, _, err := Resolve(team, DefaultInputs(), []TeamState{team}, nil, nil, cfg, NewRand(1))
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if next.CashCents != -1 {
		t.Fatalf("cash = %d, want -1", next.CashCents)
	}
	if !next.IsBankrupt {
		t.Fatal("team with negative cash must be bankrupt")
	}
	if next.BankruptQuarter != 1 {
		t.Fatalf("bankrupt quarter = %d, want 1", next.BankruptQuarter)
	}
	if !CheckBankruptcy(next) {
		t.Fatal("CheckBankruptcy disagrees with flag")
	}
}

func TestResolveBankruptcyIsAbsorbing(t *testing.T) {
	team, cfg := startupTeam(t)
	team.CashCents = int64(6)*StaffQuarterlyCostCents - 1
	bankrupt, _, err := Resolve(team, DefaultInputs(), []TeamState{team}, nil, nil, cfg, NewRand(1))
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}

	opp := ClientOpportunity{ID: "opp-1", BudgetCents: 1_000_000, BaseWinChance: 95, ContractLength: 2}
	inputs := DefaultInputs()
	inputs.Pitches = []PitchDecision{{OpportunityID: "opp-1", Quality: QualityStandard}}

	for q := 0; q < 3; q++ {
		prevLen := len(bankrupt.QuarterlyResults)
		prevCash := bankrupt.CashCents
		next, result, err := Resolve(bankrupt, inputs, []TeamState{bankrupt}, []ClientOpportunity{opp}, nil, cfg, NewRand(int64(q)))
		if err != nil {
			t.Fatalf("frozen resolve: %v", err)
		}
		if !next.IsBankrupt {
			t.Fatal("bankruptcy reverted")
		}
		if next.BankruptQuarter != 1 {
			t.Fatalf("bankrupt quarter moved to %d", next.BankruptQuarter)
		}
		if len(result.PitchOutcomes) != 0 || result.ClientsWon != 0 {
			t.Fatal("bankrupt team had pitches evaluated")
		}
		if next.CashCents != prevCash {
			t.Fatalf("bankrupt team cash moved: %d -> %d", prevCash, next.CashCents)
		}
		if len(next.QuarterlyResults) != prevLen+1 {
			t.Fatalf("history grew by %d, want 1", len(next.QuarterlyResults)-prevLen)
		}
		if next.Quarter != bankrupt.Quarter+1 {
			t.Fatalf("quarter = %d, want %d", next.Quarter, bankrupt.Quarter+1)
		}
		bankrupt = next
	}
}

func TestResolveHistoryAppendOnly(t *testing.T) {
	team, cfg := startupTeam(t)
	for q := 0; q < 4; q++ {
		snapshot := make([]QuarterResult, len(team.QuarterlyResults))
		copy(snapshot, team.QuarterlyResults)

		next, _, err := Resolve(team, DefaultInputs(), []TeamState{team}, nil, nil, cfg, NewRand(int64(q)))
		if err != nil {
			t.Fatalf("resolve q%d: %v", q, err)
		}
		if len(next.QuarterlyResults) != len(snapshot)+1 {
			t.Fatalf("q%d: history length %d, want %d", q, len(next.QuarterlyResults), len(snapshot)+1)
		}
		if !reflect.DeepEqual(next.QuarterlyResults[:len(snapshot)], snapshot) {
			t.Fatalf("q%d: prior history entries mutated", q)
		}
		if len(next.Metrics) != len(team.Metrics)+1 {
			t.Fatalf("q%d: metrics length %d, want %d", q, len(next.Metrics), len(team.Metrics)+1)
		}
		team = next
	}
}

func TestResolveBoundsHeld(t *testing.T) {
	team, cfg := startupTeam(t)
	inputs := DefaultInputs()
	inputs.MarketingSpendCents = 40_000 * CentsPerDollar
	inputs.WellbeingSpendCents = 20_000 * CentsPerDollar
	inputs.GrowthFocus = 1

	for q := 0; q < 8; q++ {
		next, _, err := Resolve(team, inputs, []TeamState{team}, nil, nil, cfg, NewRand(int64(q)))
		if err != nil {
			t.Fatalf("resolve q%d: %v", q, err)
		}
		for name, v := range map[string]float64{
			"reputation":      next.Reputation,
			"burnout":         next.Burnout,
			"market presence": next.MarketPresence,
		} {
			if v < 0 || v > 100 {
				t.Fatalf("q%d: %s = %v out of [0,100]", q, name, v)
			}
		}
		if next.Staff < cfg.StaffFloor {
			t.Fatalf("q%d: staff %d below floor %d", q, next.Staff, cfg.StaffFloor)
		}
		team = next
	}
}

func TestResolveRejectsStructurallyInvalidInputs(t *testing.T) {
	team, cfg := startupTeam(t)
	opp := ClientOpportunity{ID: "opp-1", BudgetCents: 1_000_000, BaseWinChance: 50, ContractLength: 2}
	pool := []ClientOpportunity{opp}

	cases := []struct {
		name   string
		inputs TeamInputs
		want   error
	}{
		{"unknown opportunity", TeamInputs{Pitches: []PitchDecision{{OpportunityID: "ghost", Quality: QualityStandard}}, GrowthFocus: 0.5}, ErrUnknownOpportunity},
		{"discount too deep", TeamInputs{Pitches: []PitchDecision{{OpportunityID: "opp-1", DiscountPct: 60, Quality: QualityStandard}}, GrowthFocus: 0.5}, ErrInvalidDiscount},
		{"bad quality", TeamInputs{Pitches: []PitchDecision{{OpportunityID: "opp-1", Quality: "luxury"}}, GrowthFocus: 0.5}, ErrInvalidQuality},
		{"negative spend", TeamInputs{TechSpendCents: -1, GrowthFocus: 0.5}, ErrNegativeSpend},
		{"negative hiring", TeamInputs{HiringCount: -1, GrowthFocus: 0.5}, ErrNegativeStaffing},
		{"negative firing", TeamInputs{FiringCount: -2, GrowthFocus: 0.5}, ErrNegativeStaffing},
		{"growth focus above one", TeamInputs{GrowthFocus: 1.5}, ErrInvalidGrowthFocus},
		{"growth focus negative", TeamInputs{GrowthFocus: -0.1}, ErrInvalidGrowthFocus},
	}
	for _, tc := range cases {
		_, _, err := Resolve(team, tc.inputs, []TeamState{team}, pool, nil, cfg, NewRand(1))
		if !errors.Is(err, tc.want) {
			t.Fatalf("%s: error = %v, want %v", tc.name, err, tc.want)
		}
	}
	// A rejected batch must leave the caller's state untouched.
	if team.Quarter != 1 || len(team.QuarterlyResults) != 0 {
		t.Fatal("rejected inputs mutated the input team")
	}
}

func TestResolveRejectsOtherTeamsRenewalOffer(t *testing.T) {
	team, cfg := startupTeam(t)
	offer := ClientOpportunity{ID: "rnw-1", RenewalOf: "old", TeamID: "someone-else", BudgetCents: 1_000_000, ContractLength: 2}
	inputs := DefaultInputs()
	inputs.Pitches = []PitchDecision{{OpportunityID: "rnw-1", Quality: QualityStandard}}
	_, _, err := Resolve(team, inputs, []TeamState{team}, []ClientOpportunity{offer}, nil, cfg, NewRand(1))
	if !errors.Is(err, ErrUnknownOpportunity) {
		t.Fatalf("error = %v, want ErrUnknownOpportunity", err)
	}
}

func TestResolveClientLifecycle(t *testing.T) {
	t.Run("contract countdown", func(t *testing.T) {
		team, cfg := startupTeam(t)
		team.Clients = []ActiveClient{{
			OpportunityID: "c1", RevenueCents: 2_000_000, HoursPerQuarter: 100,
			QuartersRemaining: 3, Satisfaction: 80, Quality: QualityStandard, Status: ClientActive,
		}}
		next, _, err := Resolve(team, DefaultInputs(), []TeamState{team}, nil, nil, cfg, NewRand(1))
		if err != nil {
			t.Fatalf("resolve: %v", err)
		}
		if len(next.Clients) != 1 || next.Clients[0].QuartersRemaining != 2 {
			t.Fatalf("countdown wrong: %+v", next.Clients)
		}
	})

	t.Run("notice below threshold", func(t *testing.T) {
		team, cfg := startupTeam(t)
		team.Clients = []ActiveClient{{
			OpportunityID: "c1", RevenueCents: 2_000_000, HoursPerQuarter: 100,
			QuartersRemaining: 3, Satisfaction: 31, Quality: QualityBudget, Status: ClientActive,
		}}
		next, _, err := Resolve(team, DefaultInputs(), []TeamState{team}, nil, nil, cfg, NewRand(1))
		if err != nil {
			t.Fatalf("resolve: %v", err)
		}
		if next.Clients[0].Status != ClientNotice {
			t.Fatalf("status = %s, want notice after satisfaction slide", next.Clients[0].Status)
		}
	})

	t.Run("churn on notice with falling satisfaction", func(t *testing.T) {
		team, cfg := startupTeam(t)
		team.Clients = []ActiveClient{{
			OpportunityID: "c1", RevenueCents: 2_000_000, HoursPerQuarter: 100,
			QuartersRemaining: 3, Satisfaction: 25, Quality: QualityBudget, Status: ClientNotice,
		}}
		next, result, err := Resolve(team, DefaultInputs(), []TeamState{team}, nil, nil, cfg, NewRand(1))
		if err != nil {
			t.Fatalf("resolve: %v", err)
		}
		if len(next.Clients) != 0 {
			t.Fatal("client on notice with falling satisfaction must churn")
		}
		if result.ClientsChurned != 1 || result.ClientsLost != 1 {
			t.Fatalf("churn counts: churned=%d lost=%d", result.ClientsChurned, result.ClientsLost)
		}
	})

	t.Run("satisfaction spend rescues notice", func(t *testing.T) {
		team, cfg := startupTeam(t)
		team.Clients = []ActiveClient{{
			OpportunityID: "c1", RevenueCents: 2_000_000, HoursPerQuarter: 100,
			QuartersRemaining: 3, Satisfaction: 25, Quality: QualityStandard, Status: ClientNotice,
		}}
		inputs := DefaultInputs()
		inputs.ClientSatSpendCents = 20_000 * CentsPerDollar
		next, result, err := Resolve(team, inputs, []TeamState{team}, nil, nil, cfg, NewRand(1))
		if err != nil {
			t.Fatalf("resolve: %v", err)
		}
		if len(next.Clients) != 1 {
			t.Fatal("client with rising satisfaction must not churn")
		}
		if result.ClientsChurned != 0 {
			t.Fatalf("churned = %d, want 0", result.ClientsChurned)
		}
	})

	t.Run("expiry renews or churns across seeds", func(t *testing.T) {
		renewed, lost := false, false
		for seed := int64(0); seed < 30 && !(renewed && lost); seed++ {
			team, cfg := startupTeam(t)
			team.Clients = []ActiveClient{{
				OpportunityID: "c1", RevenueCents: 2_000_000, HoursPerQuarter: 100,
				QuartersRemaining: 1, Satisfaction: 55, Quality: QualityStandard, Status: ClientActive,
			}}
			next, result, err := Resolve(team, DefaultInputs(), []TeamState{team}, nil, nil, cfg, NewRand(seed))
			if err != nil {
				t.Fatalf("resolve: %v", err)
			}
			if result.ClientsRenewed == 1 {
				renewed = true
				if next.Clients[0].QuartersRemaining != 2 {
					t.Fatalf("renewed contract length = %d, want 2", next.Clients[0].QuartersRemaining)
				}
			}
			if result.ClientsLost == 1 && len(next.Clients) == 0 {
				lost = true
			}
		}
		if !renewed || !lost {
			t.Fatalf("expected both outcomes across seeds: renewed=%v lost=%v", renewed, lost)
		}
	})

	t.Run("won renewal offer replaces expiring contract", func(t *testing.T) {
		team, cfg := startupTeam(t)
		team.Clients = []ActiveClient{{
			OpportunityID: "c1", Name: "Atlas Labs", RevenueCents: 2_000_000, HoursPerQuarter: 100,
			QuartersRemaining: 1, Satisfaction: 90, Quality: QualityStandard, Status: ClientActive,
		}}
		offer := ClientOpportunity{
			ID: "rnw-1", Name: "Atlas Labs", BudgetCents: 2_500_000, HoursPerQuarter: 100,
			ContractLength: 3, BaseWinChance: 95, RenewalOf: "c1", TeamID: team.TeamID,
		}
		inputs := DefaultInputs()
		inputs.Pitches = []PitchDecision{{OpportunityID: "rnw-1", Quality: QualityStandard}}

		for seed := int64(0); seed < 30; seed++ {
			next, result, err := Resolve(team, inputs, []TeamState{team}, []ClientOpportunity{offer}, nil, cfg, NewRand(seed))
			if err != nil {
				t.Fatalf("resolve: %v", err)
			}
			if !result.PitchOutcomes[0].Won {
				continue
			}
			if result.ClientsRenewed != 1 || result.ClientsWon != 0 {
				t.Fatalf("renewal win miscounted: renewed=%d won=%d", result.ClientsRenewed, result.ClientsWon)
			}
			if len(next.Clients) != 1 {
				t.Fatalf("got %d clients, want the replacement only", len(next.Clients))
			}
			if next.Clients[0].OpportunityID != "rnw-1" || next.Clients[0].QuartersRemaining != 3 {
				t.Fatalf("replacement not installed: %+v", next.Clients[0])
			}
			return
		}
		t.Fatal("no seed won a near-certain renewal pitch in 30 tries")
	})

	t.Run("winning renewal and expansion keeps both contracts", func(t *testing.T) {
		team, cfg := startupTeam(t)
		team.Clients = []ActiveClient{{
			OpportunityID: "c1", Name: "Atlas Labs", RevenueCents: 2_000_000, HoursPerQuarter: 100,
			QuartersRemaining: 1, Satisfaction: 90, Quality: QualityStandard, Status: ClientActive,
		}}
		renewal := ClientOpportunity{
			ID: "rnw-1", Name: "Atlas Labs", BudgetCents: 2_500_000, HoursPerQuarter: 100,
			ContractLength: 3, BaseWinChance: 95, RenewalOf: "c1", TeamID: team.TeamID,
		}
		expansion := ClientOpportunity{
			ID: "exp-1", Name: "Atlas Labs (expansion)", BudgetCents: 1_500_000, HoursPerQuarter: 60,
			ContractLength: 3, BaseWinChance: 95, TeamID: team.TeamID,
		}
		inputs := DefaultInputs()
		inputs.Pitches = []PitchDecision{
			{OpportunityID: "rnw-1", Quality: QualityStandard},
			{OpportunityID: "exp-1", Quality: QualityStandard},
		}
		pool := []ClientOpportunity{renewal, expansion}

		for seed := int64(0); seed < 30; seed++ {
			next, result, err := Resolve(team, inputs, []TeamState{team}, pool, nil, cfg, NewRand(seed))
			if err != nil {
				t.Fatalf("resolve: %v", err)
			}
			if !result.PitchOutcomes[0].Won || !result.PitchOutcomes[1].Won {
				continue
			}
			if result.ClientsRenewed != 1 || result.ClientsWon != 1 {
				t.Fatalf("counts: renewed=%d won=%d, want 1 and 1", result.ClientsRenewed, result.ClientsWon)
			}
			if len(next.Clients) != 2 {
				t.Fatalf("got %d clients, want renewal plus expansion", len(next.Clients))
			}
			byID := map[string]ActiveClient{}
			for _, c := range next.Clients {
				byID[c.OpportunityID] = c
			}
			if _, ok := byID["rnw-1"]; !ok {
				t.Fatal("renewed contract missing from the book")
			}
			exp, ok := byID["exp-1"]
			if !ok {
				t.Fatal("expansion contract missing from the book")
			}
			if exp.RevenueCents != 1_500_000 {
				t.Fatalf("expansion revenue = %d, want 1500000", exp.RevenueCents)
			}
			return
		}
		t.Fatal("no seed won both near-certain pitches in 30 tries")
	})
}

func TestResolveBurnoutDynamics(t *testing.T) {
	t.Run("overwork raises burnout", func(t *testing.T) {
		team, cfg := startupTeam(t)
		team.Staff = 1
		team.Clients = []ActiveClient{{
			OpportunityID: "c1", RevenueCents: 9_000_000, HoursPerQuarter: 700,
			QuartersRemaining: 4, Satisfaction: 80, Quality: QualityStandard, Status: ClientActive,
		}}
		next, result, err := Resolve(team, DefaultInputs(), []TeamState{team}, nil, nil, cfg, NewRand(1))
		if err != nil {
			t.Fatalf("resolve: %v", err)
		}
		if result.UtilizationRate <= 1 {
			t.Fatalf("utilization = %v, scenario should overwork", result.UtilizationRate)
		}
		if next.Burnout <= team.Burnout {
			t.Fatalf("burnout %v -> %v, want increase", team.Burnout, next.Burnout)
		}
		if next.Clients[0].Satisfaction >= 80 {
			t.Fatal("overwork should drag client satisfaction down")
		}
	})

	t.Run("idle quarter with wellbeing spend recovers", func(t *testing.T) {
		team, cfg := startupTeam(t)
		team.Burnout = 50
		inputs := DefaultInputs()
		inputs.WellbeingSpendCents = 10_000 * CentsPerDollar
		next, _, err := Resolve(team, inputs, []TeamState{team}, nil, nil, cfg, NewRand(1))
		if err != nil {
			t.Fatalf("resolve: %v", err)
		}
		if next.Burnout >= 50 {
			t.Fatalf("burnout %v, want recovery below 50", next.Burnout)
		}
	})
}

func TestResolveCapabilityDrift(t *testing.T) {
	team, cfg := startupTeam(t)
	inputs := DefaultInputs()
	inputs.TechSpendCents = 40_000 * CentsPerDollar
	inputs.TrainingSpendCents = 30_000 * CentsPerDollar
	next, _, err := Resolve(team, inputs, []TeamState{team}, nil, nil, cfg, NewRand(1))
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if next.TechLevel <= team.TechLevel {
		t.Fatal("tech investment must raise tech level")
	}
	if next.TrainingLevel <= team.TrainingLevel {
		t.Fatal("training investment must raise training level")
	}

	// Diminishing returns: the same spend buys less at a higher level.
	rich := team.Clone()
	rich.TechLevel = 10
	richNext, _, err := Resolve(rich, inputs, []TeamState{rich}, nil, nil, cfg, NewRand(1))
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if (richNext.TechLevel - rich.TechLevel) >= (next.TechLevel - team.TechLevel) {
		t.Fatal("capability gains should diminish at high levels")
	}
}

func TestResolveHiringCosts(t *testing.T) {
	team, cfg := startupTeam(t)
	inputs := DefaultInputs()
	inputs.HiringCount = 2
	next, result, err := Resolve(team, inputs, []TeamState{team}, nil, nil, cfg, NewRand(1))
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if next.Staff != 8 {
		t.Fatalf("staff = %d, want 8", next.Staff)
	}
	// New hires are on payroll the quarter they join.
	wantCosts := int64(8)*StaffQuarterlyCostCents + 2*HiringCostCents
	if result.CostsCents != wantCosts {
		t.Fatalf("costs = %d, want %d", result.CostsCents, wantCosts)
	}
}

func TestResolveTalentPoachingInflatesPayroll(t *testing.T) {
	team, cfg := startupTeam(t)
	events := []GameEvent{{Type: EventTalentPoaching, Active: true, QuartersRemaining: 2}}
	_, result, err := Resolve(team, DefaultInputs(), []TeamState{team}, nil, events, cfg, NewRand(1))
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	base := int64(6) * StaffQuarterlyCostCents
	want := int64(float64(base) * 1.2)
	if result.CostsCents != want {
		t.Fatalf("costs = %d, want %d with poaching multiplier", result.CostsCents, want)
	}
}
