package engine

import (
	"encoding/binary"
	"fmt"
	"hash/fnv"
	"math"
	"sort"
)

// Investment effectiveness units. One unit of spend buys one "step" of the
// associated effect; diminishing returns are applied on top. Fixed constants
// so identical inputs always produce identical drift.
const (
	TechInvestmentUnitCents      = int64(20_000) * CentsPerDollar
	TrainingInvestmentUnitCents  = int64(15_000) * CentsPerDollar
	MarketingInvestmentUnitCents = int64(10_000) * CentsPerDollar
	WellbeingInvestmentUnitCents = int64(5_000) * CentsPerDollar
	ClientSatInvestmentUnitCents = int64(5_000) * CentsPerDollar

	// Utilization bands. Above the overwork line burnout and satisfaction
	// suffer; below the comfortable line burnout recovers.
	OverworkUtilization    = 1.0
	ChronicOverworkLine    = 1.15
	ComfortableUtilization = 0.8

	// Drift coefficients.
	BurnoutPerOverworkPoint      = 40.0 // burnout points per unit of utilization above 1.0
	BurnoutRecoveryComfortable   = 5.0
	SatisfactionPerOverworkPoint = 30.0
	ChronicOverworkRepPenalty    = 4.0
	SevereBurnoutRepPenalty      = 3.0
	SevereBurnoutSatPenalty      = 3.0
	MarketPresenceDriftRate      = 0.3
	AutoRenewalBaseChance        = 0.5 // scaled by satisfaction, see renewChance
)

func renewChance(satisfaction float64) float64 {
	return AutoRenewalBaseChance * (0.4 + satisfaction/100*1.2)
}

// Resolve runs one team's quarter: staffing, pitching, client lifecycle,
// accounting, capability and morale drift, and the bankruptcy check, in that
// fixed order. The input team is never mutated; the returned TeamState is a
// new value with the quarter's result and metrics appended.
//
// Business outcomes, including bankruptcy and losing every pitch, are data.
// Resolve returns an error only for structurally invalid inputs, in which
// case the caller should substitute DefaultInputs and retry.
func Resolve(team TeamState, inputs TeamInputs, allTeams []TeamState, opps []ClientOpportunity, events []GameEvent, cfg LevelConfig, rng *Rand) (TeamState, QuarterResult, error) {
	if team.IsBankrupt {
		frozen := resolveBankrupt(team)
		last, _ := frozen.LatestResult()
		return frozen, last, nil
	}
	if err := inputs.Validate(team, opps); err != nil {
		return TeamState{}, QuarterResult{}, err
	}

	next := team.Clone()
	next.CurrentInputs = inputs.Clone()
	quarter := next.Quarter
	result := QuarterResult{Quarter: quarter}

	// 1. Staffing. Firing is clamped so headcount never drops below the
	// configured floor; hiring and severance costs are one-off debits.
	hired := inputs.HiringCount
	fired := inputs.FiringCount
	if maxFire := next.Staff - cfg.StaffFloor; fired > maxFire {
		fired = maxFire
	}
	if fired < 0 {
		fired = 0
	}
	next.Staff += hired - fired
	result.StaffChange = hired - fired
	staffingOneOffs := int64(hired)*HiringCostCents + int64(fired)*SeveranceCostCents

	// 3. Pitching, in submitted order. Wins become clients immediately;
	// renewal-offer wins replace the expiring contract instead of counting
	// as new business.
	byID := make(map[string]ClientOpportunity, len(opps))
	for _, opp := range opps {
		byID[opp.ID] = opp
	}
	renewalWon := make(map[string]ActiveClient)
	var newClients []ActiveClient
	ctx := PitchContext{
		Reputation:     next.Reputation,
		MarketPresence: next.MarketPresence,
		TechLevel:      next.TechLevel,
		TrainingLevel:  next.TrainingLevel,
	}
	for _, p := range inputs.Pitches {
		opp := byID[p.OpportunityID]
		outcome := EvaluatePitch(opp, p.DiscountPct, p.Quality, ctx, events, rng)
		result.PitchOutcomes = append(result.PitchOutcomes, outcome)
		if !outcome.Won {
			// A lost pitch never was a client; it shows up in
			// PitchOutcomes only. ClientsLost tracks book departures.
			continue
		}
		client := ActiveClient{
			OpportunityID:     opp.ID,
			Name:              opp.Name,
			ClientType:        opp.ClientType,
			ServiceLine:       opp.ServiceLine,
			BudgetCents:       opp.BudgetCents,
			DiscountPct:       p.DiscountPct,
			RevenueCents:      ContractRevenueCents(opp.BudgetCents, p.DiscountPct),
			HoursPerQuarter:   opp.HoursPerQuarter,
			QuartersRemaining: opp.ContractLength,
			Satisfaction:      StartSatisfaction,
			Quality:           p.Quality,
			Status:            ClientActive,
		}
		if opp.RenewalOf != "" {
			renewalWon[opp.RenewalOf] = client
			result.ClientsRenewed++
		} else {
			newClients = append(newClients, client)
			result.ClientsWon++
		}
	}

	// 2. Capacity and utilization, including hours for work just won.
	capacity := next.CapacityHours()
	workload := next.WorkloadHours()
	for _, c := range newClients {
		workload += c.HoursPerQuarter
	}
	for _, c := range renewalWon {
		workload += c.HoursPerQuarter
	}
	utilization := 0.0
	if capacity > 0 {
		utilization = workload / capacity
	}
	result.UtilizationRate = utilization
	result.HoursDelivered = workload
	result.HoursCapacity = capacity

	severeBurnout := team.Burnout >= SevereBurnoutLevel

	// 4. Client lifecycle on the existing book: contract countdown,
	// satisfaction drift, notice transitions, churn, and renewal.
	satBonus := math.Min(8, float64(inputs.ClientSatSpendCents)/float64(ClientSatInvestmentUnitCents)*2)
	survivors := make([]ActiveClient, 0, len(next.Clients))
	for _, c := range next.Clients {
		c.QuartersRemaining--

		delta := satBonus
		switch c.Quality {
		case QualityPremium:
			delta += 4
		case QualityStandard:
			delta += 1
		case QualityBudget:
			delta -= 4
		}
		if utilization > OverworkUtilization {
			delta -= (utilization - OverworkUtilization) * SatisfactionPerOverworkPoint
		}
		if severeBurnout {
			delta -= SevereBurnoutSatPenalty
		}
		newSat := clamp100(c.Satisfaction + delta)
		falling := newSat < c.Satisfaction
		c.Satisfaction = newSat

		if c.Status == ClientNotice && falling {
			result.ClientsChurned++
			result.ClientsLost++
			continue
		}
		if c.Status == ClientActive && c.Satisfaction < NoticeThreshold {
			c.Status = ClientNotice
		}

		if c.QuartersRemaining <= 0 {
			if replacement, ok := renewalWon[c.OpportunityID]; ok {
				survivors = append(survivors, replacement)
				delete(renewalWon, c.OpportunityID)
				continue
			}
			if rng.NextBool(renewChance(c.Satisfaction)) {
				c.QuartersRemaining = 2
				result.ClientsRenewed++
				survivors = append(survivors, c)
				continue
			}
			result.ClientsLost++
			continue
		}
		survivors = append(survivors, c)
	}
	// Renewal offers won for clients that churned earlier in the loop are
	// honored as fresh contracts rather than dropped, in key order so the
	// book is identical on replay.
	leftover := make([]string, 0, len(renewalWon))
	for id := range renewalWon {
		leftover = append(leftover, id)
	}
	sort.Strings(leftover)
	for _, id := range leftover {
		survivors = append(survivors, renewalWon[id])
	}
	next.Clients = append(survivors, newClients...)

	// 5. Financial accounting. Conservation is exact: everything is integer
	// cents and cash moves by revenue minus costs, nothing else.
	var revenue int64
	for _, c := range next.Clients {
		revenue += c.RevenueCents
	}
	staffCosts := int64(math.Round(float64(int64(next.Staff)*StaffQuarterlyCostCents) * StaffCostFactor(events)))
	investments := inputs.TechSpendCents + inputs.TrainingSpendCents + inputs.MarketingSpendCents +
		inputs.WellbeingSpendCents + inputs.ClientSatSpendCents
	costs := staffCosts + investments + staffingOneOffs
	profit := revenue - costs
	next.CashCents += profit
	next.CumulativeProfitCents += profit
	result.RevenueCents = revenue
	result.CostsCents = costs
	result.ProfitCents = profit

	// 6. Capability and reputation drift.
	next.TechLevel += capabilityIncrement(inputs.TechSpendCents, TechInvestmentUnitCents, next.TechLevel)
	next.TrainingLevel += capabilityIncrement(inputs.TrainingSpendCents, TrainingInvestmentUnitCents, next.TrainingLevel)
	next.ProcessLevel += workload / 5000

	target := clamp100(float64(inputs.MarketingSpendCents) / float64(MarketingInvestmentUnitCents) * (8 + inputs.GrowthFocus*8))
	if crowd := presenceCrowding(team.TeamID, allTeams); crowd > 0 {
		target *= 1.15 - 0.3*crowd
	}
	next.MarketPresence = clamp100(next.MarketPresence + (target-next.MarketPresence)*MarketPresenceDriftRate)

	repDelta := 0.0
	if utilization > ChronicOverworkLine {
		repDelta -= ChronicOverworkRepPenalty
	}
	if severeBurnout {
		repDelta -= SevereBurnoutRepPenalty
	}
	repDelta += qualityReputationDrift(inputs.Pitches)
	for _, ev := range events {
		if def, ok := EventDefinitionFor(ev.Type); ok && def.ReputationBonus > 0 && team.Reputation >= def.ReputationFloor {
			repDelta += def.ReputationBonus
		}
	}
	next.Reputation = clamp100(next.Reputation + repDelta)
	result.ReputationChange = next.Reputation - team.Reputation

	// 7. Burnout.
	burnDelta := 0.0
	if utilization > OverworkUtilization {
		burnDelta += (utilization - OverworkUtilization) * BurnoutPerOverworkPoint
	} else if utilization < ComfortableUtilization {
		burnDelta -= BurnoutRecoveryComfortable
	}
	burnDelta -= math.Min(10, float64(inputs.WellbeingSpendCents)/float64(WellbeingInvestmentUnitCents)*3)
	next.Burnout = clamp100(next.Burnout + burnDelta)
	result.BurnoutChange = next.Burnout - team.Burnout

	// 8. Bankruptcy: negative cash after full accounting is terminal.
	if next.CashCents < 0 {
		next.IsBankrupt = true
		next.BankruptQuarter = quarter
	}

	// 9. Result emission and quarter rollover.
	next.QuarterlyResults = append(next.QuarterlyResults, result)
	next.Metrics = append(next.Metrics, AgencyMetrics{
		Quarter:         quarter,
		CashCents:       next.CashCents,
		Staff:           next.Staff,
		Burnout:         next.Burnout,
		Reputation:      next.Reputation,
		MarketPresence:  next.MarketPresence,
		ClientCount:     len(next.Clients),
		UtilizationRate: utilization,
	})
	next.Quarter++
	next.SubmittedThisQuarter = false
	next.CurrentInputs = DefaultInputs()

	return next, result, nil
}

// resolveBankrupt advances a bankrupt team's clock without any activity: no
// pitches, no investments, no client drift. History stays uniform in length
// across teams so reporting can line quarters up.
func resolveBankrupt(team TeamState) TeamState {
	next := team.Clone()
	result := QuarterResult{Quarter: next.Quarter}
	next.QuarterlyResults = append(next.QuarterlyResults, result)
	next.Metrics = append(next.Metrics, AgencyMetrics{
		Quarter:        next.Quarter,
		CashCents:      next.CashCents,
		Staff:          next.Staff,
		Burnout:        next.Burnout,
		Reputation:     next.Reputation,
		MarketPresence: next.MarketPresence,
		ClientCount:    len(next.Clients),
	})
	next.Quarter++
	next.SubmittedThisQuarter = false
	next.CurrentInputs = DefaultInputs()
	return next
}

// capabilityIncrement converts investment spend into a level increase with
// diminishing returns at higher levels.
func capabilityIncrement(spendCents, unitCents int64, level float64) float64 {
	if spendCents <= 0 {
		return 0
	}
	units := float64(spendCents) / float64(unitCents)
	return units / (1 + level*0.25)
}

// qualityReputationDrift rewards premium commitments and penalizes budget
// work, capped so a flood of pitches cannot swing reputation wildly.
func qualityReputationDrift(pitches []PitchDecision) float64 {
	delta := 0.0
	for _, p := range pitches {
		switch p.Quality {
		case QualityPremium:
			delta += 1
		case QualityBudget:
			delta -= 0.5
		}
	}
	return math.Max(-2, math.Min(3, delta))
}

// presenceCrowding measures how saturated the market is with competitors'
// presence, in [0,1]. Marketing is less effective in a crowded market.
func presenceCrowding(teamID string, allTeams []TeamState) float64 {
	others := 0
	total := 0.0
	for _, t := range allTeams {
		if t.TeamID == teamID {
			continue
		}
		others++
		total += t.MarketPresence
	}
	if others == 0 {
		return 0
	}
	return total / (100 * float64(others))
}

// DeriveTeamSeed produces the per-team RNG sub-stream seed for one quarter.
// It hashes the game seed, quarter, and team id with FNV-1a so one team's
// draw count can never shift another team's stream.
func DeriveTeamSeed(gameSeed int64, quarter int, teamID string) int64 {
	h := fnv.New64a()
	var buf [12]byte
	binary.LittleEndian.PutUint64(buf[:8], uint64(gameSeed))
	binary.LittleEndian.PutUint32(buf[8:], uint32(quarter))
	h.Write(buf[:])
	h.Write([]byte(teamID))
	return int64(h.Sum64())
}

// ValidateResolutionInputs is the game-creation-time guard: it surfaces
// configuration problems before any quarter runs rather than mid-game.
func ValidateResolutionInputs(cfg LevelConfig) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("resolution config: %w", err)
	}
	return nil
}
