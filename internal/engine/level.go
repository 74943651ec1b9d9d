package engine

import "fmt"

// BudgetRange bounds contract budgets for one client type, in cents.
type BudgetRange struct {
	MinCents int64 `json:"min_cents" yaml:"min_cents"`
	MaxCents int64 `json:"max_cents" yaml:"max_cents"`
}

// EventConfig tunes the random-event engine for a level.
type EventConfig struct {
	MaxConcurrent    int     `json:"max_concurrent" yaml:"max_concurrent"`
	ChanceMultiplier float64 `json:"chance_multiplier" yaml:"chance_multiplier"`
}

// LevelConfig is a difficulty configuration: starting resources, opportunity
// volume, event intensity. Configs are validated once at game creation;
// malformed configs prevent the game from starting.
type LevelConfig struct {
	Level string `json:"level" yaml:"level"`

	StartingCashCents      int64   `json:"starting_cash_cents" yaml:"starting_cash_cents"`
	StartingStaff          int     `json:"starting_staff" yaml:"starting_staff"`
	StartingReputation     float64 `json:"starting_reputation" yaml:"starting_reputation"`
	StartingMarketPresence float64 `json:"starting_market_presence" yaml:"starting_market_presence"`
	StaffFloor             int     `json:"staff_floor" yaml:"staff_floor"`

	MinOpportunities int `json:"min_opportunities" yaml:"min_opportunities"`
	MaxOpportunities int `json:"max_opportunities" yaml:"max_opportunities"`

	// ComplexityWeights are relative weights for low/medium/high, consumed
	// in that fixed order.
	ComplexityWeights map[string]float64     `json:"complexity_weights" yaml:"complexity_weights"`
	BudgetRanges      map[string]BudgetRange `json:"budget_ranges" yaml:"budget_ranges"`

	Events EventConfig `json:"events" yaml:"events"`

	MaxQuarters int `json:"max_quarters" yaml:"max_quarters"`
}

var complexities = []string{"low", "medium", "high"}

// Validate reports the first configuration problem found. All errors wrap
// ErrBadLevelConfig so callers can treat any of them as fatal-at-creation.
func (cfg LevelConfig) Validate() error {
	if cfg.Level == "" {
		return fmt.Errorf("%w: level name required", ErrBadLevelConfig)
	}
	if cfg.StartingCashCents <= 0 {
		return fmt.Errorf("%w: starting cash must be positive", ErrBadLevelConfig)
	}
	if cfg.StaffFloor < 1 {
		return fmt.Errorf("%w: staff floor must be at least 1", ErrBadLevelConfig)
	}
	if cfg.StartingStaff < cfg.StaffFloor {
		return fmt.Errorf("%w: starting staff below staff floor", ErrBadLevelConfig)
	}
	if cfg.MinOpportunities < 1 || cfg.MaxOpportunities < cfg.MinOpportunities {
		return fmt.Errorf("%w: opportunity counts out of order", ErrBadLevelConfig)
	}
	total := 0.0
	for _, c := range complexities {
		w, ok := cfg.ComplexityWeights[c]
		if !ok {
			return fmt.Errorf("%w: missing complexity weight %q", ErrBadLevelConfig, c)
		}
		if w < 0 {
			return fmt.Errorf("%w: negative complexity weight %q", ErrBadLevelConfig, c)
		}
		total += w
	}
	if total <= 0 {
		return fmt.Errorf("%w: complexity weights sum to zero", ErrBadLevelConfig)
	}
	for _, ct := range clientTypes {
		r, ok := cfg.BudgetRanges[ct.Type]
		if !ok {
			return fmt.Errorf("%w: missing budget range for client type %q", ErrBadLevelConfig, ct.Type)
		}
		if r.MinCents <= 0 || r.MaxCents < r.MinCents {
			return fmt.Errorf("%w: bad budget range for client type %q", ErrBadLevelConfig, ct.Type)
		}
	}
	if cfg.Events.MaxConcurrent < 0 {
		return fmt.Errorf("%w: negative event cap", ErrBadLevelConfig)
	}
	if cfg.Events.ChanceMultiplier < 0 {
		return fmt.Errorf("%w: negative event chance multiplier", ErrBadLevelConfig)
	}
	if cfg.MaxQuarters < 1 {
		return fmt.Errorf("%w: max quarters must be at least 1", ErrBadLevelConfig)
	}
	return nil
}

// BuiltinLevel returns one of the named built-in difficulty levels.
func BuiltinLevel(name string) (LevelConfig, error) {
	switch name {
	case "startup":
		return startupLevel(), nil
	case "growth":
		return growthLevel(), nil
	case "enterprise":
		return enterpriseLevel(), nil
	default:
		return LevelConfig{}, fmt.Errorf("%w: unknown level %q", ErrBadLevelConfig, name)
	}
}

func defaultBudgetRanges(scale float64) map[string]BudgetRange {
	mul := func(v int64) int64 { return int64(float64(v) * scale) }
	return map[string]BudgetRange{
		"startup":    {MinCents: mul(15_000_00), MaxCents: mul(60_000_00)},
		"smb":        {MinCents: mul(30_000_00), MaxCents: mul(120_000_00)},
		"enterprise": {MinCents: mul(80_000_00), MaxCents: mul(400_000_00)},
		"nonprofit":  {MinCents: mul(10_000_00), MaxCents: mul(45_000_00)},
	}
}

func startupLevel() LevelConfig {
	return LevelConfig{
		Level:                  "startup",
		StartingCashCents:      300_000 * CentsPerDollar,
		StartingStaff:          6,
		StartingReputation:     50,
		StartingMarketPresence: 20,
		StaffFloor:             1,
		MinOpportunities:       4,
		MaxOpportunities:       6,
		ComplexityWeights:      map[string]float64{"low": 0.5, "medium": 0.35, "high": 0.15},
		BudgetRanges:           defaultBudgetRanges(1.0),
		Events:                 EventConfig{MaxConcurrent: 2, ChanceMultiplier: 0.8},
		MaxQuarters:            8,
	}
}

func growthLevel() LevelConfig {
	return LevelConfig{
		Level:                  "growth",
		StartingCashCents:      500_000 * CentsPerDollar,
		StartingStaff:          10,
		StartingReputation:     55,
		StartingMarketPresence: 35,
		StaffFloor:             2,
		MinOpportunities:       5,
		MaxOpportunities:       8,
		ComplexityWeights:      map[string]float64{"low": 0.35, "medium": 0.40, "high": 0.25},
		BudgetRanges:           defaultBudgetRanges(1.5),
		Events:                 EventConfig{MaxConcurrent: 3, ChanceMultiplier: 1.0},
		MaxQuarters:            12,
	}
}

func enterpriseLevel() LevelConfig {
	return LevelConfig{
		Level:                  "enterprise",
		StartingCashCents:      900_000 * CentsPerDollar,
		StartingStaff:          18,
		StartingReputation:     60,
		StartingMarketPresence: 50,
		StaffFloor:             4,
		MinOpportunities:       6,
		MaxOpportunities:       10,
		ComplexityWeights:      map[string]float64{"low": 0.2, "medium": 0.40, "high": 0.40},
		BudgetRanges:           defaultBudgetRanges(2.5),
		Events:                 EventConfig{MaxConcurrent: 3, ChanceMultiplier: 1.3},
		MaxQuarters:            16,
	}
}
