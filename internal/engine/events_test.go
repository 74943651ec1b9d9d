package engine

import (
	"reflect"
	"testing"
)

func TestAdvanceEventsDeterministic(t *testing.T) {
	cfg := EventConfig{MaxConcurrent: 2, ChanceMultiplier: 1}
	a := AdvanceEvents(1, cfg, nil, NewRand(42))
	b := AdvanceEvents(1, cfg, nil, NewRand(42))
	if !reflect.DeepEqual(a, b) {
		t.Fatal("same seed produced different event sets")
	}
}

func TestAdvanceEventsExpiry(t *testing.T) {
	cfg := EventConfig{MaxConcurrent: 2, ChanceMultiplier: 0} // no new activations
	current := []GameEvent{
		{Type: EventEconomicBoom, QuartersRemaining: 2, Active: true},
		{Type: EventViralTrend, QuartersRemaining: 1, Active: true},
	}
	next := AdvanceEvents(2, cfg, current, NewRand(1))
	if len(next) != 1 {
		t.Fatalf("got %d surviving events, want 1", len(next))
	}
	if next[0].Type != EventEconomicBoom {
		t.Fatalf("surviving event = %s, want %s", next[0].Type, EventEconomicBoom)
	}
	if next[0].QuartersRemaining != 1 {
		t.Fatalf("QuartersRemaining = %d, want 1", next[0].QuartersRemaining)
	}
}

func TestAdvanceEventsConcurrencyCap(t *testing.T) {
	cfg := EventConfig{MaxConcurrent: 1, ChanceMultiplier: 100} // every roll succeeds
	next := AdvanceEvents(1, cfg, nil, NewRand(42))
	if len(next) != 1 {
		t.Fatalf("got %d active events, want cap of 1", len(next))
	}
}

// Rolls past the cap must still be consumed so the number of active events
// never shifts later draws.
func TestAdvanceEventsDrawAlignment(t *testing.T) {
	capped := NewRand(42)
	open := NewRand(42)
	AdvanceEvents(1, EventConfig{MaxConcurrent: 1, ChanceMultiplier: 100}, nil, capped)
	AdvanceEvents(1, EventConfig{MaxConcurrent: 10, ChanceMultiplier: 100}, nil, open)
	if a, b := capped.Next(), open.Next(); a != b {
		t.Fatalf("draw streams diverged after capped activation: %v vs %v", a, b)
	}
}

func TestAdvanceEventsNoDuplicateTypes(t *testing.T) {
	cfg := EventConfig{MaxConcurrent: 10, ChanceMultiplier: 100}
	current := []GameEvent{{Type: EventEconomicBoom, QuartersRemaining: 3, Active: true}}
	next := AdvanceEvents(2, cfg, current, NewRand(42))
	booms := 0
	for _, ev := range next {
		if ev.Type == EventEconomicBoom {
			booms++
		}
	}
	if booms != 1 {
		t.Fatalf("got %d concurrent %s events, want 1", booms, EventEconomicBoom)
	}
}

func TestEventTableComplete(t *testing.T) {
	for _, def := range eventTable {
		if def.BaseChance <= 0 || def.BaseChance > 1 {
			t.Fatalf("%s: base chance %v out of (0,1]", def.Type, def.BaseChance)
		}
		if def.Duration < 1 {
			t.Fatalf("%s: duration %d", def.Type, def.Duration)
		}
		if def.Name == "" || def.Description == "" {
			t.Fatalf("%s: missing display text", def.Type)
		}
	}
}

func TestStaffCostFactor(t *testing.T) {
	if got := StaffCostFactor(nil); got != 1 {
		t.Fatalf("no events: factor = %v, want 1", got)
	}
	got := StaffCostFactor([]GameEvent{{Type: EventTalentPoaching, Active: true}})
	if got != 1.2 {
		t.Fatalf("talent poaching factor = %v, want 1.2", got)
	}
}
