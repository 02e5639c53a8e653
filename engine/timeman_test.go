package engine

import "testing"

func TestTimeManagerMoveTime(t *testing.T) {
	var tm timeManager
	tm.init(Limits{MoveTime: 500}, true, false)

	if tm.useTimeManagement {
		t.Fatal("movetime must disable dynamic time management")
	}
	if tm.hardDeadline() != 500 {
		t.Fatalf("hard deadline = %d, want 500", tm.hardDeadline())
	}
}

func TestTimeManagerSuddenDeathWithIncrement(t *testing.T) {
	var tm timeManager
	tm.init(Limits{WTime: 60000, WInc: 1000}, true, false)

	if !tm.useTimeManagement {
		t.Fatal("clock search must use time management")
	}
	if tm.maxSearchTime != 60000/30+1000 {
		t.Fatalf("maxSearchTime = %d", tm.maxSearchTime)
	}
	if tm.absoluteMaxSearchTime != 15000 {
		t.Fatalf("absoluteMaxSearchTime = %d", tm.absoluteMaxSearchTime)
	}
}

func TestTimeManagerMovesToGo(t *testing.T) {
	var tm timeManager
	tm.init(Limits{BTime: 60000, MovesToGo: 20}, false, false)

	if tm.maxSearchTime != 3000 {
		t.Fatalf("maxSearchTime = %d, want 3000", tm.maxSearchTime)
	}
	if tm.absoluteMaxSearchTime != Min(4*60000/20, 60000/3) {
		t.Fatalf("absoluteMaxSearchTime = %d", tm.absoluteMaxSearchTime)
	}
}

func TestTimeManagerDepthLimitDisablesClock(t *testing.T) {
	var tm timeManager
	tm.init(Limits{Depth: 12, WTime: 60000}, true, false)

	if tm.useTimeManagement {
		t.Fatal("depth-limited search must ignore the clock")
	}
	if tm.hardDeadline() != 0 {
		t.Fatalf("hard deadline = %d, want 0", tm.hardDeadline())
	}
}

func TestPonderingEnabledExtendsSoftBudget(t *testing.T) {
	var base, pondering timeManager
	base.init(Limits{WTime: 60000, WInc: 1000}, true, false)
	pondering.init(Limits{WTime: 60000, WInc: 1000}, true, true)

	if pondering.maxSearchTime < base.maxSearchTime {
		t.Fatalf("pondering budget %d below base %d", pondering.maxSearchTime, base.maxSearchTime)
	}
	if pondering.maxSearchTime > pondering.absoluteMaxSearchTime {
		t.Fatal("soft budget above the hard ceiling")
	}
}
