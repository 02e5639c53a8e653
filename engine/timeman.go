package engine

import "time"

// timeManager allocates thinking time for one search. maxSearchTime is the
// soft target; absoluteMaxSearchTime is the hard ceiling the poll routine
// enforces; extraSearchTime grows when the best move keeps changing.
type timeManager struct {
	searchStart           time.Time
	maxSearchTime         int
	absoluteMaxSearchTime int
	extraSearchTime       int
	exactMaxTime          int
	useTimeManagement     bool
}

// Limits carries the payload of a "go" command.
type Limits struct {
	Infinite bool
	Ponder   bool

	WTime, BTime int
	WInc, BInc   int
	MovesToGo    int

	Depth    int
	Nodes    int64
	MoveTime int

	SearchMoves []string
}

func (tm *timeManager) init(l Limits, whiteToMove, ponderingEnabled bool) {
	tm.searchStart = time.Now()
	tm.maxSearchTime = 0
	tm.absoluteMaxSearchTime = 0
	tm.extraSearchTime = 0
	tm.exactMaxTime = l.MoveTime
	tm.useTimeManagement = l.MoveTime == 0 && l.Depth == 0 && l.Nodes == 0 && !l.Infinite

	myTime, myInc := l.BTime, l.BInc
	if whiteToMove {
		myTime, myInc = l.WTime, l.WInc
	}
	if !tm.useTimeManagement || myTime <= 0 {
		tm.useTimeManagement = tm.useTimeManagement && myTime > 0
		return
	}

	if l.MovesToGo == 0 {
		// Sudden death
		if myInc > 0 {
			tm.maxSearchTime = myTime/30 + myInc
			tm.absoluteMaxSearchTime = Max(myTime/4, myInc-100)
		} else {
			tm.maxSearchTime = myTime / 30
			tm.absoluteMaxSearchTime = myTime / 8
		}
	} else if l.MovesToGo == 1 {
		tm.maxSearchTime = myTime / 2
		if myTime > 3000 {
			tm.absoluteMaxSearchTime = myTime - 500
		} else {
			tm.absoluteMaxSearchTime = myTime * 3 / 4
		}
	} else {
		tm.maxSearchTime = myTime / Min(l.MovesToGo, 20)
		tm.absoluteMaxSearchTime = Min(4*myTime/l.MovesToGo, myTime/3)
	}

	// When pondering is on we bank on ponder hits and think a bit longer.
	if ponderingEnabled {
		tm.maxSearchTime += tm.maxSearchTime / 4
		tm.maxSearchTime = Min(tm.maxSearchTime, tm.absoluteMaxSearchTime)
	}
}

// elapsed returns milliseconds since the search started.
func (tm *timeManager) elapsed() int {
	return int(time.Since(tm.searchStart) / time.Millisecond)
}

// hardDeadline returns the time after which the search must stop, or 0 when
// only depth/nodes limits apply.
func (tm *timeManager) hardDeadline() int {
	if tm.exactMaxTime > 0 {
		return tm.exactMaxTime
	}
	if tm.useTimeManagement {
		return tm.absoluteMaxSearchTime
	}
	return 0
}
