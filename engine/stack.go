package engine

import gm "github.com/Oliverans/GooseEngineMG/goosemg"

// frame is the per-ply scratch area of a worker. The pv array is indexed by
// absolute ply, so copying a suffix up the stack is a straight slice copy.
type frame struct {
	currentMove gm.Move
	threatMove  gm.Move
	mateKiller  gm.Move
	killers     [2]gm.Move
	reduction   Depth
	eval        Value
	pv          [plyMaxPlus2]gm.Move
}

// searchStack has two guard frames past plyMax so clearing the killers two
// plies ahead never walks off the end.
type searchStack [plyMaxPlus2 + 2]frame

func (ss *searchStack) initFrame(ply int) {
	f := &ss[ply]
	f.pv[ply] = moveNone
	f.pv[ply+1] = moveNone
	f.currentMove = moveNone
	f.threatMove = moveNone
	f.reduction = depthZero
	f.eval = valueNone
}

func (ss *searchStack) initKillers(ply int) {
	f := &ss[ply]
	f.mateKiller = moveNone
	f.killers[0] = moveNone
	f.killers[1] = moveNone
}

// initTop resets the frames around the root before a new search.
func (ss *searchStack) initTop() {
	for i := 0; i < 3; i++ {
		ss.initFrame(i)
		ss.initKillers(i)
	}
}

// updatePV is called when a search returns a value above alpha: the current
// move plus the child's PV suffix become this ply's PV.
func updatePV(ss *searchStack, ply int) {
	ss[ply].pv[ply] = ss[ply].currentMove
	p := ply + 1
	for ; ss[ply+1].pv[p] != moveNone; p++ {
		ss[ply].pv[p] = ss[ply+1].pv[p]
	}
	ss[ply].pv[p] = moveNone
}

// spUpdatePV mirrors updatePV for split points: the improvement found on a
// slave's stack is propagated into the master's stack as well. Callers hold
// the split point's mutex.
func spUpdatePV(parent *searchStack, ss *searchStack, ply int) {
	ss[ply].pv[ply] = ss[ply].currentMove
	parent[ply].pv[ply] = ss[ply].currentMove
	p := ply + 1
	for ; ss[ply+1].pv[p] != moveNone; p++ {
		ss[ply].pv[p] = ss[ply+1].pv[p]
		parent[ply].pv[p] = ss[ply+1].pv[p]
	}
	ss[ply].pv[p] = moveNone
	parent[ply].pv[p] = moveNone
}

func moveIsKiller(m gm.Move, f *frame) bool {
	return m == f.killers[0] || m == f.killers[1]
}

func updateKillers(m gm.Move, f *frame) {
	if m == f.killers[0] {
		return
	}
	f.killers[1] = f.killers[0]
	f.killers[0] = m
}
