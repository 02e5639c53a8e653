package engine

import gm "github.com/Oliverans/GooseEngineMG/goosemg"

// position bundles a board with the zobrist keys of every position reached
// on the way to it, which is all the state draw detection needs. Each worker
// searches on its own position value; a split point hands slaves a copy.
type position struct {
	board gm.Board
	hist  []uint64
}

func newPosition(board gm.Board, gameHist []uint64) position {
	p := position{board: board}
	p.hist = make([]uint64, 0, len(gameHist)+plyMaxPlus2)
	p.hist = append(p.hist, gameHist...)
	if len(p.hist) == 0 || p.hist[len(p.hist)-1] != board.Hash() {
		p.hist = append(p.hist, board.Hash())
	}
	return p
}

func (p *position) key() uint64 { return p.board.Hash() }

// exclusionKey derives the alternate hash used while verifying a singular
// extension, so the exclusion search never pollutes the main TT entries.
func (p *position) exclusionKey(excluded gm.Move) uint64 {
	x := p.board.Hash() ^ (uint64(uint32(excluded)) + 0x9e3779b97f4a7c15)
	x ^= x >> 29
	x *= 0xbf58476d1ce4e5b9
	x ^= x >> 32
	return x
}

func (p *position) doMove(m gm.Move) (gm.MoveState, bool) {
	ok, st := p.board.MakeMove(m)
	if !ok {
		return st, false
	}
	p.hist = append(p.hist, p.board.Hash())
	return st, true
}

func (p *position) undoMove(m gm.Move, st gm.MoveState) {
	p.board.UnmakeMove(m, st)
	p.hist = p.hist[:len(p.hist)-1]
}

func (p *position) doNullMove() gm.NullState {
	st := p.board.MakeNullMove()
	p.hist = append(p.hist, p.board.Hash())
	return st
}

func (p *position) undoNullMove(st gm.NullState) {
	p.board.UnmakeNullMove(st)
	p.hist = p.hist[:len(p.hist)-1]
}

// isDraw reports draw by fifty-move rule or by repetition. One earlier
// occurrence of the current key within the reversible-move window is enough:
// repeating any position the search already passed through cannot be better
// than the first visit.
func (p *position) isDraw() bool {
	if p.board.HalfmoveClock() >= 100 {
		return true
	}
	cur := len(p.hist) - 1
	if cur <= 0 {
		return false
	}
	first := cur - p.board.HalfmoveClock()
	if first < 0 {
		first = 0
	}
	target := p.hist[cur]
	for i := cur - 2; i >= first; i-- {
		if p.hist[i] == target {
			return true
		}
	}
	return false
}
