package engine

import (
	"testing"

	gm "github.com/Oliverans/GooseEngineMG/goosemg"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	e := NewEngine()
	t.Cleanup(e.Quit)
	return e
}

// prepareDirectSearch sets up an engine for calling search/qsearch without
// going through the driver.
func prepareDirectSearch(t *testing.T, e *Engine) *worker {
	t.Helper()
	e.cfg = e.snapshotConfig()
	e.tm.init(Limits{Depth: plyMax}, true, false)
	w := e.pool.workers[0]
	w.pollBudget = 1 << 30
	w.stack.initTop()
	return w
}

func TestMateInOne(t *testing.T) {
	e := newTestEngine(t)
	if err := e.SetPosition("4k3/8/4K3/8/8/8/8/4Q3 w - - 0 1", nil); err != nil {
		t.Fatal(err)
	}
	e.StartThinking(Limits{Depth: 4})
	e.WaitSearchDone()

	if e.Score() != mateIn(1) {
		t.Fatalf("score = %s, want mate 1", valueString(e.Score()))
	}
	board := e.Board()
	best := e.BestMove()
	if best == moveNone {
		t.Fatal("no best move returned")
	}
	board.Apply(best)
	if !board.InCheckmate() {
		t.Fatalf("best move %s does not deliver mate", best.String())
	}
}

func TestStalemateRoot(t *testing.T) {
	e := newTestEngine(t)
	if err := e.SetPosition("7k/5Q2/6K1/8/8/8/8/8 b - - 0 1", nil); err != nil {
		t.Fatal(err)
	}
	e.StartThinking(Limits{Depth: 4})
	e.WaitSearchDone()

	if e.BestMove() != moveNone {
		t.Fatalf("stalemate root returned move %s", e.BestMove().String())
	}
	if e.Score() != valueDraw {
		t.Fatalf("stalemate score = %d, want 0", e.Score())
	}
}

func TestMatedRootReportsMate(t *testing.T) {
	e := newTestEngine(t)
	// Back-rank mate already on the board, black to move.
	if err := e.SetPosition("R5k1/5ppp/8/8/8/8/8/6K1 b - - 0 1", nil); err != nil {
		t.Fatal(err)
	}
	e.StartThinking(Limits{Depth: 2})
	e.WaitSearchDone()

	if e.BestMove() != moveNone {
		t.Fatalf("mated root returned move %s", e.BestMove().String())
	}
	if e.Score() != matedIn(0) {
		t.Fatalf("mated root score = %d, want %d", e.Score(), matedIn(0))
	}
}

func TestDepthBelowOnePlyDelegatesToQuiescence(t *testing.T) {
	fen := "r1bqkbnr/pppp1ppp/2n5/4p3/3P4/5N2/PPP1PPPP/RNBQKB1R w KQkq - 2 3"

	e1 := newTestEngine(t)
	w1 := prepareDirectSearch(t, e1)
	p1 := newPosition(gm.ParseFen(fen), nil)
	v1 := e1.search(w1, &p1, -valueInfinite, valueInfinite, onePly-1, 1, true, moveNone)

	e2 := newTestEngine(t)
	w2 := prepareDirectSearch(t, e2)
	p2 := newPosition(gm.ParseFen(fen), nil)
	v2 := e2.qsearch(w2, &p2, -valueInfinite, valueInfinite, depthZero, 1)

	if v1 != v2 {
		t.Fatalf("search below one ply = %d, qsearch = %d", v1, v2)
	}
}

func TestExcludedOnlyMoveFailsLow(t *testing.T) {
	e := newTestEngine(t)
	w := prepareDirectSearch(t, e)

	// White is in check and Kxg2 is the only evasion.
	board, err := gm.ParseFEN("k7/8/8/8/8/8/6q1/7K w - - 0 1")
	if err != nil {
		t.Fatal(err)
	}
	legal := board.GenerateLegalMoves()
	if len(legal) != 1 {
		t.Fatalf("test position has %d legal moves, want 1", len(legal))
	}

	p := newPosition(*board, nil)
	beta := Value(100)
	v := e.search(w, &p, beta-1, beta, 8*onePly, 1, true, legal[0])
	if v != beta-1 {
		t.Fatalf("excluded-only-move search = %d, want beta-1 = %d", v, beta-1)
	}
}

func TestSearchValueStaysInBounds(t *testing.T) {
	e := newTestEngine(t)
	w := prepareDirectSearch(t, e)

	fens := []string{
		gm.Startpos,
		"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1",
		"8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1",
	}
	for _, fen := range fens {
		p := newPosition(gm.ParseFen(fen), nil)
		v := e.search(w, &p, -valueInfinite, valueInfinite, 4*onePly, 1, true, moveNone)
		if v < -valueInfinite || v > valueInfinite {
			t.Fatalf("%s: value %d out of bounds", fen, v)
		}
	}
}

func TestRepeatingLineScoresDraw(t *testing.T) {
	e := newTestEngine(t)
	w := prepareDirectSearch(t, e)

	// Root with the knight-shuffle position already on the board twice;
	// repeating it once more is an immediate draw inside the search.
	p := newPosition(gm.ParseFen(gm.Startpos), nil)
	applyUCIMoves(t, &p, "g1f3", "b8c6", "f3g1", "c6b8")

	v := e.search(w, &p, -valueInfinite, valueInfinite, onePly, 1, true, moveNone)
	if v != valueDraw {
		t.Fatalf("repetition node = %d, want draw", v)
	}
}
