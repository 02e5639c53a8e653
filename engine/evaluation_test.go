package engine

import (
	"testing"

	gm "github.com/Oliverans/GooseEngineMG/goosemg"
)

func TestEvaluateSymmetricPosition(t *testing.T) {
	var pt pawnTable

	white := gm.ParseFen(gm.Startpos)
	black := gm.ParseFen("rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR b KQkq - 0 1")

	wScore := evaluate(&white, &pt)
	bScore := evaluate(&black, &pt)
	if wScore != bScore {
		t.Fatalf("mirror-symmetric position evaluates differently: %d vs %d", wScore, bScore)
	}
}

func TestNonPawnMaterialStartpos(t *testing.T) {
	board := gm.ParseFen(gm.Startpos)
	want := 2*pieceValueMG[gm.PieceTypeKnight] +
		2*pieceValueMG[gm.PieceTypeBishop] +
		2*pieceValueMG[gm.PieceTypeRook] +
		pieceValueMG[gm.PieceTypeQueen]
	for _, c := range []gm.Color{gm.White, gm.Black} {
		if got := nonPawnMaterial(&board, c); got != want {
			t.Fatalf("nonPawnMaterial(%v) = %d, want %d", c, got, want)
		}
	}
}

func TestNullMoveGuardInPawnEndgame(t *testing.T) {
	board, err := gm.ParseFEN("7k/4p3/8/8/8/8/4P3/7K w - - 0 1")
	if err != nil {
		t.Fatalf("parse FEN: %v", err)
	}
	if okToDoNullMove(board) {
		t.Fatal("null move allowed with only pawns on the board")
	}
}

func TestPawnCacheHitReturnsSameScore(t *testing.T) {
	var pt pawnTable
	board := gm.ParseFen(gm.Startpos)

	mg1, eg1 := pt.probe(&board)
	mg2, eg2 := pt.probe(&board)
	if mg1 != mg2 || eg1 != eg2 {
		t.Fatalf("cache probe not stable: (%d,%d) then (%d,%d)", mg1, eg1, mg2, eg2)
	}
}

func TestPassedPawnDetection(t *testing.T) {
	board, err := gm.ParseFEN("7k/8/8/3P4/8/8/2p5/7K w - - 0 1")
	if err != nil {
		t.Fatalf("parse FEN: %v", err)
	}
	if !pawnIsPassed(board, gm.White, gm.Square(35)) { // d5
		t.Fatal("d5 pawn should be passed")
	}
	if !pawnIsPassed(board, gm.Black, gm.Square(10)) { // c2
		t.Fatal("c2 pawn should be passed")
	}
}

func TestMaterialImbalanceShowsInEval(t *testing.T) {
	var pt pawnTable
	board, err := gm.ParseFEN("7k/8/8/8/8/8/8/Q6K w - - 0 1")
	if err != nil {
		t.Fatalf("parse FEN: %v", err)
	}
	if v := evaluate(board, &pt); v < pieceValueEG[gm.PieceTypeQueen]/2 {
		t.Fatalf("queen-up eval suspiciously low: %d", v)
	}
}
