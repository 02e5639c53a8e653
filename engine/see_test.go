package engine

import (
	"testing"

	gm "github.com/Oliverans/GooseEngineMG/goosemg"
)

func TestSEEUndefendedPawn(t *testing.T) {
	board, err := gm.ParseFEN("7k/8/8/3p4/8/8/8/3R3K w - - 0 1")
	if err != nil {
		t.Fatalf("parse FEN: %v", err)
	}
	move := findMoveByString(t, board, "d1d5")
	if got := see(board, move); got != 100 {
		t.Fatalf("Rxd5 on a free pawn: SEE = %d, want 100", got)
	}
}

func TestSEELosingRookForPawn(t *testing.T) {
	board, err := gm.ParseFEN("7k/2p5/3p4/8/8/8/8/3R3K w - - 0 1")
	if err != nil {
		t.Fatalf("parse FEN: %v", err)
	}
	move := findMoveByString(t, board, "d1d6")
	if got := see(board, move); got != -400 {
		t.Fatalf("Rxd6 into cxd6: SEE = %d, want -400", got)
	}
}

func TestSEEEqualPawnTrade(t *testing.T) {
	board, err := gm.ParseFEN("7k/8/4p3/3p4/4P3/8/8/7K w - - 0 1")
	if err != nil {
		t.Fatalf("parse FEN: %v", err)
	}
	move := findMoveByString(t, board, "e4d5")
	if got := see(board, move); got != 0 {
		t.Fatalf("exd5 exd5: SEE = %d, want 0", got)
	}
}

func TestSEESignFastPathOnGoodCapture(t *testing.T) {
	board, err := gm.ParseFEN("7k/8/8/3q4/8/8/8/3R3K w - - 0 1")
	if err != nil {
		t.Fatalf("parse FEN: %v", err)
	}
	move := findMoveByString(t, board, "d1d5")
	if got := seeSign(board, move); got < 0 {
		t.Fatalf("RxQ must not be negative, got %d", got)
	}
}
