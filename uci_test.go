package main

import (
	"testing"

	"gander/engine"
)

func TestParseGoFields(t *testing.T) {
	l := parseGo([]string{
		"wtime", "60000", "btime", "55000", "winc", "1000", "binc", "900",
		"movestogo", "32", "depth", "12", "nodes", "500000", "movetime", "250",
	})
	if l.WTime != 60000 || l.BTime != 55000 || l.WInc != 1000 || l.BInc != 900 {
		t.Fatalf("clock fields wrong: %+v", l)
	}
	if l.MovesToGo != 32 || l.Depth != 12 || l.Nodes != 500000 || l.MoveTime != 250 {
		t.Fatalf("limit fields wrong: %+v", l)
	}
}

func TestParseGoSearchmovesAndFlags(t *testing.T) {
	l := parseGo([]string{"infinite", "searchmoves", "e2e4", "d2d4", "movetime", "100"})
	if !l.Infinite {
		t.Fatal("infinite flag lost")
	}
	if len(l.SearchMoves) != 2 || l.SearchMoves[0] != "e2e4" || l.SearchMoves[1] != "d2d4" {
		t.Fatalf("searchmoves = %v", l.SearchMoves)
	}
	if l.MoveTime != 100 {
		t.Fatalf("movetime after searchmoves = %d", l.MoveTime)
	}
}

func TestParseGoPonder(t *testing.T) {
	l := parseGo([]string{"ponder", "wtime", "30000", "btime", "30000"})
	if !l.Ponder {
		t.Fatal("ponder flag lost")
	}
}

func TestParseSetOptionSpacedNames(t *testing.T) {
	name, value, ok := parseSetOption([]string{"name", "Minimum", "Split", "Depth", "value", "6"})
	if !ok || name != "Minimum Split Depth" || value != "6" {
		t.Fatalf("got %q %q %v", name, value, ok)
	}

	// Buttons have no value token and take the implicit "true".
	name, value, ok = parseSetOption([]string{"name", "Clear", "Hash"})
	if !ok || name != "Clear Hash" || value != "true" {
		t.Fatalf("button parse: %q %q %v", name, value, ok)
	}

	if _, _, ok := parseSetOption([]string{"value", "6"}); ok {
		t.Fatal("missing name accepted")
	}
}

func TestHandlePositionStartposWithMoves(t *testing.T) {
	eng := engine.NewEngine()
	defer eng.Quit()

	if err := handlePosition(eng, []string{"startpos", "moves", "e2e4", "c7c5"}); err != nil {
		t.Fatal(err)
	}
	board := eng.Board()
	fen := board.ToFen()
	want := "rnbqkbnr/pp1ppppp/8/2p5/4P3/8/PPPP1PPP/RNBQKBNR w KQkq"
	if len(fen) < len(want) || fen[:len(want)] != want {
		t.Fatalf("fen after moves = %s", fen)
	}
}

func TestHandlePositionRejectsIllegalMove(t *testing.T) {
	eng := engine.NewEngine()
	defer eng.Quit()

	if err := handlePosition(eng, []string{"startpos", "moves", "e2e5"}); err == nil {
		t.Fatal("illegal move accepted")
	}
}

func TestUnknownOptionDiagnosed(t *testing.T) {
	eng := engine.NewEngine()
	defer eng.Quit()

	if err := eng.SetOption("Frobnicate", "7"); err == nil {
		t.Fatal("unknown option accepted")
	}
	if err := eng.SetOption("MultiPV", "3"); err != nil {
		t.Fatalf("known option rejected: %v", err)
	}
}
