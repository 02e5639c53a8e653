package engine

import "testing"

func TestMateScoreSymmetry(t *testing.T) {
	for _, ply := range []int{0, 1, 5, 42, plyMax} {
		if mateIn(ply)+matedIn(ply) != 0 {
			t.Fatalf("mateIn(%d)+matedIn(%d) = %d, want 0", ply, ply, mateIn(ply)+matedIn(ply))
		}
	}
}

func TestValueToFromTTRoundTrip(t *testing.T) {
	cases := []struct {
		v   Value
		ply int
	}{
		{100, 3},
		{-250, 7},
		{mateIn(8), 4},
		{matedIn(12), 9},
		{valueDraw, 0},
	}
	for _, tc := range cases {
		stored := valueToTT(tc.v, tc.ply)
		if got := valueFromTT(stored, tc.ply); got != tc.v {
			t.Fatalf("round trip of %d at ply %d: got %d", tc.v, tc.ply, got)
		}
	}
}

func TestValueString(t *testing.T) {
	if got := valueString(mateIn(1)); got != "mate 1" {
		t.Fatalf("mateIn(1): got %q", got)
	}
	if got := valueString(mateIn(3)); got != "mate 2" {
		t.Fatalf("mateIn(3): got %q", got)
	}
	if got := valueString(matedIn(2)); got != "mate -1" {
		t.Fatalf("matedIn(2): got %q", got)
	}
	if got := valueString(42); got != "cp 42" {
		t.Fatalf("cp: got %q", got)
	}
}

func TestValueIsMate(t *testing.T) {
	if valueIsMate(100) {
		t.Fatal("100 flagged as mate score")
	}
	if !valueIsMate(mateIn(10)) || !valueIsMate(matedIn(10)) {
		t.Fatal("mate scores not recognized")
	}
}
