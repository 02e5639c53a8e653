package engine

import (
	"testing"

	"github.com/dylhunn/dragontoothmg"

	gm "github.com/Oliverans/GooseEngineMG/goosemg"
)

// The search trusts the goosemg position module completely, so its move
// generation is cross-checked against an independent generator.
func TestMovegenMatchesDragontoothOracle(t *testing.T) {
	fens := []string{
		gm.Startpos,
		kiwipeteFEN,
		"8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1",
	}
	for _, fen := range fens {
		board, err := gm.ParseFEN(fen)
		if err != nil {
			t.Fatalf("goosemg ParseFEN(%s): %v", fen, err)
		}
		oracle := dragontoothmg.ParseFen(fen)
		for depth := 1; depth <= 3; depth++ {
			got := gm.Perft(board, depth)
			want := dragontoothmg.Perft(&oracle, depth)
			if got != uint64(want) {
				t.Fatalf("%s: perft(%d) = %d, oracle says %d", fen, depth, got, want)
			}
		}
	}
}
