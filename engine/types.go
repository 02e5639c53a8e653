package engine

import gm "github.com/Oliverans/GooseEngineMG/goosemg"

// =============================================================================
// SCORE CONSTANTS
// =============================================================================

// Value is a centipawn-scaled search score.
type Value int32

const (
	valueDraw     Value = 0
	valueKnownWin Value = 15000
	valueMate     Value = 30000
	valueInfinite Value = 30001
	valueNone     Value = 30002
)

// mateIn returns the score for giving mate in ply halfmoves.
func mateIn(ply int) Value { return valueMate - Value(ply) }

// matedIn returns the score for being mated in ply halfmoves.
func matedIn(ply int) Value { return -valueMate + Value(ply) }

func valueIsMate(v Value) bool {
	return v <= matedIn(plyMax) || v >= mateIn(plyMax)
}

// valueToTT adjusts a mate score so it is stored relative to the node it
// is stored from, rather than relative to the root.
func valueToTT(v Value, ply int) Value {
	if v >= mateIn(plyMax) {
		return v + Value(ply)
	}
	if v <= matedIn(plyMax) {
		return v - Value(ply)
	}
	return v
}

// valueFromTT is the inverse of valueToTT.
func valueFromTT(v Value, ply int) Value {
	if v == valueNone {
		return valueNone
	}
	if v >= mateIn(plyMax) {
		return v - Value(ply)
	}
	if v <= matedIn(plyMax) {
		return v + Value(ply)
	}
	return v
}

// =============================================================================
// DEPTH
// =============================================================================

// Depth is scaled by onePly so extensions can be fractional.
type Depth int32

const (
	onePly    Depth = 2
	depthZero Depth = 0

	// Depths used to stamp quiescence and eval-only TT entries.
	depthQSChecks   Depth = 0
	depthQSNoChecks Depth = -1 * onePly
	depthNone       Depth = -127 * onePly
)

const (
	plyMax      = 100
	plyMaxPlus2 = plyMax + 2
)

// Distinguished moves. The zero Move doubles as "no move" in goosemg; the
// null move is given an otherwise impossible encoding (a1 to a1 with a
// flag) purely as a marker inside the search stack.
const moveNone gm.Move = 0

var moveNull = gm.NewMove(0, 0, gm.NoPiece, gm.NoPiece, gm.NoPiece, gm.FlagCastle)

// =============================================================================
// SMALL HELPERS
// =============================================================================

func minValue(x, y Value) Value {
	if x < y {
		return x
	}
	return y
}

func maxValue(x, y Value) Value {
	if x > y {
		return x
	}
	return y
}

func absValue(x Value) Value {
	if x < 0 {
		return -x
	}
	return x
}

func minDepth(x, y Depth) Depth {
	if x < y {
		return x
	}
	return y
}

// Min returns the smaller of x or y.
func Min(x, y int) int {
	if x < y {
		return x
	}
	return y
}

// Max returns the larger of x or y.
func Max(x, y int) int {
	if x > y {
		return x
	}
	return y
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// isCaptureOrPromotion reports whether the move takes a piece (including en
// passant) or promotes.
func isCaptureOrPromotion(m gm.Move) bool {
	return m.CapturedPiece() != gm.NoPiece ||
		m.PromotionPiece() != gm.NoPiece ||
		m.Flags() == gm.FlagEnPassant
}

func isCapture(m gm.Move) bool {
	return m.CapturedPiece() != gm.NoPiece || m.Flags() == gm.FlagEnPassant
}

func isCastle(m gm.Move) bool {
	return m.Flags() == gm.FlagCastle && m.MovedPiece().Type() == gm.PieceTypeKing
}

func isPromotion(m gm.Move) bool {
	return m.PromotionPiece() != gm.NoPiece
}

func opposite(c gm.Color) gm.Color {
	if c == gm.White {
		return gm.Black
	}
	return gm.White
}

// relativeRank returns the rank of sq from c's point of view, 0-7.
func relativeRank(c gm.Color, sq gm.Square) int {
	r := int(sq) / 8
	if c == gm.Black {
		r = 7 - r
	}
	return r
}
