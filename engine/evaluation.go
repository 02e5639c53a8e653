package engine

import (
	"math/bits"

	gm "github.com/Oliverans/GooseEngineMG/goosemg"
)

// The evaluation is deliberately small: tapered material plus piece-square
// tables, pawn structure out of a per-worker cache, bishop pair and tempo.
// The search only depends on the evaluate() entry point and on the material
// helpers below, so the whole function can be swapped out without touching
// the search.

// FlipView mirrors a square vertically; black reads the tables through it.
var FlipView = [64]int{
	56, 57, 58, 59, 60, 61, 62, 63,
	48, 49, 50, 51, 52, 53, 54, 55,
	40, 41, 42, 43, 44, 45, 46, 47,
	32, 33, 34, 35, 36, 37, 38, 39,
	24, 25, 26, 27, 28, 29, 30, 31,
	16, 17, 18, 19, 20, 21, 22, 23,
	8, 9, 10, 11, 12, 13, 14, 15,
	0, 1, 2, 3, 4, 5, 6, 7,
}

var pieceValueMG = [7]Value{
	gm.PieceTypePawn:   84,
	gm.PieceTypeKnight: 337,
	gm.PieceTypeBishop: 365,
	gm.PieceTypeRook:   477,
	gm.PieceTypeQueen:  1025,
}

var pieceValueEG = [7]Value{
	gm.PieceTypePawn:   100,
	gm.PieceTypeKnight: 281,
	gm.PieceTypeBishop: 297,
	gm.PieceTypeRook:   512,
	gm.PieceTypeQueen:  936,
}

// PawnValueMidgame is referenced by the null-move reduction and the deep
// checks margin in quiescence.
const PawnValueMidgame Value = 84

const (
	pawnPhase   = 0
	knightPhase = 1
	bishopPhase = 1
	rookPhase   = 2
	queenPhase  = 4
	totalPhase  = pawnPhase*16 + knightPhase*4 + bishopPhase*4 + rookPhase*4 + queenPhase*2
)

var psqtMG = [7][64]Value{
	gm.PieceTypePawn: {
		0, 0, 0, 0, 0, 0, 0, 0,
		-35, -1, -20, -23, -15, 24, 38, -22,
		-26, -4, -4, -10, 3, 3, 33, -12,
		-27, -2, -5, 12, 17, 6, 10, -25,
		-14, 13, 6, 21, 23, 12, 17, -23,
		-6, 7, 26, 31, 65, 56, 25, -20,
		98, 134, 61, 95, 68, 126, 34, -11,
		0, 0, 0, 0, 0, 0, 0, 0,
	},
	gm.PieceTypeKnight: {
		-105, -21, -58, -33, -17, -28, -19, -23,
		-29, -53, -12, -3, -1, 18, -14, -19,
		-23, -9, 12, 10, 19, 17, 25, -16,
		-13, 4, 16, 13, 28, 19, 21, -8,
		-9, 17, 19, 53, 37, 69, 18, 22,
		-47, 60, 37, 65, 84, 129, 73, 44,
		-73, -41, 72, 36, 23, 62, 7, -17,
		-167, -89, -34, -49, 61, -97, -15, -107,
	},
	gm.PieceTypeBishop: {
		-33, -3, -14, -21, -13, -12, -39, -21,
		4, 15, 16, 0, 7, 21, 33, 1,
		0, 15, 15, 15, 14, 27, 18, 10,
		-6, 13, 13, 26, 34, 12, 10, 4,
		-4, 5, 19, 50, 37, 37, 7, -2,
		-16, 37, 43, 40, 35, 50, 37, -2,
		-26, 16, -18, -13, 30, 59, 18, -47,
		-29, 4, -82, -37, -25, -42, 7, -8,
	},
	gm.PieceTypeRook: {
		-19, -13, 1, 17, 16, 7, -37, -26,
		-44, -16, -20, -9, -1, 11, -6, -71,
		-45, -25, -16, -17, 3, 0, -5, -33,
		-36, -26, -12, -1, 9, -7, 6, -23,
		-24, -11, 7, 26, 24, 35, -8, -20,
		-5, 19, 26, 36, 17, 45, 61, 16,
		27, 32, 58, 62, 80, 67, 26, 44,
		32, 42, 32, 51, 63, 9, 31, 43,
	},
	gm.PieceTypeQueen: {
		-1, -18, -9, 10, -15, -25, -31, -50,
		-35, -8, 11, 2, 8, 15, -3, 1,
		-14, 2, -11, -2, -5, 2, 14, 5,
		-9, -26, -9, -10, -2, -4, 3, -3,
		-27, -27, -16, -16, -1, 17, -2, 1,
		-13, -17, 7, 8, 29, 56, 47, 57,
		-24, -39, -5, 1, -16, 57, 28, 54,
		-28, 0, 29, 12, 59, 44, 43, 45,
	},
	gm.PieceTypeKing: {
		-15, 36, 12, -54, 8, -28, 24, 14,
		1, 7, -8, -64, -43, -16, 9, 8,
		-14, -14, -22, -46, -44, -30, -15, -27,
		-49, -1, -27, -39, -46, -44, -33, -51,
		-17, -20, -12, -27, -30, -25, -14, -36,
		-9, 24, 2, -16, -20, 6, 22, -22,
		29, -1, -20, -7, -8, -4, -38, -29,
		-65, 23, 16, -15, -56, -34, 2, 13,
	},
}

var psqtEG = [7][64]Value{
	gm.PieceTypePawn: {
		0, 0, 0, 0, 0, 0, 0, 0,
		13, 8, 8, 10, 13, 0, 2, -7,
		4, 7, -6, 1, 0, -5, -1, -8,
		13, 9, -3, -7, -7, -8, 3, -1,
		32, 24, 13, 5, -2, 4, 17, 17,
		94, 100, 85, 67, 56, 53, 82, 84,
		178, 173, 158, 134, 147, 132, 165, 187,
		0, 0, 0, 0, 0, 0, 0, 0,
	},
	gm.PieceTypeKnight: {
		-29, -51, -23, -15, -22, -18, -50, -64,
		-42, -20, -10, -5, -2, -20, -23, -44,
		-23, -3, -1, 15, 10, -3, -20, -22,
		-18, -6, 16, 25, 16, 17, 4, -18,
		-17, 3, 22, 22, 22, 11, 8, -18,
		-24, -20, 10, 9, -1, -9, -19, -41,
		-25, -8, -25, -2, -9, -25, -24, -52,
		-58, -38, -13, -28, -31, -27, -63, -99,
	},
	gm.PieceTypeBishop: {
		-23, -9, -23, -5, -9, -16, -5, -17,
		-14, -18, -7, -1, 4, -9, -15, -27,
		-12, -3, 8, 10, 13, 3, -7, -15,
		-6, 3, 13, 19, 7, 10, -3, -9,
		-3, 9, 12, 9, 14, 10, 3, 2,
		2, -8, 0, -1, -2, 6, 0, 4,
		-8, -4, 7, -12, -3, -13, -4, -14,
		-14, -21, -11, -8, -7, -9, -17, -24,
	},
	gm.PieceTypeRook: {
		-9, 2, 3, -1, -5, -13, 4, -20,
		-6, -6, 0, 2, -9, -9, -11, -3,
		-4, 0, -5, -1, -7, -12, -8, -16,
		3, 5, 8, 4, -5, -6, -8, -11,
		4, 3, 13, 1, 2, 1, -1, 2,
		7, 7, 7, 5, 4, -3, -5, -3,
		11, 13, 13, 11, -3, 3, 8, 3,
		13, 10, 18, 15, 12, 12, 8, 5,
	},
	gm.PieceTypeQueen: {
		-33, -28, -22, -43, -5, -32, -20, -41,
		-22, -23, -30, -16, -16, -23, -36, -32,
		-16, -27, 15, 6, 9, 17, 10, 5,
		-18, 28, 19, 47, 31, 34, 39, 23,
		3, 22, 24, 45, 57, 40, 57, 36,
		-20, 6, 9, 49, 47, 35, 19, 9,
		-17, 20, 32, 41, 58, 25, 30, 0,
		-9, 22, 22, 27, 27, 19, 10, 20,
	},
	gm.PieceTypeKing: {
		-53, -34, -21, -11, -28, -14, -24, -43,
		-27, -11, 4, 13, 14, 4, -5, -17,
		-19, -3, 11, 21, 23, 16, 7, -9,
		-18, -4, 21, 24, 27, 23, 9, -11,
		-8, 22, 24, 27, 26, 33, 26, 3,
		10, 17, 23, 15, 20, 45, 44, 13,
		-12, 17, 14, 17, 17, 38, 23, 11,
		-74, -35, -18, -18, -11, 15, 4, -17,
	},
}

// Pawn structure terms (midgame, endgame).
var isolatedPawnPenalty = [2]Value{12, 18}
var doubledPawnPenalty = [2]Value{10, 22}
var passedPawnBonus = [8][2]Value{
	{0, 0}, {4, 10}, {8, 18}, {14, 30}, {28, 52}, {52, 90}, {90, 140}, {0, 0},
}

var bishopPairBonus = [2]Value{24, 48}
var tempoBonus Value = 12

// =============================================================================
// PAWN HASH TABLE (per worker, never shared)
// =============================================================================

const pawnTableSize = 1 << 14

type pawnEntry struct {
	key uint64
	mg  Value
	eg  Value
}

type pawnTable struct {
	entries [pawnTableSize]pawnEntry
}

func pawnKey(white, black uint64) uint64 {
	x := white ^ bits.RotateLeft64(black, 31)
	x ^= x >> 30
	x *= 0xbf58476d1ce4e5b9
	x ^= x >> 27
	x *= 0x94d049bb133111eb
	x ^= x >> 31
	return x
}

// probe returns the cached pawn-structure score for the position, computing
// and storing it on a miss. Scores are from white's point of view.
func (pt *pawnTable) probe(b *gm.Board) (mg, eg Value) {
	white := b.WhiteBitboards().Pawns
	black := b.BlackBitboards().Pawns
	key := pawnKey(white, black)
	e := &pt.entries[key&(pawnTableSize-1)]
	if e.key == key && key != 0 {
		return e.mg, e.eg
	}
	mg, eg = pawnStructure(b, white, black)
	e.key = key
	e.mg = mg
	e.eg = eg
	return mg, eg
}

func pawnStructure(b *gm.Board, white, black uint64) (mg, eg Value) {
	for bb := white; bb != 0; {
		sq := bits.TrailingZeros64(bb)
		bb &= bb - 1
		if adjacentFilesMask[sq]&white == 0 {
			mg -= isolatedPawnPenalty[0]
			eg -= isolatedPawnPenalty[1]
		}
		if fileOfSquare[sq]&white&^PositionBB[sq] != 0 {
			mg -= doubledPawnPenalty[0]
			eg -= doubledPawnPenalty[1]
		}
		if passedPawnMask[0][sq]&black == 0 {
			r := sq / 8
			mg += passedPawnBonus[r][0]
			eg += passedPawnBonus[r][1]
		}
	}
	for bb := black; bb != 0; {
		sq := bits.TrailingZeros64(bb)
		bb &= bb - 1
		if adjacentFilesMask[sq]&black == 0 {
			mg += isolatedPawnPenalty[0]
			eg += isolatedPawnPenalty[1]
		}
		if fileOfSquare[sq]&black&^PositionBB[sq] != 0 {
			mg += doubledPawnPenalty[0]
			eg += doubledPawnPenalty[1]
		}
		if passedPawnMask[1][sq]&white == 0 {
			r := 7 - sq/8
			mg -= passedPawnBonus[r][0]
			eg -= passedPawnBonus[r][1]
		}
	}
	return mg, eg
}

// =============================================================================
// EVALUATION
// =============================================================================

func piecePhase(b *gm.Board) int {
	w := b.WhiteBitboards()
	bl := b.BlackBitboards()
	return knightPhase*popcount(w.Knights|bl.Knights) +
		bishopPhase*popcount(w.Bishops|bl.Bishops) +
		rookPhase*popcount(w.Rooks|bl.Rooks) +
		queenPhase*popcount(w.Queens|bl.Queens)
}

// nonPawnMaterial returns the midgame material value of c's pieces, pawns
// and king excluded. The null-move guard keys off this.
func nonPawnMaterial(b *gm.Board, c gm.Color) Value {
	p := b.Bitboards(c)
	return pieceValueMG[gm.PieceTypeKnight]*Value(popcount(p.Knights)) +
		pieceValueMG[gm.PieceTypeBishop]*Value(popcount(p.Bishops)) +
		pieceValueMG[gm.PieceTypeRook]*Value(popcount(p.Rooks)) +
		pieceValueMG[gm.PieceTypeQueen]*Value(popcount(p.Queens))
}

func sideScore(pieces gm.Bitboards, flip bool) (mg, eg Value) {
	for pt := gm.PieceTypePawn; pt <= gm.PieceTypeKing; pt++ {
		var bb uint64
		switch pt {
		case gm.PieceTypePawn:
			bb = pieces.Pawns
		case gm.PieceTypeKnight:
			bb = pieces.Knights
		case gm.PieceTypeBishop:
			bb = pieces.Bishops
		case gm.PieceTypeRook:
			bb = pieces.Rooks
		case gm.PieceTypeQueen:
			bb = pieces.Queens
		case gm.PieceTypeKing:
			bb = pieces.Kings
		}
		for ; bb != 0; bb &= bb - 1 {
			sq := bits.TrailingZeros64(bb)
			if flip {
				sq = FlipView[sq]
			}
			mg += pieceValueMG[pt] + psqtMG[pt][sq]
			eg += pieceValueEG[pt] + psqtEG[pt][sq]
		}
	}
	if popcount(pieces.Bishops) >= 2 {
		mg += bishopPairBonus[0]
		eg += bishopPairBonus[1]
	}
	return mg, eg
}

// evaluate scores the position from the side to move's point of view. The
// pawn-structure component comes out of the caller's private cache.
func evaluate(b *gm.Board, pt *pawnTable) Value {
	wMG, wEG := sideScore(b.WhiteBitboards(), false)
	bMG, bEG := sideScore(b.BlackBitboards(), true)

	mg := wMG - bMG
	eg := wEG - bEG

	pawnMG, pawnEG := pt.probe(b)
	mg += pawnMG
	eg += pawnEG

	phase := piecePhase(b)
	if phase > totalPhase {
		phase = totalPhase
	}
	score := (mg*Value(phase) + eg*Value(totalPhase-phase)) / totalPhase

	if b.SideToMove() == gm.Black {
		score = -score
	}
	return score + tempoBonus
}
