package engine

import (
	"math/bits"

	gm "github.com/Oliverans/GooseEngineMG/goosemg"
)

const (
	bitboardFileA uint64 = 0x0101010101010101
	bitboardFileH uint64 = 0x8080808080808080
)

// PositionBB maps a square index to its single-bit bitboard. Index 64 is a
// guard entry so lookups with NoSquare-adjacent arithmetic stay in bounds.
var PositionBB [65]uint64

var KnightMoves [64]uint64
var KingMoves [64]uint64

// PawnCaptures[color][square]: squares a pawn of that color attacks from square.
var PawnCaptures [2][64]uint64

// squaresBetween[a][b] holds the open squares strictly between a and b when
// they share a rank, file or diagonal, and 0 otherwise.
var squaresBetween [64][64]uint64

// passedPawnMask[color][square]: the front span plus adjacent-file front span;
// a pawn is passed when no enemy pawn sits in this mask.
var passedPawnMask [2][64]uint64

var fileOfSquare [64]uint64
var adjacentFilesMask [64]uint64

func init() {
	initBitboards()
	initReductionTables()
	initFutilityMargins()
}

func initBitboards() {
	for sq := 0; sq < 64; sq++ {
		PositionBB[sq] = uint64(1) << uint(sq)
	}

	for sq := 0; sq < 64; sq++ {
		sqBB := PositionBB[sq]
		file := sq % 8
		rank := sq / 8

		fileOfSquare[sq] = bitboardFileA << uint(file)
		adj := uint64(0)
		if file > 0 {
			adj |= bitboardFileA << uint(file-1)
		}
		if file < 7 {
			adj |= bitboardFileA << uint(file+1)
		}
		adjacentFilesMask[sq] = adj

		// King ring
		top := sqBB << 8
		bottom := sqBB >> 8
		left := (sqBB >> 1) & ^bitboardFileH
		right := (sqBB << 1) & ^bitboardFileA
		topLeft := (sqBB << 7) & ^bitboardFileH
		topRight := (sqBB << 9) & ^bitboardFileA
		bottomLeft := (sqBB >> 9) & ^bitboardFileH
		bottomRight := (sqBB >> 7) & ^bitboardFileA
		KingMoves[sq] = top | bottom | left | right | topLeft | topRight | bottomLeft | bottomRight

		// Knight jumps
		n := uint64(0)
		jumps := [8][2]int{{1, 2}, {2, 1}, {2, -1}, {1, -2}, {-1, -2}, {-2, -1}, {-2, 1}, {-1, 2}}
		for _, j := range jumps {
			f, r := file+j[0], rank+j[1]
			if f >= 0 && f < 8 && r >= 0 && r < 8 {
				n |= PositionBB[r*8+f]
			}
		}
		KnightMoves[sq] = n

		// Pawn captures
		PawnCaptures[0][sq] = topLeft | topRight       // white
		PawnCaptures[1][sq] = bottomLeft | bottomRight // black

		// Passed pawn masks: all squares ahead on own and adjacent files
		front := uint64(0)
		for r := rank + 1; r < 8; r++ {
			front |= (fileOfSquare[sq] | adj) & (uint64(0xFF) << uint(r*8))
		}
		passedPawnMask[0][sq] = front
		back := uint64(0)
		for r := rank - 1; r >= 0; r-- {
			back |= (fileOfSquare[sq] | adj) & (uint64(0xFF) << uint(r*8))
		}
		passedPawnMask[1][sq] = back
	}

	for a := 0; a < 64; a++ {
		for b := 0; b < 64; b++ {
			squaresBetween[a][b] = computeBetween(a, b)
		}
	}
}

func computeBetween(a, b int) uint64 {
	if a == b {
		return 0
	}
	af, ar := a%8, a/8
	bf, br := b%8, b/8
	df, dr := sign(bf-af), sign(br-ar)
	aligned := af == bf || ar == br || abs(bf-af) == abs(br-ar)
	if !aligned {
		return 0
	}
	mask := uint64(0)
	f, r := af+df, ar+dr
	for f != bf || r != br {
		mask |= PositionBB[r*8+f]
		f += df
		r += dr
	}
	return mask
}

func sign(x int) int {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	}
	return 0
}

// attacksFromPiece returns the squares attacked by a piece of the given type
// and color standing on sq, with the given occupancy.
func attacksFromPiece(pt gm.PieceType, c gm.Color, sq gm.Square, occ uint64) uint64 {
	switch pt {
	case gm.PieceTypePawn:
		return PawnCaptures[int(c)][sq]
	case gm.PieceTypeKnight:
		return KnightMoves[sq]
	case gm.PieceTypeBishop:
		return gm.CalculateBishopMoveBitboard(uint8(sq), occ)
	case gm.PieceTypeRook:
		return gm.CalculateRookMoveBitboard(uint8(sq), occ)
	case gm.PieceTypeQueen:
		return gm.CalculateBishopMoveBitboard(uint8(sq), occ) |
			gm.CalculateRookMoveBitboard(uint8(sq), occ)
	case gm.PieceTypeKing:
		return KingMoves[sq]
	}
	return 0
}

func isSlider(pt gm.PieceType) bool {
	return pt == gm.PieceTypeBishop || pt == gm.PieceTypeRook || pt == gm.PieceTypeQueen
}

// pawnIsPassed reports whether a pawn of color c on sq has no enemy pawn on
// its file or the adjacent files ahead of it.
func pawnIsPassed(b *gm.Board, c gm.Color, sq gm.Square) bool {
	theirPawns := b.Bitboards(opposite(c)).Pawns
	return passedPawnMask[int(c)][sq]&theirPawns == 0
}

func hasPawnOn7th(b *gm.Board, c gm.Color) bool {
	pawns := b.Bitboards(c).Pawns
	if c == gm.White {
		return pawns&(uint64(0xFF)<<48) != 0
	}
	return pawns&(uint64(0xFF)<<8) != 0
}

func popcount(bb uint64) int { return bits.OnesCount64(bb) }
