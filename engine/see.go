package engine

import (
	"math/bits"

	gm "github.com/Oliverans/GooseEngineMG/goosemg"
)

// SeePieceValue holds the material scale used by the static exchange
// evaluator. The king value just has to beat any possible exchange total.
var SeePieceValue = [7]int{
	gm.PieceTypePawn:   100,
	gm.PieceTypeKnight: 300,
	gm.PieceTypeBishop: 300,
	gm.PieceTypeRook:   500,
	gm.PieceTypeQueen:  900,
	gm.PieceTypeKing:   5000,
}

// leastValuableAttacker finds the cheapest piece of color c attacking sq
// given the current occupancy. Sliders are recomputed against occ, so x-ray
// attackers appear as blockers are removed.
func leastValuableAttacker(b *gm.Board, c gm.Color, sq gm.Square, occ uint64) (gm.Square, gm.PieceType, bool) {
	pieces := b.Bitboards(c)

	if m := PawnCaptures[int(opposite(c))][sq] & pieces.Pawns & occ; m != 0 {
		return gm.Square(bits.TrailingZeros64(m)), gm.PieceTypePawn, true
	}
	if m := KnightMoves[sq] & pieces.Knights & occ; m != 0 {
		return gm.Square(bits.TrailingZeros64(m)), gm.PieceTypeKnight, true
	}
	bishopRays := gm.CalculateBishopMoveBitboard(uint8(sq), occ)
	if m := bishopRays & pieces.Bishops & occ; m != 0 {
		return gm.Square(bits.TrailingZeros64(m)), gm.PieceTypeBishop, true
	}
	rookRays := gm.CalculateRookMoveBitboard(uint8(sq), occ)
	if m := rookRays & pieces.Rooks & occ; m != 0 {
		return gm.Square(bits.TrailingZeros64(m)), gm.PieceTypeRook, true
	}
	if m := (bishopRays | rookRays) & pieces.Queens & occ; m != 0 {
		return gm.Square(bits.TrailingZeros64(m)), gm.PieceTypeQueen, true
	}
	if m := KingMoves[sq] & pieces.Kings & occ; m != 0 {
		return gm.Square(bits.TrailingZeros64(m)), gm.PieceTypeKing, true
	}
	return 0, gm.PieceTypeNone, false
}

// see returns the static exchange evaluation of the move: the material
// balance of the capture sequence on the destination square assuming both
// sides always recapture with their cheapest attacker and may stand pat.
func see(b *gm.Board, m gm.Move) int {
	to := m.To()
	occ := b.AllOccupancy()

	var gain [32]int
	targetType := m.CapturedPiece().Type()
	if m.Flags() == gm.FlagEnPassant {
		targetType = gm.PieceTypePawn
		if b.SideToMove() == gm.White {
			occ &^= PositionBB[int(to)-8]
		} else {
			occ &^= PositionBB[int(to)+8]
		}
	}
	gain[0] = SeePieceValue[targetType]
	if isPromotion(m) {
		gain[0] += SeePieceValue[m.PromotionPiece().Type()] - SeePieceValue[gm.PieceTypePawn]
	}

	attackerType := m.MovedPiece().Type()
	occ &^= PositionBB[m.From()]
	stm := opposite(b.SideToMove())

	d := 0
	for {
		d++
		gain[d] = SeePieceValue[attackerType] - gain[d-1]

		// Neither continuing nor standing pat can recover the exchange.
		if Max(-gain[d-1], gain[d]) < 0 {
			break
		}

		sq, pt, ok := leastValuableAttacker(b, stm, to, occ)
		if !ok {
			break
		}
		occ &^= PositionBB[sq]
		attackerType = pt
		stm = opposite(stm)
		if d >= len(gain)-2 {
			break
		}
	}

	for d--; d > 0; d-- {
		gain[d-1] = -Max(-gain[d-1], gain[d])
	}
	return gain[0]
}

// seeSign is a cheaper query when only the sign matters. Capturing a piece
// at least as valuable as the mover can never lose material.
func seeSign(b *gm.Board, m gm.Move) int {
	if SeePieceValue[m.CapturedPiece().Type()] >= SeePieceValue[m.MovedPiece().Type()] &&
		m.CapturedPiece() != gm.NoPiece {
		return 1
	}
	return see(b, m)
}
