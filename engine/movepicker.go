package engine

import (
	gm "github.com/Oliverans/GooseEngineMG/goosemg"
)

// Move picker phases, in emission order. phase() reports the band of the move
// last handed out; the search's pruning decisions do not consult it.
type pickPhase int8

const (
	phaseNone pickPhase = iota
	phaseTTMove
	phaseMateKiller
	phaseGoodCapture
	phaseKiller
	phaseQuiet
	phaseBadCapture
	phaseEvasion
	phaseQCapture
	phaseQCheck
)

// Ordering bands. Each band dominates everything below it, so a single
// incremental selection sort yields the staged order.
const (
	scoreTTMove      int32 = 1 << 26
	scoreMateKiller  int32 = 1 << 25
	scoreGoodCapture int32 = 1 << 24
	scoreKiller      int32 = 1 << 23
	scoreQuietBase   int32 = 0
	scoreBadCapture  int32 = -(1 << 24)
)

type scoredMove struct {
	move  gm.Move
	score int32
	phase pickPhase
}

// movePicker hands out the moves of one node, best-guess first: TT move,
// mate killer, winning captures and promotions, killer moves, quiet moves by
// history, and losing captures last. In check it emits all evasions. The
// quiescence variant (captures, promotions, and checks near the horizon) is
// built by newQSPicker. Generation happens once up front; ordering is lazy, one
// selection step per call, so a cutoff never pays for sorting the tail.
//
// A picker is not safe for concurrent use; at split points every nextMove
// call happens under the split point's mutex.
type movePicker struct {
	moves        []scoredMove
	idx          int
	lastPhase    pickPhase
	evasionCount int
	inCheck      bool
}

// newMovePicker builds a picker for a main-search node. f carries the
// killers of this ply and may be nil (then killer ordering is skipped).
func newMovePicker(b *gm.Board, ttMove gm.Move, depth Depth, history *historyTable, f *frame) movePicker {
	var mp movePicker
	mp.inCheck = b.OurKingInCheck()

	legal := b.GenerateLegalMoves()
	if mp.inCheck {
		mp.evasionCount = len(legal)
	}
	mp.moves = make([]scoredMove, 0, len(legal))
	for _, m := range legal {
		mp.moves = append(mp.moves, scoreMove(b, m, ttMove, history, f))
	}
	return mp
}

// newQSPicker builds a quiescence picker: captures and promotions, plus
// checking moves when withChecks is set. In check it considers every evasion.
func newQSPicker(b *gm.Board, ttMove gm.Move, history *historyTable, withChecks bool) movePicker {
	var mp movePicker
	mp.inCheck = b.OurKingInCheck()

	if mp.inCheck {
		legal := b.GenerateLegalMoves()
		mp.evasionCount = len(legal)
		mp.moves = make([]scoredMove, 0, len(legal))
		for _, m := range legal {
			mp.moves = append(mp.moves, scoreMove(b, m, ttMove, history, nil))
		}
		return mp
	}

	captures := b.GenerateCaptures()
	mp.moves = make([]scoredMove, 0, len(captures)+8)
	for _, m := range captures {
		sm := scoreMove(b, m, ttMove, history, nil)
		sm.phase = phaseQCapture
		mp.moves = append(mp.moves, sm)
	}
	// Quiet queen promotions count as tactical too.
	for _, m := range b.GenerateQuiets() {
		if m.PromotionPiece().Type() == gm.PieceTypeQueen {
			sm := scoreMove(b, m, ttMove, history, nil)
			sm.phase = phaseQCapture
			mp.moves = append(mp.moves, sm)
		}
	}
	if withChecks {
		for _, m := range b.GenerateChecks() {
			if isCaptureOrPromotion(m) {
				continue // already listed
			}
			sm := scoreMove(b, m, ttMove, history, nil)
			sm.phase = phaseQCheck
			mp.moves = append(mp.moves, sm)
		}
	}
	return mp
}

func scoreMove(b *gm.Board, m gm.Move, ttMove gm.Move, history *historyTable, f *frame) scoredMove {
	switch {
	case m == ttMove && ttMove != moveNone:
		return scoredMove{m, scoreTTMove, phaseTTMove}
	case f != nil && m == f.mateKiller:
		return scoredMove{m, scoreMateKiller, phaseMateKiller}
	case isCaptureOrPromotion(m):
		s := seeSign(b, m)
		if s >= 0 || isPromotion(m) {
			victim := int32(SeePieceValue[m.CapturedPiece().Type()])
			attacker := int32(SeePieceValue[m.MovedPiece().Type()])
			return scoredMove{m, scoreGoodCapture + victim*8 - attacker/16, phaseGoodCapture}
		}
		return scoredMove{m, scoreBadCapture + int32(s), phaseBadCapture}
	case f != nil && m == f.killers[0]:
		return scoredMove{m, scoreKiller + 1, phaseKiller}
	case f != nil && m == f.killers[1]:
		return scoredMove{m, scoreKiller, phaseKiller}
	default:
		return scoredMove{m, scoreQuietBase + history.value(m.MovedPiece(), m.To()), phaseQuiet}
	}
}

// nextMove returns the next best candidate, or moveNone when exhausted.
func (mp *movePicker) nextMove() gm.Move {
	if mp.idx >= len(mp.moves) {
		return moveNone
	}
	best := mp.idx
	for i := mp.idx + 1; i < len(mp.moves); i++ {
		if mp.moves[i].score > mp.moves[best].score {
			best = i
		}
	}
	mp.moves[mp.idx], mp.moves[best] = mp.moves[best], mp.moves[mp.idx]
	sm := mp.moves[mp.idx]
	mp.idx++
	mp.lastPhase = sm.phase
	if mp.inCheck {
		mp.lastPhase = phaseEvasion
	}
	return sm.move
}

// phase reports which ordering band the last returned move came from.
func (mp *movePicker) phase() pickPhase { return mp.lastPhase }

// numberOfEvasions is valid once the node is known to be in check.
func (mp *movePicker) numberOfEvasions() int { return mp.evasionCount }
