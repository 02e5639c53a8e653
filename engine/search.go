package engine

import (
	"math"
	"math/bits"

	gm "github.com/Oliverans/GooseEngineMG/goosemg"
)

// =============================================================================
// MARGINS AND DEPTH LIMITS
// =============================================================================

const (
	selectiveDepth Depth = 7 * onePly
	razorDepth     Depth = 4 * onePly
)

const (
	nullMoveMargin            Value = 512
	iidMargin                 Value = 256
	singularMargin            Value = 32
	futilityMarginQS          Value = 128
	incrementalFutilityMargin Value = 8
)

var futilityMargins [2 * plyMaxPlus2]Value

func initFutilityMargins() {
	for i := 2; i < len(futilityMargins); i++ {
		futilityMargins[i] = Value(112 * (bits.Len32(uint32(i*i/2)) - 1))
	}
}

func futilityMargin(d Depth) Value {
	if d < 0 {
		return 0
	}
	idx := int(d)
	if idx >= len(futilityMargins) {
		idx = len(futilityMargins) - 1
	}
	return futilityMargins[idx]
}

// Reduction lookup tables, precomputed at startup. PV nodes reduce roughly
// half as aggressively as non-PV nodes.
var pvReductionMatrix [64][64]int8
var nonPVReductionMatrix [64][64]int8

func initReductionTables() {
	for i := 1; i < 64; i++ { // i == depth (in plies)
		for j := 1; j < 64; j++ { // j == move number
			pvRed := 0.5 + math.Log(float64(i))*math.Log(float64(j))/6.0
			nonPVRed := 0.5 + math.Log(float64(i))*math.Log(float64(j))/3.0
			if pvRed >= 1.0 {
				pvReductionMatrix[i][j] = int8(math.Floor(pvRed * float64(onePly)))
			}
			if nonPVRed >= 1.0 {
				nonPVReductionMatrix[i][j] = int8(math.Floor(nonPVRed * float64(onePly)))
			}
		}
	}
}

func pvReduction(d Depth, mn int) Depth {
	return Depth(pvReductionMatrix[Min(int(d)/2, 63)][Min(mn, 63)])
}

func nonPVReduction(d Depth, mn int) Depth {
	return Depth(nonPVReductionMatrix[Min(int(d)/2, 63)][Min(mn, 63)])
}

// =============================================================================
// NODE INIT AND SMALL PREDICATES
// =============================================================================

// initNode runs at every node entry: bump the worker's node counter, run the
// main worker's poll on budget underflow, reset this ply's PV suffix and
// clear the killers two plies ahead.
func (e *Engine) initNode(w *worker, ply int) {
	w.nodes.Add(1)
	if int32(ply) > w.selDepth.Load() {
		w.selDepth.Store(int32(ply))
	}
	if w.id == 0 {
		w.pollBudget--
		if w.pollBudget <= 0 {
			w.pollBudget = e.nodesBetweenPolls
			e.poll()
		}
	}
	w.stack.initFrame(ply)
	w.stack.initKillers(ply + 2)
}

// okToUseTT is the usability predicate for a TT hit at a zero-window node.
func okToUseTT(tte *ttData, depth Depth, beta Value, ply int) bool {
	v := valueFromTT(tte.value, ply)

	return (tte.depth >= depth ||
		v >= maxValue(mateIn(plyMax), beta) ||
		v < minValue(matedIn(plyMax), beta)) &&
		((isLowerBound(tte.bound) && v >= beta) ||
			(isUpperBound(tte.bound) && v < beta))
}

// refineEval sharpens a static evaluation with a TT bound pointing the same
// direction.
func refineEval(ttHit bool, tte *ttData, defaultEval Value, ply int) Value {
	if !ttHit {
		return defaultEval
	}
	v := valueFromTT(tte.value, ply)
	if (isLowerBound(tte.bound) && v >= defaultEval) ||
		(isUpperBound(tte.bound) && v < defaultEval) {
		return v
	}
	return defaultEval
}

func okToDoNullMove(b *gm.Board) bool {
	return nonPawnMaterial(b, b.SideToMove()) != 0
}

// updateGains records how the previous quiet move changed the static eval.
func (e *Engine) updateGains(p *position, ss *searchStack, ply int) {
	if ply == 0 {
		return
	}
	m := ss[ply-1].currentMove
	before := ss[ply-1].eval
	after := ss[ply].eval
	if m != moveNone && m != moveNull &&
		before != valueNone && after != valueNone &&
		!isCaptureOrPromotion(m) && !isCastle(m) {
		e.history.setGain(p.board.PieceAt(m.To()), m.To(), -(before + after))
	}
}

// connectedMoves reports whether m1 (the move that reached this position)
// somehow enabled m2 (a move from this position): same piece, vacated
// square, vacated slider ray, defense of m2's target, or an uncovered
// discovered check.
func connectedMoves(b *gm.Board, m1, m2 gm.Move) bool {
	if m1 == moveNone || m1 == moveNull || m2 == moveNone || m2 == moveNull {
		return false
	}
	f1, t1 := m1.From(), m1.To()
	f2, t2 := m2.From(), m2.To()

	if f2 == t1 {
		return true
	}
	if t2 == f1 {
		return true
	}

	p2 := b.PieceAt(f2)
	if isSlider(p2.Type()) && squaresBetween[f2][t2]&PositionBB[f1] != 0 {
		return true
	}

	p1 := b.PieceAt(t1)
	if p1 != gm.NoPiece &&
		attacksFromPiece(p1.Type(), p1.Color(), t1, b.AllOccupancy())&PositionBB[t2] != 0 {
		return true
	}

	if kings := b.Bitboards(b.SideToMove()).Kings; kings != 0 && isSlider(p1.Type()) {
		ksq := gm.Square(bits.TrailingZeros64(kings))
		if squaresBetween[t1][ksq]&PositionBB[f2] != 0 &&
			squaresBetween[t1][ksq]&PositionBB[t2] == 0 {
			return true
		}
	}
	return false
}

// moveAttacksSquare reports whether m's piece attacks sq once the move is
// played, with the origin square vacated.
func moveAttacksSquare(b *gm.Board, m gm.Move, sq gm.Square) bool {
	occ := b.AllOccupancy()&^PositionBB[m.From()] | PositionBB[m.To()]
	pt := m.MovedPiece().Type()
	if p := m.PromotionPiece(); p != gm.NoPiece {
		pt = p.Type()
	}
	return attacksFromPiece(pt, m.MovedPiece().Color(), m.To(), occ)&PositionBB[sq] != 0
}

// okToPrune rejects forward pruning of moves that interact with the threat
// found by the null-move search.
func okToPrune(b *gm.Board, m, threat gm.Move) bool {
	if threat == moveNone || threat == moveNull {
		return true
	}
	mto := m.To()
	tfrom, tto := threat.From(), threat.To()

	// The move rescues the threatened piece.
	if m.From() == tto {
		return false
	}

	// The move defends the threatened square, and the defender is not more
	// valuable than the attacker (or the attacker is the king).
	if isCapture(threat) &&
		(SeePieceValue[b.PieceAt(tfrom).Type()] >= SeePieceValue[b.PieceAt(tto).Type()] ||
			b.PieceAt(tfrom).Type() == gm.PieceTypeKing) &&
		moveAttacksSquare(b, m, tto) {
		return false
	}

	// The move safely blocks a slider threat.
	if isSlider(b.PieceAt(tfrom).Type()) &&
		squaresBetween[tfrom][tto]&PositionBB[mto] != 0 &&
		seeSign(b, m) >= 0 {
		return false
	}

	return true
}

func moveIsPassedPawnPush(b *gm.Board, m gm.Move) bool {
	return m.MovedPiece().Type() == gm.PieceTypePawn &&
		pawnIsPassed(b, b.SideToMove(), m.To())
}

// extension sums the per-feature extensions for a move and clamps the total
// to one ply. The dangerous flag marks moves the pruning stages must leave
// alone even when no extension is configured.
func (e *Engine) extension(p *position, m gm.Move, pvNode, captureOrPromotion,
	moveIsCheck, singleEvasion, mateThreat bool) (Depth, bool) {

	cfg := &e.cfg
	idx := 0
	if pvNode {
		idx = 1
	}
	ext := depthZero
	dangerous := moveIsCheck || singleEvasion || mateThreat

	if moveIsCheck {
		ext += cfg.checkExt[idx]
	}
	if singleEvasion {
		ext += cfg.singleEvasionExt[idx]
	}
	if mateThreat {
		ext += cfg.mateThreatExt[idx]
	}

	if m.MovedPiece().Type() == gm.PieceTypePawn {
		c := p.board.SideToMove()
		if relativeRank(c, m.To()) == 6 {
			ext += cfg.pawnPushTo7thExt[idx]
			dangerous = true
		}
		if pawnIsPassed(&p.board, c, m.To()) {
			ext += cfg.passedPawnExt[idx]
			dangerous = true
		}
	}

	captured := m.CapturedPiece()
	if captured != gm.NoPiece && captured.Type() != gm.PieceTypePawn &&
		!isPromotion(m) && m.Flags() != gm.FlagEnPassant &&
		nonPawnMaterial(&p.board, gm.White)+nonPawnMaterial(&p.board, gm.Black)-
			pieceValueMG[captured.Type()] == 0 {
		ext += cfg.pawnEndgameExt[idx]
		dangerous = true
	}

	if pvNode && captured != gm.NoPiece && captured.Type() != gm.PieceTypePawn &&
		seeSign(&p.board, m) >= 0 {
		ext += onePly / 2
		dangerous = true
	}

	return minDepth(ext, onePly), dangerous
}

// =============================================================================
// QUIESCENCE SEARCH
// =============================================================================

func (e *Engine) qsearch(w *worker, p *position, alpha, beta Value, depth Depth, ply int) Value {
	pvNode := beta-alpha > 1
	oldAlpha := alpha
	ss := &w.stack

	e.initNode(w, ply)
	if e.signals.stop.Load() || e.threadShouldStop(w) {
		return valueDraw
	}
	if p.isDraw() || ply >= plyMax-1 {
		return valueDraw
	}

	posKey := p.key()
	tte, ttHit := e.tt.retrieve(posKey)
	ttMove := moveNone
	if ttHit {
		ttMove = tte.move
	}

	if !pvNode && ttHit && okToUseTT(&tte, depth, beta, ply) {
		ss[ply].currentMove = ttMove
		return valueFromTT(tte.value, ply)
	}

	isCheck := p.board.OurKingInCheck()

	// Stand pat. The static eval can be recycled from an eval-typed entry.
	var staticValue Value
	switch {
	case isCheck:
		staticValue = -valueInfinite
	case ttHit && tte.bound&boundEval != 0:
		staticValue = valueFromTT(tte.value, ply)
	default:
		staticValue = evaluate(&p.board, &w.pawn)
	}

	if !isCheck {
		ss[ply].eval = staticValue
		e.updateGains(p, ss, ply)
	}

	bestValue := staticValue
	if bestValue >= beta {
		if !isCheck && !ttHit {
			e.tt.store(posKey, valueToTT(bestValue, ply), boundEvalLower, depthNone, moveNone, true)
		}
		return bestValue
	}
	if bestValue > alpha {
		alpha = bestValue
	}

	// Near beta at the first quiescence plies it pays to push checks a
	// little further.
	deepChecks := depth == -onePly && staticValue >= beta-PawnValueMidgame/8
	withChecks := depth == depthZero || deepChecks

	mp := newQSPicker(&p.board, ttMove, &e.history, withChecks)
	enoughMaterial := nonPawnMaterial(&p.board, p.board.SideToMove()) > pieceValueMG[gm.PieceTypeRook]
	futilityBase := staticValue + futilityMarginQS
	moveCount := 0

	for alpha < beta {
		move := mp.nextMove()
		if move == moveNone {
			break
		}
		moveIsCheck := p.board.GivesCheck(move)
		moveCount++
		ss[ply].currentMove = move

		// Futility: a capture whose optimistic value cannot reach alpha.
		if enoughMaterial && !isCheck && !pvNode && !moveIsCheck &&
			move != ttMove && !isPromotion(move) &&
			!moveIsPassedPawnPush(&p.board, move) {
			futilityValue := futilityBase + pieceValueEG[move.CapturedPiece().Type()]
			if move.Flags() == gm.FlagEnPassant {
				futilityValue += pieceValueEG[gm.PieceTypePawn]
			}
			if futilityValue < alpha {
				if futilityValue > bestValue {
					bestValue = futilityValue
				}
				continue
			}
		}

		// Blocking evasions that hang material are prunable too.
		evasionPrunable := isCheck &&
			bestValue != -valueInfinite &&
			!isCapture(move) &&
			move.MovedPiece().Type() != gm.PieceTypeKing

		if (!isCheck || evasionPrunable) &&
			move != ttMove && !isPromotion(move) &&
			seeSign(&p.board, move) < 0 {
			continue
		}

		st, ok := p.doMove(move)
		if !ok {
			continue
		}
		value := -e.qsearch(w, p, -beta, -alpha, depth-onePly, ply+1)
		p.undoMove(move, st)

		if value > bestValue {
			bestValue = value
			if value > alpha {
				alpha = value
				updatePV(ss, ply)
			}
		}
	}

	if isCheck && moveCount == 0 {
		return matedIn(ply)
	}

	if e.signals.stop.Load() || e.threadShouldStop(w) {
		return bestValue
	}

	d := depthQSNoChecks
	if depth == depthZero {
		d = depthQSChecks
	}
	switch {
	case bestValue <= oldAlpha:
		bound := boundUpper
		if bestValue == staticValue {
			bound = boundEvalUpper
		}
		e.tt.store(posKey, valueToTT(bestValue, ply), bound, d, moveNone, bestValue == staticValue)
	case bestValue >= beta:
		cutoff := ss[ply].pv[ply]
		e.tt.store(posKey, valueToTT(bestValue, ply), boundLower, d, cutoff, false)
		if cutoff != moveNone && !isCaptureOrPromotion(cutoff) {
			updateKillers(cutoff, &ss[ply])
		}
	default:
		e.tt.store(posKey, valueToTT(bestValue, ply), boundExact, d, ss[ply].pv[ply], false)
	}

	return bestValue
}

// =============================================================================
// MAIN SEARCH
// =============================================================================

// search is the workhorse for both PV and zero-window nodes; pvNode follows
// from the window. An excluded move switches the node onto its exclusion key
// and skips that move, which is how singular verification avoids polluting
// the main TT line.
func (e *Engine) search(w *worker, p *position, alpha, beta Value, depth Depth,
	ply int, allowNull bool, excluded gm.Move) Value {

	if depth < onePly {
		return e.qsearch(w, p, alpha, beta, depthZero, ply)
	}

	pvNode := beta-alpha > 1
	ss := &w.stack

	e.initNode(w, ply)
	if e.signals.stop.Load() || e.threadShouldStop(w) {
		return valueDraw
	}
	if p.isDraw() || ply >= plyMax-1 {
		return valueDraw
	}

	// Mate distance pruning.
	oldAlpha := alpha
	alpha = maxValue(matedIn(ply), alpha)
	beta = minValue(mateIn(ply+1), beta)
	if alpha >= beta {
		if pvNode {
			return alpha
		}
		return beta
	}

	posKey := p.key()
	if excluded != moveNone {
		posKey = p.exclusionKey(excluded)
	}

	tte, ttHit := e.tt.retrieve(posKey)
	ttMove := moveNone
	if ttHit {
		ttMove = tte.move
	}

	// At PV nodes the TT only seeds move ordering; cutting here would hide
	// repetition draws and truncate the printed PV.
	if !pvNode && ttHit && okToUseTT(&tte, depth, beta, ply) {
		ss[ply].currentMove = ttMove
		return valueFromTT(tte.value, ply)
	}

	isCheck := p.board.OurKingInCheck()
	mateThreat := false
	staticValue := -valueInfinite
	futilityMoveCountMargin := 3 + (1 << (3 * int(depth) / 8))

	if !isCheck {
		if ttHit && tte.bound&boundEval != 0 {
			staticValue = valueFromTT(tte.value, ply)
		} else {
			staticValue = evaluate(&p.board, &w.pawn)
		}
		ss[ply].eval = staticValue
		staticValue = refineEval(ttHit, &tte, staticValue, ply)
		e.updateGains(p, ss, ply)
	}

	// Static null move: the position is so far above beta that even giving
	// the opponent a full margin keeps it there.
	if !pvNode && !isCheck && allowNull && e.cfg.useFutility &&
		depth < razorDepth &&
		staticValue-futilityMargin(depth) >= beta {
		return staticValue - futilityMargin(depth)
	}

	if !pvNode && allowNull && depth > onePly && !isCheck &&
		!valueIsMate(beta) && okToDoNullMove(&p.board) &&
		staticValue >= beta-nullMoveMargin {

		// Null move search with depth- and value-based dynamic reduction.
		ss[ply].currentMove = moveNull
		st := p.doNullMove()

		r := 3
		if depth >= 5*onePly {
			r += int(depth) / 8
		}
		if staticValue-beta > PawnValueMidgame {
			r++
		}

		nullValue := -e.search(w, p, -beta, -(beta - 1), depth-Depth(r)*onePly, ply+1, false, moveNone)
		p.undoNullMove(st)

		if nullValue >= beta {
			if depth < 6*onePly {
				return beta
			}
			// Zugzwang verification search.
			v := e.search(w, p, beta-1, beta, depth-5*onePly, ply, false, moveNone)
			if v >= beta {
				return beta
			}
		} else {
			// The refutation of the null move is a threat. If the previous
			// move was reduced and connects to it, fail low right away to
			// force a full-depth re-search in the parent.
			if nullValue == matedIn(ply+2) {
				mateThreat = true
			}
			ss[ply].threatMove = ss[ply+1].currentMove
			if depth < e.cfg.threatDepth &&
				ss[ply-1].reduction > 0 &&
				connectedMoves(&p.board, ss[ply-1].currentMove, ss[ply].threatMove) {
				return beta - 1
			}
		}
	} else if !pvNode && !isCheck && e.cfg.useRazoring &&
		!valueIsMate(beta) && depth < razorDepth &&
		staticValue < beta-(nullMoveMargin+16*Value(depth)) &&
		ss[ply-1].currentMove != moveNull &&
		ttMove == moveNone &&
		!hasPawnOn7th(&p.board, p.board.SideToMove()) {

		// Razoring: drop straight into quiescence at a reduced bound.
		rbeta := beta - (nullMoveMargin + 16*Value(depth))
		v := e.qsearch(w, p, rbeta-1, rbeta, depthZero, ply)
		if v < rbeta {
			return v
		}
	}

	// Internal iterative deepening seeds a TT move for expensive nodes.
	if ttMove == moveNone &&
		((pvNode && depth >= 5*onePly) ||
			(!pvNode && depth >= 8*onePly && !isCheck && ss[ply].eval >= beta-iidMargin)) {
		if pvNode {
			e.search(w, p, alpha, beta, depth-2*onePly, ply, false, moveNone)
		} else {
			e.search(w, p, beta-1, beta, minDepth(depth/2, depth-2*onePly), ply, false, moveNone)
		}
		if iid, ok := e.tt.retrieve(p.key()); ok {
			ttMove = iid.move
			tte, ttHit = iid, true
		}
	}

	mp := newMovePicker(&p.board, ttMove, depth, &e.history, &ss[ply])
	singleEvasion := isCheck && mp.numberOfEvasions() == 1

	var movesSearched [256]gm.Move
	moveCount := 0
	bestValue := -valueInfinite

	for {
		if pvNode {
			if alpha >= beta {
				break
			}
		} else if bestValue >= beta {
			break
		}
		if e.threadShouldStop(w) {
			break
		}
		move := mp.nextMove()
		if move == moveNone {
			break
		}
		if move == excluded {
			continue
		}

		moveIsCheck := p.board.GivesCheck(move)
		captureOrPromotion := isCaptureOrPromotion(move)

		ext, dangerous := e.extension(p, move, pvNode, captureOrPromotion, moveIsCheck, singleEvasion, mateThreat)

		// Singular extension: verify the TT move is uniquely best with a
		// reduced search excluding it.
		singularDepth := 8 * onePly
		if pvNode {
			singularDepth = 6 * onePly
		}
		if depth >= singularDepth && ttHit && move == ttMove &&
			excluded == moveNone && ext < onePly &&
			isLowerBound(tte.bound) && tte.depth >= depth-3*onePly {
			ttValue := valueFromTT(tte.value, ply)
			if absValue(ttValue) < valueKnownWin {
				rb := ttValue - singularMargin
				excValue := e.search(w, p, rb-1, rb, depth/2, ply, false, move)
				if excValue < rb {
					ext = onePly
				}
			}
		}

		newDepth := depth - onePly + ext

		if moveCount < len(movesSearched) {
			movesSearched[moveCount] = move
		}
		moveCount++
		ss[ply].currentMove = move

		// Futility pruning at non-PV nodes.
		if !pvNode && !isCheck && e.cfg.useFutility &&
			!dangerous && !captureOrPromotion && !isCastle(move) && move != ttMove {

			// Move count based pruning.
			if moveCount >= futilityMoveCountMargin &&
				okToPrune(&p.board, move, ss[ply].threatMove) &&
				bestValue > matedIn(plyMax) {
				continue
			}

			// Value based pruning at the predicted (post-reduction) depth.
			predictedDepth := newDepth
			if r := nonPVReduction(depth, moveCount); r > 0 {
				ss[ply].reduction = r
				predictedDepth -= r
			}
			if predictedDepth < selectiveDepth {
				preMargin := Value(0)
				if predictedDepth >= onePly {
					preMargin = futilityMargin(predictedDepth)
				}
				preMargin += e.history.gain(move.MovedPiece(), move.To()) + 45
				futilityValueScaled := ss[ply].eval + preMargin - Value(moveCount)*incrementalFutilityMargin
				if futilityValueScaled < beta {
					if futilityValueScaled > bestValue {
						bestValue = futilityValueScaled
					}
					continue
				}
			}
		}

		st, ok := p.doMove(move)
		if !ok {
			moveCount--
			continue
		}

		var value Value
		if pvNode && moveCount == 1 {
			value = -e.search(w, p, -beta, -alpha, newDepth, ply+1, true, moveNone)
		} else {
			// Late move reduction with zero-window verification.
			doFullDepthSearch := true
			if depth >= 3*onePly && !dangerous && !captureOrPromotion &&
				!isCastle(move) && !moveIsKiller(move, &ss[ply]) {
				var r Depth
				if pvNode {
					r = pvReduction(depth, moveCount)
				} else {
					r = nonPVReduction(depth, moveCount)
				}
				if r > 0 {
					ss[ply].reduction = r
					value = -e.search(w, p, -(alpha + 1), -alpha, newDepth-r, ply+1, true, moveNone)
					if pvNode {
						doFullDepthSearch = value > alpha
					} else {
						doFullDepthSearch = value >= beta
					}
				}
			}

			if doFullDepthSearch {
				ss[ply].reduction = depthZero
				value = -e.search(w, p, -(alpha + 1), -alpha, newDepth, ply+1, true, moveNone)

				if pvNode && value > alpha && value < beta {
					value = -e.search(w, p, -beta, -alpha, newDepth, ply+1, true, moveNone)
				}
			}
		}
		p.undoMove(move, st)

		if value > bestValue {
			bestValue = value
			if pvNode && value > alpha && value < beta {
				alpha = value
				updatePV(ss, ply)
			} else if !pvNode && value >= beta {
				updatePV(ss, ply)
			}
			if value == mateIn(ply+1) {
				ss[ply].mateKiller = move
			}
		}

		// Split: publish the rest of this node's moves to idle workers.
		if e.pool.activeWorkers > 1 && bestValue < beta &&
			depth >= e.pool.minimumSplitDepth &&
			!e.signals.stop.Load() && !e.threadShouldStop(w) &&
			e.pool.anyIdleWorker() &&
			e.pool.split(w, p, ply, &alpha, beta, &bestValue, depth,
				ss[ply].threatMove, mateThreat, moveCount, &mp, pvNode) {
			break
		}
	}

	// No legal move: mate, stalemate, or a failed singular verification.
	if moveCount == 0 {
		if excluded != moveNone {
			return beta - 1
		}
		if isCheck {
			return matedIn(ply)
		}
		return valueDraw
	}

	// Aborted subtrees must not touch the TT.
	if e.signals.stop.Load() || e.threadShouldStop(w) {
		return bestValue
	}

	switch {
	case bestValue <= oldAlpha:
		e.tt.store(posKey, valueToTT(bestValue, ply), boundUpper, depth, moveNone, false)
	case bestValue >= beta:
		w.betaCutoffs[int(p.board.SideToMove())].Add(int64(depth))
		cutoff := ss[ply].pv[ply]
		e.tt.store(posKey, valueToTT(bestValue, ply), boundLower, depth, cutoff, false)
		if cutoff != moveNone && !isCaptureOrPromotion(cutoff) {
			e.updateHistory(p, cutoff, depth, movesSearched[:Min(moveCount, len(movesSearched))])
			updateKillers(cutoff, &ss[ply])
		}
	default:
		e.tt.store(posKey, valueToTT(bestValue, ply), boundExact, depth, ss[ply].pv[ply], false)
	}

	return bestValue
}

// updateHistory rewards the cutoff move and penalizes the quiet moves that
// were tried before it.
func (e *Engine) updateHistory(p *position, cutoff gm.Move, depth Depth, tried []gm.Move) {
	e.history.success(p.board.PieceAt(cutoff.From()), cutoff.To(), depth)
	for _, m := range tried {
		if m == cutoff {
			continue
		}
		if !isCaptureOrPromotion(m) {
			e.history.failure(p.board.PieceAt(m.From()), m.To(), depth)
		}
	}
}

// anyIdleWorker is a lock-free pre-check; split re-verifies under the
// enlistment lock.
func (p *workerPool) anyIdleWorker() bool {
	for i := 0; i < p.activeWorkers; i++ {
		if workerState(p.workers[i].state.Load()) == stateAvailable {
			return true
		}
	}
	return false
}
