package engine

import (
	"fmt"
	"strings"

	gm "github.com/Oliverans/GooseEngineMG/goosemg"
	"golang.org/x/exp/slices"
)

const (
	easyMoveMargin  Value = 512
	problemMargin   Value = 40
	noProblemMargin Value = 20
	initialDepth    Depth = onePly
)

// rootMove keeps a root candidate with the statistics the re-sort between
// iterations uses: score first, then the beta cutoffs its subtree produced
// for the opponent.
type rootMove struct {
	move            gm.Move
	score           Value
	nodes           int64
	cumulativeNodes int64
	ourBeta         int64
	theirBeta       int64
	pv              []gm.Move
}

type rootMoveList struct {
	moves []rootMove
}

// buildRootMoveList generates the legal root moves, intersects them with a
// searchmoves restriction, and gives each a quick quiescence score for the
// first ordering.
func (e *Engine) buildRootMoveList(w *worker, p *position, searchMoves []gm.Move) *rootMoveList {
	rml := &rootMoveList{}
	for _, move := range p.board.GenerateLegalMoves() {
		if len(searchMoves) > 0 && !slices.Contains(searchMoves, move) {
			continue
		}
		st, ok := p.doMove(move)
		if !ok {
			continue
		}
		score := -e.qsearch(w, p, -valueInfinite, valueInfinite, depthZero, 1)
		p.undoMove(move, st)
		rml.moves = append(rml.moves, rootMove{
			move:  move,
			score: score,
			pv:    []gm.Move{move},
		})
	}
	rml.sort()
	return rml
}

func (rml *rootMoveList) sort() {
	rml.sortMultiPV(len(rml.moves) - 1)
}

// sortMultiPV stable-sorts the first n+1 moves by score, breaking ties with
// the opponent's beta-cutoff counter.
func (rml *rootMoveList) sortMultiPV(n int) {
	if n < 0 || len(rml.moves) == 0 {
		return
	}
	head := rml.moves[:Min(n+1, len(rml.moves))]
	slices.SortStableFunc(head, func(a, b rootMove) int {
		if a.score != b.score {
			if a.score > b.score {
				return -1
			}
			return 1
		}
		if a.theirBeta > b.theirBeta {
			return -1
		}
		if a.theirBeta < b.theirBeta {
			return 1
		}
		return 0
	})
}

// =============================================================================
// BETA COUNTERS
// =============================================================================

func (e *Engine) clearBetaCounters() {
	for i := 0; i < e.pool.started; i++ {
		e.pool.workers[i].betaCutoffs[0].Store(0)
		e.pool.workers[i].betaCutoffs[1].Store(0)
	}
}

func (e *Engine) readBetaCounters(us gm.Color) (our, their int64) {
	for i := 0; i < e.pool.started; i++ {
		our += e.pool.workers[i].betaCutoffs[int(us)].Load()
		their += e.pool.workers[i].betaCutoffs[int(opposite(us))].Load()
	}
	return our, their
}

// =============================================================================
// OUTPUT HELPERS
// =============================================================================

// valueString renders a score the UCI way: centipawns, or moves-to-mate.
func valueString(v Value) string {
	if v >= mateIn(plyMax) {
		return fmt.Sprintf("mate %d", (int(valueMate-v)+1)/2)
	}
	if v <= matedIn(plyMax) {
		return fmt.Sprintf("mate %d", -(int(valueMate+v)+1)/2)
	}
	return fmt.Sprintf("cp %d", v)
}

func pvString(pv []gm.Move) string {
	var sb strings.Builder
	for i, m := range pv {
		if m == moveNone {
			break
		}
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(m.String())
	}
	return sb.String()
}

// pvLine collects the root PV from the main worker's stack.
func pvLine(ss *searchStack) []gm.Move {
	var pv []gm.Move
	for i := 0; i < plyMaxPlus2 && ss[0].pv[i] != moveNone; i++ {
		pv = append(pv, ss[0].pv[i])
	}
	return pv
}

func (e *Engine) nps() int64 {
	t := e.tm.elapsed()
	if t <= 0 {
		return 0
	}
	return e.pool.nodesSearched() * 1000 / int64(t)
}

func (e *Engine) printInfoLine(depth int, v Value, bound string, pv []gm.Move) {
	line := fmt.Sprintf("info depth %d seldepth %d score %s%s time %d nodes %d nps %d pv %s",
		depth, e.pool.maxSelDepth(), valueString(v), bound,
		e.tm.elapsed(), e.pool.nodesSearched(), e.nps(), pvString(pv))
	fmt.Println(line)
	e.log.println(line)
}

// =============================================================================
// POLL
// =============================================================================

// poll runs on the main worker every nodesBetweenPolls nodes: it prints the
// periodic statistics line and raises the stop flag when the clock or node
// budget is spent. While pondering, time never stops the search.
func (e *Engine) poll() {
	t := e.tm.elapsed()

	if t >= 1000 && t-e.lastInfoTime >= 1000 {
		e.lastInfoTime = t
		fmt.Printf("info nodes %d nps %d time %d hashfull %d\n",
			e.pool.nodesSearched(), e.nps(), t, e.tt.hashfull())
	}

	if e.ponder.Load() {
		return
	}

	iteration := int(e.iteration.Load())

	stillAtFirstMove := e.rootMoveNumber.Load() == 1 &&
		!e.signals.failLow.Load() &&
		t > e.tm.maxSearchTime+e.tm.extraSearchTime

	noMoreTime := (e.tm.useTimeManagement && t > e.tm.absoluteMaxSearchTime) || stillAtFirstMove

	if (iteration >= 3 && e.tm.useTimeManagement && noMoreTime) ||
		(e.tm.exactMaxTime > 0 && t >= e.tm.exactMaxTime) ||
		(iteration >= 3 && e.limits.Nodes > 0 && e.pool.nodesSearched() >= e.limits.Nodes) {
		e.raiseStop()
	}
}

// =============================================================================
// ITERATIVE DEEPENING
// =============================================================================

// idLoop is the iterative deepening driver. It runs on the main worker and
// owns all root-level bookkeeping: aspiration windows, PV reinsertion, the
// stop heuristics, and finally the bestmove line.
func (e *Engine) idLoop(w *worker) Value {
	pos := newPosition(e.board, e.gameHist)
	ss := &w.stack
	ss.initTop()

	searchMoves := e.parseSearchMoves(&pos)
	rml := e.buildRootMoveList(w, &pos, searchMoves)

	// Mate or stalemate at the root.
	if len(rml.moves) == 0 {
		if e.ponder.Load() || e.limits.Infinite {
			e.waitForStopOrPonderhit()
		}
		fmt.Println("bestmove 0000")
		e.lastBestMove = moveNone
		e.lastPonderMove = moveNone
		if pos.board.OurKingInCheck() {
			e.lastScore = matedIn(0)
		} else {
			e.lastScore = valueDraw
		}
		return e.lastScore
	}

	fmt.Printf("info depth 1\ninfo depth 1 score %s time %d nodes %d nps %d pv %s\n",
		valueString(rml.moves[0].score), e.tm.elapsed(),
		e.pool.nodesSearched(), e.nps(), rml.moves[0].move.String())

	e.tt.newSearch()
	e.valueByIteration[1] = rml.moves[0].score
	iteration := 1
	e.iteration.Store(1)

	// A clearly best initial move is an early-stop candidate.
	easyMove := moveNone
	if len(rml.moves) == 1 ||
		rml.moves[0].score > rml.moves[1].score+easyMoveMargin {
		easyMove = rml.moves[0].move
	}

	for iteration < plyMax {
		rml.sort()
		iteration++
		e.iteration.Store(int32(iteration))
		e.bestMoveChanges[iteration] = 0
		if iteration <= 5 {
			e.tm.extraSearchTime = 0
		}

		fmt.Println("info depth", iteration)

		// Aspiration window from the two previous iteration deltas.
		alpha, beta := -valueInfinite, valueInfinite
		if e.cfg.multiPV == 1 && iteration >= 6 &&
			absValue(e.valueByIteration[iteration-1]) < valueKnownWin {
			prevDelta1 := e.valueByIteration[iteration-1] - e.valueByIteration[iteration-2]
			prevDelta2 := e.valueByIteration[iteration-2] - e.valueByIteration[iteration-3]
			delta := maxValue(absValue(prevDelta1)+absValue(prevDelta2)/2, 16)
			delta = (delta + 7) / 8 * 8
			e.aspirationDelta = delta
			alpha = maxValue(e.valueByIteration[iteration-1]-delta, -valueInfinite)
			beta = minValue(e.valueByIteration[iteration-1]+delta, valueInfinite)
		}

		value := e.rootSearch(w, &pos, rml, alpha, beta)

		// Reinsert the PV so later probes can rebuild it after churn.
		e.tt.insertPV(pos.board, pvLine(ss))

		if e.signals.stop.Load() {
			break
		}

		e.valueByIteration[iteration] = value

		if len(pvLine(ss)) > 0 && ss[0].pv[0] != easyMove {
			easyMove = moveNone
		}

		if e.tm.useTimeManagement {
			stopSearch := false

			// A single legal move needs no deeper confirmation, but search
			// to iteration 6 anyway for a usable score.
			if iteration >= 6 && len(rml.moves) == 1 {
				stopSearch = true
			}

			// Two consecutive mate scores will not change.
			if iteration >= 6 &&
				absValue(e.valueByIteration[iteration]) >= valueMate-100 &&
				absValue(e.valueByIteration[iteration-1]) >= valueMate-100 {
				stopSearch = true
			}

			// The easy move soaked up nearly all nodes.
			nodes := e.pool.nodesSearched()
			if iteration >= 8 && easyMove != moveNone && easyMove == ss[0].pv[0] &&
				((rml.moves[0].cumulativeNodes > nodes*85/100 &&
					e.tm.elapsed() > e.tm.maxSearchTime/16) ||
					(rml.moves[0].cumulativeNodes > nodes*98/100 &&
						e.tm.elapsed() > e.tm.maxSearchTime/32)) {
				stopSearch = true
			}

			// Best-move instability earns extra time.
			if iteration > 5 && iteration <= 50 {
				e.tm.extraSearchTime = e.bestMoveChanges[iteration]*(e.tm.maxSearchTime/2) +
					e.bestMoveChanges[iteration-1]*(e.tm.maxSearchTime/3)
			}

			// Not enough time left for another iteration.
			if e.tm.elapsed() > (e.tm.maxSearchTime+e.tm.extraSearchTime)*80/128 {
				stopSearch = true
			}

			if stopSearch {
				if !e.ponder.Load() {
					break
				}
				e.signals.stopOnPonderhit.Store(true)
			}
		}

		if e.limits.Depth > 0 && iteration >= e.limits.Depth {
			break
		}
	}

	rml.sort()

	// The UCI contract: while pondering or in infinite mode, bestmove waits
	// for "stop" or "ponderhit".
	if !e.signals.stop.Load() && (e.ponder.Load() || e.limits.Infinite) {
		e.waitForStopOrPonderhit()
	} else {
		fmt.Printf("info nodes %d nps %d time %d hashfull %d\n",
			e.pool.nodesSearched(), e.nps(), e.tm.elapsed(), e.tt.hashfull())
	}

	if ss[0].pv[0] == moveNone {
		ss[0].pv[0] = rml.moves[0].move
		ss[0].pv[1] = moveNone
	}

	e.lastBestMove = ss[0].pv[0]
	e.lastPonderMove = ss[0].pv[1]
	e.lastScore = rml.moves[0].score

	bestLine := "bestmove " + ss[0].pv[0].String()
	if ss[0].pv[1] != moveNone {
		bestLine += " ponder " + ss[0].pv[1].String()
	}
	fmt.Println(bestLine)
	e.log.println(bestLine)

	return rml.moves[0].score
}

// parseSearchMoves resolves the go command's searchmoves tokens against the
// root position's legal moves.
func (e *Engine) parseSearchMoves(p *position) []gm.Move {
	if len(e.limits.SearchMoves) == 0 {
		return nil
	}
	legal := p.board.GenerateLegalMoves()
	var out []gm.Move
	for _, token := range e.limits.SearchMoves {
		for _, m := range legal {
			if m.String() == token {
				out = append(out, m)
				break
			}
		}
	}
	return out
}

// rootSearch searches the root moves at the current iteration depth. Fail
// highs widen beta geometrically and re-search the move; a fail low of the
// whole list widens alpha and restarts it.
func (e *Engine) rootSearch(w *worker, p *position, rml *rootMoveList, alpha, beta Value) Value {
	ss := &w.stack
	oldAlpha := alpha
	researchCount := 0
	iteration := int(e.iteration.Load())
	multiPV := e.cfg.multiPV

	isCheck := p.board.OurKingInCheck()
	if !isCheck {
		ss[0].eval = evaluate(&p.board, &w.pawn)
	} else {
		ss[0].eval = valueNone
	}

	for { // fail-low loop
		for i := 0; i < len(rml.moves) && !e.signals.stop.Load(); i++ {
			if alpha >= beta {
				// Alpha caught up with beta: the remaining moves are marked
				// unsearched for this iteration.
				rml.moves[i].score = -valueInfinite
				continue
			}

			e.rootMoveNumber.Store(int32(i + 1))
			nodesBefore := e.pool.nodesSearched()
			e.clearBetaCounters()

			move := rml.moves[i].move
			ss[0].currentMove = move

			if e.tm.elapsed() >= 1000 {
				fmt.Printf("info currmove %s currmovenumber %d\n", move.String(), i+1)
			}

			moveIsCheck := p.board.GivesCheck(move)
			captureOrPromotion := isCaptureOrPromotion(move)
			depth := Depth(iteration-2)*onePly + initialDepth
			ext, dangerous := e.extension(p, move, true, captureOrPromotion, moveIsCheck, false, false)
			newDepth := depth + ext

			value := -valueInfinite

			for { // fail-high loop
				st, ok := p.doMove(move)
				if !ok {
					break
				}

				if i < multiPV || value > alpha {
					if multiPV > 1 {
						alpha = -valueInfinite
					}
					value = -e.search(w, p, -beta, -alpha, newDepth, 1, true, moveNone)

					// A big score drop against the previous iteration means
					// trouble: finish this iteration before moving.
					problem := iteration >= 2 &&
						value <= e.valueByIteration[iteration-1]-problemMargin
					e.problem.Store(problem)
					if problem && e.signals.stopOnPonderhit.Load() {
						e.signals.stopOnPonderhit.Store(false)
					}
				} else {
					doFullDepthSearch := true
					if depth >= 3*onePly && !dangerous && !captureOrPromotion && !isCastle(move) {
						if r := pvReduction(depth, i+1-multiPV+1); r > 0 {
							ss[0].reduction = r
							value = -e.search(w, p, -(alpha + 1), -alpha, newDepth-r, 1, true, moveNone)
							doFullDepthSearch = value > alpha
						}
					}
					if doFullDepthSearch {
						ss[0].reduction = depthZero
						value = -e.search(w, p, -(alpha + 1), -alpha, newDepth, 1, true, moveNone)
						if value > alpha {
							value = -e.search(w, p, -beta, -alpha, newDepth, 1, true, moveNone)
						}
					}
				}
				p.undoMove(move, st)

				if e.signals.stop.Load() || value < beta {
					break
				}

				// Fail high: record the result before the re-search in case
				// the clock runs out during it.
				rml.moves[i].score = value
				updatePV(ss, 0)
				rml.moves[i].pv = append(rml.moves[i].pv[:0], pvLine(ss)...)
				e.printInfoLine(iteration, value, " lowerbound", rml.moves[i].pv)

				researchCount++
				beta = minValue(beta+e.aspirationDelta*(1<<researchCount), valueInfinite)
			}

			if e.signals.stop.Load() {
				break
			}

			our, their := e.readBetaCounters(p.board.SideToMove())
			rml.moves[i].ourBeta = our
			rml.moves[i].theirBeta = their
			rml.moves[i].nodes = e.pool.nodesSearched() - nodesBefore
			rml.moves[i].cumulativeNodes += rml.moves[i].nodes

			if value <= alpha && i >= multiPV {
				rml.moves[i].score = -valueInfinite
			} else {
				rml.moves[i].score = value
				updatePV(ss, 0)
				rml.moves[i].pv = append(rml.moves[i].pv[:0], pvLine(ss)...)

				if multiPV == 1 {
					if i > 0 {
						e.bestMoveChanges[iteration]++
					}
					e.printInfoLine(iteration, value, "", rml.moves[i].pv)
					if value > alpha {
						alpha = value
					}
					if value > e.valueByIteration[iteration-1]-noProblemMargin {
						e.problem.Store(false)
					}
				} else {
					rml.sortMultiPV(i)
					for j := 0; j < Min(multiPV, len(rml.moves)); j++ {
						d := iteration
						if j > i {
							d = iteration - 1
						}
						fmt.Printf("info multipv %d depth %d score %s time %d nodes %d nps %d pv %s\n",
							j+1, d, valueString(rml.moves[j].score),
							e.tm.elapsed(), e.pool.nodesSearched(), e.nps(),
							pvString(rml.moves[j].pv))
					}
					alpha = rml.moves[Min(i, multiPV-1)].score
				}
			}

			e.signals.failLow.Store(alpha == oldAlpha)
		}

		if e.signals.stop.Load() || alpha > oldAlpha {
			break
		}

		// Whole list failed low: widen alpha and try again.
		researchCount++
		alpha = maxValue(alpha-e.aspirationDelta*(1<<researchCount), -valueInfinite)
		oldAlpha = alpha
	}

	return alpha
}
