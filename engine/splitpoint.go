package engine

import (
	"sync"
	"sync/atomic"

	gm "github.com/Oliverans/GooseEngineMG/goosemg"
)

// splitPoint is the shared record of one parallelizable node. The fields
// before the mutex are set up once by the master and read-only afterwards;
// the fields after it mutate only under mu. finished and cpus are also read
// lock-free on hot paths, hence atomic.
type splitPoint struct {
	parent      *splitPoint
	master      *worker
	board       gm.Board
	hist        []uint64
	depth       Depth
	ply         int
	pvNode      bool
	threatMove  gm.Move
	mateThreat  bool
	eval        Value
	mp          *movePicker
	parentStack *searchStack

	mu        sync.Mutex
	alpha     Value
	beta      Value
	bestValue Value
	moveCount int
	nodes     int64

	finished  atomic.Bool
	cpus      atomic.Int32
	slaveMask atomic.Uint64
}

// stopPeers raises stop on the master and every booked slave of sp except
// self. Callers hold sp.mu, which keeps the mask and the flag consistent.
func (sp *splitPoint) stopPeers(self *worker, pool *workerPool) {
	mask := sp.slaveMask.Load()
	for i := 0; i < pool.activeWorkers; i++ {
		if i == self.id {
			continue
		}
		if i == sp.master.id || mask&(1<<uint(i)) != 0 {
			pool.workers[i].stop.Store(true)
		}
	}
}

func copyStackTail(src, dst *searchStack, ply int) {
	lo := ply - 1
	if lo < 0 {
		lo = 0
	}
	for i := lo; i <= ply+1; i++ {
		dst[i] = src[i]
	}
}

// split publishes the current node as a split point, enlists idle workers,
// and joins them. It returns false without side effects when no helper can
// be booked. On success the aggregated alpha and bestValue are copied back
// and the caller abandons its own move loop.
func (p *workerPool) split(master *worker, pos *position, ply int,
	alpha *Value, beta Value, bestValue *Value, depth Depth,
	threatMove gm.Move, mateThreat bool, moveCount int,
	mp *movePicker, pvNode bool) bool {

	p.enlistMu.Lock()

	if master.activeSplitPoints >= maxActiveSplitPoints || !p.idleWorkerExists(master) {
		p.enlistMu.Unlock()
		return false
	}

	sp := &master.splitPoints[master.activeSplitPoints]
	master.activeSplitPoints++

	sp.parent = master.splitPoint
	sp.master = master
	sp.board = pos.board
	sp.hist = append(sp.hist[:0], pos.hist...)
	sp.depth = depth
	sp.ply = ply
	sp.pvNode = pvNode
	sp.threatMove = threatMove
	sp.mateThreat = mateThreat
	sp.eval = master.stack[ply].eval
	sp.mp = mp
	sp.parentStack = &master.stack
	if pvNode {
		sp.alpha = *alpha
	} else {
		sp.alpha = beta - 1
	}
	sp.beta = beta
	sp.bestValue = *bestValue
	sp.moveCount = moveCount
	sp.nodes = 0
	sp.finished.Store(false)
	sp.slaveMask.Store(0)
	sp.cpus.Store(1) // the master itself

	master.splitPoint = sp

	var booked []*worker
	for i := 0; i < p.activeWorkers && int(sp.cpus.Load()) < p.maxThreadsPerSplit; i++ {
		s := p.workers[i]
		if p.isAvailableTo(s, master) {
			s.state.Store(int32(stateBooked))
			s.stop.Store(false)
			s.splitPoint = sp
			sp.slaveMask.Or(1 << uint(i))
			sp.cpus.Add(1)
			booked = append(booked, s)
		}
	}

	if len(booked) == 0 {
		master.activeSplitPoints--
		master.splitPoint = sp.parent
		p.enlistMu.Unlock()
		return false
	}
	p.enlistMu.Unlock()

	// Hand each slave the master's stack tail, then release them. The master
	// flags itself too and joins through its own idle loop, which returns
	// when every participant has checked out of the split point.
	for _, s := range booked {
		copyStackTail(&master.stack, &s.stack, ply)
		s.sleepMu.Lock()
		s.state.Store(int32(stateWorkWaiting))
		s.workWaiting = true
		s.sleepCond.Signal()
		s.sleepMu.Unlock()
	}

	master.sleepMu.Lock()
	master.workWaiting = true
	master.sleepMu.Unlock()

	// The master joins through its own idle loop: it first works off its
	// share of the split, then parks as available — recruitable by its own
	// slaves' deeper splits under the helpful-master rule — until every
	// participant has checked out.
	p.idleLoop(master, sp)

	// Only now does the master stop being a recruitment target.
	p.enlistMu.Lock()
	master.state.Store(int32(stateSearching))
	master.stop.Store(false)
	master.activeSplitPoints--
	master.splitPoint = sp.parent
	p.enlistMu.Unlock()

	sp.mu.Lock()
	if pvNode {
		*alpha = sp.alpha
	}
	*bestValue = sp.bestValue
	sp.mu.Unlock()

	return true
}

// spSearch runs one participant's share of a split point. It mirrors the
// serial move loop: moves come off the shared picker under the split-point
// mutex, get searched on a private copy of the position, and improvements
// flow back under the same mutex.
func (e *Engine) spSearch(sp *splitPoint, w *worker) {
	pos := position{board: sp.board}
	pos.hist = append(make([]uint64, 0, len(sp.hist)+plyMaxPlus2), sp.hist...)

	ss := &w.stack
	ply := sp.ply
	startNodes := w.nodes.Load()
	inCheck := pos.board.OurKingInCheck()
	useFutility := !sp.pvNode && !inCheck && sp.depth < selectiveDepth
	futilityMoveCount := 3 + (1 << (3 * int(sp.depth) / 8))

	sp.mu.Lock()
	for sp.bestValue < sp.beta && !(sp.pvNode && sp.alpha >= sp.beta) && !e.threadShouldStop(w) {
		move := sp.mp.nextMove()
		if move == moveNone {
			break
		}
		sp.moveCount++
		moveCount := sp.moveCount
		localAlpha := sp.alpha
		localBeta := sp.beta
		sp.mu.Unlock()

		moveIsCheck := pos.board.GivesCheck(move)
		captureOrPromotion := isCaptureOrPromotion(move)
		ss[ply].currentMove = move

		ext, dangerous := e.extension(&pos, move, sp.pvNode, captureOrPromotion, moveIsCheck, false, sp.mateThreat)
		newDepth := sp.depth - onePly + ext

		// Futility pruning, against the shared best value.
		if useFutility && !dangerous && !captureOrPromotion && !isCastle(move) {
			if moveCount >= futilityMoveCount &&
				okToPrune(&pos.board, move, ss[ply].threatMove) &&
				sp.bestValue > matedIn(plyMax) {
				sp.mu.Lock()
				continue
			}
			futilityValueScaled := sp.eval + futilityMargin(newDepth) +
				e.history.gain(move.MovedPiece(), move.To()) + 45 -
				Value(moveCount)*incrementalFutilityMargin
			if futilityValueScaled < localBeta {
				sp.mu.Lock()
				if futilityValueScaled > sp.bestValue {
					sp.bestValue = futilityValueScaled
				}
				continue
			}
		}

		st, ok := pos.doMove(move)
		if !ok {
			sp.mu.Lock()
			continue
		}

		var value Value
		doFullDepthSearch := true

		if !dangerous && !captureOrPromotion && !isCastle(move) && !moveIsKiller(move, &ss[ply]) {
			var r Depth
			if sp.pvNode {
				r = pvReduction(sp.depth, moveCount)
			} else {
				r = nonPVReduction(sp.depth, moveCount)
			}
			if r > 0 {
				ss[ply].reduction = r
				value = -e.search(w, &pos, -(localAlpha + 1), -localAlpha, newDepth-r, ply+1, true, moveNone)
				if sp.pvNode {
					doFullDepthSearch = value > localAlpha
				} else {
					doFullDepthSearch = value >= localBeta
				}
			}
		}

		if doFullDepthSearch {
			ss[ply].reduction = depthZero
			value = -e.search(w, &pos, -(localAlpha + 1), -localAlpha, newDepth, ply+1, true, moveNone)

			if sp.pvNode && value > localAlpha && value < localBeta {
				// Another worker may have raised alpha past beta already.
				localAlpha = spAlpha(sp)
				if localAlpha < localBeta {
					value = -e.search(w, &pos, -localBeta, -localAlpha, newDepth, ply+1, true, moveNone)
				}
			}
		}
		pos.undoMove(move, st)

		if e.threadShouldStop(w) {
			sp.mu.Lock()
			break
		}

		sp.mu.Lock()
		if value > sp.bestValue && !e.threadShouldStop(w) {
			sp.bestValue = value
			if sp.pvNode && value > sp.alpha {
				if value >= sp.beta {
					sp.finished.Store(true)
					sp.stopPeers(w, e.pool)
				} else {
					sp.alpha = value
				}
				spUpdatePV(sp.parentStack, ss, ply)
				if value == mateIn(ply+1) {
					ss[ply].mateKiller = move
				}
			} else if !sp.pvNode && value >= sp.beta {
				sp.finished.Store(true)
				sp.stopPeers(w, e.pool)
				spUpdatePV(sp.parentStack, ss, ply)
			}
		}
	}

	// sp.mu is held here. A master told to stop because of a cutoff above
	// this split point drags its remaining slaves with it.
	if sp.master == w && e.threadShouldStop(w) {
		sp.finished.Store(true)
		sp.stopPeers(w, e.pool)
	}

	sp.nodes += w.nodes.Load() - startNodes
	clearSlaveBit(&sp.slaveMask, w.id)
	sp.cpus.Add(-1)
	masterWorker := sp.master
	sp.mu.Unlock()

	// The master may be parked in its join loop; let it re-check.
	if masterWorker != w {
		masterWorker.wakeUp()
	}
}

func spAlpha(sp *splitPoint) Value {
	sp.mu.Lock()
	a := sp.alpha
	sp.mu.Unlock()
	return a
}

func clearSlaveBit(mask *atomic.Uint64, id int) {
	mask.And(^(uint64(1) << uint(id)))
}
