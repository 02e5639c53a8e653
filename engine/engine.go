package engine

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	gm "github.com/Oliverans/GooseEngineMG/goosemg"
)

type signalSet struct {
	stop            atomic.Bool
	stopOnPonderhit atomic.Bool
	failLow         atomic.Bool
}

// Engine ties the pieces together: the shared transposition table and
// history, the worker pool, the root position, and the parking spot for the
// main worker which runs the iterative deepening driver.
type Engine struct {
	options []*Option

	tt      transTable
	history historyTable
	pool    *workerPool

	board    gm.Board
	gameHist []uint64

	cfg     searchConfig
	limits  Limits
	tm      timeManager
	signals signalSet
	ponder  atomic.Bool
	problem atomic.Bool

	iteration        atomic.Int32
	rootMoveNumber   atomic.Int32
	aspirationDelta  Value
	valueByIteration [plyMaxPlus2]Value
	bestMoveChanges  [plyMaxPlus2]int

	nodesBetweenPolls int32
	lastInfoTime      int

	// Main worker parking: thinkPending hands a job to the main loop,
	// thinking is cleared when it parks again.
	mainMu       sync.Mutex
	mainCond     *sync.Cond
	thinkPending bool
	thinking     bool
	quitting     bool
	mainDone     chan struct{}

	// waitForStopOrPonderhit parks here until Stop (or a ponderhit with
	// stop-on-ponderhit set) arrives.
	stopWaitMu   sync.Mutex
	stopWaitCond *sync.Cond

	timerReset chan int
	timerDone  chan struct{}

	log *searchLog

	// Result of the last completed search.
	lastBestMove   gm.Move
	lastPonderMove gm.Move
	lastScore      Value
}

// BestMove returns the best move of the last finished search (the zero move
// when the root had no legal move).
func (e *Engine) BestMove() gm.Move { return e.lastBestMove }

// PonderMove returns the expected reply from the last search's PV.
func (e *Engine) PonderMove() gm.Move { return e.lastPonderMove }

// Score returns the last search's root score from the engine's point of view.
func (e *Engine) Score() Value { return e.lastScore }

// NewEngine builds an engine with the starting position, launches the main
// worker and the timer, and sizes the TT to the Hash default.
func NewEngine() *Engine {
	e := &Engine{
		options:           newOptionTable(),
		nodesBetweenPolls: 30000,
		mainDone:          make(chan struct{}),
		timerReset:        make(chan int, 1),
		timerDone:         make(chan struct{}),
	}
	e.mainCond = sync.NewCond(&e.mainMu)
	e.stopWaitCond = sync.NewCond(&e.stopWaitMu)
	e.pool = newWorkerPool(e)
	e.tt.setSize(e.findOption("Hash").IntVal)
	e.board = gm.ParseFen(gm.Startpos)
	e.gameHist = append(e.gameHist[:0], e.board.Hash())

	go e.mainLoop()
	go e.timerLoop()
	return e
}

// =============================================================================
// POSITION AND GAME STATE
// =============================================================================

// NewGame resets to the starting position and clears transient state.
func (e *Engine) NewGame() {
	e.WaitSearchDone()
	e.board = gm.ParseFen(gm.Startpos)
	e.gameHist = append(e.gameHist[:0], e.board.Hash())
	e.tt.clear()
	e.history.clear()
}

// SetPosition sets the root from a FEN ("startpos" semantics are handled by
// the caller passing gm.Startpos) and applies the listed UCI moves.
func (e *Engine) SetPosition(fen string, moves []string) error {
	e.WaitSearchDone()
	board, err := gm.ParseFEN(fen)
	if err != nil {
		return fmt.Errorf("invalid fen: %w", err)
	}
	e.board = *board
	e.gameHist = append(e.gameHist[:0], e.board.Hash())

	for _, moveStr := range moves {
		found := moveNone
		for _, m := range e.board.GenerateLegalMoves() {
			if m.String() == moveStr {
				found = m
				break
			}
		}
		if found == moveNone {
			return fmt.Errorf("move %s not legal in position %s", moveStr, e.board.ToFen())
		}
		e.board.Apply(found)
		e.gameHist = append(e.gameHist, e.board.Hash())
	}
	return nil
}

// Board returns a copy of the current root position.
func (e *Engine) Board() gm.Board { return e.board }

// =============================================================================
// SEARCH CONTROL
// =============================================================================

// StartThinking wakes the main worker with a new search job and returns
// immediately; the bestmove line is printed by the main worker.
func (e *Engine) StartThinking(l Limits) {
	e.WaitSearchDone()

	e.mainMu.Lock()
	e.signals.stop.Store(false)
	e.signals.stopOnPonderhit.Store(false)
	e.signals.failLow.Store(false)
	e.problem.Store(false)
	e.ponder.Store(l.Ponder)
	e.limits = l
	e.thinkPending = true
	e.mainCond.Broadcast()
	e.mainMu.Unlock()
}

// WaitSearchDone blocks until the main worker is parked again.
func (e *Engine) WaitSearchDone() {
	e.mainMu.Lock()
	for e.thinking || e.thinkPending {
		e.mainCond.Wait()
	}
	e.mainMu.Unlock()
}

// Stop aborts the search; the driver emits the best move found so far.
func (e *Engine) Stop() {
	e.ponder.Store(false)
	e.raiseStop()
}

func (e *Engine) raiseStop() {
	e.signals.stop.Store(true)
	e.stopWaitMu.Lock()
	e.stopWaitCond.Broadcast()
	e.stopWaitMu.Unlock()
	// Kick sleeping helpers so they observe the flag promptly.
	for i := 1; i < e.pool.started; i++ {
		e.pool.workers[i].wakeUp()
	}
}

// PonderHit converts the ponder search into a normal one; time accounting
// resumes from this moment against the budget computed at go time.
func (e *Engine) PonderHit() {
	e.ponder.Store(false)

	// The driver parks with stop-on-ponderhit armed once it has nothing
	// left to search; releasing it is all a ponderhit means then.
	if e.signals.stopOnPonderhit.Load() {
		e.raiseStop()
		return
	}

	t := e.tm.elapsed()
	stillAtFirstMove := e.rootMoveNumber.Load() == 1 &&
		!e.signals.failLow.Load() &&
		t > e.tm.maxSearchTime+e.tm.extraSearchTime
	noMoreTime := t > e.tm.absoluteMaxSearchTime || stillAtFirstMove

	if int(e.iteration.Load()) >= 3 && e.tm.useTimeManagement && noMoreTime {
		e.raiseStop()
	}
	e.setTimer(e.tm.hardDeadline() - t)
}

// Quit stops everything and tears the threads down.
func (e *Engine) Quit() {
	e.Stop()
	e.WaitSearchDone()

	e.mainMu.Lock()
	e.quitting = true
	e.mainCond.Broadcast()
	e.mainMu.Unlock()
	<-e.mainDone

	e.pool.exit()
	close(e.timerReset)
	<-e.timerDone
	e.log.close()
}

// waitForStopOrPonderhit parks the main worker once the search is done but
// the protocol forbids printing bestmove yet.
func (e *Engine) waitForStopOrPonderhit() {
	e.signals.stopOnPonderhit.Store(true)
	e.stopWaitMu.Lock()
	for !e.signals.stop.Load() {
		e.stopWaitCond.Wait()
	}
	e.stopWaitMu.Unlock()
}

// =============================================================================
// MAIN WORKER
// =============================================================================

func (e *Engine) mainLoop() {
	defer close(e.mainDone)
	w := e.pool.workers[0]

	for {
		e.mainMu.Lock()
		e.thinking = false
		e.mainCond.Broadcast()
		for !e.thinkPending && !e.quitting {
			e.mainCond.Wait()
		}
		if e.quitting {
			e.mainMu.Unlock()
			return
		}
		e.thinkPending = false
		e.thinking = true
		e.mainMu.Unlock()

		e.think(w)
	}
}

// think prepares one search: snapshot the options, size the pool, set the
// clock and the timer, then hand over to the iterative deepening loop.
func (e *Engine) think(w *worker) {
	e.cfg = e.snapshotConfig()

	e.pool.minimumSplitDepth = e.cfg.minimumSplitDepth
	e.pool.maxThreadsPerSplit = e.cfg.maxThreadsPerSplit
	e.pool.useSleepingThreads = e.cfg.useSleepingThreads
	e.pool.allShouldExit.Store(false)
	e.pool.setSize(e.cfg.threads)
	e.pool.activeWorkers = e.cfg.threads
	e.pool.resetForSearch()

	e.tm.init(e.limits, e.board.SideToMove() == gm.White, e.cfg.ponderEnabled)
	e.iteration.Store(0)
	e.rootMoveNumber.Store(0)
	e.aspirationDelta = 0
	e.lastInfoTime = 0

	// Poll cadence: tight clocks poll more often.
	myTime := e.limits.BTime
	if e.board.SideToMove() == gm.White {
		myTime = e.limits.WTime
	}
	switch {
	case e.limits.Nodes > 0:
		e.nodesBetweenPolls = int32(Min(int(e.limits.Nodes), 30000))
	case myTime > 0 && myTime < 1000:
		e.nodesBetweenPolls = 1000
	case myTime > 0 && myTime < 5000:
		e.nodesBetweenPolls = 5000
	default:
		e.nodesBetweenPolls = 30000
	}
	w.pollBudget = e.nodesBetweenPolls

	if e.cfg.useSearchLog {
		e.log = e.log.reopen(e.cfg.searchLogFile)
		e.log.printf("Searching: %s\ninfinite: %v ponder: %v time: %d increment: %d moves to go: %d\n",
			e.board.ToFen(), e.limits.Infinite, e.limits.Ponder,
			myTime, e.limits.WInc+e.limits.BInc, e.limits.MovesToGo)
	}

	if !e.limits.Ponder {
		e.setTimer(e.tm.hardDeadline())
	}

	e.idLoop(w)
	e.setTimer(0)
}

// =============================================================================
// TIMER WORKER
// =============================================================================

// setTimer arms the timer thread to raise the stop flag after msec
// milliseconds; msec <= 0 disarms it.
func (e *Engine) setTimer(msec int) {
	select {
	case e.timerReset <- msec:
	default:
		// A pending reset is about to be consumed; push the fresh value.
		select {
		case <-e.timerReset:
		default:
		}
		e.timerReset <- msec
	}
}

func (e *Engine) timerLoop() {
	defer close(e.timerDone)
	timer := time.NewTimer(time.Hour)
	timer.Stop()

	for {
		select {
		case msec, ok := <-e.timerReset:
			if !ok {
				timer.Stop()
				return
			}
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			if msec > 0 {
				timer.Reset(time.Duration(msec) * time.Millisecond)
			}
		case <-timer.C:
			if !e.ponder.Load() {
				e.raiseStop()
			}
		}
	}
}
