package engine

import (
	"runtime"
	"sync"
	"sync/atomic"
)

const (
	maxThreads           = 32
	maxActiveSplitPoints = 8
)

// Worker lifecycle states.
type workerState int32

const (
	stateInitializing workerState = iota
	stateSearching
	stateAvailable
	stateBooked
	stateWorkWaiting
	stateTerminated
)

// worker is one search thread. Workers own their stack, board copy, pawn
// cache and node counter; everything else they touch is shared and guarded
// as described on the owning type.
type worker struct {
	id   int
	pool *workerPool

	sleepMu     sync.Mutex
	sleepCond   *sync.Cond
	workWaiting bool // guarded by sleepMu

	state atomic.Int32 // workerState
	stop  atomic.Bool

	// splitPoint is the worker's current split assignment; only the owning
	// goroutine follows the chain, and masters write a slave's field only
	// while the slave is parked (the wakeup hand-off orders the accesses).
	splitPoint        *splitPoint
	activeSplitPoints int // guarded by pool.enlistMu
	splitPoints       [maxActiveSplitPoints]splitPoint

	nodes       atomic.Int64
	selDepth    atomic.Int32
	betaCutoffs [2]atomic.Int64

	stack searchStack
	pawn  pawnTable

	pollBudget int32 // main worker only
}

func (w *worker) wakeUp() {
	w.sleepMu.Lock()
	w.sleepCond.Signal()
	w.sleepMu.Unlock()
}

// workerPool owns the helper threads. The enlistment mutex is the single
// global lock of the scheme: it orders slave booking against availability
// checks, and it is always acquired before any split-point mutex, never
// after one.
type workerPool struct {
	eng     *Engine
	workers [maxThreads]*worker
	started int // goroutines launched so far (index 0 is the main worker)

	enlistMu sync.Mutex

	activeWorkers      int
	minimumSplitDepth  Depth
	maxThreadsPerSplit int
	useSleepingThreads bool

	allShouldExit atomic.Bool
	wg            sync.WaitGroup
}

func newWorkerPool(eng *Engine) *workerPool {
	p := &workerPool{eng: eng, activeWorkers: 1}
	for i := 0; i < maxThreads; i++ {
		w := &worker{id: i, pool: p}
		w.sleepCond = sync.NewCond(&w.sleepMu)
		w.state.Store(int32(stateInitializing))
		p.workers[i] = w
	}
	p.workers[0].state.Store(int32(stateSearching))
	p.started = 1
	return p
}

// setSize makes sure the first cnt workers have running goroutines. Helpers
// park themselves immediately; extra workers from a previous larger setting
// simply stay asleep and are never booked.
func (p *workerPool) setSize(cnt int) {
	if cnt < 1 {
		cnt = 1
	}
	if cnt > maxThreads {
		cnt = maxThreads
	}
	p.activeWorkers = cnt
	for i := p.started; i < cnt; i++ {
		w := p.workers[i]
		w.state.Store(int32(stateAvailable))
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			p.idleLoop(w, nil)
		}()
		p.started = i + 1
	}
}

// exit terminates every helper. The main worker is stopped by its own loop.
func (p *workerPool) exit() {
	p.allShouldExit.Store(true)
	for i := 1; i < p.started; i++ {
		p.workers[i].stop.Store(true)
		p.workers[i].wakeUp()
	}
	p.wg.Wait()
}

func (p *workerPool) resetForSearch() {
	for i := 0; i < p.started; i++ {
		w := p.workers[i]
		w.stop.Store(false)
		w.nodes.Store(0)
		w.selDepth.Store(0)
		w.betaCutoffs[0].Store(0)
		w.betaCutoffs[1].Store(0)
		w.activeSplitPoints = 0
		w.splitPoint = nil
		if i > 0 {
			w.state.Store(int32(stateAvailable))
		}
	}
}

func (p *workerPool) nodesSearched() int64 {
	var total int64
	for i := 0; i < p.started; i++ {
		total += p.workers[i].nodes.Load()
	}
	return total
}

func (p *workerPool) maxSelDepth() int {
	var m int32
	for i := 0; i < p.started; i++ {
		if d := p.workers[i].selDepth.Load(); d > m {
			m = d
		}
	}
	return int(m)
}

// isAvailableTo implements the helpful-master rule: an idle worker may only
// help a master that is itself working on the idle worker's topmost split
// point, unless the idle worker has no split points at all. Callers hold the
// enlistment mutex.
func (p *workerPool) isAvailableTo(slave, master *worker) bool {
	if slave == master || workerState(slave.state.Load()) != stateAvailable {
		return false
	}
	asp := slave.activeSplitPoints
	if asp == 0 {
		return true
	}
	return slave.splitPoints[asp-1].slaveMask.Load()&(1<<uint(master.id)) != 0
}

// idleWorkerExists reports whether any worker could be enlisted by master.
// Callers hold the enlistment mutex.
func (p *workerPool) idleWorkerExists(master *worker) bool {
	for i := 0; i < p.activeWorkers; i++ {
		if p.isAvailableTo(p.workers[i], master) {
			return true
		}
	}
	return false
}

// idleLoop parks a worker between jobs. When waitSp is non-nil the caller is
// the master of that split point: the loop doubles as its join point and
// returns once every participant has checked out. A parked worker always
// advertises itself as available first — including a master waiting on its
// own split, which is what makes the helpful-master recruitment possible:
// its slaves can book it back into their sub-splits, bounded by the
// topmost-split check in isAvailableTo.
func (p *workerPool) idleLoop(w *worker, waitSp *splitPoint) {
	for {
		if p.allShouldExit.Load() && waitSp == nil {
			w.state.Store(int32(stateTerminated))
			return
		}

		w.sleepMu.Lock()
		for !w.workWaiting && !p.allShouldExit.Load() &&
			!(waitSp != nil && waitSp.cpus.Load() == 0) {
			w.state.Store(int32(stateAvailable))
			if p.useSleepingThreads || waitSp != nil {
				w.sleepCond.Wait()
			} else {
				w.sleepMu.Unlock()
				runtime.Gosched()
				w.sleepMu.Lock()
			}
		}
		hasWork := w.workWaiting
		w.workWaiting = false
		w.sleepMu.Unlock()

		if hasWork {
			w.state.Store(int32(stateSearching))
			p.eng.spSearch(w.splitPoint, w)
			w.state.Store(int32(stateAvailable))
		}

		if waitSp != nil && (waitSp.cpus.Load() == 0 || p.allShouldExit.Load()) {
			return
		}
	}
}

// threadShouldStop composes the cancellation lattice for one worker: its own
// stop flag, or a finished ancestor split point. Once observed it latches the
// worker's stop flag, so the predicate is monotonic within a search.
func (e *Engine) threadShouldStop(w *worker) bool {
	if w.stop.Load() {
		return true
	}
	for sp := w.splitPoint; sp != nil; sp = sp.parent {
		if sp.finished.Load() {
			w.stop.Store(true)
			return true
		}
	}
	return false
}
