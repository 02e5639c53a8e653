package engine

import (
	"strconv"
	"testing"
	"time"
)

const kiwipeteFEN = "r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1"

func TestParallelSearchJoinInvariants(t *testing.T) {
	e := newTestEngine(t)
	if err := e.SetOption("Threads", "4"); err != nil {
		t.Fatal(err)
	}
	if err := e.SetOption("Minimum Split Depth", "4"); err != nil {
		t.Fatal(err)
	}
	if err := e.SetPosition(kiwipeteFEN, nil); err != nil {
		t.Fatal(err)
	}

	e.StartThinking(Limits{Depth: 7})
	e.WaitSearchDone()

	if e.pool.nodesSearched() == 0 {
		t.Fatal("no nodes searched")
	}

	// After the join, every split point must be fully drained.
	for i := 0; i < e.pool.started; i++ {
		w := e.pool.workers[i]
		if w.activeSplitPoints != 0 {
			t.Fatalf("worker %d still owns %d split points", i, w.activeSplitPoints)
		}
		for j := range w.splitPoints {
			sp := &w.splitPoints[j]
			if sp.cpus.Load() != 0 {
				t.Fatalf("worker %d split point %d has cpus=%d after search", i, j, sp.cpus.Load())
			}
			if sp.slaveMask.Load() != 0 {
				t.Fatalf("worker %d split point %d has live slaves %b", i, j, sp.slaveMask.Load())
			}
		}
	}

	// And the best move must be legal in the root position.
	board := e.Board()
	found := false
	for _, m := range board.GenerateLegalMoves() {
		if m == e.BestMove() {
			found = true
			break
		}
	}
	if !found {
		t.Fatalf("best move %s is not legal at the root", e.BestMove().String())
	}
}

func TestParallelSearchFindsSameMate(t *testing.T) {
	for _, threads := range []int{1, 4} {
		e := newTestEngine(t)
		if err := e.SetOption("Threads", strconv.Itoa(threads)); err != nil {
			t.Fatal(err)
		}
		if err := e.SetPosition("4k3/8/4K3/8/8/8/8/4Q3 w - - 0 1", nil); err != nil {
			t.Fatal(err)
		}
		e.StartThinking(Limits{Depth: 6})
		e.WaitSearchDone()
		if e.Score() != mateIn(1) {
			t.Fatalf("threads=%d: score %s, want mate 1", threads, valueString(e.Score()))
		}
	}
}

func TestThreadShouldStopIsMonotonic(t *testing.T) {
	e := newTestEngine(t)
	w := e.pool.workers[1]

	if e.threadShouldStop(w) {
		t.Fatal("fresh worker reports stop")
	}
	w.stop.Store(true)
	if !e.threadShouldStop(w) {
		t.Fatal("stop flag not observed")
	}
	// The flag latches: a finished ancestor also raises it permanently.
	w.stop.Store(false)
	sp := &w.splitPoints[0]
	sp.finished.Store(true)
	w.splitPoint = sp
	if !e.threadShouldStop(w) {
		t.Fatal("finished ancestor split point not observed")
	}
	if !w.stop.Load() {
		t.Fatal("stop flag did not latch")
	}
	if !e.threadShouldStop(w) {
		t.Fatal("stop must stay raised once latched")
	}
}

func TestHelpfulMasterRule(t *testing.T) {
	e := newTestEngine(t)
	e.pool.setSize(4)
	e.pool.activeWorkers = 4

	master := e.pool.workers[0]
	slave := e.pool.workers[1]

	e.pool.enlistMu.Lock()
	slave.state.Store(int32(stateAvailable))
	slave.activeSplitPoints = 0
	ok := e.pool.isAvailableTo(slave, master)
	e.pool.enlistMu.Unlock()
	if !ok {
		t.Fatal("idle worker without split points must be available")
	}
}

// A master waiting for its own split point to drain parks through the real
// idle loop; while parked it must be recruitable by that split's
// participants, and only by them.
func TestWaitingMasterIsRecruitableByItsSlaves(t *testing.T) {
	e := newTestEngine(t)
	e.pool.setSize(4)
	e.pool.activeWorkers = 4

	master := e.pool.workers[0]
	peer := e.pool.workers[1]     // booked on the master's split
	outsider := e.pool.workers[3] // unrelated worker

	e.pool.enlistMu.Lock()
	sp := &master.splitPoints[0]
	sp.master = master
	sp.cpus.Store(1) // the peer has not checked out yet
	sp.slaveMask.Store(1 << uint(peer.id))
	master.activeSplitPoints = 1
	master.splitPoint = sp
	master.state.Store(int32(stateSearching))
	e.pool.enlistMu.Unlock()

	done := make(chan struct{})
	go func() {
		e.pool.idleLoop(master, sp)
		close(done)
	}()

	// Wait for the master to park in its join wait; parking must advertise
	// it as available.
	deadline := time.Now().Add(2 * time.Second)
	for workerState(master.state.Load()) != stateAvailable {
		if time.Now().After(deadline) {
			t.Fatal("waiting master never became available")
		}
		time.Sleep(time.Millisecond)
	}

	e.pool.enlistMu.Lock()
	okPeer := e.pool.isAvailableTo(master, peer)
	okOutsider := e.pool.isAvailableTo(master, outsider)
	e.pool.enlistMu.Unlock()

	if !okPeer {
		t.Fatal("participant of the master's topmost split must be able to recruit it")
	}
	if okOutsider {
		t.Fatal("worker outside the master's topmost split must be rejected")
	}

	// Drain the split point; the join loop must return.
	sp.cpus.Store(0)
	master.wakeUp()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("join loop did not return after the last slave checked out")
	}

	e.pool.enlistMu.Lock()
	master.activeSplitPoints = 0
	master.splitPoint = nil
	master.state.Store(int32(stateSearching))
	sp.slaveMask.Store(0)
	e.pool.enlistMu.Unlock()
}
