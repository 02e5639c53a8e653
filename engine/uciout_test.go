package engine

import (
	"bytes"
	"os"
	"regexp"
	"strconv"
	"sync"
	"testing"
	"time"
)

// captureStdout redirects os.Stdout for the duration of fn and returns
// everything printed. The pipe is drained concurrently so large outputs
// cannot block the engine.
func captureStdout(t *testing.T, fn func()) string {
	t.Helper()
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	old := os.Stdout
	os.Stdout = w

	var mu sync.Mutex
	var buf bytes.Buffer
	done := make(chan struct{})
	go func() {
		defer close(done)
		tmp := make([]byte, 4096)
		for {
			n, err := r.Read(tmp)
			if n > 0 {
				mu.Lock()
				buf.Write(tmp[:n])
				mu.Unlock()
			}
			if err != nil {
				return
			}
		}
	}()

	fn()

	os.Stdout = old
	w.Close()
	<-done
	mu.Lock()
	defer mu.Unlock()
	return buf.String()
}

func TestMultiPVOutput(t *testing.T) {
	e := newTestEngine(t)
	if err := e.SetOption("MultiPV", "3"); err != nil {
		t.Fatal(err)
	}

	out := captureStdout(t, func() {
		e.StartThinking(Limits{Depth: 5})
		e.WaitSearchDone()
	})

	re := regexp.MustCompile(`info multipv (\d+) depth \d+ score cp (-?\d+)`)
	last := map[int]int{}
	for _, m := range re.FindAllStringSubmatch(out, -1) {
		idx, _ := strconv.Atoi(m[1])
		score, _ := strconv.Atoi(m[2])
		last[idx] = score
	}
	for k := 1; k <= 3; k++ {
		if _, ok := last[k]; !ok {
			t.Fatalf("no multipv %d line in output:\n%s", k, out)
		}
	}
	if last[1] < last[2] || last[2] < last[3] {
		t.Fatalf("multipv scores not non-increasing: %v", last)
	}
}

func TestPonderDoesNotPrintBestmoveEarly(t *testing.T) {
	e := newTestEngine(t)

	r, w, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	old := os.Stdout
	os.Stdout = w

	var mu sync.Mutex
	var buf bytes.Buffer
	done := make(chan struct{})
	go func() {
		defer close(done)
		tmp := make([]byte, 4096)
		for {
			n, err := r.Read(tmp)
			if n > 0 {
				mu.Lock()
				buf.Write(tmp[:n])
				mu.Unlock()
			}
			if err != nil {
				return
			}
		}
	}()

	e.StartThinking(Limits{Ponder: true, WTime: 60000, BTime: 60000, Depth: 3})
	time.Sleep(400 * time.Millisecond)

	mu.Lock()
	early := buf.String()
	mu.Unlock()
	if bytes.Contains([]byte(early), []byte("bestmove")) {
		os.Stdout = old
		t.Fatalf("bestmove printed while pondering:\n%s", early)
	}

	e.Stop()
	e.WaitSearchDone()

	os.Stdout = old
	w.Close()
	<-done

	mu.Lock()
	full := buf.String()
	mu.Unlock()
	if !bytes.Contains([]byte(full), []byte("bestmove")) {
		t.Fatalf("no bestmove after stop:\n%s", full)
	}
}

func TestMoveTimeHonored(t *testing.T) {
	e := newTestEngine(t)

	start := time.Now()
	captureStdout(t, func() {
		e.StartThinking(Limits{MoveTime: 300})
		e.WaitSearchDone()
	})
	elapsed := time.Since(start)

	if elapsed < 150*time.Millisecond {
		t.Fatalf("search returned after %v, before the movetime budget", elapsed)
	}
	if elapsed > 2*time.Second {
		t.Fatalf("search overran movetime 300ms by far: %v", elapsed)
	}
}
