package engine

import (
	"sync/atomic"

	gm "github.com/Oliverans/GooseEngineMG/goosemg"
)

// historyMax bounds the table so history scores stay below the move picker's
// capture band.
const historyMax int32 = 10000

// historyTable holds the quiet-move statistics shared by every worker:
// history scores indexed by moving piece and destination square, and the
// gains table recording how much a quiet move tends to swing the static
// evaluation. Updates are rare compared to reads, so plain atomic adds are
// enough; a slightly stale read only perturbs move ordering.
type historyTable struct {
	history [16][64]int32
	gains   [16][64]int32
}

func (h *historyTable) clear() {
	for p := 0; p < 16; p++ {
		for sq := 0; sq < 64; sq++ {
			atomic.StoreInt32(&h.history[p][sq], 0)
			atomic.StoreInt32(&h.gains[p][sq], 0)
		}
	}
}

func (h *historyTable) value(p gm.Piece, to gm.Square) int32 {
	return atomic.LoadInt32(&h.history[p&15][to])
}

// success rewards a quiet move that produced a beta cutoff, weighted by
// depth squared. When any score hits the cap the whole table is aged.
func (h *historyTable) success(p gm.Piece, to gm.Square, depth Depth) {
	d := int32(depth / onePly)
	if atomic.AddInt32(&h.history[p&15][to], d*d) >= historyMax {
		h.age()
	}
}

// failure penalizes a quiet move that was searched before the cutoff move.
func (h *historyTable) failure(p gm.Piece, to gm.Square, depth Depth) {
	d := int32(depth / onePly)
	atomic.AddInt32(&h.history[p&15][to], -(d * d))
}

func (h *historyTable) age() {
	for p := 0; p < 16; p++ {
		for sq := 0; sq < 64; sq++ {
			atomic.StoreInt32(&h.history[p][sq], atomic.LoadInt32(&h.history[p][sq])/2)
		}
	}
}

func (h *historyTable) gain(p gm.Piece, to gm.Square) Value {
	return Value(atomic.LoadInt32(&h.gains[p&15][to]))
}

// setGain records the eval swing of a quiet move: raise immediately, decay
// slowly.
func (h *historyTable) setGain(p gm.Piece, to gm.Square, delta Value) {
	slot := &h.gains[p&15][to]
	cur := atomic.LoadInt32(slot)
	if int32(delta) >= cur {
		atomic.StoreInt32(slot, int32(delta))
	} else {
		atomic.StoreInt32(slot, cur-1)
	}
}
