package engine

import (
	"testing"

	gm "github.com/Oliverans/GooseEngineMG/goosemg"
)

func TestHistoryStaysBounded(t *testing.T) {
	var h historyTable
	piece := gm.WhiteKnight
	sq := gm.Square(18)

	for i := 0; i < 5000; i++ {
		h.success(piece, sq, 10*onePly)
	}
	if v := h.value(piece, sq); v >= historyMax {
		t.Fatalf("history value %d not kept below %d", v, historyMax)
	}
}

func TestHistoryFailurePenalizes(t *testing.T) {
	var h historyTable
	piece := gm.BlackQueen
	sq := gm.Square(40)

	h.success(piece, sq, 4*onePly)
	before := h.value(piece, sq)
	h.failure(piece, sq, 4*onePly)
	if after := h.value(piece, sq); after >= before {
		t.Fatalf("failure did not lower the score: %d -> %d", before, after)
	}
}

func TestGainsRaiseFastDecaySlow(t *testing.T) {
	var h historyTable
	piece := gm.WhiteRook
	sq := gm.Square(3)

	h.setGain(piece, sq, 50)
	if g := h.gain(piece, sq); g != 50 {
		t.Fatalf("gain = %d, want 50", g)
	}
	h.setGain(piece, sq, 10)
	if g := h.gain(piece, sq); g != 49 {
		t.Fatalf("gain after decay = %d, want 49", g)
	}
	h.setGain(piece, sq, 200)
	if g := h.gain(piece, sq); g != 200 {
		t.Fatalf("gain after raise = %d, want 200", g)
	}
}
