package engine

import (
	"sync/atomic"
	"testing"

	gm "github.com/Oliverans/GooseEngineMG/goosemg"
)

func TestTTStoreRetrieveRoundTrip(t *testing.T) {
	var tt transTable
	tt.setSize(1)
	tt.newSearch()

	key := uint64(0xDEADBEEFCAFE1234)
	move := gm.NewMove(12, 28, gm.WhitePawn, gm.NoPiece, gm.NoPiece, 0)
	tt.store(key, 123, boundExact, 8*onePly, move, false)

	entry, ok := tt.retrieve(key)
	if !ok {
		t.Fatal("stored entry not found")
	}
	if entry.value != 123 || entry.bound != boundExact || entry.depth != 8*onePly || entry.move != move {
		t.Fatalf("entry mismatch: %+v", entry)
	}
}

func TestTTSameKeyOverwrites(t *testing.T) {
	var tt transTable
	tt.setSize(1)
	tt.newSearch()

	key := uint64(0x1111222233334444)
	move := gm.NewMove(1, 18, gm.WhiteKnight, gm.NoPiece, gm.NoPiece, 0)
	tt.store(key, 50, boundLower, 4*onePly, move, false)
	tt.store(key, -20, boundExact, 2*onePly, moveNone, false)

	entry, ok := tt.retrieve(key)
	if !ok {
		t.Fatal("entry lost after overwrite")
	}
	if entry.value != -20 || entry.bound != boundExact {
		t.Fatalf("overwrite did not win: %+v", entry)
	}
	// A store without a move keeps the previous best move.
	if entry.move != move {
		t.Fatalf("move not preserved on same-key store: got %v", entry.move)
	}
}

func TestTTZeroSizeRoundsUp(t *testing.T) {
	var tt transTable
	tt.setSize(0)
	if tt.clusterCount != 1 {
		t.Fatalf("setSize(0): clusterCount = %d, want 1", tt.clusterCount)
	}
	tt.store(42, 7, boundExact, onePly, moveNone, false)
	if _, ok := tt.retrieve(42); !ok {
		t.Fatal("tiny table cannot store")
	}
}

func TestTTRejectsCorruptBoundBits(t *testing.T) {
	var tt transTable
	tt.setSize(1)
	tt.newSearch()

	key := uint64(0x5555666677778888)
	tt.store(key, 10, boundExact, onePly, moveNone, false)

	// Forge an in-range key word around impossible bound bits, the way a
	// torn write could.
	e := &tt.entries[tt.firstOfCluster(key)]
	d2 := atomic.LoadUint64(&e.data2)
	badD1 := uint64(7) << 32 // bound bits outside the enum
	atomic.StoreUint64(&e.data1, badD1)
	atomic.StoreUint64(&e.key, key^badD1^d2)

	if _, ok := tt.retrieve(key); ok {
		t.Fatal("entry with invalid bound bits must not be returned")
	}
}

func TestTTClusterReplacementPrefersShallowOld(t *testing.T) {
	var tt transTable
	tt.setSize(1)
	tt.newSearch()

	base := uint64(0x9999)
	stride := tt.clusterCount // same cluster, different keys
	for i := uint64(0); i < clusterSize; i++ {
		tt.store(base+i*stride, Value(i), boundExact, Depth(10+i)*onePly, moveNone, false)
	}
	// The cluster is full; this store evicts the lowest-priority slot.
	extra := base + clusterSize*stride
	tt.store(extra, 99, boundExact, 30*onePly, moveNone, false)

	if _, ok := tt.retrieve(extra); !ok {
		t.Fatal("new entry was not stored into the full cluster")
	}
	survivors := 0
	for i := uint64(0); i < clusterSize; i++ {
		if _, ok := tt.retrieve(base + i*stride); ok {
			survivors++
		}
	}
	if survivors != clusterSize-1 {
		t.Fatalf("expected exactly one eviction, %d survivors", survivors)
	}
	// The shallowest entry is the one that should have gone.
	if _, ok := tt.retrieve(base); ok {
		t.Fatal("shallowest entry survived eviction")
	}
}

func TestTTGenerationAgesEntries(t *testing.T) {
	var tt transTable
	tt.setSize(1)
	tt.newSearch()

	base := uint64(0xAB)
	stride := tt.clusterCount
	tt.store(base, 1, boundExact, 20*onePly, moveNone, false)

	// Several searches later the old deep entry loses to fresh shallow ones.
	for i := 0; i < 8; i++ {
		tt.newSearch()
	}
	for i := uint64(1); i <= clusterSize; i++ {
		tt.store(base+i*stride, Value(i), boundExact, onePly, moveNone, false)
	}
	if _, ok := tt.retrieve(base); ok {
		t.Fatal("stale deep entry should have been evicted by aged priority")
	}
}

func TestTTInsertAndExtractPV(t *testing.T) {
	var tt transTable
	tt.setSize(1)
	tt.newSearch()

	board := gm.ParseFen(gm.Startpos)
	pv := []gm.Move{
		findMoveByString(t, &board, "e2e4"),
	}
	// Find the reply on the position after e2e4.
	next := board
	next.Apply(pv[0])
	pv = append(pv, findMoveByString(t, &next, "e7e5"))

	tt.insertPV(board, pv)

	got := tt.extractPV(board, pv[0], 10)
	if len(got) < 2 || got[0] != pv[0] || got[1] != pv[1] {
		t.Fatalf("extracted PV %v, want prefix %v", got, pv)
	}
}

func findMoveByString(t *testing.T, b *gm.Board, s string) gm.Move {
	t.Helper()
	for _, m := range b.GenerateLegalMoves() {
		if m.String() == s {
			return m
		}
	}
	t.Fatalf("move %s not legal in %s", s, b.ToFen())
	return moveNone
}
