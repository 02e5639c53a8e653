package engine

import (
	"sync/atomic"

	gm "github.com/Oliverans/GooseEngineMG/goosemg"
)

// =============================================================================
// BOUND TYPES
// =============================================================================
// The eval-flavored bounds mark entries whose value is the static evaluation,
// so the search can reuse it instead of calling evaluate. They keep their
// upper/lower bit: eval-lower entries are stamped at depthNone and never pass
// the depth test of okToUseTT, while eval-upper entries written by quiescence
// at its own depth can cut like any other upper bound.
const (
	boundNone      uint8 = 0
	boundUpper     uint8 = 1
	boundLower     uint8 = 2
	boundExact     uint8 = boundUpper | boundLower
	boundEval      uint8 = 4
	boundEvalUpper uint8 = boundEval | boundUpper
	boundEvalLower uint8 = boundEval | boundLower
)

func isLowerBound(b uint8) bool { return b&boundLower != 0 }
func isUpperBound(b uint8) bool { return b&boundUpper != 0 }

// boundIsValid rejects any bit pattern outside the enumeration, so a torn
// entry can never leak an impossible bound into the search.
func boundIsValid(b uint8) bool {
	switch b {
	case boundUpper, boundLower, boundExact, boundEvalUpper, boundEvalLower:
		return true
	}
	return false
}

// =============================================================================
// TRANSPOSITION TABLE
// =============================================================================
// Entries are three 64-bit words accessed only through sync/atomic. The key
// word holds key ^ data1 ^ data2, so a torn write almost certainly fails the
// key check on probe instead of yielding a frankenstein entry.
//
//	data1: move(32) | bound(3) | staticEvalFlag(1) | generation(8)
//	data2: value(16) | depth(16)

const clusterSize = 4

type ttEntry struct {
	key   uint64
	data1 uint64
	data2 uint64
}

// ttData is a decoded, validated entry handed to the search.
type ttData struct {
	move       gm.Move
	value      Value
	depth      Depth
	bound      uint8
	staticEval bool
	generation uint8
}

type transTable struct {
	entries      []ttEntry
	clusterCount uint64
	generation   uint32
}

func packData1(move gm.Move, bound uint8, staticEval bool, generation uint8) uint64 {
	d := uint64(uint32(move))
	d |= uint64(bound&7) << 32
	if staticEval {
		d |= 1 << 35
	}
	d |= uint64(generation) << 36
	return d
}

func packData2(value Value, depth Depth) uint64 {
	return uint64(uint16(int16(value))) | uint64(uint16(int16(depth)))<<16
}

func unpackEntry(key, d1, d2 uint64) ttData {
	return ttData{
		move:       gm.Move(uint32(d1)),
		bound:      uint8((d1 >> 32) & 7),
		staticEval: (d1>>35)&1 != 0,
		generation: uint8(d1 >> 36),
		value:      Value(int16(uint16(d2))),
		depth:      Depth(int16(uint16(d2 >> 16))),
	}
}

// setSize reallocates the table to the largest power-of-two number of
// clusters that fits in the requested megabytes. A cluster is 96 bytes, so
// the byte size itself is not a power of two. Zero or tiny requests round to
// one cluster.
func (tt *transTable) setSize(mb int) {
	if mb < 0 {
		mb = 0
	}
	targetBytes := uint64(mb) * 1024 * 1024
	clusterBytes := uint64(clusterSize) * 24

	clusterCount := uint64(1)
	for clusterCount*2*clusterBytes <= targetBytes {
		clusterCount *= 2
	}
	tt.clusterCount = clusterCount
	tt.entries = make([]ttEntry, clusterCount*clusterSize)
}

func (tt *transTable) clear() {
	for i := range tt.entries {
		tt.entries[i] = ttEntry{}
	}
}

// newSearch advances the generation stamp; it wraps at 256 which is fine
// because replacement only looks at the stamp difference.
func (tt *transTable) newSearch() {
	atomic.AddUint32(&tt.generation, 1)
}

func (tt *transTable) currentGeneration() uint8 {
	return uint8(atomic.LoadUint32(&tt.generation))
}

func (tt *transTable) firstOfCluster(key uint64) int {
	return int(key&(tt.clusterCount-1)) * clusterSize
}

// retrieve returns the decoded entry for key, or ok == false when the cluster
// has no matching slot or the matching slot fails validation.
func (tt *transTable) retrieve(key uint64) (ttData, bool) {
	if tt.clusterCount == 0 {
		return ttData{}, false
	}
	base := tt.firstOfCluster(key)
	for i := 0; i < clusterSize; i++ {
		e := &tt.entries[base+i]
		k := atomic.LoadUint64(&e.key)
		d1 := atomic.LoadUint64(&e.data1)
		d2 := atomic.LoadUint64(&e.data2)
		if k^d1^d2 != key || (k|d1|d2) == 0 {
			continue
		}
		data := unpackEntry(key, d1, d2)
		if !boundIsValid(data.bound) {
			return ttData{}, false
		}
		return data, true
	}
	return ttData{}, false
}

// store writes an entry for key. Slot choice inside the cluster: an existing
// entry for the same key always wins, then an empty slot, then the slot with
// the lowest depth-minus-age priority.
func (tt *transTable) store(key uint64, value Value, bound uint8, depth Depth, move gm.Move, staticEval bool) {
	if tt.clusterCount == 0 {
		return
	}
	generation := tt.currentGeneration()
	base := tt.firstOfCluster(key)

	target := -1
	for i := 0; i < clusterSize; i++ {
		e := &tt.entries[base+i]
		k := atomic.LoadUint64(&e.key)
		d1 := atomic.LoadUint64(&e.data1)
		d2 := atomic.LoadUint64(&e.data2)
		if (k | d1 | d2) == 0 {
			if target == -1 {
				target = base + i
			}
			continue
		}
		if k^d1^d2 == key {
			// Same position: preserve the old move if the new store has none.
			if move == moveNone {
				move = gm.Move(uint32(d1))
			}
			target = base + i
			break
		}
	}

	if target == -1 {
		best := int32(1 << 30)
		for i := 0; i < clusterSize; i++ {
			e := &tt.entries[base+i]
			d1 := atomic.LoadUint64(&e.data1)
			d2 := atomic.LoadUint64(&e.data2)
			entry := unpackEntry(0, d1, d2)
			age := int32(uint8(generation - entry.generation))
			priority := int32(entry.depth) - 8*age
			if priority < best {
				best = priority
				target = base + i
			}
		}
	}

	d1 := packData1(move, bound, staticEval, generation)
	d2 := packData2(value, depth)
	e := &tt.entries[target]
	atomic.StoreUint64(&e.data1, d1)
	atomic.StoreUint64(&e.data2, d2)
	atomic.StoreUint64(&e.key, key^d1^d2)
}

// refresh restamps an existing entry with the current generation so the PV
// survives replacement churn.
func (tt *transTable) refresh(key uint64) {
	if tt.clusterCount == 0 {
		return
	}
	base := tt.firstOfCluster(key)
	for i := 0; i < clusterSize; i++ {
		e := &tt.entries[base+i]
		k := atomic.LoadUint64(&e.key)
		d1 := atomic.LoadUint64(&e.data1)
		d2 := atomic.LoadUint64(&e.data2)
		if k^d1^d2 != key || (k|d1|d2) == 0 {
			continue
		}
		newD1 := (d1 &^ (uint64(0xFF) << 36)) | uint64(tt.currentGeneration())<<36
		atomic.StoreUint64(&e.data1, newD1)
		atomic.StoreUint64(&e.key, key^newD1^d2)
		return
	}
}

// insertPV walks the principal variation from the given position, storing a
// minimal exact entry for every position along it. Called after each
// iteration so the PV can be rebuilt even after heavy table churn.
func (tt *transTable) insertPV(board gm.Board, pv []gm.Move) {
	for _, move := range pv {
		if move == moveNone {
			break
		}
		key := board.Hash()
		if entry, ok := tt.retrieve(key); ok && entry.move == move {
			tt.refresh(key)
		} else {
			tt.store(key, valueNone, boundExact, depthNone, move, false)
		}
		if ok, _ := board.MakeMove(move); !ok {
			break
		}
	}
}

// extractPV rebuilds the principal variation by walking best moves through
// the table, stopping on the first missing or illegal entry.
func (tt *transTable) extractPV(board gm.Board, firstMove gm.Move, maxLen int) []gm.Move {
	pv := make([]gm.Move, 0, maxLen)
	seen := make(map[uint64]bool, maxLen)

	if ok, _ := board.MakeMove(firstMove); !ok {
		return pv
	}
	pv = append(pv, firstMove)

	for len(pv) < maxLen {
		key := board.Hash()
		if seen[key] {
			break
		}
		seen[key] = true
		entry, ok := tt.retrieve(key)
		if !ok || entry.move == moveNone {
			break
		}
		if legal, _ := board.MakeMove(entry.move); !legal {
			break
		}
		pv = append(pv, entry.move)
	}
	return pv
}

// hashfull estimates the permille of entries belonging to this search.
func (tt *transTable) hashfull() int {
	sampled, hit := 0, 0
	generation := tt.currentGeneration()
	for i := 0; i < len(tt.entries) && sampled < 1000; i++ {
		e := &tt.entries[i]
		if atomic.LoadUint64(&e.key) == 0 && atomic.LoadUint64(&e.data1) == 0 {
			sampled++
			continue
		}
		sampled++
		if uint8(atomic.LoadUint64(&e.data1)>>36) == generation {
			hit++
		}
	}
	if sampled == 0 {
		return 0
	}
	return hit * 1000 / sampled
}
