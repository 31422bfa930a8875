package search

import (
	"math"
	"sync/atomic"

	"github.com/pbnjay/memory"
	"github.com/rs/zerolog/log"

	"github.com/alxlyan/alexchess/evaluation"
)

const (
	TTExact = 0x01
	TTLower = 0x02
	TTUpper = 0x03
)

const entrySize = 16

const (
	minSizePowerOf2 = 10
	maxSizePowerOf2 = 32
)

// 16 bytes (entrySize)
type TableEntry struct {
	hash  uint64
	score int32
	play  PackedMove
	depth uint8
	flag  uint8
}

func (t TableEntry) valid() bool {
	// a table flag is 1, 2, or 3.
	return t.flag != 0
}

func (t TableEntry) Score() evaluation.Score {
	return evaluation.Score(t.score)
}

func (t TableEntry) Depth() int {
	return int(t.depth)
}

func (t TableEntry) Flag() uint8 {
	return t.flag
}

func (t TableEntry) Move() PackedMove {
	return t.play
}

// TableStats are counters since the last Reset or Clear.
type TableStats struct {
	Created    uint64
	Lookups    uint64
	Hits       uint64
	Collisions uint64
}

// TranspositionTable maps a position fingerprint to what the last search
// of that position learned about it. It has a fixed number of slots; a store
// always replaces whatever occupied the slot.
type TranspositionTable struct {
	table        []TableEntry
	created      atomic.Uint64
	lookups      atomic.Uint64
	hits         atomic.Uint64
	collisions   atomic.Uint64
	sizePowerOf2 int
	sizeMask     uint64
}

func (t *TranspositionTable) lookup(hash uint64) (TableEntry, bool) {
	t.lookups.Add(1)
	idx := hash & t.sizeMask
	entry := t.table[idx]
	if !entry.valid() {
		return TableEntry{}, false
	}
	if entry.hash != hash {
		// There is another unrelated position in this slot.
		t.collisions.Add(1)
		return TableEntry{}, false
	}
	t.hits.Add(1)
	return entry, true
}

func (t *TranspositionTable) store(hash uint64, entry TableEntry) {
	idx := hash & t.sizeMask
	entry.hash = hash
	// just overwrite whatever is there.
	t.table[idx] = entry
	t.created.Add(1)
}

// Lookup returns the entry stored for a fingerprint, if any.
func (t *TranspositionTable) Lookup(hash uint64) (TableEntry, bool) {
	return t.lookup(hash)
}

// Reset sizes the table to the largest power of two number of entries that
// fits in megabytes, but no more than fractionOfMemory of the system's RAM,
// and empties it.
func (t *TranspositionTable) Reset(megabytes int, fractionOfMemory float64) {
	desiredNElems := float64(megabytes) * (1 << 20) / entrySize
	totalMem := memory.TotalMemory()
	if fractionOfMemory > 0 && totalMem > 0 {
		capNElems := fractionOfMemory * (float64(totalMem) / entrySize)
		if capNElems < desiredNElems {
			desiredNElems = capNElems
		}
	}
	// find biggest power of 2 lower than desired.
	sizePowerOf2 := minSizePowerOf2
	if desiredNElems >= 1 {
		sizePowerOf2 = int(math.Log2(desiredNElems))
	}
	sizePowerOf2 = min(max(sizePowerOf2, minSizePowerOf2), maxSizePowerOf2)

	numElems := 1 << sizePowerOf2
	reset := false
	if t.table != nil && len(t.table) == numElems {
		reset = true
		clear(t.table)
	} else {
		t.table = make([]TableEntry, numElems)
	}
	t.sizePowerOf2 = sizePowerOf2
	t.sizeMask = uint64(numElems - 1)

	log.Info().Int("num-elems", numElems).
		Float64("desired-num-elems", desiredNElems).
		Int("estimated-total-memory-bytes", numElems*entrySize).
		Uint64("total-system-memory-bytes", totalMem).
		Bool("reset", reset).
		Msg("transposition-table-size")

	t.resetStats()
}

// Clear forgets every entry but keeps the allocation.
func (t *TranspositionTable) Clear() {
	clear(t.table)
	t.resetStats()
}

func (t *TranspositionTable) resetStats() {
	t.created.Store(0)
	t.lookups.Store(0)
	t.hits.Store(0)
	t.collisions.Store(0)
}

func (t *TranspositionTable) Size() int {
	return len(t.table)
}

func (t *TranspositionTable) Stats() TableStats {
	return TableStats{
		Created:    t.created.Load(),
		Lookups:    t.lookups.Load(),
		Hits:       t.hits.Load(),
		Collisions: t.collisions.Load(),
	}
}
