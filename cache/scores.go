// Package cache holds the search's position score cache and a small
// process-wide object cache.
package cache

import (
	"math"
	"sync/atomic"

	"github.com/pbnjay/memory"
	"github.com/rs/zerolog/log"
)

// ScoreCache maps a position identity to the last score computed for it.
// Scores carry no depth or bound information; callers decide how far to
// trust them.
type ScoreCache interface {
	Get(key uint64) (int, bool)
	Put(key uint64, score int)
	Len() int
	Reset()
	Stats() Stats
}

type Stats struct {
	Lookups    uint64
	Hits       uint64
	Stores     uint64
	Collisions uint64
	Capacity   int
}

const entrySize = 16

const (
	minSizePowerOf2 = 10
	maxSizePowerOf2 = 28
)

// 16 bytes (entrySize)
type entry struct {
	key   uint64
	score int32
	used  bool
}

// Table is a fixed-size, always-replace score cache. Two positions that
// land in the same bucket simply evict each other.
type Table struct {
	table        []entry
	sizePowerOf2 int
	sizeMask     uint64
	filled       int

	lookups    atomic.Uint64
	hits       atomic.Uint64
	stores     atomic.Uint64
	collisions atomic.Uint64
}

// NewTable makes a table with 2^sizePowerOf2 buckets.
func NewTable(sizePowerOf2 int) *Table {
	sizePowerOf2 = max(minSizePowerOf2, min(maxSizePowerOf2, sizePowerOf2))
	t := &Table{sizePowerOf2: sizePowerOf2}
	numElems := 1 << sizePowerOf2
	t.sizeMask = uint64(numElems - 1)
	t.table = make([]entry, numElems)
	return t
}

// NewForMemory sizes a table to roughly fractionOfMemory of system memory,
// rounded down to a power of 2.
func NewForMemory(fractionOfMemory float64) *Table {
	totalMem := memory.TotalMemory()
	desiredNElems := fractionOfMemory * (float64(totalMem) / float64(entrySize))
	sizePowerOf2 := minSizePowerOf2
	if desiredNElems >= 1 {
		sizePowerOf2 = int(math.Log2(desiredNElems))
	}
	t := NewTable(sizePowerOf2)
	log.Info().Int("num-elems", len(t.table)).
		Float64("desired-num-elems", desiredNElems).
		Int("estimated-total-memory-bytes", len(t.table)*entrySize).
		Uint64("total-system-memory-bytes", totalMem).
		Msg("score-cache-size")
	return t
}

func (t *Table) Get(key uint64) (int, bool) {
	t.lookups.Add(1)
	e := &t.table[key&t.sizeMask]
	if !e.used {
		return 0, false
	}
	if e.key != key {
		// There is another unrelated position in this bucket.
		t.collisions.Add(1)
		return 0, false
	}
	t.hits.Add(1)
	return int(e.score), true
}

func (t *Table) Put(key uint64, score int) {
	e := &t.table[key&t.sizeMask]
	if !e.used {
		t.filled++
	}
	*e = entry{key: key, score: int32(score), used: true}
	t.stores.Add(1)
}

// Len is the number of occupied buckets.
func (t *Table) Len() int {
	return t.filled
}

func (t *Table) Reset() {
	clear(t.table)
	t.filled = 0
	t.lookups.Store(0)
	t.hits.Store(0)
	t.stores.Store(0)
	t.collisions.Store(0)
}

func (t *Table) Stats() Stats {
	return Stats{
		Lookups:    t.lookups.Load(),
		Hits:       t.hits.Load(),
		Stores:     t.stores.Load(),
		Collisions: t.collisions.Load(),
		Capacity:   len(t.table),
	}
}

// Nop never remembers anything. Searching with it gives exact alpha-beta
// results.
type Nop struct{}

func (Nop) Get(uint64) (int, bool) { return 0, false }
func (Nop) Put(uint64, int)        {}
func (Nop) Len() int               { return 0 }
func (Nop) Reset()                 {}
func (Nop) Stats() Stats           { return Stats{} }
