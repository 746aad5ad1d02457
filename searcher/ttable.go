package searcher

import (
	"bytes"
	"encoding/gob"

	"github.com/rs/zerolog/log"

	"isolation/game"
)

// TableSize bounds the key space of a transposition table. Positions whose
// hashes agree modulo the table size share an entry; the stale bound that may
// result is an accepted approximation.
const TableSize = 20_000_000

// Entry holds the bounds proven for a position at a given remaining depth.
type Entry struct {
	Lower float64
	Upper float64
	Depth int
}

// TranspositionTable caches MTD(f) bounds by position hash. Entries are
// allocated lazily and overwritten, never deleted. All methods are safe to
// call on a nil table, which stores nothing.
type TranspositionTable struct {
	entries map[uint64]Entry
	size    uint64
	lookups uint64
	hits    uint64
	created uint64
}

// NewTranspositionTable returns an empty table with the given key space. A
// zero size uses TableSize.
func NewTranspositionTable(size uint64) *TranspositionTable {
	if size == 0 {
		size = TableSize
	}
	return &TranspositionTable{
		entries: make(map[uint64]Entry),
		size:    size,
	}
}

func (t *TranspositionTable) key(hash game.StateHash) uint64 {
	return uint64(hash) % t.size
}

func (t *TranspositionTable) Lookup(hash game.StateHash) (Entry, bool) {
	if t == nil {
		return Entry{}, false
	}
	t.lookups++
	entry, ok := t.entries[t.key(hash)]
	if ok {
		t.hits++
	}
	return entry, ok
}

func (t *TranspositionTable) Store(hash game.StateHash, entry Entry) {
	if t == nil {
		return
	}
	// just overwrite whatever is there.
	t.entries[t.key(hash)] = entry
	t.created++
}

func (t *TranspositionTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.entries)
}

func (t *TranspositionTable) Size() uint64 {
	if t == nil {
		return 0
	}
	return t.size
}

// LogStats reports the table counters accumulated since it was created or
// decoded.
func (t *TranspositionTable) LogStats() {
	if t == nil {
		return
	}
	log.Debug().
		Int("ttable-entries", len(t.entries)).
		Uint64("ttable-created", t.created).
		Uint64("ttable-lookups", t.lookups).
		Uint64("ttable-hits", t.hits).
		Msg("transposition-table-stats")
}

type tableSnapshot struct {
	Size    uint64
	Entries map[uint64]Entry
}

func (t *TranspositionTable) GobEncode() ([]byte, error) {
	var buf bytes.Buffer
	err := gob.NewEncoder(&buf).Encode(tableSnapshot{Size: t.size, Entries: t.entries})
	return buf.Bytes(), err
}

func (t *TranspositionTable) GobDecode(data []byte) error {
	var snapshot tableSnapshot
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&snapshot); err != nil {
		return err
	}
	*t = *NewTranspositionTable(snapshot.Size)
	for k, v := range snapshot.Entries {
		t.entries[k] = v
	}
	return nil
}
