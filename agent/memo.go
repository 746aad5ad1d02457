package agent

import (
	"bytes"
	"encoding/gob"
	"errors"
	"fmt"
	"io"

	"isolation/config"
	"isolation/searcher"
)

// Memo is the context an agent carries from one decision to the next. The
// caller owns it and hands it back on every turn. A nil memo is a cold start.
type Memo struct {
	table      *searcher.TranspositionTable
	evaluation string
}

type memoSnapshot struct {
	Evaluation string
	Table      *searcher.TranspositionTable
}

// NewMemo returns an empty memo whose transposition table has the given key
// space. A zero size uses searcher.TableSize. evaluation names the heuristic
// the stored bounds are computed with.
func NewMemo(size uint64, evaluation string) *Memo {
	return &Memo{table: searcher.NewTranspositionTable(size), evaluation: evaluation}
}

// Table returns the memoized bounds, nil for a nil memo.
func (m *Memo) Table() *searcher.TranspositionTable {
	if m == nil {
		return nil
	}
	return m.table
}

func (m *Memo) Evaluation() string {
	if m == nil {
		return ""
	}
	return m.evaluation
}

// Fits reports whether the memo's bounds can be reused by an agent built for
// seat: same key space and same evaluation.
func (m *Memo) Fits(seat config.Seat) bool {
	if m == nil || m.table == nil {
		return false
	}
	size := seat.TableSize
	if size == 0 {
		size = searcher.TableSize
	}
	return m.table.Size() == size && m.evaluation == seat.Evaluation
}

func (m *Memo) WriteTo(w io.Writer) (int64, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(memoSnapshot{Evaluation: m.evaluation, Table: m.table}); err != nil {
		return 0, fmt.Errorf("encoding memo: %w", err)
	}
	return buf.WriteTo(w)
}

// ReadMemo restores a memo written with WriteTo.
func ReadMemo(r io.Reader) (*Memo, error) {
	var snapshot memoSnapshot
	if err := gob.NewDecoder(r).Decode(&snapshot); err != nil {
		return nil, fmt.Errorf("decoding memo: %w", err)
	}
	if snapshot.Table == nil {
		return nil, errors.New("decoding memo: missing table")
	}
	return &Memo{table: snapshot.Table, evaluation: snapshot.Evaluation}, nil
}
