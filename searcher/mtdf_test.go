package searcher

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"

	"isolation/experiments/metrics"
	"isolation/game"
)

func TestMTDFToyBoard(t *testing.T) {
	state := toyBoard(t)

	search := NewMTDF(WithTable(NewTranspositionTable(1024)))
	action, value, err := search.SearchDepth(context.Background(), state, 2)

	require.NoError(t, err)
	require.Equal(t, game.Action(7), action)
	require.Equal(t, math.Inf(1), value)
	require.Equal(t, 0.0, search.Guess(), "Decided values should not become the next guess")
}

func TestMTDFMatchesMinimax(t *testing.T) {
	tables := map[string]func() *TranspositionTable{
		"without table": func() *TranspositionTable { return nil },
		"fresh table":   func() *TranspositionTable { return NewTranspositionTable(1 << 16) },
	}
	for name, newTable := range tables {
		t.Run(name, func(t *testing.T) {
			for seed := uint64(1); seed <= 150; seed++ {
				rng := rand.New(rand.NewSource(seed))
				root := mockState{node: randomTree(rng, 5, 4)}
				if root.Terminal() {
					continue
				}

				for depth := 1; depth <= 5; depth++ {
					wantAction, wantValue := rootMinimax(root, depth)

					search := NewMTDF(WithEvaluationFn(mockEvaluate), WithTable(newTable()))
					action, value, err := search.SearchDepth(context.Background(), root, depth)

					require.NoError(t, err)
					require.Equal(t, wantValue, value, "seed %d depth %d", seed, depth)
					require.Equal(t, wantAction, action, "seed %d depth %d", seed, depth)
				}
			}
		})
	}
}

func TestMTDFCollidingTable(t *testing.T) {
	// A single-entry table makes every position share one slot. Reused bounds
	// may then come from another position, so only legality is checked.
	for seed := uint64(1); seed <= 150; seed++ {
		rng := rand.New(rand.NewSource(seed))
		root := mockState{node: randomTree(rng, 5, 4)}
		if root.Terminal() {
			continue
		}

		table := NewTranspositionTable(1)
		search := NewMTDF(WithEvaluationFn(mockEvaluate), WithTable(table))
		for depth := 1; depth <= 5; depth++ {
			action, _, err := search.SearchDepth(context.Background(), root, depth)

			require.NoError(t, err, "seed %d depth %d", seed, depth)
			require.Contains(t, root.Actions(), action, "seed %d depth %d", seed, depth)
		}
		require.LessOrEqual(t, table.Len(), 1)
	}
}

func TestMTDFSharedTableAcrossDepths(t *testing.T) {
	for seed := uint64(1); seed <= 100; seed++ {
		rng := rand.New(rand.NewSource(seed))
		root := mockState{node: randomTree(rng, 6, 3)}
		if root.Terminal() {
			continue
		}

		// One searcher and one table for the whole deepening run, the way an
		// agent uses them during a turn.
		table := NewTranspositionTable(1 << 16)
		search := NewMTDF(WithEvaluationFn(mockEvaluate), WithTable(table))
		for depth := 1; depth <= 6; depth++ {
			wantAction, wantValue := rootMinimax(root, depth)

			action, value, err := search.SearchDepth(context.Background(), root, depth)

			require.NoError(t, err)
			require.Equal(t, wantValue, value, "seed %d depth %d", seed, depth)
			require.Equal(t, wantAction, action, "seed %d depth %d", seed, depth)
			if !math.IsInf(value, 0) {
				require.Equal(t, value, search.Guess())
			}
		}
		// Running the deepest search again reuses every bound.
		_, value, err := search.SearchDepth(context.Background(), root, 6)
		require.NoError(t, err)
		_, wantValue := rootMinimax(root, 6)
		require.Equal(t, wantValue, value, "seed %d warm table", seed)
	}
}

func TestMTDFBoundsAreMonotonic(t *testing.T) {
	for seed := uint64(1); seed <= 100; seed++ {
		rng := rand.New(rand.NewSource(seed))
		root := mockState{node: randomTree(rng, 5, 4)}
		if root.Terminal() {
			continue
		}

		search := NewMTDF(WithEvaluationFn(mockEvaluate), WithTable(NewTranspositionTable(1<<16)), WithFirstGuess(3))
		search.player = root.Player()
		lowest, highest := math.Inf(-1), math.Inf(1)
		steps := 0
		search.trace = func(lower, upper float64) {
			steps++
			require.GreaterOrEqual(t, lower, lowest, "seed %d: lower bound decreased", seed)
			require.LessOrEqual(t, upper, highest, "seed %d: upper bound increased", seed)
			lowest, highest = lower, upper
		}

		value, err := search.mtdf(context.Background(), root, 3, 4)

		require.NoError(t, err)
		require.Positive(t, steps)
		require.Equal(t, lowest, highest, "seed %d: bounds should meet", seed)
		require.Equal(t, value, lowest)
		require.Equal(t, minimax(root, root.Player(), 4), value, "seed %d", seed)
	}
}

func TestMTDFTableProbes(t *testing.T) {
	probe := probeState{mockState{node: &mockNode{id: 42}}}

	t.Run("exact entry answers without expanding", func(t *testing.T) {
		table := NewTranspositionTable(1024)
		table.Store(probe.Hash(), Entry{Lower: 3, Upper: 3, Depth: 4})
		collector := metrics.NewCollector()
		collector.Start("mtdf")
		search := NewMTDF(WithTable(table), WithMetrics(collector))

		value, err := search.test(context.Background(), probe, 2, 4)

		require.NoError(t, err)
		require.Equal(t, 3.0, value)
		m := collector.Complete()
		require.Equal(t, 1, m.TableHits)
		require.Equal(t, 0, m.Nodes)
	})

	t.Run("lower bound at or above gamma", func(t *testing.T) {
		table := NewTranspositionTable(1024)
		table.Store(probe.Hash(), Entry{Lower: 5, Upper: math.Inf(1), Depth: 4})
		search := NewMTDF(WithTable(table))

		value, err := search.test(context.Background(), probe, 5, 4)

		require.NoError(t, err)
		require.Equal(t, 5.0, value)
	})

	t.Run("upper bound below gamma", func(t *testing.T) {
		table := NewTranspositionTable(1024)
		table.Store(probe.Hash(), Entry{Lower: math.Inf(-1), Upper: 2, Depth: 4})
		search := NewMTDF(WithTable(table))

		value, err := search.test(context.Background(), probe, 3, 4)

		require.NoError(t, err)
		require.Equal(t, 2.0, value)
	})

	t.Run("inconclusive bounds expand the position", func(t *testing.T) {
		table := NewTranspositionTable(1024)
		table.Store(probe.Hash(), Entry{Lower: 1, Upper: 6, Depth: 4})
		search := NewMTDF(WithTable(table))

		require.Panics(t, func() {
			_, _ = search.test(context.Background(), probe, 3, 4)
		})
	})

	t.Run("entry for another depth is ignored", func(t *testing.T) {
		table := NewTranspositionTable(1024)
		table.Store(probe.Hash(), Entry{Lower: 3, Upper: 3, Depth: 3})
		search := NewMTDF(WithTable(table))

		require.Panics(t, func() {
			_, _ = search.test(context.Background(), probe, 2, 4)
		})
	})
}

func TestMTDFStoresBounds(t *testing.T) {
	// Min node with children 4 and 8. Testing it against -5 succeeds on the
	// first child alone.
	inner := &mockNode{id: 2, player: 1, children: []*mockNode{leaf(3, 0, 4), leaf(4, 0, 8)}}
	table := NewTranspositionTable(1024)
	search := NewMTDF(WithEvaluationFn(mockEvaluate), WithTable(table))
	search.player = 0

	// Negamax view of the min node: its value is -min(4, 8) = -4.
	value, err := search.test(context.Background(), mockState{node: inner}, -5, 1)

	require.NoError(t, err)
	require.Equal(t, -4.0, value)
	entry, ok := table.Lookup(game.StateHash(2))
	require.True(t, ok)
	require.Equal(t, 1, entry.Depth)
	require.Equal(t, -4.0, entry.Lower)
	require.Equal(t, math.Inf(1), entry.Upper)

	leafEntry, ok := table.Lookup(game.StateHash(3))
	require.True(t, ok)
	require.Equal(t, Entry{Lower: 4, Upper: 4, Depth: 0}, leafEntry)
	_, ok = table.Lookup(game.StateHash(4))
	require.False(t, ok, "Second child should be cut off")
}

func TestMTDFFirstGuess(t *testing.T) {
	require.Equal(t, 0.0, NewMTDF().Guess())
	require.Equal(t, 7.0, NewMTDF(WithFirstGuess(7)).Guess())
	require.Equal(t, 0.0, NewMTDF(WithFirstGuess(math.Inf(1))).Guess())
	require.Equal(t, 0.0, NewMTDF(WithFirstGuess(math.NaN())).Guess())
}

func TestMTDFErrors(t *testing.T) {
	t.Run("non-terminal state without actions", func(t *testing.T) {
		root := &mockNode{id: 1, children: []*mockNode{{id: 2, player: 1, broken: true}}}

		_, _, err := NewMTDF().SearchDepth(context.Background(), mockState{node: root}, 3)

		require.ErrorIs(t, err, ErrNoActions)
	})

	t.Run("cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		root := &mockNode{id: 1, children: []*mockNode{leaf(2, 1, 1), leaf(3, 1, 2)}}

		_, _, err := NewMTDF().SearchDepth(ctx, mockState{node: root}, 3)

		require.ErrorIs(t, err, context.Canceled)
	})
}
