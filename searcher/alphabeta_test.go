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

func TestAlphaBetaToyBoard(t *testing.T) {
	state := toyBoard(t)
	require.Equal(t, []game.Action{5, 7}, state.Actions())

	search := NewAlphaBeta()
	action, value, err := search.SearchDepth(context.Background(), state, 2)

	require.NoError(t, err)
	require.Equal(t, game.Action(7), action, "Should stalemate the opponent")
	require.Equal(t, math.Inf(1), value, "Stalemating the opponent wins the game")
}

func TestAlphaBetaMatchesMinimax(t *testing.T) {
	for seed := uint64(1); seed <= 200; seed++ {
		rng := rand.New(rand.NewSource(seed))
		root := mockState{node: randomTree(rng, 5, 4)}
		if root.Terminal() {
			continue
		}

		for depth := 1; depth <= 5; depth++ {
			wantAction, wantValue := rootMinimax(root, depth)

			search := NewAlphaBeta(WithEvaluationFn(mockEvaluate))
			action, value, err := search.SearchDepth(context.Background(), root, depth)

			require.NoError(t, err)
			require.Equal(t, wantValue, value, "seed %d depth %d: pruning changed the value", seed, depth)
			require.Equal(t, wantAction, action, "seed %d depth %d: should pick the first best action", seed, depth)
		}
	}
}

func TestAlphaBetaPrunes(t *testing.T) {
	// Max root, two min children. Once the first child proves 5, the second
	// child is cut off after its first grandchild (2 <= 5).
	root := &mockNode{id: 1, player: 0, children: []*mockNode{
		{id: 2, player: 1, children: []*mockNode{leaf(4, 0, 5), leaf(5, 0, 7)}},
		{id: 3, player: 1, children: []*mockNode{leaf(6, 0, 2), leaf(7, 0, 9)}},
	}}
	collector := metrics.NewCollector()
	collector.Start("alphabeta")

	search := NewAlphaBeta(WithEvaluationFn(mockEvaluate), WithMetrics(collector))
	action, value, err := search.SearchDepth(context.Background(), mockState{node: root}, 2)

	require.NoError(t, err)
	require.Equal(t, game.Action(0), action)
	require.Equal(t, 5.0, value)
	require.Equal(t, 5, collector.Complete().Nodes, "Leaf 7 should be pruned")
}

func TestAlphaBetaTieBreak(t *testing.T) {
	root := &mockNode{id: 1, player: 0, children: []*mockNode{
		leaf(2, 1, 3), leaf(3, 1, 4), leaf(4, 1, 4), leaf(5, 1, 1),
	}}

	action, value, err := NewAlphaBeta().SearchDepth(context.Background(), mockState{node: root}, 1)

	require.NoError(t, err)
	require.Equal(t, game.Action(1), action, "First of the equally valued actions should win")
	require.Equal(t, 4.0, value)
}

func TestAlphaBetaErrors(t *testing.T) {
	t.Run("non-terminal state without actions", func(t *testing.T) {
		root := &mockNode{id: 1, broken: true}

		_, _, err := NewAlphaBeta().SearchDepth(context.Background(), mockState{node: root}, 3)

		require.ErrorIs(t, err, ErrNoActions)
	})

	t.Run("broken state below the root", func(t *testing.T) {
		root := &mockNode{id: 1, children: []*mockNode{{id: 2, player: 1, broken: true}}}

		_, _, err := NewAlphaBeta().SearchDepth(context.Background(), mockState{node: root}, 3)

		require.ErrorIs(t, err, ErrNoActions)
	})

	t.Run("cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		rng := rand.New(rand.NewSource(7))
		root := &mockNode{id: 1, children: []*mockNode{randomTree(rng, 3, 3)}}
		root.children[0].player = 1

		_, _, err := NewAlphaBeta().SearchDepth(ctx, mockState{node: root}, 3)

		require.ErrorIs(t, err, context.Canceled)
	})
}
