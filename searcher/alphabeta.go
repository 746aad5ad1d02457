package searcher

import (
	"context"
	"math"

	"isolation/experiments/metrics"
	"isolation/game"
)

// AlphaBeta is depth-limited minimax with alpha-beta pruning. Values are
// always from the perspective of the player to move at the root.
type AlphaBeta struct {
	evaluate game.Evaluate
	metrics  metrics.Collector
	player   int
}

func NewAlphaBeta(opts ...Option) *AlphaBeta {
	o := newOptions(opts)
	return &AlphaBeta{
		evaluate: o.evaluate,
		metrics:  o.metrics,
	}
}

// SearchDepth returns the root action with the highest minimax value. Among
// equally valued actions the first one in state.Actions() order wins.
func (s *AlphaBeta) SearchDepth(ctx context.Context, state game.State, depth int) (game.Action, float64, error) {
	actions, err := expand(state)
	if err != nil {
		return 0, 0, err
	}
	depth = max(depth, 1)
	s.player = state.Player()

	alpha := math.Inf(-1)
	beta := math.Inf(1)
	best := actions[0]
	bestValue := math.Inf(-1)
	for i, action := range actions {
		value, err := s.minValue(ctx, state.Result(action), alpha, beta, depth-1)
		if err != nil {
			return 0, 0, err
		}
		if i == 0 || value > bestValue {
			best, bestValue = action, value
		}
		// Later siblings only need to prove they beat the best so far
		alpha = math.Max(alpha, value)
	}
	return best, bestValue, nil
}

func (s *AlphaBeta) maxValue(ctx context.Context, state game.State, alpha, beta float64, depth int) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.metrics.AddNode()
	if state.Terminal() || depth <= 0 {
		return leafValue(state, s.player, s.evaluate), nil
	}
	actions, err := expand(state)
	if err != nil {
		return 0, err
	}

	value := math.Inf(-1)
	for _, action := range actions {
		v, err := s.minValue(ctx, state.Result(action), alpha, beta, depth-1)
		if err != nil {
			return 0, err
		}
		value = math.Max(value, v)
		if value >= beta {
			return value, nil
		}
		alpha = math.Max(alpha, value)
	}
	return value, nil
}

func (s *AlphaBeta) minValue(ctx context.Context, state game.State, alpha, beta float64, depth int) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.metrics.AddNode()
	if state.Terminal() || depth <= 0 {
		return leafValue(state, s.player, s.evaluate), nil
	}
	actions, err := expand(state)
	if err != nil {
		return 0, err
	}

	value := math.Inf(1)
	for _, action := range actions {
		v, err := s.maxValue(ctx, state.Result(action), alpha, beta, depth-1)
		if err != nil {
			return 0, err
		}
		value = math.Min(value, v)
		if value <= alpha {
			return value, nil
		}
		beta = math.Min(beta, value)
	}
	return value, nil
}
