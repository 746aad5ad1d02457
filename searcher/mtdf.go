package searcher

import (
	"context"
	"math"

	"isolation/experiments/metrics"
	"isolation/game"
)

// MTDF converges on the minimax value of a position with a sequence of
// null-window tests, remembering the bounds each test proves in a
// transposition table.
//
// Tests are in negamax form: values are from the perspective of the player to
// move. Leaf values are derived from the root player's evaluation so that the
// result always equals plain minimax on the same tree. Scores are integral
// (liberty counts) or infinite, which lets the driver step the window by 1.
type MTDF struct {
	evaluate game.Evaluate
	metrics  metrics.Collector
	table    *TranspositionTable
	guess    float64
	player   int

	trace func(lower, upper float64)
}

func NewMTDF(opts ...Option) *MTDF {
	o := newOptions(opts)
	return &MTDF{
		evaluate: o.evaluate,
		metrics:  o.metrics,
		table:    o.table,
		guess:    o.firstGuess,
	}
}

// Guess is the first guess the next SearchDepth call starts from.
func (s *MTDF) Guess() float64 {
	return s.guess
}

// SearchDepth runs MTD(f) on every successor of state and returns the action
// with the highest value, the first one on ties. The value found seeds the
// guess of the following call.
func (s *MTDF) SearchDepth(ctx context.Context, state game.State, depth int) (game.Action, float64, error) {
	actions, err := expand(state)
	if err != nil {
		return 0, 0, err
	}
	depth = max(depth, 1)
	s.player = state.Player()

	best := actions[0]
	bestValue := math.Inf(-1)
	for i, action := range actions {
		value, err := s.mtdf(ctx, state.Result(action), -s.guess, depth-1)
		if err != nil {
			return 0, 0, err
		}
		value = -value
		if i == 0 || value > bestValue {
			best, bestValue = action, value
		}
	}

	if !math.IsInf(bestValue, 0) {
		s.guess = bestValue
	}
	return best, bestValue, nil
}

// mtdf narrows [-inf, +inf] around firstGuess until the bounds meet.
func (s *MTDF) mtdf(ctx context.Context, state game.State, firstGuess float64, depth int) (float64, error) {
	g := firstGuess
	lower := math.Inf(-1)
	upper := math.Inf(1)
	for lower < upper {
		gamma := g
		if g == lower {
			gamma = g + 1
		}
		value, err := s.test(ctx, state, gamma, depth)
		if err != nil {
			return 0, err
		}
		g = value
		if g < gamma {
			upper = g
		} else {
			lower = g
		}
		if s.trace != nil {
			s.trace(lower, upper)
		}
	}
	return g, nil
}

// test answers whether the value of state is at least gamma. A result below
// gamma is an upper bound of the value, anything else a lower bound.
func (s *MTDF) test(ctx context.Context, state game.State, gamma float64, depth int) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	hash := state.Hash()
	lower := math.Inf(-1)
	upper := math.Inf(1)
	if entry, ok := s.table.Lookup(hash); ok && entry.Depth == depth {
		s.metrics.AddTableHit()
		if entry.Lower == entry.Upper {
			return entry.Lower, nil
		}
		if entry.Lower >= gamma {
			return entry.Lower, nil
		}
		if entry.Upper < gamma {
			return entry.Upper, nil
		}
		lower, upper = entry.Lower, entry.Upper
	}
	s.metrics.AddNode()

	var value float64
	if state.Terminal() || depth <= 0 {
		value = s.leafValue(state)
		lower, upper = value, value
	} else {
		actions, err := expand(state)
		if err != nil {
			return 0, err
		}
		value = math.Inf(-1)
		for _, action := range actions {
			if value >= gamma {
				break
			}
			v, err := s.test(ctx, state.Result(action), 1-gamma, depth-1)
			if err != nil {
				return 0, err
			}
			value = math.Max(value, -v)
		}

		if value < gamma {
			upper = value
			if lower > upper { // Colliding entry
				lower = math.Inf(-1)
			}
		} else {
			lower = value
			if upper < lower {
				upper = math.Inf(1)
			}
		}
	}

	s.table.Store(hash, Entry{Lower: lower, Upper: upper, Depth: depth})
	return value, nil
}

func (s *MTDF) leafValue(state game.State) float64 {
	value := leafValue(state, s.player, s.evaluate)
	if state.Player() != s.player {
		return -value
	}
	return value
}
