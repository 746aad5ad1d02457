package searcher

import (
	"context"
	"errors"
	"fmt"
	"math"

	"golang.org/x/exp/rand"
	"lukechampine.com/frand"

	"isolation/experiments/metrics"
	"isolation/game"
)

// Hyperparameters for MCTS

const DefaultIterations = 100
const DefaultExploration = 1.0 // C in UCT

const Win = 1.0   // Reward for winning outcome
const Loss = -Win // Reward for loss outcome (negate from opponent perspective)

var ErrNoActions = errors.New("non-terminal state has no legal actions")

// Result is the outcome of one completed fixed-depth search.
type Result struct {
	Depth  int
	Action game.Action
	Value  float64
}

// DepthSearcher runs one complete search of state to a fixed depth and
// returns the best action for the player to move with its value.
type DepthSearcher interface {
	SearchDepth(ctx context.Context, state game.State, depth int) (game.Action, float64, error)
}

type Option func(o *options)

type options struct {
	evaluate    game.Evaluate
	metrics     metrics.Collector
	table       *TranspositionTable
	firstGuess  float64
	iterations  int
	exploration float64
	final       FinalSelection
	rng         *rand.Rand
}

func newOptions(opts []Option) options {
	o := options{ // Default values
		evaluate:    game.EvaluateLiberties,
		metrics:     metrics.NewDummyCollector(),
		iterations:  DefaultIterations,
		exploration: DefaultExploration,
		final:       FinalUCT,
	}
	for _, option := range opts {
		option(&o)
	}
	if o.rng == nil {
		o.rng = rand.New(rand.NewSource(frand.Uint64n(math.MaxUint64)))
	}
	return o
}

func WithEvaluationFn(evaluate game.Evaluate) Option {
	return func(o *options) {
		if evaluate != nil {
			o.evaluate = evaluate
		}
	}
}

func WithMetrics(collector metrics.Collector) Option {
	return func(o *options) {
		if collector != nil {
			o.metrics = collector
		}
	}
}

// WithTable memoizes MTD(f) bounds in table. A nil table disables
// memoization.
func WithTable(table *TranspositionTable) Option {
	return func(o *options) {
		o.table = table
	}
}

func WithFirstGuess(guess float64) Option {
	return func(o *options) {
		if !math.IsInf(guess, 0) && !math.IsNaN(guess) {
			o.firstGuess = guess
		}
	}
}

func WithIterations(iterations int) Option {
	return func(o *options) {
		if iterations > 0 {
			o.iterations = iterations
		}
	}
}

func WithExploration(c float64) Option {
	return func(o *options) {
		if c >= 0 {
			o.exploration = c
		}
	}
}

func WithFinalSelection(final FinalSelection) Option {
	return func(o *options) {
		if final != "" {
			o.final = final
		}
	}
}

// WithSeed makes every random choice reproducible. Seed 0 keeps a random seed.
func WithSeed(seed uint64) Option {
	return func(o *options) {
		if seed != 0 {
			o.rng = rand.New(rand.NewSource(seed))
		}
	}
}

// leafValue scores state from player's perspective without expanding it.
// Terminal states use the game's utility, all others the evaluation function.
func leafValue(state game.State, player int, evaluate game.Evaluate) float64 {
	if state.Terminal() {
		return state.Utility(player)
	}
	return evaluate(state, player)
}

// expand returns the actions of a non-terminal state.
func expand(state game.State) ([]game.Action, error) {
	actions := state.Actions()
	if len(actions) == 0 {
		return nil, fmt.Errorf("expanding ply %d: %w", state.PlyCount(), ErrNoActions)
	}
	return actions, nil
}
