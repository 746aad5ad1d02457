package agent

import (
	"context"
	"fmt"
	"math"

	"golang.org/x/exp/rand"
	"lukechampine.com/frand"

	"isolation/config"
	"isolation/experiments/metrics"
	"isolation/game"
	"isolation/meta"
	"isolation/searcher"
)

// Announce publishes the best action known so far. Every call supersedes the
// previous one.
type Announce func(action game.Action)

type Agent interface {
	Name() string
	// Decide searches state until ctx is done or the search is exhausted,
	// announcing at least one legal action. Being cut off is not an error.
	Decide(ctx context.Context, state game.State, memo *Memo, announce Announce) error
}

// New builds the agent a seat is configured for. collector may be nil.
func New(seat config.Seat, collector metrics.Collector) (Agent, error) {
	if err := seat.Validate(); err != nil {
		return nil, err
	}
	if collector == nil {
		collector = metrics.NewDummyCollector()
	}
	rng := newRand(seat.Seed)
	evaluate := game.Evaluations[seat.Evaluation]

	switch seat.Strategy {
	case config.StrategyAlphaBeta:
		return NewSearchAgent(seat.Strategy, seat.MaxDepth, seat.TableSize, rng, collector, func(*searcher.TranspositionTable) searcher.DepthSearcher {
			return searcher.NewAlphaBeta(
				searcher.WithEvaluationFn(evaluate),
				searcher.WithMetrics(collector),
			)
		}), nil
	case config.StrategyMTDF:
		return NewSearchAgent(seat.Strategy, seat.MaxDepth, seat.TableSize, rng, collector, func(table *searcher.TranspositionTable) searcher.DepthSearcher {
			return searcher.NewMTDF(
				searcher.WithEvaluationFn(evaluate),
				searcher.WithMetrics(collector),
				searcher.WithTable(table),
				searcher.WithFirstGuess(seat.FirstGuess),
			)
		}), nil
	case config.StrategyMCTS:
		mcts := searcher.NewMCTS(
			searcher.WithIterations(seat.Iterations),
			searcher.WithExploration(seat.Exploration),
			searcher.WithFinalSelection(searcher.FinalSelection(seat.FinalSelection)),
			searcher.WithSeed(rng.Uint64()),
			searcher.WithMetrics(collector),
		)
		return NewMCTSAgent(mcts, rng), nil
	case config.StrategyRandom:
		return NewRandomAgent(rng), nil
	}
	return nil, fmt.Errorf("%w: unknown strategy %q", config.ErrInvalid, seat.Strategy)
}

func newRand(seed uint64) *rand.Rand {
	if seed == 0 {
		seed = frand.Uint64n(math.MaxUint64)
	}
	return rand.New(rand.NewSource(seed))
}

// announceFallback publishes a random legal action so that a decision exists
// before any search starts.
func announceFallback(state game.State, rng *rand.Rand, announce Announce) error {
	actions := state.Actions()
	if len(actions) == 0 {
		return fmt.Errorf("deciding ply %d: %w", state.PlyCount(), searcher.ErrNoActions)
	}
	announce(actions[rng.Intn(len(actions))])
	return nil
}

// inOpening reports whether state is still in the plies played without search.
func inOpening(state game.State) bool {
	return state.PlyCount() < meta.OPENING_PLIES
}
