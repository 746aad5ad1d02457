package searcher

import (
	"context"
	"iter"

	"github.com/rs/zerolog/log"

	"isolation/game"
)

// DefaultMaxDepth caps iterative deepening when nobody cuts the search off.
const DefaultMaxDepth = 9

// Deepen searches state at depth 1, 2, ... maxDepth and yields the result of
// every completed depth before starting the next one. The sequence ends when
// the consumer stops pulling, when ctx is done (the depth in progress is
// discarded) or after maxDepth. A search failure is yielded once as an error.
func Deepen(ctx context.Context, s DepthSearcher, state game.State, maxDepth int) iter.Seq2[Result, error] {
	return func(yield func(Result, error) bool) {
		for depth := 1; depth <= maxDepth; depth++ {
			if ctx.Err() != nil {
				return
			}
			action, value, err := s.SearchDepth(ctx, state, depth)
			if err != nil {
				if ctx.Err() != nil { // Cut off mid-depth
					log.Debug().Int("depth", depth).Msg("deepening-interrupted")
					return
				}
				yield(Result{}, err)
				return
			}
			log.Debug().Int("depth", depth).Int("action", int(action)).Float64("value", value).Msg("depth-complete")
			if !yield(Result{Depth: depth, Action: action, Value: value}, nil) {
				return
			}
		}
	}
}
