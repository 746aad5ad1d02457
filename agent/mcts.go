package agent

import (
	"context"

	"golang.org/x/exp/rand"

	"isolation/game"
	"isolation/searcher"
)

type mctsAgent struct {
	mcts *searcher.MCTS
	rng  *rand.Rand
}

// NewMCTSAgent returns an agent that builds a fresh search tree every move.
// It ignores the memo.
func NewMCTSAgent(mcts *searcher.MCTS, rng *rand.Rand) Agent {
	return &mctsAgent{mcts: mcts, rng: rng}
}

func (a *mctsAgent) Name() string {
	return "mcts"
}

func (a *mctsAgent) Decide(ctx context.Context, state game.State, _ *Memo, announce Announce) error {
	if err := announceFallback(state, a.rng, announce); err != nil {
		return err
	}
	if inOpening(state) {
		return nil
	}

	action, err := a.mcts.FindNextMove(ctx, state)
	if err != nil {
		if ctx.Err() != nil { // Cut off before the first iteration
			return nil
		}
		return err
	}
	announce(action)
	return nil
}
