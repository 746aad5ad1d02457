package agent

import (
	"context"

	"golang.org/x/exp/rand"

	"isolation/game"
)

type randomAgent struct {
	rng *rand.Rand
}

// NewRandomAgent returns a baseline agent that plays uniformly random legal
// actions.
func NewRandomAgent(rng *rand.Rand) Agent {
	return &randomAgent{rng: rng}
}

func (a *randomAgent) Name() string {
	return "random"
}

func (a *randomAgent) Decide(ctx context.Context, state game.State, _ *Memo, announce Announce) error {
	return announceFallback(state, a.rng, announce)
}
