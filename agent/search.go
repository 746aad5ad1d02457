package agent

import (
	"context"

	"github.com/rs/zerolog/log"
	"golang.org/x/exp/rand"

	"isolation/experiments/metrics"
	"isolation/game"
	"isolation/searcher"
)

type searchAgent struct {
	name        string
	maxDepth    int
	tableSize   uint64
	rng         *rand.Rand
	metrics     metrics.Collector
	newSearcher func(table *searcher.TranspositionTable) searcher.DepthSearcher
}

// NewSearchAgent returns an agent that deepens a fixed-depth searcher one ply
// at a time and announces the action of every completed depth. newSearcher
// is called once per decision with the memo's table. Without a memo the
// decision cold-starts with an empty table of tableSize entries that lives
// for the turn.
func NewSearchAgent(name string, maxDepth int, tableSize uint64, rng *rand.Rand, collector metrics.Collector, newSearcher func(table *searcher.TranspositionTable) searcher.DepthSearcher) Agent {
	return &searchAgent{
		name:        name,
		maxDepth:    maxDepth,
		tableSize:   tableSize,
		rng:         rng,
		metrics:     collector,
		newSearcher: newSearcher,
	}
}

func (a *searchAgent) Name() string {
	return a.name
}

func (a *searchAgent) Decide(ctx context.Context, state game.State, memo *Memo, announce Announce) error {
	if err := announceFallback(state, a.rng, announce); err != nil {
		return err
	}
	if inOpening(state) {
		return nil
	}

	table := memo.Table()
	if table == nil {
		table = searcher.NewTranspositionTable(a.tableSize)
	}
	s := a.newSearcher(table)
	for result, err := range searcher.Deepen(ctx, s, state, a.maxDepth) {
		if err != nil {
			return err
		}
		announce(result.Action)
		a.metrics.SetDepth(result.Depth)
	}
	log.Debug().Str("agent", a.name).Int("ply", state.PlyCount()).Msg("decision-complete")
	table.LogStats()
	return nil
}
