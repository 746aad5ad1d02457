package searcher

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"golang.org/x/exp/rand"

	"isolation/experiments/metrics"
	"isolation/game"
)

// FinalSelection is the rule that picks the recommended root action once all
// iterations are done.
type FinalSelection string

const (
	FinalUCT     FinalSelection = "uct"     // Same UCT rule as during selection
	FinalExploit FinalSelection = "exploit" // Highest average reward
	FinalVisits  FinalSelection = "visits"  // Most visited
)

func (f FinalSelection) Valid() bool {
	switch f {
	case FinalUCT, FinalExploit, FinalVisits:
		return true
	}
	return false
}

type MCTS struct {
	iterations  int
	exploration float64
	final       FinalSelection
	rng         *rand.Rand
	metrics     metrics.Collector
}

func NewMCTS(opts ...Option) *MCTS {
	o := newOptions(opts)
	return &MCTS{
		iterations:  o.iterations,
		exploration: o.exploration,
		final:       o.final,
		rng:         o.rng,
		metrics:     o.metrics,
	}
}

// FindNextMove builds a fresh tree for state with a fixed number of
// iterations and returns the recommended action. If ctx is done early the
// partial tree is used as long as the root has a child.
func (m *MCTS) FindNextMove(ctx context.Context, state game.State) (game.Action, error) {
	if state.Terminal() {
		actions := state.Actions()
		if len(actions) == 0 {
			return 0, fmt.Errorf("terminal root: %w", ErrNoActions)
		}
		return actions[m.rng.Intn(len(actions))], nil
	}
	if _, err := expand(state); err != nil {
		return 0, err
	}

	t := newTree(state)
	for i := 0; i < m.iterations; i++ {
		if ctx.Err() != nil {
			break
		}
		if err := m.simulate(t); err != nil {
			return 0, err
		}
		m.metrics.AddIteration()
	}
	if len(t.nodes[0].children) == 0 {
		return 0, ctx.Err()
	}

	child := m.choose(t)
	log.Debug().
		Int("iterations", t.nodes[0].visits).
		Int("tree-size", len(t.nodes)).
		Int("visits", t.nodes[child].visits).
		Float64("rewards", t.nodes[child].rewards).
		Msg("mcts-move-chosen")
	return t.nodes[child].action, nil
}

func (m *MCTS) simulate(t *tree) error {
	leaf := m.treePolicy(t)
	reward, err := m.rollout(t.nodes[leaf].state)
	if err != nil {
		return err
	}
	t.backup(leaf, reward)
	return nil
}

// treePolicy descends through fully explored nodes and expands the first node
// that still has untried actions. It stops at terminal states.
func (m *MCTS) treePolicy(t *tree) int {
	i := 0
	for !t.nodes[i].state.Terminal() {
		if !t.fullyExplored(i) {
			return m.expand(t, i)
		}
		i = m.bestChild(t, i, m.exploration)
	}
	return i
}

func (m *MCTS) expand(t *tree, i int) int {
	untried := t.nodes[i].untried
	k := m.rng.Intn(len(untried))
	action := untried[k]
	untried[k] = untried[len(untried)-1]
	t.nodes[i].untried = untried[:len(untried)-1]

	m.metrics.AddNode()
	return t.add(i, action, t.nodes[i].state.Result(action))
}

// rollout plays uniformly random moves until the game ends. The reward is
// from the perspective of the player to move in state.
func (m *MCTS) rollout(state game.State) (float64, error) {
	player := state.Player()
	for !state.Terminal() {
		actions, err := expand(state)
		if err != nil {
			return 0, err
		}
		state = state.Result(actions[m.rng.Intn(len(actions))])
	}
	if state.Utility(player) > 0 {
		return Win, nil
	}
	return Loss, nil
}

// bestChild returns the child of node i with the highest UCT score for
// exploration constant c. Ties are broken uniformly at random.
func (m *MCTS) bestChild(t *tree, i int, c float64) int {
	parent := t.nodes[i]
	if len(parent.children) == 0 {
		panic("node has no children")
	}

	policy := newUCT(c, parent.visits)
	var best []int
	var maxScore float64
	for _, child := range parent.children {
		score := policy.evaluate(t.nodes[child].rewards, t.nodes[child].visits)
		switch {
		case len(best) == 0 || score > maxScore:
			best = append(best[:0], child)
			maxScore = score
		case score == maxScore:
			best = append(best, child)
		}
	}
	return best[m.rng.Intn(len(best))]
}

func (m *MCTS) mostVisited(t *tree, i int) int {
	var best []int
	maxVisits := -1
	for _, child := range t.nodes[i].children {
		visits := t.nodes[child].visits
		switch {
		case visits > maxVisits:
			best = append(best[:0], child)
			maxVisits = visits
		case visits == maxVisits:
			best = append(best, child)
		}
	}
	return best[m.rng.Intn(len(best))]
}

func (m *MCTS) choose(t *tree) int {
	switch m.final {
	case FinalVisits:
		return m.mostVisited(t, 0)
	case FinalExploit:
		return m.bestChild(t, 0, 0)
	default:
		return m.bestChild(t, 0, m.exploration)
	}
}
