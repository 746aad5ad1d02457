package searcher

import (
	"slices"

	"isolation/game"
)

const noParent = -1

type node struct {
	state    game.State
	parent   int
	action   game.Action // Action played by the parent to reach this node
	children []int
	untried  []game.Action
	visits   int
	rewards  float64 // From the perspective of the player who moved into the node
}

// tree stores the nodes of one MCTS decision contiguously. Nodes refer to
// each other by index and the whole tree is dropped at once after the move is
// chosen.
type tree struct {
	nodes []node
}

func newTree(root game.State) *tree {
	t := &tree{}
	t.add(noParent, 0, root)
	return t
}

func (t *tree) add(parent int, action game.Action, state game.State) int {
	t.nodes = append(t.nodes, node{
		state:   state,
		parent:  parent,
		action:  action,
		untried: slices.Clone(state.Actions()),
	})
	i := len(t.nodes) - 1
	if parent != noParent {
		t.nodes[parent].children = append(t.nodes[parent].children, i)
	}
	return i
}

// fullyExplored reports whether node i has a child for every legal action.
func (t *tree) fullyExplored(i int) bool {
	return len(t.nodes[i].untried) == 0
}

// backup adds a rollout reward, given from the perspective of the player to
// move at node i, to every node from i up to the root.
func (t *tree) backup(i int, reward float64) {
	reward = -reward
	for i != noParent {
		n := &t.nodes[i]
		n.visits++
		n.rewards += reward
		reward = -reward
		i = n.parent
	}
}
