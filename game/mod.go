package game

// NoLoc marks a token that has not been placed on the board yet.
const NoLoc = -1

// Action is the destination cell of a move, indexed x + y*width.
type Action int

type StateHash uint64

// State should be immutable - operations on State always return a new copy
type State interface {
	// Player returns the id (0 or 1) of the player to move.
	Player() int
	// Actions returns the legal moves of the player to move, in a stable order.
	Actions() []Action
	Result(Action) State
	Terminal() bool
	// Utility is only defined for terminal states.
	Utility(player int) float64
	// Liberties returns the cells a token at loc could move to.
	Liberties(loc int) []int
	Locs() [2]int
	PlyCount() int
	Dims() (width, height int)
	Hash() StateHash
}

// Evaluates a non-terminal state from player's perspective. Larger values are
// more favorable to player.
type Evaluate func(state State, player int) float64
