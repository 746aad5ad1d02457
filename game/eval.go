package game

// EvaluateLiberties scores a position as the number of moves available to
// player minus the number available to its opponent.
func EvaluateLiberties(s State, player int) float64 {
	own, opp := liberties(s, player)
	return float64(own - opp)
}

// EvaluateCentralLiberties rewards central mobility: the player's own
// liberties count twice while its token is at least two cells away from every
// wall. Centrality is tested on the evaluated player's token, which is the
// searching agent's, not on the token of the side to move.
func EvaluateCentralLiberties(s State, player int) float64 {
	own, opp := liberties(s, player)
	if isCentral(s, s.Locs()[player]) {
		own *= 2
	}
	return float64(own - opp)
}

func liberties(s State, player int) (own, opp int) {
	locs := s.Locs()
	return len(s.Liberties(locs[player])), len(s.Liberties(locs[1-player]))
}

func isCentral(s State, loc int) bool {
	if loc == NoLoc {
		return false
	}
	width, height := s.Dims()
	x, y := loc%width, loc/width
	return x >= 2 && x < width-2 && y >= 2 && y < height-2
}

// Evaluations maps configuration names to evaluation functions.
var Evaluations = map[string]Evaluate{
	"liberties": EvaluateLiberties,
	"central":   EvaluateCentralLiberties,
}
