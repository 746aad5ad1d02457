package game

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/cespare/xxhash"
	"github.com/samber/lo"
)

const (
	DefaultWidth  = 11
	DefaultHeight = 9

	maxCells = 128
)

var ErrBoardSize = errors.New("board must hold between 1 and 128 cells")

// Knight offsets as (dx, dy).
var knightMoves = [8][2]int{
	{1, 2}, {2, 1}, {2, -1}, {1, -2},
	{-1, -2}, {-2, -1}, {-2, 1}, {-1, 2},
}

// Isolation is a knight's Isolation position. Each player owns one token that
// moves like a chess knight; every cell a token has occupied is closed for
// the rest of the game. The first move of each player places its token on
// any open cell.
type Isolation struct {
	width  int
	height int
	open   [2]uint64 // Bitset of open cells
	locs   [2]int
	ply    int
}

// NewIsolation returns the starting position of a width x height board with
// the given cells closed in advance.
func NewIsolation(width, height int, blocked ...int) (*Isolation, error) {
	if width <= 0 || height <= 0 || width*height > maxCells {
		return nil, fmt.Errorf("%w: got %dx%d", ErrBoardSize, width, height)
	}
	s := &Isolation{
		width:  width,
		height: height,
		locs:   [2]int{NoLoc, NoLoc},
	}
	for cell := 0; cell < width*height; cell++ {
		s.setOpen(cell, true)
	}
	for _, cell := range blocked {
		if cell < 0 || cell >= width*height {
			return nil, fmt.Errorf("blocked cell %d is outside a %dx%d board", cell, width, height)
		}
		s.setOpen(cell, false)
	}
	return s, nil
}

// NewStandardIsolation returns an empty 11x9 board.
func NewStandardIsolation() *Isolation {
	s, err := NewIsolation(DefaultWidth, DefaultHeight)
	if err != nil {
		panic(err)
	}
	return s
}

func (s *Isolation) isOpen(cell int) bool {
	return s.open[cell/64]&(1<<(cell%64)) != 0
}

func (s *Isolation) setOpen(cell int, open bool) {
	if open {
		s.open[cell/64] |= 1 << (cell % 64)
	} else {
		s.open[cell/64] &^= 1 << (cell % 64)
	}
}

func (s *Isolation) Player() int {
	return s.ply % 2
}

func (s *Isolation) PlyCount() int {
	return s.ply
}

func (s *Isolation) Locs() [2]int {
	return s.locs
}

func (s *Isolation) Dims() (int, int) {
	return s.width, s.height
}

func (s *Isolation) Actions() []Action {
	liberties := s.Liberties(s.locs[s.Player()])
	actions := make([]Action, len(liberties))
	for i, cell := range liberties {
		actions[i] = Action(cell)
	}
	return actions
}

// Liberties returns the open cells reachable from loc in ascending order. An
// unplaced token (NoLoc) can reach every open cell.
func (s *Isolation) Liberties(loc int) []int {
	if loc == NoLoc {
		return lo.Filter(lo.Range(s.width*s.height), func(cell int, _ int) bool {
			return s.isOpen(cell)
		})
	}

	x, y := loc%s.width, loc/s.width
	cells := make([]int, 0, len(knightMoves))
	for _, d := range knightMoves {
		nx, ny := x+d[0], y+d[1]
		if nx < 0 || nx >= s.width || ny < 0 || ny >= s.height {
			continue
		}
		if cell := nx + ny*s.width; s.isOpen(cell) {
			cells = append(cells, cell)
		}
	}
	slices.Sort(cells)
	return cells
}

func (s *Isolation) hasLiberties(player int) bool {
	return len(s.Liberties(s.locs[player])) > 0
}

func (s *Isolation) Result(action Action) State {
	cell := int(action)
	if cell < 0 || cell >= s.width*s.height || !s.isOpen(cell) {
		panic(fmt.Sprintf("illegal action %d", cell))
	}
	next := *s
	next.setOpen(cell, false)
	next.locs[s.Player()] = cell
	next.ply++
	return &next
}

// Terminal reports whether either player has run out of moves.
func (s *Isolation) Terminal() bool {
	return !s.hasLiberties(s.Player()) || !s.hasLiberties(1-s.Player())
}

// Utility is +Inf if player won, -Inf if player lost and 0 while the game is
// still running. The player to move wins a terminal position iff it can still
// move.
func (s *Isolation) Utility(player int) float64 {
	if !s.Terminal() {
		return 0
	}
	activeWins := s.hasLiberties(s.Player())
	if activeWins == (player == s.Player()) {
		return math.Inf(1)
	}
	return math.Inf(-1)
}

func (s *Isolation) Hash() StateHash {
	var buf [21]byte
	binary.LittleEndian.PutUint64(buf[0:], s.open[0])
	binary.LittleEndian.PutUint64(buf[8:], s.open[1])
	binary.LittleEndian.PutUint16(buf[16:], uint16(int16(s.locs[0])))
	binary.LittleEndian.PutUint16(buf[18:], uint16(int16(s.locs[1])))
	buf[20] = byte(s.Player())
	return StateHash(xxhash.Sum64(buf[:]))
}

func (s *Isolation) String() string {
	var sb strings.Builder
	for y := 0; y < s.height; y++ {
		for x := 0; x < s.width; x++ {
			cell := x + y*s.width
			switch {
			case cell == s.locs[0]:
				sb.WriteByte('1')
			case cell == s.locs[1]:
				sb.WriteByte('2')
			case s.isOpen(cell):
				sb.WriteByte('.')
			default:
				sb.WriteByte('#')
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

// Winner returns the id of the player with positive utility in a terminal
// state, or -1 while the game is running.
func Winner(s State) int {
	if !s.Terminal() {
		return -1
	}
	if s.Utility(0) > 0 {
		return 0
	}
	return 1
}
