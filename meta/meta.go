// meta/meta.go
package meta

import "time"

// OPENING_PLIES is the number of plies played at random without search.
const OPENING_PLIES = 2

// TIME_LIMIT is the time each agent gets per move.
const TIME_LIMIT = 150 * time.Millisecond

// GAMES is the number of games per match up.
const GAMES = 10

// OUTPUT_DIR is where experiment records are written.
const OUTPUT_DIR = "experiments/results"
