package engine

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
	"golang.org/x/exp/rand"
	"golang.org/x/sync/errgroup"
	"lukechampine.com/frand"

	"isolation/agent"
	"isolation/experiments/metrics"
	"isolation/game"
)

// ProgressInterval is how often a running search reports its node rate.
const ProgressInterval = time.Second

// Seat is one side of a game: the agent, the memo it keeps between its turns
// and the collector its searches report to.
type Seat struct {
	Agent   agent.Agent
	Memo    *agent.Memo
	Metrics metrics.Collector
}

// LocalEngine runs both agents in process and acts as their time keeper:
// each decision gets TimeLimit, after which the search is cancelled and the
// last announced action is played.
type LocalEngine struct {
	State     game.State
	Seats     [2]Seat
	TimeLimit time.Duration
	Starting  int // Seat that moves first

	rng *rand.Rand
}

var _ Engine = (*LocalEngine)(nil)

func NewLocalEngine(state game.State, seats [2]Seat, timeLimit time.Duration, starting int, rng *rand.Rand) *LocalEngine {
	if starting != 0 && starting != 1 {
		panic("starting seat must be 0 or 1")
	}
	for i := range seats {
		if seats[i].Agent == nil {
			panic("seat without agent")
		}
		if seats[i].Metrics == nil {
			seats[i].Metrics = metrics.NewDummyCollector()
		}
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(frand.Uint64n(math.MaxUint64)))
	}
	return &LocalEngine{
		State:     state,
		Seats:     seats,
		TimeLimit: timeLimit,
		Starting:  starting,
		rng:       rng,
	}
}

// seat maps the player to move onto the seat playing it.
func (e *LocalEngine) seat(player int) int {
	return (player + e.Starting) % 2
}

// Run returns the winning seat.
func (e *LocalEngine) Run(ctx context.Context) (int, metrics.GameMetric, []metrics.MoveMetric, error) {
	gameMetric := metrics.GameMetric{StartingPlayer: e.Starting, Winner: -1, StartTime: time.Now()}
	var moveMetrics []metrics.MoveMetric

	log.Info().Msgf("seat %d (%s) is starting", e.Starting, e.Seats[e.Starting].Agent.Name())

	for !e.State.Terminal() {
		if err := ctx.Err(); err != nil {
			return -1, gameMetric, moveMetrics, err
		}
		seat := e.seat(e.State.Player())
		action, searchMetric, err := e.move(ctx, seat)
		if err != nil {
			return -1, gameMetric, moveMetrics, fmt.Errorf("seat %d at ply %d: %w", seat, e.State.PlyCount(), err)
		}
		moveMetrics = append(moveMetrics, metrics.MoveMetric{
			Step:         e.State.PlyCount() + 1,
			Player:       seat,
			Action:       int(action),
			SearchMetric: searchMetric,
		})
		log.Debug().
			Int("seat", seat).
			Int("action", int(action)).
			Int("depth", searchMetric.Depth).
			Int("nodes", searchMetric.Nodes).
			Msg("move-played")

		e.State = e.State.Result(action)
	}

	winner := e.seat(game.Winner(e.State))
	gameMetric.Winner = winner
	gameMetric.EndTime = time.Now()
	gameMetric.Duration = gameMetric.EndTime.Sub(gameMetric.StartTime)
	gameMetric.TotalMoves = len(moveMetrics)

	log.Info().Msgf("seat %d (%s) won after %d moves", winner, e.Seats[winner].Agent.Name(), len(moveMetrics))
	return winner, gameMetric, moveMetrics, nil
}

// move lets the seat's agent decide under the time limit while a second
// goroutine reports search progress.
func (e *LocalEngine) move(ctx context.Context, seat int) (game.Action, metrics.SearchMetric, error) {
	s := e.Seats[seat]
	ctx, cancel := context.WithTimeout(ctx, e.TimeLimit)
	defer cancel()

	var mu sync.Mutex
	var latest game.Action
	announced := false
	announce := func(action game.Action) {
		mu.Lock()
		defer mu.Unlock()
		latest = action
		announced = true
	}

	s.Metrics.Start(s.Agent.Name())
	g := &errgroup.Group{}
	done := make(chan bool)

	g.Go(func() error {
		ticker := time.NewTicker(ProgressInterval)
		defer ticker.Stop()
		var lastNodes int64
		for {
			select {
			case <-done:
				return nil
			case <-ticker.C:
				nodes := s.Metrics.Nodes()
				log.Debug().Int64("nps", nodes-lastNodes).Msg("nodes-per-second")
				lastNodes = nodes
			}
		}
	})

	g.Go(func() error {
		err := s.Agent.Decide(ctx, e.State, s.Memo, announce)
		done <- true
		return err
	})

	err := g.Wait()
	searchMetric := s.Metrics.Complete()
	if err != nil {
		return 0, searchMetric, err
	}

	mu.Lock()
	defer mu.Unlock()
	actions := e.State.Actions()
	if !announced || !lo.Contains(actions, latest) {
		log.Warn().Int("seat", seat).Bool("announced", announced).Int("action", int(latest)).Msg("illegal-or-missing-action")
		latest = actions[e.rng.Intn(len(actions))]
	}
	return latest, searchMetric, nil
}
