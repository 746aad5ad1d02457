package experiments

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
	"golang.org/x/exp/rand"
	"lukechampine.com/frand"

	"isolation/agent"
	"isolation/config"
	"isolation/engine"
	"isolation/experiments/metrics"
	"isolation/game"
)

// Summary is the outcome of a match up from the point of view of each seat.
type Summary struct {
	Games    int
	Wins     [2]int
	AvgDepth [2]float64 // Searching moves only
	AvgNodes [2]float64
	Dir      string // Where the records were written
}

// RunMatchUp plays cfg.Match.Games games between the two configured seats,
// alternating the seat that moves first, and writes the game and move
// records under cfg.Match.OutputDir/name.
func RunMatchUp(ctx context.Context, name string, cfg *config.Config) (*Summary, error) {
	configs := []metrics.AgentConfig{agentConfig(0, cfg.First), agentConfig(1, cfg.Second)}
	seats := [2]config.Seat{cfg.First, cfg.Second}

	var agents [2]agent.Agent
	var collectors [2]metrics.Collector
	for i, seat := range seats {
		collectors[i] = metrics.NewCollector()
		a, err := agent.New(seat, collectors[i])
		if err != nil {
			return nil, fmt.Errorf("seat %d: %w", i, err)
		}
		agents[i] = a
	}

	warm, err := loadMemo(cfg.Match.MemoFile, cfg.First)
	if err != nil {
		return nil, err
	}
	rng := rand.New(rand.NewSource(frand.Uint64n(1 << 63)))

	gameRecords := []metrics.GameRecord{}
	moveRecords := []metrics.MoveRecord{}

	log.Info().Msgf("starting %s match up between %s and %s...", name, agents[0].Name(), agents[1].Name())

	for i := 0; i < cfg.Match.Games; i++ {
		starting := i % 2
		memos := [2]*agent.Memo{newMemo(seats[0]), newMemo(seats[1])}
		if starting == 0 && warm != nil {
			memos[0] = warm
		}

		state, err := game.NewIsolation(cfg.Match.Width, cfg.Match.Height)
		if err != nil {
			return nil, err
		}
		e := engine.NewLocalEngine(state, [2]engine.Seat{
			{Agent: agents[0], Memo: memos[0], Metrics: collectors[0]},
			{Agent: agents[1], Memo: memos[1], Metrics: collectors[1]},
		}, cfg.Match.TimeLimit, starting, rng)

		log.Info().Msgf("starting game %d of %d...", i+1, cfg.Match.Games)
		winner, gameMetric, moveMetrics, err := e.Run(ctx)
		if err != nil {
			return nil, fmt.Errorf("game %d: %w", i+1, err)
		}
		if starting == 0 && memos[0] != nil {
			// Only keep bounds built while the first seat played first
			warm = memos[0]
		}

		gameRecords = append(gameRecords, metrics.GameRecord{
			ID:         i + 1,
			Agent1:     configs[0].ID,
			Agent2:     configs[1].ID,
			GameMetric: gameMetric,
		})
		for _, mm := range moveMetrics {
			moveRecords = append(moveRecords, metrics.MoveRecord{
				Game:       i + 1,
				MoveMetric: mm,
			})
		}
		log.Info().Msgf("completed game %d of %d with winner: seat %d", i+1, cfg.Match.Games, winner)
	}

	summary := summarize(gameRecords, moveRecords)

	writer, err := metrics.NewWriter(cfg.Match.OutputDir, name)
	if err != nil {
		return nil, err
	}
	summary.Dir = writer.Dir()
	if err := writer.WriteAgentConfigs(configs); err != nil {
		return nil, err
	}
	if err := writer.WriteGameRecords(gameRecords); err != nil {
		return nil, err
	}
	if err := writer.WriteMoveRecords(moveRecords); err != nil {
		return nil, err
	}
	log.Info().Str("dir", writer.Dir()).Msg("stored experiment records")

	if err := saveMemo(cfg.Match.MemoFile, warm); err != nil {
		return nil, err
	}

	log.Info().
		Int("games", summary.Games).
		Ints("wins", summary.Wins[:]).
		Floats64("avg-depth", summary.AvgDepth[:]).
		Floats64("avg-nodes", summary.AvgNodes[:]).
		Msgf("completed %s match up", name)
	return summary, nil
}

func summarize(games []metrics.GameRecord, moves []metrics.MoveRecord) *Summary {
	summary := &Summary{Games: len(games)}
	for seat := range 2 {
		summary.Wins[seat] = lo.CountBy(games, func(r metrics.GameRecord) bool {
			return r.Winner == seat
		})
		searched := lo.Filter(moves, func(r metrics.MoveRecord, _ int) bool {
			return r.Player == seat && r.Nodes > 0
		})
		if len(searched) == 0 {
			continue
		}
		summary.AvgDepth[seat] = float64(lo.SumBy(searched, func(r metrics.MoveRecord) int { return r.Depth })) / float64(len(searched))
		summary.AvgNodes[seat] = float64(lo.SumBy(searched, func(r metrics.MoveRecord) int { return r.Nodes })) / float64(len(searched))
	}
	return summary
}

func agentConfig(id int, seat config.Seat) metrics.AgentConfig {
	return metrics.AgentConfig{
		ID:             id,
		Strategy:       seat.Strategy,
		Evaluation:     seat.Evaluation,
		MaxDepth:       seat.MaxDepth,
		TableSize:      seat.TableSize,
		Iterations:     seat.Iterations,
		Exploration:    seat.Exploration,
		FinalSelection: seat.FinalSelection,
		Seed:           seat.Seed,
	}
}

// newMemo returns a memo for the strategies that use one.
func newMemo(seat config.Seat) *agent.Memo {
	if seat.Strategy != config.StrategyMTDF {
		return nil
	}
	return agent.NewMemo(seat.TableSize, seat.Evaluation)
}

// loadMemo reads the first seat's memo from path. A memo built with another
// table size or evaluation is discarded.
func loadMemo(path string, seat config.Seat) (*agent.Memo, error) {
	if path == "" || newMemo(seat) == nil {
		return nil, nil
	}
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()
	memo, err := agent.ReadMemo(f)
	if err != nil {
		return nil, fmt.Errorf("loading memo %s: %w", path, err)
	}
	if !memo.Fits(seat) {
		log.Warn().
			Str("path", path).
			Uint64("size", memo.Table().Size()).
			Str("evaluation", memo.Evaluation()).
			Uint64("want-size", seat.TableSize).
			Str("want-evaluation", seat.Evaluation).
			Msg("memo-discarded")
		return nil, nil
	}
	log.Info().Str("path", path).Int("entries", memo.Table().Len()).Msg("memo-loaded")
	return memo, nil
}

func saveMemo(path string, memo *agent.Memo) error {
	if path == "" || memo == nil {
		return nil
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := memo.WriteTo(f); err != nil {
		f.Close()
		return fmt.Errorf("saving memo %s: %w", path, err)
	}
	log.Info().Str("path", path).Int("entries", memo.Table().Len()).Msg("memo-saved")
	return f.Close()
}
