package metrics

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestWriter(t *testing.T) {
	root := t.TempDir()
	w, err := NewWriter(root, "match")
	require.NoError(t, err)
	require.DirExists(t, w.Dir())

	t.Run("agent configs", func(t *testing.T) {
		err := w.WriteAgentConfigs([]AgentConfig{
			{ID: 0, Strategy: "mtdf", Evaluation: "liberties", MaxDepth: 9, TableSize: 1024},
			{ID: 1, Strategy: "mcts", Evaluation: "liberties", Iterations: 100, Exploration: 1.4, FinalSelection: "visits", Seed: 7},
		})
		require.NoError(t, err)

		rows := readCSV(t, filepath.Join(w.Dir(), "agent_configs.csv"))
		require.Len(t, rows, 3)
		require.Equal(t, "strategy", rows[0][1])
		require.Equal(t, []string{"1", "mcts", "liberties", "0", "0", "100", "1.4", "visits", "7"}, rows[2])
	})

	t.Run("game records", func(t *testing.T) {
		start := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
		err := w.WriteGameRecords([]GameRecord{{
			ID: 1, Agent1: 0, Agent2: 1,
			GameMetric: GameMetric{StartingPlayer: 1, Winner: 0, StartTime: start, EndTime: start.Add(time.Second), Duration: time.Second, TotalMoves: 31},
		}})
		require.NoError(t, err)

		rows := readCSV(t, filepath.Join(w.Dir(), "game_records.csv"))
		require.Len(t, rows, 2)
		require.Equal(t, []string{"1", "0", "1", "1", "0", "2024-01-02T03:04:05Z", "2024-01-02T03:04:06Z", "1s", "31"}, rows[1])
	})

	t.Run("move records", func(t *testing.T) {
		err := w.WriteMoveRecords([]MoveRecord{
			{Game: 1, MoveMetric: MoveMetric{Step: 3, Player: 0, Action: 40, SearchMetric: SearchMetric{Strategy: "mtdf", Duration: 1500 * time.Microsecond, Nodes: 120, Depth: 4, TableHits: 9}}},
			{Game: 1, MoveMetric: MoveMetric{Step: 4, Player: 1, Action: 51, SearchMetric: SearchMetric{Strategy: "mcts", Nodes: 100, Iterations: 100}}},
		})
		require.NoError(t, err)

		data, err := os.ReadFile(filepath.Join(w.Dir(), "move_records.yaml"))
		require.NoError(t, err)
		var rows []moveRow
		require.NoError(t, yaml.Unmarshal(data, &rows))
		require.Len(t, rows, 2)
		require.Equal(t, moveRow{Game: 1, Step: 3, Seat: 0, Action: 40, Strategy: "mtdf", DurationMs: 1.5, Nodes: 120, Depth: 4, TableHits: 9}, rows[0])
		require.Equal(t, 100, rows[1].Iterations)
		require.Zero(t, rows[1].Depth)
	})
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return rows
}
