package metrics

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// AgentConfig identifies the settings an agent played with in an experiment.
type AgentConfig struct {
	ID             int
	Strategy       string
	Evaluation     string
	MaxDepth       int
	TableSize      uint64
	Iterations     int
	Exploration    float64
	FinalSelection string
	Seed           uint64
}

type GameRecord struct {
	ID     int
	Agent1 int // AgentConfig.ID of seat 0
	Agent2 int // AgentConfig.ID of seat 1
	GameMetric
}

type MoveRecord struct {
	Game int // GameRecord.ID
	MoveMetric
}

// moveRow is the serialized form of a MoveRecord.
type moveRow struct {
	Game       int     `yaml:"game"`
	Step       int     `yaml:"step"`
	Seat       int     `yaml:"seat"`
	Action     int     `yaml:"action"`
	Strategy   string  `yaml:"strategy"`
	DurationMs float64 `yaml:"duration_ms"`
	Nodes      int     `yaml:"nodes"`
	Depth      int     `yaml:"depth,omitempty"`
	Iterations int     `yaml:"iterations,omitempty"`
	TableHits  int     `yaml:"table_hits,omitempty"`
}

type Writer struct {
	baseDir string
}

// NewWriter creates a directory named by the current timestamp under
// root/name and writes every record file there.
func NewWriter(root, name string) (*Writer, error) {
	timestamp := time.Now().UTC().Format("20060102T150405Z")
	baseDir := filepath.Join(root, name, timestamp)
	err := os.MkdirAll(baseDir, 0755)
	if err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	return &Writer{
		baseDir: baseDir,
	}, nil
}

func (w *Writer) Dir() string {
	return w.baseDir
}

func (w *Writer) WriteAgentConfigs(configs []AgentConfig) error {
	header := []string{"id", "strategy", "evaluation", "max_depth", "table_size", "iterations", "exploration", "final_selection", "seed"}
	rows := make([][]string, 0, len(configs))
	for _, config := range configs {
		rows = append(rows, []string{
			strconv.Itoa(config.ID),
			config.Strategy,
			config.Evaluation,
			strconv.Itoa(config.MaxDepth),
			strconv.FormatUint(config.TableSize, 10),
			strconv.Itoa(config.Iterations),
			strconv.FormatFloat(config.Exploration, 'f', -1, 64),
			config.FinalSelection,
			strconv.FormatUint(config.Seed, 10),
		})
	}
	return w.writeCSV("agent_configs.csv", header, rows)
}

func (w *Writer) WriteGameRecords(records []GameRecord) error {
	header := []string{"id", "agent1", "agent2", "starting_player", "winner", "start_time", "end_time", "duration", "total_moves"}
	rows := make([][]string, 0, len(records))
	for _, record := range records {
		rows = append(rows, []string{
			strconv.Itoa(record.ID),
			strconv.Itoa(record.Agent1),
			strconv.Itoa(record.Agent2),
			strconv.Itoa(record.StartingPlayer),
			strconv.Itoa(record.Winner),
			record.StartTime.Format(time.RFC3339),
			record.EndTime.Format(time.RFC3339),
			record.Duration.String(),
			strconv.Itoa(record.TotalMoves),
		})
	}
	return w.writeCSV("game_records.csv", header, rows)
}

func (w *Writer) writeCSV(name string, header []string, rows [][]string) error {
	path := filepath.Join(w.baseDir, name)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", name, err)
	}
	defer f.Close()

	writer := csv.NewWriter(f)
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write %s header: %w", name, err)
	}
	if err := writer.WriteAll(rows); err != nil {
		return fmt.Errorf("failed to write %s rows: %w", name, err)
	}
	return nil
}

// WriteMoveRecords stores one YAML document listing every move.
func (w *Writer) WriteMoveRecords(records []MoveRecord) error {
	rows := make([]moveRow, 0, len(records))
	for _, record := range records {
		rows = append(rows, moveRow{
			Game:       record.Game,
			Step:       record.Step,
			Seat:       record.Player,
			Action:     record.Action,
			Strategy:   record.Strategy,
			DurationMs: float64(record.Duration.Microseconds()) / 1000,
			Nodes:      record.Nodes,
			Depth:      record.Depth,
			Iterations: record.Iterations,
			TableHits:  record.TableHits,
		})
	}

	path := filepath.Join(w.baseDir, "move_records.yaml")
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create move records file: %w", err)
	}
	defer f.Close()

	encoder := yaml.NewEncoder(f)
	defer encoder.Close()
	if err := encoder.Encode(rows); err != nil {
		return fmt.Errorf("failed to write move records: %w", err)
	}
	return nil
}
