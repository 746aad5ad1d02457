package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"isolation/game"
	"isolation/meta"
	"isolation/searcher"
)

const EnvPrefix = "ISOLATION"

// Strategies an agent seat can be configured with.
const (
	StrategyAlphaBeta = "alphabeta"
	StrategyMTDF      = "mtdf"
	StrategyMCTS      = "mcts"
	StrategyRandom    = "random"
)

var ErrInvalid = errors.New("invalid config")

type Config struct {
	LogLevel string `mapstructure:"log-level"`
	Match    Match  `mapstructure:"match"`
	First    Seat   `mapstructure:"first"`
	Second   Seat   `mapstructure:"second"`
}

type Match struct {
	Width     int           `mapstructure:"width"`
	Height    int           `mapstructure:"height"`
	TimeLimit time.Duration `mapstructure:"time-limit"`
	Games     int           `mapstructure:"games"`
	OutputDir string        `mapstructure:"output-dir"`
	MemoFile  string        `mapstructure:"memo-file"` // Empty disables persistence
}

// Seat configures the agent playing one side of a match up.
type Seat struct {
	Strategy       string  `mapstructure:"strategy"`
	MaxDepth       int     `mapstructure:"max-depth"`
	FirstGuess     float64 `mapstructure:"first-guess"`
	TableSize      uint64  `mapstructure:"table-size"`
	Evaluation     string  `mapstructure:"evaluation"`
	Iterations     int     `mapstructure:"iterations"`
	Exploration    float64 `mapstructure:"exploration"`
	FinalSelection string  `mapstructure:"final-selection"`
	Seed           uint64  `mapstructure:"seed"` // 0 picks a random seed
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log-level", zerolog.InfoLevel.String())
	v.SetDefault("match.width", game.DefaultWidth)
	v.SetDefault("match.height", game.DefaultHeight)
	v.SetDefault("match.time-limit", meta.TIME_LIMIT)
	v.SetDefault("match.games", meta.GAMES)
	v.SetDefault("match.output-dir", meta.OUTPUT_DIR)
	v.SetDefault("match.memo-file", "")
	for seat, strategy := range map[string]string{"first": StrategyMTDF, "second": StrategyAlphaBeta} {
		v.SetDefault(seat+".strategy", strategy)
		v.SetDefault(seat+".max-depth", searcher.DefaultMaxDepth)
		v.SetDefault(seat+".first-guess", 0.0)
		v.SetDefault(seat+".table-size", searcher.TableSize)
		v.SetDefault(seat+".evaluation", "liberties")
		v.SetDefault(seat+".iterations", searcher.DefaultIterations)
		v.SetDefault(seat+".exploration", searcher.DefaultExploration)
		v.SetDefault(seat+".final-selection", string(searcher.FinalUCT))
		v.SetDefault(seat+".seed", 0)
	}
}

// Load reads the defaults, then the YAML file at path if one is given, then
// ISOLATION_* environment variables (ISOLATION_FIRST_MAX_DEPTH overrides
// first.max-depth).
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: log-level %q", ErrInvalid, c.LogLevel)
	}
	if c.Match.Width <= 0 || c.Match.Height <= 0 {
		return fmt.Errorf("%w: board %dx%d", ErrInvalid, c.Match.Width, c.Match.Height)
	}
	if c.Match.TimeLimit <= 0 {
		return fmt.Errorf("%w: match.time-limit must be positive", ErrInvalid)
	}
	if c.Match.Games < 0 {
		return fmt.Errorf("%w: match.games must not be negative", ErrInvalid)
	}
	if err := c.First.Validate(); err != nil {
		return fmt.Errorf("first: %w", err)
	}
	if err := c.Second.Validate(); err != nil {
		return fmt.Errorf("second: %w", err)
	}
	return nil
}

func (s Seat) Validate() error {
	switch s.Strategy {
	case StrategyAlphaBeta, StrategyMTDF, StrategyMCTS, StrategyRandom:
	default:
		return fmt.Errorf("%w: unknown strategy %q", ErrInvalid, s.Strategy)
	}
	if _, ok := game.Evaluations[s.Evaluation]; !ok {
		return fmt.Errorf("%w: unknown evaluation %q", ErrInvalid, s.Evaluation)
	}
	if !searcher.FinalSelection(s.FinalSelection).Valid() {
		return fmt.Errorf("%w: unknown final-selection %q", ErrInvalid, s.FinalSelection)
	}
	if s.MaxDepth < 1 {
		return fmt.Errorf("%w: max-depth must be at least 1", ErrInvalid)
	}
	if s.Iterations < 1 {
		return fmt.Errorf("%w: iterations must be at least 1", ErrInvalid)
	}
	if s.Exploration < 0 {
		return fmt.Errorf("%w: exploration must not be negative", ErrInvalid)
	}
	return nil
}

// Level is the parsed log level. Validate has already rejected bad values.
func (c *Config) Level() zerolog.Level {
	level, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil {
		return zerolog.InfoLevel
	}
	return level
}
