package main

import (
	"context"
	"flag"
	"os"
	"os/signal"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"isolation/config"
	"isolation/experiments"
)

func main() {
	configPath := flag.String("config", "", "YAML file overriding the default match settings")
	name := flag.String("name", "matchup", "experiment name, used for the output directory")
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	zerolog.SetGlobalLevel(cfg.Level())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	summary, err := experiments.RunMatchUp(ctx, *name, cfg)
	if err != nil {
		log.Error().Err(err).Msg("match up failed")
		return
	}
	log.Info().Msgf("first (%s) won %d, second (%s) won %d of %d games; records in %s",
		cfg.First.Strategy, summary.Wins[0], cfg.Second.Strategy, summary.Wins[1], summary.Games, summary.Dir)
}
