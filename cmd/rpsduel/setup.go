package main

import (
	"fmt"
	"sync"

	rand "math/rand/v2"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/lox/rpsduel/internal/commentary"
	"github.com/lox/rpsduel/internal/config"
	"github.com/lox/rpsduel/internal/randutil"
	"github.com/lox/rpsduel/internal/round"
)

// loadConfig merges the config file, the environment and the global flags.
func loadConfig(g *Globals) (*config.Config, error) {
	if err := config.LoadDotEnv(g.EnvFile); err != nil {
		return nil, err
	}

	cfg, err := config.LoadFile(g.Config)
	if err != nil {
		return nil, fmt.Errorf("error loading config: %w", err)
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}

	if g.LogLevel != "" {
		cfg.Log.Level = g.LogLevel
	}
	if g.Locale != "" {
		cfg.Game.Locale = g.Locale
	}
	if g.Seed != nil {
		cfg.Game.Seed = g.Seed
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// newProvider builds the commentary client. A missing credential is a
// startup error.
func newProvider(cfg *config.Config, logger *log.Logger) (commentary.Provider, error) {
	if err := cfg.RequireAPIKey(); err != nil {
		return nil, err
	}
	return commentary.NewClient(cfg.CommentaryConfig(), logger)
}

func engineOptions(cfg *config.Config, clock quartz.Clock, rng *rand.Rand, logger *log.Logger) []round.Option {
	return []round.Option{
		round.WithClock(clock),
		round.WithRand(rng),
		round.WithDecisionDelay(cfg.DecisionDelay()),
		round.WithCommentaryTimeout(cfg.CommentaryTimeout()),
		round.WithLocale(cfg.Locale()),
		round.WithLogger(logger),
	}
}

// seedSource hands out per-session seeds derived from one root seed, so a
// seeded server replays the same opponents for the same connection order.
type seedSource struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func newSeedSource(seed *int64) (*seedSource, int64) {
	rng, used := randutil.NewOptional(seed)
	return &seedSource{rng: rng}, used
}

func (s *seedSource) next() *rand.Rand {
	s.mu.Lock()
	defer s.mu.Unlock()
	return randutil.New(s.rng.Int64())
}
