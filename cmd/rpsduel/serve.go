package main

import (
	"context"
	"os"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"golang.org/x/sync/errgroup"

	"github.com/lox/rpsduel/cmd/rpsduel/shared"
	"github.com/lox/rpsduel/internal/round"
	"github.com/lox/rpsduel/internal/server"
)

// ServeCmd serves one independent session per WebSocket connection
type ServeCmd struct {
	Addr string `help:"Server address (overrides config)"`
}

func (c *ServeCmd) Run(g *Globals) error {
	cfg, err := loadConfig(g)
	if err != nil {
		return err
	}
	if c.Addr != "" {
		cfg.Server.Address = c.Addr
	}

	logger, err := shared.SetupLogger(os.Stderr, cfg.Log.Level)
	if err != nil {
		return err
	}

	provider, err := newProvider(cfg, logger)
	if err != nil {
		return err
	}

	seeds, seed := newSeedSource(cfg.Game.Seed)
	clock := quartz.NewReal()
	factory := func(_ string, sessionLogger *log.Logger) *round.Engine {
		return round.NewEngine(provider, engineOptions(cfg, clock, seeds.next(), sessionLogger)...)
	}

	s := server.NewServer(cfg.Server.Address, factory, logger)

	logger.Info("Starting rpsduel server",
		"address", cfg.Server.Address,
		"seed", seed,
		"locale", cfg.Locale(),
		"model", cfg.Commentary.Model,
		"decision_delay", cfg.DecisionDelay())

	ctx := shared.SetupSignalHandler(logger)
	group, ctx := errgroup.WithContext(ctx)

	group.Go(s.Start)
	group.Go(func() error {
		<-ctx.Done()
		logger.Info("Shutting down server...")
		return s.Shutdown(context.Background())
	})

	return group.Wait()
}
