package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/coder/quartz"

	"github.com/lox/rpsduel/cmd/rpsduel/shared"
	"github.com/lox/rpsduel/internal/move"
	"github.com/lox/rpsduel/internal/randutil"
	"github.com/lox/rpsduel/internal/round"
)

// RoundCmd plays one round without the UI
type RoundCmd struct {
	Move string `arg:"" help:"rock, paper or scissors (r, p, s)"`
	JSON bool   `help:"Print the final snapshot as JSON"`
}

func (c *RoundCmd) Run(g *Globals) error {
	m, err := move.ParseMove(c.Move)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(g)
	if err != nil {
		return err
	}

	logger, err := shared.SetupLogger(os.Stderr, cfg.Log.Level)
	if err != nil {
		return err
	}

	provider, err := newProvider(cfg, logger)
	if err != nil {
		return err
	}

	rng, seed := randutil.NewOptional(cfg.Game.Seed)
	logger.Debug("Playing single round", "seed", seed, "move", m)

	engine := round.NewEngine(provider, engineOptions(cfg, quartz.NewReal(), rng, logger)...)
	defer engine.Close()

	done := make(chan round.Snapshot, 1)
	unsubscribe := engine.Subscribe(round.SubscriberFunc(func(event round.Event) {
		if event.Type == round.EventTypeCommentaryUpdated {
			done <- event.Snapshot
		}
	}))
	defer unsubscribe()

	engine.SubmitChoice(m)

	ctx, cancel := context.WithTimeout(shared.SetupSignalHandler(logger), cfg.DecisionDelay()+cfg.CommentaryTimeout()+time.Second)
	defer cancel()

	var snap round.Snapshot
	select {
	case snap = <-done:
	case <-ctx.Done():
		return fmt.Errorf("round did not finish: %w", ctx.Err())
	}

	if c.JSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(snap)
	}

	locale := snap.Locale
	r := snap.Round
	fmt.Printf("%s %s  vs  %s %s\n", r.PlayerMove.Icon(), r.PlayerMove.Label(locale), r.OpponentMove.Icon(), r.OpponentMove.Label(locale))
	fmt.Println(r.Outcome.Banner(locale))
	fmt.Println(snap.Commentary)
	return nil
}
