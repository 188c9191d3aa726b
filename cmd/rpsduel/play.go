package main

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/coder/quartz"
	"github.com/muesli/termenv"

	"github.com/lox/rpsduel/cmd/rpsduel/shared"
	"github.com/lox/rpsduel/internal/randutil"
	"github.com/lox/rpsduel/internal/round"
	"github.com/lox/rpsduel/internal/tui"
)

// PlayCmd runs the terminal UI
type PlayCmd struct {
	LogFile string `help:"Log file path (overrides config)"`
	NoColor bool   `help:"Disable colors"`
}

func (c *PlayCmd) Run(g *Globals) error {
	cfg, err := loadConfig(g)
	if err != nil {
		return err
	}
	if c.LogFile != "" {
		cfg.Log.File = c.LogFile
	}

	logger, closeLog, err := shared.SetupFileLogger(cfg.Log.File, cfg.Log.Level)
	if err != nil {
		return err
	}
	defer closeLog()

	provider, err := newProvider(cfg, logger)
	if err != nil {
		return err
	}

	if c.NoColor {
		lipgloss.SetColorProfile(termenv.Ascii)
	}

	rng, seed := randutil.NewOptional(cfg.Game.Seed)
	logger.Info("Starting rpsduel",
		"seed", seed,
		"locale", cfg.Locale(),
		"model", cfg.Commentary.Model,
		"config", g.Config)

	engine := round.NewEngine(provider, engineOptions(cfg, quartz.NewReal(), rng, logger)...)
	defer engine.Close()

	model := tui.NewTUIModel(engine, logger)
	defer model.Close()

	program := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}
	return nil
}
