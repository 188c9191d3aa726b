// Package tui renders a round engine in the terminal with Bubble Tea.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/lox/rpsduel/internal/move"
	"github.com/lox/rpsduel/internal/round"
)

// Engine is the part of round.Engine the TUI drives.
type Engine interface {
	Snapshot() round.Snapshot
	SubmitChoice(m move.Move) bool
	ResetSession()
	Subscribe(s round.Subscriber) (unsubscribe func())
}

// engineEventMsg delivers an engine event into the Bubble Tea loop.
type engineEventMsg round.Event

// TUIModel represents the Bubble Tea model for the game
type TUIModel struct {
	engine Engine
	logger *log.Logger
	locale move.Locale
	text   uiText

	// UI components
	keys       keyMap
	help       help.Model
	spinner    spinner.Model
	historyLog viewport.Model

	// State
	snap        round.Snapshot
	history     []string
	events      chan round.Event
	unsubscribe func()
	quitting    bool

	// Dimensions
	width  int
	height int
}

// NewTUIModel creates a model bound to engine and subscribes to its events.
// Call Close when the program exits.
func NewTUIModel(engine Engine, logger *log.Logger) *TUIModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = ActionsStyle

	vp := viewport.New(40, 8)
	vp.SetContent("")

	snap := engine.Snapshot()
	m := &TUIModel{
		engine:     engine,
		logger:     logger.WithPrefix("tui"),
		locale:     snap.Locale,
		text:       textFor(snap.Locale),
		keys:       defaultKeyMap(),
		help:       help.New(),
		spinner:    sp,
		historyLog: vp,
		snap:       snap,
		events:     make(chan round.Event, 64),
	}
	m.unsubscribe = engine.Subscribe(round.SubscriberFunc(m.forward))
	m.keys.setChoicesEnabled(snap.Round.Phase != round.Deciding)
	return m
}

// forward runs on the engine's goroutine and must never block it.
func (m *TUIModel) forward(event round.Event) {
	select {
	case m.events <- event:
	default:
		m.logger.Warn("Dropping engine event, UI is behind", "type", event.Type)
	}
}

// Close detaches the model from the engine
func (m *TUIModel) Close() {
	if m.unsubscribe != nil {
		m.unsubscribe()
		m.unsubscribe = nil
	}
}

// Init initializes the TUI model
func (m *TUIModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.waitForEvent())
}

func (m *TUIModel) waitForEvent() tea.Cmd {
	return func() tea.Msg {
		return engineEventMsg(<-m.events)
	}
}

// Update handles messages in the TUI
func (m *TUIModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case engineEventMsg:
		m.handleEvent(round.Event(msg))
		return m, m.waitForEvent()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.logger.Debug("Updating dimensions", "width", m.width, "height", m.height)
		return m, nil

	case tea.KeyMsg:
		return m, m.handleKey(msg)
	}

	var cmd tea.Cmd
	m.historyLog, cmd = m.historyLog.Update(msg)
	return m, cmd
}

func (m *TUIModel) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return tea.Quit
	case key.Matches(msg, m.keys.Reset):
		m.engine.ResetSession()
	case key.Matches(msg, m.keys.Rock):
		m.submit(move.Rock)
	case key.Matches(msg, m.keys.Paper):
		m.submit(move.Paper)
	case key.Matches(msg, m.keys.Scissors):
		m.submit(move.Scissors)
	}
	m.refresh()
	return nil
}

func (m *TUIModel) submit(mv move.Move) {
	if !m.engine.SubmitChoice(mv) {
		m.logger.Debug("Choice ignored", "move", mv)
	}
}

func (m *TUIModel) handleEvent(event round.Event) {
	snap := event.Snapshot
	switch event.Type {
	case round.EventTypeRoundSettled:
		r := snap.Round
		m.addHistory(fmt.Sprintf("#%d %s %s vs %s %s  %s",
			snap.Score.Total(),
			r.PlayerMove.Icon(), r.PlayerMove.Label(m.locale),
			r.OpponentMove.Icon(), r.OpponentMove.Label(m.locale),
			r.Outcome.Banner(m.locale)))
	case round.EventTypeCommentaryUpdated:
		m.addHistory("    " + snap.Commentary)
	case round.EventTypeSessionReset:
		m.history = nil
		m.historyLog.SetContent("")
	}
	m.refresh()
}

// refresh re-reads engine state; events may lag behind the engine.
func (m *TUIModel) refresh() {
	m.snap = m.engine.Snapshot()
	m.keys.setChoicesEnabled(m.snap.Round.Phase != round.Deciding)
}

func (m *TUIModel) addHistory(entry string) {
	m.history = append(m.history, entry)
	m.historyLog.SetContent(strings.Join(m.history, "\n"))
	m.historyLog.GotoBottom()
}

// History returns the session's round log, oldest first
func (m *TUIModel) History() []string {
	out := make([]string, len(m.history))
	copy(out, m.history)
	return out
}

// View renders the TUI
func (m *TUIModel) View() string {
	if m.quitting {
		return ""
	}

	sections := []string{
		HeaderStyle.Render(m.text.title),
		m.renderScoreboard(),
		m.renderBattle(),
		m.renderResult(),
		m.renderControls(),
		m.help.View(m.keys),
	}
	main := PaneStyle.Render(lipgloss.JoinVertical(lipgloss.Left, sections...))

	if len(m.history) == 0 {
		return main
	}

	width := 40
	if m.width > 0 {
		width = max(m.width-lipgloss.Width(main)-4, 20)
	}
	m.historyLog.Width = width
	m.historyLog.Height = max(lipgloss.Height(main)-2, 3)
	historyPane := HistoryPaneStyle.Render(m.historyLog.View())

	return lipgloss.JoinHorizontal(lipgloss.Top, main, historyPane)
}

func (m *TUIModel) renderScoreboard() string {
	item := func(label string, value int) string {
		return ScoreLabelStyle.Render(label) + " " + ScoreValueStyle.Render(fmt.Sprintf("%d", value))
	}
	score := m.snap.Score
	return strings.Join([]string{
		item(m.text.player, score.PlayerWins),
		item(m.text.draw, score.Draws),
		item(m.text.computer, score.OpponentWins),
	}, InfoStyle.Render("  │  "))
}

func (m *TUIModel) renderBattle() string {
	r := m.snap.Round
	player, opponent := move.Rock.Icon(), move.Rock.Icon()
	prefix := "  "
	if r.Phase == round.Deciding {
		prefix = m.spinner.View()
	} else if r.Phase == round.Settled {
		player, opponent = r.PlayerMove.Icon(), r.OpponentMove.Icon()
	}
	return lipgloss.JoinHorizontal(lipgloss.Center,
		prefix,
		HandStyle.Render(player),
		VersusStyle.Render("VS"),
		HandStyle.Render(opponent),
	)
}

func (m *TUIModel) renderResult() string {
	var b strings.Builder
	if r := m.snap.Round; r.Phase == round.Settled {
		style := DrawStyle
		switch r.Outcome {
		case move.Win:
			style = WinStyle
		case move.Lose:
			style = LoseStyle
		}
		b.WriteString(style.Render(r.Outcome.Banner(m.locale)))
		b.WriteString("\n")
	}
	b.WriteString(CommentaryStyle.Render(m.snap.Commentary))
	return b.String()
}

func (m *TUIModel) renderControls() string {
	if m.snap.Round.Phase == round.Deciding {
		return InfoStyle.Render(m.text.waiting)
	}
	choices := make([]string, 0, len(move.All))
	for i, mv := range move.All {
		choices = append(choices, fmt.Sprintf("[%d] %s %s", i+1, mv.Icon(), mv.Label(m.locale)))
	}
	return ActionsStyle.Render(strings.Join(choices, "   "))
}

type uiText struct {
	title    string
	player   string
	draw     string
	computer string
	waiting  string
}

func textFor(l move.Locale) uiText {
	if l == move.English {
		return uiText{
			title:    "⚡ Rock Paper Scissors Showdown",
			player:   "Player",
			draw:     "Draw",
			computer: "Computer",
			waiting:  "The computer is thinking...",
		}
	}
	return uiText{
		title:    "⚡ 猜拳大對決",
		player:   "玩家",
		draw:     "平手",
		computer: "電腦",
		waiting:  "電腦思考中...",
	}
}
