// Package round runs the rock-paper-scissors round lifecycle: it accepts the
// player's move, waits out a short decision delay, draws the opponent's move,
// scores the result and then fetches a remark about it in the background.
//
// Every round is tagged with a generation number. A timer callback or a
// commentary result whose generation is no longer current is dropped, which
// is how a reset or a newer round supersedes work that is still in flight.
package round

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	rand "math/rand/v2"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/lox/rpsduel/internal/commentary"
	"github.com/lox/rpsduel/internal/move"
)

const (
	// DefaultDecisionDelay is how long the opponent "thinks" before a round settles.
	DefaultDecisionDelay = 1500 * time.Millisecond
	// DefaultCommentaryTimeout bounds a single commentary request.
	DefaultCommentaryTimeout = 5 * time.Second
)

var errNoProvider = errors.New("no commentary provider configured")

var roundsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "rpsduel_rounds_total",
		Help: "Total number of settled rounds by outcome.",
	},
	[]string{"outcome"},
)

// Engine owns one session: the current round, the score board and the
// commentary line. All methods are safe for concurrent use.
type Engine struct {
	// seq serialises every state change together with the delivery of its
	// event, so subscribers see changes in the order they happened.
	seq sync.Mutex
	// mu guards the fields below for readers such as Snapshot.
	mu sync.RWMutex

	clock             quartz.Clock
	pickOpponent      func() move.Move
	provider          commentary.Provider
	decisionDelay     time.Duration
	commentaryTimeout time.Duration
	locale            move.Locale
	logger            *log.Logger
	bus               *eventBus

	ctx    context.Context
	cancel context.CancelFunc
	closed bool

	generation       uint64
	state            State
	pending          move.Move
	score            ScoreBoard
	commentary       string
	timer            *quartz.Timer
	cancelCommentary context.CancelFunc
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock sets the clock used for the decision delay.
func WithClock(clock quartz.Clock) Option {
	return func(e *Engine) { e.clock = clock }
}

// WithRand draws the opponent's move uniformly from rng.
func WithRand(rng *rand.Rand) Option {
	return func(e *Engine) {
		e.pickOpponent = func() move.Move { return move.Random(rng) }
	}
}

// WithOpponent replaces the random opponent entirely.
func WithOpponent(pick func() move.Move) Option {
	return func(e *Engine) { e.pickOpponent = pick }
}

// WithDecisionDelay sets the pause between a choice and its result.
// Non-positive values are ignored.
func WithDecisionDelay(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.decisionDelay = d
		}
	}
}

// WithCommentaryTimeout bounds each commentary request. Non-positive values
// are ignored.
func WithCommentaryTimeout(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.commentaryTimeout = d
		}
	}
}

// WithLocale sets the language of placeholders and fallback remarks.
func WithLocale(l move.Locale) Option {
	return func(e *Engine) { e.locale = l }
}

// WithLogger sets the logger.
func WithLogger(logger *log.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

// NewEngine creates an idle engine. A nil provider makes every round fall
// back to the fixed remarks.
func NewEngine(provider commentary.Provider, opts ...Option) *Engine {
	ctx, cancel := context.WithCancel(context.Background())

	e := &Engine{
		clock:             quartz.NewReal(),
		provider:          provider,
		decisionDelay:     DefaultDecisionDelay,
		commentaryTimeout: DefaultCommentaryTimeout,
		locale:            move.DefaultLocale,
		logger:            log.New(io.Discard),
		bus:               newEventBus(),
		ctx:               ctx,
		cancel:            cancel,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.pickOpponent == nil {
		WithRand(rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())))(e)
	}
	if e.provider == nil {
		e.provider = commentary.ProviderFunc(func(context.Context, commentary.Round) (string, error) {
			return "", errNoProvider
		})
	}
	e.logger = e.logger.WithPrefix("engine")
	e.commentary = commentary.IdlePlaceholder(e.locale)

	return e
}

// Subscribe registers s for every subsequent event and returns a function
// that removes it again.
func (e *Engine) Subscribe(s Subscriber) (unsubscribe func()) {
	return e.bus.subscribe(s)
}

// Snapshot returns a copy of the current state.
func (e *Engine) Snapshot() Snapshot {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.snapshotLocked()
}

// Locale returns the engine's language.
func (e *Engine) Locale() move.Locale {
	return e.locale
}

func (e *Engine) snapshotLocked() Snapshot {
	return Snapshot{
		Generation: e.generation,
		Round:      e.state,
		Score:      e.score,
		Commentary: e.commentary,
		Locale:     e.locale,
	}
}

// SubmitChoice starts a new round with the player's move. It is ignored,
// returning false, while a round is deciding, after Close, or for an
// invalid move.
func (e *Engine) SubmitChoice(m move.Move) bool {
	if !m.Valid() {
		e.logger.Debug("Ignoring invalid move", "move", int(m))
		return false
	}

	e.seq.Lock()
	defer e.seq.Unlock()

	e.mu.Lock()
	if e.closed || e.state.Phase == Deciding {
		phase, closed := e.state.Phase, e.closed
		e.mu.Unlock()
		e.logger.Debug("Ignoring choice", "move", m, "phase", phase, "closed", closed)
		return false
	}

	e.stopPendingLocked()
	e.generation++
	gen := e.generation
	e.pending = m
	e.state = State{Phase: Deciding}
	e.commentary = commentary.ThinkingPlaceholder(e.locale)
	e.timer = e.clock.AfterFunc(e.decisionDelay, func() { e.resolve(gen) }, "round", "decision")
	snap := e.snapshotLocked()
	e.mu.Unlock()

	e.logger.Debug("Round started", "generation", gen, "move", m)
	e.publish(EventTypeRoundStarted, snap)
	return true
}

// ResetSession zeroes the score board and returns to Idle from any phase.
// A pending decision or commentary request is abandoned.
func (e *Engine) ResetSession() {
	e.seq.Lock()
	defer e.seq.Unlock()

	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.stopPendingLocked()
	e.generation++
	e.pending = move.None
	e.state = State{Phase: Idle}
	e.score = ScoreBoard{}
	e.commentary = commentary.IdlePlaceholder(e.locale)
	snap := e.snapshotLocked()
	e.mu.Unlock()

	e.logger.Info("Session reset", "generation", snap.Generation)
	e.publish(EventTypeSessionReset, snap)
}

// Close stops the engine. Pending work is abandoned and later calls to
// SubmitChoice are ignored.
func (e *Engine) Close() {
	e.seq.Lock()
	defer e.seq.Unlock()

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	e.closed = true
	e.stopPendingLocked()
	e.generation++
	e.cancel()
}

func (e *Engine) stopPendingLocked() {
	if e.timer != nil {
		e.timer.Stop()
		e.timer = nil
	}
	if e.cancelCommentary != nil {
		e.cancelCommentary()
		e.cancelCommentary = nil
	}
}

// resolve settles the round scheduled under gen.
func (e *Engine) resolve(gen uint64) {
	e.seq.Lock()
	defer e.seq.Unlock()

	e.mu.Lock()
	if gen != e.generation || e.state.Phase != Deciding {
		current := e.generation
		e.mu.Unlock()
		e.logger.Debug("Dropping stale decision", "generation", gen, "current", current)
		return
	}

	player := e.pending
	opponent := e.pickOpponent()
	outcome := move.Resolve(player, opponent)

	e.score.record(outcome)
	e.pending = move.None
	e.timer = nil
	e.state = State{
		Phase:        Settled,
		PlayerMove:   player,
		OpponentMove: opponent,
		Outcome:      outcome,
	}

	ctx, cancel := context.WithTimeout(e.ctx, e.commentaryTimeout)
	e.cancelCommentary = cancel
	snap := e.snapshotLocked()
	e.mu.Unlock()

	roundsTotal.WithLabelValues(outcome.String()).Inc()
	e.logger.Info("Round settled",
		"generation", gen,
		"player", player,
		"opponent", opponent,
		"outcome", outcome,
		"score", fmt.Sprintf("%d-%d-%d", snap.Score.PlayerWins, snap.Score.OpponentWins, snap.Score.Draws))
	e.publish(EventTypeRoundSettled, snap)

	go e.fetchCommentary(ctx, cancel, gen, commentary.Round{
		Player:   player,
		Opponent: opponent,
		Outcome:  outcome,
	})
}

func (e *Engine) fetchCommentary(ctx context.Context, cancel context.CancelFunc, gen uint64, r commentary.Round) {
	defer cancel()

	type result struct {
		text string
		err  error
	}
	done := make(chan result, 1)
	go func() {
		text, err := e.generate(ctx, r)
		done <- result{text, err}
	}()

	// Providers may ignore ctx; the deadline is enforced here.
	var text string
	var err error
	select {
	case res := <-done:
		text, err = res.text, res.err
	case <-ctx.Done():
		err = fmt.Errorf("%w: %w", commentary.ErrGenerationFailed, ctx.Err())
	}
	if err != nil {
		e.logger.Warn("Commentary unavailable, using fallback", "generation", gen, "error", err)
		text = commentary.Fallback(r.Outcome, e.locale)
	}

	e.seq.Lock()
	defer e.seq.Unlock()

	e.mu.Lock()
	if gen != e.generation {
		current := e.generation
		e.mu.Unlock()
		e.logger.Debug("Dropping stale commentary", "generation", gen, "current", current)
		return
	}
	e.commentary = text
	e.cancelCommentary = nil
	snap := e.snapshotLocked()
	e.mu.Unlock()

	e.publish(EventTypeCommentaryUpdated, snap)
}

// generate calls the provider, turning a panic or a blank answer into an error.
func (e *Engine) generate(ctx context.Context, r commentary.Round) (text string, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("%w: provider panicked: %v", commentary.ErrGenerationFailed, p)
		}
	}()

	text, err = e.provider.Generate(ctx, r)
	if err == nil && strings.TrimSpace(text) == "" {
		err = commentary.ErrEmptyResponse
	}
	return text, err
}

func (e *Engine) publish(t EventType, snap Snapshot) {
	e.bus.publish(Event{Type: t, Snapshot: snap, Timestamp: e.clock.Now()})
}
