package round

import (
	"fmt"

	"github.com/lox/rpsduel/internal/move"
)

// Phase is the lifecycle position of the current round.
type Phase int

const (
	Idle Phase = iota
	Deciding
	Settled
)

// String returns the phase name
func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Deciding:
		return "deciding"
	case Settled:
		return "settled"
	default:
		return "unknown"
	}
}

// MarshalText encodes the phase as its name
func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText decodes a phase name
func (p *Phase) UnmarshalText(b []byte) error {
	switch string(b) {
	case "idle":
		*p = Idle
	case "deciding":
		*p = Deciding
	case "settled":
		*p = Settled
	default:
		return fmt.Errorf("unknown phase %q", b)
	}
	return nil
}

// State is the transient record of one round. Moves and outcome stay unset
// (move.None / move.Pending) until the round is settled.
type State struct {
	Phase        Phase        `json:"phase"`
	PlayerMove   move.Move    `json:"playerMove,omitempty"`
	OpponentMove move.Move    `json:"opponentMove,omitempty"`
	Outcome      move.Outcome `json:"outcome,omitempty"`
}

// ScoreBoard counts settled rounds for the session.
type ScoreBoard struct {
	PlayerWins   int `json:"playerWins"`
	OpponentWins int `json:"opponentWins"`
	Draws        int `json:"draws"`
}

// Total is the number of settled rounds the board has seen.
func (s ScoreBoard) Total() int {
	return s.PlayerWins + s.OpponentWins + s.Draws
}

func (s *ScoreBoard) record(o move.Outcome) {
	switch o {
	case move.Win:
		s.PlayerWins++
	case move.Lose:
		s.OpponentWins++
	case move.Draw:
		s.Draws++
	}
}

// Snapshot is a consistent copy of everything a renderer needs.
type Snapshot struct {
	Generation uint64      `json:"generation"`
	Round      State       `json:"round"`
	Score      ScoreBoard  `json:"score"`
	Commentary string      `json:"commentary"`
	Locale     move.Locale `json:"locale"`
}
