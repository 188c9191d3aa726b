// Package move defines the rock-paper-scissors moves, the outcome of a round
// and the rule that decides between two moves.
package move

import (
	"errors"
	"fmt"
	"strings"

	rand "math/rand/v2"
)

// ErrUnknownMove is returned when a move name can't be parsed.
var ErrUnknownMove = errors.New("unknown move")

// Move is one of rock, paper or scissors. The zero value is None.
type Move int

const (
	None Move = iota
	Rock
	Paper
	Scissors
)

// All lists the playable moves in a fixed order.
var All = [...]Move{Rock, Paper, Scissors}

// String returns the canonical lower-case name of the move
func (m Move) String() string {
	switch m {
	case Rock:
		return "rock"
	case Paper:
		return "paper"
	case Scissors:
		return "scissors"
	default:
		return ""
	}
}

// Icon returns the hand glyph shown for the move
func (m Move) Icon() string {
	switch m {
	case Rock:
		return "✊"
	case Paper:
		return "🖐️"
	case Scissors:
		return "✌️"
	default:
		return "✊"
	}
}

// Valid reports whether m is a playable move
func (m Move) Valid() bool {
	return m >= Rock && m <= Scissors
}

// Beats returns the single move that m defeats.
func (m Move) Beats() Move {
	switch m {
	case Rock:
		return Scissors
	case Paper:
		return Rock
	case Scissors:
		return Paper
	default:
		return None
	}
}

// ParseMove accepts a move name or its first letter, case-insensitively.
func ParseMove(s string) (Move, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "rock", "r":
		return Rock, nil
	case "paper", "p":
		return Paper, nil
	case "scissors", "s":
		return Scissors, nil
	default:
		return None, fmt.Errorf("%w: %q", ErrUnknownMove, s)
	}
}

// MarshalText encodes the move as its name
func (m Move) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText decodes a move name. An empty value decodes to None.
func (m *Move) UnmarshalText(b []byte) error {
	if len(b) == 0 {
		*m = None
		return nil
	}
	parsed, err := ParseMove(string(b))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// Random draws a move uniformly from All.
func Random(rng *rand.Rand) Move {
	return All[rng.IntN(len(All))]
}

// Outcome is the result of a round from the player's perspective.
// The zero value means the round has no result yet.
type Outcome int

const (
	Pending Outcome = iota
	Win
	Lose
	Draw
)

// String returns the outcome name
func (o Outcome) String() string {
	switch o {
	case Win:
		return "win"
	case Lose:
		return "lose"
	case Draw:
		return "draw"
	default:
		return ""
	}
}

// MarshalText encodes the outcome as its name
func (o Outcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// UnmarshalText decodes an outcome name. An empty value decodes to Pending.
func (o *Outcome) UnmarshalText(b []byte) error {
	switch string(b) {
	case "":
		*o = Pending
	case "win":
		*o = Win
	case "lose":
		*o = Lose
	case "draw":
		*o = Draw
	default:
		return fmt.Errorf("unknown outcome %q", b)
	}
	return nil
}

// Resolve decides the outcome of player against opponent.
func Resolve(player, opponent Move) Outcome {
	switch {
	case player == opponent:
		return Draw
	case player.Beats() == opponent:
		return Win
	default:
		return Lose
	}
}
