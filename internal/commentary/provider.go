// Package commentary produces the one-line remark shown after a round. Lines
// come from an external text-generation service; Fallback supplies a fixed
// line per outcome when that service can't answer.
package commentary

import (
	"context"
	"errors"

	"github.com/lox/rpsduel/internal/move"
)

var (
	// ErrGenerationFailed wraps every failure to obtain a line from the service.
	ErrGenerationFailed = errors.New("commentary generation failed")
	// ErrEmptyResponse is returned when the service answers without any text.
	ErrEmptyResponse = errors.New("empty commentary response")
)

// Round holds the facts of a settled round that a remark is written about.
type Round struct {
	Player   move.Move
	Opponent move.Move
	Outcome  move.Outcome
}

// Provider generates a short remark for a settled round. Implementations
// must honour ctx cancellation and must not retry.
type Provider interface {
	Generate(ctx context.Context, round Round) (string, error)
}

// ProviderFunc adapts a plain function to Provider.
type ProviderFunc func(ctx context.Context, round Round) (string, error)

// Generate calls f.
func (f ProviderFunc) Generate(ctx context.Context, round Round) (string, error) {
	return f(ctx, round)
}
