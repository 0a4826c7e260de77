// Package engine abstracts the external speech-to-text service.
package engine

import (
	"context"
	"errors"

	"github.com/open-rails/transcribekit/upload"
)

// ErrUnavailable indicates the engine could not be reached or answered with
// a server error. Retryable; never an authorization outcome.
var ErrUnavailable = errors.New("engine_unavailable")

// Engine turns a staged audio artifact into text.
type Engine interface {
	Transcribe(ctx context.Context, artifact upload.Artifact) (string, error)
}
