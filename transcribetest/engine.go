package transcribetest

import (
	"context"
	"sync"

	"github.com/open-rails/transcribekit/upload"
)

// FakeEngine is an in-memory engine.Engine recording every artifact it sees.
type FakeEngine struct {
	mu    sync.Mutex
	calls []upload.Artifact

	// Text is returned for every call; when empty, a placeholder derived
	// from the artifact's original name is used.
	Text string
	// Err, when set, is returned instead of a transcription.
	Err error
}

// NewFakeEngine creates a fake engine.
func NewFakeEngine() *FakeEngine { return &FakeEngine{} }

func (e *FakeEngine) Transcribe(ctx context.Context, artifact upload.Artifact) (string, error) {
	_ = ctx
	e.mu.Lock()
	e.calls = append(e.calls, artifact)
	e.mu.Unlock()
	if e.Err != nil {
		return "", e.Err
	}
	if e.Text != "" {
		return e.Text, nil
	}
	return "transcription for " + artifact.OriginalName, nil
}

// Calls returns a copy of the artifacts transcribed so far.
func (e *FakeEngine) Calls() []upload.Artifact {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]upload.Artifact, len(e.calls))
	copy(out, e.calls)
	return out
}
