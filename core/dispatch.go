package core

import (
	"context"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/open-rails/transcribekit/entitlement"
	"github.com/open-rails/transcribekit/upload"
)

// Transcription is the terminal result of one authorized request.
// Not persisted; delivery to the caller only. Artifact describes the staged
// payload for auditing, but its storage is already released by the time the
// caller sees it.
type Transcription struct {
	Artifact upload.Artifact
	Text     string
}

// Transcribe is the request-time gate. The entitlement check strictly
// precedes staging: a request that fails the gate consumes no storage and
// never reaches the engine.
func (s *Service) Transcribe(ctx context.Context, identity string, payload io.Reader, declaredName string) (Transcription, error) {
	identity = entitlement.NormalizeIdentity(identity)

	rec, ok, err := s.store.Get(ctx, identity)
	if err != nil {
		return Transcription{}, err
	}
	if !ok || !rec.Active {
		_ = s.events.LogGateDenied(ctx, identity)
		return Transcription{}, ErrSubscriptionRequired
	}

	artifact, err := s.intake.Stage(ctx, identity, payload, declaredName)
	if err != nil {
		return Transcription{}, err
	}

	text, err := s.engine.Transcribe(ctx, artifact)
	// Staged bytes are request-scoped: once the engine has read them the file
	// is dead weight either way.
	s.intake.Discard(artifact)
	if err != nil {
		return Transcription{}, err
	}

	s.log.WithFields(logrus.Fields{"identity": identity, "artifact": artifact.ID}).Debug("transcription complete")
	return Transcription{Artifact: artifact, Text: text}, nil
}
