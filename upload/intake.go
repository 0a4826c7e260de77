// Package upload stages inbound audio payloads into a per-request storage
// location before the transcription engine runs.
package upload

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const defaultMaxUploadBytes = 64 << 20 // 64 MiB

var (
	// ErrEmptyPayload indicates a missing or zero-length payload.
	ErrEmptyPayload = errors.New("empty_payload")
	// ErrUnsafeFileName indicates a declared name that could escape the
	// staging area or is otherwise malformed.
	ErrUnsafeFileName = errors.New("unsafe_file_name")
	// ErrPayloadTooLarge indicates the payload exceeds the configured maximum.
	ErrPayloadTooLarge = errors.New("payload_too_large")
	// ErrUnsupportedMedia indicates the payload is not a recognized audio type.
	ErrUnsupportedMedia = errors.New("unsupported_media")
)

// Artifact is one staged payload. Lifetime is request-scoped; Discard removes
// it once the engine is done, the sweeper handles anything left behind.
type Artifact struct {
	ID            string
	OriginalName  string
	SizeBytes     int64
	StoragePath   string
	OwnerIdentity string
}

// Config configures the intake.
type Config struct {
	// Dir is the staging area. Created if missing.
	Dir string
	// MaxBytes caps a single payload. Defaults to 64 MiB.
	MaxBytes int64
}

// Intake validates and stages inbound payloads.
type Intake struct {
	dir      string
	maxBytes int64
	log      *logrus.Entry
}

// NewIntake creates the staging area and returns an intake bound to it.
func NewIntake(cfg Config, log *logrus.Logger) (*Intake, error) {
	if strings.TrimSpace(cfg.Dir) == "" {
		return nil, errors.New("upload: staging dir required")
	}
	if cfg.MaxBytes <= 0 {
		cfg.MaxBytes = defaultMaxUploadBytes
	}
	if err := os.MkdirAll(cfg.Dir, 0o700); err != nil {
		return nil, fmt.Errorf("upload: create staging dir: %w", err)
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Intake{
		dir:      cfg.Dir,
		maxBytes: cfg.MaxBytes,
		log:      log.WithField("component", "upload.intake"),
	}, nil
}

// Stage validates the payload and writes it under a server-generated key.
// Two concurrent uploads never collide: the storage name is a fresh UUID,
// the declared name is kept as metadata only. Partial writes are removed on
// any failure, including context cancellation mid-transfer.
func (in *Intake) Stage(ctx context.Context, identity string, payload io.Reader, declaredName string) (Artifact, error) {
	ext, err := SafeAudioName(declaredName)
	if err != nil {
		return Artifact{}, err
	}

	head := make([]byte, 512)
	n, err := io.ReadFull(payload, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return Artifact{}, err
	}
	if n == 0 {
		return Artifact{}, ErrEmptyPayload
	}
	head = head[:n]
	if err := SniffAudio(head); err != nil {
		return Artifact{}, err
	}

	id := uuid.NewString()
	path := filepath.Join(in.dir, id+ext)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	if err != nil {
		return Artifact{}, fmt.Errorf("upload: create artifact: %w", err)
	}

	size, err := in.writeCapped(ctx, f, head, payload)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(path)
		return Artifact{}, err
	}

	art := Artifact{
		ID:            id,
		OriginalName:  declaredName,
		SizeBytes:     size,
		StoragePath:   path,
		OwnerIdentity: identity,
	}
	in.log.WithFields(logrus.Fields{"artifact": id, "bytes": size}).Debug("payload staged")
	return art, nil
}

func (in *Intake) writeCapped(ctx context.Context, f *os.File, head []byte, rest io.Reader) (int64, error) {
	if int64(len(head)) > in.maxBytes {
		return 0, ErrPayloadTooLarge
	}
	if _, err := f.Write(head); err != nil {
		return 0, err
	}
	// Read one byte past the cap to distinguish "exactly at cap" from over.
	n, err := io.Copy(f, io.LimitReader(&ctxReader{ctx: ctx, r: rest}, in.maxBytes-int64(len(head))+1))
	if err != nil {
		return 0, err
	}
	size := int64(len(head)) + n
	if size > in.maxBytes {
		return 0, ErrPayloadTooLarge
	}
	return size, nil
}

// Discard removes a staged artifact. Safe to call after engine completion.
func (in *Intake) Discard(art Artifact) {
	if art.StoragePath == "" {
		return
	}
	if err := os.Remove(art.StoragePath); err != nil && !os.IsNotExist(err) {
		in.log.WithError(err).WithField("artifact", art.ID).Warn("discard failed")
	}
}

// SweepOlderThan removes staged files whose mtime is older than maxAge and
// returns how many were removed. Used by the maintenance sweeper to clean up
// artifacts orphaned by crashes or abandoned transfers.
func (in *Intake) SweepOlderThan(maxAge time.Duration) (int, error) {
	entries, err := os.ReadDir(in.dir)
	if err != nil {
		return 0, err
	}
	cutoff := time.Now().Add(-maxAge)
	removed := 0
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			if err := os.Remove(filepath.Join(in.dir, e.Name())); err == nil {
				removed++
			}
		}
	}
	return removed, nil
}

// ctxReader fails a read once the request context is done, so an abandoned
// transfer aborts instead of blocking and the partial file gets removed.
type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
