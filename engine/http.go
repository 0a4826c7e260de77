package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/open-rails/transcribekit/upload"
)

// HTTPConfig configures the HTTP engine client. The endpoint is expected to
// speak the Whisper-style transcriptions API: multipart POST with a "file"
// part, JSON {"text": ...} back.
type HTTPConfig struct {
	BaseURL string
	APIKey  string
	Model   string
	// Timeout bounds one transcription round trip. Defaults to 2 minutes.
	Timeout time.Duration
}

// HTTPEngine is an Engine backed by a remote transcription endpoint.
type HTTPEngine struct {
	cfg  HTTPConfig
	http *http.Client
	log  *logrus.Entry
}

// NewHTTPEngine builds an engine client with defaults filled in.
func NewHTTPEngine(cfg HTTPConfig, log *logrus.Logger) *HTTPEngine {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 2 * time.Minute
	}
	if cfg.Model == "" {
		cfg.Model = "whisper-1"
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &HTTPEngine{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.Timeout},
		log:  log.WithField("component", "engine.http"),
	}
}

func (e *HTTPEngine) Transcribe(ctx context.Context, artifact upload.Artifact) (string, error) {
	f, err := os.Open(artifact.StoragePath)
	if err != nil {
		return "", fmt.Errorf("engine: open artifact: %w", err)
	}
	defer f.Close()

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)
	go func() {
		part, err := mw.CreateFormFile("file", artifact.OriginalName)
		if err == nil {
			_, err = io.Copy(part, f)
		}
		if err == nil {
			err = mw.WriteField("model", e.cfg.Model)
		}
		if err == nil {
			err = mw.Close()
		}
		pw.CloseWithError(err)
	}()

	ctx, cancel := context.WithTimeout(ctx, e.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.cfg.BaseURL+"/v1/audio/transcriptions", pr)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if e.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+e.cfg.APIKey)
	}

	resp, err := e.http.Do(req)
	if err != nil {
		e.log.WithError(err).Warn("engine call failed")
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		e.log.WithField("status", resp.StatusCode).Warn("engine error response")
		return "", fmt.Errorf("%w: engine returned %d", ErrUnavailable, resp.StatusCode)
	}

	var body struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("%w: decode: %v", ErrUnavailable, err)
	}
	return body.Text, nil
}
