package upload

import (
	"bytes"
	"context"
	"os"
	"testing"
	"time"
)

func newTestIntake(t *testing.T, maxBytes int64) *Intake {
	t.Helper()
	in, err := NewIntake(Config{Dir: t.TempDir(), MaxBytes: maxBytes}, nil)
	if err != nil {
		t.Fatalf("new intake: %v", err)
	}
	return in
}

func stagedCount(t *testing.T, in *Intake) int {
	t.Helper()
	entries, err := os.ReadDir(in.dir)
	if err != nil {
		t.Fatalf("read staging dir: %v", err)
	}
	return len(entries)
}

// wavBytes fabricates a minimal RIFF/WAVE header followed by padding.
func wavBytes(size int) []byte {
	b := make([]byte, size)
	copy(b, []byte("RIFF\x24\x00\x00\x00WAVEfmt "))
	return b
}

func TestStageWritesArtifact(t *testing.T) {
	in := newTestIntake(t, 0)
	payload := wavBytes(16 * 1024)

	art, err := in.Stage(context.Background(), "a@x.com", bytes.NewReader(payload), "clip.wav")
	if err != nil {
		t.Fatalf("stage: %v", err)
	}
	if art.SizeBytes != int64(len(payload)) {
		t.Errorf("size: got %d want %d", art.SizeBytes, len(payload))
	}
	if art.OriginalName != "clip.wav" {
		t.Errorf("original name: %q", art.OriginalName)
	}
	if art.OwnerIdentity != "a@x.com" {
		t.Errorf("owner: %q", art.OwnerIdentity)
	}
	data, err := os.ReadFile(art.StoragePath)
	if err != nil {
		t.Fatalf("read artifact: %v", err)
	}
	if !bytes.Equal(data, payload) {
		t.Error("artifact bytes differ from payload")
	}
}

func TestStageRejectsTraversalNames(t *testing.T) {
	in := newTestIntake(t, 0)
	for _, name := range []string{
		"../../etc/passwd",
		"..\\..\\boot.ini",
		"a/b.wav",
		"..",
		"",
		"null\x00.wav",
	} {
		_, err := in.Stage(context.Background(), "a@x.com", bytes.NewReader(wavBytes(64)), name)
		if err != ErrUnsafeFileName {
			t.Errorf("name %q: got %v, want ErrUnsafeFileName", name, err)
		}
	}
	if n := stagedCount(t, in); n != 0 {
		t.Errorf("rejected names left %d staged files", n)
	}
}

func TestStageRejectsEmptyPayload(t *testing.T) {
	in := newTestIntake(t, 0)
	_, err := in.Stage(context.Background(), "a@x.com", bytes.NewReader(nil), "clip.wav")
	if err != ErrEmptyPayload {
		t.Fatalf("got %v, want ErrEmptyPayload", err)
	}
	if n := stagedCount(t, in); n != 0 {
		t.Errorf("empty payload left %d staged files", n)
	}
}

func TestStageRejectsOversizePayload(t *testing.T) {
	in := newTestIntake(t, 1024)
	_, err := in.Stage(context.Background(), "a@x.com", bytes.NewReader(wavBytes(1025)), "clip.wav")
	if err != ErrPayloadTooLarge {
		t.Fatalf("got %v, want ErrPayloadTooLarge", err)
	}
	if n := stagedCount(t, in); n != 0 {
		t.Errorf("oversize payload left %d staged files", n)
	}
}

func TestStageAtCapSucceeds(t *testing.T) {
	in := newTestIntake(t, 2048)
	art, err := in.Stage(context.Background(), "a@x.com", bytes.NewReader(wavBytes(2048)), "clip.wav")
	if err != nil {
		t.Fatalf("stage at cap: %v", err)
	}
	if art.SizeBytes != 2048 {
		t.Errorf("size: %d", art.SizeBytes)
	}
}

func TestStageRejectsUnsupportedExtension(t *testing.T) {
	in := newTestIntake(t, 0)
	_, err := in.Stage(context.Background(), "a@x.com", bytes.NewReader(wavBytes(64)), "clip.exe")
	if err != ErrUnsupportedMedia {
		t.Fatalf("got %v, want ErrUnsupportedMedia", err)
	}
}

func TestStageRejectsHTMLPayload(t *testing.T) {
	in := newTestIntake(t, 0)
	html := []byte("<!DOCTYPE html><html><body>hi</body></html>")
	_, err := in.Stage(context.Background(), "a@x.com", bytes.NewReader(html), "clip.wav")
	if err != ErrUnsupportedMedia {
		t.Fatalf("got %v, want ErrUnsupportedMedia", err)
	}
}

func TestStageConcurrentSameNameNoCollision(t *testing.T) {
	in := newTestIntake(t, 0)
	a, err := in.Stage(context.Background(), "a@x.com", bytes.NewReader(wavBytes(600)), "clip.wav")
	if err != nil {
		t.Fatalf("stage a: %v", err)
	}
	b, err := in.Stage(context.Background(), "a@x.com", bytes.NewReader(wavBytes(600)), "clip.wav")
	if err != nil {
		t.Fatalf("stage b: %v", err)
	}
	if a.StoragePath == b.StoragePath {
		t.Error("two uploads with the same declared name share a storage path")
	}
}

func TestStageAbortedTransferLeavesNoPartialFile(t *testing.T) {
	in := newTestIntake(t, 0)
	ctx, cancel := context.WithCancel(context.Background())

	// Cancel after the sniff head has been consumed.
	r := &cancelAfterReader{r: bytes.NewReader(wavBytes(4096)), cancel: cancel, after: 1}
	_, err := in.Stage(ctx, "a@x.com", r, "clip.wav")
	if err == nil {
		t.Fatal("expected error from aborted transfer")
	}
	if n := stagedCount(t, in); n != 0 {
		t.Errorf("aborted transfer left %d partial files", n)
	}
}

type cancelAfterReader struct {
	r      *bytes.Reader
	cancel context.CancelFunc
	after  int
	reads  int
}

func (c *cancelAfterReader) Read(p []byte) (int, error) {
	c.reads++
	if c.reads > c.after {
		c.cancel()
	}
	return c.r.Read(p)
}

func TestDiscardRemovesArtifact(t *testing.T) {
	in := newTestIntake(t, 0)
	art, err := in.Stage(context.Background(), "a@x.com", bytes.NewReader(wavBytes(600)), "clip.wav")
	if err != nil {
		t.Fatalf("stage: %v", err)
	}
	in.Discard(art)
	if _, err := os.Stat(art.StoragePath); !os.IsNotExist(err) {
		t.Error("artifact still present after discard")
	}
}

func TestSweepOlderThan(t *testing.T) {
	in := newTestIntake(t, 0)
	art, err := in.Stage(context.Background(), "a@x.com", bytes.NewReader(wavBytes(600)), "clip.wav")
	if err != nil {
		t.Fatalf("stage: %v", err)
	}
	old := time.Now().Add(-2 * time.Hour)
	if err := os.Chtimes(art.StoragePath, old, old); err != nil {
		t.Fatalf("chtimes: %v", err)
	}

	removed, err := in.SweepOlderThan(time.Hour)
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if removed != 1 {
		t.Errorf("removed %d, want 1", removed)
	}
	if n := stagedCount(t, in); n != 0 {
		t.Errorf("%d files remain after sweep", n)
	}
}

func TestSafeAudioNameExtensions(t *testing.T) {
	for name, wantErr := range map[string]error{
		"a.wav":      nil,
		"b.MP3":      nil,
		"c.flac":     nil,
		"d.ogg":      nil,
		"noext":      ErrUnsupportedMedia,
		"page.html":  ErrUnsupportedMedia,
		"shell.sh":   ErrUnsupportedMedia,
		"  spaced  ": ErrUnsupportedMedia,
	} {
		if _, err := SafeAudioName(name); err != wantErr {
			t.Errorf("SafeAudioName(%q) = %v, want %v", name, err, wantErr)
		}
	}
	if ext, _ := SafeAudioName("B.MP3"); ext != ".mp3" {
		t.Errorf("extension not lowercased: %q", ext)
	}
}
