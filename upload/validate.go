package upload

import (
	"net/http"
	"path/filepath"
	"strings"
)

var allowedExt = map[string]bool{
	".wav":  true,
	".mp3":  true,
	".m4a":  true,
	".mp4":  true,
	".ogg":  true,
	".oga":  true,
	".flac": true,
	".webm": true,
}

// SafeAudioName validates a client-declared filename and returns its
// lowercased extension. The name is metadata only and never becomes the
// storage path, but a traversal attempt is rejected outright rather than
// sanitized so the caller gets a clear failure.
func SafeAudioName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrUnsafeFileName
	}
	if strings.ContainsAny(name, "/\\") || strings.Contains(name, "..") {
		return "", ErrUnsafeFileName
	}
	if strings.ContainsRune(name, 0) {
		return "", ErrUnsafeFileName
	}
	if filepath.Base(name) != name {
		return "", ErrUnsafeFileName
	}
	ext := strings.ToLower(filepath.Ext(name))
	if !allowedExt[ext] {
		return "", ErrUnsupportedMedia
	}
	return ext, nil
}

// SniffAudio checks the first bytes of the payload against obviously
// scriptable content types. Audio containers frequently sniff as
// octet-stream, so the whitelist stays extension-driven and the sniff only
// blocks types that must never reach the staging area.
func SniffAudio(head []byte) error {
	detected := http.DetectContentType(head)
	if strings.HasPrefix(detected, "text/html") || strings.HasPrefix(detected, "application/xhtml") {
		return ErrUnsupportedMedia
	}
	if strings.HasPrefix(detected, "text/xml") || strings.HasPrefix(detected, "application/xml") || detected == "image/svg+xml" {
		return ErrUnsupportedMedia
	}
	return nil
}
