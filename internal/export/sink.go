package export

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/go-logr/logr"
)

// Sink saves an artifact somewhere and returns where it went.
type Sink interface {
	Save(ctx context.Context, a Artifact) (string, error)
}

// FileSink writes artifacts into Dir (the working directory when empty).
type FileSink struct {
	Dir    string
	Logger logr.Logger
}

// Save writes the artifact and returns its path.
func (s FileSink) Save(_ context.Context, a Artifact) (string, error) {
	dir := s.Dir
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create export directory: %w", err)
	}
	path := filepath.Join(dir, a.Filename)
	if err := os.WriteFile(path, a.Content, 0o600); err != nil {
		return "", fmt.Errorf("write %s: %w", a.Filename, err)
	}
	s.Logger.V(1).Info("export written", "path", path, "bytes", len(a.Content), "mime", a.MIMEType)
	return path, nil
}

// WriterSink streams artifacts to W, e.g. stdout.
type WriterSink struct {
	W io.Writer
}

// Save writes the artifact content followed by a newline.
func (s WriterSink) Save(_ context.Context, a Artifact) (string, error) {
	if _, err := s.W.Write(a.Content); err != nil {
		return "", fmt.Errorf("write %s: %w", a.Filename, err)
	}
	if _, err := io.WriteString(s.W, "\n"); err != nil {
		return "", fmt.Errorf("write %s: %w", a.Filename, err)
	}
	return a.Filename, nil
}
