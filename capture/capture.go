// Package capture owns the frame image files: it places newly captured
// photos in the frames directory and produces cached thumbnails for the
// gallery. The returned file paths are the opaque resource references the
// rest of the core carries around.
package capture

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

type Service struct {
	framesDir string
	logger    *slog.Logger

	now func() time.Time
}

func NewService(framesDir string, logger *slog.Logger) *Service {
	return &Service{framesDir: framesDir, logger: logger, now: time.Now}
}

// SavePhoto writes one captured image into the frames directory and
// returns its path as the frame's resource reference.
func (s *Service) SavePhoto(r io.Reader) (string, error) {
	if err := os.MkdirAll(s.framesDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create frames directory: %w", err)
	}

	stamp := s.now().Format("20060102_150405")
	path := filepath.Join(s.framesDir, fmt.Sprintf("LapseFrame_%s.jpg", stamp))

	// Timestamps have second resolution; burst captures need a suffix.
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	for n := 1; err != nil && os.IsExist(err); n++ {
		path = filepath.Join(s.framesDir, fmt.Sprintf("LapseFrame_%s_%d.jpg", stamp, n))
		f, err = os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	}
	if err != nil {
		return "", fmt.Errorf("failed to create frame file: %w", err)
	}

	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(path)
		return "", fmt.Errorf("failed to write frame file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("failed to close frame file: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("frame captured", "path", path)
	}
	return path, nil
}
