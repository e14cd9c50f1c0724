package export

import (
	"context"
	"errors"
	"log/slog"
)

// ErrUnavailable is returned by the stub exporter on every request.
var ErrUnavailable = errors.New("video export is not available on this device")

// Stub stands in for the real exporter on hosts without ffmpeg.
type Stub struct {
	logger *slog.Logger
}

func NewStub(logger *slog.Logger) *Stub {
	return &Stub{logger: logger}
}

func (s *Stub) Export(ctx context.Context, req Request) (string, error) {
	if s.logger != nil {
		s.logger.Info("export stub: export requested", "title", req.Title, "frames", len(req.FrameRefs))
	}
	return "", ErrUnavailable
}
