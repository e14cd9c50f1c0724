package export

import (
	"context"

	"github.com/lifelapse/lifelapse-core/settings"
)

// Request describes one export: the ordered frame images, the playback
// speed (frames per second), and where the video should land.
type Request struct {
	Title     string
	FrameRefs []string
	Speed     float64
	Quality   settings.Quality
	OutputDir string
}

// Exporter transcodes a frame sequence into a video file and returns the
// output path. Implementations do not retry; the caller surfaces the
// outcome to the user as a one-shot message.
type Exporter interface {
	Export(ctx context.Context, req Request) (string, error)
}
