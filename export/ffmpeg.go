package export

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
)

// FFmpeg renders a project by feeding the frame list to an external
// ffmpeg binary through a concat list file.
type FFmpeg struct {
	binPath string
	logger  *slog.Logger
}

// NewFFmpeg creates an exporter invoking the given ffmpeg binary.
// An empty binPath falls back to "ffmpeg" on PATH.
func NewFFmpeg(binPath string, logger *slog.Logger) *FFmpeg {
	if binPath == "" {
		binPath = "ffmpeg"
	}
	return &FFmpeg{binPath: binPath, logger: logger}
}

func (f *FFmpeg) Export(ctx context.Context, req Request) (string, error) {
	if len(req.FrameRefs) == 0 {
		return "", fmt.Errorf("cannot export an empty project")
	}

	if err := f.preflight(ctx, req.FrameRefs); err != nil {
		return "", err
	}

	if err := os.MkdirAll(req.OutputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	tmpDir, err := os.MkdirTemp("", "lifelapse-export-")
	if err != nil {
		return "", fmt.Errorf("failed to create temp directory: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	listPath := filepath.Join(tmpDir, "filelist.txt")
	if err := writeConcatList(listPath, req.FrameRefs); err != nil {
		return "", err
	}

	outPath := filepath.Join(req.OutputDir, fmt.Sprintf("LifeLapse_%d.mp4", time.Now().UnixMilli()))
	args := buildArgs(listPath, req, outPath)

	if f.logger != nil {
		f.logger.Info("starting export",
			"title", req.Title, "frames", len(req.FrameRefs),
			"speed", req.Speed, "quality", string(req.Quality))
	}

	cmd := exec.CommandContext(ctx, f.binPath, args...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		if f.logger != nil {
			f.logger.Error("ffmpeg failed", "error", err, "output", tail(string(out), 2000))
		}
		return "", fmt.Errorf("ffmpeg failed: %w", err)
	}

	if f.logger != nil {
		f.logger.Info("export complete", "output", outPath)
	}
	return outPath, nil
}

// preflight verifies every frame resource still exists before ffmpeg is
// launched, so a deleted image surfaces as a clear error instead of a
// mid-encode failure.
func (f *FFmpeg) preflight(ctx context.Context, refs []string) error {
	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(8)

	for _, ref := range refs {
		g.Go(func() error {
			if _, err := os.Stat(ref); err != nil {
				return fmt.Errorf("frame missing: %s: %w", ref, err)
			}
			return nil
		})
	}
	return g.Wait()
}

func writeConcatList(path string, refs []string) error {
	var b strings.Builder
	for _, ref := range refs {
		abs, err := filepath.Abs(ref)
		if err != nil {
			abs = ref
		}
		// Single quotes inside a concat entry are closed, escaped, reopened.
		escaped := strings.ReplaceAll(abs, "'", `'\''`)
		fmt.Fprintf(&b, "file '%s'\n", escaped)
	}
	return os.WriteFile(path, []byte(b.String()), 0644)
}

func buildArgs(listPath string, req Request, outPath string) []string {
	return []string{
		"-r", strconv.FormatFloat(req.Speed, 'f', -1, 64),
		"-f", "concat",
		"-safe", "0",
		"-i", listPath,
		"-vf", fmt.Sprintf("scale=-2:%d", req.Quality.Height()),
		"-c:v", "libx264",
		"-pix_fmt", "yuv420p",
		"-y", outPath,
	}
}

func tail(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}
