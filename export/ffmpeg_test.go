package export

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/lifelapse/lifelapse-core/settings"
)

func TestBuildArgs(t *testing.T) {
	req := Request{
		Speed:   2.5,
		Quality: settings.Quality720p,
	}
	args := buildArgs("/tmp/filelist.txt", req, "/out/LifeLapse_1.mp4")

	joined := strings.Join(args, " ")
	wantParts := []string{
		"-r 2.5",
		"-f concat",
		"-safe 0",
		"-i /tmp/filelist.txt",
		"-vf scale=-2:720",
		"-c:v libx264",
		"-pix_fmt yuv420p",
		"-y /out/LifeLapse_1.mp4",
	}
	for _, part := range wantParts {
		if !strings.Contains(joined, part) {
			t.Errorf("args %q missing %q", joined, part)
		}
	}
}

func TestWriteConcatList(t *testing.T) {
	tmpDir := t.TempDir()
	a := filepath.Join(tmpDir, "a.jpg")
	b := filepath.Join(tmpDir, "it's.jpg")

	listPath := filepath.Join(tmpDir, "filelist.txt")
	if err := writeConcatList(listPath, []string{a, b}); err != nil {
		t.Fatalf("writeConcatList() error = %v", err)
	}

	content, err := os.ReadFile(listPath)
	if err != nil {
		t.Fatalf("failed to read list: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(string(content)), "\n")
	if len(lines) != 2 {
		t.Fatalf("len(lines) = %d, want 2", len(lines))
	}
	if lines[0] != "file '"+a+"'" {
		t.Errorf("lines[0] = %q", lines[0])
	}
	if !strings.Contains(lines[1], `'\''`) {
		t.Errorf("lines[1] = %q, want escaped single quote", lines[1])
	}
}

func TestFFmpeg_ExportEmpty(t *testing.T) {
	f := NewFFmpeg("ffmpeg", nil)

	_, err := f.Export(context.Background(), Request{OutputDir: t.TempDir()})
	if err == nil {
		t.Error("Export() should return error for empty frame list")
	}
}

func TestFFmpeg_PreflightMissingFrame(t *testing.T) {
	tmpDir := t.TempDir()
	present := filepath.Join(tmpDir, "a.jpg")
	if err := os.WriteFile(present, []byte("jpg"), 0644); err != nil {
		t.Fatalf("failed to write frame: %v", err)
	}

	f := NewFFmpeg("ffmpeg", nil)
	err := f.preflight(context.Background(), []string{present, filepath.Join(tmpDir, "gone.jpg")})
	if err == nil {
		t.Error("preflight() should return error for missing frame")
	}
	if err != nil && !strings.Contains(err.Error(), "gone.jpg") {
		t.Errorf("preflight() error = %v, want to name the missing frame", err)
	}
}

func TestStub_Export(t *testing.T) {
	s := NewStub(nil)

	_, err := s.Export(context.Background(), Request{FrameRefs: []string{"a.jpg"}})
	if err != ErrUnavailable {
		t.Errorf("Export() error = %v, want ErrUnavailable", err)
	}
}
