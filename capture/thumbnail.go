package capture

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"
	"log/slog"
	"os"
	"path/filepath"

	"golang.org/x/image/draw"
)

// DefaultThumbSize is the longest-side pixel size of generated thumbnails.
const DefaultThumbSize = 320

const thumbJPEGQuality = 80

// Thumbnailer produces downscaled gallery thumbnails for frame images,
// cached on disk keyed by the source path.
type Thumbnailer struct {
	thumbsDir string
	maxSize   int
	logger    *slog.Logger
}

func NewThumbnailer(thumbsDir string, logger *slog.Logger) *Thumbnailer {
	return &Thumbnailer{thumbsDir: thumbsDir, maxSize: DefaultThumbSize, logger: logger}
}

// Thumbnail returns the path of a thumbnail for the given frame resource,
// generating and caching it on first use.
func (t *Thumbnailer) Thumbnail(resourceRef string) (string, error) {
	sum := sha256.Sum256([]byte(resourceRef))
	thumbPath := filepath.Join(t.thumbsDir, hex.EncodeToString(sum[:8])+".jpg")

	if _, err := os.Stat(thumbPath); err == nil {
		return thumbPath, nil
	}

	if err := os.MkdirAll(t.thumbsDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create thumbs directory: %w", err)
	}

	src, err := decodeImage(resourceRef)
	if err != nil {
		return "", err
	}

	dst := scaleDown(src, t.maxSize)

	out, err := os.Create(thumbPath)
	if err != nil {
		return "", fmt.Errorf("failed to create thumbnail file: %w", err)
	}
	if err := jpeg.Encode(out, dst, &jpeg.Options{Quality: thumbJPEGQuality}); err != nil {
		out.Close()
		os.Remove(thumbPath)
		return "", fmt.Errorf("failed to encode thumbnail: %w", err)
	}
	if err := out.Close(); err != nil {
		os.Remove(thumbPath)
		return "", fmt.Errorf("failed to close thumbnail file: %w", err)
	}

	if t.logger != nil {
		t.logger.Debug("thumbnail generated", "source", resourceRef, "thumb", thumbPath)
	}
	return thumbPath, nil
}

func decodeImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image %s: %w", filepath.Base(path), err)
	}
	return img, nil
}

// scaleDown shrinks img so its longest side is maxSize, preserving aspect
// ratio. Images already within bounds are returned as-is.
func scaleDown(img image.Image, maxSize int) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= maxSize && h <= maxSize {
		return img
	}

	var nw, nh int
	if w >= h {
		nw = maxSize
		nh = h * maxSize / w
	} else {
		nh = maxSize
		nw = w * maxSize / h
	}
	if nw < 1 {
		nw = 1
	}
	if nh < 1 {
		nh = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, nw, nh))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}
