package project

import (
	"time"

	"github.com/google/uuid"
)

const (
	// DefaultTitle is the title given to a project the user has not named.
	DefaultTitle = "Untitled Project"

	// DefaultSpeed is the playback speed multiplier for new projects.
	DefaultSpeed = 1.0
)

// Project is the persisted unit of work: an ordered list of frame resource
// references plus title, playback speed, and last-modified timestamp.
// FrameRefs order is the timeline order; the same resource may appear at
// more than one position.
type Project struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	FrameRefs    []string `json:"frame_refs"`
	DateModified int64    `json:"date_modified"` // epoch milliseconds
	Speed        float64  `json:"speed"`
}

// New returns an empty project with a fresh id and default title and speed.
func New() *Project {
	return &Project{
		ID:           uuid.NewString(),
		Title:        DefaultTitle,
		DateModified: time.Now().UnixMilli(),
		Speed:        DefaultSpeed,
	}
}

// Duration returns the playback length of the project in seconds.
func (p *Project) Duration() float64 {
	if p.Speed <= 0 {
		return 0
	}
	return float64(len(p.FrameRefs)) / p.Speed
}

// Clone returns a deep copy of the project.
func (p *Project) Clone() *Project {
	c := *p
	c.FrameRefs = append([]string(nil), p.FrameRefs...)
	return &c
}
