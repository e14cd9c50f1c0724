package editor

import (
	"github.com/google/uuid"

	"github.com/lifelapse/lifelapse-core/project"
)

// Frame is one timeline entry: a session-scoped identity wrapped around a
// frame resource reference. IDs are regenerated on every project load and
// never persisted; they exist so two entries pointing at the same image
// (after duplication) stay independently selectable.
type Frame struct {
	ID          string
	ResourceRef string
}

func newFrame(resourceRef string) Frame {
	return Frame{ID: uuid.NewString(), ResourceRef: resourceRef}
}

// State is an immutable snapshot of the editing session, delivered to
// subscribers after every committed change.
type State struct {
	Project project.Project
	Frames  []Frame

	// SelectedID is the id of the active edit target, empty when no frame
	// is selected. Selection is tracked by id, never by position.
	SelectedID string

	// CurrentFrameIndex is the playback cursor, independent of selection.
	CurrentFrameIndex int

	IsPlaying    bool
	IsFullScreen bool
	ShowControls bool

	// ExportResult is a one-shot user-facing message; the host displays it
	// once and calls ClearExportResult.
	ExportResult string
}

// SelectedFrame returns the selected frame, or false when nothing is
// selected.
func (s State) SelectedFrame() (Frame, bool) {
	for _, f := range s.Frames {
		if f.ID == s.SelectedID {
			return f, true
		}
	}
	return Frame{}, false
}
