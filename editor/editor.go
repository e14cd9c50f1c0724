// Package editor implements the per-session editing state machine: it owns
// the current project, its ordered frame list, the selection cursor, and
// the playback and fullscreen-controls state, and persists the project
// after every mutation.
//
// All operations are safe for use from one host goroutine alongside the
// internal playback and auto-hide tasks; every state change commits under
// one lock and is published to subscribers as an immutable snapshot.
package editor

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/lifelapse/lifelapse-core/export"
	"github.com/lifelapse/lifelapse-core/project"
	"github.com/lifelapse/lifelapse-core/settings"
)

const defaultHideDelay = 3000 * time.Millisecond

// Editor is the state machine for one editing session. Create one per
// session with New and release it with Close.
type Editor struct {
	store    project.Store
	exporter export.Exporter
	logger   *slog.Logger

	hideDelay time.Duration
	exportDir string
	quality   func() settings.Quality

	mu           sync.Mutex
	project      *project.Project
	frames       []Frame
	selectedID   string
	current      int
	playing      bool
	fullScreen   bool
	showControls bool
	exportResult string

	sched     *scheduler
	hideGen   int
	hideTimer *time.Timer

	subs    map[int]func(State)
	nextSub int
}

// Option configures an Editor.
type Option func(*Editor)

// WithHideDelay overrides the fullscreen controls auto-hide quiet period.
func WithHideDelay(d time.Duration) Option {
	return func(e *Editor) { e.hideDelay = d }
}

// WithExportDir sets the directory exported videos are written to.
func WithExportDir(dir string) Option {
	return func(e *Editor) { e.exportDir = dir }
}

// WithQualitySource sets the export quality lookup, typically bound to the
// settings store. The default is 1080p.
func WithQualitySource(fn func() settings.Quality) Option {
	return func(e *Editor) { e.quality = fn }
}

// New creates an editor for one session. A nil exporter falls back to the
// stub exporter.
func New(store project.Store, exporter export.Exporter, logger *slog.Logger, opts ...Option) *Editor {
	if exporter == nil {
		exporter = export.NewStub(logger)
	}
	e := &Editor{
		store:        store,
		exporter:     exporter,
		logger:       logger,
		hideDelay:    defaultHideDelay,
		quality:      func() settings.Quality { return settings.Quality1080p },
		project:      project.New(),
		showControls: true,
		subs:         make(map[int]func(State)),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// State returns a snapshot of the current session state.
func (e *Editor) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked()
}

// Subscribe registers fn to receive a snapshot after every committed
// change. The returned function cancels the subscription.
func (e *Editor) Subscribe(fn func(State)) func() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.nextSub++
	id := e.nextSub
	e.subs[id] = fn

	return func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		delete(e.subs, id)
	}
}

// Close ends the session, canceling any live playback loop or auto-hide
// timer. Safe to call more than once.
func (e *Editor) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cancelPlaybackLocked()
	e.cancelHideLocked()
}

// LoadProject replaces the whole session state. An empty id starts a fresh
// project and persists it immediately; a missing or corrupt id falls back
// to a fresh unpersisted project. Any live playback or timer from the
// previous project is canceled before the new state applies.
func (e *Editor) LoadProject(ctx context.Context, id string) {
	e.mu.Lock()
	e.cancelPlaybackLocked()
	e.cancelHideLocked()

	var p *project.Project
	if id != "" {
		loaded, err := e.store.Get(ctx, id)
		if err != nil && e.logger != nil {
			e.logger.Warn("failed to load project, starting fresh", "project_id", id, "error", err)
		}
		p = loaded
	}
	fresh := id == ""
	if p == nil {
		p = project.New()
	}

	frames := make([]Frame, 0, len(p.FrameRefs))
	for _, ref := range p.FrameRefs {
		frames = append(frames, newFrame(ref))
	}

	e.project = p
	e.frames = frames
	e.selectedID = ""
	if len(frames) > 0 {
		e.selectedID = frames[0].ID
	}
	e.current = 0
	e.playing = false
	e.fullScreen = false
	e.showControls = true
	e.exportResult = ""

	if fresh {
		e.saveLocked(ctx)
	}
	fire := e.signalLocked()
	e.mu.Unlock()
	fire()
}

// AddFrame appends a frame wrapping resourceRef to the end of the timeline
// and selects it.
func (e *Editor) AddFrame(ctx context.Context, resourceRef string) {
	e.mu.Lock()
	f := newFrame(resourceRef)
	e.frames = append(e.frames, f)
	e.selectedID = f.ID
	e.saveLocked(ctx)
	fire := e.signalLocked()
	e.mu.Unlock()
	fire()
}

// SelectFrame makes the frame with the given id the active edit target.
// Pure focus change: nothing is persisted. Unknown ids are ignored.
func (e *Editor) SelectFrame(frameID string) {
	e.mu.Lock()
	if e.indexOfLocked(frameID) < 0 {
		e.mu.Unlock()
		return
	}
	e.selectedID = frameID
	fire := e.signalLocked()
	e.mu.Unlock()
	fire()
}

// DeleteSelectedFrame removes the selected frame. The new selection is the
// frame now occupying min(i, len-1), or nothing if the timeline is empty.
// No-op without a selection.
func (e *Editor) DeleteSelectedFrame(ctx context.Context) {
	e.mu.Lock()
	i := e.indexOfLocked(e.selectedID)
	if i < 0 {
		e.mu.Unlock()
		return
	}

	e.frames = append(e.frames[:i], e.frames[i+1:]...)
	if len(e.frames) == 0 {
		e.selectedID = ""
	} else {
		e.selectedID = e.frames[min(i, len(e.frames)-1)].ID
	}

	e.saveLocked(ctx)
	fire := e.signalLocked()
	e.mu.Unlock()
	fire()
}

// DuplicateSelectedFrame inserts a new frame with a fresh identity but the
// same resource reference immediately after the selection, and selects the
// duplicate. No-op without a selection.
func (e *Editor) DuplicateSelectedFrame(ctx context.Context) {
	e.mu.Lock()
	i := e.indexOfLocked(e.selectedID)
	if i < 0 {
		e.mu.Unlock()
		return
	}

	dup := newFrame(e.frames[i].ResourceRef)
	e.frames = append(e.frames, Frame{})
	copy(e.frames[i+2:], e.frames[i+1:])
	e.frames[i+1] = dup
	e.selectedID = dup.ID

	e.saveLocked(ctx)
	fire := e.signalLocked()
	e.mu.Unlock()
	fire()
}

// MoveFrame removes the frame at from and reinserts it at to, where to is
// evaluated against the list after removal. Selection follows frame
// identity, not position. Indices must be in range.
func (e *Editor) MoveFrame(ctx context.Context, from, to int) {
	e.mu.Lock()
	f := e.frames[from]
	e.frames = append(e.frames[:from], e.frames[from+1:]...)
	e.frames = append(e.frames, Frame{})
	copy(e.frames[to+1:], e.frames[to:])
	e.frames[to] = f

	e.saveLocked(ctx)
	fire := e.signalLocked()
	e.mu.Unlock()
	fire()
}

// SetSpeed updates the playback speed multiplier. speed must be positive;
// the host UI offers only valid choices.
func (e *Editor) SetSpeed(ctx context.Context, speed float64) {
	e.mu.Lock()
	e.project.Speed = speed
	e.saveLocked(ctx)
	fire := e.signalLocked()
	e.mu.Unlock()
	fire()
}

// SetTitle renames the project.
func (e *Editor) SetTitle(ctx context.Context, title string) {
	e.mu.Lock()
	e.project.Title = title
	e.saveLocked(ctx)
	fire := e.signalLocked()
	e.mu.Unlock()
	fire()
}

// TogglePlayback starts the playback loop, or stops it if running. No-op
// on an empty timeline.
func (e *Editor) TogglePlayback() {
	e.mu.Lock()
	if e.playing {
		e.stopPlaybackLocked()
	} else {
		if len(e.frames) == 0 {
			e.mu.Unlock()
			return
		}
		e.startPlaybackLocked()
	}
	fire := e.signalLocked()
	e.mu.Unlock()
	fire()
}

// SeekToFrame stops playback and moves the playback cursor to index.
// index must be in range.
func (e *Editor) SeekToFrame(index int) {
	e.mu.Lock()
	e.stopPlaybackLocked()
	e.current = index
	fire := e.signalLocked()
	e.mu.Unlock()
	fire()
}

// ToggleFullScreen flips fullscreen mode. Entering shows the controls and
// starts the auto-hide countdown; exiting cancels it.
func (e *Editor) ToggleFullScreen() {
	e.mu.Lock()
	e.fullScreen = !e.fullScreen
	e.showControls = true
	if e.fullScreen {
		e.scheduleHideLocked()
	} else {
		e.cancelHideLocked()
	}
	fire := e.signalLocked()
	e.mu.Unlock()
	fire()
}

// PlayerTapped handles a tap on the fullscreen player. Hidden controls are
// shown and the auto-hide countdown restarts; a tap while the controls are
// visible does nothing. No-op outside fullscreen.
func (e *Editor) PlayerTapped() {
	e.mu.Lock()
	if !e.fullScreen || e.showControls {
		e.mu.Unlock()
		return
	}
	e.showControls = true
	e.scheduleHideLocked()
	fire := e.signalLocked()
	e.mu.Unlock()
	fire()
}

// RequestExport validates the timeline and kicks off the export
// collaborator. The outcome arrives later as the next one-shot
// ExportResult message.
func (e *Editor) RequestExport(ctx context.Context) {
	e.mu.Lock()
	if len(e.frames) == 0 {
		e.exportResult = "Cannot export an empty project."
		fire := e.signalLocked()
		e.mu.Unlock()
		fire()
		return
	}

	req := export.Request{
		Title:     e.project.Title,
		FrameRefs: e.frameRefsLocked(),
		Speed:     e.project.Speed,
		Quality:   e.quality(),
		OutputDir: e.exportDir,
	}
	e.exportResult = "Export started..."
	fire := e.signalLocked()
	e.mu.Unlock()
	fire()

	go func() {
		path, err := e.exporter.Export(context.WithoutCancel(ctx), req)
		msg := fmt.Sprintf("Export successful! Saved to %s.", path)
		if err != nil {
			msg = fmt.Sprintf("Export failed: %v.", err)
		}

		e.mu.Lock()
		e.exportResult = msg
		fire := e.signalLocked()
		e.mu.Unlock()
		fire()
	}()
}

// ClearExportResult clears the one-shot message after the host has shown it.
func (e *Editor) ClearExportResult() {
	e.mu.Lock()
	e.exportResult = ""
	fire := e.signalLocked()
	e.mu.Unlock()
	fire()
}

func (e *Editor) indexOfLocked(frameID string) int {
	if frameID == "" {
		return -1
	}
	for i, f := range e.frames {
		if f.ID == frameID {
			return i
		}
	}
	return -1
}

func (e *Editor) frameRefsLocked() []string {
	refs := make([]string, len(e.frames))
	for i, f := range e.frames {
		refs[i] = f.ResourceRef
	}
	return refs
}

// saveLocked syncs the project's frame list with the timeline and writes
// the snapshot. Persistence failures are logged, never surfaced to the
// mutating caller, and never retried.
func (e *Editor) saveLocked(ctx context.Context) {
	e.project.FrameRefs = e.frameRefsLocked()
	if err := e.store.Save(ctx, e.project); err != nil && e.logger != nil {
		e.logger.Warn("failed to persist project", "project_id", e.project.ID, "error", err)
	}
}

func (e *Editor) snapshotLocked() State {
	e.project.FrameRefs = e.frameRefsLocked()
	return State{
		Project:           *e.project.Clone(),
		Frames:            append([]Frame(nil), e.frames...),
		SelectedID:        e.selectedID,
		CurrentFrameIndex: e.current,
		IsPlaying:         e.playing,
		IsFullScreen:      e.fullScreen,
		ShowControls:      e.showControls,
		ExportResult:      e.exportResult,
	}
}

// signalLocked captures the snapshot and subscriber set; the returned
// function delivers the snapshot and must run after the lock is released.
func (e *Editor) signalLocked() func() {
	if len(e.subs) == 0 {
		return func() {}
	}
	st := e.snapshotLocked()
	fns := make([]func(State), 0, len(e.subs))
	for _, fn := range e.subs {
		fns = append(fns, fn)
	}
	return func() {
		for _, fn := range fns {
			fn(st)
		}
	}
}
