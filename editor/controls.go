package editor

import "time"

// The fullscreen controls hide after a quiet period. The pending action is
// debounced: scheduling replaces any earlier one, and cancellation bumps
// the generation under e.mu so an already-fired callback finds itself
// stale and applies nothing.

// scheduleHideLocked (re)starts the auto-hide countdown. Caller holds e.mu.
func (e *Editor) scheduleHideLocked() {
	e.cancelHideLocked()
	gen := e.hideGen
	e.hideTimer = time.AfterFunc(e.hideDelay, func() {
		e.mu.Lock()
		if gen != e.hideGen || !e.fullScreen {
			e.mu.Unlock()
			return
		}
		e.showControls = false
		fire := e.signalLocked()
		e.mu.Unlock()
		fire()
	})
}

// cancelHideLocked invalidates any pending hide. Idempotent; caller holds
// e.mu.
func (e *Editor) cancelHideLocked() {
	e.hideGen++
	if e.hideTimer != nil {
		e.hideTimer.Stop()
		e.hideTimer = nil
	}
}
