package editor

import "time"

// scheduler is one run of the playback loop. At most one is live per
// editor; each tick re-checks under the editor lock that it is still the
// live instance, so a canceled scheduler can never apply a late tick.
type scheduler struct {
	stop chan struct{}
}

// startPlaybackLocked starts a new playback loop, canceling any prior one
// first. Caller holds e.mu and has verified the timeline is non-empty.
func (e *Editor) startPlaybackLocked() {
	e.cancelPlaybackLocked()
	s := &scheduler{stop: make(chan struct{})}
	e.sched = s
	e.playing = true
	go e.runPlayback(s)
}

// stopPlaybackLocked cancels the loop and records the idle state.
// Idempotent: safe when nothing is playing.
func (e *Editor) stopPlaybackLocked() {
	e.cancelPlaybackLocked()
	e.playing = false
}

// cancelPlaybackLocked detaches the live scheduler, if any. Because ticks
// apply under e.mu and check instance identity first, no further cursor
// advance can happen once this returns.
func (e *Editor) cancelPlaybackLocked() {
	if e.sched == nil {
		return
	}
	close(e.sched.stop)
	e.sched = nil
}

func (e *Editor) runPlayback(s *scheduler) {
	for {
		e.mu.Lock()
		if e.sched != s {
			e.mu.Unlock()
			return
		}
		if len(e.frames) == 0 {
			// Timeline emptied mid-flight: treat as cancel.
			e.sched = nil
			e.playing = false
			fire := e.signalLocked()
			e.mu.Unlock()
			fire()
			return
		}
		// Delay derives from the current speed on every tick, so a speed
		// change takes effect on the next tick.
		delay := time.Duration(float64(time.Second) / e.project.Speed)
		e.mu.Unlock()

		select {
		case <-s.stop:
			return
		case <-time.After(delay):
		}

		e.mu.Lock()
		if e.sched != s {
			e.mu.Unlock()
			return
		}
		if len(e.frames) == 0 {
			e.sched = nil
			e.playing = false
			fire := e.signalLocked()
			e.mu.Unlock()
			fire()
			return
		}
		e.current = (e.current + 1) % len(e.frames)
		fire := e.signalLocked()
		e.mu.Unlock()
		fire()
	}
}
