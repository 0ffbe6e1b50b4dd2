package media

import (
	"sync"
	"time"

	"github.com/entrhq/maestro/pkg/types"
)

// Emitter funnels every snapshot a handle produces through one gate that
// implements the two emission rules shared by native and virtual sources:
// high-frequency progress reports are coalesced to at most one per interval,
// and emission is withheld entirely while a control surface drags a seek bar.
type Emitter struct {
	mu sync.Mutex

	// deliverMu serializes calls into the sink. It is acquired while mu is
	// still held and released after the sink returns, so deliveries keep
	// their decision order while a slow sink never holds up Offer, Force,
	// or SetSuppressed.
	deliverMu sync.Mutex

	emit     EmitFunc
	interval time.Duration
	now      func() time.Time

	lastEmit   time.Time
	pending    *types.Snapshot
	timer      *time.Timer
	suppressed bool
	stopped    bool
}

// NewEmitter creates an emitter delivering to emit, coalescing progress
// reports to at most one per interval.
func NewEmitter(emit EmitFunc, interval time.Duration) *Emitter {
	return &Emitter{
		emit:     emit,
		interval: interval,
		now:      time.Now,
	}
}

// Offer submits a snapshot. Coalescable snapshots (progress ticks) may be
// deferred so that at most one emission happens per interval; the latest
// deferred snapshot wins. Non-coalescable snapshots flush immediately and
// supersede anything deferred.
func (e *Emitter) Offer(snap types.Snapshot, coalescable bool) {
	e.mu.Lock()

	if e.suppressed || e.stopped {
		e.mu.Unlock()
		return
	}

	if !coalescable {
		e.cancelTimerLocked()
		e.deliverAndUnlock(snap)
		return
	}

	since := e.now().Sub(e.lastEmit)
	if since >= e.interval && e.timer == nil {
		e.deliverAndUnlock(snap)
		return
	}

	e.pending = &snap
	if e.timer == nil {
		wait := e.interval - since
		if wait < 0 {
			wait = 0
		}
		e.timer = time.AfterFunc(wait, e.flushPending)
	}
	e.mu.Unlock()
}

// Force emits a snapshot immediately, bypassing suppression. Used when a
// seek hold ends and the surface needs one authoritative report right away.
func (e *Emitter) Force(snap types.Snapshot) {
	e.mu.Lock()

	if e.stopped {
		e.mu.Unlock()
		return
	}
	e.cancelTimerLocked()
	e.deliverAndUnlock(snap)
}

// SetSuppressed toggles the seek-suppression window. Entering suppression
// drops any deferred snapshot; stale progress must not surface mid-drag.
func (e *Emitter) SetSuppressed(suppressed bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.suppressed = suppressed
	if suppressed {
		e.cancelTimerLocked()
	}
}

// Stop cancels any deferred emission. The emitter ignores all input
// afterwards; callers stop it before detaching a handle so no stale timer
// can fire into an unrelated successor.
func (e *Emitter) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.stopped = true
	e.cancelTimerLocked()
}

func (e *Emitter) flushPending() {
	e.mu.Lock()

	e.timer = nil
	if e.pending == nil || e.suppressed || e.stopped {
		e.pending = nil
		e.mu.Unlock()
		return
	}
	snap := *e.pending
	e.deliverAndUnlock(snap)
}

// deliverAndUnlock hands snap to the sink. Called with mu held; mu is
// released before the sink runs so the sink cannot stall the emitter's
// other entry points.
func (e *Emitter) deliverAndUnlock(snap types.Snapshot) {
	e.pending = nil
	e.lastEmit = e.now()
	e.deliverMu.Lock()
	e.mu.Unlock()
	e.emit(snap)
	e.deliverMu.Unlock()
}

func (e *Emitter) cancelTimerLocked() {
	if e.timer != nil {
		e.timer.Stop()
		e.timer = nil
	}
	e.pending = nil
}
