package automation

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/playwright-community/playwright-go"

	"github.com/entrhq/maestro/pkg/config"
	"github.com/entrhq/maestro/pkg/logging"
	"github.com/entrhq/maestro/pkg/media"
	"github.com/entrhq/maestro/pkg/types"
)

const iconScript = `() => {
	const icon = document.querySelector('link[rel~="icon"]');
	return (icon && icon.href) || '';
}`

// Handle is the virtual source: a media.Handle whose state is scraped from
// the page UI on a fixed poll and whose commands are emulated user input.
// The shadow fields are the only authority for values the UI cannot be
// asked for between polls; nothing outside this type mutates them.
type Handle struct {
	page     playwright.Page
	profile  *config.SiteProfile
	em       *media.Emitter
	log      *logging.Logger
	interval time.Duration

	poke chan struct{}
	stop chan struct{}
	once sync.Once

	mu     sync.Mutex
	snap   types.Snapshot
	shadow struct {
		currentTime float64
		volume      float64
		muted       bool
	}
}

var _ media.Handle = (*Handle)(nil)

// NewHandle creates a virtual handle and starts its poll loop. poke delivers
// metadata-observer kicks from the page; it may be nil.
func NewHandle(page playwright.Page, profile *config.SiteProfile, em *media.Emitter, log *logging.Logger, interval time.Duration, poke chan struct{}) *Handle {
	h := &Handle{
		page:     page,
		profile:  profile,
		em:       em,
		log:      log,
		interval: interval,
		poke:     poke,
		stop:     make(chan struct{}),
	}
	h.shadow.volume = 1

	if _, err := page.Evaluate(metaObserveScript, profile.Selectors.Metadata); err != nil {
		log.Debugf("metadata observer install failed: %v", err)
	}

	go h.pollLoop()
	return h
}

func (h *Handle) pollLoop() {
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	h.refresh(false)
	for {
		select {
		case <-h.stop:
			return
		case <-ticker.C:
			h.refresh(false)
		case <-h.poke:
			h.refresh(false)
		}
	}
}

// refresh derives a snapshot from the page UI and offers it for emission.
// When force is set the snapshot bypasses suppression (end of a seek hold).
func (h *Handle) refresh(force bool) {
	snap, ok := h.derive()
	if !ok {
		return
	}

	h.mu.Lock()
	prev := h.snap
	h.snap = snap
	h.shadow.currentTime = snap.State.CurrentTime
	h.shadow.volume = snap.State.Volume
	h.shadow.muted = snap.State.Muted
	h.mu.Unlock()

	if force {
		h.em.Force(snap)
		return
	}
	h.em.Offer(snap, progressOnlyChange(prev, snap))
}

// progressOnlyChange reports whether the only difference between two
// snapshots is the playback position, which makes the emission coalescable.
func progressOnlyChange(prev, next types.Snapshot) bool {
	p, n := prev, next
	p.State.CurrentTime = 0
	n.State.CurrentTime = 0
	return p == n
}

// derive reads the page UI into a snapshot. Every read is individually
// best-effort; a value the UI will not yield falls back to the shadow state
// or zero, never to an error.
func (h *Handle) derive() (types.Snapshot, bool) {
	sel := h.profile.Selectors

	pauseAff := h.affordance(sel.Pause)
	playAff := h.affordance(sel.Play)

	h.mu.Lock()
	state := h.snap.State
	state.CurrentTime = h.shadow.currentTime
	state.Volume = h.shadow.volume
	state.Muted = h.shadow.muted
	h.mu.Unlock()

	// Play/pause is read from which affordance the UI offers, a mutually
	// exclusive pair: a visible pause control means playing.
	switch {
	case pauseAff != nil:
		state.Paused = false
	case playAff != nil:
		state.Paused = true
	}

	if cur := h.text(sel.CurrentClock); cur != "" {
		state.CurrentTime = types.ParseClock(cur)
	}
	if dur := h.text(sel.DurationClock); dur != "" {
		state.Duration = types.ParseClock(dur)
	}

	if slider := h.slider(sel.Volume); slider != nil {
		if v, ok := normalizeSliderValue(slider.value, slider.max); ok {
			state.Volume = v
		}
	}
	if muteAff := h.affordance(sel.Mute); muteAff != nil {
		if muted, ok := interpretMuteLabel(muteAff.label); ok {
			state.Muted = muted
		}
	}

	state.CanSeek = state.Duration > 0 && h.hasControl(sel.Progress)
	state.Ended = state.Duration > 0 && state.CurrentTime >= state.Duration && state.Paused

	title := h.text(sel.Title)
	if title == "" {
		if t, err := h.page.Title(); err == nil {
			title = t
		}
	}

	snap := types.Snapshot{
		Title:      title,
		ArtworkURL: h.artwork(sel.Artwork),
		SiteURL:    h.page.URL(),
		SiteIcon:   h.icon(),
		State:      state.Normalize(),
	}
	return snap, true
}

// Page reads used by derive. All swallow errors into zero values.

type affordance struct {
	selector string
	label    string
}

func (h *Handle) affordance(selectors []string) *affordance {
	if len(selectors) == 0 {
		return nil
	}
	result, err := h.page.Evaluate(affordanceScript, selectors)
	if err != nil {
		return nil
	}
	m, ok := result.(map[string]interface{})
	if !ok {
		return nil
	}
	sel, _ := m["selector"].(string)
	label, _ := m["label"].(string)
	return &affordance{selector: sel, label: label}
}

func (h *Handle) text(selectors []string) string {
	if len(selectors) == 0 {
		return ""
	}
	result, err := h.page.Evaluate(textScript, selectors)
	if err != nil {
		return ""
	}
	s, _ := result.(string)
	return s
}

type sliderReading struct {
	value string
	max   string
}

func (h *Handle) slider(selectors []string) *sliderReading {
	if len(selectors) == 0 {
		return nil
	}
	result, err := h.page.Evaluate(sliderScript, selectors)
	if err != nil {
		return nil
	}
	m, ok := result.(map[string]interface{})
	if !ok {
		return nil
	}
	value, _ := m["value"].(string)
	max, _ := m["max"].(string)
	return &sliderReading{value: value, max: max}
}

func (h *Handle) artwork(selectors []string) string {
	if len(selectors) == 0 {
		return ""
	}
	result, err := h.page.Evaluate(artworkScript, selectors)
	if err != nil {
		return ""
	}
	s, _ := result.(string)
	return s
}

func (h *Handle) icon() string {
	result, err := h.page.Evaluate(iconScript)
	if err != nil {
		return ""
	}
	s, _ := result.(string)
	return s
}

func (h *Handle) hasControl(selectors []string) bool {
	_, _, box := h.resolve(selectors)
	return box != nil
}

// resolve returns the first visible control among the selectors along with
// its bounding geometry. First match wins.
func (h *Handle) resolve(selectors []string) (playwright.Locator, string, *playwright.Rect) {
	for _, sel := range selectors {
		loc := h.page.Locator(sel).First()
		visible, err := loc.IsVisible()
		if err != nil || !visible {
			continue
		}
		box, err := loc.BoundingBox()
		if err != nil || box == nil || box.Width <= 0 || box.Height <= 0 {
			continue
		}
		return loc, sel, box
	}
	return nil, "", nil
}

// press actuates a button-like control through the strategy cascade,
// aiming at the fraction of the control's width given by fx (0.5 = center).
func (h *Handle) press(ctx context.Context, action string, selectors []string, fx float64) bool {
	_, sel, box := h.resolve(selectors)
	if box == nil {
		h.log.Debugf("%s: no visible control", action)
		return false
	}
	x := box.X + box.Width*fx
	y := box.Y + box.Height/2

	strategies := []Strategy{
		{Name: "pointer-sequence", Run: func(context.Context) (bool, error) {
			if err := h.page.Mouse().Move(x, y); err != nil {
				return false, err
			}
			if err := h.page.Mouse().Down(); err != nil {
				return false, err
			}
			if err := h.page.Mouse().Up(); err != nil {
				return false, err
			}
			return true, nil
		}},
		{Name: "hit-test", Run: func(context.Context) (bool, error) {
			result, err := h.page.Evaluate(hitTestPressScript, map[string]interface{}{"x": x, "y": y})
			if err != nil {
				return false, err
			}
			handled, _ := result.(bool)
			return handled, nil
		}},
		{Name: "range-input", Run: func(context.Context) (bool, error) {
			return h.setRange(sel, fx)
		}},
		{Name: "descendant-click", Run: func(context.Context) (bool, error) {
			result, err := h.page.Evaluate(descendantClickScript, sel)
			if err != nil {
				return false, err
			}
			handled, _ := result.(bool)
			return handled, nil
		}},
	}
	return runCascade(ctx, h.log, action, strategies)
}

// setRange writes fx directly into a raw range input, scaled by its max.
func (h *Handle) setRange(sel string, fx float64) (bool, error) {
	maxAttr, err := h.page.Locator(sel).First().GetAttribute("max")
	if err != nil {
		maxAttr = ""
	}
	scale := 100.0
	if m, perr := strconv.ParseFloat(strings.TrimSpace(maxAttr), 64); perr == nil && m > 0 {
		scale = m
	}
	result, err := h.page.Evaluate(rangeSetScript, map[string]interface{}{
		"selector": sel,
		"value":    fx * scale,
	})
	if err != nil {
		return false, err
	}
	handled, _ := result.(bool)
	return handled, nil
}

// spacebar sends a space key press to whatever holds focus. Many player UIs
// bind play/pause to it regardless of pointer focus.
func (h *Handle) spacebar() {
	if err := h.page.Keyboard().Press("Space"); err != nil {
		h.log.Debugf("spacebar dispatch failed: %v", err)
	}
}

func (h *Handle) Play(ctx context.Context) error {
	if !h.press(ctx, "play", h.profile.Selectors.Play, 0.5) {
		h.spacebar()
	}
	return nil
}

func (h *Handle) Pause(ctx context.Context) error {
	if !h.press(ctx, "pause", h.profile.Selectors.Pause, 0.5) {
		h.spacebar()
	}
	return nil
}

func (h *Handle) SeekTo(ctx context.Context, seconds float64) error {
	h.mu.Lock()
	duration := h.snap.State.Duration
	h.mu.Unlock()

	if duration <= 0 {
		h.log.Debugf("seek: duration unknown, ignoring")
		return nil
	}
	fraction := seekFraction(seconds, duration)
	if !h.press(ctx, "seek", h.profile.Selectors.Progress, fraction) {
		return nil
	}

	h.mu.Lock()
	h.shadow.currentTime = fraction * duration
	h.snap.State.CurrentTime = h.shadow.currentTime
	snap := h.snap
	h.mu.Unlock()
	h.em.Offer(snap, false)
	return nil
}

func (h *Handle) SetVolume(ctx context.Context, volume float64) error {
	if volume < 0 {
		volume = 0
	}
	if volume > 1 {
		volume = 1
	}
	if !h.press(ctx, "volume", h.profile.Selectors.Volume, volume) {
		return nil
	}

	h.mu.Lock()
	h.shadow.volume = volume
	h.snap.State.Volume = volume
	snap := h.snap
	h.mu.Unlock()
	h.em.Offer(snap, false)
	return nil
}

func (h *Handle) SetMuted(ctx context.Context, muted bool) error {
	h.mu.Lock()
	current := h.shadow.muted
	h.mu.Unlock()
	if current == muted {
		return nil
	}
	if !h.press(ctx, "mute", h.profile.Selectors.Mute, 0.5) {
		return nil
	}

	h.mu.Lock()
	h.shadow.muted = muted
	h.snap.State.Muted = muted
	snap := h.snap
	h.mu.Unlock()
	h.em.Offer(snap, false)
	return nil
}

func (h *Handle) NextTrack(ctx context.Context) error {
	h.press(ctx, "next-track", h.profile.Selectors.Next, 0.5)
	return nil
}

func (h *Handle) PreviousTrack(ctx context.Context) error {
	h.press(ctx, "previous-track", h.profile.Selectors.Previous, 0.5)
	return nil
}

func (h *Handle) State(context.Context) (types.PlaybackState, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.snap.State, nil
}

func (h *Handle) BeginSeekHold() {
	h.em.SetSuppressed(true)
}

func (h *Handle) EndSeekHold(context.Context) {
	h.em.SetSuppressed(false)
	h.refresh(true)
}

// Detach stops the poll loop and the emitter before disconnecting the
// page-side observer, so no stale tick can emit after a successor attaches.
func (h *Handle) Detach() {
	h.once.Do(func() {
		close(h.stop)
	})
	h.em.Stop()
	if _, err := h.page.Evaluate(metaDisconnectScript); err != nil {
		h.log.Debugf("metadata observer disconnect failed: %v", err)
	}
}
