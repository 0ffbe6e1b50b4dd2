package adapter

import (
	"context"
	"fmt"

	"github.com/playwright-community/playwright-go"

	"github.com/entrhq/maestro/pkg/config"
	"github.com/entrhq/maestro/pkg/logging"
	"github.com/entrhq/maestro/pkg/media"
	"github.com/entrhq/maestro/pkg/types"
)

// nativeHandle drives a real audio/video element through its playback API.
// Commands are direct property and method calls evaluated in the page;
// state flows back through the attach script's event listeners.
type nativeHandle struct {
	page    playwright.Page
	index   int
	em      *media.Emitter
	log     *logging.Logger
	profile *config.SiteProfile
}

var _ media.Handle = (*nativeHandle)(nil)

// run evaluates a control snippet. A false result means the page-side
// attachment is gone, which the coordinator treats as session death.
func (h *nativeHandle) run(script string, arg ...interface{}) error {
	result, err := h.page.Evaluate(script, arg...)
	if err != nil {
		return fmt.Errorf("evaluate control script: %w", err)
	}
	if attached, ok := result.(bool); ok && !attached {
		return media.ErrDetached
	}
	return nil
}

func (h *nativeHandle) Play(context.Context) error {
	return h.run(playScript)
}

func (h *nativeHandle) Pause(context.Context) error {
	return h.run(pauseScript)
}

func (h *nativeHandle) SeekTo(_ context.Context, seconds float64) error {
	return h.run(seekScript, seconds)
}

func (h *nativeHandle) SetVolume(_ context.Context, volume float64) error {
	return h.run(volumeScript, volume)
}

func (h *nativeHandle) SetMuted(_ context.Context, muted bool) error {
	return h.run(muteScript, muted)
}

// NextTrack and PreviousTrack have no native media-element equivalent; when
// a site profile supplies skip selectors they are clicked, otherwise the
// command has no effect. A missing control is not a delivery failure.

func (h *nativeHandle) NextTrack(context.Context) error {
	if h.profile == nil {
		return nil
	}
	h.clickFirst(h.profile.Selectors.Next)
	return nil
}

func (h *nativeHandle) PreviousTrack(context.Context) error {
	if h.profile == nil {
		return nil
	}
	h.clickFirst(h.profile.Selectors.Previous)
	return nil
}

func (h *nativeHandle) clickFirst(selectors []string) {
	for _, sel := range selectors {
		loc := h.page.Locator(sel).First()
		visible, err := loc.IsVisible()
		if err != nil || !visible {
			continue
		}
		if err := loc.Click(); err != nil {
			h.log.Debugf("click %q failed: %v", sel, err)
			continue
		}
		return
	}
	h.log.Debugf("no track-skip control matched among %d selectors", len(selectors))
}

func (h *nativeHandle) State(context.Context) (types.PlaybackState, error) {
	result, err := h.page.Evaluate(stateScript)
	if err != nil {
		return types.PlaybackState{}, fmt.Errorf("read state: %w", err)
	}
	state, ok := stateFromJS(result)
	if !ok {
		return types.PlaybackState{}, media.ErrDetached
	}
	return state, nil
}

func (h *nativeHandle) BeginSeekHold() {
	h.em.SetSuppressed(true)
}

func (h *nativeHandle) EndSeekHold(context.Context) {
	h.em.SetSuppressed(false)
	// Forces one authoritative report through the page listeners so the
	// surface snaps to real state as soon as the drag ends.
	if err := h.run(reportScript); err != nil {
		h.log.Debugf("forced report after seek hold failed: %v", err)
	}
}

// Detach stops the emitter before touching the page, so a timer firing
// mid-detach cannot emit into a successor handle.
func (h *nativeHandle) Detach() {
	h.em.Stop()
	if _, err := h.page.Evaluate(detachScript); err != nil {
		h.log.Debugf("page-side detach failed: %v", err)
	}
}
