// Package adapter attaches to one browser page and turns whatever plays
// media there into a controllable session. Discovery prefers a real
// audio/video element (the native source); pages that render their player
// without one fall back to UI automation (the virtual source) when a site
// profile recognizes them.
package adapter

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/playwright-community/playwright-go"

	"github.com/entrhq/maestro/pkg/adapter/automation"
	"github.com/entrhq/maestro/pkg/config"
	"github.com/entrhq/maestro/pkg/logging"
	"github.com/entrhq/maestro/pkg/media"
	"github.com/entrhq/maestro/pkg/types"
)

const (
	// Progress reports are coalesced to at most one emission per this
	// interval; everything else flushes immediately.
	coalesceInterval = 250 * time.Millisecond

	// DOM mutations arrive in bursts while a player mounts. Rescans wait
	// this long after the last ping before re-running discovery.
	rescanSettleDelay = 500 * time.Millisecond

	// Players rebuilt without triggering the mutation observer (canvas UIs,
	// shadow roots) are caught by a slow periodic sweep.
	periodicRescanInterval = 30 * time.Second
)

// Adapter owns the page-side attachment for one session. It discovers a
// source, keeps it attached across DOM churn, and relays snapshots up and
// commands down.
type Adapter struct {
	page     playwright.Page
	id       types.SessionID
	cfg      *config.Runtime
	profiles *config.ProfileSet
	log      *logging.Logger
	sink     media.EmitFunc
	onGone   func(types.SessionID)

	poke   chan struct{}
	rescan chan struct{}
	cancel context.CancelFunc

	mu      sync.Mutex
	handle  media.Handle
	em      *media.Emitter
	index   int
	virtual bool
	closed  bool
}

// New creates an adapter for one page. sink receives every snapshot the
// attached source emits; onGone is called once when the source is lost to a
// delivery failure and the session should be removed.
func New(page playwright.Page, id types.SessionID, cfg *config.Runtime, profiles *config.ProfileSet, log *logging.Logger, sink media.EmitFunc, onGone func(types.SessionID)) *Adapter {
	return &Adapter{
		page:     page,
		id:       id,
		cfg:      cfg,
		profiles: profiles,
		log:      log,
		sink:     sink,
		onGone:   onGone,
		poke:     make(chan struct{}, 1),
		rescan:   make(chan struct{}, 1),
	}
}

// ID returns the session identity this adapter reports under.
func (a *Adapter) ID() types.SessionID { return a.id }

// Rescan requests a discovery pass, as after a page navigation wiped the
// attachment. Coalesces with any pending request.
func (a *Adapter) Rescan() { a.signal(a.rescan) }

// Start installs the page bindings and begins discovery. The bindings are
// registered once for the page's lifetime; attach and detach cycles reuse
// them.
func (a *Adapter) Start(ctx context.Context) error {
	if err := a.page.ExposeFunction("__maestroEmit", a.onEmit); err != nil {
		return fmt.Errorf("expose emit binding: %w", err)
	}
	if err := a.page.ExposeFunction("__maestroRescan", func(...interface{}) interface{} {
		a.signal(a.rescan)
		return nil
	}); err != nil {
		return fmt.Errorf("expose rescan binding: %w", err)
	}
	if err := a.page.ExposeFunction("__maestroPoke", func(...interface{}) interface{} {
		a.signal(a.poke)
		return nil
	}); err != nil {
		return fmt.Errorf("expose poke binding: %w", err)
	}
	if _, err := a.page.Evaluate(observeScript); err != nil {
		a.log.Debugf("%s: mutation observer install failed: %v", a.id, err)
	}

	ctx, a.cancel = context.WithCancel(ctx)
	go a.lifecycle(ctx)
	return nil
}

func (a *Adapter) signal(ch chan struct{}) {
	select {
	case ch <- struct{}{}:
	default:
	}
}

// lifecycle runs initial discovery, then serves rescan requests until the
// adapter closes. A rescan on a page with no attachment is a late discovery
// chance, so it attaches rather than re-attaches.
func (a *Adapter) lifecycle(ctx context.Context) {
	a.discover(ctx)

	settle := time.NewTimer(0)
	if !settle.Stop() {
		<-settle.C
	}
	pending := false

	sweep := time.NewTicker(periodicRescanInterval)
	defer sweep.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-sweep.C:
			a.signal(a.rescan)
		case <-a.rescan:
			if !pending {
				settle.Reset(rescanSettleDelay)
				pending = true
			}
		case <-settle.C:
			pending = false
			a.mu.Lock()
			skip := a.virtual || a.closed
			a.mu.Unlock()
			if skip {
				// Virtual mode is sticky: a native element appearing later
				// would duplicate the session the automation layer already
				// represents.
				continue
			}
			a.reattach(ctx)
		}
	}
}

// discover runs the bounded discovery loop: scan for media elements, retry
// on an empty page, and after the budget is spent fall back to automation
// when a site profile recognizes the URL. A page with nothing to find stays
// silent.
func (a *Adapter) discover(ctx context.Context) {
	for attempt := 0; attempt <= a.cfg.DiscoveryRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return
			case <-time.After(a.cfg.DiscoveryRetryDelay):
			}
		}
		candidates, err := a.scan()
		if err != nil {
			a.log.Debugf("%s: discovery scan failed: %v", a.id, err)
			continue
		}
		if selected, ok := Select(candidates, a.profiles.Weights); ok {
			a.attachNative(selected.Index)
			return
		}
	}

	if profile := a.profiles.Match(a.page.URL()); profile != nil {
		a.attachVirtual(profile)
		return
	}
	a.log.Debugf("%s: no media source found, staying idle", a.id)
}

// reattach re-runs one discovery pass after DOM churn. The attachment only
// moves when the winning element differs from the current one.
func (a *Adapter) reattach(ctx context.Context) {
	candidates, err := a.scan()
	if err != nil {
		a.log.Debugf("%s: rescan failed: %v", a.id, err)
		return
	}
	selected, ok := Select(candidates, a.profiles.Weights)
	if !ok {
		return
	}

	a.mu.Lock()
	same := a.handle != nil && a.index == selected.Index
	a.mu.Unlock()
	if same {
		// A navigation can wipe the page-side attachment while the winning
		// index stays put. Only skip when the attachment is still live.
		if result, err := a.page.Evaluate(stateScript); err == nil && result != nil {
			return
		}
	}
	a.attachNative(selected.Index)
}

func (a *Adapter) scan() ([]Candidate, error) {
	result, err := a.page.Evaluate(discoverScript)
	if err != nil {
		return nil, err
	}
	items, ok := result.([]interface{})
	if !ok {
		return nil, fmt.Errorf("unexpected discovery payload %T", result)
	}
	candidates := make([]Candidate, 0, len(items))
	for _, item := range items {
		if c, ok := candidateFromJS(item); ok {
			candidates = append(candidates, c)
		}
	}
	return candidates, nil
}

// attachNative binds to the media element at the given discovery index,
// replacing any current attachment. The old emitter stops before the new
// one exists, so nothing stale can emit between the two.
func (a *Adapter) attachNative(index int) {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return
	}
	if a.handle != nil {
		a.handle.Detach()
	}
	em := media.NewEmitter(a.sink, coalesceInterval)
	a.em = em
	a.index = index
	a.handle = &nativeHandle{
		page:    a.page,
		index:   index,
		em:      em,
		log:     a.log,
		profile: a.profiles.MatchAny(a.page.URL()),
	}
	a.mu.Unlock()

	result, err := a.page.Evaluate(attachScript, index)
	if err != nil {
		a.log.Debugf("%s: attach at index %d failed: %v", a.id, index, err)
		return
	}
	if attached, ok := result.(bool); !ok || !attached {
		a.log.Debugf("%s: element at index %d vanished before attach", a.id, index)
		a.signal(a.rescan)
		return
	}
	a.log.Infof("%s: attached native source at index %d", a.id, index)
}

// attachVirtual switches the session to the UI-automation source. Once
// entered, virtual mode holds for the adapter's lifetime.
func (a *Adapter) attachVirtual(profile *config.SiteProfile) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed || a.handle != nil {
		return
	}
	em := media.NewEmitter(a.sink, coalesceInterval)
	a.em = em
	a.virtual = true
	a.handle = automation.NewHandle(a.page, profile, em, a.log, a.cfg.PollInterval, a.poke)
	a.log.Infof("%s: attached virtual source via profile %q", a.id, profile.Name)
}

// onEmit receives page-side state reports through the __maestroEmit binding.
// Only timeupdate ticks are coalescable; every other reason reflects a
// discrete change that must surface immediately.
func (a *Adapter) onEmit(args ...interface{}) interface{} {
	if len(args) == 0 {
		return nil
	}
	snap, reason, ok := snapshotFromJS(args[0])
	if !ok {
		a.log.Debugf("%s: dropping malformed snapshot (%s)", a.id, reason)
		return nil
	}

	a.mu.Lock()
	em := a.em
	a.mu.Unlock()
	if em == nil {
		return nil
	}
	em.Offer(snap, reason == "timeupdate")
	return nil
}

// Apply routes a command to the attached source. A detached source or a
// closed page is a delivery failure: the session is torn down and reported
// gone exactly once.
func (a *Adapter) Apply(ctx context.Context, cmd types.Command) error {
	a.mu.Lock()
	handle := a.handle
	a.mu.Unlock()
	if handle == nil {
		return fmt.Errorf("%s: no attached source", a.id)
	}

	err := media.Apply(ctx, handle, cmd)
	if err == nil {
		return nil
	}
	if errors.Is(err, media.ErrDetached) || a.page.IsClosed() {
		a.log.Infof("%s: source lost during %s, removing session", a.id, cmd.Verb)
		a.Close()
		if a.onGone != nil {
			a.onGone(a.id)
		}
		return err
	}
	a.log.Warnf("%s: command %s failed: %v", a.id, cmd.Verb, err)
	return err
}

// Close detaches the current source and stops the lifecycle goroutine.
// Safe to call more than once.
func (a *Adapter) Close() {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return
	}
	a.closed = true
	handle := a.handle
	a.handle = nil
	a.em = nil
	a.mu.Unlock()

	if a.cancel != nil {
		a.cancel()
	}
	if handle != nil {
		handle.Detach()
	}
}
