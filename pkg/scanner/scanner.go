// Package scanner supervises the browser. It launches Playwright, watches
// the browser context for pages coming and going, and runs one adapter per
// page, feeding the coordinator's registry.
package scanner

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/google/uuid"
	"github.com/playwright-community/playwright-go"

	"github.com/entrhq/maestro/pkg/adapter"
	"github.com/entrhq/maestro/pkg/config"
	"github.com/entrhq/maestro/pkg/coordinator"
	"github.com/entrhq/maestro/pkg/logging"
	"github.com/entrhq/maestro/pkg/types"
)

// Scanner owns the Playwright process and the per-page adapters. Each page
// is a context group; the adapter attached to it is one execution context
// within the group.
type Scanner struct {
	cfg      *config.Runtime
	profiles *config.ProfileSet
	coord    *coordinator.Coordinator
	log      *logging.Logger
	icons    *IconResolver

	pw         *playwright.Playwright
	browser    playwright.Browser
	browserCtx playwright.BrowserContext

	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	adapters map[string]*adapter.Adapter
}

// New creates a scanner. Start must be called before it does anything.
func New(cfg *config.Runtime, profiles *config.ProfileSet, coord *coordinator.Coordinator, log *logging.Logger) *Scanner {
	return &Scanner{
		cfg:      cfg,
		profiles: profiles,
		coord:    coord,
		log:      log,
		icons:    NewIconResolver(),
		adapters: make(map[string]*adapter.Adapter),
	}
}

// Start installs and launches the browser, then opens one initial tab.
// Playwright's own output is discarded; it would corrupt an attached
// terminal UI.
func (s *Scanner) Start(ctx context.Context) error {
	s.ctx, s.cancel = context.WithCancel(ctx)

	opts := &playwright.RunOptions{
		Verbose: false,
		Stdout:  io.Discard,
		Stderr:  io.Discard,
	}
	if err := playwright.Install(opts); err != nil {
		return fmt.Errorf("install playwright: %w", err)
	}
	pw, err := playwright.Run(opts)
	if err != nil {
		return fmt.Errorf("start playwright: %w", err)
	}
	s.pw = pw

	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(s.cfg.Headless),
	})
	if err != nil {
		return fmt.Errorf("launch browser: %w", err)
	}
	s.browser = browser

	browserCtx, err := browser.NewContext()
	if err != nil {
		browser.Close()
		return fmt.Errorf("create browser context: %w", err)
	}
	s.browserCtx = browserCtx
	browserCtx.OnPage(s.onPage)

	if _, err := browserCtx.NewPage(); err != nil {
		return fmt.Errorf("open initial page: %w", err)
	}
	return nil
}

// onPage wires a freshly opened page into the registry. Identity is minted
// here and lives until the page closes; it is never reused.
func (s *Scanner) onPage(page playwright.Page) {
	groupID := uuid.New().String()
	id := types.SessionID{
		ContextGroupID: groupID,
		ContextID:      uuid.New().String(),
	}

	// The sink runs on the snapshot path and must not block, so the icon
	// comes from the cache only; a miss starts a background fetch and a
	// later snapshot picks the result up.
	sink := func(snap types.Snapshot) {
		if snap.SiteIcon == "" {
			snap.SiteIcon = s.icons.Lookup(snap.SiteURL)
		}
		s.coord.ApplySnapshot(id, snap)
	}

	ad := adapter.New(page, id, s.cfg, s.profiles, s.log, sink, s.coord.Remove)
	s.coord.Register(id, ad)

	s.mu.Lock()
	s.adapters[groupID] = ad
	s.mu.Unlock()

	page.OnClose(func(playwright.Page) {
		s.teardown(groupID)
	})
	page.OnLoad(func(playwright.Page) {
		ad.Rescan()
	})

	if err := ad.Start(s.ctx); err != nil {
		s.log.Errorf("%s: adapter start failed: %v", id, err)
		s.teardown(groupID)
		return
	}
	s.log.Infof("%s: page tracked", id)
}

// teardown removes a closed page's adapter and every session in its group.
func (s *Scanner) teardown(groupID string) {
	s.mu.Lock()
	ad, ok := s.adapters[groupID]
	delete(s.adapters, groupID)
	s.mu.Unlock()

	if ok {
		ad.Close()
	}
	s.coord.RemoveGroup(groupID)
}

// Shutdown closes every adapter and tears the browser down.
func (s *Scanner) Shutdown() error {
	if s.cancel != nil {
		s.cancel()
	}

	s.mu.Lock()
	adapters := make([]*adapter.Adapter, 0, len(s.adapters))
	for _, ad := range s.adapters {
		adapters = append(adapters, ad)
	}
	s.adapters = make(map[string]*adapter.Adapter)
	s.mu.Unlock()

	for _, ad := range adapters {
		ad.Close()
	}

	if s.browserCtx != nil {
		_ = s.browserCtx.Close()
	}
	if s.browser != nil {
		_ = s.browser.Close()
	}
	if s.pw != nil {
		if err := s.pw.Stop(); err != nil {
			return fmt.Errorf("stop playwright: %w", err)
		}
	}
	return nil
}
