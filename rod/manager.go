package rod

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
)

// DefaultMaxPages is the number of renders a browser serves before it is
// replaced.
const DefaultMaxPages = 75

// BrowserManager hands out leases on a headless Chrome process and swaps in
// a fresh process once the current one has served maxPages renders. Chrome's
// memory baseline only grows across page loads.
//
// A retired browser stays alive until its last lease is released.
// BrowserManager is safe for concurrent use.
type BrowserManager struct {
	mu       sync.Mutex
	current  *instance
	maxPages int
	bin      string
	recycles int
	closed   bool
	logger   *slog.Logger
}

// instance is one launched Chrome process and its lease accounting.
type instance struct {
	browser  *rod.Browser
	launcher *launcher.Launcher
	served   int
	leases   int
	retired  bool
}

// ManagerOption configures a BrowserManager.
type ManagerOption func(*BrowserManager)

// WithMaxPages sets the number of renders before the browser is recycled.
func WithMaxPages(n int) ManagerOption {
	return func(bm *BrowserManager) {
		bm.maxPages = n
	}
}

// WithBrowserBin launches the given Chrome binary instead of the one the
// launcher discovers or downloads.
func WithBrowserBin(path string) ManagerOption {
	return func(bm *BrowserManager) {
		bm.bin = path
	}
}

// WithManagerLogger logs browser recycling.
func WithManagerLogger(logger *slog.Logger) ManagerOption {
	return func(bm *BrowserManager) {
		bm.logger = logger
	}
}

// NewBrowserManager launches the first browser.
// Close must be called when the BrowserManager is no longer needed.
func NewBrowserManager(opts ...ManagerOption) (*BrowserManager, error) {
	bm := &BrowserManager{
		maxPages: DefaultMaxPages,
		logger:   slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(bm)
	}
	if bm.maxPages < 1 {
		bm.maxPages = 1
	}

	inst, err := bm.launch()
	if err != nil {
		return nil, err
	}
	bm.current = inst
	return bm, nil
}

// Acquire leases the current browser for one render. The returned release
// func must be called exactly once when the render is done.
func (bm *BrowserManager) Acquire() (*rod.Browser, func(), error) {
	bm.mu.Lock()
	defer bm.mu.Unlock()

	if bm.closed {
		return nil, nil, fmt.Errorf("browser manager is closed")
	}
	if bm.current.served >= bm.maxPages {
		bm.recycle()
	}

	inst := bm.current
	inst.served++
	inst.leases++

	var once sync.Once
	release := func() {
		once.Do(func() { bm.release(inst) })
	}
	return inst.browser, release, nil
}

// Recycles reports how many times the browser has been replaced.
func (bm *BrowserManager) Recycles() int {
	bm.mu.Lock()
	defer bm.mu.Unlock()
	return bm.recycles
}

// LauncherPID returns the process ID of the current browser launcher, or 0
// when closed.
func (bm *BrowserManager) LauncherPID() int {
	bm.mu.Lock()
	defer bm.mu.Unlock()
	if bm.current == nil || bm.current.launcher == nil {
		return 0
	}
	return bm.current.launcher.PID()
}

// Close shuts down the current browser. Leased browsers retired earlier are
// shut down when their leases are released. Close is safe to call multiple
// times.
func (bm *BrowserManager) Close() error {
	bm.mu.Lock()
	defer bm.mu.Unlock()

	if bm.closed {
		return nil
	}
	bm.closed = true

	inst := bm.current
	bm.current = nil
	return inst.shutdown()
}

func (bm *BrowserManager) launch() (*instance, error) {
	l := launcher.New().
		Set("disable-background-timer-throttling").
		Set("disable-backgrounding-occluded-windows").
		Set("disable-renderer-backgrounding").
		Set("disable-dev-shm-usage").
		Set("disable-hang-monitor").
		Leakless(true).
		Headless(true)
	if bm.bin != "" {
		l = l.Bin(bm.bin)
	}

	u, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("launching browser: %w", err)
	}

	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		l.Kill()
		return nil, fmt.Errorf("connecting to browser: %w", err)
	}

	return &instance{browser: browser, launcher: l}, nil
}

// recycle retires the current browser in favor of a fresh one. When the
// launch fails the current browser keeps serving. Must be called with mu held.
func (bm *BrowserManager) recycle() {
	next, err := bm.launch()
	if err != nil {
		bm.logger.Warn("browser recycle failed, keeping current browser", "err", err)
		bm.current.served = 0
		return
	}

	old := bm.current
	bm.current = next
	bm.recycles++
	bm.logger.Debug("browser recycled", "pages", old.served, "leases", old.leases)

	old.retired = true
	if old.leases == 0 {
		_ = old.shutdown()
	}
}

func (bm *BrowserManager) release(inst *instance) {
	bm.mu.Lock()
	defer bm.mu.Unlock()

	inst.leases--
	if inst.leases == 0 && inst.retired {
		_ = inst.shutdown()
	}
}

func (inst *instance) shutdown() error {
	if inst == nil {
		return nil
	}
	var err error
	if inst.browser != nil {
		err = inst.browser.Close()
		inst.browser = nil
	}
	if inst.launcher != nil {
		inst.launcher.Kill()
		inst.launcher = nil
	}
	return err
}
