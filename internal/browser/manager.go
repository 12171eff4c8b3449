package browser

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
)

const (
	// UserAgent presented to the league site. A realistic desktop Chrome UA;
	// the site blocks obvious automation clients.
	UserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

	viewportWidth  = 1920
	viewportHeight = 1080

	startupTimeout = 30 * time.Second
)

// Mode selects how the Chrome binary is provisioned. Callers outside this
// package never branch on it; Acquire/Release behave identically in both.
type Mode string

const (
	// ModeLocal launches a full locally-installed Chrome.
	ModeLocal Mode = "local"
	// ModeConstrained launches a minimal headless-shell binary, for
	// restricted execution environments without a full browser install.
	ModeConstrained Mode = "constrained"
)

// identityHeaders are sent on every request so the session looks like a real
// browser rather than a bare automation client.
var identityHeaders = network.Headers{
	"Accept-Language": "en-US,en;q=0.9",
	"Sec-Fetch-Dest":  "document",
	"Sec-Fetch-Mode":  "navigate",
	"Sec-Fetch-Site":  "none",
	"Sec-Fetch-User":  "?1",
}

// Config controls browser provisioning.
type Config struct {
	Mode       Mode
	ChromePath string // binary path for constrained mode; empty uses chromedp's lookup
}

// DetectMode picks the provisioning mode from the runtime environment: an
// explicit binary path or a serverless platform marker selects constrained
// mode, anything else local.
func DetectMode() Mode {
	if os.Getenv("RDYSL_CHROME_PATH") != "" {
		return ModeConstrained
	}
	for _, marker := range []string{"AWS_LAMBDA_FUNCTION_NAME", "FUNCTION_TARGET", "K_SERVICE"} {
		if os.Getenv(marker) != "" {
			return ModeConstrained
		}
	}
	return ModeLocal
}

// Manager launches and tears down browser sessions.
type Manager struct {
	cfg Config
}

// NewManager creates a session manager. An empty Mode is detected from the
// environment.
func NewManager(cfg Config) *Manager {
	if cfg.Mode == "" {
		cfg.Mode = DetectMode()
	}
	if cfg.ChromePath == "" {
		cfg.ChromePath = os.Getenv("RDYSL_CHROME_PATH")
	}
	return &Manager{cfg: cfg}
}

// Session is one exclusive browser context. It is owned by a single scrape
// run; never share one across concurrent runs.
type Session struct {
	// Authenticated is set by the authenticator once login verification
	// passes, and cleared when expiry markers are seen mid-run.
	Authenticated bool

	ctx         context.Context
	cancelCtx   context.CancelFunc
	cancelAlloc context.CancelFunc
	released    bool
}

// Context returns the chromedp context all navigation runs against.
func (s *Session) Context() context.Context {
	return s.ctx
}

// Acquire launches a browser and returns a live session. The caller must
// Release it on every exit path; an unreleased session leaks a Chrome
// process.
func (m *Manager) Acquire(ctx context.Context) (*Session, error) {
	opts := m.allocatorOptions()

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	browserCtx, cancelCtx := chromedp.NewContext(allocCtx)

	startCtx, cancelStart := context.WithTimeout(browserCtx, startupTimeout)
	defer cancelStart()

	// Starting the browser and installing identity headers up front; if any
	// of it fails the partially-started process is torn down before
	// returning.
	err := chromedp.Run(startCtx,
		network.Enable(),
		network.SetExtraHTTPHeaders(identityHeaders),
	)
	if err != nil {
		cancelCtx()
		cancelAlloc()
		return nil, fmt.Errorf("launching browser (%s mode): %w", m.cfg.Mode, err)
	}

	log.Printf("✓ Browser session acquired (%s mode)", m.cfg.Mode)

	return &Session{
		ctx:         browserCtx,
		cancelCtx:   cancelCtx,
		cancelAlloc: cancelAlloc,
	}, nil
}

// Release tears down the browser process. Safe to call more than once.
func (m *Manager) Release(s *Session) {
	if s == nil || s.released {
		return
	}
	s.released = true
	s.cancelCtx()
	s.cancelAlloc()
	log.Println("✓ Browser session released")
}

// allocatorOptions builds the exec allocator flags for the configured mode.
func (m *Manager) allocatorOptions() []chromedp.ExecAllocatorOption {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.WindowSize(viewportWidth, viewportHeight),
		chromedp.UserAgent(UserAgent),
	)

	if m.cfg.Mode == ModeConstrained {
		// Minimal binary in a restricted environment: no spare processes.
		opts = append(opts,
			chromedp.Flag("single-process", true),
			chromedp.Flag("no-zygote", true),
		)
		if m.cfg.ChromePath != "" {
			opts = append(opts, chromedp.ExecPath(m.cfg.ChromePath))
		}
	}

	return opts
}
