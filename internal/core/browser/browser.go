package browser

import (
	"fmt"
	"strings"
	"sync"

	"github.com/playwright-community/playwright-go"

	"jobscraper/internal/logger"
)

// Profile is the fixed startup flag set for one browser session. The
// handle never varies these at runtime.
type Profile struct {
	Headless       bool
	Args           []string
	ViewportWidth  int
	ViewportHeight int
	UserAgent      string
}

// DefaultProfile matches the launch arguments the service is deployed
// with: headless, sandbox disabled, fixed viewport.
func DefaultProfile() Profile {
	return Profile{
		Headless:       true,
		Args:           []string{"--no-sandbox", "--disable-dev-shm-usage", "--disable-gpu"},
		ViewportWidth:  1366,
		ViewportHeight: 768,
	}
}

// WithArgs replaces the argument list from a space-separated override
// string (BROWSER_ARGS). Empty input keeps the defaults.
func (p Profile) WithArgs(raw string) Profile {
	fields := strings.Fields(raw)
	if len(fields) == 0 {
		return p
	}
	args := make([]string, 0, len(fields))
	for _, a := range fields {
		// headless is controlled by the launch option, not a flag
		if a == "--headless" || strings.HasPrefix(a, "--headless=") {
			continue
		}
		args = append(args, a)
	}
	p.Args = args
	return p
}

// LaunchError reports that the browser process could not be started.
// It is fatal for the job and never retried.
type LaunchError struct {
	Stage string
	Err   error
}

func (e *LaunchError) Error() string { return fmt.Sprintf("browser launch (%s): %v", e.Stage, e.Err) }
func (e *LaunchError) Unwrap() error { return e.Err }

// Session owns exactly one headless Chromium process. It is created at
// job start, owned exclusively by that job, and torn down when the job
// ends. Sessions are never shared or reused: browser state (cookies,
// navigation history) must not leak between unrelated requests.
type Session struct {
	pw      *playwright.Playwright
	browser playwright.Browser
	ctx     playwright.BrowserContext
	page    playwright.Page

	log       *logger.Logger
	closeOnce sync.Once
}

// Acquire starts the Playwright driver, launches Chromium with the
// profile's fixed flags and opens a single page. Any partial state is
// cleaned up before the *LaunchError is returned.
func Acquire(profile Profile) (*Session, error) {
	log := logger.New("Browser")

	pw, err := playwright.Run()
	if err != nil {
		return nil, &LaunchError{Stage: "driver", Err: err}
	}

	b, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(profile.Headless),
		Args:     profile.Args,
	})
	if err != nil {
		_ = pw.Stop()
		return nil, &LaunchError{Stage: "browser", Err: err}
	}

	ctxOpts := playwright.BrowserNewContextOptions{}
	if profile.ViewportWidth > 0 && profile.ViewportHeight > 0 {
		ctxOpts.Viewport = &playwright.Size{Width: profile.ViewportWidth, Height: profile.ViewportHeight}
	}
	if profile.UserAgent != "" {
		ctxOpts.UserAgent = playwright.String(profile.UserAgent)
	}
	bctx, err := b.NewContext(ctxOpts)
	if err != nil {
		_ = b.Close()
		_ = pw.Stop()
		return nil, &LaunchError{Stage: "context", Err: err}
	}

	page, err := bctx.NewPage()
	if err != nil {
		_ = bctx.Close()
		_ = b.Close()
		_ = pw.Stop()
		return nil, &LaunchError{Stage: "page", Err: err}
	}

	log.LogDebugf("session acquired (headless=%v, args=%v)", profile.Headless, profile.Args)
	return &Session{pw: pw, browser: b, ctx: bctx, page: page, log: log}, nil
}

// Page returns the session's single page.
func (s *Session) Page() playwright.Page { return s.page }

// Release tears the session down unconditionally. It is idempotent and
// safe to call on a session in an unknown state: every layer is closed
// best-effort so the OS process never outlives the job.
func (s *Session) Release() {
	if s == nil {
		return
	}
	s.closeOnce.Do(func() {
		if s.page != nil {
			_ = s.page.Close()
		}
		if s.ctx != nil {
			_ = s.ctx.Close()
		}
		if s.browser != nil {
			_ = s.browser.Close()
		}
		if s.pw != nil {
			_ = s.pw.Stop()
		}
		if s.log != nil {
			s.log.LogDebug("session released")
		}
	})
}
