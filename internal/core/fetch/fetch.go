package fetch

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/playwright-community/playwright-go"

	"jobscraper/internal/logger"
)

// TimeoutError reports that a page did not reach the readiness
// condition within its budget.
type TimeoutError struct {
	URL     string
	Elapsed time.Duration
	Err     error
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("page %s not ready after %s: %v", e.URL, e.Elapsed.Round(time.Millisecond), e.Err)
}
func (e *TimeoutError) Unwrap() error { return e.Err }

// NavigationError reports a lower-level navigation fault (DNS failure,
// connection refused, renderer crash).
type NavigationError struct {
	URL string
	Err error
}

func (e *NavigationError) Error() string { return fmt.Sprintf("navigation to %s failed: %v", e.URL, e.Err) }
func (e *NavigationError) Unwrap() error { return e.Err }

const consentSelector = "#onetrust-accept-btn-handler"

// Fetcher navigates a page to listing URLs and waits for a readiness
// selector. It applies no retry policy of its own.
type Fetcher struct {
	page  playwright.Page
	ready string
	log   *logger.Logger

	consentHandled bool
}

// New returns a fetcher bound to one page. ready is the CSS selector
// whose presence marks the page as extractable.
func New(page playwright.Page, ready string) *Fetcher {
	return &Fetcher{page: page, ready: ready, log: logger.New("Fetcher")}
}

// Fetch navigates to url and waits until the readiness selector is
// attached, bounded by timeout. It returns a *TimeoutError when the
// budget is exhausted and a *NavigationError for any other fault.
// Cancelling ctx aborts the step even while navigation is in flight.
func (f *Fetcher) Fetch(ctx context.Context, url string, timeout time.Duration) error {
	if err := ctx.Err(); err != nil {
		return &NavigationError{URL: url, Err: err}
	}

	start := time.Now()

	err := f.await(ctx, func() error {
		_, err := f.page.Goto(url, playwright.PageGotoOptions{
			WaitUntil: playwright.WaitUntilStateDomcontentloaded,
			Timeout:   playwright.Float(float64(timeout.Milliseconds())),
		})
		return err
	})
	if err != nil {
		return Classify(url, time.Since(start), err)
	}

	// Consent banners cover the listing container on the first page of
	// a fresh session. Dismiss once, best-effort.
	if !f.consentHandled {
		f.consentHandled = true
		f.dismissConsent()
	}

	remaining, ok := waitBudget(timeout, time.Since(start))
	if !ok {
		return &TimeoutError{URL: url, Elapsed: time.Since(start), Err: errors.New("navigation consumed the whole budget")}
	}
	if err := f.await(ctx, func() error {
		return f.page.Locator(f.ready).First().WaitFor(playwright.LocatorWaitForOptions{
			State:   playwright.WaitForSelectorStateAttached,
			Timeout: playwright.Float(float64(remaining.Milliseconds())),
		})
	}); err != nil {
		return Classify(url, time.Since(start), err)
	}

	f.log.LogDebugf("page ready %s in %s", url, time.Since(start).Round(time.Millisecond))
	return nil
}

type opResult struct {
	err      error
	panicked any
}

// await runs op while watching the context. Playwright calls carry no
// context of their own, so cancellation closes the page to unblock the
// in-flight call and the context error is reported instead. A panic
// inside op resurfaces in the caller.
func (f *Fetcher) await(ctx context.Context, op func() error) error {
	done := make(chan opResult, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- opResult{panicked: r}
			}
		}()
		done <- opResult{err: op()}
	}()

	select {
	case res := <-done:
		if res.panicked != nil {
			panic(res.panicked)
		}
		return res.err
	case <-ctx.Done():
		if f.page != nil {
			_ = f.page.Close()
		}
		<-done
		return ctx.Err()
	}
}

// waitBudget is the readiness budget left once navigation spent elapsed
// of the fetch timeout. ok is false when nothing remains.
func waitBudget(timeout, elapsed time.Duration) (time.Duration, bool) {
	rem := timeout - elapsed
	return rem, rem > 0
}

func (f *Fetcher) dismissConsent() {
	btn := f.page.Locator(consentSelector)
	if visible, _ := btn.IsVisible(); !visible {
		return
	}
	if err := btn.Click(playwright.LocatorClickOptions{Timeout: playwright.Float(2000)}); err != nil {
		f.log.LogDebugf("consent dismiss skipped: %v", err)
		return
	}
	f.log.LogDebug("consent banner dismissed")
}

// Classify maps a playwright error to the fetch taxonomy. Playwright
// surfaces deadline exhaustion as a "Timeout ...ms exceeded" message;
// everything else is a navigation fault.
func Classify(url string, elapsed time.Duration, err error) error {
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "timeout") || strings.Contains(msg, "deadline exceeded") {
		return &TimeoutError{URL: url, Elapsed: elapsed, Err: err}
	}
	return &NavigationError{URL: url, Err: err}
}
