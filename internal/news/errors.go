package news

import (
	"fmt"
	"strings"
	"time"
)

// ValidationError reports malformed request parameters. It is always raised
// before any browser activity.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// BrowserLaunchError means no usable browser executable was found or the
// launch did not come up within its startup budget. Fatal for the current
// request only; the next request retries the launch from scratch.
type BrowserLaunchError struct {
	Tried []string
	Err   error
}

func (e *BrowserLaunchError) Error() string {
	if len(e.Tried) > 0 {
		return fmt.Sprintf("browser launch failed (tried %s): %v", strings.Join(e.Tried, ", "), e.Err)
	}
	return fmt.Sprintf("browser launch failed: %v", e.Err)
}

func (e *BrowserLaunchError) Unwrap() error { return e.Err }

// NavigationError means a page never reached a usable state within the
// retry budget.
type NavigationError struct {
	URL      string
	Attempts int
	Err      error
}

func (e *NavigationError) Error() string {
	return fmt.Sprintf("navigation to %s failed after %d attempts: %v", e.URL, e.Attempts, e.Err)
}

func (e *NavigationError) Unwrap() error { return e.Err }

// RequestTimeoutError means the overall scrape exceeded its budget. In-flight
// page work is abandoned from the caller's perspective and cleaned up when it
// settles.
type RequestTimeoutError struct {
	Timeout time.Duration
}

func (e *RequestTimeoutError) Error() string {
	return fmt.Sprintf("scrape request timed out after %s", e.Timeout)
}
