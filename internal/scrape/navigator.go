package scrape

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/chromedp/chromedp"

	"github.com/fieldside/rdysl/internal/browser"
)

const (
	fetchTimeout = 45 * time.Second

	// settleDelay gives client-side rendering time to finish after the
	// navigation resolves.
	settleDelay = 2 * time.Second
)

// authenticatorFor is the slice of the Authenticator the navigator needs for
// mid-run recovery.
type authenticatorFor interface {
	Authenticate(ctx context.Context, sess *browser.Session) (AuthResult, error)
}

// Navigator fetches pages within an authenticated session and recovers
// transparently from mid-run session expiry.
type Navigator struct {
	auth authenticatorFor

	// fetchFn is the raw page fetch; replaced in tests.
	fetchFn func(ctx context.Context, sess *browser.Session, url string) (string, error)
}

func NewNavigator(auth *Authenticator) *Navigator {
	return &Navigator{
		auth:    auth,
		fetchFn: fetchHTML,
	}
}

// FetchPage fetches a page and classifies the result. Expiry markers trigger
// exactly one re-authentication and one retried fetch; a second expiry is
// SessionExpiredError. Not-found pages return NotFoundError with no retry.
func (n *Navigator) FetchPage(ctx context.Context, sess *browser.Session, url string) (string, error) {
	html, err := n.fetchFn(ctx, sess, url)
	if err != nil {
		return "", err
	}

	if looksNotFound(html) {
		return "", &NotFoundError{URL: url}
	}

	if !n.expired(html) {
		return html, nil
	}

	// Single recovery pass: re-authenticate, then refetch once.
	log.Printf("⚠️  Session expired fetching %s, re-authenticating...", url)
	sess.Authenticated = false
	if _, err := n.auth.Authenticate(ctx, sess); err != nil {
		return "", &SessionExpiredError{URL: url}
	}

	html, err = n.fetchFn(ctx, sess, url)
	if err != nil {
		return "", fmt.Errorf("refetch after re-authentication: %w", err)
	}
	if looksNotFound(html) {
		return "", &NotFoundError{URL: url}
	}
	if n.expired(html) {
		return "", &SessionExpiredError{URL: url}
	}
	return html, nil
}

// expired treats both explicit expiry markers and being routed back to the
// login form as a dead session.
func (n *Navigator) expired(html string) bool {
	return looksExpired(html) || looksLikeLoginPage(html)
}

// fetchHTML performs the browser navigation and returns the rendered HTML.
func fetchHTML(ctx context.Context, sess *browser.Session, url string) (string, error) {
	fetchCtx, cancel := context.WithTimeout(sess.Context(), fetchTimeout)
	defer cancel()

	var html string
	err := chromedp.Run(fetchCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Sleep(settleDelay),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", fmt.Errorf("navigating to %s: %w", url, err)
	}
	if html == "" {
		return "", fmt.Errorf("empty content from %s", url)
	}
	return html, nil
}
