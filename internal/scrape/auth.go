package scrape

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/chromedp/chromedp"

	"github.com/fieldside/rdysl/internal/browser"
)

const (
	maxAuthAttempts = 3

	formWaitTimeout = 15 * time.Second
	navWaitTimeout  = 30 * time.Second

	// Keystroke pacing. Humans do not type at CDP speed; a small randomized
	// inter-key delay keeps the login from tripping bot detection.
	keyDelayBase   = 50 * time.Millisecond
	keyDelayJitter = 100 * time.Millisecond
)

// Credentials for the league site. Supplied by the caller's configuration;
// never persisted here.
type Credentials struct {
	Username string
	Password string
}

// AuthResult reports how authentication concluded.
type AuthResult struct {
	Success              bool
	AlreadyAuthenticated bool
}

// Authenticator drives the league site's login form.
type Authenticator struct {
	loginURL string
	creds    Credentials
}

func NewAuthenticator(loginURL string, creds Credentials) *Authenticator {
	return &Authenticator{loginURL: loginURL, creds: creds}
}

// Authenticate logs the session in, retrying the whole sequence with
// jittered backoff up to the attempt ceiling. Idempotent: if the site
// preserved a prior session it short-circuits without touching the form.
func (a *Authenticator) Authenticate(ctx context.Context, sess *browser.Session) (AuthResult, error) {
	if sess.Authenticated {
		return AuthResult{Success: true, AlreadyAuthenticated: true}, nil
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(
			backoff.WithInitialInterval(2*time.Second),
			backoff.WithMaxInterval(10*time.Second),
		), maxAuthAttempts-1),
		ctx,
	)

	attempt := 0
	result, err := backoff.RetryWithData(func() (AuthResult, error) {
		attempt++
		log.Printf("→ Login attempt %d/%d", attempt, maxAuthAttempts)
		res, err := a.attempt(ctx, sess)
		if err != nil {
			log.Printf("  ⚠️  Login attempt %d failed: %v", attempt, err)
		}
		return res, err
	}, policy)
	if err != nil {
		return AuthResult{}, &AuthenticationError{Reason: err.Error(), Attempts: attempt}
	}

	sess.Authenticated = true
	if result.AlreadyAuthenticated {
		log.Println("✓ Session already authenticated")
	} else {
		log.Println("✓ Login verified")
	}
	return result, nil
}

// attempt runs one full login sequence.
func (a *Authenticator) attempt(ctx context.Context, sess *browser.Session) (AuthResult, error) {
	browserCtx := sess.Context()

	// Step 1: load the login page.
	var html string
	navCtx, cancel := context.WithTimeout(browserCtx, navWaitTimeout)
	err := chromedp.Run(navCtx,
		chromedp.Navigate(a.loginURL),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	cancel()
	if err != nil {
		return AuthResult{}, fmt.Errorf("loading login page: %w", err)
	}

	// Step 2: the site sometimes keeps a prior session alive. No login
	// markers means we are already through.
	if !looksLikeLoginPage(html) {
		return AuthResult{Success: true, AlreadyAuthenticated: true}, nil
	}

	// Step 3: wait for the form, then type credentials into the named
	// fields with human pacing.
	formCtx, cancel := context.WithTimeout(browserCtx, formWaitTimeout)
	err = chromedp.Run(formCtx,
		chromedp.WaitVisible(`input[name="username"]`, chromedp.ByQuery),
		chromedp.WaitVisible(`input[name="password"]`, chromedp.ByQuery),
		chromedp.Click(`input[name="username"]`, chromedp.ByQuery),
		typeWithDelay(`input[name="username"]`, a.creds.Username),
		chromedp.Click(`input[name="password"]`, chromedp.ByQuery),
		typeWithDelay(`input[name="password"]`, a.creds.Password),
	)
	cancel()
	if err != nil {
		return AuthResult{}, fmt.Errorf("filling login form: %w", err)
	}

	// Step 4: submit via the form's control when present, else submit the
	// form programmatically.
	if err := a.submit(browserCtx); err != nil {
		return AuthResult{}, fmt.Errorf("submitting login form: %w", err)
	}

	// Step 5: wait for the post-login navigation. A timeout here is
	// tolerated, not fatal — some responses render without a full
	// navigation event. Verification decides.
	waitCtx, cancel := context.WithTimeout(browserCtx, navWaitTimeout)
	err = chromedp.Run(waitCtx,
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Sleep(2*time.Second),
	)
	cancel()
	if err != nil && ctx.Err() != nil {
		return AuthResult{}, backoff.Permanent(ctx.Err())
	}

	// Step 6: verify by absence of failure markers.
	var currentURL string
	verifyCtx, cancel := context.WithTimeout(browserCtx, formWaitTimeout)
	err = chromedp.Run(verifyCtx,
		chromedp.Location(&currentURL),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	cancel()
	if err != nil {
		return AuthResult{}, fmt.Errorf("reading post-login page: %w", err)
	}

	if looksLikeAuthFailure(html, currentURL) {
		return AuthResult{}, fmt.Errorf("login not accepted (still at %s)", currentURL)
	}

	return AuthResult{Success: true}, nil
}

func (a *Authenticator) submit(browserCtx context.Context) error {
	submitCtx, cancel := context.WithTimeout(browserCtx, formWaitTimeout)
	defer cancel()

	err := chromedp.Run(submitCtx,
		chromedp.Click(`input[type="submit"], button[type="submit"]`, chromedp.ByQuery),
	)
	if err == nil {
		return nil
	}

	// No clickable submit control; submit the form the password field
	// belongs to instead.
	fallbackCtx, cancel := context.WithTimeout(browserCtx, formWaitTimeout)
	defer cancel()
	return chromedp.Run(fallbackCtx,
		chromedp.Submit(`input[name="password"]`, chromedp.ByQuery),
	)
}

// typeWithDelay sends text one key at a time with randomized pacing.
func typeWithDelay(selector, text string) chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		for _, r := range text {
			if err := chromedp.SendKeys(selector, string(r), chromedp.ByQuery).Do(ctx); err != nil {
				return err
			}
			delay := keyDelayBase + time.Duration(rand.Int63n(int64(keyDelayJitter)))
			if err := chromedp.Sleep(delay).Do(ctx); err != nil {
				return err
			}
		}
		return nil
	})
}
