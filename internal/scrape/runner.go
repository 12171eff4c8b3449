package scrape

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/cenkalti/backoff/v4"

	"github.com/fieldside/rdysl/internal/browser"
	"github.com/fieldside/rdysl/internal/parse"
)

const (
	maxScrapeAttempts = 3

	// Respectful pacing between sequential page fetches. The league site is
	// small and should never be hammered; the 2s floor is a requirement,
	// the jitter on top reduces bot-detection risk.
	pageDelayFloor  = 2 * time.Second
	pageDelayJitter = 2 * time.Second
)

// Config locates the league site's pages for a scrape run.
type Config struct {
	LoginURL         string
	CallupURLs       []string
	ScheduleIndexURL string
	Credentials      Credentials
}

// Runner sequences a complete scrape: acquire session, authenticate, fetch
// and parse each target page with respectful pacing, release the session on
// every exit path. One Runner serves one logical flow at a time; concurrent
// callers are expected to queue behind the cache engine's single flight.
type Runner struct {
	cfg     Config
	manager *browser.Manager
	auth    *Authenticator
	nav     *Navigator
}

func NewRunner(cfg Config, manager *browser.Manager) *Runner {
	auth := NewAuthenticator(cfg.LoginURL, cfg.Credentials)
	return &Runner{
		cfg:     cfg,
		manager: manager,
		auth:    auth,
		nav:     NewNavigator(auth),
	}
}

// ScrapeCallups runs the callup scrape across all configured pages. The
// whole sequence is retried up to the attempt ceiling; authentication
// failures end the run immediately.
func (r *Runner) ScrapeCallups(ctx context.Context) ([]parse.RawRecord, error) {
	var records []parse.RawRecord
	err := r.withAttempts(ctx, "callup scrape", func() error {
		recs, err := r.scrapeCallupsOnce(ctx)
		if err != nil {
			return err
		}
		records = recs
		return nil
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (r *Runner) scrapeCallupsOnce(ctx context.Context) ([]parse.RawRecord, error) {
	sess, err := r.manager.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquiring browser session: %w", err)
	}
	defer r.manager.Release(sess)

	if _, err := r.auth.Authenticate(ctx, sess); err != nil {
		return nil, err
	}

	var records []parse.RawRecord
	fetched := 0
	for i, pageURL := range r.cfg.CallupURLs {
		if i > 0 {
			if err := respectfulDelay(ctx); err != nil {
				return nil, err
			}
		}

		html, err := r.nav.FetchPage(ctx, sess, pageURL)
		if err != nil {
			var notFound *NotFoundError
			if errors.As(err, &notFound) {
				// Structural, not transient; skip the page and keep going.
				log.Printf("⚠️  Skipping %s: %v", pageURL, err)
				continue
			}
			return nil, err
		}
		fetched++

		doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
		if err != nil {
			log.Printf("⚠️  Unparseable HTML from %s: %v", pageURL, err)
			continue
		}
		records = append(records, parse.Callups(doc)...)
	}

	if fetched == 0 && len(r.cfg.CallupURLs) > 0 {
		return nil, fmt.Errorf("no callup page could be fetched")
	}

	log.Printf("✓ Callup scrape complete: %d records from %d pages", len(records), fetched)
	return records, nil
}

// ScrapeSeason discovers every division from the schedules index and scrapes
// each division's schedule page.
func (r *Runner) ScrapeSeason(ctx context.Context) ([]parse.GameRecord, error) {
	var records []parse.GameRecord
	err := r.withAttempts(ctx, "season scrape", func() error {
		recs, err := r.scrapeSeasonOnce(ctx)
		if err != nil {
			return err
		}
		records = recs
		return nil
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (r *Runner) scrapeSeasonOnce(ctx context.Context) ([]parse.GameRecord, error) {
	sess, err := r.manager.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquiring browser session: %w", err)
	}
	defer r.manager.Release(sess)

	if _, err := r.auth.Authenticate(ctx, sess); err != nil {
		return nil, err
	}

	indexHTML, err := r.nav.FetchPage(ctx, sess, r.cfg.ScheduleIndexURL)
	if err != nil {
		return nil, fmt.Errorf("fetching schedules index: %w", err)
	}
	indexDoc, err := goquery.NewDocumentFromReader(strings.NewReader(indexHTML))
	if err != nil {
		return nil, fmt.Errorf("parsing schedules index: %w", err)
	}

	base, _ := url.Parse(r.cfg.ScheduleIndexURL)
	divisions := DiscoverDivisions(indexDoc, base)
	if len(divisions) == 0 {
		log.Println("⚠️  No division links discovered on schedules index")
		return nil, nil
	}
	log.Printf("✓ Discovered %d divisions", len(divisions))

	var records []parse.GameRecord
	for _, div := range divisions {
		if err := respectfulDelay(ctx); err != nil {
			return nil, err
		}

		html, err := r.nav.FetchPage(ctx, sess, div.URL)
		if err != nil {
			var notFound *NotFoundError
			if errors.As(err, &notFound) {
				log.Printf("⚠️  Skipping division %s: %v", div.Label, err)
				continue
			}
			return nil, err
		}

		doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
		if err != nil {
			log.Printf("⚠️  Unparseable HTML for division %s: %v", div.Label, err)
			continue
		}

		games := parse.Schedule(doc, parse.DivisionContext{
			Label:          div.Label,
			Gender:         div.Gender,
			Age:            div.Age,
			DivisionNumber: div.DivisionNumber,
		})
		log.Printf("  %s: %d games", div.Label, len(games))
		records = append(records, games...)
	}

	log.Printf("✓ Season scrape complete: %d games across %d divisions", len(records), len(divisions))
	return records, nil
}

// withAttempts retries a whole scrape sequence with jittered backoff.
// Authentication failures and context cancellation are permanent.
func (r *Runner) withAttempts(ctx context.Context, name string, fn func() error) error {
	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(
			backoff.WithInitialInterval(3*time.Second),
			backoff.WithMaxInterval(15*time.Second),
		), maxScrapeAttempts-1),
		ctx,
	)

	attempt := 0
	return backoff.Retry(func() error {
		attempt++
		if attempt > 1 {
			log.Printf("→ Retrying %s (attempt %d/%d)", name, attempt, maxScrapeAttempts)
		}

		err := fn()
		if err == nil {
			return nil
		}

		var authErr *AuthenticationError
		if errors.As(err, &authErr) || ctx.Err() != nil {
			return backoff.Permanent(err)
		}
		return err
	}, policy)
}

// respectfulDelay sleeps the jittered inter-page delay, honoring
// cancellation.
func respectfulDelay(ctx context.Context) error {
	delay := pageDelayFloor + time.Duration(rand.Int63n(int64(pageDelayJitter)))
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(delay):
		return nil
	}
}
