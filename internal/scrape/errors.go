package scrape

import "fmt"

// AuthenticationError means the login sequence failed permanently: the site
// rejected the credentials or the form never resolved within the attempt
// ceiling. Fatal for the run; not retried upstream.
type AuthenticationError struct {
	Reason   string
	Attempts int
}

func (e *AuthenticationError) Error() string {
	return fmt.Sprintf("authentication failed after %d attempts: %s", e.Attempts, e.Reason)
}

// SessionExpiredError means a fetch hit expiry markers and the single
// re-authentication retry also failed. Fatal for that fetch; the caller
// decides whether to abort the run.
type SessionExpiredError struct {
	URL string
}

func (e *SessionExpiredError) Error() string {
	return fmt.Sprintf("session expired fetching %s (re-authentication did not recover)", e.URL)
}

// NotFoundError means the page structurally does not exist. Never retried —
// retrying does not fix a bad URL or a site reorganization.
type NotFoundError struct {
	URL string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("page not found: %s", e.URL)
}
