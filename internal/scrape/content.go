package scrape

import "strings"

// Marker phrases the site renders in each of its failure states. All checks
// are case-insensitive substring matches against the page HTML — the site's
// markup is too inconsistent for anything more structural.
var (
	// loginMarkers indicate the login form is being shown. Their absence on
	// the login URL means the site preserved a prior session.
	loginMarkers = []string{
		`name="username"`,
		`name="password"`,
		"log in to your account",
	}

	// authFailureMarkers indicate rejected credentials after a submit.
	authFailureMarkers = []string{
		"invalid",
		"login corrupted",
	}

	// expiredMarkers indicate the session died mid-run.
	expiredMarkers = []string{
		"session expired",
		"session has expired",
		"please log in",
		"please login",
	}

	// notFoundMarkers indicate a structurally missing page.
	notFoundMarkers = []string{
		"page not found",
		"404 error",
		"could not be found",
	}
)

func containsAny(html string, markers []string) bool {
	lower := strings.ToLower(html)
	for _, marker := range markers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

// looksLikeLoginPage reports whether the content is the login form.
func looksLikeLoginPage(html string) bool {
	return containsAny(html, loginMarkers)
}

// looksLikeAuthFailure reports whether a post-submit page shows rejected
// credentials, either by failure text or by the URL still sitting on login.
func looksLikeAuthFailure(html, currentURL string) bool {
	if containsAny(html, authFailureMarkers) {
		return true
	}
	return strings.Contains(strings.ToLower(currentURL), "login")
}

// looksExpired reports whether the content shows session-expiry markers.
func looksExpired(html string) bool {
	return containsAny(html, expiredMarkers)
}

// looksNotFound reports whether the content is a not-found page.
func looksNotFound(html string) bool {
	return containsAny(html, notFoundMarkers)
}
