package scrape

import (
	"net/url"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
)

func indexDoc(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("failed to parse HTML: %v", err)
	}
	return doc
}

func mustParseURL(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("failed to parse URL %s: %v", raw, err)
	}
	return u
}

func TestDiscoverDivisions(t *testing.T) {
	doc := indexDoc(t, `<body>
		<a href="/schedules.aspx?Gender=B&Age=U12&Division=3">Boys U12 D3</a>
		<a href="/schedules.aspx?Gender=G&Age=U14&Division=1">Girls U14 D1</a>
		<a href="/standings.aspx?Season=2025">Standings</a>
		<a href="/schedules.aspx?Gender=B&Age=U12">Partial link</a>
	</body>`)

	links := DiscoverDivisions(doc, mustParseURL(t, "https://example.org/schedules.aspx"))
	if len(links) != 2 {
		t.Fatalf("expected 2 division links, got %d: %+v", len(links), links)
	}

	first := links[0]
	if first.Gender != "B" || first.Age != "U12" || first.DivisionNumber != "3" {
		t.Errorf("unexpected first link: %+v", first)
	}
	if !strings.HasPrefix(first.URL, "https://example.org/") {
		t.Errorf("relative href not resolved: %s", first.URL)
	}
	if first.Label != "Boys U12 D3" {
		t.Errorf("expected anchor text as label, got %q", first.Label)
	}
}

// Links that differ only in URL encoding or ordering collapse onto one entry
// per (gender, age, division) triple.
func TestDiscoverDivisionsDedup(t *testing.T) {
	doc := indexDoc(t, `<body>
		<a href="/schedules.aspx?Gender=B&Age=U12&Division=3">Schedule</a>
		<a href="/schedules.aspx?Age=U12&Division=3&Gender=B">Schedule</a>
		<a href="/schedules.aspx?gender=B&age=U12&division=3&extra=1">Schedule</a>
	</body>`)

	links := DiscoverDivisions(doc, mustParseURL(t, "https://example.org/"))
	if len(links) != 1 {
		t.Fatalf("expected 1 deduplicated link, got %d", len(links))
	}
}

func TestDiscoverDivisionsEmptyPage(t *testing.T) {
	doc := indexDoc(t, `<body><p>No schedules yet</p></body>`)
	if links := DiscoverDivisions(doc, mustParseURL(t, "https://example.org/")); len(links) != 0 {
		t.Fatalf("expected no links, got %d", len(links))
	}
}

func TestDivisionLabelFallback(t *testing.T) {
	// Anchor text "Schedule" is generic; the label falls back to the built
	// form.
	doc := indexDoc(t, `<a href="?Gender=G&Age=U10&Division=2">Schedule</a>`)
	links := DiscoverDivisions(doc, mustParseURL(t, "https://example.org/schedules.aspx"))
	if len(links) != 1 {
		t.Fatalf("expected 1 link, got %d", len(links))
	}
	if links[0].Label != "Girls U10 Division 2" {
		t.Errorf("unexpected fallback label: %q", links[0].Label)
	}
}
