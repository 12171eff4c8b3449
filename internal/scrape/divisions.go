package scrape

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// DivisionLink is one discovered division schedule page. Divisions are
// identified by the (gender, age, division number) triple embedded in the
// schedule URL's query string.
type DivisionLink struct {
	URL            string
	Gender         string
	Age            string
	DivisionNumber string
	Label          string
}

// key is the composite identity used for dedup. Links that differ only in
// URL encoding collapse onto one entry.
func (d DivisionLink) key() string {
	return d.Gender + "|" + d.Age + "|" + d.DivisionNumber
}

// DiscoverDivisions scans the schedules index page for division links. Any
// anchor whose query string carries the gender/age/division triple counts;
// the link text and surrounding markup vary too much to anchor on.
func DiscoverDivisions(doc *goquery.Document, base *url.URL) []DivisionLink {
	seen := make(map[string]bool)
	var links []DivisionLink

	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		link, ok := parseDivisionHref(href, base)
		if !ok {
			return
		}

		if label := strings.TrimSpace(a.Text()); label != "" && !strings.EqualFold(label, "schedule") {
			link.Label = label
		}

		if seen[link.key()] {
			return
		}
		seen[link.key()] = true
		links = append(links, link)
	})

	return links
}

// parseDivisionHref extracts the division triple from a schedule link's
// query string. Query keys are matched case-insensitively; the site is not
// consistent about casing.
func parseDivisionHref(href string, base *url.URL) (DivisionLink, bool) {
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return DivisionLink{}, false
	}
	resolved := ref
	if base != nil {
		resolved = base.ResolveReference(ref)
	}

	var gender, age, division string
	for key, values := range resolved.Query() {
		if len(values) == 0 || values[0] == "" {
			continue
		}
		switch strings.ToLower(key) {
		case "gender":
			gender = values[0]
		case "age":
			age = values[0]
		case "division", "divisionnumber", "div":
			division = values[0]
		}
	}
	if gender == "" || age == "" || division == "" {
		return DivisionLink{}, false
	}

	return DivisionLink{
		URL:            resolved.String(),
		Gender:         gender,
		Age:            age,
		DivisionNumber: division,
		Label:          divisionLabel(gender, age, division),
	}, true
}

// divisionLabel builds a readable default label from the triple.
func divisionLabel(gender, age, division string) string {
	g := gender
	switch strings.ToUpper(gender) {
	case "B", "M":
		g = "Boys"
	case "G", "F":
		g = "Girls"
	}
	return fmt.Sprintf("%s %s Division %s", g, strings.ToUpper(age), division)
}
