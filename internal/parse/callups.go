package parse

import (
	"log"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// RawRecord is a single callup row as scraped, before aggregation.
type RawRecord struct {
	PlayerName       string
	RecordType       string
	SourceTableIndex int
}

// Callups extracts callup records from a player detail page.
//
// The site renders many tables per page and the callup table carries no id or
// class we can anchor on. Every table is inspected: the first row is read as a
// candidate header, and the table qualifies only if one header cell contains
// "type" and another contains "name" (case-insensitive substring match — the
// markup is too inconsistent across divisions for anything stricter). Tables
// missing either column are skipped, not errors.
//
// Callups never fails on malformed HTML; when nothing matches it returns an
// empty slice and logs so a site change shows up in the operator's logs.
func Callups(doc *goquery.Document) []RawRecord {
	var records []RawRecord

	doc.Find("table").Each(func(tableIdx int, table *goquery.Selection) {
		rows := table.Find("tr")
		if rows.Length() < 2 {
			return
		}

		typeCol, nameCol := locateCallupColumns(rows.First())
		if typeCol < 0 || nameCol < 0 {
			return
		}

		rows.Slice(1, rows.Length()).Each(func(_ int, row *goquery.Selection) {
			cells := row.Find("td, th")
			if cells.Length() <= typeCol || cells.Length() <= nameCol {
				return
			}

			recordType := strings.TrimSpace(cells.Eq(typeCol).Text())
			if !strings.Contains(strings.ToLower(recordType), "callup:") {
				return
			}

			name := strings.TrimSpace(cells.Eq(nameCol).Text())
			if !IsValidPlayerName(name) {
				return
			}

			records = append(records, RawRecord{
				PlayerName:       name,
				RecordType:       recordType,
				SourceTableIndex: tableIdx,
			})
		})
	})

	if len(records) == 0 {
		log.Println("⚠️  No callup rows found on page (site layout may have changed)")
	}

	return records
}

// locateCallupColumns reads the first row of a table as a header and returns
// the positions of the type and name columns, or -1 when absent.
func locateCallupColumns(header *goquery.Selection) (typeCol, nameCol int) {
	typeCol, nameCol = -1, -1
	header.Find("td, th").Each(func(i int, cell *goquery.Selection) {
		text := strings.ToLower(strings.TrimSpace(cell.Text()))
		if typeCol < 0 && strings.Contains(text, "type") {
			typeCol = i
		}
		if nameCol < 0 && strings.Contains(text, "name") {
			nameCol = i
		}
	})
	return typeCol, nameCol
}

// IsValidPlayerName guards against mis-picking a label or spacer cell as a
// player name: the text must be non-empty, at least 2 characters, contain a
// letter, not be purely numeric, and not itself contain "callup".
func IsValidPlayerName(name string) bool {
	name = strings.TrimSpace(name)
	if len(name) < 2 {
		return false
	}

	lower := strings.ToLower(name)
	if strings.Contains(lower, "callup") {
		return false
	}

	hasLetter := false
	allDigits := true
	for _, r := range name {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
			hasLetter = true
		}
		if r < '0' || r > '9' {
			allDigits = false
		}
	}
	return hasLetter && !allDigits
}
