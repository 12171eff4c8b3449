package parse

import (
	"log"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// GameRecord is one parsed schedule row for a division.
type GameRecord struct {
	Division       string
	Gender         string
	Age            string
	DivisionNumber string
	GameID         string
	Day            string
	Date           string
	Time           string
	Status         string
	HomeTeam       string
	HomeScore      string
	HomeFines      string
	VisitingTeam   string
	VisitingScore  string
	VisitingFines  string
	SiteField      string
}

// DivisionContext carries the division identity stamped onto every record
// parsed from that division's schedule page.
type DivisionContext struct {
	Label          string
	Gender         string
	Age            string
	DivisionNumber string
}

// scheduleColumns maps the labeled schedule columns to their positions.
// Columns right of the home team are unlabeled in the source markup and are
// filled in positionally, see inferUnlabeled.
type scheduleColumns struct {
	game     int
	day      int
	date     int
	time     int
	status   int
	homeTeam int
}

// The schedule table repeats a short header inside the body ("Team Name",
// "Score", "Fines") above each group of rows. Those rows must be filtered,
// not parsed as games.
var subHeaderLabels = map[string]bool{
	"team name": true,
	"score":     true,
	"fines":     true,
}

// Schedule extracts game rows from a division schedule page.
//
// The true header is not always the first row of the table, so the first 3
// rows are each tried as a header. A row qualifies as the header if it
// carries all of game/day/date/time/status, or, on pages that omit the
// game and day labels, date and time plus a home/visiting team column.
//
// Labeled columns are matched by exact header text. The visiting team,
// both score columns, both fines columns, and the site/field column are not
// labeled in the source markup; their positions are inferred from the fixed
// layout right of the home team column. If the site ever reorders those
// columns this parser returns zero records and logs rather than mis-mapping
// silently — a layout assumption, not a general table-parsing rule.
func Schedule(doc *goquery.Document, div DivisionContext) []GameRecord {
	var records []GameRecord

	doc.Find("table").Each(func(_ int, table *goquery.Selection) {
		if len(records) > 0 {
			return
		}

		rows := table.Find("tr")
		headerIdx, cols := locateScheduleHeader(rows)
		if headerIdx < 0 {
			return
		}

		rows.Slice(headerIdx+1, rows.Length()).Each(func(_ int, row *goquery.Selection) {
			rec, ok := parseScheduleRow(row, cols, div)
			if ok {
				records = append(records, rec)
			}
		})
	})

	if len(records) == 0 {
		log.Printf("⚠️  No schedule rows parsed for division %s (site layout may have changed)", div.Label)
	}

	return records
}

// locateScheduleHeader tries the first 3 rows of a table as the header row
// and returns the index of the first that qualifies, with its column map.
func locateScheduleHeader(rows *goquery.Selection) (int, scheduleColumns) {
	limit := rows.Length()
	if limit > 3 {
		limit = 3
	}

	for i := 0; i < limit; i++ {
		labels := cellTexts(rows.Eq(i))
		cols, ok := matchScheduleHeader(labels)
		if ok {
			return i, cols
		}
	}
	return -1, scheduleColumns{}
}

func matchScheduleHeader(labels []string) (scheduleColumns, bool) {
	cols := scheduleColumns{game: -1, day: -1, date: -1, time: -1, status: -1, homeTeam: -1}

	for i, label := range labels {
		norm := strings.ToLower(strings.TrimSpace(label))
		switch norm {
		case "game", "game #":
			if cols.game < 0 {
				cols.game = i
			}
		case "day":
			if cols.day < 0 {
				cols.day = i
			}
		case "date":
			if cols.date < 0 {
				cols.date = i
			}
		case "time":
			if cols.time < 0 {
				cols.time = i
			}
		case "status":
			if cols.status < 0 {
				cols.status = i
			}
		case "home team", "home team name", "home":
			if cols.homeTeam < 0 {
				cols.homeTeam = i
			}
		}
	}

	full := cols.game >= 0 && cols.day >= 0 && cols.date >= 0 && cols.time >= 0 && cols.status >= 0
	if full {
		return cols, true
	}

	// Some pages drop the Game/Day labels. Date+Time plus a team column is
	// still unambiguous enough to anchor on.
	if cols.date >= 0 && cols.time >= 0 && (cols.homeTeam >= 0 || hasTeamLabel(labels)) {
		return cols, true
	}

	return scheduleColumns{}, false
}

func hasTeamLabel(labels []string) bool {
	for _, label := range labels {
		norm := strings.ToLower(label)
		if strings.Contains(norm, "home") || strings.Contains(norm, "visiting") {
			return true
		}
	}
	return false
}

func parseScheduleRow(row *goquery.Selection, cols scheduleColumns, div DivisionContext) (GameRecord, bool) {
	cells := cellTexts(row)
	if len(cells) == 0 {
		return GameRecord{}, false
	}

	if subHeaderLabels[strings.ToLower(strings.TrimSpace(cells[0]))] {
		return GameRecord{}, false
	}

	rec := GameRecord{
		Division:       div.Label,
		Gender:         div.Gender,
		Age:            div.Age,
		DivisionNumber: div.DivisionNumber,
		GameID:         cellAt(cells, cols.game),
		Day:            cellAt(cells, cols.day),
		Date:           cellAt(cells, cols.date),
		Time:           cellAt(cells, cols.time),
		Status:         cellAt(cells, cols.status),
	}
	inferUnlabeled(&rec, cells, cols)

	// Sub-header and spacer rows survive the label filter on some pages;
	// a real game row always carries a game number or a date.
	if rec.GameID == "" && rec.Date == "" {
		return GameRecord{}, false
	}
	return rec, true
}

// inferUnlabeled fills the columns the source markup never labels. The site
// lays them out in a fixed order immediately right of the home team column:
// home score, home fines, visiting team, visiting score, visiting fines,
// site & field.
func inferUnlabeled(rec *GameRecord, cells []string, cols scheduleColumns) {
	home := cols.homeTeam
	if home < 0 {
		// Without a labeled home team column there is no anchor; the home
		// team sits one right of status when that label exists.
		if cols.status < 0 {
			return
		}
		home = cols.status + 1
	}

	rec.HomeTeam = cellAt(cells, home)
	rec.HomeScore = cellAt(cells, home+1)
	rec.HomeFines = cellAt(cells, home+2)
	rec.VisitingTeam = cellAt(cells, home+3)
	rec.VisitingScore = cellAt(cells, home+4)
	rec.VisitingFines = cellAt(cells, home+5)
	rec.SiteField = cellAt(cells, home+6)
}

func cellTexts(row *goquery.Selection) []string {
	var texts []string
	row.Find("td, th").Each(func(_ int, cell *goquery.Selection) {
		texts = append(texts, strings.TrimSpace(cell.Text()))
	})
	return texts
}

func cellAt(cells []string, i int) string {
	if i < 0 || i >= len(cells) {
		return ""
	}
	return cells[i]
}
