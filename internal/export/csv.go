package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/fieldside/rdysl/internal/parse"
)

// csvHeader is the fixed column order the downstream spreadsheet consumers
// depend on. Do not reorder.
var csvHeader = []string{
	"Division",
	"Gender",
	"Age",
	"Division Number",
	"Game",
	"Day",
	"Date",
	"Time",
	"Status",
	"Home Team Name",
	"Home Team Score",
	"Home Team Fines",
	"Visiting Team Name",
	"Visiting Team Score",
	"Visiting Team Fines",
	"Site & Field",
}

// WriteSeasonCSV writes the season's game records in the fixed column order.
func WriteSeasonCSV(w io.Writer, records []parse.GameRecord) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("writing CSV header: %w", err)
	}

	for _, rec := range records {
		row := []string{
			rec.Division,
			rec.Gender,
			rec.Age,
			rec.DivisionNumber,
			rec.GameID,
			rec.Day,
			rec.Date,
			rec.Time,
			rec.Status,
			rec.HomeTeam,
			rec.HomeScore,
			rec.HomeFines,
			rec.VisitingTeam,
			rec.VisitingScore,
			rec.VisitingFines,
			rec.SiteField,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing game %s: %w", rec.GameID, err)
		}
	}

	cw.Flush()
	return cw.Error()
}
