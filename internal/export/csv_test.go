package export

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"

	"github.com/fieldside/rdysl/internal/parse"
)

func TestWriteSeasonCSV(t *testing.T) {
	records := []parse.GameRecord{
		{
			Division:       "Boys U12 Division 3",
			Gender:         "B",
			Age:            "U12",
			DivisionNumber: "3",
			GameID:         "101",
			Day:            "Sat",
			Date:           "2025-09-06",
			Time:           "10:00 AM",
			Status:         "Final",
			HomeTeam:       "Home FC",
			HomeScore:      "2",
			VisitingTeam:   "Away FC",
			VisitingScore:  "1",
			SiteField:      "Field 3",
		},
	}

	var buf bytes.Buffer
	if err := WriteSeasonCSV(&buf, records); err != nil {
		t.Fatalf("WriteSeasonCSV failed: %v", err)
	}

	rows, err := csv.NewReader(strings.NewReader(buf.String())).ReadAll()
	if err != nil {
		t.Fatalf("output is not valid CSV: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected header + 1 row, got %d rows", len(rows))
	}

	if rows[0][0] != "Division" || rows[0][15] != "Site & Field" {
		t.Errorf("header order wrong: %v", rows[0])
	}
	if len(rows[1]) != 16 {
		t.Fatalf("expected 16 columns, got %d", len(rows[1]))
	}
	if rows[1][4] != "101" || rows[1][9] != "Home FC" || rows[1][12] != "Away FC" || rows[1][15] != "Field 3" {
		t.Errorf("row values misplaced: %v", rows[1])
	}
}

func TestWriteSeasonCSVEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteSeasonCSV(&buf, nil); err != nil {
		t.Fatalf("WriteSeasonCSV failed: %v", err)
	}

	rows, err := csv.NewReader(strings.NewReader(buf.String())).ReadAll()
	if err != nil {
		t.Fatalf("output is not valid CSV: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected header only, got %d rows", len(rows))
	}
}
