package summary

import (
	"sort"
	"strings"
	"time"

	"github.com/fieldside/rdysl/internal/parse"
)

// Status classifies a player's season callup usage against league limits.
type Status string

const (
	StatusOK          Status = "OK"
	StatusWarning     Status = "WARNING"
	StatusUnavailable Status = "UNAVAILABLE"
	StatusOverLimit   Status = "OVER_LIMIT"
)

// Classify maps a callup count to its league status. Thresholds are league
// rules: 3 callups is the warning line, a 4th makes the player unavailable
// for further callups, 5 or more is over the limit.
func Classify(count int) Status {
	switch {
	case count >= 5:
		return StatusOverLimit
	case count == 4:
		return StatusUnavailable
	case count == 3:
		return StatusWarning
	default:
		return StatusOK
	}
}

// PlayerSummary is the per-player aggregation of raw callup records.
type PlayerSummary struct {
	PlayerName    string `json:"playerName"`
	CallupCount   int    `json:"callupCount"`
	Status        Status `json:"status"`
	IsWarning     bool   `json:"isWarning"`
	IsUnavailable bool   `json:"isUnavailable"`
	IsOverLimit   bool   `json:"isOverLimit"`
}

// Snapshot is one complete aggregation result. Snapshots are immutable once
// built; the cache engine replaces them wholesale on refresh.
type Snapshot struct {
	Players      []PlayerSummary `json:"summary"`
	TotalRecords int             `json:"totalRecords"`
	LastUpdated  time.Time       `json:"lastUpdated"`
}

// Aggregate groups raw records by player name, counts them, and classifies
// each player. Grouping is exact-string and case-sensitive: names are carried
// as scraped, so the same person rendered with inconsistent formatting across
// pages counts as two players. Known upstream limitation; normalizing here
// would silently change the counts.
func Aggregate(records []parse.RawRecord, now time.Time) *Snapshot {
	counts := make(map[string]int)
	for _, rec := range records {
		counts[rec.PlayerName]++
	}

	players := make([]PlayerSummary, 0, len(counts))
	for name, count := range counts {
		status := Classify(count)
		players = append(players, PlayerSummary{
			PlayerName:    name,
			CallupCount:   count,
			Status:        status,
			IsWarning:     status == StatusWarning,
			IsUnavailable: status == StatusUnavailable,
			IsOverLimit:   status == StatusOverLimit,
		})
	}

	// Highest usage first, name ascending on ties.
	sort.Slice(players, func(i, j int) bool {
		if players[i].CallupCount != players[j].CallupCount {
			return players[i].CallupCount > players[j].CallupCount
		}
		return players[i].PlayerName < players[j].PlayerName
	})

	return &Snapshot{
		Players:      players,
		TotalRecords: len(records),
		LastUpdated:  now,
	}
}

// Filter returns the players whose name contains the query, case-insensitive.
// An empty query returns all players.
func Filter(players []PlayerSummary, query string) []PlayerSummary {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return players
	}

	var matched []PlayerSummary
	for _, p := range players {
		if strings.Contains(strings.ToLower(p.PlayerName), query) {
			matched = append(matched, p)
		}
	}
	return matched
}
