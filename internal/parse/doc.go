// Package parse turns raw RDYSL HTML into structured records.
//
// The league site renders inconsistent markup across divisions: header rows
// move, labels change or disappear, and layout tables surround the data
// tables. Both extractors here are deliberately heuristic and tolerant —
// they locate the target table by header content, fall back to positional
// inference where labels are missing, and degrade to an empty result with a
// log line instead of failing the scrape run.
package parse
