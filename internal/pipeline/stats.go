package pipeline

import "time"

// Stats aggregates counters for one scrape run. The runner is
// sequential, so plain ints suffice.
type Stats struct {
	PagesFetched    int
	CandidatesFound int
	Extracted       int
	SkippedStale    int
	SkippedShort    int
	SkippedNoDate   int
	Rewritten       int
	Inserted        int
	Updated         int
	Errors          int

	Started  time.Time
	Finished time.Time
}

// LogArgs renders the stats as slog key-value pairs.
func (s *Stats) LogArgs() []any {
	elapsed := time.Duration(0)
	if !s.Finished.IsZero() {
		elapsed = s.Finished.Sub(s.Started)
	}
	return []any{
		"pages", s.PagesFetched,
		"candidates", s.CandidatesFound,
		"extracted", s.Extracted,
		"skipped_stale", s.SkippedStale,
		"skipped_short", s.SkippedShort,
		"skipped_no_date", s.SkippedNoDate,
		"rewritten", s.Rewritten,
		"inserted", s.Inserted,
		"updated", s.Updated,
		"errors", s.Errors,
		"elapsed", elapsed.Round(time.Millisecond).String(),
	}
}
