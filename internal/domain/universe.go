package domain

import "time"

// Candidate is one ticker that passed the liquidity floor on a given day,
// with its momentum score for ranking.
type Candidate struct {
	Ticker string
	Score  float64
}

// UniverseSnapshot is the day's target pool: candidates sorted by momentum
// score descending (ties broken by ticker ascending), truncated to the
// configured pool size. Recomputed every trading day.
type UniverseSnapshot struct {
	Date       time.Time
	Candidates []Candidate
}
