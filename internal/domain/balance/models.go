package balance

import "time"

// Point is one balance snapshot for an account on a calendar date. At most
// one point exists per (AccountID, DateOf).
type Point struct {
	AccountID string    `json:"accountId"`
	DateOf    time.Time `json:"dateOf"`
	Balance   int64     `json:"balance"`
}

// Day truncates t to midnight in t's location.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
