package models

import "time"

// UsageRecord is one append-only ledger entry: a single delivered
// generation. Records are never updated or deleted; daily quota is the
// count of a user's records for a capability within the current UTC day,
// monthly token spend is the sum of Tokens within the current UTC month.
type UsageRecord struct {
	ID         string            `json:"id"`
	UserID     string            `json:"user_id"`
	Capability Capability        `json:"capability"`
	Timestamp  time.Time         `json:"timestamp"`
	Tokens     int               `json:"tokens,omitempty"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}

// UsageStatus is the answer to a daily quota check.
type UsageStatus struct {
	Allowed   bool `json:"allowed"`
	Used      int  `json:"used"`
	Limit     int  `json:"limit"`
	Remaining int  `json:"remaining"`
}

// TokenStatus is the answer to a monthly token budget check.
type TokenStatus struct {
	Allowed   bool `json:"allowed"`
	Used      int  `json:"used"`
	Budget    int  `json:"budget"`
	Remaining int  `json:"remaining"`
}

// DayWindow returns the UTC day boundaries containing t, the range scanned
// when counting daily usage.
func DayWindow(t time.Time) (start, end time.Time) {
	u := t.UTC()
	start = time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
	return start, start.Add(24 * time.Hour)
}

// MonthWindow returns the UTC calendar-month boundaries containing t, the
// range scanned when summing token spend.
func MonthWindow(t time.Time) (start, end time.Time) {
	u := t.UTC()
	start = time.Date(u.Year(), u.Month(), 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 1, 0)
}
