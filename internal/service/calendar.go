package service

import "time"

// Calendar names the voting day for "now" in the configured timezone.
type Calendar struct {
	loc *time.Location
	now func() time.Time
}

// NewCalendar creates a Calendar for loc; nil means UTC.
func NewCalendar(loc *time.Location) *Calendar {
	if loc == nil {
		loc = time.UTC
	}
	return &Calendar{loc: loc, now: time.Now}
}

// Today returns the current day as YYYY-MM-DD.
func (c *Calendar) Today() string {
	return c.now().In(c.loc).Format("2006-01-02")
}
