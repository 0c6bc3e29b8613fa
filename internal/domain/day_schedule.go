package domain

import (
	"fmt"
	"time"
)

// DateKeyLayout is the zero-padded key format for day schedules and leads.
const DateKeyLayout = "2006-01-02"

// NoRotationPointer is persisted on every save. No reader consumes it.
const NoRotationPointer = -1

// DaySchedule is the ordered member queue for one calendar day.
type DaySchedule struct {
	DateKey         string       `json:"-"`
	Members         []ExternalID `json:"members"`
	RotationPointer int          `json:"rotationPointer"`
	UpdatedAt       time.Time    `json:"updatedAt"`
}

// ParseDateKey validates a YYYY-MM-DD key and returns the calendar date.
func ParseDateKey(key string) (time.Time, error) {
	t, err := time.Parse(DateKeyLayout, key)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date key %q: %w", key, err)
	}
	if t.Format(DateKeyLayout) != key {
		return time.Time{}, fmt.Errorf("invalid date key %q", key)
	}
	return t, nil
}

// DateKey formats a calendar day as YYYY-MM-DD.
func DateKey(year int, month time.Month, day int) string {
	return fmt.Sprintf("%04d-%02d-%02d", year, int(month), day)
}

// MonthPrefix returns the YYYY-MM prefix shared by every day key of a month.
func MonthPrefix(year int, month time.Month) string {
	return fmt.Sprintf("%04d-%02d", year, int(month))
}
