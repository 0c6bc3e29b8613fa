package dto

import "github.com/spec-kit/shiftboard/internal/calendar"

// CalendarDayResponse previews one day of the grid.
type CalendarDayResponse struct {
	Day           int      `json:"day"`
	Date          string   `json:"date"`
	HasAssignment bool     `json:"has_assignment"`
	Names         []string `json:"names"`
}

// CalendarResponse is a month grid.
type CalendarResponse struct {
	Year          int                   `json:"year"`
	Month         int                   `json:"month"`
	DaysInMonth   int                   `json:"days_in_month"`
	LeadingBlanks int                   `json:"leading_blanks"`
	Days          []CalendarDayResponse `json:"days"`
}

// NewCalendarResponse maps a month view.
func NewCalendarResponse(v *calendar.MonthView) CalendarResponse {
	days := make([]CalendarDayResponse, 0, len(v.Days))
	for _, d := range v.Days {
		names := d.Names
		if names == nil {
			names = []string{}
		}
		days = append(days, CalendarDayResponse{Day: d.Day, Date: d.DateKey, HasAssignment: d.HasAssignment, Names: names})
	}
	return CalendarResponse{
		Year:          v.Year,
		Month:         int(v.Month),
		DaysInMonth:   v.DaysInMonth,
		LeadingBlanks: v.LeadingBlanks,
		Days:          days,
	}
}
