package service

import (
	"time"

	"github.com/fieldroute/backend/internal/models"
)

// DateOf truncates a timestamp to its UTC calendar date. All visit-date
// comparisons work on these normalized values.
func DateOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func daysBetween(from, to time.Time) int {
	return int(DateOf(to).Sub(DateOf(from)).Hours() / 24)
}

// IsValidForDate reports whether an assignment is due on the given calendar
// date. Pure, no side effects.
//
// PERMANENT assignments are due on their anchor date and every
// frequencyDays-th day after it; the anchor is startDate when set, otherwise
// the assignment's creation date. TEMPORARY assignments are due every day
// inside [startDate, endDate]. The two cadences are deliberately different:
// a temporary posting requires daily presence, a permanent one only on
// scheduled days.
func IsValidForDate(a models.Assignment, date time.Time) bool {
	day := DateOf(date)

	switch a.Type {
	case models.AssignmentPermanent:
		if a.FrequencyDays == nil || *a.FrequencyDays <= 0 {
			return false
		}
		if a.StartDate != nil && day.Before(DateOf(*a.StartDate)) {
			return false
		}
		if a.EndDate != nil && day.After(DateOf(*a.EndDate)) {
			return false
		}
		anchor := DateOf(a.CreatedAt)
		if a.StartDate != nil {
			anchor = DateOf(*a.StartDate)
		}
		return daysBetween(anchor, day)%*a.FrequencyDays == 0

	case models.AssignmentTemporary:
		if a.StartDate == nil {
			return false
		}
		if day.Before(DateOf(*a.StartDate)) {
			return false
		}
		if a.EndDate != nil && day.After(DateOf(*a.EndDate)) {
			return false
		}
		return true
	}

	// Unknown types never match.
	return false
}
