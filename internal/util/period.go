package util

import (
	"time"

	"github.com/ovidb/centavo/centavo-backend/internal/domain"
)

// PeriodEnd returns the last day of a budget period that starts on the given
// date. Month-based periods clamp to the last day of the target month
// (e.g. a monthly budget starting Jan 31 ends Feb 28/29).
func PeriodEnd(start time.Time, period domain.BudgetPeriod) time.Time {
	switch period {
	case domain.BudgetPeriodWeekly:
		return start.AddDate(0, 0, 6)
	case domain.BudgetPeriodMonthly:
		return addMonthsClamped(start, 1).AddDate(0, 0, -1)
	case domain.BudgetPeriodQuarterly:
		return addMonthsClamped(start, 3).AddDate(0, 0, -1)
	case domain.BudgetPeriodYearly:
		return addMonthsClamped(start, 12).AddDate(0, 0, -1)
	}
	return start
}

// addMonthsClamped adds months to a date, clamping the day to the last day of
// the resulting month instead of letting time.AddDate roll over
// (Jan 31 + 1 month yields Feb 28/29, not Mar 2/3).
func addMonthsClamped(t time.Time, months int) time.Time {
	year, month, day := t.Date()
	target := time.Date(year, month+time.Month(months), 1, 0, 0, 0, 0, t.Location())

	// Last day of target month: day 0 of the month after it
	lastDay := time.Date(target.Year(), target.Month()+1, 0, 0, 0, 0, 0, t.Location()).Day()
	if day > lastDay {
		day = lastDay
	}

	return time.Date(target.Year(), target.Month(), day, 0, 0, 0, 0, t.Location())
}

// StartOfDay truncates a timestamp to midnight in its own location.
func StartOfDay(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}
