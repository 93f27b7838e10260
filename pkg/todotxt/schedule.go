package todotxt

import (
	"time"

	"cloud.google.com/go/civil"
)

// Next returns the date one recurrence period after from. Monthly and
// yearly steps clamp to the last day of the target month; business-daily
// steps skip Saturdays and Sundays.
func (r Recurrence) Next(from civil.Date) civil.Date {
	n := int(r.Period)
	switch r.Interval {
	case Daily:
		return from.AddDays(n)
	case BusinessDaily:
		return addBusinessDays(from, n)
	case Weekly:
		return from.AddDays(7 * n)
	case Monthly:
		return addMonths(from, n)
	case Yearly:
		return addMonths(from, 12*n)
	}
	return from
}

func addBusinessDays(d civil.Date, n int) civil.Date {
	for n > 0 {
		d = d.AddDays(1)
		if wd := weekday(d); wd != time.Saturday && wd != time.Sunday {
			n--
		}
	}
	return d
}

func addMonths(d civil.Date, n int) civil.Date {
	months := int(d.Month) - 1 + n
	year := d.Year + months/12
	month := time.Month(months%12 + 1)
	return civil.Date{Year: year, Month: month, Day: min(d.Day, daysIn(month, year))}
}

// Recur builds the next occurrence of a recurring task completed on the
// given date. A hard recurrence advances from the due date (or the
// threshold date when there is no due date), a soft one from the
// completion date. The threshold keeps its distance to the due date.
// It reports false if the task has no recurrence.
func (t Task) Recur(completed civil.Date) (Task, bool) {
	if t.Recurrence == nil {
		return Task{}, false
	}
	r := *t.Recurrence

	next := t.clone()
	next.Finished = false
	next.FinishDate = nil
	next.CreateDate = &completed

	switch {
	case t.DueDate != nil:
		base := completed
		if r.Hard {
			base = *t.DueDate
		}
		due := r.Next(base)
		next.DueDate = &due
		if t.ThresholdDate != nil {
			threshold := t.ThresholdDate.AddDays(due.DaysSince(*t.DueDate))
			next.ThresholdDate = &threshold
		}
	case t.ThresholdDate != nil:
		base := completed
		if r.Hard {
			base = *t.ThresholdDate
		}
		threshold := r.Next(base)
		next.ThresholdDate = &threshold
	default:
		due := r.Next(completed)
		next.DueDate = &due
	}
	return next, true
}
