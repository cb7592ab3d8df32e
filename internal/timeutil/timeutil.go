// Package timeutil provides pure time classification helpers for chat views:
// relative-time labels for conversation previews and date-boundary labels
// for message separators.
package timeutil

import "time"

// RelativeLabel classifies a timestamp relative to now for list previews.
// Same day yields a clock time, yesterday and the past week yield words,
// anything older yields a date.
func RelativeLabel(t, now time.Time) string {
	t = t.Local()
	now = now.Local()

	switch {
	case SameDay(t, now):
		return t.Format("15:04")
	case daysApart(t, now) == 1:
		return "Yesterday"
	case daysApart(t, now) < 7:
		return t.Format("Monday")
	default:
		return t.Format("Jan 2, 2006")
	}
}

// DayLabel returns the label for a date-boundary separator above a message
// sent at t.
func DayLabel(t, now time.Time) string {
	t = t.Local()
	now = now.Local()

	switch {
	case SameDay(t, now):
		return "Today"
	case daysApart(t, now) == 1:
		return "Yesterday"
	default:
		return t.Format("January 2, 2006")
	}
}

// Separator returns the separator label to place above cur given the
// preceding message time prev. It is empty when both fall on the same
// calendar day. A zero prev means cur is the first message and always
// gets a label.
func Separator(prev, cur, now time.Time) string {
	if !prev.IsZero() && SameDay(prev, cur) {
		return ""
	}
	return DayLabel(cur, now)
}

// SameDay reports whether a and b fall on the same local calendar day.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Local().Date()
	by, bm, bd := b.Local().Date()
	return ay == by && am == bm && ad == bd
}

// daysApart returns the number of calendar days between a and b,
// independent of the clock time within each day.
func daysApart(a, b time.Time) int {
	ay, am, ad := a.Local().Date()
	by, bm, bd := b.Local().Date()
	da := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	db := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)

	days := int(db.Sub(da).Hours() / 24)
	if days < 0 {
		days = -days
	}
	return days
}
