package roster

import "time"

const (
	apiDateLayout     = "02-Jan-2006"
	bookingDateLayout = "Mon Jan 02 2006"
	clockLayout       = "15:04"
)

// FormatAPIDate renders a day the way the GET endpoints expect it,
// e.g. "03-Dec-2025".
func FormatAPIDate(t time.Time) string {
	return t.Format(apiDateLayout)
}

// ParseAPIDate parses a "dd-MMM-yyyy" day.
func ParseAPIDate(s string) (time.Time, error) {
	return time.Parse(apiDateLayout, s)
}

// FormatBookingDate renders a day the way InsertAppointments expects it,
// e.g. "Wed Dec 03 2025".
func FormatBookingDate(t time.Time) string {
	return t.Format(bookingDateLayout)
}

// FormatClock renders a 24h "HH:mm" time.
func FormatClock(t time.Time) string {
	return t.Format(clockLayout)
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// PastDay reports whether day falls strictly before now's calendar day.
func PastDay(day, now time.Time) bool {
	return midnight(day).Before(midnight(now))
}

// SameDay reports whether the two times fall on the same calendar day.
func SameDay(a, b time.Time) bool {
	return midnight(a).Equal(midnight(b))
}

// ValidMobile reports whether s is a ten digit Indian mobile number:
// digits only, first digit 6 through 9.
func ValidMobile(s string) bool {
	if len(s) != 10 {
		return false
	}
	if s[0] < '6' || s[0] > '9' {
		return false
	}
	for i := 1; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
