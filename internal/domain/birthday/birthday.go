// internal/domain/birthday/birthday.go
package birthday

import (
	"errors"
	"fmt"
	"regexp"
	"time"
)

// DateLayout is the only accepted input format for a birthday (MM-DD-YYYY).
const DateLayout = "01-02-2006"

// displayLayout is used when echoing a stored birthday back to a user.
const displayLayout = "January 02, 2006"

var ErrInvalidDate = errors.New("invalid birthday date, expected MM-DD-YYYY")

var datePattern = regexp.MustCompile(`^\d{2}-\d{2}-\d{4}$`)

// Birthday is the stored annual date of a single user.
// At most one Birthday exists per UserID.
type Birthday struct {
	UserID string
	Date   time.Time // UTC midnight; the year is kept for display only
}

// MonthDay is the part of a date that takes part in matching.
type MonthDay struct {
	Month time.Month
	Day   int
}

func (md MonthDay) String() string {
	return fmt.Sprintf("%02d-%02d", int(md.Month), md.Day)
}

// New builds a Birthday normalised to UTC midnight.
func New(userID string, year int, month time.Month, day int) *Birthday {
	return &Birthday{
		UserID: userID,
		Date:   time.Date(year, month, day, 0, 0, 0, 0, time.UTC),
	}
}

// ParseDate parses raw strictly as MM-DD-YYYY. Any other shape, or a date
// that does not exist in the calendar, yields ErrInvalidDate.
func ParseDate(raw string) (time.Time, error) {
	if !datePattern.MatchString(raw) {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, raw)
	}
	t, err := time.Parse(DateLayout, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, raw)
	}
	return t, nil
}

// MonthDayOf extracts the matching key of an arbitrary reference time,
// in that time's own location.
func MonthDayOf(t time.Time) MonthDay {
	return MonthDay{Month: t.Month(), Day: t.Day()}
}

func (b *Birthday) MonthDay() MonthDay {
	return MonthDayOf(b.Date)
}

// Matches reports whether the birthday falls on ref's calendar month and day.
// Feb 29 only matches Feb 29.
func (b *Birthday) Matches(ref time.Time) bool {
	return b.MonthDay() == MonthDayOf(ref)
}

// FormattedDate renders the stored date, year included.
func (b *Birthday) FormattedDate() string {
	return b.Date.Format(displayLayout)
}
