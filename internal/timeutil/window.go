package timeutil

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidRange is returned when a custom range is malformed or inverted.
var ErrInvalidRange = errors.New("invalid date range")

// Window is a resolved half-open reporting interval [Start, End].
type Window struct {
	Start time.Time
	End   time.Time
	Range string
}

// ResolveWindow turns a named range into concrete bounds in the given
// timezone. Supported names are "day" (also the default for an empty
// range), "week" (ISO, Monday start), "month" and "custom". Any other
// name fails with ErrInvalidRange. For "custom" both startDate and
// endDate must parse as YYYY-MM-DD and startDate must not be after
// endDate.
func ResolveWindow(rangeName, tz, startDate, endDate string) (Window, error) {
	loc := Location(tz)
	now := time.Now().In(loc)

	switch rangeName {
	case "", "day":
		return Window{
			Start: StartOfDay(now, loc),
			End:   EndOfDay(now, loc),
			Range: "day",
		}, nil
	case "week":
		return weekWindow(now, loc), nil
	case "month":
		start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, loc)
		end := start.AddDate(0, 1, 0).Add(-time.Nanosecond)
		return Window{Start: start, End: end, Range: "month"}, nil
	case "custom":
		if startDate == "" || endDate == "" {
			return Window{}, fmt.Errorf("%w: startDate and endDate are required", ErrInvalidRange)
		}
		start, err := time.ParseInLocation(DateLayout, startDate, loc)
		if err != nil {
			return Window{}, fmt.Errorf("%w: bad startDate %q", ErrInvalidRange, startDate)
		}
		end, err := time.ParseInLocation(DateLayout, endDate, loc)
		if err != nil {
			return Window{}, fmt.Errorf("%w: bad endDate %q", ErrInvalidRange, endDate)
		}
		if start.After(end) {
			return Window{}, fmt.Errorf("%w: startDate after endDate", ErrInvalidRange)
		}
		return Window{
			Start: start,
			End:   EndOfDay(end, loc),
			Range: "custom",
		}, nil
	default:
		return Window{}, fmt.Errorf("%w: unknown range %q", ErrInvalidRange, rangeName)
	}
}

// weekWindow computes the ISO week containing t: Monday 00:00:00 through
// Sunday 23:59:59.999999999 in loc.
func weekWindow(t time.Time, loc *time.Location) Window {
	lt := t.In(loc)
	offset := int(lt.Weekday()-time.Monday+7) % 7
	monday := StartOfDay(lt.AddDate(0, 0, -offset), loc)
	sunday := monday.AddDate(0, 0, 7).Add(-time.Nanosecond)
	return Window{Start: monday, End: sunday, Range: "week"}
}

// WeekStart returns the Monday 00:00:00 of the ISO week containing t.
func WeekStart(t time.Time, loc *time.Location) time.Time {
	return weekWindow(t, loc).Start
}
