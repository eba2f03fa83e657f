package timezone

import (
	"fmt"
	"time"
)

// Location is the timezone all scheduling math happens in. Servers don't
// always run where the schedule was written for, which causes disturbances
// when manipulating dates based on <time.Time>.Year()/Month()/Day()/Hour()/...
// so scheduling code goes through Now() instead of time.Now().
var Location = time.UTC

// Set pins Location to an IANA timezone name like "America/Los_Angeles".
// An empty name leaves the current pin alone.
func Set(name string) error {
	if name == "" {
		return nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return fmt.Errorf("load timezone %q: %w", name, err)
	}
	Location = loc
	return nil
}

func Now() time.Time {
	return time.Now().In(Location)
}

// SameDay reports whether a and b fall on the same calendar day in Location.
func SameDay(a time.Time, b time.Time) bool {
	a = a.In(Location)
	b = b.In(Location)
	return a.Year() == b.Year() && a.YearDay() == b.YearDay()
}
