package model

import (
	"fmt"
	"time"
)

const commitDateLayout = "Jan 2, 2006 3:04:05 PM"

// FormatCommitDate renders t in its own location followed by a zone label,
// e.g. "Jun 5, 2016 10:15:20 PM GMT-03:00" or "Jun 5, 2016 1:15:20 AM UTC".
func FormatCommitDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(commitDateLayout) + " " + ZoneLabel(t)
}

// ZoneLabel returns the zone name of t when its location has one, and a
// GMT offset label otherwise. Signatures parsed from git objects carry only
// an offset, so they always get the GMT form.
func ZoneLabel(t time.Time) string {
	name, offset := t.Zone()
	if name != "" && !isNumericZone(name) {
		return name
	}

	sign := '+'
	if offset < 0 {
		sign = '-'
		offset = -offset
	}
	return fmt.Sprintf("GMT%c%02d:%02d", sign, offset/3600, (offset%3600)/60)
}

func isNumericZone(name string) bool {
	switch name[0] {
	case '+', '-':
		return true
	}
	return name[0] >= '0' && name[0] <= '9'
}
