package email

import (
	"fmt"
	"time"
)

var germanMonths = [...]string{
	"Januar", "Februar", "März", "April", "Mai", "Juni",
	"Juli", "August", "September", "Oktober", "November", "Dezember",
}

// FormatDate renders t as 02.01.2006 in loc
func FormatDate(t time.Time, loc *time.Location) string {
	return t.In(loc).Format("02.01.2006")
}

// FormatTime renders t as 15:04 in loc
func FormatTime(t time.Time, loc *time.Location) string {
	return t.In(loc).Format("15:04")
}

// FormatLongDate renders t as "2. Januar 2006" in loc
func FormatLongDate(t time.Time, loc *time.Location) string {
	t = t.In(loc)
	return fmt.Sprintf("%d. %s %d", t.Day(), germanMonths[t.Month()-1], t.Year())
}

// FormatDateTime renders t as "02.01.2006 um 15:04" in loc
func FormatDateTime(t time.Time, loc *time.Location) string {
	return FormatDate(t, loc) + " um " + FormatTime(t, loc)
}
