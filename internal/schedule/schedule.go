// Package schedule turns abstract schedule descriptors into concrete
// due-date strings relative to a timezone-aware "today". Dates are
// always computed in application code; the model's own date arithmetic
// is never trusted.
package schedule

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/agisilaos/todoist-planner/internal/plan"
)

const maxWeekOffset = 12

const isoDateLayout = "2006-01-02"

// DayInfo describes the calendar "today" in a specific timezone.
// WeekdayISO uses ISO numbering (Monday=1..Sunday=7).
type DayInfo struct {
	Timezone   string
	ISODate    string
	WeekdayISO int
}

// Today computes DayInfo for the current wall clock. Unrecognized
// timezones fall back to UTC.
func Today(timezone string) DayInfo {
	return TodayAt(time.Now(), timezone)
}

// TodayAt is Today pinned to a fixed instant.
func TodayAt(now time.Time, timezone string) DayInfo {
	tz := strings.TrimSpace(timezone)
	if tz == "" {
		tz = "UTC"
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		tz = "UTC"
		loc = time.UTC
	}
	local := now.In(loc)
	weekday := int(local.Weekday())
	if weekday == 0 {
		weekday = 7
	}
	return DayInfo{
		Timezone:   tz,
		ISODate:    local.Format(isoDateLayout),
		WeekdayISO: weekday,
	}
}

// DueString resolves a schedule into a concrete due-date string
// ("YYYY-MM-DD" or "YYYY-MM-DD HH:MM"). A nil schedule, or one that
// cannot be resolved, yields an empty string; problems are reported as
// warnings so the caller can fall back to a literal due phrase.
func DueString(sched *plan.Schedule, today DayInfo, ref string) (string, []string) {
	if sched == nil {
		return "", nil
	}

	var warnings []string

	if sched.TimeHHMM != "" && !isTimeHHMM(sched.TimeHHMM) {
		warnings = append(warnings, fmt.Sprintf("Invalid schedule.time_hhmm for %s: '%s'", ref, sched.TimeHHMM))
		return "", warnings
	}

	switch sched.Anchor {
	case plan.AnchorAbsoluteDate:
		if !isISODate(sched.Date) {
			warnings = append(warnings, fmt.Sprintf("Invalid schedule.date for %s: '%s'", ref, sched.Date))
			return "", warnings
		}
		return composeDue(sched.Date, sched.TimeHHMM), warnings

	case plan.AnchorNextWeekday:
		if sched.WeekdayISO < 1 || sched.WeekdayISO > 7 {
			warnings = append(warnings, fmt.Sprintf("Invalid schedule.weekday_iso for %s: '%s'", ref, weekdayText(sched.WeekdayISO)))
			return "", warnings
		}

		offset := sched.WeekOffset
		if offset < 0 {
			offset = 0
		}
		if offset > maxWeekOffset {
			warnings = append(warnings, fmt.Sprintf("schedule.week_offset capped to %d for %s", maxWeekOffset, ref))
			offset = maxWeekOffset
		}

		delta := sched.WeekdayISO - today.WeekdayISO
		if delta <= 0 {
			delta += 7
		}
		delta += offset * 7

		target, ok := addDays(today.ISODate, delta)
		if !ok {
			warnings = append(warnings, fmt.Sprintf("Could not compute target date for %s from schedule", ref))
			return "", warnings
		}
		return composeDue(target, sched.TimeHHMM), warnings
	}

	warnings = append(warnings, fmt.Sprintf("Schedule for %s is incomplete, fallback to due_string", ref))
	return "", warnings
}

// addDays applies calendar arithmetic with month/year rollover.
func addDays(isoDate string, days int) (string, bool) {
	if !isISODate(isoDate) {
		return "", false
	}
	t, err := time.ParseInLocation(isoDateLayout, isoDate, time.UTC)
	if err != nil {
		return "", false
	}
	return t.AddDate(0, 0, days).Format(isoDateLayout), true
}

func composeDue(date, timeHHMM string) string {
	if timeHHMM == "" {
		return date
	}
	return date + " " + timeHHMM
}

func weekdayText(weekday int) string {
	if weekday == 0 {
		return ""
	}
	return strconv.Itoa(weekday)
}

func isISODate(value string) bool {
	if len(value) != 10 || value[4] != '-' || value[7] != '-' {
		return false
	}
	_, err := time.ParseInLocation(isoDateLayout, value, time.UTC)
	return err == nil
}

func isTimeHHMM(value string) bool {
	if len(value) != 5 || value[2] != ':' {
		return false
	}
	_, err := time.Parse("15:04", value)
	return err == nil
}
