package scheduling

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/imedbrahmi/hospital_backend/internal/repo"
)

// Weekdays in the order schedules are listed.
var Weekdays = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

// Slot is a bookable start time on a given date.
type Slot struct {
	Time     string `json:"time"`
	DateTime string `json:"dateTime"`
	Duration int    `json:"duration"`
}

// DayOfWeek returns the English weekday of a YYYY-MM-DD date.
func DayOfWeek(date string) (string, error) {
	d, err := time.Parse(repo.DateLayout, date)
	if err != nil {
		return "", ErrInvalidDate
	}
	return d.Weekday().String(), nil
}

// minutes converts "HH:MM" to minutes since midnight.
func minutes(clock string) (int, error) {
	h, m, ok := strings.Cut(clock, ":")
	if !ok || len(h) != 2 || len(m) != 2 {
		return 0, fmt.Errorf("invalid time %q", clock)
	}
	hh, err := strconv.Atoi(h)
	if err != nil || hh < 0 || hh > 23 {
		return 0, fmt.Errorf("invalid time %q", clock)
	}
	mm, err := strconv.Atoi(m)
	if err != nil || mm < 0 || mm > 59 {
		return 0, fmt.Errorf("invalid time %q", clock)
	}
	return hh*60 + mm, nil
}

func clock(min int) string {
	return fmt.Sprintf("%02d:%02d", min/60, min%60)
}

// Candidates lists every start time t with t+duration <= end, stepping by
// duration from start. A malformed window yields no candidates.
func Candidates(start, end string, duration int) []string {
	s, err := minutes(start)
	if err != nil {
		return nil
	}
	e, err := minutes(end)
	if err != nil || duration <= 0 || e <= s {
		return nil
	}

	out := make([]string, 0, (e-s)/duration)
	for t := s; t+duration <= e; t += duration {
		out = append(out, clock(t))
	}
	return out
}

// FreeSlots removes the booked times from the schedule's candidates for
// date. A nil or unavailable schedule has no slots.
func FreeSlots(date string, sched *repo.Schedule, booked []string) []Slot {
	out := []Slot{}
	if sched == nil || !sched.IsAvailable {
		return out
	}

	taken := make(map[string]struct{}, len(booked))
	for _, b := range booked {
		taken[b] = struct{}{}
	}

	for _, t := range Candidates(sched.StartTime, sched.EndTime, sched.SlotDuration) {
		if _, ok := taken[t]; ok {
			continue
		}
		out = append(out, Slot{Time: t, DateTime: date + " " + t, Duration: sched.SlotDuration})
	}
	return out
}
