// Package bizday answers business day questions and performs business day arithmetic.
//
// Every operation is a pure function of its arguments. A Config is passed explicitly,
// there is no package level mutable state, and no operation performs I/O, so the
// package is safe for concurrent use without synchronization.
//
// All comparisons are made at day granularity: the year, month, day and weekday of a
// time.Time are read in the value's own Location and the time of day is ignored.
// Callers are expected to supply times in the zone their calendar is kept in.
package bizday

import (
	"fmt"
	"time"
)

// Weekend is a set of weekdays treated as non working days, held as a bit per
// time.Weekday value.
type Weekend uint8

// DefaultWeekend treats Saturday and Sunday as non working days.
const DefaultWeekend = Weekend(1<<time.Saturday | 1<<time.Sunday)

// MakeWeekend builds a Weekend containing the weekdays provided
func MakeWeekend(days ...time.Weekday) Weekend {
	var w Weekend
	for _, day := range days {
		w |= 1 << uint(day)
	}
	return w
}

// Contains returns true if day is part of the weekend
func (w Weekend) Contains(day time.Weekday) bool {
	return w&(1<<uint(day)) != 0
}

type holidayKind int

const (
	recurringKind holidayKind = iota
	fixedKind
)

// Holiday is a single calendar exclusion, either recurring on the same month and day
// every year, or fixed to one exact date. Build one with Recurring or Fixed.
type Holiday struct {
	kind  holidayKind
	name  string
	month time.Month
	day   int
	year  int //only set when kind is fixedKind
}

// Recurring builds a Holiday observed every year on the same month and day
func Recurring(month time.Month, day int, name string) Holiday {
	return Holiday{
		kind:  recurringKind,
		name:  name,
		month: month,
		day:   day,
	}
}

// Fixed builds a Holiday observed on one exact date only
func Fixed(year int, month time.Month, day int, name string) Holiday {
	return Holiday{
		kind:  fixedKind,
		name:  name,
		month: month,
		day:   day,
		year:  year,
	}
}

// Name returns the holiday's label
func (h Holiday) Name() string {
	return h.name
}

// Matches returns true if h is observed on date. A recurring holiday compares month
// and day only, a fixed holiday compares the full date.
func (h Holiday) Matches(date time.Time) bool {
	switch h.kind {
	case recurringKind:
		return date.Month() == h.month && date.Day() == h.day
	case fixedKind:
		return date.Year() == h.year && date.Month() == h.month && date.Day() == h.day
	}
	return false
}

func (h Holiday) String() string {
	if h.kind == recurringKind {
		return fmt.Sprintf("%s (every %s %d)", h.name, h.month, h.day)
	}
	return fmt.Sprintf("%s (%04d-%02d-%02d)", h.name, h.year, int(h.month), h.day)
}

// Config is the evaluation policy for business day calculations. The zero value has
// no holidays and an empty weekend, making every day a business day.
type Config struct {
	Holidays []Holiday
	Weekend  Weekend
}

// IsWeekend returns true if date falls on one of the weekend days
func IsWeekend(date time.Time, weekend Weekend) bool {
	return weekend.Contains(date.Weekday())
}

// IsHoliday returns true if any holiday in holidays is observed on date
func IsHoliday(date time.Time, holidays []Holiday) bool {
	for _, h := range holidays {
		if h.Matches(date) {
			return true
		}
	}
	return false
}

// IsBusinessDay returns true if date is neither on the weekend nor a holiday under cfg
func IsBusinessDay(date time.Time, cfg Config) bool {
	return !IsWeekend(date, cfg.Weekend) && !IsHoliday(date, cfg.Holidays)
}

// AddBusinessDays moves date by n business days, stepping one calendar day at a time
// in the sign direction of n and counting only business days, so weekends and
// holidays are stepped over. When n is zero date is returned unchanged, otherwise the
// result is always a business day. The time of day is preserved.
func AddBusinessDays(date time.Time, n int, cfg Config) time.Time {
	if n == 0 {
		return date
	}
	step := 1
	if n < 0 {
		step = -1
		n = -n
	}
	result := date
	for n > 0 {
		result = result.AddDate(0, 0, step)
		if IsBusinessDay(result, cfg) {
			n--
		}
	}
	return result
}

// BusinessDaysBetween counts the business days after start up to and including end.
// The start date is never counted, the end date is counted when it is a business day.
// When start falls after end the negated count of the reversed range is returned, so
// BusinessDaysBetween(a, b, cfg) == -BusinessDaysBetween(b, a, cfg).
func BusinessDaysBetween(start time.Time, end time.Time, cfg Config) int {
	if dateAfter(start, end) {
		return -BusinessDaysBetween(end, start, cfg)
	}
	count := 0
	day := start
	for !sameDate(day, end) {
		day = day.AddDate(0, 0, 1)
		if IsBusinessDay(day, cfg) {
			count++
		}
	}
	return count
}

// AdjustToBusinessDay returns date unchanged when it is already a business day,
// otherwise the next business day strictly after it
func AdjustToBusinessDay(date time.Time, cfg Config) time.Time {
	if IsBusinessDay(date, cfg) {
		return date
	}
	return AddBusinessDays(date, 1, cfg)
}

// DayInfo explains the business day status of a single date. Reason and
// NextBusinessDay are only populated when the date is not a business day.
type DayInfo struct {
	IsBusinessDay   bool       `json:"is_business_day"`
	Reason          string     `json:"reason,omitempty"`
	NextBusinessDay *time.Time `json:"next_business_day,omitempty"`
}

// Describe reports whether date is a business day under cfg and why not when it
// isn't. The weekend check wins over the holiday check when both apply. The holiday
// reason carries the first matching holiday's name, falling back to a bare "Holiday"
// label when no matching holiday is named.
func Describe(date time.Time, cfg Config) DayInfo {
	if IsBusinessDay(date, cfg) {
		return DayInfo{IsBusinessDay: true}
	}
	info := DayInfo{}
	if IsWeekend(date, cfg.Weekend) {
		info.Reason = "Weekend"
	} else {
		info.Reason = "Holiday"
		for _, h := range cfg.Holidays {
			if h.Matches(date) && h.Name() != "" {
				info.Reason = "Holiday: " + h.Name()
				break
			}
		}
	}
	next := AddBusinessDays(date, 1, cfg)
	info.NextBusinessDay = &next
	return info
}

//sameDate returns true if a and b fall on the same calendar date
func sameDate(a time.Time, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}

//dateAfter returns true if a falls on a later calendar date than b
func dateAfter(a time.Time, b time.Time) bool {
	if a.Year() != b.Year() {
		return a.Year() > b.Year()
	}
	if a.Month() != b.Month() {
		return a.Month() > b.Month()
	}
	return a.Day() > b.Day()
}
