// Copyright 2023 OzQuote Authors

// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at

//     http://www.apache.org/licenses/LICENSE-2.0

// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package dates

import (
	"fmt"
	"regexp"
	"time"
)

// Date records a calendar date as year, month and day. The struct is designed
// to fit into 4 bytes.
type Date struct {
	YearVal  uint16
	MonthVal uint8
	DayVal   uint8
}

// NewDate is the constructor for Date.
func NewDate(year uint16, month, day uint8) Date {
	return Date{year, month, day}
}

// NewDateFromTime creates a Date instance from the calendar components of a
// time.Time value in its own location.
func NewDateFromTime(t time.Time) Date {
	return Date{
		YearVal:  uint16(t.Year()),
		MonthVal: uint8(t.Month()),
		DayVal:   uint8(t.Day()),
	}
}

// Today is the current date according to now, in its location.
func Today(now time.Time) Date {
	return NewDateFromTime(now)
}

func (d Date) Year() uint16 { return d.YearVal }
func (d Date) Month() uint8 { return d.MonthVal }
func (d Date) Day() uint8   { return d.DayVal }

// String representation of the value.
func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year(), d.Month(), d.Day())
}

// ToTime converts Date to Time in UTC.
func (d Date) ToTime() time.Time {
	return time.Date(int(d.Year()), time.Month(d.Month()), int(d.Day()), 0, 0, 0, 0, time.UTC)
}

// lessLex is a lexicographic ordering on the slices of int.
func lessLex(x, y []int) bool {
	l := len(x)
	if len(y) < l {
		l = len(y)
	}
	for i := 0; i < l; i++ {
		if x[i] < y[i] {
			return true
		}
		if x[i] > y[i] {
			return false
		}
	}
	return len(x) < len(y)
}

// Before compares two Date objects for strict inequality (self < d2).
func (d Date) Before(d2 Date) bool {
	return lessLex([]int{int(d.Year()), int(d.Month()), int(d.Day())},
		[]int{int(d2.Year()), int(d2.Month()), int(d2.Day())})
}

// After compares two Date objects for strict inequality, self > d2.
func (d Date) After(d2 Date) bool {
	return d2.Before(d)
}

// IsZero checks whether the date has a zero value.
func (d Date) IsZero() bool {
	return d.Year() == 0 && d.Month() == 0 && d.Day() == 0
}

func (d Date) IsLeapYear() bool {
	if d.Year()%400 == 0 {
		return true
	}
	if d.Year()%100 == 0 {
		return false
	}
	if d.Year()%4 == 0 {
		return true
	}
	return false
}

// DaysInMonth is the number of days in the current month, which for February
// depends on the year.
func (d Date) DaysInMonth() uint8 {
	switch d.Month() {
	case 1, 3, 5, 7, 8, 10, 12:
		return 31
	case 4, 6, 9, 11:
		return 30
	case 2:
		if d.IsLeapYear() {
			return 29
		} else {
			return 28
		}
	}
	return 0
}

// IsValid checks that the month and day actually occur in the calendar.
func (d Date) IsValid() bool {
	if d.Month() < 1 || d.Month() > 12 {
		return false
	}
	return d.Day() >= 1 && d.Day() <= d.DaysInMonth()
}

// AddDays returns the date n calendar days after the current date; n may be
// negative.
func (d Date) AddDays(n int) Date {
	return NewDateFromTime(d.ToTime().AddDate(0, 0, n))
}

// TimeOfDay records an intraday wall-clock value with microsecond resolution.
type TimeOfDay struct {
	HourVal   uint8
	MinuteVal uint8
	SecondVal uint8
	MicroVal  uint32
}

// NewTimeOfDay is the constructor for TimeOfDay.
func NewTimeOfDay(hour, minute, second uint8, micro uint32) TimeOfDay {
	return TimeOfDay{hour, minute, second, micro}
}

// NewTimeOfDayFromTime extracts the wall-clock components of a time.Time value.
func NewTimeOfDayFromTime(t time.Time) TimeOfDay {
	return TimeOfDay{
		HourVal:   uint8(t.Hour()),
		MinuteVal: uint8(t.Minute()),
		SecondVal: uint8(t.Second()),
		MicroVal:  uint32(t.Nanosecond() / 1000),
	}
}

func (t TimeOfDay) Hour() uint8   { return t.HourVal }
func (t TimeOfDay) Minute() uint8 { return t.MinuteVal }
func (t TimeOfDay) Second() uint8 { return t.SecondVal }
func (t TimeOfDay) Micro() uint32 { return t.MicroVal }

// String representation of the value.
func (t TimeOfDay) String() string {
	if t.Micro() != 0 {
		return fmt.Sprintf("%02d:%02d:%02d.%06d",
			t.Hour(), t.Minute(), t.Second(), t.Micro())
	}
	return fmt.Sprintf("%02d:%02d:%02d", t.Hour(), t.Minute(), t.Second())
}

// IsValid checks that the value is an actual wall-clock time.
func (t TimeOfDay) IsValid() bool {
	return t.Hour() < 24 && t.Minute() < 60 && t.Second() < 60 &&
		t.Micro() < 1000_000
}

var (
	dateRE = regexp.MustCompile(`^(\d{4})-(\d{1,2})-(\d{1,2})$`)
	timeRE = regexp.MustCompile(
		`^(\d{1,2}):(\d{1,2})(?::(\d{1,2})(?:\.(\d{1,6})\d{0,6})?)?`)
)

func atoi(s string) int {
	var n int
	for _, r := range s {
		n = n*10 + int(r-'0')
	}
	return n
}

// ParseDate leniently parses a YYYY-MM-DD string. A string that does not match
// the format, or names an impossible calendar date, reports ok == false rather
// than an error.
func ParseDate(s string) (Date, bool) {
	m := dateRE.FindStringSubmatch(s)
	if m == nil {
		return Date{}, false
	}
	d := NewDate(uint16(atoi(m[1])), uint8(atoi(m[2])), uint8(atoi(m[3])))
	if !d.IsValid() {
		return Date{}, false
	}
	return d, true
}

// ParseTimeOfDay leniently parses an HH:MM[:SS[.ffffff]] string. Timezone
// offsets are not supported. Like ParseDate, a mismatch reports ok == false.
func ParseTimeOfDay(s string) (TimeOfDay, bool) {
	m := timeRE.FindStringSubmatch(s)
	if m == nil {
		return TimeOfDay{}, false
	}
	var second uint8
	var micro uint32
	if m[3] != "" {
		second = uint8(atoi(m[3]))
	}
	if m[4] != "" {
		frac := m[4]
		for len(frac) < 6 {
			frac += "0"
		}
		micro = uint32(atoi(frac))
	}
	t := NewTimeOfDay(uint8(atoi(m[1])), uint8(atoi(m[2])), second, micro)
	if !t.IsValid() {
		return TimeOfDay{}, false
	}
	return t, true
}
