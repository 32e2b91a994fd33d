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
	"time"

	"github.com/stockparfait/errors"
	"github.com/stockparfait/iterator"
)

// Range validation failure kinds, distinguishable with errors.Is.
var (
	ErrInvalidType   = errors.Reason("invalid type")
	ErrInvalidShape  = errors.Reason("invalid shape")
	ErrInvalidFormat = errors.Reason("invalid format")
	ErrInvalidDate   = errors.Reason("invalid date")
	ErrInvalidRange  = errors.Reason("invalid range")
)

// DefaultLookbackDays is the length of the default "recent window" when a
// range is given without a start date.
const DefaultLookbackDays = 60

// DateRange is an inclusive pair of calendar dates with Start <= End.
type DateRange struct {
	Start Date
	End   Date
}

// String representation of the range.
func (r DateRange) String() string {
	return r.Start.String() + ".." + r.End.String()
}

// Sequence enumerates every calendar day of the range, ascending.
func (r DateRange) Sequence() *Sequence {
	return &Sequence{start: r.Start, end: r.End}
}

// RangePolicy validates raw date-range inputs. Both the lookback window and
// the clock are injectable, primarily for tests; NewRangePolicy returns the
// production values.
type RangePolicy struct {
	Lookback int              // days filled in for a missing start date
	Now      func() time.Time // today's date for defaulting and sanity checks
}

// NewRangePolicy returns the default policy: a 60-day lookback against the
// wall clock.
func NewRangePolicy() RangePolicy {
	return RangePolicy{Lookback: DefaultLookbackDays, Now: time.Now}
}

// parseRangeDate strictly parses a range element string, distinguishing a
// string that doesn't look like a date at all from one that names an
// impossible date.
func parseRangeDate(s string) (Date, error) {
	m := dateRE.FindStringSubmatch(s)
	if m == nil {
		return Date{}, errors.Annotate(ErrInvalidFormat,
			"date %q is not in YYYY-MM-DD format", s)
	}
	d := NewDate(uint16(atoi(m[1])), uint8(atoi(m[2])), uint8(atoi(m[3])))
	if !d.IsValid() {
		return Date{}, errors.Annotate(ErrInvalidDate,
			"%q is not a calendar date", s)
	}
	return d, nil
}

// rangeElement resolves one element of a raw range: nil and "" mean "absent"
// and yield the fallback, strings are parsed strictly, Date values pass
// through.
func rangeElement(v interface{}, fallback Date) (Date, error) {
	switch d := v.(type) {
	case nil:
		return fallback, nil
	case Date:
		return d, nil
	case string:
		if d == "" {
			return fallback, nil
		}
		return parseRangeDate(d)
	}
	return Date{}, errors.Annotate(ErrInvalidType,
		"range element must be a date or a string, got %T", v)
}

// Validate checks and normalizes a raw date-range input: a two-element
// sequence of start and end, where each element is a Date, a YYYY-MM-DD
// string, or absent (nil or empty string). A missing end defaults to today, a
// missing start to end minus the lookback window; note that this defaulting
// reads the policy clock, so calls without explicit dates are deliberately not
// referentially transparent. The result satisfies Start <= End and
// Start <= today; an End in the future is accepted.
func (p RangePolicy) Validate(dateRange interface{}) (DateRange, error) {
	pair, ok := dateRange.([]interface{})
	if !ok {
		return DateRange{}, errors.Annotate(ErrInvalidType,
			"date range must be a sequence, got %T", dateRange)
	}
	if len(pair) != 2 {
		return DateRange{}, errors.Annotate(ErrInvalidShape,
			"date range must have exactly 2 elements, got %d", len(pair))
	}
	today := Today(p.Now())
	end, err := rangeElement(pair[1], today)
	if err != nil {
		return DateRange{}, errors.Annotate(err, "invalid end date")
	}
	start, err := rangeElement(pair[0], end.AddDays(-p.Lookback))
	if err != nil {
		return DateRange{}, errors.Annotate(err, "invalid start date")
	}
	if end.Before(start) {
		return DateRange{}, errors.Annotate(ErrInvalidRange,
			"start date %s is after end date %s", start, end)
	}
	if today.Before(start) {
		return DateRange{}, errors.Annotate(ErrInvalidRange,
			"start date %s is in the future", start)
	}
	return DateRange{Start: start, End: end}, nil
}

// Sequence is a restartable enumeration of consecutive calendar dates from
// start to end inclusive, ascending. Each call to Iter starts over.
type Sequence struct {
	start Date
	end   Date
}

// NewSequence creates a Sequence from bounds that are either Date or
// time.Time values; for a time.Time only the date component is used. Ordering
// of the bounds is not checked here: a backwards pair still yields the start
// date once, since the end bound is only examined after a date is produced.
func NewSequence(start, end interface{}) (*Sequence, error) {
	s, err := sequenceBound(start)
	if err != nil {
		return nil, errors.Annotate(err, "invalid start bound")
	}
	e, err := sequenceBound(end)
	if err != nil {
		return nil, errors.Annotate(err, "invalid end bound")
	}
	return &Sequence{start: s, end: e}, nil
}

func sequenceBound(v interface{}) (Date, error) {
	switch d := v.(type) {
	case Date:
		return d, nil
	case time.Time:
		return NewDateFromTime(d), nil
	}
	return Date{}, errors.Annotate(ErrInvalidType,
		"sequence bound must be a date or a time, got %T", v)
}

// Iter returns a fresh iterator over the sequence.
func (s *Sequence) Iter() iterator.Iterator[Date] {
	return &sequenceIter{next: s.start, end: s.end}
}

// Dates materializes the entire sequence.
func (s *Sequence) Dates() []Date {
	dates := []Date{}
	it := s.Iter()
	for d, ok := it.Next(); ok; d, ok = it.Next() {
		dates = append(dates, d)
	}
	return dates
}

type sequenceIter struct {
	next Date
	end  Date
	done bool
}

// Next implements iterator.Iterator. The end bound is checked only after a
// date is yielded, so equal bounds produce exactly one date.
func (it *sequenceIter) Next() (Date, bool) {
	if it.done {
		return Date{}, false
	}
	d := it.next
	if !d.Before(it.end) {
		it.done = true
	}
	it.next = d.AddDays(1)
	return d, true
}
