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

package quote

import (
	"github.com/stockparfait/errors"

	"github.com/ozquote/ozquote/dates"
)

// Record is a normalized quote: logical field names mapped to decoded values.
// A field the provider omitted is absent from the map, not zero-valued.
type Record map[string]interface{}

// Text returns a string field, if present and a string.
func (r Record) Text(name string) (string, bool) {
	s, ok := r[name].(string)
	return s, ok
}

// Decimal returns a numeric field, if present.
func (r Record) Decimal(name string) (Decimal, bool) {
	d, ok := r[name].(Decimal)
	return d, ok
}

// Date returns a calendar-date field, if present.
func (r Record) Date(name string) (dates.Date, bool) {
	d, ok := r[name].(dates.Date)
	return d, ok
}

// Time returns a time-of-day field, if present.
func (r Record) Time(name string) (dates.TimeOfDay, bool) {
	t, ok := r[name].(dates.TimeOfDay)
	return t, ok
}

// Normalize decodes a raw record through the decode table. Raw tokens outside
// the table are skipped silently: callers get back exactly the intersection of
// what they asked for and what the provider returned. An empty table fails
// with ErrEmptyFieldSpec, and a raw value its decoder cannot parse with
// ErrMalformed.
func Normalize(raw RawRecord, table *DecodeTable) (Record, error) {
	if table.Len() == 0 {
		return nil, errors.Annotate(ErrEmptyFieldSpec,
			"cannot normalize a quote without fields")
	}
	rec := make(Record, len(raw))
	for token, value := range raw {
		f, ok := table.Field(token)
		if !ok {
			continue
		}
		v, err := f.Decode(value)
		if err != nil {
			return nil, errors.Annotate(ErrMalformed,
				"failed to decode field %s: %s", f.Name, err)
		}
		rec[f.Name] = v
	}
	return rec, nil
}

// NormalizeAll decodes a sequence of raw records, preserving their order.
func NormalizeAll(raws []RawRecord, table *DecodeTable) ([]Record, error) {
	if table.Len() == 0 {
		return nil, errors.Annotate(ErrEmptyFieldSpec,
			"cannot normalize quotes without fields")
	}
	out := make([]Record, 0, len(raws))
	for i, raw := range raws {
		rec, err := Normalize(raw, table)
		if err != nil {
			return nil, errors.Annotate(err, "failed to normalize row %d", i)
		}
		out = append(out, rec)
	}
	return out, nil
}
