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
	"encoding/csv"
	"strings"

	"github.com/stockparfait/errors"
)

// RawRecord is one raw quote: provider tokens mapped to their undecoded
// string values.
type RawRecord map[string]string

// ParseKeyValue converts a structured single-quote response into a RawRecord.
// The provider's success signal travels through errorToken: a non-null value
// there means the request failed with that message regardless of any other
// fields present. Null-valued fields are treated as absent.
func ParseKeyValue(raw map[string]*string, errorToken string) (RawRecord, error) {
	if raw == nil {
		return nil, errors.Annotate(ErrMalformed, "response contains no quote")
	}
	if v, ok := raw[errorToken]; ok && v != nil {
		return nil, errors.Annotate(ErrProvider, "%s", *v)
	}
	rec := make(RawRecord, len(raw))
	for k, v := range raw {
		if k == errorToken || v == nil {
			continue
		}
		rec[k] = *v
	}
	return rec, nil
}

// ParseKeyValueRows converts a structured history response into RawRecords,
// preserving the provider's row order. A nil container means the provider
// returned no results for the query. The redundant lowercase "date" key that
// some responses carry next to the capitalized one is discarded here.
func ParseKeyValueRows(rows []map[string]*string) ([]RawRecord, error) {
	if rows == nil {
		return nil, errors.Annotate(ErrProvider, "no results")
	}
	out := make([]RawRecord, 0, len(rows))
	for _, row := range rows {
		rec := make(RawRecord, len(row))
		for k, v := range row {
			if k == "date" || v == nil {
				continue
			}
			rec[k] = *v
		}
		out = append(out, rec)
	}
	return out, nil
}

// ParseCSVRow converts a single comma-separated line into a RawRecord. The
// values are positional: the i'th value belongs to the i'th token of the
// decode table, which is the caller's request order. There is no safeguard if
// the provider reorders its response fields; the request order is the only
// alignment contract the format offers. A value count different from the
// table size fails with ErrMalformed.
func ParseCSVRow(line string, table *DecodeTable) (RawRecord, error) {
	if table.Len() == 0 {
		return nil, errors.Annotate(ErrEmptyFieldSpec,
			"cannot parse a CSV row without fields")
	}
	values, err := csv.NewReader(strings.NewReader(line)).Read()
	if err != nil {
		return nil, errors.Annotate(ErrMalformed, "failed to read CSV row: %s", err)
	}
	if len(values) != table.Len() {
		return nil, errors.Annotate(ErrMalformed,
			"expected %d values, received %d", table.Len(), len(values))
	}
	rec := make(RawRecord, len(values))
	for i, v := range values {
		rec[table.Token(i)] = v
	}
	return rec, nil
}

// ParseCSVTable converts newline-delimited CSV with a header row into one
// RawRecord per data row, keyed by header name. Blank lines are discarded.
// Every header column is preserved here; filtering to the requested fields
// happens at normalization time.
func ParseCSVTable(text string) ([]RawRecord, error) {
	rows, err := csv.NewReader(strings.NewReader(text)).ReadAll()
	if err != nil {
		return nil, errors.Annotate(ErrMalformed, "failed to read CSV: %s", err)
	}
	if len(rows) == 0 {
		return nil, errors.Annotate(ErrMalformed, "response has no header row")
	}
	header := rows[0]
	out := make([]RawRecord, 0, len(rows)-1)
	for _, row := range rows[1:] {
		rec := make(RawRecord, len(header))
		for i, h := range header {
			rec[h] = row[i]
		}
		out = append(out, rec)
	}
	return out, nil
}
