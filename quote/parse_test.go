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
	"testing"

	"github.com/stockparfait/errors"

	. "github.com/smartystreets/goconvey/convey"
)

func strptr(s string) *string { return &s }

func TestParseKeyValue(t *testing.T) {
	t.Parallel()

	const errorToken = "ErrorIndication"

	Convey("ParseKeyValue works", t, func() {
		Convey("null error indicator means success", func() {
			rec, err := ParseKeyValue(map[string]*string{
				"n":        strptr("BHP Billiton"),
				"l1":       strptr("32.50"),
				"x":        nil,
				errorToken: nil,
			}, errorToken)
			So(err, ShouldBeNil)
			So(rec, ShouldResemble, RawRecord{
				"n":  "BHP Billiton",
				"l1": "32.50",
			})
		})

		Convey("non-null error indicator fails with the provider message", func() {
			_, err := ParseKeyValue(map[string]*string{
				"n":        strptr("N/A"),
				errorToken: strptr("No such ticker symbol."),
			}, errorToken)
			So(errors.Is(err, ErrProvider), ShouldBeTrue)
			So(err.Error(), ShouldContainSubstring, "No such ticker symbol.")
		})

		Convey("missing quote fails", func() {
			_, err := ParseKeyValue(nil, errorToken)
			So(errors.Is(err, ErrMalformed), ShouldBeTrue)
		})
	})
}

func TestParseKeyValueRows(t *testing.T) {
	t.Parallel()

	Convey("ParseKeyValueRows works", t, func() {
		Convey("preserves row order, drops the redundant date key", func() {
			recs, err := ParseKeyValueRows([]map[string]*string{
				{"Date": strptr("2013-04-12"), "date": strptr("2013-04-12"),
					"Close": strptr("32.50")},
				{"Date": strptr("2013-04-11"), "Close": strptr("32.10"),
					"Volume": nil},
			})
			So(err, ShouldBeNil)
			So(recs, ShouldResemble, []RawRecord{
				{"Date": "2013-04-12", "Close": "32.50"},
				{"Date": "2013-04-11", "Close": "32.10"},
			})
		})

		Convey("nil rows mean the provider had no results", func() {
			_, err := ParseKeyValueRows(nil)
			So(errors.Is(err, ErrProvider), ShouldBeTrue)
		})

		Convey("empty rows parse to an empty slice", func() {
			recs, err := ParseKeyValueRows([]map[string]*string{})
			So(err, ShouldBeNil)
			So(recs, ShouldResemble, []RawRecord{})
		})
	})
}

func TestParseCSVRow(t *testing.T) {
	t.Parallel()

	Convey("ParseCSVRow works", t, func() {
		_, table, err := Resolve(Fields("Name", "Close", "Volume"), testRegistry())
		So(err, ShouldBeNil)

		Convey("values align positionally with the request order", func() {
			rec, err := ParseCSVRow(`"BHP Billiton",32.50,1000000`, table)
			So(err, ShouldBeNil)
			So(rec, ShouldResemble, RawRecord{
				"n":  "BHP Billiton",
				"l1": "32.50",
				"v":  "1000000",
			})
		})

		Convey("value count must match the table", func() {
			_, err := ParseCSVRow(`32.50,1000000`, table)
			So(errors.Is(err, ErrMalformed), ShouldBeTrue)
		})

		Convey("empty table fails", func() {
			_, err := ParseCSVRow(`32.50`, &DecodeTable{})
			So(errors.Is(err, ErrEmptyFieldSpec), ShouldBeTrue)
		})
	})
}

func TestParseCSVTable(t *testing.T) {
	t.Parallel()

	Convey("ParseCSVTable works", t, func() {
		Convey("rows are keyed by the header", func() {
			recs, err := ParseCSVTable(`Date,Close,Volume
2013-04-12,32.50,1000000
2013-04-11,32.10,900000
`)
			So(err, ShouldBeNil)
			So(recs, ShouldResemble, []RawRecord{
				{"Date": "2013-04-12", "Close": "32.50", "Volume": "1000000"},
				{"Date": "2013-04-11", "Close": "32.10", "Volume": "900000"},
			})
		})

		Convey("header only parses to an empty slice", func() {
			recs, err := ParseCSVTable("Date,Close\n")
			So(err, ShouldBeNil)
			So(recs, ShouldResemble, []RawRecord{})
		})

		Convey("empty input fails", func() {
			_, err := ParseCSVTable("")
			So(errors.Is(err, ErrMalformed), ShouldBeTrue)
		})

		Convey("ragged row fails", func() {
			_, err := ParseCSVTable("Date,Close\n2013-04-12\n")
			So(errors.Is(err, ErrMalformed), ShouldBeTrue)
		})
	})
}
