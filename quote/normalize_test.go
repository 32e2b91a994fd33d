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

func TestNormalize(t *testing.T) {
	t.Parallel()

	Convey("Normalize works", t, func() {
		reg := testRegistry()

		Convey("decodes exactly the requested fields", func() {
			_, table, err := Resolve(Fields("Name", "Close"), reg)
			So(err, ShouldBeNil)
			raw := RawRecord{"n": "BHP Billiton", "l1": "32.50", "v": "1000000"}
			rec, err := Normalize(raw, table)
			So(err, ShouldBeNil)
			So(len(rec), ShouldEqual, 2)

			name, ok := rec.Text("Name")
			So(ok, ShouldBeTrue)
			So(name, ShouldEqual, "BHP Billiton")

			c, ok := rec.Decimal("Close")
			So(ok, ShouldBeTrue)
			So(c.String(), ShouldEqual, "32.50")
		})

		Convey("preserves decimal precision through a round trip", func() {
			_, table, err := Resolve(Fields("Close"), reg)
			So(err, ShouldBeNil)
			rec, err := Normalize(RawRecord{"l1": "3.330"}, table)
			So(err, ShouldBeNil)
			c, ok := rec.Decimal("Close")
			So(ok, ShouldBeTrue)
			So(c.String(), ShouldEqual, "3.330")
		})

		Convey("empty table fails", func() {
			_, err := Normalize(RawRecord{"l1": "32.50"}, &DecodeTable{})
			So(errors.Is(err, ErrEmptyFieldSpec), ShouldBeTrue)
		})

		Convey("undecodable value fails", func() {
			_, table, err := Resolve(Fields("Close"), reg)
			So(err, ShouldBeNil)
			_, err = Normalize(RawRecord{"l1": "N/A"}, table)
			So(errors.Is(err, ErrMalformed), ShouldBeTrue)
		})
	})

	Convey("NormalizeAll works", t, func() {
		_, table, err := Resolve(Fields("Close"), testRegistry())
		So(err, ShouldBeNil)

		Convey("preserves row order", func() {
			recs, err := NormalizeAll([]RawRecord{
				{"l1": "32.50"}, {"l1": "32.10"}}, table)
			So(err, ShouldBeNil)
			So(len(recs), ShouldEqual, 2)
			first, _ := recs[0].Decimal("Close")
			second, _ := recs[1].Decimal("Close")
			So(first.String(), ShouldEqual, "32.50")
			So(second.String(), ShouldEqual, "32.10")
		})

		Convey("reports the failing row", func() {
			_, err := NormalizeAll([]RawRecord{
				{"l1": "32.50"}, {"l1": "N/A"}}, table)
			So(errors.Is(err, ErrMalformed), ShouldBeTrue)
			So(err.Error(), ShouldContainSubstring, "row 1")
		})
	})
}
