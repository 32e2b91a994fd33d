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

package report

import (
	"bytes"
	"testing"

	"github.com/ozquote/ozquote/dates"
	"github.com/ozquote/ozquote/quote"

	. "github.com/smartystreets/goconvey/convey"
)

func TestTable(t *testing.T) {
	t.Parallel()

	Convey("Table works", t, func() {
		Convey("WriteText aligns columns", func() {
			tbl := New("Code", "Close")
			tbl.AddRow("BHP", "32.50")
			tbl.AddRow("RIO", "65.000")
			var buf bytes.Buffer
			So(tbl.WriteText(&buf), ShouldBeNil)
			So(buf.String(), ShouldEqual, `Code |  Close
---- | ------
 BHP |  32.50
 RIO | 65.000
`)
		})

		Convey("WriteCSV writes a header and rows", func() {
			tbl := New("Code", "Close")
			tbl.AddRow("BHP", "32.50")
			var buf bytes.Buffer
			So(tbl.WriteCSV(&buf), ShouldBeNil)
			So(buf.String(), ShouldEqual, "Code,Close\nBHP,32.50\n")
		})

		Convey("AddRecords renders decoded values in column order", func() {
			closeVal, err := quote.DecodeDecimal("32.50")
			So(err, ShouldBeNil)
			tbl := New("Date", "Close", "Volume")
			tbl.AddRecords(quote.Record{
				"Date":  dates.NewDate(2013, 4, 12),
				"Close": closeVal,
			})
			var buf bytes.Buffer
			So(tbl.WriteCSV(&buf), ShouldBeNil)
			So(buf.String(), ShouldEqual,
				"Date,Close,Volume\n2013-04-12,32.50,\n")
		})

		Convey("AddRow pads missing cells", func() {
			tbl := New("Code", "Close")
			tbl.AddRow("BHP")
			var buf bytes.Buffer
			So(tbl.WriteCSV(&buf), ShouldBeNil)
			So(buf.String(), ShouldEqual, "Code,Close\nBHP,\n")
		})
	})
}
