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

package main

import (
	"bytes"
	"context"
	"testing"

	"github.com/stockparfait/fetch"
	"github.com/stockparfait/logging"
	"github.com/stockparfait/testutil"

	"github.com/ozquote/ozquote/dates"
	"github.com/ozquote/ozquote/quote"
	"github.com/ozquote/ozquote/yahoo"

	. "github.com/smartystreets/goconvey/convey"
)

func TestReport(t *testing.T) {
	Convey("parseFlags", t, func() {
		flags, err := parseFlags([]string{
			"-exchange", "L", "-start", "2013-04-01", "-csv", "BHP", "RIO"})
		So(err, ShouldBeNil)
		So(flags.Exchange, ShouldEqual, "L")
		So(flags.Start, ShouldEqual, "2013-04-01")
		So(flags.CSV, ShouldBeTrue)
		So(flags.Codes, ShouldResemble, []string{"BHP", "RIO"})

		_, err = parseFlags([]string{"-csv"})
		So(err, ShouldNotBeNil)
	})

	Convey("closesByDate sorts rows ascending", t, func() {
		recs, err := quote.NormalizeAll([]quote.RawRecord{
			{"Date": "2013-04-12", "Close": "32.50"},
			{"Date": "2013-04-10", "Close": "31.25"},
			{"Date": "2013-04-11", "Close": "32.75"},
		}, historyTestTable())
		So(err, ShouldBeNil)
		ds, cs, err := closesByDate(recs)
		So(err, ShouldBeNil)
		So(ds, ShouldResemble, []dates.Date{
			dates.NewDate(2013, 4, 10),
			dates.NewDate(2013, 4, 11),
			dates.NewDate(2013, 4, 12),
		})
		So(cs, ShouldResemble, []float64{31.25, 32.75, 32.50})
	})

	Convey("printReport works", t, func() {
		server := testutil.NewTestServer()
		defer server.Close()

		yahoo.QueryURL = server.URL()
		ctx := fetch.UseClient(context.Background(), server.Client())
		ctx = logging.Use(ctx, logging.DefaultGoLogger(logging.Info))

		Convey("summarizes one code", func() {
			server.ResponseBody = []string{`{"query": {"results": {"quote": [
        {"Date": "2013-04-12", "Close": "32.00"},
        {"Date": "2013-04-11", "Close": "32.00"},
        {"Date": "2013-04-10", "Close": "32.00"}]}}}`}

			flags, err := parseFlags([]string{
				"-start", "2013-04-10", "-end", "2013-04-12", "-csv", "BHP"})
			So(err, ShouldBeNil)
			var buf bytes.Buffer
			So(printReport(ctx, flags, &buf), ShouldBeNil)
			So("\n"+buf.String(), ShouldEqual, `
Code,Days,First,Last,Mean Return,Volatility
BHP,3,2013-04-10,2013-04-12,0.000000,0.000000
`)
		})

		Convey("a failing code is skipped, not fatal", func() {
			server.ResponseBody = []string{`{"query": {"results": null}}`}

			flags, err := parseFlags([]string{
				"-start", "2013-04-10", "-end", "2013-04-12", "-csv", "ZZZ"})
			So(err, ShouldBeNil)
			var buf bytes.Buffer
			So(printReport(ctx, flags, &buf), ShouldBeNil)
			So("\n"+buf.String(), ShouldEqual, `
Code,Days,First,Last,Mean Return,Volatility
`)
		})

		Convey("an invalid range is fatal", func() {
			flags, err := parseFlags([]string{
				"-start", "2013-04-12", "-end", "2013-04-10", "BHP"})
			So(err, ShouldBeNil)
			var buf bytes.Buffer
			So(printReport(ctx, flags, &buf), ShouldNotBeNil)
		})
	})
}

func historyTestTable() *quote.DecodeTable {
	_, table, err := quote.Resolve(
		quote.Fields("Date", "Close"), yahoo.HistoryFields)
	if err != nil {
		panic(err)
	}
	return table
}
