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

// Command ozquote-report fetches daily history for several stock codes and
// prints a per-code summary of daily returns over the requested range.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"math"
	"os"
	"runtime"
	"sort"

	"github.com/stockparfait/errors"
	"github.com/stockparfait/iterator"
	"github.com/stockparfait/logging"
	"gonum.org/v1/gonum/stat"

	"github.com/ozquote/ozquote/dates"
	"github.com/ozquote/ozquote/quote"
	"github.com/ozquote/ozquote/report"
	"github.com/ozquote/ozquote/yahoo"
)

type Flags struct {
	Exchange string
	Start    string // YYYY-MM-DD; default: lookback window
	End      string // YYYY-MM-DD; default: today
	CSV      bool
	LogLevel logging.Level
	Codes    []string
}

func parseFlags(args []string) (*Flags, error) {
	var flags Flags
	fs := flag.NewFlagSet("ozquote-report", flag.ExitOnError)
	fs.StringVar(&flags.Exchange, "exchange", yahoo.DefaultExchange,
		"exchange suffix for stock codes")
	fs.StringVar(&flags.Start, "start", "", "start date, YYYY-MM-DD")
	fs.StringVar(&flags.End, "end", "", "end date, YYYY-MM-DD")
	fs.BoolVar(&flags.CSV, "csv", false, "print table in CSV format; default: text")
	flags.LogLevel = logging.Info
	fs.Var(&flags.LogLevel, "log-level", "Log level: debug, info, warning, error")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	flags.Codes = fs.Args()
	if len(flags.Codes) == 0 {
		return nil, errors.Reason("expected at least one stock code argument")
	}
	return &flags, nil
}

// summary of one code's history: total and annualized-free daily return
// statistics over the range.
type summary struct {
	Code       string
	Days       int
	First      dates.Date
	Last       dates.Date
	MeanReturn float64 // mean daily log-return
	Volatility float64 // stddev of daily log-returns
}

// closesByDate extracts (date, close) pairs sorted by date ascending; the
// provider returns history newest first.
func closesByDate(recs []quote.Record) ([]dates.Date, []float64, error) {
	type point struct {
		date  dates.Date
		close float64
	}
	points := make([]point, 0, len(recs))
	for _, rec := range recs {
		d, ok := rec.Date("Date")
		if !ok {
			return nil, nil, errors.Reason("history row has no Date field")
		}
		c, ok := rec.Decimal("Close")
		if !ok {
			return nil, nil, errors.Reason("history row has no Close field")
		}
		points = append(points, point{date: d, close: c.InexactFloat64()})
	}
	sort.Slice(points, func(i, j int) bool {
		return points[i].date.Before(points[j].date)
	})
	ds := make([]dates.Date, len(points))
	cs := make([]float64, len(points))
	for i, p := range points {
		ds[i] = p.date
		cs[i] = p.close
	}
	return ds, cs, nil
}

func summarize(ctx context.Context, code string, dateRange []interface{}) (*summary, error) {
	recs, err := yahoo.GetQuoteHistory(ctx, code, dateRange,
		quote.Fields("Date", "Close"))
	if err != nil {
		return nil, errors.Annotate(err, "failed to fetch history for %s", code)
	}
	ds, cs, err := closesByDate(recs)
	if err != nil {
		return nil, errors.Annotate(err, "unusable history for %s", code)
	}
	if len(cs) < 2 {
		return nil, errors.Reason("not enough history for %s: %d rows", code, len(cs))
	}
	returns := make([]float64, len(cs)-1)
	for i := 1; i < len(cs); i++ {
		returns[i-1] = math.Log(cs[i] / cs[i-1])
	}
	return &summary{
		Code:       code,
		Days:       len(cs),
		First:      ds[0],
		Last:       ds[len(ds)-1],
		MeanReturn: stat.Mean(returns, nil),
		Volatility: stat.StdDev(returns, nil),
	}, nil
}

func rangeArg(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

func printReport(ctx context.Context, flags *Flags, w io.Writer) error {
	client := yahoo.NewClient().WithExchange(flags.Exchange)
	ctx = yahoo.UseClient(ctx, client)
	dateRange := []interface{}{rangeArg(flags.Start), rangeArg(flags.End)}
	// Validate once up front; each summarize call re-validates the same input.
	if _, err := yahoo.ValidateDateRange(ctx, dateRange); err != nil {
		return errors.Annotate(err, "invalid date range")
	}

	f := func(code string) *summary {
		s, err := summarize(ctx, code, dateRange)
		if err != nil {
			logging.Warningf(ctx, "failed to process %s: %s", code, err.Error())
			return nil
		}
		return s
	}
	pm := iterator.ParallelMap(ctx, 2*runtime.NumCPU(), iterator.FromSlice(flags.Codes), f)
	defer pm.Close()

	summaries := iterator.Reduce[*summary, []*summary](pm, []*summary{},
		func(s *summary, ss []*summary) []*summary {
			if s == nil {
				return ss
			}
			return append(ss, s)
		})
	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].Code < summaries[j].Code
	})

	tbl := report.New("Code", "Days", "First", "Last", "Mean Return", "Volatility")
	for _, s := range summaries {
		tbl.AddRow(s.Code, fmt.Sprintf("%d", s.Days), s.First.String(),
			s.Last.String(), fmt.Sprintf("%.6f", s.MeanReturn),
			fmt.Sprintf("%.6f", s.Volatility))
	}
	if flags.CSV {
		if err := tbl.WriteCSV(w); err != nil {
			return errors.Annotate(err, "failed to print CSV")
		}
		return nil
	}
	if err := tbl.WriteText(w); err != nil {
		return errors.Annotate(err, "failed to print text")
	}
	return nil
}

func main() {
	ctx := context.Background()
	flags, err := parseFlags(os.Args[1:])
	if err != nil {
		ctx = logging.Use(ctx, logging.DefaultGoLogger(logging.Info))
		logging.Errorf(ctx, "failed to parse flags: %s", err.Error())
		os.Exit(1)
	}
	ctx = logging.Use(ctx, logging.DefaultGoLogger(flags.LogLevel))

	if err := printReport(ctx, flags, os.Stdout); err != nil {
		logging.Errorf(ctx, err.Error())
		os.Exit(1)
	}
}
