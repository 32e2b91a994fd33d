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
	"context"
	"flag"
	"io"
	"os"
	"strings"

	"github.com/stockparfait/errors"
	"github.com/stockparfait/logging"

	"github.com/ozquote/ozquote/dates"
	"github.com/ozquote/ozquote/quote"
	"github.com/ozquote/ozquote/report"
	"github.com/ozquote/ozquote/yahoo"

	toml "github.com/pelletier/go-toml/v2"
)

type Flags struct {
	Config   string // optional TOML config file
	Code     string // required stock code
	Fields   string // comma-separated field names; default all
	Symbols  string // compact CSV symbol string, e.g. "nsl1v"; overrides Fields
	History  bool   // fetch history instead of the latest quote
	Start    string // history start date, YYYY-MM-DD; default: lookback
	End      string // history end date, YYYY-MM-DD; default: today
	CSV      bool   // dump CSV format; default: text
	LogLevel logging.Level
}

func parseFlags(args []string) (*Flags, error) {
	var flags Flags
	fs := flag.NewFlagSet("ozquote", flag.ExitOnError)
	fs.StringVar(&flags.Config, "config", "", "path to the TOML config file")
	fs.StringVar(&flags.Code, "code", "", "stock code (required)")
	fs.StringVar(&flags.Fields, "fields", "",
		"comma-separated field names; default: all fields")
	fs.StringVar(&flags.Symbols, "symbols", "",
		"compact CSV symbol string, e.g. \"nsl1v\"; overrides -fields")
	fs.BoolVar(&flags.History, "history", false, "fetch daily history")
	fs.StringVar(&flags.Start, "start", "", "history start date, YYYY-MM-DD")
	fs.StringVar(&flags.End, "end", "", "history end date, YYYY-MM-DD")
	fs.BoolVar(&flags.CSV, "csv", false, "print table in CSV format; default: text")
	flags.LogLevel = logging.Info
	fs.Var(&flags.LogLevel, "log-level", "Log level: debug, info, warning, error")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if flags.Code == "" {
		return nil, errors.Reason("missing required -code argument")
	}
	return &flags, nil
}

// Config is the TOML schema of the optional config file.
type Config struct {
	Exchange     string `toml:"exchange"`      // default "AX"
	Timezone     string `toml:"timezone"`      // default "Australia/Sydney"
	Source       string `toml:"source"`        // "yql" (default) or "csv"
	LookbackDays int    `toml:"lookback_days"` // default 60
}

func parseConfig(path string) (*Config, error) {
	var c Config
	if path == "" {
		return &c, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Annotate(err, "failed to open config file %s", path)
	}
	defer f.Close()
	if err := toml.NewDecoder(f).Decode(&c); err != nil {
		return nil, errors.Annotate(err, "failed to read config file %s", path)
	}
	return &c, nil
}

func newClient(c *Config) (*yahoo.Client, error) {
	client := yahoo.NewClient()
	if c.Exchange != "" {
		client = client.WithExchange(c.Exchange)
	}
	if c.Timezone != "" {
		client = client.WithTimezone(c.Timezone)
	}
	switch c.Source {
	case "", string(yahoo.SourceYQL):
	case string(yahoo.SourceCSV):
		client = client.WithSource(yahoo.SourceCSV)
	default:
		return nil, errors.Reason("unsupported source %q", c.Source)
	}
	if c.LookbackDays != 0 {
		policy := dates.NewRangePolicy()
		policy.Lookback = c.LookbackDays
		client = client.WithRangePolicy(policy)
	}
	return client, nil
}

// registryFor selects the field registry matching the request kind and
// transport.
func registryFor(history bool, source yahoo.Source) *quote.Registry {
	if history {
		if source == yahoo.SourceCSV {
			return yahoo.CSVHistoryFields
		}
		return yahoo.HistoryFields
	}
	if source == yahoo.SourceCSV {
		return yahoo.CSVLatestFields
	}
	return yahoo.LatestFields
}

// fieldSpec builds the request's field spec from the flags: a compact symbol
// string wins over a name list, and absent both means all fields.
func fieldSpec(flags *Flags, reg *quote.Registry) (quote.FieldSpec, error) {
	if flags.Symbols != "" {
		return quote.FieldsFromSymbols(flags.Symbols, reg)
	}
	if flags.Fields == "" {
		return quote.All(), nil
	}
	names := strings.Split(flags.Fields, ",")
	for i, n := range names {
		names[i] = strings.TrimSpace(n)
	}
	return quote.Fields(names...), nil
}

// columnNames resolves the display column order for the requested fields.
func columnNames(spec quote.FieldSpec, reg *quote.Registry) ([]string, error) {
	_, table, err := quote.Resolve(spec, reg)
	if err != nil {
		return nil, err
	}
	return table.Names(), nil
}

func rangeArg(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

func printQuotes(ctx context.Context, flags *Flags, w io.Writer) error {
	config, err := parseConfig(flags.Config)
	if err != nil {
		return errors.Annotate(err, "failed to parse config")
	}
	client, err := newClient(config)
	if err != nil {
		return err
	}
	ctx = yahoo.UseClient(ctx, client)

	source := yahoo.SourceYQL
	if config.Source == string(yahoo.SourceCSV) {
		source = yahoo.SourceCSV
	}
	reg := registryFor(flags.History, source)
	spec, err := fieldSpec(flags, reg)
	if err != nil {
		return errors.Annotate(err, "failed to resolve fields")
	}
	columns, err := columnNames(spec, reg)
	if err != nil {
		return errors.Annotate(err, "failed to resolve fields")
	}
	tbl := report.New(columns...)

	if flags.History {
		dateRange := []interface{}{rangeArg(flags.Start), rangeArg(flags.End)}
		recs, err := yahoo.GetQuoteHistory(ctx, flags.Code, dateRange, spec)
		if err != nil {
			return errors.Annotate(err, "failed to fetch history for %s", flags.Code)
		}
		tbl.AddRecords(recs...)
	} else {
		rec, err := yahoo.GetLatestQuote(ctx, flags.Code, spec)
		if err != nil {
			return errors.Annotate(err, "failed to fetch quote for %s", flags.Code)
		}
		tbl.AddRecords(rec)
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

	if err := printQuotes(ctx, flags, os.Stdout); err != nil {
		logging.Errorf(ctx, err.Error())
		os.Exit(1)
	}
}
