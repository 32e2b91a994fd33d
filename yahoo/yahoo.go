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

// Package yahoo fetches latest and historical stock quotes from Yahoo Finance
// over two alternative transports: the YQL community tables and the flat CSV
// endpoints. The field registries live in schema.go; the normalization engine
// is in package quote.
package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/stockparfait/errors"
	"github.com/stockparfait/fetch"
	"github.com/stockparfait/logging"

	"github.com/ozquote/ozquote/dates"
	"github.com/ozquote/ozquote/quote"
)

// Endpoint URLs. They may be overwritten in tests before issuing requests.
var (
	QueryURL      = "https://query.yahooapis.com/v1/public/yql"
	CSVQuoteURL   = "https://finance.yahoo.com/d/quotes.csv"
	CSVHistoryURL = "https://ichart.yahoo.com/table.csv"
)

// DefaultEnv is the YQL environment enabling the community tables.
const DefaultEnv = "http://www.datatables.org/alltables.env"

// Default client settings.
const (
	DefaultExchange = "AX"               // Australian equities
	DefaultTimezone = "Australia/Sydney" // the default exchange's local time
	quoteTimezone   = "America/New_York" // trade times arrive in US Eastern
)

// Source selects which transport a dispatching call uses.
type Source string

const (
	SourceYQL Source = "yql"
	SourceCSV Source = "csv"
)

type contextKey int

const (
	clientContextKey contextKey = iota
)

// Client holds the per-installation settings for quote queries. Builder
// methods return a modified copy, leaving the original intact, so a
// configured Client is safe to share between requests.
type Client struct {
	env      string
	exchange string
	timezone string
	source   Source
	policy   dates.RangePolicy
}

// NewClient creates a Client with the default settings: YQL transport,
// Australian equities, 60-day history lookback.
func NewClient() *Client {
	return &Client{
		env:      DefaultEnv,
		exchange: DefaultExchange,
		timezone: DefaultTimezone,
		source:   SourceYQL,
		policy:   dates.NewRangePolicy(),
	}
}

// WithExchange sets the exchange suffix appended to stock codes.
func (c *Client) WithExchange(exchange string) *Client {
	c2 := *c
	c2.exchange = exchange
	return &c2
}

// WithTimezone sets the timezone quote times are localized into.
func (c *Client) WithTimezone(tz string) *Client {
	c2 := *c
	c2.timezone = tz
	return &c2
}

// WithSource sets the transport used by GetLatestQuote / GetQuoteHistory.
func (c *Client) WithSource(source Source) *Client {
	c2 := *c
	c2.source = source
	return &c2
}

// WithRangePolicy sets the date-range validation policy for history queries.
func (c *Client) WithRangePolicy(p dates.RangePolicy) *Client {
	c2 := *c
	c2.policy = p
	return &c2
}

// Symbol is the provider's symbol for a stock code, e.g. "BHP.AX".
func (c *Client) Symbol(code string) string {
	return code + "." + c.exchange
}

// UseClient injects the client into the context.
func UseClient(ctx context.Context, c *Client) context.Context {
	return context.WithValue(ctx, clientContextKey, c)
}

// GetClient extracts the Client from the context, if any.
func GetClient(ctx context.Context) *Client {
	c, ok := ctx.Value(clientContextKey).(*Client)
	if !ok {
		return nil
	}
	return c
}

func clientFrom(ctx context.Context) (*Client, error) {
	c := GetClient(ctx)
	if c == nil {
		return nil, errors.Reason("no client in context")
	}
	return c, nil
}

// yqlEnvelope is the outer JSON shape of a YQL response. Results is kept raw:
// it is an object for latest quotes, an array for history, and null when the
// query produced nothing.
type yqlEnvelope struct {
	Query struct {
		Results json.RawMessage `json:"results"`
	} `json:"query"`
}

func runYQL(ctx context.Context, c *Client, statement string) (json.RawMessage, error) {
	query := make(url.Values)
	query["q"] = []string{statement}
	query["env"] = []string{c.env}
	query["format"] = []string{"json"}
	var env yqlEnvelope
	if err := fetch.FetchJSON(ctx, QueryURL, &env, query, nil); err != nil {
		return nil, errors.Annotate(err, "failed to fetch URL")
	}
	return env.Query.Results, nil
}

func fetchBody(ctx context.Context, uri string, query url.Values) (string, error) {
	resp, err := fetch.GetRetry(ctx, uri, query, nil)
	if err != nil {
		return "", errors.Annotate(err, "failed to fetch URL")
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", errors.Annotate(err, "failed to read response body")
	}
	return string(body), nil
}

func isNullJSON(raw json.RawMessage) bool {
	return len(raw) == 0 || string(raw) == "null"
}

// LatestQuote fetches the latest quote for the stock code over YQL. The
// error-indicator column is always included in the query, since the response
// signals a bad symbol through it rather than through the HTTP status.
func LatestQuote(ctx context.Context, code string, spec quote.FieldSpec) (quote.Record, error) {
	c, err := clientFrom(ctx)
	if err != nil {
		return nil, err
	}
	columns, table, err := quote.Resolve(spec, LatestFields)
	if err != nil {
		return nil, errors.Annotate(err, "failed to resolve fields")
	}
	colExpr := "*"
	if !spec.IsAll() {
		withErr := columns
		found := false
		for _, col := range columns {
			if col == ErrorColumn {
				found = true
				break
			}
		}
		if !found {
			withErr = append(withErr, ErrorColumn)
		}
		colExpr = strings.Join(withErr, ",")
	}
	statement := fmt.Sprintf(
		`select %s from yahoo.finance.quotes where symbol = "%s"`,
		colExpr, c.Symbol(code))
	results, err := runYQL(ctx, c, statement)
	if err != nil {
		return nil, err
	}
	if isNullJSON(results) {
		return nil, errors.Annotate(quote.ErrProvider, "no results for %q", code)
	}
	var res struct {
		Quote map[string]*string `json:"quote"`
	}
	if err := json.Unmarshal(results, &res); err != nil {
		return nil, errors.Annotate(quote.ErrMalformed,
			"unexpected results shape: %s", err)
	}
	raw, err := quote.ParseKeyValue(res.Quote, ErrorColumn)
	if err != nil {
		return nil, errors.Annotate(err, "failed to parse quote for %q", code)
	}
	rec, err := quote.Normalize(raw, table)
	if err != nil {
		return nil, errors.Annotate(err, "failed to normalize quote for %q", code)
	}
	logging.Debugf(ctx, "fetched latest quote for %s: %d fields",
		c.Symbol(code), len(rec))
	return rec, nil
}

// LatestQuoteCSV fetches the latest quote for the stock code from the CSV
// endpoint. The response is a single comma-separated line whose values are
// positionally aligned with the requested symbol order.
func LatestQuoteCSV(ctx context.Context, code string, spec quote.FieldSpec) (quote.Record, error) {
	c, err := clientFrom(ctx)
	if err != nil {
		return nil, err
	}
	if len(code) != 3 {
		return nil, errors.Reason("stock code %q appears incorrect", code)
	}
	columns, table, err := quote.Resolve(spec, CSVLatestFields)
	if err != nil {
		return nil, errors.Annotate(err, "failed to resolve fields")
	}
	query := make(url.Values)
	query["s"] = []string{c.Symbol(code)}
	query["f"] = []string{strings.Join(columns, "")}
	body, err := fetchBody(ctx, CSVQuoteURL, query)
	if err != nil {
		return nil, err
	}
	raw, err := quote.ParseCSVRow(body, table)
	if err != nil {
		return nil, errors.Annotate(err, "failed to parse quote for %q", code)
	}
	rec, err := quote.Normalize(raw, table)
	if err != nil {
		return nil, errors.Annotate(err, "failed to normalize quote for %q", code)
	}
	logging.Debugf(ctx, "fetched latest CSV quote for %s: %d fields",
		c.Symbol(code), len(rec))
	return rec, nil
}

// QuoteHistory fetches daily history rows for the stock code over YQL. The
// date range is validated first; its elements may be dates.Date values,
// YYYY-MM-DD strings, or nil for the defaults. Rows are returned in provider
// order, which in practice is newest first.
func QuoteHistory(ctx context.Context, code string, dateRange interface{}, spec quote.FieldSpec) ([]quote.Record, error) {
	c, err := clientFrom(ctx)
	if err != nil {
		return nil, err
	}
	r, err := c.policy.Validate(dateRange)
	if err != nil {
		return nil, errors.Annotate(err, "invalid date range")
	}
	_, table, err := quote.Resolve(spec, HistoryFields)
	if err != nil {
		return nil, errors.Annotate(err, "failed to resolve fields")
	}
	statement := fmt.Sprintf(
		`select * from yahoo.finance.historicaldata where symbol = "%s" and startDate = "%s" and endDate = "%s"`,
		c.Symbol(code), r.Start, r.End)
	results, err := runYQL(ctx, c, statement)
	if err != nil {
		return nil, err
	}
	if isNullJSON(results) {
		return nil, errors.Annotate(quote.ErrProvider, "no results")
	}
	var res struct {
		Quote []map[string]*string `json:"quote"`
	}
	if err := json.Unmarshal(results, &res); err != nil {
		return nil, errors.Annotate(quote.ErrMalformed,
			"unexpected results shape: %s", err)
	}
	raws, err := quote.ParseKeyValueRows(res.Quote)
	if err != nil {
		return nil, errors.Annotate(err, "failed to parse history for %q", code)
	}
	recs, err := quote.NormalizeAll(raws, table)
	if err != nil {
		return nil, errors.Annotate(err, "failed to normalize history for %q", code)
	}
	logging.Debugf(ctx, "fetched %d history rows for %s over %s",
		len(recs), c.Symbol(code), r)
	return recs, nil
}

// QuoteHistoryCSV fetches daily history rows for the stock code from the CSV
// endpoint: header-led CSV, filtered to the requested fields during
// normalization. The endpoint counts months from zero in its query
// parameters.
func QuoteHistoryCSV(ctx context.Context, code string, dateRange interface{}, spec quote.FieldSpec) ([]quote.Record, error) {
	c, err := clientFrom(ctx)
	if err != nil {
		return nil, err
	}
	r, err := c.policy.Validate(dateRange)
	if err != nil {
		return nil, errors.Annotate(err, "invalid date range")
	}
	_, table, err := quote.Resolve(spec, CSVHistoryFields)
	if err != nil {
		return nil, errors.Annotate(err, "failed to resolve fields")
	}
	query := make(url.Values)
	query["s"] = []string{c.Symbol(code)}
	query["a"] = []string{fmt.Sprintf("%d", int(r.Start.Month())-1)}
	query["b"] = []string{fmt.Sprintf("%d", r.Start.Day())}
	query["c"] = []string{fmt.Sprintf("%d", r.Start.Year())}
	query["d"] = []string{fmt.Sprintf("%d", int(r.End.Month())-1)}
	query["e"] = []string{fmt.Sprintf("%d", r.End.Day())}
	query["f"] = []string{fmt.Sprintf("%d", r.End.Year())}
	query["g"] = []string{"d"}
	query["ignore"] = []string{".csv"}
	body, err := fetchBody(ctx, CSVHistoryURL, query)
	if err != nil {
		return nil, err
	}
	raws, err := quote.ParseCSVTable(body)
	if err != nil {
		return nil, errors.Annotate(err, "failed to parse history for %q", code)
	}
	recs, err := quote.NormalizeAll(raws, table)
	if err != nil {
		return nil, errors.Annotate(err, "failed to normalize history for %q", code)
	}
	logging.Debugf(ctx, "fetched %d history rows for %s over %s",
		len(recs), c.Symbol(code), r)
	return recs, nil
}

// GetLatestQuote fetches the latest quote over the client's configured
// transport.
func GetLatestQuote(ctx context.Context, code string, spec quote.FieldSpec) (quote.Record, error) {
	c, err := clientFrom(ctx)
	if err != nil {
		return nil, err
	}
	switch c.source {
	case SourceCSV:
		return LatestQuoteCSV(ctx, code, spec)
	default:
		return LatestQuote(ctx, code, spec)
	}
}

// GetQuoteHistory fetches daily history over the client's configured
// transport.
func GetQuoteHistory(ctx context.Context, code string, dateRange interface{}, spec quote.FieldSpec) ([]quote.Record, error) {
	c, err := clientFrom(ctx)
	if err != nil {
		return nil, err
	}
	switch c.source {
	case SourceCSV:
		return QuoteHistoryCSV(ctx, code, dateRange, spec)
	default:
		return QuoteHistory(ctx, code, dateRange, spec)
	}
}

// ValidateDateRange validates a raw date range with the client's policy
// without issuing any query, for callers that want to pre-validate input.
func ValidateDateRange(ctx context.Context, dateRange interface{}) (dates.DateRange, error) {
	c, err := clientFrom(ctx)
	if err != nil {
		return dates.DateRange{}, err
	}
	return c.policy.Validate(dateRange)
}

// LocalizeQuoteTime combines a quote's trade date and time, which the
// provider reports in US Eastern wall-clock, into a single moment expressed
// in the client's exchange timezone.
func (c *Client) LocalizeQuoteTime(d dates.Date, t dates.TimeOfDay) (time.Time, error) {
	src, err := time.LoadLocation(quoteTimezone)
	if err != nil {
		return time.Time{}, errors.Annotate(err, "failed to load timezone %s", quoteTimezone)
	}
	dst, err := time.LoadLocation(c.timezone)
	if err != nil {
		return time.Time{}, errors.Annotate(err, "failed to load timezone %s", c.timezone)
	}
	tm := time.Date(int(d.Year()), time.Month(d.Month()), int(d.Day()),
		int(t.Hour()), int(t.Minute()), int(t.Second()), int(t.Micro())*1000, src)
	return tm.In(dst), nil
}
