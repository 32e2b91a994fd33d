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

package yahoo

import (
	"time"

	"github.com/stockparfait/errors"

	"github.com/ozquote/ozquote/dates"
	"github.com/ozquote/ozquote/quote"
)

// ErrorColumn is the YQL quote column carrying the success/failure signal of
// a latest-quote query. It is always added to the requested columns, since a
// response is only trustworthy once this field is known to be null.
const ErrorColumn = "ErrorIndicationreturnedforsymbolchangedinvalid"

// LatestFields is the registry for latest quotes from the YQL
// yahoo.finance.quotes table.
var LatestFields = quote.NewRegistry(
	quote.Entry{Token: "Name", Field: quote.Field{Name: "Name", Decode: quote.DecodeString}},
	quote.Entry{Token: "LastTradeDate", Field: quote.Field{Name: "Date", Decode: decodeTradeDate}},
	quote.Entry{Token: "LastTradeTime", Field: quote.Field{Name: "Time", Decode: decodeTradeTime}},
	quote.Entry{Token: "LastTradePriceOnly", Field: quote.Field{Name: "Close", Decode: quote.DecodeDecimal}},
	quote.Entry{Token: "StockExchange", Field: quote.Field{Name: "Exchange", Decode: quote.DecodeString}},
	quote.Entry{Token: "Symbol", Field: quote.Field{Name: "Code", Decode: quote.DecodeString}},
	quote.Entry{Token: "Volume", Field: quote.Field{Name: "Volume", Decode: quote.DecodeDecimal}},
)

// CSVLatestFields is the registry for latest quotes from the CSV quote
// endpoint, keyed by its compact symbol tokens.
var CSVLatestFields = quote.NewRegistry(
	quote.Entry{Token: "d1", Field: quote.Field{Name: "Date", Decode: decodeTradeDate}},
	quote.Entry{Token: "g", Field: quote.Field{Name: "Low", Decode: quote.DecodeDecimal}},
	quote.Entry{Token: "h", Field: quote.Field{Name: "High", Decode: quote.DecodeDecimal}},
	quote.Entry{Token: "l1", Field: quote.Field{Name: "Close", Decode: quote.DecodeDecimal}},
	quote.Entry{Token: "n", Field: quote.Field{Name: "Name", Decode: quote.DecodeString}},
	quote.Entry{Token: "o", Field: quote.Field{Name: "Open", Decode: quote.DecodeDecimal}},
	quote.Entry{Token: "s", Field: quote.Field{Name: "Code", Decode: quote.DecodeString}},
	quote.Entry{Token: "t1", Field: quote.Field{Name: "Time", Decode: decodeTradeTime}},
	quote.Entry{Token: "v", Field: quote.Field{Name: "Volume", Decode: quote.DecodeDecimal}},
	quote.Entry{Token: "x", Field: quote.Field{Name: "Exchange", Decode: quote.DecodeString}},
)

// HistoryFields is the registry for the YQL yahoo.finance.historicaldata
// table. Note the underscore in the adjusted close token; the CSV endpoint
// spells it with a space.
var HistoryFields = quote.NewRegistry(
	quote.Entry{Token: "Date", Field: quote.Field{Name: "Date", Decode: decodeHistoryDate}},
	quote.Entry{Token: "Open", Field: quote.Field{Name: "Open", Decode: quote.DecodeDecimal}},
	quote.Entry{Token: "High", Field: quote.Field{Name: "High", Decode: quote.DecodeDecimal}},
	quote.Entry{Token: "Low", Field: quote.Field{Name: "Low", Decode: quote.DecodeDecimal}},
	quote.Entry{Token: "Close", Field: quote.Field{Name: "Close", Decode: quote.DecodeDecimal}},
	quote.Entry{Token: "Volume", Field: quote.Field{Name: "Volume", Decode: quote.DecodeDecimal}},
	quote.Entry{Token: "Adj_Close", Field: quote.Field{Name: "Adj Close", Decode: quote.DecodeDecimal}},
)

// CSVHistoryFields is the registry for the CSV history endpoint.
var CSVHistoryFields = quote.NewRegistry(
	quote.Entry{Token: "Date", Field: quote.Field{Name: "Date", Decode: decodeHistoryDate}},
	quote.Entry{Token: "Open", Field: quote.Field{Name: "Open", Decode: quote.DecodeDecimal}},
	quote.Entry{Token: "High", Field: quote.Field{Name: "High", Decode: quote.DecodeDecimal}},
	quote.Entry{Token: "Low", Field: quote.Field{Name: "Low", Decode: quote.DecodeDecimal}},
	quote.Entry{Token: "Close", Field: quote.Field{Name: "Close", Decode: quote.DecodeDecimal}},
	quote.Entry{Token: "Volume", Field: quote.Field{Name: "Volume", Decode: quote.DecodeDecimal}},
	quote.Entry{Token: "Adj Close", Field: quote.Field{Name: "Adj Close", Decode: quote.DecodeDecimal}},
)

// decodeTradeDate parses the provider's m/d/Y trade dates, e.g. "4/12/2013".
func decodeTradeDate(s string) (interface{}, error) {
	t, err := time.Parse("1/2/2006", s)
	if err != nil {
		return nil, errors.Annotate(err, "not an m/d/Y date: %q", s)
	}
	return dates.NewDateFromTime(t), nil
}

// decodeTradeTime parses the provider's 12-hour trade times, e.g. "4:00pm".
// The am/pm marker arrives in either case depending on the endpoint.
func decodeTradeTime(s string) (interface{}, error) {
	var err error
	for _, layout := range []string{"3:04pm", "3:04PM"} {
		var t time.Time
		t, err = time.Parse(layout, s)
		if err == nil {
			return dates.NewTimeOfDayFromTime(t), nil
		}
	}
	return nil, errors.Annotate(err, "not an h:mm am/pm time: %q", s)
}

// decodeHistoryDate parses the YYYY-MM-DD dates of history rows.
func decodeHistoryDate(s string) (interface{}, error) {
	d, ok := dates.ParseDate(s)
	if !ok {
		return nil, errors.Reason("not a YYYY-MM-DD date: %q", s)
	}
	return d, nil
}
