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

// Package quote implements the field-mapping engine that turns raw provider
// quote data into provider-agnostic typed records. A provider binding supplies
// a Registry per response format; a request resolves a FieldSpec against the
// registry into query columns plus a DecodeTable, and the raw response is
// parsed and normalized through that table.
package quote

import (
	"github.com/shopspring/decimal"
	"github.com/stockparfait/errors"
)

// Failure kinds, distinguishable with errors.Is.
var (
	// ErrUnknownField: a requested field name or provider token is not in the
	// registry.
	ErrUnknownField = errors.Reason("unknown field")
	// ErrProvider: the provider signalled an error inside an otherwise
	// successful response.
	ErrProvider = errors.Reason("provider error")
	// ErrMalformed: the raw response does not match the expected shape or
	// field types for its format.
	ErrMalformed = errors.Reason("malformed response")
	// ErrEmptyFieldSpec: normalization was attempted without a decode table;
	// the caller forgot to resolve fields first.
	ErrEmptyFieldSpec = errors.Reason("empty field spec")
)

// Decoder converts a raw provider string into a typed value: a string, a
// Decimal, a dates.Date or a dates.TimeOfDay.
type Decoder func(string) (interface{}, error)

// Field is a logical, provider-agnostic field: its caller-visible name and the
// decoder for its raw values.
type Field struct {
	Name   string
	Decode Decoder
}

// Entry binds a provider token to its logical field in a Registry.
type Entry struct {
	Token string
	Field Field
}

// Registry is an immutable bidirectional table between provider tokens and
// logical fields for one (provider, format) combination. Registries are built
// once from static entries and may be shared freely between requests.
type Registry struct {
	tokens []string          // registration order
	fields map[string]Field  // token -> field
	names  map[string]string // logical name -> token
}

// NewRegistry builds a Registry from static entries. Both tokens and logical
// names must be unique; the tables are hand-written, so a duplicate is a bug
// and panics.
func NewRegistry(entries ...Entry) *Registry {
	r := &Registry{
		fields: make(map[string]Field, len(entries)),
		names:  make(map[string]string, len(entries)),
	}
	for _, e := range entries {
		if _, ok := r.fields[e.Token]; ok {
			panic(errors.Reason("duplicate token %q in registry", e.Token))
		}
		if _, ok := r.names[e.Field.Name]; ok {
			panic(errors.Reason("duplicate field name %q in registry", e.Field.Name))
		}
		r.tokens = append(r.tokens, e.Token)
		r.fields[e.Token] = e.Field
		r.names[e.Field.Name] = e.Token
	}
	return r
}

// ByToken looks up the logical field for a provider token.
func (r *Registry) ByToken(token string) (Field, error) {
	f, ok := r.fields[token]
	if !ok {
		return Field{}, errors.Annotate(ErrUnknownField,
			"token %q is not known or unhandled", token)
	}
	return f, nil
}

// ByName looks up the provider token for a logical field name.
func (r *Registry) ByName(name string) (string, error) {
	token, ok := r.names[name]
	if !ok {
		return "", errors.Annotate(ErrUnknownField,
			"field %q is not known or unhandled", name)
	}
	return token, nil
}

// Tokens lists every provider token in registration order.
func (r *Registry) Tokens() []string {
	tokens := make([]string, len(r.tokens))
	copy(tokens, r.tokens)
	return tokens
}

// Len is the number of registered fields.
func (r *Registry) Len() int { return len(r.tokens) }

// FieldSpec selects the logical fields for one request: either every field a
// registry knows, or an explicit ordered list of names.
type FieldSpec struct {
	names []string
	all   bool
}

// All selects every field of the registry.
func All() FieldSpec { return FieldSpec{all: true} }

// Fields selects the given logical names, in order.
func Fields(names ...string) FieldSpec { return FieldSpec{names: names} }

// IsAll reports whether the spec is the all-fields sentinel.
func (s FieldSpec) IsAll() bool { return s.all }

// Names of the explicitly selected fields; nil for the all-fields sentinel.
func (s FieldSpec) Names() []string { return s.names }

// DecodeTable is the request-scoped subset of a Registry selected by a
// FieldSpec. It is keyed by provider token, and additionally ordered by the
// request order for formats whose responses are positional.
type DecodeTable struct {
	tokens []string
	fields map[string]Field
}

// Len is the number of selected fields.
func (t *DecodeTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.tokens)
}

// Field looks up the logical field of a provider token, if selected.
func (t *DecodeTable) Field(token string) (Field, bool) {
	if t == nil {
		return Field{}, false
	}
	f, ok := t.fields[token]
	return f, ok
}

// Token is the i'th provider token in request order.
func (t *DecodeTable) Token(i int) string { return t.tokens[i] }

// Tokens lists the selected provider tokens in request order.
func (t *DecodeTable) Tokens() []string {
	tokens := make([]string, len(t.tokens))
	copy(tokens, t.tokens)
	return tokens
}

// Names lists the selected logical names in request order.
func (t *DecodeTable) Names() []string {
	names := make([]string, 0, t.Len())
	for _, token := range t.tokens {
		names = append(names, t.fields[token].Name)
	}
	return names
}

func (t *DecodeTable) add(token string, f Field) {
	if _, ok := t.fields[token]; ok {
		return
	}
	t.tokens = append(t.tokens, token)
	t.fields[token] = f
}

// Resolve translates a FieldSpec into the provider query columns and the
// decode table for one request. Query columns preserve the caller's requested
// order. A requested name with no registered token fails with ErrUnknownField.
func Resolve(spec FieldSpec, reg *Registry) ([]string, *DecodeTable, error) {
	table := &DecodeTable{fields: make(map[string]Field)}
	if spec.IsAll() {
		for _, token := range reg.tokens {
			table.add(token, reg.fields[token])
		}
		return reg.Tokens(), table, nil
	}
	columns := make([]string, 0, len(spec.names))
	for _, name := range spec.names {
		token, err := reg.ByName(name)
		if err != nil {
			return nil, nil, err
		}
		columns = append(columns, token)
		table.add(token, reg.fields[token])
	}
	return columns, table, nil
}

// DecodeString is the identity decoder for text fields.
func DecodeString(s string) (interface{}, error) { return s, nil }

// Decimal is an exact decimal value that renders with the scale of its source
// text. The underlying library keeps the exponent but its String trims
// trailing zeros, so "3.330" would render as "3.33" without this wrapper.
type Decimal struct {
	decimal.Decimal
}

// String renders the value with its original scale: "3.330" round-trips
// as "3.330".
func (d Decimal) String() string {
	if d.Exponent() < 0 {
		return d.StringFixed(-d.Exponent())
	}
	return d.Decimal.String()
}

// DecodeDecimal decodes an exact decimal value, preserving the precision and
// scale of the input (a trailing zero survives a round trip).
func DecodeDecimal(s string) (interface{}, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, errors.Annotate(err, "not a decimal number: %q", s)
	}
	return Decimal{d}, nil
}
