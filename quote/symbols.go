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

// SplitSymbols splits a compact CSV symbol string into individual tokens. A
// token is a letter optionally followed by one digit, so a digit always
// attaches to the preceding character: "ohgl1v" -> o, h, g, l1, v. Unknown
// tokens are not rejected here; they surface later as registry lookup
// failures.
func SplitSymbols(s string) []string {
	tokens := []string{}
	for _, r := range s {
		if r >= '0' && r <= '9' && len(tokens) > 0 {
			tokens[len(tokens)-1] += string(r)
			continue
		}
		tokens = append(tokens, string(r))
	}
	return tokens
}

// FieldsFromSymbols builds a FieldSpec from a compact symbol string, resolving
// each token to its logical name through the registry. A token the registry
// does not know fails with ErrUnknownField.
func FieldsFromSymbols(s string, reg *Registry) (FieldSpec, error) {
	tokens := SplitSymbols(s)
	names := make([]string, 0, len(tokens))
	for _, token := range tokens {
		f, err := reg.ByToken(token)
		if err != nil {
			return FieldSpec{}, err
		}
		names = append(names, f.Name)
	}
	return Fields(names...), nil
}
