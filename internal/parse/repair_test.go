package parse

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRepairQuotes(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"single quotes", `{'title': 'Ninja'}`, `{"title": "Ninja"}`},
		{"smart quotes", `{“title”: “Ninja”}`, `{"title": "Ninja"}`},
		{"apostrophe in value", `{'title': 'Ninja's Run'}`, `{"title": "Ninja's Run"}`},
		{"raw newline", "{\"title\": \"a\nb\"}", `{"title": "a\nb"}`},
		{"double quote inside single", `{'t': 'say "hi"'}`, `{"t": "say \"hi\""}`},
		{"unterminated", `{"title": "Nin`, `{"title": "Nin"`},
		{"untouched", `{"a": [1, 2]}`, `{"a": [1, 2]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RepairQuotes(tt.in))
		})
	}
}

func TestRepairCommas(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{`{"a": 1 "b": 2}`, `{"a": 1 ,"b": 2}`},
		{`[{"a": 1} {"b": 2}]`, `[{"a": 1} ,{"b": 2}]`},
		{`["x" "y"]`, `["x" ,"y"]`},
		{`{"a": 1, "b": [true false]}`, `{"a": 1, "b": [true ,false]}`},
		{`{"a": 1, "b": 2}`, `{"a": 1, "b": 2}`},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, RepairCommas(tt.in), tt.in)
	}
}

func TestBalanceBrackets(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"missing closers", `{"a": [1, 2`, `{"a": [1, 2]}`},
		{"stray closer", `{"a": 1}}`, `{"a": 1}`},
		{"mismatched closer", `{"a": [1, 2}`, `{"a": [1, 2]}`},
		{"dangling comma", `{"a": 1,`, `{"a": 1}`},
		{"dangling key", `{"a": 1, "b"`, `{"a": 1}`},
		{"dangling colon", `{"a": 1, "b":`, `{"a": 1, "b":null}`},
		{"open string", `{"a": "xy`, `{"a": "xy"}`},
		{"braces in string", `{"a": "}{"`, `{"a": "}{"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, BalanceBrackets(tt.in))
		})
	}
}

func TestBalanceBracketsDeepNesting(t *testing.T) {
	const n = 100_000
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"balanced", strings.Repeat("[", n) + strings.Repeat("]", n), strings.Repeat("[", n) + strings.Repeat("]", n)},
		{"stray closers", strings.Repeat("[", n) + strings.Repeat("}", n), strings.Repeat("[", n) + strings.Repeat("]", n)},
		{"mismatched closers", strings.Repeat("{[", n) + strings.Repeat("}", n), strings.Repeat("{[", n) + strings.Repeat("]}", n)},
		{"truncated", strings.Repeat(`{"a":[`, n), strings.Repeat(`{"a":[`, n) + strings.Repeat("]}", n)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, BalanceBrackets(tt.in))
		})
	}
}

func TestQuoteKeys(t *testing.T) {
	assert.Equal(t, `{"title": "x", "game_type": "racing"}`, QuoteKeys(`{title: "x", game_type: "racing"}`))
	assert.Equal(t, `{"a": "b: c"}`, QuoteKeys(`{"a": "b: c"}`))
	assert.Equal(t, `{"a": true, "b": null}`, QuoteKeys(`{"a": true, b: null}`))
}

func TestStripComments(t *testing.T) {
	in := "{\n  // the title\n  \"title\": \"a // b\", /* gone */ \"x\": 1\n}"
	out := StripComments(in)
	var v map[string]any
	assert.NoError(t, json.Unmarshal([]byte(out), &v))
	assert.Equal(t, "a // b", v["title"])
}

func TestStripTrailingCommas(t *testing.T) {
	assert.Equal(t, `{"a": [1, 2], "b": "x,}"}`, StripTrailingCommas(`{"a": [1, 2,], "b": "x,}",}`))
}

func TestStrategiesOrder(t *testing.T) {
	var names []string
	for _, s := range Strategies() {
		names = append(names, s.Name)
	}
	assert.Equal(t, []string{
		"quote repair", "comma repair", "bracket balancing",
		"unquoted-key quoting", "comment removal", "trailing-comma removal",
	}, names)

	first := Strategies()
	first[0].Name = "changed"
	assert.Equal(t, "quote repair", Strategies()[0].Name)
}

// Every strategy must leave well-formed JSON alone.
func TestStrategiesKeepValidJSON(t *testing.T) {
	valid := `{"title": "It's \"fine\"", "n": [1, 2.5, -3e2], "o": {"k": null, "b": true}}`
	for _, s := range Strategies() {
		assert.Equal(t, valid, s.Apply(valid), s.Name)
	}
}
