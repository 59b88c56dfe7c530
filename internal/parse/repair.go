package parse

import (
	"bytes"
	"slices"
	"strings"
	"unicode/utf8"
)

// Strategy is a pure text transformation aimed at one class of malformation.
type Strategy struct {
	Name  string
	Apply func(string) string
}

// Strategies returns the repair strategies in the order the stage parser
// applies them. Each call returns a fresh slice.
func Strategies() []Strategy {
	return []Strategy{
		{Name: "quote repair", Apply: RepairQuotes},
		{Name: "comma repair", Apply: RepairCommas},
		{Name: "bracket balancing", Apply: BalanceBrackets},
		{Name: "unquoted-key quoting", Apply: QuoteKeys},
		{Name: "comment removal", Apply: StripComments},
		{Name: "trailing-comma removal", Apply: StripTrailingCommas},
	}
}

// skipString returns the index just past the double-quoted string starting at
// s[i], or len(s) if it is never closed.
func skipString(s string, i int) int {
	for j := i + 1; j < len(s); j++ {
		switch s[j] {
		case '\\':
			j++
		case '"':
			return j + 1
		}
	}
	return len(s)
}

// skipComment returns the index just past a // or /* */ comment starting at
// s[i]. ok is false when no comment starts there.
func skipComment(s string, i int) (end int, ok bool) {
	if i+1 >= len(s) || s[i] != '/' {
		return i, false
	}
	switch s[i+1] {
	case '/':
		if nl := strings.IndexByte(s[i:], '\n'); nl >= 0 {
			return i + nl, true
		}
		return len(s), true
	case '*':
		if end := strings.Index(s[i+2:], "*/"); end >= 0 {
			return i + 2 + end + 2, true
		}
		return len(s), true
	}
	return i, false
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

// isWordByte reports bytes that can be part of a bare token: numbers,
// literals and unquoted keys. Bytes >= 0x80 belong to multi-byte runes.
func isWordByte(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' ||
		c == '_' || c == '-' || c == '+' || c == '.' || c == '$' || c >= 0x80
}

func isKeyStart(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c == '_' || c == '$' || c >= 0x80
}

// RepairQuotes converts single-quoted and typographic-quoted strings to
// double-quoted ones, escapes raw control characters inside strings and closes
// a string left open at the end of the text.
func RepairQuotes(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 8)

	const (
		outside = iota
		inDouble
		inSingle
	)
	state := outside
	smartOpened := false
	var prev byte // last significant byte written outside strings

	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		switch state {
		case outside:
			switch {
			case r == '"' || r == '“' || r == '”':
				b.WriteByte('"')
				state, smartOpened = inDouble, r != '"'
			case (r == '\'' || r == '‘') && opensValue(prev):
				b.WriteByte('"')
				state = inSingle
			default:
				b.WriteRune(r)
				if r < utf8.RuneSelf && !isSpace(byte(r)) {
					prev = byte(r)
				}
			}
		case inDouble:
			switch {
			case r == '\\' && i+1 < len(s):
				_, n := utf8.DecodeRuneInString(s[i+1:])
				b.WriteString(s[i : i+1+n])
				i += 1 + n
				continue
			case r == '"' || smartOpened && (r == '”' || r == '“'):
				b.WriteByte('"')
				state, prev = outside, '"'
			default:
				writeStringRune(&b, r)
			}
		case inSingle:
			switch {
			case r == '\\' && i+1 < len(s):
				_, n := utf8.DecodeRuneInString(s[i+1:])
				if s[i+1] == '\'' {
					b.WriteByte('\'')
				} else {
					b.WriteString(s[i : i+1+n])
				}
				i += 1 + n
				continue
			case (r == '\'' || r == '’') && closesSingle(s, i+size):
				b.WriteByte('"')
				state, prev = outside, '"'
			case r == '"':
				b.WriteString(`\"`)
			default:
				writeStringRune(&b, r)
			}
		}
		i += size
	}

	out := b.String()
	if state != outside {
		if strings.HasSuffix(out, `\`) && !strings.HasSuffix(out, `\\`) {
			out = out[:len(out)-1]
		}
		out += `"`
	}
	return out
}

// opensValue reports whether a quote following prev starts a key or value
// rather than being an apostrophe inside a bare word.
func opensValue(prev byte) bool {
	switch prev {
	case 0, '{', '[', ',', ':':
		return true
	}
	return false
}

// closesSingle reports whether the text after a single quote looks like the
// end of a string: a delimiter or the end of input.
func closesSingle(s string, i int) bool {
	for ; i < len(s); i++ {
		if isSpace(s[i]) {
			continue
		}
		switch s[i] {
		case ',', '}', ']', ':':
			return true
		}
		return false
	}
	return true
}

func writeStringRune(b *strings.Builder, r rune) {
	switch r {
	case '\n':
		b.WriteString(`\n`)
	case '\r':
		b.WriteString(`\r`)
	case '\t':
		b.WriteString(`\t`)
	default:
		b.WriteRune(r)
	}
}

// RepairCommas inserts the comma missing between two adjacent values, such as
// `"a": 1 "b": 2` or `} {`.
func RepairCommas(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 8)
	valueEnded := false

	for i := 0; i < len(s); {
		c := s[i]
		if end, ok := skipComment(s, i); ok {
			b.WriteString(s[i:end])
			i = end
			continue
		}
		switch {
		case c == '"':
			end := skipString(s, i)
			if valueEnded {
				b.WriteByte(',')
			}
			b.WriteString(s[i:end])
			i, valueEnded = end, true
			continue
		case c == '{' || c == '[':
			if valueEnded {
				b.WriteByte(',')
			}
			valueEnded = false
		case c == '}' || c == ']':
			valueEnded = true
		case isSpace(c):
		case isWordByte(c):
			j := i
			for j < len(s) && isWordByte(s[j]) {
				j++
			}
			if valueEnded {
				b.WriteByte(',')
			}
			b.WriteString(s[i:j])
			i, valueEnded = j, true
			continue
		default:
			valueEnded = false
		}
		b.WriteByte(c)
		i++
	}
	return b.String()
}

// BalanceBrackets drops stray closers, closes brackets that a mismatched closer
// skips over, and appends the closers missing at the end of truncated text.
func BalanceBrackets(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 8)
	var stack []byte
	// open counts the stack entries of each closer, so stray closers are
	// dropped without scanning the stack.
	open := map[byte]int{}
	inString, escaped := false, false

	for i := 0; i < len(s); i++ {
		c := s[i]
		if inString {
			b.WriteByte(c)
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			stack = append(stack, '}')
			open['}']++
		case '[':
			stack = append(stack, ']')
			open[']']++
		case '}', ']':
			if open[c] == 0 {
				continue
			}
			idx := bytes.LastIndexByte(stack, c)
			for _, closer := range slices.Backward(stack[idx+1:]) {
				b.WriteByte(closer)
				open[closer]--
			}
			stack = stack[:idx]
			open[c]--
		}
		b.WriteByte(c)
	}

	out := b.String()
	if inString {
		if escaped {
			out = out[:len(out)-1]
		}
		out += `"`
	}
	if len(stack) == 0 {
		return out
	}
	out = trimDangling(out, stack[len(stack)-1])
	slices.Reverse(stack)
	return out + string(stack)
}

// trimDangling removes a trailing comma or an object key left without a value,
// and completes a trailing colon with null, so closers can be appended.
func trimDangling(s string, closer byte) string {
	for {
		s = strings.TrimRight(s, " \t\r\n")
		switch {
		case strings.HasSuffix(s, ","):
			s = s[:len(s)-1]
			continue
		case strings.HasSuffix(s, ":"):
			return s + "null"
		case closer == '}' && strings.HasSuffix(s, `"`):
			start := stringStart(s)
			if start < 0 {
				return s
			}
			before := strings.TrimRight(s[:start], " \t\r\n")
			if strings.HasSuffix(before, ",") || strings.HasSuffix(before, "{") {
				s = before
				continue
			}
		}
		return s
	}
}

// stringStart returns the index of the opening quote of the string that ends
// s, or -1.
func stringStart(s string) int {
	for i := len(s) - 2; i >= 0; i-- {
		if s[i] != '"' {
			continue
		}
		backslashes := 0
		for j := i - 1; j >= 0 && s[j] == '\\'; j-- {
			backslashes++
		}
		if backslashes%2 == 0 {
			return i
		}
	}
	return -1
}

// QuoteKeys wraps bare object keys in double quotes: {title: "x"} becomes
// {"title": "x"}.
func QuoteKeys(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 16)
	var prev byte

	for i := 0; i < len(s); {
		c := s[i]
		if end, ok := skipComment(s, i); ok {
			b.WriteString(s[i:end])
			i = end
			continue
		}
		switch {
		case c == '"':
			end := skipString(s, i)
			b.WriteString(s[i:end])
			i, prev = end, '"'
			continue
		case isKeyStart(c) && (prev == '{' || prev == ','):
			j := i
			for j < len(s) && (isKeyStart(s[j]) || s[j] >= '0' && s[j] <= '9' || s[j] == '-') {
				j++
			}
			k := j
			for k < len(s) && isSpace(s[k]) {
				k++
			}
			if k < len(s) && s[k] == ':' {
				b.WriteByte('"')
				b.WriteString(s[i:j])
				b.WriteByte('"')
			} else {
				b.WriteString(s[i:j])
			}
			i, prev = j, 'w'
			continue
		}
		if !isSpace(c) {
			prev = c
		}
		b.WriteByte(c)
		i++
	}
	return b.String()
}

// StripComments removes // line comments and /* block */ comments outside
// strings.
func StripComments(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); {
		if s[i] == '"' {
			end := skipString(s, i)
			b.WriteString(s[i:end])
			i = end
			continue
		}
		if end, ok := skipComment(s, i); ok {
			i = end
			continue
		}
		b.WriteByte(s[i])
		i++
	}
	return b.String()
}

// StripTrailingCommas removes commas directly followed by a closing brace or
// bracket.
func StripTrailingCommas(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); {
		c := s[i]
		if c == '"' {
			end := skipString(s, i)
			b.WriteString(s[i:end])
			i = end
			continue
		}
		if c == ',' {
			j := i + 1
			for j < len(s) && isSpace(s[j]) {
				j++
			}
			if j < len(s) && (s[j] == '}' || s[j] == ']') {
				i++
				continue
			}
		}
		b.WriteByte(c)
		i++
	}
	return b.String()
}
