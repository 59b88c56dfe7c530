// Package parse turns raw generator text into an untyped candidate tree. It
// tries progressively more forgiving stages and, when none works, extracts
// whatever individual fields it can recognize.
package parse

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Stage identifies which parse attempt produced a candidate.
type Stage int

const (
	StageDirect Stage = iota + 1
	StageFenced
	StageBraces
	StageRepair
	StageYAML
)

func (s Stage) String() string {
	switch s {
	case StageDirect:
		return "direct"
	case StageFenced:
		return "fenced block"
	case StageBraces:
		return "brace extraction"
	case StageRepair:
		return "repair"
	case StageYAML:
		return "yaml"
	}
	return fmt.Sprintf("stage(%d)", int(s))
}

// Result is a successfully parsed candidate.
type Result struct {
	// Candidate is the untyped object tree, before any domain typing.
	Candidate map[string]any
	Stage     Stage
	// Strategy names the repair whose re-parse succeeded (StageRepair only).
	Strategy string
	// Applied lists every repair that changed the text, in order.
	Applied []string
}

// StageParseFailure is returned when every stage fails.
type StageParseFailure struct {
	Original string
	// Furthest is the most-repaired text the parser produced.
	Furthest string
	Err      error
}

func (f *StageParseFailure) Error() string {
	return fmt.Sprintf("no parse stage produced a specification: %v", f.Err)
}

func (f *StageParseFailure) Unwrap() error { return f.Err }

var (
	errEmpty      = errors.New("empty input")
	errNotObject  = errors.New("top-level value is not an object")
	errNoKnownKey = errors.New("document has no specification keys")

	fencedBlock = regexp.MustCompile("(?s)```[\\w+-]*[ \\t]*\\r?\\n?(.*?)```")
	inlineSpan  = regexp.MustCompile("`([^`]+)`")
)

// knownKeys are the top-level keys that identify a specification document.
var knownKeys = []string{"title", "description", "gameType", "entities", "levels", "gameLogic"}

// Parse runs the stages in order and returns the first candidate that parses.
func Parse(raw string) (*Result, error) {
	if obj, err := decodeObject(raw); err == nil {
		return &Result{Candidate: obj, Stage: StageDirect}, nil
	}

	if block, ok := fenced(raw); ok {
		if obj, err := decodeObject(block); err == nil {
			return &Result{Candidate: obj, Stage: StageFenced}, nil
		}
	}

	if span, ok := braceSpan(raw); ok {
		if obj, err := decodeObject(span); err == nil {
			return &Result{Candidate: obj, Stage: StageBraces}, nil
		}
	}

	current := repairStart(raw)
	var applied []string
	_, lastErr := decodeObject(current)
	for _, st := range Strategies() {
		next := st.Apply(current)
		if next == current {
			continue
		}
		applied = append(applied, st.Name)
		current = next
		obj, err := decodeObject(current)
		if err == nil {
			return &Result{Candidate: obj, Stage: StageRepair, Strategy: st.Name, Applied: applied}, nil
		}
		lastErr = err
	}

	yamlSource := raw
	if block, ok := fenced(raw); ok {
		yamlSource = block
	}
	if obj, err := decodeYAML(yamlSource); err == nil {
		return &Result{Candidate: obj, Stage: StageYAML}, nil
	}

	return nil, &StageParseFailure{Original: raw, Furthest: current, Err: lastErr}
}

func decodeObject(text string) (map[string]any, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, errEmpty
	}
	var v any
	if err := json.Unmarshal([]byte(text), &v); err != nil {
		return nil, err
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, errNotObject
	}
	return obj, nil
}

// fenced returns the content of the first ``` block, or of the first inline
// `span` when there is no block.
func fenced(text string) (string, bool) {
	if m := fencedBlock.FindStringSubmatch(text); m != nil {
		return m[1], true
	}
	if m := inlineSpan.FindStringSubmatch(text); m != nil {
		return m[1], true
	}
	return "", false
}

// braceSpan returns the text from the first '{' to the last '}'. It does not
// track nesting, so on malformed input the span may not be a single object.
func braceSpan(text string) (string, bool) {
	start := strings.IndexByte(text, '{')
	end := strings.LastIndexByte(text, '}')
	if start < 0 || end <= start {
		return "", false
	}
	return text[start : end+1], true
}

// repairStart picks the text the repair strategies work on: the brace span,
// or everything from the first '{' when the text is cut off mid-object.
func repairStart(text string) string {
	start := strings.IndexByte(text, '{')
	if start < 0 {
		return text
	}
	if truncated(text[start:]) {
		return text[start:]
	}
	if span, ok := braceSpan(text); ok {
		return span
	}
	return text[start:]
}

// truncated reports whether brackets are still open at the end of s.
func truncated(s string) bool {
	depth := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '"':
			i = skipString(s, i) - 1
		case '{', '[':
			depth++
		case '}', ']':
			depth--
		}
	}
	return depth > 0
}

func decodeYAML(text string) (map[string]any, error) {
	if strings.TrimSpace(text) == "" {
		return nil, errEmpty
	}
	var v any
	if err := yaml.Unmarshal([]byte(text), &v); err != nil {
		return nil, err
	}
	obj, ok := normalizeYAML(v).(map[string]any)
	if !ok {
		return nil, errNotObject
	}
	for _, k := range knownKeys {
		if _, ok := obj[k]; ok {
			return obj, nil
		}
	}
	return nil, errNoKnownKey
}

// normalizeYAML converts yaml.v3 decoded values into the shapes
// encoding/json produces, so the validator sees one representation. JSON has
// no NaN or infinity, so those become their text form.
func normalizeYAML(v any) any {
	switch x := v.(type) {
	case map[string]any:
		for k, vv := range x {
			x[k] = normalizeYAML(vv)
		}
		return x
	case map[any]any:
		out := make(map[string]any, len(x))
		for k, vv := range x {
			out[fmt.Sprint(k)] = normalizeYAML(vv)
		}
		return out
	case []any:
		for i := range x {
			x[i] = normalizeYAML(x[i])
		}
		return x
	case int:
		return float64(x)
	case int64:
		return float64(x)
	case uint64:
		return float64(x)
	case float32:
		return normalizeYAML(float64(x))
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return strconv.FormatFloat(x, 'g', -1, 64)
		}
	}
	return v
}
