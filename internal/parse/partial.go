package parse

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/tatianab/gamespec/internal/models"
)

// Fields holds the values the partial extractor could recognize. A nil field
// was not found.
type Fields struct {
	Title       *string
	Description *string
	GameType    *models.GameType
	VisualStyle *string
	Theme       *string
}

// Found lists the names of the recovered fields.
func (f Fields) Found() []string {
	var names []string
	if f.Title != nil {
		names = append(names, "title")
	}
	if f.Description != nil {
		names = append(names, "description")
	}
	if f.GameType != nil {
		names = append(names, "gameType")
	}
	if f.VisualStyle != nil {
		names = append(names, "visualStyle")
	}
	if f.Theme != nil {
		names = append(names, "theme")
	}
	return names
}

func (f Fields) Empty() bool {
	return len(f.Found()) == 0
}

const maxFieldLen = 200

var (
	titlePattern       = fieldPattern("title")
	descriptionPattern = fieldPattern("description", "desc")
	gameTypePattern    = fieldPattern("gameType", "game_type", "genre")
	stylePattern       = fieldPattern("visualStyle", "visual_style", "artStyle", "art_style", "style")
	themePattern       = fieldPattern("theme", "setting")
)

// fieldPattern matches `key: value` or `key = value` with the value double
// quoted, single quoted, or bare up to the next delimiter. The bare form also
// catches strings cut off before their closing quote.
func fieldPattern(keys ...string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)["']?\b(?:` + strings.Join(keys, "|") + `)["']?\s*[:=]\s*` +
		`(?:"((?:[^"\\\n]|\\.)*)"|'((?:[^'\\\n]|\\.)*)'|([^,\n\r}\]]+))`)
}

// Extract pulls individually recognizable fields out of text that could not
// be parsed as a whole. Each field is matched independently.
func Extract(raw string) Fields {
	var f Fields
	f.Title = firstValue(titlePattern, raw)
	f.Description = firstValue(descriptionPattern, raw)
	f.VisualStyle = firstValue(stylePattern, raw)
	f.Theme = firstValue(themePattern, raw)
	for _, m := range gameTypePattern.FindAllStringSubmatch(raw, -1) {
		if gt, ok := models.ParseGameType(matchValue(m)); ok {
			f.GameType = &gt
			break
		}
	}
	return f
}

func firstValue(re *regexp.Regexp, raw string) *string {
	for _, m := range re.FindAllStringSubmatch(raw, -1) {
		if v := matchValue(m); v != "" {
			return &v
		}
	}
	return nil
}

func matchValue(m []string) string {
	var v string
	switch {
	case m[1] != "":
		v = m[1]
		if u, err := strconv.Unquote(`"` + v + `"`); err == nil {
			v = u
		}
	case m[2] != "":
		v = m[2]
	default:
		v = m[3]
	}
	v = strings.Trim(strings.TrimSpace(v), `"'`)
	v = strings.TrimSpace(v)
	if r := []rune(v); len(r) > maxFieldLen {
		v = strings.TrimSpace(string(r[:maxFieldLen]))
	}
	return v
}
