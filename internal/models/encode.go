package models

import (
	"encoding/json"
	"fmt"
)

// marshalFlat encodes v and merges extra fields into the resulting object.
// Modelled fields win over extra fields of the same name. A non-empty kind is
// written as the "type" discriminator.
func marshalFlat(v any, kind EntityKind, extra map[string]any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	if kind == "" && len(extra) == 0 {
		return data, nil
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, err
	}
	for k, val := range extra {
		if _, ok := fields[k]; ok {
			continue
		}
		raw, err := json.Marshal(val)
		if err != nil {
			return nil, fmt.Errorf("extra field %q: %w", k, err)
		}
		fields[k] = raw
	}
	if kind != "" {
		raw, _ := json.Marshal(string(kind))
		fields["type"] = raw
	}
	return json.Marshal(fields)
}

func (s GameSpecification) MarshalJSON() ([]byte, error) {
	type plain GameSpecification
	if s.Entities == nil {
		s.Entities = []Entity{}
	}
	if s.Levels == nil {
		s.Levels = []Level{}
	}
	return marshalFlat(plain(s), "", s.Extra)
}

func (l Level) MarshalJSON() ([]byte, error) {
	type plain Level
	if l.Platforms == nil {
		l.Platforms = []Platform{}
	}
	if l.Collectibles == nil {
		l.Collectibles = []Collectible{}
	}
	if l.Enemies == nil {
		l.Enemies = []Enemy{}
	}
	return marshalFlat(plain(l), "", l.Extra)
}

func (g GameLogic) MarshalJSON() ([]byte, error) {
	type plain GameLogic
	return marshalFlat(plain(g), "", g.Extra)
}

func (p Physics) MarshalJSON() ([]byte, error) {
	type plain Physics
	return marshalFlat(plain(p), "", p.Extra)
}

func (p Player) MarshalJSON() ([]byte, error) {
	type plain Player
	return marshalFlat(plain(p), KindPlayer, p.Extra)
}

func (e Enemy) MarshalJSON() ([]byte, error) {
	type plain Enemy
	return marshalFlat(plain(e), KindEnemy, e.Extra)
}

func (c Collectible) MarshalJSON() ([]byte, error) {
	type plain Collectible
	return marshalFlat(plain(c), KindCollectible, c.Extra)
}

func (p Platform) MarshalJSON() ([]byte, error) {
	type plain Platform
	return marshalFlat(plain(p), KindPlatform, p.Extra)
}

func (g Goal) MarshalJSON() ([]byte, error) {
	type plain Goal
	return marshalFlat(plain(g), KindGoal, g.Extra)
}
