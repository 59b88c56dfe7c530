package models

import "maps"

// Clone returns a deep copy of s. Templates and cached results hand out
// clones so callers may mutate what they receive.
func (s *GameSpecification) Clone() *GameSpecification {
	if s == nil {
		return nil
	}
	out := *s
	out.Extra = cloneMap(s.Extra)
	out.GameLogic.Extra = cloneMap(s.GameLogic.Extra)
	if s.Entities != nil {
		out.Entities = make([]Entity, len(s.Entities))
		for i, e := range s.Entities {
			out.Entities[i] = e.clone()
		}
	}
	if s.Levels != nil {
		out.Levels = make([]Level, len(s.Levels))
		for i := range s.Levels {
			out.Levels[i] = s.Levels[i].Clone()
		}
	}
	return &out
}

func (l Level) Clone() Level {
	out := l
	out.Extra = cloneMap(l.Extra)
	if l.Platforms != nil {
		out.Platforms = make([]Platform, len(l.Platforms))
		for i, p := range l.Platforms {
			out.Platforms[i] = *p.clone().(*Platform)
		}
	}
	if l.Collectibles != nil {
		out.Collectibles = make([]Collectible, len(l.Collectibles))
		for i, c := range l.Collectibles {
			out.Collectibles[i] = *c.clone().(*Collectible)
		}
	}
	if l.Enemies != nil {
		out.Enemies = make([]Enemy, len(l.Enemies))
		for i, e := range l.Enemies {
			out.Enemies[i] = *e.clone().(*Enemy)
		}
	}
	if l.Goal != nil {
		out.Goal = l.Goal.clone().(*Goal)
	}
	return out
}

func (p Physics) clone() Physics {
	out := p
	for _, name := range PhysicsFields() {
		if v, ok := p.Get(name); ok {
			out.Set(name, v)
		}
	}
	out.Extra = cloneMap(p.Extra)
	return out
}

func (b Base) deepCopy() Base {
	b.Extra = cloneMap(b.Extra)
	return b
}

func (p *Player) clone() Entity {
	out := *p
	out.Base = p.Base.deepCopy()
	out.Physics = p.Physics.clone()
	out.Abilities = maps.Clone(p.Abilities)
	out.CurrentSpeed = cloneFloat(p.CurrentSpeed)
	out.SteeringAngle = cloneFloat(p.SteeringAngle)
	out.FacingAngle = cloneFloat(p.FacingAngle)
	return &out
}

func (e *Enemy) clone() Entity {
	out := *e
	out.Base = e.Base.deepCopy()
	out.Physics = e.Physics.clone()
	return &out
}

func (c *Collectible) clone() Entity {
	out := *c
	out.Base = c.Base.deepCopy()
	return &out
}

func (p *Platform) clone() Entity {
	out := *p
	out.Base = p.Base.deepCopy()
	return &out
}

func (g *Goal) clone() Entity {
	out := *g
	out.Base = g.Base.deepCopy()
	return &out
}

func cloneFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	return Float(*v)
}

func cloneMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch x := v.(type) {
	case map[string]any:
		return cloneMap(x)
	case []any:
		out := make([]any, len(x))
		for i := range x {
			out[i] = cloneValue(x[i])
		}
		return out
	default:
		return v
	}
}
