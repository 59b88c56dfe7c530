package genre

import (
	"fmt"
	"strings"

	"github.com/tatianab/gamespec/internal/models"
)

const barrierThickness = 20

type enforcer struct {
	gt       models.GameType
	rule     Rule
	warnings []models.Warning
}

func (e *enforcer) warnf(format string, args ...any) {
	e.warnings = append(e.warnings, models.Warnf(models.StageConsistency, format, args...))
}

// Enforce rewrites spec in place so its physics and level shape match the
// rule of its gameType. Conflicting values are overwritten, not kept. Running
// it on its own output changes nothing.
func Enforce(spec *models.GameSpecification) []models.Warning {
	e := &enforcer{gt: spec.GameType, rule: RuleFor(spec.GameType)}

	for _, ent := range spec.Entities {
		switch x := ent.(type) {
		case *models.Player:
			e.player(x)
		case *models.Enemy:
			e.enemy(x, "entity")
		case *models.Collectible, *models.Platform, *models.Goal:
		}
	}
	spec.Entities = e.entities(spec.Entities)

	for i := range spec.Levels {
		e.level(i, &spec.Levels[i])
	}
	return e.warnings
}

func (e *enforcer) player(p *models.Player) {
	if p.Physics.Gravity != e.rule.Gravity {
		p.Physics.Gravity = e.rule.Gravity
		e.warnf("player %q: gravity forced to %t for %s", p.Name, e.rule.Gravity, e.gt)
	}
	for _, f := range e.rule.Fields {
		v, ok := p.Physics.Get(f)
		switch {
		case !ok:
			p.Physics.Set(f, e.rule.Defaults[f])
			e.warnf("player %q: added physics.%s = %g", p.Name, f, e.rule.Defaults[f])
		case !ValidValue(f, v):
			p.Physics.Set(f, e.rule.Defaults[f])
			e.warnf("player %q: replaced invalid physics.%s %g with %g", p.Name, f, v, e.rule.Defaults[f])
		}
	}
	for _, f := range models.PhysicsFields() {
		if _, ok := p.Physics.Get(f); ok && !e.rule.Uses(f) {
			p.Physics.Clear(f)
			e.warnf("player %q: removed physics.%s, %s does not use it", p.Name, f, e.gt)
		}
	}

	for _, a := range e.rule.Abilities {
		if p.Abilities[a] {
			continue
		}
		if p.Abilities == nil {
			p.Abilities = make(map[string]bool)
		}
		p.Abilities[a] = true
		e.warnf("player %q: enabled ability %q", p.Name, a)
	}

	state := []struct {
		name string
		v    **float64
	}{
		{"currentSpeed", &p.CurrentSpeed},
		{"steeringAngle", &p.SteeringAngle},
		{"facingAngle", &p.FacingAngle},
	}
	for _, s := range state {
		switch {
		case e.rule.VehicleState && (*s.v == nil || **s.v != 0):
			*s.v = models.Float(0)
			e.warnf("player %q: %s reset to 0", p.Name, s.name)
		case !e.rule.VehicleState && *s.v != nil:
			*s.v = nil
			e.warnf("player %q: removed vehicle state %s", p.Name, s.name)
		}
	}
}

func (e *enforcer) enemy(en *models.Enemy, where string) {
	if en.Physics.Gravity != e.rule.Gravity {
		en.Physics.Gravity = e.rule.Gravity
		e.warnf("%s enemy %q: gravity forced to %t for %s", where, en.Name, e.rule.Gravity, e.gt)
	}
}

// entities drops platform entities the genre does not allow.
func (e *enforcer) entities(ents []models.Entity) []models.Entity {
	if e.rule.Platforms == KeepPlatforms {
		return ents
	}
	out := ents[:0:0]
	for _, ent := range ents {
		if p, ok := ent.(*models.Platform); ok && !e.allowed(p) {
			e.warnf("removed platform entity %q, %s does not allow it", p.Name, e.gt)
			continue
		}
		out = append(out, ent)
	}
	return out
}

func (e *enforcer) level(i int, l *models.Level) {
	for j := range l.Enemies {
		e.enemy(&l.Enemies[j], fmt.Sprintf("level %d", i))
	}

	switch e.rule.Platforms {
	case ClearPlatforms:
		if len(l.Platforms) > 0 {
			e.warnf("level %d: removed %d platforms, %s levels have none", i, len(l.Platforms), e.gt)
		}
		l.Platforms = []models.Platform{}
	case BarriersOnly:
		kept := make([]models.Platform, 0, len(l.Platforms))
		for _, p := range l.Platforms {
			if e.allowed(&p) {
				kept = append(kept, p)
			}
		}
		if removed := len(l.Platforms) - len(kept); removed > 0 {
			e.warnf("level %d: removed %d platforms that are not track barriers", i, removed)
		}
		if len(kept) == 0 {
			kept = BoundaryBarriers(l.Width, l.Height)
			e.warnf("level %d: added %d boundary barriers", i, len(kept))
		}
		l.Platforms = kept
	}
}

func (e *enforcer) allowed(p *models.Platform) bool {
	switch e.rule.Platforms {
	case ClearPlatforms:
		return false
	case BarriersOnly:
		return IsBarrier(p)
	}
	return true
}

// IsBarrier reports whether p is a fixed track boundary: either flagged as
// one or named like one.
func IsBarrier(p *models.Platform) bool {
	if p.Barrier {
		return true
	}
	name := strings.ToLower(p.Name)
	for _, w := range []string{"barrier", "wall", "boundary"} {
		if strings.Contains(name, w) {
			return true
		}
	}
	return false
}

// BoundaryBarriers returns four barriers enclosing a w by h level.
func BoundaryBarriers(w, h float64) []models.Platform {
	barrier := func(name string, x, y, bw, bh float64) models.Platform {
		return models.Platform{
			Base:    models.Base{Name: name, X: x, Y: y, Width: bw, Height: bh, Color: "#555555"},
			Static:  true,
			Barrier: true,
		}
	}
	t := float64(barrierThickness)
	return []models.Platform{
		barrier("North Barrier", 0, 0, w, t),
		barrier("South Barrier", 0, h-t, w, t),
		barrier("West Barrier", 0, 0, t, h),
		barrier("East Barrier", w-t, 0, t, h),
	}
}
