package validate

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/tatianab/gamespec/internal/genre"
	"github.com/tatianab/gamespec/internal/models"
	"github.com/tatianab/gamespec/internal/playtest"
)

// Check reports every invariant spec violates, joined into one error. A nil
// result means spec is safe to hand to the engine.
func Check(spec *models.GameSpecification) error {
	if spec == nil {
		return errors.New("specification is nil")
	}
	var errs []error
	add := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf(format, args...))
	}

	if !spec.GameType.Valid() {
		add("unsupported gameType %q", spec.GameType)
	}
	if strings.TrimSpace(spec.Title) == "" {
		add("title is empty")
	}
	if len(spec.Entities) == 0 {
		add("no entities")
	}
	if len(spec.Levels) == 0 {
		add("no levels")
	}

	players := 0
	for i, e := range spec.Entities {
		if e == nil {
			add("entities[%d] is nil", i)
			continue
		}
		if e.Kind() == models.KindPlayer {
			players++
		}
		checkEntity(fmt.Sprintf("entities[%d]", i), e, add)
	}
	if players != 1 {
		add("%d player entities, want exactly one", players)
	}

	rule := genre.RuleFor(spec.GameType)
	player := spec.Player()
	if player != nil {
		if player.Physics.Gravity != rule.Gravity {
			add("player gravity is %t, %s requires %t", player.Physics.Gravity, spec.GameType, rule.Gravity)
		}
		for _, f := range rule.Fields {
			if v, ok := player.Physics.Get(f); !ok || !genre.ValidValue(f, v) {
				add("player physics.%s missing or invalid for %s", f, spec.GameType)
			}
		}
	}
	reachable := func(path string, g *models.Goal) {
		if player != nil && math.Abs(player.Y-g.Y) > playtest.MaxGoalDistance {
			add("%s is %.0f units from the player spawn", path, math.Abs(player.Y-g.Y))
		}
	}
	for i, e := range spec.Entities {
		if g, ok := e.(*models.Goal); ok {
			reachable(fmt.Sprintf("entities[%d]", i), g)
		}
	}

	for i, l := range spec.Levels {
		path := fmt.Sprintf("levels[%d]", i)
		if !(l.Width > 0) || !(l.Height > 0) || math.IsInf(l.Width, 0) || math.IsInf(l.Height, 0) {
			add("%s has size %gx%g", path, l.Width, l.Height)
		}
		for j := range l.Platforms {
			p := &l.Platforms[j]
			checkEntity(fmt.Sprintf("%s.platforms[%d]", path, j), p, add)
			if rule.Platforms == genre.BarriersOnly && !genre.IsBarrier(p) {
				add("%s.platforms[%d] is not a barrier", path, j)
			}
		}
		if rule.Platforms == genre.ClearPlatforms && len(l.Platforms) > 0 {
			add("%s has platforms, %s levels have none", path, spec.GameType)
		}
		for j := range l.Collectibles {
			checkEntity(fmt.Sprintf("%s.collectibles[%d]", path, j), &l.Collectibles[j], add)
		}
		for j := range l.Enemies {
			checkEntity(fmt.Sprintf("%s.enemies[%d]", path, j), &l.Enemies[j], add)
		}
		if l.Goal != nil {
			checkEntity(path+".goal", l.Goal, add)
			reachable(path+".goal", l.Goal)
		}
	}
	return errors.Join(errs...)
}

func checkEntity(path string, e models.Entity, add func(string, ...any)) {
	b := e.Common()
	if !finite(b.X) || !finite(b.Y) {
		add("%s position (%g, %g) is not finite", path, b.X, b.Y)
	}
	if !(b.Width > 0) || !(b.Height > 0) || math.IsInf(b.Width, 0) || math.IsInf(b.Height, 0) {
		add("%s size %gx%g is not positive", path, b.Width, b.Height)
	}
	switch x := e.(type) {
	case *models.Collectible:
		if x.Points < 0 {
			add("%s points %d is negative", path, x.Points)
		}
	case *models.Platform:
		if !x.Static {
			add("%s is not static", path)
		}
	case *models.Player, *models.Enemy, *models.Goal:
	}
}
