// Package playtest runs structural playability checks on a specification and
// corrects whatever fails them.
package playtest

import (
	"math"

	"github.com/tatianab/gamespec/internal/genre"
	"github.com/tatianab/gamespec/internal/models"
)

const (
	// MaxGoalDistance is the largest vertical distance between the player
	// spawn and a goal.
	MaxGoalDistance = 200
	// MaxPlatformGap is the largest distance between consecutive platforms
	// in jump-traversal genres.
	MaxPlatformGap = 300

	// Relocated goals land strictly inside the reachable band.
	reachMargin = MaxGoalDistance - 1

	stoneWidth  = 100
	stoneHeight = 20
	// maxStones bounds the stones bridged into one gap. A wider gap pulls
	// the far platform in instead.
	maxStones = 16
)

// Run applies the reachability, spacing and interactivity checks to spec in
// place and returns one warning per correction. A second run on its output
// changes nothing.
func Run(spec *models.GameSpecification) []models.Warning {
	t := &tester{spec: spec, rule: genre.RuleFor(spec.GameType)}
	t.reachability()
	if t.rule.JumpTraversal {
		t.spacing()
	}
	t.interactivity()
	return t.warnings
}

type tester struct {
	spec     *models.GameSpecification
	rule     genre.Rule
	warnings []models.Warning
}

func (t *tester) warnf(format string, args ...any) {
	t.warnings = append(t.warnings, models.Warnf(models.StagePlaytest, format, args...))
}

// spawnY returns the player's spawn height, or the relocation target of l
// when there is no player.
func (t *tester) spawnY(l models.Level) float64 {
	if p := t.spec.Player(); p != nil {
		return p.Y
	}
	return l.Height - 150
}

func (t *tester) reachability() {
	for i := range t.spec.Levels {
		l := &t.spec.Levels[i]
		if l.Goal != nil {
			t.relocate(l.Goal, *l, "level %d goal %q", i, l.Goal.Name)
		}
	}
	if len(t.spec.Levels) == 0 {
		return
	}
	first := t.spec.Levels[0]
	for _, ent := range t.spec.Entities {
		if g, ok := ent.(*models.Goal); ok {
			t.relocate(g, first, "goal entity %q", g.Name)
		}
	}
}

func (t *tester) relocate(g *models.Goal, l models.Level, format string, args ...any) {
	py := t.spawnY(l)
	if math.Abs(py-g.Y) <= MaxGoalDistance {
		return
	}
	fromX, fromY := g.X, g.Y
	g.Y = ReachableY(l, py)
	g.X = clampX(g.X, l)
	t.warnf(format+": %.0f units from the player spawn, moved from (%.0f, %.0f) to (%.0f, %.0f)",
		append(args, math.Abs(py-fromY), fromX, fromY, g.X, g.Y)...)
}

// ReachableY is where a goal or pickup is placed in l: level.height-150,
// pulled into reach of a player spawning at playerY.
func ReachableY(l models.Level, playerY float64) float64 {
	return math.Max(playerY-reachMargin, math.Min(l.Height-150, playerY+reachMargin))
}

func clampX(x float64, l models.Level) float64 {
	return math.Max(0, math.Min(x, l.Width-200))
}

// DefaultGoal returns a goal near the right edge of l within reach of a
// player spawning at playerY.
func DefaultGoal(l models.Level, playerY float64) *models.Goal {
	return &models.Goal{Base: models.Base{
		Name:   "Goal",
		X:      math.Max(0, l.Width-200),
		Y:      ReachableY(l, playerY),
		Width:  40,
		Height: 60,
		Color:  "#2ECC71",
	}}
}

// DefaultCollectibles returns two coins spread across l.
func DefaultCollectibles(l models.Level, playerY float64) []models.Collectible {
	y := ReachableY(l, playerY)
	coin := func(name string, x float64) models.Collectible {
		return models.Collectible{
			Base:   models.Base{Name: name, X: x, Y: y, Width: 20, Height: 20, Color: "#FFD700"},
			Points: 10,
		}
	}
	return []models.Collectible{
		coin("Coin 1", l.Width/3),
		coin("Coin 2", 2*l.Width/3),
	}
}

func (t *tester) spacing() {
	for i := range t.spec.Levels {
		l := &t.spec.Levels[i]
		if len(l.Platforms) < 2 {
			continue
		}
		out := make([]models.Platform, 0, len(l.Platforms))
		inserted, moved := 0, 0
		for j, p := range l.Platforms {
			if j > 0 {
				prev := out[len(out)-1]
				stones, ok := bridge(prev, p)
				if !ok {
					p = pullIn(prev, p)
					moved++
				}
				inserted += len(stones)
				out = append(out, stones...)
			}
			out = append(out, p)
		}
		if moved > 0 {
			t.warnf("level %d: moved %d platforms more than %d units from the previous one to within %d", i, moved,
				MaxPlatformGap*(maxStones+1), MaxPlatformGap)
		}
		if inserted > 0 {
			t.warnf("level %d: inserted %d intermediate platforms so no gap exceeds %d", i, inserted, MaxPlatformGap)
		}
		if moved > 0 || inserted > 0 {
			l.Platforms = out
		}
	}
}

// gap returns the distance between the nearest points of a and b and the
// unit vector from a's toward b's. The halves keep the distance finite for
// platforms at opposite ends of the float range.
func gap(a, b models.Platform) (d, ux, uy float64) {
	ax, bx := closest(a.X, a.Width, b.X, b.Width)
	ay, by := closest(a.Y, a.Height, b.Y, b.Height)
	hx, hy := bx/2-ax/2, by/2-ay/2
	h := math.Hypot(hx, hy)
	if h == 0 {
		return 0, 0, 0
	}
	return 2 * h, hx / h, hy / h
}

// bridge returns the stepping stones needed between a and b: none when the
// gap is at most MaxPlatformGap, otherwise enough evenly spaced stones along
// the gap that every step is within it. ok is false when that would take
// more than maxStones.
func bridge(a, b models.Platform) (stones []models.Platform, ok bool) {
	d, ux, uy := gap(a, b)
	if d <= MaxPlatformGap {
		return nil, true
	}
	if d > MaxPlatformGap*(maxStones+1) {
		return nil, false
	}
	ax, _ := closest(a.X, a.Width, b.X, b.Width)
	ay, _ := closest(a.Y, a.Height, b.Y, b.Height)
	n := int(math.Ceil(d/MaxPlatformGap)) - 1
	stones = make([]models.Platform, n)
	for k := range stones {
		f := d * float64(k+1) / float64(n+1)
		cx, cy := ax+ux*f, ay+uy*f
		stones[k] = models.Platform{
			Base: models.Base{
				Name:   "Stepping Stone",
				X:      cx - stoneWidth/2,
				Y:      cy - stoneHeight/2,
				Width:  stoneWidth,
				Height: stoneHeight,
				Color:  "#8B4513",
			},
			Static: true,
		}
	}
	return stones, true
}

// pullIn moves b along the line from a so the gap between them is just
// under MaxPlatformGap.
func pullIn(a, b models.Platform) models.Platform {
	_, ux, uy := gap(a, b)
	ax, bx := closest(a.X, a.Width, b.X, b.Width)
	ay, by := closest(a.Y, a.Height, b.Y, b.Height)
	const step = MaxPlatformGap - 1
	b.X = place(b.X, b.Width, ax, bx, ax+ux*step)
	b.Y = place(b.Y, b.Height, ay, by, ay+uy*step)
	return b
}

// place returns the new start of a span of width w whose nearest point to
// from, currently near, should land on to.
func place(start, w, from, near, to float64) float64 {
	switch {
	case near > from:
		return to
	case near < from:
		return to - w
	}
	return start
}

// closest returns, along one axis, the nearest coordinates of the spans
// [a, a+aw] and [b, b+bw]. Overlapping spans meet in the middle of the
// overlap.
func closest(a, aw, b, bw float64) (float64, float64) {
	switch {
	case a+aw < b:
		return a + aw, b
	case b+bw < a:
		return a, b + bw
	}
	mid := (math.Max(a, b) + math.Min(a+aw, b+bw)) / 2
	return mid, mid
}

func (t *tester) interactivity() {
	for i := range t.spec.Levels {
		l := &t.spec.Levels[i]
		if len(l.Collectibles) > 0 || len(l.Enemies) > 0 || l.Goal != nil {
			continue
		}
		py := t.spawnY(*l)
		l.Collectibles = DefaultCollectibles(*l, py)
		l.Goal = DefaultGoal(*l, py)
		t.warnf("level %d: nothing to interact with, added %d collectibles and a goal", i, len(l.Collectibles))
	}
}
