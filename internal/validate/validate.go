// Package validate types a parsed candidate into a GameSpecification. Every
// missing or malformed field is replaced by a documented default and reported
// as a warning; fields it does not model are carried through untouched.
package validate

import (
	"fmt"
	"maps"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/tatianab/gamespec/internal/genre"
	"github.com/tatianab/gamespec/internal/models"
	"github.com/tatianab/gamespec/internal/playtest"
)

const (
	DefaultLevelWidth  = 1600
	DefaultLevelHeight = 800
	DefaultBackground  = "#87CEEB"

	groundHeight  = 50
	defaultPoints = 10
	maxPoints     = 1_000_000
)

type entityDefaults struct {
	name       string
	x, y, w, h float64
	color      string
}

var defaults = map[models.EntityKind]entityDefaults{
	models.KindPlayer:      {"Player", 100, 700, 32, 32, "#4A90E2"},
	models.KindEnemy:       {"Enemy", 600, 718, 32, 32, "#E74C3C"},
	models.KindCollectible: {"Coin", 400, 600, 20, 20, "#FFD700"},
	models.KindPlatform:    {"Platform", 0, 750, 100, 20, "#8B4513"},
	models.KindGoal:        {"Goal", 1400, 690, 40, 60, "#2ECC71"},
}

var (
	// game_type and genre are only read as fallbacks for gameType, so they
	// pass through like any other unmodeled key.
	topKeys = []string{
		"title", "description", "gameType", "theme", "visualStyle",
		"entities", "levels", "gameLogic",
	}
	levelKeys  = []string{"width", "height", "background", "platforms", "collectibles", "enemies", "goal"}
	logicKeys  = []string{"winCondition", "loseCondition", "scoring"}
	commonKeys = []string{"type", "name", "x", "y", "width", "height", "color", "emoji"}
	kindKeys   = map[models.EntityKind][]string{
		models.KindPlayer:      {"physics", "abilities", "currentSpeed", "steeringAngle", "facingAngle"},
		models.KindEnemy:       {"physics"},
		models.KindCollectible: {"points"},
		models.KindPlatform:    {"static", "barrier"},
	}
	physicsKeys = append([]string{"gravity"}, models.PhysicsFields()...)
)

// nameHints infer an entity's kind from its name when its type is unusable.
var nameHints = []struct {
	kind  models.EntityKind
	words []string
}{
	{models.KindPlayer, []string{"player", "hero"}},
	{models.KindGoal, []string{"goal", "flag", "finish", "exit"}},
	{models.KindPlatform, []string{"platform", "ground", "wall", "ledge"}},
	{models.KindEnemy, []string{"enemy", "monster", "boss"}},
	{models.KindCollectible, []string{"coin", "gem", "star", "collectible"}},
}

type fixer struct {
	gt       models.GameType
	rule     genre.Rule
	warnings []models.Warning
}

func (f *fixer) warnf(format string, args ...any) {
	f.warnings = append(f.warnings, models.Warnf(models.StageValidate, format, args...))
}

// Validate builds a specification from candidate. assumed is the genre used
// when the candidate names none. The candidate is read, never modified.
func Validate(candidate map[string]any, assumed models.GameType) (*models.GameSpecification, []models.Warning) {
	f := &fixer{}
	f.gt = f.gameType(candidate, assumed)
	f.rule = genre.RuleFor(f.gt)

	spec := &models.GameSpecification{
		GameType:    f.gt,
		Title:       f.text(candidate, "title", "title", "Untitled "+f.gt.Title(), true),
		Description: f.text(candidate, "description", "description", f.gt.Title()+" game.", true),
		Theme:       f.text(candidate, "theme", "theme", "", false),
		VisualStyle: f.text(candidate, "visualStyle", "visualStyle", "", false),
		Extra:       extras(candidate, topKeys),
	}

	v, present := candidate["entities"]
	spec.Entities = f.entities(v, present)
	v, present = candidate["levels"]
	spec.Levels = f.levels(v, present)

	player := spec.Player()
	if len(spec.Levels) == 0 {
		f.clampSpawn(player, DefaultLevelWidth, DefaultLevelHeight)
		spec.Levels = []models.Level{defaultLevel(player.Y)}
		f.warnf("levels missing, added a default level")
	} else {
		f.clampSpawn(player, spec.Levels[0].Width, spec.Levels[0].Height)
	}

	v, present = candidate["gameLogic"]
	spec.GameLogic = f.logic(v, present)
	return spec, f.warnings
}

func (f *fixer) gameType(obj map[string]any, assumed models.GameType) models.GameType {
	for _, key := range []string{"gameType", "game_type", "genre"} {
		v, ok := obj[key]
		if !ok {
			continue
		}
		s, _ := v.(string)
		gt, ok := models.ParseGameType(s)
		if !ok {
			f.warnf("%s %v is not a supported genre", key, v)
			continue
		}
		if key != "gameType" || s != string(gt) {
			f.warnf("%s %q read as gameType %s", key, s, gt)
		}
		return gt
	}
	if vehicleHint(obj["entities"]) {
		f.warnf("gameType missing, inferred racing from vehicle physics")
		return models.Racing
	}
	if !assumed.Valid() {
		assumed = models.Platformer
	}
	f.warnf("gameType missing, assuming %s", assumed)
	return assumed
}

// vehicleHint reports whether any entity carries vehicle physics.
func vehicleHint(v any) bool {
	items, _ := v.([]any)
	for _, item := range items {
		m, _ := item.(map[string]any)
		ph, _ := m["physics"].(map[string]any)
		if _, ok := ph[models.FieldMaxSpeed]; ok {
			return true
		}
	}
	return false
}

// text reads a string field. Numbers and booleans are converted. A required
// field that is missing or blank gets def.
func (f *fixer) text(obj map[string]any, key, path, def string, required bool) string {
	v, ok := obj[key]
	if !ok || v == nil {
		if required {
			f.warnf("%s missing, using %q", path, def)
		}
		return def
	}
	switch x := v.(type) {
	case string:
		if required && strings.TrimSpace(x) == "" {
			f.warnf("%s is blank, using %q", path, def)
			return def
		}
		return x
	case float64:
		s := strconv.FormatFloat(x, 'g', -1, 64)
		f.warnf("%s: converted number %s to text", path, s)
		return s
	case bool:
		f.warnf("%s: converted %t to text", path, x)
		return strconv.FormatBool(x)
	}
	f.warnf("%s has type %T, using %q", path, v, def)
	return def
}

// number converts v to a finite float64. Numeric strings are accepted and
// reported through converted.
func number(v any) (n float64, converted, ok bool) {
	switch x := v.(type) {
	case float64:
		return x, false, finite(x)
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		return parsed, true, err == nil && finite(parsed)
	}
	return 0, false, false
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// num reads a numeric field, using def when it is missing, unusable or, with
// positive set, not greater than zero.
func (f *fixer) num(obj map[string]any, key, path string, def float64, positive bool) float64 {
	path += "." + key
	v, ok := obj[key]
	if !ok || v == nil {
		f.warnf("%s missing, using %g", path, def)
		return def
	}
	n, converted, ok := number(v)
	switch {
	case !ok:
		f.warnf("%s: %v is not a number, using %g", path, v, def)
		return def
	case positive && n <= 0:
		f.warnf("%s must be positive, replaced %g with %g", path, n, def)
		return def
	case converted:
		f.warnf("%s: converted %q to a number", path, v)
	}
	return n
}

// optNum reads an optional numeric field.
func (f *fixer) optNum(obj map[string]any, key, path string) *float64 {
	v, ok := obj[key]
	if !ok || v == nil {
		return nil
	}
	n, converted, ok := number(v)
	if !ok {
		f.warnf("%s.%s: %v is not a number, ignored", path, key, v)
		return nil
	}
	if converted {
		f.warnf("%s.%s: converted %q to a number", path, key, v)
	}
	return models.Float(n)
}

func (f *fixer) entities(v any, present bool) []models.Entity {
	items, ok := v.([]any)
	switch {
	case !present || v == nil:
		f.warnf("entities missing")
	case !ok:
		f.warnf("entities has type %T, not a list", v)
	}

	var out []models.Entity
	for i, item := range items {
		path := fmt.Sprintf("entities[%d]", i)
		m, ok := item.(map[string]any)
		if !ok {
			f.warnf("%s is not an object, skipped", path)
			continue
		}
		out = append(out, f.entity(m, path, f.kind(m, path)))
	}
	return f.onePlayer(out)
}

// onePlayer demotes every player after the first to an enemy and adds a
// default player when there is none.
func (f *fixer) onePlayer(ents []models.Entity) []models.Entity {
	players := 0
	for i, e := range ents {
		p, ok := e.(*models.Player)
		if !ok {
			continue
		}
		if players++; players == 1 {
			continue
		}
		enemy := &models.Enemy{Base: p.Base, Physics: p.Physics}
		if len(p.Abilities) > 0 {
			enemy.Extra = maps.Clone(enemy.Extra)
			if enemy.Extra == nil {
				enemy.Extra = make(map[string]any)
			}
			abilities := make(map[string]any, len(p.Abilities))
			for k, v := range p.Abilities {
				abilities[k] = v
			}
			enemy.Extra["abilities"] = abilities
		}
		ents[i] = enemy
		f.warnf("entity %q: extra player demoted to enemy", p.Name)
	}
	if players == 0 {
		p := genre.DefaultPlayer(f.gt)
		ents = append([]models.Entity{p}, ents...)
		f.warnf("no player entity, added default player %q", p.Name)
	}
	return ents
}

func (f *fixer) kind(m map[string]any, path string) models.EntityKind {
	raw, present := m["type"]
	s, _ := raw.(string)
	if k, exact, ok := models.ParseEntityKind(s); ok {
		if !exact {
			f.warnf("%s: type %q read as %s", path, s, k)
		}
		return k
	}

	name, _ := m["name"].(string)
	k, ok := inferKind(name)
	if !ok {
		k = models.KindCollectible
	}
	if present {
		f.warnf("%s: unknown type %v, treated as %s", path, raw, k)
	} else {
		f.warnf("%s: type missing, treated as %s", path, k)
	}
	return k
}

func inferKind(name string) (models.EntityKind, bool) {
	name = strings.ToLower(name)
	for _, h := range nameHints {
		for _, w := range h.words {
			if strings.Contains(name, w) {
				return h.kind, true
			}
		}
	}
	return "", false
}

func (f *fixer) base(m map[string]any, path string, kind models.EntityKind) models.Base {
	d := defaults[kind]
	if kind == models.KindPlayer {
		d.name = f.rule.PlayerName
	}
	return models.Base{
		Name:   f.text(m, "name", path+".name", d.name, true),
		X:      f.num(m, "x", path, d.x, false),
		Y:      f.num(m, "y", path, d.y, false),
		Width:  f.num(m, "width", path, d.w, true),
		Height: f.num(m, "height", path, d.h, true),
		Color:  f.text(m, "color", path+".color", d.color, true),
		Emoji:  f.text(m, "emoji", path+".emoji", "", false),
		Extra:  extras(m, commonKeys, kindKeys[kind]),
	}
}

func (f *fixer) entity(m map[string]any, path string, kind models.EntityKind) models.Entity {
	base := f.base(m, path, kind)
	switch kind {
	case models.KindPlayer:
		return &models.Player{
			Base:          base,
			Physics:       f.physics(m, path),
			Abilities:     f.abilities(m, path),
			CurrentSpeed:  f.optNum(m, "currentSpeed", path),
			SteeringAngle: f.optNum(m, "steeringAngle", path),
			FacingAngle:   f.optNum(m, "facingAngle", path),
		}
	case models.KindEnemy:
		return &models.Enemy{Base: base, Physics: f.physics(m, path)}
	case models.KindCollectible:
		return &models.Collectible{Base: base, Points: f.points(m, path)}
	case models.KindPlatform:
		return f.platform(m, path, base)
	case models.KindGoal:
		return &models.Goal{Base: base}
	}
	panic(fmt.Sprintf("validate: unhandled entity kind %q", kind))
}

func (f *fixer) points(m map[string]any, path string) int {
	pts := f.num(m, "points", path, defaultPoints, false)
	switch {
	case pts < 0:
		f.warnf("%s.points %g is negative, using 0", path, pts)
		pts = 0
	case pts > maxPoints:
		f.warnf("%s.points %g capped at %d", path, pts, maxPoints)
		pts = maxPoints
	case pts != math.Trunc(pts):
		f.warnf("%s.points %g rounded", path, pts)
	}
	return int(math.Round(pts))
}

func (f *fixer) platform(m map[string]any, path string, base models.Base) *models.Platform {
	switch v, ok := m["static"]; {
	case !ok || v == nil:
		f.warnf("%s.static missing, set to true", path)
	case v != true:
		f.warnf("%s.static %v forced to true", path, v)
	}
	barrier, _ := m["barrier"].(bool)
	return &models.Platform{Base: base, Static: true, Barrier: barrier}
}

func (f *fixer) physics(m map[string]any, path string) models.Physics {
	path += ".physics"
	v, present := m["physics"]
	pm, ok := v.(map[string]any)
	if !ok {
		if present && v != nil {
			f.warnf("%s has type %T, using gravity=%t", path, v, f.rule.Gravity)
		} else {
			f.warnf("%s missing, using gravity=%t", path, f.rule.Gravity)
		}
		return models.Physics{Gravity: f.rule.Gravity}
	}

	ph := models.Physics{Gravity: f.gravity(pm, path), Extra: extras(pm, physicsKeys)}
	for _, name := range models.PhysicsFields() {
		if n := f.optNum(pm, name, path); n != nil {
			ph.Set(name, *n)
		}
	}
	return ph
}

func (f *fixer) gravity(pm map[string]any, path string) bool {
	switch x := pm["gravity"].(type) {
	case bool:
		return x
	case string:
		if b, ok := parseFlag(x); ok {
			f.warnf("%s.gravity: converted %q to %t", path, x, b)
			return b
		}
	case nil:
		f.warnf("%s.gravity missing, using %t", path, f.rule.Gravity)
		return f.rule.Gravity
	}
	f.warnf("%s.gravity %v is not a boolean, using %t", path, pm["gravity"], f.rule.Gravity)
	return f.rule.Gravity
}

// abilities accepts a map of flags or a list of ability names.
func (f *fixer) abilities(m map[string]any, path string) map[string]bool {
	path += ".abilities"
	switch x := m["abilities"].(type) {
	case nil:
		return nil
	case map[string]any:
		out := make(map[string]bool, len(x))
		for k, v := range x {
			switch b := v.(type) {
			case bool:
				out[k] = b
			case float64:
				out[k] = b != 0
			case string:
				parsed, ok := parseFlag(b)
				out[k] = !ok || parsed
				f.warnf("%s.%s: converted %q to %t", path, k, b, out[k])
			default:
				out[k] = true
				f.warnf("%s.%s: %v is not a flag, enabled", path, k, v)
			}
		}
		return out
	case []any:
		out := make(map[string]bool, len(x))
		for _, v := range x {
			if s, ok := v.(string); ok && s != "" {
				out[s] = true
			}
		}
		f.warnf("%s: converted list to flags", path)
		return out
	default:
		f.warnf("%s has type %T, ignored", path, x)
		return nil
	}
}

// parseFlag reads the usual spellings of a boolean.
func parseFlag(s string) (value, ok bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "t", "yes", "y", "on", "1":
		return true, true
	case "false", "f", "no", "n", "off", "0":
		return false, true
	}
	return false, false
}

func (f *fixer) levels(v any, present bool) []models.Level {
	items, ok := v.([]any)
	if present && v != nil && !ok {
		f.warnf("levels has type %T, not a list", v)
	}
	var out []models.Level
	for i, item := range items {
		path := fmt.Sprintf("levels[%d]", i)
		m, ok := item.(map[string]any)
		if !ok {
			f.warnf("%s is not an object, skipped", path)
			continue
		}
		out = append(out, f.level(m, path))
	}
	return out
}

func (f *fixer) level(m map[string]any, path string) models.Level {
	l := models.Level{
		Width:      f.num(m, "width", path, DefaultLevelWidth, true),
		Height:     f.num(m, "height", path, DefaultLevelHeight, true),
		Background: f.text(m, "background", path+".background", DefaultBackground, true),
		Extra:      extras(m, levelKeys),
	}

	if items, ok := f.list(m, "platforms", path); ok {
		l.Platforms = make([]models.Platform, 0, len(items))
		for i, item := range items {
			p := f.entity(item, fmt.Sprintf("%s.platforms[%d]", path, i), models.KindPlatform)
			l.Platforms = append(l.Platforms, *p.(*models.Platform))
		}
	} else {
		l.Platforms = []models.Platform{ground(l.Width, l.Height)}
		f.warnf("%s.platforms missing, added a ground platform", path)
	}

	items, _ := f.list(m, "collectibles", path)
	l.Collectibles = make([]models.Collectible, 0, len(items))
	for i, item := range items {
		c := f.entity(item, fmt.Sprintf("%s.collectibles[%d]", path, i), models.KindCollectible)
		l.Collectibles = append(l.Collectibles, *c.(*models.Collectible))
	}

	items, _ = f.list(m, "enemies", path)
	l.Enemies = make([]models.Enemy, 0, len(items))
	for i, item := range items {
		e := f.entity(item, fmt.Sprintf("%s.enemies[%d]", path, i), models.KindEnemy)
		l.Enemies = append(l.Enemies, *e.(*models.Enemy))
	}

	switch g := m["goal"].(type) {
	case nil:
	case map[string]any:
		l.Goal = f.entity(g, path+".goal", models.KindGoal).(*models.Goal)
	default:
		f.warnf("%s.goal has type %T, ignored", path, g)
	}
	return l
}

// list reads a list of objects. ok is false when the key is missing or does
// not hold a list; items that are not objects are skipped.
func (f *fixer) list(m map[string]any, key, path string) ([]map[string]any, bool) {
	v, present := m[key]
	raw, ok := v.([]any)
	if !ok {
		if present && v != nil {
			f.warnf("%s.%s has type %T, not a list", path, key, v)
		}
		return nil, false
	}
	out := make([]map[string]any, 0, len(raw))
	for i, item := range raw {
		obj, ok := item.(map[string]any)
		if !ok {
			f.warnf("%s.%s[%d] is not an object, skipped", path, key, i)
			continue
		}
		out = append(out, obj)
	}
	return out, true
}

func ground(w, h float64) models.Platform {
	return models.Platform{
		Base:   models.Base{Name: "Ground", X: 0, Y: h - groundHeight, Width: w, Height: groundHeight, Color: "#8B4513"},
		Static: true,
	}
}

func defaultLevel(playerY float64) models.Level {
	l := models.Level{
		Width:      DefaultLevelWidth,
		Height:     DefaultLevelHeight,
		Background: DefaultBackground,
		Enemies:    []models.Enemy{},
	}
	l.Platforms = []models.Platform{ground(l.Width, l.Height)}
	l.Collectibles = playtest.DefaultCollectibles(l, playerY)
	l.Goal = playtest.DefaultGoal(l, playerY)
	return l
}

// clampSpawn keeps the player's rectangle inside a w by h level.
func (f *fixer) clampSpawn(p *models.Player, w, h float64) {
	x := math.Max(0, math.Min(p.X, w-p.Width))
	y := math.Max(0, math.Min(p.Y, h-p.Height))
	if x == p.X && y == p.Y {
		return
	}
	f.warnf("player %q spawn (%g, %g) is outside the first level, moved to (%g, %g)", p.Name, p.X, p.Y, x, y)
	p.X, p.Y = x, y
}

func (f *fixer) logic(v any, present bool) models.GameLogic {
	def := f.rule.Logic
	m, ok := v.(map[string]any)
	if !ok {
		if present && v != nil {
			f.warnf("gameLogic has type %T, using %s defaults", v, f.gt)
		} else {
			f.warnf("gameLogic missing, using %s defaults", f.gt)
		}
		return models.GameLogic{
			WinCondition:  def.WinCondition,
			LoseCondition: def.LoseCondition,
			Scoring:       def.Scoring,
		}
	}
	return models.GameLogic{
		WinCondition:  f.text(m, "winCondition", "gameLogic.winCondition", def.WinCondition, true),
		LoseCondition: f.text(m, "loseCondition", "gameLogic.loseCondition", def.LoseCondition, true),
		Scoring:       f.text(m, "scoring", "gameLogic.scoring", def.Scoring, true),
		Extra:         extras(m, logicKeys),
	}
}

// extras returns the entries of m whose keys are in none of the known lists,
// or nil when there are none.
func extras(m map[string]any, known ...[]string) map[string]any {
	var out map[string]any
	for k, v := range m {
		if slices.ContainsFunc(known, func(ks []string) bool { return slices.Contains(ks, k) }) {
			continue
		}
		if out == nil {
			out = make(map[string]any)
		}
		out[k] = v
	}
	return out
}
