package models

import (
	"fmt"
	"strings"
)

// GameType identifies the genre a scene is built for.
type GameType string

const (
	Platformer    GameType = "platformer"
	Racing        GameType = "racing"
	Shooter       GameType = "shooter"
	Puzzle        GameType = "puzzle"
	Flappy        GameType = "flappy"
	Fighting      GameType = "fighting"
	TowerDefense  GameType = "tower_defense"
	EndlessRunner GameType = "endless_runner"
)

// GameTypes lists every supported genre in a stable order.
func GameTypes() []GameType {
	return []GameType{Platformer, Racing, Shooter, Puzzle, Flappy, Fighting, TowerDefense, EndlessRunner}
}

// Valid reports whether g is one of the supported genres.
func (g GameType) Valid() bool {
	switch g {
	case Platformer, Racing, Shooter, Puzzle, Flappy, Fighting, TowerDefense, EndlessRunner:
		return true
	}
	return false
}

// Title returns a human readable name, e.g. "Tower Defense".
func (g GameType) Title() string {
	words := strings.Split(string(g), "_")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}

var gameTypeAliases = map[string]GameType{
	"platform":        Platformer,
	"platforming":     Platformer,
	"jump_and_run":    Platformer,
	"race":            Racing,
	"driving":         Racing,
	"kart":            Racing,
	"car":             Racing,
	"fps":             Shooter,
	"shmup":           Shooter,
	"shoot_em_up":     Shooter,
	"space_shooter":   Shooter,
	"tetris":          Puzzle,
	"match3":          Puzzle,
	"match_3":         Puzzle,
	"flappy_bird":     Flappy,
	"flappybird":      Flappy,
	"fighter":         Fighting,
	"beat_em_up":      Fighting,
	"towerdefense":    TowerDefense,
	"tower_defence":   TowerDefense,
	"td":              TowerDefense,
	"runner":          EndlessRunner,
	"endless":         EndlessRunner,
	"endlessrunner":   EndlessRunner,
	"infinite_runner": EndlessRunner,
}

// ParseGameType normalizes s (case, spaces, hyphens, common aliases) into a
// supported GameType.
func ParseGameType(s string) (GameType, bool) {
	key := strings.ToLower(strings.TrimSpace(s))
	key = strings.NewReplacer("-", "_", " ", "_", "'", "").Replace(key)
	if gt := GameType(key); gt.Valid() {
		return gt, true
	}
	gt, ok := gameTypeAliases[key]
	return gt, ok
}

// GameSpecification is the validated description of a playable 2D scene.
//
// Specifications are only ever decoded through the validator, which is why
// there is no UnmarshalJSON: raw generator output must not bypass it.
type GameSpecification struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	GameType    GameType  `json:"gameType"`
	Theme       string    `json:"theme,omitempty"`
	VisualStyle string    `json:"visualStyle,omitempty"`
	Entities    []Entity  `json:"entities"`
	Levels      []Level   `json:"levels"`
	GameLogic   GameLogic `json:"gameLogic"`

	// Extra holds top-level fields this package does not model. They are
	// written back out unchanged.
	Extra map[string]any `json:"-"`
}

// Player returns the player entity, or nil if there is none.
func (s *GameSpecification) Player() *Player {
	for _, e := range s.Entities {
		if p, ok := e.(*Player); ok {
			return p
		}
	}
	return nil
}

// Level describes one playable area.
type Level struct {
	Width        float64       `json:"width"`
	Height       float64       `json:"height"`
	Background   string        `json:"background"`
	Platforms    []Platform    `json:"platforms"`
	Collectibles []Collectible `json:"collectibles"`
	Enemies      []Enemy       `json:"enemies"`
	Goal         *Goal         `json:"goal,omitempty"`

	Extra map[string]any `json:"-"`
}

type GameLogic struct {
	WinCondition  string `json:"winCondition"`
	LoseCondition string `json:"loseCondition"`
	Scoring       string `json:"scoring"`

	Extra map[string]any `json:"-"`
}

// Physics is the movement profile of a player or enemy. Ground genres use
// GravityForce/JumpForce/MoveSpeed/AirControl/Friction, vehicle genres use
// MaxSpeed/Acceleration/Braking/Turning/Drift. Unset fields are nil.
type Physics struct {
	Gravity bool `json:"gravity"`

	GravityForce *float64 `json:"gravityForce,omitempty"`
	JumpForce    *float64 `json:"jumpForce,omitempty"`
	MoveSpeed    *float64 `json:"moveSpeed,omitempty"`
	AirControl   *float64 `json:"airControl,omitempty"`
	Friction     *float64 `json:"friction,omitempty"`

	MaxSpeed     *float64 `json:"maxSpeed,omitempty"`
	Acceleration *float64 `json:"acceleration,omitempty"`
	Braking      *float64 `json:"braking,omitempty"`
	Turning      *float64 `json:"turning,omitempty"`
	Drift        *float64 `json:"drift,omitempty"`

	Extra map[string]any `json:"-"`
}

// Physics field names, as they appear on the wire.
const (
	FieldGravityForce = "gravityForce"
	FieldJumpForce    = "jumpForce"
	FieldMoveSpeed    = "moveSpeed"
	FieldAirControl   = "airControl"
	FieldFriction     = "friction"
	FieldMaxSpeed     = "maxSpeed"
	FieldAcceleration = "acceleration"
	FieldBraking      = "braking"
	FieldTurning      = "turning"
	FieldDrift        = "drift"
)

// PhysicsFields lists every tunable physics field.
func PhysicsFields() []string {
	return []string{
		FieldGravityForce, FieldJumpForce, FieldMoveSpeed, FieldAirControl, FieldFriction,
		FieldMaxSpeed, FieldAcceleration, FieldBraking, FieldTurning, FieldDrift,
	}
}

func (p *Physics) ref(name string) **float64 {
	switch name {
	case FieldGravityForce:
		return &p.GravityForce
	case FieldJumpForce:
		return &p.JumpForce
	case FieldMoveSpeed:
		return &p.MoveSpeed
	case FieldAirControl:
		return &p.AirControl
	case FieldFriction:
		return &p.Friction
	case FieldMaxSpeed:
		return &p.MaxSpeed
	case FieldAcceleration:
		return &p.Acceleration
	case FieldBraking:
		return &p.Braking
	case FieldTurning:
		return &p.Turning
	case FieldDrift:
		return &p.Drift
	}
	panic(fmt.Sprintf("models: unknown physics field %q", name))
}

// Get returns the value of the named field and whether it is set.
func (p *Physics) Get(name string) (float64, bool) {
	v := *p.ref(name)
	if v == nil {
		return 0, false
	}
	return *v, true
}

func (p *Physics) Set(name string, v float64) {
	*p.ref(name) = Float(v)
}

func (p *Physics) Clear(name string) {
	*p.ref(name) = nil
}

// Float returns a pointer to v.
func Float(v float64) *float64 {
	return &v
}

// Warning stages.
const (
	StageParse       = "parse"
	StagePartial     = "partial"
	StageFallback    = "fallback"
	StageValidate    = "validate"
	StageConsistency = "consistency"
	StagePlaytest    = "playtest"
	StagePipeline    = "pipeline"
)

// Warning records one recovery the pipeline performed. It never signals failure.
type Warning struct {
	Stage   string `json:"stage" yaml:"stage"`
	Message string `json:"message" yaml:"message"`
}

func Warnf(stage, format string, args ...any) Warning {
	return Warning{Stage: stage, Message: fmt.Sprintf(format, args...)}
}

func (w Warning) String() string {
	return "[" + w.Stage + "] " + w.Message
}
