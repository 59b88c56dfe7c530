// Package genre holds the per-genre rule table and the consistency enforcer
// that makes a specification's physics and level shape match its gameType.
package genre

import (
	"math"

	"github.com/tatianab/gamespec/internal/models"
)

// PlatformPolicy says which platforms a genre's levels may contain.
type PlatformPolicy int

const (
	KeepPlatforms PlatformPolicy = iota
	// ClearPlatforms removes every platform.
	ClearPlatforms
	// BarriersOnly keeps fixed track boundaries and nothing else.
	BarriersOnly
)

// Rule is what a genre requires of the player entity and of its levels.
// Rules are shared; callers must not modify them.
type Rule struct {
	Gravity bool
	// Fields is the exact set of physics fields the player carries.
	Fields   []string
	Defaults map[string]float64
	// Abilities must be present and true on the player.
	Abilities []string
	// Starting abilities are given to a default player but never enforced.
	Starting     []string
	VehicleState bool
	Platforms    PlatformPolicy
	// JumpTraversal genres move between platforms by jumping, so platform
	// spacing matters for them.
	JumpTraversal bool
	PlayerName    string
	Logic         models.GameLogic
}

var groundFields = []string{
	models.FieldGravityForce, models.FieldJumpForce, models.FieldMoveSpeed,
	models.FieldAirControl, models.FieldFriction,
}

var vehicleFields = []string{
	models.FieldMaxSpeed, models.FieldAcceleration, models.FieldBraking,
	models.FieldTurning, models.FieldDrift,
}

var rules = map[models.GameType]Rule{
	models.Platformer: {
		Gravity: true,
		Fields:  groundFields,
		Defaults: map[string]float64{
			models.FieldGravityForce: 981, models.FieldJumpForce: -500, models.FieldMoveSpeed: 200,
			models.FieldAirControl: 0.8, models.FieldFriction: 0.7,
		},
		Starting:      []string{"jump"},
		JumpTraversal: true,
		PlayerName:    "Hero",
		Logic: models.GameLogic{
			WinCondition:  "Reach the goal",
			LoseCondition: "Fall off the level or touch an enemy",
			Scoring:       "10 points per coin",
		},
	},
	models.EndlessRunner: {
		Gravity: true,
		Fields:  groundFields,
		Defaults: map[string]float64{
			models.FieldGravityForce: 981, models.FieldJumpForce: -520, models.FieldMoveSpeed: 300,
			models.FieldAirControl: 0.6, models.FieldFriction: 0.7,
		},
		Starting:      []string{"jump", "slide"},
		JumpTraversal: true,
		PlayerName:    "Runner",
		Logic: models.GameLogic{
			WinCondition:  "Run as far as possible",
			LoseCondition: "Fall into a gap or hit an obstacle",
			Scoring:       "Distance travelled plus 10 points per coin",
		},
	},
	models.Flappy: {
		Gravity: true,
		Fields:  groundFields,
		Defaults: map[string]float64{
			models.FieldGravityForce: 900, models.FieldJumpForce: -350, models.FieldMoveSpeed: 150,
			models.FieldAirControl: 1, models.FieldFriction: 0,
		},
		Starting:   []string{"flap"},
		PlayerName: "Bird",
		Logic: models.GameLogic{
			WinCondition:  "Fly through every gap",
			LoseCondition: "Hit a pipe or the ground",
			Scoring:       "1 point per gap passed",
		},
	},
	models.Fighting: {
		Gravity: true,
		Fields:  groundFields,
		Defaults: map[string]float64{
			models.FieldGravityForce: 981, models.FieldJumpForce: -450, models.FieldMoveSpeed: 220,
			models.FieldAirControl: 0.5, models.FieldFriction: 0.8,
		},
		Starting:   []string{"attack", "block", "jump"},
		PlayerName: "Fighter",
		Logic: models.GameLogic{
			WinCondition:  "Knock out the opponent",
			LoseCondition: "Lose all health",
			Scoring:       "Damage dealt",
		},
	},
	models.Racing: {
		Gravity: false,
		Fields:  vehicleFields,
		Defaults: map[string]float64{
			models.FieldMaxSpeed: 400, models.FieldAcceleration: 200, models.FieldBraking: 300,
			models.FieldTurning: 3, models.FieldDrift: 0.2,
		},
		Abilities:    []string{"boost"},
		VehicleState: true,
		Platforms:    BarriersOnly,
		PlayerName:   "Racer",
		Logic: models.GameLogic{
			WinCondition:  "Cross the finish line first",
			LoseCondition: "Finish behind a rival",
			Scoring:       "Lap time",
		},
	},
	models.Shooter: {
		Gravity: false,
		Fields:  []string{models.FieldMoveSpeed, models.FieldAirControl},
		Defaults: map[string]float64{
			models.FieldMoveSpeed: 250, models.FieldAirControl: 1,
		},
		Abilities:  []string{"shoot"},
		Platforms:  ClearPlatforms,
		PlayerName: "Pilot",
		Logic: models.GameLogic{
			WinCondition:  "Destroy every enemy",
			LoseCondition: "Get hit by an enemy",
			Scoring:       "100 points per enemy destroyed",
		},
	},
	models.Puzzle: {
		Gravity:    false,
		Fields:     []string{models.FieldMoveSpeed},
		Defaults:   map[string]float64{models.FieldMoveSpeed: 150},
		Starting:   []string{"interact"},
		PlayerName: "Solver",
		Logic: models.GameLogic{
			WinCondition:  "Reach the exit",
			LoseCondition: "Run out of moves",
			Scoring:       "Fewer moves score higher",
		},
	},
	models.TowerDefense: {
		Gravity:    false,
		Fields:     []string{models.FieldMoveSpeed},
		Defaults:   map[string]float64{models.FieldMoveSpeed: 120},
		Starting:   []string{"build"},
		PlayerName: "Commander",
		Logic: models.GameLogic{
			WinCondition:  "Survive every wave",
			LoseCondition: "An enemy reaches the base",
			Scoring:       "10 points per enemy stopped",
		},
	},
}

// RuleFor returns the rule of gt. Unknown genres get the platformer rule.
func RuleFor(gt models.GameType) Rule {
	if r, ok := rules[gt]; ok {
		return r
	}
	return rules[models.Platformer]
}

// Uses reports whether the rule's player carries the named physics field.
func (r Rule) Uses(field string) bool {
	for _, f := range r.Fields {
		if f == field {
			return true
		}
	}
	return false
}

// ValidValue reports whether v is a usable value for the named physics field.
func ValidValue(field string, v float64) bool {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return false
	}
	switch field {
	case models.FieldJumpForce:
		return v < 0
	case models.FieldAirControl, models.FieldFriction, models.FieldDrift:
		return v >= 0 && v <= 1
	}
	return v > 0
}

// DefaultPlayer returns a player that already satisfies the rule of gt.
func DefaultPlayer(gt models.GameType) *models.Player {
	r := RuleFor(gt)
	p := &models.Player{
		Base: models.Base{
			Name: r.PlayerName, X: 100, Y: 700, Width: 32, Height: 32, Color: "#4A90E2",
		},
		Physics:   models.Physics{Gravity: r.Gravity},
		Abilities: make(map[string]bool, len(r.Abilities)+len(r.Starting)),
	}
	for _, f := range r.Fields {
		p.Physics.Set(f, r.Defaults[f])
	}
	for _, a := range r.Starting {
		p.Abilities[a] = true
	}
	for _, a := range r.Abilities {
		p.Abilities[a] = true
	}
	if r.VehicleState {
		p.CurrentSpeed, p.SteeringAngle, p.FacingAngle = models.Float(0), models.Float(0), models.Float(0)
	}
	return p
}
