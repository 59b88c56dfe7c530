package models

import "strings"

// EntityKind is the discriminator of the Entity variants.
type EntityKind string

const (
	KindPlayer      EntityKind = "player"
	KindEnemy       EntityKind = "enemy"
	KindCollectible EntityKind = "collectible"
	KindPlatform    EntityKind = "platform"
	KindGoal        EntityKind = "goal"
)

var entityKindAliases = map[string]EntityKind{
	"hero":       KindPlayer,
	"character":  KindPlayer,
	"npc":        KindEnemy,
	"monster":    KindEnemy,
	"obstacle":   KindEnemy,
	"hazard":     KindEnemy,
	"opponent":   KindEnemy,
	"coin":       KindCollectible,
	"item":       KindCollectible,
	"pickup":     KindCollectible,
	"powerup":    KindCollectible,
	"power_up":   KindCollectible,
	"ground":     KindPlatform,
	"wall":       KindPlatform,
	"block":      KindPlatform,
	"barrier":    KindPlatform,
	"finish":     KindGoal,
	"exit":       KindGoal,
	"flag":       KindGoal,
	"portal":     KindGoal,
	"checkpoint": KindGoal,
}

// ParseEntityKind maps s onto a kind. exact is false when s was only
// recognized through an alias.
func ParseEntityKind(s string) (kind EntityKind, exact, ok bool) {
	key := strings.ToLower(strings.TrimSpace(s))
	key = strings.NewReplacer("-", "_", " ", "_").Replace(key)
	switch k := EntityKind(key); k {
	case KindPlayer, KindEnemy, KindCollectible, KindPlatform, KindGoal:
		return k, k == EntityKind(s), true
	}
	kind, ok = entityKindAliases[key]
	return kind, false, ok
}

// Entity is the closed set of scene objects: *Player, *Enemy, *Collectible,
// *Platform and *Goal. The unexported method keeps the set closed; code that
// switches on the concrete type must handle all five.
type Entity interface {
	Kind() EntityKind
	Common() *Base
	clone() Entity
}

// Base holds the fields every entity shares.
type Base struct {
	Name   string  `json:"name"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Color  string  `json:"color"`
	Emoji  string  `json:"emoji,omitempty"`

	Extra map[string]any `json:"-"`
}

func (b *Base) Common() *Base { return b }

type Player struct {
	Base
	Physics   Physics         `json:"physics"`
	Abilities map[string]bool `json:"abilities,omitempty"`

	// Vehicle runtime state, only present for vehicle genres.
	CurrentSpeed  *float64 `json:"currentSpeed,omitempty"`
	SteeringAngle *float64 `json:"steeringAngle,omitempty"`
	FacingAngle   *float64 `json:"facingAngle,omitempty"`
}

type Enemy struct {
	Base
	Physics Physics `json:"physics"`
}

type Collectible struct {
	Base
	Points int `json:"points"`
}

type Platform struct {
	Base
	Static bool `json:"static"`
	// Barrier marks fixed track boundaries, the only platforms racing keeps.
	Barrier bool `json:"barrier,omitempty"`
}

type Goal struct {
	Base
}

func (*Player) Kind() EntityKind      { return KindPlayer }
func (*Enemy) Kind() EntityKind       { return KindEnemy }
func (*Collectible) Kind() EntityKind { return KindCollectible }
func (*Platform) Kind() EntityKind    { return KindPlatform }
func (*Goal) Kind() EntityKind        { return KindGoal }
