package validate

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tatianab/gamespec/internal/fallback"
	"github.com/tatianab/gamespec/internal/models"
)

func decode(t *testing.T, s string) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal([]byte(s), &m))
	return m
}

func TestValidateMissingLevels(t *testing.T) {
	spec, warnings := Validate(decode(t, `{
		"title": "Cave", "description": "Dark", "gameType": "platformer",
		"entities": [{"type": "player", "name": "Ann", "x": 100, "y": 650, "width": 32, "height": 32, "color": "#fff"}]
	}`), models.Platformer)

	require.Len(t, spec.Levels, 1)
	l := spec.Levels[0]
	assert.Equal(t, 1600.0, l.Width)
	assert.Equal(t, 800.0, l.Height)
	assert.Equal(t, DefaultBackground, l.Background)
	require.Len(t, l.Platforms, 1)
	assert.Equal(t, "Ground", l.Platforms[0].Name)
	assert.Equal(t, 750.0, l.Platforms[0].Y)
	assert.Equal(t, 1600.0, l.Platforms[0].Width)
	assert.Len(t, l.Collectibles, 2)
	require.NotNil(t, l.Goal)
	assert.LessOrEqual(t, math.Abs(650-l.Goal.Y), 200.0)

	assert.Contains(t, warnings, models.Warning{Stage: models.StageValidate, Message: "levels missing, added a default level"})
	require.NoError(t, Check(spec))
}

func TestValidateLevelDefaults(t *testing.T) {
	spec, _ := Validate(decode(t, `{"title":"T","gameType":"platformer","entities":[{"type":"player","x":0,"y":0,"width":10,"height":10}],"levels":[{"width":800,"height":600}]}`), models.Platformer)

	p := spec.Player()
	require.NotNil(t, p)
	assert.Equal(t, "T", spec.Title)
	assert.Equal(t, 0.0, p.X)
	assert.Equal(t, 0.0, p.Y)
	assert.Equal(t, 10.0, p.Width)
	assert.Equal(t, "Hero", p.Name)

	l := spec.Levels[0]
	assert.Equal(t, 800.0, l.Width)
	require.Len(t, l.Platforms, 1)
	assert.Equal(t, models.Platform{
		Base:   models.Base{Name: "Ground", X: 0, Y: 550, Width: 800, Height: 50, Color: "#8B4513"},
		Static: true,
	}, l.Platforms[0])
	assert.NotNil(t, l.Collectibles)
	assert.Empty(t, l.Collectibles)
	assert.Nil(t, l.Goal)
	assert.Equal(t, "Reach the goal", spec.GameLogic.WinCondition)
}

func TestValidateEntityDefaults(t *testing.T) {
	spec, warnings := Validate(decode(t, `{"gameType": "platformer", "entities": [
		{"type": "player"},
		{"type": "Coin"},
		{"type": "platform", "static": false, "width": -5}
	]}`), models.Platformer)

	require.Len(t, spec.Entities, 3)
	coin, ok := spec.Entities[1].(*models.Collectible)
	require.True(t, ok)
	assert.Equal(t, "Coin", coin.Name)
	assert.Equal(t, 20.0, coin.Width)
	assert.Equal(t, "#FFD700", coin.Color)
	assert.Equal(t, 10, coin.Points)

	plat := spec.Entities[2].(*models.Platform)
	assert.True(t, plat.Static)
	assert.Equal(t, 100.0, plat.Width)

	assert.Contains(t, warnings, models.Warnf(models.StageValidate, `entities[1]: type "Coin" read as collectible`))
	assert.Contains(t, warnings, models.Warnf(models.StageValidate, "entities[2].static false forced to true"))
	assert.Contains(t, warnings, models.Warnf(models.StageValidate, "entities[2].width must be positive, replaced -5 with 100"))
}

func TestValidateInfersKind(t *testing.T) {
	tests := []struct {
		entity string
		want   models.EntityKind
	}{
		{`{"name": "Evil Monster"}`, models.KindEnemy},
		{`{"type": "spaceship", "name": "Finish Gate"}`, models.KindGoal},
		{`{"name": "Mystery"}`, models.KindCollectible},
		{`{"type": 7, "name": "Stone Ledge"}`, models.KindPlatform},
	}
	for _, tt := range tests {
		spec, _ := Validate(decode(t, `{"gameType": "puzzle", "entities": [{"type": "player"}, `+tt.entity+`]}`), "")
		require.Len(t, spec.Entities, 2, tt.entity)
		assert.Equal(t, tt.want, spec.Entities[1].Kind(), tt.entity)
	}
}

func TestValidateExactlyOnePlayer(t *testing.T) {
	spec, warnings := Validate(decode(t, `{"gameType": "platformer", "entities": [
		{"type": "player", "name": "One"},
		{"type": "player", "name": "Two", "abilities": {"jump": true}}
	]}`), models.Platformer)

	require.Len(t, spec.Entities, 2)
	assert.Equal(t, "One", spec.Player().Name)
	enemy, ok := spec.Entities[1].(*models.Enemy)
	require.True(t, ok)
	assert.Equal(t, "Two", enemy.Name)
	assert.Equal(t, map[string]any{"jump": true}, enemy.Extra["abilities"])
	assert.Contains(t, warnings, models.Warnf(models.StageValidate, `entity "Two": extra player demoted to enemy`))

	spec, _ = Validate(decode(t, `{"gameType": "racing", "entities": [{"type": "enemy", "name": "Rival"}]}`), models.Platformer)
	require.Len(t, spec.Entities, 2)
	assert.Equal(t, "Racer", spec.Entities[0].Common().Name)
	assert.Equal(t, models.KindPlayer, spec.Entities[0].Kind())

	spec, _ = Validate(map[string]any{}, models.Shooter)
	require.Len(t, spec.Entities, 1)
	assert.Equal(t, "Pilot", spec.Player().Name)
	assert.Equal(t, "Untitled Shooter", spec.Title)
}

func TestValidateCoercesNumbers(t *testing.T) {
	spec, warnings := Validate(decode(t, `{"gameType": "platformer", "entities": [
		{"type": "player", "x": "120", "y": 300, "physics": {"gravity": "true", "jumpForce": "-450"}},
		{"type": "collectible", "points": -3},
		{"type": "collectible", "points": "7"}
	]}`), models.Platformer)

	p := spec.Player()
	assert.Equal(t, 120.0, p.X)
	assert.True(t, p.Physics.Gravity)
	assert.Equal(t, -450.0, *p.Physics.JumpForce)
	assert.Equal(t, 0, spec.Entities[1].(*models.Collectible).Points)
	assert.Equal(t, 7, spec.Entities[2].(*models.Collectible).Points)
	assert.Contains(t, warnings, models.Warnf(models.StageValidate, `entities[0].x: converted "120" to a number`))
}

func TestValidatePassesUnknownFieldsThrough(t *testing.T) {
	spec, _ := Validate(decode(t, `{
		"title": "T", "gameType": "platformer", "mobileOptimized": true, "artStyle": "pixel",
		"entities": [{"type": "player", "sprite": "hero.png", "physics": {"gravity": true, "mass": 3}}],
		"levels": [{"width": 800, "height": 600, "music": "theme.ogg", "platforms": [{"name": "Ground", "texture": "grass"}]}],
		"gameLogic": {"winCondition": "Win", "timeLimit": 90}
	}`), models.Platformer)

	assert.Equal(t, map[string]any{"mobileOptimized": true, "artStyle": "pixel"}, spec.Extra)
	p := spec.Player()
	assert.Equal(t, map[string]any{"sprite": "hero.png"}, p.Extra)
	assert.Equal(t, map[string]any{"mass": 3.0}, p.Physics.Extra)
	assert.Equal(t, map[string]any{"music": "theme.ogg"}, spec.Levels[0].Extra)
	assert.Equal(t, map[string]any{"texture": "grass"}, spec.Levels[0].Platforms[0].Extra)
	assert.Equal(t, map[string]any{"timeLimit": 90.0}, spec.GameLogic.Extra)

	data, err := json.Marshal(spec)
	require.NoError(t, err)
	out := decode(t, string(data))
	assert.Equal(t, true, out["mobileOptimized"])
	assert.Equal(t, "grass", out["levels"].([]any)[0].(map[string]any)["platforms"].([]any)[0].(map[string]any)["texture"])
}

func TestValidateGameType(t *testing.T) {
	tests := []struct {
		name      string
		candidate string
		assumed   models.GameType
		want      models.GameType
	}{
		{"exact", `{"gameType": "fighting"}`, models.Platformer, models.Fighting},
		{"alias key", `{"genre": "Tower Defense"}`, models.Platformer, models.TowerDefense},
		{"vehicle physics", `{"entities": [{"type": "player", "physics": {"maxSpeed": 300}}]}`, models.Platformer, models.Racing},
		{"unknown uses assumed", `{"gameType": "dating sim"}`, models.Shooter, models.Shooter},
		{"nothing assumed", `{}`, "", models.Platformer},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec, _ := Validate(decode(t, tt.candidate), tt.assumed)
			assert.Equal(t, tt.want, spec.GameType)
		})
	}
}

func TestValidateKeepsGenreAliasKeys(t *testing.T) {
	spec, _ := Validate(decode(t, `{"title": "T", "genre": "Tower Defense", "game_type": "td"}`), models.Platformer)
	assert.Equal(t, models.TowerDefense, spec.GameType)
	assert.Equal(t, map[string]any{"genre": "Tower Defense", "game_type": "td"}, spec.Extra)

	data, err := json.Marshal(spec)
	require.NoError(t, err)
	out := decode(t, string(data))
	assert.Equal(t, "tower_defense", out["gameType"])
	assert.Equal(t, "Tower Defense", out["genre"])
	assert.Equal(t, "td", out["game_type"])
}

func TestValidateAbilities(t *testing.T) {
	spec, _ := Validate(decode(t, `{"entities": [{"type": "player", "abilities": ["jump", "dash"]}]}`), models.Platformer)
	assert.Equal(t, map[string]bool{"jump": true, "dash": true}, spec.Player().Abilities)

	spec, _ = Validate(decode(t, `{"entities": [{"type": "player", "abilities": {"jump": "no", "fly": 1}}]}`), models.Platformer)
	assert.Equal(t, map[string]bool{"jump": false, "fly": true}, spec.Player().Abilities)
}

func TestValidateClampsSpawn(t *testing.T) {
	spec, _ := Validate(decode(t, `{"entities": [{"type": "player", "x": 5000, "y": -40, "width": 32, "height": 32}],
		"levels": [{"width": 800, "height": 600}]}`), models.Platformer)
	p := spec.Player()
	assert.Equal(t, 768.0, p.X)
	assert.Equal(t, 0.0, p.Y)
}

func TestValidateKeepsCandidate(t *testing.T) {
	raw := `{"title": "T", "entities": [{"type": "hero", "physics": {"gravity": "yes"}}], "levels": [{"platforms": [{}]}]}`
	candidate := decode(t, raw)
	Validate(candidate, models.Platformer)
	assert.Empty(t, cmp.Diff(decode(t, raw), candidate))
}

func TestValidateTemplatesUnchanged(t *testing.T) {
	reg := fallback.NewRegistry()
	for _, gt := range reg.GameTypes() {
		t.Run(string(gt), func(t *testing.T) {
			want := reg.Template(gt)
			data, err := json.Marshal(want)
			require.NoError(t, err)

			got, warnings := Validate(decode(t, string(data)), models.Platformer)
			assert.Empty(t, warnings)
			assert.Empty(t, cmp.Diff(want, got, cmpopts.EquateEmpty()))
		})
	}
}

func TestCheck(t *testing.T) {
	reg := fallback.NewRegistry()
	require.NoError(t, Check(reg.Template(models.Racing)))

	spec := reg.Template(models.Racing)
	spec.Player().Physics.Gravity = true
	spec.Player().Physics.Clear(models.FieldDrift)
	spec.Entities = append(spec.Entities, &models.Player{Base: models.Base{Name: "Ghost", Width: 1, Height: 1}})
	spec.Levels[0].Goal.Y = 1000
	spec.Levels[0].Platforms = append(spec.Levels[0].Platforms, models.Platform{Base: models.Base{Name: "Ramp", Width: 10}})
	spec.Levels[0].Collectibles[0].Points = -1

	err := Check(spec)
	require.Error(t, err)
	for _, msg := range []string{
		"2 player entities",
		"player gravity is true",
		"physics.drift",
		"levels[0].goal is 600 units",
		"levels[0].platforms[5] is not a barrier",
		"levels[0].platforms[5] is not static",
		"levels[0].platforms[5] size 10x0",
		"levels[0].collectibles[0] points -1",
	} {
		assert.ErrorContains(t, err, msg)
	}

	assert.ErrorContains(t, Check(&models.GameSpecification{}), "no levels")
	assert.Error(t, Check(nil))
}
