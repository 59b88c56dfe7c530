package engine

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tatianab/gamespec/internal/fallback"
	"github.com/tatianab/gamespec/internal/models"
	"github.com/tatianab/gamespec/internal/pipeline"
	"github.com/tatianab/gamespec/internal/validate"
)

// scripted replays canned completions and records the prompts it saw.
type scripted struct {
	mu      sync.Mutex
	replies []Completion
	errs    []error
	prompts []string
}

func (s *scripted) Generate(_ context.Context, prompt string) (Completion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := len(s.prompts)
	s.prompts = append(s.prompts, prompt)
	if i < len(s.errs) && s.errs[i] != nil {
		return Completion{}, s.errs[i]
	}
	if i >= len(s.replies) {
		return Completion{}, errors.New("script exhausted")
	}
	return s.replies[i], nil
}

func templateJSON(t *testing.T, gt models.GameType) string {
	t.Helper()
	data, err := json.Marshal(fallback.NewRegistry().Template(gt))
	require.NoError(t, err)
	return string(data)
}

func TestGenerateScene(t *testing.T) {
	text := templateJSON(t, models.Racing)
	gen := &scripted{replies: []Completion{{Text: "```json\n" + text + "\n```"}}}
	e := NewEngine(gen, fallback.NewRegistry())

	scene, err := e.GenerateScene(context.Background(), "neon city drift", models.Racing)
	require.NoError(t, err)

	require.Len(t, gen.prompts, 1)
	assert.Contains(t, gen.prompts[0], "neon city drift")
	assert.Contains(t, gen.prompts[0], `"gameType": "racing"`)
	assert.Contains(t, gen.prompts[0], "1600 wide and 800 tall")

	assert.Equal(t, 0, scene.Continuations)
	assert.Equal(t, pipeline.PathParsed, scene.Result.Path)
	assert.Equal(t, "Circuit Sprint", scene.Result.Spec.Title)
	require.NoError(t, validate.Check(scene.Result.Spec))
}

func TestGenerateSceneContinues(t *testing.T) {
	text := templateJSON(t, models.Platformer)
	cut := len(text) / 3
	gen := &scripted{replies: []Completion{
		{Text: text[:cut], Truncated: true},
		{Text: text[cut : 2*cut], Truncated: true},
		{Text: text[2*cut:]},
	}}
	e := NewEngine(gen, fallback.NewRegistry(), WithMaxContinuations(3))

	scene, err := e.GenerateScene(context.Background(), "", models.Platformer)
	require.NoError(t, err)

	assert.Equal(t, 2, scene.Continuations)
	assert.Equal(t, text, scene.Raw)
	assert.Equal(t, pipeline.PathParsed, scene.Result.Path)
	assert.Empty(t, scene.Result.Warnings)

	require.Len(t, gen.prompts, 3)
	assert.Contains(t, gen.prompts[0], "surprise me")
	assert.Contains(t, gen.prompts[1], "continue it from the exact character")
	assert.True(t, strings.HasSuffix(strings.TrimSpace(gen.prompts[2]), strings.TrimSpace(tail(text[:2*cut]))))
}

func TestGenerateSceneContinuationLimit(t *testing.T) {
	gen := &scripted{replies: []Completion{
		{Text: `{"title": "Cut`, Truncated: true},
		{Text: ` Off", "gameType": "flappy", "entities": [`, Truncated: true},
		{Text: `{"type": "player"`, Truncated: true},
	}}
	e := NewEngine(gen, fallback.NewRegistry(), WithMaxContinuations(1))

	scene, err := e.GenerateScene(context.Background(), "birds", models.Flappy)
	require.NoError(t, err)

	assert.Len(t, gen.prompts, 2)
	assert.Equal(t, 1, scene.Continuations)
	assert.Equal(t, models.Flappy, scene.Result.Spec.GameType)
	assert.Equal(t, "Cut Off", scene.Result.Spec.Title)
	require.NoError(t, validate.Check(scene.Result.Spec))
}

func TestGenerateSceneErrors(t *testing.T) {
	boom := errors.New("quota exceeded")

	_, err := NewEngine(nil, fallback.NewRegistry()).GenerateScene(context.Background(), "", models.Puzzle)
	assert.ErrorIs(t, err, ErrNoGenerator)

	gen := &scripted{errs: []error{boom}}
	_, err = NewEngine(gen, fallback.NewRegistry()).GenerateScene(context.Background(), "", models.Puzzle)
	assert.ErrorIs(t, err, boom)

	// A failed continuation keeps what was already generated.
	gen = &scripted{
		replies: []Completion{{Text: `{"title": "Half`, Truncated: true}},
		errs:    []error{nil, boom},
	}
	scene, err := NewEngine(gen, fallback.NewRegistry()).GenerateScene(context.Background(), "", models.Puzzle)
	require.NoError(t, err)
	assert.Equal(t, 0, scene.Continuations)
	assert.Equal(t, `{"title": "Half`, scene.Raw)
	require.NoError(t, validate.Check(scene.Result.Spec))
}

func TestRecover(t *testing.T) {
	e := NewEngine(nil, fallback.NewRegistry(), WithCacheSize(4))

	res := e.Recover("nothing useful", models.Fighting)
	assert.Equal(t, pipeline.PathFallback, res.Path)
	assert.Equal(t, models.Fighting, res.Spec.GameType)

	res.Spec.Title = "changed"
	again := e.Recover("nothing useful", models.Fighting)
	assert.Equal(t, "Untitled Fighting", again.Spec.Title)

	res = e.Recover("nothing useful", models.GameType("golf"))
	assert.Equal(t, models.Platformer, res.Spec.GameType)
}

func TestTail(t *testing.T) {
	assert.Equal(t, "short", tail("short"))

	long := strings.Repeat("a", tailLen) + "end"
	assert.Equal(t, long[3:], tail(long))

	// The cut would land inside the three-byte rune.
	multi := "€" + strings.Repeat("b", tailLen-2)
	assert.Equal(t, strings.Repeat("b", tailLen-2), tail(multi))
}
