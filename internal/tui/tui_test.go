package tui

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tatianab/gamespec/internal/engine"
	"github.com/tatianab/gamespec/internal/fallback"
	"github.com/tatianab/gamespec/internal/models"
	"github.com/tatianab/gamespec/internal/pipeline"
	"github.com/tatianab/gamespec/internal/report"
)

type failingGenerator struct{}

func (failingGenerator) Generate(context.Context, string) (engine.Completion, error) {
	return engine.Completion{}, errors.New("offline")
}

func update(t *testing.T, m model, msg tea.Msg) (model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	mm, ok := next.(model)
	require.True(t, ok)
	return mm, cmd
}

func TestRecoverAndSave(t *testing.T) {
	store := report.NewStore(filepath.Join(t.TempDir(), "saves"))
	m := NewModel(Options{
		Engine: engine.NewEngine(nil, fallback.NewRegistry()),
		Store:  store,
		Genre:  models.Shooter,
	})
	assert.Equal(t, stateInput, m.state)

	m, _ = update(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})
	msg := m.recover("not a scene", "clipboard")()
	m, _ = update(t, m, msg)

	require.Equal(t, stateReport, m.state)
	assert.Equal(t, pipeline.PathFallback, m.result.Path)
	assert.Equal(t, models.Shooter, m.result.Spec.GameType)
	assert.Equal(t, "Untitled Shooter", m.result.Spec.Title)
	assert.Contains(t, m.View(), "Shooter")
	assert.Contains(t, m.renderStats(), "fallback: 1")

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyCtrlS})
	require.NotNil(t, cmd)
	m, _ = update(t, m, cmd())
	assert.Contains(t, m.status, "Saved report ")

	saved, err := store.List()
	require.NoError(t, err)
	require.Len(t, saved, 1)
	assert.Equal(t, "clipboard", saved[0].Source)

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlN})
	assert.Equal(t, stateInput, m.state)
	assert.Empty(t, m.status)
}

func TestInitialRaw(t *testing.T) {
	m := NewModel(Options{
		Engine: engine.NewEngine(nil, fallback.NewRegistry()),
		Raw:    `{"title": "Given", "gameType": "puzzle"}`,
		Source: "scene.json",
	})
	assert.Equal(t, stateLoading, m.state)
	assert.NotNil(t, m.Init())

	m, _ = update(t, m, m.recover(m.opts.Raw, m.opts.Source)())
	assert.Equal(t, stateReport, m.state)
	assert.Equal(t, "Given", m.result.Spec.Title)
	assert.Equal(t, pipeline.PathParsed, m.result.Path)
}

func TestSaveWithoutStore(t *testing.T) {
	m := NewModel(Options{Engine: engine.NewEngine(nil, fallback.NewRegistry())})
	m, _ = update(t, m, m.recover("", "empty")())

	_, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyCtrlS})
	m, _ = update(t, m, cmd())
	assert.Equal(t, stateReport, m.state)
	assert.Contains(t, m.status, "Save failed")
}

func TestGenerateError(t *testing.T) {
	m := NewModel(Options{
		Engine: engine.NewEngine(failingGenerator{}, fallback.NewRegistry()),
		Online: true,
	})
	assert.Contains(t, m.View(), "platformer game you want")

	m, _ = update(t, m, m.generate("castle")())
	assert.Equal(t, stateError, m.state)
	assert.Contains(t, m.View(), "offline")

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlN})
	assert.Equal(t, stateInput, m.state)
	assert.NoError(t, m.err)
}
