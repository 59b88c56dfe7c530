package report

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tatianab/gamespec/internal/fallback"
	"github.com/tatianab/gamespec/internal/models"
	"github.com/tatianab/gamespec/internal/pipeline"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s := NewStore(filepath.Join(t.TempDir(), "saves"))
	clock := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time {
		clock = clock.Add(time.Minute)
		return clock
	}
	return s
}

func TestSaveLoad(t *testing.T) {
	s := newTestStore(t)
	raw := "```json\n{\"title\": \"Hop\", \"gameType\": \"platformer\",}\n```"
	res := pipeline.New(fallback.NewRegistry()).Run(raw)

	id, err := s.Save(res, raw, "hop.txt")
	require.NoError(t, err)

	for _, name := range []string{rawFile, specFile, summaryFile} {
		assert.FileExists(t, filepath.Join(s.Dir(), id, name))
	}

	r, err := s.Load(id)
	require.NoError(t, err)
	assert.Equal(t, id, r.ID)
	assert.Equal(t, raw, r.Raw)
	assert.Equal(t, "hop.txt", r.Source)
	assert.Equal(t, "Hop", r.Title)
	assert.Equal(t, models.Platformer, r.GameType)
	assert.Equal(t, pipeline.PathParsed, r.Path)
	assert.Equal(t, "repair", r.Stage)
	assert.Equal(t, res.Warnings, r.Warnings)

	want, err := json.MarshalIndent(res.Spec, "", "  ")
	require.NoError(t, err)
	assert.JSONEq(t, string(want), string(r.Spec))
}

func TestSaveFallback(t *testing.T) {
	s := newTestStore(t)
	res := pipeline.New(fallback.NewRegistry()).Run("")

	id, err := s.Save(res, "", "empty")
	require.NoError(t, err)
	r, err := s.Load(id)
	require.NoError(t, err)
	assert.Equal(t, pipeline.PathFallback, r.Path)
	assert.Empty(t, r.Stage)
	assert.Empty(t, r.Raw)
}

func TestSaveNoSpec(t *testing.T) {
	_, err := newTestStore(t).Save(pipeline.Result{}, "x", "x")
	assert.Error(t, err)
}

func TestList(t *testing.T) {
	s := newTestStore(t)

	got, err := s.List()
	require.NoError(t, err)
	assert.Empty(t, got)

	p := pipeline.New(fallback.NewRegistry())
	var ids []string
	for _, raw := range []string{"one", "two", "three"} {
		id, err := s.Save(p.Run(raw), raw, raw)
		require.NoError(t, err)
		ids = append(ids, id)
	}
	// Incomplete reports and stray files are skipped.
	require.NoError(t, os.MkdirAll(filepath.Join(s.Dir(), "partial"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(s.Dir(), "notes.txt"), []byte("hi"), 0644))

	got, err = s.List()
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, []string{ids[2], ids[1], ids[0]}, []string{got[0].ID, got[1].ID, got[2].ID})
	assert.Equal(t, "three", got[0].Source)
}

func TestLoadErrors(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Load("../../etc")
	assert.ErrorContains(t, err, "invalid report id")

	_, err = s.Load("0b0e6a0e-2c55-4a63-9a57-6d1f3b1b4e55")
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestMarkdown(t *testing.T) {
	res := pipeline.New(fallback.NewRegistry(), pipeline.WithRequestedGenre(models.Racing)).Run("")
	md := Markdown(res)

	assert.Contains(t, md, "# Untitled Racing\n")
	assert.Contains(t, md, "- **Genre:** Racing\n")
	assert.Contains(t, md, "- **Recovered via:** fallback\n")
	assert.Contains(t, md, "gravity false")
	assert.Contains(t, md, "- `maxSpeed`: 400\n")
	assert.Contains(t, md, "- abilities: boost\n")
	assert.Contains(t, md, "| 0 | 1600x800 |")
	assert.Contains(t, md, "`fallback` used the racing fallback template")
}
