package parse

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tatianab/gamespec/internal/models"
)

func TestExtractNothing(t *testing.T) {
	f := Extract("not json at all, just a story about ninjas")
	assert.True(t, f.Empty())
	assert.Nil(t, f.Found())
}

func TestExtractTruncated(t *testing.T) {
	raw := `{"title": "Ninja Run", "gameType": "Endless Runner", "theme": "feudal Japan",
  "visualStyle": "pixel art", "description": "Dash across rooft`
	f := Extract(raw)

	require.NotNil(t, f.Title)
	assert.Equal(t, "Ninja Run", *f.Title)
	require.NotNil(t, f.GameType)
	assert.Equal(t, models.EndlessRunner, *f.GameType)
	require.NotNil(t, f.Theme)
	assert.Equal(t, "feudal Japan", *f.Theme)
	require.NotNil(t, f.VisualStyle)
	assert.Equal(t, "pixel art", *f.VisualStyle)
	require.NotNil(t, f.Description)
	assert.Equal(t, "Dash across rooft", *f.Description)
	assert.Equal(t, []string{"title", "description", "gameType", "visualStyle", "theme"}, f.Found())
}

func TestExtractForms(t *testing.T) {
	tests := []struct {
		name  string
		raw   string
		title string
	}{
		{"single quoted", `{'title': 'Moon Base'}`, "Moon Base"},
		{"bare", "title = Sky Kingdom\n", "Sky Kingdom"},
		{"yaml", "title: Sky Kingdom\ngenre: td", "Sky Kingdom"},
		{"escaped", `{"title": "Say \"hi\""}`, `Say "hi"`},
		{"case insensitive", `{"Title": "Loud"}`, "Loud"},
		{"empty then filled", `{"title": "", "title": "Second"}`, "Second"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := Extract(tt.raw)
			require.NotNil(t, f.Title)
			assert.Equal(t, tt.title, *f.Title)
		})
	}
}

func TestExtractGameTypeSkipsUnknown(t *testing.T) {
	f := Extract(`{"genre": "dating sim", "gameType": "race"}`)
	require.NotNil(t, f.GameType)
	assert.Equal(t, models.Racing, *f.GameType)

	f = Extract(`{"gameType": "dating sim"}`)
	assert.Nil(t, f.GameType)
}

func TestExtractStyleAliases(t *testing.T) {
	f := Extract(`{"art_style": "watercolor", "setting": "underwater city"}`)
	require.NotNil(t, f.VisualStyle)
	assert.Equal(t, "watercolor", *f.VisualStyle)
	require.NotNil(t, f.Theme)
	assert.Equal(t, "underwater city", *f.Theme)
}

func TestExtractCapsLength(t *testing.T) {
	f := Extract(`{"description": "` + strings.Repeat("x", 500) + `"}`)
	require.NotNil(t, f.Description)
	assert.Len(t, *f.Description, maxFieldLen)
}
