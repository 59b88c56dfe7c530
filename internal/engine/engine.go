package engine

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"strings"
	"sync"
	"text/template"

	"go.uber.org/zap"

	"github.com/tatianab/gamespec/internal/fallback"
	"github.com/tatianab/gamespec/internal/models"
	"github.com/tatianab/gamespec/internal/pipeline"
	"github.com/tatianab/gamespec/internal/validate"
)

//go:embed prompts/*.txt
var promptFS embed.FS

var prompts = template.Must(template.ParseFS(promptFS, "prompts/*.txt"))

// tailLen is how much of a cut-off answer is quoted back in a continuation
// prompt.
const tailLen = 400

var ErrNoGenerator = errors.New("no generator configured")

// Completion is one response from a Generator.
type Completion struct {
	Text string
	// Truncated is set when the generator stopped because it hit its output
	// limit rather than because it finished.
	Truncated bool
}

// Generator produces text for a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (Completion, error)
}

// Scene is a generated specification together with the text it came from.
type Scene struct {
	Hint          string
	Raw           string
	Continuations int
	Result        pipeline.Result
}

type Engine struct {
	gen              Generator
	templates        *fallback.Registry
	log              *zap.Logger
	maxContinuations int
	cacheSize        int

	mu      sync.Mutex
	runners map[models.GameType]pipeline.Runner
}

type Option func(*Engine)

func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

// WithMaxContinuations caps how many times a truncated answer is continued.
func WithMaxContinuations(n int) Option {
	return func(e *Engine) {
		e.maxContinuations = max(n, 0)
	}
}

// WithCacheSize sets how many recovered results are remembered per genre.
// Zero disables caching.
func WithCacheSize(n int) Option {
	return func(e *Engine) {
		e.cacheSize = n
	}
}

// NewEngine returns an engine. gen may be nil, in which case only Recover
// is usable.
func NewEngine(gen Generator, templates *fallback.Registry, opts ...Option) *Engine {
	e := &Engine{
		gen:              gen,
		templates:        templates,
		log:              zap.NewNop(),
		maxContinuations: 2,
		runners:          make(map[models.GameType]pipeline.Runner),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Recover runs the recovery pipeline on raw, assuming gt when the text does
// not name a genre.
func (e *Engine) Recover(raw string, gt models.GameType) pipeline.Result {
	return e.runner(gt).Run(raw)
}

func (e *Engine) runner(gt models.GameType) pipeline.Runner {
	if !gt.Valid() {
		gt = models.Platformer
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if r, ok := e.runners[gt]; ok {
		return r
	}
	var r pipeline.Runner = pipeline.New(e.templates,
		pipeline.WithLogger(e.log),
		pipeline.WithRequestedGenre(gt))
	if e.cacheSize > 0 {
		c, err := pipeline.NewCache(r, e.cacheSize)
		if err != nil {
			e.log.Warn("running without a result cache", zap.Error(err))
		} else {
			r = c
		}
	}
	e.runners[gt] = r
	return r
}

// GenerateScene asks the generator for a scene of genre gt and recovers a
// specification from whatever comes back. Answers cut off at the output
// limit are continued up to the configured number of times.
func (e *Engine) GenerateScene(ctx context.Context, hint string, gt models.GameType) (*Scene, error) {
	if e.gen == nil {
		return nil, ErrNoGenerator
	}
	if !gt.Valid() {
		gt = models.Platformer
	}

	prompt, err := render("generate_scene.txt", struct {
		Hint          string
		GameType      models.GameType
		GameTypeTitle string
		EntityTypes   string
		Width, Height int
	}{
		Hint:          strings.TrimSpace(hint),
		GameType:      gt,
		GameTypeTitle: strings.ToLower(gt.Title()),
		EntityTypes:   `"player", "enemy", "collectible", "platform", "goal"`,
		Width:         validate.DefaultLevelWidth,
		Height:        validate.DefaultLevelHeight,
	})
	if err != nil {
		return nil, err
	}

	c, err := e.gen.Generate(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("generating scene: %w", err)
	}
	var raw strings.Builder
	raw.WriteString(c.Text)

	scene := &Scene{Hint: hint}
	for c.Truncated && scene.Continuations < e.maxContinuations {
		text := raw.String()
		prompt, err := render("continue_scene.txt", struct{ Tail string }{Tail: tail(text)})
		if err != nil {
			return nil, err
		}
		c, err = e.gen.Generate(ctx, prompt)
		if err != nil {
			// The pipeline copes with a cut-off answer.
			e.log.Warn("continuation failed, recovering from partial output",
				zap.Error(err), zap.Int("bytes", len(text)))
			break
		}
		raw.WriteString(c.Text)
		scene.Continuations++
	}
	if c.Truncated {
		e.log.Info("answer still truncated after continuations", zap.Int("continuations", scene.Continuations))
	}

	scene.Raw = raw.String()
	scene.Result = e.Recover(scene.Raw, gt)
	e.log.Debug("scene generated",
		zap.String("result", scene.Result.String()),
		zap.Int("continuations", scene.Continuations))
	return scene, nil
}

func render(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := prompts.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("rendering %s: %w", name, err)
	}
	return buf.String(), nil
}

func tail(s string) string {
	if len(s) <= tailLen {
		return s
	}
	s = s[len(s)-tailLen:]
	// Drop a partial UTF-8 sequence at the cut.
	for len(s) > 0 && s[0]&0xC0 == 0x80 {
		s = s[1:]
	}
	return s
}
