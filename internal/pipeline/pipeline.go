// Package pipeline sequences the recovery stages: parse, then validate,
// enforce genre rules and playtest, falling back to a template when nothing
// structured survives. Run always returns a specification that passes
// validate.Check.
package pipeline

import (
	"fmt"
	"slices"
	"strings"

	"go.uber.org/zap"

	"github.com/tatianab/gamespec/internal/fallback"
	"github.com/tatianab/gamespec/internal/genre"
	"github.com/tatianab/gamespec/internal/models"
	"github.com/tatianab/gamespec/internal/parse"
	"github.com/tatianab/gamespec/internal/playtest"
	"github.com/tatianab/gamespec/internal/validate"
)

// Path says how a result was produced.
type Path string

const (
	PathParsed   Path = "parsed"
	PathFallback Path = "fallback"
)

// Result is the output of one run.
type Result struct {
	Spec     *models.GameSpecification `json:"spec"`
	Warnings []models.Warning          `json:"warnings"`
	Path     Path                      `json:"path"`
	// Stage is the parse stage that produced the candidate; zero on the
	// fallback path.
	Stage parse.Stage `json:"-"`
}

// Clone returns a deep copy of r.
func (r Result) Clone() Result {
	r.Spec = r.Spec.Clone()
	r.Warnings = slices.Clone(r.Warnings)
	return r
}

// Pipeline runs the recovery stages. It holds no per-run state and is safe
// for concurrent use.
type Pipeline struct {
	templates *fallback.Registry
	log       *zap.Logger
	genre     models.GameType
}

type Option func(*Pipeline)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(p *Pipeline) {
		if l != nil {
			p.log = l
		}
	}
}

// WithRequestedGenre sets the genre assumed when the input names none and
// used to pick a fallback template.
func WithRequestedGenre(gt models.GameType) Option {
	return func(p *Pipeline) {
		p.genre = gt
	}
}

func New(templates *fallback.Registry, opts ...Option) *Pipeline {
	p := &Pipeline{
		templates: templates,
		log:       zap.NewNop(),
		genre:     models.Platformer,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run recovers a specification from raw generator output. It never fails:
// when no stage can produce a valid specification the result comes from a
// fallback template, and a panic in any stage is turned into the same.
func (p *Pipeline) Run(raw string) (res Result) {
	var warnings []models.Warning
	defer func() {
		if r := recover(); r != nil {
			p.log.Error("recovery stage panicked", zap.Any("panic", r), zap.Stack("stack"))
			warnings = append(warnings, models.Warnf(models.StagePipeline, "recovered from internal error: %v", r))
			res = p.fallback(raw, warnings)
		}
	}()

	parsed, err := parse.Parse(raw)
	if err != nil {
		p.log.Warn("no parse stage succeeded", zap.Error(err), zap.Int("bytes", len(raw)))
		warnings = append(warnings, models.Warnf(models.StageParse, "no structure could be recovered: %v", err))
		return p.fallback(raw, warnings)
	}
	if w, ok := stageWarning(parsed); ok {
		warnings = append(warnings, w)
	}
	p.log.Debug("parsed candidate",
		zap.Stringer("stage", parsed.Stage),
		zap.String("strategy", parsed.Strategy),
		zap.Strings("applied", parsed.Applied))

	spec, vw := validate.Validate(parsed.Candidate, p.genre)
	warnings = append(warnings, vw...)
	warnings = append(warnings, genre.Enforce(spec)...)
	warnings = append(warnings, playtest.Run(spec)...)

	if err := validate.Check(spec); err != nil {
		p.log.Error("recovered specification failed its invariants", zap.Error(err))
		warnings = append(warnings, models.Warnf(models.StagePipeline, "recovered specification was unusable: %v", err))
		return p.fallback(raw, warnings)
	}

	p.log.Debug("specification recovered",
		zap.String("gameType", string(spec.GameType)),
		zap.Int("warnings", len(warnings)))
	return Result{Spec: spec, Warnings: warnings, Path: PathParsed, Stage: parsed.Stage}
}

func stageWarning(r *parse.Result) (models.Warning, bool) {
	switch r.Stage {
	case parse.StageFenced:
		return models.Warnf(models.StageParse, "extracted the specification from a fenced block"), true
	case parse.StageBraces:
		return models.Warnf(models.StageParse, "extracted the specification from surrounding text"), true
	case parse.StageRepair:
		return models.Warnf(models.StageParse, "repaired malformed syntax with %s (applied: %s)",
			r.Strategy, strings.Join(r.Applied, ", ")), true
	case parse.StageYAML:
		return models.Warnf(models.StageParse, "parsed the specification as YAML"), true
	}
	return models.Warning{}, false
}

// fallback builds the result from a template, carrying over whatever fields
// the partial extractor can find in raw.
func (p *Pipeline) fallback(raw string, warnings []models.Warning) Result {
	fields := parse.Extract(raw)
	if fields.Empty() {
		warnings = append(warnings, models.Warnf(models.StagePartial, "no fields recovered"))
	} else {
		warnings = append(warnings, models.Warnf(models.StagePartial, "recovered fields: %s", strings.Join(fields.Found(), ", ")))
	}

	spec := p.templates.Generate(fields, p.genre)
	warnings = append(warnings, models.Warnf(models.StageFallback, "used the %s fallback template", spec.GameType))
	warnings = append(warnings, genre.Enforce(spec)...)
	warnings = append(warnings, playtest.Run(spec)...)

	p.log.Warn("fell back to a template",
		zap.String("gameType", string(spec.GameType)),
		zap.Strings("recovered", fields.Found()))
	return Result{Spec: spec, Warnings: warnings, Path: PathFallback}
}

// String summarizes r in one line.
func (r Result) String() string {
	return fmt.Sprintf("%s %q (%s, %d warnings)", r.Spec.GameType, r.Spec.Title, r.Path, len(r.Warnings))
}
