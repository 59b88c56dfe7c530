// Package fallback provides the deterministic per-genre templates used when
// nothing structured can be recovered from generator output.
package fallback

import (
	"github.com/tatianab/gamespec/internal/models"
	"github.com/tatianab/gamespec/internal/parse"
)

// Registry is the catalogue of fallback templates, one per genre. It is
// built once and never modified, so one Registry can be shared by any number
// of concurrent pipelines.
type Registry struct {
	templates map[models.GameType]*models.GameSpecification
}

func NewRegistry() *Registry {
	return &Registry{templates: templates()}
}

// GameTypes lists the genres the registry has templates for.
func (r *Registry) GameTypes() []models.GameType {
	var out []models.GameType
	for _, gt := range models.GameTypes() {
		if _, ok := r.templates[gt]; ok {
			out = append(out, gt)
		}
	}
	return out
}

// Template returns a copy of the template for gt. Unknown genres get the
// platformer template.
func (r *Registry) Template(gt models.GameType) *models.GameSpecification {
	t, ok := r.templates[gt]
	if !ok {
		t = r.templates[models.Platformer]
	}
	return t.Clone()
}

// Generate builds a specification from the template of the recovered genre,
// or of requested when no genre was recovered, and copies the recovered
// fields over the template's. Without a recovered title the result gets a
// generic one.
func (r *Registry) Generate(fields parse.Fields, requested models.GameType) *models.GameSpecification {
	gt := requested
	if fields.GameType != nil {
		gt = *fields.GameType
	}
	if !gt.Valid() {
		gt = models.Platformer
	}

	spec := r.Template(gt)
	spec.Title = "Untitled " + gt.Title()
	if fields.Title != nil {
		spec.Title = *fields.Title
	}
	if fields.Description != nil {
		spec.Description = *fields.Description
	}
	if fields.Theme != nil {
		spec.Theme = *fields.Theme
	}
	if fields.VisualStyle != nil {
		spec.VisualStyle = *fields.VisualStyle
	}
	return spec
}
