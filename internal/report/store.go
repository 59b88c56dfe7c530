// Package report saves recovery results to disk so they can be inspected
// later. Each report is a directory holding the raw generator text, the
// recovered specification and a YAML summary.
package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/tatianab/gamespec/internal/models"
	"github.com/tatianab/gamespec/internal/pipeline"
)

const (
	rawFile     = "raw.txt"
	specFile    = "spec.json"
	summaryFile = "report.yaml"
)

// Summary is the metadata written to report.yaml.
type Summary struct {
	ID        string           `yaml:"id"`
	CreatedAt time.Time        `yaml:"createdAt"`
	Source    string           `yaml:"source"`
	Title     string           `yaml:"title"`
	GameType  models.GameType  `yaml:"gameType"`
	Path      pipeline.Path    `yaml:"path"`
	Stage     string           `yaml:"stage,omitempty"`
	Warnings  []models.Warning `yaml:"warnings"`
}

// Report is a saved report read back from disk.
type Report struct {
	Summary
	Raw string
	// Spec is the specification as it was written, indented JSON.
	Spec []byte
}

type Store struct {
	dir string
	now func() time.Time
}

func NewStore(dir string) *Store {
	return &Store{dir: dir, now: time.Now}
}

func (s *Store) Dir() string { return s.dir }

// Save writes res and the text it was recovered from, and returns the new
// report's ID. source says where raw came from, e.g. a file name or a hint.
func (s *Store) Save(res pipeline.Result, raw, source string) (string, error) {
	if res.Spec == nil {
		return "", errors.New("result has no specification")
	}
	sum := Summary{
		ID:        uuid.NewString(),
		CreatedAt: s.now().UTC(),
		Source:    source,
		Title:     res.Spec.Title,
		GameType:  res.Spec.GameType,
		Path:      res.Path,
		Warnings:  res.Warnings,
	}
	if res.Stage != 0 {
		sum.Stage = res.Stage.String()
	}

	specData, err := json.MarshalIndent(res.Spec, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding specification: %w", err)
	}
	sumData, err := yaml.Marshal(sum)
	if err != nil {
		return "", fmt.Errorf("encoding summary: %w", err)
	}

	dir := filepath.Join(s.dir, sum.ID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}
	files := []struct {
		name string
		data []byte
	}{
		{rawFile, []byte(raw)},
		{specFile, specData},
		// Written last: its presence marks a complete report.
		{summaryFile, sumData},
	}
	for _, f := range files {
		if err := os.WriteFile(filepath.Join(dir, f.name), f.data, 0644); err != nil {
			return "", err
		}
	}
	return sum.ID, nil
}

// List returns the summaries of every complete report, newest first.
func (s *Store) List() ([]Summary, error) {
	entries, err := os.ReadDir(s.dir)
	if errors.Is(err, fs.ErrNotExist) {
		return []Summary{}, nil
	}
	if err != nil {
		return nil, err
	}

	var out []Summary
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		sum, err := s.summary(entry.Name())
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, *sum)
	}
	slices.SortFunc(out, func(a, b Summary) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return out, nil
}

func (s *Store) Load(id string) (*Report, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("invalid report id %q: %w", id, err)
	}
	sum, err := s.summary(id)
	if err != nil {
		return nil, err
	}
	dir := filepath.Join(s.dir, id)
	raw, err := os.ReadFile(filepath.Join(dir, rawFile))
	if err != nil {
		return nil, err
	}
	spec, err := os.ReadFile(filepath.Join(dir, specFile))
	if err != nil {
		return nil, err
	}
	return &Report{Summary: *sum, Raw: string(raw), Spec: spec}, nil
}

func (s *Store) summary(id string) (*Summary, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, id, summaryFile))
	if err != nil {
		return nil, err
	}
	var sum Summary
	if err := yaml.Unmarshal(data, &sum); err != nil {
		return nil, fmt.Errorf("reading report %s: %w", id, err)
	}
	return &sum, nil
}
