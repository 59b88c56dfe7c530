// Command simulate_recovery stress-tests the recovery pipeline. It serializes
// every fallback template, corrupts the text the ways language models tend to,
// recovers each sample concurrently and reports any result that breaks a
// specification invariant. With --live it also asks Gemini for one scene per
// genre.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"os"
	"regexp"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/tatianab/gamespec/internal/config"
	"github.com/tatianab/gamespec/internal/engine"
	"github.com/tatianab/gamespec/internal/fallback"
	"github.com/tatianab/gamespec/internal/models"
	"github.com/tatianab/gamespec/internal/pipeline"
	"github.com/tatianab/gamespec/internal/validate"
)

var (
	samples int
	workers int
	seed    uint64
	live    bool
)

type corruption struct {
	name  string
	apply func(r *rand.Rand, s string) string
}

var quotedKey = regexp.MustCompile(`"(\w+)":`)

var corruptions = []corruption{
	{"truncate", func(r *rand.Rand, s string) string {
		return s[:r.IntN(len(s)+1)]
	}},
	{"fence", func(_ *rand.Rand, s string) string {
		return "Here is your level:\n```json\n" + s + "\n```\nHave fun!"
	}},
	{"prose", func(_ *rand.Rand, s string) string {
		return "Sure! I designed this game for you. " + s + " Let me know if you want changes."
	}},
	{"single quotes", func(_ *rand.Rand, s string) string {
		return strings.ReplaceAll(s, `"`, `'`)
	}},
	{"trailing commas", func(_ *rand.Rand, s string) string {
		s = strings.ReplaceAll(s, "}", ",}")
		return strings.ReplaceAll(s, "]", ",]")
	}},
	{"bare keys", func(_ *rand.Rand, s string) string {
		return quotedKey.ReplaceAllString(s, "$1:")
	}},
	{"comments", func(r *rand.Rand, s string) string {
		i := strings.IndexByte(s, ',')
		if i < 0 {
			return "// generated scene\n" + s
		}
		return "// generated scene\n" + s[:i+1] + " /* tweak later */" + s[i+1:]
	}},
	{"drop brace", func(r *rand.Rand, s string) string {
		var at []int
		for i := range len(s) {
			if s[i] == '}' || s[i] == ']' {
				at = append(at, i)
			}
		}
		if len(at) == 0 {
			return s
		}
		i := at[r.IntN(len(at))]
		return s[:i] + s[i+1:]
	}},
}

type sample struct {
	genre   models.GameType
	applied []string
	text    string
}

type tally struct {
	mu         sync.Mutex
	paths      map[pipeline.Path]int
	stages     map[string]int
	violations []string
}

func (t *tally) add(s sample, res pipeline.Result) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.paths[res.Path]++
	for _, w := range res.Warnings {
		t.stages[w.Stage]++
	}
	if err := validate.Check(res.Spec); err != nil {
		t.violations = append(t.violations,
			fmt.Sprintf("%s [%s]: %v", s.genre, strings.Join(s.applied, ", "), err))
	}
}

func main() {
	cmd := &cobra.Command{
		Use:          "simulate_recovery",
		Short:        "Recover corrupted scenes and report invariant violations",
		SilenceUsage: true,
		RunE:         run,
	}
	cmd.Flags().IntVarP(&samples, "samples", "n", 2000, "Number of corrupted samples")
	cmd.Flags().IntVarP(&workers, "workers", "w", 8, "Concurrent workers")
	cmd.Flags().Uint64Var(&seed, "seed", 1, "Random seed")
	cmd.Flags().BoolVar(&live, "live", false, "Also generate one scene per genre with Gemini")

	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	logger, err := zap.NewDevelopment()
	if err != nil {
		return err
	}
	defer logger.Sync()

	reg := fallback.NewRegistry()
	corpus, err := buildCorpus(reg)
	if err != nil {
		return err
	}

	fmt.Printf("--- Recovering %d corrupted samples on %d workers (seed %d) ---\n", samples, workers, seed)
	start := time.Now()
	t := &tally{paths: map[pipeline.Path]int{}, stages: map[string]int{}}

	runners := map[models.GameType]*pipeline.Pipeline{}
	for _, gt := range reg.GameTypes() {
		runners[gt] = pipeline.New(reg, pipeline.WithRequestedGenre(gt))
	}

	ch := make(chan sample)
	g, ctx := errgroup.WithContext(cmd.Context())
	g.Go(func() error {
		defer close(ch)
		r := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
		for range samples {
			s := corrupt(r, corpus, reg.GameTypes())
			select {
			case ch <- s:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		return nil
	})
	for range max(workers, 1) {
		g.Go(func() error {
			for s := range ch {
				t.add(s, runners[s.genre].Run(s.text))
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	fmt.Printf("Done in %s\n\n", time.Since(start).Round(time.Millisecond))
	fmt.Printf("Paths: parsed=%d fallback=%d\n", t.paths[pipeline.PathParsed], t.paths[pipeline.PathFallback])
	stages := make([]string, 0, len(t.stages))
	for stage := range t.stages {
		stages = append(stages, stage)
	}
	slices.Sort(stages)
	for _, stage := range stages {
		fmt.Printf("  %-12s %d warnings\n", stage, t.stages[stage])
	}

	if live {
		if err := runLive(cmd.Context(), logger, reg, t); err != nil {
			return err
		}
	}

	if len(t.violations) > 0 {
		for _, v := range t.violations {
			logger.Error("invariant violated", zap.String("sample", v))
		}
		return fmt.Errorf("%d results violated specification invariants", len(t.violations))
	}
	fmt.Println("\nNo invariant violations.")
	return nil
}

// buildCorpus serializes every template, compact and indented.
func buildCorpus(reg *fallback.Registry) (map[models.GameType][]string, error) {
	corpus := map[models.GameType][]string{}
	for _, gt := range reg.GameTypes() {
		spec := reg.Template(gt)
		compact, err := json.Marshal(spec)
		if err != nil {
			return nil, fmt.Errorf("encoding %s template: %w", gt, err)
		}
		indented, err := json.MarshalIndent(spec, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("encoding %s template: %w", gt, err)
		}
		corpus[gt] = []string{string(compact), string(indented)}
	}
	return corpus, nil
}

// corrupt picks a template and applies one to three random corruptions.
func corrupt(r *rand.Rand, corpus map[models.GameType][]string, genres []models.GameType) sample {
	gt := genres[r.IntN(len(genres))]
	texts := corpus[gt]
	s := sample{genre: gt, text: texts[r.IntN(len(texts))]}
	for range 1 + r.IntN(3) {
		c := corruptions[r.IntN(len(corruptions))]
		s.text = c.apply(r, s.text)
		s.applied = append(s.applied, c.name)
	}
	return s
}

func runLive(ctx context.Context, logger *zap.Logger, reg *fallback.Registry, t *tally) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}
	if err := cfg.RequireAPIKey(); err != nil {
		return err
	}
	gem, err := engine.NewGemini(ctx, cfg.GeminiAPIKey, cfg.Model, cfg.MaxOutputTokens)
	if err != nil {
		return err
	}
	defer gem.Close()
	eng := engine.NewEngine(gem, reg,
		engine.WithLogger(logger),
		engine.WithMaxContinuations(cfg.MaxContinuations))

	fmt.Println("\n--- Generating one live scene per genre ---")
	for _, gt := range reg.GameTypes() {
		scene, err := eng.GenerateScene(ctx, "", gt)
		if err != nil {
			logger.Warn("generation failed", zap.String("genre", string(gt)), zap.Error(err))
			continue
		}
		fmt.Printf("%-14s %s\n", gt, scene.Result)
		t.add(sample{genre: gt, applied: []string{"live"}, text: scene.Raw}, scene.Result)
	}
	return nil
}
