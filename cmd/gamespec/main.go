package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/tatianab/gamespec/internal/config"
	"github.com/tatianab/gamespec/internal/engine"
	"github.com/tatianab/gamespec/internal/fallback"
	"github.com/tatianab/gamespec/internal/models"
	"github.com/tatianab/gamespec/internal/report"
	"github.com/tatianab/gamespec/internal/tui"
)

var (
	// Global flags
	verbose  bool
	genreArg string
	format   string
	timeout  time.Duration

	cfg    *config.Config
	logger = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "gamespec",
	Short: "Recover playable game specifications from generator output",
	Long: `gamespec turns the text a language model wrote for a 2D game scene into a
specification a game engine can load. Malformed JSON is repaired, missing
fields are filled in, genre rules and basic playability are enforced, and
when nothing can be salvaged a genre template is used instead.

Run without arguments to start the interactive inspector.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.LoadConfig()
		if err != nil {
			return err
		}

		// The inspector owns the terminal; it runs without a logger.
		if cmd == cmd.Root() {
			return nil
		}
		zc := zap.NewProductionConfig()
		zc.Level = zap.NewAtomicLevelAt(cfg.Level())
		if verbose {
			zc.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		logger, err = zc.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
	RunE: runInspector,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&genreArg, "genre", "g", "", "Game type to assume (default from GAMESPEC_DEFAULT_GENRE)")
	rootCmd.PersistentFlags().StringVarP(&format, "format", "f", "json", "Output format: json, yaml or markdown")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 2*time.Minute, "Generation timeout")
	rootCmd.Flags().Bool("online", false, "Generate scenes from a hint instead of recovering pasted text")

	recoverCmd.Flags().BoolVar(&saveReport, "save", false, "Save a report of the result")
	generateCmd.Flags().BoolVar(&saveReport, "save", false, "Save a report of the result")

	reportsCmd.AddCommand(reportsListCmd)
	reportsCmd.AddCommand(reportsShowCmd)

	rootCmd.AddCommand(recoverCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(templatesCmd)
	rootCmd.AddCommand(reportsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// genre resolves --genre, falling back to the configured default.
func genre() (models.GameType, error) {
	if genreArg == "" {
		return cfg.Genre(), nil
	}
	gt, ok := models.ParseGameType(genreArg)
	if !ok {
		return "", fmt.Errorf("unsupported game type %q, want one of %v", genreArg, models.GameTypes())
	}
	return gt, nil
}

func newEngine(gen engine.Generator) *engine.Engine {
	return engine.NewEngine(gen, fallback.NewRegistry(),
		engine.WithLogger(logger),
		engine.WithMaxContinuations(cfg.MaxContinuations),
		engine.WithCacheSize(cfg.CacheSize))
}

func runInspector(cmd *cobra.Command, args []string) error {
	gt, err := genre()
	if err != nil {
		return err
	}
	online, _ := cmd.Flags().GetBool("online")

	opts := tui.Options{
		Store:  report.NewStore(cfg.SaveDir),
		Genre:  gt,
		Online: online,
	}
	if !online {
		opts.Engine = newEngine(nil)
		return tui.Run(opts)
	}

	if err := cfg.RequireAPIKey(); err != nil {
		return err
	}
	gem, err := engine.NewGemini(cmd.Context(), cfg.GeminiAPIKey, cfg.Model, cfg.MaxOutputTokens)
	if err != nil {
		return err
	}
	defer gem.Close()
	opts.Engine = newEngine(gem)
	return tui.Run(opts)
}
