// Command gamespec-inspect opens the recovery inspector on a file of
// generator output, or on pasted text when no file is given. It never
// contacts a generator; use cmd/gamespec for that.
package main

import (
	"fmt"
	"os"

	"github.com/tatianab/gamespec/internal/config"
	"github.com/tatianab/gamespec/internal/engine"
	"github.com/tatianab/gamespec/internal/fallback"
	"github.com/tatianab/gamespec/internal/report"
	"github.com/tatianab/gamespec/internal/tui"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}

	opts := tui.Options{
		Engine: engine.NewEngine(nil, fallback.NewRegistry(), engine.WithCacheSize(cfg.CacheSize)),
		Store:  report.NewStore(cfg.SaveDir),
		Genre:  cfg.Genre(),
	}
	if len(os.Args) > 1 {
		raw, err := os.ReadFile(os.Args[1])
		if err != nil {
			fmt.Printf("Error reading %s: %v\n", os.Args[1], err)
			os.Exit(1)
		}
		opts.Raw = string(raw)
		opts.Source = os.Args[1]
	}

	if err := tui.Run(opts); err != nil {
		fmt.Printf("Error running TUI: %v\n", err)
		os.Exit(1)
	}
}
