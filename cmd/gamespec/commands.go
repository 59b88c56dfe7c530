package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tatianab/gamespec/internal/engine"
	"github.com/tatianab/gamespec/internal/fallback"
	"github.com/tatianab/gamespec/internal/models"
	"github.com/tatianab/gamespec/internal/pipeline"
	"github.com/tatianab/gamespec/internal/report"
)

var saveReport bool

var recoverCmd = &cobra.Command{
	Use:   "recover [file]",
	Short: "Recover a specification from generator output",
	Long: `Reads generator output from a file, or from stdin when the file is "-" or
omitted, and prints the recovered specification. Warnings about every
repair that was made go to stderr.

Example:
  gamespec recover scene.txt --format yaml
  pbpaste | gamespec recover --genre racing`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRecover,
}

var generateCmd = &cobra.Command{
	Use:   "generate [hint...]",
	Short: "Generate a scene with Gemini and recover its specification",
	Long: `Prompts Gemini for a scene of the chosen genre, continuing answers that
hit the output limit, and prints the recovered specification.
Requires GEMINI_API_KEY.`,
	RunE: runGenerate,
}

var templatesCmd = &cobra.Command{
	Use:   "templates [genre]",
	Short: "List the supported genres or print a fallback template",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runTemplates,
}

var reportsCmd = &cobra.Command{
	Use:   "reports",
	Short: "Inspect saved recovery reports",
}

var reportsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved reports, newest first",
	RunE:  runReportsList,
}

var reportsShowCmd = &cobra.Command{
	Use:   "show [id]",
	Short: "Print the specification of a saved report",
	Args:  cobra.ExactArgs(1),
	RunE:  runReportsShow,
}

func runRecover(cmd *cobra.Command, args []string) error {
	gt, err := genre()
	if err != nil {
		return err
	}

	source := "stdin"
	var raw []byte
	if len(args) == 0 || args[0] == "-" {
		raw, err = io.ReadAll(cmd.InOrStdin())
	} else {
		source = args[0]
		raw, err = os.ReadFile(args[0])
	}
	if err != nil {
		return fmt.Errorf("reading input: %w", err)
	}

	res := newEngine(nil).Recover(string(raw), gt)
	logger.Info("specification recovered",
		zap.String("source", source),
		zap.String("path", string(res.Path)),
		zap.Int("warnings", len(res.Warnings)))
	return finish(cmd, res, string(raw), source)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	gt, err := genre()
	if err != nil {
		return err
	}
	if err := cfg.RequireAPIKey(); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	gem, err := engine.NewGemini(ctx, cfg.GeminiAPIKey, cfg.Model, cfg.MaxOutputTokens)
	if err != nil {
		return err
	}
	defer gem.Close()

	hint := strings.Join(args, " ")
	scene, err := newEngine(gem).GenerateScene(ctx, hint, gt)
	if err != nil {
		return err
	}
	logger.Info("scene generated",
		zap.String("hint", hint),
		zap.Int("continuations", scene.Continuations),
		zap.String("path", string(scene.Result.Path)))
	return finish(cmd, scene.Result, scene.Raw, "hint: "+hint)
}

// finish prints res, reports its warnings and optionally saves it.
func finish(cmd *cobra.Command, res pipeline.Result, raw, source string) error {
	if err := write(cmd.OutOrStdout(), res.Spec, res); err != nil {
		return err
	}
	for _, w := range res.Warnings {
		fmt.Fprintln(cmd.ErrOrStderr(), w)
	}
	if saveReport {
		id, err := report.NewStore(cfg.SaveDir).Save(res, raw, source)
		if err != nil {
			return fmt.Errorf("saving report: %w", err)
		}
		fmt.Fprintln(cmd.ErrOrStderr(), "saved report", id)
	}
	return nil
}

// write prints spec in the selected format. Markdown needs the whole result.
func write(w io.Writer, spec *models.GameSpecification, res pipeline.Result) error {
	switch format {
	case "json":
		data, err := json.MarshalIndent(spec, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	case "yaml":
		data, err := report.YAML(spec)
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	case "markdown", "md":
		_, err := io.WriteString(w, report.Markdown(res))
		return err
	}
	return fmt.Errorf("unknown format %q, want json, yaml or markdown", format)
}

func runTemplates(cmd *cobra.Command, args []string) error {
	reg := fallback.NewRegistry()
	if len(args) == 0 {
		t := newTable("GENRE", "TITLE", "DESCRIPTION")
		for _, gt := range reg.GameTypes() {
			spec := reg.Template(gt)
			t.Row(string(gt), spec.Title, spec.Description)
		}
		_, err := fmt.Fprintln(cmd.OutOrStdout(), t.Render())
		return err
	}

	gt, ok := models.ParseGameType(args[0])
	if !ok {
		return fmt.Errorf("unsupported game type %q, want one of %v", args[0], reg.GameTypes())
	}
	spec := reg.Template(gt)
	return write(cmd.OutOrStdout(), spec, pipeline.Result{Spec: spec, Path: pipeline.PathFallback})
}

func runReportsList(cmd *cobra.Command, args []string) error {
	reports, err := report.NewStore(cfg.SaveDir).List()
	if err != nil {
		return err
	}
	if len(reports) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "no saved reports in", cfg.SaveDir)
		return nil
	}
	t := newTable("ID", "CREATED", "GENRE", "PATH", "WARNINGS", "TITLE")
	for _, r := range reports {
		t.Row(r.ID, r.CreatedAt.Local().Format("2006-01-02 15:04"), string(r.GameType), string(r.Path),
			strconv.Itoa(len(r.Warnings)), r.Title)
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), t.Render())
	return err
}

func runReportsShow(cmd *cobra.Command, args []string) error {
	r, err := report.NewStore(cfg.SaveDir).Load(args[0])
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "# %s (%s, %s)\n", r.Title, r.GameType, r.Path)
	fmt.Fprintf(out, "# source: %s\n", r.Source)
	for _, w := range r.Warnings {
		fmt.Fprintf(out, "# %s\n", w)
	}
	_, err = out.Write(r.Spec)
	fmt.Fprintln(out)
	return err
}

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderRow(false).
		Headers(headers...)
}
