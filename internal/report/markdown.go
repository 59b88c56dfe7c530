package report

import (
	"fmt"
	"slices"
	"strings"

	"github.com/tatianab/gamespec/internal/models"
	"github.com/tatianab/gamespec/internal/pipeline"
)

// Markdown renders res as a human-readable document.
func Markdown(res pipeline.Result) string {
	spec := res.Spec
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", spec.Title)
	if spec.Description != "" {
		fmt.Fprintf(&b, "%s\n\n", spec.Description)
	}
	fmt.Fprintf(&b, "- **Genre:** %s\n", spec.GameType.Title())
	if spec.Theme != "" {
		fmt.Fprintf(&b, "- **Theme:** %s\n", spec.Theme)
	}
	if spec.VisualStyle != "" {
		fmt.Fprintf(&b, "- **Visual style:** %s\n", spec.VisualStyle)
	}
	path := string(res.Path)
	if res.Stage != 0 {
		path += " (" + res.Stage.String() + ")"
	}
	fmt.Fprintf(&b, "- **Recovered via:** %s\n\n", path)

	if p := spec.Player(); p != nil {
		b.WriteString("## Player\n\n")
		fmt.Fprintf(&b, "%s at (%g, %g), %gx%g, gravity %t\n\n", p.Name, p.X, p.Y, p.Width, p.Height, p.Physics.Gravity)
		for _, f := range models.PhysicsFields() {
			if v, ok := p.Physics.Get(f); ok {
				fmt.Fprintf(&b, "- `%s`: %g\n", f, v)
			}
		}
		if abilities := enabled(p.Abilities); len(abilities) > 0 {
			fmt.Fprintf(&b, "- abilities: %s\n", strings.Join(abilities, ", "))
		}
		b.WriteString("\n")
	}

	b.WriteString("## Levels\n\n")
	b.WriteString("| # | Size | Background | Platforms | Collectibles | Enemies | Goal |\n")
	b.WriteString("|---|------|------------|-----------|--------------|---------|------|\n")
	for i, l := range spec.Levels {
		goal := "none"
		if l.Goal != nil {
			goal = fmt.Sprintf("(%g, %g)", l.Goal.X, l.Goal.Y)
		}
		fmt.Fprintf(&b, "| %d | %gx%g | %s | %d | %d | %d | %s |\n",
			i, l.Width, l.Height, l.Background, len(l.Platforms), len(l.Collectibles), len(l.Enemies), goal)
	}
	b.WriteString("\n")

	if lg := spec.GameLogic; lg.WinCondition != "" || lg.LoseCondition != "" || lg.Scoring != "" {
		b.WriteString("## Rules\n\n")
		fmt.Fprintf(&b, "- **Win:** %s\n- **Lose:** %s\n- **Scoring:** %s\n\n", lg.WinCondition, lg.LoseCondition, lg.Scoring)
	}

	fmt.Fprintf(&b, "## Warnings (%d)\n\n", len(res.Warnings))
	for _, w := range res.Warnings {
		fmt.Fprintf(&b, "- `%s` %s\n", w.Stage, w.Message)
	}
	return b.String()
}

func enabled(abilities map[string]bool) []string {
	var out []string
	for name, on := range abilities {
		if on {
			out = append(out, name)
		}
	}
	slices.Sort(out)
	return out
}
