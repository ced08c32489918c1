package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/raphaelgruber/bookgraph/internal/models"
	"github.com/raphaelgruber/bookgraph/internal/service"
	"github.com/spf13/cobra"
)

var (
	analyzeJSON       bool
	analyzeOutputFile string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <bookId>",
	Short: "Analyze a book and print its character graph",
	Long: `Analyze a Project Gutenberg book: fetch its text and metadata, run the
LLM literary analysis, and print the summary, themes, characters and
relationships.

Examples:
  bookgraph analyze 1787
  bookgraph analyze 1342 --json
  bookgraph analyze 84 --json -o frankenstein.json`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().BoolVar(&analyzeJSON, "json", false, "print the raw analysis result as JSON")
	analyzeCmd.Flags().StringVarP(&analyzeOutputFile, "output", "o", "", "write output to file")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	bookID := args[0]

	svc, err := newService()
	if err != nil {
		return fmt.Errorf("init pipeline: %w", err)
	}

	a, err := runWithProgress(context.Background(), svc, bookID)
	if err != nil {
		return err
	}

	var output string
	if analyzeJSON {
		data, err := json.MarshalIndent(struct {
			Metadata       models.BookMetadata   `json:"metadata"`
			AnalysisResult models.AnalysisResult `json:"analysisResult"`
			Source         string                `json:"source"`
		}{a.Metadata, a.Result, a.Source}, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal result: %w", err)
		}
		output = string(data) + "\n"
	} else {
		output = renderAnalysis(a)
	}

	if analyzeOutputFile != "" {
		if err := os.WriteFile(analyzeOutputFile, []byte(output), 0644); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
		fmt.Printf("Wrote %s\n", analyzeOutputFile)
		return nil
	}

	fmt.Print(output)
	return nil
}

// renderAnalysis formats a completed analysis for the terminal.
func renderAnalysis(a service.Analysis) string {
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(defaultTheme.Status)
	headingStyle := lipgloss.NewStyle().Bold(true).Foreground(defaultTheme.Success)
	hintStyle := lipgloss.NewStyle().Foreground(defaultTheme.Hint)

	var sb strings.Builder

	fmt.Fprintf(&sb, "%s\n", titleStyle.Render(a.Metadata.Title))
	fmt.Fprintf(&sb, "%s · %s · %s\n", a.Metadata.Author, a.Metadata.Language, a.Metadata.ReleaseDate)
	if len(a.Metadata.Subjects) > 0 {
		fmt.Fprintf(&sb, "%s\n", hintStyle.Render(strings.Join(a.Metadata.Subjects, "; ")))
	}

	fmt.Fprintf(&sb, "\n%s\n%s\n", headingStyle.Render("Summary"), a.Result.Summary)

	if len(a.Result.Analysis.Themes) > 0 {
		fmt.Fprintf(&sb, "\n%s %s\n", headingStyle.Render("Themes:"), strings.Join(a.Result.Analysis.Themes, ", "))
	}
	if a.Result.Analysis.Setting != "" {
		fmt.Fprintf(&sb, "%s %s\n", headingStyle.Render("Setting:"), a.Result.Analysis.Setting)
	}
	if a.Result.Analysis.Timeframe != "" {
		fmt.Fprintf(&sb, "%s %s\n", headingStyle.Render("Timeframe:"), a.Result.Analysis.Timeframe)
	}

	fmt.Fprintf(&sb, "\n%s\n", headingStyle.Render(fmt.Sprintf("Characters (%d)", len(a.Result.Characters))))
	for _, c := range a.Result.Characters {
		fmt.Fprintf(&sb, "  • %s (%s)", c.Name, c.Role)
		if len(c.Traits) > 0 {
			fmt.Fprintf(&sb, " %s", hintStyle.Render(strings.Join(c.Traits, ", ")))
		}
		sb.WriteString("\n")
		if c.Description != "" {
			fmt.Fprintf(&sb, "    %s\n", c.Description)
		}
	}

	fmt.Fprintf(&sb, "\n%s\n", headingStyle.Render(fmt.Sprintf("Relationships (%d)", len(a.Result.Relationships))))
	for _, rel := range a.Result.Relationships {
		source, target := rel.Source, rel.Target
		if c, ok := a.Result.CharacterByID(rel.Source); ok {
			source = c.Name
		}
		if c, ok := a.Result.CharacterByID(rel.Target); ok {
			target = c.Name
		}
		fmt.Fprintf(&sb, "  • %s ↔ %s [%s, %d/10]\n", source, target, rel.Type, rel.Significance)
		if rel.Description != "" {
			fmt.Fprintf(&sb, "    %s\n", hintStyle.Render(rel.Description))
		}
	}

	if a.Source == service.SourceCache {
		fmt.Fprintf(&sb, "\n%s\n", hintStyle.Render("(served from cache)"))
	}

	return sb.String()
}
