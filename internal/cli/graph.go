package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/raphaelgruber/bookgraph/internal/graphview"
	"github.com/spf13/cobra"
)

var graphOutputFile string

var graphCmd = &cobra.Command{
	Use:   "graph <bookId>",
	Short: "Export a book's character network as renderable graph JSON",
	Long: `Analyze a book and export the renderable node/edge graph (positions,
colors, edge styling) as JSON, ready to feed into a visualization.

Examples:
  bookgraph graph 1787
  bookgraph graph 1342 -o pride.json`,
	Args: cobra.ExactArgs(1),
	RunE: runGraph,
}

func init() {
	graphCmd.Flags().StringVarP(&graphOutputFile, "output", "o", "", "write graph JSON to file")
}

func runGraph(cmd *cobra.Command, args []string) error {
	bookID := args[0]

	svc, err := newService()
	if err != nil {
		return fmt.Errorf("init pipeline: %w", err)
	}

	a, err := runWithProgress(context.Background(), svc, bookID)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(graphview.Build(a.Result), "", "  ")
	if err != nil {
		return fmt.Errorf("marshal graph: %w", err)
	}

	if graphOutputFile != "" {
		if err := os.WriteFile(graphOutputFile, append(data, '\n'), 0644); err != nil {
			return fmt.Errorf("write graph: %w", err)
		}
		fmt.Printf("Wrote %s\n", graphOutputFile)
		return nil
	}

	fmt.Println(string(data))
	return nil
}
