package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/pmezentsev/mergebook/internal/detect"
	"github.com/pmezentsev/mergebook/internal/loader"
	"github.com/pmezentsev/mergebook/internal/model"
	"github.com/pmezentsev/mergebook/internal/reader"
	"github.com/spf13/cobra"
)

var previewRows int

// inspectCmd represents the inspect command
var inspectCmd = &cobra.Command{
	Use:   "inspect <file>",
	Short: "Preview column detection for one export",
	Long: `Inspect shows how the header row of a single export maps to the three
semantic columns (identity, name, score), and previews how the first
rows would parse.

Use it to find out which synonym to add to the configuration when a
file fails detection.

Example:
  mergebook inspect round3.xlsx
  mergebook inspect export.csv --rows 10`,
	Args: cobra.ExactArgs(1),
	RunE: runInspect,
}

func init() {
	rootCmd.AddCommand(inspectCmd)

	inspectCmd.Flags().IntVar(&previewRows, "rows", 5, "number of data rows to preview")
}

func runInspect(cmd *cobra.Command, args []string) error {
	path := args[0]

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	table, err := reader.ReadTable(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	fmt.Printf("File:    %s\n", path)
	fmt.Printf("Headers: %d, data rows: %d\n\n", len(table.Headers), len(table.Rows))

	mapper := detect.NewColumnMapper(cfg.Columns)
	cols, err := mapper.Map(table.Name, table.Headers)

	var detectionErr *model.ColumnDetectionError
	if errors.As(err, &detectionErr) {
		fmt.Println("Column detection FAILED:")
		for _, category := range detectionErr.Missing {
			fmt.Printf("  ✗ no header matched category %q\n", category)
		}
		fmt.Println("\nHeaders seen:")
		for i, h := range table.Headers {
			fmt.Printf("  [%d] %q\n", i, h)
		}
		fmt.Println("\nAdd a matching synonym to the configuration (mergebook config show).")
		return err
	}
	if err != nil {
		return err
	}

	fmt.Println("Column detection OK:")
	for _, category := range []detect.Category{detect.CategoryIdentity, detect.CategoryName, detect.CategoryScore} {
		fmt.Printf("  ✓ %-8s → column %d (%q)\n", category, cols.Index(category), cols.Matched[category])
	}

	if previewRows <= 0 || len(table.Rows) == 0 {
		return nil
	}

	fmt.Println("\nRow preview:")
	n := previewRows
	if n > len(table.Rows) {
		n = len(table.Rows)
	}
	for i := 0; i < n; i++ {
		row := table.Rows[i]
		identity, ok := loader.NormalizeIdentity(cellAt(row, cols.Identity))
		if !ok {
			fmt.Printf("  [%d] DROPPED: invalid identity %q\n", i+1, cellAt(row, cols.Identity))
			continue
		}
		score := detect.ParseScore(cellAt(row, cols.Score))
		scoreText := "missing"
		if !score.Missing() {
			scoreText = fmt.Sprintf("%.1f", score.Value)
		}
		fmt.Printf("  [%d] %s | %s | %s\n",
			i+1, loader.NormalizeDisplayName(cellAt(row, cols.Name)), identity, scoreText)
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "\nPreviewed %d of %d rows\n", n, len(table.Rows))
	}
	return nil
}

func cellAt(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}
