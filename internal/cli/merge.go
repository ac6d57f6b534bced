package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/pmezentsev/mergebook/internal/model"
	"github.com/pmezentsev/mergebook/internal/pipeline"
	"github.com/spf13/cobra"
)

var (
	outCSV       string
	outJSON      string
	outMD        string
	strategy     string
	loadWorkers  int
	noCache      bool
	noFooter     bool
	mergeTimeout time.Duration
	idPrefix     string
)

// mergeCmd represents the merge command
var mergeCmd = &cobra.Command{
	Use:   "merge <file> [file...]",
	Short: "Merge assessment exports into one consolidated gradebook",
	Long: `Merge consolidates N spreadsheet exports into one record set:
- Detect identity/name/score columns per file (exact synonym match)
- Merge all sources by normalized email (full outer join, no data loss)
- Validate the merge and flag participation/consistency anomalies
- Compute the tiered participation bonus and final pass/fail grade

File order matters: the first file supplies the canonical display name
and files are labeled "Test 1", "Test 2", ... in argument order.

Example:
  mergebook merge round1.csv round2.xlsx round3.csv
  mergebook merge *.csv --csv results.csv --json results.json
  mergebook merge *.xlsx --strategy lenient --workers 8`,
	Args: cobra.MinimumNArgs(1),
	RunE: runMerge,
}

func init() {
	rootCmd.AddCommand(mergeCmd)

	// Output flags
	mergeCmd.Flags().StringVar(&outCSV, "csv", "consolidated.csv", "output CSV path")
	mergeCmd.Flags().StringVar(&outJSON, "json", "", "output JSON path (optional)")
	mergeCmd.Flags().StringVar(&outMD, "md", "", "output Markdown path (optional)")
	mergeCmd.Flags().BoolVar(&noFooter, "no-footer", false, "disable footer in Markdown reports")

	// Run flags
	mergeCmd.Flags().StringVar(&strategy, "strategy", "", "column detection failure strategy (strict|lenient)")
	mergeCmd.Flags().IntVar(&loadWorkers, "workers", 0, "number of concurrent source loaders (0 = config default)")
	mergeCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the parsed-source cache")
	mergeCmd.Flags().DurationVar(&mergeTimeout, "timeout", 2*time.Minute, "overall run timeout")
	mergeCmd.Flags().StringVar(&idPrefix, "prefix", "", "source label prefix (default from config, e.g. \"Test\")")
}

func runMerge(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), mergeTimeout)
	defer cancel()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// Flag overrides
	if strategy != "" {
		if strategy != model.StrategyStrict && strategy != model.StrategyLenient {
			return fmt.Errorf("unknown strategy %q (want strict or lenient)", strategy)
		}
		cfg.Sources.Strategy = strategy
	}
	if loadWorkers > 0 {
		cfg.Concurrency.LoadWorkers = loadWorkers
	}
	if noCache {
		cfg.Cache.Enabled = false
	}
	if idPrefix != "" {
		cfg.Sources.IDPrefix = idPrefix
	}
	cfg.Output.IncludeFooter = !noFooter

	if verbose {
		fmt.Fprintf(os.Stderr, "Merging %d sources (strategy: %s, workers: %d, cache: %v)\n",
			len(args), cfg.Sources.Strategy, cfg.Concurrency.LoadWorkers, cfg.Cache.Enabled)
		fmt.Fprintln(os.Stderr)
	}

	p := pipeline.New(cfg)
	result, err := p.Run(ctx, args)
	if err != nil {
		// Render whatever report exists so a data-loss abort is explainable.
		if result != nil && outJSON != "" {
			renderer := pipeline.NewRenderer(cfg.Output.IncludeFooter)
			_ = renderer.RenderJSON(result, outJSON)
		}
		return fmt.Errorf("merge failed: %w", err)
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "✓ Consolidated %d participants across %d sources\n",
			len(result.Consolidation.Records), len(result.Consolidation.SourceIDs))
	}

	renderer := pipeline.NewRenderer(cfg.Output.IncludeFooter)
	if outCSV != "" {
		if err := renderer.RenderCSV(result, outCSV); err != nil {
			return fmt.Errorf("render CSV: %w", err)
		}
		if verbose {
			fmt.Fprintf(os.Stderr, "✓ Wrote CSV: %s\n", outCSV)
		}
	}
	if outJSON != "" {
		if err := renderer.RenderJSON(result, outJSON); err != nil {
			return fmt.Errorf("render JSON: %w", err)
		}
		if verbose {
			fmt.Fprintf(os.Stderr, "✓ Wrote JSON: %s\n", outJSON)
		}
	}
	if outMD != "" {
		if err := renderer.RenderMarkdown(result, outMD); err != nil {
			return fmt.Errorf("render Markdown: %w", err)
		}
		if verbose {
			fmt.Fprintf(os.Stderr, "✓ Wrote Markdown: %s\n", outMD)
		}
	}

	renderer.RenderSummary(result)
	return nil
}
