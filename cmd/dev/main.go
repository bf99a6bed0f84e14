package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"reflect"

	"evalboard/adapters/excel"
	"evalboard/app"
	"evalboard/internal/config"
	"evalboard/internal/testkit"

	"github.com/spf13/cobra"
)

const (
	workbookName = "evaluacion.xlsx"
	injuriesName = "lesiones_clean.csv"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "evalboard-dev",
		Short:         "Evalboard development tools",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		newSeedCmd(),
		newSmokeTestCmd(),
		newDeterminismTestCmd(),
	)
	return rootCmd
}

func newSeedCmd() *cobra.Command {
	var (
		out     string
		seed    int64
		players int
	)
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Write a synthetic workbook and injury log for development",
		RunE: func(cmd *cobra.Command, args []string) error {
			squad := testkit.DefaultSquadConfig()
			squad.Seed = seed
			if players > 0 {
				squad.PlayersPerCategory = players
			}
			return generateSeedData(cmd.OutOrStdout(), out, squad)
		},
	}
	cmd.Flags().StringVar(&out, "out", "data", "directory to write the files into")
	cmd.Flags().Int64Var(&seed, "seed", testkit.DefaultSquadConfig().Seed, "generator seed")
	cmd.Flags().IntVar(&players, "players", 0, "players per category (default from the squad config)")
	return cmd
}

func newSmokeTestCmd() *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "smoke",
		Short: "Load seeded files back and run every dashboard operation",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSmokeTests(cmd.Context(), cmd.OutOrStdout(), dir)
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "data", "directory holding the seeded files")
	return cmd
}

func newDeterminismTestCmd() *cobra.Command {
	var seed int64
	cmd := &cobra.Command{
		Use:   "determinism",
		Short: "Check that the generator is reproducible for a seed",
		RunE: func(cmd *cobra.Command, args []string) error {
			return testDeterminism(cmd.OutOrStdout(), seed)
		},
	}
	cmd.Flags().Int64Var(&seed, "seed", testkit.DefaultSquadConfig().Seed, "generator seed")
	return cmd
}

func generateSeedData(w io.Writer, dir string, squad testkit.SquadGeneratorConfig) error {
	fmt.Fprintln(w, "Generating seed data...")

	catalog, err := config.DefaultMetricCatalog()
	if err != nil {
		return fmt.Errorf("failed to load metric catalog: %w", err)
	}
	kit := testkit.NewTestKit(catalog, squad)

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", dir, err)
	}

	workbook := filepath.Join(dir, workbookName)
	if err := excel.NewWorkbookWriter(excel.DefaultReaderConfig()).WriteTable(kit.Table(), workbook); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	fmt.Fprintf(w, "Wrote %d evaluation rows to %s\n", len(kit.Table().Rows), workbook)

	injuries := filepath.Join(dir, injuriesName)
	if err := excel.WriteInjuriesCSV(kit.Injuries(), injuries); err != nil {
		return fmt.Errorf("failed to write injury log: %w", err)
	}
	fmt.Fprintf(w, "Wrote %d injuries to %s\n", len(kit.Injuries().Records), injuries)

	fmt.Fprintln(w, "Seed data generation completed successfully")
	return nil
}

func runSmokeTests(ctx context.Context, w io.Writer, dir string) error {
	fmt.Fprintln(w, "Running smoke tests...")

	catalog, err := config.DefaultMetricCatalog()
	if err != nil {
		return fmt.Errorf("failed to load metric catalog: %w", err)
	}
	reader := excel.DefaultReaderConfig()
	reader.FilePath = filepath.Join(dir, workbookName)
	dashboard := app.NewDashboard(
		excel.NewWorkbookLoader(reader),
		excel.NewInjuryLoader(filepath.Join(dir, injuriesName)),
		catalog,
		app.DashboardOptions{},
	)

	// first category and its first subject, filled in by the first test
	var category, subject string
	section := app.Selection{Section: catalog.Sections[0].Name}

	tests := []struct {
		name string
		fn   func(context.Context) error
	}{
		{"load", func(ctx context.Context) error {
			if err := dashboard.Warm(ctx); err != nil {
				return err
			}
			categories, err := dashboard.Categories(ctx)
			if err != nil {
				return err
			}
			if len(categories) == 0 {
				return fmt.Errorf("no categories loaded")
			}
			category = categories[0]
			subjects, err := dashboard.Subjects(ctx, category)
			if err != nil {
				return err
			}
			if len(subjects) == 0 {
				return fmt.Errorf("no subjects in %s", category)
			}
			subject = subjects[0]
			return nil
		}},
		{"group_stats", func(ctx context.Context) error {
			stats, err := dashboard.GroupStats(ctx, category, section)
			if err != nil {
				return err
			}
			if len(stats.Rows) == 0 {
				return fmt.Errorf("no statistics computed")
			}
			return nil
		}},
		{"comparison", func(ctx context.Context) error {
			result, err := dashboard.Comparison(ctx, app.ComparisonRequest{
				Category:       category,
				Subject:        subject,
				Selection:      section,
				ExcludeSubject: true,
			})
			if err != nil {
				return err
			}
			if !result.Found || len(result.Records) == 0 {
				return fmt.Errorf("no comparison for %s", subject)
			}
			return nil
		}},
		{"zscores", func(ctx context.Context) error {
			_, found, err := dashboard.SubjectZScores(ctx, category, subject)
			if err == nil && !found {
				err = fmt.Errorf("%s has no z-scores", subject)
			}
			return err
		}},
		{"injuries", func(ctx context.Context) error {
			calc, err := dashboard.Injuries(ctx)
			if err != nil {
				return err
			}
			if len(calc.Ranking(5)) == 0 {
				return fmt.Errorf("empty injury ranking")
			}
			return nil
		}},
		{"report", func(ctx context.Context) error {
			r, err := dashboard.PlayerReport(ctx, category, subject, section)
			if err != nil {
				return err
			}
			if r.Markdown() == "" {
				return fmt.Errorf("empty report")
			}
			return nil
		}},
	}

	passed := 0
	for _, test := range tests {
		fmt.Fprintf(w, "  Running %s...", test.name)
		if err := test.fn(ctx); err != nil {
			fmt.Fprintf(w, " FAILED: %v\n", err)
			if test.name == "load" {
				break
			}
		} else {
			fmt.Fprintln(w, " PASSED")
			passed++
		}
	}

	fmt.Fprintf(w, "\nSmoke tests: %d/%d passed\n", passed, len(tests))
	if passed < len(tests) {
		return fmt.Errorf("some smoke tests failed")
	}
	return nil
}

func testDeterminism(w io.Writer, seed int64) error {
	fmt.Fprintf(w, "Testing determinism for seed %d...\n", seed)

	catalog, err := config.DefaultMetricCatalog()
	if err != nil {
		return fmt.Errorf("failed to load metric catalog: %w", err)
	}
	squad := testkit.DefaultSquadConfig()
	squad.Seed = seed

	first := testkit.NewTestKit(catalog, squad)
	second := testkit.NewTestKit(catalog, squad)

	if !reflect.DeepEqual(first.Table().Columns, second.Table().Columns) {
		return fmt.Errorf("determinism test failed: columns differ")
	}
	if !reflect.DeepEqual(first.Table().Rows, second.Table().Rows) {
		return fmt.Errorf("determinism test failed: evaluation rows differ")
	}
	if !reflect.DeepEqual(first.Injuries(), second.Injuries()) {
		return fmt.Errorf("determinism test failed: injury logs differ")
	}

	fmt.Fprintln(w, "✓ Determinism test passed - results identical")
	return nil
}
