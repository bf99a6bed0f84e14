package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"evalboard/app"
	"evalboard/internal/config"
	"evalboard/internal/container"
	"evalboard/internal/report"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// options shared by every command
type options struct {
	source   string
	jsonOut  bool
	section  string
	metrics  []string
	envFiles []string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:           "evalboard-cli",
		Short:         "Query athlete evaluations, group comparisons and injury KPIs",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&opts.source, "source", "", "Data source override: file|sql|synthetic (default: DATA_SOURCE)")
	rootCmd.PersistentFlags().BoolVar(&opts.jsonOut, "json", false, "Print results as JSON")
	rootCmd.PersistentFlags().StringSliceVar(&opts.envFiles, "env-file", nil, "Extra .env files to load")

	rootCmd.AddCommand(
		newCategoriesCmd(opts),
		newStatsCmd(opts),
		newCompareCmd(opts),
		newZScoresCmd(opts),
		newInjuriesCmd(opts),
		newReportCmd(opts),
		newImportCmd(opts),
	)
	return rootCmd
}

func addSelectionFlags(cmd *cobra.Command, opts *options) {
	cmd.Flags().StringVar(&opts.section, "section", "", "Analysis section (Fuerza, Movilidad, Funcionalidad)")
	cmd.Flags().StringSliceVar(&opts.metrics, "metrics", nil, "Metric names, comma separated (default: section defaults)")
}

func (o *options) selection() app.Selection {
	sel := app.Selection{Section: o.section, Metrics: o.metrics}
	if sel.Section == "" && len(sel.Metrics) == 0 {
		sel.Section = "Fuerza"
	}
	return sel
}

// loadConfig reads .env files and the environment, then applies flag overrides
func (o *options) loadConfig() (*config.Config, error) {
	if err := godotenv.Load(o.envFiles...); err != nil && len(o.envFiles) > 0 {
		return nil, fmt.Errorf("failed to load env files: %w", err)
	}
	if o.source != "" {
		os.Setenv("DATA_SOURCE", o.source)
	}
	return config.Load()
}

func (o *options) container(ctx context.Context) (*container.Container, error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return nil, err
	}
	c, err := container.New(cfg)
	if err != nil {
		return nil, err
	}
	if err := c.Init(ctx); err != nil {
		return nil, err
	}
	return c, nil
}

func (o *options) printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newCategoriesCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List categories and their athletes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			c, err := opts.container(ctx)
			if err != nil {
				return err
			}
			defer c.Shutdown(ctx)

			categories, err := c.Dashboard.Categories(ctx)
			if err != nil {
				return err
			}
			listing := make(map[string][]string, len(categories))
			for _, category := range categories {
				if listing[category], err = c.Dashboard.Subjects(ctx, category); err != nil {
					return err
				}
			}

			out := cmd.OutOrStdout()
			if opts.jsonOut {
				return opts.printJSON(out, listing)
			}
			for _, category := range categories {
				fmt.Fprintf(out, "%s (%d)\n", category, len(listing[category]))
				for _, subject := range listing[category] {
					fmt.Fprintf(out, "  %s\n", subject)
				}
			}
			return nil
		},
	}
}

func newStatsCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats [category]",
		Short: "Describe the selected metrics across a category",
		Long: `Describe the selected metrics across the athletes of a category: count,
mean, sample standard deviation, median, min and max per side.

Example: evalboard-cli stats Reserva --section Movilidad`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			c, err := opts.container(ctx)
			if err != nil {
				return err
			}
			defer c.Shutdown(ctx)

			result, err := c.Dashboard.GroupStats(ctx, args[0], opts.selection())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if opts.jsonOut {
				return opts.printJSON(out, result)
			}
			fmt.Fprintf(out, "📊 %s · %d athletes\n\n", result.Category, result.GroupSize)
			tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', tabwriter.AlignRight)
			fmt.Fprintln(tw, "Metric\tSide\tN\tMean\tSD\tMedian\tMin\tMax\t")
			for _, row := range result.Rows {
				s := row.Stats.Rounded()
				fmt.Fprintf(tw, "%s\t%s\t%d\t%.1f\t%.1f\t%.1f\t%.1f\t%.1f\t\n",
					row.Metric, report.SideLabel(row.Side), s.Count, s.Mean, s.Std, s.Median, s.Min, s.Max)
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			printUnknown(out, result.Unknown)
			return nil
		},
	}
	addSelectionFlags(cmd, opts)
	return cmd
}

func newCompareCmd(opts *options) *cobra.Command {
	var includeSubject bool

	cmd := &cobra.Command{
		Use:   "compare [category] [athlete]",
		Short: "Compare an athlete against the group of its category",
		Long: `Compare an athlete's right and left values against the group mean and
standard deviation. The athlete is left out of the group baseline unless
--include-subject is set.

Example: evalboard-cli compare Reserva "Perez Juan" --metrics IMTP,CMJ`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			c, err := opts.container(ctx)
			if err != nil {
				return err
			}
			defer c.Shutdown(ctx)

			result, err := c.Dashboard.Comparison(ctx, app.ComparisonRequest{
				Category:       args[0],
				Subject:        args[1],
				Selection:      opts.selection(),
				ExcludeSubject: !includeSubject,
			})
			if err != nil {
				return err
			}
			if !result.Found {
				return fmt.Errorf("athlete %q not found in category %q", args[1], args[0])
			}

			out := cmd.OutOrStdout()
			if opts.jsonOut {
				return opts.printJSON(out, result)
			}
			fmt.Fprintf(out, "📊 %s vs %s · baseline of %d athletes\n\n", result.Subject, result.Category, result.GroupSize)
			tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', tabwriter.AlignRight)
			fmt.Fprintln(tw, "Metric\tSide\tAthlete\tMean\tSD\tDiff\tDiff %\tZ\t")
			for _, r := range result.Records {
				fmt.Fprintf(tw, "%s\t%s\t%.1f\t%.1f\t%.1f\t%+.1f\t%+.1f\t%+.2f\t\n",
					r.Metric, report.SideLabel(r.Side), r.SubjectValue, r.GroupMean, r.GroupStd, r.Difference, r.DifferencePct, r.RelativeZ)
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			printUnknown(out, result.Unknown)
			return nil
		},
	}
	addSelectionFlags(cmd, opts)
	cmd.Flags().BoolVar(&includeSubject, "include-subject", false, "Keep the athlete in the group baseline")
	return cmd
}

func newZScoresCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "zscores [category] [athlete]",
		Short: "Show precomputed Z-scores of an athlete, or the category average",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			c, err := opts.container(ctx)
			if err != nil {
				return err
			}
			defer c.Shutdown(ctx)

			var points interface{}
			var rows [][2]string
			if len(args) == 2 {
				pts, found, err := c.Dashboard.SubjectZScores(ctx, args[0], args[1])
				if err != nil {
					return err
				}
				if !found {
					return fmt.Errorf("athlete %q not found in category %q", args[1], args[0])
				}
				points = pts
				for _, p := range pts {
					rows = append(rows, [2]string{p.Label, fmt.Sprintf("%+.2f", p.Raw)})
				}
			} else {
				pts, err := c.Dashboard.GroupZScores(ctx, args[0])
				if err != nil {
					return err
				}
				points = pts
				for _, p := range pts {
					rows = append(rows, [2]string{p.Label, fmt.Sprintf("%+.2f", p.Raw)})
				}
			}

			out := cmd.OutOrStdout()
			if opts.jsonOut {
				return opts.printJSON(out, points)
			}
			tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			for _, r := range rows {
				fmt.Fprintf(tw, "%s\t%s\n", r[0], r[1])
			}
			return tw.Flush()
		},
	}
}

func newInjuriesCmd(opts *options) *cobra.Command {
	var limit int
	var event string

	cmd := &cobra.Command{
		Use:   "injuries [player]",
		Short: "Injury KPIs for a player, or squad-wide ranking, regions and monthly counts",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			c, err := opts.container(ctx)
			if err != nil {
				return err
			}
			defer c.Shutdown(ctx)

			calc, err := c.Dashboard.Injuries(ctx)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if len(args) == 1 {
				summary := calc.Summary(args[0])
				if event != "" {
					days, ok := calc.EventDays(args[0], event)
					if !ok {
						return fmt.Errorf("no injury %q for %s", event, args[0])
					}
					if opts.jsonOut {
						return opts.printJSON(out, map[string]interface{}{"event": event, "days": days})
					}
					fmt.Fprintf(out, "%s: %d days\n", event, days)
					return nil
				}
				if opts.jsonOut {
					return opts.printJSON(out, summary)
				}
				fmt.Fprintf(out, "🩹 %s\n", summary.Player)
				fmt.Fprintf(out, "Injuries: %d\nDays out: %d\nActive: %d\n", summary.Injuries, summary.DaysOut, summary.Active)
				for _, e := range summary.Events {
					fmt.Fprintf(out, "  • %s\n", e)
				}
				return nil
			}

			squad := map[string]interface{}{
				"ranking":  calc.Ranking(limit),
				"regions":  calc.ByRegion(),
				"monthly":  calc.Monthly(),
				"recovery": calc.Recovery(),
			}
			if opts.jsonOut {
				return opts.printJSON(out, squad)
			}
			tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "RANKING")
			for _, r := range calc.Ranking(limit) {
				fmt.Fprintf(tw, "%s\t%d\n", r.Label, r.Count)
			}
			fmt.Fprintln(tw, "\nREGIONS")
			for _, r := range calc.ByRegion() {
				fmt.Fprintf(tw, "%s\t%d\n", r.Label, r.Count)
			}
			fmt.Fprintln(tw, "\nMONTHLY")
			for _, r := range calc.Monthly() {
				fmt.Fprintf(tw, "%s\t%d\n", r.Label, r.Count)
			}
			rec := calc.Recovery()
			fmt.Fprintf(tw, "\nRECOVERY\ncleared\t%d\nmean days\t%.1f\nmedian days\t%.1f\nmax days\t%.0f\n", rec.Cleared, rec.Mean, rec.Median, rec.Max)
			return tw.Flush()
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 10, "Players in the ranking (0 for all)")
	cmd.Flags().StringVar(&event, "event", "", `Event key "YYYY-MM-DD — type (region)" to report days out for`)
	return cmd
}

func newReportCmd(opts *options) *cobra.Command {
	var asHTML bool
	var output string

	cmd := &cobra.Command{
		Use:   "report [category] [athlete]",
		Short: "Render an athlete report as markdown or HTML",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			c, err := opts.container(ctx)
			if err != nil {
				return err
			}
			defer c.Shutdown(ctx)

			r, err := c.Dashboard.PlayerReport(ctx, args[0], args[1], opts.selection())
			if err != nil {
				return err
			}
			body := []byte(r.Markdown())
			if asHTML {
				body = r.HTML()
			}

			if output == "" {
				_, err := cmd.OutOrStdout().Write(body)
				return err
			}
			if err := os.WriteFile(output, body, 0644); err != nil {
				return fmt.Errorf("failed to write report: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "💾 Report saved to: %s\n", output)
			return nil
		},
	}
	addSelectionFlags(cmd, opts)
	cmd.Flags().BoolVar(&asHTML, "html", false, "Render HTML instead of markdown")
	cmd.Flags().StringVarP(&output, "out", "o", "", "Write to file instead of stdout")
	return cmd
}

func newImportCmd(opts *options) *cobra.Command {
	var skipInjuries bool

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Load the evaluation workbook and injury log into the database",
		Long: `Read the configured workbook (EVALUATION_FILE) and injury CSV (INJURY_FILE)
and store their raw rows in the database at DATABASE_URL. Use --source synthetic
to import generated demo data instead.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if opts.source == "" || opts.source == config.SourceSQL {
				opts.source = config.SourceFile
			}
			c, err := opts.container(ctx)
			if err != nil {
				return err
			}
			defer c.Shutdown(ctx)
			if err := c.InitWithDatabase(ctx); err != nil {
				return err
			}

			start := time.Now()
			table, err := c.TableLoader.LoadTable(ctx)
			if err != nil {
				return err
			}
			if err := c.Store.SaveTable(ctx, table); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✅ Imported %d rows (%d columns) from %s\n", len(table.Rows), len(table.Columns), table.Source)

			if skipInjuries || c.InjuryLoader == nil {
				return nil
			}
			log, err := c.InjuryLoader.LoadInjuries(ctx)
			if err != nil {
				return err
			}
			if err := c.Store.SaveInjuries(ctx, log); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✅ Imported %d injuries in %v\n", len(log.Records), time.Since(start).Round(time.Millisecond))
			return nil
		},
	}
	cmd.Flags().BoolVar(&skipInjuries, "skip-injuries", false, "Only import evaluations")
	return cmd
}

func printUnknown(w io.Writer, unknown []string) {
	if len(unknown) > 0 {
		fmt.Fprintf(w, "\n⚠️  Unknown metrics ignored: %s\n", strings.Join(unknown, ", "))
	}
}
