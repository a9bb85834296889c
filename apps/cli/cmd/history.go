package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/abdul-hamid-achik/authprobe/packages/core/env"
	"github.com/abdul-hamid-achik/authprobe/packages/db"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	historyDBFlag    string
	historyLimitFlag int
	historyRunFlag   int64
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recorded runs",
	Long: `Show runs recorded with 'run --history', newest first, or the checks of
one run.

Examples:
  authprobe history --db sqlite:./runs.db
  authprobe history --db sqlite:./runs.db --run 12`,
	Args: cobra.NoArgs,
	RunE: historyCommand,
}

func init() {
	historyCmd.Flags().StringVar(&historyDBFlag, "db", os.Getenv(env.Prefix+"HISTORY"), "History database (env: AUTHPROBE_HISTORY)")
	historyCmd.Flags().IntVarP(&historyLimitFlag, "limit", "l", 20, "Number of runs to show")
	historyCmd.Flags().Int64Var(&historyRunFlag, "run", 0, "Show the checks of this run id")
}

func historyCommand(cmd *cobra.Command, args []string) error {
	if historyDBFlag == "" {
		return withExitCode(ExitUsageError, fmt.Errorf("--db or AUTHPROBE_HISTORY is required"))
	}

	store, err := db.OpenStore(cmd.Context(), historyDBFlag)
	if err != nil {
		return err
	}
	defer store.Close()

	green := color.New(color.FgGreen).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	defer tw.Flush()

	if historyRunFlag > 0 {
		checks, err := store.Checks(cmd.Context(), historyRunFlag)
		if err != nil {
			return err
		}
		if len(checks) == 0 {
			return fmt.Errorf("run %d has no recorded checks", historyRunFlag)
		}
		fmt.Fprintln(tw, "CHECK\tRESULT\tSTATUS\tTIME\tMESSAGE")
		for _, c := range checks {
			result := green("PASS")
			if !c.Passed {
				result = red("FAIL")
			}
			fmt.Fprintf(tw, "%s\t%s\t%d/%d\t%dms\t%s\n", c.Name, result, c.StatusCode, c.ExpectedStatus, c.Duration.Milliseconds(), c.Message)
		}
		return nil
	}

	runs, err := store.RecentRuns(cmd.Context(), historyLimitFlag)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No runs recorded yet.")
		return nil
	}

	fmt.Fprintln(tw, "ID\tSTARTED\tBASE URL\tPASSED\tFAILED\tSKIPPED\tRATE\tTIME")
	for _, r := range runs {
		passed := green(r.Passed)
		if !r.OK() {
			passed = red(r.Passed)
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s/%d\t%d\t%d\t%.1f%%\t%dms\n",
			r.ID, r.StartedAt.Format("2006-01-02 15:04:05"), r.BaseURL,
			passed, r.Total, r.Failed, r.Skipped, r.SuccessRate, r.Duration.Milliseconds())
	}
	return nil
}
