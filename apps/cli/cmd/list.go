package cmd

import (
	"fmt"
	"strings"

	"github.com/abdul-hamid-achik/authprobe/packages/core/config"
	"github.com/abdul-hamid-achik/authprobe/packages/core/runner"
	"github.com/abdul-hamid-achik/authprobe/packages/scenario"
	"github.com/spf13/cobra"
)

var (
	listNameFlag string
	listTagsFlag string
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the checks in execution order",
	Long: `List the checks of the auth suite in the order they run, with the
endpoint, expected status and tags of each.

Examples:
  authprobe list
  authprobe list --tags login`,
	Args: cobra.NoArgs,
	RunE: listCommand,
}

func init() {
	listCmd.Flags().StringVarP(&listNameFlag, "name", "n", "", "Only list checks whose name matches the pattern")
	listCmd.Flags().StringVarP(&listTagsFlag, "tags", "t", "", "Only list checks with these tags (comma-separated)")
}

func listCommand(cmd *cobra.Command, args []string) error {
	scenarios := runner.Filter(scenario.Tracker(), listNameFlag, config.SplitList(listTagsFlag))
	if len(scenarios) == 0 {
		return fmt.Errorf("no checks match the given filters")
	}

	out := cmd.OutOrStdout()
	for i, sc := range scenarios {
		fmt.Fprintf(out, "%2d. %s\n", i+1, sc.Name)
		fmt.Fprintf(out, "    %s /%s -> %d\n", sc.Method, sc.Path, sc.ExpectedStatus)
		if len(sc.Tags) > 0 {
			fmt.Fprintf(out, "    tags: %s\n", strings.Join(sc.Tags, ", "))
		}
	}
	return nil
}
