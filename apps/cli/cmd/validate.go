package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var validateFlags settingsFlags

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the configuration without running checks",
	Long: `Load the configuration the way 'run' does (defaults, config file,
AUTHPROBE_* variables, flags), resolve placeholders and report any invalid
setting.

Examples:
  authprobe validate
  authprobe validate --config ci.authprobe.yaml`,
	Args: cobra.NoArgs,
	RunE: validateCommand,
}

func init() {
	validateFlags.register(validateCmd)
}

func validateCommand(cmd *cobra.Command, args []string) error {
	s, err := loadSettings(cmd, &validateFlags)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if s.configPath != "" {
		fmt.Fprintf(out, "Valid: %s\n", s.configPath)
	} else {
		fmt.Fprintln(out, "Valid: built-in defaults (no config file found)")
	}
	fmt.Fprintf(out, "Base URL: %s\n", s.BaseURL)
	fmt.Fprintf(out, "Timeout: %v\n", s.Timeout)
	fmt.Fprintf(out, "Output: %s\n", s.Output)
	if s.History != "" {
		fmt.Fprintln(out, "History: enabled")
	}
	return nil
}
