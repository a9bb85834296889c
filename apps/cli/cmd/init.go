package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/abdul-hamid-achik/authprobe/packages/core/config"
	"github.com/spf13/cobra"
)

var (
	forceInit   bool
	initBaseURL string
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a starter authprobe.yaml",
	Long: `Create authprobe.yaml in the current directory with the default settings
and an example .env file for secrets.

Examples:
  authprobe init
  authprobe init --base-url https://staging.example.com/api --force`,
	Args: cobra.NoArgs,
	RunE: initCommand,
}

func init() {
	initCmd.Flags().BoolVarP(&forceInit, "force", "f", false, "Overwrite existing files")
	initCmd.Flags().StringVarP(&initBaseURL, "base-url", "u", config.DefaultBaseURL, "Base URL to write into the config")
}

const exampleEnv = `# Values here are available as {{NAME}} in authprobe.yaml and are exported
# to the process when not already set.
AUTHPROBE_PASSWORD=TestPass123!
# AUTHPROBE_SLACK_WEBHOOK=https://hooks.slack.com/services/...
`

func initCommand(cmd *cobra.Command, args []string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return err
	}

	configFile := filepath.Join(cwd, config.ConfigFilenames[0])
	envFile := filepath.Join(cwd, ".env.example")

	if !forceInit {
		for _, f := range []string{configFile, envFile} {
			if _, err := os.Stat(f); err == nil {
				return fmt.Errorf("file already exists: %s (use --force to overwrite)", f)
			}
		}
	}

	cfg := config.DefaultConfig()
	cfg.BaseURL = initBaseURL
	cfg.Headers = map[string]string{"User-Agent": "authprobe/" + version}
	cfg.WaitFor = &config.WaitFor{Endpoint: "auth/health", Status: 200, Timeout: config.DefaultTimeout * 3}
	cfg.StartupDelay = config.DurationPtr(0)

	if err := cfg.Validate(); err != nil {
		return withExitCode(ExitConfigError, err)
	}
	if err := cfg.SaveConfig(configFile); err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created: %s\n", configFile)

	if err := os.WriteFile(envFile, []byte(exampleEnv), 0644); err != nil {
		return fmt.Errorf("failed to create example env file: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created: %s\n", envFile)

	fmt.Fprintf(cmd.OutOrStdout(), "\nauthprobe initialized!\n")
	fmt.Fprintf(cmd.OutOrStdout(), "Run 'authprobe run' to execute the checks.\n")

	return nil
}
