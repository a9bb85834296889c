package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/abdul-hamid-achik/authprobe/packages/mock"
	"github.com/spf13/cobra"
)

var (
	mockPortFlag    int
	mockDelayFlag   time.Duration
	mockVerboseFlag bool
	mockTTLFlag     time.Duration
	mockSecretFlag  string
)

var mockCmd = &cobra.Command{
	Use:   "mock",
	Short: "Start an in-memory Tracker Pro auth service",
	Long: `Start an HTTP server that implements the Tracker Pro auth endpoints
under /api/auth with an in-memory user store.

The mock server:
- Registers users with bcrypt-hashed passwords and rejects duplicate emails
  and employee IDs
- Logs in by email or employee ID and issues signed bearer tokens
- Serves validate-token and profile behind bearer authentication
- Implements check-email and forgot-password
- Can add artificial delays to simulate network latency

Examples:
  authprobe mock
  authprobe mock --port 9090 --delay 100ms --verbose
  authprobe mock & authprobe run --base-url http://localhost:8080/api`,
	Args: cobra.NoArgs,
	RunE: mockCommand,
}

func init() {
	mockCmd.Flags().IntVarP(&mockPortFlag, "port", "p", mock.DefaultPort, "Port to run the mock server on")
	mockCmd.Flags().DurationVarP(&mockDelayFlag, "delay", "d", 0, "Delay to add to all responses (e.g., 100ms, 1s)")
	mockCmd.Flags().BoolVarP(&mockVerboseFlag, "verbose", "v", false, "Log every request")
	mockCmd.Flags().DurationVar(&mockTTLFlag, "token-ttl", mock.DefaultTokenTTL, "Lifetime of issued tokens")
	mockCmd.Flags().StringVar(&mockSecretFlag, "secret", "", "Token signing secret (default: random per process)")
}

func mockCommand(cmd *cobra.Command, args []string) error {
	opts := []mock.Option{
		mock.WithPort(mockPortFlag),
		mock.WithDelay(mockDelayFlag),
		mock.WithVerbose(mockVerboseFlag),
		mock.WithTokenTTL(mockTTLFlag),
	}
	if mockSecretFlag != "" {
		opts = append(opts, mock.WithSecret([]byte(mockSecretFlag)))
	}
	server := mock.NewServer(opts...)

	// Setup graceful shutdown
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	go func() {
		select {
		case <-sigCh:
			fmt.Fprintln(cmd.OutOrStdout(), "\nShutting down mock server...")
			cancel()
		case <-ctx.Done():
		}
	}()

	return server.StartWithContext(ctx)
}
