package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/abdul-hamid-achik/authprobe/packages/core/runner"
	"github.com/abdul-hamid-achik/authprobe/packages/db"
	"github.com/abdul-hamid-achik/authprobe/packages/export/metrics"
	"github.com/abdul-hamid-achik/authprobe/packages/notify"
	"github.com/abdul-hamid-achik/authprobe/packages/output"
	"github.com/abdul-hamid-achik/authprobe/packages/scenario"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the auth check suite",
	Long: `Run the Tracker Pro auth checks in order against the configured base URL.

The run registers a fresh test user, logs in with it, validates the issued
token and exercises the profile and email endpoints. Checks that depend on an
earlier step are skipped when that step produced no user or token.

Examples:
  authprobe run
  authprobe run --base-url https://staging.example.com/api
  authprobe run --tags smoke,login
  authprobe run --name "Login*" -o junit --output-file report.xml
  authprobe run --history sqlite:./runs.db --watch`,
	Args: cobra.NoArgs,
	RunE: runCommand,
}

const (
	// WatchDebounceDelay is the debounce delay for file watch events
	WatchDebounceDelay = 300 * time.Millisecond
)

var (
	runFlags   settingsFlags
	nameFlag   string
	quietFlag  bool
	dryRunFlag bool
	watchFlag  bool
)

func init() {
	runFlags.register(runCmd)
	runCmd.Flags().StringVarP(&nameFlag, "name", "n", "", "Run only checks whose name matches the pattern (* wildcards)")
	runCmd.Flags().BoolVarP(&quietFlag, "quiet", "q", false, "Only print the summary")
	runCmd.Flags().BoolVar(&dryRunFlag, "dry-run", false, "Show which checks would run without sending requests")
	runCmd.Flags().BoolVarP(&watchFlag, "watch", "w", false, "Re-run when the config or .env file changes")
}

// Formatter interface for all output formatters
type Formatter interface {
	FormatResult(result *runner.RunResult)
	FormatError(err error)
	FormatHeader(version string)
}

// Flushable interface for formatters that need to flush output
type Flushable interface {
	Flush(totalDuration time.Duration) error
}

func runCommand(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s, err := loadSettings(cmd, &runFlags)
	if err != nil {
		return err
	}

	if dryRunFlag {
		for _, sc := range selectScenarios(s) {
			fmt.Fprintf(cmd.OutOrStdout(), "Would run: %s (%s %s, expect %d)\n", sc.Name, sc.Method, sc.Path, sc.ExpectedStatus)
		}
		return nil
	}

	if !watchFlag {
		return runOnce(ctx, cmd, s)
	}

	if _, err := executeSuite(ctx, cmd, s); err != nil {
		return err
	}
	return watch(ctx, cmd, s)
}

var errChecksFailed = errors.New("one or more checks failed")

// runOnce runs the suite and maps a failed check to ExitTestFailure.
func runOnce(ctx context.Context, cmd *cobra.Command, s *settings) error {
	passed, err := executeSuite(ctx, cmd, s)
	if err != nil {
		return err
	}
	if !passed {
		return withExitCode(ExitTestFailure, errChecksFailed)
	}
	return nil
}

func selectScenarios(s *settings) []runner.Scenario {
	all := scenario.Tracker(scenario.WithPassword(s.Password))
	return runner.Filter(all, nameFlag, s.Tags)
}

// executeSuite runs the suite once, writes the report, records history and
// sends notifications. It reports whether every executed check passed.
func executeSuite(ctx context.Context, cmd *cobra.Command, s *settings) (bool, error) {
	stdout, stderr := cmd.OutOrStdout(), cmd.ErrOrStderr()

	var reportOut io.Writer = stdout
	if s.OutputFile != "" {
		f, err := os.Create(s.OutputFile)
		if err != nil {
			return false, fmt.Errorf("cannot create output file: %w", err)
		}
		defer f.Close()
		reportOut = f
	}

	// keep stdout clean for machine-readable reports
	progressOut := stdout
	if s.Output != "console" && s.OutputFile == "" {
		progressOut = stderr
	}

	console := output.NewConsoleFormatter(
		output.WithWriter(progressOut),
		output.WithErrWriter(stderr),
		output.WithVerbose(s.GetVerbose()),
		output.WithQuiet(quietFlag),
		output.WithNoColor(s.GetNoColor()),
	)

	var formatter Formatter
	separateReport := true
	switch s.Output {
	case "json":
		formatter = output.NewJSONFormatter(output.JSONWithWriter(reportOut))
	case "junit":
		formatter = output.NewJUnitFormatter(output.JUnitWithWriter(reportOut))
	case "tap":
		formatter = output.NewTAPFormatter(output.TAPWithWriter(reportOut))
	case "html":
		formatter = output.NewHTMLFormatter(output.HTMLWithWriter(reportOut))
	default:
		if s.OutputFile != "" {
			formatter = output.NewConsoleFormatter(output.WithWriter(reportOut), output.WithNoColor(true))
		} else {
			formatter = console
			separateReport = false
		}
	}

	if s.GetVerbose() {
		console.FormatHeader(version)
	}

	scenarios := selectScenarios(s)
	if len(scenarios) == 0 {
		return false, withExitCode(ExitUsageError, fmt.Errorf("no checks match the name/tag filters"))
	}

	started := time.Now()
	r := runner.NewRunner(runnerConfig(s.Config, console))
	result := r.Run(ctx, scenarios)

	formatter.FormatResult(result)
	if flushable, ok := formatter.(Flushable); ok {
		if err := flushable.Flush(result.Duration); err != nil {
			return false, fmt.Errorf("error writing output: %w", err)
		}
	}
	if separateReport && progressOut == stdout {
		console.FormatSummary(result.Summary)
	}

	lastPassed, hasLast := recordHistory(ctx, s, started, result, console)
	sendNotifications(ctx, s, result, lastPassed, hasLast, console)
	exportMetrics(ctx, s, started, result, console)

	return result.Summary.OK(), nil
}

// recordHistory stores the run and returns the outcome of the run before it.
func recordHistory(ctx context.Context, s *settings, started time.Time, result *runner.RunResult, console *output.ConsoleFormatter) (lastPassed, ok bool) {
	if s.History == "" {
		return false, false
	}

	store, err := db.OpenStore(ctx, s.History)
	if err != nil {
		console.Note("warning: history disabled: " + err.Error())
		return false, false
	}
	defer store.Close()

	lastPassed, ok, err = store.LastRunPassed(ctx)
	if err != nil {
		console.Note("warning: cannot read last run: " + err.Error())
	}
	if _, err := store.SaveRun(ctx, db.NewRun(started, result)); err != nil {
		console.Note("warning: cannot record run: " + err.Error())
	}
	return lastPassed, ok
}

func sendNotifications(ctx context.Context, s *settings, result *runner.RunResult, lastPassed, hasLast bool, console *output.ConsoleFormatter) {
	manager := notifyManager(s)
	if manager == nil {
		return
	}
	if hasLast {
		manager.SetLastState(lastPassed)
	}
	if err := manager.Notify(ctx, notify.NewRunSummary(result)); err != nil {
		console.Note("warning: failed to send notification: " + err.Error())
	}
}

func notifyManager(s *settings) *notify.Manager {
	n := s.Notify
	if n == nil {
		return nil
	}

	m := notify.NewManager(notify.NotifyOn(n.On))
	if n.Slack != nil {
		var opts []notify.SlackOption
		if n.Slack.Channel != "" {
			opts = append(opts, notify.WithSlackChannel(n.Slack.Channel))
		}
		m.AddNotifier(notify.NewSlackNotifier(n.Slack.Webhook, opts...))
	}
	if n.Teams != nil {
		m.AddNotifier(notify.NewTeamsNotifier(n.Teams.Webhook))
	}
	if m.Len() == 0 {
		return nil
	}
	return m
}

func exportMetrics(ctx context.Context, s *settings, started time.Time, result *runner.RunResult, console *output.ConsoleFormatter) {
	m := s.Metrics
	if m == nil {
		return
	}

	collector := metrics.NewCollector()
	if m.Textfile != "" || m.Pushgateway != "" {
		collector.Add(metrics.NewPrometheusExporter(
			metrics.WithTextfile(m.Textfile),
			metrics.WithPushgateway(m.Pushgateway),
			metrics.WithJob(m.Job),
		))
	}
	if dd := m.Datadog; dd != nil {
		collector.Add(metrics.NewDataDogExporter(
			metrics.WithDataDogAPIKey(dd.APIKey),
			metrics.WithDataDogSite(dd.Site),
			metrics.WithDataDogTags(dd.Tags),
		))
	}
	if collector.Len() == 0 {
		return
	}

	if err := collector.Export(ctx, metrics.FromRunResult(result, started)); err != nil {
		console.Note("warning: failed to export metrics: " + err.Error())
	}
}

// watch re-runs the suite whenever the config or .env file changes. Runs
// never overlap; bursts of events collapse into one run.
func watch(ctx context.Context, cmd *cobra.Command, s *settings) error {
	targets := map[string]bool{}
	for _, p := range []string{s.configPath, s.envPath} {
		if p == "" {
			continue
		}
		abs, err := filepath.Abs(p)
		if err != nil {
			return err
		}
		targets[abs] = true
	}
	if len(targets) == 0 {
		return withExitCode(ExitUsageError, fmt.Errorf("--watch needs a config file or --env-file to watch"))
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer watcher.Close()

	// watch directories so editors that replace files are still seen
	dirs := map[string]bool{}
	for p := range targets {
		dir := filepath.Dir(p)
		if dirs[dir] {
			continue
		}
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("failed to watch %s: %w", dir, err)
		}
		dirs[dir] = true
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "\nWatching for changes... (press Ctrl+C to stop)\n\n")

	var debounce <-chan time.Time
	var changed string

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			abs, err := filepath.Abs(event.Name)
			if err != nil || !targets[abs] {
				continue
			}
			changed = event.Name
			debounce = time.After(WatchDebounceDelay)

		case <-debounce:
			debounce = nil
			fmt.Fprintf(out, "\n\nFile changed: %s\nRe-running checks...\n\n", changed)

			reloaded, err := loadSettings(cmd, &runFlags)
			if err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
			} else if _, err := executeSuite(ctx, cmd, reloaded); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
			}

			fmt.Fprintf(out, "\nWatching for changes... (press Ctrl+C to stop)\n")

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Error: watcher error: %v\n", err)
		}
	}
}
