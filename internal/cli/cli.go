package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/specialistvlad/lidarcore/internal/app"
	"github.com/spf13/cobra"
)

// Exit codes.
const (
	ExitFailure = 1
	ExitUsage   = 2
)

// closer is the shutdown half of *app.App.
type closer interface {
	Close(ctx context.Context) error
}

// closeApp shuts c down and logs a failure. The command's own result is kept.
func closeApp(ctx context.Context, logger *slog.Logger, c closer) {
	if err := c.Close(ctx); err != nil {
		logger.Error("❌ Shutdown failed.", "error", err)
	}
}

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// globalFlags are shared by every subcommand.
type globalFlags struct {
	logLevel    string
	logFormat   string
	metricsPort int
	variantsDB  string
}

// validate checks the flag values that have a fixed vocabulary. Empty means
// "use the run file or environment".
func (f *globalFlags) validate() error {
	f.logFormat = strings.ToLower(f.logFormat)
	switch f.logFormat {
	case "", "text", "json":
	default:
		return &ExitError{Code: ExitUsage, Message: "invalid log-format: must be 'text' or 'json'"}
	}

	f.logLevel = strings.ToLower(f.logLevel)
	switch f.logLevel {
	case "", "debug", "info", "warn", "error":
	default:
		return &ExitError{Code: ExitUsage, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}

	if f.metricsPort < 0 || f.metricsPort > 65535 {
		return &ExitError{Code: ExitUsage, Message: "invalid metrics-port: must be between 0 and 65535"}
	}
	return nil
}

// appConfig builds the app configuration for the given run paths.
func (f *globalFlags) appConfig(paths []string) (*app.Config, error) {
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			return nil, &ExitError{Code: ExitUsage, Message: fmt.Sprintf("run path %s: %v", p, err)}
		}
	}
	cfg, err := app.NewConfig(app.Config{
		RunPaths:    paths,
		LogLevel:    f.logLevel,
		LogFormat:   f.logFormat,
		MetricsPort: f.metricsPort,
		VariantsDB:  f.variantsDB,
	})
	if err != nil {
		return nil, &ExitError{Code: ExitUsage, Message: err.Error()}
	}
	return cfg, nil
}

// NewRootCommand builds the lidarcore command tree. Reports go to outW and
// logs to errW.
func NewRootCommand(outW, errW io.Writer) *cobra.Command {
	flags := &globalFlags{}

	root := &cobra.Command{
		Use:   "lidarcore",
		Short: "Execution core of a multi-stage lidar retrieval pipeline",
		Long: "lidarcore resolves configured algorithm variants, runs pipeline stages over a\n" +
			"per-measurement data store and propagates uncertainty with Monte Carlo sampling.",
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			HiddenDefaultCmd: true,
		},
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return flags.validate()
		},
	}
	root.SetOut(outW)
	root.SetErr(errW)

	pf := root.PersistentFlags()
	pf.StringVar(&flags.logLevel, "log-level", "", "Logging level: 'debug', 'info', 'warn' or 'error'. Overrides the run file.")
	pf.StringVar(&flags.logFormat, "log-format", "", "Log output format: 'text' or 'json'. Overrides the run file.")
	pf.IntVar(&flags.metricsPort, "metrics-port", 0, "Port for the /health and /metrics server. 0 keeps the run file setting.")
	pf.StringVar(&flags.variantsDB, "variants-db", "", "SQLite database of per-family variant names.")

	root.AddCommand(newRunCommand(flags), newVariantsCommand(flags))
	return root
}

// Execute runs the command tree with args. Every returned error is an
// *ExitError; cobra's own argument and flag errors map to ExitUsage.
func Execute(ctx context.Context, args []string, outW, errW io.Writer) error {
	root := NewRootCommand(outW, errW)
	root.SetArgs(args)
	if err := root.ExecuteContext(ctx); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			return exitErr
		}
		return &ExitError{Code: ExitUsage, Message: err.Error()}
	}
	return nil
}
