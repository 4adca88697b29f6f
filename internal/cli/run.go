package cli

import (
	"fmt"

	"github.com/specialistvlad/lidarcore/internal/app"
	"github.com/specialistvlad/lidarcore/internal/hcl_adapter"
	"github.com/spf13/cobra"
)

func newRunCommand(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "run RUN_PATH...",
		Short: "Run the pipeline on the synthetic measurement of a run file",
		Long: "Loads .hcl run files (a file or a directory), applies LIDARCORE_* environment\n" +
			"overrides and runs every stage on the generated measurement.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.appConfig(args)
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			a, err := app.NewApp(ctx, cmd.ErrOrStderr(), cfg, hcl_adapter.NewLoader())
			if err != nil {
				return &ExitError{Code: ExitUsage, Message: err.Error()}
			}
			defer closeApp(ctx, a.Logger(), a)

			report, runErr := a.Run(ctx)
			if report != nil {
				printReport(cmd, report)
			}
			if runErr != nil {
				return &ExitError{Code: ExitFailure, Message: runErr.Error()}
			}
			return nil
		},
	}
}

func printReport(cmd *cobra.Command, r *app.Report) {
	out := cmd.OutOrStdout()
	s := r.Status
	if s.OK() {
		fmt.Fprintf(out, "run %s: %s\n", s.RunID, s.Kind)
	} else {
		fmt.Fprintf(out, "run %s: %s at stage '%s': %s\n", s.RunID, s.Kind, s.Stage, s.Message)
	}
	fmt.Fprintf(out, "slots: %d\n", len(r.Keys))
	for _, k := range r.Keys {
		fmt.Fprintf(out, "  %s\n", k)
	}
}
