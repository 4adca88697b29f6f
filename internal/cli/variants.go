package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/specialistvlad/lidarcore/internal/app"
	"github.com/specialistvlad/lidarcore/internal/hcl_adapter"
	"github.com/spf13/cobra"
)

func newVariantsCommand(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "variants RUN_PATH...",
		Short: "Print the variant every operation family resolves to",
		Args:  cobra.MinimumNArgs(1),
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

			resolutions := a.Variants(ctx)
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "FAMILY\tVARIANT\tSTATUS")
			unbound := 0
			for _, r := range resolutions {
				switch {
				case r.Err != nil:
					fmt.Fprintf(tw, "%s\t-\t%v\n", r.Family, r.Err)
					unbound++
				case !r.Bound:
					fmt.Fprintf(tw, "%s\t%s\tunbound\n", r.Family, r.Variant)
					unbound++
				default:
					fmt.Fprintf(tw, "%s\t%s\tok\n", r.Family, r.Variant)
				}
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			if unbound > 0 {
				return &ExitError{Code: ExitFailure, Message: fmt.Sprintf("%d of %d families do not resolve to a registered variant", unbound, len(resolutions))}
			}
			return nil
		},
	}
}
