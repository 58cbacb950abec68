package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/openkraft/sdkweave/internal/adapters/outbound/tui"
)

func newInputsCmd() *cobra.Command {
	var (
		req        requestFlags
		strict     bool
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "inputs [path]",
		Short: "Check the inputs a selection needs",
		Long:  "Resolve flags, .sdkweave.yaml and .env for the project and list required inputs that are still missing.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := req.options(args)
			if err != nil {
				return err
			}
			engine, err := newEngine()
			if err != nil {
				return err
			}

			resolved, _, err := engine.Planner.Resolve(opts)
			if err != nil {
				return err
			}
			parts := resolved.NormalizedParts()
			issues := resolved.Inputs.Validate(resolved.AppPlatform, parts)

			if jsonOutput {
				if err := renderJSON(cmd, issues); err != nil {
					return err
				}
			} else {
				fmt.Fprint(cmd.OutOrStdout(), tui.RenderInputIssues(resolved.AppPlatform, parts, issues))
			}
			if strict && len(issues) > 0 {
				return fmt.Errorf("%d required inputs missing", len(issues))
			}
			return nil
		},
	}

	req.register(cmd)
	cmd.Flags().BoolVar(&strict, "strict", false, "Exit non-zero when inputs are missing")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output findings as JSON")

	return cmd
}
