package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/openkraft/sdkweave/internal/adapters/outbound/tui"
)

func newPlanCmd() *cobra.Command {
	var (
		req        requestFlags
		jsonOutput bool
		patches    bool
	)

	cmd := &cobra.Command{
		Use:   "plan [path]",
		Short: "Propose the changes that integrate the SDK",
		Long:  "Scan the project and list every change needed to integrate the selected parts. Nothing is written.",
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

			plan, err := engine.Planner.PlanIntegration(opts)
			if err != nil {
				return fmt.Errorf("planning failed: %w", err)
			}
			warnInputs(cmd, engine, opts)

			if jsonOutput {
				return renderJSON(cmd, plan)
			}
			fmt.Fprint(cmd.OutOrStdout(), tui.RenderPlan(plan, tui.PlanOptions{ShowPatches: patches}))
			return nil
		},
	}

	req.register(cmd)
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output the plan as JSON")
	cmd.Flags().BoolVar(&patches, "patches", false, "Show the patch of every change")

	return cmd
}
