package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/openkraft/sdkweave/internal/adapters/outbound/tui"
	"github.com/openkraft/sdkweave/internal/domain"
)

func newApplyCmd() *cobra.Command {
	var (
		req        requestFlags
		ids        []string
		dryRun     bool
		verify     bool
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "apply [path]",
		Short: "Apply the proposed changes",
		Long:  "Plan the project and apply the selected changes (all changes with a patch by default). With --verify the project is re-planned and still-pending changes are re-applied.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := req.options(args)
			if err != nil {
				return err
			}
			opts.DryRun = dryRun
			engine, err := newEngine()
			if err != nil {
				return err
			}
			warnInputs(cmd, engine, opts)

			if verify {
				report, err := engine.Verifier.ApplyAndVerify(opts, ids)
				if err != nil {
					return fmt.Errorf("apply failed: %w", err)
				}
				return reportVerify(cmd, report, jsonOutput, dryRun)
			}

			_, results, err := engine.Apply(opts, ids)
			if err != nil {
				return fmt.Errorf("apply failed: %w", err)
			}
			if jsonOutput {
				return renderJSON(cmd, results)
			}
			fmt.Fprint(cmd.OutOrStdout(), tui.RenderResults(results))
			return nil
		},
	}

	req.register(cmd)
	cmd.Flags().StringSliceVar(&ids, "id", nil, "Change id to apply (repeatable; default: every change with a patch)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Report what would be applied without writing")
	cmd.Flags().BoolVar(&verify, "verify", false, "Re-plan and re-apply until nothing selected remains")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output results as JSON")

	return cmd
}

func newVerifyCmd() *cobra.Command {
	var (
		req        requestFlags
		ids        []string
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "verify [path]",
		Short: "Re-apply changes that are still pending",
		Long:  "Re-plan the project, re-apply the selected changes that are still proposed and report what remains after the retry budget.",
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

			report, err := engine.VerifySelection(opts, ids)
			if err != nil {
				return fmt.Errorf("verify failed: %w", err)
			}
			return reportVerify(cmd, report, jsonOutput, false)
		},
	}

	req.register(cmd)
	cmd.Flags().StringSliceVar(&ids, "id", nil, "Change id to verify (repeatable; default: every change with a patch)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output the report as JSON")

	return cmd
}

func reportVerify(cmd *cobra.Command, report *domain.VerifyReport, jsonOutput, dryRun bool) error {
	if jsonOutput {
		if err := renderJSON(cmd, report); err != nil {
			return err
		}
	} else {
		fmt.Fprint(cmd.OutOrStdout(), tui.RenderVerify(report))
	}
	if !dryRun && !report.Converged {
		return fmt.Errorf("%d changes still pending", len(report.Remaining))
	}
	return nil
}
