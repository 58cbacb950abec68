package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/openkraft/sdkweave/internal/adapters/outbound/tui"
	"github.com/openkraft/sdkweave/internal/domain"
)

func newScanCmd() *cobra.Command {
	var (
		platform   string
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "scan [path]",
		Short: "Detect the app platform and Android layout",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := projectPath(args)
			if err != nil {
				return err
			}
			var declared domain.AppPlatform
			if platform != "" {
				if declared, err = domain.ParseAppPlatform(platform); err != nil {
					return err
				}
			}
			engine, err := newEngine()
			if err != nil {
				return err
			}

			scan, err := engine.Planner.ScanProject(root, declared)
			if err != nil {
				return err
			}
			if jsonOutput {
				return renderJSON(cmd, scan)
			}
			fmt.Fprint(cmd.OutOrStdout(), tui.RenderScan(scan))
			return nil
		},
	}

	cmd.Flags().StringVar(&platform, "platform", "", "Declared app platform (overrides detection)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output the scan as JSON")

	return cmd
}
