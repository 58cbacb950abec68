package cli

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/openkraft/sdkweave/internal/adapters/outbound/logging"
)

var (
	version = "dev"
	commit  = "none"
)

func newRootCmd() *cobra.Command {
	var (
		logOpts logging.Options
		closer  io.Closer
	)

	cmd := &cobra.Command{
		Use:   "sdkweave",
		Short: "Wire the Smartech SDK into a mobile app",
		Long:  "sdkweave scans a React Native, Flutter or Android project, proposes the source edits that integrate the Smartech SDK parts, applies the ones you select and verifies the result.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			closer, err = logging.Setup(logOpts)
			return err
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if closer != nil {
				return closer.Close()
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&logOpts.Level, "log-level", "warn", "Log level (debug, info, warn, error)")
	cmd.PersistentFlags().StringVar(&logOpts.Format, "log-format", "text", "Log format (text, json)")
	cmd.PersistentFlags().StringVar(&logOpts.File, "log-file", "", "Write logs to a rotated file instead of stderr")

	cmd.AddCommand(newVersionCmd())
	cmd.AddCommand(newScanCmd())
	cmd.AddCommand(newPlanCmd())
	cmd.AddCommand(newApplyCmd())
	cmd.AddCommand(newVerifyCmd())
	cmd.AddCommand(newInputsCmd())
	cmd.AddCommand(newHistoryCmd())
	cmd.AddCommand(newSchemaCmd())
	cmd.AddCommand(newInitCmd())
	cmd.AddCommand(newMCPCmd())
	cmd.AddCommand(newServeCmd())
	return cmd
}

// NewRootCmdForTest returns the root command for testing.
func NewRootCmdForTest() *cobra.Command {
	return newRootCmd()
}

func Execute() error {
	return newRootCmd().Execute()
}
