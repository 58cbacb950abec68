package cli

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/openkraft/sdkweave/internal/adapters/inbound/httpapi"
)

func newServeCmd() *cobra.Command {
	var (
		addr  string
		debug bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the plan/apply/verify API over HTTP",
		Long:  "Start an HTTP server exposing POST /v1/plan, /v1/apply, /v1/verify and GET /v1/scan.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !debug {
				gin.SetMode(gin.ReleaseMode)
			}
			engine, err := newEngine()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			logger := slog.Default()
			return httpapi.Serve(ctx, addr, httpapi.NewRouter(engine, logger), logger)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:8765", "Listen address")
	cmd.Flags().BoolVar(&debug, "debug", false, "Run gin in debug mode")

	return cmd
}
