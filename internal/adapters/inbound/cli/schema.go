package cli

import (
	"fmt"
	"strings"

	"github.com/invopop/jsonschema"
	"github.com/spf13/cobra"

	"github.com/openkraft/sdkweave/internal/domain"
)

func newSchemaCmd() *cobra.Command {
	var keys bool

	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Print the JSON schema of an integration request",
		RunE: func(cmd *cobra.Command, args []string) error {
			if keys {
				fmt.Fprintln(cmd.OutOrStdout(), strings.Join(domain.FlatInputKeys(), "\n"))
				return nil
			}
			reflector := jsonschema.Reflector{
				AllowAdditionalProperties: false,
				DoNotReference:            true,
			}
			return renderJSON(cmd, reflector.Reflect(&domain.IntegrationOptions{}))
		},
	}

	cmd.Flags().BoolVar(&keys, "keys", false, "List the flat input keys accepted by --set and the HTTP API")

	return cmd
}
