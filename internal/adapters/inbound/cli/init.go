package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/openkraft/sdkweave/internal/domain"
)

const configFileName = ".sdkweave.yaml"

func newInitCmd() *cobra.Command {
	var (
		platform string
		parts    []string
		force    bool
	)

	cmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Generate a .sdkweave.yaml configuration file",
		Long:  "Create a .sdkweave.yaml for the project. The app platform is detected unless --platform is given.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			absPath, err := projectPath(args)
			if err != nil {
				return err
			}

			dest := filepath.Join(absPath, configFileName)

			if !force {
				if _, err := os.Stat(dest); err == nil {
					return fmt.Errorf("%s already exists (use --force to overwrite)", configFileName)
				}
			}

			var pf domain.AppPlatform
			if platform != "" {
				if pf, err = domain.ParseAppPlatform(platform); err != nil {
					return err
				}
			} else {
				engine, err := newEngine()
				if err != nil {
					return err
				}
				scan, err := engine.Planner.ScanProject(absPath, "")
				if err != nil {
					return err
				}
				pf = scan.AppPlatform
			}

			selected := []domain.Part{domain.PartBase}
			if len(parts) > 0 {
				opts := domain.IntegrationOptions{}
				for _, s := range parts {
					p, err := domain.ParsePart(s)
					if err != nil {
						return err
					}
					opts.Parts = append(opts.Parts, p)
				}
				selected = opts.NormalizedParts()
			}

			if err := os.WriteFile(dest, []byte(generateConfig(pf, selected)), 0644); err != nil {
				return fmt.Errorf("writing config: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", configFileName)
			return nil
		},
	}

	cmd.Flags().StringVar(&platform, "platform", "", "App platform (react-native, flutter, android; default: detected)")
	cmd.Flags().StringSliceVar(&parts, "parts", nil, "Parts to integrate (base, push, px)")
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite existing .sdkweave.yaml")

	return cmd
}

func generateConfig(platform domain.AppPlatform, parts []domain.Part) string {
	var b strings.Builder
	b.WriteString("# sdkweave configuration\n")
	b.WriteString("# Request flags override these values; .env fills ids left empty here.\n\n")

	if platform != "" {
		fmt.Fprintf(&b, "app_platform: %s\n\n", platform)
	} else {
		b.WriteString("# app_platform: android\n\n")
	}

	b.WriteString("parts:\n")
	for _, p := range parts {
		fmt.Fprintf(&b, "  - %s\n", p)
	}

	b.WriteString("\ninputs:\n  base:\n")
	b.WriteString("    app_id: \"\"          # or SMARTECH_APP_ID in .env\n")
	b.WriteString("    deeplink_scheme: \"\" # or SMARTECH_DEEPLINK_SCHEME in .env\n")
	fmt.Fprintf(&b, "    # sdk_version: %s\n", domain.DefaultBaseSDKVersion)
	for _, p := range parts {
		switch p {
		case domain.PartPush:
			b.WriteString("  push:\n")
			fmt.Fprintf(&b, "    # sdk_version: %s\n", domain.DefaultPushSDKVersion)
			b.WriteString("    # firebase_service_path: app/src/main/java/com/example/MyMessagingService.kt\n")
		case domain.PartPx:
			b.WriteString("  px:\n")
			b.WriteString("    hansel_app_id: \"\"  # or HANSEL_APP_ID in .env\n")
			b.WriteString("    hansel_app_key: \"\" # or HANSEL_APP_KEY in .env\n")
			b.WriteString("    scheme: \"\"         # or HANSEL_PX_SCHEME in .env\n")
		}
	}

	b.WriteString(`
# exclude_paths:
#   - app/src/debug
#   - generated
`)
	return b.String()
}
