package cli

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/openkraft/sdkweave/internal/adapters/outbound/config"
	"github.com/openkraft/sdkweave/internal/adapters/outbound/fsstore"
	"github.com/openkraft/sdkweave/internal/adapters/outbound/gitinfo"
	"github.com/openkraft/sdkweave/internal/adapters/outbound/journal"
	"github.com/openkraft/sdkweave/internal/adapters/outbound/prober"
	"github.com/openkraft/sdkweave/internal/application"
	"github.com/openkraft/sdkweave/internal/domain"
	"github.com/openkraft/sdkweave/internal/domain/rules"
)

// journalNode is the snowflake node id of CLI processes.
const journalNode = 1

// newEngine wires the engine over the real file system.
func newEngine() (*application.Engine, error) {
	j, err := journal.New(journalNode)
	if err != nil {
		return nil, err
	}
	fsys := fsstore.New()
	git := gitinfo.New()
	return application.NewEngine(application.EngineDeps{
		FS:           fsys,
		Prober:       prober.New(fsys, git),
		ConfigLoader: config.New(),
		Registry:     rules.DefaultRegistry(),
		Journal:      j,
		Git:          git,
		Logger:       slog.Default(),
	}), nil
}

// requestFlags are the flags shared by every command that plans.
type requestFlags struct {
	platform string
	parts    []string
	set      map[string]string
}

func (f *requestFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.platform, "platform", "", "App platform: react-native, flutter or android (default: detected)")
	cmd.Flags().StringSliceVar(&f.parts, "parts", nil, "Parts to integrate: base, push, px (base is always included)")
	cmd.Flags().StringToStringVar(&f.set, "set", nil, "Input values as key=value, e.g. --set smartechAppId=abc (see 'sdkweave schema')")
}

func (f *requestFlags) options(args []string) (domain.IntegrationOptions, error) {
	root, err := projectPath(args)
	if err != nil {
		return domain.IntegrationOptions{}, err
	}
	opts := domain.IntegrationOptions{RootPath: root}
	if f.platform != "" {
		if opts.AppPlatform, err = domain.ParseAppPlatform(f.platform); err != nil {
			return opts, err
		}
	}
	for _, s := range f.parts {
		p, err := domain.ParsePart(strings.TrimSpace(s))
		if err != nil {
			return opts, err
		}
		opts.Parts = append(opts.Parts, p)
	}
	bag := make(map[string]any, len(f.set))
	for k, v := range f.set {
		bag[k] = v
	}
	if opts.Inputs, err = domain.InputsFromMap(bag); err != nil {
		return opts, err
	}
	return opts, nil
}

func projectPath(args []string) (string, error) {
	path := "."
	if len(args) > 0 {
		path = args[0]
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}
	return absPath, nil
}

// warnInputs prints the inputs the resolved request is missing.
func warnInputs(cmd *cobra.Command, engine *application.Engine, opts domain.IntegrationOptions) {
	resolved, _, err := engine.Planner.Resolve(opts)
	if err != nil {
		return
	}
	for _, is := range resolved.Inputs.Validate(resolved.AppPlatform, resolved.NormalizedParts()) {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s.%s: %s\n", is.Part, is.Field, is.Message)
	}
}

func renderJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
