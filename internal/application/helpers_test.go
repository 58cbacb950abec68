package application_test

import (
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/openkraft/sdkweave/internal/adapters/outbound/fsstore"
	"github.com/openkraft/sdkweave/internal/adapters/outbound/prober"
	"github.com/openkraft/sdkweave/internal/application"
	"github.com/openkraft/sdkweave/internal/domain"
	"github.com/openkraft/sdkweave/internal/domain/rules"
	"github.com/stretchr/testify/require"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// loadFixture copies testdata/<name> into memory under /work/<name>.
func loadFixture(t *testing.T, name string) (*fsstore.Memory, string) {
	t.Helper()
	src := filepath.Join("..", "..", "testdata", name)
	root := filepath.Join(string(filepath.Separator), "work", name)
	files := make(map[string]string)
	err := filepath.WalkDir(src, func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		rel, err := filepath.Rel(src, p)
		if err != nil {
			return err
		}
		data, err := os.ReadFile(p)
		if err != nil {
			return err
		}
		files[filepath.Join(root, rel)] = string(data)
		return nil
	})
	require.NoError(t, err)
	return fsstore.NewMemory(files), root
}

type stubConfig struct {
	cfg domain.ProjectConfig
	err error
}

func (s stubConfig) Load(string) (domain.ProjectConfig, error) { return s.cfg, s.err }

type services struct {
	planner  *application.PlanService
	applier  *application.ApplyService
	verifier *application.VerifyService
}

func newServices(fsys domain.FileSystem, cfg domain.ConfigLoader) services {
	planner := application.NewPlanService(prober.New(fsys, nil), cfg, rules.DefaultRegistry(), fsys, quietLogger())
	applier := application.NewApplyService(fsys, nil, nil, quietLogger())
	return services{
		planner:  planner,
		applier:  applier,
		verifier: application.NewVerifyService(planner, applier, quietLogger()),
	}
}

func fullInputs() domain.Inputs {
	return domain.Inputs{
		Base: domain.BaseInputs{AppID: "APP123", DeeplinkScheme: "demo"},
		Px:   domain.PxInputs{HanselAppID: "HID", HanselAppKey: "HKEY", Scheme: "demopx"},
	}
}
