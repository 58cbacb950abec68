package cli_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/openkraft/sdkweave/internal/adapters/inbound/cli"
	"github.com/openkraft/sdkweave/internal/adapters/outbound/config"
	"github.com/openkraft/sdkweave/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitCmd_DetectsPlatform(t *testing.T) {
	dir := copyFixture(t, "flutter")

	root := cli.NewRootCmdForTest()
	root.SetArgs([]string{"init", dir})
	require.NoError(t, root.Execute())

	data, err := os.ReadFile(filepath.Join(dir, ".sdkweave.yaml"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "app_platform: flutter")
	assert.Contains(t, string(data), "  - base\n")
}

func TestInitCmd_GeneratedConfigLoads(t *testing.T) {
	tmpDir := t.TempDir()

	root := cli.NewRootCmdForTest()
	root.SetArgs([]string{"init", tmpDir, "--platform", "rn", "--parts", "px,push"})
	require.NoError(t, root.Execute())

	cfg, err := config.New().Load(tmpDir)
	require.NoError(t, err)
	assert.Equal(t, domain.PlatformReactNative, cfg.AppPlatform)
	assert.Equal(t, []domain.Part{domain.PartBase, domain.PartPush, domain.PartPx}, cfg.Parts)
}

func TestInitCmd_RejectsUnknownPlatform(t *testing.T) {
	root := cli.NewRootCmdForTest()
	root.SetArgs([]string{"init", t.TempDir(), "--platform", "ios"})
	assert.ErrorIs(t, root.Execute(), domain.ErrUnknownPlatform)
}

func TestInitCmd_FailsIfExists(t *testing.T) {
	tmpDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, ".sdkweave.yaml"), []byte("existing"), 0644))

	root := cli.NewRootCmdForTest()
	root.SetArgs([]string{"init", tmpDir})
	err := root.Execute()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
}

func TestInitCmd_ForceOverwrites(t *testing.T) {
	tmpDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, ".sdkweave.yaml"), []byte("old"), 0644))

	root := cli.NewRootCmdForTest()
	root.SetArgs([]string{"init", tmpDir, "--force", "--platform", "android"})
	require.NoError(t, root.Execute())

	data, err := os.ReadFile(filepath.Join(tmpDir, ".sdkweave.yaml"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "app_platform: android")
}
