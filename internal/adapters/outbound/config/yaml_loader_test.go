package config_test

import (
	"os"
	"path/filepath"
	"testing"

	appconfig "github.com/openkraft/sdkweave/internal/adapters/outbound/config"
	"github.com/openkraft/sdkweave/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
}

func TestYAMLLoader_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := appconfig.New().Load(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultConfig(), cfg)
}

func TestYAMLLoader_ValidYAML(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, ".sdkweave.yaml", `
app_platform: flutter
parts: [base, push]
inputs:
  base:
    app_id: APP123
    deeplink_scheme: travel
    backup_rules: false
  push:
    foreground_handler: false
exclude_paths:
  - example
`)

	cfg, err := appconfig.New().Load(dir)
	require.NoError(t, err)
	assert.Equal(t, domain.PlatformFlutter, cfg.AppPlatform)
	assert.Equal(t, []domain.Part{domain.PartBase, domain.PartPush}, cfg.Parts)
	assert.Equal(t, "APP123", cfg.Inputs.Base.AppID)
	assert.Equal(t, "travel", cfg.Inputs.Base.DeeplinkScheme)
	require.NotNil(t, cfg.Inputs.Base.BackupRules)
	assert.False(t, *cfg.Inputs.Base.BackupRules)
	require.NotNil(t, cfg.Inputs.Push.ForegroundHandler)
	assert.False(t, *cfg.Inputs.Push.ForegroundHandler)
	assert.Equal(t, []string{"example"}, cfg.ExcludePaths)
}

func TestYAMLLoader_InvalidYAML(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, ".sdkweave.yaml", `{{{invalid yaml`)

	_, err := appconfig.New().Load(dir)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "parsing .sdkweave.yaml")
}

func TestYAMLLoader_RejectsUnknownPlatform(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, ".sdkweave.yaml", "app_platform: cordova\n")

	_, err := appconfig.New().Load(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid .sdkweave.yaml")
	assert.ErrorIs(t, err, domain.ErrUnknownPlatform)
}

func TestYAMLLoader_RejectsUnknownPart(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, ".sdkweave.yaml", "parts: [base, inbox]\n")

	_, err := appconfig.New().Load(dir)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrUnknownPart)
}

func TestYAMLLoader_EnvFillsEmptyInputs(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, ".env", "SMARTECH_APP_ID=ENVAPP\nSMARTECH_DEEPLINK_SCHEME=envscheme\nHANSEL_APP_ID=H1\nHANSEL_APP_KEY=K1\nHANSEL_PX_SCHEME=pxenv\n")

	cfg, err := appconfig.New().Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "ENVAPP", cfg.Inputs.Base.AppID)
	assert.Equal(t, "envscheme", cfg.Inputs.Base.DeeplinkScheme)
	assert.Equal(t, "H1", cfg.Inputs.Px.HanselAppID)
	assert.Equal(t, "K1", cfg.Inputs.Px.HanselAppKey)
	assert.Equal(t, "pxenv", cfg.Inputs.Px.Scheme)
}

func TestYAMLLoader_FileWinsOverEnv(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, ".sdkweave.yaml", "inputs:\n  base:\n    app_id: FILEAPP\n")
	writeFile(t, dir, ".env", "SMARTECH_APP_ID=ENVAPP\nSMARTECH_DEEPLINK_SCHEME=envscheme\n")

	cfg, err := appconfig.New().Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "FILEAPP", cfg.Inputs.Base.AppID)
	assert.Equal(t, "envscheme", cfg.Inputs.Base.DeeplinkScheme)
}

func TestYAMLLoader_EnvDoesNotTouchProcessEnvironment(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, ".env", "SMARTECH_APP_ID=ENVAPP\n")
	t.Setenv("SMARTECH_APP_ID", "")

	_, err := appconfig.New().Load(dir)
	require.NoError(t, err)
	assert.Empty(t, os.Getenv("SMARTECH_APP_ID"))
}
