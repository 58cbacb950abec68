package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/openkraft/sdkweave/internal/domain"
)

const (
	fileName = ".sdkweave.yaml"
	envFile  = ".env"
)

// envKeys maps .env keys onto the inputs they fill.
var envKeys = map[string]func(in *domain.Inputs, v string){
	"SMARTECH_APP_ID":          func(in *domain.Inputs, v string) { in.Base.AppID = v },
	"SMARTECH_DEEPLINK_SCHEME": func(in *domain.Inputs, v string) { in.Base.DeeplinkScheme = v },
	"HANSEL_APP_ID":            func(in *domain.Inputs, v string) { in.Px.HanselAppID = v },
	"HANSEL_APP_KEY":           func(in *domain.Inputs, v string) { in.Px.HanselAppKey = v },
	"HANSEL_PX_SCHEME":         func(in *domain.Inputs, v string) { in.Px.Scheme = v },
}

// YAMLLoader implements domain.ConfigLoader by reading .sdkweave.yaml and
// the project's .env file.
type YAMLLoader struct{}

// New creates a YAMLLoader.
func New() *YAMLLoader { return &YAMLLoader{} }

// Load reads .sdkweave.yaml from projectPath and fills inputs it leaves
// empty from .env. Missing files yield DefaultConfig. The process
// environment is never touched.
func (l *YAMLLoader) Load(projectPath string) (domain.ProjectConfig, error) {
	cfg := domain.DefaultConfig()

	data, err := os.ReadFile(filepath.Join(projectPath, fileName))
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return domain.ProjectConfig{}, err
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return domain.ProjectConfig{}, fmt.Errorf("parsing %s: %w", fileName, err)
		}
		// Validate the raw file before anything is layered on top.
		if err := cfg.Validate(); err != nil {
			return domain.ProjectConfig{}, fmt.Errorf("invalid %s: %w", fileName, err)
		}
	}

	env, err := readEnv(projectPath)
	if err != nil {
		return domain.ProjectConfig{}, err
	}
	in, err := cfg.Inputs.Overlay(env)
	if err != nil {
		return domain.ProjectConfig{}, err
	}
	cfg.Inputs = in
	return cfg, nil
}

func readEnv(projectPath string) (domain.Inputs, error) {
	var in domain.Inputs
	path := filepath.Join(projectPath, envFile)
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return in, nil
	}
	vars, err := godotenv.Read(path)
	if err != nil {
		return in, fmt.Errorf("parsing %s: %w", envFile, err)
	}
	for key, set := range envKeys {
		if v := vars[key]; v != "" {
			set(&in, v)
		}
	}
	return in, nil
}
