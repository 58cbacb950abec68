package domain

import "fmt"

// ProjectConfig holds project-level defaults loaded from .sdkweave.yaml.
type ProjectConfig struct {
	AppPlatform  AppPlatform `yaml:"app_platform"  json:"app_platform,omitempty"`
	Parts        []Part      `yaml:"parts"         json:"parts,omitempty"`
	Inputs       Inputs      `yaml:"inputs"        json:"inputs"`
	ExcludePaths []string    `yaml:"exclude_paths" json:"exclude_paths,omitempty"`
}

// DefaultConfig returns a zero-value config that changes nothing.
func DefaultConfig() ProjectConfig {
	return ProjectConfig{}
}

// Validate checks the config for invalid values and returns a descriptive error.
func (c ProjectConfig) Validate() error {
	if c.AppPlatform != "" {
		if _, err := ParseAppPlatform(string(c.AppPlatform)); err != nil {
			return fmt.Errorf("app_platform: %w (valid: react-native, flutter, android)", err)
		}
	}

	for _, p := range c.Parts {
		if _, err := ParsePart(string(p)); err != nil {
			return fmt.Errorf("parts: %w (valid: base, push, px)", err)
		}
	}

	if v := c.Inputs.Base.ApplicationClassPath; v != "" && !isSourcePath(v) {
		return fmt.Errorf("inputs.base.application_class_path %q must be a .java or .kt file", v)
	}
	if v := c.Inputs.Base.LauncherActivityPath; v != "" && !isSourcePath(v) {
		return fmt.Errorf("inputs.base.launcher_activity_path %q must be a .java or .kt file", v)
	}
	if v := c.Inputs.Push.FirebaseServicePath; v != "" && !isSourcePath(v) {
		return fmt.Errorf("inputs.push.firebase_service_path %q must be a .java or .kt file", v)
	}

	return nil
}

// ApplyTo layers the config under an explicit request: request values win,
// config fills the gaps.
func (c ProjectConfig) ApplyTo(opts IntegrationOptions) (IntegrationOptions, error) {
	out := opts
	if out.AppPlatform == "" {
		out.AppPlatform = c.AppPlatform
	}
	if len(out.Parts) == 0 {
		out.Parts = append([]Part(nil), c.Parts...)
	}
	in, err := out.Inputs.Overlay(c.Inputs)
	if err != nil {
		return IntegrationOptions{}, err
	}
	out.Inputs = in
	return out, nil
}
