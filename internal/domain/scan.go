package domain

import "path/filepath"

// AppPlatform is the framework the target mobile app is built with.
type AppPlatform string

const (
	PlatformReactNative AppPlatform = "react-native"
	PlatformFlutter     AppPlatform = "flutter"
	PlatformAndroid     AppPlatform = "android"
)

// ValidAppPlatforms enumerates recognized platforms.
var ValidAppPlatforms = []AppPlatform{PlatformReactNative, PlatformFlutter, PlatformAndroid}

// ParseAppPlatform accepts the canonical names plus a few common aliases.
func ParseAppPlatform(s string) (AppPlatform, error) {
	switch s {
	case "react-native", "reactnative", "rn":
		return PlatformReactNative, nil
	case "flutter":
		return PlatformFlutter, nil
	case "android", "native-android", "native":
		return PlatformAndroid, nil
	}
	return "", &UnknownValueError{Kind: "app platform", Value: s, Err: ErrUnknownPlatform}
}

// BuildDSL is the Gradle script language of a build file.
type BuildDSL string

const (
	DSLGroovy BuildDSL = "groovy"
	DSLKotlin BuildDSL = "kotlin"
)

// Platforms records which native platform folders exist.
type Platforms struct {
	Android bool `json:"android"`
	IOS     bool `json:"ios"`
}

// AndroidLayout locates the Gradle project that holds the Android app.
// Paths are absolute; an empty path means the file was not found.
type AndroidLayout struct {
	Root             string   `json:"root"`
	AppDir           string   `json:"appDir"`
	ManifestPath     string   `json:"manifestPath"`
	AppBuildFile     string   `json:"appBuildFile"`
	RootBuildFile    string   `json:"rootBuildFile"`
	SettingsFile     string   `json:"settingsFile"`
	GradleProperties string   `json:"gradleProperties"`
	DSL              BuildDSL `json:"dsl"`
	PackageName      string   `json:"packageName,omitempty"`
}

// SourceRoots lists the directories searched for Java/Kotlin classes.
func (l AndroidLayout) SourceRoots() []string {
	if l.AppDir == "" {
		return nil
	}
	return []string{
		filepath.Join(l.AppDir, "src", "main", "java"),
		filepath.Join(l.AppDir, "src", "main", "kotlin"),
	}
}

// ResDir is the main resource directory of the app module.
func (l AndroidLayout) ResDir() string {
	if l.AppDir == "" {
		return ""
	}
	return filepath.Join(l.AppDir, "src", "main", "res")
}

// FlutterLayout locates Flutter project files.
type FlutterLayout struct {
	PubspecPath string `json:"pubspecPath"`
	EntryPath   string `json:"entryPath"`
}

// ReactNativeLayout locates React Native project files.
type ReactNativeLayout struct {
	PackageJSONPath string `json:"packageJsonPath"`
	EntryPath       string `json:"entryPath"`
}

// ProjectScan holds the probed facts about a target project. It is
// recomputed on every plan and never mutated after the prober returns it.
type ProjectScan struct {
	RootPath           string            `json:"rootPath"`
	Platforms          Platforms         `json:"platforms"`
	ReactNativeVersion string            `json:"reactNativeVersion,omitempty"`
	Notes              []string          `json:"notes"`
	AppPlatform        AppPlatform       `json:"appPlatform,omitempty"`
	Android            AndroidLayout     `json:"android"`
	Flutter            FlutterLayout     `json:"flutter"`
	ReactNative        ReactNativeLayout `json:"reactNative"`
	GitDirty           bool              `json:"gitDirty"`
}

// HasAndroidApp reports whether an Android app module with a manifest was found.
func (s *ProjectScan) HasAndroidApp() bool {
	return s.Android.ManifestPath != ""
}
