// Package prober derives a ProjectScan from a mobile project on disk.
package prober

import (
	"fmt"
	"path/filepath"
	"regexp"

	"github.com/buger/jsonparser"
	"gopkg.in/yaml.v3"

	"github.com/openkraft/sdkweave/internal/domain"
	"github.com/openkraft/sdkweave/internal/domain/mutate"
)

// React Native entry candidates, in priority order.
var rnEntries = []string{"App.tsx", "App.js", "App.jsx", filepath.Join("src", "App.tsx"), filepath.Join("src", "App.js")}

var namespaceRex = regexp.MustCompile(`(?m)^\s*namespace\s*=?\s*["']([\w.]+)["']`)

// Prober implements domain.ProjectProber.
type Prober struct {
	fs  domain.FileSystem
	git domain.GitInfo
}

// New returns a Prober reading through fsys. git may be nil.
func New(fsys domain.FileSystem, git domain.GitInfo) *Prober {
	return &Prober{fs: fsys, git: git}
}

// Probe inspects rootPath. A declared platform wins over detection.
func (p *Prober) Probe(rootPath string, declared domain.AppPlatform) (*domain.ProjectScan, error) {
	absPath, err := filepath.Abs(rootPath)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", rootPath, err)
	}
	if !p.fs.IsDir(absPath) {
		return nil, fmt.Errorf("project path %s is not a directory", absPath)
	}

	scan := &domain.ProjectScan{
		RootPath: absPath,
		Notes:    []string{},
		Platforms: domain.Platforms{
			Android: p.fs.IsDir(filepath.Join(absPath, "android")),
			IOS:     p.fs.IsDir(filepath.Join(absPath, "ios")),
		},
	}

	if err := p.probeReactNative(scan); err != nil {
		return nil, err
	}
	if err := p.probeFlutter(scan); err != nil {
		return nil, err
	}
	if scan.AppPlatform == "" && p.hasGradleProject(absPath) {
		scan.AppPlatform = domain.PlatformAndroid
		scan.Platforms.Android = true
	}
	if declared != "" {
		if scan.AppPlatform != "" && scan.AppPlatform != declared {
			scan.Notes = append(scan.Notes, fmt.Sprintf("Detected %s but %s was requested.", scan.AppPlatform, declared))
		}
		scan.AppPlatform = declared
	}

	androidRoot := absPath
	if scan.AppPlatform != domain.PlatformAndroid {
		androidRoot = filepath.Join(absPath, "android")
	}
	if err := p.probeAndroid(scan, androidRoot); err != nil {
		return nil, err
	}

	switch {
	case scan.AppPlatform == "":
		scan.Notes = append(scan.Notes, "No React Native, Flutter or Android project was recognized.")
	case !scan.HasAndroidApp():
		scan.Notes = append(scan.Notes, "No Android app module with an AndroidManifest.xml was found.")
	}

	if p.git != nil && p.git.IsGitRepo(absPath) {
		if dirty, err := p.git.IsDirty(absPath); err == nil && dirty {
			scan.GitDirty = true
			scan.Notes = append(scan.Notes, "The working tree has uncommitted changes.")
		}
	}
	return scan, nil
}

func (p *Prober) probeReactNative(scan *domain.ProjectScan) error {
	path := filepath.Join(scan.RootPath, "package.json")
	src, ok, err := p.read(path)
	if err != nil || !ok {
		return err
	}
	scan.ReactNative.PackageJSONPath = path
	version, err := jsonparser.GetString([]byte(src), "dependencies", "react-native")
	if err != nil {
		return nil
	}
	scan.AppPlatform = domain.PlatformReactNative
	scan.ReactNativeVersion = version
	scan.Notes = append(scan.Notes, "React Native "+version)
	for _, e := range rnEntries {
		if candidate := filepath.Join(scan.RootPath, e); p.fs.Exists(candidate) {
			scan.ReactNative.EntryPath = candidate
			break
		}
	}
	return nil
}

type pubspecHead struct {
	Name         string         `yaml:"name"`
	Dependencies map[string]any `yaml:"dependencies"`
}

func (p *Prober) probeFlutter(scan *domain.ProjectScan) error {
	path := filepath.Join(scan.RootPath, "pubspec.yaml")
	src, ok, err := p.read(path)
	if err != nil || !ok {
		return err
	}
	scan.Flutter.PubspecPath = path
	if entry := filepath.Join(scan.RootPath, "lib", "main.dart"); p.fs.Exists(entry) {
		scan.Flutter.EntryPath = entry
	}
	var head pubspecHead
	if err := yaml.Unmarshal([]byte(src), &head); err != nil {
		scan.Notes = append(scan.Notes, "pubspec.yaml could not be parsed.")
		return nil
	}
	if _, ok := head.Dependencies["flutter"]; ok && scan.AppPlatform == "" {
		scan.AppPlatform = domain.PlatformFlutter
		scan.Notes = append(scan.Notes, "Flutter app "+head.Name)
	}
	return nil
}

func (p *Prober) hasGradleProject(root string) bool {
	for _, name := range []string{"settings.gradle", "settings.gradle.kts"} {
		if p.fs.Exists(filepath.Join(root, name)) {
			return true
		}
	}
	return p.fs.IsDir(filepath.Join(root, "app", "src", "main"))
}

// probeAndroid fills the Android layout under root. Only files that exist
// are recorded.
func (p *Prober) probeAndroid(scan *domain.ProjectScan, root string) error {
	if !p.fs.IsDir(root) {
		return nil
	}
	l := &scan.Android
	l.Root = root
	l.SettingsFile = p.firstExisting(root, "settings.gradle.kts", "settings.gradle")
	l.RootBuildFile = p.firstExisting(root, "build.gradle.kts", "build.gradle")
	l.GradleProperties = p.firstExisting(root, "gradle.properties")

	appDir := filepath.Join(root, "app")
	if !p.fs.IsDir(appDir) {
		return nil
	}
	l.AppDir = appDir
	l.AppBuildFile = p.firstExisting(appDir, "build.gradle.kts", "build.gradle")
	l.ManifestPath = p.firstExisting(appDir, filepath.Join("src", "main", "AndroidManifest.xml"))

	l.DSL = domain.DSLGroovy
	if filepath.Ext(l.AppBuildFile) == ".kts" || (l.AppBuildFile == "" && filepath.Ext(l.RootBuildFile) == ".kts") {
		l.DSL = domain.DSLKotlin
	}

	build, _, err := p.read(l.AppBuildFile)
	if err != nil {
		return err
	}
	if m := namespaceRex.FindStringSubmatch(build); m != nil {
		l.PackageName = m[1]
	}
	if l.PackageName == "" {
		manifest, _, err := p.read(l.ManifestPath)
		if err != nil {
			return err
		}
		l.PackageName = mutate.ManifestPackage(manifest)
	}
	return nil
}

func (p *Prober) firstExisting(dir string, names ...string) string {
	for _, n := range names {
		if path := filepath.Join(dir, n); p.fs.Exists(path) {
			return path
		}
	}
	return ""
}

func (p *Prober) read(path string) (string, bool, error) {
	if path == "" || !p.fs.Exists(path) {
		return "", false, nil
	}
	src, err := p.fs.ReadFile(path)
	if err != nil {
		return "", false, fmt.Errorf("reading %s: %w", path, err)
	}
	return src, true, nil
}
