package rules

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/fatih/camelcase"

	"github.com/openkraft/sdkweave/internal/domain"
	"github.com/openkraft/sdkweave/internal/domain/mutate"
)

var sourceExts = []string{".java", ".kt"}

// classQuery describes how to find the source file of a class role such
// as the Application class or the launcher activity. Sources are tried in
// order: explicit path, manifest names, superclass heuristic, file name.
type classQuery struct {
	explicit      string
	manifestNames []string
	bases         []string
	// suffix is the last camel-case word of a matching file name; empty
	// disables the file name fallback.
	suffix string
}

var (
	applicationBases = []string{"Application", "MultiDexApplication", "FlutterApplication"}
	activityBases    = []string{"ReactActivity", "FlutterActivity", "FlutterFragmentActivity", "AppCompatActivity", "ComponentActivity", "FragmentActivity", "Activity"}
	messagingBases   = []string{"FirebaseMessagingService"}
)

// layout returns the Android layout with every missing path filled in with
// its conventional location, so advisories can name where a file belongs.
func (r *runner) layout() domain.AndroidLayout {
	l := r.android()
	if l.Root == "" {
		l.Root = r.ctx.RootPath
		if r.platform != domain.PlatformAndroid {
			l.Root = filepath.Join(r.ctx.RootPath, "android")
		}
	}
	if l.AppDir == "" {
		l.AppDir = filepath.Join(l.Root, "app")
	}
	if l.ManifestPath == "" {
		l.ManifestPath = filepath.Join(l.AppDir, "src", "main", "AndroidManifest.xml")
	}
	ext := ""
	if l.DSL == domain.DSLKotlin {
		ext = ".kts"
	}
	if l.AppBuildFile == "" {
		l.AppBuildFile = filepath.Join(l.AppDir, "build.gradle"+ext)
	}
	if l.RootBuildFile == "" {
		l.RootBuildFile = filepath.Join(l.Root, "build.gradle"+ext)
	}
	if l.GradleProperties == "" {
		l.GradleProperties = filepath.Join(l.Root, "gradle.properties")
	}
	return l
}

// manifest returns the manifest content and the package used to resolve
// relative class names.
func (r *runner) manifest() (string, string, bool, error) {
	l := r.layout()
	src, ok, err := r.read(l.ManifestPath)
	if err != nil || !ok {
		return "", "", ok, err
	}
	pkg := l.PackageName
	if pkg == "" {
		pkg = mutate.ManifestPackage(src)
	}
	return src, pkg, true, nil
}

// sourceFiles lists the Java and Kotlin files of the app module, sorted.
func (r *runner) sourceFiles() ([]string, error) {
	var files []string
	for _, root := range r.layout().SourceRoots() {
		if !r.ctx.FS.IsDir(root) {
			continue
		}
		found, err := r.ctx.FS.ListFiles(root, sourceExts...)
		if err != nil {
			return nil, err
		}
		files = append(files, found...)
	}
	sort.Strings(files)
	return files, nil
}

// locate returns the path of the class file q describes, or "".
func (r *runner) locate(q classQuery, pkg string) (string, error) {
	if q.explicit != "" {
		if p := r.abs(q.explicit); r.ctx.FS.Exists(p) {
			return p, nil
		}
	}
	files, err := r.sourceFiles()
	if err != nil {
		return "", err
	}
	for _, name := range q.manifestNames {
		if p := r.classFile(mutate.ResolveClassName(pkg, name), files); p != "" {
			return p, nil
		}
	}
	if len(q.bases) > 0 {
		for _, f := range files {
			src, ok, err := r.read(f)
			if err != nil {
				return "", err
			}
			if ok && mutate.ExtendsAny(src, mutate.LangForPath(f), q.bases...) {
				return f, nil
			}
		}
	}
	if q.suffix != "" {
		for _, f := range files {
			words := camelcase.Split(strings.TrimSuffix(filepath.Base(f), filepath.Ext(f)))
			if len(words) > 1 && words[len(words)-1] == q.suffix {
				return f, nil
			}
		}
	}
	return "", nil
}

// classFile maps a fully qualified class name onto one of files. The
// package directory is tried first, then any file declaring that package
// with a matching name, since Kotlin does not require the two to agree.
func (r *runner) classFile(fqcn string, files []string) string {
	if fqcn == "" {
		return ""
	}
	pkg, simple := "", fqcn
	if i := strings.LastIndexByte(fqcn, '.'); i >= 0 {
		pkg, simple = fqcn[:i], fqcn[i+1:]
	}
	rel := filepath.FromSlash(strings.ReplaceAll(fqcn, ".", "/"))
	for _, root := range r.layout().SourceRoots() {
		for _, ext := range sourceExts {
			if p := filepath.Join(root, rel+ext); r.ctx.FS.Exists(p) {
				return p
			}
		}
	}
	for _, f := range files {
		if strings.TrimSuffix(filepath.Base(f), filepath.Ext(f)) != simple {
			continue
		}
		if src, ok, err := r.read(f); err == nil && ok && mutate.SourcePackage(src) == pkg {
			return f
		}
	}
	return ""
}

// applicationClass finds the Application class of the app.
func (r *runner) applicationClass() (string, error) {
	manifest, pkg, _, err := r.manifest()
	if err != nil {
		return "", err
	}
	q := classQuery{explicit: r.inputs().Base.ApplicationClassPath, bases: applicationBases, suffix: "Application"}
	if name, ok := mutate.ApplicationAttribute(manifest, "android:name"); ok {
		q.manifestNames = []string{name}
	}
	return r.locate(q, pkg)
}

// launcherActivity finds the activity handling the launcher intent.
func (r *runner) launcherActivity() (string, error) {
	manifest, pkg, _, err := r.manifest()
	if err != nil {
		return "", err
	}
	q := classQuery{explicit: r.inputs().Base.LauncherActivityPath, bases: activityBases, suffix: "Activity"}
	if name, ok := mutate.LauncherActivity(manifest); ok {
		q.manifestNames = []string{name}
	}
	return r.locate(q, pkg)
}

// messagingService finds a FirebaseMessagingService subclass. There is no
// file name fallback: without a service the push wiring is skipped.
func (r *runner) messagingService() (string, error) {
	manifest, pkg, _, err := r.manifest()
	if err != nil {
		return "", err
	}
	q := classQuery{
		explicit:      r.inputs().Push.FirebaseServicePath,
		manifestNames: mutate.ServicesWithAction(manifest, mutate.MessagingEventAction),
		bases:         messagingBases,
	}
	return r.locate(q, pkg)
}

// sourceLang guesses the language of new source files: the launcher
// activity's language when it is known, else the build script's.
func (r *runner) sourceLang() (mutate.Lang, error) {
	activity, err := r.launcherActivity()
	if err != nil {
		return mutate.LangUnknown, err
	}
	if activity != "" {
		return mutate.LangForPath(activity), nil
	}
	if r.layout().DSL == domain.DSLKotlin {
		return mutate.LangKotlin, nil
	}
	return mutate.LangJava, nil
}
