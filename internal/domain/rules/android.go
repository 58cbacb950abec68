package rules

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/openkraft/sdkweave/internal/domain"
	"github.com/openkraft/sdkweave/internal/domain/mutate"
)

var sdkPropertyKeys = map[domain.Part]string{
	domain.PartBase: "SMARTECH_BASE_SDK_VERSION",
	domain.PartPush: "SMARTECH_PUSH_SDK_VERSION",
	domain.PartPx:   "SMARTECH_PX_SDK_VERSION",
}

var sdkArtifacts = map[domain.Part]string{
	domain.PartBase: "smartech-sdk",
	domain.PartPush: "smartech-push",
	domain.PartPx:   "smartech-nudges",
}

// Application values that stand for "no custom class" and may be replaced
// by a generated one.
var defaultApplicationNames = map[string]bool{
	"${applicationName}":                true,
	"android.app.Application":           true,
	"io.flutter.app.FlutterApplication": true,
}

func (r *runner) sdkVersion() string {
	in := r.inputs()
	switch r.part {
	case domain.PartPush:
		return in.Push.SDKVersion
	case domain.PartPx:
		return in.Px.SDKVersion
	}
	return in.Base.SDKVersion
}

func gradleProperties(r *runner) error {
	l := r.layout()
	key, version := sdkPropertyKeys[r.part], r.sdkVersion()
	return r.apply(edit{
		ID:      "android-gradle-properties-smartech" + partSuffix(r.part),
		Title:   "Set " + key,
		Summary: fmt.Sprintf("Pin the %s SDK version to %s in gradle.properties.", r.part, version),
		Path:    l.GradleProperties,
		Create:  r.ctx.FS.IsDir(l.Root),
		Snippet: key + "=" + version,
		Mutate: plain(func(s string) string {
			return mutate.EnsureProperty(s, key, version)
		}),
		Update: func(s string) bool {
			v, ok := mutate.PropertyValue(s, key)
			return ok && v != version
		},
	})
}

func mavenRepository(r *runner) error {
	l := r.layout()
	settings, ok, err := r.read(l.SettingsFile)
	if err != nil {
		return err
	}
	path, scope := l.RootBuildFile, []string{"allprojects", "repositories"}
	if ok && strings.Contains(settings, "dependencyResolutionManagement") {
		path, scope = l.SettingsFile, []string{"dependencyResolutionManagement", "repositories"}
	}
	lang := mutate.LangForPath(path)
	return r.apply(edit{
		ID:      "android-maven-repository-smartech",
		Title:   "Add the Netcore Maven repository",
		Summary: "Resolve Smartech artifacts from " + netcoreMavenURL + ".",
		Path:    path,
		Snippet: mutate.RenderMavenRepository(lang, netcoreMavenURL),
		Mutate: plain(func(s string) string {
			return mutate.EnsureMavenRepository(s, lang, netcoreMavenURL, scope...)
		}),
		Done: func(s string) bool { return mutate.HasMavenRepository(s, netcoreMavenURL) },
	})
}

func appDependency(r *runner) error {
	l := r.layout()
	lang := mutate.LangForPath(l.AppBuildFile)
	d := mutate.GradleDependency{
		Configuration: "implementation",
		Group:         netcoreGroup,
		Artifact:      sdkArtifacts[r.part],
		Version:       r.sdkVersion(),
	}
	return r.apply(edit{
		ID:      "android-app-dependency-smartech" + partSuffix(r.part),
		Title:   "Add " + d.Group + ":" + d.Artifact,
		Summary: "Declare " + d.Coordinate() + " in the app module.",
		Path:    l.AppBuildFile,
		Snippet: d.Render(lang),
		Mutate: plain(func(s string) string {
			return mutate.EnsureGradleDependency(s, lang, d)
		}),
		Done: func(s string) bool { return mutate.GradleDependencySatisfied(s, lang, d) },
		Update: func(s string) bool {
			_, ok := mutate.GradleDependencyVersion(s, lang, d)
			return ok && !mutate.GradleDependencySatisfied(s, lang, d)
		},
	})
}

func (r *runner) metaData(id, name, value, placeholder string) error {
	l := r.layout()
	title := "Declare " + name
	snippet := mutate.RenderMetaData(name, value)
	if value == "" {
		snippet = metaDataSnippet(name, placeholder)
		r.advise(id, title, fmt.Sprintf("No value was provided for %s; add it by hand.", name), l.ManifestPath, snippet)
		return nil
	}
	return r.apply(edit{
		ID:      id,
		Title:   title,
		Summary: fmt.Sprintf("Set the %s meta-data in the <application> element.", name),
		Path:    l.ManifestPath,
		Snippet: snippet,
		Mutate: plain(func(s string) string {
			return mutate.EnsureMetaData(s, name, value)
		}),
		Done: func(s string) bool {
			v, ok := mutate.MetaDataValue(s, name)
			return ok && v == value
		},
		Update: func(s string) bool {
			v, ok := mutate.MetaDataValue(s, name)
			return ok && v != value
		},
	})
}

func flagValue(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

func baseMetaData(r *runner) error {
	in := r.inputs().Base
	if err := r.metaData("android-manifest-smt-app-id", metaAppID, in.AppID, placeholderAppID); err != nil {
		return err
	}
	if in.AutoFetchLocation != nil {
		if err := r.metaData("android-manifest-smt-auto-location", metaAutoLocation, flagValue(*in.AutoFetchLocation), ""); err != nil {
			return err
		}
	}
	if in.UseAdID != nil {
		return r.metaData("android-manifest-smt-use-ad-id", metaUseAdID, flagValue(*in.UseAdID), "")
	}
	return nil
}

func pxMetaData(r *runner) error {
	in := r.inputs().Px
	if err := r.metaData("android-manifest-hansel-app-id", metaHanselAppID, in.HanselAppID, "<HANSEL_APP_ID>"); err != nil {
		return err
	}
	return r.metaData("android-manifest-hansel-app-key", metaHanselAppKey, in.HanselAppKey, "<HANSEL_APP_KEY>")
}

type backupFile struct {
	id     string
	attr   string
	name   string
	ensure func(string, ...mutate.BackupExclude) string
}

var backupFiles = []backupFile{
	{"android-backup-rules-file", "android:fullBackupContent", backupRulesName, mutate.EnsureFullBackupExcludes},
	{"android-data-extraction-rules-file", "android:dataExtractionRules", extractionRulesName, mutate.EnsureDataExtractionExcludes},
}

// backupRules keeps the Smartech identity preferences out of backups. Rule
// files the manifest already references are augmented; otherwise the
// Smartech files are created and referenced.
func backupRules(r *runner) error {
	if !domain.Enabled(r.inputs().Base.BackupRules, true) {
		return nil
	}
	l := r.layout()
	manifest, _, ok, err := r.manifest()
	if err != nil {
		return err
	}
	if !ok {
		r.advise("android-backup-rules", "Exclude Smartech preferences from backups",
			"AndroidManifest.xml is missing; apply by hand.", filepath.Dir(l.ManifestPath),
			mutate.EnsureFullBackupExcludes("", smartechExcludes...))
		return nil
	}

	var attrs [][2]string
	for _, f := range backupFiles {
		target := f.name
		cur, set := mutate.ApplicationAttribute(manifest, f.attr)
		switch {
		case !set:
			attrs = append(attrs, [2]string{f.attr, "@xml/" + f.name})
		case strings.HasPrefix(cur, "@xml/"):
			target = strings.TrimPrefix(cur, "@xml/")
		default:
			continue
		}
		ensure := f.ensure
		err := r.apply(edit{
			ID:      f.id,
			Title:   "Exclude Smartech preferences in " + target + ".xml",
			Summary: "Keep the Smartech device identity out of backups and transfers.",
			Path:    filepath.Join(l.ResDir(), "xml", target+".xml"),
			Create:  target == f.name,
			Snippet: ensure("", smartechExcludes...),
			Mutate: plain(func(s string) string {
				return ensure(s, smartechExcludes...)
			}),
		})
		if err != nil {
			return err
		}
	}
	if len(attrs) == 0 {
		return nil
	}

	var snippet []string
	for _, a := range attrs {
		snippet = append(snippet, fmt.Sprintf(`%s="%s"`, a[0], a[1]))
	}
	return r.apply(edit{
		ID:      "android-manifest-backup-attributes",
		Title:   "Reference the Smartech backup rules",
		Summary: "Point <application> at the Smartech backup rule files.",
		Path:    l.ManifestPath,
		Snippet: strings.Join(snippet, "\n"),
		Mutate: plain(func(s string) string {
			for _, a := range attrs {
				s = mutate.EnsureApplicationAttribute(s, a[0], a[1])
			}
			return s
		}),
		Done: func(s string) bool {
			for _, a := range attrs {
				if _, ok := mutate.ApplicationAttribute(s, a[0]); !ok {
					return false
				}
			}
			return true
		},
	})
}

func (r *runner) deepLinkFilter(id, title, scheme, host, placeholder string) error {
	l := r.layout()
	snippet := mutate.RenderDeepLinkFilter(scheme, host)
	if scheme == "" {
		snippet = deepLinkSnippet(placeholder, host)
		r.advise(id, title, "No scheme was provided; add the intent filter to the launcher activity by hand.", l.ManifestPath, snippet)
		return nil
	}
	return r.apply(edit{
		ID:      id,
		Title:   title,
		Summary: fmt.Sprintf("Route %s:// links to the launcher activity.", scheme),
		Path:    l.ManifestPath,
		Snippet: snippet,
		Mutate: plain(func(s string) string {
			return mutate.EnsureDeepLinkFilter(s, scheme, host)
		}),
		Done: func(s string) bool { return mutate.HasDeepLink(s, scheme, host) },
	})
}

func deepLink(r *runner) error {
	return r.deepLinkFilter("android-manifest-deeplink", "Handle the deep-link scheme",
		r.inputs().Base.DeeplinkScheme, "", placeholderScheme)
}

func pxPairingFilter(r *runner) error {
	return r.deepLinkFilter("android-manifest-px-pairing", "Handle the test device pairing link",
		r.inputs().Px.Scheme, pxPairingHost, "<PX_SCHEME>")
}

// methodEdit is a set of statements to ensure in one method.
type methodEdit struct {
	method  mutate.Method
	stmts   []mutate.Statement
	imports []string
	// declImports are only needed by a synthesized declaration.
	declImports []string
}

func (me methodEdit) ensure(src string, lang mutate.Lang) string {
	out := mutate.EnsureMethodStatements(src, lang, me.method, me.stmts)
	if !mutate.HasStatements(out, lang, me.method, me.stmts) {
		return src
	}
	imports := me.imports
	if !mutate.HasMethod(src, lang, me.method.Name) {
		imports = append(imports[:len(imports):len(imports)], me.declImports...)
	}
	return mutate.EnsureImports(out, lang, imports...)
}

func (me methodEdit) done(src string, lang mutate.Lang) bool {
	return mutate.HasStatements(src, lang, me.method, me.stmts)
}

func (me methodEdit) snippet(lang mutate.Lang) string {
	return snippetFor(lang, me.method, me.imports, me.stmts)
}

// appCall is one Application.onCreate augmentation.
type appCall struct {
	id      string
	title   string
	summary string
	imports []string
	stmts   []stmt
	// create generates the Application class when none exists.
	create bool
}

func (a appCall) edit(lang mutate.Lang) methodEdit {
	return methodEdit{method: applicationOnCreate(lang), stmts: statements(lang, a.stmts...), imports: a.imports}
}

func applicationInit(a appCall) step {
	return func(r *runner) error {
		path, err := r.applicationClass()
		if err != nil {
			return err
		}
		if path == "" {
			return r.missingApplication(a)
		}
		lang := mutate.LangForPath(path)
		me := a.edit(lang)
		err = r.apply(edit{
			ID:      a.id,
			Title:   a.title,
			Summary: a.summary,
			Path:    path,
			Snippet: me.snippet(lang),
			Mutate:  plain(func(s string) string { return me.ensure(s, lang) }),
			Done:    func(s string) bool { return me.done(s, lang) },
		})
		if err != nil || !a.create {
			return err
		}
		return r.registerApplication(r.className(path))
	}
}

// className returns the fully qualified name of the class in path.
func (r *runner) className(path string) string {
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	src, ok, err := r.read(path)
	if err != nil || !ok {
		return name
	}
	if pkg := mutate.SourcePackage(src); pkg != "" {
		return pkg + "." + name
	}
	return name
}

// missingApplication handles an app without an Application class: either
// the class is generated and registered, or an advisory is emitted.
func (r *runner) missingApplication(a appCall) error {
	l := r.layout()
	lang, err := r.sourceLang()
	if err != nil {
		return err
	}
	path := r.abs(r.inputs().Base.ApplicationClassPath)
	if path != "" {
		lang = mutate.LangForPath(path)
	}
	me := a.edit(lang)
	snippet := me.snippet(lang)
	if !a.create {
		r.advise(a.id, a.title, "No Application class was found; add these lines to its onCreate by hand.", l.AppDir, snippet)
		return nil
	}

	manifest, pkg, ok, err := r.manifest()
	if err != nil {
		return err
	}
	if !ok || pkg == "" {
		r.advise(a.id, a.title, "The app package is unknown; create an Application class by hand.", l.AppDir, snippet)
		return nil
	}
	if name, set := mutate.ApplicationAttribute(manifest, "android:name"); set && !defaultApplicationNames[name] {
		r.advise(a.id, a.title, fmt.Sprintf("The manifest names %s but its source was not found; apply by hand.", name), l.AppDir, snippet)
		return nil
	}
	if path == "" {
		ext, srcDir := ".java", "java"
		if lang.IsKotlin() {
			ext = ".kt"
			if r.ctx.FS.IsDir(filepath.Join(l.AppDir, "src", "main", "kotlin")) {
				srcDir = "kotlin"
			}
		}
		path = filepath.Join(l.AppDir, "src", "main", srcDir, filepath.FromSlash(strings.ReplaceAll(pkg, ".", "/")), "MainApplication"+ext)
	}
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

	err = r.apply(edit{
		ID:      a.id,
		Title:   a.title,
		Summary: fmt.Sprintf("Create %s and %s", name, lowerFirst(a.summary)),
		Path:    path,
		Create:  true,
		Snippet: snippet,
		Mutate: plain(func(s string) string {
			if s == "" {
				s = applicationSkeleton(lang, pkg, name)
			}
			return me.ensure(s, lang)
		}),
	})
	if err != nil {
		return err
	}
	return r.registerApplication(pkg + "." + name)
}

// registerApplication names fqcn on <application> unless the manifest
// already names a custom class.
func (r *runner) registerApplication(fqcn string) error {
	manifest, _, ok, err := r.manifest()
	if err != nil || !ok {
		return err
	}
	if name, set := mutate.ApplicationAttribute(manifest, "android:name"); set && !defaultApplicationNames[name] {
		return nil
	}
	simple := fqcn[strings.LastIndexByte(fqcn, '.')+1:]
	return r.apply(edit{
		ID:      "android-manifest-application-name",
		Title:   "Register " + simple,
		Summary: "Set android:name on <application> to " + fqcn + ".",
		Path:    r.layout().ManifestPath,
		Snippet: fmt.Sprintf(`android:name="%s"`, fqcn),
		Mutate: plain(func(s string) string {
			return mutate.EnsureApplicationAttribute(s, "android:name", fqcn)
		}),
		Done: func(s string) bool {
			v, ok := mutate.ApplicationAttribute(s, "android:name")
			return ok && v == fqcn
		},
		Update: func(s string) bool {
			_, ok := mutate.ApplicationAttribute(s, "android:name")
			return ok
		},
	})
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}

var nativeInit = appCall{
	id:      "android-application-init",
	title:   "Initialize Smartech in Application.onCreate",
	summary: "Initialize the SDK, set the debug level and track installs in onCreate.",
	imports: []string{importSmartech, importWeakReference},
	stmts:   []stmt{stmtInitializeSDK, stmtDebugLevel, stmtTrackInstall},
	create:  true,
}

var reactNativeInit = appCall{
	id:      nativeInit.id,
	title:   nativeInit.title,
	summary: nativeInit.summary,
	imports: nativeInit.imports,
	stmts:   nativeInit.stmts,
}

var flutterInit = appCall{
	id:      nativeInit.id,
	title:   "Initialize Smartech and its Flutter plugin",
	summary: "Initialize the SDK and the Flutter base plugin in onCreate.",
	imports: []string{importSmartech, importWeakReference, importBasePlugin},
	stmts:   []stmt{stmtInitializeSDK, stmtDebugLevel, stmtTrackInstall, stmtFlutterBasePlugin},
	create:  true,
}

// The push calls assume the base import of WeakReference, which the base
// part always contributes to the same file.
var pushTokenFetch = appCall{
	id:      "android-application-push-token",
	title:   "Fetch the existing FCM token",
	summary: "Hand an already generated FCM token to Smartech in onCreate.",
	imports: []string{importSmartechPush},
	stmts:   []stmt{stmtFetchToken},
}

var flutterPushInit = appCall{
	id:      "android-application-push-plugin",
	title:   "Initialize the Smartech push plugin",
	summary: "Initialize the Flutter push plugin in onCreate.",
	imports: []string{importPushPlugin},
	stmts:   []stmt{stmtFlutterPushPlugin},
}

func notificationPermission(r *runner) error {
	if !domain.Enabled(r.inputs().Push.NotificationPermission, true) {
		return nil
	}
	return r.apply(edit{
		ID:      "android-manifest-post-notifications",
		Title:   "Request the notification permission",
		Summary: "Declare POST_NOTIFICATIONS, required on Android 13 and later.",
		Path:    r.layout().ManifestPath,
		Snippet: fmt.Sprintf(`<uses-permission android:name="%s" />`, postNotification),
		Mutate: plain(func(s string) string {
			return mutate.EnsureUsesPermission(s, postNotification)
		}),
		Done: func(s string) bool { return strings.Contains(s, postNotification) },
	})
}

// fcmService forwards tokens and messages from the app's
// FirebaseMessagingService. Apps without one are left alone.
func fcmService(r *runner) error {
	path, err := r.messagingService()
	if err != nil || path == "" {
		return err
	}
	in := r.inputs().Push
	lang := mutate.LangForPath(path)
	var edits []methodEdit
	if domain.Enabled(in.RegisterToken, true) {
		me := methodEdit{method: onNewToken(lang), stmts: statements(lang, stmtSetPushToken), imports: []string{importSmartechPush, importWeakReference}}
		if !lang.IsKotlin() {
			me.declImports = []string{importNonNull}
		}
		edits = append(edits, me)
	}
	if domain.Enabled(in.ForegroundHandler, true) {
		me := methodEdit{method: onMessageReceived(lang), stmts: statements(lang, stmtHandlePush), imports: []string{importSmartechPush, importWeakReference}}
		me.declImports = []string{importRemoteMessage}
		if !lang.IsKotlin() {
			me.declImports = append(me.declImports, importNonNull)
		}
		edits = append(edits, me)
	}
	if len(edits) == 0 {
		return nil
	}

	var snippet []string
	for _, me := range edits {
		snippet = append(snippet, me.snippet(lang))
	}
	err = r.apply(edit{
		ID:      "android-fcm-service",
		Title:   "Forward FCM tokens and messages to Smartech",
		Summary: "Pass new tokens and incoming messages from " + filepath.Base(path) + " to Smartech.",
		Path:    path,
		Snippet: strings.Join(snippet, "\n"),
		Mutate: plain(func(s string) string {
			for _, me := range edits {
				s = me.ensure(s, lang)
			}
			return s
		}),
		Done: func(s string) bool {
			for _, me := range edits {
				if !me.done(s, lang) {
					return false
				}
			}
			return true
		},
	})
	if err != nil {
		return err
	}
	return r.registerService(path)
}

// registerService declares the service in the manifest when it was found
// by its superclass only.
func (r *runner) registerService(path string) error {
	name := r.className(path)
	_, manifestPkg, _, err := r.manifest()
	if err != nil {
		return err
	}
	return r.apply(edit{
		ID:      "android-manifest-fcm-service",
		Title:   "Register the messaging service",
		Summary: "Declare " + name + " with the MESSAGING_EVENT action.",
		Path:    r.layout().ManifestPath,
		Snippet: fmt.Sprintf(`<service android:name="%s" android:exported="false">`, name),
		Mutate: plain(func(s string) string {
			return mutate.EnsureService(s, manifestPkg, name, mutate.MessagingEventAction)
		}),
		Done: func(s string) bool { return mutate.HasService(s, manifestPkg, name) },
	})
}

// launcherPairing lets the PX SDK pair a test device from the launch intent.
func launcherPairing(r *runner) error {
	path, err := r.launcherActivity()
	if err != nil {
		return err
	}
	lang := mutate.LangForPath(path)
	if path == "" {
		lang, err = r.sourceLang()
		if err != nil {
			return err
		}
	}
	me := methodEdit{
		method:      activityOnCreate(lang),
		stmts:       statements(lang, stmtPairTestDevice),
		imports:     []string{importHansel},
		declImports: []string{importBundle},
	}
	const id, title = "android-launcher-px-pairing", "Pair test devices from the launcher activity"
	if path == "" {
		r.advise(id, title, "No launcher activity was found; add this call to its onCreate by hand.", r.layout().AppDir, me.snippet(lang))
		return nil
	}
	return r.apply(edit{
		ID:      id,
		Title:   title,
		Summary: "Call Hansel.pairTestDevice with the launch intent's data.",
		Path:    path,
		Snippet: me.snippet(lang),
		Mutate:  plain(func(s string) string { return me.ensure(s, lang) }),
		Done:    func(s string) bool { return me.done(s, lang) },
	})
}

func pxTags(r *runner) error {
	l := r.layout()
	return r.apply(edit{
		ID:      "android-px-tags",
		Title:   "Declare the PX view tags",
		Summary: "Add the tag ids used to exclude views from nudges.",
		Path:    filepath.Join(l.ResDir(), "values", pxTagsFile),
		Create:  r.ctx.FS.IsDir(l.AppDir),
		Snippet: mutate.EnsureResourceItems("", pxTagItems...),
		Mutate: plain(func(s string) string {
			return mutate.EnsureResourceItems(s, pxTagItems...)
		}),
	})
}
