package rules

import (
	"fmt"
	"path/filepath"

	"github.com/openkraft/sdkweave/internal/domain"
	"github.com/openkraft/sdkweave/internal/domain/mutate"
)

var rnPackages = map[domain.Part]string{
	domain.PartBase: "smartech-base-react-native",
	domain.PartPush: "smartech-push-react-native",
	domain.PartPx:   "smartech-nudges-react-native",
}

const rnFirebaseMessaging = "@react-native-firebase/messaging"

func (r *runner) rnVersion() string {
	in := r.inputs()
	switch r.part {
	case domain.PartPush:
		return in.Push.ReactNativeVersion
	case domain.PartPx:
		return in.Px.ReactNativeVersion
	}
	return in.Base.ReactNativeVersion
}

func (r *runner) packageJSONPath() string {
	if r.ctx.Scan != nil && r.ctx.Scan.ReactNative.PackageJSONPath != "" {
		return r.ctx.Scan.ReactNative.PackageJSONPath
	}
	return filepath.Join(r.ctx.RootPath, "package.json")
}

func packageJSON(r *runner) error {
	name, version := rnPackages[r.part], r.rnVersion()
	return r.apply(edit{
		ID:      "rn-package-json-smartech" + partSuffix(r.part),
		Title:   "Add " + name,
		Summary: fmt.Sprintf("Depend on %s@%s.", name, version),
		Path:    r.packageJSONPath(),
		Snippet: fmt.Sprintf(`"%s": "%s"`, name, version),
		Mutate: func(s string) (string, error) {
			return mutate.EnsurePackageDependency(s, "dependencies", name, version)
		},
		Update: func(s string) bool {
			v, ok, err := mutate.PackageDependency(s, "dependencies", name)
			return err == nil && ok && v != version
		},
	})
}

// firebaseMessaging points at the Firebase messaging module the push
// bridge relies on. It is installed, not edited, so only an advisory is
// ever produced.
func firebaseMessaging(r *runner) error {
	path := r.packageJSONPath()
	src, ok, err := r.read(path)
	if err != nil || !ok {
		return err
	}
	if _, found, err := mutate.PackageDependency(src, "dependencies", rnFirebaseMessaging); err != nil || found {
		return nil
	}
	r.advise("rn-firebase-messaging", "Install Firebase messaging",
		"The push bridge needs "+rnFirebaseMessaging+"; install it with your package manager.",
		path, "npm install @react-native-firebase/app "+rnFirebaseMessaging)
	return nil
}

// rnBehavior pairs an effect behavior with the imports it needs.
type rnBehavior struct {
	behavior mutate.EffectBehavior
	imports  []mutate.JSImport
}

var (
	importBaseReact = mutate.JSImport{Module: rnPackages[domain.PartBase], Default: "SmartechBaseReact"}
	importPushReact = mutate.JSImport{Module: rnPackages[domain.PartPush], Default: "SmartechPushReact"}
	importMessaging = mutate.JSImport{Module: rnFirebaseMessaging, Default: "messaging"}
	importUseEffect = mutate.JSImport{Module: "react", Named: []string{"useEffect"}}
)

func (r *runner) rnEntryPath() string {
	if p := r.inputs().Base.EntryFile; p != "" {
		return r.abs(p)
	}
	if r.ctx.Scan != nil {
		return r.ctx.Scan.ReactNative.EntryPath
	}
	return ""
}

// reactNativeEntry adds one useEffect to the App component holding every
// selected JS behavior. The base module owns it so the push behaviors land
// in the same block.
func reactNativeEntry(r *runner) error {
	in := r.inputs()
	var wanted []rnBehavior
	if domain.Enabled(in.Base.DeeplinkListener, true) {
		wanted = append(wanted, rnBehavior{rnDeeplinkBehavior, []mutate.JSImport{importBaseReact}})
	}
	if r.ctx.Selected(domain.PartPush) {
		if domain.Enabled(in.Push.RegisterToken, true) {
			wanted = append(wanted, rnBehavior{rnTokenBehavior, []mutate.JSImport{importPushReact, importMessaging}})
		}
		if domain.Enabled(in.Push.ForegroundHandler, true) {
			wanted = append(wanted, rnBehavior{rnForegroundBehavior, []mutate.JSImport{importPushReact, importMessaging}})
		}
	}
	if len(wanted) == 0 {
		return nil
	}
	behaviors := make([]mutate.EffectBehavior, len(wanted))
	for i, w := range wanted {
		behaviors[i] = w.behavior
	}

	const id, title = "rn-entry-effect", "Wire Smartech listeners in App"
	path := r.rnEntryPath()
	snippet := mutate.RenderEffect(behaviors, "  ")
	if path == "" {
		r.advise(id, title, "No App entry file was found; add this effect to your root component by hand.", r.ctx.RootPath, snippet)
		return nil
	}
	lang := mutate.LangForPath(path)
	return r.apply(edit{
		ID:      id,
		Title:   title,
		Summary: "Add a useEffect to the root component for deep links and push callbacks.",
		Path:    path,
		Snippet: snippet,
		Mutate: plain(func(s string) string {
			missing := mutate.MissingBehaviors(s, behaviors)
			if len(missing) == 0 {
				return s
			}
			out := mutate.EnsureEffectBlock(s, lang, behaviors)
			out = mutate.EnsureJSImport(out, importUseEffect)
			for _, w := range wanted {
				for _, imp := range w.imports {
					out = mutate.EnsureJSImport(out, imp)
				}
			}
			return out
		}),
	})
}

func reactNativeModules() []*Module {
	return []*Module{
		newModule(domain.PartBase, domain.PlatformReactNative,
			packageJSON,
			gradleProperties,
			mavenRepository,
			baseMetaData,
			backupRules,
			deepLink,
			applicationInit(reactNativeInit),
			reactNativeEntry,
		),
		newModule(domain.PartPush, domain.PlatformReactNative,
			packageJSON,
			firebaseMessaging,
			gradleProperties,
			notificationPermission,
			applicationInit(pushTokenFetch),
			fcmService,
		),
		newModule(domain.PartPx, domain.PlatformReactNative,
			packageJSON,
			gradleProperties,
			pxMetaData,
			pxPairingFilter,
			launcherPairing,
			pxTags,
		),
	}
}
