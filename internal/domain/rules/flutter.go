package rules

import (
	"fmt"
	"path/filepath"

	"github.com/openkraft/sdkweave/internal/domain"
	"github.com/openkraft/sdkweave/internal/domain/mutate"
)

var flutterPackages = map[domain.Part]string{
	domain.PartBase: "smartech_base",
	domain.PartPush: "smartech_push",
	domain.PartPx:   "smartech_nudges",
}

func (r *runner) flutterVersion() string {
	in := r.inputs()
	switch r.part {
	case domain.PartPush:
		return in.Push.FlutterVersion
	case domain.PartPx:
		return in.Px.FlutterVersion
	}
	return in.Base.FlutterVersion
}

func pubspec(r *runner) error {
	path := filepath.Join(r.ctx.RootPath, "pubspec.yaml")
	if r.ctx.Scan != nil && r.ctx.Scan.Flutter.PubspecPath != "" {
		path = r.ctx.Scan.Flutter.PubspecPath
	}
	name, version := flutterPackages[r.part], r.flutterVersion()
	return r.apply(edit{
		ID:      "flutter-pubspec-smartech" + partSuffix(r.part),
		Title:   "Add " + name,
		Summary: fmt.Sprintf("Depend on %s %s.", name, version),
		Path:    path,
		Snippet: fmt.Sprintf("dependencies:\n  %s: %s", name, version),
		Mutate: func(s string) (string, error) {
			return mutate.EnsurePubspecDependency(s, name, version)
		},
		Update: func(s string) bool {
			v, ok, err := mutate.PubspecDependency(s, name)
			return err == nil && ok && v != "" && v != version
		},
	})
}

func (r *runner) dartEntryPath() string {
	if p := r.inputs().Base.EntryFile; p != "" {
		return r.abs(p)
	}
	if r.ctx.Scan != nil && r.ctx.Scan.Flutter.EntryPath != "" {
		return r.ctx.Scan.Flutter.EntryPath
	}
	return filepath.Join(r.ctx.RootPath, "lib", "main.dart")
}

// dartMainEdit places statements before runApp in main.
func dartMainEdit(id, title, summary string, imports []string, stmts ...mutate.Statement) step {
	return func(r *runner) error {
		if len(stmts) == 0 {
			return nil
		}
		me := methodEdit{method: dartMain, stmts: stmts, imports: imports}
		return r.apply(edit{
			ID:      id,
			Title:   title,
			Summary: summary,
			Path:    r.dartEntryPath(),
			Snippet: me.snippet(mutate.LangDart),
			Mutate:  plain(func(s string) string { return me.ensure(s, mutate.LangDart) }),
			Done:    func(s string) bool { return me.done(s, mutate.LangDart) },
		})
	}
}

func flutterMain(r *runner) error {
	var stmts []mutate.Statement
	stmts = append(stmts, dartBinding)
	if domain.Enabled(r.inputs().Base.DeeplinkListener, true) {
		stmts = append(stmts, dartDeeplink)
	}
	return dartMainEdit("flutter-main-dart", "Handle Smartech deep links in main",
		"Initialize the binding and register the deep-link handler before runApp.",
		[]string{dartImportBase}, stmts...)(r)
}

func flutterPushMain(r *runner) error {
	in := r.inputs().Push
	var stmts []mutate.Statement
	if domain.Enabled(in.RegisterToken, true) {
		stmts = append(stmts, dartPushToken)
	}
	if domain.Enabled(in.ForegroundHandler, true) {
		stmts = append(stmts, dartForeground)
	}
	return dartMainEdit("flutter-main-dart-push", "Forward FCM tokens and messages in main",
		"Pass the FCM token and foreground messages to Smartech before runApp.",
		[]string{dartImportPush, dartImportMessaging}, stmts...)(r)
}

func flutterModules() []*Module {
	return []*Module{
		newModule(domain.PartBase, domain.PlatformFlutter,
			pubspec,
			gradleProperties,
			mavenRepository,
			baseMetaData,
			backupRules,
			deepLink,
			applicationInit(flutterInit),
			flutterMain,
		),
		newModule(domain.PartPush, domain.PlatformFlutter,
			pubspec,
			gradleProperties,
			notificationPermission,
			applicationInit(flutterPushInit),
			applicationInit(pushTokenFetch),
			fcmService,
			flutterPushMain,
		),
		newModule(domain.PartPx, domain.PlatformFlutter,
			pubspec,
			gradleProperties,
			pxMetaData,
			pxPairingFilter,
			launcherPairing,
			pxTags,
		),
	}
}
