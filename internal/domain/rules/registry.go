package rules

import "github.com/openkraft/sdkweave/internal/domain"

func androidModules() []*Module {
	return []*Module{
		newModule(domain.PartBase, domain.PlatformAndroid,
			gradleProperties,
			mavenRepository,
			appDependency,
			baseMetaData,
			backupRules,
			deepLink,
			applicationInit(nativeInit),
		),
		newModule(domain.PartPush, domain.PlatformAndroid,
			gradleProperties,
			appDependency,
			notificationPermission,
			applicationInit(pushTokenFetch),
			fcmService,
		),
		newModule(domain.PartPx, domain.PlatformAndroid,
			gradleProperties,
			appDependency,
			pxMetaData,
			pxPairingFilter,
			launcherPairing,
			pxTags,
		),
	}
}

// Modules returns every rule module, grouped by platform and ordered by
// part within each platform.
func Modules() []*Module {
	var all []*Module
	all = append(all, reactNativeModules()...)
	all = append(all, flutterModules()...)
	all = append(all, androidModules()...)
	return all
}

// Registry looks up rule modules by part and platform.
type Registry struct {
	modules map[domain.AppPlatform]map[domain.Part]domain.RuleModule
}

// NewRegistry indexes modules. A later module replaces an earlier one for
// the same part and platform.
func NewRegistry(modules ...domain.RuleModule) *Registry {
	reg := &Registry{modules: make(map[domain.AppPlatform]map[domain.Part]domain.RuleModule)}
	for _, m := range modules {
		byPart, ok := reg.modules[m.Platform()]
		if !ok {
			byPart = make(map[domain.Part]domain.RuleModule)
			reg.modules[m.Platform()] = byPart
		}
		byPart[m.Part()] = m
	}
	return reg
}

// DefaultRegistry holds the built-in modules.
func DefaultRegistry() *Registry {
	all := Modules()
	mods := make([]domain.RuleModule, len(all))
	for i, m := range all {
		mods[i] = m
	}
	return NewRegistry(mods...)
}

// For returns the module for part on platform.
func (r *Registry) For(part domain.Part, platform domain.AppPlatform) (domain.RuleModule, bool) {
	m, ok := r.modules[platform][part]
	return m, ok
}
