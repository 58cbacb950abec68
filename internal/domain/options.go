package domain

import (
	"fmt"
	"sort"

	"dario.cat/mergo"
	"github.com/spf13/cast"
)

// Default SDK versions used when a request leaves the field empty.
const (
	DefaultBaseSDKVersion = "3.7.6"
	DefaultPushSDKVersion = "3.5.13"
	DefaultPxSDKVersion   = "10.2.12"

	DefaultFlutterBaseVersion = "^3.5.0"
	DefaultFlutterPushVersion = "^3.5.0"
	DefaultFlutterPxVersion   = "^3.2.0"

	DefaultRNBaseVersion = "^3.7.0"
	DefaultRNPushVersion = "^3.6.0"
	DefaultRNPxVersion   = "^3.3.0"
)

// BaseInputs configures the base SDK part.
type BaseInputs struct {
	AppID                string `json:"smartechAppId,omitempty" yaml:"app_id,omitempty" jsonschema:"description=Smartech app id written to SMT_APP_ID"`
	DeeplinkScheme       string `json:"deeplinkScheme,omitempty" yaml:"deeplink_scheme,omitempty" jsonschema:"description=URL scheme routed to the launcher activity"`
	SDKVersion           string `json:"baseSdkVersion,omitempty" yaml:"sdk_version,omitempty"`
	FlutterVersion       string `json:"flutterBaseVersion,omitempty" yaml:"flutter_version,omitempty"`
	ReactNativeVersion   string `json:"rnBaseVersion,omitempty" yaml:"react_native_version,omitempty"`
	AutoFetchLocation    *bool  `json:"autoFetchLocation,omitempty" yaml:"auto_fetch_location,omitempty"`
	UseAdID              *bool  `json:"useAdId,omitempty" yaml:"use_ad_id,omitempty"`
	BackupRules          *bool  `json:"backupRules,omitempty" yaml:"backup_rules,omitempty"`
	DeeplinkListener     *bool  `json:"deeplinkListener,omitempty" yaml:"deeplink_listener,omitempty"`
	ApplicationClassPath string `json:"applicationClassPath,omitempty" yaml:"application_class_path,omitempty"`
	LauncherActivityPath string `json:"launcherActivityPath,omitempty" yaml:"launcher_activity_path,omitempty"`
	EntryFile            string `json:"entryFile,omitempty" yaml:"entry_file,omitempty"`
}

// PushInputs configures the push notification part.
type PushInputs struct {
	SDKVersion             string `json:"pushSdkVersion,omitempty" yaml:"sdk_version,omitempty"`
	FlutterVersion         string `json:"flutterPushVersion,omitempty" yaml:"flutter_version,omitempty"`
	ReactNativeVersion     string `json:"rnPushVersion,omitempty" yaml:"react_native_version,omitempty"`
	FirebaseServicePath    string `json:"firebaseServicePath,omitempty" yaml:"firebase_service_path,omitempty"`
	RegisterToken          *bool  `json:"registerToken,omitempty" yaml:"register_token,omitempty"`
	ForegroundHandler      *bool  `json:"foregroundHandler,omitempty" yaml:"foreground_handler,omitempty"`
	NotificationPermission *bool  `json:"notificationPermission,omitempty" yaml:"notification_permission,omitempty"`
}

// PxInputs configures the product experience (Hansel) part.
type PxInputs struct {
	SDKVersion         string `json:"pxSdkVersion,omitempty" yaml:"sdk_version,omitempty"`
	FlutterVersion     string `json:"flutterPxVersion,omitempty" yaml:"flutter_version,omitempty"`
	ReactNativeVersion string `json:"rnPxVersion,omitempty" yaml:"react_native_version,omitempty"`
	HanselAppID        string `json:"hanselAppId,omitempty" yaml:"hansel_app_id,omitempty"`
	HanselAppKey       string `json:"hanselAppKey,omitempty" yaml:"hansel_app_key,omitempty"`
	Scheme             string `json:"pxScheme,omitempty" yaml:"scheme,omitempty"`
}

// Inputs is the per-part configuration bag of a request.
type Inputs struct {
	Base BaseInputs `json:"base" yaml:"base,omitempty"`
	Push PushInputs `json:"push" yaml:"push,omitempty"`
	Px   PxInputs   `json:"px" yaml:"px,omitempty"`
}

// IntegrationOptions is a planning request.
type IntegrationOptions struct {
	RootPath    string      `json:"rootPath"`
	Parts       []Part      `json:"parts"`
	AppPlatform AppPlatform `json:"appPlatform,omitempty"`
	DryRun      bool        `json:"dryRun,omitempty"`
	Inputs      Inputs      `json:"inputs"`
}

// NormalizedParts returns the selected parts in planning order with base
// always included and duplicates dropped.
func (o IntegrationOptions) NormalizedParts() []Part {
	seen := map[Part]bool{PartBase: true}
	for _, p := range o.Parts {
		seen[p] = true
	}
	parts := make([]Part, 0, len(AllParts))
	for _, p := range AllParts {
		if seen[p] {
			parts = append(parts, p)
		}
	}
	return parts
}

// Enabled resolves an optional toggle against its default.
func Enabled(flag *bool, def bool) bool {
	if flag == nil {
		return def
	}
	return *flag
}

// Bool returns a pointer to b, for populating optional toggles.
func Bool(b bool) *bool { return &b }

// WithDefaults fills empty version fields with the documented defaults.
func (in Inputs) WithDefaults() Inputs {
	out := in
	setDefault(&out.Base.SDKVersion, DefaultBaseSDKVersion)
	setDefault(&out.Base.FlutterVersion, DefaultFlutterBaseVersion)
	setDefault(&out.Base.ReactNativeVersion, DefaultRNBaseVersion)
	setDefault(&out.Push.SDKVersion, DefaultPushSDKVersion)
	setDefault(&out.Push.FlutterVersion, DefaultFlutterPushVersion)
	setDefault(&out.Push.ReactNativeVersion, DefaultRNPushVersion)
	setDefault(&out.Px.SDKVersion, DefaultPxSDKVersion)
	setDefault(&out.Px.FlutterVersion, DefaultFlutterPxVersion)
	setDefault(&out.Px.ReactNativeVersion, DefaultRNPxVersion)
	return out
}

func setDefault(field *string, def string) {
	if *field == "" {
		*field = def
	}
}

// Overlay fills every empty field of in from fallback and returns the result.
// Values already set in in always win.
func (in Inputs) Overlay(fallback Inputs) (Inputs, error) {
	out := in
	if err := mergo.Merge(&out, fallback); err != nil {
		return Inputs{}, fmt.Errorf("merging inputs: %w", err)
	}
	return out, nil
}

// InputIssue is one missing or invalid input for a platform/part selection.
type InputIssue struct {
	Part    Part   `json:"part"`
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Validate lists inputs the rule modules expect for the given selection.
// The engine never calls it; transports use it to warn callers.
func (in Inputs) Validate(platform AppPlatform, parts []Part) []InputIssue {
	var issues []InputIssue
	for _, p := range parts {
		switch p {
		case PartBase:
			if in.Base.AppID == "" {
				issues = append(issues, InputIssue{Part: p, Field: "smartechAppId", Message: "app id is required"})
			}
			if in.Base.DeeplinkScheme == "" {
				issues = append(issues, InputIssue{Part: p, Field: "deeplinkScheme", Message: "deep-link scheme is required"})
			}
		case PartPx:
			if in.Px.HanselAppID == "" {
				issues = append(issues, InputIssue{Part: p, Field: "hanselAppId", Message: "partner app id is required"})
			}
			if in.Px.HanselAppKey == "" {
				issues = append(issues, InputIssue{Part: p, Field: "hanselAppKey", Message: "partner app key is required"})
			}
			if in.Px.Scheme == "" {
				issues = append(issues, InputIssue{Part: p, Field: "pxScheme", Message: "pairing scheme is required"})
			}
		}
	}
	if platform == PlatformAndroid && in.Base.ApplicationClassPath != "" && !isSourcePath(in.Base.ApplicationClassPath) {
		issues = append(issues, InputIssue{Part: PartBase, Field: "applicationClassPath", Message: "must point at a .java or .kt file"})
	}
	return issues
}

func isSourcePath(p string) bool {
	n := len(p)
	return (n > 5 && p[n-5:] == ".java") || (n > 3 && p[n-3:] == ".kt")
}

// flatKeys maps the flat request keys onto typed fields.
var flatKeys = map[string]func(in *Inputs, v any){
	"smartechAppId":          func(in *Inputs, v any) { in.Base.AppID = cast.ToString(v) },
	"deeplinkScheme":         func(in *Inputs, v any) { in.Base.DeeplinkScheme = cast.ToString(v) },
	"baseSdkVersion":         func(in *Inputs, v any) { in.Base.SDKVersion = cast.ToString(v) },
	"flutterBaseVersion":     func(in *Inputs, v any) { in.Base.FlutterVersion = cast.ToString(v) },
	"rnBaseVersion":          func(in *Inputs, v any) { in.Base.ReactNativeVersion = cast.ToString(v) },
	"autoFetchLocation":      func(in *Inputs, v any) { in.Base.AutoFetchLocation = Bool(cast.ToBool(v)) },
	"useAdId":                func(in *Inputs, v any) { in.Base.UseAdID = Bool(cast.ToBool(v)) },
	"backupRules":            func(in *Inputs, v any) { in.Base.BackupRules = Bool(cast.ToBool(v)) },
	"deeplinkListener":       func(in *Inputs, v any) { in.Base.DeeplinkListener = Bool(cast.ToBool(v)) },
	"applicationClassPath":   func(in *Inputs, v any) { in.Base.ApplicationClassPath = cast.ToString(v) },
	"launcherActivityPath":   func(in *Inputs, v any) { in.Base.LauncherActivityPath = cast.ToString(v) },
	"entryFile":              func(in *Inputs, v any) { in.Base.EntryFile = cast.ToString(v) },
	"pushSdkVersion":         func(in *Inputs, v any) { in.Push.SDKVersion = cast.ToString(v) },
	"flutterPushVersion":     func(in *Inputs, v any) { in.Push.FlutterVersion = cast.ToString(v) },
	"rnPushVersion":          func(in *Inputs, v any) { in.Push.ReactNativeVersion = cast.ToString(v) },
	"firebaseServicePath":    func(in *Inputs, v any) { in.Push.FirebaseServicePath = cast.ToString(v) },
	"registerToken":          func(in *Inputs, v any) { in.Push.RegisterToken = Bool(cast.ToBool(v)) },
	"foregroundHandler":      func(in *Inputs, v any) { in.Push.ForegroundHandler = Bool(cast.ToBool(v)) },
	"notificationPermission": func(in *Inputs, v any) { in.Push.NotificationPermission = Bool(cast.ToBool(v)) },
	"pxSdkVersion":           func(in *Inputs, v any) { in.Px.SDKVersion = cast.ToString(v) },
	"flutterPxVersion":       func(in *Inputs, v any) { in.Px.FlutterVersion = cast.ToString(v) },
	"rnPxVersion":            func(in *Inputs, v any) { in.Px.ReactNativeVersion = cast.ToString(v) },
	"hanselAppId":            func(in *Inputs, v any) { in.Px.HanselAppID = cast.ToString(v) },
	"hanselAppKey":           func(in *Inputs, v any) { in.Px.HanselAppKey = cast.ToString(v) },
	"pxScheme":               func(in *Inputs, v any) { in.Px.Scheme = cast.ToString(v) },
}

// FlatInputKeys lists the accepted keys of the flat input bag, sorted.
func FlatInputKeys() []string {
	keys := make([]string, 0, len(flatKeys))
	for k := range flatKeys {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// InputsFromMap decodes the flat input bag used by the HTTP and IPC
// transports. Unknown keys are rejected.
func InputsFromMap(m map[string]any) (Inputs, error) {
	var in Inputs
	for k, v := range m {
		set, ok := flatKeys[k]
		if !ok {
			return Inputs{}, &UnknownValueError{Kind: "input key", Value: k}
		}
		set(&in, v)
	}
	return in, nil
}
