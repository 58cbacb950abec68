package rules

import (
	"fmt"
	"strings"

	"github.com/openkraft/sdkweave/internal/domain/mutate"
)

const (
	netcoreMavenURL  = "https://artifacts.netcore.co.in/artifactory/android"
	netcoreGroup     = "com.netcore.android"
	postNotification = "android.permission.POST_NOTIFICATIONS"

	metaAppID        = "SMT_APP_ID"
	metaAutoLocation = "SMT_IS_AUTO_FETCHED_LOCATION"
	metaUseAdID      = "SMT_USE_AD_ID"
	metaHanselAppID  = "HANSEL_APP_ID"
	metaHanselAppKey = "HANSEL_APP_KEY"

	backupRulesName     = "smartech_backup_rules"
	extractionRulesName = "smartech_data_extraction_rules"
	pxTagsFile          = "smartech_px_tags.xml"
	pxPairingHost       = "pair"

	placeholderAppID  = "<SMARTECH_APP_ID>"
	placeholderScheme = "<DEEPLINK_SCHEME>"
)

var smartechExcludes = []mutate.BackupExclude{
	{Domain: "sharedpref", Path: "smt_guid_preferences.xml"},
	{Domain: "sharedpref", Path: "smt_preferences_guid.xml"},
}

var pxTagItems = []mutate.ResourceItem{
	{Type: "id", Name: "hansel_ignore_view"},
	{Type: "id", Name: "hansel_ignore_view_excluding_children"},
}

// code is a snippet in both Android source languages.
type code struct {
	Java   string
	Kotlin string
}

func (c code) in(lang mutate.Lang) string {
	if lang.IsKotlin() {
		return c.Kotlin
	}
	return c.Java
}

// stmt pairs a snippet with the marker proving it is present.
type stmt struct {
	code
	Marker string
}

func statements(lang mutate.Lang, list ...stmt) []mutate.Statement {
	out := make([]mutate.Statement, len(list))
	for i, s := range list {
		out[i] = mutate.Statement{Code: s.in(lang), Marker: s.Marker}
	}
	return out
}

var (
	stmtInitializeSDK = stmt{code{
		Java:   "Smartech.getInstance(new WeakReference<>(getApplicationContext())).initializeSdk(this)",
		Kotlin: "Smartech.getInstance(WeakReference(applicationContext)).initializeSdk(this)",
	}, ".initializeSdk("}
	stmtDebugLevel = stmt{code{
		Java:   "Smartech.getInstance(new WeakReference<>(getApplicationContext())).setDebugLevel(9)",
		Kotlin: "Smartech.getInstance(WeakReference(applicationContext)).setDebugLevel(9)",
	}, ".setDebugLevel("}
	stmtTrackInstall = stmt{code{
		Java:   "Smartech.getInstance(new WeakReference<>(getApplicationContext())).trackAppInstallUpdateBySmartech()",
		Kotlin: "Smartech.getInstance(WeakReference(applicationContext)).trackAppInstallUpdateBySmartech()",
	}, ".trackAppInstallUpdateBySmartech("}
	stmtFetchToken = stmt{code{
		Java:   "SmartechPush.getInstance(new WeakReference<>(getApplicationContext())).fetchAlreadyGeneratedTokenFromFCM()",
		Kotlin: "SmartechPush.getInstance(WeakReference(applicationContext)).fetchAlreadyGeneratedTokenFromFCM()",
	}, ".fetchAlreadyGeneratedTokenFromFCM("}
	stmtFlutterBasePlugin = stmt{code{
		Java:   "SmartechBasePlugin.Companion.initializePlugin(this)",
		Kotlin: "SmartechBasePlugin.initializePlugin(this)",
	}, "SmartechBasePlugin."}
	stmtFlutterPushPlugin = stmt{code{
		Java:   "SmartechPushPlugin.Companion.initializePlugin(this)",
		Kotlin: "SmartechPushPlugin.initializePlugin(this)",
	}, "SmartechPushPlugin."}
	stmtPairTestDevice = stmt{code{
		Java:   "Hansel.pairTestDevice(getIntent().getDataString())",
		Kotlin: "Hansel.pairTestDevice(intent?.dataString)",
	}, "Hansel.pairTestDevice("}
	stmtSetPushToken = stmt{code{
		Java:   "SmartechPush.getInstance(new WeakReference<>(getApplicationContext())).setDevicePushToken(" + mutate.ParamPlaceholder + ")",
		Kotlin: "SmartechPush.getInstance(WeakReference(applicationContext)).setDevicePushToken(" + mutate.ParamPlaceholder + ")",
	}, ".setDevicePushToken("}
	stmtHandlePush = stmt{code{
		Java:   "SmartechPush.getInstance(new WeakReference<>(getApplicationContext())).handlePushNotification(" + mutate.ParamPlaceholder + ".getData().toString())",
		Kotlin: "SmartechPush.getInstance(WeakReference(applicationContext)).handlePushNotification(" + mutate.ParamPlaceholder + ".data.toString())",
	}, ".handlePushNotification("}
)

const (
	importSmartech      = "com.netcore.android.Smartech"
	importSmartechPush  = "com.netcore.android.smartechpush.SmartechPush"
	importWeakReference = "java.lang.ref.WeakReference"
	importHansel        = "io.hansel.hanselsdk.Hansel"
	importBundle        = "android.os.Bundle"
	importBasePlugin    = "com.netcore.smartech_base.SmartechBasePlugin"
	importPushPlugin    = "com.netcore.smartech_push.SmartechPushPlugin"
	importRemoteMessage = "com.google.firebase.messaging.RemoteMessage"
	importNonNull       = "androidx.annotation.NonNull"
)

func applicationOnCreate(lang mutate.Lang) mutate.Method {
	if lang.IsKotlin() {
		return mutate.Method{Name: "onCreate", Declaration: "override fun onCreate() {", Super: "super.onCreate()"}
	}
	return mutate.Method{Name: "onCreate", Declaration: "@Override\npublic void onCreate() {", Super: "super.onCreate()"}
}

func activityOnCreate(lang mutate.Lang) mutate.Method {
	if lang.IsKotlin() {
		return mutate.Method{
			Name:        "onCreate",
			Declaration: "override fun onCreate(savedInstanceState: Bundle?) {",
			Super:       "super.onCreate(savedInstanceState)",
			Param:       "savedInstanceState",
		}
	}
	return mutate.Method{
		Name:        "onCreate",
		Declaration: "@Override\nprotected void onCreate(Bundle savedInstanceState) {",
		Super:       "super.onCreate(savedInstanceState)",
		Param:       "savedInstanceState",
	}
}

func onNewToken(lang mutate.Lang) mutate.Method {
	if lang.IsKotlin() {
		return mutate.Method{Name: "onNewToken", Declaration: "override fun onNewToken(token: String) {", Super: "super.onNewToken(token)", Param: "token"}
	}
	return mutate.Method{Name: "onNewToken", Declaration: "@Override\npublic void onNewToken(@NonNull String token) {", Super: "super.onNewToken(token)", Param: "token"}
}

func onMessageReceived(lang mutate.Lang) mutate.Method {
	if lang.IsKotlin() {
		return mutate.Method{
			Name:        "onMessageReceived",
			Declaration: "override fun onMessageReceived(remoteMessage: RemoteMessage) {",
			Super:       "super.onMessageReceived(remoteMessage)",
			Param:       "remoteMessage",
		}
	}
	return mutate.Method{
		Name:        "onMessageReceived",
		Declaration: "@Override\npublic void onMessageReceived(@NonNull RemoteMessage remoteMessage) {",
		Super:       "super.onMessageReceived(remoteMessage)",
		Param:       "remoteMessage",
	}
}

// applicationSkeleton is the body of a newly created Application class;
// the onCreate override is added by the same mutator used for existing
// classes.
func applicationSkeleton(lang mutate.Lang, pkg, name string) string {
	if lang.IsKotlin() {
		return fmt.Sprintf("package %s\n\nimport android.app.Application\n\nclass %s : Application() {\n}\n", pkg, name)
	}
	return fmt.Sprintf("package %s;\n\nimport android.app.Application;\n\npublic class %s extends Application {\n}\n", pkg, name)
}

// snippetFor renders statements the way they would appear in a method,
// for advisories.
func snippetFor(lang mutate.Lang, m mutate.Method, imports []string, list []mutate.Statement) string {
	var b strings.Builder
	for _, imp := range imports {
		b.WriteString(lang.ImportLine(imp) + "\n")
	}
	if len(imports) > 0 {
		b.WriteString("\n")
	}
	b.WriteString("// in " + m.Name + "()\n")
	for _, s := range list {
		b.WriteString(lang.Statement(strings.ReplaceAll(s.Code, mutate.ParamPlaceholder, m.Param)) + "\n")
	}
	return b.String()
}

// metaDataSnippet shows a placeholder value verbatim.
func metaDataSnippet(name, value string) string {
	return fmt.Sprintf(`<meta-data android:name="%s" android:value="%s" />`, name, value)
}

// deepLinkSnippet shows a placeholder scheme verbatim.
func deepLinkSnippet(placeholder, host string) string {
	const token = "SCHEME"
	return strings.Replace(mutate.RenderDeepLinkFilter(token, host), `"`+token+`"`, `"`+placeholder+`"`, 1)
}

// React Native entry file behaviors.
var (
	rnDeeplinkBehavior = mutate.EffectBehavior{
		Marker: "SmartechBaseReact.SmartechDeeplink",
		Setup: `const deeplinkSubscription = SmartechBaseReact.addListener(SmartechBaseReact.SmartechDeeplink, (data) => {
  console.log('Smartech deeplink', data);
});`,
		Cleanup: "deeplinkSubscription?.remove();",
	}
	rnTokenBehavior = mutate.EffectBehavior{
		Marker: "SmartechPushReact.setDevicePushToken",
		Setup:  "messaging().getToken().then((token) => SmartechPushReact.setDevicePushToken(token));",
	}
	rnForegroundBehavior = mutate.EffectBehavior{
		Marker: "SmartechPushReact.handlePushNotification",
		Setup: `const unsubscribeMessages = messaging().onMessage(async (remoteMessage) => {
  SmartechPushReact.handlePushNotification(remoteMessage.data, () => {});
});`,
		Cleanup: "unsubscribeMessages();",
	}
)

// Flutter entry statements, placed before runApp.
var (
	dartDeeplink = mutate.Statement{
		Code:   "Smartech().onHandleDeeplink((String? smtDeeplinkSource, String? smtDeeplink, Map<dynamic, dynamic>? smtPayload, Map<dynamic, dynamic>? smtCustomPayload) async {})",
		Marker: "onHandleDeeplink(",
	}
	dartPushToken = mutate.Statement{
		Code:   "FirebaseMessaging.instance.getToken().then((token) { if (token != null) SmartechPush().setDevicePushToken(token); })",
		Marker: "setDevicePushToken(",
	}
	dartForeground = mutate.Statement{
		Code:   "FirebaseMessaging.onMessage.listen((message) { SmartechPush().handlePushNotification(message.data.toString()); })",
		Marker: "handlePushNotification(",
	}
	dartBinding = mutate.Statement{
		Code:   "WidgetsFlutterBinding.ensureInitialized()",
		Marker: "WidgetsFlutterBinding.ensureInitialized(",
	}
)

const (
	dartImportBase      = "package:smartech_base/smartech_base.dart"
	dartImportPush      = "package:smartech_push/smartech_push.dart"
	dartImportMessaging = "package:firebase_messaging/firebase_messaging.dart"
)

var dartMain = mutate.Method{Name: "main", Anchor: "runApp("}
