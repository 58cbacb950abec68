package mutate_test

import (
	"encoding/xml"
	"strings"
	"testing"

	"github.com/openkraft/sdkweave/internal/domain"
	"github.com/openkraft/sdkweave/internal/domain/mutate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// assertIdempotent checks that a second pass changes nothing.
func assertIdempotent(t *testing.T, f func(string) string, src string) string {
	t.Helper()
	once := f(src)
	assert.Equal(t, once, f(once), "second pass must not change the text")
	return once
}

// --- imports ---

const javaApp = `package com.example.app;

import android.app.Application;

public class MainApplication extends Application {
    @Override
    public void onCreate() {
        super.onCreate();
    }
}
`

func TestEnsureImport_AfterFirstImport(t *testing.T) {
	out := assertIdempotent(t, func(s string) string {
		return mutate.EnsureImport(s, mutate.LangJava, "com.netcore.android.Smartech")
	}, javaApp)

	assert.Contains(t, out, "import android.app.Application;\nimport com.netcore.android.Smartech;\n")
}

func TestEnsureImport_AfterPackageWhenNoImports(t *testing.T) {
	src := "package com.example\n\nclass A\n"
	out := mutate.EnsureImport(src, mutate.LangKotlin, "io.hansel.hanselsdk.Hansel")

	assert.Equal(t, "package com.example\n\nimport io.hansel.hanselsdk.Hansel\n\nclass A\n", out)
}

func TestEnsureImport_PrependsWithoutPackage(t *testing.T) {
	out := mutate.EnsureImport("void main() {}\n", mutate.LangDart, "package:smartech_base/smartech_base.dart")
	assert.Equal(t, "import 'package:smartech_base/smartech_base.dart';\nvoid main() {}\n", out)
}

func TestHasImport_WildcardCounts(t *testing.T) {
	src := "package a;\nimport com.netcore.android.*;\n"
	assert.True(t, mutate.HasImport(src, mutate.LangJava, "com.netcore.android.Smartech"))
	assert.False(t, mutate.HasImport(src, mutate.LangJava, "io.hansel.hanselsdk.Hansel"))
}

func TestEnsureJSImport_ExtendsReactImport(t *testing.T) {
	src := "import React from 'react';\nimport {View} from 'react-native';\n\nexport default function App() {}\n"
	out := assertIdempotent(t, func(s string) string {
		return mutate.EnsureJSImport(s, mutate.JSImport{Module: "react", Named: []string{"useEffect"}})
	}, src)

	assert.Contains(t, out, "import React, { useEffect } from 'react';\n")
	assert.Contains(t, out, "import {View} from 'react-native';\n")
}

func TestEnsureJSImport_AddsNewModuleAfterLastImport(t *testing.T) {
	src := "import React, {useState} from 'react';\nimport {View} from 'react-native';\n\nconst x = 1;\n"
	out := assertIdempotent(t, func(s string) string {
		return mutate.EnsureJSImport(s, mutate.JSImport{Module: "smartech-base-react-native", Default: "SmartechBaseReact"})
	}, src)

	assert.Equal(t,
		"import React, {useState} from 'react';\nimport {View} from 'react-native';\nimport SmartechBaseReact from 'smartech-base-react-native';\n\nconst x = 1;\n",
		out)
}

// --- gradle ---

const groovyApp = `plugins {
    id 'com.android.application'
}

android {
    namespace 'com.example.app'
}

dependencies {
    implementation 'androidx.core:core-ktx:1.12.0'
}
`

func TestEnsureGradleDependency_InsertsIntoTopLevelBlock(t *testing.T) {
	dep := mutate.GradleDependency{Group: "com.netcore.android", Artifact: "smartech-sdk", Version: "3.7.6"}
	out := assertIdempotent(t, func(s string) string {
		return mutate.EnsureGradleDependency(s, mutate.LangGroovy, dep)
	}, groovyApp)

	assert.Contains(t, out, "    implementation 'androidx.core:core-ktx:1.12.0'\n    implementation 'com.netcore.android:smartech-sdk:3.7.6'\n}\n")
}

func TestEnsureGradleDependency_ReplacesVersionInPlace(t *testing.T) {
	src := strings.Replace(groovyApp, "core-ktx:1.12.0'", "core-ktx:1.12.0'\n    implementation \"com.netcore.android:smartech-sdk:3.6.0\"", 1)
	dep := mutate.GradleDependency{Group: "com.netcore.android", Artifact: "smartech-sdk", Version: "3.7.6"}

	out := mutate.EnsureGradleDependency(src, mutate.LangGroovy, dep)
	assert.Equal(t, strings.Replace(src, "smartech-sdk:3.6.0", "smartech-sdk:3.7.6", 1), out)

	v, ok := mutate.GradleDependencyVersion(out, mutate.LangGroovy, dep)
	assert.True(t, ok)
	assert.Equal(t, "3.7.6", v)
}

func TestEnsureGradleDependency_IgnoresBuildscriptBlock(t *testing.T) {
	src := "buildscript {\n    dependencies {\n        classpath 'x:y:1'\n    }\n}\n"
	dep := mutate.GradleDependency{Group: "com.netcore.android", Artifact: "smartech-push", Version: "3.5.13"}

	out := mutate.EnsureGradleDependency(src, mutate.LangKotlinScript, dep)
	assert.True(t, strings.HasPrefix(out, src))
	assert.Contains(t, out, "\ndependencies {\n    implementation(\"com.netcore.android:smartech-push:3.5.13\")\n}\n")
}

func TestEnsureGradleDependency_KeepsVersionExpression(t *testing.T) {
	src := strings.Replace(groovyApp, "core-ktx:1.12.0'", "core-ktx:1.12.0'\n    implementation \"com.netcore.android:smartech-sdk:${SMARTECH_BASE_SDK_VERSION}\"", 1)
	dep := mutate.GradleDependency{Group: "com.netcore.android", Artifact: "smartech-sdk", Version: "3.7.6"}

	assert.Equal(t, src, mutate.EnsureGradleDependency(src, mutate.LangGroovy, dep))
	assert.True(t, mutate.GradleDependencySatisfied(src, mutate.LangGroovy, dep))

	v, ok := mutate.GradleDependencyVersion(src, mutate.LangGroovy, dep)
	assert.True(t, ok)
	assert.Equal(t, "${SMARTECH_BASE_SDK_VERSION}", v)
}

func TestEnsureGradleDependency_IgnoresCommentedDeclaration(t *testing.T) {
	src := strings.Replace(groovyApp, "core-ktx:1.12.0'", "core-ktx:1.12.0'\n    // implementation 'com.netcore.android:smartech-sdk:3.6.0'\n    /* implementation 'com.netcore.android:smartech-sdk:3.5.0' */", 1)
	dep := mutate.GradleDependency{Group: "com.netcore.android", Artifact: "smartech-sdk", Version: "3.7.6"}

	_, ok := mutate.GradleDependencyVersion(src, mutate.LangGroovy, dep)
	assert.False(t, ok)

	out := assertIdempotent(t, func(s string) string {
		return mutate.EnsureGradleDependency(s, mutate.LangGroovy, dep)
	}, src)
	assert.Contains(t, out, "    // implementation 'com.netcore.android:smartech-sdk:3.6.0'\n")
	assert.Contains(t, out, "smartech-sdk:3.5.0' */\n    implementation 'com.netcore.android:smartech-sdk:3.7.6'\n}\n")
	assert.True(t, mutate.GradleDependencySatisfied(out, mutate.LangGroovy, dep))
}

func TestEnsureMavenRepository(t *testing.T) {
	src := `pluginManagement {
    repositories {
        google()
    }
}
dependencyResolutionManagement {
    repositories {
        google()
        mavenCentral()
    }
}
`
	url := "https://artifacts.netcore.co.in/artifactory/android"
	out := assertIdempotent(t, func(s string) string {
		return mutate.EnsureMavenRepository(s, mutate.LangGroovy, url, "dependencyResolutionManagement", "repositories")
	}, src)

	assert.Contains(t, out, "        mavenCentral()\n        maven { url '"+url+"' }\n    }\n}\n")
	assert.Contains(t, out, "pluginManagement {\n    repositories {\n        google()\n    }\n}\n")
}

func TestEnsureMavenRepository_MissingBlockLeavesInput(t *testing.T) {
	src := "rootProject.name = 'app'\n"
	assert.Equal(t, src, mutate.EnsureMavenRepository(src, mutate.LangGroovy, "https://x", "allprojects", "repositories"))
}

// --- properties ---

func TestEnsureProperty_ReplacesOnlyValue(t *testing.T) {
	src := "org.gradle.jvmargs=-Xmx2048m\nSMARTECH_BASE_SDK_VERSION=3.7.0\nandroid.useAndroidX=true\n"
	out := assertIdempotent(t, func(s string) string {
		return mutate.EnsureProperty(s, "SMARTECH_BASE_SDK_VERSION", "3.7.6")
	}, src)

	assert.Equal(t, "org.gradle.jvmargs=-Xmx2048m\nSMARTECH_BASE_SDK_VERSION=3.7.6\nandroid.useAndroidX=true\n", out)
}

func TestEnsureProperty_AppendsMissingKey(t *testing.T) {
	out := mutate.EnsureProperty("a=1", "SMARTECH_PUSH_SDK_VERSION", "3.5.13")
	assert.Equal(t, "a=1\nSMARTECH_PUSH_SDK_VERSION=3.5.13\n", out)

	v, ok := mutate.PropertyValue(out, "SMARTECH_PUSH_SDK_VERSION")
	assert.True(t, ok)
	assert.Equal(t, "3.5.13", v)
}

func TestEnsureProperty_KeepsCRLF(t *testing.T) {
	src := "org.gradle.jvmargs=-Xmx2048m\r\nSMARTECH_BASE_SDK_VERSION=3.7.0\r\n"
	out := assertIdempotent(t, func(s string) string {
		s = mutate.EnsureProperty(s, "SMARTECH_BASE_SDK_VERSION", "3.7.6")
		return mutate.EnsureProperty(s, "SMARTECH_PUSH_SDK_VERSION", "3.5.13")
	}, src)

	assert.Equal(t, "org.gradle.jvmargs=-Xmx2048m\r\nSMARTECH_BASE_SDK_VERSION=3.7.6\r\nSMARTECH_PUSH_SDK_VERSION=3.5.13\r\n", out)
	v, ok := mutate.PropertyValue(out, "SMARTECH_BASE_SDK_VERSION")
	assert.True(t, ok)
	assert.Equal(t, "3.7.6", v)
}

// --- manifest ---

const manifest = `<?xml version="1.0" encoding="utf-8"?>
<manifest xmlns:android="http://schemas.android.com/apk/res/android"
    package="com.example.app">

    <uses-permission android:name="android.permission.INTERNET" />

    <application
        android:name=".MainApplication"
        android:label="@string/app_name">
        <activity
            android:name=".MainActivity"
            android:exported="true">
            <intent-filter>
                <action android:name="android.intent.action.MAIN" />
                <category android:name="android.intent.category.LAUNCHER" />
            </intent-filter>
        </activity>
    </application>
</manifest>
`

func TestEnsureMetaData_InsertsAfterApplicationTag(t *testing.T) {
	out := assertIdempotent(t, func(s string) string {
		return mutate.EnsureMetaData(s, "SMT_APP_ID", "APP123")
	}, manifest)

	assert.Contains(t, out, "android:label=\"@string/app_name\">\n        <meta-data android:name=\"SMT_APP_ID\" android:value=\"APP123\" />\n        <activity")
	v, ok := mutate.MetaDataValue(out, "SMT_APP_ID")
	assert.True(t, ok)
	assert.Equal(t, "APP123", v)
}

func TestEnsureMetaData_ReplacesExistingTag(t *testing.T) {
	src := mutate.EnsureMetaData(manifest, "SMT_APP_ID", "OLD")
	out := mutate.EnsureMetaData(src, "SMT_APP_ID", "NEW")

	assert.Equal(t, strings.Replace(src, `android:value="OLD"`, `android:value="NEW"`, 1), out)
	assert.Equal(t, 1, strings.Count(out, "SMT_APP_ID"))
}

func TestManifestValuesAreEscaped(t *testing.T) {
	out := assertIdempotent(t, func(s string) string {
		s = mutate.EnsureMetaData(s, "HANSEL_APP_KEY", `k"1&2`)
		return mutate.EnsureApplicationAttribute(s, "android:label", "Tom & Jerry")
	}, manifest)

	assert.Contains(t, out, `<meta-data android:name="HANSEL_APP_KEY" android:value="k&#34;1&amp;2" />`)
	assert.Contains(t, out, `android:label="Tom &amp; Jerry">`)
	require.NoError(t, xml.Unmarshal([]byte(out), &struct{}{}))

	v, ok := mutate.MetaDataValue(out, "HANSEL_APP_KEY")
	require.True(t, ok)
	assert.Equal(t, `k"1&2`, v)
	label, ok := mutate.ApplicationAttribute(out, "android:label")
	require.True(t, ok)
	assert.Equal(t, "Tom & Jerry", label)
}

func TestEnsureMetaData_NoApplicationLeavesInput(t *testing.T) {
	src := "<manifest></manifest>\n"
	assert.Equal(t, src, mutate.EnsureMetaData(src, "SMT_APP_ID", "A"))
}

func TestManifestReaders(t *testing.T) {
	assert.Equal(t, "com.example.app", mutate.ManifestPackage(manifest))

	name, ok := mutate.ApplicationAttribute(manifest, "android:name")
	require.True(t, ok)
	assert.Equal(t, "com.example.app.MainApplication", mutate.ResolveClassName("com.example.app", name))

	launcher, ok := mutate.LauncherActivity(manifest)
	require.True(t, ok)
	assert.Equal(t, ".MainActivity", launcher)
}

func TestEnsureApplicationAttribute_AddsOwnLine(t *testing.T) {
	out := assertIdempotent(t, func(s string) string {
		return mutate.EnsureApplicationAttribute(s, "android:fullBackupContent", "@xml/smartech_backup_rules")
	}, manifest)

	assert.Contains(t, out, "    <application\n        android:fullBackupContent=\"@xml/smartech_backup_rules\"\n        android:name=\".MainApplication\"")
}

func TestEnsureApplicationAttribute_SingleLineTag(t *testing.T) {
	src := "<manifest>\n    <application android:label=\"x\">\n    </application>\n</manifest>\n"
	out := mutate.EnsureApplicationAttribute(src, "android:name", ".App")
	assert.Contains(t, out, `<application android:label="x" android:name=".App">`)
}

func TestEnsureUsesPermission(t *testing.T) {
	out := assertIdempotent(t, func(s string) string {
		return mutate.EnsureUsesPermission(s, "android.permission.POST_NOTIFICATIONS")
	}, manifest)

	assert.Contains(t, out, "    <uses-permission android:name=\"android.permission.POST_NOTIFICATIONS\" />\n    <application\n")
}

func TestEnsureDeepLinkFilter(t *testing.T) {
	out := assertIdempotent(t, func(s string) string {
		s = mutate.EnsureDeepLinkFilter(s, "myapp", "")
		return mutate.EnsureDeepLinkFilter(s, "pxscheme", "pair")
	}, manifest)

	assert.True(t, mutate.HasDeepLink(out, "myapp", ""))
	assert.True(t, mutate.HasDeepLink(out, "pxscheme", "pair"))
	assert.False(t, mutate.HasDeepLink(out, "pxscheme", "other"))
	assert.Contains(t, out, "            <intent-filter>\n                <action android:name=\"android.intent.action.VIEW\" />")
	assert.True(t, strings.Index(out, `android:scheme="myapp"`) < strings.Index(out, `android:scheme="pxscheme"`))
}

func TestEnsureService(t *testing.T) {
	out := assertIdempotent(t, func(s string) string {
		return mutate.EnsureService(s, "com.example.app", ".PushService", mutate.MessagingEventAction)
	}, manifest)

	assert.Equal(t, []string{".PushService"}, mutate.ServicesWithAction(out, mutate.MessagingEventAction))
	assert.True(t, mutate.HasService(out, "com.example.app", "com.example.app.PushService"))
}

// --- xml resources ---

var smtExcludes = []mutate.BackupExclude{
	{Domain: "sharedpref", Path: "smt_guid_preferences.xml"},
	{Domain: "sharedpref", Path: "smt_preferences_guid.xml"},
}

func TestEnsureFullBackupExcludes_CreatesAndAugments(t *testing.T) {
	created := assertIdempotent(t, func(s string) string {
		return mutate.EnsureFullBackupExcludes(s, smtExcludes...)
	}, "")
	assert.Contains(t, created, "<full-backup-content>\n    <exclude domain=\"sharedpref\" path=\"smt_guid_preferences.xml\" />\n")

	existing := "<full-backup-content>\n    <include domain=\"file\" path=\".\" />\n</full-backup-content>\n"
	out := assertIdempotent(t, func(s string) string {
		return mutate.EnsureFullBackupExcludes(s, smtExcludes...)
	}, existing)
	assert.Contains(t, out, "<include domain=\"file\" path=\".\" />\n    <exclude domain=\"sharedpref\" path=\"smt_guid_preferences.xml\" />\n    <exclude domain=\"sharedpref\" path=\"smt_preferences_guid.xml\" />\n</full-backup-content>")
}

func TestEnsureDataExtractionExcludes_AddsMissingSection(t *testing.T) {
	src := "<data-extraction-rules>\n    <cloud-backup>\n    </cloud-backup>\n</data-extraction-rules>\n"
	out := assertIdempotent(t, func(s string) string {
		return mutate.EnsureDataExtractionExcludes(s, smtExcludes...)
	}, src)

	assert.Contains(t, out, "<device-transfer>")
	assert.Equal(t, 4, strings.Count(out, "<exclude "))
}

func TestEnsureResourceItems(t *testing.T) {
	items := []mutate.ResourceItem{{Type: "id", Name: "hansel_ignore_view"}, {Type: "id", Name: "hansel_ignore_view_excluding_children"}}
	created := assertIdempotent(t, func(s string) string { return mutate.EnsureResourceItems(s, items...) }, "")
	assert.Contains(t, created, `<item name="hansel_ignore_view" type="id" />`)

	existing := "<resources>\n    <id name=\"hansel_ignore_view\" />\n</resources>\n"
	out := mutate.EnsureResourceItems(existing, items...)
	assert.Equal(t, 1, strings.Count(out, `"hansel_ignore_view"`))
	assert.Contains(t, out, `<item name="hansel_ignore_view_excluding_children" type="id" />`)
}

// --- method bodies ---

var smartechInit = []mutate.Statement{
	{Code: "Smartech.getInstance(new WeakReference<>(getApplicationContext())).initializeSdk(this)", Marker: ".initializeSdk("},
	{Code: "Smartech.getInstance(new WeakReference<>(getApplicationContext())).setDebugLevel(9)", Marker: ".setDebugLevel("},
	{Code: "Smartech.getInstance(new WeakReference<>(getApplicationContext())).trackAppInstallUpdateBySmartech()", Marker: ".trackAppInstallUpdateBySmartech("},
}

var onCreateJava = mutate.Method{
	Name:        "onCreate",
	Declaration: "@Override\npublic void onCreate() {",
	Super:       "super.onCreate()",
}

func TestEnsureMethodStatements_AfterSuperWithoutDuplicates(t *testing.T) {
	src := strings.Replace(javaApp, "        super.onCreate();\n",
		"        super.onCreate();\n        Smartech.getInstance(new WeakReference<>(getApplicationContext())).initializeSdk(this);\n", 1)

	out := assertIdempotent(t, func(s string) string {
		return mutate.EnsureMethodStatements(s, mutate.LangJava, onCreateJava, smartechInit)
	}, src)

	assert.Contains(t, out, "        super.onCreate();\n"+
		"        Smartech.getInstance(new WeakReference<>(getApplicationContext())).setDebugLevel(9);\n"+
		"        Smartech.getInstance(new WeakReference<>(getApplicationContext())).trackAppInstallUpdateBySmartech();\n"+
		"        Smartech.getInstance(new WeakReference<>(getApplicationContext())).initializeSdk(this);\n")
	assert.Equal(t, 1, strings.Count(out, ".initializeSdk("))
	assert.True(t, mutate.HasStatements(out, mutate.LangJava, onCreateJava, smartechInit))
}

func TestEnsureMethodStatements_SynthesizesMissingOverride(t *testing.T) {
	src := "package a;\n\npublic class App extends Application {\n}\n"
	out := assertIdempotent(t, func(s string) string {
		return mutate.EnsureMethodStatements(s, mutate.LangJava, onCreateJava, smartechInit[:1])
	}, src)

	assert.Equal(t, "package a;\n\npublic class App extends Application {\n"+
		"    @Override\n    public void onCreate() {\n        super.onCreate();\n"+
		"        Smartech.getInstance(new WeakReference<>(getApplicationContext())).initializeSdk(this);\n    }\n}\n", out)
}

func TestEnsureMethodStatements_NoClassLeavesInput(t *testing.T) {
	src := "// nothing here\n"
	assert.Equal(t, src, mutate.EnsureMethodStatements(src, mutate.LangJava, onCreateJava, smartechInit))
	assert.False(t, mutate.HasStatements(src, mutate.LangJava, onCreateJava, smartechInit))
}

func TestEnsureMethodStatements_KotlinParamPlaceholder(t *testing.T) {
	src := `class PushService : FirebaseMessagingService() {
    override fun onNewToken(newToken: String) {
        super.onNewToken(newToken)
    }
}
`
	m := mutate.Method{Name: "onNewToken"}
	stmts := []mutate.Statement{{Code: "SmartechPushReact.setDevicePushToken({param})", Marker: "setDevicePushToken("}}
	out := assertIdempotent(t, func(s string) string {
		return mutate.EnsureMethodStatements(s, mutate.LangKotlin, m, stmts)
	}, src)

	assert.Contains(t, out, "        super.onNewToken(newToken)\n        SmartechPushReact.setDevicePushToken(newToken)\n")
}

func TestEnsureMethodStatements_BeforeAnchor(t *testing.T) {
	src := "import 'package:flutter/material.dart';\n\nvoid main() {\n  WidgetsFlutterBinding.ensureInitialized();\n  runApp(const MyApp());\n}\n"
	m := mutate.Method{Name: "main", Anchor: "runApp("}
	stmts := []mutate.Statement{{Code: "SmartechBase.instance.onHandleDeeplink((link) {})", Marker: "onHandleDeeplink("}}

	out := assertIdempotent(t, func(s string) string {
		return mutate.EnsureMethodStatements(s, mutate.LangDart, m, stmts)
	}, src)
	assert.Contains(t, out, "  SmartechBase.instance.onHandleDeeplink((link) {});\n  runApp(const MyApp());\n")
}

func TestEnsureMethodStatements_IgnoresCommentedSignature(t *testing.T) {
	src := "class A extends Application {\n    // public void onCreate() {\n}\n"
	out := mutate.EnsureMethodStatements(src, mutate.LangJava, onCreateJava, smartechInit[:1])
	assert.Equal(t, 1, strings.Count(out, "public void onCreate() {\n        super"))
}

func TestSuperClass(t *testing.T) {
	assert.True(t, mutate.ExtendsAny(javaApp, mutate.LangJava, "Application", "MultiDexApplication"))

	kt := "class MainApplication : Application(), ReactApplication {\n}\n"
	sup, ok := mutate.SuperClass(kt, mutate.LangKotlin)
	require.True(t, ok)
	assert.Equal(t, "Application", sup)
	assert.Equal(t, "MainApplication", mutate.FirstClassName(kt, mutate.LangKotlin))
	assert.Equal(t, "com.example.app", mutate.SourcePackage(javaApp))
}

// --- react effects ---

func TestEnsureEffectBlock_OnlyMissingBehaviors(t *testing.T) {
	src := `import React from 'react';

function Section() {
  return (<View />);
}

export default function App() {
  SmartechBaseReact.addListener('x');
  return (
    <View />
  );
}
`
	behaviors := []mutate.EffectBehavior{
		{Marker: "SmartechBaseReact.addListener", Setup: "const sub = SmartechBaseReact.addListener(...);", Cleanup: "sub.remove();"},
		{Marker: "setDevicePushToken", Setup: "SmartechPushReact.setDevicePushToken(token);"},
	}
	out := assertIdempotent(t, func(s string) string {
		return mutate.EnsureEffectBlock(s, mutate.LangTypeScript, behaviors)
	}, src)

	assert.Contains(t, out, "  useEffect(() => {\n    SmartechPushReact.setDevicePushToken(token);\n  }, []);\n\n  return (\n    <View />")
	assert.Equal(t, 1, strings.Count(out, "addListener"))
}

func TestEnsureEffectBlock_AppendsWithoutReturn(t *testing.T) {
	out := mutate.EnsureEffectBlock("const a = 1;\n", mutate.LangJavaScript, []mutate.EffectBehavior{{Marker: "m", Setup: "m();"}})
	assert.Equal(t, "const a = 1;\n\nuseEffect(() => {\n    m();\n}, []);\n", out)
}

// --- package.json / pubspec ---

const packageJSON = `{
  "name": "app",
  "dependencies": {
    "react": "18.2.0",
    "react-native": "0.72.6"
  }
}
`

func TestEnsurePackageDependency(t *testing.T) {
	out, err := mutate.EnsurePackageDependency(packageJSON, "dependencies", "smartech-base-react-native", "^3.7.0")
	require.NoError(t, err)
	assert.Contains(t, out, "  \"dependencies\": {\n    \"smartech-base-react-native\": \"^3.7.0\",\n    \"react\": \"18.2.0\",\n")
	assert.Contains(t, out, "    \"react-native\": \"0.72.6\"\n  }", "existing lines are untouched")

	again, err := mutate.EnsurePackageDependency(out, "dependencies", "smartech-base-react-native", "^3.7.0")
	require.NoError(t, err)
	assert.Equal(t, out, again)

	bumped, err := mutate.EnsurePackageDependency(out, "dependencies", "smartech-base-react-native", "^3.8.0")
	require.NoError(t, err)
	assert.Equal(t, strings.Replace(out, "^3.7.0", "^3.8.0", 1), bumped)
}

func TestEnsurePackageDependency_SingleLineSectionAppends(t *testing.T) {
	out, err := mutate.EnsurePackageDependency("{\n  \"dependencies\": {\"react\": \"18.2.0\"}\n}\n", "dependencies", "a", "1.0.0")
	require.NoError(t, err)

	v, ok, err := mutate.PackageDependency(out, "dependencies", "a")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "1.0.0", v)
	_, ok, _ = mutate.PackageDependency(out, "dependencies", "react")
	assert.True(t, ok)
}

func TestEnsurePackageDependency_CreatesSection(t *testing.T) {
	out, err := mutate.EnsurePackageDependency("{\n  \"name\": \"app\"\n}\n", "dependencies", "a", "1.0.0")
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"name\": \"app\",\n  \"dependencies\": {\n    \"a\": \"1.0.0\"\n  }\n}\n", out)

	v, ok, err := mutate.PackageDependency(out, "dependencies", "a")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "1.0.0", v)
}

func TestEnsurePackageDependency_Malformed(t *testing.T) {
	out, err := mutate.EnsurePackageDependency("not json", "dependencies", "a", "1")
	assert.ErrorIs(t, err, domain.ErrMalformedDocument)
	assert.Equal(t, "not json", out)
}

const pubspecYAML = `name: app
environment:
  sdk: '>=3.0.0 <4.0.0'

dependencies:
  flutter:
    sdk: flutter
  smartech_push: ^3.4.0

dev_dependencies:
  flutter_test:
    sdk: flutter
`

func TestEnsurePubspecDependency(t *testing.T) {
	out, err := mutate.EnsurePubspecDependency(pubspecYAML, "smartech_base", "^3.5.0")
	require.NoError(t, err)
	assert.Contains(t, out, "dependencies:\n  smartech_base: ^3.5.0\n  flutter:\n")

	again, err := mutate.EnsurePubspecDependency(out, "smartech_base", "^3.5.0")
	require.NoError(t, err)
	assert.Equal(t, out, again)

	bumped, err := mutate.EnsurePubspecDependency(out, "smartech_push", "^3.5.0")
	require.NoError(t, err)
	assert.Equal(t, strings.Replace(out, "smartech_push: ^3.4.0", "smartech_push: ^3.5.0", 1), bumped)

	v, ok, err := mutate.PubspecDependency(bumped, "flutter")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, v)
}

func TestEnsurePubspecDependency_KeepsCRLF(t *testing.T) {
	src := strings.ReplaceAll(pubspecYAML, "\n", "\r\n")
	out, err := mutate.EnsurePubspecDependency(src, "smartech_base", "^3.5.0")
	require.NoError(t, err)
	assert.Contains(t, out, "\r\ndependencies:\r\n  smartech_base: ^3.5.0\r\n  flutter:\r\n")
	assert.Equal(t, 1, strings.Count(out, "\r\ndependencies:"))

	again, err := mutate.EnsurePubspecDependency(out, "smartech_base", "^3.5.0")
	require.NoError(t, err)
	assert.Equal(t, out, again)

	bumped, err := mutate.EnsurePubspecDependency(out, "smartech_push", "^3.5.0")
	require.NoError(t, err)
	assert.Equal(t, strings.Replace(out, "smartech_push: ^3.4.0\r\n", "smartech_push: ^3.5.0\r\n", 1), bumped)

	v, ok, err := mutate.PubspecDependency(bumped, "smartech_push")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "^3.5.0", v)
}

func TestEnsurePubspecDependency_Malformed(t *testing.T) {
	_, err := mutate.EnsurePubspecDependency("dependencies: [\n", "a", "1")
	assert.ErrorIs(t, err, domain.ErrMalformedDocument)
}

func TestLangForPath(t *testing.T) {
	assert.Equal(t, mutate.LangKotlinScript, mutate.LangForPath("app/build.gradle.kts"))
	assert.Equal(t, mutate.LangGroovy, mutate.LangForPath("build.gradle"))
	assert.Equal(t, mutate.LangTypeScript, mutate.LangForPath("App.tsx"))
	assert.Equal(t, "kotlin", mutate.LangKotlin.String())
	assert.Equal(t, "foo()", mutate.LangKotlin.Statement("foo();"))
	assert.Equal(t, "foo();", mutate.LangJava.Statement("foo()"))
}
