package main_test

import (
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/openkraft/sdkweave/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var binaryPath string

func TestMain(m *testing.M) {
	// Build binary before running tests
	dir, err := os.MkdirTemp("", "sdkweave-e2e")
	if err != nil {
		panic(err)
	}

	binaryPath = filepath.Join(dir, "sdkweave")
	cmd := exec.Command("go", "build", "-o", binaryPath, ".")
	if out, err := cmd.CombinedOutput(); err != nil {
		os.RemoveAll(dir)
		panic("build failed: " + string(out))
	}

	code := m.Run()
	os.RemoveAll(dir)
	os.Exit(code)
}

// fixture copies testdata/<name> into a temp dir so runs never touch the
// checked-in projects.
func fixture(t *testing.T, name string) string {
	t.Helper()
	src := filepath.Join("..", "..", "testdata", name)
	dst := filepath.Join(t.TempDir(), name)
	err := filepath.Walk(src, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		rel, _ := filepath.Rel(src, p)
		if info.IsDir() {
			return os.MkdirAll(filepath.Join(dst, rel), 0o755)
		}
		data, err := os.ReadFile(p)
		if err != nil {
			return err
		}
		return os.WriteFile(filepath.Join(dst, rel), data, 0o644)
	})
	require.NoError(t, err)
	return dst
}

func run(t *testing.T, args ...string) (string, int) {
	t.Helper()
	cmd := exec.Command(binaryPath, args...)
	out, err := cmd.Output()
	exitCode := 0
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			exitCode = exitErr.ExitCode()
		}
	}
	return string(out), exitCode
}

var inputs = []string{"--set", "smartechAppId=APP123", "--set", "deeplinkScheme=demo"}

var pxInputs = []string{"--set", "hanselAppId=HID", "--set", "hanselAppKey=HKEY", "--set", "pxScheme=demopx"}

var fixtures = []string{"android-java", "android-kotlin", "react-native-java", "react-native-kotlin", "flutter"}

// --- Plan Tests ---

func TestE2E_PlanJSON(t *testing.T) {
	dir := fixture(t, "react-native-java")
	out, code := run(t, append([]string{"plan", dir, "--json", "--parts", "base,push"}, inputs...)...)
	assert.Equal(t, 0, code)

	var plan domain.IntegrationPlan
	require.NoError(t, json.Unmarshal([]byte(out), &plan))
	assert.Equal(t, domain.PlatformReactNative, plan.Scan.AppPlatform)
	assert.NotEmpty(t, plan.Actionable())
}

func TestE2E_PlanUnknownPlatform(t *testing.T) {
	_, code := run(t, "plan", t.TempDir())
	assert.Equal(t, 1, code)
}

// --- Apply Tests ---

func TestE2E_ApplyVerifyIsIdempotent(t *testing.T) {
	for _, name := range []string{"android-java", "react-native-kotlin", "flutter"} {
		t.Run(name, func(t *testing.T) {
			dir := fixture(t, name)

			out, code := run(t, append([]string{"apply", dir, "--verify", "--json"}, inputs...)...)
			require.Equal(t, 0, code, out)
			var report domain.VerifyReport
			require.NoError(t, json.Unmarshal([]byte(out), &report))
			assert.True(t, report.Converged)

			out, code = run(t, append([]string{"plan", dir, "--json"}, inputs...)...)
			require.Equal(t, 0, code)
			var plan domain.IntegrationPlan
			require.NoError(t, json.Unmarshal([]byte(out), &plan))
			assert.Empty(t, plan.Actionable(), "a second plan proposes nothing")
		})
	}
}

func TestE2E_ApplyAllPartsFirstBatchIsClean(t *testing.T) {
	for _, name := range fixtures {
		t.Run(name, func(t *testing.T) {
			dir := fixture(t, name)
			args := append([]string{"--parts", "base,push,px"}, append(inputs, pxInputs...)...)

			out, code := run(t, append([]string{"apply", dir, "--verify", "--json"}, args...)...)
			require.Equal(t, 0, code, out)
			var report domain.VerifyReport
			require.NoError(t, json.Unmarshal([]byte(out), &report))
			require.NotEmpty(t, report.Initial)
			for _, r := range report.Initial {
				assert.True(t, r.Applied, "%s: %s", r.ChangeID, r.Message)
			}
			assert.True(t, report.Converged, "remaining: %v", report.Remaining)

			out, code = run(t, append([]string{"plan", dir, "--json"}, args...)...)
			require.Equal(t, 0, code)
			var plan domain.IntegrationPlan
			require.NoError(t, json.Unmarshal([]byte(out), &plan))
			assert.Empty(t, domain.ChangeIDs(plan.Actionable()), "a second plan proposes nothing")
		})
	}
}

// --- Version Test ---

func TestE2E_Version(t *testing.T) {
	out, code := run(t, "version")
	assert.Equal(t, 0, code)
	assert.Contains(t, out, "sdkweave")
}
