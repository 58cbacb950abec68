package httpapi_test

import (
	"bytes"
	"encoding/json"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openkraft/sdkweave/internal/adapters/inbound/httpapi"
	"github.com/openkraft/sdkweave/internal/adapters/outbound/fsstore"
	"github.com/openkraft/sdkweave/internal/adapters/outbound/prober"
	"github.com/openkraft/sdkweave/internal/application"
	"github.com/openkraft/sdkweave/internal/domain"
	"github.com/openkraft/sdkweave/internal/domain/rules"
)

// newRouter serves testdata/<fixture> from memory under /work/<fixture>.
func newRouter(t *testing.T, fixture string) (*gin.Engine, *fsstore.Memory, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	src := filepath.Join("..", "..", "..", "..", "testdata", fixture)
	root := "/work/" + fixture
	files := make(map[string]string)
	err := filepath.WalkDir(src, func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		rel, err := filepath.Rel(src, p)
		if err != nil {
			return err
		}
		data, err := os.ReadFile(p)
		if err != nil {
			return err
		}
		files[filepath.Join(root, rel)] = string(data)
		return nil
	})
	require.NoError(t, err)

	mem := fsstore.NewMemory(files)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	engine := application.NewEngine(application.EngineDeps{
		FS:       mem,
		Prober:   prober.New(mem, nil),
		Registry: rules.DefaultRegistry(),
		Logger:   logger,
	})
	return httpapi.NewRouter(engine, logger), mem, root
}

func post(router *gin.Engine, path string, body any) *httptest.ResponseRecorder {
	data, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBuffer(data))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

var inputs = map[string]any{"smartechAppId": "APP123", "deeplinkScheme": "demo"}

func TestHealth(t *testing.T) {
	router, _, _ := newRouter(t, "android-java")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestPlan(t *testing.T) {
	router, mem, root := newRouter(t, "react-native-kotlin")

	w := post(router, "/v1/plan", map[string]any{"rootPath": root, "parts": []string{"base", "push"}, "inputs": inputs})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Plan     domain.IntegrationPlan `json:"plan"`
		Warnings []domain.InputIssue    `json:"warnings"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, domain.PlatformReactNative, resp.Plan.Scan.AppPlatform)
	assert.Equal(t, []domain.Part{domain.PartBase, domain.PartPush}, resp.Plan.Parts)
	assert.NotEmpty(t, resp.Plan.Changes)
	assert.Empty(t, resp.Warnings)
	assert.Zero(t, mem.TotalWrites())
}

func TestPlan_WarnsAboutMissingInputs(t *testing.T) {
	router, _, root := newRouter(t, "android-java")

	w := post(router, "/v1/plan", map[string]any{"rootPath": root})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "smartechAppId")
	assert.Contains(t, w.Body.String(), "deeplinkScheme")
}

func TestPlan_BadRequests(t *testing.T) {
	router, _, root := newRouter(t, "android-java")

	assert.Equal(t, http.StatusBadRequest, post(router, "/v1/plan", map[string]any{}).Code)
	assert.Equal(t, http.StatusBadRequest, post(router, "/v1/plan", map[string]any{"rootPath": root, "parts": []string{"inbox"}}).Code)
	assert.Equal(t, http.StatusBadRequest, post(router, "/v1/plan", map[string]any{"rootPath": root, "appPlatform": "ios"}).Code)
	assert.Equal(t, http.StatusBadRequest, post(router, "/v1/plan", map[string]any{"rootPath": root, "inputs": map[string]any{"bogus": true}}).Code)

	req := httptest.NewRequest(http.MethodPost, "/v1/plan", bytes.NewBufferString(`{`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPlan_UnrecognizedProject(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mem := fsstore.NewMemory(map[string]string{"/work/empty/README.md": "# nothing\n"})
	engine := application.NewEngine(application.EngineDeps{FS: mem, Prober: prober.New(mem, nil), Registry: rules.DefaultRegistry()})
	router := httpapi.NewRouter(engine, slog.New(slog.NewTextHandler(io.Discard, nil)))

	w := post(router, "/v1/plan", map[string]any{"rootPath": "/work/empty"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestApply(t *testing.T) {
	router, mem, root := newRouter(t, "android-java")

	w := post(router, "/v1/apply", map[string]any{
		"rootPath":          root,
		"inputs":            inputs,
		"selectedChangeIds": []string{"android-manifest-smt-app-id"},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Results []domain.ApplyResult `json:"results"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Results, 1)
	assert.True(t, resp.Results[0].Applied)
	assert.Equal(t, 1, mem.TotalWrites())
}

func TestApply_DryRun(t *testing.T) {
	router, mem, root := newRouter(t, "android-java")

	w := post(router, "/v1/apply", map[string]any{"rootPath": root, "inputs": inputs, "dryRun": true})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), domain.MsgDryRun)
	assert.Zero(t, mem.TotalWrites())
}

func TestVerify(t *testing.T) {
	router, _, root := newRouter(t, "android-kotlin")

	w := post(router, "/v1/verify", map[string]any{"rootPath": root, "inputs": inputs})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var report domain.VerifyReport
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &report))
	assert.True(t, report.Converged, "remaining: %v", report.Remaining)
	assert.NotEmpty(t, report.Initial)
}

func TestScan(t *testing.T) {
	router, _, root := newRouter(t, "flutter")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/scan?rootPath="+root, nil))
	require.Equal(t, http.StatusOK, w.Code)

	var scan domain.ProjectScan
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &scan))
	assert.Equal(t, domain.PlatformFlutter, scan.AppPlatform)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/scan", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/scan?rootPath="+root+"&appPlatform=ios", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
