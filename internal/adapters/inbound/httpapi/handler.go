// Package httpapi exposes the engine over HTTP.
package httpapi

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/openkraft/sdkweave/internal/application"
	"github.com/openkraft/sdkweave/internal/domain"
)

// IntegrationHandler serves plan, apply, verify and scan.
type IntegrationHandler struct {
	engine *application.Engine
	logger *slog.Logger
}

func NewIntegrationHandler(engine *application.Engine, logger *slog.Logger) *IntegrationHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &IntegrationHandler{engine: engine, logger: logger}
}

type integrationRequest struct {
	RootPath    string         `json:"rootPath" binding:"required"`
	AppPlatform string         `json:"appPlatform"`
	Parts       []string       `json:"parts"`
	Inputs      map[string]any `json:"inputs"`
	SelectedIDs []string       `json:"selectedChangeIds"`
	DryRun      bool           `json:"dryRun"`
}

func (r integrationRequest) options() (domain.IntegrationOptions, error) {
	opts := domain.IntegrationOptions{RootPath: r.RootPath, DryRun: r.DryRun}
	if r.AppPlatform != "" {
		p, err := domain.ParseAppPlatform(r.AppPlatform)
		if err != nil {
			return opts, err
		}
		opts.AppPlatform = p
	}
	for _, s := range r.Parts {
		p, err := domain.ParsePart(s)
		if err != nil {
			return opts, err
		}
		opts.Parts = append(opts.Parts, p)
	}
	in, err := domain.InputsFromMap(r.Inputs)
	if err != nil {
		return opts, err
	}
	opts.Inputs = in
	return opts, nil
}

type planResponse struct {
	Plan     *domain.IntegrationPlan `json:"plan"`
	Warnings []domain.InputIssue     `json:"warnings"`
}

type applyResponse struct {
	Results  []domain.ApplyResult `json:"results"`
	Warnings []domain.InputIssue  `json:"warnings"`
}

// Plan proposes changes without writing.
func (h *IntegrationHandler) Plan(c *gin.Context) {
	opts, ok := h.bind(c)
	if !ok {
		return
	}
	plan, err := h.engine.Planner.PlanIntegration(opts)
	if err != nil {
		h.fail(c, "plan failed", err)
		return
	}
	c.JSON(http.StatusOK, planResponse{Plan: plan, Warnings: h.warnings(opts)})
}

// Apply applies the selected changes of a fresh plan.
func (h *IntegrationHandler) Apply(c *gin.Context) {
	var req integrationRequest
	opts, ok := h.bindInto(c, &req)
	if !ok {
		return
	}
	_, results, err := h.engine.Apply(opts, req.SelectedIDs)
	if err != nil {
		h.fail(c, "apply failed", err)
		return
	}
	c.JSON(http.StatusOK, applyResponse{Results: results, Warnings: h.warnings(opts)})
}

// Verify applies the selected changes and runs the verify loop.
func (h *IntegrationHandler) Verify(c *gin.Context) {
	var req integrationRequest
	opts, ok := h.bindInto(c, &req)
	if !ok {
		return
	}
	report, err := h.engine.Verifier.ApplyAndVerify(opts, req.SelectedIDs)
	if err != nil {
		h.fail(c, "verify failed", err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// Scan reports what was detected under the rootPath query parameter.
func (h *IntegrationHandler) Scan(c *gin.Context) {
	root := c.Query("rootPath")
	if root == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "rootPath is required"})
		return
	}
	var declared domain.AppPlatform
	if s := c.Query("appPlatform"); s != "" {
		p, err := domain.ParseAppPlatform(s)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		declared = p
	}
	scan, err := h.engine.Planner.ScanProject(root, declared)
	if err != nil {
		h.fail(c, "scan failed", err)
		return
	}
	c.JSON(http.StatusOK, scan)
}

func (h *IntegrationHandler) bind(c *gin.Context) (domain.IntegrationOptions, bool) {
	var req integrationRequest
	return h.bindInto(c, &req)
}

func (h *IntegrationHandler) bindInto(c *gin.Context, req *integrationRequest) (domain.IntegrationOptions, bool) {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: rootPath is required"})
		return domain.IntegrationOptions{}, false
	}
	opts, err := req.options()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return opts, false
	}
	return opts, true
}

func (h *IntegrationHandler) warnings(opts domain.IntegrationOptions) []domain.InputIssue {
	resolved, _, err := h.engine.Planner.Resolve(opts)
	if err != nil {
		return []domain.InputIssue{}
	}
	issues := resolved.Inputs.Validate(resolved.AppPlatform, resolved.NormalizedParts())
	if issues == nil {
		return []domain.InputIssue{}
	}
	return issues
}

// fail maps engine errors onto status codes. Request mistakes are 400,
// a project the engine cannot classify is 422, anything else is 500.
func (h *IntegrationHandler) fail(c *gin.Context, msg string, err error) {
	var unknown *domain.UnknownValueError
	switch {
	case errors.Is(err, domain.ErrUnknownPart), errors.As(err, &unknown):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrUnknownPlatform):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	default:
		h.logger.ErrorContext(c.Request.Context(), msg, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": msg + ": " + err.Error()})
	}
}
