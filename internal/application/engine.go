package application

import (
	"log/slog"

	"github.com/openkraft/sdkweave/internal/domain"
)

// Engine bundles the services the transports call.
type Engine struct {
	Planner  *PlanService
	Applier  *ApplyService
	Verifier *VerifyService
	Journal  domain.ApplyJournal
}

// EngineDeps are the outbound adapters an Engine is built from.
// ConfigLoader, Journal and Git may be nil.
type EngineDeps struct {
	FS           domain.FileSystem
	Prober       domain.ProjectProber
	ConfigLoader domain.ConfigLoader
	Registry     ModuleRegistry
	Journal      domain.ApplyJournal
	Git          domain.GitInfo
	Logger       *slog.Logger
}

// NewEngine wires the planner, patcher and verify loop over deps.
func NewEngine(deps EngineDeps) *Engine {
	planner := NewPlanService(deps.Prober, deps.ConfigLoader, deps.Registry, deps.FS, deps.Logger)
	applier := NewApplyService(deps.FS, deps.Journal, deps.Git, deps.Logger)
	return &Engine{
		Planner:  planner,
		Applier:  applier,
		Verifier: NewVerifyService(planner, applier, deps.Logger),
		Journal:  deps.Journal,
	}
}

// Apply plans opts and applies the changes named by ids, or every
// actionable change when ids is empty. Real batches are journaled.
func (e *Engine) Apply(opts domain.IntegrationOptions, ids []string) (*domain.IntegrationPlan, []domain.ApplyResult, error) {
	plan, err := e.Planner.PlanIntegration(opts)
	if err != nil {
		return nil, nil, err
	}
	selected := domain.SelectChanges(plan.Changes, SelectedIDs(plan, ids))
	results, err := e.Applier.ApplyAndRecord(plan.Scan.RootPath, selected, opts.DryRun)
	if err != nil {
		return plan, nil, err
	}
	return plan, results, nil
}

// VerifySelection runs the verify loop over ids, or over every actionable
// change of each re-plan when ids is empty. Nothing is applied before the
// first re-plan.
func (e *Engine) VerifySelection(opts domain.IntegrationOptions, ids []string) (*domain.VerifyReport, error) {
	return e.Verifier.Verify(opts, ids)
}
