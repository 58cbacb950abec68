package application

import (
	"log/slog"

	"github.com/openkraft/sdkweave/internal/domain"
)

// VerifyService re-plans after an apply and re-applies whatever the new
// plan still proposes among the selected ids, up to a fixed budget. An
// empty selection follows every actionable change of each new plan, so
// steps that only become actionable after an earlier apply are picked up.
type VerifyService struct {
	planner  *PlanService
	applier  *ApplyService
	attempts int
	logger   *slog.Logger
}

// NewVerifyService wires the verify loop with the default budget.
func NewVerifyService(planner *PlanService, applier *ApplyService, logger *slog.Logger) *VerifyService {
	return &VerifyService{planner: planner, applier: applier, attempts: domain.DefaultVerifyAttempts, logger: orDefault(logger)}
}

// WithAttempts returns a copy using n re-apply passes.
func (s *VerifyService) WithAttempts(n int) *VerifyService {
	c := *s
	c.attempts = n
	return &c
}

// SelectedIDs resolves a selection: the given ids, or every actionable
// change of plan when ids is empty. Duplicates are dropped.
func SelectedIDs(plan *domain.IntegrationPlan, ids []string) []string {
	if len(ids) == 0 {
		ids = domain.ChangeIDs(plan.Actionable())
	}
	return dedupe(ids)
}

func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

// ApplyAndVerify plans, applies the selected changes and runs the verify
// loop. With opts.DryRun nothing is written and every selected id is
// reported as remaining.
func (s *VerifyService) ApplyAndVerify(opts domain.IntegrationOptions, ids []string) (*domain.VerifyReport, error) {
	plan, err := s.planner.PlanIntegration(opts)
	if err != nil {
		return nil, err
	}
	selected := SelectedIDs(plan, ids)
	initial, err := s.applier.ApplyAndRecord(plan.Scan.RootPath, domain.SelectChanges(plan.Changes, selected), opts.DryRun)
	if err != nil {
		return nil, err
	}
	if opts.DryRun {
		return &domain.VerifyReport{Initial: initial, Attempts: []domain.VerifyAttempt{}, Remaining: selected}, nil
	}
	report, err := s.Verify(opts, ids)
	if err != nil {
		return nil, err
	}
	report.Initial = initial
	return report, nil
}

// Verify re-plans and re-applies the still-proposed selected changes until
// none remain or the budget is spent, then reports what is left. With no
// selected ids every actionable change of each re-plan is pending.
func (s *VerifyService) Verify(opts domain.IntegrationOptions, selected []string) (*domain.VerifyReport, error) {
	opts.DryRun = false
	selected = dedupe(selected)
	report := &domain.VerifyReport{Initial: []domain.ApplyResult{}, Attempts: []domain.VerifyAttempt{}}
	for attempt := 1; ; attempt++ {
		plan, err := s.planner.PlanIntegration(opts)
		if err != nil {
			return nil, err
		}
		pending := plan.Actionable()
		if len(selected) > 0 {
			pending = domain.SelectChanges(plan.Changes, selected)
		}
		remaining := uniqueIDs(pending)
		if len(remaining) == 0 {
			report.Remaining = []string{}
			report.Converged = true
			break
		}
		if attempt > s.attempts {
			report.Remaining = remaining
			break
		}
		s.logger.Debug("verify pass", "attempt", attempt, "remaining", remaining)
		results, err := s.applier.ApplyAndRecord(plan.Scan.RootPath, pending, false)
		if err != nil {
			return nil, err
		}
		report.Attempts = append(report.Attempts, domain.VerifyAttempt{Attempt: attempt, Remaining: remaining, Results: results})
	}
	s.logger.Info("verify finished", "attempts", len(report.Attempts), "remaining", len(report.Remaining), "converged", report.Converged)
	return report, nil
}

func uniqueIDs(changes []domain.Change) []string {
	var out []string
	seen := make(map[string]bool)
	for _, c := range changes {
		if !seen[c.ID] {
			seen[c.ID] = true
			out = append(out, c.ID)
		}
	}
	return out
}
