package application

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/openkraft/sdkweave/internal/domain"
)

// ModuleRegistry looks up the rule module for a part on a platform.
type ModuleRegistry interface {
	For(part domain.Part, platform domain.AppPlatform) (domain.RuleModule, bool)
}

// PlanService orchestrates the planning pipeline:
// load config → probe project → run rule modules in part order.
type PlanService struct {
	prober       domain.ProjectProber
	configLoader domain.ConfigLoader
	registry     ModuleRegistry
	fs           domain.FileSystem
	logger       *slog.Logger
}

// NewPlanService wires a planner. configLoader may be nil; a nil logger
// logs through slog.Default.
func NewPlanService(
	prober domain.ProjectProber,
	configLoader domain.ConfigLoader,
	registry ModuleRegistry,
	fs domain.FileSystem,
	logger *slog.Logger,
) *PlanService {
	return &PlanService{
		prober:       prober,
		configLoader: configLoader,
		registry:     registry,
		fs:           fs,
		logger:       orDefault(logger),
	}
}

func orDefault(l *slog.Logger) *slog.Logger {
	if l == nil {
		return slog.Default()
	}
	return l
}

// ScanProject probes rootPath without planning.
func (s *PlanService) ScanProject(rootPath string, declared domain.AppPlatform) (*domain.ProjectScan, error) {
	if rootPath == "" {
		return nil, errors.New("root path is required")
	}
	scan, err := s.prober.Probe(rootPath, declared)
	if err != nil {
		return nil, fmt.Errorf("scanning project: %w", err)
	}
	return scan, nil
}

// Resolve layers the project config under opts and validates the result.
func (s *PlanService) Resolve(opts domain.IntegrationOptions) (domain.IntegrationOptions, domain.ProjectConfig, error) {
	if opts.RootPath == "" {
		return opts, domain.ProjectConfig{}, errors.New("root path is required")
	}
	cfg := domain.DefaultConfig()
	if s.configLoader != nil {
		var err error
		if cfg, err = s.configLoader.Load(opts.RootPath); err != nil {
			return opts, cfg, fmt.Errorf("loading config: %w", err)
		}
	}
	resolved, err := cfg.ApplyTo(opts)
	if err != nil {
		return opts, cfg, err
	}
	for _, p := range resolved.Parts {
		if _, err := domain.ParsePart(string(p)); err != nil {
			return opts, cfg, err
		}
	}
	if resolved.AppPlatform != "" {
		if _, err := domain.ParseAppPlatform(string(resolved.AppPlatform)); err != nil {
			return opts, cfg, err
		}
	}
	return resolved, cfg, nil
}

// PlanIntegration computes the changes that integrate the selected parts.
// The plan depends only on opts and the current file contents.
func (s *PlanService) PlanIntegration(opts domain.IntegrationOptions) (*domain.IntegrationPlan, error) {
	opts, cfg, err := s.Resolve(opts)
	if err != nil {
		return nil, err
	}
	scan, err := s.ScanProject(opts.RootPath, opts.AppPlatform)
	if err != nil {
		return nil, err
	}
	platform := scan.AppPlatform
	if platform == "" {
		return nil, fmt.Errorf("planning %s: %w: pass the platform explicitly", scan.RootPath, domain.ErrUnknownPlatform)
	}

	parts := opts.NormalizedParts()
	ctx := domain.RuleContext{
		Scan:     scan,
		RootPath: scan.RootPath,
		Inputs:   opts.Inputs,
		Parts:    parts,
		FS:       excluding(domain.ScopeFS(s.fs, scan.RootPath), scan.RootPath, cfg.ExcludePaths),
	}
	plan := &domain.IntegrationPlan{Scan: scan, Parts: parts, Changes: []domain.Change{}}
	for _, part := range parts {
		mod, ok := s.registry.For(part, platform)
		if !ok {
			s.logger.Debug("no rule module", "part", part, "platform", platform)
			continue
		}
		changes, err := mod.Run(ctx)
		if err != nil {
			return nil, fmt.Errorf("planning %s: %w", part, err)
		}
		for _, c := range changes {
			s.logger.Debug("change proposed", "id", c.ID, "kind", c.Kind, "file", c.FilePath, "advisory", c.IsAdvisory())
		}
		plan.Changes = append(plan.Changes, changes...)
	}

	s.logger.Info("plan built",
		"root", scan.RootPath,
		"platform", platform,
		"parts", parts,
		"changes", len(plan.Changes),
		"actionable", len(plan.Actionable()),
	)
	return plan, nil
}

// excludingFS hides files under the configured exclude paths from class
// inference. Reads and writes pass through.
type excludingFS struct {
	domain.FileSystem
	root    string
	exclude []string
}

func excluding(fsys domain.FileSystem, root string, exclude []string) domain.FileSystem {
	if len(exclude) == 0 {
		return fsys
	}
	clean := make([]string, 0, len(exclude))
	for _, e := range exclude {
		if e = strings.Trim(filepath.ToSlash(e), "/"); e != "" {
			clean = append(clean, e)
		}
	}
	return &excludingFS{FileSystem: fsys, root: root, exclude: clean}
}

func (e *excludingFS) ListFiles(dir string, exts ...string) ([]string, error) {
	files, err := e.FileSystem.ListFiles(dir, exts...)
	if err != nil {
		return nil, err
	}
	out := files[:0:0]
	for _, f := range files {
		if !e.excluded(f) {
			out = append(out, f)
		}
	}
	return out, nil
}

func (e *excludingFS) excluded(path string) bool {
	rel, err := filepath.Rel(e.root, path)
	if err != nil {
		return false
	}
	rel = filepath.ToSlash(rel)
	for _, ex := range e.exclude {
		if rel == ex || strings.HasPrefix(rel, ex+"/") {
			return true
		}
	}
	return false
}
