package tui

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/openkraft/sdkweave/internal/domain"
)

// ── warm palette ──
var (
	accent    = lipgloss.Color("#D97706") // amber
	fg        = lipgloss.Color("#E8E6E3") // warm light gray
	dim       = lipgloss.Color("#6B7280") // muted gray
	faint     = lipgloss.Color("#3F3F46") // very dim
	success   = lipgloss.Color("#22C55E") // green
	danger    = lipgloss.Color("#EF4444") // red
	warning   = lipgloss.Color("#F59E0B") // amber-yellow
	info      = lipgloss.Color("#8B949E") // soft blue-gray
	skipColor = lipgloss.Color("#4B5563") // dark gray
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(accent).
			Align(lipgloss.Center)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(accent).
			Padding(1, 4).
			Align(lipgloss.Center).
			Width(68)

	kindColors = map[domain.ChangeKind]lipgloss.Color{
		domain.KindCreate: success,
		domain.KindInsert: info,
		domain.KindUpdate: warning,
	}

	dimStyle      = lipgloss.NewStyle().Foreground(dim)
	faintStyle    = lipgloss.NewStyle().Foreground(faint)
	passStyle     = lipgloss.NewStyle().Foreground(success)
	failStyle     = lipgloss.NewStyle().Foreground(danger)
	warnStyle     = lipgloss.NewStyle().Foreground(warning)
	skipStyle     = lipgloss.NewStyle().Foreground(skipColor)
	warnTagStyle  = lipgloss.NewStyle().Foreground(warning).Bold(true)
	infoTagStyle  = lipgloss.NewStyle().Foreground(info)
	fileStyle     = lipgloss.NewStyle().Foreground(dim)
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(fg)
	partNameStyle = lipgloss.NewStyle().Bold(true).Foreground(fg)
	addStyle      = lipgloss.NewStyle().Foreground(success)
	delStyle      = lipgloss.NewStyle().Foreground(danger)
	hunkStyle     = lipgloss.NewStyle().Foreground(info)
	separatorLine = faintStyle.Render(strings.Repeat("─", 64))
)

// PlanOptions controls how much of each change RenderPlan shows.
type PlanOptions struct {
	// ShowPatches prints every patch under its change.
	ShowPatches bool
}

// RenderPlan formats an integration plan grouped by part.
func RenderPlan(plan *domain.IntegrationPlan, opts PlanOptions) string {
	var b strings.Builder

	// ── Header ──
	title := headerStyle.Render("sdkweave")
	subtitle := dimStyle.Render("Integration Plan")
	actionable := len(plan.Actionable())
	advisory := len(plan.Changes) - actionable
	stats := titleStyle.Render(fmt.Sprintf("%d changes", actionable))
	if advisory > 0 {
		stats += "  " + warnTagStyle.Render(fmt.Sprintf("%d manual", advisory))
	}
	platform := ""
	if plan.Scan != nil {
		platform = dimStyle.Render(string(plan.Scan.AppPlatform) + "  ·  " + shortenPath(plan.Scan.RootPath))
	}
	b.WriteString(boxStyle.Render(title + "\n" + subtitle + "\n\n" + stats + "\n" + platform))
	b.WriteString("\n\n")

	if len(plan.Changes) == 0 {
		b.WriteString("  " + passStyle.Render("Nothing to do: the project is already integrated.") + "\n\n")
		return b.String()
	}

	// ── Parts ──
	byPart := plan.ByModule()
	for i, part := range plan.Parts {
		changes := byPart[part]
		fmt.Fprintf(&b, "  %s %s\n", partNameStyle.Render(padRight(string(part), 6)), dimStyle.Render(fmt.Sprintf("(%d)", len(changes))))
		if len(changes) == 0 {
			fmt.Fprintf(&b, "    %s\n", skipStyle.Render("already integrated"))
		}
		for _, c := range changes {
			renderChange(&b, plan, c, opts)
		}
		if i < len(plan.Parts)-1 {
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString("  " + separatorLine)
	b.WriteString("\n\n")
	b.WriteString("  " + dimStyle.Render("Apply with: sdkweave apply [--id <change-id>] [--verify]") + "\n\n")
	return b.String()
}

func renderChange(b *strings.Builder, plan *domain.IntegrationPlan, c domain.Change, opts PlanOptions) {
	root := ""
	if plan.Scan != nil {
		root = plan.Scan.RootPath
	}
	file := fileStyle.Render(relPath(root, c.FilePath))

	if c.IsAdvisory() {
		fmt.Fprintf(b, "    %s %s %s\n", warnStyle.Render("○"), padRight(c.ID, 40), warnTagStyle.Render("manual"))
		fmt.Fprintf(b, "      %s\n", dimStyle.Render(c.Summary))
		fmt.Fprintf(b, "      %s\n", file)
		if c.ManualSnippet != "" {
			for _, line := range strings.Split(strings.TrimRight(c.ManualSnippet, "\n"), "\n") {
				fmt.Fprintf(b, "      %s\n", faintStyle.Render("│ ")+line)
			}
		}
		return
	}

	kind := lipgloss.NewStyle().Foreground(kindColor(c.Kind)).Render(padRight(string(c.Kind), 6))
	confidence := dimStyle.Render(fmt.Sprintf("%.2f", c.Confidence))
	fmt.Fprintf(b, "    %s %s %s %s\n", passStyle.Render("●"), padRight(c.ID, 40), kind, confidence)
	fmt.Fprintf(b, "      %s\n", file)
	if opts.ShowPatches {
		renderPatch(b, c.Patch)
	}
}

func renderPatch(b *strings.Builder, patch string) {
	for _, line := range strings.Split(strings.TrimRight(patch, "\n"), "\n") {
		var styled string
		switch {
		case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"):
			styled = dimStyle.Render(line)
		case strings.HasPrefix(line, "@@"):
			styled = hunkStyle.Render(line)
		case strings.HasPrefix(line, "+"):
			styled = addStyle.Render(line)
		case strings.HasPrefix(line, "-"):
			styled = delStyle.Render(line)
		default:
			styled = faintStyle.Render(line)
		}
		b.WriteString("        " + styled + "\n")
	}
}

// RenderResults formats the results of one apply batch.
func RenderResults(results []domain.ApplyResult) string {
	var b strings.Builder
	b.WriteString("\n")
	b.WriteString("  " + titleStyle.Render("Apply") + "  " + summarize(results) + "\n")
	b.WriteString("  " + faintStyle.Render(strings.Repeat("─", 50)) + "\n\n")
	renderResultLines(&b, results, "    ")
	b.WriteString("\n")
	return b.String()
}

func renderResultLines(b *strings.Builder, results []domain.ApplyResult, indent string) {
	if len(results) == 0 {
		b.WriteString(indent + dimStyle.Render("No changes selected.") + "\n")
		return
	}
	for _, r := range results {
		fmt.Fprintf(b, "%s%s %s %s\n", indent, outcomeIcon(r.Outcome()), padRight(r.ChangeID, 40), dimStyle.Render(r.Message))
	}
}

func summarize(results []domain.ApplyResult) string {
	var applied, skipped, failed int
	for _, r := range results {
		switch r.Outcome() {
		case domain.OutcomeApplied:
			applied++
		case domain.OutcomeSkipped:
			skipped++
		default:
			failed++
		}
	}
	parts := []string{passStyle.Render(fmt.Sprintf("%d applied", applied))}
	if skipped > 0 {
		parts = append(parts, skipStyle.Render(fmt.Sprintf("%d skipped", skipped)))
	}
	if failed > 0 {
		parts = append(parts, failStyle.Render(fmt.Sprintf("%d failed", failed)))
	}
	return strings.Join(parts, "  ")
}

func outcomeIcon(o domain.ApplyOutcome) string {
	switch o {
	case domain.OutcomeApplied:
		return passStyle.Render("●")
	case domain.OutcomeSkipped:
		return skipStyle.Render("○")
	default:
		return failStyle.Render("●")
	}
}

func kindColor(k domain.ChangeKind) lipgloss.Color {
	if c, ok := kindColors[k]; ok {
		return c
	}
	return fg
}

func relPath(root, path string) string {
	if root != "" {
		if rel, err := filepath.Rel(root, path); err == nil && !strings.HasPrefix(rel, "..") {
			return filepath.ToSlash(rel)
		}
	}
	return shortenPath(path)
}

func shortenPath(path string) string {
	parts := strings.Split(filepath.ToSlash(path), "/")
	if len(parts) > 3 {
		return strings.Join(parts[len(parts)-3:], "/")
	}
	return path
}

func padRight(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}

// RenderHistory formats the apply journal for terminal output.
func RenderHistory(entries []domain.JournalEntry) string {
	if len(entries) == 0 {
		return "  " + dimStyle.Render("No apply history found.") + "\n"
	}

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString("  " + titleStyle.Render("Apply History") + "\n")
	b.WriteString("  " + faintStyle.Render(strings.Repeat("─", 50)) + "\n\n")

	for _, e := range entries {
		hash := e.CommitHash
		if len(hash) > 7 {
			hash = hash[:7]
		}
		if hash == "" {
			hash = "·······"
		}
		day := e.Timestamp
		if len(day) > 10 {
			day = day[:10]
		}

		fmt.Fprintf(&b, "  %s  %s  %s  %s\n",
			dimStyle.Render(day),
			faintStyle.Render(hash),
			infoTagStyle.Render(e.RunID),
			summarize(e.Results),
		)
	}

	return b.String()
}
