package tui

import (
	"fmt"
	"strings"

	"github.com/openkraft/sdkweave/internal/domain"
)

// RenderVerify produces a terminal view of an apply-and-verify run: the
// initial batch, every re-apply attempt, and what is still outstanding.
func RenderVerify(report *domain.VerifyReport) string {
	var b strings.Builder

	// ── Header box ──
	title := headerStyle.Render("Verify")
	status := passStyle.Render("converged")
	if !report.Converged {
		status = failStyle.Render(fmt.Sprintf("%d remaining", len(report.Remaining)))
	}
	stats := dimStyle.Render(fmt.Sprintf("%d attempts  ·  ", len(report.Attempts))) + status
	b.WriteString(boxStyle.Render(title + "\n\n" + summarize(report.Initial) + "\n" + stats))
	b.WriteString("\n\n")

	// ── Initial batch ──
	b.WriteString("  " + sectionHeaderStyle.Render("Initial apply") + "\n")
	renderResultLines(&b, report.Initial, "    ")

	// ── Attempts ──
	for _, a := range report.Attempts {
		b.WriteString("\n")
		fmt.Fprintf(&b, "  %s %s\n",
			sectionHeaderStyle.Render(fmt.Sprintf("Attempt %d", a.Attempt)),
			dimStyle.Render(fmt.Sprintf("(%d remaining)", len(a.Remaining))),
		)
		renderResultLines(&b, a.Results, "    ")
	}

	// ── Remaining ──
	if len(report.Remaining) > 0 {
		b.WriteString("\n")
		b.WriteString("  " + sectionHeaderStyle.Render("Still pending") + "\n")
		for _, id := range report.Remaining {
			fmt.Fprintf(&b, "    %s %s\n", failStyle.Render("●"), id)
		}
		b.WriteString("\n  " + hintStyle.Render("Re-run the plan to inspect the pending changes.") + "\n")
	}

	b.WriteString("\n")
	return b.String()
}
