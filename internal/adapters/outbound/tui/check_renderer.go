package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/openkraft/sdkweave/internal/domain"
)

var (
	sectionHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(accent)
	warningItemStyle   = lipgloss.NewStyle().Foreground(warning)
	hintStyle          = lipgloss.NewStyle().Foreground(dim).Italic(true)
)

// RenderInputIssues renders the inputs a platform/part selection is missing.
func RenderInputIssues(platform domain.AppPlatform, parts []domain.Part, issues []domain.InputIssue) string {
	var b strings.Builder

	selection := make([]string, len(parts))
	for i, p := range parts {
		selection[i] = string(p)
	}
	status := passStyle.Render("all inputs present")
	if len(issues) > 0 {
		status = failStyle.Render(fmt.Sprintf("%d missing", len(issues)))
	}
	name := string(platform)
	if name == "" {
		name = "any platform"
	}
	line := titleStyle.Render(name) + "  " + status
	b.WriteString(boxStyle.Render(line + "\n" + dimStyle.Render(strings.Join(selection, " + "))))
	b.WriteString("\n")

	byPart := make(map[domain.Part][]domain.InputIssue)
	for _, is := range issues {
		byPart[is.Part] = append(byPart[is.Part], is)
	}
	for _, p := range parts {
		renderIssueSection(&b, string(p), byPart[p])
	}

	if len(issues) > 0 {
		b.WriteString("\n")
		b.WriteString("  " + hintStyle.Render("Missing inputs become manual steps in the plan."))
		b.WriteString("\n")
	}
	return b.String()
}

func renderIssueSection(b *strings.Builder, title string, items []domain.InputIssue) {
	if len(items) == 0 {
		return
	}

	b.WriteString("\n")
	fmt.Fprintf(b, "  %s %s\n",
		sectionHeaderStyle.Render(title),
		dimStyle.Render(fmt.Sprintf("(%d)", len(items))),
	)
	for _, item := range items {
		fmt.Fprintf(b, "    %s %s  %s\n", warningItemStyle.Render("●"), padRight(item.Field, 22), faintStyle.Render(item.Message))
	}
}

// RenderScan renders what was detected in a project.
func RenderScan(scan *domain.ProjectScan) string {
	var b strings.Builder

	platform := string(scan.AppPlatform)
	if platform == "" {
		platform = "unknown"
	}
	line := titleStyle.Render(shortenPath(scan.RootPath)) + "  " + sectionHeaderStyle.Render(platform)
	detail := dimStyle.Render(fmt.Sprintf("android: %s   ios: %s", yesNo(scan.Platforms.Android), yesNo(scan.Platforms.IOS)))
	if scan.ReactNativeVersion != "" {
		detail += dimStyle.Render("   react-native " + scan.ReactNativeVersion)
	}
	b.WriteString(boxStyle.Render(line + "\n" + detail))
	b.WriteString("\n")

	if scan.HasAndroidApp() {
		l := scan.Android
		b.WriteString("\n")
		b.WriteString("  " + sectionHeaderStyle.Render("Android") + "\n")
		for _, row := range [][2]string{
			{"package", l.PackageName},
			{"dsl", string(l.DSL)},
			{"manifest", relPath(scan.RootPath, l.ManifestPath)},
			{"app build", relPath(scan.RootPath, l.AppBuildFile)},
			{"settings", relPath(scan.RootPath, l.SettingsFile)},
		} {
			if row[1] == "" || row[1] == "." {
				continue
			}
			fmt.Fprintf(&b, "    %s %s\n", dimStyle.Render(padRight(row[0], 10)), fileStyle.Render(row[1]))
		}
	}

	if len(scan.Notes) > 0 {
		b.WriteString("\n")
		b.WriteString("  " + sectionHeaderStyle.Render("Notes") + "\n")
		for _, n := range scan.Notes {
			fmt.Fprintf(&b, "    %s %s\n", infoTagStyle.Render("·"), n)
		}
	}
	if scan.GitDirty {
		b.WriteString("\n  " + warnTagStyle.Render("uncommitted changes") + "\n")
	}
	return b.String()
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}
