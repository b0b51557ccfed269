// Copyright (c) 2025 Keyledger Team
// Keyledger - cryptographic key metadata inventory
// This file defines the shared lipgloss styles and console summaries
// printed at the end of each command run.
package ui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/weylandt/keyledger/internal/i18n"
	"github.com/weylandt/keyledger/internal/inventory"
	"github.com/weylandt/keyledger/internal/model"
	"github.com/weylandt/keyledger/internal/rotation"
)

// colorPalette defines the core colors used in console output.
const (
	colorSubtle    = lipgloss.Color("240") // Muted gray
	colorHighlight = lipgloss.Color("81")  // A nice teal/cyan
	colorSpecial   = lipgloss.Color("208") // An orange for special attention
	colorError     = lipgloss.Color("196") // A bright red
	colorSuccess   = lipgloss.Color("40")  // A nice green
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(colorHighlight).
			Bold(true)

	errorStyle   = lipgloss.NewStyle().Foreground(colorError)
	successStyle = lipgloss.NewStyle().Foreground(colorSuccess)
	warnStyle    = lipgloss.NewStyle().Foreground(colorSpecial)
	subtleStyle  = lipgloss.NewStyle().Foreground(colorSubtle)
)

// maxListed caps how many errors and warnings the console summary prints
// before collapsing the rest into a count.
const maxListed = 10

// PrintBuildSummary renders the index build outcome.
func PrintBuildSummary(stats inventory.Stats) {
	fmt.Println(titleStyle.Render("=== " + i18n.T("summary.title") + " ==="))
	fmt.Printf("%s: %d\n", i18n.T("summary.files_processed"), stats.TotalFiles)
	fmt.Printf("%s: %s\n", i18n.T("summary.valid_keys"), successStyle.Render(fmt.Sprintf("%d", stats.ValidKeys)))
	fmt.Printf("%s: %s\n", i18n.T("summary.invalid_keys"), errorStyle.Render(fmt.Sprintf("%d", stats.InvalidKeys)))
	fmt.Printf("%s: %s\n", i18n.T("summary.duplicate_keys"), warnStyle.Render(fmt.Sprintf("%d", stats.DuplicateKeys)))

	if len(stats.EnvironmentCounts) > 0 {
		fmt.Println()
		fmt.Println(titleStyle.Render(i18n.T("summary.environment_distribution")))
		for _, env := range sortedKeys(stats.EnvironmentCounts) {
			fmt.Printf("  %s: %d\n", env, stats.EnvironmentCounts[env])
		}
	}
	if len(stats.ComplianceCounts) > 0 {
		fmt.Println()
		fmt.Println(titleStyle.Render(i18n.T("summary.compliance_distribution")))
		for _, class := range sortedKeys(stats.ComplianceCounts) {
			fmt.Printf("  %s: %d\n", class, stats.ComplianceCounts[class])
		}
	}

	printIssueList(i18n.T("summary.errors"), stats.Errors, errorStyle, "summary.more_errors")
	printIssueList(i18n.T("summary.warnings"), stats.Warnings, warnStyle, "summary.more_warnings")
}

func printIssueList(heading string, issues []string, style lipgloss.Style, moreKey string) {
	if len(issues) == 0 {
		return
	}
	fmt.Println()
	fmt.Printf("%s (%d):\n", style.Render(heading), len(issues))
	for i, issue := range issues {
		if i == maxListed {
			fmt.Println(subtleStyle.Render("  " + i18n.Tf(moreKey, map[string]interface{}{"Count": len(issues) - maxListed})))
			break
		}
		fmt.Printf("  - %s\n", issue)
	}
}

// PrintRotationSummary renders the rotation check outcome.
func PrintRotationSummary(result rotation.CheckResult) {
	fmt.Println(titleStyle.Render("=== " + i18n.T("rotation.title") + " ==="))
	fmt.Printf("%s: %s\n", i18n.T("rotation.keys_due"), errorStyle.Render(fmt.Sprintf("%d", len(result.Due))))
	fmt.Printf("%s: %s\n", i18n.T("rotation.keys_warning"), warnStyle.Render(fmt.Sprintf("%d", len(result.Approaching))))
	fmt.Printf("%s: %d\n", i18n.T("rotation.errors"), len(result.Errors))

	if len(result.Due) > 0 {
		fmt.Println()
		fmt.Println(titleStyle.Render(i18n.T("rotation.due_heading")))
		for _, key := range result.Due {
			fmt.Printf("  - %s (%s): %s\n", key.Alias, key.Environment, key.RotationStatus.Message)
		}
	}
	if len(result.Approaching) > 0 {
		fmt.Println()
		fmt.Println(titleStyle.Render(i18n.T("rotation.approaching_heading")))
		for _, key := range result.Approaching {
			fmt.Printf("  - %s (%s): %s\n", key.Alias, key.Environment, key.RotationStatus.Message)
		}
	}
	for _, msg := range result.Errors {
		fmt.Println(errorStyle.Render("  ! " + msg))
	}
}

// PrintComplianceSummary renders the fleet-wide compliance aggregate.
func PrintComplianceSummary(summary model.ComplianceSummary) {
	fmt.Println(titleStyle.Render("=== " + i18n.T("compliance.title") + " ==="))
	for _, fw := range model.Frameworks {
		fs := summary.Frameworks[fw]
		line := fmt.Sprintf("%s: %.2f%% compliant (%d/%d)", fs.Name, fs.ComplianceRate, fs.CompliantKeys, fs.ApplicableKeys)
		if fs.NonCompliant > 0 {
			fmt.Println(warnStyle.Render(line))
		} else {
			fmt.Println(line)
		}
	}
}

// PrintComplianceVerdict renders the changeset check result line.
func PrintComplianceVerdict(filesChecked int, allCompliant bool) {
	fmt.Printf("%s: %d\n", i18n.T("compliance.files_checked"), filesChecked)
	if allCompliant {
		fmt.Println(successStyle.Render(i18n.T("compliance.all_compliant")))
	} else {
		fmt.Println(errorStyle.Render(i18n.T("compliance.non_compliant")))
	}
}

// PrintValidationSummary renders the validation run outcome.
func PrintValidationSummary(filesValidated int, problems []string) {
	fmt.Println(titleStyle.Render("=== " + i18n.T("validate.title") + " ==="))
	fmt.Printf("%s: %d\n", i18n.T("validate.files_validated"), filesValidated)
	fmt.Printf("%s: %d\n", i18n.T("validate.errors_found"), len(problems))
	if len(problems) == 0 {
		fmt.Println(successStyle.Render(i18n.T("validate.all_passed")))
		return
	}
	for _, problem := range problems {
		fmt.Println(errorStyle.Render("  - " + problem))
	}
}

// PrintDuplicateSummary renders the duplicate check outcome.
func PrintDuplicateSummary(filesChecked int, issues []string) {
	fmt.Println(titleStyle.Render("=== " + i18n.T("duplicates.title") + " ==="))
	fmt.Printf("%s: %d\n", i18n.T("duplicates.files_checked"), filesChecked)
	fmt.Printf("%s: %d\n", i18n.T("duplicates.issues_found"), len(issues))
	if len(issues) == 0 {
		fmt.Println(successStyle.Render(i18n.T("duplicates.none_found")))
		return
	}
	for _, issue := range issues {
		if strings.Contains(issue, "Warning -") {
			fmt.Println(warnStyle.Render("  - " + issue))
		} else {
			fmt.Println(errorStyle.Render("  - " + issue))
		}
	}
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
