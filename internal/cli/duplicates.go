// Copyright (c) 2025 Keyledger Team
// Keyledger - cryptographic key metadata inventory
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/weylandt/keyledger/internal/inventory"
	"github.com/weylandt/keyledger/internal/logging"
	"github.com/weylandt/keyledger/internal/model"
	"github.com/weylandt/keyledger/internal/ui"
)

var (
	duplicatesInputDir    string
	duplicatesResultsFile string
)

var duplicatesCmd = &cobra.Command{
	Use:   "duplicates <file>...",
	Short: "Check new key files for duplicate IDs, aliases and broken references",
	Long: `Duplicates compares the given changeset files against the existing
inventory and against each other. Duplicate key IDs are errors, duplicate
aliases are warnings, and depends_on/related_keys references must resolve
to a known key ID.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		inputDir := duplicatesInputDir
		if inputDir == "" {
			inputDir = appConfig.InputDir
		}

		newFiles := make(map[string]bool, len(args))
		var files []string
		for _, path := range args {
			if strings.TrimSpace(path) == "" {
				continue
			}
			files = append(files, path)
			if abs, err := filepath.Abs(path); err == nil {
				newFiles[abs] = true
			}
		}

		checker := inventory.NewChangesetChecker()
		known := make(map[string]bool)

		existing, err := inventory.ListDocuments(inputDir)
		if err != nil {
			logging.Warnf("could not scan inventory directory %s: %v", inputDir, err)
		}
		for _, path := range existing {
			if abs, absErr := filepath.Abs(path); absErr == nil && newFiles[abs] {
				continue
			}
			rec, loadErr := inventory.LoadRecord(path)
			if loadErr != nil {
				logging.Warnf("could not load %s: %v", path, loadErr)
				continue
			}
			checker.AddExisting(rec.KeyID, rec.Alias)
			if rec.KeyID != "" {
				known[rec.KeyID] = true
			}
		}

		// References may point at keys introduced in the same changeset,
		// so collect the new IDs before checking.
		var loadedFiles []loadedRecord
		for _, path := range files {
			rec, loadErr := inventory.LoadRecord(path)
			loadedFiles = append(loadedFiles, loadedRecord{path: path, rec: rec, err: loadErr})
			if loadErr == nil && rec.KeyID != "" {
				known[rec.KeyID] = true
			}
		}

		issues := changesetIssues(checker, loadedFiles, known)

		if err := writeResultsFile(duplicatesResultsFile, issues,
			"❌ Duplicate Check Errors:", "✅ No duplicates found!"); err != nil {
			return err
		}

		ui.PrintDuplicateSummary(len(files), issues)
		if hasBlockingIssue(issues) {
			return exitWithCode(1, "")
		}
		return nil
	},
}

type loadedRecord struct {
	path string
	rec  *model.KeyRecord
	err  error
}

// changesetIssues runs the duplicate and reference checks over the loaded
// changeset. Files that fail to decode are skipped with a warning; they get
// rejected by the validation gate instead.
func changesetIssues(checker *inventory.ChangesetChecker, loadedFiles []loadedRecord, known map[string]bool) []string {
	var issues []string
	for _, lf := range loadedFiles {
		filename := filepath.Base(lf.path)
		if lf.err != nil {
			logging.Warnf("could not load %s, skipping duplicate check: %v", filename, lf.err)
			continue
		}
		issues = append(issues, checker.Check(lf.rec, filename)...)
		issues = append(issues, inventory.CheckReferences(lf.rec, filename, known)...)
	}
	return issues
}

// hasBlockingIssue reports whether any finding is an error; alias
// collisions are surfaced as warnings and do not fail the check.
func hasBlockingIssue(issues []string) bool {
	for _, issue := range issues {
		if !strings.Contains(issue, "Warning -") {
			return true
		}
	}
	return false
}

func init() {
	duplicatesCmd.Flags().StringVar(&duplicatesInputDir, "input-dir", "", "Inventory directory (overrides config)")
	duplicatesCmd.Flags().StringVar(&duplicatesResultsFile, "results-file", "duplicate-check-results.txt", "File to write duplicate findings to")
}
