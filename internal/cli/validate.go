// Copyright (c) 2025 Keyledger Team
// Keyledger - cryptographic key metadata inventory
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/weylandt/keyledger/internal/inventory"
	"github.com/weylandt/keyledger/internal/logging"
	"github.com/weylandt/keyledger/internal/ui"
)

var (
	validateResultsFile     string
	validateStrictFilenames bool
)

var validateCmd = &cobra.Command{
	Use:   "validate <file>...",
	Short: "Validate key files against the enhanced key schema",
	Long: `Validate checks each given YAML record against the enhanced key
schema: required fields, identifier formats, enum values and the optional
lifecycle, technical, relationships, operational, audit and metadata
sections. Findings are written to a results file for CI to post.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		validator := inventory.NewValidator(schemaPolicy())
		validator.StrictFilenames = validateStrictFilenames

		var problems []string
		filesValidated := 0
		for _, path := range args {
			if strings.TrimSpace(path) == "" {
				continue
			}
			logging.Infof("validating %s", path)
			problems = append(problems, validateFile(validator, path)...)
			filesValidated++
		}

		if err := writeResultsFile(validateResultsFile, problems,
			"❌ Validation Errors:", "✅ All validations passed!"); err != nil {
			return err
		}

		ui.PrintValidationSummary(filesValidated, problems)
		if len(problems) > 0 {
			return exitWithCode(1, "")
		}
		return nil
	},
}

func validateFile(validator *inventory.Validator, path string) []string {
	filename := filepath.Base(path)

	raw, err := inventory.LoadDocument(path)
	if err != nil {
		if errors.Is(err, inventory.ErrEmptyDocument) {
			return []string{fmt.Sprintf("%s: File is empty", filename)}
		}
		var pe *inventory.ParseError
		if errors.As(err, &pe) {
			return []string{pe.Error()}
		}
		return []string{fmt.Sprintf("%s: %v", filename, err)}
	}

	if _, err := validator.Validate(raw, filename); err != nil {
		var ve *inventory.ValidationError
		if errors.As(err, &ve) {
			prefixed := make([]string, 0, len(ve.Problems))
			for _, problem := range ve.Problems {
				prefixed = append(prefixed, fmt.Sprintf("%s: %s", filename, problem))
			}
			return prefixed
		}
		return []string{fmt.Sprintf("%s: %v", filename, err)}
	}
	return nil
}

// writeResultsFile writes the CI artifact the review workflow posts as a
// comment: a bulleted issue list, or the all-clear line.
func writeResultsFile(path string, issues []string, header, allClear string) error {
	var b strings.Builder
	if len(issues) > 0 {
		b.WriteString(header + "\n\n")
		for _, issue := range issues {
			b.WriteString("• " + issue + "\n")
		}
	} else {
		b.WriteString(allClear + "\n")
	}
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("writing results file: %w", err)
	}
	return nil
}

func init() {
	validateCmd.Flags().StringVar(&validateResultsFile, "results-file", "validation-errors.txt", "File to write validation findings to")
	validateCmd.Flags().BoolVar(&validateStrictFilenames, "strict-filenames", true, "Require file names to match <key_id>.yaml")
}
