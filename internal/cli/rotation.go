// Copyright (c) 2025 Keyledger Team
// Keyledger - cryptographic key metadata inventory
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/weylandt/keyledger/internal/rotation"
	"github.com/weylandt/keyledger/internal/ui"
)

var (
	rotationInputDir     string
	rotationKeyID        string
	rotationForce        bool
	rotationOutputJSON   bool
	rotationWarningDays  int
	rotationCriticalDays int
)

// rotationMatrixEntry is the shape the rotation workflow consumes as its
// job matrix: identity fields only, plus the status message for warnings.
type rotationMatrixEntry struct {
	KeyID       string `json:"key_id"`
	Alias       string `json:"alias"`
	Environment string `json:"environment"`
	Owner       string `json:"owner"`
	Message     string `json:"message,omitempty"`
}

var rotationCmd = &cobra.Command{
	Use:   "rotation",
	Short: "Check which keys are due or approaching rotation",
	Long: `Rotation derives each active key's next due date from its creation
or last rotation timestamp and its rotation interval, then buckets keys
into due, approaching and healthy. Deprecated and revoked keys are
skipped, as are keys with auto rotation disabled, unless --force is set.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		inputDir := rotationInputDir
		if inputDir == "" {
			inputDir = appConfig.InputDir
		}

		warningDays := appConfig.Rotation.WarningDays
		if rotationWarningDays > 0 {
			warningDays = rotationWarningDays
		}
		criticalDays := appConfig.Rotation.CriticalDays
		if rotationCriticalDays > 0 {
			criticalDays = rotationCriticalDays
		}

		checker := rotation.NewChecker(inputDir)
		checker.Thresholds = rotation.Thresholds{
			WarningDays:  warningDays,
			CriticalDays: criticalDays,
		}
		checker.Force = rotationForce

		var result rotation.CheckResult
		if rotationKeyID != "" {
			result = checker.CheckKey(rotationKeyID)
		} else {
			result = checker.CheckAll()
		}

		ui.PrintRotationSummary(result)

		if rotationOutputJSON {
			if err := writeRotationMatrices(result); err != nil {
				return err
			}
		}

		if len(result.Errors) > 0 {
			return exitWithCode(2, "rotation check completed with %d errors", len(result.Errors))
		}
		return nil
	},
}

func writeRotationMatrices(result rotation.CheckResult) error {
	due := make([]rotationMatrixEntry, 0, len(result.Due))
	for _, key := range result.Due {
		due = append(due, rotationMatrixEntry{
			KeyID:       key.KeyID,
			Alias:       key.Alias,
			Environment: key.Environment,
			Owner:       key.Owner,
		})
	}
	approaching := make([]rotationMatrixEntry, 0, len(result.Approaching))
	for _, key := range result.Approaching {
		approaching = append(approaching, rotationMatrixEntry{
			KeyID:       key.KeyID,
			Alias:       key.Alias,
			Environment: key.Environment,
			Owner:       key.Owner,
			Message:     key.RotationStatus.Message,
		})
	}

	if err := writeJSONFile("keys_to_rotate.json", due); err != nil {
		return err
	}
	return writeJSONFile("warning_keys.json", approaching)
}

func writeJSONFile(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

func init() {
	rotationCmd.Flags().StringVar(&rotationInputDir, "input-dir", "", "Inventory directory (overrides config)")
	rotationCmd.Flags().StringVar(&rotationKeyID, "key-id", "", "Check a single key by ID")
	rotationCmd.Flags().BoolVar(&rotationForce, "force", false, "Evaluate every key regardless of status and auto-rotation flags")
	rotationCmd.Flags().BoolVar(&rotationOutputJSON, "output-json", false, "Write keys_to_rotate.json and warning_keys.json for the rotation workflow")
	rotationCmd.Flags().IntVar(&rotationWarningDays, "warning-days", 0, "Days before due to start warning (overrides config)")
	rotationCmd.Flags().IntVar(&rotationCriticalDays, "critical-days", 0, "Days before due to escalate to critical (overrides config)")
}
