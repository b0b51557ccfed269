// Copyright (c) 2025 Keyledger Team
// Keyledger - cryptographic key metadata inventory
// This source code is licensed under the MIT license found in the LICENSE file.

package rotation

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/weylandt/keyledger/internal/inventory"
	"github.com/weylandt/keyledger/internal/model"
)

// KeyStatus pairs one key's identity with its computed rotation status.
type KeyStatus struct {
	KeyID                string               `json:"key_id"`
	Alias                string               `json:"alias"`
	Environment          string               `json:"environment"`
	Owner                string               `json:"owner"`
	RotationIntervalDays int                  `json:"rotation_interval_days"`
	RotationStatus       model.RotationStatus `json:"rotation_status"`
	FilePath             string               `json:"file_path"`
	AutoRotationEnabled  bool                 `json:"auto_rotation_enabled"`
	Status               string               `json:"status"`
}

// CheckResult splits the corpus into keys needing action now and keys
// approaching their due date, plus any per-file errors encountered.
type CheckResult struct {
	Due         []KeyStatus `json:"keys_to_rotate"`
	Approaching []KeyStatus `json:"warning_keys"`
	Errors      []string    `json:"errors"`
}

// Checker scans an inventory directory for keys due for rotation.
type Checker struct {
	InputDir   string
	Thresholds Thresholds

	// Force evaluates every record regardless of lifecycle status or the
	// auto-rotation flag, and puts every evaluated key into the due list.
	Force bool

	// Now is the evaluation instant; the zero value means time.Now.
	Now time.Time
}

// NewChecker returns a checker over the given inventory directory.
func NewChecker(inputDir string) *Checker {
	return &Checker{InputDir: inputDir, Thresholds: DefaultThresholds()}
}

// CheckAll evaluates every key document in the inventory directory.
func (c *Checker) CheckAll() CheckResult {
	files, err := inventory.ListDocuments(c.InputDir)
	if err != nil {
		return CheckResult{Errors: []string{err.Error()}}
	}
	return c.checkFiles(files)
}

// CheckKey evaluates a single key by its id, looking for <key_id>.yaml or
// <key_id>.yml in the inventory directory.
func (c *Checker) CheckKey(keyID string) CheckResult {
	path := filepath.Join(c.InputDir, keyID+".yaml")
	if _, err := os.Stat(path); err != nil {
		path = filepath.Join(c.InputDir, keyID+".yml")
		if _, err := os.Stat(path); err != nil {
			return CheckResult{Errors: []string{fmt.Sprintf("Key file not found for %s", keyID)}}
		}
	}
	return c.checkFiles([]string{path})
}

func (c *Checker) checkFiles(files []string) CheckResult {
	now := c.Now
	if now.IsZero() {
		now = time.Now()
	}

	var result CheckResult
	for _, path := range files {
		rec, err := inventory.LoadRecord(path)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Could not load %s: %v", path, err))
			continue
		}

		// Non-active keys and keys with auto-rotation explicitly turned
		// off are not due for rotation unless forced.
		if rec.Status() != model.StatusActive && !c.Force {
			continue
		}
		if !rec.AutoRotationEnabled() && !c.Force {
			continue
		}

		status := Compute(rec, now, c.Thresholds)
		if status.Status == model.RotationError {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %s", filepath.Base(path), status.Message))
			if !c.Force {
				continue
			}
		}

		entry := KeyStatus{
			KeyID:                rec.KeyID,
			Alias:                rec.Alias,
			Environment:          rec.Environment,
			Owner:                rec.Owner,
			RotationIntervalDays: rec.RotationIntervalDays,
			RotationStatus:       status,
			FilePath:             path,
			AutoRotationEnabled:  rec.AutoRotationEnabled(),
			Status:               string(rec.Status()),
		}

		switch {
		case status.Status == model.RotationOverdue || status.Status == model.RotationCritical || c.Force:
			result.Due = append(result.Due, entry)
		case status.Status == model.RotationWarning:
			result.Approaching = append(result.Approaching, entry)
		}
	}
	return result
}
