// Copyright (c) 2025 Keyledger Team
// Keyledger - cryptographic key metadata inventory
// This source code is licensed under the MIT license found in the LICENSE file.

// package rotation derives rotation posture from key metadata: when each
// key is next due, how many days remain, and which severity bucket that
// falls into.
package rotation

import (
	"fmt"
	"math"
	"time"

	"github.com/weylandt/keyledger/internal/model"
)

// Thresholds are the day windows for the warning and critical buckets.
type Thresholds struct {
	WarningDays  int
	CriticalDays int
}

// DefaultThresholds returns the standard 30/7 day windows.
func DefaultThresholds() Thresholds {
	return Thresholds{WarningDays: 30, CriticalDays: 7}
}

// Compute derives the rotation status of one record at the given instant.
// The reference date is lifecycle.last_rotated_at when present and
// parseable, else created_at. A missing or unparseable created_at yields a
// RotationError status with nil numeric fields; it never fails outright
// because an uncomputable status is a reportable outcome.
func Compute(rec *model.KeyRecord, now time.Time, thresholds Thresholds) model.RotationStatus {
	if rec.CreatedAt == "" {
		return model.RotationStatus{
			Status:  model.RotationError,
			Message: "No created_at date found",
		}
	}

	createdAt, err := rec.CreatedTime()
	if err != nil {
		return model.RotationStatus{
			Status:  model.RotationError,
			Message: fmt.Sprintf("Date parsing error: %v", err),
		}
	}

	reference := createdAt
	if rec.Lifecycle != nil && rec.Lifecycle.LastRotatedAt != "" {
		if lastRotated, err := model.ParseTimestamp(rec.Lifecycle.LastRotatedAt); err == nil {
			reference = lastRotated
		}
	}

	interval := rec.RotationIntervalDays
	if interval == 0 {
		interval = 365
	}

	nextDue := reference.AddDate(0, 0, interval)
	daysRemaining := int(math.Floor(nextDue.Sub(now).Hours() / 24))

	var state model.RotationState
	var message string
	switch {
	case daysRemaining < 0:
		state = model.RotationOverdue
		message = fmt.Sprintf("%d days overdue", -daysRemaining)
	case daysRemaining <= thresholds.CriticalDays:
		state = model.RotationCritical
		message = fmt.Sprintf("%d days remaining (critical)", daysRemaining)
	case daysRemaining <= thresholds.WarningDays:
		state = model.RotationWarning
		message = fmt.Sprintf("%d days remaining (warning)", daysRemaining)
	default:
		state = model.RotationOK
		message = fmt.Sprintf("%d days remaining", daysRemaining)
	}

	return model.RotationStatus{
		Status:          state,
		Message:         message,
		DaysRemaining:   &daysRemaining,
		NextRotationDue: &nextDue,
		ReferenceDate:   &reference,
	}
}
