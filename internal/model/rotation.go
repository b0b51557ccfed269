// Copyright (c) 2025 Keyledger Team
// Keyledger - cryptographic key metadata inventory
// This source code is licensed under the MIT license found in the LICENSE file.

package model

import "time"

// RotationState classifies how urgently a key needs rotation.
type RotationState string

const (
	// RotationOverdue means the rotation due date has passed.
	RotationOverdue RotationState = "overdue"

	// RotationCritical means the due date is at most the critical
	// threshold (default seven days) away.
	RotationCritical RotationState = "critical"

	// RotationWarning means the due date is inside the warning window
	// (default thirty days).
	RotationWarning RotationState = "warning"

	// RotationOK means no action is needed yet.
	RotationOK RotationState = "ok"

	// RotationError means the status could not be computed, usually
	// because created_at is missing or unparseable. This is a reportable
	// outcome, not a failure of the calculator.
	RotationError RotationState = "error"
)

// RotationStatus is the derived, per-run rotation posture of one key.
// DaysRemaining is negative when the key is overdue. The numeric and date
// fields are nil when Status is RotationError.
type RotationStatus struct {
	Status          RotationState `json:"status"`
	Message         string        `json:"message"`
	DaysRemaining   *int          `json:"days_remaining"`
	NextRotationDue *time.Time    `json:"next_rotation_due"`
	ReferenceDate   *time.Time    `json:"reference_date,omitempty"`
}
