// Copyright (c) 2025 Keyledger Team
// Keyledger - cryptographic key metadata inventory
// This source code is licensed under the MIT license found in the LICENSE file.

package rotation

import (
	"testing"
	"time"

	"github.com/weylandt/keyledger/internal/model"
)

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func record(createdDaysAgo, interval int) *model.KeyRecord {
	return &model.KeyRecord{
		KeyID:                "test-key",
		Alias:                "test",
		CreatedAt:            testNow.AddDate(0, 0, -createdDaysAgo).Format(time.RFC3339),
		RotationIntervalDays: interval,
	}
}

func TestComputeCriticalBoundary(t *testing.T) {
	// Interval 30, created 23 days ago: 7 days remain, which is exactly
	// the critical threshold.
	status := Compute(record(23, 30), testNow, DefaultThresholds())
	if status.Status != model.RotationCritical {
		t.Errorf("expected critical at 7 days remaining, got %q", status.Status)
	}
	if status.DaysRemaining == nil || *status.DaysRemaining != 7 {
		t.Errorf("expected 7 days remaining, got %v", status.DaysRemaining)
	}
	if status.Message != "7 days remaining (critical)" {
		t.Errorf("unexpected message: %q", status.Message)
	}
}

func TestComputeOverdue(t *testing.T) {
	status := Compute(record(40, 30), testNow, DefaultThresholds())
	if status.Status != model.RotationOverdue {
		t.Errorf("expected overdue, got %q", status.Status)
	}
	if status.DaysRemaining == nil || *status.DaysRemaining != -10 {
		t.Errorf("expected -10 days remaining, got %v", status.DaysRemaining)
	}
	if status.Message != "10 days overdue" {
		t.Errorf("unexpected message: %q", status.Message)
	}
}

func TestComputeWarningAndOK(t *testing.T) {
	status := Compute(record(10, 30), testNow, DefaultThresholds())
	if status.Status != model.RotationWarning {
		t.Errorf("expected warning at 20 days remaining, got %q", status.Status)
	}

	status = Compute(record(10, 365), testNow, DefaultThresholds())
	if status.Status != model.RotationOK {
		t.Errorf("expected ok at 355 days remaining, got %q", status.Status)
	}
}

func TestComputeUsesLastRotatedAt(t *testing.T) {
	rec := record(400, 365)
	rec.Lifecycle = &model.Lifecycle{
		LastRotatedAt: testNow.AddDate(0, 0, -10).Format(time.RFC3339),
	}
	status := Compute(rec, testNow, DefaultThresholds())
	if status.Status != model.RotationOK {
		t.Errorf("last_rotated_at should reset the clock, got %q", status.Status)
	}
	if status.DaysRemaining == nil || *status.DaysRemaining != 355 {
		t.Errorf("expected 355 days remaining, got %v", status.DaysRemaining)
	}
}

func TestComputeUnparseableLastRotatedFallsBack(t *testing.T) {
	rec := record(40, 30)
	rec.Lifecycle = &model.Lifecycle{LastRotatedAt: "garbage"}
	status := Compute(rec, testNow, DefaultThresholds())
	if status.Status != model.RotationOverdue {
		t.Errorf("unparseable last_rotated_at should fall back to created_at, got %q", status.Status)
	}
}

func TestComputeDefaultInterval(t *testing.T) {
	rec := record(100, 0)
	status := Compute(rec, testNow, DefaultThresholds())
	if status.DaysRemaining == nil || *status.DaysRemaining != 265 {
		t.Errorf("zero interval should default to 365 days, got %v", status.DaysRemaining)
	}
}

func TestComputeErrorStatuses(t *testing.T) {
	rec := &model.KeyRecord{KeyID: "no-date"}
	status := Compute(rec, testNow, DefaultThresholds())
	if status.Status != model.RotationError {
		t.Errorf("expected error status, got %q", status.Status)
	}
	if status.Message != "No created_at date found" {
		t.Errorf("unexpected message: %q", status.Message)
	}
	if status.DaysRemaining != nil || status.NextRotationDue != nil {
		t.Error("error status should carry no numeric fields")
	}

	rec.CreatedAt = "not-a-date"
	status = Compute(rec, testNow, DefaultThresholds())
	if status.Status != model.RotationError {
		t.Errorf("expected error status for unparseable date, got %q", status.Status)
	}
}
