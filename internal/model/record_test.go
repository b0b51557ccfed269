// Copyright (c) 2025 Keyledger Team
// Keyledger - cryptographic key metadata inventory
// This source code is licensed under the MIT license found in the LICENSE file.

package model

import (
	"testing"
	"time"
)

func TestKeyRecordString(t *testing.T) {
	r := KeyRecord{KeyID: "abc-123", Alias: "payment-gateway"}
	if got := r.String(); got != "payment-gateway (abc-123)" {
		t.Errorf("unexpected KeyRecord.String(): %q", got)
	}
}

func TestStatusDefaultsToActive(t *testing.T) {
	r := KeyRecord{}
	if r.Status() != StatusActive {
		t.Errorf("missing lifecycle should default to active, got %q", r.Status())
	}

	r.Lifecycle = &Lifecycle{}
	if r.Status() != StatusActive {
		t.Errorf("empty status should default to active, got %q", r.Status())
	}

	r.Lifecycle.Status = StatusRevoked
	if r.Status() != StatusRevoked {
		t.Errorf("explicit status should win, got %q", r.Status())
	}
}

func TestAutoRotationDefaultsToEnabled(t *testing.T) {
	r := KeyRecord{}
	if !r.AutoRotationEnabled() {
		t.Error("missing operational section should mean auto rotation on")
	}

	off := false
	r.Operational = &Operational{AutoRotationEnabled: &off}
	if r.AutoRotationEnabled() {
		t.Error("explicit false should disable auto rotation")
	}
}

func TestParseTimestampFormats(t *testing.T) {
	for _, tc := range []struct {
		in   string
		want time.Time
	}{
		{"2025-01-15T10:30:00Z", time.Date(2025, 1, 15, 10, 30, 0, 0, time.UTC)},
		{"2025-01-15T10:30:00", time.Date(2025, 1, 15, 10, 30, 0, 0, time.UTC)},
		{"2025-01-15 10:30:00", time.Date(2025, 1, 15, 10, 30, 0, 0, time.UTC)},
		{"2025-01-15", time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)},
	} {
		got, err := ParseTimestamp(tc.in)
		if err != nil {
			t.Errorf("ParseTimestamp(%q) failed: %v", tc.in, err)
			continue
		}
		if !got.Equal(tc.want) {
			t.Errorf("ParseTimestamp(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}

	for _, bad := range []string{"", "not-a-date", "15/01/2025"} {
		if _, err := ParseTimestamp(bad); err == nil {
			t.Errorf("ParseTimestamp(%q) should fail", bad)
		}
	}
}

func TestOverallVerdict(t *testing.T) {
	report := ComplianceReport{Frameworks: map[Framework]ComplianceVerdict{
		FrameworkPCIDSS: {Applicable: true, Status: VerdictCompliant},
		FrameworkNIST:   {Applicable: true, Status: VerdictCompliant},
		FrameworkSOX:    {Status: VerdictNotApplicable},
	}}
	if report.Overall() != VerdictCompliant {
		t.Errorf("not_applicable frameworks should not affect the overall verdict")
	}

	report.Frameworks[FrameworkNIST] = ComplianceVerdict{Applicable: true, Status: VerdictNonCompliant}
	if report.Overall() != VerdictNonCompliant {
		t.Error("one failing framework should make the record non-compliant")
	}
}
