// Copyright (c) 2025 Keyledger Team
// Keyledger - cryptographic key metadata inventory
// This source code is licensed under the MIT license found in the LICENSE file.

package compliance

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weylandt/keyledger/internal/model"
)

func boolPtr(b bool) *bool { return &b }
func intPtr(n int) *int    { return &n }

func pciRecord() *model.KeyRecord {
	return &model.KeyRecord{
		KeyID:                "pci-key",
		Alias:                "pci",
		Owner:                "owner@example.com",
		RotationIntervalDays: 90,
		Compliance: model.Compliance{
			PCIScope:           "cardholder-data",
			NISTClassification: "confidential",
		},
		Technical: &model.Technical{KeyType: "rsa", KeySize: intPtr(2048)},
		Audit: &model.Audit{
			AccessLogsEnabled:    boolPtr(true),
			UsageTrackingEnabled: boolPtr(true),
		},
	}
}

func TestPCINotApplicableOutsideScope(t *testing.T) {
	rec := pciRecord()
	rec.Compliance.PCIScope = "none"

	verdict := CheckPCI(rec)
	assert.False(t, verdict.Applicable)
	assert.Equal(t, model.VerdictNotApplicable, verdict.Status)
	assert.Equal(t, 100.0, verdict.Score)
	assert.Empty(t, verdict.Requirements)
}

func TestPCICompliantRecordScoresFull(t *testing.T) {
	verdict := CheckPCI(pciRecord())
	require.True(t, verdict.Applicable)
	assert.Equal(t, model.VerdictCompliant, verdict.Status)
	assert.Equal(t, 100.0, verdict.Score)
	assert.Empty(t, verdict.Violations)
	for _, name := range []string{"strong_crypto", "min_key_size", "access_logging", "usage_tracking", "rotation_frequency"} {
		assert.True(t, verdict.Requirements[name], name)
	}
}

func TestPCISmallRSAKeyFails(t *testing.T) {
	rec := pciRecord()
	rec.Technical.KeySize = intPtr(1024)

	verdict := CheckPCI(rec)
	assert.Equal(t, model.VerdictNonCompliant, verdict.Status)
	assert.False(t, verdict.Requirements["min_key_size"])
	assert.Contains(t, verdict.Violations, "PCI DSS 3.4: RSA key size must be at least 2048 bits")
	assert.Equal(t, 80.0, verdict.Score)
}

func TestPCICardholderRotationCeiling(t *testing.T) {
	rec := pciRecord()
	rec.RotationIntervalDays = 730

	verdict := CheckPCI(rec)
	assert.False(t, verdict.Requirements["rotation_frequency"])

	rec.Compliance.PCIScope = "out-of-scope"
	verdict = CheckPCI(rec)
	assert.True(t, verdict.Requirements["rotation_frequency"],
		"annual rotation only binds cardholder-data scope")
}

func TestSOXSegregationOfDuties(t *testing.T) {
	rec := &model.KeyRecord{
		Purpose:    "Financial reporting",
		Compliance: model.Compliance{SOXApplicable: boolPtr(true)},
		Lifecycle:  &model.Lifecycle{CreatedBy: "alex", ApprovedBy: "alex"},
		Audit:      &model.Audit{AccessLogsEnabled: boolPtr(true)},
	}

	verdict := CheckSOX(rec)
	require.True(t, verdict.Applicable)
	assert.False(t, verdict.Requirements["segregation_of_duties"])
	assert.Contains(t, verdict.Violations, "SOX: Creator and approver must be different")

	rec.Lifecycle.ApprovedBy = "sam"
	verdict = CheckSOX(rec)
	assert.Equal(t, model.VerdictCompliant, verdict.Status)
	assert.Equal(t, 100.0, verdict.Score)
}

func TestSOXGateRequiresFlag(t *testing.T) {
	rec := &model.KeyRecord{Compliance: model.Compliance{}}
	assert.False(t, CheckSOX(rec).Applicable)

	rec.Compliance.SOXApplicable = boolPtr(false)
	assert.False(t, CheckSOX(rec).Applicable)
}

func TestGDPRRequirements(t *testing.T) {
	rec := &model.KeyRecord{
		Compliance: model.Compliance{GDPRApplicable: boolPtr(true)},
		Technical:  &model.Technical{KeyType: "api-key"},
	}

	verdict := CheckGDPR(rec)
	require.True(t, verdict.Applicable)
	assert.Equal(t, model.VerdictNonCompliant, verdict.Status)
	assert.False(t, verdict.Requirements["retention_period"])
	assert.False(t, verdict.Requirements["encryption"])
	assert.False(t, verdict.Requirements["access_controls"])
	assert.Equal(t, 0.0, verdict.Score)

	rec.Compliance.RetentionPeriodDays = intPtr(365)
	rec.Technical.KeyType = "symmetric"
	rec.Audit = &model.Audit{AccessLogsEnabled: boolPtr(true)}
	verdict = CheckGDPR(rec)
	assert.Equal(t, model.VerdictCompliant, verdict.Status)
}

func TestNISTAlwaysApplies(t *testing.T) {
	rec := &model.KeyRecord{Owner: "owner@example.com", RotationIntervalDays: 90}
	verdict := CheckNIST(rec)
	assert.True(t, verdict.Applicable)
}

func TestNISTRotationCeilingPerClassification(t *testing.T) {
	for class, maxDays := range map[string]int{
		"top-secret":   90,
		"secret":       180,
		"confidential": 365,
		"internal":     1095,
	} {
		rec := &model.KeyRecord{
			Owner:                "owner@example.com",
			RotationIntervalDays: maxDays,
			Compliance:           model.Compliance{NISTClassification: class},
			Technical:            &model.Technical{HighAvailability: boolPtr(true), BackupLocation: "s3://backups"},
			Operational: &model.Operational{
				MonitoringEnabled:          boolPtr(true),
				EmergencyRevocationEnabled: boolPtr(true),
			},
		}
		verdict := CheckNIST(rec)
		assert.True(t, verdict.Requirements["rotation_frequency"], class)

		rec.RotationIntervalDays = maxDays + 1
		verdict = CheckNIST(rec)
		assert.False(t, verdict.Requirements["rotation_frequency"], class)
	}
}

func TestNISTClassifiedDemandsResilience(t *testing.T) {
	rec := &model.KeyRecord{
		Owner:                "owner@example.com",
		RotationIntervalDays: 90,
		Compliance:           model.Compliance{NISTClassification: "secret"},
		Operational: &model.Operational{
			MonitoringEnabled:          boolPtr(true),
			EmergencyRevocationEnabled: boolPtr(true),
		},
	}

	verdict := CheckNIST(rec)
	assert.False(t, verdict.Requirements["high_availability"])
	assert.False(t, verdict.Requirements["backup_recovery"])

	rec.Compliance.NISTClassification = "internal"
	verdict = CheckNIST(rec)
	assert.True(t, verdict.Requirements["high_availability"],
		"internal data does not demand high availability")
	assert.True(t, verdict.Requirements["backup_recovery"])
}

func TestEvaluateCoversAllFrameworks(t *testing.T) {
	report := Evaluate(pciRecord())
	assert.Equal(t, "pci-key", report.KeyID)
	require.Len(t, report.Frameworks, 4)
	for _, fw := range model.Frameworks {
		_, present := report.Frameworks[fw]
		assert.True(t, present, string(fw))
	}
}

func TestScoreRounding(t *testing.T) {
	// 2 of 3 requirements passing is 66.67 after rounding.
	s := score(map[string]bool{"a": true, "b": true, "c": false})
	assert.Equal(t, 66.67, s)
}
