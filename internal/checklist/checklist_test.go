// Copyright (c) 2025 Keyledger Team
// Keyledger - cryptographic key metadata inventory
// This source code is licensed under the MIT license found in the LICENSE file.

package checklist

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weylandt/keyledger/internal/model"
)

var checklistNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func fixedGenerator() *Generator {
	return &Generator{Now: func() time.Time { return checklistNow }}
}

func boolPtr(v bool) *bool { return &v }

func intPtr(v int) *int { return &v }

func baseRecord() *model.KeyRecord {
	return &model.KeyRecord{
		KeyID:                "3f2b8c9a-1d4e-4f6a-8b2c-9d0e1f2a3b4c",
		Alias:                "payments-signing",
		Environment:          "staging",
		Owner:                "owner@example.com",
		Purpose:              "Signs settlement batches",
		RotationIntervalDays: 90,
		Compliance: model.Compliance{
			PCIScope:           "cardholder-data",
			NISTClassification: "confidential",
		},
	}
}

func TestForKeyBaseSections(t *testing.T) {
	out := fixedGenerator().ForKey(baseRecord(), "payments-signing.yaml")

	assert.Contains(t, out, "### 🔑 Key: payments-signing (3f2b8c9a-1d4e-4f6a-8b2c-9d0e1f2a3b4c)")
	assert.Contains(t, out, "**File:** `payments-signing.yaml`")
	assert.Contains(t, out, "**Technical Review:**")
	assert.Contains(t, out, "**Business Review:**")
	assert.Contains(t, out, "**Security Review:**")
	assert.Contains(t, out, "**Operational Review:**")
	assert.Contains(t, out, "**Final Approval:**")
	assert.Contains(t, out, "- [ ] PCI scope (cardholder-data) is correctly classified")
	assert.Contains(t, out, "- [ ] NIST classification (confidential) is appropriate")
	assert.Contains(t, out, "- [ ] Rotation interval (90 days) is appropriate for the risk level")
	assert.Contains(t, out, "- [ ] Risk assessment (medium) is accurate")

	assert.NotContains(t, out, "PRODUCTION KEY")
	assert.NotContains(t, out, "High-Risk Key Additional Checks")
}

func TestForKeyProductionSection(t *testing.T) {
	rec := baseRecord()
	rec.Environment = "production"

	out := fixedGenerator().ForKey(rec, "k.yaml")
	assert.Contains(t, out, "- [ ] **PRODUCTION KEY:** Extra scrutiny applied")
	assert.Contains(t, out, "- [ ] Non-production alternative considered and rejected")
}

func TestForKeyHighRiskSection(t *testing.T) {
	byRisk := baseRecord()
	byRisk.Metadata = &model.Metadata{RiskAssessment: "critical"}

	byClass := baseRecord()
	byClass.Compliance.NISTClassification = "top-secret"

	for _, rec := range []*model.KeyRecord{byRisk, byClass} {
		out := fixedGenerator().ForKey(rec, "k.yaml")
		assert.Contains(t, out, "**High-Risk Key Additional Checks:**")
		assert.Contains(t, out, "- [ ] Security team has reviewed and approved")
	}
}

func TestForKeyOptionalSections(t *testing.T) {
	rec := baseRecord()
	rec.Technical = &model.Technical{
		KeyType:          "rsa",
		KeySize:          intPtr(4096),
		HighAvailability: boolPtr(true),
		BackupLocation:   "vault-dr",
	}
	rec.Operational = &model.Operational{CostCenter: "CC-100", ProjectCode: "PAY-7"}
	rec.Relationships = &model.Relationships{
		DependsOn: []string{"root-ca"},
		UsedBy:    []string{"gateway", "settlement"},
	}
	rec.Lifecycle = &model.Lifecycle{EmergencyContact: "oncall@example.com"}
	rec.Compliance.SOXApplicable = boolPtr(true)
	rec.Compliance.GDPRApplicable = boolPtr(true)
	rec.Compliance.RetentionPeriodDays = intPtr(365)

	out := fixedGenerator().ForKey(rec, "k.yaml")
	assert.Contains(t, out, "- [ ] Key type (rsa) is appropriate for the use case")
	assert.Contains(t, out, "- [ ] Key size (4096) meets security requirements")
	assert.Contains(t, out, "- [ ] High availability configuration is justified")
	assert.Contains(t, out, "- [ ] Backup location is properly configured")
	assert.Contains(t, out, "- [ ] Cost center is valid and approved for key management expenses")
	assert.Contains(t, out, "- [ ] Project code is active and authorized")
	assert.Contains(t, out, "- [ ] SOX requirements are understood and will be met")
	assert.Contains(t, out, "- [ ] Data retention period (365 days) is compliant")
	assert.Contains(t, out, "- [ ] All dependency keys exist and are accessible")
	assert.Contains(t, out, "- [ ] Services using this key (gateway, settlement) are documented")
	assert.Contains(t, out, "- [ ] Emergency contact (oncall@example.com) is valid and responsive")
}

func TestForChangesetDocument(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "api-gateway.yaml")
	record := `key_id: 3f2b8c9a-1d4e-4f6a-8b2c-9d0e1f2a3b4c
alias: api-gateway
environment: prod
owner: owner@example.com
purpose: TLS termination
created_at: "2025-01-15T10:00:00Z"
rotation_interval_days: 90
key_store: vault
tags: [gateway]
compliance:
  pci_scope: none
  nist_classification: internal
`
	require.NoError(t, os.WriteFile(path, []byte(record), 0o644))

	out := fixedGenerator().ForChangeset([]string{path, filepath.Join(dir, "missing.yaml")})

	assert.True(t, strings.HasPrefix(out, "# 🔐 Key Creation Approval Checklist\n"))
	assert.Contains(t, out, "**Date:** 2025-06-01 12:00:00 UTC")
	assert.Contains(t, out, "**Files in this changeset:** 2")
	assert.Contains(t, out, "## 📋 Overall Review")
	assert.Contains(t, out, "### 🔑 Key: api-gateway")
	assert.Contains(t, out, "⚠️ Could not load `missing.yaml`")
	assert.Contains(t, out, "## 🏁 Final Approval")
	assert.Contains(t, out, "## 🚀 Post-Merge Actions")
	assert.Equal(t, 1, strings.Count(out, "\n---\n"), "one separator per loaded key")
}
