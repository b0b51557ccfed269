// Copyright (c) 2025 Keyledger Team
// Keyledger - cryptographic key metadata inventory
// This source code is licensed under the MIT license found in the LICENSE file.

// package compliance evaluates key records against four regulatory rule
// sets: PCI DSS, SOX, GDPR and NIST CSF. Each framework has its own
// applicability gate; a record outside a framework's gate reports
// not_applicable with a perfect score and is excluded from that
// framework's aggregate accounting.
package compliance

import (
	"fmt"
	"math"

	"github.com/weylandt/keyledger/internal/model"
)

// strongKeyTypes are the key types accepted as strong cryptography by the
// PCI DSS and GDPR encryption requirements.
var strongKeyTypes = map[string]bool{"rsa": true, "ec": true, "symmetric": true}

// nistMaxRotationDays caps the rotation interval per classification.
var nistMaxRotationDays = map[string]int{
	"top-secret":   90,
	"secret":       180,
	"confidential": 365,
	"internal":     1095,
}

// Evaluate runs every framework against one record.
func Evaluate(rec *model.KeyRecord) model.ComplianceReport {
	return model.ComplianceReport{
		KeyID:       rec.KeyID,
		Alias:       rec.Alias,
		Environment: rec.Environment,
		Owner:       rec.Owner,
		Frameworks: map[model.Framework]model.ComplianceVerdict{
			model.FrameworkPCIDSS: CheckPCI(rec),
			model.FrameworkSOX:    CheckSOX(rec),
			model.FrameworkGDPR:   CheckGDPR(rec),
			model.FrameworkNIST:   CheckNIST(rec),
		},
	}
}

// CheckPCI evaluates the PCI DSS requirements. The gate is any PCI scope
// other than none.
func CheckPCI(rec *model.KeyRecord) model.ComplianceVerdict {
	if rec.Compliance.PCIScope == "" || rec.Compliance.PCIScope == "none" {
		return notApplicable()
	}

	v := newVerdict()

	keyType := ""
	keySize := 0
	if rec.Technical != nil {
		keyType = rec.Technical.KeyType
		if rec.Technical.KeySize != nil {
			keySize = *rec.Technical.KeySize
		}
	}

	v.require("strong_crypto", strongKeyTypes[keyType],
		"PCI DSS 3.4: Weak cryptographic algorithm")
	v.require("min_key_size", !(keyType == "rsa" && keySize < 2048),
		"PCI DSS 3.4: RSA key size must be at least 2048 bits")
	v.require("access_logging", auditFlag(rec, func(a *model.Audit) *bool { return a.AccessLogsEnabled }),
		"PCI DSS 8.2: Access logging must be enabled")
	v.require("usage_tracking", auditFlag(rec, func(a *model.Audit) *bool { return a.UsageTrackingEnabled }),
		"PCI DSS 10.1: Usage tracking must be enabled")
	v.require("rotation_frequency",
		!(rec.Compliance.PCIScope == "cardholder-data" && rec.RotationIntervalDays > 365),
		"PCI DSS Best Practice: Annual rotation required for cardholder data")

	return v.finish()
}

// CheckSOX evaluates the SOX requirements. The gate is the sox_applicable
// flag on the compliance block.
func CheckSOX(rec *model.KeyRecord) model.ComplianceVerdict {
	if rec.Compliance.SOXApplicable == nil || !*rec.Compliance.SOXApplicable {
		return notApplicable()
	}

	v := newVerdict()

	createdBy, approvedBy := "", ""
	if rec.Lifecycle != nil {
		createdBy = rec.Lifecycle.CreatedBy
		approvedBy = rec.Lifecycle.ApprovedBy
	}

	v.require("segregation_of_duties",
		!(createdBy != "" && approvedBy != "" && createdBy == approvedBy),
		"SOX: Creator and approver must be different")
	v.require("audit_trails", auditFlag(rec, func(a *model.Audit) *bool { return a.AccessLogsEnabled }),
		"SOX: Access logging required")
	v.require("change_approval", approvedBy != "",
		"SOX: All changes must be approved")
	v.require("documentation", rec.Purpose != "",
		"SOX: Business purpose must be documented")

	return v.finish()
}

// CheckGDPR evaluates the GDPR requirements. The gate is the
// gdpr_applicable flag on the compliance block.
func CheckGDPR(rec *model.KeyRecord) model.ComplianceVerdict {
	if rec.Compliance.GDPRApplicable == nil || !*rec.Compliance.GDPRApplicable {
		return notApplicable()
	}

	v := newVerdict()

	keyType := ""
	if rec.Technical != nil {
		keyType = rec.Technical.KeyType
	}

	v.require("retention_period", rec.Compliance.RetentionPeriodDays != nil,
		"GDPR: Data retention period must be specified")
	v.require("encryption", strongKeyTypes[keyType],
		"GDPR: Strong encryption required")
	v.require("access_controls", auditFlag(rec, func(a *model.Audit) *bool { return a.AccessLogsEnabled }),
		"GDPR: Access logging required")

	return v.finish()
}

// CheckNIST evaluates the NIST CSF requirements. NIST always applies; the
// strictness scales with the record's classification.
func CheckNIST(rec *model.KeyRecord) model.ComplianceVerdict {
	v := newVerdict()

	class := rec.Compliance.NISTClassification
	if class == "" {
		class = "internal"
	}

	highAvailability := false
	backupLocation := ""
	if rec.Technical != nil {
		if rec.Technical.HighAvailability != nil {
			highAvailability = *rec.Technical.HighAvailability
		}
		backupLocation = rec.Technical.BackupLocation
	}

	classified := class == "confidential" || class == "secret" || class == "top-secret"
	highClass := class == "secret" || class == "top-secret"

	v.require("asset_identification", rec.Owner != "",
		"NIST ID.AM: Asset owner must be identified")
	// High availability is only demanded for classified data; lower
	// classifications pass the requirement by default.
	v.require("high_availability", !classified || highAvailability,
		"NIST PR.IP: High availability required for classified data")
	v.require("monitoring", operationalFlag(rec, func(o *model.Operational) *bool { return o.MonitoringEnabled }),
		"NIST DE.CM: Monitoring must be enabled")
	v.require("emergency_response", operationalFlag(rec, func(o *model.Operational) *bool { return o.EmergencyRevocationEnabled }),
		"NIST RS.MI: Emergency response capability required")
	v.require("backup_recovery", !highClass || backupLocation != "",
		"NIST RC.RP: Backup required for high-classification keys")

	maxDays := nistMaxRotationDays[class]
	if maxDays == 0 {
		maxDays = 1095
	}
	v.require("rotation_frequency", rec.RotationIntervalDays <= maxDays,
		fmt.Sprintf("NIST: %s keys should rotate every %d days", class, maxDays))

	return v.finish()
}

// verdict accumulates requirement outcomes while preserving the order the
// violations were found in.
type verdict struct {
	requirements map[string]bool
	violations   []string
}

func newVerdict() *verdict {
	return &verdict{requirements: make(map[string]bool)}
}

func (v *verdict) require(name string, passed bool, violation string) {
	v.requirements[name] = passed
	if !passed {
		v.violations = append(v.violations, violation)
	}
}

func (v *verdict) finish() model.ComplianceVerdict {
	status := model.VerdictCompliant
	if len(v.violations) > 0 {
		status = model.VerdictNonCompliant
	}
	if v.violations == nil {
		v.violations = []string{}
	}
	return model.ComplianceVerdict{
		Applicable:   true,
		Status:       status,
		Score:        score(v.requirements),
		Requirements: v.requirements,
		Violations:   v.violations,
	}
}

func notApplicable() model.ComplianceVerdict {
	return model.ComplianceVerdict{
		Applicable:   false,
		Status:       model.VerdictNotApplicable,
		Score:        100,
		Requirements: map[string]bool{},
		Violations:   []string{},
	}
}

// score is 100 * passed/evaluated, rounded to two decimals.
func score(requirements map[string]bool) float64 {
	if len(requirements) == 0 {
		return 100
	}
	passed := 0
	for _, ok := range requirements {
		if ok {
			passed++
		}
	}
	raw := float64(passed) / float64(len(requirements)) * 100
	return math.Round(raw*100) / 100
}

func auditFlag(rec *model.KeyRecord, pick func(*model.Audit) *bool) bool {
	if rec.Audit == nil {
		return false
	}
	flag := pick(rec.Audit)
	return flag != nil && *flag
}

func operationalFlag(rec *model.KeyRecord, pick func(*model.Operational) *bool) bool {
	if rec.Operational == nil {
		return false
	}
	flag := pick(rec.Operational)
	return flag != nil && *flag
}
