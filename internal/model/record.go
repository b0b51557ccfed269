// Copyright (c) 2025 Keyledger Team
// Keyledger - cryptographic key metadata inventory
// This source code is licensed under the MIT license found in the LICENSE file.

// package model defines the core data structures of the key inventory: the
// per-key metadata record, its optional enhanced-schema sections, and the
// derived rotation and compliance results computed from it.
package model

import (
	"fmt"
	"time"
)

// Environment values accepted by the enhanced schema. The older schema only
// knew dev/staging/prod; stage and production were added later as synonyms
// and are kept as distinct values unless synonym folding is enabled.
const (
	EnvDev        = "dev"
	EnvStaging    = "staging"
	EnvStage      = "stage"
	EnvProd       = "prod"
	EnvProduction = "production"
)

// LifecycleStatus describes where a key is in its lifecycle.
type LifecycleStatus string

const (
	StatusActive             LifecycleStatus = "active"
	StatusDeprecated         LifecycleStatus = "deprecated"
	StatusRevoked            LifecycleStatus = "revoked"
	StatusEmergencyReplaced  LifecycleStatus = "emergency-replaced"
)

// Compliance is the required compliance block on every record.
type Compliance struct {
	PCIScope            string `yaml:"pci_scope" json:"pci_scope"`
	NISTClassification  string `yaml:"nist_classification" json:"nist_classification"`
	RetentionPeriodDays *int   `yaml:"retention_period_days,omitempty" json:"retention_period_days,omitempty"`
	SOXApplicable       *bool  `yaml:"sox_applicable,omitempty" json:"sox_applicable,omitempty"`
	GDPRApplicable      *bool  `yaml:"gdpr_applicable,omitempty" json:"gdpr_applicable,omitempty"`
}

// Lifecycle is the optional lifecycle section of the enhanced schema.
type Lifecycle struct {
	Status           LifecycleStatus `yaml:"status,omitempty" json:"status,omitempty"`
	CreatedBy        string          `yaml:"created_by,omitempty" json:"created_by,omitempty"`
	ApprovedBy       string          `yaml:"approved_by,omitempty" json:"approved_by,omitempty"`
	ApprovedAt       string          `yaml:"approved_at,omitempty" json:"approved_at,omitempty"`
	LastRotatedAt    string          `yaml:"last_rotated_at,omitempty" json:"last_rotated_at,omitempty"`
	NextRotationDue  string          `yaml:"next_rotation_due,omitempty" json:"next_rotation_due,omitempty"`
	RotationCount    *int            `yaml:"rotation_count,omitempty" json:"rotation_count,omitempty"`
	EmergencyContact string          `yaml:"emergency_contact,omitempty" json:"emergency_contact,omitempty"`
}

// Technical is the optional technical section of the enhanced schema.
type Technical struct {
	KeyType          string `yaml:"key_type,omitempty" json:"key_type,omitempty"`
	KeySize          *int   `yaml:"key_size,omitempty" json:"key_size,omitempty"`
	KeyStoreType     string `yaml:"key_store_type,omitempty" json:"key_store_type,omitempty"`
	HighAvailability *bool  `yaml:"high_availability,omitempty" json:"high_availability,omitempty"`
	BackupLocation   string `yaml:"backup_location,omitempty" json:"backup_location,omitempty"`
}

// Relationships is the optional relationships section, holding references
// to other keys and consuming services.
type Relationships struct {
	DependsOn    []string `yaml:"depends_on,omitempty" json:"depends_on,omitempty"`
	UsedBy       []string `yaml:"used_by,omitempty" json:"used_by,omitempty"`
	RelatedKeys  []string `yaml:"related_keys,omitempty" json:"related_keys,omitempty"`
	Environments []string `yaml:"environments,omitempty" json:"environments,omitempty"`
}

// Operational is the optional operational section of the enhanced schema.
type Operational struct {
	MonitoringEnabled          *bool  `yaml:"monitoring_enabled,omitempty" json:"monitoring_enabled,omitempty"`
	AlertingEnabled            *bool  `yaml:"alerting_enabled,omitempty" json:"alerting_enabled,omitempty"`
	AutoRotationEnabled        *bool  `yaml:"auto_rotation_enabled,omitempty" json:"auto_rotation_enabled,omitempty"`
	EmergencyRevocationEnabled *bool  `yaml:"emergency_revocation_enabled,omitempty" json:"emergency_revocation_enabled,omitempty"`
	CostCenter                 string `yaml:"cost_center,omitempty" json:"cost_center,omitempty"`
	ProjectCode                string `yaml:"project_code,omitempty" json:"project_code,omitempty"`
}

// Audit is the optional audit section of the enhanced schema.
type Audit struct {
	AccessLogsEnabled     *bool  `yaml:"access_logs_enabled,omitempty" json:"access_logs_enabled,omitempty"`
	UsageTrackingEnabled  *bool  `yaml:"usage_tracking_enabled,omitempty" json:"usage_tracking_enabled,omitempty"`
	ComplianceScanEnabled *bool  `yaml:"compliance_scan_enabled,omitempty" json:"compliance_scan_enabled,omitempty"`
	LastComplianceCheck   string `yaml:"last_compliance_check,omitempty" json:"last_compliance_check,omitempty"`
	ComplianceStatus      string `yaml:"compliance_status,omitempty" json:"compliance_status,omitempty"`
}

// Metadata is the optional metadata section of the enhanced schema.
type Metadata struct {
	RiskAssessment string `yaml:"risk_assessment,omitempty" json:"risk_assessment,omitempty"`
}

// KeyRecord is one key's metadata document. key_id is the primary identity
// and must be a UUID; alias is a soft-unique human-readable name. CreatedAt
// is recorded as authored (the validator only checks that it parses).
//
// The six section pointers are the enhanced-schema additions; a nil section
// means the section was absent from the document, which is always valid.
type KeyRecord struct {
	KeyID                string     `yaml:"key_id" json:"key_id"`
	Alias                string     `yaml:"alias" json:"alias"`
	Environment          string     `yaml:"environment" json:"environment"`
	Owner                string     `yaml:"owner" json:"owner"`
	Purpose              string     `yaml:"purpose" json:"purpose"`
	CreatedAt            string     `yaml:"created_at" json:"created_at"`
	RotationIntervalDays int        `yaml:"rotation_interval_days" json:"rotation_interval_days"`
	Location             string     `yaml:"location" json:"location"`
	Compliance           Compliance `yaml:"compliance" json:"compliance"`
	Tags                 []string   `yaml:"tags" json:"tags"`

	Lifecycle     *Lifecycle     `yaml:"lifecycle,omitempty" json:"lifecycle,omitempty"`
	Technical     *Technical     `yaml:"technical,omitempty" json:"technical,omitempty"`
	Relationships *Relationships `yaml:"relationships,omitempty" json:"relationships,omitempty"`
	Operational   *Operational   `yaml:"operational,omitempty" json:"operational,omitempty"`
	Audit         *Audit         `yaml:"audit,omitempty" json:"audit,omitempty"`
	Metadata      *Metadata      `yaml:"metadata,omitempty" json:"metadata,omitempty"`
}

// String returns the alias (key_id) representation used in reports.
func (r *KeyRecord) String() string {
	return fmt.Sprintf("%s (%s)", r.Alias, r.KeyID)
}

// Status returns the lifecycle status, defaulting to active when the
// lifecycle section or its status field is absent.
func (r *KeyRecord) Status() LifecycleStatus {
	if r.Lifecycle == nil || r.Lifecycle.Status == "" {
		return StatusActive
	}
	return r.Lifecycle.Status
}

// AutoRotationEnabled reports whether auto rotation is on for this key.
// Absence of the operational section or the flag means enabled.
func (r *KeyRecord) AutoRotationEnabled() bool {
	if r.Operational == nil || r.Operational.AutoRotationEnabled == nil {
		return true
	}
	return *r.Operational.AutoRotationEnabled
}

// CreatedTime parses the record's creation timestamp.
func (r *KeyRecord) CreatedTime() (time.Time, error) {
	return ParseTimestamp(r.CreatedAt)
}

// ParseTimestamp parses an ISO-8601 timestamp as authored in a record.
// A trailing Z and timestamps without an explicit zone are both accepted.
func ParseTimestamp(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}
	layouts := []string{
		time.RFC3339,
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05",
		"2006-01-02",
	}
	var lastErr error
	for _, layout := range layouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}
