// Copyright (c) 2025 Keyledger Team
// Keyledger - cryptographic key metadata inventory
// This source code is licensed under the MIT license found in the LICENSE file.

package inventory

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/go-openapi/strfmt"
	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/weylandt/keyledger/internal/model"
)

// Policy captures the schema-generation choices the two validator
// generations disagree on. The defaults (lowercase aliases, synonyms kept
// distinct) match the behavior of the enhanced schema combined with the
// index builder's normalization.
type Policy struct {
	// LowercaseAlias folds the alias to lowercase during normalization.
	// The enhanced-schema generation preserves authored casing instead.
	LowercaseAlias bool

	// FoldEnvironmentSynonyms rewrites stage to staging and production to
	// prod after validation, so downstream grouping sees one canonical
	// value per environment.
	FoldEnvironmentSynonyms bool
}

// DefaultPolicy returns the default schema-generation policy.
func DefaultPolicy() Policy {
	return Policy{LowercaseAlias: true, FoldEnvironmentSynonyms: false}
}

// requiredFields are the top-level fields every record generation must carry.
var requiredFields = []string{
	"key_id", "alias", "environment", "owner", "purpose",
	"created_at", "rotation_interval_days", "location", "compliance", "tags",
}

var (
	aliasPattern    = regexp.MustCompile(`^[a-zA-Z0-9\-_]+$`)
	usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9\-_.]+$`)
)

var (
	validEnvironments = map[string]bool{
		model.EnvDev: true, model.EnvStaging: true, model.EnvStage: true,
		model.EnvProd: true, model.EnvProduction: true,
	}
	validPCIScopes = []string{"none", "cardholder-data", "out-of-scope"}
	validNISTClassifications = []string{"internal", "confidential", "secret", "top-secret"}
	validLifecycleStatuses   = []string{"active", "deprecated", "revoked", "emergency-replaced"}
	validKeyTypes            = []string{"rsa", "ec", "symmetric", "api-key", "jwt"}
	validKeyStoreTypes       = []string{"aws-kms", "azure-kv", "hashicorp-vault", "custom"}
	validRiskAssessments     = []string{"low", "medium", "high", "critical"}
	validComplianceStatuses  = []string{"compliant", "non-compliant", "pending"}
)

// Validator checks raw record mappings against the schema and produces
// normalized typed records. It is generation-tolerant: every enhanced-schema
// section is optional and only escalates to failure when a present field has
// the wrong shape.
type Validator struct {
	policy Policy

	// StrictFilenames additionally requires the file base name to equal
	// <key_id>.yaml, as the pre-merge validation path does.
	StrictFilenames bool
}

// NewValidator returns a validator using the given policy.
func NewValidator(policy Policy) *Validator {
	return &Validator{policy: policy}
}

// Validate checks one parsed record. On success it returns the normalized
// record; on failure it returns a *ValidationError listing every violation
// found. Nested validation only runs once all required top-level fields
// exist, since the section validators assume their parent keys are present.
func (v *Validator) Validate(raw map[string]any, filename string) (*model.KeyRecord, error) {
	var errs []string

	for _, field := range requiredFields {
		if _, ok := raw[field]; !ok {
			errs = append(errs, fmt.Sprintf("Missing required field: %s", field))
		}
	}
	if len(errs) > 0 {
		return nil, &ValidationError{File: filename, Problems: errs}
	}

	errs = append(errs, v.validateKeyID(raw, filename)...)
	errs = append(errs, v.validateAlias(raw)...)
	errs = append(errs, v.validateEnvironment(raw)...)
	errs = append(errs, v.validateOwner(raw)...)
	errs = append(errs, v.validatePurpose(raw)...)
	errs = append(errs, v.validateCreatedAt(raw)...)
	errs = append(errs, v.validateRotationInterval(raw)...)
	errs = append(errs, v.validateLocation(raw)...)
	errs = append(errs, v.validateCompliance(raw)...)

	tags, tagErrs := v.validateTags(raw)
	errs = append(errs, tagErrs...)

	if section, ok := sectionMap(raw, "lifecycle"); ok {
		errs = append(errs, v.validateLifecycle(section)...)
	}
	if section, ok := sectionMap(raw, "technical"); ok {
		errs = append(errs, v.validateTechnical(section)...)
	}
	if section, ok := sectionMap(raw, "relationships"); ok {
		errs = append(errs, v.validateRelationships(section)...)
	}
	if section, ok := sectionMap(raw, "operational"); ok {
		errs = append(errs, v.validateOperational(section)...)
	}
	if section, ok := sectionMap(raw, "audit"); ok {
		errs = append(errs, v.validateAudit(section)...)
	}
	if section, ok := sectionMap(raw, "metadata"); ok {
		errs = append(errs, v.validateMetadata(section)...)
	}

	if len(errs) > 0 {
		return nil, &ValidationError{File: filename, Problems: errs}
	}

	rec, err := v.normalize(raw, tags)
	if err != nil {
		return nil, &ValidationError{File: filename, Problems: []string{err.Error()}}
	}
	return rec, nil
}

// normalize builds the typed record from the validated mapping and applies
// the deterministic case canonicalization.
func (v *Validator) normalize(raw map[string]any, tags []string) (*model.KeyRecord, error) {
	// Round-trip through YAML so the section structs decode with the same
	// rules the loose loader uses.
	data, err := yaml.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("could not re-encode record: %w", err)
	}
	var rec model.KeyRecord
	if err := yaml.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("could not decode record: %w", err)
	}

	rec.Owner = strings.ToLower(rec.Owner)
	rec.Environment = strings.ToLower(rec.Environment)
	if v.policy.FoldEnvironmentSynonyms {
		switch rec.Environment {
		case model.EnvStage:
			rec.Environment = model.EnvStaging
		case model.EnvProduction:
			rec.Environment = model.EnvProd
		}
	}
	if v.policy.LowercaseAlias {
		rec.Alias = strings.ToLower(rec.Alias)
	}
	rec.Tags = tags
	return &rec, nil
}

func (v *Validator) validateKeyID(raw map[string]any, filename string) []string {
	var errs []string
	s, ok := asString(raw["key_id"])
	if !ok {
		return []string{"key_id must be a string"}
	}
	if _, err := uuid.Parse(s); err != nil {
		errs = append(errs, "key_id must be a valid UUID")
	} else if v.StrictFilenames {
		expected := s + ".yaml"
		if filename != expected && filename != s+".yml" {
			errs = append(errs, fmt.Sprintf("Filename must match key_id: expected %s", expected))
		}
	}
	return errs
}

func (v *Validator) validateAlias(raw map[string]any) []string {
	s, ok := asString(raw["alias"])
	if !ok {
		return []string{"alias must be a string"}
	}
	if len(s) == 0 || len(s) > 100 {
		return []string{"alias must be between 1 and 100 characters"}
	}
	if !aliasPattern.MatchString(s) {
		return []string{"alias can only contain alphanumeric characters, dashes, and underscores"}
	}
	return nil
}

func (v *Validator) validateEnvironment(raw map[string]any) []string {
	s, ok := asString(raw["environment"])
	if !ok || !validEnvironments[s] {
		return []string{fmt.Sprintf("environment must be one of: %s", strings.Join(sortedEnvironments(), ", "))}
	}
	return nil
}

func (v *Validator) validateOwner(raw map[string]any) []string {
	s, ok := asString(raw["owner"])
	if !ok || !strfmt.Default.Validates("email", s) {
		return []string{"owner must be a valid email address"}
	}
	return nil
}

func (v *Validator) validatePurpose(raw map[string]any) []string {
	s, ok := asString(raw["purpose"])
	if !ok || strings.TrimSpace(s) == "" {
		return []string{"purpose must be a non-empty string"}
	}
	if len(s) > 500 {
		return []string{"purpose must be at most 500 characters"}
	}
	return nil
}

func (v *Validator) validateCreatedAt(raw map[string]any) []string {
	s, ok := timestampValue(raw["created_at"])
	if !ok {
		return []string{"created_at must be a valid ISO 8601 datetime"}
	}
	if _, err := model.ParseTimestamp(s); err != nil {
		return []string{"created_at must be a valid ISO 8601 datetime"}
	}
	return nil
}

func (v *Validator) validateRotationInterval(raw map[string]any) []string {
	n, ok := asInt(raw["rotation_interval_days"])
	if !ok {
		return []string{"rotation_interval_days must be an integer"}
	}
	if n <= 0 || n > 3650 {
		return []string{"rotation_interval_days must be between 1 and 3650"}
	}
	return nil
}

func (v *Validator) validateLocation(raw map[string]any) []string {
	s, ok := asString(raw["location"])
	if !ok || strings.TrimSpace(s) == "" {
		return []string{"location must be a non-empty string"}
	}
	return nil
}

func (v *Validator) validateCompliance(raw map[string]any) []string {
	section, ok := raw["compliance"].(map[string]any)
	if !ok {
		return []string{"compliance must be an object"}
	}

	var errs []string
	if scope, present := section["pci_scope"]; !present {
		errs = append(errs, "compliance.pci_scope is required")
	} else if s, ok := asString(scope); !ok || !contains(validPCIScopes, s) {
		errs = append(errs, fmt.Sprintf("compliance.pci_scope must be one of: %s", strings.Join(validPCIScopes, ", ")))
	}

	if class, present := section["nist_classification"]; !present {
		errs = append(errs, "compliance.nist_classification is required")
	} else if s, ok := asString(class); !ok || !contains(validNISTClassifications, s) {
		errs = append(errs, fmt.Sprintf("compliance.nist_classification must be one of: %s", strings.Join(validNISTClassifications, ", ")))
	}

	if retention, present := section["retention_period_days"]; present {
		if n, ok := asInt(retention); !ok || n <= 0 {
			errs = append(errs, "compliance.retention_period_days must be a positive integer")
		}
	}
	for _, field := range []string{"sox_applicable", "gdpr_applicable"} {
		if val, present := section[field]; present {
			if _, ok := val.(bool); !ok {
				errs = append(errs, fmt.Sprintf("compliance.%s must be a boolean", field))
			}
		}
	}
	return errs
}

// validateTags checks the tag list and returns the normalized (lowercased)
// tags alongside any violations. Duplicates after normalization are
// rejected, so "Prod" and "prod" in one record collide.
func (v *Validator) validateTags(raw map[string]any) ([]string, []string) {
	list, ok := raw["tags"].([]any)
	if !ok {
		return nil, []string{"tags must be an array"}
	}
	if len(list) == 0 {
		return nil, []string{"tags must contain at least one entry"}
	}

	var errs []string
	normalized := make([]string, 0, len(list))
	seen := make(map[string]bool, len(list))
	for _, entry := range list {
		tag, ok := asString(entry)
		if !ok {
			errs = append(errs, "All tags must be strings")
			continue
		}
		if !aliasPattern.MatchString(tag) {
			errs = append(errs, fmt.Sprintf("Tag %q contains invalid characters", tag))
			continue
		}
		lower := strings.ToLower(tag)
		if seen[lower] {
			errs = append(errs, "Duplicate tags are not allowed")
			continue
		}
		seen[lower] = true
		normalized = append(normalized, lower)
	}
	return normalized, errs
}

func (v *Validator) validateLifecycle(section map[string]any) []string {
	var errs []string
	if status, present := section["status"]; present {
		if s, ok := asString(status); !ok || !contains(validLifecycleStatuses, s) {
			errs = append(errs, fmt.Sprintf("lifecycle.status must be one of: %s", strings.Join(validLifecycleStatuses, ", ")))
		}
	}
	for _, field := range []string{"created_by", "approved_by"} {
		if val, present := section[field]; present {
			if s, ok := asString(val); !ok || !usernamePattern.MatchString(s) {
				errs = append(errs, fmt.Sprintf("lifecycle.%s must be a valid username", field))
			}
		}
	}
	for _, field := range []string{"approved_at", "last_rotated_at", "next_rotation_due"} {
		if val, present := section[field]; present {
			if s, ok := timestampValue(val); !ok {
				errs = append(errs, fmt.Sprintf("lifecycle.%s must be a valid ISO 8601 datetime", field))
			} else if _, err := model.ParseTimestamp(s); err != nil {
				errs = append(errs, fmt.Sprintf("lifecycle.%s must be a valid ISO 8601 datetime", field))
			}
		}
	}
	if count, present := section["rotation_count"]; present {
		if n, ok := asInt(count); !ok || n < 0 {
			errs = append(errs, "lifecycle.rotation_count must be a non-negative integer")
		}
	}
	if contact, present := section["emergency_contact"]; present {
		if s, ok := asString(contact); !ok || !strfmt.Default.Validates("email", s) {
			errs = append(errs, "lifecycle.emergency_contact must be a valid email address")
		}
	}
	return errs
}

func (v *Validator) validateTechnical(section map[string]any) []string {
	var errs []string
	if keyType, present := section["key_type"]; present {
		if s, ok := asString(keyType); !ok || !contains(validKeyTypes, s) {
			errs = append(errs, fmt.Sprintf("technical.key_type must be one of: %s", strings.Join(validKeyTypes, ", ")))
		}
	}
	if size, present := section["key_size"]; present {
		if n, ok := asInt(size); !ok || n <= 0 {
			errs = append(errs, "technical.key_size must be a positive integer")
		}
	}
	if store, present := section["key_store_type"]; present {
		if s, ok := asString(store); !ok || !contains(validKeyStoreTypes, s) {
			errs = append(errs, fmt.Sprintf("technical.key_store_type must be one of: %s", strings.Join(validKeyStoreTypes, ", ")))
		}
	}
	if ha, present := section["high_availability"]; present {
		if _, ok := ha.(bool); !ok {
			errs = append(errs, "technical.high_availability must be a boolean")
		}
	}
	if loc, present := section["backup_location"]; present {
		if s, ok := asString(loc); !ok || strings.TrimSpace(s) == "" {
			errs = append(errs, "technical.backup_location must be a non-empty string")
		}
	}
	return errs
}

func (v *Validator) validateRelationships(section map[string]any) []string {
	var errs []string
	for _, field := range []string{"depends_on", "used_by", "related_keys", "environments"} {
		val, present := section[field]
		if !present {
			continue
		}
		list, ok := val.([]any)
		if !ok {
			errs = append(errs, fmt.Sprintf("relationships.%s must be an array", field))
			continue
		}
		for i, entry := range list {
			s, ok := asString(entry)
			if !ok {
				errs = append(errs, fmt.Sprintf("relationships.%s[%d] must be a string", field, i))
				continue
			}
			// depends_on and related_keys hold key_id references.
			if field == "depends_on" || field == "related_keys" {
				if _, err := uuid.Parse(s); err != nil {
					errs = append(errs, fmt.Sprintf("relationships.%s[%d] must be a valid key_id UUID", field, i))
				}
			}
		}
	}
	return errs
}

func (v *Validator) validateOperational(section map[string]any) []string {
	var errs []string
	boolFields := []string{
		"monitoring_enabled", "alerting_enabled",
		"auto_rotation_enabled", "emergency_revocation_enabled",
	}
	for _, field := range boolFields {
		if val, present := section[field]; present {
			if _, ok := val.(bool); !ok {
				errs = append(errs, fmt.Sprintf("operational.%s must be a boolean", field))
			}
		}
	}
	for _, field := range []string{"cost_center", "project_code"} {
		if val, present := section[field]; present {
			if _, ok := asString(val); !ok {
				errs = append(errs, fmt.Sprintf("operational.%s must be a string", field))
			}
		}
	}
	return errs
}

func (v *Validator) validateAudit(section map[string]any) []string {
	var errs []string
	boolFields := []string{"access_logs_enabled", "usage_tracking_enabled", "compliance_scan_enabled"}
	for _, field := range boolFields {
		if val, present := section[field]; present {
			if _, ok := val.(bool); !ok {
				errs = append(errs, fmt.Sprintf("audit.%s must be a boolean", field))
			}
		}
	}
	if val, present := section["last_compliance_check"]; present {
		if s, ok := timestampValue(val); !ok {
			errs = append(errs, "audit.last_compliance_check must be a valid ISO 8601 datetime")
		} else if _, err := model.ParseTimestamp(s); err != nil {
			errs = append(errs, "audit.last_compliance_check must be a valid ISO 8601 datetime")
		}
	}
	if val, present := section["compliance_status"]; present {
		if s, ok := asString(val); !ok || !contains(validComplianceStatuses, s) {
			errs = append(errs, fmt.Sprintf("audit.compliance_status must be one of: %s", strings.Join(validComplianceStatuses, ", ")))
		}
	}
	return errs
}

func (v *Validator) validateMetadata(section map[string]any) []string {
	if val, present := section["risk_assessment"]; present {
		if s, ok := asString(val); !ok || !contains(validRiskAssessments, s) {
			return []string{fmt.Sprintf("metadata.risk_assessment must be one of: %s", strings.Join(validRiskAssessments, ", "))}
		}
	}
	return nil
}

// sectionMap fetches a present optional section as a mapping. A present
// section of the wrong type is not reported here; the loose decode in
// normalize would fail, and the section validators only run on mappings,
// matching the tolerant behavior of the enhanced-schema generation.
func sectionMap(raw map[string]any, key string) (map[string]any, bool) {
	val, present := raw[key]
	if !present {
		return nil, false
	}
	section, ok := val.(map[string]any)
	return section, ok
}

func asString(v any) (string, bool) {
	s, ok := v.(string)
	return s, ok
}

func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case uint64:
		return int(n), true
	case float64:
		if n == float64(int(n)) {
			return int(n), true
		}
	}
	return 0, false
}

// timestampValue returns the string form of a scalar the YAML parser may
// have resolved either to a string or to a time.Time.
func timestampValue(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case time.Time:
		return t.Format(time.RFC3339), true
	}
	return "", false
}

func contains(set []string, s string) bool {
	for _, candidate := range set {
		if candidate == s {
			return true
		}
	}
	return false
}

func sortedEnvironments() []string {
	envs := make([]string, 0, len(validEnvironments))
	for env := range validEnvironments {
		envs = append(envs, env)
	}
	sort.Strings(envs)
	return envs
}
