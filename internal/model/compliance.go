// Copyright (c) 2025 Keyledger Team
// Keyledger - cryptographic key metadata inventory
// This source code is licensed under the MIT license found in the LICENSE file.

package model

// Framework identifies one of the regulatory rule sets a key is
// evaluated against.
type Framework string

const (
	FrameworkPCIDSS Framework = "pci_dss"
	FrameworkSOX    Framework = "sox"
	FrameworkGDPR   Framework = "gdpr"
	FrameworkNIST   Framework = "nist"
)

// Frameworks lists all rule sets in evaluation order.
var Frameworks = []Framework{FrameworkPCIDSS, FrameworkSOX, FrameworkGDPR, FrameworkNIST}

// Name returns the human-readable framework name.
func (f Framework) Name() string {
	switch f {
	case FrameworkPCIDSS:
		return "PCI DSS"
	case FrameworkSOX:
		return "SOX"
	case FrameworkGDPR:
		return "GDPR"
	case FrameworkNIST:
		return "NIST CSF"
	}
	return string(f)
}

// VerdictStatus is the outcome of evaluating one framework for one key.
type VerdictStatus string

const (
	VerdictCompliant     VerdictStatus = "compliant"
	VerdictNonCompliant  VerdictStatus = "non_compliant"
	VerdictNotApplicable VerdictStatus = "not_applicable"
)

// ComplianceVerdict is the per-(key, framework) evaluation result.
// Requirements maps requirement identifiers to pass/fail; Score is
// 100 * passed/evaluated, rounded to two decimals. A framework whose
// applicability gate fails reports a score of 100 and no requirements.
type ComplianceVerdict struct {
	Applicable   bool            `json:"applicable"`
	Status       VerdictStatus   `json:"status"`
	Score        float64         `json:"score"`
	Requirements map[string]bool `json:"requirements"`
	Violations   []string        `json:"violations"`
}

// ComplianceReport holds the verdicts of all frameworks for one key.
type ComplianceReport struct {
	KeyID       string                          `json:"key_id"`
	Alias       string                          `json:"alias"`
	Environment string                          `json:"environment"`
	Owner       string                          `json:"owner"`
	Frameworks  map[Framework]ComplianceVerdict `json:"frameworks"`
}

// Overall returns non_compliant if any applicable framework failed,
// compliant otherwise.
func (r ComplianceReport) Overall() VerdictStatus {
	for _, v := range r.Frameworks {
		if v.Status == VerdictNonCompliant {
			return VerdictNonCompliant
		}
	}
	return VerdictCompliant
}

// FrameworkSummary aggregates one framework across all applicable keys.
type FrameworkSummary struct {
	Name            string  `json:"name"`
	ApplicableKeys  int     `json:"applicable_keys"`
	CompliantKeys   int     `json:"compliant_keys"`
	NonCompliant    int     `json:"non_compliant_keys"`
	ComplianceRate  float64 `json:"compliance_rate"`
	AverageScore    float64 `json:"average_score"`
}

// ComplianceSummary is the corpus-wide aggregate across all frameworks.
type ComplianceSummary struct {
	TotalKeys        int                            `json:"total_keys"`
	CompliantKeys    int                            `json:"compliant_keys"`
	NonCompliantKeys int                            `json:"non_compliant_keys"`
	Frameworks       map[Framework]FrameworkSummary `json:"frameworks"`
}
