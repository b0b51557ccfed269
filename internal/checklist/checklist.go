// Copyright (c) 2025 Keyledger Team
// Keyledger - cryptographic key metadata inventory
// This source code is licensed under the MIT license found in the LICENSE file.

// package checklist renders the Markdown approval checklist attached to
// key-creation changesets. The content scales with the record: production
// keys and high-risk classifications get additional review sections.
package checklist

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/weylandt/keyledger/internal/inventory"
	"github.com/weylandt/keyledger/internal/model"
)

// Generator builds checklists for a set of changeset files.
type Generator struct {
	Now func() time.Time
}

func NewGenerator() *Generator {
	return &Generator{Now: time.Now}
}

// ForChangeset renders the complete checklist document for the given key
// files. Files that cannot be loaded are skipped with a note; they fail the
// validation run separately.
func (g *Generator) ForChangeset(files []string) string {
	var b strings.Builder

	b.WriteString("# 🔐 Key Creation Approval Checklist\n\n")
	fmt.Fprintf(&b, "**Date:** %s\n", g.Now().UTC().Format("2006-01-02 15:04:05 UTC"))
	fmt.Fprintf(&b, "**Files in this changeset:** %d\n\n", len(files))

	b.WriteString("## 📋 Overall Review\n\n")
	b.WriteString("- [ ] All files follow the enhanced key schema\n")
	b.WriteString("- [ ] No duplicate key IDs or aliases\n")
	b.WriteString("- [ ] All validation checks pass\n")
	b.WriteString("- [ ] Compliance requirements met\n")
	b.WriteString("- [ ] Security scan completed without issues\n")
	b.WriteString("- [ ] Documentation updated if needed\n\n")

	for _, path := range files {
		rec, err := inventory.LoadRecord(path)
		if err != nil {
			fmt.Fprintf(&b, "⚠️ Could not load `%s`: %v\n\n", filepath.Base(path), err)
			continue
		}
		b.WriteString(g.ForKey(rec, filepath.Base(path)))
		b.WriteString("\n---\n\n")
	}

	b.WriteString("## 🏁 Final Approval\n\n")
	b.WriteString("- [ ] All individual key checklists completed\n")
	b.WriteString("- [ ] Required approvals obtained\n")
	b.WriteString("- [ ] Ready for merge and provisioning\n\n")
	b.WriteString("**Approved by Key-Inventory Admin:** _[username and date]_\n\n")

	b.WriteString("## 🚀 Post-Merge Actions\n\n")
	b.WriteString("- [ ] Keys provisioned successfully\n")
	b.WriteString("- [ ] Monitoring configured\n")
	b.WriteString("- [ ] Documentation updated\n")
	b.WriteString("- [ ] Key owners notified\n")
	b.WriteString("- [ ] Compliance records updated\n")

	return b.String()
}

// ForKey renders the per-key checklist section.
func (g *Generator) ForKey(rec *model.KeyRecord, filename string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "### 🔑 Key: %s (%s)\n\n", rec.Alias, rec.KeyID)
	fmt.Fprintf(&b, "**File:** `%s`\n", filename)
	fmt.Fprintf(&b, "**Environment:** %s\n", rec.Environment)
	fmt.Fprintf(&b, "**Owner:** %s\n", rec.Owner)
	fmt.Fprintf(&b, "**Purpose:** %s\n\n", rec.Purpose)

	b.WriteString("#### ✅ Approval Checklist\n\n")
	b.WriteString("**Technical Review:**\n")
	b.WriteString("- [ ] Key ID follows UUID format\n")
	b.WriteString("- [ ] Alias is descriptive and follows naming conventions\n")
	b.WriteString("- [ ] Environment is correctly specified\n")
	b.WriteString("- [ ] Key store location is valid and accessible\n")

	if t := rec.Technical; t != nil {
		if t.KeyType != "" {
			fmt.Fprintf(&b, "- [ ] Key type (%s) is appropriate for the use case\n", t.KeyType)
		}
		if t.KeySize != nil {
			fmt.Fprintf(&b, "- [ ] Key size (%d) meets security requirements\n", *t.KeySize)
		}
		if t.HighAvailability != nil && *t.HighAvailability {
			b.WriteString("- [ ] High availability configuration is justified\n")
		}
		if t.BackupLocation != "" {
			b.WriteString("- [ ] Backup location is properly configured\n")
		}
	}

	b.WriteString("\n**Business Review:**\n")
	b.WriteString("- [ ] Business justification is clear and valid\n")
	b.WriteString("- [ ] Key owner is appropriate and authorized\n")
	b.WriteString("- [ ] Purpose aligns with business requirements\n")

	if o := rec.Operational; o != nil {
		if o.CostCenter != "" {
			b.WriteString("- [ ] Cost center is valid and approved for key management expenses\n")
		}
		if o.ProjectCode != "" {
			b.WriteString("- [ ] Project code is active and authorized\n")
		}
	}

	b.WriteString("\n**Security Review:**\n")

	pciScope := rec.Compliance.PCIScope
	if pciScope == "" {
		pciScope = "none"
	}
	nistClass := rec.Compliance.NISTClassification
	if nistClass == "" {
		nistClass = "internal"
	}
	fmt.Fprintf(&b, "- [ ] PCI scope (%s) is correctly classified\n", pciScope)
	fmt.Fprintf(&b, "- [ ] NIST classification (%s) is appropriate\n", nistClass)

	if rec.Compliance.SOXApplicable != nil && *rec.Compliance.SOXApplicable {
		b.WriteString("- [ ] SOX requirements are understood and will be met\n")
	}
	if rec.Compliance.GDPRApplicable != nil && *rec.Compliance.GDPRApplicable {
		b.WriteString("- [ ] GDPR requirements are understood and will be met\n")
		if rec.Compliance.RetentionPeriodDays != nil {
			fmt.Fprintf(&b, "- [ ] Data retention period (%d days) is compliant\n", *rec.Compliance.RetentionPeriodDays)
		}
	}

	fmt.Fprintf(&b, "- [ ] Rotation interval (%d days) is appropriate for the risk level\n", rec.RotationIntervalDays)

	riskLevel := "medium"
	if rec.Metadata != nil && rec.Metadata.RiskAssessment != "" {
		riskLevel = rec.Metadata.RiskAssessment
	}
	fmt.Fprintf(&b, "- [ ] Risk assessment (%s) is accurate\n", riskLevel)

	env := strings.ToLower(rec.Environment)
	if env == model.EnvProd || env == model.EnvProduction {
		b.WriteString("- [ ] **PRODUCTION KEY:** Extra scrutiny applied\n")
		b.WriteString("- [ ] Non-production alternative considered and rejected\n")
		b.WriteString("- [ ] Production deployment process documented\n")
	}

	if riskLevel == "high" || riskLevel == "critical" || nistClass == "secret" || nistClass == "top-secret" {
		b.WriteString("\n**High-Risk Key Additional Checks:**\n")
		b.WriteString("- [ ] Security team has reviewed and approved\n")
		b.WriteString("- [ ] Additional monitoring and alerting configured\n")
		b.WriteString("- [ ] Incident response plan includes this key\n")
		b.WriteString("- [ ] Key escrow/recovery procedures documented\n")
	}

	if r := rec.Relationships; r != nil {
		if len(r.DependsOn) > 0 {
			b.WriteString("- [ ] All dependency keys exist and are accessible\n")
		}
		if len(r.UsedBy) > 0 {
			fmt.Fprintf(&b, "- [ ] Services using this key (%s) are documented\n", strings.Join(r.UsedBy, ", "))
		}
	}

	b.WriteString("\n**Operational Review:**\n")
	b.WriteString("- [ ] Monitoring and alerting requirements defined\n")
	b.WriteString("- [ ] Key provisioning process tested in non-production\n")
	b.WriteString("- [ ] Documentation is complete and accessible\n")
	b.WriteString("- [ ] Emergency contact information is current\n")

	if rec.Lifecycle != nil && rec.Lifecycle.EmergencyContact != "" {
		fmt.Fprintf(&b, "- [ ] Emergency contact (%s) is valid and responsive\n", rec.Lifecycle.EmergencyContact)
	}

	b.WriteString("\n**Final Approval:**\n")
	b.WriteString("- [ ] All technical requirements validated\n")
	b.WriteString("- [ ] Business approval obtained\n")
	b.WriteString("- [ ] Security review completed\n")
	b.WriteString("- [ ] Compliance requirements verified\n")
	b.WriteString("- [ ] Key-inventory admin approval granted\n")

	b.WriteString("\n#### ✍️ Required Approvals\n\n")
	b.WriteString("**Technical Reviewer:** _[username and date]_\n")
	b.WriteString("**Business Approver:** _[username and date]_\n")
	b.WriteString("**Security Reviewer:** _[username and date]_\n")
	b.WriteString("**Key-Inventory Admin:** _[username and date]_\n\n")

	b.WriteString("#### 📝 Additional Notes\n\n")
	b.WriteString("_[Add any additional notes, concerns, or requirements here]_\n")

	return b.String()
}
