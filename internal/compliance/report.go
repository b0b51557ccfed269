// Copyright (c) 2025 Keyledger Team
// Keyledger - cryptographic key metadata inventory
// This source code is licensed under the MIT license found in the LICENSE file.

package compliance

import (
	"encoding/json"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/weylandt/keyledger/internal/model"
)

// FileResult pairs a per-key compliance report with the file it came from,
// for changeset-scoped checks where the reviewer thinks in files.
type FileResult struct {
	File   string
	Err    error
	Report model.ComplianceReport
}

// Markdown renders changeset check results as the review comment posted on
// pull requests. Files that failed to load are listed with their error.
func Markdown(results []FileResult) string {
	var b strings.Builder
	compliant, nonCompliant := 0, 0

	var body strings.Builder
	for _, result := range results {
		if result.Err != nil {
			fmt.Fprintf(&body, "❌ **%s**: %v\n", result.File, result.Err)
			continue
		}

		icon := "✅"
		if result.Report.Overall() == model.VerdictNonCompliant {
			nonCompliant++
			icon = "❌"
		} else {
			compliant++
		}
		fmt.Fprintf(&body, "### %s %s (%s)\n", icon, result.File, result.Report.Alias)

		for _, fw := range model.Frameworks {
			verdict := result.Report.Frameworks[fw]
			switch verdict.Status {
			case model.VerdictNotApplicable:
				fmt.Fprintf(&body, "- **%s**: Not applicable\n", fw.Name())
				continue
			case model.VerdictCompliant:
				fmt.Fprintf(&body, "- **%s**: ✅ Compliant\n", fw.Name())
			default:
				fmt.Fprintf(&body, "- **%s**: ❌ Non-compliant\n", fw.Name())
			}
			for _, violation := range verdict.Violations {
				fmt.Fprintf(&body, "  - ⚠️ %s\n", violation)
			}
		}
		body.WriteString("\n")
	}

	b.WriteString("## 📋 Compliance Check Results\n")
	fmt.Fprintf(&b, "**Summary:** %d compliant, %d non-compliant\n\n", compliant, nonCompliant)
	b.WriteString(body.String())
	return b.String()
}

// fullReport is the JSON document written by the report command.
type fullReport struct {
	Metadata reportMetadata           `json:"metadata"`
	Summary  model.ComplianceSummary  `json:"summary"`
	Reports  []model.ComplianceReport `json:"detailed_reports"`
}

type reportMetadata struct {
	GeneratedAt       string            `json:"generated_at"`
	TotalKeys         int               `json:"total_keys"`
	FrameworksChecked []model.Framework `json:"frameworks_checked"`
}

// Reporter writes fleet-wide compliance reports into OutputDir, one
// timestamped file per requested format.
type Reporter struct {
	OutputDir string
	Now       func() time.Time
}

func NewReporter(outputDir string) *Reporter {
	return &Reporter{OutputDir: outputDir, Now: time.Now}
}

// Write renders the reports in the requested formats ("json", "html") and
// returns the paths written.
func (r *Reporter) Write(reports []model.ComplianceReport, formats []string) ([]string, error) {
	if err := os.MkdirAll(r.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating report directory: %w", err)
	}

	now := r.Now()
	summary := Summarize(reports)
	stamp := now.Format("20060102-150405")

	var written []string
	for _, format := range formats {
		switch format {
		case "json":
			path := filepath.Join(r.OutputDir, fmt.Sprintf("compliance-report-%s.json", stamp))
			if err := r.writeJSON(path, now, summary, reports); err != nil {
				return written, err
			}
			written = append(written, path)
		case "html":
			path := filepath.Join(r.OutputDir, fmt.Sprintf("compliance-report-%s.html", stamp))
			if err := r.writeHTML(path, now, summary, reports); err != nil {
				return written, err
			}
			written = append(written, path)
		default:
			return written, fmt.Errorf("unknown report format %q", format)
		}
	}
	return written, nil
}

func (r *Reporter) writeJSON(path string, now time.Time, summary model.ComplianceSummary, reports []model.ComplianceReport) error {
	doc := fullReport{
		Metadata: reportMetadata{
			GeneratedAt:       now.Format(time.RFC3339),
			TotalKeys:         len(reports),
			FrameworksChecked: model.Frameworks,
		},
		Summary: summary,
		Reports: reports,
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding compliance report: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("writing compliance report: %w", err)
	}
	return nil
}

type htmlFramework struct {
	Name    string
	Summary model.FrameworkSummary
}

type htmlVerdict struct {
	Name       string
	Status     string
	Class      string
	Score      float64
	Violations []string
}

type htmlKey struct {
	Alias       string
	KeyID       string
	Environment string
	Owner       string
	Verdicts    []htmlVerdict
}

type htmlPage struct {
	Generated  string
	TotalKeys  int
	Frameworks []htmlFramework
	Keys       []htmlKey
}

func (r *Reporter) writeHTML(path string, now time.Time, summary model.ComplianceSummary, reports []model.ComplianceReport) error {
	page := htmlPage{
		Generated: now.UTC().Format("2006-01-02 15:04:05 UTC"),
		TotalKeys: summary.TotalKeys,
	}
	for _, fw := range model.Frameworks {
		page.Frameworks = append(page.Frameworks, htmlFramework{Name: fw.Name(), Summary: summary.Frameworks[fw]})
	}
	for _, report := range reports {
		key := htmlKey{
			Alias:       report.Alias,
			KeyID:       report.KeyID,
			Environment: report.Environment,
			Owner:       report.Owner,
		}
		for _, fw := range model.Frameworks {
			verdict := report.Frameworks[fw]
			hv := htmlVerdict{
				Name:       fw.Name(),
				Status:     statusLabel(verdict.Status),
				Score:      verdict.Score,
				Violations: verdict.Violations,
			}
			switch verdict.Status {
			case model.VerdictCompliant:
				hv.Class = "compliant"
			case model.VerdictNonCompliant:
				hv.Class = "non-compliant"
			default:
				hv.Class = "not-applicable"
				hv.Violations = nil
			}
			key.Verdicts = append(key.Verdicts, hv)
		}
		page.Keys = append(page.Keys, key)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("writing compliance report: %w", err)
	}
	defer f.Close()
	if err := htmlReport.Execute(f, page); err != nil {
		return fmt.Errorf("rendering compliance report: %w", err)
	}
	return nil
}

func statusLabel(s model.VerdictStatus) string {
	switch s {
	case model.VerdictCompliant:
		return "Compliant"
	case model.VerdictNonCompliant:
		return "Non Compliant"
	default:
		return "Not Applicable"
	}
}

var htmlReport = template.Must(template.New("compliance").Parse(`<!DOCTYPE html>
<html>
<head>
    <title>Key Inventory Compliance Report</title>
    <style>
        body { font-family: Arial, sans-serif; margin: 20px; }
        .header { background: #f0f0f0; padding: 20px; border-radius: 5px; }
        .summary { margin: 20px 0; }
        .key { margin: 20px 0; padding: 15px; border: 1px solid #ddd; border-radius: 5px; }
        .compliant { background: #d4edda; }
        .non-compliant { background: #f8d7da; }
        .not-applicable { background: #f0f0f0; }
        table { width: 100%; border-collapse: collapse; margin: 10px 0; }
        th, td { border: 1px solid #ddd; padding: 8px; text-align: left; }
        th { background: #f0f0f0; }
        .score { font-weight: bold; }
    </style>
</head>
<body>
    <div class="header">
        <h1>Key Inventory Compliance Report</h1>
        <p>Generated: {{.Generated}}</p>
        <p>Total Keys: {{.TotalKeys}}</p>
    </div>
    <div class="summary">
        <h2>Compliance Summary</h2>
        <table>
            <tr>
                <th>Framework</th>
                <th>Applicable Keys</th>
                <th>Compliant</th>
                <th>Non-Compliant</th>
                <th>Compliance Rate</th>
                <th>Average Score</th>
            </tr>
{{- range .Frameworks}}
            <tr>
                <td>{{.Name}}</td>
                <td>{{.Summary.ApplicableKeys}}</td>
                <td style="color: green;">{{.Summary.CompliantKeys}}</td>
                <td style="color: red;">{{.Summary.NonCompliant}}</td>
                <td class="score">{{.Summary.ComplianceRate}}%</td>
                <td class="score">{{.Summary.AverageScore}}</td>
            </tr>
{{- end}}
        </table>
    </div>
    <div>
        <h2>Detailed Key Reports</h2>
{{- range .Keys}}
        <div class="key">
            <h3>Key: {{.Alias}} ({{.KeyID}})</h3>
            <p><strong>Environment:</strong> {{.Environment}} | <strong>Owner:</strong> {{.Owner}}</p>
            <table>
                <tr>
                    <th>Framework</th>
                    <th>Status</th>
                    <th>Score</th>
                    <th>Violations</th>
                </tr>
{{- range .Verdicts}}
                <tr class="{{.Class}}">
                    <td>{{.Name}}</td>
                    <td>{{.Status}}</td>
                    <td>{{.Score}}%</td>
                    <td>{{if .Violations}}{{range $i, $v := .Violations}}{{if $i}}<br>{{end}}{{$v}}{{end}}{{else}}None{{end}}</td>
                </tr>
{{- end}}
            </table>
        </div>
{{- end}}
    </div>
</body>
</html>
`))
