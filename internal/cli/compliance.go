// Copyright (c) 2025 Keyledger Team
// Keyledger - cryptographic key metadata inventory
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/weylandt/keyledger/internal/compliance"
	"github.com/weylandt/keyledger/internal/inventory"
	"github.com/weylandt/keyledger/internal/logging"
	"github.com/weylandt/keyledger/internal/model"
	"github.com/weylandt/keyledger/internal/ui"
)

var (
	complianceResultsFile string
	reportInputDir        string
	reportOutputDir       string
	reportFormats         []string
)

var complianceCmd = &cobra.Command{
	Use:   "compliance <file>...",
	Short: "Check changeset key files against the compliance frameworks",
	Long: `Compliance evaluates each given key file against PCI DSS, SOX, GDPR
and NIST CSF. The Markdown verdict is written to a results file for the
review workflow; any non-compliant file fails the check.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var results []compliance.FileResult
		for _, path := range args {
			if strings.TrimSpace(path) == "" {
				continue
			}
			logging.Infof("checking %s", path)
			rec, err := inventory.LoadRecord(path)
			if err != nil {
				results = append(results, compliance.FileResult{File: path, Err: err})
				continue
			}
			results = append(results, compliance.FileResult{File: path, Report: compliance.Evaluate(rec)})
		}

		markdown := compliance.Markdown(results)
		if err := os.WriteFile(complianceResultsFile, []byte(markdown), 0o644); err != nil {
			return fmt.Errorf("writing results file: %w", err)
		}

		allCompliant := true
		for _, result := range results {
			if result.Err != nil || result.Report.Overall() == model.VerdictNonCompliant {
				allCompliant = false
				break
			}
		}

		ui.PrintComplianceVerdict(len(results), allCompliant)
		if !allCompliant {
			return exitWithCode(1, "")
		}
		return nil
	},
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Generate fleet-wide compliance reports",
	Long: `Report evaluates every key in the inventory against all frameworks
and writes timestamped JSON and HTML reports into the report directory.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		inputDir := reportInputDir
		if inputDir == "" {
			inputDir = appConfig.InputDir
		}
		outputDir := reportOutputDir
		if outputDir == "" {
			outputDir = appConfig.ReportDir
		}

		files, err := inventory.ListDocuments(inputDir)
		if err != nil {
			return err
		}
		if len(files) == 0 {
			return exitWithCode(1, "no keys found in inventory")
		}

		logging.Infof("analyzing compliance for %d keys", len(files))
		var reports []model.ComplianceReport
		for _, path := range files {
			rec, loadErr := inventory.LoadRecord(path)
			if loadErr != nil {
				logging.Warnf("could not load %s: %v", path, loadErr)
				continue
			}
			reports = append(reports, compliance.Evaluate(rec))
		}

		reporter := compliance.NewReporter(outputDir)
		written, err := reporter.Write(reports, reportFormats)
		if err != nil {
			return err
		}
		for _, path := range written {
			logging.Infof("report saved: %s", path)
		}

		ui.PrintComplianceSummary(compliance.Summarize(reports))
		return nil
	},
}

func init() {
	complianceCmd.Flags().StringVar(&complianceResultsFile, "results-file", "compliance-results.txt", "File to write compliance findings to")

	reportCmd.Flags().StringVar(&reportInputDir, "input-dir", "", "Inventory directory (overrides config)")
	reportCmd.Flags().StringVar(&reportOutputDir, "output-dir", "", "Report directory (overrides config)")
	reportCmd.Flags().StringSliceVar(&reportFormats, "format", []string{"json", "html"}, "Report formats to generate (json, html)")
}
