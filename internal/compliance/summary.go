// Copyright (c) 2025 Keyledger Team
// Keyledger - cryptographic key metadata inventory
// This source code is licensed under the MIT license found in the LICENSE file.

package compliance

import (
	"math"

	"github.com/weylandt/keyledger/internal/model"
)

// Summarize aggregates per-record reports into the fleet-wide view. Only
// applicable verdicts count toward a framework's totals and average score;
// the overall counters classify each record by its Overall verdict.
func Summarize(reports []model.ComplianceReport) model.ComplianceSummary {
	summary := model.ComplianceSummary{
		TotalKeys:  len(reports),
		Frameworks: make(map[model.Framework]model.FrameworkSummary, len(model.Frameworks)),
	}

	scoreSums := make(map[model.Framework]float64, len(model.Frameworks))
	for _, fw := range model.Frameworks {
		summary.Frameworks[fw] = model.FrameworkSummary{Name: fw.Name()}
	}

	for _, report := range reports {
		if report.Overall() == model.VerdictNonCompliant {
			summary.NonCompliantKeys++
		} else {
			summary.CompliantKeys++
		}

		for _, fw := range model.Frameworks {
			verdict, ok := report.Frameworks[fw]
			if !ok || !verdict.Applicable {
				continue
			}
			fs := summary.Frameworks[fw]
			fs.ApplicableKeys++
			if verdict.Status == model.VerdictCompliant {
				fs.CompliantKeys++
			} else {
				fs.NonCompliant++
			}
			scoreSums[fw] += verdict.Score
			summary.Frameworks[fw] = fs
		}
	}

	for _, fw := range model.Frameworks {
		fs := summary.Frameworks[fw]
		if fs.ApplicableKeys > 0 {
			fs.ComplianceRate = round2(float64(fs.CompliantKeys) / float64(fs.ApplicableKeys) * 100)
			fs.AverageScore = round2(scoreSums[fw] / float64(fs.ApplicableKeys))
		} else {
			// A framework nothing is subject to is vacuously clean.
			fs.ComplianceRate = 100
			fs.AverageScore = 100
		}
		summary.Frameworks[fw] = fs
	}

	return summary
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
