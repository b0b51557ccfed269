// Copyright (c) 2025 Keyledger Team
// Keyledger - cryptographic key metadata inventory
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/weylandt/keyledger/internal/checklist"
	"github.com/weylandt/keyledger/internal/logging"
)

var checklistOutputFile string

var checklistCmd = &cobra.Command{
	Use:   "checklist <file>...",
	Short: "Generate the Markdown approval checklist for new key files",
	Long: `Checklist renders the review checklist attached to key-creation
changesets. Production keys, high-risk classifications and GDPR or SOX
scope add their own review sections per key.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var files []string
		for _, path := range args {
			if strings.TrimSpace(path) != "" {
				files = append(files, path)
			}
		}

		logging.Infof("generating approval checklist for %d files", len(files))
		document := checklist.NewGenerator().ForChangeset(files)
		if err := os.WriteFile(checklistOutputFile, []byte(document), 0o644); err != nil {
			return fmt.Errorf("writing checklist: %w", err)
		}

		fmt.Printf("Approval checklist written to %s\n", checklistOutputFile)
		return nil
	},
}

func init() {
	checklistCmd.Flags().StringVar(&checklistOutputFile, "output", "approval-checklist.md", "Checklist output file")
}
