// Copyright (c) 2025 Keyledger Team
// Keyledger - cryptographic key metadata inventory
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"github.com/spf13/cobra"

	"github.com/weylandt/keyledger/internal/config"
	"github.com/weylandt/keyledger/internal/inventory"
	"github.com/weylandt/keyledger/internal/ui"
)

var (
	buildInputDir   string
	buildOutputFile string
	buildNoMetadata bool
	buildNoBackup   bool
	buildDryRun     bool
)

// schemaPolicy translates the configured schema-generation choices into
// the validator's normalization policy.
func schemaPolicy() inventory.Policy {
	return inventory.Policy{
		LowercaseAlias:          appConfig.Schema.AliasCase != config.AliasPreserve,
		FoldEnvironmentSynonyms: appConfig.Schema.EnvironmentSynonyms == config.EnvCanonical,
	}
}

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Compile the key inventory into the JSON index",
	Long: `Build reads every YAML record in the inventory directory, validates
each against the enhanced key schema, drops duplicates, and writes the
consolidated JSON index sorted by creation date, newest first.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		inputDir := buildInputDir
		if inputDir == "" {
			inputDir = appConfig.InputDir
		}
		outputFile := buildOutputFile
		if outputFile == "" {
			outputFile = appConfig.OutputFile
		}

		builder := inventory.NewBuilder(inputDir, outputFile, schemaPolicy())
		builder.IncludeMetadata = !buildNoMetadata
		builder.Backup = !buildNoBackup

		records, err := builder.Process(cmd.Context())
		if err != nil {
			return err
		}

		stats := builder.Stats()
		if buildDryRun {
			ui.PrintBuildSummary(*stats)
			if stats.InvalidKeys > 0 {
				return exitWithCode(1, "dry run found %d invalid keys", stats.InvalidKeys)
			}
			return nil
		}

		if err := builder.WriteIndex(records); err != nil {
			return err
		}

		ui.PrintBuildSummary(*stats)

		if !builder.Success() {
			return exitWithCode(1, "inventory build completed with errors")
		}
		return nil
	},
}

func init() {
	buildCmd.Flags().StringVar(&buildInputDir, "input-dir", "", "Inventory directory (overrides config)")
	buildCmd.Flags().StringVar(&buildOutputFile, "output", "", "Index output file (overrides config)")
	buildCmd.Flags().BoolVar(&buildNoMetadata, "no-metadata", false, "Emit the bare key array without build metadata")
	buildCmd.Flags().BoolVar(&buildNoBackup, "no-backup", false, "Skip the compressed backup of the previous index")
	buildCmd.Flags().BoolVar(&buildDryRun, "dry-run", false, "Validate the inventory without writing the index")
}
