// Copyright (c) 2025 Keyledger Team
// Keyledger - cryptographic key metadata inventory
// This source code is licensed under the MIT license found in the LICENSE file.

// root.go sets up the command-line interface for the Keyledger
// application using the Cobra library. It defines the root command, the
// subcommands (build, validate, rotation and friends), shared flags and
// the entry point for execution.
package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/weylandt/keyledger/internal/config"
	"github.com/weylandt/keyledger/internal/i18n"
	"github.com/weylandt/keyledger/internal/logging"
)

var version = "dev" // set by the linker

var (
	cfgFile   string
	verbose   bool
	appConfig config.Config
)

// exitError carries a process exit code through cobra's error return.
// Build and check commands use it to distinguish findings (1) from
// operational failures (2).
type exitError struct {
	code int
	msg  string
}

func (e *exitError) Error() string { return e.msg }

func exitWithCode(code int, format string, args ...interface{}) error {
	return &exitError{code: code, msg: fmt.Sprintf(format, args...)}
}

func getConfigPathFromCli(cmd *cobra.Command) (*string, error) {
	if !cmd.Flags().Changed("config") {
		return nil, nil
	}
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, fmt.Errorf("could not read --config flag: %w", err)
	}
	if path == "" {
		return nil, nil
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("config file specified via --config flag not found or is not accessible: %w", err)
	}
	return &path, nil
}

func setupDefaultServices(cmd *cobra.Command, args []string) error {
	configPath, err := getConfigPathFromCli(cmd)
	if err != nil {
		return err
	}

	appConfig, err = config.LoadConfig[config.Config](cmd, config.Defaults(), configPath)
	// A "file not found" error is expected on first run.
	if errors.As(err, &viper.ConfigFileNotFoundError{}) {
		if writeErr := config.WriteConfigFile(&appConfig, false); writeErr != nil {
			logging.Warnf("could not write default config file: %v", writeErr)
		}
	} else if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}

	if appConfig.Language == "" {
		appConfig.Language = "en"
	}

	logging.SetDebug(verbose)
	i18n.Init(appConfig.Language)
	return nil
}

// NewRootCmd creates and configures a new root cobra command. Tests use
// this to get fresh instances without shared flag state.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "keyledger",
		Short: "Keyledger tracks cryptographic key metadata as code.",
		Long: `Keyledger maintains a reviewable inventory of cryptographic key
metadata. Per-key YAML records are validated against the enhanced key
schema, checked for duplicates, compiled into a JSON index, and watched
for rotation and compliance drift.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setupDefaultServices(cmd, args)
		},
	}

	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file")
	cmd.PersistentFlags().String("language", "en", `Output language ("en", "de")`)

	cmd.AddCommand(buildCmd)
	cmd.AddCommand(validateCmd)
	cmd.AddCommand(duplicatesCmd)
	cmd.AddCommand(rotationCmd)
	cmd.AddCommand(complianceCmd)
	cmd.AddCommand(reportCmd)
	cmd.AddCommand(checklistCmd)
	cmd.AddCommand(notifyCmd)

	return cmd
}

// Execute runs the CLI and returns the process exit code. The
// cmd/keyledger main package calls this and passes the result to os.Exit.
func Execute() int {
	rootCmd := NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		var ee *exitError
		if errors.As(err, &ee) {
			if ee.msg != "" {
				logging.Errorf("%s", ee.msg)
			}
			return ee.code
		}
		logging.Errorf("%v", err)
		return 1
	}
	return 0
}
