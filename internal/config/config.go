// Copyright (c) 2025 Keyledger Team
// Keyledger - cryptographic key metadata inventory
// This source code is licensed under the MIT license found in the LICENSE file.

// package config loads the Keyledger configuration. Precedence, lowest to
// highest: built-in defaults, keyledger.yaml (user config dir, system config
// dir, current directory), KEYLEDGER_* environment variables, command flags.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// AliasCasePolicy selects which schema generation's alias handling applies:
// the index-builder generation lowercases aliases, the enhanced-schema
// generation preserves authored casing.
type AliasCasePolicy string

const (
	AliasLower    AliasCasePolicy = "lower"
	AliasPreserve AliasCasePolicy = "preserve"
)

// EnvSynonymPolicy selects whether stage/production are kept as distinct
// environment values or folded to staging/prod during normalization.
type EnvSynonymPolicy string

const (
	EnvDistinct  EnvSynonymPolicy = "distinct"
	EnvCanonical EnvSynonymPolicy = "canonical"
)

// SchemaConfig holds the explicit schema-generation policy choices.
type SchemaConfig struct {
	AliasCase           AliasCasePolicy  `mapstructure:"alias_case" yaml:"alias_case"`
	EnvironmentSynonyms EnvSynonymPolicy `mapstructure:"environment_synonyms" yaml:"environment_synonyms"`
}

// RotationConfig holds the rotation-check thresholds in days.
type RotationConfig struct {
	WarningDays  int `mapstructure:"warning_days" yaml:"warning_days"`
	CriticalDays int `mapstructure:"critical_days" yaml:"critical_days"`
}

// NotifyConfig holds notification transport settings. The webhook URL and
// paging credentials usually come from the environment in CI.
type NotifyConfig struct {
	SlackWebhookURL   string `mapstructure:"slack_webhook_url" yaml:"slack_webhook_url"`
	EmailConfig       string `mapstructure:"email_config" yaml:"email_config"`
	PagerDutyAPIKey   string `mapstructure:"pagerduty_api_key" yaml:"pagerduty_api_key"`
	PagerDutyService  string `mapstructure:"pagerduty_service_id" yaml:"pagerduty_service_id"`
	TimeoutSeconds    int    `mapstructure:"timeout_seconds" yaml:"timeout_seconds"`
}

// Config is the full application configuration.
type Config struct {
	InputDir   string         `mapstructure:"input_dir" yaml:"input_dir"`
	OutputFile string         `mapstructure:"output_file" yaml:"output_file"`
	ReportDir  string         `mapstructure:"report_dir" yaml:"report_dir"`
	Language   string         `mapstructure:"language" yaml:"language"`
	Schema     SchemaConfig   `mapstructure:"schema" yaml:"schema"`
	Rotation   RotationConfig `mapstructure:"rotation" yaml:"rotation"`
	Notify     NotifyConfig   `mapstructure:"notify" yaml:"notify"`
}

// Defaults returns the built-in configuration defaults keyed for viper.
func Defaults() map[string]any {
	return map[string]any{
		"input_dir":                   "inventory",
		"output_file":                 "docs/keys.json",
		"report_dir":                  "reports",
		"language":                    "en",
		"schema.alias_case":           string(AliasLower),
		"schema.environment_synonyms": string(EnvDistinct),
		"rotation.warning_days":       30,
		"rotation.critical_days":      7,
		"notify.timeout_seconds":      10,
	}
}

// getConfigPath returns the full path for the configuration file.
func getConfigPath(system bool) (string, error) {
	var configDir string
	var err error

	if system {
		switch runtime.GOOS {
		case "windows":
			configDir = filepath.Join(os.Getenv("ProgramData"), "Keyledger")
		default: // Linux, macOS, etc.
			configDir = "/etc/keyledger"
		}
	} else {
		configDir, err = os.UserConfigDir()
		if err != nil {
			return "", fmt.Errorf("could not get user config directory: %w", err)
		}
		configDir = filepath.Join(configDir, "keyledger")
	}

	return filepath.Join(configDir, "keyledger.yaml"), nil
}

// LoadConfig builds a configuration value of type T from defaults, config
// files, environment variables and the command's flags, in that order of
// precedence.
func LoadConfig[T any](cmd *cobra.Command, defaults map[string]any, configFilePath *string) (T, error) {
	var c T
	v := viper.New()

	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.SetConfigName("keyledger")
	v.SetConfigType("yaml")

	// An explicit --config path has the highest precedence for file-based
	// configuration.
	if configFilePath != nil {
		v.SetConfigFile(*configFilePath)
	}

	if userConfigPath, err := getConfigPath(false); err == nil {
		v.AddConfigPath(filepath.Dir(userConfigPath))
	}
	if systemConfigPath, err := getConfigPath(true); err == nil {
		v.AddConfigPath(filepath.Dir(systemConfigPath))
	}
	v.AddConfigPath(".")

	// A missing config file still yields a usable configuration from
	// defaults, environment and flags. The not-found error is carried to
	// the final return so callers can write a default file on first run.
	var notFound error
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return c, err
		}
		notFound = err
	}

	v.AutomaticEnv()
	v.AllowEmptyEnv(true)
	v.SetEnvPrefix("keyledger")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return c, err
	}

	if err := v.Unmarshal(&c); err != nil {
		return c, err
	}

	return c, notFound
}

// WriteConfigFile persists a configuration to the standard location so a
// first run leaves a discoverable file behind.
func WriteConfigFile[T any](c *T, system bool) error {
	path, err := getConfigPath(system)
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	configDir := filepath.Dir(path)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("could not create config directory %s: %w", configDir, err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return err
	}

	return nil
}
