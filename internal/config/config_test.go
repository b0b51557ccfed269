// Copyright (c) 2025 Keyledger Team
// Keyledger - cryptographic key metadata inventory
// This source code is licensed under the MIT license found in the LICENSE file.

package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// chdir changes the working directory for the duration of the test,
// mirroring t.Chdir which requires Go 1.24+.
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(prev); err != nil {
			t.Error(err)
		}
	})
}

func TestLoadConfigMissingFileReportsNotFound(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	chdir(t, t.TempDir())

	cfg, err := LoadConfig[Config](&cobra.Command{}, Defaults(), nil)
	if err == nil {
		t.Fatal("expected a ConfigFileNotFoundError when no config file exists")
	}
	if !errors.As(err, &viper.ConfigFileNotFoundError{}) {
		t.Fatalf("expected ConfigFileNotFoundError, got: %T %v", err, err)
	}

	// The configuration is still usable from defaults.
	if cfg.Language != "en" {
		t.Errorf("language default = %q, want en", cfg.Language)
	}
	if cfg.Rotation.WarningDays != 30 {
		t.Errorf("warning days default = %d, want 30", cfg.Rotation.WarningDays)
	}
}

func TestLoadConfigReadsFileFromCwd(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	dir := t.TempDir()
	content := "input_dir: records\nlanguage: de\n"
	if err := os.WriteFile(filepath.Join(dir, "keyledger.yaml"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	chdir(t, dir)

	cfg, err := LoadConfig[Config](&cobra.Command{}, Defaults(), nil)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.InputDir != "records" {
		t.Errorf("input dir = %q, want records", cfg.InputDir)
	}
	if cfg.Language != "de" {
		t.Errorf("language = %q, want de", cfg.Language)
	}
	if cfg.Rotation.WarningDays != 30 {
		t.Errorf("warning days default = %d, want 30", cfg.Rotation.WarningDays)
	}
}

func TestWriteConfigFileCreatesFile(t *testing.T) {
	configHome := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", configHome)

	cfg := Config{Language: "en", InputDir: "inventory"}
	if err := WriteConfigFile(&cfg, false); err != nil {
		t.Fatalf("WriteConfigFile: %v", err)
	}

	path := filepath.Join(configHome, "keyledger", "keyledger.yaml")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("expected config file at %s: %v", path, err)
	}
	if len(data) == 0 {
		t.Error("config file is empty")
	}
}
