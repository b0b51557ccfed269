// Copyright (c) 2025 Keyledger Team
// Keyledger - cryptographic key metadata inventory
// This source code is licensed under the MIT license found in the LICENSE file.

package inventory

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

const recordTemplate = `key_id: %s
alias: %s
environment: %s
owner: owner@example.com
purpose: Test key
created_at: %s
rotation_interval_days: 90
location: aws-kms://alias/test
compliance:
  pci_scope: none
  nist_classification: internal
tags:
  - test
`

func writeRecord(t *testing.T, dir, keyID, alias, env, createdAt string) string {
	t.Helper()
	path := filepath.Join(dir, keyID+".yaml")
	content := fmt.Sprintf(recordTemplate, keyID, alias, env, createdAt)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestBuilderProcessSortsNewestFirst(t *testing.T) {
	dir := t.TempDir()
	writeRecord(t, dir, "11111111-1111-4111-8111-111111111111", "older", "dev", "2024-01-01T00:00:00Z")
	writeRecord(t, dir, "22222222-2222-4222-8222-222222222222", "newer", "prod", "2025-06-01T00:00:00Z")

	b := NewBuilder(dir, filepath.Join(dir, "out", "keys.json"), DefaultPolicy())
	records, err := b.Process(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].Alias != "newer" || records[1].Alias != "older" {
		t.Errorf("records not sorted newest first: %s, %s", records[0].Alias, records[1].Alias)
	}
	if !b.Success() {
		t.Error("run with only valid records should succeed")
	}
}

func TestBuilderDuplicateHandling(t *testing.T) {
	dir := t.TempDir()
	dupID := "33333333-3333-4333-8333-333333333333"
	writeRecord(t, dir, dupID, "first", "dev", "2024-01-01T00:00:00Z")

	// Same key_id under a different filename: discarded with an error.
	path := filepath.Join(dir, "zz-copy.yaml")
	content := fmt.Sprintf(recordTemplate, dupID, "second", "dev", "2024-02-01T00:00:00Z")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	// Same alias under a new key_id: accepted with a warning.
	writeRecord(t, dir, "44444444-4444-4444-8444-444444444444", "First", "prod", "2024-03-01T00:00:00Z")

	b := NewBuilder(dir, filepath.Join(dir, "keys.json"), DefaultPolicy())
	records, err := b.Process(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 2 {
		t.Fatalf("expected duplicate id to be discarded, got %d records", len(records))
	}

	stats := b.Stats()
	if stats.DuplicateKeys != 1 {
		t.Errorf("expected 1 duplicate key, got %d", stats.DuplicateKeys)
	}
	if len(stats.Warnings) != 1 {
		t.Errorf("expected 1 alias warning, got %v", stats.Warnings)
	}
	if b.Success() {
		t.Error("run with an invalid record should not succeed")
	}
}

func TestBuilderEmptyAndMalformedFiles(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "empty.yaml"), nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "broken.yaml"), []byte("key_id: [unclosed"), 0o644); err != nil {
		t.Fatal(err)
	}

	b := NewBuilder(dir, filepath.Join(dir, "keys.json"), DefaultPolicy())
	records, err := b.Process(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 0 {
		t.Fatalf("expected no valid records, got %d", len(records))
	}
	stats := b.Stats()
	if stats.InvalidKeys != 2 || len(stats.Errors) != 2 {
		t.Errorf("expected 2 invalid files with errors, got %+v", stats)
	}
}

func TestWriteIndexBareArray(t *testing.T) {
	dir := t.TempDir()
	writeRecord(t, dir, "55555555-5555-4555-8555-555555555555", "only", "dev", "2024-01-01T00:00:00Z")

	out := filepath.Join(dir, "docs", "keys.json")
	b := NewBuilder(dir, out, DefaultPolicy())
	records, err := b.Process(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if err := b.WriteIndex(records); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	var decoded []map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("index is not a bare array: %v", err)
	}
	if len(decoded) != 1 {
		t.Fatalf("expected 1 key in index, got %d", len(decoded))
	}
	// A minimal record must not carry optional section keys in the index.
	for _, section := range []string{"lifecycle", "technical", "relationships", "operational", "audit", "metadata"} {
		if _, present := decoded[0][section]; present {
			t.Errorf("minimal record should not emit %q", section)
		}
	}
}

func TestWriteIndexWithMetadata(t *testing.T) {
	dir := t.TempDir()
	writeRecord(t, dir, "66666666-6666-4666-8666-666666666666", "meta", "prod", "2024-01-01T00:00:00Z")

	out := filepath.Join(dir, "keys.json")
	b := NewBuilder(dir, out, DefaultPolicy())
	b.IncludeMetadata = true

	records, err := b.Process(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if err := b.WriteIndex(records); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	var wrapper struct {
		Metadata BuildMetadata    `json:"metadata"`
		Keys     []map[string]any `json:"keys"`
	}
	if err := json.Unmarshal(data, &wrapper); err != nil {
		t.Fatal(err)
	}
	if wrapper.Metadata.TotalKeys != 1 {
		t.Errorf("expected 1 total key in metadata, got %d", wrapper.Metadata.TotalKeys)
	}
	if wrapper.Metadata.Statistics.ByEnvironment["prod"] != 1 {
		t.Errorf("expected environment count for prod: %+v", wrapper.Metadata.Statistics.ByEnvironment)
	}
}

func TestWriteIndexWithMetadataEmptyInventory(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "keys.json")
	b := NewBuilder(dir, out, DefaultPolicy())
	b.IncludeMetadata = true

	if err := b.WriteIndex(nil); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	var wrapper map[string]json.RawMessage
	if err := json.Unmarshal(data, &wrapper); err != nil {
		t.Fatal(err)
	}
	var keys []map[string]any
	if err := json.Unmarshal(wrapper["keys"], &keys); err != nil {
		t.Fatal(err)
	}
	if keys == nil {
		t.Errorf("keys field must be an empty array, got %s", wrapper["keys"])
	}
}

func TestWriteIndexBacksUpPrevious(t *testing.T) {
	dir := t.TempDir()
	writeRecord(t, dir, "77777777-7777-4777-8777-777777777777", "backup", "dev", "2024-01-01T00:00:00Z")

	out := filepath.Join(dir, "keys.json")
	if err := os.WriteFile(out, []byte("[]"), 0o644); err != nil {
		t.Fatal(err)
	}

	b := NewBuilder(dir, out, DefaultPolicy())
	records, err := b.Process(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if err := b.WriteIndex(records); err != nil {
		t.Fatal(err)
	}

	backups, err := filepath.Glob(out + ".*.backup.zst")
	if err != nil {
		t.Fatal(err)
	}
	if len(backups) != 1 {
		t.Errorf("expected one backup file, found %v", backups)
	}
}
