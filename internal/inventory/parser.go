// Copyright (c) 2025 Keyledger Team
// Keyledger - cryptographic key metadata inventory
// This source code is licensed under the MIT license found in the LICENSE file.

// package inventory implements the record pipeline: parsing one YAML
// document per key, validating it against the evolving schema, tracking
// duplicate identities across the corpus, and building the aggregate index.
package inventory

import (
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/weylandt/keyledger/internal/model"
)

// ParseDocument deserializes one raw document into a generic mapping.
// It returns ErrEmptyDocument for empty or null documents and a *ParseError
// for malformed YAML. Semantically wrong but well-formed input passes; that
// is the validator's job.
func ParseDocument(data []byte, filename string) (map[string]any, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, &ParseError{File: filename, Err: err}
	}
	if len(raw) == 0 {
		return nil, ErrEmptyDocument
	}
	return raw, nil
}

// LoadDocument reads and parses the document at path.
func LoadDocument(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseDocument(data, filepath.Base(path))
}

// DecodeRecord loosely decodes a document into a typed record without
// schema validation. Consumers that tolerate partial records (rotation
// checks, checklists) use this; the index builder goes through Validate.
func DecodeRecord(data []byte) (*model.KeyRecord, error) {
	var rec model.KeyRecord
	if err := yaml.Unmarshal(data, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// LoadRecord reads and loosely decodes the record at path.
func LoadRecord(path string) (*model.KeyRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return DecodeRecord(data)
}

// ListDocuments returns the sorted paths of all YAML documents in dir.
func ListDocuments(dir string) ([]string, error) {
	yamlFiles, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return nil, err
	}
	ymlFiles, err := filepath.Glob(filepath.Join(dir, "*.yml"))
	if err != nil {
		return nil, err
	}
	files := append(yamlFiles, ymlFiles...)
	sort.Strings(files)
	return files, nil
}
