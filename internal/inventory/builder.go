// Copyright (c) 2025 Keyledger Team
// Keyledger - cryptographic key metadata inventory
// This source code is licensed under the MIT license found in the LICENSE file.

package inventory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/klauspost/compress/zstd"

	"github.com/weylandt/keyledger/internal/logging"
	"github.com/weylandt/keyledger/internal/model"
)

// Stats collects what happened during one aggregation pass.
type Stats struct {
	TotalFiles        int            `json:"total_files_processed"`
	ValidKeys         int            `json:"valid_keys"`
	InvalidKeys       int            `json:"invalid_keys"`
	DuplicateKeys     int            `json:"duplicate_keys"`
	Errors            []string       `json:"-"`
	Warnings          []string       `json:"-"`
	EnvironmentCounts map[string]int `json:"-"`
	ComplianceCounts  map[string]int `json:"-"`
}

// BuildMetadata describes one index build, emitted when the caller asks for
// the {metadata, keys} wrapper.
type BuildMetadata struct {
	BuildTimestamp string         `json:"build_timestamp"`
	TotalKeys      int            `json:"total_keys"`
	Statistics     BuildStatBlock `json:"statistics"`
}

// BuildStatBlock is the statistics section of the build metadata.
type BuildStatBlock struct {
	ByEnvironment map[string]int `json:"by_environment"`
	ByCompliance  map[string]int `json:"by_compliance"`
	Stats
}

// Builder drives the parser, validator and duplicate tracker over the full
// corpus and emits the aggregate index. One Builder serves exactly one run.
type Builder struct {
	InputDir        string
	OutputFile      string
	IncludeMetadata bool
	Backup          bool

	validator *Validator
	tracker   *Tracker
	stats     Stats
}

// NewBuilder returns a builder for one aggregation pass.
func NewBuilder(inputDir, outputFile string, policy Policy) *Builder {
	return &Builder{
		InputDir:   inputDir,
		OutputFile: outputFile,
		Backup:     true,
		validator:  NewValidator(policy),
		tracker:    NewTracker(),
		stats: Stats{
			EnvironmentCounts: make(map[string]int),
			ComplianceCounts:  make(map[string]int),
		},
	}
}

// Stats returns the statistics accumulated so far.
func (b *Builder) Stats() *Stats { return &b.stats }

// Success reports the run-level gate used for CI: at least one valid record
// and zero invalid records.
func (b *Builder) Success() bool {
	return b.stats.ValidKeys > 0 && b.stats.InvalidKeys == 0
}

// Process walks the corpus and returns the valid, normalized records sorted
// by creation date, newest first. Per-file failures are recorded in the
// statistics and never abort the batch; cancelling the context stops the
// iteration, and whatever was already accumulated remains valid.
func (b *Builder) Process(ctx context.Context) ([]*model.KeyRecord, error) {
	files, err := ListDocuments(b.InputDir)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		logging.Warnf("no YAML files found in %s", b.InputDir)
		return nil, nil
	}

	b.stats.TotalFiles = len(files)
	logging.Infof("processing %d YAML files...", len(files))

	var valid []*model.KeyRecord
	for _, path := range files {
		if err := ctx.Err(); err != nil {
			logging.Warnf("build cancelled after %d files", b.stats.ValidKeys+b.stats.InvalidKeys)
			break
		}
		if rec := b.processFile(path); rec != nil {
			valid = append(valid, rec)
			b.stats.ValidKeys++
		} else {
			b.stats.InvalidKeys++
		}
	}

	sortByCreationDesc(valid)
	return valid, nil
}

// processFile runs one document through parse, validate and duplicate
// registration. It returns nil when the file must not join the valid set.
func (b *Builder) processFile(path string) *model.KeyRecord {
	filename := filepath.Base(path)
	logging.Debugf("processing %s", filename)

	data, err := os.ReadFile(path)
	if err != nil {
		b.stats.Errors = append(b.stats.Errors, fmt.Sprintf("%s: %v", filename, err))
		return nil
	}

	raw, err := ParseDocument(data, filename)
	if err != nil {
		if errors.Is(err, ErrEmptyDocument) {
			b.stats.Errors = append(b.stats.Errors, fmt.Sprintf("%s: File is empty", filename))
		} else {
			b.stats.Errors = append(b.stats.Errors, err.Error())
		}
		return nil
	}

	rec, err := b.validator.Validate(raw, filename)
	if err != nil {
		b.stats.Errors = append(b.stats.Errors, err.Error())
		return nil
	}

	outcome := b.tracker.Register(rec)
	if outcome.DuplicateID {
		b.stats.Errors = append(b.stats.Errors, fmt.Sprintf("%s: Duplicate key_id '%s'", filename, rec.KeyID))
		b.stats.DuplicateKeys++
		return nil
	}
	if outcome.DuplicateAlias {
		b.stats.Warnings = append(b.stats.Warnings, fmt.Sprintf("%s: Duplicate alias '%s'", filename, rec.Alias))
	}

	b.stats.EnvironmentCounts[rec.Environment]++
	b.stats.ComplianceCounts[rec.Compliance.NISTClassification]++
	return rec
}

// WriteIndex serializes the records to the output file, optionally wrapped
// with build metadata, backing up the previous index first.
func (b *Builder) WriteIndex(records []*model.KeyRecord) error {
	if err := os.MkdirAll(filepath.Dir(b.OutputFile), 0755); err != nil {
		return fmt.Errorf("could not create output directory: %w", err)
	}

	if b.Backup {
		if err := b.backupPrevious(); err != nil {
			// A failed backup is not fatal; the new index still gets written.
			logging.Warnf("failed to back up previous index: %v", err)
		}
	}

	// An empty inventory still serializes as [] rather than null.
	if records == nil {
		records = []*model.KeyRecord{}
	}
	var payload any = records
	if b.IncludeMetadata {
		payload = map[string]any{
			"metadata": b.Metadata(),
			"keys":     records,
		}
	}

	file, err := os.Create(b.OutputFile)
	if err != nil {
		return fmt.Errorf("could not create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(payload); err != nil {
		return fmt.Errorf("could not encode index: %w", err)
	}

	logging.Infof("wrote %d keys to %s", len(records), b.OutputFile)
	return nil
}

// Metadata builds the metadata block for the current statistics.
func (b *Builder) Metadata() BuildMetadata {
	return BuildMetadata{
		BuildTimestamp: time.Now().UTC().Format(time.RFC3339),
		TotalKeys:      b.stats.ValidKeys,
		Statistics: BuildStatBlock{
			ByEnvironment: b.stats.EnvironmentCounts,
			ByCompliance:  b.stats.ComplianceCounts,
			Stats:         b.stats,
		},
	}
}

// backupPrevious copies the current index, if any, to a timestamped
// zstd-compressed backup next to it.
func (b *Builder) backupPrevious() error {
	src, err := os.Open(b.OutputFile)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	defer func() { _ = src.Close() }()

	backupFile := fmt.Sprintf("%s.%s.backup.zst", b.OutputFile, time.Now().Format("20060102_150405"))
	dst, err := os.Create(backupFile)
	if err != nil {
		return fmt.Errorf("could not create backup file: %w", err)
	}
	defer func() { _ = dst.Close() }()

	zstdWriter, err := zstd.NewWriter(dst)
	if err != nil {
		return fmt.Errorf("could not create zstd writer: %w", err)
	}
	defer func() { _ = zstdWriter.Close() }()

	if _, err := io.Copy(zstdWriter, src); err != nil {
		return fmt.Errorf("could not write backup: %w", err)
	}

	logging.Infof("created backup: %s", backupFile)
	return nil
}

// sortByCreationDesc orders records newest first. Creation timestamps are
// guaranteed parseable for validated records.
func sortByCreationDesc(records []*model.KeyRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		ti, erri := records[i].CreatedTime()
		tj, errj := records[j].CreatedTime()
		if erri != nil || errj != nil {
			return records[i].CreatedAt > records[j].CreatedAt
		}
		return ti.After(tj)
	})
}
