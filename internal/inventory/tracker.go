// Copyright (c) 2025 Keyledger Team
// Keyledger - cryptographic key metadata inventory
// This source code is licensed under the MIT license found in the LICENSE file.

package inventory

import (
	"fmt"
	"strings"

	"github.com/weylandt/keyledger/internal/model"
)

// Outcome reports what Register found for one record. A key_id collision is
// a hard error: the second occurrence is discarded from the valid set. An
// alias collision is a warning only; the record is still accepted.
type Outcome struct {
	DuplicateID    bool
	DuplicateAlias bool
}

// OK reports whether the record was accepted without any collision.
func (o Outcome) OK() bool { return !o.DuplicateID && !o.DuplicateAlias }

// Tracker maintains the identities seen during one aggregation pass. It is
// created fresh per run and discarded afterward; nothing persists across
// runs because the corpus is always re-scanned from source documents.
type Tracker struct {
	seenIDs     map[string]bool
	seenAliases map[string]bool
}

// NewTracker returns an empty per-run identity tracker.
func NewTracker() *Tracker {
	return &Tracker{
		seenIDs:     make(map[string]bool),
		seenAliases: make(map[string]bool),
	}
}

// Register records the identities of a validated record and reports any
// collision with previously registered records. Aliases are compared
// case-insensitively.
func (t *Tracker) Register(rec *model.KeyRecord) Outcome {
	var out Outcome
	if t.seenIDs[rec.KeyID] {
		out.DuplicateID = true
		return out
	}
	alias := strings.ToLower(rec.Alias)
	if t.seenAliases[alias] {
		out.DuplicateAlias = true
	}
	t.seenIDs[rec.KeyID] = true
	t.seenAliases[alias] = true
	return out
}

// KnownIDs returns the set of key_ids registered so far.
func (t *Tracker) KnownIDs() map[string]bool {
	ids := make(map[string]bool, len(t.seenIDs))
	for id := range t.seenIDs {
		ids[id] = true
	}
	return ids
}

// ChangesetChecker applies the duplicate rules to an incoming changeset
// against an existing corpus. The new and existing identity sets are kept
// separate so a file modified in place is not flagged against its own
// prior version.
type ChangesetChecker struct {
	existingIDs     map[string]bool
	existingAliases map[string]bool
	newIDs          map[string]bool
	newAliases      map[string]bool
}

// NewChangesetChecker returns an empty changeset checker.
func NewChangesetChecker() *ChangesetChecker {
	return &ChangesetChecker{
		existingIDs:     make(map[string]bool),
		existingAliases: make(map[string]bool),
		newIDs:          make(map[string]bool),
		newAliases:      make(map[string]bool),
	}
}

// AddExisting records the identities of one record already in the corpus.
func (c *ChangesetChecker) AddExisting(keyID, alias string) {
	if keyID != "" {
		c.existingIDs[keyID] = true
	}
	if alias != "" {
		c.existingAliases[strings.ToLower(alias)] = true
	}
}

// Check examines one changeset record and returns the collision messages.
// A key_id collision (against corpus or changeset) is an error; an alias
// collision against the corpus is a warning, against another changeset
// file an error.
func (c *ChangesetChecker) Check(rec *model.KeyRecord, filename string) []string {
	var issues []string

	if rec.KeyID != "" {
		if c.existingIDs[rec.KeyID] {
			issues = append(issues, fmt.Sprintf("%s: Duplicate key_id '%s' already exists in inventory", filename, rec.KeyID))
		}
		if c.newIDs[rec.KeyID] {
			issues = append(issues, fmt.Sprintf("%s: Duplicate key_id '%s' found in multiple new files", filename, rec.KeyID))
		} else {
			c.newIDs[rec.KeyID] = true
		}
	}

	if rec.Alias != "" {
		alias := strings.ToLower(rec.Alias)
		if c.existingAliases[alias] {
			issues = append(issues, fmt.Sprintf("%s: Warning - Alias '%s' already exists in inventory (aliases should be unique)", filename, rec.Alias))
		}
		if c.newAliases[alias] {
			issues = append(issues, fmt.Sprintf("%s: Duplicate alias '%s' found in multiple new files", filename, rec.Alias))
		} else {
			c.newAliases[alias] = true
		}
	}

	return issues
}

// CheckReferences verifies that every key_id referenced in the record's
// relationships section resolves against the known set.
func CheckReferences(rec *model.KeyRecord, filename string, known map[string]bool) []string {
	if rec.Relationships == nil {
		return nil
	}
	var issues []string
	for _, id := range rec.Relationships.DependsOn {
		if !known[id] {
			issues = append(issues, fmt.Sprintf("%s: Referenced key in depends_on '%s' does not exist", filename, id))
		}
	}
	for _, id := range rec.Relationships.RelatedKeys {
		if !known[id] {
			issues = append(issues, fmt.Sprintf("%s: Referenced key in related_keys '%s' does not exist", filename, id))
		}
	}
	return issues
}
