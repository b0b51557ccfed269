// Copyright (c) 2025 Keyledger Team
// Keyledger - cryptographic key metadata inventory
// This source code is licensed under the MIT license found in the LICENSE file.

package inventory

import (
	"errors"
	"fmt"
	"strings"
)

// ErrEmptyDocument marks a document that parsed to nothing. Callers report
// it separately from malformed input: an intentionally blank file is not a
// parse failure.
var ErrEmptyDocument = errors.New("document is empty")

// ParseError wraps the underlying YAML syntax error for one file.
type ParseError struct {
	File string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: YAML parsing error - %v", e.File, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// ValidationError carries every field-qualified problem found in one
// record. Validation accumulates all violations instead of failing on the
// first so the per-file report is complete.
type ValidationError struct {
	File     string
	Problems []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: Validation error - %s", e.File, strings.Join(e.Problems, "; "))
}
