// Copyright (c) 2025 Keyledger Team
// Keyledger - cryptographic key metadata inventory
// This source code is licensed under the MIT license found in the LICENSE file.

// Keyledger maintains a reviewable inventory of cryptographic key
// metadata: validation, duplicate detection, index builds, rotation
// scheduling, compliance reporting and lifecycle notifications.
package main

import (
	"os"

	"github.com/weylandt/keyledger/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
