// Copyright (C) 2025 Veritas Law Tools (engineering@veritaslaw.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

/*
This file bridges the build system and the runtime registry. It uses the Go
embed package to bake reference_data.yaml directly into the compiled binary,
so the court and report-series tables are immutable at runtime and travel
with the executable.
*/

package registry

import (
	_ "embed"
)

// ReferenceData holds the raw byte content of reference_data.yaml.
//
// Populated at compile time via the embed directive. Baking the YAML into
// the binary means a deployment cannot drift from the table it was built
// with; adding a court requires a data change and a rebuild, not a code
// change.
//
//go:embed reference_data.yaml
var ReferenceData []byte
