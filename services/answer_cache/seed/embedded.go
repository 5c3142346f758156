// Copyright (C) 2026 Meridian OSS (oss@meridian-oss.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package seed embeds the demonstration answer table into the binary.
package seed

import (
	_ "embed"
)

// SeedAnswers holds the raw byte content of the 'seed_answers.yaml' file.
//
//go:embed seed_answers.yaml
var SeedAnswers []byte
