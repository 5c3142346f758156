// Copyright (C) 2026 Meridian OSS (oss@meridian-oss.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

/*
This file serves as the bridge between the build system and the runtime logic. It utilizes the Go
embed package to bake the sensitive_topics.yaml file directly into the compiled binary. This
ensures that the denylist is immutable at runtime and travels with the executable.
*/

package enforcement

import (
	_ "embed"
)

// SensitiveTopics holds the raw byte content of the 'sensitive_topics.yaml' file.
//
// This variable is populated at compile-time using the Go 'embed' directive. By baking the
// YAML directly into the binary, the suitability denylist cannot be tampered with on the
// host filesystem without recompiling the application.
//
// Usage:
//
//	// Pass these bytes directly to yaml.Unmarshal
//	err := yaml.Unmarshal(enforcement.SensitiveTopics, &targetStruct)
//
//go:embed sensitive_topics.yaml
var SensitiveTopics []byte
