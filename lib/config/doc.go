// Copyright 2026 The Ratchet Authors
// SPDX-License-Identifier: Apache-2.0

// Package config loads pawl's configuration file.
//
// The file is chosen by the --config flag, else the PAWL_CONFIG
// environment variable. With neither, [Default] applies unchanged;
// there is no search path. Files ending in .json or .jsonc are parsed
// as JSON with comments and trailing commas (tidwall/jsonc); anything
// else is YAML. Unknown keys are errors in both formats so typos do
// not silently fall back to defaults.
//
// ${HOME} and ${VAR:-default} patterns are expanded in the server
// URL and session file path after loading. No environment variable
// overrides a value set in the file.
//
// [Config.Validate] reports every problem at once via errors.Join.
//
// This package depends on no other pawl packages.
package config
