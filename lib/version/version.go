// Copyright 2026 The Ratchet Authors
// SPDX-License-Identifier: Apache-2.0

// Package version reports pawl's build information.
//
// The variables below are injected with -ldflags -X, for example:
//
//	go build -ldflags "-X github.com/ratchet-nac/pawl/lib/version.GitCommit=$(git rev-parse --short HEAD)"
//
// When they are not injected, Current falls back to the VCS stamp the
// Go toolchain embeds in module builds.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

var (
	// Version is the release version.
	Version = "0.1.0-dev"

	// GitCommit is the short git SHA of the build.
	GitCommit = "unknown"

	// GitDirty is "true" when the tree had uncommitted changes.
	GitDirty = "false"

	// BuildTime is the UTC build timestamp.
	BuildTime = "unknown"
)

// Report is the machine-readable form printed by "pawl version --json".
type Report struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	Dirty     bool   `json:"dirty"`
	BuildTime string `json:"build_time"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
}

// Current returns the build information of the running binary.
func Current() Report {
	report := Report{
		Version:   Version,
		Commit:    GitCommit,
		Dirty:     GitDirty == "true",
		BuildTime: BuildTime,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
	if report.Commit != "unknown" {
		return report
	}
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return report
	}
	for _, setting := range info.Settings {
		switch setting.Key {
		case "vcs.revision":
			report.Commit = setting.Value
			if len(report.Commit) > 12 {
				report.Commit = report.Commit[:12]
			}
		case "vcs.modified":
			report.Dirty = setting.Value == "true"
		case "vcs.time":
			if report.BuildTime == "unknown" {
				report.BuildTime = setting.Value
			}
		}
	}
	return report
}

// String formats the report for "pawl version".
func (report Report) String() string {
	dirty := ""
	if report.Dirty {
		dirty = "-dirty"
	}
	return fmt.Sprintf("pawl %s (%s%s, %s)\n  Go: %s\n  Platform: %s",
		report.Version, report.Commit, dirty, report.BuildTime, report.GoVersion, report.Platform)
}
