// Copyright 2026 The Ratchet Authors
// SPDX-License-Identifier: Apache-2.0

// Package console is pawl's terminal interface for ratchet: a
// bubbletea program with a side menu and one page mounted at a time.
//
// Pages:
//
//   - welcome: landing page.
//   - device list and user list: one shared [EntityList] driven by an
//     [EntityKind]. Rows are added and edited through an [Editor] and
//     deleted in two steps (arm, then confirm).
//   - policies: a multi-line editor for ratchet's command policy,
//     pushed whole with Ctrl+S.
//   - login: exchanges a username and password for a session cookie.
//
// Every ratchet request runs as a tea.Cmd with its own timeout, and its
// result is applied only in Update. Each mount gets a serial number;
// results addressed to a page that has since been replaced are
// dropped. A 401 from any page sends the console to the login page
// exactly once and clears the saved session.
//
// Background log records at warn level and above reach the status bar
// through [TUILogHandler].
package console
