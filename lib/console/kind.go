// Copyright 2026 The Ratchet Authors
// SPDX-License-Identifier: Apache-2.0

package console

import (
	"context"

	"github.com/ratchet-nac/pawl/lib/ratchet"
)

// EntityKind describes one of the two collections the console edits.
// The list and editor pages are shared; everything that differs
// between devices and users lives here.
type EntityKind struct {
	// Noun names one entity in prompts and log records.
	Noun string

	Title    string
	Subtitle string

	// Editor headings for each mode.
	AddHeading  string
	EditHeading string

	IdentifierLabel string
	SecretLabel     string
	ConfirmLabel    string

	MismatchMessage string
	// ExistsMessage is shown when an add is refused, GoneMessage when
	// an edit is refused.
	ExistsMessage string
	GoneMessage   string

	// EmptyText is shown for a loaded, empty collection.
	EmptyText string

	// DeleteFloor is the collection size at or below which delete is
	// disabled. Users keep at least one account so the operator
	// cannot lock themselves out.
	DeleteFloor int

	List   func(ctx context.Context, api API) ([]string, error)
	Add    func(ctx context.Context, api API, identifier, secret string) (ratchet.Result, error)
	Edit   func(ctx context.Context, api API, identifier, secret string) (ratchet.Result, error)
	Remove func(ctx context.Context, api API, identifier string) (ratchet.Result, error)
}

// DeviceKind edits the trusted systems that may query ratchet.
var DeviceKind = EntityKind{
	Noun:            "system",
	Title:           "Add or Edit Trusted Systems!",
	Subtitle:        "These are network machines that can talk to ratchet, and check passwords.",
	AddHeading:      "Add System",
	EditHeading:     "Edit System",
	IdentifierLabel: "Network ID:",
	SecretLabel:     "TACACS+ Key:",
	ConfirmLabel:    "Confirm Key:",
	MismatchMessage: "TACACS+ Keys do not match",
	ExistsMessage:   "System already exists!",
	GoneMessage:     "System no longer exists!",
	EmptyText:       "Define some systems to get started!",
	DeleteFloor:     0,

	List: func(ctx context.Context, api API) ([]string, error) {
		devices, err := api.ListDevices(ctx)
		if err != nil {
			return nil, err
		}
		identifiers := make([]string, len(devices))
		for index, device := range devices {
			identifiers[index] = device.NetworkID
		}
		return identifiers, nil
	},
	Add: func(ctx context.Context, api API, identifier, secret string) (ratchet.Result, error) {
		return api.AddDevice(ctx, identifier, secret)
	},
	Edit: func(ctx context.Context, api API, identifier, secret string) (ratchet.Result, error) {
		return api.EditDevice(ctx, identifier, secret)
	},
	Remove: func(ctx context.Context, api API, identifier string) (ratchet.Result, error) {
		return api.RemoveDevice(ctx, identifier)
	},
}

// UserKind edits the operator accounts ratchet authenticates.
var UserKind = EntityKind{
	Noun:            "user",
	Title:           "Add or Edit Users!",
	Subtitle:        "These are the accounts ratchet checks passwords for.",
	AddHeading:      "Add User",
	EditHeading:     "Edit User",
	IdentifierLabel: "Username:",
	SecretLabel:     "Password:",
	ConfirmLabel:    "Confirm:",
	MismatchMessage: "Passwords do not match",
	ExistsMessage:   "User already exists!",
	GoneMessage:     "User no longer exists!",
	EmptyText:       "No users defined.",
	DeleteFloor:     1,

	List: func(ctx context.Context, api API) ([]string, error) {
		users, err := api.ListUsers(ctx)
		if err != nil {
			return nil, err
		}
		identifiers := make([]string, len(users))
		for index, user := range users {
			identifiers[index] = user.Username
		}
		return identifiers, nil
	},
	Add: func(ctx context.Context, api API, identifier, secret string) (ratchet.Result, error) {
		return api.AddUser(ctx, identifier, secret)
	},
	Edit: func(ctx context.Context, api API, identifier, secret string) (ratchet.Result, error) {
		return api.EditUser(ctx, identifier, secret)
	},
	Remove: func(ctx context.Context, api API, identifier string) (ratchet.Result, error) {
		return api.RemoveUser(ctx, identifier)
	},
}

// canDelete reports whether a collection of the given size allows
// deleting a row.
func (kind EntityKind) canDelete(count int) bool {
	return count > kind.DeleteFloor
}
