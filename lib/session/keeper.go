// Copyright 2026 The Ratchet Authors
// SPDX-License-Identifier: Apache-2.0

package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/ratchet-nac/pawl/lib/clock"
	"github.com/ratchet-nac/pawl/lib/ratchet"
)

// TokenHolder is the part of the ratchet client that carries the
// session cookie.
type TokenHolder interface {
	BaseURL() string
	AuthToken() (ratchet.Token, bool)
	SetAuthToken(token ratchet.Token)
	ClearAuthToken()
}

// Keeper moves the session token between a client and a Store.
type Keeper struct {
	Client TokenHolder
	Store  *Store
	Clock  clock.Clock
}

// NewKeeper binds client to store using the wall clock.
func NewKeeper(client TokenHolder, store *Store) *Keeper {
	return &Keeper{Client: client, Store: store, Clock: clock.Real()}
}

// Restore installs the saved token on the client. It reports false
// without error when there is nothing usable to restore: no file, a
// credential for another server, or an expired token. An expired
// credential file is deleted.
func (k *Keeper) Restore() (bool, error) {
	credential, err := k.Store.Load()
	if err != nil {
		if errors.Is(err, ErrNoCredential) {
			return false, nil
		}
		return false, err
	}
	if credential.Server != k.Client.BaseURL() {
		return false, nil
	}
	if !credential.Valid(k.now()) {
		if err := k.Store.Delete(); err != nil {
			return false, err
		}
		return false, nil
	}
	k.Client.SetAuthToken(ratchet.Token{Value: credential.Token, Expires: credential.Expires})
	return true, nil
}

// Remember saves the client's current token. Call it after a
// successful login.
func (k *Keeper) Remember() error {
	token, ok := k.Client.AuthToken()
	if !ok {
		return fmt.Errorf("session: client holds no token to remember")
	}
	return k.Store.Save(&Credential{
		Server:  k.Client.BaseURL(),
		Token:   token.Value,
		Expires: token.Expires,
	})
}

// Forget clears the client's token and deletes the credential file.
func (k *Keeper) Forget() error {
	k.Client.ClearAuthToken()
	return k.Store.Delete()
}

func (k *Keeper) now() time.Time {
	if k.Clock == nil {
		return clock.Real().Now()
	}
	return k.Clock.Now()
}
