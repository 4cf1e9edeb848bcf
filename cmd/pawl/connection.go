// Copyright 2026 The Ratchet Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"log/slog"

	"github.com/ratchet-nac/pawl/cmd/pawl/cli"
	"github.com/ratchet-nac/pawl/lib/clock"
	"github.com/ratchet-nac/pawl/lib/config"
	"github.com/ratchet-nac/pawl/lib/ratchet"
	"github.com/ratchet-nac/pawl/lib/session"
)

// connectionParams are the flags every command that talks to ratchet
// embeds.
type connectionParams struct {
	ConfigPath string `json:"-" flag:"config,c" desc:"configuration file (default $PAWL_CONFIG)"`
	Server     string `json:"-" flag:"server" desc:"ratchet pawl API base URL, overriding the configuration file"`
}

// connection is a configured ratchet client with its session store.
type connection struct {
	config *config.Config
	client *ratchet.Client
	store  *session.Store
	keeper *session.Keeper
	logger *slog.Logger
}

// open loads the configuration and builds the client. It does not
// touch the network.
func (params *connectionParams) open(logger *slog.Logger) (*connection, error) {
	cfg, err := params.load()
	if err != nil {
		return nil, err
	}
	return connect(cfg, logger)
}

// load reads the configuration file and applies --server.
func (params *connectionParams) load() (*config.Config, error) {
	cfg, err := config.Load(params.ConfigPath)
	if err != nil {
		return nil, cli.Validation("%w", err).
			WithHint("Check the file named by --config or $PAWL_CONFIG.")
	}
	if params.Server != "" {
		cfg.Server = params.Server
	}
	if err := cfg.Validate(); err != nil {
		return nil, cli.Validation("%w", err)
	}
	return cfg, nil
}

func connect(cfg *config.Config, logger *slog.Logger) (*connection, error) {
	client, err := ratchet.NewClient(ratchet.ClientConfig{
		BaseURL:    cfg.Server,
		CookieName: cfg.CookieName,
		Logger:     logger,
	})
	if err != nil {
		return nil, cli.Validation("%w", err)
	}
	store := session.NewStore(cfg.SessionFile)
	return &connection{
		config: cfg,
		client: client,
		store:  store,
		keeper: session.NewKeeper(client, store),
		logger: logger,
	}, nil
}

// restore installs the saved session, if any. A credential file that
// cannot be read is logged and treated as absent.
func (c *connection) restore() bool {
	restored, err := c.keeper.Restore()
	if err != nil {
		c.logger.Warn("ignoring saved session", "path", c.store.Path, "error", err)
		return false
	}
	return restored
}

// requireSession restores the saved session or fails with a hint to
// log in.
func (c *connection) requireSession() error {
	if c.restore() {
		return nil
	}
	return cli.Forbidden("not logged in to %s", c.client.BaseURL()).
		WithHint("Run 'pawl login <username>' first.")
}

// probe returns the configured session check.
func (c *connection) probe() session.Probe {
	if c.config.SessionProbe == config.ProbeCookie {
		return &session.CookieProbe{Store: c.store, Server: c.client.BaseURL(), Clock: clock.Real()}
	}
	return &session.EndpointProbe{Client: c.client}
}

// request bounds one ratchet call by the configured timeout.
func (c *connection) request(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, c.config.Timeout())
}

// fetchFailed categorizes a fetch error. A rejected session is
// forgotten so the next command does not send it again.
func (c *connection) fetchFailed(action string, err error) error {
	toolError := cli.FromRatchet(action, err)
	if toolError.Category == cli.CategoryForbidden {
		c.forgetRejected()
		toolError.WithHint("Run 'pawl login <username>' to start a new session.")
	}
	return toolError
}

// mutated checks the result of a mutating call. A 503 is logged as a
// warning and reported as success: ratchet accepted the change but
// could not confirm it reached the enforcement point.
func (c *connection) mutated(action string, result ratchet.Result, err error, goneIsSuccess bool) error {
	if err != nil {
		return cli.FromRatchet(action, err)
	}
	switch result.Outcome() {
	case ratchet.OutcomeUnavailable:
		c.logger.Warn("ratchet not responding, change may not take effect", "action", action)
		return nil
	case ratchet.OutcomeUnauthorized:
		c.forgetRejected()
	}
	if toolError := cli.FromResult(action, result, goneIsSuccess); toolError != nil {
		if toolError.Category == cli.CategoryForbidden {
			toolError.WithHint("Run 'pawl login <username>' to start a new session.")
		}
		return toolError
	}
	return nil
}

func (c *connection) forgetRejected() {
	if err := c.keeper.Forget(); err != nil {
		c.logger.Warn("could not delete rejected session", "path", c.store.Path, "error", err)
	}
}
