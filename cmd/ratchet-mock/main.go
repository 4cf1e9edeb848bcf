// Copyright 2026 The Ratchet Authors
// SPDX-License-Identifier: Apache-2.0

// ratchet-mock serves the in-memory ratchet backend from
// lib/ratchet/ratchettest over HTTP, for trying pawl without a real
// ratchet deployment:
//
//	ratchet-mock --address 127.0.0.1:8000 --user admin:admin
//	pawl --server http://127.0.0.1:8000/
//
// State lives in memory and is lost on exit.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/ratchet-nac/pawl/cmd/pawl/cli"
	"github.com/ratchet-nac/pawl/lib/process"
	"github.com/ratchet-nac/pawl/lib/ratchet/ratchettest"
	"github.com/ratchet-nac/pawl/lib/version"
)

type mockParams struct {
	Address    string        `flag:"address" desc:"listen address" default:"127.0.0.1:8000"`
	PathPrefix string        `flag:"prefix" desc:"path prefix the API is served under (e.g. /pawl/)"`
	Users      []string      `flag:"user" desc:"seed an operator as username:password (repeatable)" default:"admin:admin"`
	Devices    []string      `flag:"device" desc:"seed a trusted network as network-id:key (repeatable)"`
	Policy     string        `flag:"policy" desc:"initial command policy text" default:"$\n(\n)\n"`
	SessionTTL time.Duration `flag:"session-ttl" desc:"login session lifetime" default:"1h"`
	Verbose    bool          `flag:"verbose,v" desc:"log every request"`
	Version    bool          `flag:"version" desc:"print version information and exit"`
}

func main() {
	if err := run(os.Args[1:]); err != nil {
		process.Fatal(err)
	}
}

func run(args []string) error {
	var params mockParams
	flagSet := cli.FlagsFromParams("ratchet-mock", &params)
	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			fmt.Fprintf(os.Stderr, "Usage:\n  ratchet-mock [flags]\n\nFlags:\n%s", flagSet.FlagUsages())
			return nil
		}
		return err
	}
	if params.Version {
		fmt.Println(version.Current().String())
		return nil
	}
	if flagSet.NArg() > 0 {
		return cli.Validation("unexpected argument: %s", flagSet.Arg(0))
	}

	level := slog.LevelInfo
	if params.Verbose {
		level = slog.LevelDebug
	}
	logger := cli.NewCommandLogger(level)

	server, err := newServer(params, logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	httpServer := &http.Server{
		Addr:              params.Address,
		Handler:           server,
		ReadHeaderTimeout: 10 * time.Second,
	}
	serveDone := make(chan error, 1)
	go func() {
		serveDone <- httpServer.ListenAndServe()
	}()
	logger.Info("ratchet mock running",
		"address", params.Address,
		"prefix", params.PathPrefix,
		"users", len(server.Users()),
		"devices", len(server.Devices()),
	)

	select {
	case err := <-serveDone:
		return err
	case <-ctx.Done():
	}
	logger.Info("shutting down")

	shutdownContext, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownContext); err != nil {
		return err
	}
	if err := <-serveDone; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// newServer builds the mock and applies the seed flags.
func newServer(params mockParams, logger *slog.Logger) (*ratchettest.Server, error) {
	server := ratchettest.New(ratchettest.Options{
		PathPrefix: params.PathPrefix,
		SessionTTL: params.SessionTTL,
		Logger:     logger,
	})
	for _, seed := range params.Users {
		username, password, ok := strings.Cut(seed, ":")
		if !ok || username == "" || password == "" {
			return nil, cli.Validation("--user %q: want username:password", seed)
		}
		if err := server.SeedUser(username, password); err != nil {
			return nil, cli.Internal("seeding user %q: %w", username, err)
		}
	}
	for _, seed := range params.Devices {
		// Cut at the last colon so IPv6 network ids keep theirs.
		index := strings.LastIndex(seed, ":")
		if index <= 0 || index == len(seed)-1 {
			return nil, cli.Validation("--device %q: want network-id:key", seed)
		}
		server.SeedDevice(seed[:index], seed[index+1:])
	}
	server.SetPolicy(params.Policy)
	return server, nil
}
