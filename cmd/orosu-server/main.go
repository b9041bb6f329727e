/*************************************************************************
 * Copyright 2026 The Orosu Authors
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

// Command orosu-server loads a server configuration file, builds the
// identity registry it describes, and serves authenticated task
// sessions over WebSocket until terminated.
package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofrs/flock"

	"github.com/orosu-ci/orosu/config"
	"github.com/orosu-ci/orosu/log"
	"github.com/orosu-ci/orosu/server"
)

var confLoc = flag.String("config-file", "/etc/orosu/server.yaml", "location of the server configuration file")

func main() {
	flag.Parse()

	cfg, err := config.Load(*confLoc)
	if err != nil {
		fmt.Fprintf(os.Stderr, "orosu-server: failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	lg := log.NewStderr()
	if cfg.LogFile != "" {
		fileLogger, err := log.NewFile(cfg.LogFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "orosu-server: failed to open log file: %v\n", err)
			os.Exit(1)
		}
		lg = fileLogger
	}
	if err := lg.SetLevelString(cfg.LogLevel); err != nil {
		fmt.Fprintf(os.Stderr, "orosu-server: invalid log level: %v\n", err)
		os.Exit(1)
	}
	defer lg.Close()

	if cfg.LockFile != "" {
		fl := flock.New(cfg.LockFile)
		locked, err := fl.TryLock()
		if err != nil {
			lg.Errorf("failed to acquire lock file %s: %v", cfg.LockFile, err)
			os.Exit(1)
		}
		if !locked {
			lg.Errorf("another instance already holds lock file %s", cfg.LockFile)
			os.Exit(1)
		}
		defer fl.Unlock()
	}

	registry, err := server.NewRegistry(cfg)
	if err != nil {
		lg.Errorf("failed to build identity registry: %v", err)
		os.Exit(1)
	}

	srv := server.New(registry, cfg.ChunkSize, lg)

	httpServer := &http.Server{
		Addr:    cfg.Listen,
		Handler: srv,
	}

	errCh := make(chan error, 1)
	go func() {
		lg.Infof("listening on %s", cfg.Listen)
		errCh <- httpServer.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			lg.Errorf("server exited: %v", err)
			os.Exit(1)
		}
	case sig := <-sigCh:
		lg.Infof("received signal %v, shutting down", sig)
		httpServer.Close()
	}
}
