// Copyright (C) 2026 Noldarim
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/noldarim/agentstream/internal/config"
	"github.com/noldarim/agentstream/internal/stream/tail"
)

func tailCommand(args []string) error {
	opts := &streamOptions{}
	fs := streamFlags("tail", opts)
	var poll time.Duration
	fs.DurationVar(&poll, "poll", 0, "Poll interval for file growth (overrides config)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("usage: %s tail [flags] <file>", appName)
	}
	path := fs.Arg(0)

	if poll == 0 {
		cfg, err := config.NewConfig(opts.configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		poll = cfg.Stream.TailPollInterval
	}

	// Ctrl+C ends the follow; the stream then finalizes normally.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	r := tail.Follow(ctx, path, poll)
	defer r.Close()

	return executeStream(r, opts)
}
