// Copyright (C) 2026 Noldarim
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/noldarim/agentstream/internal/config"
	"github.com/noldarim/agentstream/internal/logger"
	"github.com/noldarim/agentstream/internal/runsink"
	"github.com/noldarim/agentstream/internal/sessionlog"
	"github.com/noldarim/agentstream/internal/stream"
	"github.com/noldarim/agentstream/internal/stream/emitter"
	"github.com/noldarim/agentstream/internal/stream/types"
)

type streamOptions struct {
	configPath string
	label      string
	noSave     bool // --no-save: skip the session log even when enabled in config
}

func streamFlags(name string, opts *streamOptions) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	fs.StringVar(&opts.configPath, "config", "config.yaml", "Path to config file")
	fs.StringVar(&opts.label, "label", "session", "Label for session logs and forwarded runs")
	fs.BoolVar(&opts.noSave, "no-save", false, "Do not write a session log file")
	return fs
}

func normalizeCommand(args []string) error {
	opts := &streamOptions{}
	fs := streamFlags("normalize", opts)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("normalize reads from stdin and takes no arguments")
	}

	return executeStream(os.Stdin, opts)
}

// executeStream runs one normalization pass over r, writing canonical
// events to stdout. Session logging and run forwarding happen after the
// stream ends so a crash mid-stream never leaves a partial log.
func executeStream(r io.Reader, opts *streamOptions) error {
	cfg, err := config.NewConfig(opts.configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Diagnostics go to file only. Stdout carries canonical events.
	if err := logger.Initialize(&cfg.Log); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer logger.CloseGlobal()

	sink, err := runsink.Build(cfg.Sink)
	if err != nil {
		return fmt.Errorf("failed to build run sink: %w", err)
	}

	startedAt := time.Now().UTC()
	var collected []types.Event
	collect := (cfg.Session.Enabled && !opts.noSave) || sink != nil

	p := stream.New(emitter.New(os.Stdout))
	if collect {
		p.Observer = func(ev types.Event) {
			collected = append(collected, ev)
		}
	}

	stats, err := p.Run(r)
	if err != nil {
		if errors.Is(err, stream.ErrUnknownSource) {
			return fmt.Errorf("%w\n\nSupported inputs: Claude Code stream-json, Codex exec --json", err)
		}
		return err
	}

	if cfg.Session.Enabled && !opts.noSave {
		fl, err := sessionlog.NewFileLogger(cfg.Session.Dir)
		if err != nil {
			return err
		}
		path, err := fl.Save(collected, sessionlog.Metadata{
			Source:    stats.Source,
			StartedAt: startedAt.Format(time.RFC3339),
			Events:    len(collected),
		}, opts.label)
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Session log written to %s\n", path)
	}

	if sink != nil {
		if err := forwardRun(sink, stats.Source, opts.label, collected); err != nil {
			return err
		}
	}

	return nil
}

func forwardRun(sink runsink.Sink, source types.Source, label string, events []types.Event) error {
	creator, err := os.Hostname()
	if err != nil {
		creator = appName
	}

	runID, err := sink.CreateRun(runsink.RunMetadata{
		Creator: creator,
		Source:  source,
		Label:   label,
	})
	if err != nil {
		return fmt.Errorf("failed to create run: %w", err)
	}
	return sink.SendEvents(runID, events)
}
