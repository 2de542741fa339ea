// Copyright (C) 2026 Noldarim
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package tail follows a JSONL file that is still being written and exposes
// it as a reader for the normalization pipeline. It polls rather than using
// inotify so it also works on network and overlay filesystems.
package tail

import (
	"bufio"
	"context"
	"io"
	"os"
	"time"

	"github.com/noldarim/agentstream/internal/logger"
)

// DefaultPollInterval is used when the configured interval is zero.
const DefaultPollInterval = 100 * time.Millisecond

// Follow returns a reader over the lines of path, including lines appended
// after the follow starts. The file does not have to exist yet; the follower
// waits for it to appear. The returned reader yields EOF once ctx is
// canceled and all data read so far has been consumed.
func Follow(ctx context.Context, path string, pollInterval time.Duration) io.ReadCloser {
	if pollInterval <= 0 {
		pollInterval = DefaultPollInterval
	}

	pr, pw := io.Pipe()
	go follow(ctx, path, pollInterval, pw)
	return pr
}

func follow(ctx context.Context, path string, pollInterval time.Duration, pw *io.PipeWriter) {
	log := logger.GetTailLogger()

	file, err := waitForFile(ctx, path, pollInterval)
	if err != nil {
		pw.CloseWithError(err)
		return
	}
	if file == nil {
		// Canceled before the file appeared.
		pw.Close()
		return
	}
	defer file.Close()

	log.Info().Str("file", path).Msg("Following file")

	reader := bufio.NewReader(file)
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	var linesRead int64
	for {
		// Drain everything currently available.
		for {
			line, err := reader.ReadBytes('\n')
			if len(line) > 0 {
				linesRead++
				if _, werr := pw.Write(line); werr != nil {
					// Reader side closed; stop following.
					return
				}
			}
			if err != nil {
				if err != io.EOF {
					log.Error().Err(err).Str("file", path).Msg("Read failed, stopping follow")
					pw.CloseWithError(err)
					return
				}
				break
			}
		}

		select {
		case <-ctx.Done():
			log.Info().Str("file", path).Int64("linesRead", linesRead).Msg("Follow stopped")
			pw.Close()
			return
		case <-ticker.C:
		}
	}
}

// waitForFile polls until the file exists or ctx is canceled. The nil, nil
// return means canceled.
func waitForFile(ctx context.Context, path string, pollInterval time.Duration) (*os.File, error) {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		file, err := os.Open(path)
		if err == nil {
			return file, nil
		}
		if !os.IsNotExist(err) {
			return nil, err
		}

		select {
		case <-ctx.Done():
			return nil, nil
		case <-ticker.C:
		}
	}
}
