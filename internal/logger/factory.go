// Copyright (C) 2026 Noldarim
// SPDX-License-Identifier: AGPL-3.0-or-later

package logger

import (
	"github.com/rs/zerolog"
)

// Static logger getters that map directly to the config log.levels keys.
// These ensure consistent logger names across the codebase.

// GetStreamLogger returns a logger for the normalization pipeline.
func GetStreamLogger() zerolog.Logger {
	return GetLogger("stream")
}

// GetAdapterLogger returns a logger for the protocol adapters.
func GetAdapterLogger() zerolog.Logger {
	return GetLogger("adapter")
}

// GetTailLogger returns a logger for the file tailer.
func GetTailLogger() zerolog.Logger {
	return GetLogger("tail")
}

// GetSessionLogLogger returns a logger for session log persistence.
func GetSessionLogLogger() zerolog.Logger {
	return GetLogger("sessionlog")
}

// GetSinkLogger returns a logger for run forwarding.
func GetSinkLogger() zerolog.Logger {
	return GetLogger("sink")
}

// GetCLILogger returns a logger for the command line interface.
func GetCLILogger() zerolog.Logger {
	return GetLogger("cli")
}
