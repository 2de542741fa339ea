// Copyright (C) 2026 Noldarim
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package emitter writes canonical events as newline-delimited JSON.
package emitter

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/noldarim/agentstream/internal/stream/types"
)

// TimestampFormat is the fixed-precision UTC format stamped on events.
const TimestampFormat = "2006-01-02T15:04:05.000Z"

// Emitter serializes canonical events, one per output line, flushed
// immediately so downstream consumers see minimal delivery latency.
type Emitter struct {
	w   *bufio.Writer
	now func() time.Time
}

// New creates an Emitter writing to w.
func New(w io.Writer) *Emitter {
	return &Emitter{
		w:   bufio.NewWriter(w),
		now: time.Now,
	}
}

// Emit stamps the timestamp when absent, writes the event as one JSON line
// and flushes.
func (e *Emitter) Emit(ev types.Event) error {
	if ev.TS == "" {
		ev.TS = e.now().UTC().Format(TimestampFormat)
	}

	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal canonical event: %w", err)
	}

	if _, err := e.w.Write(data); err != nil {
		return fmt.Errorf("failed to write canonical event: %w", err)
	}
	if err := e.w.WriteByte('\n'); err != nil {
		return fmt.Errorf("failed to write canonical event: %w", err)
	}
	return e.w.Flush()
}
