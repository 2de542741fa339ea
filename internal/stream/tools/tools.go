// Copyright (C) 2026 Noldarim
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package tools maps vendor-specific tool and item identifiers to one
// canonical lowercase vocabulary shared by both protocol adapters.
package tools

import (
	"sort"
	"strings"

	"github.com/samber/lo"
)

// table is the fixed vendor-to-canonical mapping. It covers the tool names
// emitted by the streaming-block protocol and the tool-item types emitted by
// the turn-item protocol. Never mutated after definition, so it is safe to
// share without synchronization.
var table = map[string]string{
	// Streaming-block protocol tool names.
	"Bash":      "bash",
	"Read":      "read",
	"Write":     "write",
	"Edit":      "edit",
	"MultiEdit": "edit",
	"Glob":      "glob",
	"Grep":      "grep",
	"WebSearch": "web_search",
	"WebFetch":  "web_fetch",
	"TodoWrite": "todo_list",

	// Turn-item protocol item types.
	"command_execution": "bash",
	"file_change":       "file_change",
	"mcp_tool_call":     "mcp",
	"web_search":        "web_search",
	"todo_list":         "todo_list",
}

// Canonical returns the canonical name for a vendor tool identifier.
// Identifiers absent from the table are lowercased and passed through, so the
// mapping is total and deterministic for any input.
func Canonical(name string) string {
	if canonical, ok := table[name]; ok {
		return canonical
	}
	return strings.ToLower(name)
}

// Known returns the vendor identifiers covered by the static table, sorted.
func Known() []string {
	names := lo.Keys(table)
	sort.Strings(names)
	return names
}
