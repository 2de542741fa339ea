// Copyright (C) 2026 Noldarim
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"os"
)

const (
	appName    = "agentstream"
	appVersion = "0.1.0"
)

// Execute runs the CLI application
func Execute() error {
	if len(os.Args) < 2 {
		return printUsage()
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "normalize":
		return normalizeCommand(args)
	case "tail":
		return tailCommand(args)
	case "tools":
		return toolsCommand(args)
	case "version":
		fmt.Printf("%s version %s\n", appName, appVersion)
		return nil
	case "help", "-h", "--help":
		return printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		return printUsage()
	}
}

func printUsage() error {
	fmt.Printf(`%s - agent stream normalizer

Usage:
  %s <command> [arguments]

Commands:
  normalize      Read agent output from stdin, emit canonical events on stdout
  tail <file>    Follow a growing agent log file and emit canonical events
  tools          List known tool name mappings
  version        Print version information
  help           Show this help message

Examples:
  claude -p "fix the bug" --output-format stream-json | %s normalize
  codex exec --json "fix the bug" | %s normalize --label fix-bug
  %s tail /var/log/agent/session.jsonl
  %s tools

`, appName, appName, appName, appName, appName, appName)
	return nil
}
