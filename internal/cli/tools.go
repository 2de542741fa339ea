// Copyright (C) 2026 Noldarim
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"flag"
	"fmt"

	"github.com/noldarim/agentstream/internal/stream/tools"
)

func toolsCommand(args []string) error {
	fs := flag.NewFlagSet("tools", flag.ExitOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}

	fmt.Println("Known tool name mappings (vendor -> canonical):")
	for _, name := range tools.Known() {
		fmt.Printf("  %-20s %s\n", name, tools.Canonical(name))
	}
	fmt.Println()
	fmt.Println("Unlisted names pass through lowercased.")
	return nil
}
