// Copyright (c) 2026 Blog Team
// Blog - REST blog back end
// This source code is licensed under the MIT license found in the LICENSE file.

// Command-line entrypoint for the blog back end.
//
// Usage:
//
//	go run . serve
//	./blog [command] [flags]
//
// See --help for the available commands.
package main

import (
	"os"

	"github.com/toeirei/blog/internal/logging"
	"github.com/toeirei/blog/ui/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		logging.Errorf("blog: %v", err)
		os.Exit(1)
	}
}
