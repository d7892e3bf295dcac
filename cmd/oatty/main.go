// Copyright 2025 Tom Barlow
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"github.com/tombee/oatty/internal/cli"
	"github.com/tombee/oatty/internal/commands/catalog"
	"github.com/tombee/oatty/internal/commands/completion"
	"github.com/tombee/oatty/internal/commands/docs"
	"github.com/tombee/oatty/internal/commands/mcpserver"
	"github.com/tombee/oatty/internal/commands/secrets"
	versioncmd "github.com/tombee/oatty/internal/commands/version"
)

// Version information (injected via ldflags at build time)
var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

func main() {
	cli.SetVersion(version, commit, buildDate)

	rootCmd := cli.NewRootCommand()

	// Imported command catalog and the registry-backed subcommands it derives
	rootCmd.AddCommand(catalog.NewCommand())
	addRegistryCommands(rootCmd)

	// MCP server exposing the imported catalog over HTTP+SSE
	rootCmd.AddCommand(mcpserver.NewCommand())

	// Secrets and completion
	rootCmd.AddCommand(secrets.NewCommand())
	rootCmd.AddCommand(completion.NewCommand())

	// Documentation and version
	rootCmd.AddCommand(docs.NewDocsCommand())
	rootCmd.AddCommand(versioncmd.NewVersionCommand())

	// Custom help command with JSON support
	rootCmd.SetHelpCommand(cli.NewHelpCommand(rootCmd))

	if err := rootCmd.Execute(); err != nil {
		cli.HandleExitError(err)
	}
}
