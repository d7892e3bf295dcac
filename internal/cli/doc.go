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

/*
Package cli provides the root command and shared configuration for Oatty's CLI.

This package creates the main Cobra command tree and handles global concerns like
version information, persistent flags, and error handling. Individual commands
are implemented in the internal/commands subpackages.

# Command Tree

The CLI is organized as:

	oatty
	├── catalog       Import and list the command catalog
	├── <group>       Commands derived from the imported catalog
	├── mcp-server    Serve the catalog as MCP tools over HTTP+SSE
	├── secrets       Secret management
	├── completion    Generate shell completion scripts
	├── docs          Show documentation URLs
	├── version       Show version
	└── help          Show help

# Usage

From main.go:

	cli.SetVersion(version, commit, date)
	rootCmd := cli.NewRootCommand()
	// ... add commands ...
	if err := rootCmd.Execute(); err != nil {
	    cli.HandleExitError(err)
	}

# Global Flags

All commands inherit these flags:

	--verbose, -v    Enable verbose output
	--quiet, -q      Suppress non-error output
	--json           Output in JSON format
	--config         Path to config file

# Error Handling

Errors are handled centrally to ensure proper exit codes:

  - Exit 0: Success
  - Exit 1: Execution failed, or an error that carries no exit code
  - Exit 2: Invalid workflow
  - Exit 3: Missing input
  - Exit 4: Provider error
  - Exit 70: Missing input in non-interactive mode

Use HandleExitError for consistent error handling:

	if err := cmd.Execute(); err != nil {
	    cli.HandleExitError(err)
	}

# Command Registration

Each command package exports a constructor, and cmd/oatty/main.go adds the
result to the root command:

	rootCmd.AddCommand(catalog.NewCommand())
*/
package cli
