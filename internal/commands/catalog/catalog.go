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

// Package catalog provides the `oatty catalog` command group: deriving a
// command catalog from a JSON hyper-schema document, resolving value
// providers across it, and persisting it so the root command can load
// registry-backed subcommands and the MCP bridge on every later run.
package catalog

import (
	"path/filepath"

	"github.com/spf13/cobra"
)

// NewCommand creates the `catalog` command group.
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Manage the imported command catalog",
		Long: `catalog manages the command catalog oatty derives from a target
API's JSON hyper-schema document: "oatty catalog import" derives commands
from a schema and persists them, "oatty catalog list" shows what is
currently imported. Every imported command becomes both a CLI subcommand
and an MCP tool.`,
	}

	cmd.AddCommand(newImportCommand())
	cmd.AddCommand(newListCommand())
	return cmd
}

// FilePath returns the path the catalog is persisted to, inside the XDG
// config directory.
func FilePath(configDir string) string {
	return filepath.Join(configDir, "catalog.json")
}
