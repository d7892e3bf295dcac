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

package catalog

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tombee/oatty/internal/commands/shared"
	"github.com/tombee/oatty/internal/config"
	"github.com/tombee/oatty/internal/provider"
	"github.com/tombee/oatty/internal/registry"
	"github.com/tombee/oatty/internal/schemagen"
)

func newImportCommand() *cobra.Command {
	var (
		baseURL   string
		serviceID string
	)

	cmd := &cobra.Command{
		Use:   "import <schema-file>",
		Short: "Derive and persist a command catalog from a JSON hyper-schema document",
		Long: `import reads a JSON hyper-schema document, derives one command per
"links" entry, resolves value providers across the resulting set (list
commands feeding flags and positionals on sibling commands), and
persists the catalog so future invocations of oatty pick up the
registry-backed subcommands and MCP tools without re-importing.

  oatty catalog import ./platform-api.json --base-url https://api.example.com`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if baseURL == "" {
				return shared.NewMissingInputError("--base-url is required", nil)
			}
			schemaBytes, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read schema file: %w", err)
			}

			cmds, err := schemagen.Generate(schemaBytes)
			if err != nil {
				return fmt.Errorf("derive commands from schema: %w", err)
			}
			if serviceID != "" {
				for _, c := range cmds {
					if c.Execution.HTTP != nil {
						c.Execution.HTTP.ServiceID = serviceID
					}
				}
			}
			provider.Resolve(cmds)

			reg := registry.New()
			if err := reg.Replace(cmds); err != nil {
				return fmt.Errorf("build registry: %w", err)
			}

			configDir, err := config.ConfigDir()
			if err != nil {
				return fmt.Errorf("resolve config dir: %w", err)
			}
			if err := registry.SaveToFile(reg, baseURL, FilePath(configDir)); err != nil {
				return fmt.Errorf("persist catalog: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d commands across %d groups from %s\n",
				reg.Len(), len(reg.Groups()), args[0])
			return nil
		},
	}

	cmd.Flags().StringVar(&baseURL, "base-url", "", "API root every imported command's path is resolved against (required)")
	cmd.Flags().StringVar(&serviceID, "service-id", "", "Tag every imported command's HTTPExecution with this service id")

	return cmd
}
