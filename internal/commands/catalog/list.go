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

	"github.com/spf13/cobra"

	"github.com/tombee/oatty/internal/config"
	"github.com/tombee/oatty/internal/registry"
)

func newListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List every command in the imported catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			configDir, err := config.ConfigDir()
			if err != nil {
				return fmt.Errorf("resolve config dir: %w", err)
			}
			reg, baseURL, err := registry.LoadFromFile(FilePath(configDir))
			if err != nil {
				return fmt.Errorf("no catalog imported yet (run 'oatty catalog import'): %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Catalog: %d commands, base URL %s\n\n", reg.Len(), baseURL)
			for _, group := range reg.Groups() {
				fmt.Fprintf(out, "%s:\n", group)
				for _, spec := range reg.Iter() {
					if spec.Group != group {
						continue
					}
					fmt.Fprintf(out, "  %-24s %s\n", spec.Display(), spec.Summary)
				}
			}
			return nil
		},
	}
}
