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

package registry

import (
	"encoding/json"
	"fmt"
	"os"
)

// catalogFile is the on-disk shape a Registry is persisted as: the
// command list plus the base URL each HTTPExecution's path is resolved
// against, so a later process can rebuild an httpexec.Executor without
// re-running an import.
type catalogFile struct {
	BaseURL  string         `json:"base_url"`
	Commands []*CommandSpec `json:"commands"`
}

// SaveToFile writes every command in reg, plus baseURL, to path as JSON.
func SaveToFile(reg *Registry, baseURL, path string) error {
	data, err := json.MarshalIndent(catalogFile{BaseURL: baseURL, Commands: reg.Iter()}, "", "  ")
	if err != nil {
		return fmt.Errorf("encode catalog: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write catalog %s: %w", path, err)
	}
	return nil
}

// LoadFromFile reads a catalog previously written by SaveToFile and
// rebuilds a Registry from it, along with the base URL it was imported
// against.
func LoadFromFile(path string) (*Registry, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("read catalog %s: %w", path, err)
	}
	var cf catalogFile
	if err := json.Unmarshal(data, &cf); err != nil {
		return nil, "", fmt.Errorf("decode catalog %s: %w", path, err)
	}
	reg := New()
	if err := reg.Replace(cf.Commands); err != nil {
		return nil, "", fmt.Errorf("load catalog %s: %w", path, err)
	}
	return reg, cf.BaseURL, nil
}
