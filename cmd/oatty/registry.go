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
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/tombee/oatty/internal/cli"
	"github.com/tombee/oatty/internal/commands/catalog"
	xdgconfig "github.com/tombee/oatty/internal/config"
	"github.com/tombee/oatty/internal/httpexec"
	"github.com/tombee/oatty/internal/providercache"
	"github.com/tombee/oatty/internal/registry"
	"github.com/tombee/oatty/pkg/httpclient"
)

const (
	providerCacheSize   = 256
	providerCacheErrTTL = 30 * time.Second
)

// addRegistryCommands loads a previously imported command catalog, if
// one exists, and adds its commands to rootCmd as group subcommands
// (oatty <group> <name>) dispatched through an httpexec.Executor. It is
// a no-op when no catalog has been imported yet.
func addRegistryCommands(rootCmd *cobra.Command) {
	configDir, err := xdgconfig.ConfigDir()
	if err != nil {
		return
	}
	reg, baseURL, err := registry.LoadFromFile(catalog.FilePath(configDir))
	if err != nil {
		// No catalog imported yet, or it failed to load; `oatty catalog
		// import` is how a user creates or repairs it.
		return
	}

	cfg := httpclient.DefaultConfig()
	exec, err := httpexec.New(baseURL, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to build executor for imported catalog: %v\n", err)
		return
	}

	cache, err := providercache.New(providerCacheSize, providerCacheErrTTL)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to build provider cache: %v\n", err)
		return
	}

	for _, groupCmd := range cli.BuildRegistryCommands(reg, exec, cache) {
		rootCmd.AddCommand(groupCmd)
	}
}
