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

package mcpserver

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/tombee/oatty/internal/commands/catalog"
	"github.com/tombee/oatty/internal/commands/shared"
	xdgconfig "github.com/tombee/oatty/internal/config"
	"github.com/tombee/oatty/internal/httpexec"
	"github.com/tombee/oatty/internal/mcpserver"
	"github.com/tombee/oatty/internal/registry"
	"github.com/tombee/oatty/pkg/httpclient"
)

// NewCommand creates the mcp-server command
func NewCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "mcp-server",
		Short: "Start the Oatty MCP server",
		Long: `Start the Oatty MCP (Model Context Protocol) server.

The server publishes one MCP tool per command in the imported catalog (see
"oatty catalog import") over HTTP+SSE: JSON-RPC requests POST to /mcp, and
responses correlate back to the caller over the /events SSE stream by request
id. A reconnecting client resumes with Last-Event-ID.

Configuration example for an MCP client that speaks HTTP+SSE:
  {
    "mcpServers": {
      "oatty": {
        "url": "http://localhost:8090/mcp"
      }
    }
  }`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHTTPMCPServer(cmd, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8090", "Listen address for the MCP HTTP+SSE server")

	return cmd
}

// runHTTPMCPServer serves the imported command catalog over MCP's HTTP+SSE
// transport.
func runHTTPMCPServer(cmd *cobra.Command, addr string) error {
	versionStr, _, _ := shared.GetVersion()

	configDir, err := xdgconfig.ConfigDir()
	if err != nil {
		return fmt.Errorf("resolve config dir: %w", err)
	}
	reg, baseURL, err := registry.LoadFromFile(catalog.FilePath(configDir))
	if err != nil {
		return fmt.Errorf("no catalog imported yet (run 'oatty catalog import'): %w", err)
	}

	exec, err := httpexec.New(baseURL, httpclient.DefaultConfig())
	if err != nil {
		return fmt.Errorf("build executor: %w", err)
	}

	bridge := mcpserver.NewBridge(reg, exec, "oatty", versionStr, nil)
	transport := mcpserver.NewTransport(bridge, prometheus.DefaultRegisterer)

	httpSrv := &http.Server{Addr: addr, Handler: transport.Handler()}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Fprintln(os.Stderr, "\nReceived shutdown signal, shutting down gracefully...")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		_ = httpSrv.Shutdown(shutdownCtx)
	}()

	fmt.Fprintf(os.Stderr, "Serving %d catalog commands as MCP tools on %s\n", reg.Len(), addr)
	if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("MCP HTTP server error: %w", err)
	}
	return nil
}
