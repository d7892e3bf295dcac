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
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"

	shellquote "github.com/kballard/go-shellquote"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/tombee/oatty/internal/httpexec"
	"github.com/tombee/oatty/internal/registry"
	"github.com/tombee/oatty/internal/secrets"
)

// toolEntry pairs a published tool's schema with its direct handler, so
// the HTTP+SSE transport can dispatch a "tools/call" JSON-RPC request
// without going through mcp-go's stdio session machinery.
type toolEntry struct {
	Tool    mcp.Tool
	Handler func(ctx context.Context, arguments map[string]any) (*mcp.CallToolResult, error)
}

// Bridge wires the command registry to an MCP tool surface: every
// CommandSpec becomes a tool, and calling it dispatches through exec the
// same way the CLI and TUI do. It registers with an embedded
// server.MCPServer (for stdio parity with the teacher's own tool
// publication) and keeps its own name-to-handler table the HTTP+SSE
// transport calls directly.
type Bridge struct {
	reg       *registry.Registry
	exec      *httpexec.Executor
	mcpServer *server.MCPServer
	tools     map[string]toolEntry
	order     []string
	logger    *slog.Logger
	name      string
	version   string
}

// NewBridge builds a Bridge over reg, dispatching tool calls through
// exec, and registers one tool per command in reg.
func NewBridge(reg *registry.Registry, exec *httpexec.Executor, name, version string, logger *slog.Logger) *Bridge {
	if logger == nil {
		logger = slog.Default()
	}
	b := &Bridge{
		reg:       reg,
		exec:      exec,
		mcpServer: server.NewMCPServer(name, version),
		tools:     make(map[string]toolEntry),
		logger:    logger,
		name:      name,
		version:   version,
	}
	b.registerTools()
	return b
}

// MCPServer returns the underlying mcp-go server, for transports (stdio)
// that want to drive it directly.
func (b *Bridge) MCPServer() *server.MCPServer {
	return b.mcpServer
}

// Tools returns every published tool's schema, in registration order.
func (b *Bridge) Tools() []mcp.Tool {
	out := make([]mcp.Tool, 0, len(b.order))
	for _, name := range b.order {
		out = append(out, b.tools[name].Tool)
	}
	return out
}

// Call dispatches a tool call by name directly against the Bridge's own
// table, bypassing mcp-go's session layer. It is what the HTTP+SSE
// transport calls to answer a "tools/call" JSON-RPC request.
func (b *Bridge) Call(ctx context.Context, name string, arguments map[string]any) (*mcp.CallToolResult, error) {
	entry, ok := b.tools[name]
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("unknown tool %q", name)), nil
	}
	return entry.Handler(ctx, arguments)
}

// registerTools adds every command in the registry as an MCP tool,
// generalizing the teacher's fixed six-tool registration into a loop
// over the live registry.
func (b *Bridge) registerTools() {
	for _, spec := range b.reg.Iter() {
		spec := spec
		tool := mcp.Tool{
			Name:        toolName(spec),
			Description: ToolDescription(spec),
			InputSchema: ToolSchema(spec),
		}
		handler := func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return b.callCommand(ctx, spec, request.GetArguments())
		}
		b.mcpServer.AddTool(tool, handler)
		b.tools[tool.Name] = toolEntry{
			Tool: tool,
			Handler: func(ctx context.Context, arguments map[string]any) (*mcp.CallToolResult, error) {
				return b.callCommand(ctx, spec, arguments)
			},
		}
		b.order = append(b.order, tool.Name)
	}
}

// callCommand hydrates spec's shell command from arguments and dispatches
// it through the HTTP executor.
func (b *Bridge) callCommand(ctx context.Context, spec *registry.CommandSpec, args map[string]any) (*mcp.CallToolResult, error) {
	hydrated, err := hydrateShellCommand(spec, args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	outcome, err := b.exec.Execute(ctx, spec, hydrated, "")
	if err != nil {
		b.logger.Warn("mcp tool call failed", "tool", toolName(spec), "error", err)
		return mcp.NewToolResultError(secrets.RedactSensitive(err.Error())), nil
	}

	resultJSON, err := json.Marshal(outcome.Result)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", err)), nil
	}
	if outcome.StatusCode < 200 || outcome.StatusCode >= 300 {
		return mcp.NewToolResultError(secrets.RedactSensitive(outcome.Log)), nil
	}
	return mcp.NewToolResultText(secrets.RedactSensitive(string(resultJSON))), nil
}

// hydrateShellCommand renders spec's group/name plus args as the
// shell-quoted command line the HTTP executor expects: flags (sorted,
// excluding positional names) first, then positionals in declared order.
func hydrateShellCommand(spec *registry.CommandSpec, args map[string]any) (string, error) {
	positionalNames := make(map[string]bool, len(spec.PositionalArgs))
	for _, p := range spec.PositionalArgs {
		positionalNames[p.Name] = true
	}

	tokens := []string{spec.Group, spec.Name}

	flagNames := make([]string, 0, len(args))
	for name := range args {
		if !positionalNames[name] {
			flagNames = append(flagNames, name)
		}
	}
	sort.Strings(flagNames)
	for _, name := range flagNames {
		switch v := args[name].(type) {
		case bool:
			if v {
				tokens = append(tokens, "--"+name)
			}
		case nil:
			continue
		default:
			tokens = append(tokens, "--"+name, fmt.Sprintf("%v", v))
		}
	}

	for _, p := range spec.PositionalArgs {
		v, ok := args[p.Name]
		if !ok {
			return "", fmt.Errorf("missing required argument %q", p.Name)
		}
		tokens = append(tokens, fmt.Sprintf("%v", v))
	}

	return shellquote.Join(tokens...), nil
}
