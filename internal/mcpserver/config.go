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
	"encoding/json"
	"fmt"
)

// ClientKind names one of the MCP clients oatty prints a ready-to-paste
// config snippet for.
type ClientKind string

const (
	ClientCodex         ClientKind = "codex"
	ClientClaudeDesktop ClientKind = "claude-desktop"
	ClientCursor        ClientKind = "cursor"
	ClientCline         ClientKind = "cline"
	ClientVSCode        ClientKind = "vscode"
	ClientGeneric       ClientKind = "generic"
)

// SupportedClients lists every ClientKind ConfigSnippet accepts, in a
// fixed order. No CLI command prints the snippets.
var SupportedClients = []ClientKind{
	ClientCodex, ClientClaudeDesktop, ClientCursor, ClientCline, ClientVSCode, ClientGeneric,
}

// ConfigSnippet renders the config fragment a user pastes into the named
// client's own MCP server configuration, pointing it at baseURL's /mcp
// endpoint. Codex uses TOML naming only the /mcp URL; every other client
// in the list, which also names /events,
// uses the same "mcpServers" JSON object shape VS Code, Cursor, Cline and
// Claude Desktop all share.
func ConfigSnippet(kind ClientKind, baseURL string) (string, error) {
	switch kind {
	case ClientCodex:
		return fmt.Sprintf(`[mcp_servers.oatty]
url = %q
`, baseURL+"/mcp"), nil
	case ClientClaudeDesktop, ClientCursor, ClientCline, ClientVSCode, ClientGeneric:
		doc := map[string]any{
			"mcpServers": map[string]any{
				"oatty": map[string]any{
					"url":       baseURL + "/mcp",
					"eventsUrl": baseURL + "/events",
					"transport": "http-sse",
				},
			},
		}
		out, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return "", err
		}
		return string(out), nil
	default:
		return "", fmt.Errorf("unknown MCP client %q", kind)
	}
}
