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

// Package mcpserver exposes the command registry as MCP tools over an
// HTTP+SSE session bridge: every registered CommandSpec becomes a tool
// whose input schema is derived from its flags and positionals, and tool
// calls are dispatched through the same HTTP executor the CLI and TUI
// use. The bridge answers JSON-RPC POSTs on /mcp and streams correlated
// responses as SSE frames on /events (aliased at /sse), so a caller that
// only has one-way access to the POST channel still gets its answer.
package mcpserver
