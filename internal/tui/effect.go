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

package tui

// Route names a top-level view the reducer can switch to.
type Route string

const (
	RoutePalette Route = "palette"
	RouteTable   Route = "table"
	RouteRun     Route = "run"
	RouteModal   Route = "modal"
)

// RunControlCmd names a WorkflowRunControl effect's operation.
type RunControlCmd string

const (
	RunControlPause  RunControlCmd = "pause"
	RunControlResume RunControlCmd = "resume"
	RunControlCancel RunControlCmd = "cancel"
)

// Effect describes a long or blocking operation for a Dispatcher to
// execute off the UI goroutine, delivering its outcome back as a Msg.
// Model's handlers do not return Effects (see NewModel). Effect
// is a closed tagged union over the variants below; Kind selects which
// field is populated.
type Effect struct {
	Kind EffectKind

	HTTPExec          *HTTPExecEffect
	ProviderRefresh    *ProviderRefreshEffect
	WorkflowRunControl *WorkflowRunControlEffect
	CopyToClipboard    *CopyToClipboardEffect
	ShowModal          *ShowModalEffect
	CloseModal         *struct{}
	SwitchTo           *SwitchToEffect
	SendToPalette      *SendToPaletteEffect
	ListDirectory      *ListDirectoryEffect
	ReadFile           *ReadFileEffect
	ReadRemoteFile     *ReadRemoteFileEffect
}

// EffectKind tags Effect's active variant.
type EffectKind string

const (
	EffectHTTPExec          EffectKind = "http_exec"
	EffectProviderRefresh    EffectKind = "provider_refresh"
	EffectWorkflowRunControl EffectKind = "workflow_run_control"
	EffectCopyToClipboard    EffectKind = "copy_to_clipboard"
	EffectShowModal          EffectKind = "show_modal"
	EffectCloseModal         EffectKind = "close_modal"
	EffectSwitchTo           EffectKind = "switch_to"
	EffectSendToPalette      EffectKind = "send_to_palette"
	EffectListDirectory      EffectKind = "list_directory"
	EffectReadFile           EffectKind = "read_file"
	EffectReadRemoteFile     EffectKind = "read_remote_file"
)

// HTTPExecEffect invokes a resolved command's execution, correlated
// back to the caller by RequestID.
type HTTPExecEffect struct {
	RequestID string
	Group     string
	Name      string
	Args      map[string]any
}

// ProviderRefreshEffect rebuilds one provider-cache fingerprint.
type ProviderRefreshEffect struct {
	Fingerprint       string
	ProviderCommandID string
	BoundInputs       map[string]any
}

// WorkflowRunControlEffect sends pause/resume/cancel to a running
// workflow's scheduler.
type WorkflowRunControlEffect struct {
	RunID string
	Cmd   RunControlCmd
}

// CopyToClipboardEffect copies Text to the system clipboard.
type CopyToClipboardEffect struct {
	Text string
}

// ShowModalEffect opens a named modal with an associated payload (a
// confirmation prompt, a detail view, etc).
type ShowModalEffect struct {
	Title   string
	Body    string
	Payload any
}

// SwitchToEffect changes the active top-level route.
type SwitchToEffect struct {
	Route Route
}

// SendToPaletteEffect seeds the palette's input line with a spec (used
// when a suggestion or a keyboard shortcut pre-fills a command).
type SendToPaletteEffect struct {
	Spec string
}

// ListDirectoryEffect lists Path's entries (used by file-path flag
// suggestions).
type ListDirectoryEffect struct {
	Path string
}

// ReadFileEffect reads a local file's contents.
type ReadFileEffect struct {
	Path string
}

// ReadRemoteFileEffect reads a remote URL's contents.
type ReadRemoteFileEffect struct {
	URL string
}
