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

// Package tui implements the interactive reducer: a single-threaded,
// cooperative Elm-architecture loop (bubbletea's tea.Model) where all
// state mutation happens in response to an input event or a Msg
// carrying the outcome of an Effect the reducer previously returned.
package tui

import "time"

// ExecOutcome is the terminal result of one HttpExec effect: either a
// decoded value or an error the reducer renders as a status line.
type ExecOutcome struct {
	StatusCode int
	Value      any
	Err        error
}

// ExecCompletedMsg reports an HttpExec effect's completion. RequestID
// names the request that issued the effect. The reducer keeps no
// register of outstanding request ids and does not read RequestID, so
// every ExecCompletedMsg is applied, including one for a canceled run.
type ExecCompletedMsg struct {
	RequestID string
	Outcome   ExecOutcome
}

// ProviderCompletedMsg reports a ProviderRefresh effect's completion
// for a given fingerprint.
type ProviderCompletedMsg struct {
	Fingerprint string
	Outcome     ExecOutcome
}

// StepStartedMsg/StepFinishedMsg mirror a workflow run's step
// transitions into the reducer, so a visible run view updates without
// the reducer polling the scheduler.
type StepStartedMsg struct {
	RunID  string
	StepID string
}

type StepFinishedMsg struct {
	RunID  string
	StepID string
	Status string
	Output any
	Err    error
}

// RunControlAckMsg confirms a WorkflowRunControl effect (pause, resume,
// cancel) was applied.
type RunControlAckMsg struct {
	RunID string
	Cmd   string
}

// ClockMsg is a tick from the reducer's own ticker, driving spinners
// and relative-time redraws without any effect round trip.
type ClockMsg struct {
	At time.Time
}

// ResizeMsg carries a terminal resize; components read Width/Height
// off the model they're passed rather than owning their own copy.
type ResizeMsg struct {
	Width  int
	Height int
}

// DirectoryListedMsg/FileReadMsg/RemoteFileReadMsg report the
// completion of their matching Effect.
type DirectoryListedMsg struct {
	Path    string
	Entries []string
	Err     error
}

type FileReadMsg struct {
	Path string
	Data []byte
	Err  error
}

type RemoteFileReadMsg struct {
	URL  string
	Data []byte
	Err  error
}

// ClipboardCopiedMsg reports a CopyToClipboard effect's completion.
type ClipboardCopiedMsg struct {
	Err error
}
