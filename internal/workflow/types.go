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

package workflow

import (
	"time"

	"github.com/tombee/oatty/internal/expr"
)

// RuntimeWorkflow is a manifest that has passed every C7 load-time
// check: its `if`/`repeat.until` expressions are pre-parsed, and its
// provider-argument dependency bindings are known to be complete.
type RuntimeWorkflow struct {
	ID          string
	Title       string
	Description string
	Inputs      map[string]ManifestInput
	Steps       []RuntimeStep
	FinalOutput any
}

// RuntimeStep is one manifest step with its expressions pre-parsed.
type RuntimeStep struct {
	ID             string
	Run            string
	DependsOn      []string
	If             expr.Node
	IfSource       string
	With           map[string]any
	Body           any
	Repeat         *RuntimeRepeat
	OutputContract *ManifestOutputContract
}

// RuntimeRepeat is a step's repeat/until loop with its expression
// pre-parsed and its durations pre-computed.
type RuntimeRepeat struct {
	Until       expr.Node
	UntilSource string
	Every       time.Duration
	Timeout     time.Duration
	MaxAttempts int
}

// StepStatus is a step's position in Pending → Running → (Succeeded |
// Failed | Skipped | Canceled).
type StepStatus string

const (
	StepPending   StepStatus = "pending"
	StepRunning   StepStatus = "running"
	StepSucceeded StepStatus = "succeeded"
	StepFailed    StepStatus = "failed"
	StepSkipped   StepStatus = "skipped"
	StepCanceled  StepStatus = "canceled"
)

// RunStatus is a run's position in Pending → Running → (Succeeded |
// Failed | Canceled), with Paused/CancelRequested as intermediate
// states.
type RunStatus string

const (
	RunPending         RunStatus = "pending"
	RunRunning         RunStatus = "running"
	RunPaused          RunStatus = "paused"
	RunCancelRequested RunStatus = "cancel_requested"
	RunSucceeded       RunStatus = "succeeded"
	RunFailed          RunStatus = "failed"
	RunCanceled        RunStatus = "canceled"
)

// terminal reports whether s is a run-ending status.
func (s RunStatus) terminal() bool {
	switch s {
	case RunSucceeded, RunFailed, RunCanceled:
		return true
	default:
		return false
	}
}
