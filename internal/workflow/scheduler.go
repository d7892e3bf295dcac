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
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/tombee/oatty/internal/expr"
	"github.com/tombee/oatty/internal/httpexec"
	"github.com/tombee/oatty/internal/registry"
	oatterrors "github.com/tombee/oatty/pkg/errors"
)

// Scheduler builds Runs for a RuntimeWorkflow, wired to the command
// registry (to resolve a step's `run` into a CommandSpec) and the HTTP
// executor (to actually carry out each step).
type Scheduler struct {
	registry *registry.Registry
	exec     *httpexec.Executor
	logger   *slog.Logger
}

// NewScheduler builds a Scheduler over reg and exec.
func NewScheduler(reg *registry.Registry, exec *httpexec.Executor) *Scheduler {
	return &Scheduler{registry: reg, exec: exec, logger: slog.Default()}
}

// WithLogger sets a custom logger for the scheduler and the runs it
// creates.
func (s *Scheduler) WithLogger(logger *slog.Logger) *Scheduler {
	s.logger = logger
	return s
}

// NewRun builds a Run of wf with the given run id and resolved inputs.
// Call Start to execute it.
func (s *Scheduler) NewRun(id string, wf *RuntimeWorkflow, inputs map[string]any) *Run {
	return &Run{
		ID:         id,
		Workflow:   wf,
		Context:    NewRunContext(inputs),
		registry:   s.registry,
		exec:       s.exec,
		logger:     s.logger,
		status:     RunPending,
		stepStatus: make(map[string]StepStatus, len(wf.Steps)),
		control:    make(chan controlCmd, 4),
	}
}

// StepEvent is published whenever a step's status transitions.
type StepEvent struct {
	RunID     string
	StepID    string
	From      StepStatus
	To        StepStatus
	Timestamp time.Time
}

// RunEvent is published whenever a run's status transitions.
type RunEvent struct {
	RunID     string
	From      RunStatus
	To        RunStatus
	Timestamp time.Time
}

// StepListener observes step status transitions. Per-run, transitions
// are delivered in monotonic order.
type StepListener func(StepEvent)

// RunListener observes run status transitions.
type RunListener func(RunEvent)

type controlCmd int

const (
	cmdPause controlCmd = iota
	cmdResume
	cmdCancel
)

// Run is one execution of a RuntimeWorkflow against a RunContext. A Run
// is created via Scheduler.NewRun and driven by a single call to Start;
// Pause/Resume/Cancel may be called concurrently from another
// goroutine.
type Run struct {
	ID       string
	Workflow *RuntimeWorkflow
	Context  *RunContext

	registry *registry.Registry
	exec     *httpexec.Executor
	logger   *slog.Logger

	mu            sync.Mutex
	status        RunStatus
	stepStatus    map[string]StepStatus
	stepListeners []StepListener
	runListeners  []RunListener

	control    chan controlCmd
	cancelFunc context.CancelFunc
}

// OnStepEvent registers a listener for step status transitions.
func (r *Run) OnStepEvent(l StepListener) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stepListeners = append(r.stepListeners, l)
}

// OnRunEvent registers a listener for run status transitions.
func (r *Run) OnRunEvent(l RunListener) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.runListeners = append(r.runListeners, l)
}

// Status returns the run's current status.
func (r *Run) Status() RunStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.status
}

// StepStatus returns stepID's current status ("" if never scheduled).
func (r *Run) StepStatus(stepID string) StepStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stepStatus[stepID]
}

// Pause requests the run block at the next step boundary. In-flight
// repeat attempts finish their current attempt first.
func (r *Run) Pause() { r.sendControl(cmdPause) }

// Resume continues a paused run from the step it was paused at.
func (r *Run) Resume() { r.sendControl(cmdResume) }

// Cancel requests the run stop. The currently running step's in-flight
// HTTP call is abandoned (its eventual result is discarded); subsequent
// steps transition to Canceled.
func (r *Run) Cancel() {
	r.sendControl(cmdCancel)
	r.mu.Lock()
	cancel := r.cancelFunc
	r.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

func (r *Run) sendControl(cmd controlCmd) {
	select {
	case r.control <- cmd:
	default:
		// A command is already pending; it will be observed at the next
		// boundary before this one, which is an acceptable coalescing
		// since Pause/Resume/Cancel are idempotent at a boundary.
	}
}

// Start computes a topological order over the workflow's steps and
// runs them in that order, evaluating guards, materializing inputs,
// invoking the HTTP executor, and driving repeat/until loops. Start
// blocks until the run reaches a terminal status.
func (r *Run) Start(ctx context.Context) error {
	order, err := topologicalOrder(r.Workflow.Steps)
	if err != nil {
		r.setStatus(RunFailed)
		return err
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	r.mu.Lock()
	r.cancelFunc = cancel
	r.mu.Unlock()

	byID := make(map[string]*RuntimeStep, len(r.Workflow.Steps))
	for i := range r.Workflow.Steps {
		byID[r.Workflow.Steps[i].ID] = &r.Workflow.Steps[i]
	}
	for _, id := range order {
		r.mu.Lock()
		r.stepStatus[id] = StepPending
		r.mu.Unlock()
	}

	r.setStatus(RunRunning)

	for _, id := range order {
		if !r.waitForBoundary(runCtx) {
			r.cancelRemaining(order, id)
			r.setStatus(RunCanceled)
			return &oatterrors.CancellationError{Subject: r.ID}
		}

		step := byID[id]
		if err := r.runStep(runCtx, step); err != nil {
			var cancelErr *oatterrors.CancellationError
			if errors.As(err, &cancelErr) {
				r.cancelRemaining(order, id)
				r.setStatus(RunCanceled)
				return err
			}
			r.setStatus(RunFailed)
			return err
		}
	}

	r.setStatus(RunSucceeded)
	return nil
}

// waitForBoundary drains any pending control command, blocking if the
// run is paused, and reports whether the run should continue (false
// means the run was canceled, via context or an explicit Cancel).
func (r *Run) waitForBoundary(ctx context.Context) bool {
	for {
		select {
		case cmd := <-r.control:
			if !r.applyControl(cmd) {
				return false
			}
			continue
		default:
		}

		if r.Status() != RunPaused {
			return true
		}

		select {
		case <-ctx.Done():
			return false
		case cmd := <-r.control:
			if !r.applyControl(cmd) {
				return false
			}
		}
	}
}

func (r *Run) applyControl(cmd controlCmd) bool {
	switch cmd {
	case cmdCancel:
		r.setStatus(RunCancelRequested)
		return false
	case cmdPause:
		if r.Status() == RunRunning {
			r.setStatus(RunPaused)
		}
	case cmdResume:
		if r.Status() == RunPaused {
			r.setStatus(RunRunning)
		}
	}
	return true
}

// runStep evaluates step's guard, materializes its inputs, invokes it
// (directly or through its repeat loop), and records the resulting
// step status.
func (r *Run) runStep(ctx context.Context, step *RuntimeStep) error {
	resolve := r.Context.Resolver()

	if step.If != nil {
		ok, err := evalGuardNode(step.If, resolve)
		if err != nil {
			r.transitionStep(step.ID, StepFailed)
			return fmt.Errorf("step %s: %w", step.ID, err)
		}
		if !ok {
			r.transitionStep(step.ID, StepSkipped)
			return nil
		}
	}

	r.transitionStep(step.ID, StepRunning)

	spec, err := r.registry.ByCanonicalID(step.Run)
	if err != nil {
		r.transitionStep(step.ID, StepFailed)
		return err
	}

	materializedWith, err := Materialize(step.With, resolve)
	if err != nil {
		r.transitionStep(step.ID, StepFailed)
		return err
	}
	materializedBody, err := Materialize(step.Body, resolve)
	if err != nil {
		r.transitionStep(step.ID, StepFailed)
		return err
	}
	args := mergeMaps(asMap(materializedBody), asMap(materializedWith))

	var output any
	if step.Repeat != nil {
		output, err = r.runRepeat(ctx, step, spec, args)
	} else {
		output, err = r.invokeStep(ctx, spec, args)
		if err == nil {
			r.Context.SetStepOutput(step.ID, output)
		}
	}
	if err != nil {
		if ctx.Err() != nil {
			r.transitionStep(step.ID, StepCanceled)
			return &oatterrors.CancellationError{Subject: r.ID + "/" + step.ID}
		}
		r.transitionStep(step.ID, StepFailed)
		return err
	}

	r.transitionStep(step.ID, StepSucceeded)
	return nil
}

// runRepeat drives a step's repeat/until loop: invoke, publish output,
// evaluate until, and stop on success/max_attempts/timeout, waiting
// `every` between attempts.
func (r *Run) runRepeat(ctx context.Context, step *RuntimeStep, spec *registry.CommandSpec, args map[string]any) (any, error) {
	repeat := step.Repeat
	start := time.Now()
	attempts := 0
	var lastOutput any

	for {
		if !r.waitForBoundary(ctx) {
			return nil, &oatterrors.CancellationError{Subject: r.ID + "/" + step.ID}
		}

		attempts++
		output, err := r.invokeStep(ctx, spec, args)
		if err != nil {
			if ctx.Err() != nil {
				return nil, &oatterrors.CancellationError{Subject: r.ID + "/" + step.ID}
			}
			r.logger.Warn("repeat attempt failed, will retry",
				"step_id", step.ID, "attempt", attempts, "error", err)
		} else {
			lastOutput = output
			r.Context.SetStepOutput(step.ID, output)

			until, evalErr := evalGuardNode(repeat.Until, r.Context.Resolver())
			if evalErr != nil {
				return nil, evalErr
			}
			if until {
				return lastOutput, nil
			}
		}

		if repeat.MaxAttempts > 0 && attempts >= repeat.MaxAttempts {
			return nil, &oatterrors.RepeatError{
				StepID: step.ID, Reason: "max_attempts", Attempts: attempts, Elapsed: time.Since(start),
			}
		}
		if repeat.Timeout > 0 && time.Since(start) >= repeat.Timeout {
			return nil, &oatterrors.RepeatError{
				StepID: step.ID, Reason: "timeout", Attempts: attempts, Elapsed: time.Since(start),
			}
		}

		select {
		case <-ctx.Done():
			return nil, &oatterrors.CancellationError{Subject: r.ID + "/" + step.ID}
		case <-time.After(repeat.Every):
		}
	}
}

// invokeStep renders args into a hydrated shell command and executes
// it through C5. Execute reports a non-2xx response as an outcome, not
// an error; invokeStep turns it into a *errors.ProviderError.
func (r *Run) invokeStep(ctx context.Context, spec *registry.CommandSpec, args map[string]any) (any, error) {
	hydrated := BuildHydratedShellCommand(spec, args)
	outcome, err := r.exec.Execute(ctx, spec, hydrated, "")
	if err != nil {
		return nil, err
	}
	if outcome.StatusCode < 200 || outcome.StatusCode >= 300 {
		return nil, &oatterrors.ProviderError{Provider: "http", StatusCode: outcome.StatusCode, Message: outcome.Log}
	}
	return outcome.Result, nil
}

// cancelRemaining marks every not-yet-terminal step from fromID onward
// (in topological order) Canceled.
func (r *Run) cancelRemaining(order []string, fromID string) {
	started := false
	for _, id := range order {
		if id == fromID {
			started = true
		}
		if !started {
			continue
		}
		r.mu.Lock()
		cur := r.stepStatus[id]
		r.mu.Unlock()
		if cur == StepPending {
			r.transitionStep(id, StepCanceled)
		}
	}
}

func (r *Run) transitionStep(stepID string, to StepStatus) {
	r.mu.Lock()
	from := r.stepStatus[stepID]
	r.stepStatus[stepID] = to
	listeners := append([]StepListener(nil), r.stepListeners...)
	r.mu.Unlock()

	ev := StepEvent{RunID: r.ID, StepID: stepID, From: from, To: to, Timestamp: time.Now()}
	for _, l := range listeners {
		l(ev)
	}
}

func (r *Run) setStatus(to RunStatus) {
	r.mu.Lock()
	from := r.status
	r.status = to
	listeners := append([]RunListener(nil), r.runListeners...)
	r.mu.Unlock()

	ev := RunEvent{RunID: r.ID, From: from, To: to, Timestamp: time.Now()}
	for _, l := range listeners {
		l(ev)
	}
}

// topologicalOrder computes a Kahn's-algorithm order over steps'
// depends_on edges, failing if a dependency is unknown or a cycle
// exists.
func topologicalOrder(steps []RuntimeStep) ([]string, error) {
	ids := make([]string, 0, len(steps))
	idSet := make(map[string]bool, len(steps))
	for _, s := range steps {
		ids = append(ids, s.ID)
		idSet[s.ID] = true
	}

	indegree := make(map[string]int, len(ids))
	adj := make(map[string][]string, len(ids))
	for _, s := range steps {
		for _, dep := range s.DependsOn {
			if !idSet[dep] {
				return nil, &oatterrors.LoadError{
					Subject: s.ID,
					Message: fmt.Sprintf("step '%s' depends_on unknown step '%s'", s.ID, dep),
				}
			}
			adj[dep] = append(adj[dep], s.ID)
			indegree[s.ID]++
		}
	}

	queue := make([]string, 0, len(ids))
	for _, id := range ids {
		if indegree[id] == 0 {
			queue = append(queue, id)
		}
	}

	order := make([]string, 0, len(ids))
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		order = append(order, id)
		for _, next := range adj[id] {
			indegree[next]--
			if indegree[next] == 0 {
				queue = append(queue, next)
			}
		}
	}

	if len(order) != len(ids) {
		return nil, &oatterrors.LoadError{Subject: "workflow", Message: "dependency cycle detected among steps"}
	}
	return order, nil
}

// evalGuardNode evaluates a pre-parsed `if`/`repeat.until` expression
// node, treating a nil node (an absent guard) as false.
func evalGuardNode(node expr.Node, resolve expr.Resolver) (bool, error) {
	if node == nil {
		return false, nil
	}
	v, err := expr.Eval(node, resolve)
	if err != nil {
		return false, err
	}
	return guardTruthy(v), nil
}

// guardTruthy mirrors the expression language's own truthiness rules
// (missing path/null is false, zero/empty-string is false) for values
// returned by Eval, since that helper is unexported.
func guardTruthy(v any) bool {
	switch val := v.(type) {
	case nil:
		return false
	case bool:
		return val
	case float64:
		return val != 0
	case string:
		return val != ""
	default:
		return true
	}
}

func asMap(v any) map[string]any {
	m, _ := v.(map[string]any)
	if m == nil {
		return map[string]any{}
	}
	return m
}

func mergeMaps(base, overlay map[string]any) map[string]any {
	out := make(map[string]any, len(base)+len(overlay))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range overlay {
		out[k] = v
	}
	return out
}
