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

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tombee/oatty/internal/history"
	"github.com/tombee/oatty/internal/registry"
)

const (
	FocusPaletteInput FocusFlag = "palette_input"
	FocusResultsTable FocusFlag = "results_table"
	FocusDetailPane   FocusFlag = "detail_pane"
)

// Dispatcher hands an Effect to the runtime loop and returns the
// tea.Cmd that will deliver its eventual Msg. Production wiring
// supplies one backed by the HTTP executor, provider cache, and
// workflow scheduler; tests supply a stub that records effects.
type Dispatcher interface {
	Dispatch(Effect) tea.Cmd
}

// paletteState holds the command palette's own input line, caret,
// current phase, and suggestion list.
type paletteState struct {
	visible     bool
	input       string
	caret       int
	phase       Phase
	suggestions []Suggestion
	selected    int
}

// Model is the root reducer: a single tea.Model whose Update method is
// the only place any component's state changes, driven by either a
// terminal input event or a Msg reporting an Effect's outcome.
type Model struct {
	reg        *registry.Registry
	hist       history.Store
	dispatcher Dispatcher

	route  Route
	focus  *FocusRing
	width  int
	height int

	palette paletteState
	result  Inferred
	modal   *ShowModalEffect
	status  string

	activeRunID string
}

// NewModel builds the root reducer over a command registry and
// history store. dispatcher is stored on the model, but no handler
// calls it: the handlers return tea.Cmd values and emit no Effects.
func NewModel(reg *registry.Registry, hist history.Store, dispatcher Dispatcher) *Model {
	m := &Model{
		reg:        reg,
		hist:       hist,
		dispatcher: dispatcher,
		route:      RoutePalette,
	}
	m.focus = NewFocusRing(
		Focusable{Flag: FocusPaletteInput, Hint: "type to search"},
		Focusable{Flag: FocusResultsTable, Hint: "↑/↓ navigate • enter select"},
	)
	return m
}

// Init satisfies tea.Model. The reducer issues no effects at startup.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update is the reducer's single entry point: every Msg is routed to a
// handle_* method, never mutating state outside one of them.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch typed := msg.(type) {
	case tea.WindowSizeMsg:
		return m, m.handleResize(typed)
	case tea.KeyMsg:
		return m, m.handleKey(typed)
	case tea.MouseMsg:
		return m, m.handleMouse(typed)
	case ExecCompletedMsg:
		return m, m.handleExecCompleted(typed)
	case ProviderCompletedMsg:
		return m, m.handleProviderCompleted(typed)
	case StepStartedMsg:
		return m, m.handleStepStarted(typed)
	case StepFinishedMsg:
		return m, m.handleStepFinished(typed)
	case RunControlAckMsg:
		return m, m.handleRunControlAck(typed)
	case ClockMsg:
		return m, nil
	}
	return m, nil
}

func (m *Model) handleResize(msg tea.WindowSizeMsg) tea.Cmd {
	m.width, m.height = msg.Width, msg.Height
	return nil
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "ctrl+c":
		return tea.Quit
	case "ctrl+k":
		m.showPalette()
		return nil
	case "esc":
		return m.handleEsc()
	case "tab":
		m.focus.Next()
		return nil
	case "shift+tab":
		m.focus.Prev()
		return nil
	}

	if m.palette.visible && m.focus.Is(FocusPaletteInput) {
		return m.handlePaletteKey(msg)
	}
	return nil
}

func (m *Model) handleMouse(msg tea.MouseMsg) tea.Cmd {
	if msg.Action != tea.MouseActionPress {
		return nil
	}
	m.focus.HitTest(msg.X, msg.Y)
	return nil
}

// handleEsc implements the cancellation precedence: a modal closes
// first; otherwise an open palette's suggestion popup closes before
// the palette itself clears its input; otherwise, on the run view's
// detail pane, focus returns to the table that opened it.
func (m *Model) handleEsc() tea.Cmd {
	if m.modal != nil {
		m.modal = nil
		return nil
	}
	if m.palette.visible {
		if len(m.palette.suggestions) > 0 {
			m.palette.suggestions = nil
			return nil
		}
		m.hidePalette()
		return nil
	}
	if m.route == RouteRun && m.focus.Is(FocusDetailPane) {
		m.focus.Prev()
	}
	return nil
}

func (m *Model) showPalette() {
	m.palette = paletteState{visible: true}
	m.refreshSuggestions()
}

func (m *Model) hidePalette() {
	m.palette = paletteState{}
}

func (m *Model) handlePaletteKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "enter":
		return m.acceptSuggestion()
	case "up":
		if m.palette.selected > 0 {
			m.palette.selected--
		}
		return nil
	case "down":
		if m.palette.selected < len(m.palette.suggestions)-1 {
			m.palette.selected++
		}
		return nil
	case "backspace":
		if m.palette.caret > 0 {
			m.palette.input = m.palette.input[:m.palette.caret-1] + m.palette.input[m.palette.caret:]
			m.palette.caret--
		}
		m.refreshSuggestions()
		return nil
	default:
		if len(msg.Runes) > 0 {
			text := string(msg.Runes)
			m.palette.input = m.palette.input[:m.palette.caret] + text + m.palette.input[m.palette.caret:]
			m.palette.caret += len(text)
			m.refreshSuggestions()
		}
		return nil
	}
}

func (m *Model) refreshSuggestions() {
	phase, commandTokens, flagName := InferPhase(m.palette.input, m.palette.caret)
	m.palette.phase = phase
	m.palette.selected = 0

	switch phase {
	case PhaseCommand:
		query := ""
		if len(commandTokens) > 0 {
			query = strings.Join(commandTokens, " ")
		}
		m.palette.suggestions = SuggestCommands(m.reg, query)
	case PhaseFlagName:
		spec := m.resolveCommand(commandTokens)
		if spec == nil {
			m.palette.suggestions = nil
			return
		}
		typed := ""
		if tokens := lex(m.palette.input); len(tokens) > 0 {
			idx := tokenAtCaret(tokens, m.palette.caret)
			if idx < len(tokens) {
				typed = tokens[idx].Text
			}
		}
		m.palette.suggestions = SuggestFlags(spec, m.palette.input, typed)
	case PhaseValue:
		spec := m.resolveCommand(commandTokens)
		if spec == nil {
			m.palette.suggestions = nil
			return
		}
		scope := history.PaletteCommandScope(spec.CanonicalID())
		m.palette.suggestions = SuggestValues(spec, flagName, nil, m.hist, scope)
	}
}

func (m *Model) resolveCommand(tokens []string) *registry.CommandSpec {
	if len(tokens) < 2 {
		return nil
	}
	spec, err := m.reg.ByID(tokens[0], tokens[1])
	if err != nil {
		return nil
	}
	return spec
}

func (m *Model) acceptSuggestion() tea.Cmd {
	if m.palette.selected >= len(m.palette.suggestions) {
		return nil
	}
	choice := m.palette.suggestions[m.palette.selected]
	line, caret := Splice(m.palette.input, m.palette.caret, choice.InsertText)
	m.palette.input = line
	m.palette.caret = caret
	m.refreshSuggestions()
	return nil
}

func (m *Model) handleExecCompleted(msg ExecCompletedMsg) tea.Cmd {
	if msg.Outcome.Err != nil {
		m.status = fmt.Sprintf("error: %v", msg.Outcome.Err)
		return nil
	}
	m.result = Infer(msg.Outcome.Value)
	m.route = RouteTable
	m.focus.SetMembers(
		Focusable{Flag: FocusPaletteInput, Hint: "ctrl+k: palette"},
		Focusable{Flag: FocusResultsTable, Hint: "↑/↓ navigate • enter select • esc back"},
	)
	return nil
}

func (m *Model) handleProviderCompleted(msg ProviderCompletedMsg) tea.Cmd {
	if msg.Outcome.Err != nil {
		m.status = fmt.Sprintf("provider refresh failed: %v", msg.Outcome.Err)
	}
	return nil
}

func (m *Model) handleStepStarted(msg StepStartedMsg) tea.Cmd {
	m.activeRunID = msg.RunID
	m.status = fmt.Sprintf("step %s started", msg.StepID)
	return nil
}

func (m *Model) handleStepFinished(msg StepFinishedMsg) tea.Cmd {
	if msg.Err != nil {
		m.status = fmt.Sprintf("step %s failed: %v", msg.StepID, msg.Err)
		return nil
	}
	m.status = fmt.Sprintf("step %s %s", msg.StepID, msg.Status)
	return nil
}

func (m *Model) handleRunControlAck(msg RunControlAckMsg) tea.Cmd {
	m.status = fmt.Sprintf("run %s: %s acknowledged", msg.RunID, msg.Cmd)
	return nil
}

// View renders the current route.
func (m *Model) View() string {
	if m.modal != nil {
		return lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(1, 2).
			Render(m.modal.Title + "\n\n" + m.modal.Body)
	}

	var b strings.Builder
	if m.palette.visible {
		b.WriteString(m.renderPalette())
		b.WriteString("\n\n")
	}
	switch m.result.Kind {
	case KindTable:
		b.WriteString(m.result.Table.View())
	case KindKeyValue:
		for _, row := range m.result.KeyValue {
			b.WriteString(fmt.Sprintf("%-20s %s\n", row.Key+":", row.Value))
		}
	case KindEmpty:
		b.WriteString("(no results)")
	}
	if m.status != "" {
		b.WriteString("\n")
		b.WriteString(m.status)
	}
	return b.String()
}

func (m *Model) renderPalette() string {
	var b strings.Builder
	b.WriteString("> " + m.palette.input)
	for i, s := range m.palette.suggestions {
		prefix := "  "
		if i == m.palette.selected {
			prefix = "▶ "
		}
		b.WriteString("\n" + prefix + s.Label)
		if s.Detail != "" {
			b.WriteString(" — " + s.Detail)
		}
	}
	return b.String()
}
