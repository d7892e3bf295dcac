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
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tombee/oatty/internal/history"
)

type stubDispatcher struct {
	dispatched []Effect
}

func (s *stubDispatcher) Dispatch(e Effect) tea.Cmd {
	s.dispatched = append(s.dispatched, e)
	return nil
}

func newTestModel(t *testing.T) *Model {
	t.Helper()
	reg := newTestRegistry(t, sampleAppsCreateSpec())
	hist := history.NewMemoryStore(history.DefaultLimit)
	return NewModel(reg, hist, &stubDispatcher{})
}

func TestEscClosesSuggestionPopupBeforeClearingPaletteInput(t *testing.T) {
	m := newTestModel(t)
	m.showPalette()
	m.palette.input = "apps"
	m.refreshSuggestions()
	require.NotEmpty(t, m.palette.suggestions)

	m.handleEsc()
	assert.True(t, m.palette.visible, "first esc closes the suggestion popup, not the palette")
	assert.Empty(t, m.palette.suggestions)
	assert.Equal(t, "apps", m.palette.input)

	m.handleEsc()
	assert.False(t, m.palette.visible, "second esc closes the palette and clears its input")
	assert.Empty(t, m.palette.input)
}

func TestEscClosesModalFirst(t *testing.T) {
	m := newTestModel(t)
	m.showPalette()
	m.modal = &ShowModalEffect{Title: "confirm"}

	m.handleEsc()

	assert.Nil(t, m.modal)
	assert.True(t, m.palette.visible, "the palette must be untouched while a modal is open")
}

func TestEscOnRunDetailPaneReturnsFocusToOriginatingTable(t *testing.T) {
	m := newTestModel(t)
	m.route = RouteRun
	m.focus.SetMembers(
		Focusable{Flag: FocusResultsTable},
		Focusable{Flag: FocusDetailPane},
	)
	m.focus.Next()
	require.True(t, m.focus.Is(FocusDetailPane))

	m.handleEsc()

	assert.True(t, m.focus.Is(FocusResultsTable))
}

func TestHandleExecCompletedSwitchesToTableRoute(t *testing.T) {
	m := newTestModel(t)

	m.handleExecCompleted(ExecCompletedMsg{
		RequestID: "1",
		Outcome:   ExecOutcome{StatusCode: 200, Value: []any{map[string]any{"id": "1"}}},
	})

	assert.Equal(t, RouteTable, m.route)
	assert.Equal(t, KindTable, m.result.Kind)
}

func TestHandleExecCompletedWithErrorSetsStatusAndKeepsRoute(t *testing.T) {
	m := newTestModel(t)
	m.route = RoutePalette

	m.handleExecCompleted(ExecCompletedMsg{
		RequestID: "1",
		Outcome:   ExecOutcome{Err: assertError("boom")},
	})

	assert.Equal(t, RoutePalette, m.route)
	assert.Contains(t, m.status, "boom")
}

func TestCtrlKOpensPaletteAndSeedsSuggestions(t *testing.T) {
	m := newTestModel(t)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlK})
	_ = cmd

	assert.True(t, m.palette.visible)
	assert.NotEmpty(t, m.palette.suggestions)
}

func TestTabAdvancesFocus(t *testing.T) {
	m := newTestModel(t)
	start := m.focus.Current()

	m.Update(tea.KeyMsg{Type: tea.KeyTab})

	assert.NotEqual(t, start, m.focus.Current())
}

type assertError string

func (e assertError) Error() string { return string(e) }
