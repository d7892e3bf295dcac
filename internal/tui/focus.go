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

// FocusFlag names one focusable component. Each visible component owns
// exactly one FocusFlag and reports its own hit area and hint spans.
type FocusFlag string

// Area is a rendered component's hit-test rectangle, in terminal cell
// coordinates, used to resolve a mouse click to a FocusFlag.
type Area struct {
	X, Y, Width, Height int
}

// Contains reports whether (x, y) falls inside a.
func (a Area) Contains(x, y int) bool {
	return x >= a.X && x < a.X+a.Width && y >= a.Y && y < a.Y+a.Height
}

// Focusable is a component that can hold focus: it reports the flag it
// owns, its current hit area, and the hint text shown in the footer
// while it is focused.
type Focusable struct {
	Flag FocusFlag
	Area Area
	Hint string
}

// FocusRing cycles focus among a fixed, ordered set of components.
// Tab advances, BackTab (shift+tab) retreats; both wrap. A mouse click
// sets focus directly by hit-testing each member's Area.
type FocusRing struct {
	members []Focusable
	current int
}

// NewFocusRing builds a ring over members in the given order. The
// first member starts focused.
func NewFocusRing(members ...Focusable) *FocusRing {
	return &FocusRing{members: members}
}

// SetMembers replaces the ring's members, preserving focus on the same
// FocusFlag if it still exists, else resetting to the first member.
func (r *FocusRing) SetMembers(members ...Focusable) {
	current := r.Current()
	r.members = members
	r.current = 0
	if current == "" {
		return
	}
	for i, m := range r.members {
		if m.Flag == current {
			r.current = i
			return
		}
	}
}

// SetArea updates one member's hit area in place, e.g. after a resize
// recomputes layout.
func (r *FocusRing) SetArea(flag FocusFlag, area Area) {
	for i := range r.members {
		if r.members[i].Flag == flag {
			r.members[i].Area = area
			return
		}
	}
}

// Current returns the currently focused FocusFlag, or "" if the ring
// is empty.
func (r *FocusRing) Current() FocusFlag {
	if len(r.members) == 0 {
		return ""
	}
	return r.members[r.current].Flag
}

// CurrentHint returns the focused member's hint text.
func (r *FocusRing) CurrentHint() string {
	if len(r.members) == 0 {
		return ""
	}
	return r.members[r.current].Hint
}

// Next advances focus by one member, wrapping.
func (r *FocusRing) Next() {
	if len(r.members) == 0 {
		return
	}
	r.current = (r.current + 1) % len(r.members)
}

// Prev retreats focus by one member, wrapping.
func (r *FocusRing) Prev() {
	if len(r.members) == 0 {
		return
	}
	r.current = (r.current - 1 + len(r.members)) % len(r.members)
}

// HitTest resolves (x, y) to a member's FocusFlag, setting focus to it
// and returning true, or returns false if no member's area contains
// the point.
func (r *FocusRing) HitTest(x, y int) (FocusFlag, bool) {
	for i, m := range r.members {
		if m.Area.Contains(x, y) {
			r.current = i
			return m.Flag, true
		}
	}
	return "", false
}

// Is reports whether flag is the currently focused member.
func (r *FocusRing) Is(flag FocusFlag) bool {
	return r.Current() == flag
}
