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
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSSEFrameExtractsDataIDAndRetry(t *testing.T) {
	frame, ok := parseSSEFrame("id: 42\ndata: {\"ok\":true}\nretry: 1500")
	require.True(t, ok)
	assert.Equal(t, "42", frame.ID)
	assert.Equal(t, `{"ok":true}`, frame.Data)
	assert.Equal(t, 1500, frame.Retry)
}

func TestParseSSEFrameJoinsMultilineData(t *testing.T) {
	frame, ok := parseSSEFrame("data: line one\ndata: line two")
	require.True(t, ok)
	assert.Equal(t, "line one\nline two", frame.Data)
}

func TestParseSSEFrameIgnoresCommentLines(t *testing.T) {
	frame, ok := parseSSEFrame(": keepalive\ndata: hello")
	require.True(t, ok)
	assert.Equal(t, "hello", frame.Data)
}

func TestParseSSEFramePureCommentReportsNoFields(t *testing.T) {
	_, ok := parseSSEFrame(": just a comment")
	assert.False(t, ok)
}

func TestSSEFrameSplitterSplitsOnBlankLineLF(t *testing.T) {
	s := &sseFrameSplitter{}
	frames := s.Feed([]byte("data: a\n\ndata: b\n\n"))
	require.Len(t, frames, 2)
	assert.Equal(t, "data: a", frames[0])
	assert.Equal(t, "data: b", frames[1])
}

func TestSSEFrameSplitterSplitsOnBlankLineCRLF(t *testing.T) {
	s := &sseFrameSplitter{}
	frames := s.Feed([]byte("data: a\r\n\r\ndata: b\r\n\r\n"))
	require.Len(t, frames, 2)
}

func TestSSEFrameSplitterRetainsPartialFrameAcrossFeeds(t *testing.T) {
	s := &sseFrameSplitter{}
	frames := s.Feed([]byte("data: a"))
	assert.Empty(t, frames)

	frames = s.Feed([]byte("\n\ndata: b\n\n"))
	require.Len(t, frames, 2)
	assert.Equal(t, "data: a", frames[0])
	assert.Equal(t, "data: b", frames[1])
}

func TestWriteSSEFrameFormatsIDAndDataLines(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeSSEFrame(&buf, "7", "line one\nline two"))
	assert.Equal(t, "id: 7\ndata: line one\ndata: line two\n\n", buf.String())
}

func TestWriteSSECommentFormatsAsCommentLine(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeSSEComment(&buf, "ping"))
	assert.Equal(t, ": ping\n\n", buf.String())
}
