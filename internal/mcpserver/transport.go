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
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tombee/oatty/internal/featureflags"
)

// jsonRPCRequest is one JSON-RPC 2.0 request as posted to /mcp.
type jsonRPCRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params"`
}

// jsonRPCResponse is the corresponding response, delivered as the `data:`
// payload of an SSE frame whose `id:` field matches the request's id.
type jsonRPCResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  any             `json:"result,omitempty"`
	Error   *jsonRPCError   `json:"error,omitempty"`
}

type jsonRPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type toolsCallParams struct {
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments"`
}

// session is one connected SSE subscriber: its own event channel plus a
// short replay buffer so a reconnect carrying Last-Event-ID can pick up
// frames it missed.
type session struct {
	id      string
	events  chan sseEvent
	mu      sync.Mutex
	history []sseEvent
}

type sseEvent struct {
	id   string
	data string
}

const sessionHistoryLimit = 64

func (s *session) record(evt sseEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = append(s.history, evt)
	if len(s.history) > sessionHistoryLimit {
		s.history = s.history[len(s.history)-sessionHistoryLimit:]
	}
}

func (s *session) replaySince(lastEventID string) []sseEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	if lastEventID == "" {
		return nil
	}
	for i, evt := range s.history {
		if evt.id == lastEventID {
			out := make([]sseEvent, len(s.history)-i-1)
			copy(out, s.history[i+1:])
			return out
		}
	}
	return nil
}

// Transport serves the MCP HTTP+SSE bridge: JSON-RPC POSTs on /mcp,
// correlated SSE responses on /events (aliased at /sse), and a
// Prometheus /metrics endpoint.
type Transport struct {
	bridge *Bridge

	mu       sync.Mutex
	sessions map[string]*session

	toolCalls   *prometheus.CounterVec
	callLatency prometheus.Histogram
}

// NewTransport builds a Transport over bridge, registering its metrics
// on reg (pass prometheus.DefaultRegisterer for the global registry).
func NewTransport(bridge *Bridge, reg prometheus.Registerer) *Transport {
	factory := promauto.With(reg)
	return &Transport{
		bridge:   bridge,
		sessions: make(map[string]*session),
		toolCalls: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "oatty_mcp_tool_calls_total",
			Help: "Total MCP tool calls handled by the session bridge, by tool and outcome.",
		}, []string{"tool", "outcome"}),
		callLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "oatty_mcp_tool_call_duration_seconds",
			Help:    "MCP tool call latency as observed by the session bridge.",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

// Handler returns the http.Handler serving /mcp, /events, /sse and
// /metrics.
func (t *Transport) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/mcp", t.handleRPC)
	mux.HandleFunc("/events", t.handleEvents)
	mux.HandleFunc("/sse", t.handleEvents)
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}

// sessionHeader names the header a client echoes back on every /mcp POST
// once it has received a session id from /events.
const sessionHeader = "X-Oatty-Session-Id"

func (t *Transport) handleEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	sessionID := r.URL.Query().Get("session")
	lastEventID := r.Header.Get("Last-Event-ID")

	t.mu.Lock()
	sess, exists := t.sessions[sessionID]
	if !exists {
		sessionID = uuid.NewString()
		sess = &session{id: sessionID, events: make(chan sseEvent, 16)}
		t.sessions[sessionID] = sess
	}
	t.mu.Unlock()

	if featureflags.Get().IsSSEEnabled() {
		slog.Debug("mcp sse session connected", "session_id", sessionID, "resumed", exists, "last_event_id", lastEventID)
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	_ = writeSSEFrame(w, "", `{"session_id":"`+sessionID+`"}`)
	flusher.Flush()

	for _, evt := range sess.replaySince(lastEventID) {
		_ = writeSSEFrame(w, evt.id, evt.data)
	}
	flusher.Flush()

	keepalive := time.NewTicker(20 * time.Second)
	defer keepalive.Stop()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case evt := <-sess.events:
			if err := writeSSEFrame(w, evt.id, evt.data); err != nil {
				return
			}
			flusher.Flush()
		case <-keepalive.C:
			if err := writeSSEComment(w, "keepalive"); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

func (t *Transport) handleRPC(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	sessionID := r.Header.Get(sessionHeader)
	if sessionID == "" {
		sessionID = r.URL.Query().Get("session")
	}

	t.mu.Lock()
	sess, ok := t.sessions[sessionID]
	t.mu.Unlock()
	if !ok {
		http.Error(w, "unknown or missing session id", http.StatusBadRequest)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "failed to read body", http.StatusBadRequest)
		return
	}

	var req jsonRPCRequest
	if err := json.Unmarshal(body, &req); err != nil {
		http.Error(w, "malformed JSON-RPC request", http.StatusBadRequest)
		return
	}

	// The request context is cancelled once this handler returns, so the
	// asynchronous dispatch runs detached from it.
	go t.dispatch(context.WithoutCancel(r.Context()), sess, req)

	w.WriteHeader(http.StatusAccepted)
}

// dispatch handles one JSON-RPC request asynchronously, publishing its
// response as an SSE frame on sess tagged with the request's own id so
// the caller's pending-request map can correlate it.
func (t *Transport) dispatch(ctx context.Context, sess *session, req jsonRPCRequest) {
	resp := jsonRPCResponse{JSONRPC: "2.0", ID: req.ID}

	start := time.Now()
	switch req.Method {
	case "tools/list":
		resp.Result = map[string]any{"tools": t.bridge.Tools()}
	case "tools/call":
		var params toolsCallParams
		if err := json.Unmarshal(req.Params, &params); err != nil {
			resp.Error = &jsonRPCError{Code: -32602, Message: "invalid params: " + err.Error()}
			break
		}
		result, err := t.bridge.Call(ctx, params.Name, params.Arguments)
		outcome := "ok"
		if err != nil || (result != nil && result.IsError) {
			outcome = "error"
		}
		t.toolCalls.WithLabelValues(params.Name, outcome).Inc()
		if err != nil {
			resp.Error = &jsonRPCError{Code: -32000, Message: err.Error()}
			break
		}
		resp.Result = result
	default:
		resp.Error = &jsonRPCError{Code: -32601, Message: "method not found: " + req.Method}
	}
	t.callLatency.Observe(time.Since(start).Seconds())

	data, err := json.Marshal(resp)
	if err != nil {
		return
	}
	evt := sseEvent{id: string(req.ID), data: string(data)}
	sess.record(evt)
	if featureflags.Get().IsSSEEnabled() {
		slog.Debug("mcp sse frame published", "session_id", sess.id, "event_id", evt.id, "method", req.Method)
	}
	select {
	case sess.events <- evt:
	case <-ctx.Done():
	}
}
