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

// Package httpexec dispatches a CommandSpec against its backing HTTP API:
// it tokenizes a hydrated shell command, builds the request (path
// substitution, JSON/query body, Range header), issues it, and parses the
// response into a summarized Outcome.
package httpexec

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/google/shlex"

	"github.com/tombee/oatty/internal/registry"
	oatterrors "github.com/tombee/oatty/pkg/errors"
	"github.com/tombee/oatty/pkg/httpclient"
	"github.com/tombee/oatty/internal/secrets"
)

// Outcome is the result of dispatching one command.
type Outcome struct {
	StatusCode int
	Log        string
	Result     any
	Pagination *Pagination
}

// Executor issues HTTP requests for HTTP-backed commands against one base
// URL, using a transport built from pkg/httpclient.
type Executor struct {
	client  *http.Client
	baseURL string
}

// New builds an Executor. baseURL is the API root every command's path is
// joined against.
func New(baseURL string, cfg httpclient.Config) (*Executor, error) {
	client, err := httpclient.New(cfg)
	if err != nil {
		return nil, err
	}
	return &Executor{client: client, baseURL: strings.TrimSuffix(baseURL, "/")}, nil
}

// Execute tokenizes hydratedShellCommand (the rendered "<group> <name>
// [flags] [args]" invocation), builds and issues the request described by
// spec, and returns the parsed Outcome. nextRangeOverride, when non-empty,
// is injected as the "next-range" body field before Range resolution (a
// caller fetching a subsequent page of a 206 response supplies it here).
func (e *Executor) Execute(ctx context.Context, spec *registry.CommandSpec, hydratedShellCommand, nextRangeOverride string) (*Outcome, error) {
	if spec.Execution.Kind != registry.ExecutionHTTP || spec.Execution.HTTP == nil {
		return nil, &oatterrors.ValidationError{
			Field:   "command",
			Message: fmt.Sprintf("command %q is not HTTP-backed", spec.CanonicalID()),
		}
	}
	httpExec := spec.Execution.HTTP

	tokens, err := shlex.Split(hydratedShellCommand)
	if err != nil {
		return nil, &oatterrors.ValidationError{Field: "command", Message: fmt.Sprintf("could not tokenize command: %v", err)}
	}

	userFlags, userArgs, err := ParseArguments(spec, skipCommandPrefix(tokens))
	if err != nil {
		return nil, err
	}

	body := BuildRequestBody(spec, userFlags)
	if nextRangeOverride != "" {
		body["next-range"] = nextRangeOverride
	}

	path, err := SubstitutePath(httpExec.Path, spec.PositionalArgs, userArgs)
	if err != nil {
		return nil, err
	}

	rangeHeader, hasRange := rangeHeaderValue(body)
	filteredBody := stripRangeBodyFields(body)

	req, err := e.buildRequest(ctx, httpExec.Method, path, filteredBody)
	if err != nil {
		return nil, err
	}
	if hasRange {
		req.Header.Set("Range", rangeHeader)
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, &oatterrors.ProviderError{Provider: "http", Message: fmt.Sprintf("network error: %v", err)}
	}
	defer resp.Body.Close()

	respBytes, _ := io.ReadAll(resp.Body)
	text := string(respBytes)

	var pagination *Pagination
	if cr := resp.Header.Get("Content-Range"); cr != "" {
		pagination, _ = ParseContentRange(cr)
	}
	if resp.StatusCode == http.StatusPartialContent && pagination != nil {
		pagination.HydratedShellCommand = hydratedShellCommand
		if nr := resp.Header.Get("Next-Range"); nr != "" {
			pagination.NextRange = nr
		}
		if hasRange {
			pagination.ThisRange = rangeHeader
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &Outcome{
			StatusCode: resp.StatusCode,
			Log:        fmt.Sprintf("HTTP %d: %s", resp.StatusCode, text),
			Pagination: pagination,
		}, nil
	}

	rawLog := fmt.Sprintf("%d\n%s", resp.StatusCode, text)
	log := SummarizeExecutionOutcome(spec.CanonicalID(), rawLog, resp.StatusCode)

	result, parseErr := parseResponseJSONStrict(resp.Header.Get("Content-Type"), text)
	if parseErr != nil {
		log += "\nJSON parse error: " + secrets.RedactSensitive(parseErr.Error())
	}

	return &Outcome{
		StatusCode: resp.StatusCode,
		Log:        log,
		Result:     result,
		Pagination: pagination,
	}, nil
}

// skipCommandPrefix drops the leading "<group> <name>" tokens so only
// flags and positional arguments remain.
func skipCommandPrefix(tokens []string) []string {
	if len(tokens) <= 2 {
		return nil
	}
	return tokens[2:]
}

func (e *Executor) buildRequest(ctx context.Context, method, path string, body map[string]any) (*http.Request, error) {
	fullURL := e.baseURL + "/" + strings.TrimPrefix(path, "/")
	method = strings.ToUpper(method)

	var req *http.Request
	var err error
	switch method {
	case http.MethodGet, http.MethodDelete:
		if len(body) > 0 {
			u, parseErr := url.Parse(fullURL)
			if parseErr != nil {
				return nil, &oatterrors.ValidationError{Field: "path", Message: parseErr.Error()}
			}
			q := u.Query()
			for k, v := range body {
				q.Set(k, stringifyQueryValue(v))
			}
			u.RawQuery = q.Encode()
			fullURL = u.String()
		}
		req, err = http.NewRequestWithContext(ctx, method, fullURL, nil)
	default:
		var reader io.Reader
		if len(body) > 0 {
			encoded, marshalErr := json.Marshal(body)
			if marshalErr != nil {
				return nil, &oatterrors.ValidationError{Field: "body", Message: marshalErr.Error()}
			}
			reader = bytes.NewReader(encoded)
		}
		req, err = http.NewRequestWithContext(ctx, method, fullURL, reader)
		if err == nil && reader != nil {
			req.Header.Set("Content-Type", "application/json")
		}
	}
	if err != nil {
		return nil, &oatterrors.ValidationError{Field: "request", Message: err.Error()}
	}
	req.Header.Set("Accept", "application/json")
	return req, nil
}

func stringifyQueryValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", val)
	}
}

// parseResponseJSONStrict requires a JSON content type before attempting
// to decode; anything else (including a non-JSON body sent with a JSON
// content type) is reported as a parse failure.
func parseResponseJSONStrict(contentType, text string) (any, error) {
	mediaType := strings.ToLower(strings.TrimSpace(strings.SplitN(contentType, ";", 2)[0]))
	if !strings.HasPrefix(mediaType, "application/json") {
		return nil, fmt.Errorf("expected Content-Type application/json*, got %q", contentType)
	}
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}
	var value any
	if err := json.Unmarshal([]byte(text), &value); err != nil {
		return nil, fmt.Errorf("invalid JSON response: %w", err)
	}
	return value, nil
}
