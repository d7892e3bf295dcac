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

package history

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/tombee/oatty/internal/config"
)

// PathEnv is the environment variable overriding the history file
// location.
const PathEnv = "OATTY_HISTORY_PATH"

// FileName is the default history file name within the config dir.
const FileName = "history.json"

// DefaultPath resolves the history file location: OATTY_HISTORY_PATH
// if set, else $XDG_CONFIG_HOME/oatty/history.json.
func DefaultPath() (string, error) {
	if override := strings.TrimSpace(os.Getenv(PathEnv)); override != "" {
		return expandTilde(override), nil
	}
	dir, err := config.ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, FileName), nil
}

// expandTilde expands a leading "~" or "~/..." to the user's home
// directory. Any other path is returned unchanged.
func expandTilde(path string) string {
	trimmed := strings.TrimSpace(path)
	if trimmed == "~" {
		if home, err := os.UserHomeDir(); err == nil {
			return home
		}
		return trimmed
	}
	if rest, ok := strings.CutPrefix(trimmed, "~/"); ok {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, rest)
		}
	}
	return trimmed
}
