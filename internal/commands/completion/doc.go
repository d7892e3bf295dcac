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

// Package completion provides the `completion` command, which generates shell
// auto-completion scripts for the Oatty CLI (bash, zsh, fish, PowerShell).
//
// The scripts are the ones Cobra generates for the command tree; the package
// defines no dynamic completion functions, caching or timeout handling of its
// own.
package completion
