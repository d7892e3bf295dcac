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

package expr

// Note: the grammar has no arithmetic operators, so there is no
// division for a divide-by-zero case to arise from; EvaluationError
// exists for the coercion failures that do arise (unsupported operator
// nodes reaching Eval, which validate.go's load-time pass should have
// already rejected for any manifest that went through Validate).
