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

// Node is the common interface implemented by every AST node produced
// by the parser.
type Node interface {
	node()
}

// BinaryOp enumerates the supported binary operators.
type BinaryOp string

const (
	OpAnd BinaryOp = "&&"
	OpOr  BinaryOp = "||"
	OpEq  BinaryOp = "=="
	OpNeq BinaryOp = "!="
	OpLt  BinaryOp = "<"
	OpLte BinaryOp = "<="
	OpGt  BinaryOp = ">"
	OpGte BinaryOp = ">="
)

// BinaryExpr is a two-operand expression, e.g. `a && b` or `a == b`.
type BinaryExpr struct {
	Op    BinaryOp
	Left  Node
	Right Node
}

func (*BinaryExpr) node() {}

// UnaryExpr is a negation, `!a`.
type UnaryExpr struct {
	Operand Node
}

func (*UnaryExpr) node() {}

// NumberLit is a numeric literal.
type NumberLit struct {
	Value float64
}

func (*NumberLit) node() {}

// StringLit is a quoted string literal.
type StringLit struct {
	Value string
}

func (*StringLit) node() {}

// BoolLit is `true`/`false`.
type BoolLit struct {
	Value bool
}

func (*BoolLit) node() {}

// NullLit is the `null` literal.
type NullLit struct{}

func (*NullLit) node() {}

// PathSegment is one step of a dotted/indexed path: either a `.Name` or
// a `[Index]`/`["Key"]` access.
type PathSegment struct {
	Name     string // set when this segment is a dotted field access
	Index    int    // set when this segment is an integer index
	IsIndex  bool
	StrIndex string // set when this segment is a string-keyed index
}

// PathExpr is a root identifier followed by zero or more segments, e.g.
// `inputs.region` or `steps.wait.output["status"]`.
type PathExpr struct {
	Root     string
	Segments []PathSegment
}

func (*PathExpr) node() {}
