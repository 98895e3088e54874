/*
 * Copyright 2022 ByteDance Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package pir models the Promise Intermediate Representation: the SSA-form
// graph that lower consumes and turns into bytecode.
package pir

import "fmt"

// ValueKind classifies a Value without requiring a type switch.
type ValueKind int

const (
	VKInstr ValueKind = iota
	VKConst
	VKEnv
)

func (k ValueKind) String() string {
	switch k {
	case VKInstr:
		return "instr"
	case VKConst:
		return "const"
	case VKEnv:
		return "env"
	default:
		return "?"
	}
}

// Type is the static type a Value produces. PIR is dynamically typed at
// runtime; Type here only distinguishes the handful of shapes lowering
// itself needs to reason about (environments vs. everything else).
type Type int

const (
	TVoid Type = iota
	TAny
	TInt
	TDouble
	TBool
	TEnv
	TClosure
	TPromise
)

func (t Type) String() string {
	switch t {
	case TVoid:
		return "void"
	case TAny:
		return "any"
	case TInt:
		return "int"
	case TDouble:
		return "double"
	case TBool:
		return "bool"
	case TEnv:
		return "env"
	case TClosure:
		return "closure"
	case TPromise:
		return "promise"
	default:
		return "?"
	}
}

// Value is anything an Instruction can consume as an argument: the result
// of another Instruction, a constant, or one of the environment sentinels.
type Value interface {
	Kind() ValueKind
	Type() Type
	String() string
}

// Const is a compile-time literal. Constants are never allocated a slot or
// a stack position; they are materialized inline at every use site.
type Const struct {
	Val interface{}
	Ty  Type
}

// NilConst is the literal used for implicit/void returns.
var NilConst = &Const{Val: nil, Ty: TAny}

func NewConst(v interface{}, ty Type) *Const { return &Const{Val: v, Ty: ty} }

func (c *Const) Kind() ValueKind { return VKConst }
func (c *Const) Type() Type      { return c.Ty }
func (c *Const) String() string  { return fmt.Sprintf("const<%v>", c.Val) }

// EnvSentinel stands in for an environment value that isn't produced by an
// ordinary Instruction: either the running closure's parent environment, or
// the "not yet closed over" placeholder a promise body starts with.
type EnvSentinel struct {
	NotClosed bool
}

func (e *EnvSentinel) Kind() ValueKind { return VKEnv }
func (e *EnvSentinel) Type() Type      { return TEnv }

func (e *EnvSentinel) String() string {
	if e.NotClosed {
		return "env.not-closed"
	}
	return "env.parent"
}

var (
	ParentEnv    = &EnvSentinel{NotClosed: false}
	NotClosedEnv = &EnvSentinel{NotClosed: true}
)
