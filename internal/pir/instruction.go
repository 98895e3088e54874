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

package pir

import "fmt"

// Opcode tags the operation an Instruction performs. Terminators are not
// Opcodes: they live on BasicBlock as a separate Term field, since they
// never produce a Value other control-flow can reference.
type Opcode int

const (
	OpLdArg Opcode = iota
	OpPhi
	OpCopy
	OpAdd
	OpSub
	OpMul
	OpLt
	OpEq
	OpLoadElem
	OpStoreElem
	OpMkEnv
	OpLdParentEnv
	OpMkFunCls
	OpMkArg
	OpCall
)

func (op Opcode) String() string {
	switch op {
	case OpLdArg:
		return "ldarg"
	case OpPhi:
		return "phi"
	case OpCopy:
		return "copy"
	case OpAdd:
		return "add"
	case OpSub:
		return "sub"
	case OpMul:
		return "mul"
	case OpLt:
		return "lt"
	case OpEq:
		return "eq"
	case OpLoadElem:
		return "loadelem"
	case OpStoreElem:
		return "storeelem"
	case OpMkEnv:
		return "mkenv"
	case OpLdParentEnv:
		return "ldparentenv"
	case OpMkFunCls:
		return "mkfuncls"
	case OpMkArg:
		return "mkarg"
	case OpCall:
		return "call"
	default:
		return "op?"
	}
}

// DispatchTable is the per-closure tier table lowering consults before
// recompiling a nested closure. Declared here as a small consumer-side
// interface so the IR doesn't depend on the runtime's concrete table.
type DispatchTable interface {
	Available(tier int) bool
}

// PhiInput pairs an incoming Value with the predecessor it flows from.
type PhiInput struct {
	Pred  *BasicBlock
	Value Value
}

// Instruction is one PIR operation. A Phi is an Instruction with
// Tag == OpPhi; its incoming values live in Inputs rather than Args.
type Instruction struct {
	Tag        Opcode
	Args       []Value
	Inputs     []PhiInput // valid only when Tag == OpPhi
	EnvIndex   int        // index into Args of the environment operand, -1 if none
	SrcIdx     int        // index into the source-location pool, -1 if none
	ResultType Type
	ArgIdx     int // argument index, valid only for OpLdArg

	// ClosureBody/PromiseBody hold the nested function this instruction
	// constructs, before lowering resolves it to a dispatch-table/code index.
	ClosureBody  *Code
	ClosureNArgs int
	PromiseBody  *Code

	// ClosureDT is the nested closure's own dispatch table, consulted by
	// lowering before recompiling the body: if tier 1 is already present
	// there, the closure resolves through its table at run time instead.
	ClosureDT DispatchTable

	// PromiseIsDefaultArg marks a promise body that computes a default
	// argument; the flag is carried through to the finalized code object.
	PromiseIsDefaultArg bool

	// ResolvedIndex is filled in by lower once ClosureBody/PromiseBody has
	// been compiled; emit reads it back out when encoding the instruction.
	ResolvedIndex int

	bb  *BasicBlock
	pos int
}

func newInstr(tag Opcode, rt Type, args ...Value) *Instruction {
	return &Instruction{
		Tag:        tag,
		Args:       args,
		EnvIndex:   -1,
		SrcIdx:     -1,
		ResultType: rt,
	}
}

func NewLdArg(idx int) *Instruction {
	ins := newInstr(OpLdArg, TAny)
	ins.ArgIdx = idx
	return ins
}

func NewCopy(v Value, ty Type) *Instruction { return newInstr(OpCopy, ty, v) }
func NewAdd(x, y Value) *Instruction        { return newInstr(OpAdd, TAny, x, y) }
func NewSub(x, y Value) *Instruction        { return newInstr(OpSub, TAny, x, y) }
func NewMul(x, y Value) *Instruction        { return newInstr(OpMul, TAny, x, y) }
func NewLt(x, y Value) *Instruction         { return newInstr(OpLt, TBool, x, y) }
func NewEq(x, y Value) *Instruction         { return newInstr(OpEq, TBool, x, y) }

func NewLoadElem(vec, idx Value) *Instruction { return newInstr(OpLoadElem, TAny, vec, idx) }
func NewStoreElem(vec, idx, v Value) *Instruction {
	return newInstr(OpStoreElem, TVoid, vec, idx, v)
}

func NewMkEnv(parent Value) *Instruction { return newInstr(OpMkEnv, TEnv, parent) }

// NewPhi creates an empty Phi to be populated with AddInput.
func NewPhi(ty Type) *Instruction {
	return &Instruction{Tag: OpPhi, EnvIndex: -1, SrcIdx: -1, ResultType: ty}
}

func (i *Instruction) AddInput(pred *BasicBlock, v Value) {
	i.Inputs = append(i.Inputs, PhiInput{Pred: pred, Value: v})
}

func (i *Instruction) IsPhi() bool { return i.Tag == OpPhi }

func (i *Instruction) Kind() ValueKind { return VKInstr }
func (i *Instruction) Type() Type      { return i.ResultType }

func (i *Instruction) String() string {
	if i.IsPhi() {
		return fmt.Sprintf("phi#%p", i)
	}
	return fmt.Sprintf("%s#%p", i.Tag, i)
}

// BB reports the block an Instruction has been placed into, or nil if it
// hasn't been appended to any block yet.
func (i *Instruction) BB() *BasicBlock { return i.bb }

func (i *Instruction) HasEnv() bool { return i.EnvIndex >= 0 }

func (i *Instruction) Env() Value {
	if i.EnvIndex < 0 {
		return nil
	}
	return i.Args[i.EnvIndex]
}

func (i *Instruction) NArgs() int {
	if i.IsPhi() {
		return len(i.Inputs)
	}
	return len(i.Args)
}

func (i *Instruction) Arg(n int) Value { return i.Args[n] }

func (i *Instruction) EachArg(f func(Value)) {
	for _, a := range i.Args {
		f(a)
	}
}

func (i *Instruction) EachArgRev(f func(Value)) {
	for k := len(i.Args) - 1; k >= 0; k-- {
		f(i.Args[k])
	}
}

// HasSingleUse reports whether i's result is consumed at exactly one use
// site across the whole function, the precondition the stack pre-colorer
// relies on before it will push a value speculatively.
func (i *Instruction) HasSingleUse() bool {
	if i.bb == nil || i.bb.code == nil {
		return false
	}
	return i.bb.code.useCount(i) == 1
}

// ReplaceUsesWith rewrites every operand slot across the owning Code that
// currently points at i to point at v instead.
func (i *Instruction) ReplaceUsesWith(v Value) {
	if i.bb == nil || i.bb.code == nil {
		return
	}
	i.bb.code.replaceUses(i, v, nil)
}

func (i *Instruction) SrcIndex() int { return i.SrcIdx }
