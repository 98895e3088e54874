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

// TermKind identifies how a BasicBlock hands control to its successors.
type TermKind int

const (
	TermJump TermKind = iota
	TermCond
	TermReturn
	TermDeopt
)

// BasicBlock is a maximal straight-line PIR instruction sequence. Phis and
// ordinary instructions are tracked separately: a Phi is not "the first
// instruction of the block", it sits logically above position 0.
type BasicBlock struct {
	Id     int
	Phis   []*Instruction
	Instrs []*Instruction

	Term          TermKind
	Cond          Value   // valid when Term == TermCond
	Next0, Next1  *BasicBlock
	ReturnValue   Value   // valid when Term == TermReturn
	DeoptOperands []Value // valid when Term == TermDeopt

	Preds []*BasicBlock
	code  *Code
}

func (b *BasicBlock) Code() *Code { return b.code }

func (b *BasicBlock) AddPhi(p *Instruction) {
	p.bb = b
	p.pos = len(b.Phis)
	b.Phis = append(b.Phis, p)
}

func (b *BasicBlock) Append(ins *Instruction) {
	ins.bb = b
	ins.pos = len(b.Instrs)
	b.Instrs = append(b.Instrs, ins)
	b.code.Invalidate()
}

// PrependInstr inserts ins as the new first instruction of the block, used
// by CSSA to splice in the phi-output copy immediately "after" the phi.
func (b *BasicBlock) PrependInstr(ins *Instruction) {
	ins.bb = b
	b.Instrs = append([]*Instruction{ins}, b.Instrs...)
	for i, x := range b.Instrs {
		x.pos = i
	}
	b.code.Invalidate()
}

func (b *BasicBlock) SetJump(to *BasicBlock) {
	b.Term = TermJump
	b.Next0 = to
	to.Preds = append(to.Preds, b)
}

func (b *BasicBlock) SetCond(cond Value, whenFalse, whenTrue *BasicBlock) {
	b.Term = TermCond
	b.Cond = cond
	b.Next0 = whenFalse
	b.Next1 = whenTrue
	whenFalse.Preds = append(whenFalse.Preds, b)
	whenTrue.Preds = append(whenTrue.Preds, b)
}

func (b *BasicBlock) SetReturn(v Value) {
	b.Term = TermReturn
	b.ReturnValue = v
}

func (b *BasicBlock) SetDeopt(ops []Value) {
	b.Term = TermDeopt
	b.DeoptOperands = ops
}

// Successors lists the blocks control can flow to directly from b.
func (b *BasicBlock) Successors() []*BasicBlock {
	switch b.Term {
	case TermJump:
		return []*BasicBlock{b.Next0}
	case TermCond:
		return []*BasicBlock{b.Next0, b.Next1}
	default:
		return nil
	}
}

func (b *BasicBlock) IsExit() bool {
	return b.Term == TermReturn || b.Term == TermDeopt
}

// IsEmpty reports whether b carries no instructions of its own and exists
// purely to be chased through to its successor.
func (b *BasicBlock) IsEmpty() bool {
	return len(b.Phis) == 0 && len(b.Instrs) == 0 && b.Term == TermJump
}

func (b *BasicBlock) String() string { return fmt.Sprintf("bb%d", b.Id) }
