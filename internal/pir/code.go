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

// Code is one compilable body: a baseline closure, an optimized closure, or
// a promise. Each nested closure/promise literal gets its own Code.
type Code struct {
	Entry    *BasicBlock
	nextBBID int
	blocks   []*BasicBlock

	useCounts      map[Value]int
	useCountsValid bool
}

func NewCode() *Code {
	return &Code{nextBBID: 0}
}

func (c *Code) NewBlock() *BasicBlock {
	bb := &BasicBlock{Id: c.nextBBID, code: c}
	c.nextBBID++
	c.blocks = append(c.blocks, bb)
	return bb
}

func (c *Code) NextBBID() int { return c.nextBBID }

// Blocks returns every block in creation order. Traversal orders that
// matter for lowering (reverse postorder, dominator preorder, breadth
// first) are computed by the cfg package, not here.
func (c *Code) Blocks() []*BasicBlock { return c.blocks }

func (c *Code) Exits() []*BasicBlock {
	var rs []*BasicBlock
	for _, b := range c.blocks {
		if b.IsExit() {
			rs = append(rs, b)
		}
	}
	return rs
}

// Invalidate discards the cached use-count table. cssa and any other pass
// that mutates operand lists must call this (Append/PrependInstr already
// do, for appends made through those methods).
func (c *Code) Invalidate() { c.useCountsValid = false }

func (c *Code) useCount(v Value) int {
	c.ensureUseCounts()
	return c.useCounts[v]
}

func (c *Code) ensureUseCounts() {
	if c.useCountsValid {
		return
	}
	counts := make(map[Value]int)
	add := func(v Value) {
		if v == nil {
			return
		}
		counts[v]++
	}
	for _, bb := range c.blocks {
		for _, p := range bb.Phis {
			for _, in := range p.Inputs {
				add(in.Value)
			}
		}
		for _, ins := range bb.Instrs {
			for _, a := range ins.Args {
				add(a)
			}
		}
		switch bb.Term {
		case TermCond:
			add(bb.Cond)
		case TermReturn:
			add(bb.ReturnValue)
		case TermDeopt:
			for _, v := range bb.DeoptOperands {
				add(v)
			}
		}
	}
	c.useCounts = counts
	c.useCountsValid = true
}

// ReplaceUsesExcept rewrites every operand slot pointing at old to point at
// v, skipping any occurrence inside except itself. cssa uses this for the
// phi-output copy, which legitimately refers to the phi it replaces.
func (c *Code) ReplaceUsesExcept(old Value, v Value, except *Instruction) {
	c.replaceUses(old, v, except)
}

func (c *Code) replaceUses(old Value, v Value, except *Instruction) {
	for _, bb := range c.blocks {
		for _, p := range bb.Phis {
			if p == except {
				continue
			}
			for i := range p.Inputs {
				if p.Inputs[i].Value == old {
					p.Inputs[i].Value = v
				}
			}
		}
		for _, ins := range bb.Instrs {
			if ins == except {
				continue
			}
			for i := range ins.Args {
				if ins.Args[i] == old {
					ins.Args[i] = v
				}
			}
		}
		switch bb.Term {
		case TermCond:
			if bb.Cond == old {
				bb.Cond = v
			}
		case TermReturn:
			if bb.ReturnValue == old {
				bb.ReturnValue = v
			}
		case TermDeopt:
			for i := range bb.DeoptOperands {
				if bb.DeoptOperands[i] == old {
					bb.DeoptOperands[i] = v
				}
			}
		}
	}
	c.Invalidate()
}
