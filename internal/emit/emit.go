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

// Package emit walks an allocated, verified PIR body in breadth-first
// block order and writes the bytecode it describes into a rtfn.CodeStream:
// loads, stores, the per-opcode dispatch, and jump/branch patching.
package emit

import (
	"github.com/flowlang/pirc/internal/alloc"
	"github.com/flowlang/pirc/internal/cfg"
	"github.com/flowlang/pirc/internal/diag"
	"github.com/flowlang/pirc/internal/pir"
	"github.com/flowlang/pirc/internal/rtfn"
)

// Context carries the state one block-walk of emission threads through:
// the slot assignments, the sink being written into, the constant arena
// values are interned into, and the environment Value currently loaded
// into the interpreter's implicit env register.
type Context struct {
	CS         *rtfn.CodeStream
	Alloc      *alloc.Map
	Consts     *rtfn.ConstPool
	currentEnv pir.Value
	labels     map[int]rtfn.Label
}

func newContext(cs *rtfn.CodeStream, m *alloc.Map, consts *rtfn.ConstPool) *Context {
	return &Context{CS: cs, Alloc: m, Consts: consts, labels: map[int]rtfn.Label{}}
}

// chase follows IsEmpty blocks (pure fallthrough shells with no
// instructions of their own) to the first block that actually emits
// bytecode, so branches never target a label that's never bound.
func chase(bb *pir.BasicBlock) *pir.BasicBlock {
	for bb.IsEmpty() {
		bb = bb.Next0
	}
	return bb
}

func (c *Context) labelFor(bb *pir.BasicBlock) rtfn.Label {
	if l, ok := c.labels[bb.Id]; ok {
		return l
	}
	l := c.CS.MkLabel()
	c.labels[bb.Id] = l
	return l
}

// Emit writes entry's whole body to a fresh stream and returns the
// finalized CodeObject index registered in w.
func Emit(g *cfg.CFG, m *alloc.Map, w *rtfn.Writer, consts *rtfn.ConstPool, isDefaultArg bool) int {
	cs := w.NewStream()
	c := newContext(cs, m, consts)

	order := g.BreadthFirstOrder()
	var live []*pir.BasicBlock
	for _, bb := range order {
		if !bb.IsEmpty() {
			live = append(live, bb)
		}
	}

	for _, bb := range live {
		c.CS.Bind(c.labelFor(bb))
		c.emitBlock(bb)
	}

	return w.Finalize(cs, isDefaultArg, m.LocalsCount())
}

func (c *Context) emitBlock(bb *pir.BasicBlock) {
	// The env register's contents aren't tracked across block boundaries:
	// a block can be reached from several predecessors with different
	// environments installed.
	c.currentEnv = nil

	// Phis never emit bytecode: CSSA plus coalescing already made the
	// merge free by construction.
	for _, ins := range bb.Instrs {
		c.emitInstr(ins)
	}
	c.emitTerm(bb)
}

func (c *Context) loadOperand(v pir.Value) {
	switch v.Kind() {
	case pir.VKConst:
		cst := v.(*pir.Const)
		c.CS.PushConst(c.Consts.Intern(rtfn.ConstEntry{Val: cst.Val, Ty: int(cst.Ty)}))
	case pir.VKEnv:
		env := v.(*pir.EnvSentinel)
		if env.NotClosed {
			c.CS.ParentEnv()
		} else {
			panic(diag.NewMalformedIR(v.String(), "unresolved environment operand"))
		}
	default:
		if c.Alloc.IsStack(v) {
			return
		}
		slot, ok := c.Alloc.Get(v)
		if !ok {
			panic(diag.NewMalformedIR(v.String(), "operand has no allocation"))
		}
		c.CS.LoadLocal(int(slot) - 1)
	}
}

// loadArgs implements the environment-then-arguments load order: the
// implicit env operand is synchronized first (if this instruction has
// one and it differs from currentEnv), then every remaining argument is
// loaded in definition order, skipping anything already stack-resident.
func (c *Context) loadArgs(ins *pir.Instruction) {
	if ins.HasEnv() {
		env := ins.Env()
		if env != c.currentEnv {
			c.loadOperand(env)
			c.CS.SetEnv()
			c.currentEnv = env
		} else if c.Alloc.IsStack(env) {
			c.CS.Pop()
		}
	}
	for i, a := range ins.Args {
		if ins.HasEnv() && i == ins.EnvIndex {
			continue
		}
		c.loadOperand(a)
	}
}

func (c *Context) storeResult(ins *pir.Instruction) {
	if ins.ResultType == pir.TVoid {
		return
	}
	if !c.Alloc.Has(ins) {
		// Dead result: the value was computed for effect only.
		c.CS.Pop()
		return
	}
	if c.Alloc.IsStack(ins) {
		return
	}
	slot, _ := c.Alloc.Get(ins)
	c.CS.StoreLocal(int(slot) - 1)
}

func (c *Context) emitInstr(ins *pir.Instruction) {
	c.loadArgs(ins)

	switch ins.Tag {
	case pir.OpLdArg:
		c.CS.LoadArg(ins.ArgIdx)
	case pir.OpCopy:
		// A pure move: nothing to dispatch, the operand is already loaded.
	case pir.OpAdd:
		c.CS.Add()
	case pir.OpSub:
		c.CS.Sub()
	case pir.OpMul:
		c.CS.Mul()
	case pir.OpLt:
		c.CS.Lt()
	case pir.OpEq:
		c.CS.Eq()
	case pir.OpLoadElem:
		c.CS.LoadElem()
	case pir.OpStoreElem:
		c.CS.StoreElem()
	case pir.OpMkEnv:
		c.CS.MkEnv()
	case pir.OpLdParentEnv:
		c.CS.ParentEnv()
	case pir.OpMkFunCls:
		c.CS.MkFunCls(ins.ResolvedIndex)
	case pir.OpMkArg:
		c.CS.MkArg(ins.ResolvedIndex)
	case pir.OpCall:
		c.CS.Call()
	default:
		panic(diag.NewMalformedIR(ins.String(), "unknown opcode tag"))
	}

	// Per the source-pool sidecar's general form, attach the index to
	// whatever bytecode was just emitted whenever one is available, not
	// only for the arithmetic/indexing tags handled above.
	if ins.SrcIndex() >= 0 {
		c.CS.AddSrcIdx(ins.SrcIndex())
	}

	c.storeResult(ins)
}

func (c *Context) emitTerm(bb *pir.BasicBlock) {
	switch bb.Term {
	case pir.TermJump:
		c.CS.Br(c.labelFor(chase(bb.Next0)))
	case pir.TermCond:
		c.loadOperand(bb.Cond)
		c.CS.BrFalse(c.labelFor(chase(bb.Next0)))
		c.CS.Br(c.labelFor(chase(bb.Next1)))
	case pir.TermReturn:
		if bb.ReturnValue != nil {
			c.loadOperand(bb.ReturnValue)
		}
		c.CS.Ret()
	case pir.TermDeopt:
		// Deopt abandons this frame: operands still sitting on the stack
		// are discarded (the baseline re-executes from its own state),
		// the trap transfers control, and the trailing ret terminates the
		// stream like every other exit.
		for _, v := range bb.DeoptOperands {
			if c.Alloc.IsStack(v) {
				c.CS.Pop()
			}
		}
		c.CS.Deopt()
		c.CS.Ret()
	default:
		panic(diag.NewMalformedIR(bb.String(), "unknown terminator kind"))
	}
}
