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

// Package lower orchestrates one function body through the whole pipeline
// -- CSSA construction, CFG/dominance, liveness, stack and register
// allocation, verification, and emission -- and recurses depth-first into
// any nested closures or promises the body references.
package lower

import (
	"unsafe"

	"github.com/bytedance/gopkg/collection/skipmap"

	"github.com/flowlang/pirc/internal/alloc"
	"github.com/flowlang/pirc/internal/cfg"
	"github.com/flowlang/pirc/internal/cssa"
	"github.com/flowlang/pirc/internal/dbg"
	"github.com/flowlang/pirc/internal/emit"
	"github.com/flowlang/pirc/internal/liveness"
	"github.com/flowlang/pirc/internal/opts"
	"github.com/flowlang/pirc/internal/pir"
	"github.com/flowlang/pirc/internal/rtfn"
	"github.com/flowlang/pirc/internal/verify"
)

// Context owns the per-compilation state that must stay coherent across
// every nested closure/promise reached while lowering one top-level
// function: the writer every code object is registered into and the two
// identity-keyed guards nested-closure recursion requires. DT and Consts
// are not owned here -- both are caller-supplied process-wide state that
// outlives any single compilation.
type Context struct {
	DT     *rtfn.DispatchTable
	Writer *rtfn.Writer
	Consts *rtfn.ConstPool
	Flags  dbg.Flags

	// done guards against a closure that (directly or through its own
	// nested promises) references itself; keyed by the *pir.Code
	// pointer's identity, not any user-level name.
	done *skipmap.Int64Map

	// promiseIdx caches each promise body's finalized code-object index,
	// so a promise referenced from multiple make-promise sites is
	// lowered exactly once.
	promiseIdx *skipmap.Int64Map

	opts  opts.Options
	depth int
}

func NewContext(dt *rtfn.DispatchTable, consts *rtfn.ConstPool, flags dbg.Flags) *Context {
	return &Context{
		DT:         dt,
		Writer:     rtfn.NewWriter(),
		Consts:     consts,
		Flags:      flags,
		done:       skipmap.NewInt64(),
		promiseIdx: skipmap.NewInt64(),
		opts:       opts.GetDefaultOptions(),
	}
}

func identity(code *pir.Code) int64 {
	return int64(uintptr(unsafe.Pointer(code)))
}

// CompileFunction lowers fn's body to a finalized code-object index in
// ctx.Writer. Nested closures consult their own dispatch tables on the
// way down; the top-level table check belongs to the caller.
func (ctx *Context) CompileFunction(fn *pir.Function, isDefaultArg bool) int {
	return ctx.compileCode(fn.Body, isDefaultArg)
}

func (ctx *Context) compileCode(code *pir.Code, isDefaultArg bool) int {
	id := identity(code)

	if idx, ok := ctx.promiseIdx.Load(id); ok {
		return idx.(int)
	}

	if _, seen := ctx.done.Load(id); seen {
		// Self-recursive compilation: short-circuit rather than unwind
		// the call stack forever. The caller's MkFunCls/MkArg is left
		// with ResolvedIndex -1.
		return -1
	}
	if !ctx.opts.CanRecurse(ctx.depth) {
		return -1
	}
	ctx.done.Store(id, true)
	ctx.depth++
	defer func() {
		ctx.depth--
		ctx.done.Delete(id)
	}()

	ctx.resolveNested(code)

	cssa.Apply(code)
	if ctx.Flags.PrintCSSA {
		dbg.Dump("cssa", code)
	}

	g := cfg.Build(code)
	live := liveness.Compute(g)

	m := alloc.NewMap()
	alloc.StackColor(g.Code.Blocks(), m)
	alloc.RegAlloc(g, live, m)
	if ctx.Flags.DebugAllocator {
		dbg.Dump("allocation", m)
	}
	if ctx.Flags.PrintLivenessIntervals {
		dbg.Dump("liveness", live)
	}

	verify.Verify(code.Entry, m)

	if ctx.Flags.PrintFinalPir {
		dbg.Dump("final pir", code)
	}

	idx := emit.Emit(g, m, ctx.Writer, ctx.Consts, isDefaultArg)
	if ctx.Flags.PrintFinalRir {
		dbg.Dump("final rir", ctx.Writer.Function().Objects[idx])
	}

	ctx.promiseIdx.Store(id, idx)
	return idx
}

// resolveNested walks every instruction in code looking for a closure or
// promise literal it constructs, compiles that nested body first (depth
// first, so outer references resolve to an already-finalized index), and
// fills in ResolvedIndex for the emitter to read back.
func (ctx *Context) resolveNested(code *pir.Code) {
	for _, bb := range code.Blocks() {
		for _, ins := range bb.Instrs {
			switch {
			case ins.ClosureBody != nil:
				if ins.ClosureDT != nil && ins.ClosureDT.Available(1) {
					// The closure's own table already holds a tier-1 body;
					// the interpreter dispatches through it at run time.
					ins.ResolvedIndex = -1
					continue
				}
				ins.ResolvedIndex = ctx.compileCode(ins.ClosureBody, false)
			case ins.PromiseBody != nil:
				ins.ResolvedIndex = ctx.compileCode(ins.PromiseBody, ins.PromiseIsDefaultArg)
			}
		}
	}
}
