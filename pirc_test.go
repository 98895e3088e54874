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

package pirc

import (
	"testing"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/flowlang/pirc/internal/pir"
	"github.com/flowlang/pirc/internal/rtfn"
	"github.com/stretchr/testify/require"
)

// Boundary scenario 1: an empty function, zero locals, "push Nil; ret".
func TestCompile_EmptyFunction(t *testing.T) {
	b := pir.NewBuilder()
	entry := b.Block()
	entry.SetReturn(pir.NilConst)

	dt := rtfn.NewDispatchTable(1)
	fn := Compile(&pir.Function{Body: b.Code, NArgs: 0}, dt, rtfn.NewConstPool())

	obj := fn.Objects[0]
	require.Equal(t, 0, obj.LocalsCount)
	require.Equal(t, []rtfn.Op{rtfn.OpPushConst, rtfn.OpRet}, opsOf(obj))
	require.True(t, dt.Available(1))
}

// Boundary scenario 4: diamond with phi. B1 and B2 each reach the merge
// block by a plain jump (only entry itself branches), so both qualify as
// fallthrough predecessors under the phi-at-entry rule: the phi and its
// CSSA-inserted copies all resolve to STACK, matching the universal
// invariant that every copy feeding a phi shares the phi's allocation or
// both are STACK (see DESIGN.md's phi-entry policy note).
func TestCompile_DiamondWithPhi(t *testing.T) {
	b := pir.NewBuilder()
	entry := b.Block()
	b1 := b.Block()
	b2 := b.Block()
	merge := b.Block()

	cond := pir.NewLdArg(0)
	entry.Append(cond)
	entry.SetCond(cond, b1, b2)

	x := pir.NewConst(int64(1), pir.TInt)
	cx := pir.NewCopy(x, pir.TInt)
	b1.Append(cx)
	b1.SetJump(merge)

	y := pir.NewConst(int64(2), pir.TInt)
	cy := pir.NewCopy(y, pir.TInt)
	b2.Append(cy)
	b2.SetJump(merge)

	phi := pir.NewPhi(pir.TInt)
	phi.AddInput(b1, cx)
	phi.AddInput(b2, cy)
	merge.AddPhi(phi)
	merge.SetReturn(phi)

	dt := rtfn.NewDispatchTable(1)
	fn := Compile(&pir.Function{Body: b.Code, NArgs: 1}, dt, rtfn.NewConstPool())

	obj := fn.Objects[0]
	require.NotContains(t, opsOf(obj), rtfn.OpStoreLocal)
	require.Equal(t, 0, obj.LocalsCount)
}

// Boundary scenario 5: a self-looping block with an induction phi whose
// back-edge input shares the phi's slot.
func TestCompile_Loop(t *testing.T) {
	b := pir.NewBuilder()
	entry := b.Block()
	loop := b.Block()
	exit := b.Block()

	zero := pir.NewConst(int64(0), pir.TInt)
	entry.SetJump(loop)

	phi := pir.NewPhi(pir.TInt)
	loop.AddPhi(phi)
	one := pir.NewConst(int64(1), pir.TInt)
	next := pir.NewAdd(phi, one)
	loop.Append(next)
	cond := pir.NewLt(next, pir.NewConst(int64(10), pir.TInt))
	loop.Append(cond)
	loop.SetCond(cond, loop, exit)
	phi.AddInput(entry, zero)
	phi.AddInput(loop, next)

	exit.SetReturn(next)

	dt := rtfn.NewDispatchTable(1)
	require.NotPanics(t, func() {
		Compile(&pir.Function{Body: b.Code, NArgs: 0}, dt, rtfn.NewConstPool())
	})
}

// Boundary scenario 6, one level deep: the function body constructs a
// promise; two finalized code objects, the promise lowered first, and the
// outer MkArg references it by index.
func TestCompile_NestedClosureAndPromise(t *testing.T) {
	bInnermost := pir.NewBuilder()
	innermostEntry := bInnermost.Block()
	innermostEntry.SetReturn(pir.NewConst(int64(42), pir.TInt))

	bOuter := pir.NewBuilder()
	outerEntry := bOuter.Block()
	mkArg := &pir.Instruction{Tag: pir.OpMkArg, ResultType: pir.TPromise, PromiseBody: bInnermost.Code, EnvIndex: -1}
	outerEntry.Append(mkArg)
	outerEntry.SetReturn(mkArg)

	dt := rtfn.NewDispatchTable(1)
	fn := Compile(&pir.Function{Body: bOuter.Code, NArgs: 0}, dt, rtfn.NewConstPool())

	require.Len(t, fn.Objects, 2)
	require.Equal(t, 0, mkArg.ResolvedIndex)
}

func TestCompile_DryRunSkipsInstall(t *testing.T) {
	b := pir.NewBuilder()
	entry := b.Block()
	entry.SetReturn(pir.NilConst)

	dt := rtfn.NewDispatchTable(1)
	Compile(&pir.Function{Body: b.Code, NArgs: 0}, dt, rtfn.NewConstPool(), WithDryRun(true))

	require.False(t, dt.Available(1))
}

// Randomized diamonds: whatever constants and chain lengths the branches
// carry, compilation must complete with the built-in verifier accepting
// the allocation it produced.
func TestCompile_RandomDiamonds(t *testing.T) {
	gofakeit.Seed(7)

	chain := func(bb *pir.BasicBlock, seed pir.Value) pir.Value {
		cur := seed
		for k, n := 0, gofakeit.Number(1, 6); k < n; k++ {
			ins := pir.NewAdd(cur, pir.NewConst(int64(gofakeit.Number(-100, 100)), pir.TInt))
			bb.Append(ins)
			cur = ins
		}
		return cur
	}

	for round := 0; round < 16; round++ {
		b := pir.NewBuilder()
		entry := b.Block()
		left := b.Block()
		right := b.Block()
		merge := b.Block()

		cond := pir.NewLdArg(0)
		entry.Append(cond)
		entry.SetCond(cond, left, right)

		lv := chain(left, pir.NewConst(int64(gofakeit.Number(0, 9)), pir.TInt))
		left.SetJump(merge)
		rv := chain(right, pir.NewConst(int64(gofakeit.Number(0, 9)), pir.TInt))
		right.SetJump(merge)

		phi := pir.NewPhi(pir.TInt)
		phi.AddInput(left, lv)
		phi.AddInput(right, rv)
		merge.AddPhi(phi)
		merge.SetReturn(phi)

		require.NotPanics(t, func() {
			Compile(&pir.Function{Body: b.Code, NArgs: 1}, rtfn.NewDispatchTable(2), rtfn.NewConstPool(), WithDryRun(true))
		})
	}
}

func opsOf(obj rtfn.CodeObject) []rtfn.Op {
	var out []rtfn.Op
	for _, i := range obj.Instrs {
		out = append(out, i.Op)
	}
	return out
}
