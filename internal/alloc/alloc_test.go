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

package alloc

import (
	"testing"

	"github.com/flowlang/pirc/internal/cfg"
	"github.com/flowlang/pirc/internal/cssa"
	"github.com/flowlang/pirc/internal/liveness"
	"github.com/flowlang/pirc/internal/pir"
	"github.com/stretchr/testify/require"
)

func buildAndAllocate(code *pir.Code) (*Map, *cfg.CFG) {
	cssa.Apply(code)
	g := cfg.Build(code)
	live := liveness.Compute(g)
	m := NewMap()
	StackColor(g.Code.Blocks(), m)
	RegAlloc(g, live, m)
	return m, g
}

// straight-line arithmetic: t1:=ldarg0; t2:=ldarg1; t3:=add(t1,t2); ret t3
// every value should end up stack-allocated.
func TestStackColor_StraightLineArithmetic(t *testing.T) {
	b := pir.NewBuilder()
	entry := b.Block()

	t1 := pir.NewLdArg(0)
	entry.Append(t1)
	t2 := pir.NewLdArg(1)
	entry.Append(t2)
	t3 := pir.NewAdd(t1, t2)
	entry.Append(t3)
	entry.SetReturn(t3)

	m, _ := buildAndAllocate(b.Code)

	require.True(t, m.IsStack(t1))
	require.True(t, m.IsStack(t2))
	require.True(t, m.IsStack(t3))
	require.Equal(t, 0, m.LocalsCount())
}

// reused value: t1:=ldarg0; t2:=add(t1,t1); ret t2
// t1 has two uses so it must become a local; t2 is single-use into the
// terminator so it stays on the stack.
func TestStackColor_ReusedValueBecomesLocal(t *testing.T) {
	b := pir.NewBuilder()
	entry := b.Block()

	t1 := pir.NewLdArg(0)
	entry.Append(t1)
	t2 := pir.NewAdd(t1, t1)
	entry.Append(t2)
	entry.SetReturn(t2)

	m, _ := buildAndAllocate(b.Code)

	require.False(t, m.IsStack(t1))
	require.True(t, m.Has(t1))
	require.True(t, m.IsStack(t2))
	require.Equal(t, 1, m.LocalsCount())
}

func TestRegAlloc_PhiCoalescesWithInputs(t *testing.T) {
	b := pir.NewBuilder()
	entry := b.Block()
	left := b.Block()
	right := b.Block()
	join := b.Block()

	entry.SetCond(pir.NewConst(true, pir.TBool), left, right)

	lv := pir.NewLdArg(0)
	left.Append(lv)
	lv2 := pir.NewAdd(lv, lv) // give lv a second use so it can't be stack-colored
	left.Append(lv2)
	left.SetJump(join)

	rv := pir.NewLdArg(1)
	right.Append(rv)
	rv2 := pir.NewAdd(rv, rv)
	right.Append(rv2)
	// right reaches join only through a conditional's arm, never a plain
	// jump, which disqualifies it from the phi-entry stack rule (see
	// DESIGN.md's fallthrough-only policy) and forces the phi and its
	// inputs to be coalesced into a shared local slot instead.
	right.SetCond(pir.NewConst(true, pir.TBool), join, join)

	phi := pir.NewPhi(pir.TAny)
	phi.AddInput(left, lv2)
	phi.AddInput(right, rv2)
	join.AddPhi(phi)
	join.SetReturn(phi)

	m, _ := buildAndAllocate(b.Code)

	// cssa.Apply has replaced each phi input with a copy by this point;
	// the copies, not lv2/rv2 directly, are what coalesce with the phi.
	c1 := phi.Inputs[0].Value
	c2 := phi.Inputs[1].Value

	s1, ok1 := m.Get(c1)
	s2, ok2 := m.Get(c2)
	sp, okp := m.Get(phi)
	require.True(t, ok1)
	require.True(t, ok2)
	require.True(t, okp)
	require.Equal(t, sp, s1)
	require.Equal(t, sp, s2)
}
