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

package liveness

import (
	"testing"

	"github.com/flowlang/pirc/internal/cfg"
	"github.com/flowlang/pirc/internal/pir"
	"github.com/stretchr/testify/require"
)

func TestCompute_ReusedValueDoesNotInterfereWithItsConsumer(t *testing.T) {
	b := pir.NewBuilder()
	entry := b.Block()

	t1 := pir.NewLdArg(0)
	entry.Append(t1)
	t2 := pir.NewAdd(t1, t1)
	entry.Append(t2)
	entry.SetReturn(t2)

	g := cfg.Build(b.Code)
	r := Compute(g)

	require.True(t, r.HasRecord(t1))
	require.True(t, r.HasRecord(t2))
	require.False(t, r.Interfere(t1, t2))

	iv, ok := r.IntervalAt(t1, entry.Id)
	require.True(t, ok)
	require.Equal(t, 0, iv.Begin)
	require.Equal(t, 1, iv.End) // last use is Add at position 1
}

func TestCompute_DeadValueHasNoRecord(t *testing.T) {
	b := pir.NewBuilder()
	entry := b.Block()

	dead := pir.NewLdArg(0)
	entry.Append(dead)
	entry.SetReturn(pir.NilConst)

	g := cfg.Build(b.Code)
	r := Compute(g)

	require.False(t, r.HasRecord(dead))
}

func TestCompute_DiamondPhiLiveAcrossBothPaths(t *testing.T) {
	b := pir.NewBuilder()
	entry := b.Block()
	left := b.Block()
	right := b.Block()
	join := b.Block()

	entry.SetCond(pir.NewConst(true, pir.TBool), left, right)

	lv := pir.NewLdArg(0)
	left.Append(lv)
	left.SetJump(join)

	rv := pir.NewLdArg(1)
	right.Append(rv)
	right.SetJump(join)

	phi := pir.NewPhi(pir.TAny)
	phi.AddInput(left, lv)
	phi.AddInput(right, rv)
	join.AddPhi(phi)
	join.SetReturn(phi)

	g := cfg.Build(b.Code)
	r := Compute(g)

	require.True(t, r.HasRecord(lv))
	require.True(t, r.HasRecord(rv))
	require.True(t, r.HasRecord(phi))

	leftOut, ok := r.IntervalAt(lv, left.Id)
	require.True(t, ok)
	require.Equal(t, len(left.Instrs), leftOut.End)
}
