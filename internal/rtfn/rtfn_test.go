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

package rtfn

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCodeStream_StraightLineArithmetic(t *testing.T) {
	s := NewCodeStream()
	s.LoadLocal(0)
	s.LoadLocal(1)
	s.Add()
	s.AddSrcIdx(7)
	s.Ret()

	obj := s.Finalize(false, 0)
	require.Equal(t, 4, len(obj.Instrs))
	require.Equal(t, OpAdd, obj.Instrs[2].Op)
	require.Equal(t, 7, obj.Instrs[2].SrcIdx)
	require.Equal(t, 0, obj.LocalsCount)
}

func TestCodeStream_BranchPatchesToBoundLabel(t *testing.T) {
	s := NewCodeStream()
	top := s.MkLabel()
	s.Bind(top)
	s.LoadLocal(0)
	s.BrFalse(top)
	s.Ret()

	obj := s.Finalize(false, 1)
	require.Equal(t, OpBrFalse, obj.Instrs[1].Op)
	require.Equal(t, 0, obj.Instrs[1].Operand)
}

func TestWriter_FinalizeAssignsSequentialIndices(t *testing.T) {
	w := NewWriter()
	s1 := w.NewStream()
	s1.Ret()
	idx1 := w.Finalize(s1, false, 0)

	s2 := w.NewStream()
	s2.Ret()
	idx2 := w.Finalize(s2, true, 0)

	require.Equal(t, 0, idx1)
	require.Equal(t, 1, idx2)
	require.Len(t, w.Function().Objects, 2)
	require.True(t, w.Function().Objects[1].IsDefaultArg)
}

func TestDispatchTable_AvailableAndFirst(t *testing.T) {
	d := NewDispatchTable(4)
	require.False(t, d.Available(1))

	d.Put(0, &Function{})
	require.Equal(t, 0, d.First())

	d.Put(1, &Function{})
	require.True(t, d.Available(1))
	require.Equal(t, 0, d.First())
}

func TestConstPool_DedupesByValueAndType(t *testing.T) {
	p := NewConstPool()
	a := p.Intern(ConstEntry{Val: int64(0), Ty: 1})
	b := p.Intern(ConstEntry{Val: int64(0), Ty: 1})
	c := p.Intern(ConstEntry{Val: false, Ty: 2})

	require.Equal(t, a, b)
	require.NotEqual(t, a, c)
	require.Equal(t, 2, p.Len())
}
