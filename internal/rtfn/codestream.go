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

// Label marks a not-yet-known bytecode position, patched in once the
// target instruction has actually been emitted.
type Label int

// CodeStream accumulates one function body's bytecode. Labels may be
// referenced by a branch before the block they name has been emitted;
// Finalize patches every branch's operand to its label's resolved
// position before returning the CodeObject.
type CodeStream struct {
	instrs   []Instr
	labelPos []int  // labelPos[l] == -1 until Bind(l) is called
	patches  []patch
	lastSrc  int
}

type patch struct {
	instrIdx int
	label    Label
}

func NewCodeStream() *CodeStream {
	return &CodeStream{lastSrc: -1}
}

func (s *CodeStream) MkLabel() Label {
	s.labelPos = append(s.labelPos, -1)
	return Label(len(s.labelPos) - 1)
}

// Bind fixes l to the position the next emitted instruction will occupy.
func (s *CodeStream) Bind(l Label) {
	s.labelPos[l] = len(s.instrs)
}

func (s *CodeStream) emit(op Op, operand int) {
	s.instrs = append(s.instrs, Instr{Op: op, Operand: operand, SrcIdx: -1})
}

func (s *CodeStream) LoadLocal(slot int)  { s.emit(OpLoadLocal, slot) }
func (s *CodeStream) StoreLocal(slot int) { s.emit(OpStoreLocal, slot) }
func (s *CodeStream) Pop()                { s.emit(OpPop, 0) }
func (s *CodeStream) PushConst(idx int)   { s.emit(OpPushConst, idx) }
func (s *CodeStream) LoadArg(idx int)     { s.emit(OpLoadArg, idx) }
func (s *CodeStream) SetEnv()             { s.emit(OpSetEnv, 0) }
func (s *CodeStream) ParentEnv()          { s.emit(OpParentEnv, 0) }
func (s *CodeStream) Add()                { s.emit(OpAdd, 0) }
func (s *CodeStream) Sub()                { s.emit(OpSub, 0) }
func (s *CodeStream) Mul()                { s.emit(OpMul, 0) }
func (s *CodeStream) Lt()                 { s.emit(OpLt, 0) }
func (s *CodeStream) Eq()                 { s.emit(OpEq, 0) }
func (s *CodeStream) LoadElem()           { s.emit(OpLoadElem, 0) }
func (s *CodeStream) StoreElem()          { s.emit(OpStoreElem, 0) }
func (s *CodeStream) MkEnv()              { s.emit(OpMkEnv, 0) }
func (s *CodeStream) MkFunCls(idx int)    { s.emit(OpMkFunCls, idx) }
func (s *CodeStream) MkArg(idx int)       { s.emit(OpMkArg, idx) }
func (s *CodeStream) Call()               { s.emit(OpCall, 0) }
func (s *CodeStream) Ret()                { s.emit(OpRet, 0) }
func (s *CodeStream) Deopt()              { s.emit(OpDeopt, 0) }

func (s *CodeStream) BrFalse(l Label) {
	s.patches = append(s.patches, patch{instrIdx: len(s.instrs), label: l})
	s.emit(OpBrFalse, -1)
}

func (s *CodeStream) Br(l Label) {
	s.patches = append(s.patches, patch{instrIdx: len(s.instrs), label: l})
	s.emit(OpBr, -1)
}

// AddSrcIdx attaches a source-pool index to whichever instruction was most
// recently emitted into this stream.
func (s *CodeStream) AddSrcIdx(i int) {
	if len(s.instrs) == 0 {
		return
	}
	s.instrs[len(s.instrs)-1].SrcIdx = i
}

// Finalize patches every branch target and hands back the finished
// CodeObject; Writer.Finalize is what assigns it an index.
func (s *CodeStream) Finalize(isDefaultArg bool, localsCnt int) CodeObject {
	for _, p := range s.patches {
		s.instrs[p.instrIdx].Operand = s.labelPos[p.label]
	}
	return CodeObject{
		Instrs:       s.instrs,
		IsDefaultArg: isDefaultArg,
		LocalsCount:  localsCnt,
	}
}
