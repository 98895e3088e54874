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

// Package verify symbolically interprets an allocated PIR body to confirm
// the allocation the stack pre-colorer and register allocator produced is
// actually consistent: every operand must be found exactly where its
// allocation says it lives, on every path through the function.
package verify

import (
	"fmt"

	"github.com/flowlang/pirc/internal/alloc"
	"github.com/flowlang/pirc/internal/diag"
	"github.com/flowlang/pirc/internal/pir"
)

type state struct {
	regs  map[alloc.SlotNumber]pir.Value
	stack []pir.Value
}

func (s state) clone() state {
	regs := make(map[alloc.SlotNumber]pir.Value, len(s.regs))
	for k, v := range s.regs {
		regs[k] = v
	}
	stack := append([]pir.Value(nil), s.stack...)
	return state{regs: regs, stack: stack}
}

type simulator struct {
	m            *alloc.Map
	visitedEdges map[[2]int]bool
}

// Verify walks every CFG edge out of entry exactly once, simulating the
// register file and operand stack along the way, and panics the moment an
// operand doesn't match what the allocation promised would be there.
func Verify(entry *pir.BasicBlock, m *alloc.Map) {
	if entry == nil {
		return
	}
	s := &simulator{m: m, visitedEdges: map[[2]int]bool{}}
	s.run(entry, state{regs: map[alloc.SlotNumber]pir.Value{}}, -1)
}

func (s *simulator) run(bb *pir.BasicBlock, st state, fromID int) {
	if fromID >= 0 {
		edge := [2]int{fromID, bb.Id}
		if s.visitedEdges[edge] {
			return
		}
		s.visitedEdges[edge] = true
	}

	for _, phi := range bb.Phis {
		if s.m.IsStack(phi) {
			if len(st.stack) == 0 {
				panic(diag.NewStackDiscipline(bb.Id, "phi", 0))
			}
			// The entry's identity isn't checked: the emitter guarantees
			// the predecessor's copy pushed the right value. From here on
			// the stack slot is the phi itself.
			st.stack[len(st.stack)-1] = phi
			continue
		}
		// A local-allocated phi needs no check here: coalescing guarantees
		// every input copy already wrote the same slot this phi reads.
		if slot, ok := s.m.Get(phi); ok {
			st.regs[slot] = phi
		}
	}

	check := func(v pir.Value) {
		if v == nil {
			return
		}
		switch v.Kind() {
		case pir.VKConst, pir.VKEnv:
			return
		}
		if s.m.IsStack(v) {
			if len(st.stack) == 0 {
				panic(diag.NewStackDiscipline(bb.Id, v.String(), 0))
			}
			top := st.stack[len(st.stack)-1]
			st.stack = st.stack[:len(st.stack)-1]
			if top != v {
				panic(diag.NewAllocationFault(-1, v.String(), fmt.Sprintf("%v", top)))
			}
			return
		}
		slot, ok := s.m.Get(v)
		if !ok {
			panic(diag.NewMalformedIR(v.String(), "operand has no allocation"))
		}
		got, ok := st.regs[slot]
		if !ok || got != v {
			panic(diag.NewAllocationFault(int(slot), v.String(), fmt.Sprintf("%v", got)))
		}
	}

	for _, ins := range bb.Instrs {
		for i := len(ins.Args) - 1; i >= 0; i-- {
			check(ins.Args[i])
		}
		if ins.ResultType != pir.TVoid && s.m.Has(ins) {
			if s.m.IsStack(ins) {
				st.stack = append(st.stack, ins)
			} else {
				slot, _ := s.m.Get(ins)
				st.regs[slot] = ins
			}
		}
	}

	switch bb.Term {
	case pir.TermReturn:
		check(bb.ReturnValue)
		if len(st.stack) != 0 {
			panic(diag.NewStackDiscipline(bb.Id, "return", len(st.stack)))
		}
	case pir.TermDeopt:
		// The deopt trap sequence consumes its own operands: each one is
		// checked (last operand first, since it sits nearest the top), after
		// which the stack must be empty as at any other exit. Nothing past
		// a deopt is explored.
		for i := len(bb.DeoptOperands) - 1; i >= 0; i-- {
			check(bb.DeoptOperands[i])
		}
		if len(st.stack) != 0 {
			panic(diag.NewStackDiscipline(bb.Id, "deopt", len(st.stack)))
		}
	case pir.TermJump:
		s.run(bb.Next0, st, bb.Id)
	case pir.TermCond:
		check(bb.Cond)
		s.run(bb.Next0, st.clone(), bb.Id)
		s.run(bb.Next1, st.clone(), bb.Id)
	}
}
