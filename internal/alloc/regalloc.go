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
	"github.com/flowlang/pirc/internal/cfg"
	"github.com/flowlang/pirc/internal/liveness"
	"github.com/flowlang/pirc/internal/pir"
)

// RegAlloc assigns local slots to every Value StackColor left unassigned.
// It runs in two phases: phi coalescing first (so a phi and its inputs
// land in the same slot whenever none of them interfere), then a single
// dominance-order eager coloring pass over everything still unassigned.
func RegAlloc(g *cfg.CFG, live *liveness.Result, m *Map) {
	occupants := map[SlotNumber][]pir.Value{}

	isFree := func(s SlotNumber, v pir.Value) bool {
		for _, o := range occupants[s] {
			if live.Interfere(o, v) {
				return false
			}
		}
		return true
	}
	firstFree := func(group []pir.Value) SlotNumber {
		for s := SlotNumber(1); ; s++ {
			ok := true
			for _, v := range group {
				if !isFree(s, v) {
					ok = false
					break
				}
			}
			if ok {
				return s
			}
		}
	}
	assign := func(s SlotNumber, v pir.Value) {
		m.SetSlot(v, s)
		occupants[s] = append(occupants[s], v)
	}

	// Phase a: phi coalescing.
	for _, bb := range g.Code.Blocks() {
		for _, phi := range bb.Phis {
			if m.Has(phi) {
				continue
			}
			group := []pir.Value{phi}
			for _, in := range phi.Inputs {
				if !m.IsStack(in.Value) && !m.Has(in.Value) {
					group = append(group, in.Value)
				}
			}
			s := firstFree(group)
			for _, v := range group {
				assign(s, v)
			}
		}
	}

	// Phase b: dominance-order eager coloring, one pass, with a
	// move-reducing hint toward the first argument's slot when it's free.
	for _, bb := range g.DomPreorder() {
		for _, ins := range bb.Instrs {
			if ins.ResultType == pir.TVoid || m.Has(ins) || !live.HasRecord(ins) {
				continue
			}

			var hint SlotNumber
			if len(ins.Args) > 0 {
				if s, ok := m.Get(ins.Args[0]); ok && s != Stack {
					hint = s
				}
			}

			var chosen SlotNumber
			if hint != Unassigned && isFree(hint, ins) {
				chosen = hint
			} else {
				chosen = SlotNumber(1)
				for !isFree(chosen, ins) {
					chosen++
				}
			}
			assign(chosen, ins)
		}
	}
}
