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

import "github.com/flowlang/pirc/internal/pir"

// StackColor runs the two heuristics that decide which Values can live on
// the operand stack instead of in a local slot.
//
// It runs in two passes over blocks because of an ordering subtlety: the
// phi-entry rule (rule a) needs to inspect the final simulated stack
// window of every predecessor, and that window is itself produced by the
// in-block rule (rule b) run on the predecessor alone. Rule b never reads
// any other block's state, so computing every block's window first and
// only then running rule a is equivalent to interleaving them, and avoids
// depending on block visitation order (which, across a back edge, has no
// good answer anyway).
func StackColor(blocks []*pir.BasicBlock, m *Map) {
	windows := make(map[int][]pir.Value, len(blocks))
	for _, bb := range blocks {
		windows[bb.Id] = computeWindow(bb, m)
	}
	for _, bb := range blocks {
		phiEntryRule(bb, windows, m)
	}
}

// computeWindow runs the in-block stack-window simulation (heuristic b)
// for a single block, returning its final deque (bottom to top). Any value
// this simulation pushes but later discards without a confirmed match is
// simply never marked Stack -- markStack only happens at a successful
// match, so there's no separate step needed to "undo" a speculative push.
func computeWindow(bb *pir.BasicBlock, m *Map) []pir.Value {
	var deque []pir.Value

	tryMatchAndPop := func(args []pir.Value) {
		// Trailing constants are materialized by the emitter after every
		// operand before them is in place, so only those earlier operands
		// have to be found in the window.
		for len(args) > 0 {
			if last := args[len(args)-1]; last == nil || last.Kind() != pir.VKConst {
				break
			}
			args = args[:len(args)-1]
		}
		n := len(args)
		if n == 0 || len(deque) < n {
			return
		}
		deepest, ok := tryMatch(deque, args)
		if !ok {
			return
		}
		for _, a := range args {
			m.SetStack(a)
		}
		deque = deque[:len(deque)-deepest-1]
	}

	for _, ins := range bb.Instrs {
		tryMatchAndPop(ins.Args)
		if ins.ResultType != pir.TVoid && !ins.IsPhi() && ins.HasSingleUse() {
			deque = append(deque, ins)
		}
	}

	switch bb.Term {
	case pir.TermCond:
		tryMatchAndPop([]pir.Value{bb.Cond})
	case pir.TermReturn:
		tryMatchAndPop([]pir.Value{bb.ReturnValue})
	case pir.TermDeopt:
		tryMatchAndPop(bb.DeoptOperands)
	}

	return deque
}

// tryMatch scans deque from the top downward, matching args in reverse
// order (the last argument is expected nearest the top, since it would
// have been pushed last by straight-line evaluation). It reports the
// deepest depth (0 = top) at which any argument was found, and whether
// every argument in args was located somewhere in deque.
func tryMatch(deque []pir.Value, args []pir.Value) (deepest int, ok bool) {
	next := len(args) - 1
	deepest = -1
	for depth := 0; depth < len(deque) && next >= 0; depth++ {
		if deque[len(deque)-1-depth] == args[next] {
			next--
			deepest = depth
		}
	}
	return deepest, next < 0
}

// phiEntryRule implements heuristic a: a run of phis at the head of a
// block can stay on the stack if, in every predecessor, the corresponding
// input is already sitting at the matching depth of that predecessor's
// final stack window and the predecessor reaches this block by fallthrough
// (conservative policy -- see DESIGN.md). The first phi that fails the
// check stops the sweep for the rest of the block's phis.
func phiEntryRule(bb *pir.BasicBlock, windows map[int][]pir.Value, m *Map) {
	for j, phi := range bb.Phis {
		ok := true
		for _, in := range phi.Inputs {
			pred := in.Pred
			if !(pred.Term == pir.TermJump && pred.Next0 == bb) {
				ok = false
				break
			}
			w := windows[pred.Id]
			if j >= len(w) {
				ok = false
				break
			}
			if w[len(w)-1-j] != in.Value {
				ok = false
				break
			}
		}
		if !ok {
			break
		}
		m.SetStack(phi)
		for _, in := range phi.Inputs {
			m.SetStack(in.Value)
		}
	}
}
