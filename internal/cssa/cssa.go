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

// Package cssa converts PIR out of plain SSA form and into conventional
// SSA: every phi is surrounded by copies so the phi and each of its inputs
// can, if the allocator chooses to, share one storage location.
package cssa

import "github.com/flowlang/pirc/internal/pir"

// Apply inserts the phi-input and phi-output copies for every phi in code.
// It must run before liveness and allocation: both of those pin their
// single-use heuristics on the copies this pass introduces.
func Apply(code *pir.Code) {
	for _, bb := range code.Blocks() {
		for _, phi := range bb.Phis {
			insertCopies(code, bb, phi)
		}
	}
	code.Invalidate()
}

func insertCopies(code *pir.Code, bb *pir.BasicBlock, phi *pir.Instruction) {
	for idx := range phi.Inputs {
		in := phi.Inputs[idx]
		if isDedicatedCopy(in.Value, in.Pred) {
			continue
		}
		c := pir.NewCopy(in.Value, in.Value.Type())
		in.Pred.Append(c)
		phi.Inputs[idx].Value = c
	}

	if hasOutputCopy(bb, phi) {
		return
	}
	out := pir.NewCopy(phi, phi.ResultType)
	bb.PrependInstr(out)
	code.ReplaceUsesExcept(phi, out, out)
}

// isDedicatedCopy reports whether v already is a copy living in pred whose
// only consumer is the phi being processed, i.e. the shape this pass would
// insert. Re-running the pass then leaves the graph untouched.
func isDedicatedCopy(v pir.Value, pred *pir.BasicBlock) bool {
	c, ok := v.(*pir.Instruction)
	return ok && c.Tag == pir.OpCopy && c.BB() == pred && c.HasSingleUse()
}

// hasOutputCopy reports whether the leading run of copies at the head of
// the block (one per already-processed phi) contains the copy of phi that
// carries all of its downstream uses.
func hasOutputCopy(bb *pir.BasicBlock, phi *pir.Instruction) bool {
	for _, ins := range bb.Instrs {
		if ins.Tag != pir.OpCopy {
			break
		}
		if len(ins.Args) == 1 && ins.Args[0] == pir.Value(phi) && phi.HasSingleUse() {
			return true
		}
	}
	return false
}
