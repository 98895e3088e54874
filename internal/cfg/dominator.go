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

package cfg

import "github.com/flowlang/pirc/internal/pir"

// buildDominatorTree computes the immediate-dominator relation and its
// inverse (children in the dominator tree) for every block reachable from
// entry, using the iterative data-flow formulation of Cooper, Harvey and
// Kennedy ("A Simple, Fast Dominance Algorithm"): blocks are numbered in
// reverse postorder, every block's idom is refined by intersecting the
// idoms of its already-processed predecessors, and the sweep repeats until
// no assignment changes. On the small, shallow graphs one function body
// produces this converges in one or two sweeps.
func buildDominatorTree(entry *pir.BasicBlock) (domBy map[int]*pir.BasicBlock, domOf map[int][]*pir.BasicBlock) {
	rpo := postorderFrom(entry)
	for i, j := 0, len(rpo)-1; i < j; i, j = i+1, j-1 {
		rpo[i], rpo[j] = rpo[j], rpo[i]
	}

	// rpoIdx doubles as the reachability set: a predecessor absent from it
	// was never reached from entry and contributes nothing to dominance.
	rpoIdx := make(map[int]int, len(rpo))
	for i, bb := range rpo {
		rpoIdx[bb.Id] = i
	}

	idom := make([]*pir.BasicBlock, len(rpo))
	idom[0] = entry

	// intersect walks two blocks up the current idom assignment until the
	// chains meet; the meeting point dominates both arguments.
	intersect := func(a, b *pir.BasicBlock) *pir.BasicBlock {
		for a != b {
			for rpoIdx[a.Id] > rpoIdx[b.Id] {
				a = idom[rpoIdx[a.Id]]
			}
			for rpoIdx[b.Id] > rpoIdx[a.Id] {
				b = idom[rpoIdx[b.Id]]
			}
		}
		return a
	}

	for changed := true; changed; {
		changed = false
		for _, bb := range rpo[1:] {
			var best *pir.BasicBlock
			for _, pred := range bb.Preds {
				pi, reachable := rpoIdx[pred.Id]
				if !reachable || idom[pi] == nil {
					continue
				}
				if best == nil {
					best = pred
				} else {
					best = intersect(pred, best)
				}
			}
			if best != nil && idom[rpoIdx[bb.Id]] != best {
				idom[rpoIdx[bb.Id]] = best
				changed = true
			}
		}
	}

	domBy = make(map[int]*pir.BasicBlock, len(rpo))
	domOf = make(map[int][]*pir.BasicBlock, len(rpo))
	for _, bb := range rpo[1:] {
		d := idom[rpoIdx[bb.Id]]
		domBy[bb.Id] = d
		domOf[d.Id] = append(domOf[d.Id], bb)
	}
	return
}

// postorderFrom lists every block reachable from entry, children before
// parents, following successor edges in next0, next1 order.
func postorderFrom(entry *pir.BasicBlock) []*pir.BasicBlock {
	var order []*pir.BasicBlock
	seen := map[int]bool{}

	var walk func(bb *pir.BasicBlock)
	walk = func(bb *pir.BasicBlock) {
		seen[bb.Id] = true
		for _, s := range bb.Successors() {
			if !seen[s.Id] {
				walk(s)
			}
		}
		order = append(order, bb)
	}
	walk(entry)
	return order
}
