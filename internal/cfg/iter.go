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

import (
	"github.com/flowlang/pirc/internal/pir"
	"github.com/oleiade/lane"
)

// ReversePostorder lists the blocks reachable from entry so that every
// block comes before its successors, save for back edges.
func (g *CFG) ReversePostorder() []*pir.BasicBlock {
	if g.Code.Entry == nil {
		return nil
	}
	post := postorderFrom(g.Code.Entry)
	rpo := make([]*pir.BasicBlock, len(post))
	for i, bb := range post {
		rpo[len(post)-1-i] = bb
	}
	return rpo
}

// DomPreorder walks the dominator tree root-first, the order register
// allocation's eager coloring pass relies on: a block's dominator always
// gets colored before it does.
func (g *CFG) DomPreorder() []*pir.BasicBlock {
	var order []*pir.BasicBlock
	if g.Code.Entry == nil {
		return order
	}

	stack := lane.NewStack()
	stack.Push(g.Code.Entry)

	for !stack.Empty() {
		bb := stack.Pop().(*pir.BasicBlock)
		order = append(order, bb)

		children := append([]*pir.BasicBlock(nil), g.DominatorOf[bb.Id]...)
		for i := len(children) - 1; i >= 0; i-- {
			stack.Push(children[i])
		}
	}
	return order
}

// BreadthFirstOrder walks the CFG breadth-first from the entry block, the
// order the emitter lays out its bytecode in. Successors are enqueued in
// next0, next1 order, which keeps the layout a deterministic function of
// the input graph.
func (g *CFG) BreadthFirstOrder() []*pir.BasicBlock {
	var order []*pir.BasicBlock
	if g.Code.Entry == nil {
		return order
	}

	queue := lane.NewQueue()
	queue.Enqueue(g.Code.Entry)
	visited := map[int]bool{g.Code.Entry.Id: true}

	for !queue.Empty() {
		bb := queue.Dequeue().(*pir.BasicBlock)
		order = append(order, bb)
		for _, s := range bb.Successors() {
			if !visited[s.Id] {
				visited[s.Id] = true
				queue.Enqueue(s)
			}
		}
	}
	return order
}
