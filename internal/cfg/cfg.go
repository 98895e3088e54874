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

// Package cfg builds and queries the control-flow graph over a pir.Code
// body: dominance, reachability, and the traversal orders the rest of
// lowering needs (reverse postorder, dominator preorder for
// register allocation, breadth first for emission).
package cfg

import (
	"github.com/flowlang/pirc/internal/pir"
	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/traverse"
)

// CFG wraps a pir.Code with its dominator tree, computed once up front.
type CFG struct {
	Code *pir.Code

	DominatedBy map[int]*pir.BasicBlock
	DominatorOf map[int][]*pir.BasicBlock

	blockByID map[int]*pir.BasicBlock
	graph     *simple.DirectedGraph
}

// Build computes the CFG for code, rooted at code.Entry.
func Build(code *pir.Code) *CFG {
	g := &CFG{
		Code:      code,
		blockByID: make(map[int]*pir.BasicBlock, len(code.Blocks())),
		graph:     simple.NewDirectedGraph(),
	}
	for _, bb := range code.Blocks() {
		g.blockByID[bb.Id] = bb
		g.graph.AddNode(simple.Node(int64(bb.Id)))
	}
	for _, bb := range code.Blocks() {
		for _, s := range bb.Successors() {
			if s.Id == bb.Id {
				// gonum's simple graphs reject self edges; a block that
				// loops straight back to itself doesn't affect any of the
				// traversal orders computed over the mirror anyway.
				continue
			}
			g.graph.SetEdge(g.graph.NewEdge(simple.Node(int64(bb.Id)), simple.Node(int64(s.Id))))
		}
	}
	if code.Entry != nil {
		g.DominatedBy, g.DominatorOf = buildDominatorTree(code.Entry)
	}
	return g
}

func (g *CFG) BlockByID(id int) *pir.BasicBlock { return g.blockByID[id] }

func (g *CFG) Predecessors(bb *pir.BasicBlock) []*pir.BasicBlock { return bb.Preds }

func (g *CFG) Successors(bb *pir.BasicBlock) []*pir.BasicBlock { return bb.Successors() }

func (g *CFG) Exits() []*pir.BasicBlock { return g.Code.Exits() }

func (g *CFG) ImmediateDominator(bb *pir.BasicBlock) *pir.BasicBlock { return g.DominatedBy[bb.Id] }

func (g *CFG) MaxBlock() int { return g.Code.NextBBID() }

// IsPredecessor reports whether a can reach b by following successor edges
// zero or more times -- a transitive-reachability test, not just a direct
// adjacency check. The walk runs over the gonum mirror; visit order is
// irrelevant to a reachability answer.
func (g *CFG) IsPredecessor(a, b *pir.BasicBlock) bool {
	if a.Id == b.Id {
		return true
	}
	found := false
	bf := traverse.BreadthFirst{}
	bf.Walk(g.graph, simple.Node(int64(a.Id)), func(n graph.Node, depth int) bool {
		if int(n.ID()) == b.Id {
			found = true
		}
		return found
	})
	return found
}
