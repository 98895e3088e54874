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

// Package liveness computes, for every allocatable Value, the per-block
// interval during which it must be kept somewhere the allocator can find
// it. Two Values interfere -- and so cannot share a slot or stack position
// -- if their intervals overlap in any shared block.
package liveness

import (
	"github.com/flowlang/pirc/internal/cfg"
	"github.com/flowlang/pirc/internal/pir"
	"github.com/oleiade/lane"
)

// Interval records the local span of a Value within one basic block.
// Begin is the position of the definition (0 if the value merely flows
// through the block). End is the position of the last use, or the block's
// instruction count if the value is live into a successor.
type Interval struct {
	Live  bool
	Begin int
	End   int
}

// overlap is strict at the use/def boundary: a value whose last use sits at
// position p does not overlap a value defined at p -- the defining
// instruction consumes it first, which is what lets the coloring hint hand a
// result its own operand's slot. Two definitions at the same position always
// overlap; each needs its own slot.
func overlap(a, b *Interval) bool {
	return a.Begin == b.Begin || (a.Begin < b.End && b.Begin < a.End)
}

// Result is the liveness solution for one pir.Code.
type Result struct {
	intervals map[pir.Value]map[int]*Interval
}

// HasRecord reports whether v is live anywhere at all. A Value with no
// record is dead: defined but never consumed, so it needs no allocation.
func (r *Result) HasRecord(v pir.Value) bool {
	_, ok := r.intervals[v]
	return ok
}

func (r *Result) IntervalAt(v pir.Value, bbID int) (*Interval, bool) {
	m, ok := r.intervals[v]
	if !ok {
		return nil, false
	}
	iv, ok := m[bbID]
	return iv, ok
}

// Interfere reports whether a and b are ever live at the same position in
// the same block, with equal begin positions counting as interference even
// when the rest of the ranges don't overlap.
func (r *Result) Interfere(a, b pir.Value) bool {
	if a == b {
		return false
	}
	ma, ok := r.intervals[a]
	if !ok {
		return false
	}
	mb, ok := r.intervals[b]
	if !ok {
		return false
	}
	for bbID, ia := range ma {
		if ib, ok := mb[bbID]; ok && overlap(ia, ib) {
			return true
		}
	}
	return false
}

func isAllocatable(v pir.Value) bool {
	if v == nil {
		return false
	}
	switch v.Kind() {
	case pir.VKConst, pir.VKEnv:
		return false
	default:
		return true
	}
}

type solver struct {
	g         *cfg.CFG
	intervals map[pir.Value]map[int]*Interval
	liveout   map[int]map[pir.Value]bool
}

// Compute runs the backward worklist solver described by the stack/register
// allocator: seed from the exit blocks, walk each block backward, and
// propagate the resulting live-in set into every predecessor's live-out
// (and, separately, each phi's per-predecessor input into only that one
// predecessor).
func Compute(g *cfg.CFG) *Result {
	s := &solver{
		g:         g,
		intervals: map[pir.Value]map[int]*Interval{},
		liveout:   map[int]map[pir.Value]bool{},
	}
	for _, bb := range g.Code.Blocks() {
		s.liveout[bb.Id] = map[pir.Value]bool{}
	}

	queue := lane.NewQueue()
	queued := map[int]bool{}
	for _, e := range g.Exits() {
		queue.Enqueue(e)
		queued[e.Id] = true
	}

	for !queue.Empty() {
		bb := queue.Dequeue().(*pir.BasicBlock)
		queued[bb.Id] = false

		livein, phiIn := s.processBlock(bb, s.liveout[bb.Id])

		for _, pred := range bb.Preds {
			if s.unionInto(s.liveout[pred.Id], livein) && !queued[pred.Id] {
				queue.Enqueue(pred)
				queued[pred.Id] = true
			}
		}
		for predID, vals := range phiIn {
			if s.unionInto(s.liveout[predID], vals) && !queued[predID] {
				queue.Enqueue(g.BlockByID(predID))
				queued[predID] = true
			}
		}
	}

	return &Result{intervals: s.intervals}
}

func (s *solver) unionInto(dst map[pir.Value]bool, src map[pir.Value]bool) bool {
	grew := false
	for v := range src {
		if !dst[v] {
			dst[v] = true
			grew = true
		}
	}
	return grew
}

func (s *solver) ensureInterval(bbID int, v pir.Value, blockSize int) *Interval {
	m, ok := s.intervals[v]
	if !ok {
		m = map[int]*Interval{}
		s.intervals[v] = m
	}
	iv, ok := m[bbID]
	if !ok {
		iv = &Interval{Live: true, Begin: 0, End: blockSize}
		m[bbID] = iv
	}
	return iv
}

func (s *solver) processBlock(bb *pir.BasicBlock, liveoutSet map[pir.Value]bool) (livein map[pir.Value]bool, phiIn map[int]map[pir.Value]bool) {
	blockSize := len(bb.Instrs)
	seen := map[pir.Value]bool{}
	live := map[pir.Value]bool{}

	recordUse := func(v pir.Value, pos int) {
		if !isAllocatable(v) || seen[v] {
			return
		}
		seen[v] = true
		live[v] = true
		s.ensureInterval(bb.Id, v, blockSize).End = pos
	}

	for v := range liveoutSet {
		if !isAllocatable(v) {
			continue
		}
		seen[v] = true
		live[v] = true
		s.ensureInterval(bb.Id, v, blockSize)
	}

	switch bb.Term {
	case pir.TermCond:
		recordUse(bb.Cond, blockSize)
	case pir.TermReturn:
		recordUse(bb.ReturnValue, blockSize)
	case pir.TermDeopt:
		for _, v := range bb.DeoptOperands {
			recordUse(v, blockSize)
		}
	}

	for pos := blockSize - 1; pos >= 0; pos-- {
		ins := bb.Instrs[pos]
		for _, a := range ins.Args {
			recordUse(a, pos)
		}
		if ins.ResultType != pir.TVoid && live[ins] {
			s.ensureInterval(bb.Id, ins, blockSize).Begin = pos
			delete(live, ins)
		}
	}

	phiIn = map[int]map[pir.Value]bool{}
	for _, phi := range bb.Phis {
		if live[phi] {
			s.ensureInterval(bb.Id, phi, blockSize).Begin = 0
			delete(live, phi)
		}
		for _, in := range phi.Inputs {
			if !isAllocatable(in.Value) {
				continue
			}
			pid := in.Pred.Id
			if phiIn[pid] == nil {
				phiIn[pid] = map[pir.Value]bool{}
			}
			phiIn[pid][in.Value] = true
		}
	}

	for v := range live {
		s.ensureInterval(bb.Id, v, blockSize)
	}

	return live, phiIn
}
