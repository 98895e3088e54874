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

import "sync/atomic"

// Process-wide production counters, surfaced through the debug package.
var (
	FnCount      atomic.Int64
	CodeObjCount atomic.Int64
	InstrCount   atomic.Int64
)

// Writer collects every CodeObject a single compilation produces -- the
// entry function plus every nested closure/promise body lowered along the
// way -- and hands back one Function with all of them in index order.
type Writer struct {
	objects []CodeObject
}

func NewWriter() *Writer {
	return &Writer{}
}

func (w *Writer) NewStream() *CodeStream {
	return NewCodeStream()
}

// Finalize closes out s and registers the resulting CodeObject, returning
// the index later MkFunCls/MkArg references resolve to.
func (w *Writer) Finalize(s *CodeStream, isDefaultArg bool, localsCnt int) int {
	obj := s.Finalize(isDefaultArg, localsCnt)
	w.objects = append(w.objects, obj)
	CodeObjCount.Add(1)
	InstrCount.Add(int64(len(obj.Instrs)))
	return len(w.objects) - 1
}

// Function hands back the completed Function once every code object this
// compilation produces has been finalized.
func (w *Writer) Function() *Function {
	return &Function{Objects: w.objects}
}
