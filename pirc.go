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

// Package pirc lowers a PIR function body to bytecode: CSSA construction,
// liveness, two-tier stack/register allocation, symbolic verification, and
// emission, then installs the result into a closure's dispatch table.
package pirc

import (
	"github.com/flowlang/pirc/internal/dbg"
	"github.com/flowlang/pirc/internal/lower"
	"github.com/flowlang/pirc/internal/pir"
	"github.com/flowlang/pirc/internal/rtfn"
)

// Compile lowers fn and installs the result at dispatch tier 1, unless the
// DryRun option is set, in which case the finalized Function is returned
// without being installed. dt and consts are both caller-owned shared
// state: the dispatch table belongs to the closure being compiled, and the
// constant pool is the process-wide arena every compilation interns its
// literals into, so constants dedupe across separate Compile calls. There
// is no recover() here: a malformed-IR or allocation-fault panic from the
// pipeline below is a compiler bug and is left to propagate to the caller.
func Compile(fn *pir.Function, dt *rtfn.DispatchTable, consts *rtfn.ConstPool, options ...Option) *rtfn.Function {
	if dt.Available(1) {
		return dt.Get(1)
	}

	flags := dbg.DefaultFlags()
	for _, opt := range options {
		opt(&flags)
	}

	ctx := lower.NewContext(dt, consts, flags)
	ctx.CompileFunction(fn, false)
	result := ctx.Writer.Function()

	if !flags.DryRun {
		dt.Put(1, result)
	}
	return result
}
