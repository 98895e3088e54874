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

package pirc

import "github.com/flowlang/pirc/internal/dbg"

// Option is the property setter function for a Compile call's debug
// flags. Each wraps one field of dbg.Flags; the zero value of every
// field is false, matching the corresponding PIRC_<NAME> environment
// variable being unset.
type Option func(*dbg.Flags)

// WithPrintCSSA dumps the function body immediately after CSSA
// construction inserts its phi-boundary copies.
func WithPrintCSSA(v bool) Option {
	return func(f *dbg.Flags) { f.PrintCSSA = v }
}

// WithDebugAllocator dumps the stack/register allocation map once both
// allocation passes have run.
func WithDebugAllocator(v bool) Option {
	return func(f *dbg.Flags) { f.DebugAllocator = v }
}

// WithPrintLivenessIntervals dumps every Value's computed live interval
// per block.
func WithPrintLivenessIntervals(v bool) Option {
	return func(f *dbg.Flags) { f.PrintLivenessIntervals = v }
}

// WithPrintFinalPir dumps the function body as it stands right before
// emission.
func WithPrintFinalPir(v bool) Option {
	return func(f *dbg.Flags) { f.PrintFinalPir = v }
}

// WithPrintFinalRir dumps the finalized bytecode CodeObject once emission
// completes.
func WithPrintFinalRir(v bool) Option {
	return func(f *dbg.Flags) { f.PrintFinalRir = v }
}

// WithDryRun runs the whole pipeline but skips installing the result into
// the dispatch table, for inspecting what Compile would produce without
// making it live.
func WithDryRun(v bool) Option {
	return func(f *dbg.Flags) { f.DryRun = v }
}
