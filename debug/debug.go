/*
 * Copyright 2022 CloudWeGo Authors
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

package debug

import (
	"github.com/flowlang/pirc/internal/rtfn"
)

// A Stats records statistics about the bytecode compiler.
type Stats struct {
	Compiler CompilerStats
}

// A CompilerStats records how much the lowering pipeline has produced so
// far: installed functions, finalized code objects (function bodies plus
// promise bodies), and total emitted bytecode instructions.
type CompilerStats struct {
	Functions   int
	CodeObjects int
	Bytecodes   int
}

// GetStats returns statistics of the bytecode compiler.
func GetStats() Stats {
	return Stats{
		Compiler: CompilerStats{
			Functions:   int(rtfn.FnCount.Load()),
			CodeObjects: int(rtfn.CodeObjCount.Load()),
			Bytecodes:   int(rtfn.InstrCount.Load()),
		},
	}
}
