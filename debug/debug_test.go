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
	"testing"

	"github.com/flowlang/pirc"
	"github.com/flowlang/pirc/internal/pir"
	"github.com/flowlang/pirc/internal/rtfn"
	"github.com/stretchr/testify/require"
)

func TestGetStats_GrowsWithCompilation(t *testing.T) {
	before := GetStats()

	b := pir.NewBuilder()
	entry := b.Block()
	entry.SetReturn(pir.NilConst)
	pirc.Compile(&pir.Function{Body: b.Code, NArgs: 0}, rtfn.NewDispatchTable(2), rtfn.NewConstPool())

	after := GetStats()
	require.Equal(t, before.Compiler.Functions+1, after.Compiler.Functions)
	require.Equal(t, before.Compiler.CodeObjects+1, after.Compiler.CodeObjects)
	require.Greater(t, after.Compiler.Bytecodes, before.Compiler.Bytecodes)
}
