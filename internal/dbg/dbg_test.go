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

package dbg

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultFlags_AllFalseWhenUnset(t *testing.T) {
	f := DefaultFlags()
	require.Empty(t, f.Names())
}

func TestDefaultFlags_ReadsEnvVar(t *testing.T) {
	t.Setenv("PIRC_PRINT_CSSA", "true")
	t.Setenv("PIRC_DRY_RUN", "1")

	f := DefaultFlags()
	require.True(t, f.PrintCSSA)
	require.True(t, f.DryRun)
	require.Equal(t, []string{"DryRun", "PrintCSSA"}, f.Names())
}

func TestDefaultFlags_InvalidValueFallsBackToFalse(t *testing.T) {
	t.Setenv("PIRC_DEBUG_ALLOCATOR", "not-a-bool")
	f := DefaultFlags()
	require.False(t, f.DebugAllocator)
}

func TestDump_DoesNotPanic(t *testing.T) {
	require.NotPanics(t, func() {
		Dump("test", struct{ X int }{X: 1})
	})
}
