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

// Package dbg holds the lowering core's debug switches: six boolean
// flags, each settable either programmatically (root Option functions)
// or via a PIRC_<NAME> environment variable for ad-hoc debugging without
// touching call sites.
package dbg

import (
	"os"
	"strconv"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Flags toggles the lowering core's debug behaviour. Every field defaults
// to false. None of them changes the bytecode lowering produces: five
// control what gets dumped alongside it, and DryRun controls whether
// Compile installs the result into the dispatch table.
type Flags struct {
	PrintCSSA              bool
	DebugAllocator         bool
	PrintLivenessIntervals bool
	PrintFinalPir          bool
	PrintFinalRir          bool
	DryRun                 bool
}

// DefaultFlags reads every flag from its PIRC_<NAME> environment variable,
// falling back to false when unset or unparseable.
func DefaultFlags() Flags {
	return Flags{
		PrintCSSA:              envBool("PIRC_PRINT_CSSA"),
		DebugAllocator:         envBool("PIRC_DEBUG_ALLOCATOR"),
		PrintLivenessIntervals: envBool("PIRC_PRINT_LIVENESS_INTERVALS"),
		PrintFinalPir:          envBool("PIRC_PRINT_FINAL_PIR"),
		PrintFinalRir:          envBool("PIRC_PRINT_FINAL_RIR"),
		DryRun:                 envBool("PIRC_DRY_RUN"),
	}
}

func envBool(key string) bool {
	v := os.Getenv(key)
	if v == "" {
		return false
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false
	}
	return b
}

// Names returns every flag that's currently set, sorted for stable
// diagnostic output.
func (f Flags) Names() []string {
	set := map[string]bool{
		"PrintCSSA":              f.PrintCSSA,
		"DebugAllocator":         f.DebugAllocator,
		"PrintLivenessIntervals": f.PrintLivenessIntervals,
		"PrintFinalPir":          f.PrintFinalPir,
		"PrintFinalRir":          f.PrintFinalRir,
		"DryRun":                 f.DryRun,
	}
	var names []string
	for _, n := range maps.Keys(set) {
		if set[n] {
			names = append(names, n)
		}
	}
	slices.Sort(names)
	return names
}
