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
	"fmt"
	"os"

	"github.com/davecgh/go-spew/spew"
)

var dumpConfig = spew.ConfigState{
	DisablePointerMethods: true,
	SortKeys:              true,
	Indent:                "  ",
}

// Dump writes v's full structure to stderr under label, guarded by the
// caller checking the relevant Flags field first. DisablePointerMethods
// keeps spew from invoking String()/Error() methods defined on a pointer
// receiver when the value being printed is not itself a pointer; values
// that are pointers still print through those methods.
func Dump(label string, v interface{}) {
	fmt.Fprintf(os.Stderr, "--- %s ---\n", label)
	dumpConfig.Fdump(os.Stderr, v)
}
