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

import "github.com/flowlang/pirc/internal/diag"

// These alias the panic payload types the lowering pipeline raises, so
// callers can recover() and type-switch on them without reaching into
// an internal package. Defined as aliases rather than wrapper types to
// avoid an import cycle: internal/verify needs these types too, and it
// sits underneath this root package.
type (
	MalformedIRError     = diag.MalformedIRError
	AllocationFaultError = diag.AllocationFaultError
	StackDisciplineError = diag.StackDisciplineError
)
