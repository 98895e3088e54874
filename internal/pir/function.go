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

package pir

// Function is the compile unit pirc.Compile and lower's CompileFunction are
// handed: a closure body plus
// its declared argument count. Nested promises and closures are reached by
// walking the body's instructions (OpMkArg/OpMkFunCls), not through a flat
// list here.
type Function struct {
	Body  *Code
	NArgs int
}
