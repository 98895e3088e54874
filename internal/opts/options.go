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

// Package opts holds the lowering core's numeric tunables, each overridable
// through a PIRC_* environment variable.
package opts

type Options struct {
	MaxNestedDepth int
}

// CanRecurse reports whether lowering may descend into one more level of
// nested closure/promise bodies. A zero MaxNestedDepth disables the bound.
func (self *Options) CanRecurse(depth int) bool {
	return self.MaxNestedDepth > depth || self.MaxNestedDepth == 0
}

func GetDefaultOptions() Options {
	return Options{
		MaxNestedDepth: MaxNestedDepth,
	}
}
