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

package rtfn

import "fmt"

// ConstEntry is one deduplicated constant-pool slot: the literal value
// plus the static type it was declared with, since two Values holding the
// same underlying Go value but different PIR types (e.g. int 0 vs. bool
// false) must not collapse into one slot.
type ConstEntry struct {
	Val interface{}
	Ty  int
}

func (c ConstEntry) key() string { return fmt.Sprintf("%d:%v", c.Ty, c.Val) }

// ConstPool is the process-wide, single-threaded constant arena every
// compilation interns its literals into: identical entries collapse to
// the same index instead of being duplicated per call site. Like the
// dispatch table, the pool is owned by the caller and handed to each
// compilation, so deduplication spans every closure compiled against it.
type ConstPool struct {
	index   map[string]int
	entries []ConstEntry
}

func NewConstPool() *ConstPool {
	return &ConstPool{index: map[string]int{}}
}

// Intern returns v's slot in the pool, allocating a new one the first
// time this exact value/type pair is seen.
func (p *ConstPool) Intern(v ConstEntry) int {
	k := v.key()
	if idx, ok := p.index[k]; ok {
		return idx
	}
	idx := len(p.entries)
	p.entries = append(p.entries, v)
	p.index[k] = idx
	return idx
}

func (p *ConstPool) Get(idx int) ConstEntry { return p.entries[idx] }

func (p *ConstPool) Len() int { return len(p.entries) }
