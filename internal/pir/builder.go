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

// Builder is a small convenience layer over Code/BasicBlock used by tests
// and by translations that build PIR programmatically instead of parsing
// one off the wire.
type Builder struct {
	Code *Code
}

func NewBuilder() *Builder {
	return &Builder{Code: NewCode()}
}

func (b *Builder) Block() *BasicBlock {
	bb := b.Code.NewBlock()
	if b.Code.Entry == nil {
		b.Code.Entry = bb
	}
	return bb
}
