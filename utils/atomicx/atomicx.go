// Copyright 2025 TimeWtr
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package atomicx

import "sync/atomic"

type Int32 struct {
	v int32
}

func NewInt32(v int32) *Int32 {
	return &Int32{v: v}
}

func (i *Int32) Load() int32 {
	return atomic.LoadInt32(&i.v)
}

func (i *Int32) Store(v int32) {
	atomic.StoreInt32(&i.v, v)
}

func (i *Int32) Add(delta int32) int32 {
	return atomic.AddInt32(&i.v, delta)
}

func (i *Int32) CompareAndSwap(old, newV int32) bool {
	return atomic.CompareAndSwapInt32(&i.v, old, newV)
}

type Int64 struct {
	v int64
}

func NewInt64(v int64) *Int64 {
	return &Int64{v: v}
}

func (i *Int64) Load() int64 {
	return atomic.LoadInt64(&i.v)
}

func (i *Int64) Store(v int64) {
	atomic.StoreInt64(&i.v, v)
}

func (i *Int64) Add(delta int64) int64 {
	return atomic.AddInt64(&i.v, delta)
}

func (i *Int64) CompareAndSwap(old, newV int64) bool {
	return atomic.CompareAndSwapInt64(&i.v, old, newV)
}
