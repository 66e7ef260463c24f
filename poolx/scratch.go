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

package poolx

import "sync"

// small scratch buffers come in power-of-two classes, 64B up to 1KB
const (
	minClassShift = 6
	maxClassShift = 10
	classCount    = maxClassShift - minClassShift + 1
	smallLimit    = 1 << maxClassShift
)

// classFor returns the index of the smallest class that fits n. Callers only
// pass n <= smallLimit.
func classFor(n int) int {
	for i := 0; i < classCount; i++ {
		if n <= 1<<(minClassShift+i) {
			return i
		}
	}
	return classCount - 1
}

func classCap(i int) int {
	return 1 << (minClassShift + i)
}

// ScratchPool serves short-lived scratch buffers for in-flight transforms.
// Requests up to 1KB come from per-class sync.Pools (the GC trims idle
// classes, no fixed retention cap needed), requests that fit one slab block
// come from the mmap slab, anything else is a plain allocation that Free
// silently drops.
type ScratchPool struct {
	classes [classCount]sync.Pool
	slab    *slabPool
}

func NewScratchPool() *ScratchPool {
	return &ScratchPool{
		slab: newSlabPool(slabBlockSize, slabBlocksPerSlab),
	}
}

// Alloc returns a zero-length buffer with capacity of at least size bytes.
func (p *ScratchPool) Alloc(size int) []byte {
	switch {
	case size <= smallLimit:
		i := classFor(size)
		if v, _ := p.classes[i].Get().(*[]byte); v != nil {
			return (*v)[:0]
		}
		return make([]byte, 0, classCap(i))
	case size <= slabBlockSize:
		buf, err := p.slab.Alloc()
		if err == nil {
			return buf
		}
		return make([]byte, 0, size)
	default:
		return make([]byte, 0, size)
	}
}

// Free hands a scratch buffer back to its tier. Buffers whose capacity matches
// no class and no slab block are left to the garbage collector.
func (p *ScratchPool) Free(buf []byte) {
	c := cap(buf)
	switch {
	case c == 0:
	case c <= smallLimit:
		i := classFor(c)
		if c != classCap(i) {
			// not carved by Alloc, recycling it would shrink the class
			return
		}
		b := buf[:0]
		p.classes[i].Put(&b)
	case c == slabBlockSize:
		_ = p.slab.Free(buf)
	}
}

// Close releases the mmap regions behind the slab tier.
func (p *ScratchPool) Close() error {
	return p.slab.Close()
}
