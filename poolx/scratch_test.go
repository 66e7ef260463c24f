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

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScratchPool_ClassRounding(t *testing.T) {
	p := NewScratchPool()
	defer func() { _ = p.Close() }()

	tests := []struct {
		size    int
		wantCap int
	}{
		{1, 64},
		{64, 64},
		{65, 128},
		{200, 256},
		{512, 512},
		{1000, 1024},
		{1024, 1024},
	}

	for _, tt := range tests {
		buf := p.Alloc(tt.size)
		assert.Equal(t, 0, len(buf))
		assert.Equal(t, tt.wantCap, cap(buf), "size %d", tt.size)
		p.Free(buf)
	}
}

func TestScratchPool_RecycledBuffersComeBackEmpty(t *testing.T) {
	p := NewScratchPool()
	defer func() { _ = p.Close() }()

	buf := p.Alloc(200)
	buf = append(buf, 1, 2, 3)
	p.Free(buf)

	again := p.Alloc(200)
	assert.Equal(t, 0, len(again))
	assert.Equal(t, 256, cap(again))
}

func TestScratchPool_ForeignCapsDropped(t *testing.T) {
	p := NewScratchPool()
	defer func() { _ = p.Close() }()

	// caps that match no class or slab block are left to the GC
	p.Free(make([]byte, 0, 100))
	p.Free(make([]byte, 0, 3000))
	p.Free(nil)
}

func TestScratchPool_TierRouting(t *testing.T) {
	p := NewScratchPool()
	defer func() { _ = p.Close() }()

	small := p.Alloc(512)
	assert.Equal(t, 0, len(small))
	assert.LessOrEqual(t, cap(small), smallLimit)
	p.Free(small)

	slab := p.Alloc(20 * 1024)
	assert.Equal(t, slabBlockSize, cap(slab))
	p.Free(slab)

	big := p.Alloc(128 * 1024)
	assert.GreaterOrEqual(t, cap(big), 128*1024)
	p.Free(big)
}

func TestScratchPool_AllocAfterSlabClose(t *testing.T) {
	p := NewScratchPool()
	require.NoError(t, p.Close())

	// the slab tier falls back to plain allocations once closed
	buf := p.Alloc(20 * 1024)
	assert.GreaterOrEqual(t, cap(buf), 20*1024)
	p.Free(buf)
}

func TestScratchPool_Concurrent(t *testing.T) {
	p := NewScratchPool()
	defer func() { _ = p.Close() }()

	sizes := []int{32, 700, 1024, 4096, slabBlockSize, 64 * 1024}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(seed int) {
			defer wg.Done()
			for j := 0; j < 500; j++ {
				size := sizes[(seed+j)%len(sizes)]
				buf := p.Alloc(size)
				buf = append(buf, byte(j))
				p.Free(buf)
			}
		}(i)
	}
	wg.Wait()
}
