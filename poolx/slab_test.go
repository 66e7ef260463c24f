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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlabPool_AllocFree(t *testing.T) {
	s := newSlabPool(slabBlockSize, slabBlocksPerSlab)
	defer func() { _ = s.Close() }()

	buf, err := s.Alloc()
	require.NoError(t, err)
	assert.Equal(t, 0, len(buf))
	assert.Equal(t, slabBlockSize, cap(buf))

	buf = append(buf, 0xAA, 0xBB)
	require.NoError(t, s.Free(buf))

	// block is recycled through the free list
	again, err := s.Alloc()
	require.NoError(t, err)
	assert.Equal(t, slabBlockSize, cap(again))
	require.NoError(t, s.Free(again))
}

func TestSlabPool_GrowBeyondOneChunk(t *testing.T) {
	s := newSlabPool(slabBlockSize, slabBlocksPerSlab)
	defer func() { _ = s.Close() }()

	held := make([][]byte, 0, slabBlocksPerSlab+1)
	for i := 0; i < slabBlocksPerSlab+1; i++ {
		buf, err := s.Alloc()
		require.NoError(t, err)
		held = append(held, buf)
	}
	assert.Len(t, s.chunks, 2)

	for _, buf := range held {
		require.NoError(t, s.Free(buf))
	}
}

func TestSlabPool_RejectsForeignSlices(t *testing.T) {
	s := newSlabPool(slabBlockSize, slabBlocksPerSlab)
	defer func() { _ = s.Close() }()

	// wrong capacity
	assert.ErrorIs(t, s.Free(make([]byte, 0, 1024)), ErrBufferSize)

	// right capacity, wrong backing memory
	foreign := make([]byte, 0, slabBlockSize)
	assert.ErrorIs(t, s.Free(foreign), ErrBufferSize)
}

func TestSlabPool_Close(t *testing.T) {
	s := newSlabPool(slabBlockSize, slabBlocksPerSlab)

	buf, err := s.Alloc()
	require.NoError(t, err)
	require.NoError(t, s.Free(buf))

	require.NoError(t, s.Close())
	require.NoError(t, s.Close())

	_, err = s.Alloc()
	assert.ErrorIs(t, err, ErrPoolClosed)
	assert.ErrorIs(t, s.Free(make([]byte, 0, slabBlockSize)), ErrPoolClosed)
}
