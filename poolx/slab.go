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
	"unsafe"

	"github.com/TimeWtr/ByteFlow/utils/atomicx"
	"golang.org/x/sys/unix"
)

const (
	slabBlockSize     = 32 * 1024
	slabBlocksPerSlab = 8
)

// slabPool hands out fixed-size scratch blocks carved from anonymous mmap
// regions. Blocks are returned to a free list on Free, the regions are only
// unmapped on Close. Ownership is tracked by block start address so Free can
// reject byte slices the pool never produced.
type slabPool struct {
	blockSize int
	chunkSize int
	mu        sync.Mutex
	free      [][]byte
	chunks    [][]byte
	owned     map[uintptr]struct{}
	closed    bool
	allocs    *atomicx.Int64
}

func newSlabPool(blockSize, blocksPerChunk int) *slabPool {
	return &slabPool{
		blockSize: blockSize,
		chunkSize: blockSize * blocksPerChunk,
		owned:     make(map[uintptr]struct{}),
		allocs:    atomicx.NewInt64(0),
	}
}

func (s *slabPool) grow() error {
	addr, err := unix.Mmap(-1, 0, s.chunkSize,
		unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return err
	}

	s.chunks = append(s.chunks, addr)
	blockCount := s.chunkSize / s.blockSize
	for i := 0; i < blockCount; i++ {
		block := addr[i*s.blockSize : (i+1)*s.blockSize : (i+1)*s.blockSize]
		s.free = append(s.free, block)
		s.owned[uintptr(unsafe.Pointer(&block[0]))] = struct{}{}
	}

	return nil
}

// Alloc returns one zero-length block with blockSize capacity.
func (s *slabPool) Alloc() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, ErrPoolClosed
	}

	if len(s.free) == 0 {
		if err := s.grow(); err != nil {
			return nil, err
		}
	}

	block := s.free[len(s.free)-1]
	s.free = s.free[:len(s.free)-1]
	s.allocs.Add(1)

	return block[:0], nil
}

// Free returns a block to the free list. Slices not carved from this pool are
// rejected with ErrBufferSize.
func (s *slabPool) Free(buf []byte) error {
	if cap(buf) != s.blockSize {
		return ErrBufferSize
	}

	full := buf[:s.blockSize]
	start := uintptr(unsafe.Pointer(&full[0]))

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrPoolClosed
	}

	if _, ok := s.owned[start]; !ok {
		return ErrBufferSize
	}

	s.free = append(s.free, full[:0])
	return nil
}

// Close unmaps every region. Outstanding blocks become invalid, the caller
// must free them all before closing.
func (s *slabPool) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	var firstErr error
	for _, c := range s.chunks {
		if err := unix.Munmap(c); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	s.chunks = nil
	s.free = nil
	s.owned = nil

	return firstErr
}
