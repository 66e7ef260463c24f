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

package core

import (
	"bytes"
	"sync"
	"testing"

	"github.com/TimeWtr/ByteFlow/errorx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShared_BasicOperations(t *testing.T) {
	s := NewShared()
	s.AppendString("hello")

	assert.Equal(t, 5, s.AvailableBytes())
	assert.True(t, s.HasEnoughData(5))

	got, err := s.Extract(5)
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), got)
	assert.True(t, s.Empty())

	_, err = s.Peek()
	assert.ErrorIs(t, err, errorx.ErrBufferOverflow)
}

func TestShared_NewSharedBuffer(t *testing.T) {
	b := NewBufferString("abcdef")
	_, err := b.Read(2)
	require.NoError(t, err)

	s := NewSharedBuffer(b)
	assert.Equal(t, 4, s.AvailableBytes())
	assert.Equal(t, 2, s.Position())

	// independent copy, mutating the source changes nothing
	b.AppendString("xxx")
	assert.Equal(t, 6, s.Len())
}

// a torn append would let a reader observe half of one producer write
func TestShared_ConcurrentReadersExclusiveWriter(t *testing.T) {
	const (
		writers    = 4
		readers    = 8
		iterations = 500
		chunkLen   = 64
	)

	s := NewShared()

	chunks := make([][]byte, writers)
	for i := range chunks {
		chunks[i] = bytes.Repeat([]byte{'a' + byte(i)}, chunkLen)
	}

	var wg sync.WaitGroup
	wg.Add(writers + readers)

	for i := 0; i < writers; i++ {
		go func(i int) {
			defer wg.Done()
			for j := 0; j < iterations; j++ {
				s.Append(chunks[i])
			}
		}(i)
	}

	for i := 0; i < readers; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < iterations; j++ {
				data := s.Data()
				for off := 0; off+chunkLen <= len(data); off += chunkLen {
					chunk := data[off : off+chunkLen]
					for _, v := range chunk {
						assert.Equal(t, chunk[0], v, "torn append observed")
					}
				}
			}
		}()
	}

	wg.Wait()
	assert.Equal(t, writers*iterations*chunkLen, s.Len())
}

// composite check-then-append sequences must be atomic as a unit
func TestShared_LockedComposite(t *testing.T) {
	const goroutines = 16

	s := NewShared()

	var wg sync.WaitGroup
	wg.Add(goroutines)
	for i := 0; i < goroutines; i++ {
		go func() {
			defer wg.Done()
			_ = s.Locked(func(b *Buffer) error {
				// check space, then append: no interleaving allowed between
				// the two steps
				if b.Len() < 8 {
					b.AppendString("x")
				}
				return nil
			})
		}()
	}
	wg.Wait()

	assert.Equal(t, 8, s.Len())
}

func TestShared_LockUnlockRaw(t *testing.T) {
	s := NewShared()

	s.Lock()
	s.Raw().AppendString("ab")
	s.Raw().AppendString("cd")
	s.Unlock()

	got, err := s.Extract(4)
	require.NoError(t, err)
	assert.Equal(t, []byte("abcd"), got)
}
