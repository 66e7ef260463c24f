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

package errorx

import "errors"

var (
	// ErrBufferOverflow a read/extract/peek requested more bytes than currently
	// available. Recoverable while the stream is still Ready.
	ErrBufferOverflow = errors.New("buffer overflow: not enough data available")
	// ErrReaderExhausted the canonical error an external Reader returns once it
	// can produce no more chunks. Translated to ErrBufferOverflow at the buffer
	// boundary, never surfaced directly.
	ErrReaderExhausted = errors.New("external reader exhausted")
	// ErrStreamEnded the stream reached ReadOnly/EoF and the remaining data can
	// never satisfy the request. Terminal for the consumer.
	ErrStreamEnded = errors.New("stream ended: no more data will arrive")
	// ErrProducerFailed the producer marked the stream failed.
	ErrProducerFailed = errors.New("producer reported stream failure")
	// ErrBufferClosed an append was attempted after the producer declared
	// ReadOnly or Error.
	ErrBufferClosed = errors.New("buffer closed for writing")
	// ErrInvalidConfig dynamic limits failed validation.
	ErrInvalidConfig = errors.New("invalid limits config")
)
