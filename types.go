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

package byteflow

// Status is the lifecycle marker of a stream buffer. The order matters:
// a buffer status only moves forward, transitions back to a lower status
// are rejected.
type Status int32

const (
	// Ready the producer may still append, consumers may block waiting for data.
	Ready Status = iota
	// ReadOnly the producer declared no further appends, remaining bytes are
	// still drainable.
	ReadOnly
	// EoF no data remains and none will arrive, terminal success state.
	EoF
	// Error the producer signaled failure, terminal failure state.
	Error
)

func (s Status) String() string {
	switch s {
	case Ready:
		return "Ready"
	case ReadOnly:
		return "ReadOnly"
	case EoF:
		return "EoF"
	case Error:
		return "Error"
	default:
		return "Unknown"
	}
}

// Terminal reports whether no transition leaves the status.
func (s Status) Terminal() bool {
	return s >= EoF
}

func (s Status) Validate() bool {
	return s >= Ready && s <= Error
}

// Position controls how Seek and Discard interpret their offset.
type Position uint8

const (
	// Begin the offset counts from the beginning of the buffer.
	Begin Position = 1 << iota
	// End the offset counts from the end of the buffer.
	End
	// Relative the offset counts from the current read position.
	Relative
	// Absolute the offset is an absolute position.
	Absolute
)

func (p Position) Validate() bool {
	switch p {
	case Begin, End, Relative, Absolute:
		return true
	default:
		return false
	}
}

// CollectorType the type of metrics collector attached to a buffer.
type CollectorType int

const (
	PrometheusCollector CollectorType = iota + 1
	OpenTelemetryCollector
)

func (c CollectorType) Validate() bool {
	return c == PrometheusCollector || c == OpenTelemetryCollector
}

// OperationType the direction of a gauge update.
type OperationType int

const (
	MetricsIncOp OperationType = iota + 1
	MetricsDecOp
)
