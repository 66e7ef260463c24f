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

package metrics

import (
	bf "github.com/TimeWtr/ByteFlow"
)

// Collector Indicator monitoring interface
type Collector interface {
	CollectSwitcher(enable bool)
	AppendMetrics
	ExtractMetrics
	RefillMetrics
	WaiterMetrics
	StatusMetrics
	PoolMetrics
}

// AppendMetrics producer-side append indicators
type AppendMetrics interface {
	// ObserveAppend Number of appends, appended bytes, number of errors
	ObserveAppend(counts, bytes, errors float64)
}

// ExtractMetrics consumer-side drain indicators
type ExtractMetrics interface {
	// ObserveExtract Number of extracts, extracted bytes, number of errors
	ObserveExtract(counts, bytes, errors float64)
}

// RefillMetrics external reader refill indicators
type RefillMetrics interface {
	// ObserveRefill Number of refills, refilled bytes, terminal failures
	ObserveRefill(counts, bytes, failures float64)
}

// WaiterMetrics blocked-consumer indicators
type WaiterMetrics interface {
	// ObserveWaiters increase/decrease of registered blocking waiters
	ObserveWaiters(op bf.OperationType, delta float64)
	// ObserveWaitLatency how long the last woken consumer waited
	ObserveWaitLatency(millis float64)
}

// StatusMetrics lifecycle status indicator
type StatusMetrics interface {
	ObserveStatus(status float64)
}

// PoolMetrics Cache pool metrics data
type PoolMetrics interface {
	// AllocInc Difference by which the allocated object count increases
	AllocInc(delta float64)
}
