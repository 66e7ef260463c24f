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

package config

import (
	"sync"

	"github.com/TimeWtr/ByteFlow/errorx"
)

const (
	DefaultMinChunkSize = 512
	DefaultMaxWaiters   = 1024
	DefaultNotifyBatch  = 64
)

// Limits the tunable limits for a buffer instance.
type Limits struct {
	// MinChunkSize growth hint, the buffer grows by at least this many bytes.
	MinChunkSize int
	// MaxWaiters the maximum number of registered blocking waiters.
	MaxWaiters int
	// NotifyBatch how many waiters one notification round wakes at most.
	NotifyBatch int
}

func (l Limits) validate() error {
	if l.MinChunkSize <= 0 || l.MaxWaiters <= 0 || l.NotifyBatch <= 0 {
		return errorx.ErrInvalidConfig
	}

	if l.NotifyBatch > l.MaxWaiters {
		return errorx.ErrInvalidConfig
	}

	return nil
}

// DefaultLimits returns the limits used when no dynamic config is attached.
func DefaultLimits() Limits {
	return Limits{
		MinChunkSize: DefaultMinChunkSize,
		MaxWaiters:   DefaultMaxWaiters,
		NotifyBatch:  DefaultNotifyBatch,
	}
}

// DynamicLimits holds hot-reloadable limits. Holders call Register to obtain
// a notification channel and re-read the config with GetConfig after each
// notification.
type DynamicLimits struct {
	mu   sync.RWMutex
	cfg  Limits
	subs []chan struct{}
}

func NewDynamicLimits(cfg Limits) (*DynamicLimits, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &DynamicLimits{cfg: cfg}, nil
}

// GetConfig returns a copy of the current limits.
func (d *DynamicLimits) GetConfig() Limits {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.cfg
}

// Register subscribes to config updates. The channel carries one pending
// notification at most, repeated updates collapse.
func (d *DynamicLimits) Register() <-chan struct{} {
	d.mu.Lock()
	defer d.mu.Unlock()

	ch := make(chan struct{}, 1)
	d.subs = append(d.subs, ch)
	return ch
}

// Update replaces the limits and notifies every subscriber.
func (d *DynamicLimits) Update(cfg Limits) error {
	if err := cfg.validate(); err != nil {
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	d.cfg = cfg
	for _, ch := range d.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}

	return nil
}
