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
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	bf "github.com/TimeWtr/ByteFlow"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrometheus_Observe(t *testing.T) {
	p := NewPrometheus()
	p.CollectSwitcher(true)

	p.ObserveAppend(3, 300, 1)
	p.ObserveExtract(2, 200, 0)
	p.ObserveRefill(1, 4096, 0)
	p.ObserveWaiters(bf.MetricsIncOp, 5)
	p.ObserveWaiters(bf.MetricsDecOp, 2)
	p.ObserveWaitLatency(16)
	p.ObserveStatus(float64(bf.ReadOnly))
	p.AllocInc(7)

	assert.Equal(t, float64(300), testutil.ToFloat64(p.appendSizes))
	assert.Equal(t, float64(1), testutil.ToFloat64(p.appendErrors))
	assert.Equal(t, float64(200), testutil.ToFloat64(p.extractSizes))
	assert.Equal(t, float64(4096), testutil.ToFloat64(p.refillSizes))
	assert.Equal(t, float64(3), testutil.ToFloat64(p.waiters))
	assert.Equal(t, float64(bf.ReadOnly), testutil.ToFloat64(p.status))
	assert.Equal(t, float64(7), testutil.ToFloat64(p.poolAlloc))
}

func TestPrometheus_DisabledDropsObservations(t *testing.T) {
	p := NewPrometheus()
	p.CollectSwitcher(false)

	p.ObserveAppend(3, 300, 1)
	p.ObserveWaiters(bf.MetricsIncOp, 5)
	p.AllocInc(7)

	assert.Equal(t, float64(0), testutil.ToFloat64(p.appendSizes))
	assert.Equal(t, float64(0), testutil.ToFloat64(p.waiters))
	assert.Equal(t, float64(0), testutil.ToFloat64(p.poolAlloc))
}

func TestPrometheus_Handler(t *testing.T) {
	p := NewPrometheus()
	p.CollectSwitcher(true)
	p.ObserveAppend(1, 42, 0)

	srv := httptest.NewServer(GetHandler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	buf := make([]byte, 1<<16)
	n, _ := resp.Body.Read(buf)
	body := string(buf[:n])
	assert.True(t, strings.Contains(body, "byteflow_append_bytes_total"))
}
