// Licensed to the Apache Software Foundation (ASF) under one
// or more contributor license agreements.  See the NOTICE file
// distributed with this work for additional information
// regarding copyright ownership.  The ASF licenses this file
// to you under the Apache License, Version 2.0 (the
// "License"); you may not use this file except in compliance
// with the License.  You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package exec_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/apache/arrow/go/v13/arrow"
	"github.com/apache/arrow/go/v13/arrow/array"
	"github.com/apache/arrow/go/v13/arrow/memory"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ursa-labs/arrow/go/arrow/compute"
	"github.com/ursa-labs/arrow/go/arrow/compute/exec"
	"github.com/ursa-labs/arrow/go/arrow/compute/exec/functions"
)

func TestPrometheusCollectorObserve(t *testing.T) {
	c := exec.NewPrometheusCollector()
	c.ObserveExecution("add", 10, time.Millisecond, nil)
	c.ObserveExecution("add", 5, time.Millisecond, nil)
	c.ObserveExecution("add", 3, time.Millisecond, errors.New("boom"))

	expected := `
# HELP compute_function_calls_total Number of compute function calls by outcome.
# TYPE compute_function_calls_total counter
compute_function_calls_total{function="add",status="error"} 1
compute_function_calls_total{function="add",status="ok"} 2
# HELP compute_function_rows_total Number of input rows processed by compute functions.
# TYPE compute_function_rows_total counter
compute_function_rows_total{function="add"} 15
`
	assert.NoError(t, testutil.CollectAndCompare(c, strings.NewReader(expected),
		"compute_function_calls_total", "compute_function_rows_total"))
	assert.Equal(t, 1, testutil.CollectAndCount(c, "compute_function_duration_seconds"))
}

func TestPrometheusCollectorExecution(t *testing.T) {
	c := exec.NewPrometheusCollector()
	reg := prometheus.NewPedanticRegistry()
	require.NoError(t, reg.Register(c))

	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)
	ctx := functions.SetExecCtx(context.Background(),
		exec.DefaultExecCtx(functions.WithAllocator(mem), functions.WithMetrics(c)))

	arr, _, err := array.FromJSON(mem, arrow.FixedWidthTypes.Boolean, strings.NewReader(`[true, false, null]`))
	require.NoError(t, err)
	defer arr.Release()
	in := compute.NewDatum(arr)
	defer in.Release()

	out, err := exec.Invert(ctx, in)
	require.NoError(t, err)
	out.Release()

	_, err = exec.Add(ctx, in, in)
	assert.ErrorIs(t, err, compute.ErrType)

	assert.Equal(t, 1.0, testutil.ToFloat64(c.CallsCounter("invert", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.CallsCounter("add", "error")))
	assert.Equal(t, 3.0, testutil.ToFloat64(c.RowsCounter("invert")))

	problems, err := testutil.GatherAndLint(reg)
	require.NoError(t, err)
	assert.Empty(t, problems)
}
