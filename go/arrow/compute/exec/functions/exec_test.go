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

package functions

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/apache/arrow/go/v13/arrow"
	"github.com/apache/arrow/go/v13/arrow/array"
	"github.com/apache/arrow/go/v13/arrow/memory"
	"github.com/go-logr/logr/funcr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"github.com/ursa-labs/arrow/go/arrow/compute"
)

type testOptions struct{}

func (testOptions) TypeName() string { return "TestOptions" }

type otherOptions struct{}

func (otherOptions) TypeName() string { return "OtherOptions" }

func TestCheckOptions(t *testing.T) {
	tests := []struct {
		name string
		doc  FunctionDoc
		opts compute.FunctionOptions
		err  error
	}{
		{"no options", FunctionDoc{}, nil, nil},
		{"unexpected options", FunctionDoc{}, testOptions{}, compute.ErrInvalidOptions},
		{"optional missing", FunctionDoc{OptionsType: "TestOptions"}, nil, nil},
		{"required missing", FunctionDoc{OptionsType: "TestOptions", OptionsRequired: true}, nil, compute.ErrInvalidOptions},
		{"matching", FunctionDoc{OptionsType: "TestOptions", OptionsRequired: true}, testOptions{}, nil},
		{"wrong family", FunctionDoc{OptionsType: "TestOptions"}, otherOptions{}, compute.ErrInvalidOptions},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fn := NewScalarFunction("fn", Unary(), tt.doc, nil)
			err := checkOptions(&fn, tt.opts)
			if tt.err == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.err)
			}
		})
	}
}

func int32Datum(t *testing.T, mem memory.Allocator, data string) compute.Datum {
	arr, _, err := array.FromJSON(mem, arrow.PrimitiveTypes.Int32, strings.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	defer arr.Release()
	return compute.NewDatum(arr)
}

func int32Chunked(t *testing.T, mem memory.Allocator, chunks ...string) compute.Datum {
	arrs := make([]arrow.Array, len(chunks))
	for i, c := range chunks {
		arr, _, err := array.FromJSON(mem, arrow.PrimitiveTypes.Int32, strings.NewReader(c))
		if err != nil {
			t.Fatal(err)
		}
		defer arr.Release()
		arrs[i] = arr
	}
	chunked := arrow.NewChunked(arrow.PrimitiveTypes.Int32, arrs)
	defer chunked.Release()
	return compute.NewDatum(chunked)
}

func TestExecBatchIterator(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	tests := []struct {
		name      string
		args      func() []compute.Datum
		chunkSize int64
		lengths   []int64
	}{
		{"array", func() []compute.Datum {
			return []compute.Datum{int32Datum(t, mem, `[1, 2, 3, 4, 5]`)}
		}, 2, []int64{2, 2, 1}},
		{"misaligned chunks", func() []compute.Datum {
			return []compute.Datum{
				int32Chunked(t, mem, `[1, 2]`, `[3, 4, 5]`),
				int32Chunked(t, mem, `[1]`, `[2, 3, 4]`, `[5]`),
			}
		}, 100, []int64{1, 1, 2, 1}},
		{"empty chunks", func() []compute.Datum {
			return []compute.Datum{
				int32Chunked(t, mem, `[]`, `[1, 2, 3]`, `[]`, `[4]`),
				compute.NewDatum(int32(7)),
			}
		}, 2, []int64{2, 1, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := tt.args()
			defer releaseAll(args)

			itr, err := newExecBatchIterator(args, tt.chunkSize)
			assert.NoError(t, err)

			var lengths []int64
			batch := ExecBatch{}
			for itr.next(&batch) {
				lengths = append(lengths, batch.Length)
				for _, v := range batch.Values {
					if v.Kind() == compute.KindArray {
						assert.EqualValues(t, batch.Length, v.Len())
					}
				}
				batch.release()
			}
			assert.Equal(t, tt.lengths, lengths)
		})
	}
}

func TestCheckLengths(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	args := []compute.Datum{
		int32Datum(t, mem, `[1, 2]`),
		compute.NewDatum(int32(1)),
		int32Chunked(t, mem, `[1]`, `[2]`),
	}
	defer releaseAll(args)
	n, err := checkLengths(args)
	assert.NoError(t, err)
	assert.EqualValues(t, 2, n)

	bad := int32Datum(t, mem, `[1, 2, 3]`)
	defer bad.Release()
	_, err = checkLengths(append(args, bad))
	assert.ErrorIs(t, err, compute.ErrLengthMismatch)
}

// addOne adds one to every value of an int32 argument, failing on
// negative values.
func addOne(_ *KernelCtx, batch *ExecBatch, out compute.Datum) error {
	in := array.NewInt32Data(batch.Values[0].(*compute.ArrayDatum).Value)
	defer in.Release()
	outData := out.(*compute.ArrayDatum).Value
	output := arrow.Int32Traits.CastFromBytes(outData.Buffers()[1].Bytes())[outData.Offset():]
	for i, v := range in.Int32Values() {
		if in.IsValid(i) && v < 0 {
			return compute.ErrInvalid
		}
		output[i] = v + 1
	}
	return nil
}

type recordingMetrics struct {
	mu    sync.Mutex
	calls []string
	errs  []error
	rows  int64
}

func (r *recordingMetrics) ObserveExecution(fn string, length int64, _ time.Duration, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, fn)
	r.errs = append(r.errs, err)
	r.rows += length
}

type ExecuteSuite struct {
	suite.Suite

	mem     *memory.CheckedAllocator
	fn      *ScalarFunction
	metrics *recordingMetrics
	logs    *strings.Builder
	ctx     context.Context
}

func (es *ExecuteSuite) SetupSuite() {
	fn := NewScalarFunction("add_one", Unary(), FunctionDoc{Summary: "add one"}, nil)
	es.Require().NoError(fn.AddNewKernel([]InputType{NewExactInput(arrow.PrimitiveTypes.Int32, compute.ShapeAny)},
		NewOutputType(arrow.PrimitiveTypes.Int32), addOne, nil))
	es.fn = &fn
}

func (es *ExecuteSuite) SetupTest() {
	es.mem = memory.NewCheckedAllocator(memory.NewGoAllocator())
	es.metrics = &recordingMetrics{}
	es.logs = &strings.Builder{}
	var mu sync.Mutex
	logger := funcr.New(func(prefix, args string) {
		mu.Lock()
		defer mu.Unlock()
		es.logs.WriteString(args + "\n")
	}, funcr.Options{Verbosity: 1})
	es.ctx = SetExecCtx(context.Background(), NewExecCtx(WithAllocator(es.mem),
		WithMetrics(es.metrics), WithLogger(logger)))
}

func (es *ExecuteSuite) TearDownTest() {
	es.mem.AssertSize(es.T(), 0)
}

func (es *ExecuteSuite) withCtx(opts ...ExecOption) {
	opts = append([]ExecOption{WithAllocator(es.mem), WithMetrics(es.metrics)}, opts...)
	es.ctx = SetExecCtx(context.Background(), NewExecCtx(opts...))
}

func (es *ExecuteSuite) execute(args ...compute.Datum) (compute.Datum, error) {
	defer releaseAll(args)
	return ExecuteFunction(es.ctx, es.fn, args, nil)
}

func (es *ExecuteSuite) TestArray() {
	out, err := es.execute(int32Datum(es.T(), es.mem, `[1, null, 3]`))
	es.Require().NoError(err)
	defer out.Release()

	expected := int32Datum(es.T(), es.mem, `[2, null, 4]`)
	defer expected.Release()
	es.True(expected.Equals(out))
	es.EqualValues(1, out.(compute.ArrayLikeDatum).NullN())
}

func (es *ExecuteSuite) TestScalar() {
	out, err := es.execute(compute.NewDatum(int32(41)))
	es.Require().NoError(err)
	defer out.Release()

	es.Equal(compute.KindScalar, out.Kind())
	expected := compute.NewDatum(int32(42))
	es.True(expected.Equals(out))
}

func (es *ExecuteSuite) TestChunked() {
	out, err := es.execute(int32Chunked(es.T(), es.mem, `[1, 2]`, `[]`, `[3]`))
	es.Require().NoError(err)
	defer out.Release()

	es.Equal(compute.KindChunked, out.Kind())
	expected := int32Chunked(es.T(), es.mem, `[2, 3]`, `[4]`)
	defer expected.Release()
	es.True(expected.Equals(out))
	chunks := out.(*compute.ChunkedDatum).Chunks()
	es.Len(chunks, 2)
	for _, c := range chunks {
		c.Release()
	}
}

func (es *ExecuteSuite) TestEmpty() {
	out, err := es.execute(int32Datum(es.T(), es.mem, `[]`))
	es.Require().NoError(err)
	defer out.Release()
	es.EqualValues(0, out.Len())
}

func (es *ExecuteSuite) TestParallelOrdered() {
	es.withCtx(WithParallelism(8), WithChunkSize(100))

	const n = 50000
	bldr := array.NewInt32Builder(es.mem)
	defer bldr.Release()
	for i := 0; i < n; i++ {
		bldr.Append(int32(i))
	}
	in := bldr.NewArray()
	defer in.Release()

	out, err := es.execute(compute.NewDatum(in))
	es.Require().NoError(err)
	defer out.Release()

	arr := out.(*compute.ArrayDatum).MakeArray().(*array.Int32)
	defer arr.Release()
	es.Equal(n, arr.Len())
	for i, v := range arr.Int32Values() {
		if !es.EqualValues(i+1, v) {
			break
		}
	}
}

func (es *ExecuteSuite) TestFailureReleasesEverything() {
	for _, p := range []int{1, 4} {
		es.withCtx(WithParallelism(p), WithChunkSize(10))

		bldr := array.NewInt32Builder(es.mem)
		for i := 0; i < 10000; i++ {
			bldr.Append(int32(i))
		}
		bldr.Append(-1)
		in := bldr.NewArray()
		bldr.Release()

		out, err := es.execute(compute.NewDatum(in))
		in.Release()
		es.ErrorIs(err, compute.ErrInvalid)
		es.Nil(out)
	}
}

func (es *ExecuteSuite) TestLengthMismatch() {
	bin := NewScalarFunction("first", Binary(), FunctionDoc{}, nil)
	es.Require().NoError(bin.AddNewKernel([]InputType{
		NewExactInput(arrow.PrimitiveTypes.Int32, compute.ShapeAny),
		NewExactInput(arrow.PrimitiveTypes.Int32, compute.ShapeAny),
	}, NewOutputType(arrow.PrimitiveTypes.Int32), addOne, nil))

	args := []compute.Datum{int32Datum(es.T(), es.mem, `[1, 2]`), int32Datum(es.T(), es.mem, `[1]`)}
	defer releaseAll(args)
	_, err := ExecuteFunction(es.ctx, &bin, args, nil)
	es.ErrorIs(err, compute.ErrLengthMismatch)
}

func (es *ExecuteSuite) TestNoKernel() {
	_, err := es.execute(compute.NewDatum("str"))
	es.ErrorIs(err, compute.ErrType)
}

func (es *ExecuteSuite) TestRejectsOptions() {
	in := int32Datum(es.T(), es.mem, `[1]`)
	defer in.Release()
	_, err := ExecuteFunction(es.ctx, es.fn, []compute.Datum{in}, testOptions{})
	es.ErrorIs(err, compute.ErrInvalidOptions)
}

func (es *ExecuteSuite) TestMetricsAndLogging() {
	out, err := es.execute(int32Datum(es.T(), es.mem, `[1, 2, 3]`))
	es.Require().NoError(err)
	out.Release()

	_, err = es.execute(int32Datum(es.T(), es.mem, `[-5]`))
	es.Error(err)

	es.Equal([]string{"add_one", "add_one"}, es.metrics.calls)
	es.NoError(es.metrics.errs[0])
	es.ErrorIs(es.metrics.errs[1], compute.ErrInvalid)
	es.EqualValues(4, es.metrics.rows)

	logs := es.logs.String()
	es.Contains(logs, `"executing function"`)
	es.Contains(logs, `"function execution failed"`)
	es.Contains(logs, `"function"="add_one"`)
}

func (es *ExecuteSuite) TestDefaultContext() {
	in := compute.NewDatum(int32(1))
	defer in.Release()
	out, err := ExecuteFunction(context.Background(), es.fn, []compute.Datum{in}, nil)
	es.Require().NoError(err)
	defer out.Release()
	es.True(compute.NewDatum(int32(2)).Equals(out))
}

func (es *ExecuteSuite) TestCancelled() {
	ctx, cancel := context.WithCancel(es.ctx)
	cancel()
	in := int32Datum(es.T(), es.mem, `[1]`)
	defer in.Release()
	_, err := ExecuteFunction(ctx, es.fn, []compute.Datum{in}, nil)
	es.ErrorIs(err, context.Canceled)
}

func TestExecute(t *testing.T) {
	suite.Run(t, new(ExecuteSuite))
}
