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
	"strings"
	"testing"

	"github.com/apache/arrow/go/v13/arrow"
	"github.com/apache/arrow/go/v13/arrow/array"
	"github.com/apache/arrow/go/v13/arrow/memory"
	"github.com/apache/arrow/go/v13/arrow/scalar"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/ursa-labs/arrow/go/arrow/compute"
	"github.com/ursa-labs/arrow/go/arrow/compute/exec"
	"github.com/ursa-labs/arrow/go/arrow/compute/exec/functions"
)

type APISuite struct {
	suite.Suite

	mem *memory.CheckedAllocator
	ctx context.Context
}

func (s *APISuite) SetupTest() {
	s.mem = memory.NewCheckedAllocator(memory.NewGoAllocator())
	s.ctx = functions.SetExecCtx(context.Background(), exec.DefaultExecCtx(functions.WithAllocator(s.mem)))
}

func (s *APISuite) TearDownTest() {
	s.mem.AssertSize(s.T(), 0)
}

func (s *APISuite) array(dt arrow.DataType, data string) compute.Datum {
	arr, _, err := array.FromJSON(s.mem, dt, strings.NewReader(data), array.WithUseNumber())
	s.Require().NoError(err)
	defer arr.Release()
	return compute.NewDatum(arr)
}

// expect compares out with the JSON array expected, releasing out.
func (s *APISuite) expect(dt arrow.DataType, expected string, out compute.Datum, err error) {
	s.Require().NoError(err)
	defer out.Release()
	want := s.array(dt, expected)
	defer want.Release()
	s.Truef(want.Equals(out), "got %s, expected %s", out, expected)
}

func (s *APISuite) TestArithmetic() {
	i64 := arrow.PrimitiveTypes.Int64
	left, right := s.array(i64, `[1, null, 3]`), s.array(i64, `[10, 20, null]`)
	defer left.Release()
	defer right.Release()

	out, err := exec.Add(s.ctx, left, right)
	s.expect(i64, `[11, null, null]`, out, err)
	out, err = exec.Add(s.ctx, right, left)
	s.expect(i64, `[11, null, null]`, out, err)
	out, err = exec.Subtract(s.ctx, left, right)
	s.expect(i64, `[-9, null, null]`, out, err)
	out, err = exec.Multiply(s.ctx, left, right)
	s.expect(i64, `[10, null, null]`, out, err)
}

func (s *APISuite) TestLengthMismatch() {
	left := s.array(arrow.PrimitiveTypes.Int32, `[1, 2, 3]`)
	right := s.array(arrow.PrimitiveTypes.Int32, `[1, 2]`)
	defer left.Release()
	defer right.Release()
	_, err := exec.Add(s.ctx, left, right)
	s.ErrorIs(err, compute.ErrLengthMismatch)
}

func (s *APISuite) TestScalarNullBroadcast() {
	left := s.array(arrow.PrimitiveTypes.Int32, `[1, 2, 3]`)
	defer left.Release()
	null := compute.NewDatum(scalar.MakeNullScalar(arrow.PrimitiveTypes.Int32))
	out, err := exec.Add(s.ctx, left, null)
	s.expect(arrow.PrimitiveTypes.Int32, `[null, null, null]`, out, err)
}

func (s *APISuite) TestCompare() {
	left := s.array(arrow.PrimitiveTypes.Float32, `[1, 2, 3]`)
	right := s.array(arrow.PrimitiveTypes.Float32, `[3, 2, 1]`)
	defer left.Release()
	defer right.Release()

	out, err := exec.Compare(s.ctx, left, right, compute.CompareOptions{Op: compute.GreaterEqual})
	s.expect(arrow.FixedWidthTypes.Boolean, `[false, true, true]`, out, err)
}

func (s *APISuite) TestBoolean() {
	b := arrow.FixedWidthTypes.Boolean
	left, right := s.array(b, `[true, false, null]`), s.array(b, `[null, null, null]`)
	defer left.Release()
	defer right.Release()

	out, err := exec.KleeneAnd(s.ctx, left, right)
	s.expect(b, `[null, false, null]`, out, err)
	out, err = exec.KleeneOr(s.ctx, left, right)
	s.expect(b, `[true, null, null]`, out, err)
	out, err = exec.And(s.ctx, left, left)
	s.expect(b, `[true, false, null]`, out, err)
	out, err = exec.Or(s.ctx, left, right)
	s.expect(b, `[null, null, null]`, out, err)
	out, err = exec.Xor(s.ctx, left, left)
	s.expect(b, `[false, false, null]`, out, err)
	out, err = exec.Invert(s.ctx, left)
	s.expect(b, `[false, true, null]`, out, err)
}

func (s *APISuite) TestSetLookup() {
	i64 := arrow.PrimitiveTypes.Int64
	values := s.array(i64, `[99, 42, 3, null]`)
	defer values.Release()

	noNull := s.array(i64, `[3, 3, 99]`)
	defer noNull.Release()
	out, err := exec.Match(s.ctx, values, noNull)
	s.expect(arrow.PrimitiveTypes.Int32, `[1, null, 0, null]`, out, err)
	out, err = exec.IsIn(s.ctx, values, noNull)
	s.expect(arrow.FixedWidthTypes.Boolean, `[true, false, true, null]`, out, err)

	withNull := s.array(i64, `[3, 99, null]`)
	defer withNull.Release()
	out, err = exec.Match(s.ctx, values, withNull)
	s.expect(arrow.PrimitiveTypes.Int32, `[1, null, 0, 2]`, out, err)
	out, err = exec.IsIn(s.ctx, values, withNull)
	s.expect(arrow.FixedWidthTypes.Boolean, `[true, false, true, true]`, out, err)

	out, err = exec.IsInWithOptions(s.ctx, values, compute.SetLookupOptions{ValueSet: withNull, SkipNulls: true})
	s.expect(arrow.FixedWidthTypes.Boolean, `[true, false, true, null]`, out, err)
	out, err = exec.MatchWithOptions(s.ctx, values, compute.SetLookupOptions{ValueSet: withNull, SkipNulls: true})
	s.expect(arrow.PrimitiveTypes.Int32, `[1, null, 0, null]`, out, err)
}

func (s *APISuite) TestStrptime() {
	values := s.array(arrow.BinaryTypes.String, `["2020-02-29", null]`)
	defer values.Release()
	out, err := exec.Strptime(s.ctx, values, compute.StrptimeOptions{Format: "%Y-%m-%d", Unit: arrow.Second})
	s.expect(&arrow.TimestampType{Unit: arrow.Second}, `[1582934400, null]`, out, err)
}

func (s *APISuite) TestTimestamps() {
	values := s.array(arrow.BinaryTypes.String, `["2020-01-01", "2020-01-02", null]`)
	defer values.Release()
	parsed, err := exec.Strptime(s.ctx, values, compute.StrptimeOptions{Format: "%Y-%m-%d", Unit: arrow.Second})
	s.Require().NoError(err)
	defer parsed.Release()

	ts := &arrow.TimestampType{Unit: arrow.Second}
	other := s.array(ts, `[1577836800, 1, 2]`)
	defer other.Release()
	out, err := exec.Compare(s.ctx, parsed, other, compute.CompareOptions{Op: compute.Equal})
	s.expect(arrow.FixedWidthTypes.Boolean, `[true, false, null]`, out, err)

	out, err = exec.IsIn(s.ctx, parsed, other)
	s.expect(arrow.FixedWidthTypes.Boolean, `[true, false, null]`, out, err)

	dur := arrow.FixedWidthTypes.Duration_s
	left, right := s.array(dur, `[1, 2, null]`), s.array(dur, `[1, 3, 4]`)
	defer left.Release()
	defer right.Release()
	out, err = exec.Compare(s.ctx, left, right, compute.CompareOptions{Op: compute.Equal})
	s.expect(arrow.FixedWidthTypes.Boolean, `[true, false, null]`, out, err)
}

func (s *APISuite) TestUntypedNullArithmetic() {
	null := compute.NewDatum(scalar.MakeNullScalar(arrow.Null))
	defer null.Release()
	out, err := exec.Add(s.ctx, null, null)
	s.Require().NoError(err)
	defer out.Release()
	s.Equal(compute.KindScalar, out.Kind())
	s.Equal(arrow.NULL, out.(*compute.ScalarDatum).Type().ID())
	s.False(out.(*compute.ScalarDatum).Value.IsValid())
}

func (s *APISuite) TestCast() {
	in := s.array(arrow.PrimitiveTypes.Int32, `[1, null, 300]`)
	defer in.Release()

	out, err := exec.CastTo(s.ctx, in, arrow.PrimitiveTypes.Int64, *compute.DefaultCastOptions(true))
	s.expect(arrow.PrimitiveTypes.Int64, `[1, null, 300]`, out, err)

	_, err = exec.Cast(s.ctx, in, compute.SafeCastOptions(arrow.PrimitiveTypes.Int8))
	s.ErrorIs(err, compute.ErrInvalid)

	arr := in.(*compute.ArrayDatum).MakeArray()
	defer arr.Release()
	casted, err := exec.CastArray(s.ctx, arr, arrow.PrimitiveTypes.Float64, nil)
	s.Require().NoError(err)
	defer casted.Release()
	s.Equal(`[1 (null) 300]`, casted.String())
}

func (s *APISuite) TestCallFunction() {
	left := s.array(arrow.PrimitiveTypes.Int8, `[1, 2]`)
	defer left.Release()

	out, err := exec.CallFunction(s.ctx, "multiply", []compute.Datum{left, left}, nil)
	s.expect(arrow.PrimitiveTypes.Int8, `[1, 4]`, out, err)

	// options are accepted by value as well as by pointer
	out, err = exec.CallFunction(s.ctx, "compare", []compute.Datum{left, left}, compute.CompareOptions{Op: compute.LessEqual})
	s.expect(arrow.FixedWidthTypes.Boolean, `[true, true]`, out, err)

	_, err = exec.CallFunction(s.ctx, "no_such_function", []compute.Datum{left}, nil)
	s.ErrorIs(err, compute.ErrInvalid)

	_, err = exec.CallFunction(s.ctx, "is_in", []compute.Datum{left}, &compute.CompareOptions{})
	s.ErrorIs(err, compute.ErrInvalidOptions)
}

func (s *APISuite) TestContextWithoutRegistry() {
	ctx := functions.SetExecCtx(context.Background(), functions.NewExecCtx(functions.WithAllocator(s.mem)))
	left := s.array(arrow.PrimitiveTypes.Int8, `[1, 2]`)
	right := s.array(arrow.PrimitiveTypes.Int32, `[1, 2]`)
	defer left.Release()
	defer right.Release()

	out, err := exec.Add(ctx, left, right)
	s.expect(arrow.PrimitiveTypes.Int32, `[2, 4]`, out, err)
}

func TestAPI(t *testing.T) {
	suite.Run(t, new(APISuite))
}

func TestDefaultRegistry(t *testing.T) {
	reg := exec.DefaultRegistry()
	assert.True(t, reg.Frozen())
	assert.Same(t, reg, exec.DefaultRegistry())

	for _, name := range []string{"add", "subtract", "multiply", "compare", "invert", "and", "or", "xor",
		"and_kleene", "or_kleene", "kleene_and", "kleene_or", "is_in", "index_in", "match", "strptime", "cast"} {
		_, err := reg.GetFunction(name)
		assert.NoError(t, err, name)
	}

	fresh := exec.NewRegistry()
	assert.False(t, fresh.Frozen())
	assert.Equal(t, reg.GetFunctionNames(), fresh.GetFunctionNames())
}

func TestDefaultExecCtx(t *testing.T) {
	a, b := exec.DefaultExecCtx(), exec.DefaultExecCtx()
	assert.NotSame(t, a, b)
	assert.Same(t, exec.DefaultRegistry(), a.Registry)
	assert.Equal(t, 1, a.Parallelism)

	c := exec.DefaultExecCtx(functions.WithParallelism(4))
	assert.Equal(t, 4, c.Parallelism)
	assert.Equal(t, 1, a.Parallelism)
}

func TestNoExecCtx(t *testing.T) {
	arr, _, err := array.FromJSON(memory.DefaultAllocator, arrow.PrimitiveTypes.Uint8, strings.NewReader(`[250]`))
	require.NoError(t, err)
	defer arr.Release()
	in := compute.NewDatum(arr)
	defer in.Release()

	_, err = exec.Add(context.Background(), in, in)
	assert.ErrorIs(t, err, compute.ErrOverflow)
}
