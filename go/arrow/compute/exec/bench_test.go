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
	"fmt"
	"math"
	"math/rand"
	"testing"
	"unsafe"

	"github.com/apache/arrow/go/v13/arrow"
	"github.com/apache/arrow/go/v13/arrow/array"
	"github.com/apache/arrow/go/v13/arrow/memory"
	"github.com/ursa-labs/arrow/go/arrow/compute"
	"github.com/ursa-labs/arrow/go/arrow/compute/exec"
	"github.com/ursa-labs/arrow/go/arrow/compute/exec/functions"
	"golang.org/x/exp/constraints"
)

const seed = 0x94378165

func genArray[T constraints.Integer](mem memory.Allocator, dt arrow.DataType, size int, nullProb float64, min, max T) arrow.Array {
	dist := rand.New(rand.NewSource(seed))
	bldr := array.NewBuilder(mem, dt)
	defer bldr.Release()
	bldr.Reserve(size)

	for i := 0; i < size; i++ {
		if dist.Float64() < nullProb {
			bldr.AppendNull()
			continue
		}
		v := T(dist.Int63n(int64(max)-int64(min))) + min
		switch b := bldr.(type) {
		case *array.Int32Builder:
			b.UnsafeAppend(int32(v))
		case *array.Int64Builder:
			b.UnsafeAppend(int64(v))
		case *array.Uint32Builder:
			b.UnsafeAppend(uint32(v))
		}
	}
	return bldr.NewArray()
}

func benchCtx(b *testing.B, mem memory.Allocator, parallelism int) context.Context {
	return functions.SetExecCtx(context.Background(), exec.DefaultExecCtx(
		functions.WithAllocator(mem), functions.WithParallelism(parallelism), functions.WithChunkSize(64*1024)))
}

func benchmarkNumericCast[T constraints.Integer](b *testing.B, options compute.CastOptions, size int, nulls float64, fromType, toType arrow.DataType, min, max T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())

	arr := genArray(mem, fromType, size, nulls, min, max)
	in := compute.NewDatum(arr)
	b.Cleanup(func() {
		arr.Release()
		in.Release()
		mem.AssertSize(b, 0)
	})

	ctx := benchCtx(b, mem, 1)
	b.ResetTimer()
	b.SetBytes(int64(size) * int64(unsafe.Sizeof(T(0))))
	for i := 0; i < b.N; i++ {
		out, err := exec.CastTo(ctx, in, toType, options)
		if err != nil {
			b.Error(err)
			b.FailNow()
		}
		out.Release()
	}
}

func BenchmarkCastInt64ToInt32(b *testing.B) {
	for _, safe := range []bool{true, false} {
		for _, sz := range []int{1.5 * 1024 * 1024} {
			size := sz / 8
			for _, nullprob := range []float64{1, .9, .5, .1, 0} {
				b.Run(fmt.Sprintf("safe=%t;sz=%d;nulls=%f", safe, sz, nullprob), func(b *testing.B) {
					benchmarkNumericCast[int64](b, *compute.DefaultCastOptions(safe), size, nullprob, arrow.PrimitiveTypes.Int64, arrow.PrimitiveTypes.Int32, math.MinInt32, math.MaxInt32)
				})
			}
		}
	}
}

func BenchmarkCastUint32ToInt32(b *testing.B) {
	for _, safe := range []bool{true, false} {
		for _, sz := range []int{1.5 * 1024 * 1024} {
			size := sz / 4
			for _, nullprob := range []float64{1, .9, .5, .1, 0} {
				b.Run(fmt.Sprintf("safe=%t;sz=%d;nulls=%f", safe, sz, nullprob), func(b *testing.B) {
					benchmarkNumericCast[uint32](b, *compute.DefaultCastOptions(safe), size, nullprob, arrow.PrimitiveTypes.Uint32, arrow.PrimitiveTypes.Int32, 0, math.MaxInt32)
				})
			}
		}
	}
}

func BenchmarkAddInt64(b *testing.B) {
	const size = 1024 * 1024
	for _, parallelism := range []int{1, 4} {
		for _, nullprob := range []float64{.5, 0} {
			b.Run(fmt.Sprintf("parallelism=%d;nulls=%f", parallelism, nullprob), func(b *testing.B) {
				mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
				arr := genArray[int64](mem, arrow.PrimitiveTypes.Int64, size, nullprob, -1000, 1000)
				in := compute.NewDatum(arr)
				b.Cleanup(func() {
					arr.Release()
					in.Release()
					mem.AssertSize(b, 0)
				})

				ctx := benchCtx(b, mem, parallelism)
				b.ResetTimer()
				b.SetBytes(size * 8 * 2)
				for i := 0; i < b.N; i++ {
					out, err := exec.Add(ctx, in, in)
					if err != nil {
						b.Fatal(err)
					}
					out.Release()
				}
			})
		}
	}
}

func BenchmarkIsInInt32(b *testing.B) {
	const size = 1024 * 1024
	for _, setSize := range []int{8, 1024} {
		b.Run(fmt.Sprintf("set=%d", setSize), func(b *testing.B) {
			mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
			arr := genArray[int32](mem, arrow.PrimitiveTypes.Int32, size, .1, 0, 4096)
			set := genArray[int32](mem, arrow.PrimitiveTypes.Int32, setSize, 0, 0, 4096)
			in, vs := compute.NewDatum(arr), compute.NewDatum(set)
			b.Cleanup(func() {
				arr.Release()
				set.Release()
				in.Release()
				vs.Release()
				mem.AssertSize(b, 0)
			})

			ctx := benchCtx(b, mem, 1)
			b.ResetTimer()
			b.SetBytes(size * 4)
			for i := 0; i < b.N; i++ {
				out, err := exec.IsIn(ctx, in, vs)
				if err != nil {
					b.Fatal(err)
				}
				out.Release()
			}
		})
	}
}
