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

package kernels

import (
	"github.com/apache/arrow/go/v13/arrow"
	"github.com/ursa-labs/arrow/go/arrow/compute"
	"github.com/ursa-labs/arrow/go/arrow/compute/exec/functions"
	"github.com/ursa-labs/arrow/go/arrow/compute/exec/internal"
	"golang.org/x/exp/constraints"
)

func addCommonNumberCasts[T constraints.Integer | constraints.Float](out arrow.DataType, fn *CastFunction) {
	outtype := functions.NewOutputType(out)
	addCommonCasts(outtype, fn)

	err := fn.AddNewKernel(arrow.FixedWidthTypes.Boolean, outtype, internal.ExecScalarUnaryBoolArg(func(val bool) T {
		if val {
			return 1
		}
		return 0
	}), functions.NullIntersection, functions.MemPrealloc)
	if err != nil {
		panic(err)
	}
}

func castFloatingToFloating(_ *functions.KernelCtx, batch *functions.ExecBatch, out compute.Datum) error {
	internal.CastNumberToNumberUnsafe(batch.Values[0].(compute.ArrayLikeDatum).Type().ID(), out.(compute.ArrayLikeDatum).Type().ID(), batch.Values[0], out)
	return nil
}

func castIntegerToInteger(ctx *functions.KernelCtx, batch *functions.ExecBatch, out compute.Datum) error {
	opts := ctx.State.(*compute.CastOptions)
	outType := out.(compute.ArrayLikeDatum).Type()
	if !opts.AllowIntOverflow {
		if err := internal.IntsCanFit(batch.Values[0], outType); err != nil {
			return err
		}
	}
	internal.CastNumberToNumberUnsafe(batch.Values[0].(compute.ArrayLikeDatum).Type().ID(), outType.ID(), batch.Values[0], out)
	return nil
}

func castIntegerToFloating(ctx *functions.KernelCtx, batch *functions.ExecBatch, out compute.Datum) error {
	opts := ctx.State.(*compute.CastOptions)
	outType := out.(compute.ArrayLikeDatum).Type().ID()
	if !opts.AllowFloatTruncate {
		if err := internal.CheckIntToFloatTrunc(batch.Values[0], outType); err != nil {
			return err
		}
	}
	internal.CastNumberToNumberUnsafe(batch.Values[0].(compute.ArrayLikeDatum).Type().ID(), outType, batch.Values[0], out)
	return nil
}

func castFloatingToInteger(ctx *functions.KernelCtx, batch *functions.ExecBatch, out compute.Datum) error {
	opts := ctx.State.(*compute.CastOptions)
	internal.CastNumberToNumberUnsafe(batch.Values[0].(compute.ArrayLikeDatum).Type().ID(), out.(compute.ArrayLikeDatum).Type().ID(), batch.Values[0], out)
	if !opts.AllowFloatTruncate {
		if err := internal.CheckFloatToIntTrunc(batch.Values[0], out); err != nil {
			return err
		}
	}
	return nil
}

func getCastToInt[T constraints.Integer](name string, outType arrow.DataType) *CastFunction {
	fn := NewCastFunction(name, outType.ID())
	outputType := functions.NewOutputType(outType)
	for _, in := range intTypes {
		if err := fn.AddNewKernel(in, outputType, castIntegerToInteger, functions.NullIntersection, functions.MemPrealloc); err != nil {
			panic(err)
		}
	}

	for _, in := range floatingTypes {
		if err := fn.AddNewKernel(in, outputType, castFloatingToInteger, functions.NullIntersection, functions.MemPrealloc); err != nil {
			panic(err)
		}
	}

	addCommonNumberCasts[T](outType, fn)
	return fn
}

func getCastToFloating[T constraints.Float](name string, outType arrow.DataType) *CastFunction {
	fn := NewCastFunction(name, outType.ID())
	outputType := functions.NewOutputType(outType)
	for _, in := range intTypes {
		if err := fn.AddNewKernel(in, outputType, castIntegerToFloating, functions.NullIntersection, functions.MemPrealloc); err != nil {
			panic(err)
		}
	}

	for _, in := range floatingTypes {
		if err := fn.AddNewKernel(in, outputType, castFloatingToFloating, functions.NullIntersection, functions.MemPrealloc); err != nil {
			panic(err)
		}
	}

	addCommonNumberCasts[T](outType, fn)
	return fn
}

func getCastToBoolean() *CastFunction {
	fn := NewCastFunction("cast_boolean", arrow.BOOL)
	outputType := functions.NewOutputType(arrow.FixedWidthTypes.Boolean)
	addCommonCasts(outputType, fn)

	add := func(in arrow.DataType, exec functions.ArrayKernelExec) {
		if err := fn.AddNewKernel(in, outputType, exec, functions.NullIntersection, functions.MemPrealloc); err != nil {
			panic(err)
		}
	}
	add(arrow.PrimitiveTypes.Int8, internal.ExecNumberToBool[int8])
	add(arrow.PrimitiveTypes.Uint8, internal.ExecNumberToBool[uint8])
	add(arrow.PrimitiveTypes.Int16, internal.ExecNumberToBool[int16])
	add(arrow.PrimitiveTypes.Uint16, internal.ExecNumberToBool[uint16])
	add(arrow.PrimitiveTypes.Int32, internal.ExecNumberToBool[int32])
	add(arrow.PrimitiveTypes.Uint32, internal.ExecNumberToBool[uint32])
	add(arrow.PrimitiveTypes.Int64, internal.ExecNumberToBool[int64])
	add(arrow.PrimitiveTypes.Uint64, internal.ExecNumberToBool[uint64])
	add(arrow.PrimitiveTypes.Float32, internal.ExecNumberToBool[float32])
	add(arrow.PrimitiveTypes.Float64, internal.ExecNumberToBool[float64])
	return fn
}

func getNumericCasts() []*CastFunction {
	return []*CastFunction{
		getCastToInt[int8]("cast_int8", arrow.PrimitiveTypes.Int8),
		getCastToInt[int16]("cast_int16", arrow.PrimitiveTypes.Int16),
		getCastToInt[int32]("cast_int32", arrow.PrimitiveTypes.Int32),
		getCastToInt[int64]("cast_int64", arrow.PrimitiveTypes.Int64),
		getCastToInt[uint8]("cast_uint8", arrow.PrimitiveTypes.Uint8),
		getCastToInt[uint16]("cast_uint16", arrow.PrimitiveTypes.Uint16),
		getCastToInt[uint32]("cast_uint32", arrow.PrimitiveTypes.Uint32),
		getCastToInt[uint64]("cast_uint64", arrow.PrimitiveTypes.Uint64),
		getCastToFloating[float32]("cast_float", arrow.PrimitiveTypes.Float32),
		getCastToFloating[float64]("cast_double", arrow.PrimitiveTypes.Float64),
	}
}
