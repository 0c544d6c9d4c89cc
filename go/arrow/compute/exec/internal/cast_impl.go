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

package internal

import (
	"github.com/apache/arrow/go/v13/arrow"
	"github.com/apache/arrow/go/v13/arrow/bitutil"
	"github.com/ursa-labs/arrow/go/arrow/compute"
	"github.com/ursa-labs/arrow/go/arrow/compute/exec/functions"
)

func DoStaticCast[In, Out primitive](in []In, out []Out) {
	for i := range in {
		out[i] = Out(in[i])
	}
}

func CastPrimitive[In, Out primitive](input, output compute.Datum) {
	in := GetVals[In](input.(*compute.ArrayDatum).Value, 1)
	out := GetVals[Out](output.(*compute.ArrayDatum).Value, 1)
	DoStaticCast(in, out)
}

func CastPrimitiveMemCpy[T primitive](input, output compute.Datum) {
	in := GetVals[T](input.(*compute.ArrayDatum).Value, 1)
	out := GetVals[T](output.(*compute.ArrayDatum).Value, 1)
	copy(out, in)
}

func CastNumberMemCpy(typ arrow.Type, input, output compute.Datum) {
	switch typ {
	case arrow.INT8:
		CastPrimitiveMemCpy[int8](input, output)
	case arrow.INT16:
		CastPrimitiveMemCpy[int16](input, output)
	case arrow.INT32:
		CastPrimitiveMemCpy[int32](input, output)
	case arrow.INT64:
		CastPrimitiveMemCpy[int64](input, output)
	case arrow.UINT8:
		CastPrimitiveMemCpy[uint8](input, output)
	case arrow.UINT16:
		CastPrimitiveMemCpy[uint16](input, output)
	case arrow.UINT32:
		CastPrimitiveMemCpy[uint32](input, output)
	case arrow.UINT64:
		CastPrimitiveMemCpy[uint64](input, output)
	case arrow.FLOAT32:
		CastPrimitiveMemCpy[float32](input, output)
	case arrow.FLOAT64:
		CastPrimitiveMemCpy[float64](input, output)
	}
}

func CastNumberImpl[T primitive](outtype arrow.Type, input, output compute.Datum) {
	switch outtype {
	case arrow.INT8:
		CastPrimitive[T, int8](input, output)
	case arrow.INT16:
		CastPrimitive[T, int16](input, output)
	case arrow.INT32:
		CastPrimitive[T, int32](input, output)
	case arrow.INT64:
		CastPrimitive[T, int64](input, output)
	case arrow.UINT8:
		CastPrimitive[T, uint8](input, output)
	case arrow.UINT16:
		CastPrimitive[T, uint16](input, output)
	case arrow.UINT32:
		CastPrimitive[T, uint32](input, output)
	case arrow.UINT64:
		CastPrimitive[T, uint64](input, output)
	case arrow.FLOAT32:
		CastPrimitive[T, float32](input, output)
	case arrow.FLOAT64:
		CastPrimitive[T, float64](input, output)
	}
}

// CastNumberToNumberUnsafe converts every slot without any range or
// truncation checks.
func CastNumberToNumberUnsafe(intype, outtype arrow.Type, input, output compute.Datum) {
	if intype == outtype {
		CastNumberMemCpy(intype, input, output)
		return
	}

	switch intype {
	case arrow.INT8:
		CastNumberImpl[int8](outtype, input, output)
	case arrow.INT16:
		CastNumberImpl[int16](outtype, input, output)
	case arrow.INT32:
		CastNumberImpl[int32](outtype, input, output)
	case arrow.INT64:
		CastNumberImpl[int64](outtype, input, output)
	case arrow.UINT8:
		CastNumberImpl[uint8](outtype, input, output)
	case arrow.UINT16:
		CastNumberImpl[uint16](outtype, input, output)
	case arrow.UINT32:
		CastNumberImpl[uint32](outtype, input, output)
	case arrow.UINT64:
		CastNumberImpl[uint64](outtype, input, output)
	case arrow.FLOAT32:
		CastNumberImpl[float32](outtype, input, output)
	case arrow.FLOAT64:
		CastNumberImpl[float64](outtype, input, output)
	}
}

func ExecScalarUnaryBoolArg[OutType primitive](op func(val bool) OutType) functions.ArrayKernelExec {
	return func(ctx *functions.KernelCtx, batch *functions.ExecBatch, out compute.Datum) error {
		arg := NewBoolOperand(batch.Values[0])
		output := GetVals[OutType](out.(*compute.ArrayDatum).Value, 1)
		for i := range output {
			output[i] = op(arg.Value(i))
		}
		return nil
	}
}

// ExecNumberToBool writes true for every non-zero value.
func ExecNumberToBool[T primitive](ctx *functions.KernelCtx, batch *functions.ExecBatch, out compute.Datum) error {
	in := GetVals[T](batch.Values[0].(*compute.ArrayDatum).Value, 1)
	bits, offset := OutputBits(out)
	for i, v := range in {
		bitutil.SetBitTo(bits, offset+i, v != 0)
	}
	return nil
}
