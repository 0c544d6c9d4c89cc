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
	"fmt"

	"github.com/apache/arrow/go/v13/arrow"
	"github.com/ursa-labs/arrow/go/arrow/compute"
	"github.com/ursa-labs/arrow/go/arrow/compute/exec/functions"
	"github.com/ursa-labs/arrow/go/arrow/compute/exec/internal"
)

var compareDoc = functions.FunctionDoc{
	Summary: "Compare values element-wise",
	Desc: "The operator is selected with CompareOptions. Floating point\n" +
		"comparisons follow IEEE 754, so NaN is only ever not_equal.\nNull values return null.",
	ArgNames:        []string{"x", "y"},
	OptionsType:     "CompareOptions",
	OptionsRequired: true,
}

func primitiveCompareExec(id arrow.Type) functions.ArrayKernelExec {
	switch id {
	case arrow.INT8:
		return internal.ExecCompare[int8]
	case arrow.UINT8:
		return internal.ExecCompare[uint8]
	case arrow.INT16:
		return internal.ExecCompare[int16]
	case arrow.UINT16:
		return internal.ExecCompare[uint16]
	case arrow.INT32:
		return internal.ExecCompare[int32]
	case arrow.UINT32:
		return internal.ExecCompare[uint32]
	case arrow.INT64:
		return internal.ExecCompare[int64]
	case arrow.UINT64:
		return internal.ExecCompare[uint64]
	case arrow.FLOAT32:
		return internal.ExecCompare[float32]
	case arrow.FLOAT64:
		return internal.ExecCompare[float64]
	}
	return nil
}

func compareInit(_ *functions.KernelCtx, args functions.KernelInitArgs) (functions.KernelState, error) {
	opts, err := optionsOf[compute.CompareOptions](args.Options)
	if err != nil {
		return nil, err
	}
	if !opts.Op.IsValid() {
		return nil, fmt.Errorf("%w: invalid compare operator %s", compute.ErrInvalidOptions, opts.Op)
	}
	return opts, nil
}

func temporalCompareInit(ctx *functions.KernelCtx, args functions.KernelInitArgs) (functions.KernelState, error) {
	if err := sameTypeInputs("compare", args.Inputs); err != nil {
		return nil, err
	}
	return compareInit(ctx, args)
}

// RegisterScalarComparison adds compare, which works on numeric,
// boolean, temporal and base binary types.
func RegisterScalarComparison(reg *functions.FunctionRegistry) {
	fn := functions.NewScalarFunction("compare", functions.Binary(), compareDoc, nil)
	fn.SetImplicitCast(castNullToOther)
	boolOut := functions.NewOutputType(arrow.FixedWidthTypes.Boolean)

	add := func(dt arrow.DataType, exec functions.ArrayKernelExec) {
		if err := fn.AddNewKernel(binaryInputs(dt), boolOut, exec, compareInit); err != nil {
			panic(err)
		}
	}

	for _, dt := range numericTypes {
		add(dt, primitiveCompareExec(dt.ID()))
	}
	for _, id := range temporalIDs {
		if err := fn.AddNewKernel(idInputs(id, 2), boolOut, primitiveCompareExec(storageID(id)), temporalCompareInit); err != nil {
			panic(err)
		}
	}
	add(arrow.FixedWidthTypes.Boolean, internal.ExecCompareBool)
	for _, dt := range baseBinaryTypes {
		add(dt, internal.ExecCompareBinary)
	}
	mustAdd(reg, &fn)
}
