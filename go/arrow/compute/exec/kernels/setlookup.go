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

var (
	isInDoc = functions.FunctionDoc{
		Summary: "Find each element in a set of values",
		Desc: "For each element in `values`, return true if it is found in the\n" +
			"value_set of SetLookupOptions, false otherwise. A null element is\n" +
			"true if value_set holds a null and null otherwise.",
		ArgNames:        []string{"values"},
		OptionsType:     "SetLookupOptions",
		OptionsRequired: true,
	}
	indexInDoc = functions.FunctionDoc{
		Summary: "Return index of each element in a set of values",
		Desc: "For each element in `values`, return its index among the distinct\n" +
			"values of value_set, in order of first occurrence, or null if it\n" +
			"is not found. A null element matches a null in value_set.",
		ArgNames:        []string{"values"},
		OptionsType:     "SetLookupOptions",
		OptionsRequired: true,
	}
)

func identity[T comparable](v T) T { return v }

func newValueSet(id arrow.Type, valueSet compute.Datum, skipNulls bool) (internal.ValueSet, error) {
	switch id {
	case arrow.INT8:
		return internal.NewPrimitiveValueSet(valueSet, skipNulls, identity[int8])
	case arrow.UINT8:
		return internal.NewPrimitiveValueSet(valueSet, skipNulls, identity[uint8])
	case arrow.INT16:
		return internal.NewPrimitiveValueSet(valueSet, skipNulls, identity[int16])
	case arrow.UINT16:
		return internal.NewPrimitiveValueSet(valueSet, skipNulls, identity[uint16])
	case arrow.INT32:
		return internal.NewPrimitiveValueSet(valueSet, skipNulls, identity[int32])
	case arrow.UINT32:
		return internal.NewPrimitiveValueSet(valueSet, skipNulls, identity[uint32])
	case arrow.INT64:
		return internal.NewPrimitiveValueSet(valueSet, skipNulls, identity[int64])
	case arrow.UINT64:
		return internal.NewPrimitiveValueSet(valueSet, skipNulls, identity[uint64])
	case arrow.FLOAT32:
		return internal.NewPrimitiveValueSet(valueSet, skipNulls, internal.NormalizeFloat32)
	case arrow.FLOAT64:
		return internal.NewPrimitiveValueSet(valueSet, skipNulls, internal.NormalizeFloat64)
	case arrow.BOOL:
		return internal.NewBoolValueSet(valueSet, skipNulls)
	case arrow.STRING, arrow.BINARY:
		return internal.NewBinaryValueSet(valueSet, skipNulls)
	}
	return nil, fmt.Errorf("%w: set lookup of type %s", compute.ErrNotImplemented, id)
}

// initSetLookup builds the memo table of the value set once per call.
// The finished table is only read afterwards, so parallel batches share
// it.
func initSetLookup(ctx *functions.KernelCtx, args functions.KernelInitArgs) (functions.KernelState, error) {
	opts, err := optionsOf[compute.SetLookupOptions](args.Options)
	if err != nil {
		return nil, err
	}
	if opts.ValueSet == nil {
		return nil, fmt.Errorf("%w: SetLookupOptions requires a value_set", compute.ErrInvalidOptions)
	}

	vs, ok := opts.ValueSet.(compute.ArrayLikeDatum)
	if !ok || vs.Kind() == compute.KindScalar {
		return nil, fmt.Errorf("%w: value_set should be an array or chunked array, got %s",
			compute.ErrInvalidOptions, opts.ValueSet)
	}

	inType := args.Inputs[0].Type
	if !arrow.TypeEqual(vs.Type(), inType) {
		return nil, fmt.Errorf("%w: array type (%s) doesn't match type of values set (%s)",
			compute.ErrType, inType, vs.Type())
	}

	ctx.Ctx.Logger.V(1).Info("building set lookup table", "type", inType.String(),
		"value_set_length", vs.Len(), "skip_nulls", opts.SkipNulls)
	return newValueSet(physicalID(inType), vs, opts.SkipNulls)
}

func setLookupInputs() [][]functions.InputType {
	out := make([][]functions.InputType, 0)
	for _, dt := range numericTypes {
		out = append(out, unaryInput(dt))
	}
	for _, id := range temporalIDs {
		out = append(out, idInputs(id, 1))
	}
	out = append(out, unaryInput(arrow.FixedWidthTypes.Boolean))
	for _, dt := range baseBinaryTypes {
		out = append(out, unaryInput(dt))
	}
	return out
}

// RegisterScalarSetLookup adds is_in and index_in, with match as an
// alias of index_in.
func RegisterScalarSetLookup(reg *functions.FunctionRegistry) {
	isIn := functions.NewScalarFunction("is_in", functions.Unary(), isInDoc, nil)
	indexIn := functions.NewScalarFunction("index_in", functions.Unary(), indexInDoc, nil)

	for _, in := range setLookupInputs() {
		k := functions.NewScalarKernel(in, functions.NewOutputType(arrow.FixedWidthTypes.Boolean), internal.ExecIsIn, initSetLookup)
		k.NullHandling = functions.NullComputedPrealloc
		if err := isIn.AddKernel(k); err != nil {
			panic(err)
		}

		k = functions.NewScalarKernel(in, functions.NewOutputType(arrow.PrimitiveTypes.Int32), internal.ExecIndexIn, initSetLookup)
		k.NullHandling = functions.NullComputedPrealloc
		if err := indexIn.AddKernel(k); err != nil {
			panic(err)
		}
	}

	mustAdd(reg, &isIn)
	mustAdd(reg, &indexIn)
	mustAlias(reg, "match", "index_in")
}
