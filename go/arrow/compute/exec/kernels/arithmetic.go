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

type arithmeticOp struct {
	name    string
	doc     functions.FunctionDoc
	checked func(arrow.Type) functions.ArrayKernelExec
	float   func(arrow.Type) functions.ArrayKernelExec
}

func binaryDoc(summary, desc string) functions.FunctionDoc {
	return functions.FunctionDoc{Summary: summary, Desc: desc, ArgNames: []string{"x", "y"}}
}

// integer arithmetic is checked: results that don't fit the output type
// fail with compute.ErrOverflow rather than wrapping
func checkedExec[T constraints.Integer](name string, op func(a, b T) (T, bool)) functions.ArrayKernelExec {
	return internal.ExecScalarBinaryChecked(name, op)
}

func arithmeticExecs() []arithmeticOp {
	return []arithmeticOp{
		{
			name: "add",
			doc: binaryDoc("Add the arguments element-wise",
				"Results will fail with an overflow error if the value is outside\nthe range of the output type. Null values return null."),
			checked: func(id arrow.Type) functions.ArrayKernelExec {
				switch id {
				case arrow.INT8:
					return checkedExec("add", internal.AddChecked[int8])
				case arrow.UINT8:
					return checkedExec("add", internal.AddChecked[uint8])
				case arrow.INT16:
					return checkedExec("add", internal.AddChecked[int16])
				case arrow.UINT16:
					return checkedExec("add", internal.AddChecked[uint16])
				case arrow.INT32:
					return checkedExec("add", internal.AddChecked[int32])
				case arrow.UINT32:
					return checkedExec("add", internal.AddChecked[uint32])
				case arrow.INT64:
					return checkedExec("add", internal.AddChecked[int64])
				default:
					return checkedExec("add", internal.AddChecked[uint64])
				}
			},
			float: func(id arrow.Type) functions.ArrayKernelExec {
				if id == arrow.FLOAT32 {
					return internal.ExecScalarBinary[float32, float32, float32](internal.Add[float32])
				}
				return internal.ExecScalarBinary[float64, float64, float64](internal.Add[float64])
			},
		},
		{
			name: "subtract",
			doc: binaryDoc("Subtract the arguments element-wise",
				"Results will fail with an overflow error if the value is outside\nthe range of the output type. Null values return null."),
			checked: func(id arrow.Type) functions.ArrayKernelExec {
				switch id {
				case arrow.INT8:
					return checkedExec("subtract", internal.SubtractChecked[int8])
				case arrow.UINT8:
					return checkedExec("subtract", internal.SubtractChecked[uint8])
				case arrow.INT16:
					return checkedExec("subtract", internal.SubtractChecked[int16])
				case arrow.UINT16:
					return checkedExec("subtract", internal.SubtractChecked[uint16])
				case arrow.INT32:
					return checkedExec("subtract", internal.SubtractChecked[int32])
				case arrow.UINT32:
					return checkedExec("subtract", internal.SubtractChecked[uint32])
				case arrow.INT64:
					return checkedExec("subtract", internal.SubtractChecked[int64])
				default:
					return checkedExec("subtract", internal.SubtractChecked[uint64])
				}
			},
			float: func(id arrow.Type) functions.ArrayKernelExec {
				if id == arrow.FLOAT32 {
					return internal.ExecScalarBinary[float32, float32, float32](internal.Subtract[float32])
				}
				return internal.ExecScalarBinary[float64, float64, float64](internal.Subtract[float64])
			},
		},
		{
			name: "multiply",
			doc: binaryDoc("Multiply the arguments element-wise",
				"Results will fail with an overflow error if the value is outside\nthe range of the output type. Null values return null."),
			checked: func(id arrow.Type) functions.ArrayKernelExec {
				switch id {
				case arrow.INT8:
					return checkedExec("multiply", internal.MultiplyChecked[int8])
				case arrow.UINT8:
					return checkedExec("multiply", internal.MultiplyChecked[uint8])
				case arrow.INT16:
					return checkedExec("multiply", internal.MultiplyChecked[int16])
				case arrow.UINT16:
					return checkedExec("multiply", internal.MultiplyChecked[uint16])
				case arrow.INT32:
					return checkedExec("multiply", internal.MultiplyChecked[int32])
				case arrow.UINT32:
					return checkedExec("multiply", internal.MultiplyChecked[uint32])
				case arrow.INT64:
					return checkedExec("multiply", internal.MultiplyChecked[int64])
				default:
					return checkedExec("multiply", internal.MultiplyChecked[uint64])
				}
			},
			float: func(id arrow.Type) functions.ArrayKernelExec {
				if id == arrow.FLOAT32 {
					return internal.ExecScalarBinary[float32, float32, float32](internal.Multiply[float32])
				}
				return internal.ExecScalarBinary[float64, float64, float64](internal.Multiply[float64])
			},
		},
	}
}

// execNullOutput leaves the output alone: the executor has already
// made every slot of a null typed output null.
func execNullOutput(*functions.KernelCtx, *functions.ExecBatch, compute.Datum) error { return nil }

// RegisterScalarArithmetic adds add, subtract and multiply. Arguments
// of differing numeric types are promoted with CommonNumeric first, and
// two untyped nulls give an untyped null.
func RegisterScalarArithmetic(reg *functions.FunctionRegistry) {
	for _, op := range arithmeticExecs() {
		fn := functions.NewScalarFunction(op.name, functions.Binary(), op.doc, nil)
		fn.SetImplicitCast(castToCommonNumeric)
		for _, dt := range intTypes {
			if err := fn.AddNewKernel(binaryInputs(dt), functions.NewOutputType(dt), op.checked(dt.ID()), nil); err != nil {
				panic(err)
			}
		}
		for _, dt := range floatingTypes {
			if err := fn.AddNewKernel(binaryInputs(dt), functions.NewOutputType(dt), op.float(dt.ID()), nil); err != nil {
				panic(err)
			}
		}
		nulls := functions.NewScalarKernel(binaryInputs(arrow.Null), functions.NewOutputType(arrow.Null), execNullOutput, nil)
		nulls.MemAlloc = functions.MemNoPrealloc
		if err := fn.AddKernel(nulls); err != nil {
			panic(err)
		}
		mustAdd(reg, &fn)
	}
}
