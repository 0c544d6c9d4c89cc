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
	"fmt"

	"github.com/ursa-labs/arrow/go/arrow/compute"
	"github.com/ursa-labs/arrow/go/arrow/compute/exec/functions"
	"golang.org/x/exp/constraints"
)

func Add[T primitive](a, b T) T      { return a + b }
func Subtract[T primitive](a, b T) T { return a - b }
func Multiply[T primitive](a, b T) T { return a * b }

// AddChecked returns a+b and false if the result overflowed T.
func AddChecked[T constraints.Integer](a, b T) (T, bool) {
	c := a + b
	if isSigned[T]() {
		return c, !((b > 0 && c < a) || (b < 0 && c > a))
	}
	return c, c >= a
}

func SubtractChecked[T constraints.Integer](a, b T) (T, bool) {
	c := a - b
	if isSigned[T]() {
		return c, !((b > 0 && c > a) || (b < 0 && c < a))
	}
	return c, a >= b
}

func MultiplyChecked[T constraints.Integer](a, b T) (T, bool) {
	if a == 0 || b == 0 {
		return 0, true
	}
	if isSigned[T]() {
		// MinOf * -1 is the one case the division check can't see
		minVal := MinOf[T]()
		if (a == ^T(0) && b == minVal) || (b == ^T(0) && a == minVal) {
			return a * b, false
		}
	}
	c := a * b
	return c, c/b == a
}

// ExecScalarBinary applies op elementwise, broadcasting a scalar
// operand against the other one. Null slots are computed as well, their
// value is irrelevant.
func ExecScalarBinary[OutT, Arg0T, Arg1T primitive](op func(Arg0T, Arg1T) OutT) functions.ArrayKernelExec {
	return func(ctx *functions.KernelCtx, batch *functions.ExecBatch, out compute.Datum) error {
		left := NewOperand[Arg0T](batch.Values[0])
		right := NewOperand[Arg1T](batch.Values[1])
		output := GetVals[OutT](out.(*compute.ArrayDatum).Value, 1)
		for i := range output {
			output[i] = op(left.At(i), right.At(i))
		}
		return nil
	}
}

// ExecScalarBinaryChecked is like ExecScalarBinary for operations that
// can fail. Null output slots are skipped so that garbage behind a null
// never raises an error.
func ExecScalarBinaryChecked[T constraints.Integer](name string, op func(T, T) (T, bool)) functions.ArrayKernelExec {
	return func(ctx *functions.KernelCtx, batch *functions.ExecBatch, out compute.Datum) error {
		left := NewOperand[T](batch.Values[0])
		right := NewOperand[T](batch.Values[1])
		outData := out.(*compute.ArrayDatum).Value
		output := GetVals[T](outData, 1)
		valid := NewValidity(outData)
		for i := range output {
			if !valid.IsValid(i) {
				continue
			}
			v, ok := op(left.At(i), right.At(i))
			if !ok {
				return fmt.Errorf("%w: %s of %v and %v does not fit in %s",
					compute.ErrOverflow, name, left.At(i), right.At(i), outData.DataType())
			}
			output[i] = v
		}
		return nil
	}
}
