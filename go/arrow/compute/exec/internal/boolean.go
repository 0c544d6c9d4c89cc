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
	"github.com/apache/arrow/go/v13/arrow/bitutil"
	"github.com/ursa-labs/arrow/go/arrow/compute"
	"github.com/ursa-labs/arrow/go/arrow/compute/exec/functions"
)

func ExecInvert(ctx *functions.KernelCtx, batch *functions.ExecBatch, out compute.Datum) error {
	in := NewBoolOperand(batch.Values[0])
	bits, offset := OutputBits(out)
	for i := 0; i < int(batch.Length); i++ {
		bitutil.SetBitTo(bits, offset+i, !in.Value(i))
	}
	return nil
}

// ExecBooleanBinary applies op to the values only; validity is handled
// by the executor.
func ExecBooleanBinary(op func(a, b bool) bool) functions.ArrayKernelExec {
	return func(ctx *functions.KernelCtx, batch *functions.ExecBatch, out compute.Datum) error {
		left := NewBoolOperand(batch.Values[0])
		right := NewBoolOperand(batch.Values[1])
		bits, offset := OutputBits(out)
		for i := 0; i < int(batch.Length); i++ {
			bitutil.SetBitTo(bits, offset+i, op(left.Value(i), right.Value(i)))
		}
		return nil
	}
}

// KleeneOp computes a three-valued result from two operands, each given
// as (value, valid). It returns the result value and whether it is known.
type KleeneOp func(lv, lvalid, rv, rvalid bool) (value, valid bool)

func KleeneAnd(lv, lvalid, rv, rvalid bool) (bool, bool) {
	switch {
	case (lvalid && !lv) || (rvalid && !rv):
		return false, true
	case lvalid && rvalid:
		return true, true
	}
	return false, false
}

func KleeneOr(lv, lvalid, rv, rvalid bool) (bool, bool) {
	switch {
	case (lvalid && lv) || (rvalid && rv):
		return true, true
	case lvalid && rvalid:
		return false, true
	}
	return false, false
}

// ExecKleene writes both values and validity of the output.
func ExecKleene(op KleeneOp) functions.ArrayKernelExec {
	return func(ctx *functions.KernelCtx, batch *functions.ExecBatch, out compute.Datum) error {
		left := NewBoolOperand(batch.Values[0])
		right := NewBoolOperand(batch.Values[1])
		bits, offset := OutputBits(out)
		validity, _ := OutputValidityBits(out)
		for i := 0; i < int(batch.Length); i++ {
			v, ok := op(left.Value(i), left.IsValid(i), right.Value(i), right.IsValid(i))
			bitutil.SetBitTo(bits, offset+i, v)
			bitutil.SetBitTo(validity, offset+i, ok)
		}
		return nil
	}
}
