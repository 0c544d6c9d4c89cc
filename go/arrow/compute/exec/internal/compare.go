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
	"bytes"

	"github.com/apache/arrow/go/v13/arrow/bitutil"
	"github.com/apache/arrow/go/v13/arrow/scalar"
	"github.com/ursa-labs/arrow/go/arrow/compute"
	"github.com/ursa-labs/arrow/go/arrow/compute/exec/functions"
	"golang.org/x/exp/constraints"
)

// BinaryOperand gives positional access to the values of a binary or
// string array with 32-bit offsets, or to a broadcast scalar.
type BinaryOperand struct {
	offsets  []int32
	data     []byte
	scalar   []byte
	isScalar bool
}

func NewBinaryOperand(d compute.Datum) BinaryOperand {
	switch v := d.(type) {
	case *compute.ScalarDatum:
		out := BinaryOperand{isScalar: true}
		if v.Value.IsValid() {
			out.scalar = v.Value.(scalar.BinaryScalar).Data()
		}
		return out
	default:
		arr := d.(*compute.ArrayDatum).Value
		if arr.Len() == 0 {
			return BinaryOperand{}
		}
		out := BinaryOperand{
			offsets: reinterpret[int32](arr.Buffers()[1].Bytes())[arr.Offset() : arr.Offset()+arr.Len()+1],
		}
		if arr.Buffers()[2] != nil {
			out.data = arr.Buffers()[2].Bytes()
		}
		return out
	}
}

func (b BinaryOperand) At(i int) []byte {
	if b.isScalar {
		return b.scalar
	}
	return b.data[b.offsets[i]:b.offsets[i+1]]
}

func compareFunc[T constraints.Ordered](op compute.CompareOperator) func(a, b T) bool {
	switch op {
	case compute.Equal:
		return func(a, b T) bool { return a == b }
	case compute.NotEqual:
		return func(a, b T) bool { return a != b }
	case compute.Greater:
		return func(a, b T) bool { return a > b }
	case compute.GreaterEqual:
		return func(a, b T) bool { return a >= b }
	case compute.Less:
		return func(a, b T) bool { return a < b }
	default:
		return func(a, b T) bool { return a <= b }
	}
}

func compareBytesFunc(op compute.CompareOperator) func(a, b []byte) bool {
	switch op {
	case compute.Equal:
		return func(a, b []byte) bool { return bytes.Equal(a, b) }
	case compute.NotEqual:
		return func(a, b []byte) bool { return !bytes.Equal(a, b) }
	case compute.Greater:
		return func(a, b []byte) bool { return bytes.Compare(a, b) > 0 }
	case compute.GreaterEqual:
		return func(a, b []byte) bool { return bytes.Compare(a, b) >= 0 }
	case compute.Less:
		return func(a, b []byte) bool { return bytes.Compare(a, b) < 0 }
	default:
		return func(a, b []byte) bool { return bytes.Compare(a, b) <= 0 }
	}
}

func compareOp(ctx *functions.KernelCtx) compute.CompareOperator {
	return ctx.State.(*compute.CompareOptions).Op
}

// ExecCompare compares two primitive operands using the operator held
// by the kernel state. Go's comparison operators already give the IEEE
// results for NaN.
func ExecCompare[T primitive](ctx *functions.KernelCtx, batch *functions.ExecBatch, out compute.Datum) error {
	cmp := compareFunc[T](compareOp(ctx))
	left := NewOperand[T](batch.Values[0])
	right := NewOperand[T](batch.Values[1])
	bits, offset := OutputBits(out)
	for i := 0; i < int(batch.Length); i++ {
		bitutil.SetBitTo(bits, offset+i, cmp(left.At(i), right.At(i)))
	}
	return nil
}

func ExecCompareBinary(ctx *functions.KernelCtx, batch *functions.ExecBatch, out compute.Datum) error {
	cmp := compareBytesFunc(compareOp(ctx))
	left := NewBinaryOperand(batch.Values[0])
	right := NewBinaryOperand(batch.Values[1])
	bits, offset := OutputBits(out)
	for i := 0; i < int(batch.Length); i++ {
		bitutil.SetBitTo(bits, offset+i, cmp(left.At(i), right.At(i)))
	}
	return nil
}

// booleans order false < true
func boolToInt(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}

func ExecCompareBool(ctx *functions.KernelCtx, batch *functions.ExecBatch, out compute.Datum) error {
	cmp := compareFunc[uint8](compareOp(ctx))
	left := NewBoolOperand(batch.Values[0])
	right := NewBoolOperand(batch.Values[1])
	bits, offset := OutputBits(out)
	for i := 0; i < int(batch.Length); i++ {
		bitutil.SetBitTo(bits, offset+i, cmp(boolToInt(left.Value(i)), boolToInt(right.Value(i))))
	}
	return nil
}
