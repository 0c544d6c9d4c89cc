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
	"unsafe"

	"github.com/apache/arrow/go/v13/arrow"
	"github.com/apache/arrow/go/v13/arrow/bitutil"
	"github.com/apache/arrow/go/v13/arrow/scalar"
	"github.com/ursa-labs/arrow/go/arrow/compute"
	"golang.org/x/exp/constraints"
)

type primitive interface {
	constraints.Integer | constraints.Float
}

func reinterpret[T primitive](b []byte) (res []T) {
	if len(b) == 0 {
		return nil
	}
	var t T
	sz := int(unsafe.Sizeof(t))
	return unsafe.Slice((*T)(unsafe.Pointer(&b[0])), len(b)/sz)
}

// GetVals returns the values of buffer buf of arr as a []T, adjusted for
// the array offset.
func GetVals[T primitive](arr arrow.ArrayData, buf int) []T {
	if arr.Len() == 0 || arr.Buffers()[buf] == nil {
		return nil
	}
	res := reinterpret[T](arr.Buffers()[buf].Bytes())
	return res[arr.Offset() : arr.Offset()+arr.Len()]
}

func UnboxScalar[T primitive](v scalar.Scalar) T {
	if !v.IsValid() {
		var zero T
		return zero
	}
	return reinterpret[T](v.(scalar.PrimitiveScalar).Data())[0]
}

// Operand gives uniform positional access to either an array or a
// scalar broadcast to the batch length.
type Operand[T primitive] struct {
	vals     []T
	scalar   T
	isScalar bool
}

func NewOperand[T primitive](d compute.Datum) Operand[T] {
	switch v := d.(type) {
	case *compute.ScalarDatum:
		return Operand[T]{scalar: UnboxScalar[T](v.Value), isScalar: true}
	default:
		return Operand[T]{vals: GetVals[T](d.(*compute.ArrayDatum).Value, 1)}
	}
}

func (o Operand[T]) At(i int) T {
	if o.isScalar {
		return o.scalar
	}
	return o.vals[i]
}

// BoolOperand is the Operand equivalent for boolean values, including
// their validity which Kleene logic needs.
type BoolOperand struct {
	bits, validity []byte
	offset         int
	value, valid   bool
	isScalar       bool
}

func NewBoolOperand(d compute.Datum) BoolOperand {
	switch v := d.(type) {
	case *compute.ScalarDatum:
		out := BoolOperand{isScalar: true, valid: v.Value.IsValid()}
		if out.valid {
			out.value = v.Value.(*scalar.Boolean).Value
		}
		return out
	default:
		data := d.(*compute.ArrayDatum).Value
		out := BoolOperand{offset: data.Offset()}
		if data.Len() > 0 {
			out.bits = data.Buffers()[1].Bytes()
		}
		if data.Len() > 0 && data.Buffers()[0] != nil {
			out.validity = data.Buffers()[0].Bytes()
		}
		return out
	}
}

func (b BoolOperand) Value(i int) bool {
	if b.isScalar {
		return b.value
	}
	return bitutil.BitIsSet(b.bits, b.offset+i)
}

func (b BoolOperand) IsValid(i int) bool {
	if b.isScalar {
		return b.valid
	}
	return b.validity == nil || bitutil.BitIsSet(b.validity, b.offset+i)
}

// Validity reports whether slot i of an array is valid.
type Validity struct {
	bitmap []byte
	offset int
}

func NewValidity(data arrow.ArrayData) Validity {
	if data.Buffers()[0] == nil || data.Len() == 0 {
		return Validity{}
	}
	return Validity{bitmap: data.Buffers()[0].Bytes(), offset: data.Offset()}
}

func (v Validity) IsValid(i int) bool {
	return v.bitmap == nil || bitutil.BitIsSet(v.bitmap, v.offset+i)
}

// OutputBits returns the value bitmap of a boolean output and its offset.
func OutputBits(out compute.Datum) ([]byte, int) {
	data := out.(*compute.ArrayDatum).Value
	if data.Len() == 0 {
		return nil, 0
	}
	return data.Buffers()[1].Bytes(), data.Offset()
}

// OutputValidityBits returns the preallocated validity bitmap of an
// output and its offset.
func OutputValidityBits(out compute.Datum) ([]byte, int) {
	data := out.(*compute.ArrayDatum).Value
	if data.Len() == 0 || data.Buffers()[0] == nil {
		return nil, 0
	}
	return data.Buffers()[0].Bytes(), data.Offset()
}
