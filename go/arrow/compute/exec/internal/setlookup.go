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

	"github.com/apache/arrow/go/v13/arrow"
	"github.com/apache/arrow/go/v13/arrow/bitutil"
	"github.com/ursa-labs/arrow/go/arrow/compute"
	"github.com/ursa-labs/arrow/go/arrow/compute/exec/functions"
)

// ValueSet is a deduplicated index over the value_set of a set lookup.
// Every distinct value maps to the position of its first occurrence
// among the distinct values.
type ValueSet interface {
	// Size is the number of distinct entries, the null entry included.
	Size() int
	NullIndex() (int32, bool)
	// Finder returns a lookup of the non-null value at position i of d.
	Finder(d compute.Datum) func(i int) (int32, bool)
}

// valueSetData returns the arrays making up a value set, borrowed from
// the datum.
func valueSetData(d compute.Datum) ([]arrow.ArrayData, error) {
	switch v := d.(type) {
	case *compute.ArrayDatum:
		return []arrow.ArrayData{v.Value}, nil
	case *compute.ChunkedDatum:
		out := make([]arrow.ArrayData, len(v.Value.Chunks()))
		for i, c := range v.Value.Chunks() {
			out[i] = c.Data()
		}
		return out, nil
	}
	return nil, fmt.Errorf("%w: set lookup value_set must be an array or chunked array, got %s",
		compute.ErrInvalidOptions, d)
}

type primitiveValueSet[T primitive, K comparable] struct {
	memo *HashMemoTable[K]
	key  func(T) K
}

// NewPrimitiveValueSet indexes a value set of fixed width values. key
// maps each value to the comparable key it is deduplicated on.
func NewPrimitiveValueSet[T primitive, K comparable](valueSet compute.Datum, skipNulls bool, key func(T) K) (ValueSet, error) {
	chunks, err := valueSetData(valueSet)
	if err != nil {
		return nil, err
	}

	memo := NewHashMemoTable[K](int(valueSet.Len()))
	for _, data := range chunks {
		vals := GetVals[T](data, 1)
		valid := NewValidity(data)
		for i := 0; i < data.Len(); i++ {
			if !valid.IsValid(i) {
				if !skipNulls {
					memo.GetOrInsertNull()
				}
				continue
			}
			memo.GetOrInsert(key(vals[i]))
		}
	}
	return &primitiveValueSet[T, K]{memo: memo, key: key}, nil
}

func (p *primitiveValueSet[T, K]) Size() int                { return p.memo.Size() }
func (p *primitiveValueSet[T, K]) NullIndex() (int32, bool) { return p.memo.GetNull() }
func (p *primitiveValueSet[T, K]) Finder(d compute.Datum) func(int) (int32, bool) {
	op := NewOperand[T](d)
	return func(i int) (int32, bool) { return p.memo.Get(p.key(op.At(i))) }
}

type boolValueSet struct {
	memo *HashMemoTable[bool]
}

func NewBoolValueSet(valueSet compute.Datum, skipNulls bool) (ValueSet, error) {
	chunks, err := valueSetData(valueSet)
	if err != nil {
		return nil, err
	}

	memo := NewHashMemoTable[bool](2)
	for _, data := range chunks {
		if data.Len() == 0 {
			continue
		}
		bits := data.Buffers()[1].Bytes()
		valid := NewValidity(data)
		for i := 0; i < data.Len(); i++ {
			if !valid.IsValid(i) {
				if !skipNulls {
					memo.GetOrInsertNull()
				}
				continue
			}
			memo.GetOrInsert(bitutil.BitIsSet(bits, data.Offset()+i))
		}
	}
	return &boolValueSet{memo: memo}, nil
}

func (b *boolValueSet) Size() int                { return b.memo.Size() }
func (b *boolValueSet) NullIndex() (int32, bool) { return b.memo.GetNull() }
func (b *boolValueSet) Finder(d compute.Datum) func(int) (int32, bool) {
	op := NewBoolOperand(d)
	return func(i int) (int32, bool) { return b.memo.Get(op.Value(i)) }
}

type binaryValueSet struct {
	memo *BinaryMemoTable
}

func NewBinaryValueSet(valueSet compute.Datum, skipNulls bool) (ValueSet, error) {
	chunks, err := valueSetData(valueSet)
	if err != nil {
		return nil, err
	}

	memo := NewBinaryMemoTable(int(valueSet.Len()))
	for _, data := range chunks {
		op := NewBinaryOperand(&compute.ArrayDatum{Value: data})
		valid := NewValidity(data)
		for i := 0; i < data.Len(); i++ {
			if !valid.IsValid(i) {
				if !skipNulls {
					memo.GetOrInsertNull()
				}
				continue
			}
			memo.GetOrInsert(op.At(i))
		}
	}
	return &binaryValueSet{memo: memo}, nil
}

func (b *binaryValueSet) Size() int                { return b.memo.Size() }
func (b *binaryValueSet) NullIndex() (int32, bool) { return b.memo.GetNull() }
func (b *binaryValueSet) Finder(d compute.Datum) func(int) (int32, bool) {
	op := NewBinaryOperand(d)
	return func(i int) (int32, bool) { return b.memo.Get(op.At(i)) }
}

// operandValid reports validity of either a scalar or an array operand.
func operandValid(d compute.Datum) func(i int) bool {
	if sc, ok := d.(*compute.ScalarDatum); ok {
		valid := sc.Value.IsValid()
		return func(int) bool { return valid }
	}
	v := NewValidity(d.(*compute.ArrayDatum).Value)
	return v.IsValid
}

// ExecIsIn writes true for values found in the set. A null value is
// true when the set holds a null and null otherwise.
func ExecIsIn(ctx *functions.KernelCtx, batch *functions.ExecBatch, out compute.Datum) error {
	vs := ctx.State.(ValueSet)
	find := vs.Finder(batch.Values[0])
	isValid := operandValid(batch.Values[0])
	_, setHasNull := vs.NullIndex()

	bits, offset := OutputBits(out)
	validity, _ := OutputValidityBits(out)
	for i := 0; i < int(batch.Length); i++ {
		if !isValid(i) {
			bitutil.SetBitTo(bits, offset+i, setHasNull)
			bitutil.SetBitTo(validity, offset+i, setHasNull)
			continue
		}
		_, found := find(i)
		bitutil.SetBitTo(bits, offset+i, found)
		bitutil.SetBitTo(validity, offset+i, true)
	}
	return nil
}

// ExecIndexIn writes the index of each value within the distinct
// values of the set, or null when it is absent. Null values match the
// null entry of the set if there is one.
func ExecIndexIn(ctx *functions.KernelCtx, batch *functions.ExecBatch, out compute.Datum) error {
	vs := ctx.State.(ValueSet)
	find := vs.Finder(batch.Values[0])
	isValid := operandValid(batch.Values[0])
	nullIdx, setHasNull := vs.NullIndex()

	output := GetVals[int32](out.(*compute.ArrayDatum).Value, 1)
	validity, offset := OutputValidityBits(out)
	for i := range output {
		idx, found := nullIdx, setHasNull
		if isValid(i) {
			idx, found = find(i)
		}
		if found {
			output[i] = idx
		} else {
			output[i] = 0
		}
		bitutil.SetBitTo(validity, offset+i, found)
	}
	return nil
}
