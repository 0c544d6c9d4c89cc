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

package functions

import (
	"fmt"

	"github.com/apache/arrow/go/v13/arrow"
	"github.com/apache/arrow/go/v13/arrow/bitutil"
	"github.com/ursa-labs/arrow/go/arrow/compute"
)

func hasValidityBitmap(id arrow.Type) bool {
	switch id {
	case arrow.NULL, arrow.DENSE_UNION, arrow.SPARSE_UNION:
		return false
	}
	return true
}

type nullGeneralized int8

const (
	nullsPerhaps nullGeneralized = iota
	nullsAllValid
	nullsAllNull
)

func getNullGeneralized(datum compute.Datum) nullGeneralized {
	dtID := datum.(compute.ArrayLikeDatum).Type().ID()
	switch {
	case dtID == arrow.NULL:
		return nullsAllNull
	case !hasValidityBitmap(dtID):
		return nullsAllValid
	case datum.Kind() == compute.KindScalar:
		if datum.(*compute.ScalarDatum).Value.IsValid() {
			return nullsAllValid
		}
		return nullsAllNull
	case datum.Kind() == compute.KindArray:
		arr := datum.(*compute.ArrayDatum)
		if arr.NullN() == 0 || arr.Value.Buffers()[0] == nil {
			return nullsAllValid
		}
		if arr.NullN() == arr.Len() {
			return nullsAllNull
		}
	case datum.Kind() == compute.KindChunked:
		arr := datum.(*compute.ChunkedDatum)
		if arr.NullN() == 0 {
			return nullsAllValid
		}
		if arr.NullN() == arr.Len() {
			return nullsAllNull
		}
	}
	return nullsPerhaps
}

// nullPropagator writes the intersection of the validity of a batch's
// values into a preallocated output bitmap.
type nullPropagator struct {
	batch         *ExecBatch
	arrsWithNulls []arrow.ArrayData
	isAllNull     bool
	out           arrow.ArrayData
	bitmap        []byte
}

func newNullPropagator(batch *ExecBatch, out arrow.ArrayData) *nullPropagator {
	np := &nullPropagator{batch: batch, out: out, bitmap: out.Buffers()[0].Bytes()}
	for _, d := range batch.Values {
		ng := getNullGeneralized(d)
		if ng == nullsAllNull {
			np.isAllNull = true
		}
		if ng != nullsAllValid && d.Kind() == compute.KindArray {
			np.arrsWithNulls = append(np.arrsWithNulls, d.(*compute.ArrayDatum).Value)
		}
	}
	return np
}

func (np *nullPropagator) execute() {
	length, offset := np.out.Len(), np.out.Offset()
	switch {
	case np.isAllNull:
		// a null scalar or all-null array nulls every slot, no
		// need to look at the other bitmaps
		bitutil.SetBitsTo(np.bitmap, int64(offset), int64(length), false)
	case len(np.arrsWithNulls) == 0:
		bitutil.SetBitsTo(np.bitmap, int64(offset), int64(length), true)
	case len(np.arrsWithNulls) == 1:
		arr := np.arrsWithNulls[0]
		bitutil.CopyBitmap(arr.Buffers()[0].Bytes(), arr.Offset(), length, np.bitmap, offset)
	default:
		first, second := np.arrsWithNulls[0], np.arrsWithNulls[1]
		bitutil.BitmapAnd(first.Buffers()[0].Bytes(), second.Buffers()[0].Bytes(),
			int64(first.Offset()), int64(second.Offset()), np.bitmap, int64(offset), int64(length))
		for _, arr := range np.arrsWithNulls[2:] {
			bitmapAndInPlace(np.bitmap, offset, arr.Buffers()[0].Bytes(), arr.Offset(), length)
		}
	}
}

// bitmapAndInPlace ands right into out. bitutil.BitmapAnd reads its
// inputs a word ahead, so out must not alias an input there.
func bitmapAndInPlace(out []byte, outOffset int, right []byte, rOffset, length int) {
	left, lOffset := out, outOffset
	if lOffset%8 == 0 && rOffset%8 == 0 && outOffset%8 == 0 {
		l, r, o := left[lOffset/8:], right[rOffset/8:], out[outOffset/8:]
		nbytes := length / 8
		for i := 0; i < nbytes; i++ {
			o[i] = l[i] & r[i]
		}
		lOffset, rOffset, outOffset = lOffset+nbytes*8, rOffset+nbytes*8, outOffset+nbytes*8
		length -= nbytes * 8
	}
	for i := 0; i < length; i++ {
		bitutil.SetBitTo(out, outOffset+i,
			bitutil.BitIsSet(left, lOffset+i) && bitutil.BitIsSet(right, rOffset+i))
	}
}

func propagateNulls(batch *ExecBatch, out arrow.ArrayData) error {
	if out.DataType().ID() == arrow.NULL {
		// null output type is a noop
		return nil
	}

	if len(out.Buffers()) == 0 || out.Buffers()[0] == nil {
		return fmt.Errorf("%w: null propagation requires a preallocated validity bitmap", compute.ErrInvalid)
	}
	newNullPropagator(batch, out).execute()
	return nil
}
