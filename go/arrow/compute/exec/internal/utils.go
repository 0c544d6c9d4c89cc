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
	"unsafe"

	"github.com/apache/arrow/go/v13/arrow"
	"github.com/ursa-labs/arrow/go/arrow/compute"
	"golang.org/x/exp/constraints"
)

func SizeOf[T primitive]() uint {
	var z T
	return uint(unsafe.Sizeof(z))
}

func isSigned[T constraints.Integer]() bool { return ^T(0) < 0 }

func MinOf[T constraints.Integer]() T {
	if isSigned[T]() {
		return T(1) << (SizeOf[T]()*8 - 1)
	}
	return 0
}

func MaxOf[T constraints.Integer]() T {
	if isSigned[T]() {
		return ^MinOf[T]()
	}
	return ^T(0)
}

// IntegersInRange checks every valid value of the integer array datum
// falls in [lowerBound, upperBound].
func IntegersInRange[T constraints.Integer](datum compute.Datum, lowerBound, upperBound T) error {
	data := datum.(*compute.ArrayDatum).Value
	vals := GetVals[T](data, 1)
	valid := NewValidity(data)
	for i, v := range vals {
		if (v < lowerBound || v > upperBound) && valid.IsValid(i) {
			return fmt.Errorf("%w: integer value %d not in range: [%d, %d]", compute.ErrInvalid, v, lowerBound, upperBound)
		}
	}
	return nil
}

func getSafeMinSameSign[I, O constraints.Integer]() I {
	if SizeOf[I]() > SizeOf[O]() {
		return I(MinOf[O]())
	}
	return MinOf[I]()
}

func getSafeMaxSameSign[I, O constraints.Integer]() I {
	if SizeOf[I]() > SizeOf[O]() {
		return I(MaxOf[O]())
	}
	return MaxOf[I]()
}

func getSafeMaxSignedUnsigned[I constraints.Signed, O constraints.Unsigned]() I {
	if SizeOf[I]() <= SizeOf[O]() {
		return MaxOf[I]()
	}
	return I(MaxOf[O]())
}

func getSafeMaxUnsignedSigned[I constraints.Unsigned, O constraints.Signed]() I {
	if SizeOf[I]() < SizeOf[O]() {
		return MaxOf[I]()
	}
	return I(MaxOf[O]())
}

func getSafeMinMaxSigned[T constraints.Signed](target arrow.Type) (min, max T) {
	switch target {
	case arrow.UINT8:
		max = getSafeMaxSignedUnsigned[T, uint8]()
	case arrow.UINT16:
		max = getSafeMaxSignedUnsigned[T, uint16]()
	case arrow.UINT32:
		max = getSafeMaxSignedUnsigned[T, uint32]()
	case arrow.UINT64:
		max = getSafeMaxSignedUnsigned[T, uint64]()
	case arrow.INT8:
		min, max = getSafeMinSameSign[T, int8](), getSafeMaxSameSign[T, int8]()
	case arrow.INT16:
		min, max = getSafeMinSameSign[T, int16](), getSafeMaxSameSign[T, int16]()
	case arrow.INT32:
		min, max = getSafeMinSameSign[T, int32](), getSafeMaxSameSign[T, int32]()
	case arrow.INT64:
		min, max = getSafeMinSameSign[T, int64](), getSafeMaxSameSign[T, int64]()
	}
	return
}

func getSafeMinMaxUnsigned[T constraints.Unsigned](target arrow.Type) (min, max T) {
	switch target {
	case arrow.UINT8:
		max = getSafeMaxSameSign[T, uint8]()
	case arrow.UINT16:
		max = getSafeMaxSameSign[T, uint16]()
	case arrow.UINT32:
		max = getSafeMaxSameSign[T, uint32]()
	case arrow.UINT64:
		max = getSafeMaxSameSign[T, uint64]()
	case arrow.INT8:
		max = getSafeMaxUnsignedSigned[T, int8]()
	case arrow.INT16:
		max = getSafeMaxUnsignedSigned[T, int16]()
	case arrow.INT32:
		max = getSafeMaxUnsignedSigned[T, int32]()
	case arrow.INT64:
		max = getSafeMaxUnsignedSigned[T, int64]()
	}
	return
}

// IntsCanFit returns an error if any valid value of the integer array
// datum cannot be represented by targetType.
func IntsCanFit(datum compute.Datum, targetType arrow.DataType) error {
	if !arrow.IsInteger(targetType.ID()) {
		return fmt.Errorf("%w: target type is not an integer type %s", compute.ErrInvalid, targetType)
	}

	switch datum.(compute.ArrayLikeDatum).Type().ID() {
	case arrow.INT8:
		min, max := getSafeMinMaxSigned[int8](targetType.ID())
		return IntegersInRange(datum, min, max)
	case arrow.UINT8:
		min, max := getSafeMinMaxUnsigned[uint8](targetType.ID())
		return IntegersInRange(datum, min, max)
	case arrow.INT16:
		min, max := getSafeMinMaxSigned[int16](targetType.ID())
		return IntegersInRange(datum, min, max)
	case arrow.UINT16:
		min, max := getSafeMinMaxUnsigned[uint16](targetType.ID())
		return IntegersInRange(datum, min, max)
	case arrow.INT32:
		min, max := getSafeMinMaxSigned[int32](targetType.ID())
		return IntegersInRange(datum, min, max)
	case arrow.UINT32:
		min, max := getSafeMinMaxUnsigned[uint32](targetType.ID())
		return IntegersInRange(datum, min, max)
	case arrow.INT64:
		min, max := getSafeMinMaxSigned[int64](targetType.ID())
		return IntegersInRange(datum, min, max)
	case arrow.UINT64:
		min, max := getSafeMinMaxUnsigned[uint64](targetType.ID())
		return IntegersInRange(datum, min, max)
	default:
		return fmt.Errorf("%w: invalid type for boundschecking", compute.ErrType)
	}
}

func checkFloatTrunc[InT constraints.Float, OutT constraints.Integer](input, output compute.Datum) error {
	inarr := input.(*compute.ArrayDatum).Value
	outarr := output.(*compute.ArrayDatum).Value

	inData := GetVals[InT](inarr, 1)
	outData := GetVals[OutT](outarr, 1)
	valid := NewValidity(inarr)
	for i := range inData {
		if InT(outData[i]) != inData[i] && valid.IsValid(i) {
			return fmt.Errorf("%w: float value %f was truncated converting to %s",
				compute.ErrInvalid, inData[i], outarr.DataType())
		}
	}
	return nil
}

func checkFloatToIntTruncImpl[T constraints.Float](input, output compute.Datum) error {
	switch output.(compute.ArrayLikeDatum).Type().ID() {
	case arrow.INT8:
		return checkFloatTrunc[T, int8](input, output)
	case arrow.INT16:
		return checkFloatTrunc[T, int16](input, output)
	case arrow.INT32:
		return checkFloatTrunc[T, int32](input, output)
	case arrow.INT64:
		return checkFloatTrunc[T, int64](input, output)
	case arrow.UINT8:
		return checkFloatTrunc[T, uint8](input, output)
	case arrow.UINT16:
		return checkFloatTrunc[T, uint16](input, output)
	case arrow.UINT32:
		return checkFloatTrunc[T, uint32](input, output)
	case arrow.UINT64:
		return checkFloatTrunc[T, uint64](input, output)
	}
	return fmt.Errorf("%w: float truncation check only for integer output", compute.ErrType)
}

// CheckFloatToIntTrunc compares the already cast output against the
// input and fails on the first value that lost its fractional part or
// did not fit.
func CheckFloatToIntTrunc(input, output compute.Datum) error {
	switch input.(compute.ArrayLikeDatum).Type().ID() {
	case arrow.FLOAT32:
		return checkFloatToIntTruncImpl[float32](input, output)
	case arrow.FLOAT64:
		return checkFloatToIntTruncImpl[float64](input, output)
	}
	return fmt.Errorf("%w: float truncation check only for float32 and float64 input", compute.ErrType)
}

// CheckIntToFloatTrunc fails if an integer is outside the range a float
// of outType represents exactly.
func CheckIntToFloatTrunc(input compute.Datum, outType arrow.Type) error {
	switch input.(compute.ArrayLikeDatum).Type().ID() {
	// small integers are all exactly representable as whole numbers
	case arrow.INT8, arrow.INT16, arrow.UINT8, arrow.UINT16:
		return nil
	case arrow.INT32:
		if outType == arrow.FLOAT64 {
			return nil
		}
		const limit = int32(1 << 24)
		return IntegersInRange(input, -limit, limit)
	case arrow.UINT32:
		if outType == arrow.FLOAT64 {
			return nil
		}
		return IntegersInRange(input, 0, uint32(1<<24))
	case arrow.INT64:
		if outType == arrow.FLOAT32 {
			const limit = int64(1 << 24)
			return IntegersInRange(input, -limit, limit)
		}
		const limit = int64(1 << 53)
		return IntegersInRange(input, -limit, limit)
	case arrow.UINT64:
		if outType == arrow.FLOAT32 {
			return IntegersInRange(input, 0, uint64(1<<24))
		}
		return IntegersInRange(input, 0, uint64(1<<53))
	}
	return fmt.Errorf("%w: int to float truncation check requires integer input", compute.ErrType)
}
