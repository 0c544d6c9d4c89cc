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
)

// CommonNumeric returns the type both a and b can be cast to without
// loss for arithmetic, or false if they have none.
//
// Integers of the same signedness widen to the wider of the two. Mixing
// signed and unsigned picks a signed type wide enough for both, which
// caps at int64. Any floating point operand makes the result floating
// point, float64 if either side is float64 and float32 otherwise.
func CommonNumeric(a, b arrow.DataType) (arrow.DataType, bool) {
	switch {
	case a.ID() == arrow.NULL && b.ID() == arrow.NULL:
		return nil, false
	case a.ID() == arrow.NULL:
		return b, isNumeric(b.ID())
	case b.ID() == arrow.NULL:
		return a, isNumeric(a.ID())
	case !isNumeric(a.ID()) || !isNumeric(b.ID()):
		return nil, false
	case arrow.TypeEqual(a, b):
		return a, true
	case a.ID() == arrow.FLOAT64 || b.ID() == arrow.FLOAT64:
		return arrow.PrimitiveTypes.Float64, true
	case isFloating(a.ID()) || isFloating(b.ID()):
		return arrow.PrimitiveTypes.Float32, true
	}

	aw, bw := bitWidth(a), bitWidth(b)
	aUnsigned, bUnsigned := isUnsigned(a.ID()), isUnsigned(b.ID())
	switch {
	case aUnsigned == bUnsigned:
		if aw >= bw {
			return a, true
		}
		return b, true
	case aUnsigned:
		return signedIntOfWidth(max(bw, 2*aw)), true
	default:
		return signedIntOfWidth(max(aw, 2*bw)), true
	}
}

// castToCommonNumeric rewrites binary argument types to their common
// numeric type.
func castToCommonNumeric(descrs []compute.ValueDescr) bool {
	if len(descrs) != 2 {
		return false
	}

	common, ok := CommonNumeric(descrs[0].Type, descrs[1].Type)
	if !ok {
		return false
	}
	descrs[0].Type, descrs[1].Type = common, common
	return true
}

// castNullToBoolean lets untyped nulls take part in boolean functions.
func castNullToBoolean(descrs []compute.ValueDescr) bool {
	changed := false
	for i := range descrs {
		switch descrs[i].Type.ID() {
		case arrow.NULL:
			descrs[i].Type = arrow.FixedWidthTypes.Boolean
			changed = true
		case arrow.BOOL:
		default:
			return false
		}
	}
	return changed
}

// castNullToOther resolves a null argument of a comparison to the type
// of the other argument, then falls back to numeric promotion.
func castNullToOther(descrs []compute.ValueDescr) bool {
	if len(descrs) != 2 {
		return false
	}

	switch {
	case descrs[0].Type.ID() == arrow.NULL && descrs[1].Type.ID() != arrow.NULL:
		descrs[0].Type = descrs[1].Type
		return true
	case descrs[1].Type.ID() == arrow.NULL && descrs[0].Type.ID() != arrow.NULL:
		descrs[1].Type = descrs[0].Type
		return true
	}
	return castToCommonNumeric(descrs)
}
