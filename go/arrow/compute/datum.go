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

package compute

import (
	"fmt"

	"github.com/apache/arrow/go/v13/arrow"
	"github.com/apache/arrow/go/v13/arrow/array"
	"github.com/apache/arrow/go/v13/arrow/scalar"
)

// ValueShape describes whether a value is a single element or a column.
type ValueShape int8

const (
	ShapeAny    ValueShape = iota // any
	ShapeArray                    // array
	ShapeScalar                   // scalar
)

func (v ValueShape) String() string {
	switch v {
	case ShapeArray:
		return "array"
	case ShapeScalar:
		return "scalar"
	default:
		return "any"
	}
}

// ValueDescr pairs a value's shape with its element type, used when
// dispatching kernels before any data is touched.
type ValueDescr struct {
	Shape ValueShape
	Type  arrow.DataType
}

func (v ValueDescr) String() string {
	return fmt.Sprintf("%s [%s]", v.Shape, v.Type)
}

func (v ValueDescr) Equals(other ValueDescr) bool {
	return v.Shape == other.Shape && arrow.TypeEqual(v.Type, other.Type)
}

func NewDescrAny(typ arrow.DataType) ValueDescr    { return ValueDescr{ShapeAny, typ} }
func NewDescrArray(typ arrow.DataType) ValueDescr  { return ValueDescr{ShapeArray, typ} }
func NewDescrScalar(typ arrow.DataType) ValueDescr { return ValueDescr{ShapeScalar, typ} }

// GetBroadcastShape returns ShapeArray if any of the descriptors is an
// array, otherwise ShapeScalar.
func GetBroadcastShape(descrs []ValueDescr) ValueShape {
	for _, d := range descrs {
		if d.Shape == ShapeArray {
			return ShapeArray
		}
	}
	return ShapeScalar
}

type DatumKind int

const (
	KindNone    DatumKind = iota // none
	KindScalar                   // scalar
	KindArray                    // array
	KindChunked                  // chunked_array
)

func (k DatumKind) String() string {
	switch k {
	case KindScalar:
		return "scalar"
	case KindArray:
		return "array"
	case KindChunked:
		return "chunked_array"
	default:
		return "none"
	}
}

const UnknownLength int64 = -1

// Datum is the closed set of values a compute function accepts and
// returns: EmptyDatum, *ScalarDatum, *ArrayDatum and *ChunkedDatum.
//
// Datums hold a reference to their underlying data, callers must call
// Release when done with one.
type Datum interface {
	fmt.Stringer
	Kind() DatumKind
	Len() int64
	Equals(Datum) bool
	Release()

	isDatum()
}

// ArrayLikeDatum is implemented by every Datum that carries values.
type ArrayLikeDatum interface {
	Datum
	Shape() ValueShape
	Descr() ValueDescr
	NullN() int64
	Type() arrow.DataType
	// Chunks returns the arrays holding the values, nil for a scalar.
	// Each array is a new reference the caller must Release.
	Chunks() []arrow.Array
}

// NewDatum wraps the value in the appropriate Datum, retaining it.
// Anything that is not already arrow data is converted with
// scalar.MakeScalar.
func NewDatum(value interface{}) Datum {
	switch v := value.(type) {
	case Datum:
		return cloneDatum(v)
	case arrow.Array:
		v.Data().Retain()
		return &ArrayDatum{v.Data()}
	case arrow.ArrayData:
		v.Retain()
		return &ArrayDatum{v}
	case *arrow.Chunked:
		v.Retain()
		return &ChunkedDatum{v}
	case scalar.Scalar:
		if r, ok := v.(scalar.Releasable); ok {
			r.Retain()
		}
		return &ScalarDatum{v}
	default:
		return &ScalarDatum{scalar.MakeScalar(value)}
	}
}

func cloneDatum(d Datum) Datum {
	switch v := d.(type) {
	case *ScalarDatum:
		return NewDatum(v.Value)
	case *ArrayDatum:
		return NewDatum(v.Value)
	case *ChunkedDatum:
		return NewDatum(v.Value)
	default:
		return EmptyDatum{}
	}
}

type EmptyDatum struct{}

func (EmptyDatum) String() string  { return "nullptr" }
func (EmptyDatum) Kind() DatumKind { return KindNone }
func (EmptyDatum) Len() int64      { return UnknownLength }
func (EmptyDatum) Release()        {}
func (EmptyDatum) isDatum()        {}
func (EmptyDatum) Equals(other Datum) bool {
	_, ok := other.(EmptyDatum)
	return ok
}

type ScalarDatum struct {
	Value scalar.Scalar
}

func (ScalarDatum) Kind() DatumKind          { return KindScalar }
func (ScalarDatum) Shape() ValueShape        { return ShapeScalar }
func (ScalarDatum) Len() int64               { return 1 }
func (ScalarDatum) isDatum()                 {}
func (s *ScalarDatum) Chunks() []arrow.Array { return nil }
func (s *ScalarDatum) Type() arrow.DataType  { return s.Value.DataType() }
func (s *ScalarDatum) String() string        { return fmt.Sprintf("Scalar:{%s}", s.Value) }
func (s *ScalarDatum) NullN() int64 {
	if s.Value.IsValid() {
		return 0
	}
	return 1
}

func (s *ScalarDatum) Descr() ValueDescr {
	return ValueDescr{ShapeScalar, s.Value.DataType()}
}

func (s *ScalarDatum) Release() {
	if r, ok := s.Value.(scalar.Releasable); ok {
		r.Release()
	}
}

func (s *ScalarDatum) Equals(other Datum) bool {
	rhs, ok := other.(*ScalarDatum)
	if !ok {
		return false
	}

	return scalar.Equals(s.Value, rhs.Value)
}

type ArrayDatum struct {
	Value arrow.ArrayData
}

func (ArrayDatum) Kind() DatumKind               { return KindArray }
func (ArrayDatum) Shape() ValueShape             { return ShapeArray }
func (ArrayDatum) isDatum()                      {}
func (a *ArrayDatum) Type() arrow.DataType       { return a.Value.DataType() }
func (a *ArrayDatum) Len() int64                 { return int64(a.Value.Len()) }
func (a *ArrayDatum) NullN() int64               { return int64(a.Value.NullN()) }
func (a *ArrayDatum) Descr() ValueDescr          { return ValueDescr{ShapeArray, a.Value.DataType()} }
func (a *ArrayDatum) String() string             { return fmt.Sprintf("Array:{%s}", a.Value.DataType()) }
func (a *ArrayDatum) MakeArray() arrow.Array     { return array.MakeFromData(a.Value) }
func (a *ArrayDatum) Release()                   { a.Value.Release() }
func (a *ArrayDatum) Chunks() []arrow.Array      { return []arrow.Array{a.MakeArray()} }
func (a *ArrayDatum) Equals(other Datum) bool {
	rhs, ok := other.(*ArrayDatum)
	if !ok {
		return false
	}

	left := a.MakeArray()
	right := rhs.MakeArray()
	defer left.Release()
	defer right.Release()

	return array.Equal(left, right)
}

type ChunkedDatum struct {
	Value *arrow.Chunked
}

func (ChunkedDatum) Kind() DatumKind         { return KindChunked }
func (ChunkedDatum) Shape() ValueShape       { return ShapeArray }
func (ChunkedDatum) isDatum()                {}
func (c *ChunkedDatum) Type() arrow.DataType { return c.Value.DataType() }
func (c *ChunkedDatum) Len() int64           { return int64(c.Value.Len()) }
func (c *ChunkedDatum) NullN() int64         { return int64(c.Value.NullN()) }
func (c *ChunkedDatum) Descr() ValueDescr    { return ValueDescr{ShapeArray, c.Value.DataType()} }
func (c *ChunkedDatum) String() string       { return fmt.Sprintf("ChunkedArray:{%s}", c.Value.DataType()) }
func (c *ChunkedDatum) Release()             { c.Value.Release() }
func (c *ChunkedDatum) Chunks() []arrow.Array {
	out := make([]arrow.Array, len(c.Value.Chunks()))
	for i, arr := range c.Value.Chunks() {
		arr.Retain()
		out[i] = arr
	}
	return out
}

func (c *ChunkedDatum) Equals(other Datum) bool {
	rhs, ok := other.(*ChunkedDatum)
	if !ok {
		return false
	}

	return array.ChunkedEqual(c.Value, rhs.Value)
}

var (
	_ ArrayLikeDatum = (*ScalarDatum)(nil)
	_ ArrayLikeDatum = (*ArrayDatum)(nil)
	_ ArrayLikeDatum = (*ChunkedDatum)(nil)
	_ Datum          = EmptyDatum{}
)
