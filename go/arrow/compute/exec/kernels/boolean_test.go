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

package kernels_test

import (
	"testing"

	"github.com/apache/arrow/go/v13/arrow"
	"github.com/stretchr/testify/suite"
	"github.com/ursa-labs/arrow/go/arrow/compute"
)

var boolType = arrow.FixedWidthTypes.Boolean

type BooleanSuite struct {
	kernelSuite
}

func (bs *BooleanSuite) TestInvert() {
	bs.check("invert", datums(bs.array(boolType, `[true, false, null]`)), nil,
		bs.array(boolType, `[false, true, null]`))
	bs.check("invert", datums(bs.scalar(true)), nil, bs.scalar(false))
	bs.check("invert", datums(bs.nullScalar(boolType)), nil, bs.nullScalar(boolType))

	in := bs.array(boolType, `[true, false, null, false]`)
	defer in.Release()
	once, err := bs.call("invert", datums(in), nil)
	bs.Require().NoError(err)
	defer once.Release()
	twice, err := bs.call("invert", datums(once), nil)
	bs.Require().NoError(err)
	defer twice.Release()
	bs.True(in.Equals(twice))
}

// every pair of true, false and null
const (
	leftTruth  = `[true, true, true, false, false, false, null, null, null]`
	rightTruth = `[true, false, null, true, false, null, true, false, null]`
)

func (bs *BooleanSuite) TestTruthTables() {
	tests := []struct {
		name     string
		expected string
	}{
		{"and", `[true, false, null, false, false, null, null, null, null]`},
		{"or", `[true, true, null, true, false, null, null, null, null]`},
		{"xor", `[false, true, null, true, false, null, null, null, null]`},
		{"and_kleene", `[true, false, null, false, false, false, null, false, null]`},
		{"or_kleene", `[true, true, true, true, false, null, true, null, null]`},
		{"kleene_and", `[true, false, null, false, false, false, null, false, null]`},
		{"kleene_or", `[true, true, true, true, false, null, true, null, null]`},
	}

	for _, tt := range tests {
		bs.Run(tt.name, func() {
			bs.check(tt.name, datums(bs.array(boolType, leftTruth), bs.array(boolType, rightTruth)), nil,
				bs.array(boolType, tt.expected))
		})
	}
}

func (bs *BooleanSuite) TestKleeneAllNull() {
	left := `[true, false, null]`
	right := `[null, null, null]`
	bs.check("and_kleene", datums(bs.array(boolType, left), bs.array(boolType, right)), nil,
		bs.array(boolType, `[null, false, null]`))
	bs.check("or_kleene", datums(bs.array(boolType, left), bs.array(boolType, right)), nil,
		bs.array(boolType, `[true, null, null]`))
}

func (bs *BooleanSuite) TestScalarBroadcast() {
	left := `[true, false, null]`
	bs.check("and_kleene", datums(bs.array(boolType, left), bs.scalar(false)), nil,
		bs.array(boolType, `[false, false, false]`))
	bs.check("or_kleene", datums(bs.nullScalar(boolType), bs.array(boolType, left)), nil,
		bs.array(boolType, `[true, null, null]`))
	bs.check("and", datums(bs.array(boolType, left), bs.nullScalar(boolType)), nil,
		bs.array(boolType, `[null, null, null]`))
	bs.check("xor", datums(bs.scalar(true), bs.array(boolType, left)), nil,
		bs.array(boolType, `[false, true, null]`))
	bs.check("or", datums(bs.array(boolType, left), bs.nullScalar(arrow.Null)), nil,
		bs.array(boolType, `[null, null, null]`))
}

func (bs *BooleanSuite) TestScalars() {
	bs.check("and_kleene", datums(bs.scalar(false), bs.nullScalar(boolType)), nil, bs.scalar(false))
	bs.check("or_kleene", datums(bs.scalar(false), bs.nullScalar(boolType)), nil, bs.nullScalar(boolType))
	bs.check("xor", datums(bs.scalar(true), bs.scalar(true)), nil, bs.scalar(false))
}

func (bs *BooleanSuite) TestChunked() {
	bs.check("and", datums(bs.chunked(boolType, `[true, false]`, `[true]`), bs.array(boolType, `[true, true, null]`)), nil,
		bs.chunked(boolType, `[true, false]`, `[null]`))
}

func (bs *BooleanSuite) TestErrors() {
	bs.checkFails("and", datums(bs.array(arrow.PrimitiveTypes.Int32, `[1]`), bs.array(boolType, `[true]`)), nil, compute.ErrType)
	bs.checkFails("invert", datums(bs.array(arrow.BinaryTypes.String, `["true"]`)), nil, compute.ErrType)
	bs.checkFails("or_kleene", datums(bs.array(boolType, `[true]`), bs.array(boolType, `[true, false]`)), nil, compute.ErrLengthMismatch)
	bs.checkFails("xor", datums(bs.array(boolType, `[true]`), bs.array(boolType, `[true]`)),
		&compute.CompareOptions{}, compute.ErrInvalidOptions)
}

func TestBoolean(t *testing.T) {
	suite.Run(t, new(BooleanSuite))
}
