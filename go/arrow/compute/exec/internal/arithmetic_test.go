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
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAddChecked(t *testing.T) {
	v, ok := AddChecked[int8](100, 27)
	assert.True(t, ok)
	assert.EqualValues(t, 127, v)

	_, ok = AddChecked[int8](100, 28)
	assert.False(t, ok)
	_, ok = AddChecked[int8](-100, -29)
	assert.False(t, ok)
	_, ok = AddChecked[uint8](200, 56)
	assert.False(t, ok)

	v64, ok := AddChecked[int64](math.MinInt64, math.MaxInt64)
	assert.True(t, ok)
	assert.EqualValues(t, -1, v64)
}

func TestSubtractChecked(t *testing.T) {
	_, ok := SubtractChecked[uint32](1, 2)
	assert.False(t, ok)
	v, ok := SubtractChecked[uint32](2, 2)
	assert.True(t, ok)
	assert.Zero(t, v)

	_, ok = SubtractChecked[int16](math.MinInt16, 1)
	assert.False(t, ok)
	_, ok = SubtractChecked[int16](math.MaxInt16, -1)
	assert.False(t, ok)
	v16, ok := SubtractChecked[int16](-5, -10)
	assert.True(t, ok)
	assert.EqualValues(t, 5, v16)
}

func TestMultiplyChecked(t *testing.T) {
	tests := []struct {
		a, b int32
		ok   bool
	}{
		{0, math.MinInt32, true},
		{-1, math.MinInt32, false},
		{math.MinInt32, -1, false},
		{1, math.MinInt32, true},
		{46341, 46341, false},
		{46340, 46340, true},
		{-46341, 46341, false},
	}
	for _, tt := range tests {
		v, ok := MultiplyChecked(tt.a, tt.b)
		assert.Equalf(t, tt.ok, ok, "%d * %d", tt.a, tt.b)
		if tt.ok {
			assert.Equal(t, tt.a*tt.b, v)
		}
	}

	_, ok := MultiplyChecked[uint64](math.MaxUint64, 2)
	assert.False(t, ok)
}

func TestMinMaxOf(t *testing.T) {
	assert.EqualValues(t, math.MinInt8, MinOf[int8]())
	assert.EqualValues(t, math.MaxInt8, MaxOf[int8]())
	assert.EqualValues(t, 0, MinOf[uint16]())
	assert.EqualValues(t, uint16(math.MaxUint16), MaxOf[uint16]())
	assert.EqualValues(t, math.MinInt64, MinOf[int64]())
}
