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
)

// FunctionOptions is implemented by every options payload a function
// accepts. Kernels type-assert the concrete payload during init and
// fail with ErrInvalidOptions when handed a foreign one.
type FunctionOptions interface {
	TypeName() string
}

type CompareOperator int8

const (
	Equal CompareOperator = iota
	NotEqual
	Greater
	GreaterEqual
	Less
	LessEqual
)

var compareOperatorNames = [...]string{"equal", "not_equal", "greater", "greater_equal", "less", "less_equal"}

func (c CompareOperator) String() string {
	if c < 0 || int(c) >= len(compareOperatorNames) {
		return fmt.Sprintf("CompareOperator(%d)", int8(c))
	}
	return compareOperatorNames[c]
}

func (c CompareOperator) IsValid() bool { return c >= Equal && c <= LessEqual }

// ParseCompareOperator accepts either the function style names
// ("greater_equal") or the symbolic form (">=").
func ParseCompareOperator(s string) (CompareOperator, error) {
	switch s {
	case "equal", "eq", "==", "=":
		return Equal, nil
	case "not_equal", "ne", "!=":
		return NotEqual, nil
	case "greater", "gt", ">":
		return Greater, nil
	case "greater_equal", "ge", ">=":
		return GreaterEqual, nil
	case "less", "lt", "<":
		return Less, nil
	case "less_equal", "le", "<=":
		return LessEqual, nil
	}
	return 0, fmt.Errorf("%w: unknown compare operator %q", ErrInvalidOptions, s)
}

type CompareOptions struct {
	Op CompareOperator `compute:"op"`
}

func (CompareOptions) TypeName() string { return "CompareOptions" }

// SetLookupOptions configures is_in and index_in. ValueSet must be an
// array or chunked array of the same type as the values being looked up.
type SetLookupOptions struct {
	ValueSet  Datum `compute:"value_set"`
	SkipNulls bool  `compute:"skip_nulls"`
}

func (SetLookupOptions) TypeName() string { return "SetLookupOptions" }

type StrptimeOptions struct {
	Format string         `compute:"format"`
	Unit   arrow.TimeUnit `compute:"unit"`
}

func (StrptimeOptions) TypeName() string { return "StrptimeOptions" }

type CastOptions struct {
	ToType             arrow.DataType `compute:"to_type"`
	AllowIntOverflow   bool           `compute:"allow_int_overflow"`
	AllowFloatTruncate bool           `compute:"allow_float_truncate"`
}

func (CastOptions) TypeName() string { return "CastOptions" }

// DefaultCastOptions returns the options for a safe cast when safe is
// true, or an unchecked cast otherwise.
func DefaultCastOptions(safe bool) *CastOptions {
	if safe {
		return &CastOptions{}
	}
	return &CastOptions{
		AllowIntOverflow:   true,
		AllowFloatTruncate: true,
	}
}

func NewCastOptions(dt arrow.DataType, safe bool) *CastOptions {
	opts := DefaultCastOptions(safe)
	opts.ToType = dt
	return opts
}

func SafeCastOptions(dt arrow.DataType) *CastOptions   { return NewCastOptions(dt, true) }
func UnsafeCastOptions(dt arrow.DataType) *CastOptions { return NewCastOptions(dt, false) }

var (
	_ FunctionOptions = (*CompareOptions)(nil)
	_ FunctionOptions = (*SetLookupOptions)(nil)
	_ FunctionOptions = (*StrptimeOptions)(nil)
	_ FunctionOptions = (*CastOptions)(nil)
)
