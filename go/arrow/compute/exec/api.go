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

package exec

import (
	"context"

	"github.com/ursa-labs/arrow/go/arrow/compute"
)

func callBinary(ctx context.Context, name string, left, right compute.Datum, opts compute.FunctionOptions) (compute.Datum, error) {
	return CallFunction(ctx, name, []compute.Datum{left, right}, opts)
}

// Add returns the element-wise sum of left and right. Integer overflow
// is an error wrapping compute.ErrOverflow.
func Add(ctx context.Context, left, right compute.Datum) (compute.Datum, error) {
	return callBinary(ctx, "add", left, right, nil)
}

// Subtract returns left minus right element-wise.
func Subtract(ctx context.Context, left, right compute.Datum) (compute.Datum, error) {
	return callBinary(ctx, "subtract", left, right, nil)
}

// Multiply returns the element-wise product of left and right.
func Multiply(ctx context.Context, left, right compute.Datum) (compute.Datum, error) {
	return callBinary(ctx, "multiply", left, right, nil)
}

// Compare applies opts.Op element-wise. Comparisons involving NaN are
// false except NotEqual.
func Compare(ctx context.Context, left, right compute.Datum, opts compute.CompareOptions) (compute.Datum, error) {
	return callBinary(ctx, "compare", left, right, &opts)
}

func Invert(ctx context.Context, values compute.Datum) (compute.Datum, error) {
	return CallFunction(ctx, "invert", []compute.Datum{values}, nil)
}

func And(ctx context.Context, left, right compute.Datum) (compute.Datum, error) {
	return callBinary(ctx, "and", left, right, nil)
}

func Or(ctx context.Context, left, right compute.Datum) (compute.Datum, error) {
	return callBinary(ctx, "or", left, right, nil)
}

func Xor(ctx context.Context, left, right compute.Datum) (compute.Datum, error) {
	return callBinary(ctx, "xor", left, right, nil)
}

// KleeneAnd is the three valued 'and': false wins over null.
func KleeneAnd(ctx context.Context, left, right compute.Datum) (compute.Datum, error) {
	return callBinary(ctx, "and_kleene", left, right, nil)
}

// KleeneOr is the three valued 'or': true wins over null.
func KleeneOr(ctx context.Context, left, right compute.Datum) (compute.Datum, error) {
	return callBinary(ctx, "or_kleene", left, right, nil)
}

// IsIn reports for each element of values whether it occurs in
// valueSet. Nulls in valueSet are matched by null values.
func IsIn(ctx context.Context, values, valueSet compute.Datum) (compute.Datum, error) {
	return IsInWithOptions(ctx, values, compute.SetLookupOptions{ValueSet: valueSet})
}

func IsInWithOptions(ctx context.Context, values compute.Datum, opts compute.SetLookupOptions) (compute.Datum, error) {
	return CallFunction(ctx, "is_in", []compute.Datum{values}, &opts)
}

// Match returns for each element of values its index among the
// distinct values of valueSet, or null if it is absent.
func Match(ctx context.Context, values, valueSet compute.Datum) (compute.Datum, error) {
	return MatchWithOptions(ctx, values, compute.SetLookupOptions{ValueSet: valueSet})
}

func MatchWithOptions(ctx context.Context, values compute.Datum, opts compute.SetLookupOptions) (compute.Datum, error) {
	return CallFunction(ctx, "index_in", []compute.Datum{values}, &opts)
}

// Strptime parses strings into timestamps of opts.Unit.
func Strptime(ctx context.Context, values compute.Datum, opts compute.StrptimeOptions) (compute.Datum, error) {
	return CallFunction(ctx, "strptime", []compute.Datum{values}, &opts)
}
