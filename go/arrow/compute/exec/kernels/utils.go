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
	"fmt"

	"github.com/apache/arrow/go/v13/arrow"
	"github.com/ursa-labs/arrow/go/arrow/compute"
	"github.com/ursa-labs/arrow/go/arrow/compute/exec/functions"
)

func mustAdd(reg *functions.FunctionRegistry, fn functions.Function) {
	if err := reg.AddFunction(fn, false); err != nil {
		panic(err)
	}
}

func mustAlias(reg *functions.FunctionRegistry, target, source string) {
	if err := reg.AddAlias(target, source); err != nil {
		panic(err)
	}
}

func binaryInputs(dt arrow.DataType) []functions.InputType {
	in := functions.NewExactInput(dt, compute.ShapeAny)
	return []functions.InputType{in, in}
}

// idInputs matches n arguments of any type with the given id. The
// kernel init must still check the arguments agree on the parameters.
func idInputs(id arrow.Type, n int) []functions.InputType {
	in := make([]functions.InputType, n)
	for i := range in {
		in[i] = functions.NewInputIDType(id)
	}
	return in
}

// sameTypeInputs fails with compute.ErrType unless every argument has
// the type of the first one.
func sameTypeInputs(fn string, inputs []compute.ValueDescr) error {
	for _, in := range inputs[1:] {
		if !arrow.TypeEqual(inputs[0].Type, in.Type) {
			return fmt.Errorf("%w: function '%s' cannot mix %s and %s",
				compute.ErrType, fn, inputs[0].Type, in.Type)
		}
	}
	return nil
}

func unaryInput(dt arrow.DataType) []functions.InputType {
	return []functions.InputType{functions.NewExactInput(dt, compute.ShapeAny)}
}

func firstType(_ *functions.KernelCtx, descrs []compute.ValueDescr) (compute.ValueDescr, error) {
	result := descrs[0]
	result.Shape = compute.GetBroadcastShape(descrs)
	return result, nil
}

// optionsOf returns opts as a *T. Options may be passed either by
// value or by pointer.
func optionsOf[T any](opts compute.FunctionOptions) (*T, error) {
	switch o := any(opts).(type) {
	case *T:
		if o != nil {
			return o, nil
		}
	case T:
		return &o, nil
	}
	var want T
	return nil, fmt.Errorf("%w: expected %T, got %T", compute.ErrInvalidOptions, want, opts)
}
