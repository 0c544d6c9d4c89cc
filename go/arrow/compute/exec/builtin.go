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

// Package exec is the entry point to the compute functions: it builds
// registries holding every builtin kernel and exposes typed wrappers
// around them.
package exec

import (
	"context"

	"github.com/apache/arrow/go/v13/arrow"
	"github.com/ursa-labs/arrow/go/arrow/compute"
	"github.com/ursa-labs/arrow/go/arrow/compute/exec/functions"
	"github.com/ursa-labs/arrow/go/arrow/compute/exec/kernels"
)

// built once at package initialization and never modified afterwards
var defaultRegistry = func() *functions.FunctionRegistry {
	reg := NewRegistry()
	reg.Freeze()
	return reg
}()

// NewRegistry returns a mutable registry holding every builtin
// function. Callers may add their own functions before handing it to
// an ExecCtx.
func NewRegistry() *functions.FunctionRegistry {
	reg := &functions.FunctionRegistry{}
	kernels.RegisterAll(reg)
	return reg
}

// DefaultRegistry returns the shared frozen registry of builtins.
func DefaultRegistry() *functions.FunctionRegistry { return defaultRegistry }

// DefaultExecCtx returns a new ExecCtx using the default registry with
// opts applied on top. Each call returns a distinct value.
func DefaultExecCtx(opts ...functions.ExecOption) *functions.ExecCtx {
	return functions.NewExecCtx(append([]functions.ExecOption{functions.WithRegistry(defaultRegistry)}, opts...)...)
}

func CallFunction(ctx context.Context, funcname string, args []compute.Datum, opts compute.FunctionOptions) (compute.Datum, error) {
	ectx := functions.GetExecCtx(ctx)
	if ectx == nil {
		return CallFunction(functions.SetExecCtx(ctx, DefaultExecCtx()), funcname, args, opts)
	}
	if ectx.Registry == nil {
		withDefault := *ectx
		withDefault.Registry = defaultRegistry
		return CallFunction(functions.SetExecCtx(ctx, &withDefault), funcname, args, opts)
	}

	fn, err := ectx.Registry.GetFunction(funcname)
	if err != nil {
		return nil, err
	}
	return functions.ExecuteFunction(ctx, fn, args, opts)
}

func Cast(ctx context.Context, value compute.Datum, options *compute.CastOptions) (compute.Datum, error) {
	return CallFunction(ctx, "cast", []compute.Datum{value}, options)
}

func CastTo(ctx context.Context, value compute.Datum, toType arrow.DataType, options compute.CastOptions) (compute.Datum, error) {
	options.ToType = toType
	return Cast(ctx, value, &options)
}

func CastArray(ctx context.Context, value arrow.Array, to arrow.DataType, options *compute.CastOptions) (arrow.Array, error) {
	datum := compute.NewDatum(value)
	defer datum.Release()

	if options == nil {
		options = compute.DefaultCastOptions(true)
	}
	out, err := CastTo(ctx, datum, to, *options)
	if err != nil {
		return nil, err
	}
	defer out.Release()

	return out.(*compute.ArrayDatum).MakeArray(), nil
}
