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
	"context"
	"fmt"
	"strings"

	"github.com/apache/arrow/go/v13/arrow"
	"github.com/apache/arrow/go/v13/arrow/array"
	"github.com/ursa-labs/arrow/go/arrow/compute"
	"github.com/ursa-labs/arrow/go/arrow/compute/exec/functions"
)

var (
	castDoc = functions.FunctionDoc{
		Summary:         "Cast values to another data type",
		Desc:            "Behavior when values wouldn't fit in the target type\ncan be controlled through CastOptions.",
		ArgNames:        []string{"input"},
		OptionsType:     "CastOptions",
		OptionsRequired: true,
	}
	castToDoc = functions.FunctionDoc{
		Summary:     "Cast to a single target type",
		ArgNames:    []string{"input"},
		OptionsType: "CastOptions",
	}
)

var outputTargetType = functions.NewOutputTypeResolver(func(ctx *functions.KernelCtx, args []compute.ValueDescr) (compute.ValueDescr, error) {
	options := ctx.State.(*compute.CastOptions)
	return compute.ValueDescr{Type: options.ToType, Shape: args[0].Shape}, nil
})

// CastFunction casts any of its input type ids to a single output type.
type CastFunction struct {
	functions.ScalarFunction

	inputIDs []arrow.Type
	outID    arrow.Type
}

func NewCastFunction(name string, outType arrow.Type) *CastFunction {
	return &CastFunction{
		ScalarFunction: functions.NewScalarFunction(name, functions.Unary(), castToDoc, nil),
		outID:          outType,
		inputIDs:       make([]arrow.Type, 0),
	}
}

func (c *CastFunction) OutID() arrow.Type { return c.outID }

func initCastState(_ *functions.KernelCtx, args functions.KernelInitArgs) (functions.KernelState, error) {
	opts, err := optionsOf[compute.CastOptions](args.Options)
	if err != nil {
		return nil, err
	}
	return opts, nil
}

func (c *CastFunction) AddKernel(inType arrow.Type, kernel functions.ScalarKernel) error {
	kernel.Init = initCastState
	if err := c.ScalarFunction.AddKernel(kernel); err != nil {
		return err
	}
	c.inputIDs = append(c.inputIDs, inType)
	return nil
}

func (c *CastFunction) AddNewKernel(in arrow.DataType, out functions.OutputType, exec functions.ArrayKernelExec, nullHandling functions.NullHandling, memalloc functions.MemAlloc) error {
	kernel := functions.NewScalarKernel([]functions.InputType{functions.NewExactInput(in, compute.ShapeAny)}, out, exec, nil)
	kernel.NullHandling = nullHandling
	kernel.MemAlloc = memalloc
	return c.AddKernel(in.ID(), kernel)
}

func (c *CastFunction) DispatchExact(vals []compute.ValueDescr) (functions.Kernel, error) {
	if err := c.CheckArityDescr(vals); err != nil {
		return nil, err
	}

	kernels := c.Kernels()
	for i := range kernels {
		if kernels[i].Signature.MatchesInputs(vals) {
			return &kernels[i], nil
		}
	}
	return nil, fmt.Errorf("%w: unsupported cast from %s to %s using function %s",
		compute.ErrNotImplemented, vals[0].Type, c.outID, c.Name())
}

func (c *CastFunction) DispatchBest(vals []compute.ValueDescr) (functions.Kernel, error) {
	return c.DispatchExact(vals)
}

// CastRegistry holds the cast function of every supported output type.
// It is built once and read only afterwards.
type CastRegistry struct {
	table map[arrow.Type]*CastFunction
}

func NewCastRegistry() *CastRegistry {
	reg := &CastRegistry{table: make(map[arrow.Type]*CastFunction)}
	for _, fn := range getNumericCasts() {
		reg.table[fn.outID] = fn
	}
	reg.table[arrow.BOOL] = getCastToBoolean()
	// the remaining types are reachable from null only, which is what
	// comparisons against an untyped null need
	for _, id := range []arrow.Type{arrow.STRING, arrow.BINARY, arrow.DATE32, arrow.DATE64,
		arrow.TIME32, arrow.TIME64, arrow.TIMESTAMP, arrow.DURATION} {
		fn := NewCastFunction("cast_"+strings.ToLower(id.String()), id)
		addCommonCasts(outputTargetType, fn)
		reg.table[id] = fn
	}
	return reg
}

func (r *CastRegistry) GetCastFunction(toType arrow.DataType) (*CastFunction, error) {
	fn, ok := r.table[toType.ID()]
	if !ok {
		return nil, fmt.Errorf("%w: unsupported cast to %s (no available cast function for type)",
			compute.ErrNotImplemented, toType)
	}
	return fn, nil
}

func (r *CastRegistry) CanCast(from, to arrow.DataType) bool {
	if arrow.TypeEqual(from, to) {
		return true
	}

	fn, ok := r.table[to.ID()]
	if !ok {
		return false
	}
	for _, id := range fn.inputIDs {
		if from.ID() == id {
			return true
		}
	}
	return false
}

func castFromNull(ctx *functions.KernelCtx, batch *functions.ExecBatch, out compute.Datum) error {
	output := out.(*compute.ArrayDatum)
	arr := array.MakeArrayOfNull(ctx.Ctx.Allocator(), output.Value.DataType(), int(batch.Length))
	defer arr.Release()

	output.Value.Release()
	arr.Data().Retain()
	output.Value = arr.Data()
	return nil
}

func addCommonCasts(outType functions.OutputType, fn *CastFunction) {
	kernel := functions.NewScalarKernel([]functions.InputType{functions.NewExactInput(arrow.Null, compute.ShapeAny)}, outType, castFromNull, nil)
	kernel.NullHandling = functions.NullComputeNoPrealloc
	kernel.MemAlloc = functions.MemNoPrealloc
	if err := fn.AddKernel(arrow.NULL, kernel); err != nil {
		panic(err)
	}
}

// RegisterScalarCasts adds the "cast" meta function, which forwards to
// the cast function of the requested output type.
func RegisterScalarCasts(reg *functions.FunctionRegistry) *CastRegistry {
	casts := NewCastRegistry()
	fn := functions.NewMetaFunction("cast", functions.Unary(), castDoc, func(ctx context.Context, args []compute.Datum, opts compute.FunctionOptions) (compute.Datum, error) {
		castOpts, err := optionsOf[compute.CastOptions](opts)
		if err != nil || castOpts.ToType == nil {
			return nil, fmt.Errorf("%w: cast requires options with a ToType", compute.ErrInvalidOptions)
		}

		if arrow.TypeEqual(args[0].(compute.ArrayLikeDatum).Type(), castOpts.ToType) {
			return compute.NewDatum(args[0]), nil
		}

		fn, err := casts.GetCastFunction(castOpts.ToType)
		if err != nil {
			return nil, err
		}
		return functions.ExecuteFunction(ctx, fn, args, castOpts)
	})
	mustAdd(reg, &fn)
	return casts
}
