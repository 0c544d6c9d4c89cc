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
	"github.com/ursa-labs/arrow/go/arrow/compute/exec/internal"
)

var strptimeDoc = functions.FunctionDoc{
	Summary: "Parse timestamps",
	Desc: "For each string in `strings`, parse it as a timestamp.\n" +
		"The timestamp unit and the expected string pattern must be given\n" +
		"in StrptimeOptions. Null inputs emit null. Strings that do not\n" +
		"match the pattern are an error.",
	ArgNames:        []string{"strings"},
	OptionsType:     "StrptimeOptions",
	OptionsRequired: true,
}

func initStrptime(_ *functions.KernelCtx, args functions.KernelInitArgs) (functions.KernelState, error) {
	opts, err := optionsOf[compute.StrptimeOptions](args.Options)
	if err != nil {
		return nil, err
	}

	switch opts.Unit {
	case arrow.Second, arrow.Millisecond, arrow.Microsecond, arrow.Nanosecond:
	default:
		return nil, fmt.Errorf("%w: invalid strptime unit %d", compute.ErrInvalidOptions, opts.Unit)
	}

	layout, err := internal.TranslateStrptime(opts.Format)
	if err != nil {
		return nil, err
	}
	return &internal.StrptimeState{Layout: layout, Unit: opts.Unit}, nil
}

func resolveStrptime(ctx *functions.KernelCtx, args []compute.ValueDescr) (compute.ValueDescr, error) {
	state := ctx.State.(*internal.StrptimeState)
	return compute.ValueDescr{Type: &arrow.TimestampType{Unit: state.Unit}, Shape: args[0].Shape}, nil
}

// RegisterScalarStrptime adds strptime for string and binary input.
func RegisterScalarStrptime(reg *functions.FunctionRegistry) {
	fn := functions.NewScalarFunction("strptime", functions.Unary(), strptimeDoc, nil)
	out := functions.NewOutputTypeResolver(resolveStrptime)
	for _, dt := range baseBinaryTypes {
		if err := fn.AddNewKernel(unaryInput(dt), out, internal.ExecStrptime, initStrptime); err != nil {
			panic(err)
		}
	}
	mustAdd(reg, &fn)
}

// RegisterAll adds every kernel of this package to reg and returns the
// cast table backing the "cast" function.
func RegisterAll(reg *functions.FunctionRegistry) *CastRegistry {
	casts := RegisterScalarCasts(reg)
	RegisterScalarArithmetic(reg)
	RegisterScalarComparison(reg)
	RegisterScalarBoolean(reg)
	RegisterScalarSetLookup(reg)
	RegisterScalarStrptime(reg)
	return casts
}
