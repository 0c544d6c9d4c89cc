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
	"github.com/ursa-labs/arrow/go/arrow/compute/exec/functions"
	"github.com/ursa-labs/arrow/go/arrow/compute/exec/internal"
)

var (
	invertDoc = functions.FunctionDoc{
		Summary:  "Invert boolean values",
		ArgNames: []string{"values"},
	}
	andDoc = binaryDoc("Logical 'and' boolean values",
		"When any of the inputs is null the result is null.\nUse and_kleene for Kleene logic.")
	orDoc = binaryDoc("Logical 'or' boolean values",
		"When any of the inputs is null the result is null.\nUse or_kleene for Kleene logic.")
	xorDoc = binaryDoc("Logical 'xor' boolean values",
		"When any of the inputs is null the result is null.")
	andKleeneDoc = binaryDoc("Logical 'and' boolean values (Kleene logic)",
		"false and null is false, true and null is null.")
	orKleeneDoc = binaryDoc("Logical 'or' boolean values (Kleene logic)",
		"true or null is true, false or null is null.")
)

// RegisterScalarBoolean adds invert, and, or, xor with strict null
// propagation, and and_kleene, or_kleene with three-valued logic.
func RegisterScalarBoolean(reg *functions.FunctionRegistry) {
	boolType := arrow.FixedWidthTypes.Boolean
	boolOut := functions.NewOutputType(boolType)

	invert := functions.NewScalarFunction("invert", functions.Unary(), invertDoc, nil)
	invert.SetImplicitCast(castNullToBoolean)
	if err := invert.AddNewKernel(unaryInput(boolType), boolOut, internal.ExecInvert, nil); err != nil {
		panic(err)
	}
	mustAdd(reg, &invert)

	strict := []struct {
		name string
		doc  functions.FunctionDoc
		op   func(a, b bool) bool
	}{
		{"and", andDoc, func(a, b bool) bool { return a && b }},
		{"or", orDoc, func(a, b bool) bool { return a || b }},
		{"xor", xorDoc, func(a, b bool) bool { return a != b }},
	}
	for _, s := range strict {
		fn := functions.NewScalarFunction(s.name, functions.Binary(), s.doc, nil)
		fn.SetImplicitCast(castNullToBoolean)
		if err := fn.AddNewKernel(binaryInputs(boolType), boolOut, internal.ExecBooleanBinary(s.op), nil); err != nil {
			panic(err)
		}
		mustAdd(reg, &fn)
	}

	kleene := []struct {
		name, alias string
		doc         functions.FunctionDoc
		op          internal.KleeneOp
	}{
		{"and_kleene", "kleene_and", andKleeneDoc, internal.KleeneAnd},
		{"or_kleene", "kleene_or", orKleeneDoc, internal.KleeneOr},
	}
	for _, k := range kleene {
		fn := functions.NewScalarFunction(k.name, functions.Binary(), k.doc, nil)
		fn.SetImplicitCast(castNullToBoolean)
		kernel := functions.NewScalarKernel(binaryInputs(boolType), boolOut, internal.ExecKleene(k.op), nil)
		kernel.NullHandling = functions.NullComputedPrealloc
		if err := fn.AddKernel(kernel); err != nil {
			panic(err)
		}
		mustAdd(reg, &fn)
		mustAlias(reg, k.alias, k.name)
	}
}
