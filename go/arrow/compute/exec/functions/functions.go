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

package functions

import (
	"context"
	"fmt"
	"strings"

	"github.com/ursa-labs/arrow/go/arrow/compute"
)

type Arity struct {
	NumArgs int
	VarArgs bool
}

func Unary() Arity  { return Arity{1, false} }
func Binary() Arity { return Arity{2, false} }

type FunctionKind int8

const (
	FuncScalarKind FunctionKind = iota
	FuncMetaKind
)

type FunctionDoc struct {
	Summary         string
	Desc            string
	ArgNames        []string
	OptionsType     string
	OptionsRequired bool
}

type Function interface {
	Name() string
	Kind() FunctionKind
	Arity() Arity
	Doc() FunctionDoc
	DispatchExact([]compute.ValueDescr) (Kernel, error)
	// DispatchBest finds a kernel for the given descriptors, possibly
	// after replacing some of them with the types the corresponding
	// arguments must be implicitly cast to.
	DispatchBest([]compute.ValueDescr) (Kernel, error)
	DefaultOptions() compute.FunctionOptions
}

// ExecutableFunc is implemented by functions which do not run kernels
// directly and instead control their own execution.
type ExecutableFunc interface {
	Function
	Execute(ctx context.Context, args []compute.Datum, opts compute.FunctionOptions) (compute.Datum, error)
}

type baseFunc struct {
	name    string
	kind    FunctionKind
	arity   Arity
	options compute.FunctionOptions
	doc     FunctionDoc
}

func (b *baseFunc) Name() string                            { return b.name }
func (b *baseFunc) Kind() FunctionKind                      { return b.kind }
func (b *baseFunc) Arity() Arity                            { return b.arity }
func (b *baseFunc) Doc() FunctionDoc                        { return b.doc }
func (b *baseFunc) DefaultOptions() compute.FunctionOptions { return b.options }

func validArity(f *baseFunc, numArgs int, label string) error {
	switch {
	case f.arity.VarArgs && numArgs < f.arity.NumArgs:
		return fmt.Errorf("%w: varargs function '%s' needs at least %d arguments, but %s only %d",
			compute.ErrInvalid, f.name, f.arity.NumArgs, label, numArgs)
	case !f.arity.VarArgs && numArgs != f.arity.NumArgs:
		return fmt.Errorf("%w: function '%s' accepts %d args but %s %d",
			compute.ErrInvalid, f.name, f.arity.NumArgs, label, numArgs)
	default:
		return nil
	}
}

func (b *baseFunc) CheckArityTypes(in []InputType) error {
	return validArity(b, len(in), "kernel accepts")
}
func (b *baseFunc) CheckArityDescr(in []compute.ValueDescr) error {
	return validArity(b, len(in), "attempted to look up kernel(s) with")
}

type MetaFunction struct {
	baseFunc

	impl func(context.Context, []compute.Datum, compute.FunctionOptions) (compute.Datum, error)
}

func NewMetaFunction(name string, arity Arity, doc FunctionDoc, impl func(context.Context, []compute.Datum, compute.FunctionOptions) (compute.Datum, error)) MetaFunction {
	return MetaFunction{
		baseFunc: baseFunc{name: name, arity: arity, doc: doc, kind: FuncMetaKind},
		impl:     impl,
	}
}

func (mf *MetaFunction) DispatchExact([]compute.ValueDescr) (Kernel, error) {
	return nil, fmt.Errorf("%w: dispatch for metafunction '%s'", compute.ErrNotImplemented, mf.name)
}

func (mf *MetaFunction) DispatchBest(descrs []compute.ValueDescr) (Kernel, error) {
	return mf.DispatchExact(descrs)
}

func (mf *MetaFunction) Execute(ctx context.Context, args []compute.Datum, opts compute.FunctionOptions) (compute.Datum, error) {
	if err := validArity(&mf.baseFunc, len(args), "attempted to execute with"); err != nil {
		return nil, err
	}

	if opts == nil {
		opts = mf.options
	}

	return mf.impl(ctx, args, opts)
}

// ImplicitCastRule rewrites argument descriptors in place to the types
// the arguments should be cast to before dispatch. It reports false
// when it does not apply to the given descriptors.
type ImplicitCastRule func([]compute.ValueDescr) bool

type ScalarFunction struct {
	baseFunc

	kernels  []ScalarKernel
	castRule ImplicitCastRule
}

func NewScalarFunction(name string, arity Arity, doc FunctionDoc, defaultOpts compute.FunctionOptions) ScalarFunction {
	return ScalarFunction{
		baseFunc: baseFunc{name: name, arity: arity, doc: doc, options: defaultOpts, kind: FuncScalarKind},
		kernels:  make([]ScalarKernel, 0),
	}
}

func (sf *ScalarFunction) Kernels() []ScalarKernel { return sf.kernels }

func (sf *ScalarFunction) SetImplicitCast(rule ImplicitCastRule) { sf.castRule = rule }

func (sf *ScalarFunction) AddNewKernel(in []InputType, out OutputType, exec ArrayKernelExec, init KernelInit) error {
	if err := sf.CheckArityTypes(in); err != nil {
		return err
	}

	if sf.arity.VarArgs && len(in) != 1 {
		return fmt.Errorf("%w: scalar varargs signatures must have exactly one input type", compute.ErrInvalid)
	}
	sf.kernels = append(sf.kernels, NewScalarKernel(in, out, exec, init))
	return nil
}

func (sf *ScalarFunction) AddKernel(kernel ScalarKernel) error {
	if err := sf.CheckArityTypes(kernel.Signature.inTypes); err != nil {
		return err
	}

	if sf.arity.VarArgs && !kernel.Signature.varArgs {
		return fmt.Errorf("%w: function accepts varargs but kernel signature does not", compute.ErrInvalid)
	}
	sf.kernels = append(sf.kernels, kernel)
	return nil
}

func (sf *ScalarFunction) DispatchExact(vals []compute.ValueDescr) (Kernel, error) {
	if err := sf.CheckArityDescr(vals); err != nil {
		return nil, err
	}

	for i := range sf.kernels {
		if sf.kernels[i].Signature.MatchesInputs(vals) {
			return &sf.kernels[i], nil
		}
	}

	return nil, fmt.Errorf("%w: function '%s' has no kernel matching input types (%s)",
		compute.ErrType, sf.name, descrsString(vals))
}

func (sf *ScalarFunction) DispatchBest(vals []compute.ValueDescr) (Kernel, error) {
	if k, err := sf.DispatchExact(vals); err == nil {
		return k, nil
	}

	if sf.castRule != nil {
		candidate := make([]compute.ValueDescr, len(vals))
		copy(candidate, vals)
		if sf.castRule(candidate) {
			k, err := sf.DispatchExact(candidate)
			if err == nil {
				copy(vals, candidate)
				return k, nil
			}
		}
	}

	return sf.DispatchExact(vals)
}

func descrsString(vals []compute.ValueDescr) string {
	names := make([]string, len(vals))
	for i, v := range vals {
		names[i] = v.Type.String()
	}
	return strings.Join(names, ", ")
}

var (
	_ Function       = (*ScalarFunction)(nil)
	_ ExecutableFunc = (*MetaFunction)(nil)
)
