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
	"math"
	"strings"

	"github.com/apache/arrow/go/v13/arrow"
	"github.com/apache/arrow/go/v13/arrow/bitutil"
	"github.com/apache/arrow/go/v13/arrow/memory"
	"github.com/go-logr/logr"
	"github.com/ursa-labs/arrow/go/arrow/compute"
)

// ExecBatch is a slice of the arguments to a function, all array values
// in it having the same length.
type ExecBatch struct {
	Values []compute.Datum
	Length int64
}

func (e *ExecBatch) release() {
	for _, v := range e.Values {
		v.Release()
	}
	e.Values = nil
}

type execCtxKey struct{}

func SetExecCtx(ctx context.Context, ectx *ExecCtx) context.Context {
	return context.WithValue(ctx, execCtxKey{}, ectx)
}

func GetExecCtx(ctx context.Context) *ExecCtx {
	if ec, ok := ctx.Value(execCtxKey{}).(*ExecCtx); ok {
		return ec
	}
	return nil
}

// ExecCtx carries everything a function call needs besides its
// arguments. It is never modified by function execution, so a single
// ExecCtx may be shared by concurrent calls.
type ExecCtx struct {
	Mem       memory.Allocator
	ChunkSize int64
	// Parallelism bounds the number of batches executed concurrently.
	// Values below 2 execute batches serially.
	Parallelism int
	Registry    *FunctionRegistry
	Logger      logr.Logger
	Metrics     compute.MetricsCollector
}

type ExecOption func(*ExecCtx)

func WithAllocator(mem memory.Allocator) ExecOption {
	return func(e *ExecCtx) { e.Mem = mem }
}

func WithChunkSize(n int64) ExecOption {
	return func(e *ExecCtx) { e.ChunkSize = n }
}

func WithParallelism(n int) ExecOption {
	return func(e *ExecCtx) { e.Parallelism = n }
}

func WithRegistry(reg *FunctionRegistry) ExecOption {
	return func(e *ExecCtx) { e.Registry = reg }
}

func WithLogger(logger logr.Logger) ExecOption {
	return func(e *ExecCtx) { e.Logger = logger }
}

func WithMetrics(m compute.MetricsCollector) ExecOption {
	return func(e *ExecCtx) { e.Metrics = m }
}

// NewExecCtx builds an ExecCtx with the default allocator, unbounded
// chunk size and serial execution, then applies opts.
func NewExecCtx(opts ...ExecOption) *ExecCtx {
	ectx := &ExecCtx{
		Mem:         memory.DefaultAllocator,
		ChunkSize:   math.MaxInt64,
		Parallelism: 1,
		Logger:      logr.Discard(),
		Metrics:     compute.NoopMetrics{},
	}
	for _, o := range opts {
		o(ectx)
	}
	return ectx
}

func (e *ExecCtx) Allocator() memory.Allocator {
	if e.Mem == nil {
		return memory.DefaultAllocator
	}
	return e.Mem
}

func (e *ExecCtx) logger() logr.Logger {
	if e.Logger.GetSink() == nil {
		return logr.Discard()
	}
	return e.Logger
}

func (e *ExecCtx) metrics() compute.MetricsCollector {
	if e.Metrics == nil {
		return compute.NoopMetrics{}
	}
	return e.Metrics
}

type KernelCtx struct {
	Ctx   *ExecCtx
	State KernelState
}

func (k *KernelCtx) Allocate(nb int) *memory.Buffer {
	buf := memory.NewResizableBuffer(k.Ctx.Allocator())
	buf.Resize(nb)
	return buf
}

func (k *KernelCtx) AllocateBitmap(nbits int64) *memory.Buffer {
	nbytes := bitutil.BytesForBits(nbits)
	return k.Allocate(int(nbytes))
}

type TypeMatcher interface {
	fmt.Stringer
	Matches(arrow.DataType) bool
	Equals(TypeMatcher) bool
}

type sameIDMatcher struct {
	id arrow.Type
}

func (s *sameIDMatcher) Matches(t arrow.DataType) bool { return s.id == t.ID() }
func (s *sameIDMatcher) String() string {
	return "Type::" + s.id.String()
}
func (s *sameIDMatcher) Equals(t TypeMatcher) bool {
	if s == t {
		return true
	}

	if m, ok := t.(*sameIDMatcher); ok {
		return s.id == m.id
	}
	return false
}

type TypeKind int8

const (
	AnyType TypeKind = iota
	ExactType
	UseTypeMatcher
)

type InputType struct {
	kind        TypeKind
	shape       compute.ValueShape
	dt          arrow.DataType
	typeMatcher TypeMatcher
}

func NewExactInput(dt arrow.DataType, shape compute.ValueShape) InputType {
	return InputType{kind: ExactType, shape: shape, dt: dt}
}

func NewInputMatcher(matcher TypeMatcher, shape compute.ValueShape) InputType {
	return InputType{kind: UseTypeMatcher, shape: shape, typeMatcher: matcher}
}

// NewInputIDType matches any type with the given id regardless of its
// parameters, e.g. every timestamp unit.
func NewInputIDType(id arrow.Type) InputType {
	return NewInputMatcher(&sameIDMatcher{id}, compute.ShapeAny)
}

func (it InputType) Kind() TypeKind { return it.kind }

func (it InputType) String() string {
	switch it.kind {
	case ExactType:
		return it.dt.String()
	case UseTypeMatcher:
		return it.typeMatcher.String()
	default:
		return "any"
	}
}

func (it InputType) Matches(descr compute.ValueDescr) bool {
	if it.shape != compute.ShapeAny && it.shape != descr.Shape {
		return false
	}

	switch it.kind {
	case ExactType:
		return arrow.TypeEqual(it.dt, descr.Type)
	case UseTypeMatcher:
		return it.typeMatcher.Matches(descr.Type)
	default:
		return true
	}
}

type TypeResolver func(*KernelCtx, []compute.ValueDescr) (compute.ValueDescr, error)

type ResolveKind int8

const (
	ResolveFixed ResolveKind = iota
	ResolveComputed
)

type OutputType struct {
	kind     ResolveKind
	dt       arrow.DataType
	shape    compute.ValueShape
	resolver TypeResolver
}

func NewOutputType(dt arrow.DataType) OutputType {
	return OutputType{dt: dt, kind: ResolveFixed}
}

func NewOutputTypeResolver(resolver TypeResolver) OutputType {
	return OutputType{kind: ResolveComputed, resolver: resolver}
}

func (o OutputType) String() string {
	if o.kind == ResolveFixed {
		return o.dt.String()
	}
	return "computed"
}

func (o OutputType) Resolve(ctx *KernelCtx, args []compute.ValueDescr) (compute.ValueDescr, error) {
	broadcasted := compute.GetBroadcastShape(args)
	if o.kind == ResolveFixed {
		ret := compute.ValueDescr{Type: o.dt, Shape: o.shape}
		if o.shape == compute.ShapeAny {
			ret.Shape = broadcasted
		}
		return ret, nil
	}

	resolved, err := o.resolver(ctx, args)
	if err != nil {
		return compute.ValueDescr{}, err
	}
	if resolved.Shape == compute.ShapeAny {
		resolved.Shape = broadcasted
	}
	return resolved, nil
}

type KernelSig struct {
	inTypes []InputType
	outType OutputType
	varArgs bool
}

func NewKernelSig(in []InputType, out OutputType, varargs bool) *KernelSig {
	if varargs && len(in) == 0 {
		panic("functions: varargs kernel signature needs at least one input type")
	}
	return &KernelSig{
		inTypes: in,
		outType: out,
		varArgs: varargs,
	}
}

func (k *KernelSig) OutputType() OutputType { return k.outType }

func (k *KernelSig) InputTypes() []InputType { return k.inTypes }

func (k *KernelSig) String() string {
	var b strings.Builder
	b.WriteByte('(')
	for i, in := range k.inTypes {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(in.String())
	}
	if k.varArgs {
		b.WriteString("...")
	}
	b.WriteString(") -> ")
	b.WriteString(k.outType.String())
	return b.String()
}

func (k *KernelSig) MatchesInputs(args []compute.ValueDescr) bool {
	if k.varArgs {
		for i, arg := range args {
			idx := i
			if idx >= len(k.inTypes) {
				idx = len(k.inTypes) - 1
			}
			if !k.inTypes[idx].Matches(arg) {
				return false
			}
		}
		return true
	}

	if len(args) != len(k.inTypes) {
		return false
	}

	for i, arg := range args {
		if !k.inTypes[i].Matches(arg) {
			return false
		}
	}
	return true
}

// NullHandling selects who is responsible for the output validity.
type NullHandling int8

const (
	// NullIntersection: the executor writes the intersection of the
	// input validity bitmaps before the kernel runs.
	NullIntersection NullHandling = iota
	// NullComputedPrealloc: the executor allocates a validity bitmap and
	// the kernel fills it in.
	NullComputedPrealloc
	// NullComputeNoPrealloc: the kernel produces its own validity.
	NullComputeNoPrealloc
	// NullOutputNotNull: the output never has nulls.
	NullOutputNotNull
)

type MemAlloc int8

const (
	MemPrealloc MemAlloc = iota
	MemNoPrealloc
)

type KernelInitArgs struct {
	Kernel  Kernel
	Inputs  []compute.ValueDescr
	Options compute.FunctionOptions
}

type KernelState interface{}

// KernelInit validates options and builds whatever state a kernel needs
// for one call. The state must be safe for concurrent reads since
// batches may execute in parallel.
type KernelInit func(*KernelCtx, KernelInitArgs) (KernelState, error)

type kernel struct {
	Init           KernelInit
	Parallelizable bool
	Signature      *KernelSig
}

func (k *kernel) GetSignature() *KernelSig { return k.Signature }
func (k *kernel) GetInit() KernelInit      { return k.Init }
func (k *kernel) IsParallelizable() bool   { return k.Parallelizable }

func newKernel(inTypes []InputType, out OutputType, init KernelInit) kernel {
	return kernel{
		Init:           init,
		Signature:      NewKernelSig(inTypes, out, false),
		Parallelizable: true,
	}
}

// ArrayKernelExec computes one batch. out is an *compute.ArrayDatum
// whose buffers were preallocated according to the kernel's MemAlloc
// and NullHandling.
type ArrayKernelExec func(*KernelCtx, *ExecBatch, compute.Datum) error

type ScalarKernel struct {
	kernel

	Exec         ArrayKernelExec
	NullHandling NullHandling
	MemAlloc     MemAlloc
}

func (s *ScalarKernel) GetNullHandling() NullHandling { return s.NullHandling }

func (s *ScalarKernel) GetMemAlloc() MemAlloc { return s.MemAlloc }

func (s *ScalarKernel) Execute(ctx *KernelCtx, batch *ExecBatch, result compute.Datum) error {
	return s.Exec(ctx, batch, result)
}

func NewScalarKernel(in []InputType, out OutputType, exec ArrayKernelExec, init KernelInit) ScalarKernel {
	return ScalarKernel{
		kernel:       newKernel(in, out, init),
		Exec:         exec,
		NullHandling: NullIntersection,
		MemAlloc:     MemPrealloc,
	}
}

type Kernel interface {
	GetInit() KernelInit
	GetSignature() *KernelSig
	GetNullHandling() NullHandling
	GetMemAlloc() MemAlloc
	IsParallelizable() bool
	Execute(*KernelCtx, *ExecBatch, compute.Datum) error
}
