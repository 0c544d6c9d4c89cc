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
	"errors"
	"fmt"
	"time"

	"github.com/apache/arrow/go/v13/arrow"
	"github.com/apache/arrow/go/v13/arrow/array"
	"github.com/apache/arrow/go/v13/arrow/bitutil"
	"github.com/apache/arrow/go/v13/arrow/memory"
	"github.com/apache/arrow/go/v13/arrow/scalar"
	"github.com/ursa-labs/arrow/go/arrow/compute"
	"golang.org/x/sync/errgroup"
)

// MinParallelBatchSize is the smallest batch the executor will cut an
// input into in order to spread it across goroutines.
const MinParallelBatchSize int64 = 4096

type execBatchIterator struct {
	args         []compute.Datum
	chunkIdxes   []int
	chunkPos     []int64
	pos, length  int64
	maxChunksize int64
}

func checkLengths(args []compute.Datum) (int64, error) {
	length := int64(1)
	lengthSet := false
	for _, a := range args {
		switch arg := a.(type) {
		case *compute.ScalarDatum:
			continue
		case compute.ArrayLikeDatum:
			if !lengthSet {
				length = arg.Len()
				lengthSet = true
			} else if length != arg.Len() {
				return 0, fmt.Errorf("%w: got lengths %d and %d", compute.ErrLengthMismatch, length, arg.Len())
			}
		default:
			return 0, fmt.Errorf("%w: batch iteration only works with scalar, array and chunked array args", compute.ErrInvalid)
		}
	}
	return length, nil
}

func newExecBatchIterator(args []compute.Datum, maxChunksize int64) (*execBatchIterator, error) {
	length, err := checkLengths(args)
	if err != nil {
		return nil, err
	}

	if maxChunksize < 1 {
		maxChunksize = 1
	}
	if maxChunksize > length && length > 0 {
		maxChunksize = length
	}
	return &execBatchIterator{
		args:         args,
		chunkIdxes:   make([]int, len(args)),
		chunkPos:     make([]int64, len(args)),
		length:       length,
		maxChunksize: maxChunksize,
	}, nil
}

// next fills batch with the next slice of the arguments. Chunked
// arguments with differing chunk layouts are cut at the nearest chunk
// boundary of any of them, so every value in a batch is a contiguous
// slice of a single chunk.
func (ebi *execBatchIterator) next(batch *ExecBatch) bool {
	if ebi.pos == ebi.length {
		return false
	}

	itrsize := min(ebi.length-ebi.pos, ebi.maxChunksize)
	for i := 0; i < len(ebi.args) && itrsize > 0; i++ {
		arg, ok := ebi.args[i].(*compute.ChunkedDatum)
		if !ok {
			continue
		}

		var currentChunk arrow.Array
		for {
			currentChunk = arg.Value.Chunk(ebi.chunkIdxes[i])
			if ebi.chunkPos[i] == int64(currentChunk.Len()) {
				ebi.chunkPos[i] = 0
				ebi.chunkIdxes[i]++
				continue
			}
			break
		}
		itrsize = min(int64(currentChunk.Len())-ebi.chunkPos[i], itrsize)
	}

	batch.Values = make([]compute.Datum, len(ebi.args))
	batch.Length = itrsize
	for i, a := range ebi.args {
		switch arg := a.(type) {
		case *compute.ScalarDatum:
			batch.Values[i] = compute.NewDatum(arg.Value)
		case *compute.ArrayDatum:
			if ebi.pos == 0 && itrsize == int64(arg.Value.Len()) {
				batch.Values[i] = compute.NewDatum(arg.Value)
				continue
			}
			sliceData := array.NewSliceData(arg.Value, ebi.pos, itrsize+ebi.pos)
			batch.Values[i] = &compute.ArrayDatum{Value: sliceData}
		case *compute.ChunkedDatum:
			chunk := arg.Value.Chunk(ebi.chunkIdxes[i])
			sliceData := array.NewSliceData(chunk.Data(), ebi.chunkPos[i], ebi.chunkPos[i]+itrsize)
			batch.Values[i] = &compute.ArrayDatum{Value: sliceData}
			ebi.chunkPos[i] += itrsize
		}
	}
	ebi.pos += itrsize
	return true
}

// checkOptions rejects missing required options and options belonging
// to a different function family.
func checkOptions(fn Function, opts compute.FunctionOptions) error {
	doc := fn.Doc()
	switch {
	case opts == nil:
		if doc.OptionsRequired {
			return fmt.Errorf("%w: function '%s' cannot be called without options", compute.ErrInvalidOptions, fn.Name())
		}
	case doc.OptionsType == "":
		return fmt.Errorf("%w: function '%s' does not accept options, got %s",
			compute.ErrInvalidOptions, fn.Name(), opts.TypeName())
	case opts.TypeName() != doc.OptionsType:
		return fmt.Errorf("%w: function '%s' expects %s, got %s",
			compute.ErrInvalidOptions, fn.Name(), doc.OptionsType, opts.TypeName())
	}
	return nil
}

func checkAllValues(vals []compute.Datum) error {
	for _, v := range vals {
		if _, ok := v.(compute.ArrayLikeDatum); !ok {
			return fmt.Errorf("%w: tried executing function with non-value type %s", compute.ErrInvalid, v)
		}
	}
	return nil
}

func allScalar(vals []compute.Datum) bool {
	for _, v := range vals {
		if v.Kind() != compute.KindScalar {
			return false
		}
	}
	return len(vals) > 0
}

func haveChunkedArray(values []compute.Datum) bool {
	for _, v := range values {
		if v.Kind() == compute.KindChunked {
			return true
		}
	}
	return false
}

func callLength(args []compute.Datum) int64 {
	var length int64
	for _, a := range args {
		if a.Len() > length {
			length = a.Len()
		}
	}
	return length
}

func argKinds(args []compute.Datum) []string {
	out := make([]string, len(args))
	for i, a := range args {
		out[i] = a.Kind().String()
	}
	return out
}

func releaseAll(values []compute.Datum) {
	for _, v := range values {
		if v != nil {
			v.Release()
		}
	}
}

// ExecuteFunction runs fn over args using the ExecCtx carried by ctx,
// or a default one if there is none.
func ExecuteFunction(ctx context.Context, fn Function, args []compute.Datum, opts compute.FunctionOptions) (out compute.Datum, err error) {
	ectx := GetExecCtx(ctx)
	if ectx == nil {
		ectx = NewExecCtx()
		ctx = SetExecCtx(ctx, ectx)
	}

	var (
		logger = ectx.logger().WithValues("function", fn.Name())
		length = callLength(args)
		start  = time.Now()
	)
	defer func() {
		ectx.metrics().ObserveExecution(fn.Name(), length, time.Since(start), err)
		if err != nil {
			logger.V(1).Error(err, "function execution failed")
		}
	}()

	if err = checkOptions(fn, opts); err != nil {
		return nil, err
	}

	if ef, ok := fn.(ExecutableFunc); ok {
		return ef.Execute(ctx, args, opts)
	}

	if opts == nil {
		opts = fn.DefaultOptions()
	}
	return executeFunctionImpl(ctx, ectx, fn, args, opts)
}

func executeFunctionImpl(ctx context.Context, ectx *ExecCtx, fn Function, args []compute.Datum, opts compute.FunctionOptions) (compute.Datum, error) {
	if err := checkAllValues(args); err != nil {
		return nil, err
	}
	if _, err := checkLengths(args); err != nil {
		return nil, fmt.Errorf("function '%s': %w", fn.Name(), err)
	}

	inputDescrs := make([]compute.ValueDescr, len(args))
	for i, a := range args {
		inputDescrs[i] = a.(compute.ArrayLikeDatum).Descr()
	}

	kernel, err := fn.DispatchBest(inputDescrs)
	if err != nil {
		return nil, err
	}

	args, err = implicitCast(ctx, ectx, fn, args, inputDescrs)
	if err != nil {
		return nil, err
	}
	defer releaseAll(args)

	kctx := &KernelCtx{Ctx: ectx}
	initArgs := KernelInitArgs{Kernel: kernel, Inputs: inputDescrs, Options: opts}
	if init := kernel.GetInit(); init != nil {
		kctx.State, err = init(kctx, initArgs)
		if err != nil {
			return nil, fmt.Errorf("function '%s': %w", fn.Name(), err)
		}
	}

	if fn.Kind() != FuncScalarKind {
		return nil, fmt.Errorf("%w: direct execution of non-scalar function '%s'", compute.ErrNotImplemented, fn.Name())
	}

	scalarInputs := allScalar(args)
	if scalarInputs {
		// evaluate scalars as length 1 arrays, and read the result back
		if args, err = scalarsToArrays(args, ectx.Allocator()); err != nil {
			return nil, err
		}
		defer releaseAll(args)
	}

	var sexec scalarExecutor
	if err := sexec.init(kctx, initArgs); err != nil {
		return nil, err
	}

	ectx.logger().V(1).Info("executing function", "function", fn.Name(),
		"kernel", kernel.GetSignature().String(), "args", argKinds(args), "length", callLength(args))

	outputs, err := sexec.execute(ctx, args)
	if err != nil {
		return nil, fmt.Errorf("function '%s': %w", fn.Name(), err)
	}

	final, err := sexec.wrapResults(args, outputs)
	if err != nil || !scalarInputs {
		return final, err
	}

	defer final.Release()
	arr := final.(*compute.ArrayDatum).MakeArray()
	defer arr.Release()
	sc, err := scalar.GetScalar(arr, 0)
	if err != nil {
		return nil, err
	}
	return &compute.ScalarDatum{Value: sc}, nil
}

func scalarsToArrays(args []compute.Datum, mem memory.Allocator) ([]compute.Datum, error) {
	out := make([]compute.Datum, 0, len(args))
	for _, a := range args {
		arr, err := scalar.MakeArrayFromScalar(a.(*compute.ScalarDatum).Value, 1, mem)
		if err != nil {
			releaseAll(out)
			return nil, err
		}
		out = append(out, &compute.ArrayDatum{Value: arr.Data()})
	}
	return out, nil
}

// implicitCast returns new references to args, casting those whose
// type differs from the type chosen by DispatchBest.
func implicitCast(ctx context.Context, ectx *ExecCtx, fn Function, args []compute.Datum, descrs []compute.ValueDescr) ([]compute.Datum, error) {
	out := make([]compute.Datum, 0, len(args))
	for i, a := range args {
		argType := a.(compute.ArrayLikeDatum).Type()
		if arrow.TypeEqual(argType, descrs[i].Type) {
			out = append(out, compute.NewDatum(a))
			continue
		}

		if ectx.Registry == nil {
			releaseAll(out)
			return nil, fmt.Errorf("%w: implicit cast of argument %d of '%s' requires a function registry",
				compute.ErrNotImplemented, i, fn.Name())
		}

		castFn, err := ectx.Registry.GetFunction("cast")
		if err != nil {
			releaseAll(out)
			return nil, err
		}

		ectx.logger().V(1).Info("inserting implicit cast", "function", fn.Name(),
			"arg", i, "from", argType.String(), "to", descrs[i].Type.String())
		casted, err := ExecuteFunction(ctx, castFn, []compute.Datum{a}, compute.SafeCastOptions(descrs[i].Type))
		switch {
		case errors.Is(err, compute.ErrInvalid):
			// a safe cast only fails on values the promoted type can't hold
			releaseAll(out)
			return nil, fmt.Errorf("%w: function '%s': argument %d has values that do not fit the promoted type %s",
				compute.ErrOverflow, fn.Name(), i, descrs[i].Type)
		case err != nil:
			releaseAll(out)
			return nil, fmt.Errorf("function '%s': implicit cast of argument %d: %w", fn.Name(), i, err)
		}
		out = append(out, casted)
	}
	return out, nil
}

type bufferPrealloc struct {
	bitWidth, addedLength int
}

func allocDataBuffer(ctx *KernelCtx, length int64, bitWidth int) *memory.Buffer {
	if bitWidth == 1 {
		return ctx.AllocateBitmap(length)
	}

	bufferSize := bitutil.BytesForBits(length * int64(bitWidth))
	return ctx.Allocate(int(bufferSize))
}

func computeDataPrealloc(dt arrow.DataType, widths []bufferPrealloc) []bufferPrealloc {
	if fixed, ok := dt.(arrow.FixedWidthDataType); ok && dt.ID() != arrow.NULL {
		return append(widths, bufferPrealloc{bitWidth: fixed.BitWidth()})
	}

	switch dt.ID() {
	case arrow.BINARY, arrow.STRING, arrow.LIST, arrow.MAP:
		return append(widths, bufferPrealloc{bitWidth: 32, addedLength: 1})
	}
	return widths
}

type scalarExecutor struct {
	ctx              *KernelCtx
	kernel           Kernel
	outDescr         compute.ValueDescr
	outNumBuffers    int
	validityPrealloc bool
	dataPrealloc     []bufferPrealloc
}

func (s *scalarExecutor) execCtx() *ExecCtx { return s.ctx.Ctx }

func (s *scalarExecutor) init(ctx *KernelCtx, args KernelInitArgs) (err error) {
	s.ctx = ctx
	s.kernel = args.Kernel
	s.outDescr, err = s.kernel.GetSignature().OutputType().Resolve(s.ctx, args.Inputs)
	return
}

func (s *scalarExecutor) setupPrealloc(args []compute.Datum) {
	s.outNumBuffers = len(s.outDescr.Type.Layout().Buffers)
	s.validityPrealloc = false
	if s.outDescr.Type.ID() != arrow.NULL {
		switch s.kernel.GetNullHandling() {
		case NullComputedPrealloc:
			s.validityPrealloc = true
		case NullIntersection:
			for _, arg := range args {
				if getNullGeneralized(arg) != nullsAllValid {
					s.validityPrealloc = true
					break
				}
			}
		}
	}

	s.dataPrealloc = s.dataPrealloc[:0]
	if s.kernel.GetMemAlloc() == MemPrealloc {
		s.dataPrealloc = computeDataPrealloc(s.outDescr.Type, s.dataPrealloc)
	}
}

// batchSize caps the configured chunk size so that a parallel context
// produces at least one batch per goroutine.
func (s *scalarExecutor) batchSize(length int64) int64 {
	size := s.execCtx().ChunkSize
	if size <= 0 {
		size = length
	}

	p := int64(s.execCtx().Parallelism)
	if p > 1 && s.kernel.IsParallelizable() && length > MinParallelBatchSize {
		per := max((length+p-1)/p, MinParallelBatchSize)
		size = min(size, per)
	}
	return size
}

func (s *scalarExecutor) prepareOutput(length int) *compute.ArrayDatum {
	buffers := make([]*memory.Buffer, s.outNumBuffers)
	nulls := 0

	if s.validityPrealloc {
		buffers[0] = s.ctx.AllocateBitmap(int64(length))
		nulls = array.UnknownNullCount
	}
	for i, dp := range s.dataPrealloc {
		if dp.bitWidth >= 0 {
			buffers[i+1] = allocDataBuffer(s.ctx, int64(length+dp.addedLength), dp.bitWidth)
		}
	}

	data := array.NewData(s.outDescr.Type, length, buffers, nil, nulls, 0)
	for _, b := range buffers {
		if b != nil {
			b.Release()
		}
	}
	return &compute.ArrayDatum{Value: data}
}

func (s *scalarExecutor) executeBatch(batch *ExecBatch) (compute.Datum, error) {
	result := s.prepareOutput(int(batch.Length))
	outArr := result.Value.(*array.Data)

	switch {
	case s.outDescr.Type.ID() == arrow.NULL:
		outArr.SetNullN(outArr.Len())
	case s.kernel.GetNullHandling() == NullIntersection && s.validityPrealloc:
		if err := propagateNulls(batch, outArr); err != nil {
			result.Release()
			return nil, err
		}
	}

	if err := s.kernel.Execute(s.ctx, batch, result); err != nil {
		result.Release()
		return nil, err
	}

	if s.kernel.GetNullHandling() != NullComputeNoPrealloc {
		if data, ok := result.Value.(*array.Data); ok && data.Buffers()[0] != nil {
			data.SetNullN(data.Len() - bitutil.CountSetBits(data.Buffers()[0].Bytes(), data.Offset(), data.Len()))
		}
	}
	return result, nil
}

// execute runs every batch of args, concurrently when the context
// allows it. The returned outputs are in batch order. If any batch
// fails, everything produced so far is released.
func (s *scalarExecutor) execute(ctx context.Context, args []compute.Datum) ([]compute.Datum, error) {
	length, err := checkLengths(args)
	if err != nil {
		return nil, err
	}

	s.setupPrealloc(args)
	itr, err := newExecBatchIterator(args, s.batchSize(length))
	if err != nil {
		return nil, err
	}

	batches := make([]*ExecBatch, 0)
	for {
		batch := &ExecBatch{}
		if !itr.next(batch) {
			break
		}
		batches = append(batches, batch)
	}
	defer func() {
		for _, b := range batches {
			b.release()
		}
	}()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	outputs := make([]compute.Datum, len(batches))
	runBatch := func(i int) (err error) {
		outputs[i], err = s.executeBatch(batches[i])
		return
	}

	parallelism := s.execCtx().Parallelism
	parallel := parallelism > 1 && len(batches) > 1 && s.kernel.IsParallelizable()
	s.execCtx().logger().V(1).Info("executing batches", "batches", len(batches), "parallel", parallel)
	if parallel {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(parallelism)
		for i := range batches {
			i := i
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				return runBatch(i)
			})
		}
		err = g.Wait()
	} else {
		for i := range batches {
			if err = runBatch(i); err != nil {
				break
			}
		}
	}

	if err != nil {
		releaseAll(outputs)
		return nil, err
	}
	return outputs, nil
}

// wrapResults assembles the batch outputs into a single datum: a chunked
// array if any input was chunked, a single array otherwise. It takes
// ownership of outputs.
func (s *scalarExecutor) wrapResults(inputs, outputs []compute.Datum) (compute.Datum, error) {
	switch {
	case haveChunkedArray(inputs):
		defer releaseAll(outputs)
		chunks := make([]arrow.Array, 0, len(outputs))
		for _, o := range outputs {
			if o.Len() == 0 {
				continue
			}
			arr := o.(*compute.ArrayDatum).MakeArray()
			defer arr.Release()
			chunks = append(chunks, arr)
		}
		chunked := arrow.NewChunked(s.outDescr.Type, chunks)
		return &compute.ChunkedDatum{Value: chunked}, nil
	case len(outputs) == 1:
		return outputs[0], nil
	case len(outputs) == 0:
		arr := array.MakeArrayOfNull(s.execCtx().Allocator(), s.outDescr.Type, 0)
		defer arr.Release()
		return compute.NewDatum(arr), nil
	default:
		defer releaseAll(outputs)
		arrs := make([]arrow.Array, len(outputs))
		for i, o := range outputs {
			arrs[i] = o.(*compute.ArrayDatum).MakeArray()
			defer arrs[i].Release()
		}
		concat, err := array.Concatenate(arrs, s.execCtx().Allocator())
		if err != nil {
			return nil, err
		}
		defer concat.Release()
		return compute.NewDatum(concat), nil
	}
}
