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

package kernels_test

import (
	"context"
	"strings"

	"github.com/apache/arrow/go/v13/arrow"
	"github.com/apache/arrow/go/v13/arrow/array"
	"github.com/apache/arrow/go/v13/arrow/memory"
	"github.com/apache/arrow/go/v13/arrow/scalar"
	"github.com/stretchr/testify/suite"
	"github.com/ursa-labs/arrow/go/arrow/compute"
	"github.com/ursa-labs/arrow/go/arrow/compute/exec/functions"
	"github.com/ursa-labs/arrow/go/arrow/compute/exec/kernels"
)

// kernelSuite runs every function through a registry holding all the
// kernels of the package, with a checked allocator per test.
type kernelSuite struct {
	suite.Suite

	registry *functions.FunctionRegistry
	mem      *memory.CheckedAllocator
	ectx     *functions.ExecCtx
	ctx      context.Context
}

func (ks *kernelSuite) SetupSuite() {
	ks.registry = &functions.FunctionRegistry{}
	kernels.RegisterAll(ks.registry)
	ks.registry.Freeze()
}

func (ks *kernelSuite) SetupTest() {
	ks.mem = memory.NewCheckedAllocator(memory.NewGoAllocator())
	ks.ectx = functions.NewExecCtx(functions.WithAllocator(ks.mem), functions.WithRegistry(ks.registry))
	ks.ctx = functions.SetExecCtx(context.Background(), ks.ectx)
}

func (ks *kernelSuite) TearDownTest() {
	ks.mem.AssertSize(ks.T(), 0)
}

func (ks *kernelSuite) array(dt arrow.DataType, data string) compute.Datum {
	arr, _, err := array.FromJSON(ks.mem, dt, strings.NewReader(data), array.WithUseNumber())
	ks.Require().NoError(err)
	defer arr.Release()
	return compute.NewDatum(arr)
}

func (ks *kernelSuite) chunked(dt arrow.DataType, chunks ...string) compute.Datum {
	arrs := make([]arrow.Array, len(chunks))
	for i, c := range chunks {
		arr, _, err := array.FromJSON(ks.mem, dt, strings.NewReader(c), array.WithUseNumber())
		ks.Require().NoError(err)
		defer arr.Release()
		arrs[i] = arr
	}
	chunked := arrow.NewChunked(dt, arrs)
	defer chunked.Release()
	return compute.NewDatum(chunked)
}

func (ks *kernelSuite) scalar(v interface{}) compute.Datum {
	return compute.NewDatum(v)
}

func (ks *kernelSuite) nullScalar(dt arrow.DataType) compute.Datum {
	return compute.NewDatum(scalar.MakeNullScalar(dt))
}

func (ks *kernelSuite) call(name string, args []compute.Datum, opts compute.FunctionOptions) (compute.Datum, error) {
	fn, err := ks.registry.GetFunction(name)
	ks.Require().NoError(err)
	return functions.ExecuteFunction(ks.ctx, fn, args, opts)
}

// check calls name and compares the result with expected. It releases
// args and expected.
func (ks *kernelSuite) check(name string, args []compute.Datum, opts compute.FunctionOptions, expected compute.Datum) {
	defer expected.Release()
	defer func() {
		for _, a := range args {
			a.Release()
		}
	}()

	out, err := ks.call(name, args, opts)
	ks.Require().NoError(err)
	defer out.Release()
	ks.Truef(expected.Equals(out), "%s(%s) = %s, expected %s", name, args, out, expected)
}

// checkFails calls name expecting an error matching target.
func (ks *kernelSuite) checkFails(name string, args []compute.Datum, opts compute.FunctionOptions, target error) {
	defer func() {
		for _, a := range args {
			a.Release()
		}
	}()

	out, err := ks.call(name, args, opts)
	if out != nil {
		out.Release()
	}
	ks.ErrorIs(err, target)
}

func datums(d ...compute.Datum) []compute.Datum { return d }
