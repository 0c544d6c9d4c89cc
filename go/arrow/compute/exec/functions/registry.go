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
	"fmt"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/ursa-labs/arrow/go/arrow/compute"
)

// FunctionRegistry maps function names, and their aliases, to
// functions. A frozen registry rejects every modification and is safe
// to share between any number of ExecCtx values.
type FunctionRegistry struct {
	nameToFunc sync.Map
	frozen     atomic.Bool
}

func (fr *FunctionRegistry) checkMutable(name string) error {
	if fr.frozen.Load() {
		return fmt.Errorf("%w: cannot register '%s', function registry is frozen", compute.ErrInvalid, name)
	}
	return nil
}

func (fr *FunctionRegistry) AddFunction(fn Function, allowOverwrite bool) error {
	if err := fr.checkMutable(fn.Name()); err != nil {
		return err
	}

	if allowOverwrite {
		fr.nameToFunc.Store(fn.Name(), fn)
		return nil
	}

	_, loaded := fr.nameToFunc.LoadOrStore(fn.Name(), fn)
	if loaded {
		return fmt.Errorf("%w: already have a registered function with name: %s", compute.ErrInvalid, fn.Name())
	}
	return nil
}

// AddAlias makes target resolve to the function registered as source.
func (fr *FunctionRegistry) AddAlias(target, source string) error {
	if err := fr.checkMutable(target); err != nil {
		return err
	}

	fn, ok := fr.nameToFunc.Load(source)
	if !ok {
		return fmt.Errorf("%w: no function registered with name: %s", compute.ErrInvalid, source)
	}
	fr.nameToFunc.Store(target, fn)
	return nil
}

func (fr *FunctionRegistry) GetFunction(name string) (Function, error) {
	if fn, ok := fr.nameToFunc.Load(name); ok {
		return fn.(Function), nil
	}
	return nil, fmt.Errorf("%w: no function registered with name: %s", compute.ErrInvalid, name)
}

func (fr *FunctionRegistry) GetFunctionNames() []string {
	out := make([]string, 0)
	fr.nameToFunc.Range(func(key, value any) bool {
		out = append(out, key.(string))
		return true
	})
	sort.Strings(out)
	return out
}

func (fr *FunctionRegistry) NumFunctions() (n int) {
	fr.nameToFunc.Range(func(_, _ any) bool {
		n++
		return true
	})
	return
}

// Freeze makes the registry read-only.
func (fr *FunctionRegistry) Freeze() { fr.frozen.Store(true) }

func (fr *FunctionRegistry) Frozen() bool { return fr.frozen.Load() }
