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

package main

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/apache/arrow/go/v13/arrow"
	"github.com/apache/arrow/go/v13/arrow/array"
	"github.com/apache/arrow/go/v13/arrow/memory"
	"github.com/apache/arrow/go/v13/arrow/scalar"
	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"github.com/ursa-labs/arrow/go/arrow/compute"
	"github.com/ursa-labs/arrow/go/arrow/compute/exec"
	"github.com/ursa-labs/arrow/go/arrow/compute/exec/functions"
)

var typeNames = map[string]arrow.DataType{
	"int8":          arrow.PrimitiveTypes.Int8,
	"int16":         arrow.PrimitiveTypes.Int16,
	"int32":         arrow.PrimitiveTypes.Int32,
	"int64":         arrow.PrimitiveTypes.Int64,
	"uint8":         arrow.PrimitiveTypes.Uint8,
	"uint16":        arrow.PrimitiveTypes.Uint16,
	"uint32":        arrow.PrimitiveTypes.Uint32,
	"uint64":        arrow.PrimitiveTypes.Uint64,
	"float32":       arrow.PrimitiveTypes.Float32,
	"float64":       arrow.PrimitiveTypes.Float64,
	"bool":          arrow.FixedWidthTypes.Boolean,
	"string":        arrow.BinaryTypes.String,
	"binary":        arrow.BinaryTypes.Binary,
	"date32":        arrow.FixedWidthTypes.Date32,
	"date64":        arrow.FixedWidthTypes.Date64,
	"timestamp[s]":  arrow.FixedWidthTypes.Timestamp_s,
	"timestamp[ms]": arrow.FixedWidthTypes.Timestamp_ms,
	"timestamp[us]": arrow.FixedWidthTypes.Timestamp_us,
	"timestamp[ns]": arrow.FixedWidthTypes.Timestamp_ns,
}

var unitNames = map[string]arrow.TimeUnit{
	"s":  arrow.Second,
	"ms": arrow.Millisecond,
	"us": arrow.Microsecond,
	"ns": arrow.Nanosecond,
}

func parseType(name string) (arrow.DataType, error) {
	if dt, ok := typeNames[name]; ok {
		return dt, nil
	}
	return nil, fmt.Errorf("unknown type %q", name)
}

type app struct {
	out io.Writer

	configPath  string
	chunkSize   int64
	parallelism int
	logLevel    string
	typeName    string

	mem  memory.Allocator
	ctx  context.Context
	sync func()
}

func newRootCmd(out io.Writer) *cobra.Command {
	a := &app{out: out, mem: memory.DefaultAllocator, sync: func() {}}

	root := &cobra.Command{
		Use:   "arrowcompute",
		Short: "Run vectorized compute functions over JSON arrays",
		Long: "arrowcompute parses its arguments as JSON arrays (or single JSON values,\n" +
			"which are broadcast as scalars), runs a compute function and prints the\n" +
			"result as JSON.",
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
		PersistentPostRun: func(*cobra.Command, []string) { a.sync() },
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "path to a YAML configuration file")
	flags.Int64Var(&a.chunkSize, "chunk-size", 0, "maximum number of rows per batch")
	flags.IntVar(&a.parallelism, "parallelism", 0, "number of batches executed concurrently")
	flags.StringVar(&a.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	flags.StringVar(&a.typeName, "type", "int64", "type of the input values")

	for _, b := range []struct {
		use, short string
		fn         func(context.Context, compute.Datum, compute.Datum) (compute.Datum, error)
		typed      bool
	}{
		{"add", "Add two arrays element-wise", exec.Add, true},
		{"subtract", "Subtract the second array from the first", exec.Subtract, true},
		{"multiply", "Multiply two arrays element-wise", exec.Multiply, true},
		{"and", "Logical and, null if either side is null", exec.And, false},
		{"or", "Logical or, null if either side is null", exec.Or, false},
		{"xor", "Logical xor, null if either side is null", exec.Xor, false},
		{"and-kleene", "Logical and with Kleene logic", exec.KleeneAnd, false},
		{"or-kleene", "Logical or with Kleene logic", exec.KleeneOr, false},
	} {
		root.AddCommand(a.binaryCmd(b.use, b.short, b.fn, b.typed))
	}

	root.AddCommand(
		a.compareCmd(),
		a.invertCmd(),
		a.setLookupCmd("is-in", "Report whether each value occurs in the value set", exec.IsInWithOptions),
		a.setLookupCmd("match", "Return the index of each value in the value set", exec.MatchWithOptions),
		a.strptimeCmd(),
		a.functionsCmd(),
	)
	return root
}

func (a *app) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(a.configPath)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("chunk-size") {
		cfg.ChunkSize = a.chunkSize
	}
	if flags.Changed("parallelism") {
		cfg.Parallelism = a.parallelism
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = a.logLevel
	}
	if err := cfg.validate(); err != nil {
		return err
	}

	logger, sync, err := newLogger(cfg)
	if err != nil {
		return err
	}
	a.sync = sync

	ectx := exec.DefaultExecCtx(
		functions.WithAllocator(a.mem),
		functions.WithChunkSize(cfg.ChunkSize),
		functions.WithParallelism(cfg.Parallelism),
		functions.WithLogger(logger.WithName("arrowcompute")),
	)
	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	a.ctx = functions.SetExecCtx(parent, ectx)
	return nil
}

// parseDatum reads data as a JSON array of dt, or as a single JSON
// value which becomes a scalar.
func (a *app) parseDatum(dt arrow.DataType, data string) (compute.Datum, error) {
	trimmed := strings.TrimSpace(data)
	isArray := strings.HasPrefix(trimmed, "[")
	if !isArray {
		trimmed = "[" + trimmed + "]"
	}

	arr, _, err := array.FromJSON(a.mem, dt, strings.NewReader(trimmed), array.WithUseNumber())
	if err != nil {
		return nil, fmt.Errorf("parsing %q as %s: %w", data, dt, err)
	}
	defer arr.Release()

	if isArray {
		return compute.NewDatum(arr), nil
	}
	if arr.Len() != 1 {
		return nil, fmt.Errorf("expected a single value, got %q", data)
	}
	sc, err := scalar.GetScalar(arr, 0)
	if err != nil {
		return nil, err
	}
	return &compute.ScalarDatum{Value: sc}, nil
}

func (a *app) parseArgs(dt arrow.DataType, args []string) ([]compute.Datum, error) {
	out := make([]compute.Datum, 0, len(args))
	for _, s := range args {
		d, err := a.parseDatum(dt, s)
		if err != nil {
			for _, o := range out {
				o.Release()
			}
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

func (a *app) inputType(typed bool) (arrow.DataType, error) {
	if !typed {
		return arrow.FixedWidthTypes.Boolean, nil
	}
	return parseType(a.typeName)
}

// write prints result as JSON, releasing it.
func (a *app) write(result compute.Datum) error {
	defer result.Release()

	var v interface{}
	switch r := result.(type) {
	case *compute.ScalarDatum:
		arr, err := scalar.MakeArrayFromScalar(r.Value, 1, a.mem)
		if err != nil {
			return err
		}
		defer arr.Release()
		v = arr.GetOneForMarshal(0)
	case *compute.ArrayDatum:
		arr := r.MakeArray()
		defer arr.Release()
		v = arr
	case *compute.ChunkedDatum:
		chunks := r.Chunks()
		defer func() {
			for _, c := range chunks {
				c.Release()
			}
		}()
		v = chunks
	default:
		return fmt.Errorf("unexpected result %s", result)
	}

	enc := json.NewEncoder(a.out)
	return enc.Encode(v)
}

func (a *app) run(args []compute.Datum, fn func() (compute.Datum, error)) error {
	defer func() {
		for _, d := range args {
			d.Release()
		}
	}()

	out, err := fn()
	if err != nil {
		return err
	}
	return a.write(out)
}

func (a *app) binaryCmd(use, short string, fn func(context.Context, compute.Datum, compute.Datum) (compute.Datum, error), typed bool) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <left> <right>",
		Short: short,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			dt, err := a.inputType(typed)
			if err != nil {
				return err
			}
			vals, err := a.parseArgs(dt, args)
			if err != nil {
				return err
			}
			return a.run(vals, func() (compute.Datum, error) { return fn(a.ctx, vals[0], vals[1]) })
		},
	}
}

func (a *app) compareCmd() *cobra.Command {
	var op string
	cmd := &cobra.Command{
		Use:   "compare <left> <right>",
		Short: "Compare two arrays element-wise",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			operator, err := compute.ParseCompareOperator(op)
			if err != nil {
				return err
			}
			dt, err := parseType(a.typeName)
			if err != nil {
				return err
			}
			vals, err := a.parseArgs(dt, args)
			if err != nil {
				return err
			}
			return a.run(vals, func() (compute.Datum, error) {
				return exec.Compare(a.ctx, vals[0], vals[1], compute.CompareOptions{Op: operator})
			})
		},
	}
	cmd.Flags().StringVar(&op, "op", "equal", "comparison operator (equal, not_equal, greater, greater_equal, less, less_equal)")
	return cmd
}

func (a *app) invertCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "invert <values>",
		Short: "Invert boolean values",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			vals, err := a.parseArgs(arrow.FixedWidthTypes.Boolean, args)
			if err != nil {
				return err
			}
			return a.run(vals, func() (compute.Datum, error) { return exec.Invert(a.ctx, vals[0]) })
		},
	}
}

func (a *app) setLookupCmd(use, short string, fn func(context.Context, compute.Datum, compute.SetLookupOptions) (compute.Datum, error)) *cobra.Command {
	var skipNulls bool
	cmd := &cobra.Command{
		Use:   use + " <values> <value-set>",
		Short: short,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			dt, err := parseType(a.typeName)
			if err != nil {
				return err
			}
			vals, err := a.parseArgs(dt, args)
			if err != nil {
				return err
			}
			return a.run(vals, func() (compute.Datum, error) {
				return fn(a.ctx, vals[0], compute.SetLookupOptions{ValueSet: vals[1], SkipNulls: skipNulls})
			})
		},
	}
	cmd.Flags().BoolVar(&skipNulls, "skip-nulls", false, "ignore nulls in the value set")
	return cmd
}

func (a *app) strptimeCmd() *cobra.Command {
	var format, unit string
	cmd := &cobra.Command{
		Use:   "strptime <values>",
		Short: "Parse strings as timestamps",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tu, ok := unitNames[unit]
			if !ok {
				return fmt.Errorf("unknown time unit %q", unit)
			}
			vals, err := a.parseArgs(arrow.BinaryTypes.String, args)
			if err != nil {
				return err
			}
			return a.run(vals, func() (compute.Datum, error) {
				return exec.Strptime(a.ctx, vals[0], compute.StrptimeOptions{Format: format, Unit: tu})
			})
		},
	}
	cmd.Flags().StringVar(&format, "format", "%Y-%m-%dT%H:%M:%S", "strptime format")
	cmd.Flags().StringVar(&unit, "unit", "s", "unit of the output timestamps (s, ms, us, ns)")
	return cmd
}

func (a *app) functionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "functions",
		Short: "List the registered compute functions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			reg := exec.DefaultRegistry()
			names := reg.GetFunctionNames()
			sort.Strings(names)
			for _, name := range names {
				fn, err := reg.GetFunction(name)
				if err != nil {
					return err
				}
				if _, err := fmt.Fprintf(a.out, "%s\t%s\n", name, fn.Doc().Summary); err != nil {
					return err
				}
			}
			return nil
		},
	}
}
