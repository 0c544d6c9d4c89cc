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

package internal

import (
	"fmt"
	"strings"
	"time"

	"github.com/apache/arrow/go/v13/arrow"
	"github.com/ursa-labs/arrow/go/arrow/compute"
	"github.com/ursa-labs/arrow/go/arrow/compute/exec/functions"
)

var strptimeDirectives = map[byte]string{
	'Y': "2006",
	'y': "06",
	'm': "01",
	'd': "02",
	'e': "_2",
	'H': "15",
	'I': "03",
	'M': "04",
	'S': "05",
	'p': "PM",
	'b': "Jan",
	'h': "Jan",
	'B': "January",
	'a': "Mon",
	'A': "Monday",
	'j': "002",
	'z': "-0700",
	'Z': "MST",
	'F': "2006-01-02",
	'T': "15:04:05",
	'D': "01/02/06",
	'R': "15:04",
}

// tokens the time package would read as layout elements if they showed
// up in literal text
var layoutTokens = []string{"Jan", "Mon", "MST", "PM", "pm"}

// TranslateStrptime converts a C strptime format into a layout for
// time.Parse.
func TranslateStrptime(format string) (string, error) {
	var (
		layout  strings.Builder
		literal strings.Builder
	)

	flushLiteral := func() error {
		lit := literal.String()
		literal.Reset()
		if strings.ContainsAny(lit, "0123456789") {
			return fmt.Errorf("%w: strptime format %q has digits in literal text",
				compute.ErrInvalidOptions, format)
		}
		for _, tok := range layoutTokens {
			if strings.Contains(lit, tok) {
				return fmt.Errorf("%w: strptime format %q has ambiguous literal %q",
					compute.ErrInvalidOptions, format, tok)
			}
		}
		layout.WriteString(lit)
		return nil
	}

	for i := 0; i < len(format); i++ {
		c := format[i]
		if c != '%' {
			literal.WriteByte(c)
			continue
		}

		i++
		if i == len(format) {
			return "", fmt.Errorf("%w: strptime format %q ends with a lone '%%'",
				compute.ErrInvalidOptions, format)
		}

		d := format[i]
		switch d {
		case '%':
			literal.WriteByte('%')
			continue
		case 'f':
			lit := literal.String()
			if lit == "" || (lit[len(lit)-1] != '.' && lit[len(lit)-1] != ',') {
				return "", fmt.Errorf("%w: %%f must follow '.' or ',' in strptime format %q",
					compute.ErrInvalidOptions, format)
			}
			// time.Parse expects the separator as part of the fraction element
			literal.Reset()
			literal.WriteString(lit[:len(lit)-1])
			if err := flushLiteral(); err != nil {
				return "", err
			}
			layout.WriteByte(lit[len(lit)-1])
			layout.WriteString("999999999")
			continue
		}

		elem, ok := strptimeDirectives[d]
		if !ok {
			return "", fmt.Errorf("%w: unsupported strptime directive %%%c in %q",
				compute.ErrInvalidOptions, d, format)
		}
		if err := flushLiteral(); err != nil {
			return "", err
		}
		layout.WriteString(elem)
	}

	if err := flushLiteral(); err != nil {
		return "", err
	}
	return layout.String(), nil
}

// TimeToUnit converts t to a count of unit since the epoch.
func TimeToUnit(t time.Time, unit arrow.TimeUnit) int64 {
	switch unit {
	case arrow.Second:
		return t.Unix()
	case arrow.Millisecond:
		return t.UnixMilli()
	case arrow.Microsecond:
		return t.UnixMicro()
	default:
		return t.UnixNano()
	}
}

// StrptimeState is the kernel state of strptime, the translated layout
// and the unit of the output timestamps.
type StrptimeState struct {
	Layout string
	Unit   arrow.TimeUnit
}

func ExecStrptime(ctx *functions.KernelCtx, batch *functions.ExecBatch, out compute.Datum) error {
	state := ctx.State.(*StrptimeState)
	in := NewBinaryOperand(batch.Values[0])
	outData := out.(*compute.ArrayDatum).Value
	output := GetVals[int64](outData, 1)
	valid := NewValidity(outData)
	for i := range output {
		if !valid.IsValid(i) {
			continue
		}
		t, err := time.Parse(state.Layout, string(in.At(i)))
		if err != nil {
			return fmt.Errorf("%w: failed to parse string %q as timestamp: %s",
				compute.ErrInvalid, in.At(i), err)
		}
		output[i] = TimeToUnit(t, state.Unit)
	}
	return nil
}
