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

package compute

import (
	"github.com/apache/arrow/go/v13/arrow"
	"golang.org/x/xerrors"
)

// Errors returned by compute functions. They are always wrapped with
// context about the failing function, match them with errors.Is.
var (
	// ErrLengthMismatch is returned when array arguments differ in length.
	ErrLengthMismatch = xerrors.New("array arguments must all be the same length")
	// ErrInvalidOptions is returned for missing, foreign or out of range
	// function options.
	ErrInvalidOptions = xerrors.New("invalid function options")
	// ErrOverflow is returned when a checked integer operation overflows.
	ErrOverflow = xerrors.New("overflow")

	ErrType           = arrow.ErrType
	ErrInvalid        = arrow.ErrInvalid
	ErrNotImplemented = arrow.ErrNotImplemented
)
