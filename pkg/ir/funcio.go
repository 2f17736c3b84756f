// Copyright Veridise Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0
package ir

import "fmt"

// FuncIOKind distinguishes the different variable identities a backend can
// refer to.
type FuncIOKind uint8

const (
	// FUNC_ARG identifies an input argument of a function by position.
	FUNC_ARG FuncIOKind = iota
	// FUNC_FIELD identifies an output field of a function by position.
	FUNC_FIELD
	// FUNC_FIXED identifies an absolute fixed cell.
	FUNC_FIXED
	// FUNC_ADVICE identifies an absolute advice cell.
	FUNC_ADVICE
	// FUNC_TEMP identifies a backend-managed temporary.
	FUNC_TEMP
	// FUNC_CALL_OUTPUT identifies the n-th output of a numbered call.
	FUNC_CALL_OUTPUT
	// FUNC_TABLE_LOOKUP identifies a variable materializing one table column
	// of one lookup at one row.
	FUNC_TABLE_LOOKUP
)

// FuncIO is the symbolic identity of a variable flowing in or out of a
// generated function.  It is a comparable value type so it can be used
// directly as a map key.
type FuncIO struct {
	kind FuncIOKind
	// Payload fields, whose interpretation depends on the kind.
	a, b, c, d uint
}

// Arg constructs the identity of the n-th input argument.
func Arg(n uint) FuncIO {
	return FuncIO{kind: FUNC_ARG, a: n}
}

// Field constructs the identity of the n-th output field.
func Field(n uint) FuncIO {
	return FuncIO{kind: FUNC_FIELD, a: n}
}

// FixedCell constructs the identity of an absolute fixed cell.
func FixedCell(col uint, row uint) FuncIO {
	return FuncIO{kind: FUNC_FIXED, a: col, b: row}
}

// AdviceCell constructs the identity of an absolute advice cell.
func AdviceCell(col uint, row uint) FuncIO {
	return FuncIO{kind: FUNC_ADVICE, a: col, b: row}
}

// Temp constructs the identity of a backend temporary.
func Temp(id uint) FuncIO {
	return FuncIO{kind: FUNC_TEMP, a: id}
}

// CallOutput constructs the identity of the n-th output of the given call.
func CallOutput(call uint, n uint) FuncIO {
	return FuncIO{kind: FUNC_CALL_OUTPUT, a: call, b: n}
}

// TableLookup constructs the identity of the idx-th use of a lookup table
// column at a given row.
func TableLookup(lookup uint, col uint, row uint, idx uint) FuncIO {
	return FuncIO{kind: FUNC_TABLE_LOOKUP, a: lookup, b: col, c: row, d: idx}
}

// Kind returns the kind of identity this is.
func (f FuncIO) Kind() FuncIOKind { return f.kind }

// ArgNo returns the argument position, if this is an argument.
func (f FuncIO) ArgNo() (uint, bool) {
	return f.a, f.kind == FUNC_ARG
}

// FieldNo returns the field position, if this is an output field.
func (f FuncIO) FieldNo() (uint, bool) {
	return f.a, f.kind == FUNC_FIELD
}

// CellCoords returns the (column, row) coordinates, if this is a fixed or
// advice cell.
func (f FuncIO) CellCoords() (uint, uint, bool) {
	return f.a, f.b, f.kind == FUNC_FIXED || f.kind == FUNC_ADVICE
}

// TempID returns the temporary identifier, if this is a temporary.
func (f FuncIO) TempID() (uint, bool) {
	return f.a, f.kind == FUNC_TEMP
}

// CallOutputNo returns the (call, output) pair, if this is a call output.
func (f FuncIO) CallOutputNo() (uint, uint, bool) {
	return f.a, f.b, f.kind == FUNC_CALL_OUTPUT
}

// OffsetBy shifts an argument or field position by the given amount, which is
// used when numbering lifted cells after the declared inputs.  Other kinds
// are returned unchanged.
func (f FuncIO) OffsetBy(offset uint) FuncIO {
	switch f.kind {
	case FUNC_ARG, FUNC_FIELD:
		f.a += offset
	}
	//
	return f
}

func (f FuncIO) String() string {
	switch f.kind {
	case FUNC_ARG:
		return fmt.Sprintf("arg(%d)", f.a)
	case FUNC_FIELD:
		return fmt.Sprintf("field(%d)", f.a)
	case FUNC_FIXED:
		return fmt.Sprintf("fixed(%d, %d)", f.a, f.b)
	case FUNC_ADVICE:
		return fmt.Sprintf("advice(%d, %d)", f.a, f.b)
	case FUNC_TEMP:
		return fmt.Sprintf("temp(%d)", f.a)
	case FUNC_CALL_OUTPUT:
		return fmt.Sprintf("callout(%d, %d)", f.a, f.b)
	case FUNC_TABLE_LOOKUP:
		return fmt.Sprintf("lookup(%d, %d, %d, %d)", f.a, f.b, f.c, f.d)
	}
	//
	panic(fmt.Sprintf("unknown variable kind %d", f.kind))
}
