// Package lisp defines the values manipulated by the interpreter.  An LVal is
// a small value type; composite data (pairs, functions, errors) is referenced
// through its Native field.
package lisp

import (
	"fmt"

	"github.com/luthersystems/yalp/pkg/symbol"
)

func panicf(format string, args ...interface{}) {
	panic(fmt.Sprintf(format, args...))
}

// LTypeData holds the type of an LVal.
type LTypeData uint32

// Type returns the LTypeData for an LType.
func Type(t LType) LTypeData {
	return LTypeData(t) << LTypeShift
}

// Type returns the LType stored in t.
func (t LTypeData) Type() LType {
	return LType((t & LTypeMask) >> LTypeShift)
}

func (t LTypeData) mustBeType(t2 LType) {
	if t.Type() != t2 {
		panicf("value is not type %v: %v", t2, t.Type())
	}
}

// LType is the type of an LVal
type LType uint8

const LTypeMax = 0xff
const LTypeShift = 0
const LTypeMask = LTypeMax << LTypeShift

const (
	// LNil is the absense of a value but also acts as an empty list.
	LNil LType = iota
	// LSymbol is a symbolic name.
	// Schema:
	// 	Data: symbol.ID value
	LSymbol
	// LInt is a go int value
	// Schema:
	// 	Data: int value
	LInt
	// LBool is an integer representing a boolean value
	// Schema:
	//  Data: 0x0 if false and 0x1 otherwise
	LBool
	// LCons is a container that forms a linked list termined by LNil
	// Schema:
	// 	Native: *ConsData
	LCons
	// LFun is a function, either a builtin or a closure.
	// Schema:
	// 	Native: *FunData
	LFun
	// LError is a runtime error
	// Schema:
	//  Native: *ErrorData
	LError
)

var ltypeStrings = []string{
	LNil:    "nil",
	LSymbol: "symbol",
	LInt:    "int",
	LBool:   "bool",
	LCons:   "pair",
	LFun:    "function",
	LError:  "error",
}

func (t LType) String() string {
	if int(t) >= len(ltypeStrings) {
		return fmt.Sprintf("INVALID(%d)", uint8(t))
	}
	return ltypeStrings[t]
}

// LVal is a lisp value.  The zero LVal is a valid LNil value.
type LVal struct {
	LTypeData
	Data   uint64
	Native interface{}
}

// Nil returns an LNil value
func Nil() LVal {
	return LVal{
		LTypeData: Type(LNil),
	}
}

// IsNil return true if v is LNil
func IsNil(v LVal) bool {
	return v.Type() == LNil
}

// Int returns an LInt value
func Int(x int) LVal {
	return LVal{
		LTypeData: Type(LInt),
		Data:      uint64(x),
	}
}

// GetInt returns the int value from v.
// GetInt returns false if v is not LInt.
func GetInt(v LVal) (int, bool) {
	if v.Type() != LInt {
		return 0, false
	}
	return int(v.Data), true
}

// Bool returns an LBool with the truth value of ok.
func Bool(ok bool) LVal {
	if ok {
		return True()
	}
	return False()
}

// True returns a true LBool value.
func True() LVal {
	return LVal{
		LTypeData: Type(LBool),
		Data:      1,
	}
}

// False returns a false LBool value.
func False() LVal {
	return LVal{
		LTypeData: Type(LBool),
		Data:      0,
	}
}

// GetBool returns the truth value of v.
// GetBool returns false as its second value if v is not LBool.
func GetBool(v LVal) (truth bool, ok bool) {
	if v.Type() != LBool {
		return false, false
	}
	return v.Data != 0, true
}

// Symbol returns an LSymbol value
func Symbol(id symbol.ID) LVal {
	return LVal{
		LTypeData: Type(LSymbol),
		Data:      uint64(id),
	}
}

// GetSymbol extracts the symbol.ID from v.  GetSymbol returns false if v is
// not a LSymbol.
func GetSymbol(v LVal) (symbol.ID, bool) {
	if v.Type() != LSymbol {
		return 0, false
	}
	return symbol.ID(v.Data), true
}

// Builtin is the go implementation of a primitive function.  Arguments are
// already evaluated.  A Builtin reports failure by returning an LError.
type Builtin func(args []LVal) LVal

// FunData is the container that backs LFun values.  A builtin has a non-nil
// Builtin.  A closure has Formals, a Body expression, and the lexical
// environment it was created in.
type FunData struct {
	Name    string
	Builtin Builtin
	Formals []symbol.ID
	Body    LVal
	// Env is the captured environment.  Its representation belongs to the
	// evaluator.
	Env interface{}
}

// IsBuiltin returns true if fun is implemented in go.
func (fun *FunData) IsBuiltin() bool {
	return fun.Builtin != nil
}

// Fun returns an LFun value backed by data.
func Fun(data *FunData) LVal {
	return LVal{
		LTypeData: Type(LFun),
		Native:    data,
	}
}

// GetFun returns the FunData backing v.
// GetFun returns false if v is not LFun.
func GetFun(v LVal) (*FunData, bool) {
	if v.Type() != LFun {
		return nil, false
	}
	return v.Native.(*FunData), true
}

// Equal returns true if v1 and v2 are the same atom.  Symbols compare by ID.
// Pairs and functions are equal only when they are physically the same
// object.
func Equal(v1 LVal, v2 LVal) bool {
	if v1.LTypeData != v2.LTypeData {
		return false
	}
	switch v1.Type() {
	case LNil:
		return true
	case LSymbol, LInt, LBool:
		return v1.Data == v2.Data
	case LCons:
		return v1.Native.(*ConsData) == v2.Native.(*ConsData)
	case LFun:
		return v1.Native.(*FunData) == v2.Native.(*FunData)
	default:
		return false
	}
}
