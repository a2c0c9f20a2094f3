package lisp

import "fmt"

// Conditions classify LError values.
const (
	CondError        = "error"
	CondUnboundSym   = "unbound-symbol"
	CondArity        = "arity-error"
	CondType         = "type-error"
	CondRedefinition = "redefinition-error"
	CondReserved     = "reserved-symbol"
	CondSyntax       = "syntax-error"
	CondStackHeight  = "stack-overflow"
)

// ErrorData is the container that backs LError values.  ErrorData
// implements the error interface so that lisp errors can leave the
// interpreter as go errors.
type ErrorData struct {
	Condition string
	Err       error
}

var _ error = (*ErrorData)(nil)

func (e *ErrorData) Error() string {
	return e.Err.Error()
}

// Unwrap returns the underlying go error.
func (e *ErrorData) Unwrap() error {
	return e.Err
}

// Error returns an LError with the generic condition "error".
func Error(err error) LVal {
	return ErrorCondition(CondError, err)
}

// ErrorCondition returns an LError with the given condition.
func ErrorCondition(condition string, err error) LVal {
	if condition == "" {
		condition = CondError
	}
	return LVal{
		LTypeData: Type(LError),
		Native:    &ErrorData{Condition: condition, Err: err},
	}
}

// Errorf returns an LError with the given condition and a formatted message.
func Errorf(condition string, format string, v ...interface{}) LVal {
	return ErrorCondition(condition, fmt.Errorf(format, v...))
}

// IsError returns true if v is LError.
func IsError(v LVal) bool {
	return v.Type() == LError
}

// GetError returns the ErrorData backing v.
// GetError returns false if v is not LError.
func GetError(v LVal) (*ErrorData, bool) {
	if v.Type() != LError {
		return nil, false
	}
	return v.Native.(*ErrorData), true
}

// GoError returns the error represented by v or nil if v is not LError.
func GoError(v LVal) error {
	data, ok := GetError(v)
	if !ok {
		return nil
	}
	return data
}
