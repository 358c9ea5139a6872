// Package errors provides standardized error messaging for rangeloop
package errors

import (
	stderrors "errors"
	"fmt"
	"runtime"
	"sort"
	"strings"
)

// ErrorCategory represents different categories of errors
type ErrorCategory string

const (
	// CategoryInternal marks invariant violations inside a pass. The unit being
	// compiled must be abandoned.
	CategoryInternal   ErrorCategory = "INTERNAL"
	CategoryRuntime    ErrorCategory = "RUNTIME"
	CategoryDecode     ErrorCategory = "DECODE"
	CategoryValidation ErrorCategory = "VALIDATION"
)

// StandardError provides a consistent error format
type StandardError struct {
	Category ErrorCategory
	Code     string
	Message  string
	Context  map[string]interface{}
	Caller   string
}

// Error implements the error interface
func (e *StandardError) Error() string {
	if len(e.Context) == 0 {
		return fmt.Sprintf("[%s:%s] %s (caller: %s)", e.Category, e.Code, e.Message, e.Caller)
	}

	keys := make([]string, 0, len(e.Context))
	for k := range e.Context {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, e.Context[k]))
	}
	return fmt.Sprintf("[%s:%s] %s {%s} (caller: %s)", e.Category, e.Code, e.Message, strings.Join(parts, ", "), e.Caller)
}

// NewStandardError creates a new standardized error
func NewStandardError(category ErrorCategory, code, message string, context map[string]interface{}) *StandardError {
	pc, _, _, ok := runtime.Caller(1)
	caller := "unknown"
	if ok {
		if fn := runtime.FuncForPC(pc); fn != nil {
			caller = fn.Name()
		}
	}

	return &StandardError{
		Category: category,
		Code:     code,
		Message:  message,
		Context:  context,
		Caller:   caller,
	}
}

// IsCategory reports whether err wraps a StandardError of the given category.
func IsCategory(err error, category ErrorCategory) bool {
	var se *StandardError
	if stderrors.As(err, &se) {
		return se.Category == category
	}
	return false
}

// Common error constructors

// InternalCompilerError reports a bookkeeping or ordering defect in a pass.
func InternalCompilerError(pass, message string, context map[string]interface{}) *StandardError {
	if context == nil {
		context = map[string]interface{}{}
	}
	context["pass"] = pass
	return NewStandardError(CategoryInternal, "INTERNAL_COMPILER_ERROR", message, context)
}

// StepNotPositive is raised at run time by the progression step check.
func StepNotPositive(step int64) *StandardError {
	return NewStandardError(CategoryRuntime, "STEP_NOT_POSITIVE",
		fmt.Sprintf("Step must be positive, was: %d.", step),
		map[string]interface{}{"step": step})
}

// StepZero is raised when a last element is requested for a zero step.
func StepZero() *StandardError {
	return NewStandardError(CategoryRuntime, "STEP_ZERO", "Step is zero.", nil)
}

// Decode reports a malformed or incompatible serialized unit.
func Decode(unit, message string) *StandardError {
	return NewStandardError(CategoryDecode, "BAD_UNIT",
		message,
		map[string]interface{}{"unit": unit})
}

// InvalidConfig reports a configuration field that failed validation.
func InvalidConfig(field, message string) *StandardError {
	return NewStandardError(CategoryValidation, "INVALID_CONFIG",
		fmt.Sprintf("%s: %s", field, message),
		map[string]interface{}{"field": field})
}
