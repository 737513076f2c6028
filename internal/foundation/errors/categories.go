package errors

import "maps"

// ErrorCategory selects the exit code and the log level of a failure.
type ErrorCategory string

const (
	CategoryConfig     ErrorCategory = "config"      // site or __config__.json, missing __page__.html
	CategoryValidation ErrorCategory = "validation"  // bad CLI input
	CategoryNotFound   ErrorCategory = "not_found"   // configuration file absent
	CategoryTemplate   ErrorCategory = "template"    // parse or execute
	CategorySortKey    ErrorCategory = "sort_key"    // listing entry without a usable order key
	CategoryFileSystem ErrorCategory = "filesystem"  // read, write, copy, rename
	CategoryHistory    ErrorCategory = "history"     // build ledger
	CategoryRuntime    ErrorCategory = "runtime"     // cancellation
	CategoryInternal   ErrorCategory = "internal"
)

type ErrorSeverity string

const (
	SeverityFatal   ErrorSeverity = "fatal"
	SeverityError   ErrorSeverity = "error"
	SeverityWarning ErrorSeverity = "warning"
	SeverityInfo    ErrorSeverity = "info"
)

// ErrorContext carries the source path, template text and similar details
// attached to a failure.
type ErrorContext map[string]any

func (c ErrorContext) Set(key string, value any) ErrorContext {
	if c == nil {
		c = make(ErrorContext)
	}
	c[key] = value
	return c
}

func (c ErrorContext) Get(key string) (any, bool) {
	value, ok := c[key]
	return value, ok
}

func (c ErrorContext) GetString(key string) (string, bool) {
	str, ok := c[key].(string)
	return str, ok
}

// Merge returns a new context; keys in other win.
func (c ErrorContext) Merge(other ErrorContext) ErrorContext {
	result := make(ErrorContext, len(c)+len(other))
	maps.Copy(result, c)
	maps.Copy(result, other)
	return result
}
