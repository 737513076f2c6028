// Package errors classifies mksite failures. The category picks the CLI exit
// code; the context carries the failing source path and, for template
// failures, the composed template text.
//
//	err := errors.TemplateError("failed to render template").
//		WithCause(execErr).
//		WithContext("source", path).
//		Build()
package errors
