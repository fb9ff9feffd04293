// Package errors provides the classified error primitives used across runbuild.
//
// A ClassifiedError carries a category, a severity, a retry strategy and
// structured context next to the message and the wrapped cause. Errors are
// created through the fluent ErrorBuilder:
//
//	err := errors.FileSystemError("copy runtime asset failed").
//		WithCause(cause).
//		WithContext("path", dst).
//		Build()
//
// The CLIErrorAdapter maps a classified error to an exit code and a
// user-facing message.
package errors
