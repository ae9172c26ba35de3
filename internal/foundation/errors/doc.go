// Package errors provides the classified error type shared by the rsttools packages.
//
// A ClassifiedError carries a category, a severity and structured context. The
// CLIErrorAdapter maps categories to process exit codes and renders errors for the
// terminal.
//
// Example usage:
//
//	err := errors.NewError(errors.CategoryAlreadyExists, "destination file must not exist").
//		WithContext("path", dst).
//		Build()
package errors
