package errors

// Package errors provides sentinel errors for documentation discovery operations.

import "errors"

var (
	// ErrDocsPathNotFound indicates the documentation base directory does not exist.
	ErrDocsPathNotFound = errors.New("documentation path not found")

	// ErrDocsPathNotDir indicates the documentation base path is not a directory.
	ErrDocsPathNotDir = errors.New("documentation path is not a directory")

	// ErrDocsDirWalkFailed indicates filesystem traversal of the documentation tree failed.
	ErrDocsDirWalkFailed = errors.New("documentation directory walk failed")

	// ErrFileReadFailed indicates reading content from a discovered documentation file failed.
	ErrFileReadFailed = errors.New("documentation file read failed")

	// ErrInvalidRelativePath indicates calculating a path relative to the base failed.
	ErrInvalidRelativePath = errors.New("invalid relative path calculation")
)
