package domain

import "errors"

var (
	ErrNotFound            = errors.New("resource not found")
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrFileTooLarge        = errors.New("file exceeds maximum allowed size")
	ErrEmptyBatch          = errors.New("batch contains no files")
	ErrBatchTooLarge       = errors.New("batch exceeds maximum file count")
	ErrMalformedPayload    = errors.New("generation output is not a parseable payload")
	ErrStoreWrite          = errors.New("record store write failed")
	ErrGeneratorExhausted  = errors.New("generation service unavailable")
	ErrNoRecords           = errors.New("no records have been ingested")
)
