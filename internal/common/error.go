// Package common defines sentinel errors shared by the storage, ledger and
// transport layers. Callers should match them with errors.Is.
package common

import "errors"

var (
	// Storage-level errors.
	ErrorNotFound           = errors.New("not found")
	ErrorCorrupted          = errors.New("corrupted data")
	ErrorUnsupportedStorage = errors.New("unsupported storage kind")

	// Request-level errors.
	ErrorInvalidArgument = errors.New("invalid argument")
	ErrorInternal        = errors.New("internal error")

	// Configuration errors.
	ErrorMissingToken = errors.New("bot token is not configured")
)
