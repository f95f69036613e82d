package db

import "errors"

// Sentinel errors for database operations.
var (
	ErrKeyNotFound = errors.New("db: key not found")
	ErrUnsupported = errors.New("db: unsupported operation")
)

// Op constants name the failing store command for error context.
const (
	OpPing          = "ping"
	OpFind          = "find"
	OpCount         = "countDocuments"
	OpAggregate     = "aggregate"
	OpReplace       = "replaceOne"
	OpCreateIndexes = "createIndexes"
	OpDecode        = "decode"
	OpGet           = "GET"
	OpSet           = "SET"
	OpUnlink        = "UNLINK"
	OpScan          = "SCAN"
	OpGetObject     = "GetObject"
)

// Error wraps an underlying error with the operation name for diagnostics.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string { return e.Op + ": " + e.Err.Error() }
func (e *Error) Unwrap() error { return e.Err }
