package transport

import "errors"

// Sentinel errors returned by this package, usable with errors.Is.
var (
	ErrConnectionLost = errors.New("ptpip: connection lost")
	ErrReceiveTimeout = errors.New("ptpip: receive timed out")
	ErrAlreadyClosed  = errors.New("ptpip: connection already closed")
)
