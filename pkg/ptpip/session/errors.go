package session

import (
	"errors"
	"fmt"

	"github.com/sonyfx/ptpipctl/pkg/ptpip/codec"
)

// Sentinel errors for kinds that carry no payload, usable with errors.Is.
var (
	ErrNotConnected  = errors.New("ptpip: session is not connected")
	ErrConnectFailed = errors.New("ptpip: failed to connect to camera")
)

// HandshakeFailed reports that a specific stage of the connection
// state machine did not complete as expected.
type HandshakeFailed struct {
	Stage  string
	Reason string
}

func (e *HandshakeFailed) Error() string {
	return fmt.Sprintf("ptpip: handshake failed at %s: %s", e.Stage, e.Reason)
}

// OperationFailed reports that the camera returned a PTP response code
// other than OK for an issued operation.
type OperationFailed struct {
	Opcode codec.Opcode
	Code   codec.ResponseCode
}

func (e *OperationFailed) Error() string {
	return fmt.Sprintf("ptpip: operation 0x%04x failed: %s (0x%04x)", uint16(e.Opcode), e.Code.Explain(), uint16(e.Code))
}

// ProtocolError reports a structural violation of the wire format that
// the parser or framer could not make sense of.
type ProtocolError struct {
	Reason string
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("ptpip: protocol error: %s", e.Reason)
}
