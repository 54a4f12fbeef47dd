// Package codec builds and reads PTP/IP packets on the wire.
//
// All integers are little-endian, as required by the PTP/IP specification.
// Every builder in this package is a pure function: given the same
// arguments it always returns the same bytes, and none of them touch a
// socket.
package codec

import (
	"encoding/binary"
	"unicode/utf16"
)

// PacketType identifies the kind of a PTP/IP frame (the u32 at offset 4).
type PacketType uint32

const (
	TypeInitCommandRequest PacketType = 0x00000001
	TypeInitCommandAck     PacketType = 0x00000002
	TypeInitEventRequest   PacketType = 0x00000003
	TypeInitEventAck       PacketType = 0x00000004
	TypeInitFail           PacketType = 0x00000005
	TypeOperationRequest   PacketType = 0x00000006
	TypeOperationResponse  PacketType = 0x00000007
	TypeEvent              PacketType = 0x00000008
	TypeStartData          PacketType = 0x00000009
	TypeData               PacketType = 0x0000000A
	TypeCancel             PacketType = 0x0000000B
	TypeEndData            PacketType = 0x0000000C
	TypeProbeRequest       PacketType = 0x0000000D
	TypeProbeResponse      PacketType = 0x0000000E
)

// Opcode identifies a PTP or Sony SDIO operation.
type Opcode uint16

const (
	OpGetDeviceInfo             Opcode = 0x1001
	OpOpenSession               Opcode = 0x1002
	OpGetStorageIDs             Opcode = 0x1004
	OpGetObjectInfo             Opcode = 0x1008
	OpGetObject                 Opcode = 0x1009
	OpSdioConnect               Opcode = 0x9201
	OpSdioGetExtDeviceInfo      Opcode = 0x9202
	OpSdioControlDevice         Opcode = 0x9207
	OpSdioGetAllExtDevicePropInfo Opcode = 0x9209
	OpSdioGetExtDeviceProp      Opcode = 0x9251
)

// ResponseCode is the u16 PTP response/status code returned in an
// OperationResponse packet.
type ResponseCode uint16

const (
	RespOK                    ResponseCode = 0x2001
	RespGeneralError          ResponseCode = 0x2002
	RespSessionNotOpen        ResponseCode = 0x2003
	RespOperationNotSupported ResponseCode = 0x2005
	RespParameterNotSupported ResponseCode = 0x2006
	RespDeviceBusy            ResponseCode = 0x2019
	RespSessionAlreadyOpen    ResponseCode = 0x201E
)

var responseExplanation = map[ResponseCode]string{
	RespOK:                    "OK",
	RespGeneralError:          "general error",
	RespSessionNotOpen:        "session not open",
	RespOperationNotSupported: "operation not supported",
	RespParameterNotSupported: "parameter not supported",
	RespDeviceBusy:            "device busy",
	RespSessionAlreadyOpen:    "session already open",
}

// Explain returns a short human-readable description of a response code,
// or "unknown response code" when it is not one of the recognised values.
func (r ResponseCode) Explain() string {
	if s, ok := responseExplanation[r]; ok {
		return s
	}
	return "unknown response code"
}

// LiveViewHandle is the reserved object handle returning the current
// JPEG preview frame.
const LiveViewHandle uint32 = 0xFFFFC002

// headerLen is the size of the total_len+packet_type prefix shared by
// every PTP/IP frame.
const headerLen = 8

// putHeader writes total_len and packet_type at the start of buf. buf must
// already be sized to its final length.
func putHeader(buf []byte, typ PacketType) {
	binary.LittleEndian.PutUint32(buf[0:4], uint32(len(buf)))
	binary.LittleEndian.PutUint32(buf[4:8], uint32(typ))
}

// PacketTypeOf reads the packet_type field of a frame. It returns 0 if buf
// is shorter than the header.
func PacketTypeOf(buf []byte) PacketType {
	if len(buf) < headerLen {
		return 0
	}
	return PacketType(binary.LittleEndian.Uint32(buf[4:8]))
}

// TotalLen reads the total_len field of a frame. It returns 0 if buf is
// shorter than 4 bytes.
func TotalLen(buf []byte) uint32 {
	if len(buf) < 4 {
		return 0
	}
	return binary.LittleEndian.Uint32(buf[0:4])
}

// utf16zBytes encodes s as UTF-16LE followed by a single U+0000 terminator.
func utf16zBytes(s string) []byte {
	units := utf16.Encode([]rune(s))
	out := make([]byte, (len(units)+1)*2)
	for i, u := range units {
		binary.LittleEndian.PutUint16(out[i*2:i*2+2], u)
	}
	return out
}

// InitCommandRequest builds the packet that opens the command channel:
// header | 16-byte GUID | UTF-16LE friendly name + NUL | u32 protocol version.
func InitCommandRequest(guid [16]byte, friendlyName string) []byte {
	name := utf16zBytes(friendlyName)
	buf := make([]byte, headerLen+16+len(name)+4)
	putHeader(buf, TypeInitCommandRequest)
	copy(buf[8:24], guid[:])
	copy(buf[24:24+len(name)], name)
	binary.LittleEndian.PutUint32(buf[len(buf)-4:], 0x00010000)
	return buf
}

// InitCommandAckConnectionID extracts the connection id assigned by the
// camera from an InitCommandAck packet (u32 at offset 8). Returns 0 if buf
// is too short.
func InitCommandAckConnectionID(buf []byte) uint32 {
	if len(buf) < 12 {
		return 0
	}
	return binary.LittleEndian.Uint32(buf[8:12])
}

// InitEventRequest builds the 12-byte packet that opens the event channel.
func InitEventRequest(connectionID uint32) []byte {
	buf := make([]byte, headerLen+4)
	putHeader(buf, TypeInitEventRequest)
	binary.LittleEndian.PutUint32(buf[8:12], connectionID)
	return buf
}

// OperationRequest builds an OperationRequest packet. dataPhase selects the
// phase indicator: false encodes 1 (command only), true encodes 2 (command
// followed by an outbound data phase).
func OperationRequest(op Opcode, txn uint32, params []uint32, dataPhase bool) []byte {
	buf := make([]byte, headerLen+4+2+4+4*len(params))
	putHeader(buf, TypeOperationRequest)
	phase := uint32(1)
	if dataPhase {
		phase = 2
	}
	binary.LittleEndian.PutUint32(buf[8:12], phase)
	binary.LittleEndian.PutUint16(buf[12:14], uint16(op))
	binary.LittleEndian.PutUint32(buf[14:18], txn)
	off := 18
	for _, p := range params {
		binary.LittleEndian.PutUint32(buf[off:off+4], p)
		off += 4
	}
	return buf
}

// OperationResponseCode reads the response code (u16 at offset 10) from an
// OperationResponse packet. Returns 0 if buf is too short.
func OperationResponseCode(buf []byte) ResponseCode {
	if len(buf) < 12 {
		return 0
	}
	return ResponseCode(binary.LittleEndian.Uint16(buf[10:12]))
}

// StartData builds the 20-byte packet announcing the size of an upcoming
// data phase.
func StartData(txn uint32, payloadSize uint64) []byte {
	buf := make([]byte, headerLen+4+8)
	putHeader(buf, TypeStartData)
	binary.LittleEndian.PutUint32(buf[8:12], txn)
	binary.LittleEndian.PutUint64(buf[12:20], payloadSize)
	return buf
}

// EndData builds a packet carrying the entire outbound data-phase payload
// in a single frame.
func EndData(txn uint32, payload []byte) []byte {
	buf := make([]byte, headerLen+4+len(payload))
	putHeader(buf, TypeEndData)
	binary.LittleEndian.PutUint32(buf[8:12], txn)
	copy(buf[12:], payload)
	return buf
}

// DataPayload returns the bytes following the transaction id in a Data or
// EndData packet. Returns nil if buf is too short to contain one.
func DataPayload(buf []byte) []byte {
	if len(buf) < headerLen+4 {
		return nil
	}
	return buf[headerLen+4:]
}

// StartDataSize reads the advisory total payload size (u64 at offset 12)
// announced by a StartData packet.
func StartDataSize(buf []byte) uint64 {
	if len(buf) < headerLen+4+8 {
		return 0
	}
	return binary.LittleEndian.Uint64(buf[12:20])
}

// ProbeRequest builds the 8-byte keep-alive probe packet.
func ProbeRequest() []byte {
	buf := make([]byte, headerLen)
	putHeader(buf, TypeProbeRequest)
	return buf
}
