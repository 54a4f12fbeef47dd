package session

import (
	"errors"

	"github.com/sonyfx/ptpipctl/pkg/ptpip/codec"
	"github.com/sonyfx/ptpipctl/pkg/ptpip/transport"
)

// handleOperationError tears the session down when err is a ConnectionLost:
// a dead socket discovered mid-operation can never resolve a future
// operation either, so Ready is no longer accurate. Any other error
// (timeout, protocol error, non-OK response) is returned to the caller
// without disturbing the session's state.
func (s *Session) handleOperationError(err error) {
	if errors.Is(err, transport.ErrConnectionLost) {
		s.teardown()
	}
}

// exchange sends a commandless OperationRequest and returns the
// OperationResponse packet, discarding any other packet type observed in
// between. Callers hold s.opMu implicitly via Do/DoWithData*; exchange
// itself is also used directly during the handshake, before keep-alive or
// live-view could possibly be contending for the command channel.
func (s *Session) exchange(op codec.Opcode, params []uint32, dataPhase bool) ([]byte, error) {
	txn := s.nextTxn()
	req := codec.OperationRequest(op, txn, params, dataPhase)
	if err := s.cmd.Send(req); err != nil {
		return nil, err
	}
	return s.awaitResponse()
}

// awaitResponse reads packets from the command channel until an
// OperationResponse arrives.
func (s *Session) awaitResponse() ([]byte, error) {
	for {
		pkt, err := s.cmd.Receive()
		if err != nil {
			return nil, err
		}
		if codec.PacketTypeOf(pkt) == codec.TypeOperationResponse {
			return pkt, nil
		}
	}
}

// Do issues a commandless operation and returns its response code. It
// serialises against keep-alive and live-view polling, which share opMu.
func (s *Session) Do(op codec.Opcode, params []uint32) (codec.ResponseCode, error) {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	if s.State() != StateReady {
		return 0, ErrNotConnected
	}
	resp, err := s.exchange(op, params, false)
	if err != nil {
		s.handleOperationError(err)
		return 0, err
	}
	return codec.OperationResponseCode(resp), nil
}

// DoWithDataOut issues an operation with an outbound data phase (used to
// write property values) and returns its response code.
func (s *Session) DoWithDataOut(op codec.Opcode, params []uint32, payload []byte) (codec.ResponseCode, error) {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	if s.State() != StateReady {
		return 0, ErrNotConnected
	}

	txn := s.nextTxn()
	req := codec.OperationRequest(op, txn, params, true)
	if err := s.cmd.Send(req); err != nil {
		s.handleOperationError(err)
		return 0, err
	}
	if err := s.cmd.Send(codec.StartData(txn, uint64(len(payload)))); err != nil {
		s.handleOperationError(err)
		return 0, err
	}
	if err := s.cmd.Send(codec.EndData(txn, payload)); err != nil {
		s.handleOperationError(err)
		return 0, err
	}
	resp, err := s.awaitResponse()
	if err != nil {
		s.handleOperationError(err)
		return 0, err
	}
	return codec.OperationResponseCode(resp), nil
}

// DoWithDataIn issues an operation with an inbound data phase (used to
// read property lists and objects) and returns the concatenated payload
// alongside the final response code.
func (s *Session) DoWithDataIn(op codec.Opcode, params []uint32) ([]byte, codec.ResponseCode, error) {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	if s.State() != StateReady {
		return nil, 0, ErrNotConnected
	}

	txn := s.nextTxn()
	req := codec.OperationRequest(op, txn, params, false)
	if err := s.cmd.Send(req); err != nil {
		s.handleOperationError(err)
		return nil, 0, err
	}

	var payload []byte
	for {
		pkt, err := s.cmd.Receive()
		if err != nil {
			s.handleOperationError(err)
			return nil, 0, err
		}
		switch codec.PacketTypeOf(pkt) {
		case codec.TypeStartData:
			// Advisory size only; the concatenated Data/EndData payload is
			// authoritative.
		case codec.TypeData, codec.TypeEndData:
			payload = append(payload, codec.DataPayload(pkt)...)
		case codec.TypeOperationResponse:
			return payload, codec.OperationResponseCode(pkt), nil
		default:
			// Unrelated packet (e.g. a stray keep-alive probe response);
			// ignore and keep waiting.
		}
	}
}
