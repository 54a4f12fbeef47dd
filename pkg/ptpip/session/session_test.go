package session

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/sonyfx/ptpipctl/pkg/ptpip/codec"
	"github.com/sonyfx/ptpipctl/pkg/ptpip/transport"
)

// mockCamera accepts exactly one command-channel connection and one
// event-channel connection on two in-process listeners and answers the
// handshake sequence the way a real camera would, so Session.Connect can
// be exercised end to end without a real device. This plays the role the
// teacher's virtual CAN bus plays for SDO client tests.
type mockCamera struct {
	cmdLn   net.Listener
	eventLn net.Listener
}

func newMockCamera(t *testing.T) *mockCamera {
	t.Helper()
	cmdLn, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	eventLn, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { cmdLn.Close(); eventLn.Close() })
	return &mockCamera{cmdLn: cmdLn, eventLn: eventLn}
}

// testDialer returns a Session.dial function routing "command" to the
// mock's command listener and "event" to its event listener, ignoring the
// host argument (both listeners are already bound to loopback).
func (m *mockCamera) testDialer() func(host, name string) (*transport.Conn, error) {
	return func(host, name string) (*transport.Conn, error) {
		var addr string
		if name == "command" {
			addr = m.cmdLn.Addr().String()
		} else {
			addr = m.eventLn.Addr().String()
		}
		nc, err := net.Dial("tcp", addr)
		if err != nil {
			return nil, err
		}
		return transport.Wrap(nc, name), nil
	}
}

// serveHandshake accepts both connections and answers every step of
// Connect's handshake with a success response.
func (m *mockCamera) serveHandshake(t *testing.T) {
	t.Helper()
	go func() {
		conn, err := m.cmdLn.Accept()
		if err != nil {
			return
		}
		c := transport.Wrap(conn, "mock-command")

		// InitCommandRequest -> InitCommandAck
		if _, err := c.Receive(); err != nil {
			return
		}
		ack := make([]byte, 12)
		ack[4] = 0x02 // TypeInitCommandAck
		ack[0] = 12
		ack[8] = 0x34
		ack[9] = 0x12
		c.Send(ack)

		// Every subsequent OperationRequest gets an OK OperationResponse.
		// The session does not validate that response transaction ids
		// match the request that prompted them (the channel is already
		// serialised), so the mock need not echo one back.
		for {
			pkt, err := c.Receive()
			if err != nil {
				return
			}
			if codec.PacketTypeOf(pkt) != codec.TypeOperationRequest {
				continue
			}
			resp := make([]byte, 12)
			resp[0] = 12
			resp[4] = 0x07 // TypeOperationResponse
			resp[10] = 0x01
			resp[11] = 0x20 // RespOK = 0x2001 little-endian
			c.Send(resp)
		}
	}()

	go func() {
		conn, err := m.eventLn.Accept()
		if err != nil {
			return
		}
		c := transport.Wrap(conn, "mock-event")
		if _, err := c.Receive(); err != nil {
			return
		}
		ack := make([]byte, 8)
		ack[0] = 8
		ack[4] = 0x04 // TypeInitEventAck
		c.Send(ack)
		// Keep the event connection open; session.eventLoop will poll it
		// until the session disconnects.
		buf := make([]byte, 1)
		for {
			if _, err := conn.Read(buf); err != nil {
				return
			}
		}
	}()
}

func TestConnectReachesReady(t *testing.T) {
	cam := newMockCamera(t)
	cam.serveHandshake(t)

	s := New()
	s.dial = cam.testDialer()

	err := s.Connect("127.0.0.1")
	require.NoError(t, err)
	require.Equal(t, StateReady, s.State())

	s.Disconnect()
	require.Equal(t, StateDisconnected, s.State())
}

func TestTransactionCounterIsMonotonic(t *testing.T) {
	cam := newMockCamera(t)
	cam.serveHandshake(t)

	s := New()
	s.dial = cam.testDialer()
	require.NoError(t, s.Connect("127.0.0.1"))
	defer s.Disconnect()

	first := s.nextTxn()
	for i := 0; i < 5; i++ {
		next := s.nextTxn()
		require.Equal(t, first+uint32(i)+1, next)
	}
}

func TestDoReturnsNotConnectedBeforeReady(t *testing.T) {
	s := New()
	_, err := s.Do(codec.OpGetDeviceInfo, nil)
	require.ErrorIs(t, err, ErrNotConnected)
}

// TestDisconnectDoesNotWaitOutReceiveTimeout guards against a regression
// where teardown closed the sockets only after waiting for the event loop
// to exit, which left Disconnect blocked for the full transport.ReceiveTimeout
// every time the event channel was idle.
func TestDisconnectDoesNotWaitOutReceiveTimeout(t *testing.T) {
	orig := transport.ReceiveTimeout
	transport.ReceiveTimeout = time.Hour
	defer func() { transport.ReceiveTimeout = orig }()

	cam := newMockCamera(t)
	cam.serveHandshake(t)

	s := New()
	s.dial = cam.testDialer()
	require.NoError(t, s.Connect("127.0.0.1"))

	done := make(chan struct{})
	go func() {
		s.Disconnect()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Disconnect did not return promptly after closing the sockets")
	}
	require.Equal(t, StateDisconnected, s.State())
}

// TestOperationConnectionLossTearsDownSession guards against a regression
// where a ConnectionLost discovered mid-operation left the session reporting
// StateReady forever on a dead socket.
func TestOperationConnectionLossTearsDownSession(t *testing.T) {
	cam := newMockCamera(t)
	cam.serveHandshake(t)

	s := New()
	s.dial = cam.testDialer()
	require.NoError(t, s.Connect("127.0.0.1"))

	s.cmd.Close()

	_, err := s.Do(codec.OpGetDeviceInfo, nil)
	require.ErrorIs(t, err, transport.ErrConnectionLost)
	require.Equal(t, StateDisconnected, s.State())
}
