// Package session implements the PTP/IP connection state machine: the
// two-channel handshake, the Sony SDIO setup sequence, transaction-
// correlated operations, keep-alive, and camera-initiated events.
package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/sonyfx/ptpipctl/pkg/ptpip/codec"
	"github.com/sonyfx/ptpipctl/pkg/ptpip/transport"
)

// State is one stage of the PTP/IP connection state machine.
type State uint8

const (
	StateDisconnected State = iota
	StateConnecting
	StateInitCommand
	StateInitEvent
	StateOpeningSession
	StateSdioSetup
	StateReady
	StateClosing
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateInitCommand:
		return "init_command"
	case StateInitEvent:
		return "init_event"
	case StateOpeningSession:
		return "opening_session"
	case StateSdioSetup:
		return "sdio_setup"
	case StateReady:
		return "ready"
	case StateClosing:
		return "closing"
	default:
		return "unknown"
	}
}

// KeepAliveInterval is the period between background ProbeRequest probes
// while the session is Ready.
var KeepAliveInterval = 15 * time.Second

// FriendlyName is sent in InitCommandRequest. Any value is acceptable to
// the camera; it exists to identify the client in the camera's own logs.
// It is a var, not a const, so an embedder's configuration can set it.
var FriendlyName = "ptpipctl"

// Session owns both PTP/IP connections and all protocol state for one
// camera. Callers must not share a Session across goroutines except via
// its own methods, which serialise internally.
type Session struct {
	mu sync.Mutex // guards state and txn; operations additionally hold opMu

	opMu sync.Mutex // held for the duration of one command-channel exchange

	cmd   *transport.Conn
	event *transport.Conn

	state        State
	connectionID uint32
	sessionID    uint32
	txn          uint32

	keepAliveStop chan struct{}
	keepAliveDone chan struct{}
	eventStop     chan struct{}
	eventDone     chan struct{}

	onPropertyChange func()

	dial func(host, name string) (*transport.Conn, error)

	log *log.Entry
}

// New constructs a Session in the Disconnected state, dialling both
// channels with transport.Dial.
func New() *Session {
	return NewWithDialer(transport.Dial)
}

// NewWithDialer constructs a Session that uses dial to open both the
// command and event channel, in place of transport.Dial. It exists so
// callers (and this module's own tests) can substitute an in-process or
// otherwise non-standard transport, the same role NewNetwork(bus) plays in
// the CANopen stack this package is modelled on.
func NewWithDialer(dial func(host, name string) (*transport.Conn, error)) *Session {
	return &Session{
		state: StateDisconnected,
		dial:  dial,
		log:   log.WithField("component", "session"),
	}
}

// State returns the session's current connection phase.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// OnPropertyChange registers a callback invoked (from the event loop
// goroutine) whenever the camera signals that its properties may have
// changed. Only one callback may be registered; a later call replaces an
// earlier one.
func (s *Session) OnPropertyChange(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onPropertyChange = fn
}

// setState transitions the state machine and logs the change.
func (s *Session) setState(next State) {
	s.mu.Lock()
	prev := s.state
	s.state = next
	s.mu.Unlock()
	s.log.WithField("from", prev.String()).WithField("to", next.String()).Debug("state transition")
}

// nextTxn returns the next transaction id, starting at 1 and increasing
// monotonically for the lifetime of the session.
func (s *Session) nextTxn() uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.txn++
	return s.txn
}

// Connect drives the full handshake: command channel init, event channel
// init, session open, and the Sony SDIO setup sequence. On any failure the
// session is left Disconnected and all sockets are closed.
func (s *Session) Connect(host string) error {
	s.setState(StateConnecting)

	cmd, err := s.dial(host, "command")
	if err != nil {
		s.setState(StateDisconnected)
		return ErrConnectFailed
	}
	s.cmd = cmd

	if err := s.initCommand(); err != nil {
		s.teardown()
		return err
	}

	if err := s.initEvent(host); err != nil {
		s.teardown()
		return err
	}

	if err := s.openSession(); err != nil {
		s.teardown()
		return err
	}

	if err := s.sdioSetup(); err != nil {
		s.teardown()
		return err
	}

	s.setState(StateReady)
	s.startKeepAlive()
	return nil
}

func (s *Session) initCommand() error {
	s.setState(StateInitCommand)
	id := uuid.New()
	var guid [16]byte
	copy(guid[:], id[:])

	req := codec.InitCommandRequest(guid, FriendlyName)
	if err := s.cmd.Send(req); err != nil {
		return err
	}
	resp, err := s.cmd.Receive()
	if err != nil {
		return &HandshakeFailed{Stage: "init_command", Reason: err.Error()}
	}
	if codec.PacketTypeOf(resp) != codec.TypeInitCommandAck {
		return &HandshakeFailed{Stage: "init_command", Reason: "unexpected packet type"}
	}
	if len(resp) < 12 {
		return &HandshakeFailed{Stage: "init_command", Reason: "truncated ack"}
	}
	s.connectionID = codec.InitCommandAckConnectionID(resp)
	return nil
}

func (s *Session) initEvent(host string) error {
	s.setState(StateInitEvent)
	conn, err := s.dial(host, "event")
	if err != nil {
		return ErrConnectFailed
	}
	s.event = conn

	req := codec.InitEventRequest(s.connectionID)
	if err := s.event.Send(req); err != nil {
		return err
	}
	resp, err := s.event.Receive()
	if err != nil {
		return err
	}
	if codec.PacketTypeOf(resp) != codec.TypeInitEventAck {
		return &HandshakeFailed{Stage: "init_event", Reason: "unexpected packet type"}
	}
	s.startEventLoop()
	return nil
}

func (s *Session) openSession() error {
	s.setState(StateOpeningSession)
	id := uuid.New()
	raw := (uint32(id[0]) << 16) | (uint32(id[1]) << 8) | uint32(id[2])
	s.sessionID = 1 + (raw & 0x00FFFFFE)

	resp, err := s.exchange(codec.OpOpenSession, []uint32{s.sessionID}, false)
	if err != nil {
		return err
	}
	code := codec.OperationResponseCode(resp)
	if code != codec.RespOK && code != codec.RespSessionAlreadyOpen {
		return &HandshakeFailed{Stage: "open_session", Reason: code.Explain()}
	}
	return nil
}

func (s *Session) sdioSetup() error {
	s.setState(StateSdioSetup)
	steps := []struct {
		name   string
		opcode codec.Opcode
		params []uint32
	}{
		{"get_device_info", codec.OpGetDeviceInfo, nil},
		{"get_storage_ids", codec.OpGetStorageIDs, nil},
		{"sdio_connect_1", codec.OpSdioConnect, []uint32{1}},
		{"sdio_connect_2", codec.OpSdioConnect, []uint32{2}},
		{"sdio_connect_3", codec.OpSdioConnect, []uint32{3}},
		{"sdio_get_ext_device_info", codec.OpSdioGetExtDeviceInfo, []uint32{0x00C8}},
	}
	for _, step := range steps {
		resp, err := s.exchange(step.opcode, step.params, false)
		if err != nil {
			return err
		}
		if code := codec.OperationResponseCode(resp); code != codec.RespOK {
			return &HandshakeFailed{Stage: step.name, Reason: code.Explain()}
		}
	}
	return nil
}

// Disconnect transitions to Closing, stops background loops, and tears
// down both sockets. It is safe to call on an already-disconnected
// session.
func (s *Session) Disconnect() {
	if s.State() == StateDisconnected {
		return
	}
	s.setState(StateClosing)
	s.teardown()
}

// teardown closes both sockets before waiting for the background loops to
// exit. Closing first is what makes a loop parked in Receive resolve with
// ErrConnectionLost immediately instead of sitting out the full
// transport.ReceiveTimeout.
func (s *Session) teardown() {
	s.signalKeepAliveStop()
	s.signalEventStop()

	if s.cmd != nil {
		s.cmd.Close()
	}
	if s.event != nil {
		s.event.Close()
	}

	s.waitKeepAliveStopped()
	s.waitEventStopped()

	s.setState(StateDisconnected)
}
