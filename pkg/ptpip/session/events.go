package session

import (
	"errors"

	"github.com/sonyfx/ptpipctl/pkg/ptpip/codec"
	"github.com/sonyfx/ptpipctl/pkg/ptpip/transport"
)

// startEventLoop launches the goroutine that continuously drains the event
// channel. It never writes to the command socket directly; a recognised
// Event packet only invokes the registered onPropertyChange callback,
// which callers use to schedule a refresh on the command channel.
func (s *Session) startEventLoop() {
	s.eventStop = make(chan struct{})
	s.eventDone = make(chan struct{})
	go s.eventLoop(s.eventStop, s.eventDone)
}

func (s *Session) eventLoop(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	for {
		select {
		case <-stop:
			return
		default:
		}

		pkt, err := s.event.Receive()
		if err != nil {
			if errors.Is(err, transport.ErrReceiveTimeout) {
				continue
			}
			s.log.WithError(err).Debug("event channel closed")
			return
		}
		if codec.PacketTypeOf(pkt) != codec.TypeEvent {
			continue
		}

		s.mu.Lock()
		cb := s.onPropertyChange
		s.mu.Unlock()
		if cb != nil {
			cb()
		}
	}
}

// signalEventStop asks the loop to exit without waiting for it. The loop is
// normally parked inside s.event.Receive(), which only checks stop between
// calls, so this alone does not make it exit promptly — callers must also
// close the event socket to unblock a pending Receive.
func (s *Session) signalEventStop() {
	if s.eventStop != nil {
		close(s.eventStop)
	}
}

// waitEventStopped blocks until the loop has exited.
func (s *Session) waitEventStopped() {
	if s.eventDone == nil {
		return
	}
	<-s.eventDone
	s.eventStop = nil
	s.eventDone = nil
}
