package session

import (
	"time"

	"github.com/sonyfx/ptpipctl/pkg/ptpip/codec"
)

// startKeepAlive arms the background probe timer. It must be called after
// the session reaches Ready.
func (s *Session) startKeepAlive() {
	s.keepAliveStop = make(chan struct{})
	s.keepAliveDone = make(chan struct{})
	go s.keepAliveLoop(s.keepAliveStop, s.keepAliveDone)
}

// keepAliveLoop fires a ProbeRequest every KeepAliveInterval while the
// session is Ready. A probe is skipped, not queued, if the command channel
// is already busy with an operation — the next tick re-arms, matching the
// lowest-priority scheduling the session gives keep-alive relative to
// user-initiated operations.
func (s *Session) keepAliveLoop(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	ticker := time.NewTicker(KeepAliveInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if s.State() != StateReady {
				return
			}
			if !s.opMu.TryLock() {
				s.log.Debug("keep-alive skipped: command channel busy")
				continue
			}
			err := s.cmd.Send(codec.ProbeRequest())
			s.opMu.Unlock()
			if err != nil {
				s.log.WithError(err).Warn("keep-alive probe failed")
			}
		}
	}
}

// signalKeepAliveStop asks the loop to exit without waiting for it.
func (s *Session) signalKeepAliveStop() {
	if s.keepAliveStop != nil {
		close(s.keepAliveStop)
	}
}

// waitKeepAliveStopped blocks until the loop has exited. Callers must close
// the command socket first if the loop might be parked on a send, since the
// loop only checks stop between ticks.
func (s *Session) waitKeepAliveStopped() {
	if s.keepAliveDone == nil {
		return
	}
	<-s.keepAliveDone
	s.keepAliveStop = nil
	s.keepAliveDone = nil
}
