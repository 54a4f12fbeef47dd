package camera

import (
	"sync"
	"time"
)

const (
	liveViewFrameInterval = 33 * time.Millisecond
	liveViewErrorBackoff  = 100 * time.Millisecond
)

// LiveViewFeed runs a background polling loop targeting ~30 frames per
// second, delivering frames to onFrame and never surfacing fetch errors to
// the caller: a transient failure backs off and retries, matching the
// concurrency policy that live-view errors stay inside the polling loop.
type LiveViewFeed struct {
	cam *Camera

	mu   sync.Mutex
	stop chan struct{}
	done chan struct{}
}

// NewLiveViewFeed wraps cam with a pollable live-view feed.
func NewLiveViewFeed(cam *Camera) *LiveViewFeed {
	return &LiveViewFeed{cam: cam}
}

// Start begins polling. onFrame is invoked with each successfully
// retrieved frame from the polling goroutine; it must not block for long,
// since it runs between fetches.
func (f *LiveViewFeed) Start(onFrame func([]byte)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.stop != nil {
		return
	}
	f.stop = make(chan struct{})
	f.done = make(chan struct{})
	go f.loop(onFrame, f.stop, f.done)
}

func (f *LiveViewFeed) loop(onFrame func([]byte), stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	for {
		select {
		case <-stop:
			return
		default:
		}

		frame, ok, err := f.cam.GetLiveFrame()
		wait := liveViewFrameInterval
		if err != nil || !ok {
			wait = liveViewErrorBackoff
		} else {
			onFrame(frame)
		}

		select {
		case <-stop:
			return
		case <-time.After(wait):
		}
	}
}

// Stop halts polling and waits for the goroutine to exit.
func (f *LiveViewFeed) Stop() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.stop == nil {
		return
	}
	close(f.stop)
	<-f.done
	f.stop = nil
	f.done = nil
}
