package transport

import (
	"github.com/sonyfx/ptpipctl/internal/streambuf"
	"github.com/sonyfx/ptpipctl/pkg/ptpip/codec"
)

// Framer turns a stream of arbitrarily-chunked reads into whole PTP/IP
// frames. It holds no socket of its own; a connection feeds it raw bytes
// as they arrive and drains whatever complete frames become available.
type Framer struct {
	buf streambuf.Buffer
}

// Feed appends newly-read bytes to the accumulator.
func (f *Framer) Feed(p []byte) {
	f.buf.Write(p)
}

// Next detaches and returns the next complete frame, if one is fully
// buffered. The returned slice is a copy; it is safe to retain after
// further calls to Feed or Next.
func (f *Framer) Next() ([]byte, bool) {
	avail := f.buf.Peek()
	if len(avail) < 4 {
		return nil, false
	}
	total := codec.TotalLen(avail)
	if total < 8 || uint32(len(avail)) < total {
		return nil, false
	}
	frame := make([]byte, total)
	copy(frame, avail[:total])
	f.buf.Consume(int(total))
	return frame, true
}
