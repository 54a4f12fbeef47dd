package camera

import "encoding/binary"

const liveViewHeaderLen = 16

var jpegSOI = [2]byte{0xFF, 0xD8}

// extractLiveViewFrame implements the live-view gating rule: the first 16
// bytes of payload are {image_offset u32, image_size u32, 8 reserved
// bytes}; a frame is valid only if the declared sub-region fits inside
// payload, is non-empty, and begins with a JPEG SOI marker. An invalid
// frame is reported as absent, never as an error.
func extractLiveViewFrame(payload []byte) ([]byte, bool) {
	if len(payload) <= liveViewHeaderLen {
		return nil, false
	}
	offset := binary.LittleEndian.Uint32(payload[0:4])
	size := binary.LittleEndian.Uint32(payload[4:8])
	if size == 0 {
		return nil, false
	}
	end := uint64(offset) + uint64(size)
	if end > uint64(len(payload)) {
		return nil, false
	}
	frame := payload[offset:end]
	if len(frame) < 2 || frame[0] != jpegSOI[0] || frame[1] != jpegSOI[1] {
		return nil, false
	}
	return frame, true
}
