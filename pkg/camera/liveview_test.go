package camera

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
)

func buildLiveViewPayload(offset, size uint32, jpeg []byte) []byte {
	buf := make([]byte, 16)
	binary.LittleEndian.PutUint32(buf[0:4], offset)
	binary.LittleEndian.PutUint32(buf[4:8], size)
	buf = append(buf, make([]byte, offset-liveViewHeaderLen)...)
	buf = append(buf, jpeg...)
	return buf
}

func TestExtractLiveViewFrameValid(t *testing.T) {
	jpeg := []byte{0xFF, 0xD8, 0xAA, 0xBB, 0xCC}
	payload := buildLiveViewPayload(16, uint32(len(jpeg)), jpeg)
	frame, ok := extractLiveViewFrame(payload)
	assert.True(t, ok)
	assert.Equal(t, jpeg, frame)
}

func TestExtractLiveViewFrameTooShort(t *testing.T) {
	_, ok := extractLiveViewFrame(make([]byte, 10))
	assert.False(t, ok)
}

func TestExtractLiveViewFrameOffsetOverrun(t *testing.T) {
	payload := make([]byte, 20)
	binary.LittleEndian.PutUint32(payload[0:4], 16)
	binary.LittleEndian.PutUint32(payload[4:8], 100)
	_, ok := extractLiveViewFrame(payload)
	assert.False(t, ok)
}

func TestExtractLiveViewFrameZeroSize(t *testing.T) {
	payload := make([]byte, 20)
	_, ok := extractLiveViewFrame(payload)
	assert.False(t, ok)
}

func TestExtractLiveViewFrameBadSOI(t *testing.T) {
	payload := buildLiveViewPayload(16, 2, []byte{0x00, 0x00})
	_, ok := extractLiveViewFrame(payload)
	assert.False(t, ok)
}
