package transport

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sonyfx/ptpipctl/pkg/ptpip/codec"
)

func concatFrames(frames ...[]byte) []byte {
	var out []byte
	for _, f := range frames {
		out = append(out, f...)
	}
	return out
}

func TestFramerWholeStreamAtOnce(t *testing.T) {
	var guid [16]byte
	frames := [][]byte{
		codec.InitCommandRequest(guid, "cam"),
		codec.OperationRequest(codec.OpOpenSession, 1, []uint32{5}, false),
		codec.ProbeRequest(),
	}
	stream := concatFrames(frames...)

	var fr Framer
	fr.Feed(stream)

	for i, want := range frames {
		got, ok := fr.Next()
		require.True(t, ok, "frame %d", i)
		assert.Equal(t, want, got)
	}
	_, ok := fr.Next()
	assert.False(t, ok)
}

func TestFramerArbitraryChunking(t *testing.T) {
	var guid [16]byte
	frames := [][]byte{
		codec.InitCommandRequest(guid, "a long friendly camera name"),
		codec.OperationRequest(codec.OpSdioGetAllExtDevicePropInfo, 2, nil, false),
		codec.StartData(2, 123456),
		codec.EndData(2, make([]byte, 5000)),
		codec.ProbeRequest(),
	}
	stream := concatFrames(frames...)

	rng := rand.New(rand.NewSource(42))
	var fr Framer
	var got [][]byte
	pos := 0
	for pos < len(stream) {
		chunk := 1 + rng.Intn(37)
		if pos+chunk > len(stream) {
			chunk = len(stream) - pos
		}
		fr.Feed(stream[pos : pos+chunk])
		pos += chunk
		for {
			frame, ok := fr.Next()
			if !ok {
				break
			}
			got = append(got, frame)
		}
	}

	require.Len(t, got, len(frames))
	for i, want := range frames {
		assert.Equal(t, want, got[i])
	}
}

func TestFramerWithholdsPartialFrame(t *testing.T) {
	frame := codec.ProbeRequest()
	var fr Framer
	fr.Feed(frame[:4])
	_, ok := fr.Next()
	assert.False(t, ok)
	fr.Feed(frame[4:])
	got, ok := fr.Next()
	require.True(t, ok)
	assert.Equal(t, frame, got)
}
