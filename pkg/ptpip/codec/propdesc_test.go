package codec

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildDescriptor assembles one raw property descriptor for the given
// value size and form flag, mirroring the layout documented for
// SdioGetAllExtDevicePropInfo.
func buildDescriptor(code, dataType uint16, size int, getSet, enabled byte, current uint32, form uint8) []byte {
	buf := []byte{}
	put16 := func(v uint16) { b := make([]byte, 2); binary.LittleEndian.PutUint16(b, v); buf = append(buf, b...) }
	putN := func(v uint32) {
		b := make([]byte, size)
		switch size {
		case 1:
			b[0] = byte(v)
		case 2:
			binary.LittleEndian.PutUint16(b, uint16(v))
		default:
			binary.LittleEndian.PutUint32(b, v)
		}
		buf = append(buf, b...)
	}
	put16(code)
	put16(dataType)
	buf = append(buf, getSet, enabled)
	putN(0) // default_value
	putN(current)
	buf = append(buf, form)
	switch form {
	case formRange:
		putN(0)
		putN(100)
		putN(1)
	case formEnum:
		put16(2)
		putN(1)
		putN(2)
	}
	return buf
}

func TestParsePropertyDescriptorsAllWidthsAndForms(t *testing.T) {
	cases := []struct {
		name     string
		dataType uint16
		size     int
		form     uint8
	}{
		{"u8-none", 2, 1, formNone},
		{"u16-range", 4, 2, formRange},
		{"u32-enum", 6, 4, formEnum},
	}

	var buf []byte
	for i, c := range cases {
		buf = append(buf, buildDescriptor(uint16(0x5000+i), c.dataType, c.size, 0x01, 0x01, uint32(i+1), c.form)...)
	}

	got, err := ParsePropertyDescriptors(buf)
	require.NoError(t, err)
	require.Len(t, got, len(cases))

	for i, c := range cases {
		assert.Equal(t, uint16(0x5000+i), got[i].Code)
		assert.Equal(t, c.dataType, got[i].DataType)
		assert.Equal(t, uint32(i+1), got[i].CurrentValue)
		assert.True(t, got[i].Writable)
		assert.True(t, got[i].Enabled)
	}
}

func TestParsePropertyDescriptorsNotWritableOrEnabled(t *testing.T) {
	buf := buildDescriptor(0xD218, 6, 4, 0x00, 0x00, 42, formNone)
	got, err := ParsePropertyDescriptors(buf)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.False(t, got[0].Writable)
	assert.False(t, got[0].Enabled)
	assert.Equal(t, uint32(42), got[0].CurrentValue)
}

func TestParsePropertyDescriptorsTruncated(t *testing.T) {
	buf := buildDescriptor(0x5005, 4, 2, 0x01, 0x01, 4, formNone)
	_, err := ParsePropertyDescriptors(buf[:len(buf)-1])
	assert.Error(t, err)
}
