package codec

import (
	"encoding/binary"
	"fmt"
)

// Property descriptor form flags.
const (
	formNone uint8 = 0x00
	formRange uint8 = 0x01
	formEnum uint8 = 0x02
)

// PropertyDescriptor is one parsed entry from an SdioGetAllExtDevicePropInfo
// payload.
type PropertyDescriptor struct {
	Code         uint16
	DataType     uint16
	CurrentValue uint32
	Writable     bool
	Enabled      bool
}

// valueSize returns the on-wire byte width for a descriptor's data_type
// field. Anything not recognised as a 1- or 2-byte type is treated as
// 4-byte, matching what real SDIO property lists exercise in practice.
func valueSize(dataType uint16) int {
	switch dataType {
	case 2, 3:
		return 1
	case 4, 5:
		return 2
	default:
		return 4
	}
}

// readUintLE reads an n-byte (1, 2, or 4) little-endian unsigned integer
// and zero-extends it to uint32.
func readUintLE(buf []byte, n int) (uint32, error) {
	if len(buf) < n {
		return 0, fmt.Errorf("ptpip: short descriptor value: need %d bytes, have %d", n, len(buf))
	}
	switch n {
	case 1:
		return uint32(buf[0]), nil
	case 2:
		return uint32(binary.LittleEndian.Uint16(buf[:2])), nil
	default:
		return binary.LittleEndian.Uint32(buf[:4]), nil
	}
}

// ParsePropertyDescriptors decodes a concatenated list of variable-length
// property descriptors, as described for SdioGetAllExtDevicePropInfo. It
// consumes buf entirely; a malformed trailing descriptor is reported as an
// error rather than silently dropped.
func ParsePropertyDescriptors(buf []byte) ([]PropertyDescriptor, error) {
	var out []PropertyDescriptor
	for len(buf) > 0 {
		desc, n, err := parseOneDescriptor(buf)
		if err != nil {
			return nil, err
		}
		out = append(out, desc)
		buf = buf[n:]
	}
	return out, nil
}

func parseOneDescriptor(buf []byte) (PropertyDescriptor, int, error) {
	if len(buf) < 6 {
		return PropertyDescriptor{}, 0, fmt.Errorf("ptpip: property descriptor header truncated")
	}
	code := binary.LittleEndian.Uint16(buf[0:2])
	dataType := binary.LittleEndian.Uint16(buf[2:4])
	getSet := buf[4]
	isEnabled := buf[5]
	off := 6
	size := valueSize(dataType)

	// default_value
	if len(buf) < off+size {
		return PropertyDescriptor{}, 0, fmt.Errorf("ptpip: property descriptor default value truncated")
	}
	off += size

	// current_value
	current, err := readUintLE(buf[off:], size)
	if err != nil {
		return PropertyDescriptor{}, 0, fmt.Errorf("ptpip: property descriptor current value: %w", err)
	}
	off += size

	if off >= len(buf) {
		return PropertyDescriptor{}, 0, fmt.Errorf("ptpip: property descriptor missing form flag")
	}
	formFlag := buf[off]
	off++

	switch formFlag {
	case formNone:
		// no further payload
	case formRange:
		need := 3 * size
		if len(buf) < off+need {
			return PropertyDescriptor{}, 0, fmt.Errorf("ptpip: property descriptor range form truncated")
		}
		off += need
	case formEnum:
		if len(buf) < off+2 {
			return PropertyDescriptor{}, 0, fmt.Errorf("ptpip: property descriptor enum count truncated")
		}
		count := int(binary.LittleEndian.Uint16(buf[off : off+2]))
		off += 2
		need := count * size
		if len(buf) < off+need {
			return PropertyDescriptor{}, 0, fmt.Errorf("ptpip: property descriptor enum values truncated")
		}
		off += need
	default:
		// Unknown form flag: treated as having no form payload.
	}

	return PropertyDescriptor{
		Code:         code,
		DataType:     dataType,
		CurrentValue: current,
		Writable:     getSet == 0x01,
		Enabled:      isEnabled == 0x01,
	}, off, nil
}
