package camera

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// InvalidArgument reports that a caller-supplied value was outside the
// enumerated or range-bounded set a property accepts.
type InvalidArgument struct {
	Reason string
}

func (e *InvalidArgument) Error() string {
	return fmt.Sprintf("ptpip: invalid argument: %s", e.Reason)
}

const isoAuto uint32 = 0xFFFFFF

// encodeISO implements the ISO value law: "auto" (any case) maps to the
// sentinel 0xFFFFFF, any non-negative decimal integer maps to itself.
func encodeISO(s string) (uint32, error) {
	if strings.EqualFold(s, "auto") {
		return isoAuto, nil
	}
	n, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, &InvalidArgument{Reason: fmt.Sprintf("iso %q is neither \"auto\" nor a decimal integer", s)}
	}
	return uint32(n), nil
}

// formatISO is the inverse of encodeISO for display purposes.
func formatISO(raw uint32) string {
	if raw == isoAuto {
		return "Auto"
	}
	return strconv.FormatUint(uint64(raw), 10)
}

// shutterSpeeds is the closed enumeration of textual shutter ratios this
// layer accepts, each mapped to (numerator<<16)|denominator.
var shutterSpeeds = map[string]uint32{
	"1/24": 1<<16 | 24, "1/30": 1<<16 | 30, "1/48": 1<<16 | 48,
	"1/50": 1<<16 | 50, "1/60": 1<<16 | 60, "1/100": 1<<16 | 100,
	"1/120": 1<<16 | 120, "1/250": 1<<16 | 250, "1/500": 1<<16 | 500,
	"1/1000": 1<<16 | 1000,
}

func encodeShutterSpeed(s string) (uint32, error) {
	if raw, ok := shutterSpeeds[s]; ok {
		return raw, nil
	}
	return 0, &InvalidArgument{Reason: fmt.Sprintf("shutter speed %q is not one of the supported ratios", s)}
}

// formatShutterSpeed decodes a raw (numerator<<16)|denominator value back
// to its textual form, independent of the closed enumeration above so it
// also renders values the camera reports that the encode side does not
// accept as caller input.
func formatShutterSpeed(raw uint32) string {
	num := raw >> 16
	den := raw & 0xFFFF
	switch {
	case den == 0:
		return fmt.Sprintf("%d\"", num)
	case num == 1:
		return fmt.Sprintf("1/%d", den)
	default:
		return fmt.Sprintf("%d/%d", num, den)
	}
}

// encodeAperture accepts "f/N", "fN", or a bare "N" and encodes it as
// round(N*100).
func encodeAperture(s string) (uint32, error) {
	trimmed := strings.TrimPrefix(strings.TrimPrefix(s, "f/"), "f")
	n, err := strconv.ParseFloat(trimmed, 64)
	if err != nil || n <= 0 {
		return 0, &InvalidArgument{Reason: fmt.Sprintf("aperture %q is not a valid f-number", s)}
	}
	return uint32(math.Round(n * 100)), nil
}

func formatAperture(raw uint32) string {
	if raw == 0 {
		return "--"
	}
	return fmt.Sprintf("f/%.1f", float64(raw)/100)
}

const (
	exposureBiasMin = -3.0
	exposureBiasMax = 3.0
)

// encodeExposureBias implements the exposure-bias law: a float EV in
// [-3.0, 3.0] encodes as the two's-complement 32-bit round(ev*1000).
func encodeExposureBias(ev float64) (uint32, error) {
	if ev < exposureBiasMin || ev > exposureBiasMax {
		return 0, &InvalidArgument{Reason: fmt.Sprintf("exposure compensation %.2f is outside [-3.0, 3.0]", ev)}
	}
	return uint32(int32(math.Round(ev * 1000))), nil
}

func formatExposureBias(raw uint32) float64 {
	return float64(int32(raw)) / 1000
}

// FormatExposureCompensation renders an EV value with an explicit sign for
// non-negative numbers, the display convention callers use when presenting
// Settings.ExposureCompensation to a user.
func FormatExposureCompensation(ev float64) string {
	if ev >= 0 {
		return fmt.Sprintf("+%.1f", ev)
	}
	return fmt.Sprintf("%.1f", ev)
}

var whiteBalanceCodes = map[string]uint32{
	"auto": 0x0002, "daylight": 0x0004, "shade": 0x8011, "cloudy": 0x8010,
	"tungsten": 0x0006, "fluorescent": 0x0001, "flash": 0x0007, "custom": 0x8020,
}

func encodeWhiteBalance(s string) (uint32, error) {
	if raw, ok := whiteBalanceCodes[strings.ToLower(s)]; ok {
		return raw, nil
	}
	return 0, &InvalidArgument{Reason: fmt.Sprintf("white balance %q is not recognised", s)}
}

func formatWhiteBalance(raw uint32) string {
	for name, code := range whiteBalanceCodes {
		if code == raw {
			return capitalize(name)
		}
	}
	return fmt.Sprintf("0x%04X", raw)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

var focusModeCodes = map[string]uint32{
	"mf": 0x0001, "af-s": 0x0002, "af-c": 0x8004, "dmf": 0x8005,
}

func encodeFocusMode(s string) (uint32, error) {
	if raw, ok := focusModeCodes[strings.ToLower(s)]; ok {
		return raw, nil
	}
	return 0, &InvalidArgument{Reason: fmt.Sprintf("focus mode %q is not recognised", s)}
}

func formatFocusMode(raw uint32) string {
	for name, code := range focusModeCodes {
		if code == raw {
			return strings.ToUpper(name)
		}
	}
	return fmt.Sprintf("0x%04X", raw)
}

const (
	movieRecordStart uint32 = 0x0002
	movieRecordStop  uint32 = 0x0001
)

// ZoomDirection selects the direction a zoom command drives the lens.
type ZoomDirection int

const (
	ZoomIn ZoomDirection = iota
	ZoomOut
)

// encodeZoom packs a direction and speed into the 32-bit value the zoom
// property expects: direction in the high 16 bits, speed in the low 16.
func encodeZoom(dir ZoomDirection, speed int) (uint32, error) {
	if speed < 1 || speed > 7 {
		return 0, &InvalidArgument{Reason: fmt.Sprintf("zoom speed %d is outside [1, 7]", speed)}
	}
	var d uint32
	switch dir {
	case ZoomIn:
		d = 0x0001
	case ZoomOut:
		d = 0x0002
	default:
		return 0, &InvalidArgument{Reason: "unknown zoom direction"}
	}
	return (d << 16) | uint32(speed), nil
}

const zoomStop uint32 = 0
