package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sonyfx/ptpipctl/pkg/camera"
)

// applyProperty parses a "name=value" flag argument and dispatches it to
// the matching Camera setter.
func applyProperty(cam *camera.Camera, spec string) error {
	name, value, ok := strings.Cut(spec, "=")
	if !ok {
		return fmt.Errorf("--set expects name=value, got %q", spec)
	}

	switch strings.ToLower(name) {
	case "iso":
		return cam.SetISO(value)
	case "shutter", "shutter_speed":
		return cam.SetShutterSpeed(value)
	case "aperture":
		return cam.SetAperture(value)
	case "wb", "white_balance":
		return cam.SetWhiteBalance(value)
	case "focus", "focus_mode":
		return cam.SetFocusMode(value)
	case "ev", "exposure_compensation":
		ev, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("ev %q is not a number: %w", value, err)
		}
		return cam.SetExposureCompensation(ev)
	default:
		return fmt.Errorf("unknown property %q", name)
	}
}
