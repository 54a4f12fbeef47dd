// Package camera is the typed Device API layered over a raw PTP/IP
// session: property get/set, live-view frame retrieval, and the named
// convenience operations a caller actually wants (set ISO, start
// recording, and so on).
package camera

import (
	"encoding/binary"

	log "github.com/sirupsen/logrus"

	"github.com/sonyfx/ptpipctl/pkg/ptpip/codec"
	"github.com/sonyfx/ptpipctl/pkg/ptpip/session"
)

// Camera is the public entry point embedders use to drive a Sony camera
// over PTP/IP. A Camera owns one underlying session.
type Camera struct {
	sess *session.Session
	log  *log.Entry
}

// New constructs a disconnected Camera.
func New() *Camera {
	return NewWithSession(session.New())
}

// NewWithSession wraps an already-constructed session.Session, letting
// callers (and this package's tests) substitute a session built with
// session.NewWithDialer instead of a real PTP/IP socket.
func NewWithSession(sess *session.Session) *Camera {
	return &Camera{
		sess: sess,
		log:  log.WithField("component", "camera"),
	}
}

// Connect opens the session to the given host and primes live-view by
// fetching the live-view object's info, per the Device API connect
// operation.
func (c *Camera) Connect(host string) error {
	if err := c.sess.Connect(host); err != nil {
		return err
	}
	// Priming failure does not abort the connection: a camera already in
	// a mode with no preview (e.g. playback) may legitimately refuse
	// this, and it has no bearing on property control.
	if _, err := c.sess.Do(codec.OpGetObjectInfo, []uint32{codec.LiveViewHandle}); err != nil {
		c.log.WithError(err).Debug("live-view priming failed")
	}
	return nil
}

// Disconnect tears the session down.
func (c *Camera) Disconnect() {
	c.sess.Disconnect()
}

// IsConnected reports whether the session has completed its handshake and
// is ready to accept operations.
func (c *Camera) IsConnected() bool {
	return c.sess.State() == session.StateReady
}

// allProperties fetches and parses the full device property list.
func (c *Camera) allProperties() (map[uint16]codec.PropertyDescriptor, error) {
	payload, code, err := c.sess.DoWithDataIn(codec.OpSdioGetAllExtDevicePropInfo, nil)
	if err != nil {
		return nil, err
	}
	if code != codec.RespOK {
		return nil, &session.OperationFailed{Opcode: codec.OpSdioGetAllExtDevicePropInfo, Code: code}
	}
	descs, err := codec.ParsePropertyDescriptors(payload)
	if err != nil {
		return nil, &session.ProtocolError{Reason: err.Error()}
	}
	out := make(map[uint16]codec.PropertyDescriptor, len(descs))
	for _, d := range descs {
		out[d.Code] = d
	}
	return out, nil
}

// GetSettings returns a snapshot of the properties a caller typically
// displays.
func (c *Camera) GetSettings() (Settings, error) {
	props, err := c.allProperties()
	if err != nil {
		return Settings{}, err
	}
	get := func(code uint16) uint32 { return props[code].CurrentValue }

	return Settings{
		ISO:                  formatISO(get(propISO)),
		ShutterSpeed:         formatShutterSpeed(get(propShutterSpeed)),
		Aperture:             formatAperture(get(propFNumber)),
		WhiteBalance:         formatWhiteBalance(get(propWhiteBalance)),
		FocusMode:            formatFocusMode(get(propFocusMode)),
		ExposureCompensation: formatExposureBias(get(propExposureBias)),
		BatteryLevel:         batteryPercent(props, propBatteryLevel),
		IsRecording:          get(propRecordingState) == 0x01,
	}, nil
}

func batteryPercent(props map[uint16]codec.PropertyDescriptor, code uint16) int {
	d, ok := props[code]
	if !ok {
		return -1
	}
	return int(d.CurrentValue)
}

// setU16 issues SdioControlDevice with a 2-byte little-endian payload.
func (c *Camera) setU16(code uint16, value uint32) error {
	payload := make([]byte, 2)
	binary.LittleEndian.PutUint16(payload, uint16(value))
	return c.control(code, payload)
}

// setU32 issues SdioControlDevice with a 4-byte little-endian payload.
func (c *Camera) setU32(code uint16, value uint32) error {
	payload := make([]byte, 4)
	binary.LittleEndian.PutUint32(payload, value)
	return c.control(code, payload)
}

func (c *Camera) control(propCode uint16, payload []byte) error {
	respCode, err := c.sess.DoWithDataOut(codec.OpSdioControlDevice, []uint32{uint32(propCode), 0}, payload)
	if err != nil {
		return err
	}
	if respCode != codec.RespOK {
		return &session.OperationFailed{Opcode: codec.OpSdioControlDevice, Code: respCode}
	}
	return nil
}

// SetISO sets the ISO property. See encodeISO for the accepted syntax.
func (c *Camera) SetISO(value string) error {
	raw, err := encodeISO(value)
	if err != nil {
		return err
	}
	return c.setU32(propISO, raw)
}

// SetShutterSpeed sets the shutter speed property from one of the
// supported textual ratios.
func (c *Camera) SetShutterSpeed(value string) error {
	raw, err := encodeShutterSpeed(value)
	if err != nil {
		return err
	}
	return c.setU32(propShutterSpeed, raw)
}

// SetAperture sets the aperture (f-number) property.
func (c *Camera) SetAperture(value string) error {
	raw, err := encodeAperture(value)
	if err != nil {
		return err
	}
	return c.setU16(propFNumber, raw)
}

// SetWhiteBalance sets the white balance property by name.
func (c *Camera) SetWhiteBalance(value string) error {
	raw, err := encodeWhiteBalance(value)
	if err != nil {
		return err
	}
	return c.setU16(propWhiteBalance, raw)
}

// SetFocusMode sets the focus mode property by name.
func (c *Camera) SetFocusMode(value string) error {
	raw, err := encodeFocusMode(value)
	if err != nil {
		return err
	}
	return c.setU16(propFocusMode, raw)
}

// SetExposureCompensation sets the exposure bias property from an EV value
// in [-3.0, 3.0].
func (c *Camera) SetExposureCompensation(ev float64) error {
	raw, err := encodeExposureBias(ev)
	if err != nil {
		return err
	}
	return c.setU32(propExposureBias, raw)
}

// StartRecording begins movie recording.
func (c *Camera) StartRecording() error {
	return c.setU16(propMovieRecord, movieRecordStart)
}

// StopRecording ends movie recording.
func (c *Camera) StopRecording() error {
	return c.setU16(propMovieRecord, movieRecordStop)
}

// StartZoom drives the zoom motor in the given direction at the given
// speed (1..7) until StopZoom is called.
func (c *Camera) StartZoom(dir ZoomDirection, speed int) error {
	raw, err := encodeZoom(dir, speed)
	if err != nil {
		return err
	}
	return c.setU32(propZoom, raw)
}

// StopZoom halts any in-progress zoom.
func (c *Camera) StopZoom() error {
	return c.setU32(propZoom, zoomStop)
}

// GetLiveFrame fetches the current live-view JPEG frame. It returns
// (nil, false, nil) when the camera has no frame ready — this is not an
// error condition.
func (c *Camera) GetLiveFrame() ([]byte, bool, error) {
	payload, code, err := c.sess.DoWithDataIn(codec.OpGetObject, []uint32{codec.LiveViewHandle})
	if err != nil {
		return nil, false, err
	}
	if code != codec.RespOK {
		return nil, false, nil
	}
	frame, ok := extractLiveViewFrame(payload)
	if !ok {
		return nil, false, nil
	}
	out := make([]byte, len(frame))
	copy(out, frame)
	return out, true, nil
}
