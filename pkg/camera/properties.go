package camera

// Sony SDIO vendor property codes used by the named convenience operations.
const (
	propISO            uint16 = 0xD21E
	propShutterSpeed   uint16 = 0xD20D
	propFNumber        uint16 = 0xD2C2
	propWhiteBalance   uint16 = 0x5005
	propFocusMode      uint16 = 0xD2C1
	propExposureBias   uint16 = 0x5010
	propMovieRecord    uint16 = 0xD2C8
	propZoom           uint16 = 0xD2DD
	propBatteryLevel   uint16 = 0xD218
	propRecordingState uint16 = 0xD21D
)

// Settings is a snapshot of the camera properties exposed through
// GetSettings, formatted the way a caller would display them.
type Settings struct {
	ISO                  string
	ShutterSpeed         string
	Aperture             string
	WhiteBalance         string
	FocusMode            string
	ExposureCompensation float64
	BatteryLevel         int
	IsRecording          bool
}
