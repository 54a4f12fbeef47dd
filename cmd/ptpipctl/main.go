// Command ptpipctl connects to a Sony PTP/IP camera, optionally applies a
// property change, prints the current settings, optionally writes one
// live-view frame to a file, and disconnects. It is this
// module's own smoke-test harness, exercising the Device API end to end
// the way cmd/sdo_client exercises the CANopen network facade.
package main

import (
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/pflag"

	"github.com/sonyfx/ptpipctl/pkg/camera"
	"github.com/sonyfx/ptpipctl/pkg/config"
	"github.com/sonyfx/ptpipctl/pkg/ptpip/session"
	"github.com/sonyfx/ptpipctl/pkg/ptpip/transport"
)

func main() {
	var (
		host        = pflag.StringP("host", "H", "", "camera IP address (required unless given by --config)")
		configPath  = pflag.StringP("config", "c", "", "path to an INI connection settings file")
		setProperty = pflag.String("set", "", "property=value to apply after connecting, e.g. iso=800")
		livePath    = pflag.String("live-frame", "", "if set, write one captured live-view JPEG frame to this path")
		verbose     = pflag.BoolP("verbose", "v", false, "enable debug logging")
		help        = pflag.BoolP("help", "h", false, "show usage")
	)
	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: ptpipctl --host <ip> [flags]\n\n")
		pflag.PrintDefaults()
	}
	pflag.Parse()

	if *help {
		pflag.Usage()
		return
	}

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			log.WithError(err).Fatal("failed to load config file")
		}
		cfg = loaded
	}
	if *host != "" {
		cfg.Host = *host
	}
	if cfg.Host == "" {
		fmt.Fprintln(os.Stderr, "ptpipctl: --host is required unless set in --config")
		pflag.Usage()
		os.Exit(2)
	}

	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = log.InfoLevel
	}
	if *verbose {
		level = log.DebugLevel
	}
	log.SetLevel(level)

	transport.ConnectTimeout = cfg.ConnectTimeout
	transport.ReceiveTimeout = cfg.ReceiveTimeout
	session.KeepAliveInterval = cfg.KeepAliveInterval
	session.FriendlyName = cfg.FriendlyName

	cam := camera.New()
	if err := cam.Connect(cfg.Host); err != nil {
		log.WithError(err).Fatal("failed to connect to camera")
	}
	defer cam.Disconnect()

	log.WithField("host", cfg.Host).Info("connected")

	if *setProperty != "" {
		if err := applyProperty(cam, *setProperty); err != nil {
			log.WithError(err).Fatal("failed to apply property")
		}
	}

	settings, err := cam.GetSettings()
	if err != nil {
		log.WithError(err).Fatal("failed to read settings")
	}
	fmt.Printf("ISO: %s  Shutter: %s  Aperture: %s  WB: %s  Focus: %s  EV: %s  Battery: %d%%  Recording: %v\n",
		settings.ISO, settings.ShutterSpeed, settings.Aperture, settings.WhiteBalance,
		settings.FocusMode, camera.FormatExposureCompensation(settings.ExposureCompensation),
		settings.BatteryLevel, settings.IsRecording)

	if *livePath != "" {
		frame, ok, err := cam.GetLiveFrame()
		if err != nil {
			log.WithError(err).Fatal("failed to fetch live-view frame")
		}
		if !ok {
			fmt.Fprintln(os.Stderr, "ptpipctl: no live-view frame available")
			return
		}
		if err := os.WriteFile(*livePath, frame, 0o644); err != nil {
			log.WithError(err).Fatal("failed to write live-view frame")
		}
		log.WithField("path", *livePath).WithField("bytes", len(frame)).Info("wrote live-view frame")
	}
}
