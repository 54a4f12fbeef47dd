// Package config loads connection and runtime-tunable settings for a
// PTP/IP session from an INI file, using the same gopkg.in/ini.v1 library
// this module's teacher uses to parse its own EDS configuration files.
//
// The core session and camera packages never read this file themselves;
// Config is purely an ambient concern that a CLI or other embedder loads
// once at startup and feeds into session.Session / camera.Camera.
package config

import (
	"time"

	"gopkg.in/ini.v1"
)

// Config holds everything a PTP/IP client needs to know before it dials a
// camera. Default() returns a value usable without a file on disk.
type Config struct {
	Host              string
	FriendlyName      string
	ConnectTimeout    time.Duration
	ReceiveTimeout    time.Duration
	KeepAliveInterval time.Duration
	LogLevel          string
}

// Default returns the configuration a client uses when no file is
// supplied on the command line.
func Default() Config {
	return Config{
		Host:              "",
		FriendlyName:      "ptpipctl",
		ConnectTimeout:    10 * time.Second,
		ReceiveTimeout:    15 * time.Second,
		KeepAliveInterval: 15 * time.Second,
		LogLevel:          "info",
	}
}

// Load reads an INI file at path and overlays its [connection], [tuning]
// and [logging] sections on top of Default(). A key absent from the file keeps
// its default value.
func Load(path string) (Config, error) {
	cfg := Default()

	f, err := ini.Load(path)
	if err != nil {
		return Config{}, err
	}

	conn := f.Section("connection")
	if conn.HasKey("host") {
		cfg.Host = conn.Key("host").String()
	}
	if conn.HasKey("friendly_name") {
		cfg.FriendlyName = conn.Key("friendly_name").String()
	}

	tuning := f.Section("tuning")
	cfg.ConnectTimeout = durationOr(tuning, "connect_timeout_ms", cfg.ConnectTimeout)
	cfg.ReceiveTimeout = durationOr(tuning, "receive_timeout_ms", cfg.ReceiveTimeout)
	cfg.KeepAliveInterval = durationOr(tuning, "keepalive_interval_ms", cfg.KeepAliveInterval)

	logging := f.Section("logging")
	if logging.HasKey("level") {
		cfg.LogLevel = logging.Key("level").String()
	}

	return cfg, nil
}

func durationOr(section *ini.Section, key string, fallback time.Duration) time.Duration {
	if !section.HasKey(key) {
		return fallback
	}
	ms, err := section.Key(key).Int()
	if err != nil {
		return fallback
	}
	return time.Duration(ms) * time.Millisecond
}
