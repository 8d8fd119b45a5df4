package cansim

import (
	"fmt"
	"log"
	"path/filepath"
	"runtime"
	"time"
)

const (
	DefaultBaudrate = 115200

	defaultSettleDelay    = 2 * time.Second
	defaultReadTimeout    = 10 * time.Millisecond
	defaultPollInterval   = 10 * time.Millisecond
	defaultCommandTimeout = 5 * time.Second
)

// Config holds everything a session and its transport need. The zero
// value is usable after applyDefaults; only Port (serial) or Address
// (tcp) is mandatory.
type Config struct {
	Port         string // serial device, e.g. /dev/ttyACM0
	PortBaudrate int
	Address      string // host:port for the tcp transport

	// SettleDelay is how long to wait after opening the transport for
	// the firmware to finish booting before input is trusted.
	SettleDelay time.Duration
	// ReadTimeout bounds a single transport read; it also bounds how
	// long the read loop takes to notice a stop request.
	ReadTimeout time.Duration
	// PollInterval is the cadence at which SendCommand checks the
	// response store.
	PollInterval time.Duration
	// CommandTimeout is used when SendCommand is called with a zero
	// timeout.
	CommandTimeout time.Duration

	Debug bool

	// OnMessage receives firmware console output and demuxer
	// diagnostics. Defaults to logging with the caller's position.
	OnMessage func(string)
	// OnStatus receives unsolicited status updates. Updates arriving
	// with no callback registered are dropped.
	OnStatus func(*Status)
	// OnError receives unsolicited firmware error notifications.
	OnError func(string)
}

func (cfg *Config) applyDefaults() {
	if cfg.PortBaudrate == 0 {
		cfg.PortBaudrate = DefaultBaudrate
	}
	if cfg.SettleDelay == 0 {
		cfg.SettleDelay = defaultSettleDelay
	}
	if cfg.ReadTimeout == 0 {
		cfg.ReadTimeout = defaultReadTimeout
	}
	if cfg.PollInterval == 0 {
		cfg.PollInterval = defaultPollInterval
	}
	if cfg.CommandTimeout == 0 {
		cfg.CommandTimeout = defaultCommandTimeout
	}
	if cfg.OnMessage == nil {
		cfg.OnMessage = func(msg string) {
			_, file, no, ok := runtime.Caller(1)
			if ok {
				fmt.Printf("%s#%d %v\n", filepath.Base(file), no, msg)
			} else {
				log.Println(msg)
			}
		}
	}
}
