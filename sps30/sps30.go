// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package sps30

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/GermanBionicSystems/pmsensor/shdlc"
	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/i2c"
)

const (
	// DefaultAddress is the only I²C address the SPS30 answers on.
	DefaultAddress i2c.Addr = 0x69

	// uartAddress is the SHDLC slave address of the SPS30.
	uartAddress byte = 0x00
)

// op is a device operation. Each transport maps it to its own command
// encoding.
type op int

const (
	opStart op = iota
	opStop
	opDataReady
	opReadValues
	opSleep
	opWakeUp
	opFanCleaning
	opAutoCleaning
	opSetAutoCleaning
	opProductType
	opSerialNumber
	opVersion
	opStatus
	opClearStatus
	opReset
)

var opNames = [...]string{
	opStart:           "start measurement",
	opStop:            "stop measurement",
	opDataReady:       "read data-ready flag",
	opReadValues:      "read measured values",
	opSleep:           "sleep",
	opWakeUp:          "wake-up",
	opFanCleaning:     "start fan cleaning",
	opAutoCleaning:    "read auto cleaning interval",
	opSetAutoCleaning: "write auto cleaning interval",
	opProductType:     "read product type",
	opSerialNumber:    "read serial number",
	opVersion:         "read version",
	opStatus:          "read device status register",
	opClearStatus:     "clear device status register",
	opReset:           "device reset",
}

func (o op) String() string {
	if o >= 0 && int(o) < len(opNames) {
		return opNames[o]
	}
	return fmt.Sprintf("op(%d)", int(o))
}

// transport moves one command and its reply between the host and the
// device. Errors are *BusError or *FrameError.
type transport interface {
	// exec sends o with the argument bytes and returns the reply payload with
	// framing and CRCs removed. n is the payload length expected for a fixed
	// size reply, 0 for commands without a reply.
	exec(o op, args []byte, n int) ([]byte, error)
	wakeUp() error
	String() string
}

// Version is the firmware version of the device.
type Version struct {
	Major byte
	Minor byte
}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}

func (v Version) atLeast(major, minor byte) bool {
	return v.Major > major || (v.Major == major && v.Minor >= minor)
}

// Status is the device status register.
type Status uint32

const (
	statusFanSpeed Status = 1 << 21
	statusLaser    Status = 1 << 5
	statusFan      Status = 1 << 4
)

// FanSpeedWarning reports the fan running more than 10% off its target
// speed.
func (s Status) FanSpeedWarning() bool { return s&statusFanSpeed != 0 }

// LaserFailure reports the laser current being out of range.
func (s Status) LaserFailure() bool { return s&statusLaser != 0 }

// FanFailure reports the fan being switched on but not turning.
func (s Status) FanFailure() bool { return s&statusFan != 0 }

func (s Status) String() string {
	return fmt.Sprintf("fan speed warning: %t laser failure: %t fan failure: %t", s.FanSpeedWarning(), s.LaserFailure(), s.FanFailure())
}

// Opts holds the configuration options for the device.
//
// The zero value of Retries and AutoStart disables them. Start from a copy
// of DefaultOpts to change a single option:
//
//	opts := sps30.DefaultOpts
//	opts.Format = sps30.FormatInteger
type Opts struct {
	// Format is the output format requested when measurements are started.
	// Default is FormatFloat.
	Format Format
	// Retries is how many times Read repeats a transfer that failed with a
	// BusError. Frame errors are never retried. Default is 1.
	Retries int
	// AutoStart starts measurement mode when the device is created. Default
	// is true. When false the caller must call Start before Read.
	AutoStart bool
}

// DefaultOpts holds the default configuration options for the device.
var DefaultOpts = Opts{
	Format:    FormatFloat,
	Retries:   1,
	AutoStart: true,
}

// Dev is a handle to an SPS30.
type Dev struct {
	t         transport
	opts      Opts
	format    Format
	version   Version
	measuring bool
	// Read waits until then for the first values after a Start.
	settle time.Time
}

// startDelay is how long the device needs after Start before it returns
// values in the requested format.
var startDelay = time.Second

// NewI2C returns a Dev that communicates over I²C. The caller owns b and
// must keep it open while the Dev is used. opts can be nil.
func NewI2C(b i2c.Bus, addr i2c.Addr, opts *Opts) (*Dev, error) {
	return newDev(&i2cTransport{d: &i2c.Dev{Bus: b, Addr: uint16(addr)}}, opts)
}

// NewUART returns a Dev that communicates over UART using SHDLC frames. rw
// is usually a serial port opened at 115200 baud, 8N1, with a read timeout.
// opts can be nil.
func NewUART(rw io.ReadWriter, opts *Opts) (*Dev, error) {
	return newDev(&uartTransport{c: shdlc.New(rw, uartAddress)}, opts)
}

func newDev(t transport, opts *Opts) (*Dev, error) {
	if opts == nil {
		opts = &DefaultOpts
	}
	d := &Dev{t: t, opts: *opts}
	if d.opts.Format == 0 {
		d.opts.Format = FormatFloat
	}
	if d.opts.Format != FormatFloat && d.opts.Format != FormatInteger {
		return nil, fmt.Errorf("sps30: invalid format %s", d.opts.Format)
	}
	if d.opts.Retries < 0 {
		d.opts.Retries = 0
	}
	d.format = d.opts.Format

	v, err := d.Version()
	if err != nil {
		return nil, err
	}
	d.version = v
	if d.opts.AutoStart {
		if err := d.Start(d.opts.Format); err != nil {
			return nil, err
		}
	}
	return d, nil
}

// Start puts the device in measurement mode with the given output format.
// The first values, in the new format, are available about one second
// later; a Read issued before then blocks for the remainder of that second.
func (d *Dev) Start(f Format) error {
	if f != FormatFloat && f != FormatInteger {
		return fmt.Errorf("sps30: invalid format %s", f)
	}
	if _, err := d.t.exec(opStart, []byte{byte(f)}, 0); err != nil {
		return err
	}
	d.format = f
	d.measuring = true
	d.settle = time.Now().Add(startDelay)
	return nil
}

// Stop returns the device to idle mode.
func (d *Dev) Stop() error {
	if _, err := d.t.exec(opStop, nil, 0); err != nil {
		return err
	}
	d.measuring = false
	return nil
}

// Halt stops measurement mode if it is running. Implements conn.Resource.
func (d *Dev) Halt() error {
	if !d.measuring {
		return nil
	}
	return d.Stop()
}

// Read returns the most recent measured values. A transfer failing with a
// BusError is retried up to Opts.Retries times. A reply that does not match
// the configured format, including an empty one, fails with a FrameError.
func (d *Dev) Read() (Measurement, error) {
	if wait := time.Until(d.settle); wait > 0 {
		time.Sleep(wait)
	}
	n := d.format.frameSize()
	var payload []byte
	var err error
	for attempt := 0; ; attempt++ {
		payload, err = d.t.exec(opReadValues, nil, n)
		if err == nil {
			break
		}
		var busErr *BusError
		if !errors.As(err, &busErr) || attempt >= d.opts.Retries {
			return Measurement{}, err
		}
	}
	return decode(payload, d.format)
}

// Format returns the output format currently in use.
func (d *Dev) Format() Format {
	return d.format
}

// DataReady reports whether new measured values are available. Only
// supported over I²C; over UART Read returns a FrameError while no new values
// are available.
func (d *Dev) DataReady() (bool, error) {
	p, err := d.t.exec(opDataReady, nil, 2)
	if err != nil {
		return false, err
	}
	if len(p) != 2 {
		return false, &FrameError{Op: opDataReady.String(), Want: 2, Got: len(p)}
	}
	return p[1] == 1, nil
}

// Sleep puts an idle device in low power mode. Requires firmware 2.0.
func (d *Dev) Sleep() error {
	if err := d.requireFirmware(2, 0); err != nil {
		return err
	}
	_, err := d.t.exec(opSleep, nil, 0)
	return err
}

// WakeUp returns the device from sleep to idle mode. Requires firmware 2.0.
func (d *Dev) WakeUp() error {
	if err := d.requireFirmware(2, 0); err != nil {
		return err
	}
	return d.t.wakeUp()
}

// StatusFlagged reports whether the last UART reply carried the device
// error flag, which the device raises while any flag is set in its status
// register; call Status for the details. Always false over I²C, where the
// status register has to be polled.
func (d *Dev) StatusFlagged() bool {
	f, ok := d.t.(interface{ deviceError() bool })
	return ok && f.deviceError()
}

// StartFanCleaning runs the fan at maximum speed for 10 seconds to blow out
// accumulated dust. Only accepted in measurement mode.
func (d *Dev) StartFanCleaning() error {
	_, err := d.t.exec(opFanCleaning, nil, 0)
	return err
}

// AutoCleaningInterval returns the interval between automatic fan cleanings.
// Zero means automatic cleaning is disabled.
func (d *Dev) AutoCleaningInterval() (time.Duration, error) {
	p, err := d.t.exec(opAutoCleaning, nil, 4)
	if err != nil {
		return 0, err
	}
	if len(p) != 4 {
		return 0, &FrameError{Op: opAutoCleaning.String(), Want: 4, Got: len(p)}
	}
	return time.Duration(binary.BigEndian.Uint32(p)) * time.Second, nil
}

// SetAutoCleaningInterval sets the interval between automatic fan cleanings
// with a resolution of one second. The value is persisted by the device.
func (d *Dev) SetAutoCleaningInterval(interval time.Duration) error {
	secs := interval / time.Second
	if interval < 0 || secs > math.MaxUint32 {
		return fmt.Errorf("sps30: invalid auto cleaning interval %s", interval)
	}
	args := binary.BigEndian.AppendUint32(nil, uint32(secs))
	_, err := d.t.exec(opSetAutoCleaning, args, 0)
	return err
}

// ProductType returns the product type string, "00080000" for an SPS30.
func (d *Dev) ProductType() (string, error) {
	p, err := d.t.exec(opProductType, nil, 8)
	if err != nil {
		return "", err
	}
	return cString(p), nil
}

// SerialNumber returns the serial number string of the device.
func (d *Dev) SerialNumber() (string, error) {
	p, err := d.t.exec(opSerialNumber, nil, 32)
	if err != nil {
		return "", err
	}
	return cString(p), nil
}

// Version reads the firmware version from the device.
func (d *Dev) Version() (Version, error) {
	p, err := d.t.exec(opVersion, nil, 2)
	if err != nil {
		return Version{}, err
	}
	if len(p) < 2 {
		return Version{}, &FrameError{Op: opVersion.String(), Want: 2, Got: len(p)}
	}
	return Version{Major: p[0], Minor: p[1]}, nil
}

// Status reads the device status register and optionally clears it.
// Requires firmware 2.2.
func (d *Dev) Status(clearFlags bool) (Status, error) {
	if err := d.requireFirmware(2, 2); err != nil {
		return 0, err
	}
	p, err := d.t.exec(opStatus, nil, 4)
	if err != nil {
		return 0, err
	}
	if len(p) < 4 {
		return 0, &FrameError{Op: opStatus.String(), Want: 4, Got: len(p)}
	}
	s := Status(binary.BigEndian.Uint32(p))
	if clearFlags {
		if _, err := d.t.exec(opClearStatus, nil, 0); err != nil {
			return s, err
		}
	}
	return s, nil
}

// Reset performs a soft reset. The device returns to idle mode.
func (d *Dev) Reset() error {
	if _, err := d.t.exec(opReset, nil, 0); err != nil {
		return err
	}
	d.measuring = false
	return nil
}

func (d *Dev) String() string {
	return fmt.Sprintf("sps30: %s", d.t.String())
}

func (d *Dev) requireFirmware(major, minor byte) error {
	if d.version.atLeast(major, minor) {
		return nil
	}
	return fmt.Errorf("%w: requires firmware %d.%d, device has %s", ErrUnsupported, major, minor, d.version)
}

// cString returns the ASCII string up to the first NUL byte.
func cString(b []byte) string {
	if ix := bytes.IndexByte(b, 0); ix >= 0 {
		b = b[:ix]
	}
	return string(b)
}

var _ conn.Resource = &Dev{}
