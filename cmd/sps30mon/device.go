// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package main

import (
	"fmt"
	"io"
	"time"

	"github.com/GermanBionicSystems/pmsensor/sps30"
	"go.bug.st/serial"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"
)

// The SPS30 UART runs at 115200 baud, 8N1.
var serialMode = &serial.Mode{
	BaudRate: 115200,
	DataBits: 8,
	Parity:   serial.NoParity,
	StopBits: serial.OneStopBit,
}

// deviceInfo is the static description of the sensor served over HTTP.
type deviceInfo struct {
	Interface   string `json:"interface"`
	ProductType string `json:"product_type"`
	Serial      string `json:"serial"`
	Firmware    string `json:"firmware"`
	Format      string `json:"format"`
}

// openDevice opens the configured bus and starts measuring. The returned
// closer releases the bus.
func openDevice(cfg config) (*sps30.Dev, io.Closer, error) {
	opts := &sps30.Opts{Format: cfg.Format, Retries: cfg.Retries, AutoStart: true}
	switch cfg.Interface {
	case "uart":
		port, err := serial.Open(cfg.SerialPort, serialMode)
		if err != nil {
			return nil, nil, fmt.Errorf("open %s: %w", cfg.SerialPort, err)
		}
		if err := port.SetReadTimeout(500 * time.Millisecond); err != nil {
			_ = port.Close()
			return nil, nil, err
		}
		dev, err := sps30.NewUART(port, opts)
		if err != nil {
			_ = port.Close()
			return nil, nil, err
		}
		return dev, port, nil
	default:
		if _, err := host.Init(); err != nil {
			return nil, nil, err
		}
		bus, err := i2creg.Open(cfg.I2CBus)
		if err != nil {
			return nil, nil, fmt.Errorf("open I²C bus %q: %w", cfg.I2CBus, err)
		}
		dev, err := sps30.NewI2C(bus, i2c.Addr(cfg.I2CAddr), opts)
		if err != nil {
			_ = bus.Close()
			return nil, nil, err
		}
		return dev, bus, nil
	}
}

// identifier is the part of sps30.Dev used to describe the sensor.
type identifier interface {
	ProductType() (string, error)
	SerialNumber() (string, error)
	Version() (sps30.Version, error)
	Format() sps30.Format
}

func readDeviceInfo(dev identifier, iface string) (deviceInfo, error) {
	info := deviceInfo{Interface: iface, Format: dev.Format().String()}
	var err error
	if info.ProductType, err = dev.ProductType(); err != nil {
		return info, err
	}
	if info.Serial, err = dev.SerialNumber(); err != nil {
		return info, err
	}
	v, err := dev.Version()
	if err != nil {
		return info, err
	}
	info.Firmware = v.String()
	return info, nil
}
