// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package main

import (
	"flag"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/GermanBionicSystems/pmsensor/sps30"
)

// The device produces one new set of values per second.
const minInterval = time.Second

type config struct {
	Interface  string
	I2CBus     string
	I2CAddr    uint16
	SerialPort string
	Interval   time.Duration
	Format     sps30.Format
	Retries    int
	Listen     string

	InfluxURL    string
	InfluxToken  string
	InfluxOrg    string
	InfluxBucket string
}

// loadConfig parses the command line. Flags default to the values of the
// matching environment variables.
func loadConfig(args []string, getenv func(string) string) (config, error) {
	env := func(key, def string) string {
		if v := getenv(key); v != "" {
			return v
		}
		return def
	}
	var cfg config
	var addr, interval, format, retries string

	fs := flag.NewFlagSet("sps30mon", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&cfg.Interface, "interface", env("SPS30_INTERFACE", "i2c"), "sensor interface: i2c or uart")
	fs.StringVar(&cfg.I2CBus, "i2c-bus", env("SPS30_I2C_BUS", ""), "I²C bus name, empty for the first available")
	fs.StringVar(&addr, "i2c-addr", env("SPS30_I2C_ADDR", "0x69"), "I²C device address")
	fs.StringVar(&cfg.SerialPort, "serial-port", env("SPS30_SERIAL_PORT", "/dev/ttyUSB0"), "serial port for the uart interface")
	fs.StringVar(&interval, "interval", env("SPS30_INTERVAL", "5s"), "polling interval")
	fs.StringVar(&format, "format", env("SPS30_FORMAT", "float"), "output format: float or integer")
	fs.StringVar(&retries, "retries", env("SPS30_RETRIES", "1"), "retries of a read failing with a bus error")
	fs.StringVar(&cfg.Listen, "listen", env("SPS30_LISTEN", ":9130"), "HTTP listen address, empty to disable")
	fs.StringVar(&cfg.InfluxURL, "influx-url", env("INFLUX_URL", ""), "InfluxDB URL, empty to disable")
	fs.StringVar(&cfg.InfluxToken, "influx-token", env("INFLUX_TOKEN", ""), "InfluxDB token")
	fs.StringVar(&cfg.InfluxOrg, "influx-org", env("INFLUX_ORG", ""), "InfluxDB organization")
	fs.StringVar(&cfg.InfluxBucket, "influx-bucket", env("INFLUX_BUCKET", ""), "InfluxDB bucket")
	if err := fs.Parse(args); err != nil {
		return config{}, err
	}

	switch cfg.Interface {
	case "i2c", "uart":
	default:
		return config{}, fmt.Errorf("invalid interface %q", cfg.Interface)
	}
	a, err := strconv.ParseUint(addr, 0, 7)
	if err != nil {
		return config{}, fmt.Errorf("invalid I²C address %q: %w", addr, err)
	}
	cfg.I2CAddr = uint16(a)
	if cfg.Interval, err = time.ParseDuration(interval); err != nil {
		return config{}, fmt.Errorf("invalid interval %q: %w", interval, err)
	}
	if cfg.Interval < minInterval {
		return config{}, fmt.Errorf("interval %s is shorter than the sensor update rate of %s", cfg.Interval, minInterval)
	}
	switch format {
	case "float":
		cfg.Format = sps30.FormatFloat
	case "integer":
		cfg.Format = sps30.FormatInteger
	default:
		return config{}, fmt.Errorf("invalid format %q", format)
	}
	if cfg.Retries, err = strconv.Atoi(retries); err != nil || cfg.Retries < 0 {
		return config{}, fmt.Errorf("invalid retries %q", retries)
	}
	if cfg.InfluxURL != "" && (cfg.InfluxOrg == "" || cfg.InfluxBucket == "") {
		return config{}, fmt.Errorf("influx organization and bucket are required with %s", cfg.InfluxURL)
	}
	return cfg, nil
}
