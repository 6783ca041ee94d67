// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package main

import (
	"testing"
	"time"

	"github.com/GermanBionicSystems/pmsensor/sps30"
	"github.com/google/go-cmp/cmp"
)

func envMap(m map[string]string) func(string) string {
	return func(key string) string { return m[key] }
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := loadConfig(nil, envMap(nil))
	if err != nil {
		t.Fatal(err)
	}
	want := config{
		Interface:  "i2c",
		I2CAddr:    0x69,
		SerialPort: "/dev/ttyUSB0",
		Interval:   5 * time.Second,
		Format:     sps30.FormatFloat,
		Retries:    1,
		Listen:     ":9130",
	}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("loadConfig() mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadConfigEnvAndFlags(t *testing.T) {
	env := envMap(map[string]string{
		"SPS30_INTERFACE":   "uart",
		"SPS30_SERIAL_PORT": "/dev/ttyAMA0",
		"SPS30_FORMAT":      "integer",
		"SPS30_INTERVAL":    "30s",
		"INFLUX_URL":        "http://localhost:8086",
		"INFLUX_ORG":        "home",
		"INFLUX_BUCKET":     "air",
	})
	cfg, err := loadConfig([]string{"-interval", "10s", "-retries", "0", "-listen", ""}, env)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Interface != "uart" || cfg.SerialPort != "/dev/ttyAMA0" || cfg.Format != sps30.FormatInteger {
		t.Errorf("environment not applied: %#v", cfg)
	}
	if cfg.Interval != 10*time.Second || cfg.Retries != 0 || cfg.Listen != "" {
		t.Errorf("flags did not override the environment: %#v", cfg)
	}
	if cfg.InfluxBucket != "air" {
		t.Errorf("unexpected bucket %q", cfg.InfluxBucket)
	}
}

func TestLoadConfigErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		env  map[string]string
	}{
		{name: "interface", args: []string{"-interface", "spi"}},
		{name: "address", args: []string{"-i2c-addr", "0x100"}},
		{name: "interval", args: []string{"-interval", "soon"}},
		{name: "fast interval", args: []string{"-interval", "100ms"}},
		{name: "format", args: []string{"-format", "hex"}},
		{name: "retries", args: []string{"-retries", "-1"}},
		{name: "influx", env: map[string]string{"INFLUX_URL": "http://localhost:8086"}},
		{name: "unknown flag", args: []string{"-verbose"}},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if _, err := loadConfig(test.args, envMap(test.env)); err == nil {
				t.Error("loadConfig() did not generate error")
			}
		})
	}
}
