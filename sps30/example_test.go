//go:build examples
// +build examples

// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package sps30_test

import (
	"fmt"
	"log"
	"time"

	"github.com/GermanBionicSystems/pmsensor/sps30"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"
)

// Example reads the sensor once a second over I²C. The SPS30 works up to
// 100kHz and its interface select pin must be tied to ground.
func Example() {
	if _, err := host.Init(); err != nil {
		log.Fatal(err)
	}
	bus, err := i2creg.Open("")
	if err != nil {
		log.Fatal(err)
	}
	defer bus.Close()

	dev, err := sps30.NewI2C(bus, sps30.DefaultAddress, nil)
	if err != nil {
		log.Fatal(err)
	}
	defer dev.Halt()

	for i := 0; i < 10; i++ {
		time.Sleep(time.Second)
		m, err := dev.Read()
		if err != nil {
			fmt.Println("unable to read from sensor, retrying:", err)
			continue
		}
		fmt.Printf("PM1.0: %.1f PM2.5: %.1f PM10: %.1f\n", m.MassPM1, m.MassPM25, m.MassPM10)
	}
}
