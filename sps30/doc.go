// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package sps30 provides a driver for the Sensirion SPS30 particulate matter
// sensor.
//
// The SPS30 reports mass concentration for PM1.0, PM2.5, PM4 and PM10, number
// concentration for PM0.5 through PM10 and a typical particle size. It can be
// connected over I²C (interface select pin tied to ground) or over UART, in
// which case frames use the Sensirion SHDLC protocol.
//
// The driver borrows the bus it is given and performs no locking. If several
// goroutines share a Dev, or a bus with other devices, the caller must
// serialize access.
//
// # Datasheet
//
// https://sensirion.com/media/documents/8600FF88/616542B5/Sensirion_PM_Sensors_Datasheet_SPS30.pdf
package sps30
