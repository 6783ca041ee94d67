// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package pmsensor is a container for particulate matter sensor drivers
// built on periph.io.
//
// The sps30 package drives the Sensirion SPS30 over I²C or UART. The common
// and shdlc packages hold the Sensirion I²C word framing and UART frame
// protocol it relies on. cmd/sps30mon polls a sensor and exports the
// readings.
package pmsensor
