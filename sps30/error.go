// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package sps30

import (
	"errors"
	"fmt"
)

// ErrUnsupported is returned for operations the interface or the device
// firmware does not provide.
var ErrUnsupported = errors.New("sps30: operation not supported")

// BusError is a communication fault reported by the transport: a NACK, a
// timeout, a short transfer or a command rejected by the device. The
// underlying error is available through errors.Unwrap.
type BusError struct {
	Op  string
	Err error
}

func (e *BusError) Error() string {
	return fmt.Sprintf("sps30: %s: bus error: %v", e.Op, e.Err)
}

func (e *BusError) Unwrap() error {
	return e.Err
}

// FrameError is a reply that was received but does not have the expected
// shape: wrong length, bad CRC or a malformed frame.
type FrameError struct {
	Op string
	// Want and Got are the expected and received payload lengths. They are
	// both zero when Err describes the problem.
	Want int
	Got  int
	Err  error
}

func (e *FrameError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("sps30: %s: invalid frame: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("sps30: %s: invalid frame: received %d bytes, expected %d", e.Op, e.Got, e.Want)
}

func (e *FrameError) Unwrap() error {
	return e.Err
}
