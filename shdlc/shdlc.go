// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package shdlc implements the Sensirion HDLC-like framing used by Sensirion
// sensors on their UART interface.
//
// A host (MOSI) frame is
//
//	0x7E ADR CMD L DATA... CHK 0x7E
//
// and a device (MISO) frame is
//
//	0x7E ADR CMD STATE L DATA... CHK 0x7E
//
// CHK is the inverted low byte of the sum of all bytes between the
// delimiters. The reserved bytes 0x7E, 0x7D, 0x11 and 0x13 are escaped with
// 0x7D followed by the byte xor 0x20.
package shdlc

import (
	"errors"
	"fmt"
)

const (
	frameDelimiter byte = 0x7e
	escape         byte = 0x7d
	escapeXor      byte = 0x20
	xon            byte = 0x11
	xoff           byte = 0x13

	// MaxData is the largest payload a frame can carry.
	MaxData = 255
	// maxFrame bounds the number of stuffed bytes read for one reply.
	maxFrame = 2 * (MaxData + 7)
)

var (
	// ErrFrame is returned for a reply that is not a well formed frame.
	ErrFrame = errors.New("shdlc: malformed frame")
	// ErrChecksum is returned when the frame checksum does not match.
	ErrChecksum = errors.New("shdlc: checksum mismatch")
	// ErrTimeout is returned when the port stops delivering bytes before a
	// full frame was received.
	ErrTimeout = errors.New("shdlc: timeout waiting for reply")
)

// stateDeviceError is the state bit the device sets while a flag is raised in
// its status register. It does not mean the command failed.
const stateDeviceError = 0x80

// StateError is a state byte with a non-zero error code returned by the
// device.
type StateError struct {
	Cmd   byte
	State byte
}

func (e *StateError) Error() string {
	return fmt.Sprintf("shdlc: cmd 0x%02x: device state 0x%02x (%s)", e.Cmd, e.State, e.Description())
}

// Code returns the error code with the device error flag masked out.
func (e *StateError) Code() byte {
	return e.State &^ stateDeviceError
}

// DeviceError reports whether the device has raised its error flag; read
// the device status register for details.
func (e *StateError) DeviceError() bool {
	return e.State&stateDeviceError != 0
}

// Description returns the datasheet meaning of the error code.
func (e *StateError) Description() string {
	switch e.Code() {
	case 0x00:
		return "no error"
	case 0x01:
		return "wrong data length"
	case 0x02:
		return "unknown command"
	case 0x03:
		return "no access right"
	case 0x04:
		return "illegal parameter"
	case 0x28:
		return "argument out of range"
	case 0x43:
		return "command not allowed in current state"
	default:
		return "unknown error"
	}
}

// Frame is a decoded device reply.
type Frame struct {
	Addr  byte
	Cmd   byte
	State byte
	Data  []byte
}

func checksum(b []byte) byte {
	var sum byte
	for _, v := range b {
		sum += v
	}
	return ^sum
}

func stuff(dst []byte, b byte) []byte {
	switch b {
	case frameDelimiter, escape, xon, xoff:
		return append(dst, escape, b^escapeXor)
	}
	return append(dst, b)
}

// Encode builds the stuffed host frame for cmd with the given data.
func Encode(addr, cmd byte, data []byte) ([]byte, error) {
	if len(data) > MaxData {
		return nil, fmt.Errorf("shdlc: %d bytes of data exceeds frame size", len(data))
	}
	body := make([]byte, 0, len(data)+4)
	body = append(body, addr, cmd, byte(len(data)))
	body = append(body, data...)
	body = append(body, checksum(body))

	out := make([]byte, 0, 2*len(body)+2)
	out = append(out, frameDelimiter)
	for _, b := range body {
		out = stuff(out, b)
	}
	return append(out, frameDelimiter), nil
}

// Unstuff removes the byte stuffing from the bytes found between two frame
// delimiters.
func Unstuff(raw []byte) ([]byte, error) {
	out := make([]byte, 0, len(raw))
	for ix := 0; ix < len(raw); ix++ {
		b := raw[ix]
		if b == escape {
			ix++
			if ix == len(raw) {
				return nil, ErrFrame
			}
			b = raw[ix] ^ escapeXor
		}
		out = append(out, b)
	}
	return out, nil
}

// Decode parses the unstuffed content of a device frame, without the
// delimiters.
func Decode(body []byte) (Frame, error) {
	if len(body) < 5 {
		return Frame{}, ErrFrame
	}
	n := int(body[3])
	if len(body) != n+5 {
		return Frame{}, fmt.Errorf("%w: length byte %d for %d byte frame", ErrFrame, n, len(body))
	}
	if chk := checksum(body[:len(body)-1]); chk != body[len(body)-1] {
		return Frame{}, ErrChecksum
	}
	f := Frame{Addr: body[0], Cmd: body[1], State: body[2]}
	if n > 0 {
		f.Data = append([]byte(nil), body[4:4+n]...)
	}
	return f, nil
}
