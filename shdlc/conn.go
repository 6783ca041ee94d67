// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package shdlc

import (
	"errors"
	"fmt"
	"io"
)

// Conn exchanges frames with a single device over a byte stream, usually a
// serial port configured with a read timeout.
//
// Conn is not safe for concurrent use.
type Conn struct {
	rw      io.ReadWriter
	addr    byte
	flagged bool
	buf     [1]byte
}

// New returns a Conn talking to the device at addr through rw. The
// caller keeps ownership of rw.
func New(rw io.ReadWriter, addr byte) *Conn {
	return &Conn{rw: rw, addr: addr}
}

// Tx sends cmd with data and returns the data of the device reply. A reply
// with only the device error flag set in its state byte is a success; see
// DeviceError.
func (c *Conn) Tx(cmd byte, data []byte) ([]byte, error) {
	w, err := Encode(c.addr, cmd, data)
	if err != nil {
		return nil, err
	}
	if err := c.WriteRaw(w); err != nil {
		return nil, err
	}
	f, err := c.ReadFrame()
	if err != nil {
		return nil, err
	}
	if f.Addr != c.addr || f.Cmd != cmd {
		return nil, fmt.Errorf("%w: reply to cmd 0x%02x from 0x%02x for cmd 0x%02x", ErrFrame, f.Cmd, f.Addr, cmd)
	}
	c.flagged = f.State&stateDeviceError != 0
	if f.State&^stateDeviceError != 0 {
		return nil, &StateError{Cmd: cmd, State: f.State}
	}
	return f.Data, nil
}

// DeviceError reports whether the last reply had the device error flag set,
// meaning a flag is raised in the device status register.
func (c *Conn) DeviceError() bool {
	return c.flagged
}

// WriteRaw writes b unframed. It is used for the wake-up pulse.
func (c *Conn) WriteRaw(b []byte) error {
	for len(b) > 0 {
		n, err := c.rw.Write(b)
		if err != nil {
			return fmt.Errorf("shdlc: write: %w", err)
		}
		if n == 0 {
			return fmt.Errorf("shdlc: write: %w", io.ErrShortWrite)
		}
		b = b[n:]
	}
	return nil
}

// ReadFrame reads one frame, skipping anything before the opening
// delimiter.
func (c *Conn) ReadFrame() (Frame, error) {
	// Wait for the start of a frame.
	for {
		b, err := c.readByte()
		if err != nil {
			return Frame{}, err
		}
		if b == frameDelimiter {
			break
		}
	}
	raw := make([]byte, 0, 16)
	for {
		b, err := c.readByte()
		if err != nil {
			return Frame{}, err
		}
		if b == frameDelimiter {
			if len(raw) == 0 {
				// Back to back delimiters, the second one opens the frame.
				continue
			}
			break
		}
		if len(raw) == maxFrame {
			return Frame{}, ErrFrame
		}
		raw = append(raw, b)
	}
	body, err := Unstuff(raw)
	if err != nil {
		return Frame{}, err
	}
	return Decode(body)
}

// readByte reads a single byte. Serial ports return 0, nil when their read
// timeout expires.
func (c *Conn) readByte() (byte, error) {
	n, err := c.rw.Read(c.buf[:])
	if n == 1 {
		return c.buf[0], nil
	}
	if err == nil || errors.Is(err, io.EOF) {
		return 0, ErrTimeout
	}
	return 0, fmt.Errorf("shdlc: read: %w", err)
}
