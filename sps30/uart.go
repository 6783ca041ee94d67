// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package sps30

import (
	"errors"
	"time"

	"github.com/GermanBionicSystems/pmsensor/shdlc"
)

// uartCommand is the SHDLC encoding of an op.
type uartCommand struct {
	id byte
	// Sub command bytes sent ahead of the arguments.
	sub   []byte
	delay time.Duration
}

// There is no data-ready command over UART.
var uartCommands = map[op]uartCommand{
	opStart:           {id: 0x00, sub: []byte{0x01}, delay: 20 * time.Millisecond},
	opStop:            {id: 0x01, delay: 20 * time.Millisecond},
	opReadValues:      {id: 0x03},
	opSleep:           {id: 0x10, delay: 5 * time.Millisecond},
	opWakeUp:          {id: 0x11, delay: 5 * time.Millisecond},
	opFanCleaning:     {id: 0x56},
	opAutoCleaning:    {id: 0x80, sub: []byte{0x00}},
	opSetAutoCleaning: {id: 0x80, sub: []byte{0x00}, delay: 20 * time.Millisecond},
	opProductType:     {id: 0xd0, sub: []byte{0x00}},
	opSerialNumber:    {id: 0xd0, sub: []byte{0x03}},
	opVersion:         {id: 0xd1},
	opStatus:          {id: 0xd2, sub: []byte{0x00}},
	opClearStatus:     {id: 0xd2, sub: []byte{0x01}},
	opReset:           {id: 0xd3, delay: 100 * time.Millisecond},
}

type uartTransport struct {
	c *shdlc.Conn
}

// exec returns the reply data as sent by the device; n is not enforced
// since SHDLC frames carry their own length.
func (t *uartTransport) exec(o op, args []byte, n int) ([]byte, error) {
	c, ok := uartCommands[o]
	if !ok {
		return nil, ErrUnsupported
	}
	data := append(append([]byte(nil), c.sub...), args...)
	p, err := t.c.Tx(c.id, data)
	if err != nil {
		if errors.Is(err, shdlc.ErrFrame) || errors.Is(err, shdlc.ErrChecksum) {
			return nil, &FrameError{Op: o.String(), Err: err}
		}
		return nil, &BusError{Op: o.String(), Err: err}
	}
	if c.delay > 0 {
		time.Sleep(c.delay)
	}
	return p, nil
}

// wakeUp sends a 0xFF byte, which produces the low pulse that activates the
// interface, followed by the wake-up command.
func (t *uartTransport) wakeUp() error {
	if err := t.c.WriteRaw([]byte{0xff}); err != nil {
		return &BusError{Op: opWakeUp.String(), Err: err}
	}
	_, err := t.exec(opWakeUp, nil, 0)
	return err
}

func (t *uartTransport) deviceError() bool {
	return t.c.DeviceError()
}

func (t *uartTransport) String() string {
	return "uart"
}
