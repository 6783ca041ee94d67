// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package sps30

import (
	"time"

	"github.com/GermanBionicSystems/pmsensor/common"
	"periph.io/x/conn/v3/i2c"
)

// i2cCommand is the I²C encoding of an op.
type i2cCommand struct {
	// 16-bit command pointer.
	word uint16
	// Execution time the device needs after the command is written.
	delay time.Duration
}

var i2cCommands = map[op]i2cCommand{
	opStart:           {word: 0x0010, delay: 20 * time.Millisecond},
	opStop:            {word: 0x0104, delay: 20 * time.Millisecond},
	opDataReady:       {word: 0x0202},
	opReadValues:      {word: 0x0300},
	opSleep:           {word: 0x1001, delay: 5 * time.Millisecond},
	opWakeUp:          {word: 0x1103, delay: 5 * time.Millisecond},
	opFanCleaning:     {word: 0x5607, delay: 5 * time.Millisecond},
	opAutoCleaning:    {word: 0x8004},
	opSetAutoCleaning: {word: 0x8004, delay: 20 * time.Millisecond},
	opProductType:     {word: 0xd002},
	opSerialNumber:    {word: 0xd033},
	opVersion:         {word: 0xd100},
	opStatus:          {word: 0xd206},
	opClearStatus:     {word: 0xd210, delay: 5 * time.Millisecond},
	opReset:           {word: 0xd304, delay: 100 * time.Millisecond},
}

type i2cTransport struct {
	d *i2c.Dev
}

// exec writes the command and reads the reply in two separate transfers.
// The SPS30 does not support a repeated start between them.
func (t *i2cTransport) exec(o op, args []byte, n int) ([]byte, error) {
	c, ok := i2cCommands[o]
	if !ok {
		return nil, ErrUnsupported
	}
	w := []byte{byte(c.word >> 8), byte(c.word)}
	if len(args) > 0 {
		w = append(w, common.EncodeBytes(args)...)
	}
	if err := t.d.Tx(w, nil); err != nil {
		return nil, &BusError{Op: o.String(), Err: err}
	}
	if c.delay > 0 {
		time.Sleep(c.delay)
	}
	if n == 0 {
		return nil, nil
	}
	r := make([]byte, (n+1)/2*common.WordSize)
	if err := t.d.Tx(nil, r); err != nil {
		return nil, &BusError{Op: o.String(), Err: err}
	}
	p, err := common.DecodeWords(r)
	if err != nil {
		return nil, &FrameError{Op: o.String(), Err: err}
	}
	return p[:n], nil
}

// wakeUp sends the wake-up command twice. The first one only re-enables the
// interface and is not acknowledged.
func (t *i2cTransport) wakeUp() error {
	c := i2cCommands[opWakeUp]
	_ = t.d.Tx([]byte{byte(c.word >> 8), byte(c.word)}, nil)
	_, err := t.exec(opWakeUp, nil, 0)
	return err
}

func (t *i2cTransport) String() string {
	return t.d.String()
}
