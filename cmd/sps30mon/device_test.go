// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package main

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/GermanBionicSystems/pmsensor/shdlc"
	"github.com/GermanBionicSystems/pmsensor/sps30"
	"github.com/google/go-cmp/cmp"
)

// loopPort replays device frames and discards what is written, standing in
// for a serial port.
type loopPort struct {
	r *bytes.Reader
}

func (p *loopPort) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if errors.Is(err, io.EOF) {
		return 0, nil
	}
	return n, err
}

func (p *loopPort) Write(b []byte) (int, error) { return len(b), nil }

// reply builds an unstuffed device frame; the payloads used here need no
// escaping.
func reply(cmd byte, data ...byte) []byte {
	body := append([]byte{0x00, cmd, 0x00, byte(len(data))}, data...)
	var sum byte
	for _, b := range body {
		sum += b
	}
	return append(append([]byte{0x7e}, body...), ^sum, 0x7e)
}

func TestReadDeviceInfo(t *testing.T) {
	version := reply(0xd1, 0x02, 0x03, 0x00, 0x07, 0x00, 0x02, 0x00)
	port := &loopPort{r: bytes.NewReader(bytes.Join([][]byte{
		version,
		reply(0xd0, []byte("00080000\x00")...),
		reply(0xd0, []byte("ABCDEF0123456789\x00")...),
		version,
	}, nil))}
	dev, err := sps30.NewUART(port, &sps30.Opts{})
	if err != nil {
		t.Fatal(err)
	}
	info, err := readDeviceInfo(dev, "uart")
	if err != nil {
		t.Fatal(err)
	}
	want := deviceInfo{Interface: "uart", ProductType: "00080000", Serial: "ABCDEF0123456789", Firmware: "2.3", Format: "float"}
	if diff := cmp.Diff(want, info); diff != "" {
		t.Errorf("readDeviceInfo() mismatch (-want +got):\n%s", diff)
	}

	// The script is exhausted, the next command times out.
	if _, err := readDeviceInfo(dev, "uart"); !errors.Is(err, shdlc.ErrTimeout) {
		t.Errorf("readDeviceInfo() on a silent port returned %v", err)
	}
}

func TestErrorKind(t *testing.T) {
	if k := errorKind(&sps30.BusError{Op: "x", Err: io.ErrUnexpectedEOF}); k != errKindBus {
		t.Errorf("errorKind(BusError)=%s", k)
	}
	if k := errorKind(&sps30.FrameError{Op: "x"}); k != errKindFrame {
		t.Errorf("errorKind(FrameError)=%s", k)
	}
	if k := errorKind(sps30.ErrUnsupported); k != errKindOther {
		t.Errorf("errorKind(ErrUnsupported)=%s", k)
	}
}
