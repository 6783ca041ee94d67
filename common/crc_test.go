// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package common

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestCRC8(t *testing.T) {
	var tests = []struct {
		bytes  []byte
		result byte
	}{
		{bytes: []byte{0xbe, 0xef}, result: 0x92},
		{bytes: []byte{0x01, 0xa4}, result: 0x4d},
		{bytes: []byte{0xab, 0xcd}, result: 0x6f},
		{bytes: []byte{0x03, 0x00}, result: 0xac},
	}
	for _, test := range tests {
		res := CRC8(test.bytes)
		if res != test.result {
			t.Errorf("CRC8(%#v)!=0x%x received 0x%x", test.bytes, test.result, res)
		}
	}
}

func TestEncodeWords(t *testing.T) {
	got := EncodeWords(0xbeef, 0x0300)
	want := []byte{0xbe, 0xef, 0x92, 0x03, 0x00, 0xac}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("EncodeWords() mismatch (-want +got):\n%s", diff)
	}
	if got := EncodeBytes([]byte{0xbe, 0xef, 0x03}); !cmp.Equal(got, want) {
		t.Errorf("EncodeBytes() padded=%#v expected %#v", got, want)
	}
}

func TestDecodeWords(t *testing.T) {
	payload, err := DecodeWords([]byte{0xbe, 0xef, 0x92, 0x01, 0xa4, 0x4d})
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]byte{0xbe, 0xef, 0x01, 0xa4}, payload); diff != "" {
		t.Errorf("DecodeWords() mismatch (-want +got):\n%s", diff)
	}

	if _, err := DecodeWords([]byte{0xbe, 0xef}); !errors.Is(err, ErrLength) {
		t.Errorf("DecodeWords() short buffer returned %v", err)
	}

	_, err = DecodeWords([]byte{0xbe, 0xef, 0x92, 0x01, 0xa4, 0x00})
	var crcErr *CRCError
	if !errors.As(err, &crcErr) {
		t.Fatalf("DecodeWords() bad crc returned %v", err)
	}
	if crcErr.Offset != 3 || crcErr.Want != 0x4d {
		t.Errorf("unexpected crc error %#v", crcErr)
	}

	if payload, err := DecodeWords(nil); err != nil || len(payload) != 0 {
		t.Errorf("DecodeWords(nil)=%#v, %v", payload, err)
	}
}
