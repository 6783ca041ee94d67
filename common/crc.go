// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package common contains the Sensirion I²C word framing shared by the
// drivers in this module: every 16-bit word on the wire is followed by a
// CRC-8 of its two bytes.
package common

import (
	"errors"
	"fmt"
)

// WordSize is the number of bytes a single word occupies on the wire,
// including its CRC.
const WordSize = 3

// ErrLength is returned by DecodeWords when the raw buffer is not made of
// whole words.
var ErrLength = errors.New("common: data length not a multiple of three")

// CRCError reports a word whose CRC byte does not match its data.
type CRCError struct {
	// Offset of the word in the raw buffer.
	Offset int
	Want   byte
	Got    byte
}

func (e *CRCError) Error() string {
	return fmt.Sprintf("common: crc mismatch at offset %d: want 0x%02x got 0x%02x", e.Offset, e.Want, e.Got)
}

// CRC8 calculates the 8-bit CRC of the byte slice parameter and returns the
// calculated value. CRC bytes are used in sensors from TI and Sensirion.
func CRC8(bytes []byte) byte {
	var crc byte = 0xff
	for _, val := range bytes {
		crc ^= val
		for i := 0; i < 8; i++ {
			if (crc & 0x80) == 0 {
				crc <<= 1
			} else {
				crc = (byte)((crc << 1) ^ 0x31)
			}
		}
	}
	return crc
}

// EncodeWords converts the words into their wire form, big-endian with the
// CRC following each word.
func EncodeWords(words ...uint16) []byte {
	b := make([]byte, len(words)*WordSize)
	for ix, w := range words {
		b[ix*WordSize] = byte(w >> 8)
		b[ix*WordSize+1] = byte(w)
		b[ix*WordSize+2] = CRC8(b[ix*WordSize : ix*WordSize+2])
	}
	return b
}

// EncodeBytes is EncodeWords for a payload already laid out as big-endian
// words. An odd trailing byte is padded with zero.
func EncodeBytes(payload []byte) []byte {
	words := make([]uint16, (len(payload)+1)/2)
	for ix := range words {
		words[ix] = uint16(payload[ix*2]) << 8
		if ix*2+1 < len(payload) {
			words[ix] |= uint16(payload[ix*2+1])
		}
	}
	return EncodeWords(words...)
}

// DecodeWords verifies the CRC of every word in raw and returns the payload
// with the CRC bytes removed.
func DecodeWords(raw []byte) ([]byte, error) {
	if len(raw)%WordSize != 0 {
		return nil, ErrLength
	}
	payload := make([]byte, 0, len(raw)/WordSize*2)
	for off := 0; off < len(raw); off += WordSize {
		if crc := CRC8(raw[off : off+2]); crc != raw[off+2] {
			return nil, &CRCError{Offset: off, Want: crc, Got: raw[off+2]}
		}
		payload = append(payload, raw[off], raw[off+1])
	}
	return payload, nil
}
