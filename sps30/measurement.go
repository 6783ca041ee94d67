// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package sps30

import (
	"encoding/binary"
	"fmt"
	"math"
	"strconv"

	"periph.io/x/conn/v3/physic"
)

// NumFields is the number of values in every Measurement.
const NumFields = 10

// FieldNames are the names of the Measurement fields, in frame order. They
// are the keys accepted by Measurement.Field.
var FieldNames = [NumFields]string{
	"pm10 standard",
	"pm25 standard",
	"pm40 standard",
	"pm100 standard",
	"particles 05um",
	"particles 10um",
	"particles 25um",
	"particles 40um",
	"particles 100um",
	"tps",
}

// Format selects how the device encodes measured values.
type Format byte

const (
	// FormatFloat is big-endian IEEE754 float values.
	FormatFloat Format = 0x03
	// FormatInteger is big-endian unsigned 16 bit values. Typical particle
	// size is reported in nm and converted to µm by the driver.
	FormatInteger Format = 0x05
)

func (f Format) String() string {
	switch f {
	case FormatFloat:
		return "float"
	case FormatInteger:
		return "integer"
	default:
		return fmt.Sprintf("Format(0x%02x)", byte(f))
	}
}

// fieldSize returns the number of payload bytes used by a single value.
func (f Format) fieldSize() int {
	if f == FormatInteger {
		return 2
	}
	return 4
}

// frameSize returns the payload length of a measured values reply.
func (f Format) frameSize() int {
	return NumFields * f.fieldSize()
}

// Measurement is one decoded reading. Mass concentrations are in µg/m³,
// number concentrations in #/cm³ and the typical particle size in µm.
type Measurement struct {
	MassPM1  float64
	MassPM25 float64
	MassPM4  float64
	MassPM10 float64

	NumberPM05 float64
	NumberPM1  float64
	NumberPM25 float64
	NumberPM4  float64
	NumberPM10 float64

	TypicalParticleSize float64
}

// Values returns the fields in the order of FieldNames.
func (m Measurement) Values() [NumFields]float64 {
	return [NumFields]float64{
		m.MassPM1, m.MassPM25, m.MassPM4, m.MassPM10,
		m.NumberPM05, m.NumberPM1, m.NumberPM25, m.NumberPM4, m.NumberPM10,
		m.TypicalParticleSize,
	}
}

// Field returns the value stored under one of FieldNames.
func (m Measurement) Field(name string) (float64, bool) {
	for ix, n := range FieldNames {
		if n == name {
			return m.Values()[ix], true
		}
	}
	return 0, false
}

// ParticleSize returns the typical particle size as a distance.
func (m Measurement) ParticleSize() physic.Distance {
	return physic.Distance(m.TypicalParticleSize * float64(physic.MicroMetre))
}

func (m Measurement) String() string {
	return fmt.Sprintf("PM1.0: %.2f PM2.5: %.2f PM4.0: %.2f PM10: %.2f µg/m³ NC0.5: %.2f NC1.0: %.2f NC2.5: %.2f NC4.0: %.2f NC10: %.2f #/cm³ TPS: %.3f µm",
		m.MassPM1, m.MassPM25, m.MassPM4, m.MassPM10,
		m.NumberPM05, m.NumberPM1, m.NumberPM25, m.NumberPM4, m.NumberPM10,
		m.TypicalParticleSize)
}

func fromValues(v [NumFields]float64) Measurement {
	return Measurement{
		MassPM1: v[0], MassPM25: v[1], MassPM4: v[2], MassPM10: v[3],
		NumberPM05: v[4], NumberPM1: v[5], NumberPM25: v[6], NumberPM4: v[7], NumberPM10: v[8],
		TypicalParticleSize: v[9],
	}
}

// widen converts a float32 to the float64 closest to its shortest decimal
// form, so a device value of 12.3 reads back as 12.3.
func widen(f float32) float64 {
	if math.IsNaN(float64(f)) || math.IsInf(float64(f), 0) {
		return float64(f)
	}
	v, err := strconv.ParseFloat(strconv.FormatFloat(float64(f), 'g', -1, 32), 64)
	if err != nil {
		return float64(f)
	}
	return v
}

// decode converts the payload of a measured values reply, with the CRC or
// framing already removed.
func decode(payload []byte, f Format) (Measurement, error) {
	if len(payload) != f.frameSize() {
		return Measurement{}, &FrameError{Op: opReadValues.String(), Want: f.frameSize(), Got: len(payload)}
	}
	var v [NumFields]float64
	for ix := 0; ix < NumFields; ix++ {
		switch f {
		case FormatInteger:
			v[ix] = float64(binary.BigEndian.Uint16(payload[ix*2:]))
		default:
			v[ix] = widen(math.Float32frombits(binary.BigEndian.Uint32(payload[ix*4:])))
		}
	}
	if f == FormatInteger {
		v[NumFields-1] /= 1000
	}
	return fromValues(v), nil
}
