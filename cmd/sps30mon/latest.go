// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package main

import (
	"context"
	"sync"
	"time"

	"github.com/GermanBionicSystems/pmsensor/sps30"
)

// reading is the JSON form of a measurement.
type reading struct {
	Sensor    string             `json:"sensor"`
	Fields    map[string]float64 `json:"fields"`
	Timestamp time.Time          `json:"timestamp"`
}

// latest keeps the most recent reading for the HTTP handlers, which must
// never touch the bus themselves.
type latest struct {
	mu sync.Mutex
	m  sps30.Measurement
	at time.Time
	ok bool
}

func (l *latest) publish(_ context.Context, m sps30.Measurement, at time.Time) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.m, l.at, l.ok = m, at, true
	return nil
}

// get returns the last reading, false before the first one.
func (l *latest) get(sensor string) (reading, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.ok {
		return reading{}, false
	}
	r := reading{Sensor: sensor, Fields: make(map[string]float64, sps30.NumFields), Timestamp: l.at}
	for ix, v := range l.m.Values() {
		r.Fields[sps30.FieldNames[ix]] = v
	}
	return r, true
}

func (l *latest) String() string {
	return "latest"
}
