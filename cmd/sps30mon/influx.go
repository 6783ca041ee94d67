// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package main

import (
	"context"
	"strings"
	"time"

	"github.com/GermanBionicSystems/pmsensor/sps30"
	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
)

const influxMeasurement = "sps30"

// influxSink writes one point per reading, with one field per value.
type influxSink struct {
	w      api.WriteAPIBlocking
	sensor string
}

func newInfluxSink(w api.WriteAPIBlocking, sensor string) *influxSink {
	return &influxSink{w: w, sensor: sensor}
}

// fieldKey turns a field name such as "pm25 standard" into "pm25_standard".
func fieldKey(name string) string {
	return strings.ReplaceAll(name, " ", "_")
}

func (s *influxSink) publish(ctx context.Context, m sps30.Measurement, at time.Time) error {
	p := influxdb2.NewPointWithMeasurement(influxMeasurement).
		AddTag("sensor", s.sensor).
		SetTime(at)
	for ix, v := range m.Values() {
		p.AddField(fieldKey(sps30.FieldNames[ix]), v)
	}
	return s.w.WritePoint(ctx, p)
}

func (s *influxSink) String() string {
	return "influxdb"
}
