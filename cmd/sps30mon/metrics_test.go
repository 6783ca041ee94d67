// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package main

import (
	"context"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetricsPublish(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := newMetrics(reg)
	if err := m.publish(context.Background(), sample, testTime); err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		c    prometheus.Collector
		want float64
	}{
		{c: m.mass.WithLabelValues("pm1.0"), want: 12.3},
		{c: m.mass.WithLabelValues("pm10"), want: 15.5},
		{c: m.number.WithLabelValues("pm0.5"), want: 80.75},
		{c: m.number.WithLabelValues("pm10"), want: 97.625},
		{c: m.particleSize, want: 0.5},
		{c: m.lastRead, want: float64(testTime.Unix())},
	}
	for _, test := range tests {
		if got := testutil.ToFloat64(test.c); got != test.want {
			t.Errorf("gauge=%v expected %v", got, test.want)
		}
	}
}

func TestMetricsErrors(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := newMetrics(reg)
	m.observeError(errKindFrame)
	m.observeError(errKindFrame)

	expected := `
# HELP sps30_read_errors_total Failed reads by kind.
# TYPE sps30_read_errors_total counter
sps30_read_errors_total{kind="bus"} 0
sps30_read_errors_total{kind="frame"} 2
sps30_read_errors_total{kind="other"} 0
`
	if err := testutil.GatherAndCompare(reg, strings.NewReader(expected), "sps30_read_errors_total"); err != nil {
		t.Error(err)
	}
}
