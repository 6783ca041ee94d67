// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package main

import (
	"context"
	"time"

	"github.com/GermanBionicSystems/pmsensor/sps30"
	"github.com/prometheus/client_golang/prometheus"
)

// Size labels, in the order the values appear in a Measurement.
var (
	massSizes   = [...]string{"pm1.0", "pm2.5", "pm4.0", "pm10"}
	numberSizes = [...]string{"pm0.5", "pm1.0", "pm2.5", "pm4.0", "pm10"}
)

type metrics struct {
	mass         *prometheus.GaugeVec
	number       *prometheus.GaugeVec
	particleSize prometheus.Gauge
	lastRead     prometheus.Gauge
	readErrors   *prometheus.CounterVec
}

func newMetrics(reg prometheus.Registerer) *metrics {
	m := &metrics{
		mass: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "sps30_mass_concentration_ugm3",
			Help: "Particulate mass concentration in µg/m³.",
		}, []string{"size"}),
		number: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "sps30_number_concentration_cm3",
			Help: "Particle number concentration in #/cm³.",
		}, []string{"size"}),
		particleSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "sps30_typical_particle_size_um",
			Help: "Typical particle size in µm.",
		}),
		lastRead: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "sps30_last_read_timestamp_seconds",
			Help: "Unix time of the last successful read.",
		}),
		readErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sps30_read_errors_total",
			Help: "Failed reads by kind.",
		}, []string{"kind"}),
	}
	reg.MustRegister(m.mass, m.number, m.particleSize, m.lastRead, m.readErrors)
	for _, kind := range []string{errKindBus, errKindFrame, errKindOther} {
		m.readErrors.WithLabelValues(kind)
	}
	return m
}

func (m *metrics) publish(_ context.Context, r sps30.Measurement, at time.Time) error {
	v := r.Values()
	for ix, size := range massSizes {
		m.mass.WithLabelValues(size).Set(v[ix])
	}
	for ix, size := range numberSizes {
		m.number.WithLabelValues(size).Set(v[len(massSizes)+ix])
	}
	m.particleSize.Set(r.TypicalParticleSize)
	m.lastRead.Set(float64(at.UnixNano()) / 1e9)
	return nil
}

func (m *metrics) observeError(kind string) {
	m.readErrors.WithLabelValues(kind).Inc()
}

func (m *metrics) String() string {
	return "prometheus"
}
