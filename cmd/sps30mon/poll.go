// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package main

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/GermanBionicSystems/pmsensor/sps30"
)

const (
	errKindBus   = "bus"
	errKindFrame = "frame"
	errKindOther = "other"
)

type reader interface {
	Read() (sps30.Measurement, error)
}

// sink receives every successful reading.
type sink interface {
	publish(ctx context.Context, m sps30.Measurement, at time.Time) error
	String() string
}

type errorObserver interface {
	observeError(kind string)
}

// poller reads the sensor on a fixed interval. It is the only user of the
// device, so reads never overlap.
type poller struct {
	r        reader
	interval time.Duration
	sinks    []sink
	errs     errorObserver
	now      func() time.Time
}

// run reads once right away, then on every tick until ctx is done.
func (p *poller) run(ctx context.Context) {
	p.poll(ctx)
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.poll(ctx)
		}
	}
}

func (p *poller) poll(ctx context.Context) {
	m, err := p.r.Read()
	if err != nil {
		kind := errorKind(err)
		if p.errs != nil {
			p.errs.observeError(kind)
		}
		log.Printf("read failed (%s): %v", kind, err)
		return
	}
	at := p.now()
	for _, s := range p.sinks {
		if err := s.publish(ctx, m, at); err != nil {
			log.Printf("%s: %v", s, err)
		}
	}
}

func errorKind(err error) string {
	var busErr *sps30.BusError
	var frameErr *sps30.FrameError
	switch {
	case errors.As(err, &busErr):
		return errKindBus
	case errors.As(err, &frameErr):
		return errKindFrame
	default:
		return errKindOther
	}
}
