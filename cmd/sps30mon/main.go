// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// sps30mon polls an SPS30 particulate matter sensor and exports its readings
// as Prometheus metrics, over a small JSON API and optionally to InfluxDB.
//
// Settings are read from flags, which default to environment variables. A
// .env file in the working directory is loaded first.
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, using environment variables")
	}
	cfg, err := loadConfig(os.Args[1:], os.Getenv)
	if err != nil {
		log.Fatal(err)
	}
	if err := run(cfg); err != nil {
		log.Fatal(err)
	}
}

func run(cfg config) error {
	dev, bus, err := openDevice(cfg)
	if err != nil {
		return err
	}
	defer bus.Close()
	defer func() {
		if err := dev.Halt(); err != nil {
			log.Printf("halt: %v", err)
		}
	}()

	info, err := readDeviceInfo(dev, cfg.Interface)
	if err != nil {
		return err
	}
	log.Printf("%s: product %s serial %s firmware %s, %s values every %s", dev, info.ProductType, info.Serial, info.Firmware, info.Format, cfg.Interval)

	reg := prometheus.NewRegistry()
	m := newMetrics(reg)
	l := &latest{}
	sinks := []sink{m, l}
	if cfg.InfluxURL != "" {
		client := influxdb2.NewClient(cfg.InfluxURL, cfg.InfluxToken)
		defer client.Close()
		sinks = append(sinks, newInfluxSink(client.WriteAPIBlocking(cfg.InfluxOrg, cfg.InfluxBucket), info.Serial))
		log.Printf("writing to InfluxDB at %s, bucket %s", cfg.InfluxURL, cfg.InfluxBucket)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var srv *http.Server
	if cfg.Listen != "" {
		gin.SetMode(gin.ReleaseMode)
		srv = &http.Server{Addr: cfg.Listen, Handler: newRouter(reg, l, info)}
		go func() {
			log.Printf("listening on %s", cfg.Listen)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Printf("http: %v", err)
				stop()
			}
		}()
	}

	p := &poller{r: dev, interval: cfg.Interval, sinks: sinks, errs: m, now: time.Now}
	p.run(ctx)
	log.Println("shutting down")

	if srv == nil {
		return nil
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
