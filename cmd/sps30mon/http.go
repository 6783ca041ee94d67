// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func newRouter(gatherer prometheus.Gatherer, l *latest, info deviceInfo) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	api := r.Group("/api/v1")
	api.GET("/measurement", func(c *gin.Context) {
		m, ok := l.get(info.Serial)
		if !ok {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "no reading yet"})
			return
		}
		c.JSON(http.StatusOK, m)
	})
	api.GET("/device", func(c *gin.Context) {
		c.JSON(http.StatusOK, info)
	})
	return r
}
